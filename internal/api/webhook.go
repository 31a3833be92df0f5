// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package api

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/ManuGH/skillgate/internal/alexa/dispatch"
	"github.com/ManuGH/skillgate/internal/alexa/render"
	"github.com/ManuGH/skillgate/internal/alexa/request"
	"github.com/ManuGH/skillgate/internal/log"
)

// handleWebhook runs one platform turn: parse, dispatch, render, reply.
// Requests that are invalid or that no handler claims get the minimal
// envelope with 200. Missing intent handlers and handler failures are 500.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	logger := log.WithContext(ctx, s.logger)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			logger.Warn().Str(log.FieldEvent, "webhook.body_too_large").Int64("limit", tooLarge.Limit).Msg("request body too large")
			writeProblem(w, r, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		logger.Warn().Err(err).Str(log.FieldEvent, "webhook.body_read_failed").Msg("failed to read request body")
		writeProblem(w, r, http.StatusBadRequest, "failed to read request body")
		return
	}

	req, err := request.Parse(body, s.reqCfg)
	if err != nil {
		logger.Warn().Err(err).Str(log.FieldEvent, "webhook.malformed_body").Int("bytes", len(body)).Msg("request body is not valid JSON")
	}

	if id := req.ApplicationID(); id != "" {
		ctx = log.ContextWithApplicationID(ctx, id)
		logger = log.WithContext(ctx, s.logger)
	}
	logger.Debug().Str(log.FieldEvent, "webhook.received").Object("request", req).Msg("platform request received")

	result, err := s.dispatcher.Dispatch(ctx, req)
	if err != nil {
		var cfgErr *dispatch.ConfigError
		msg := "handler failed"
		if errors.As(err, &cfgErr) {
			msg = "no handler registered for intent " + cfgErr.Intent
		}
		logger.Error().Err(err).
			Str(log.FieldEvent, "webhook.dispatch_failed").
			Str(log.FieldIntent, req.IntentName()).
			Msg("dispatch failed")
		writeProblem(w, r, http.StatusInternalServerError, msg)
		return
	}

	env := render.EmptyEnvelope()
	if result.Response != nil {
		env, err = s.composer.Compose(ctx, result)
		if err != nil {
			logger.Error().Err(err).
				Str(log.FieldEvent, "webhook.render_failed").
				Str(log.FieldHandler, result.Handler).
				Msg("failed to render response")
			writeProblem(w, r, http.StatusInternalServerError, "failed to render response")
			return
		}
	}

	writeJSON(w, http.StatusOK, env)
	logger.Info().
		Str(log.FieldEvent, "webhook.dispatched").
		Str(log.FieldRequestType, req.Type()).
		Str(log.FieldIntent, req.IntentName()).
		Str(log.FieldHandler, result.Handler).
		Bool("valid", req.Valid()).
		Dur(log.FieldDuration, time.Since(start)).
		Msg("webhook turn completed")
}
