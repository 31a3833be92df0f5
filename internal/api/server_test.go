// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/skillgate/internal/alexa/dispatch"
	"github.com/ManuGH/skillgate/internal/alexa/handlers"
	"github.com/ManuGH/skillgate/internal/alexa/render"
	"github.com/ManuGH/skillgate/internal/alexa/request"
	"github.com/ManuGH/skillgate/internal/alexa/response"
	"github.com/ManuGH/skillgate/internal/api/middleware"
	"github.com/ManuGH/skillgate/internal/config"
)

const skillID = "amzn1.ask.skill.Y"

func newTestServer(t *testing.T, register func(*dispatch.Registry)) http.Handler {
	t.Helper()
	logger := zerolog.Nop()

	registry := dispatch.NewRegistry()
	if register != nil {
		register(registry)
	}
	d, err := dispatch.New(handlers.Builtins(), registry, dispatch.Options{Logger: &logger})
	require.NoError(t, err)

	cfg := config.Defaults()
	cfg.Skill.IDs = []string{skillID}
	cfg.API.RateLimit.Enabled = false

	return New(Deps{
		Config:        cfg,
		RequestConfig: request.Config{SkillIDs: cfg.Skill.IDs},
		Dispatcher:    d,
		Composer:      render.NewComposer(render.NewTemplateRenderer(render.DefaultTemplates()), logger),
		Logger:        &logger,
	}).Handler()
}

func body(appID, req string) string {
	return `{"version":"1.0",
	  "session":{"new":true,"sessionId":"s1","application":{"applicationId":"` + appID + `"},"user":{"userId":"u1"}},
	  "context":{"System":{"device":{"deviceId":"d1","supportedInterfaces":{}}}},
	  "request":` + req + `}`
}

func post(t *testing.T, h http.Handler, payload string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, config.DefaultWebhookPath, strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) render.Envelope {
	t.Helper()
	var env render.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestWebhook_Launch(t *testing.T) {
	h := newTestServer(t, nil)
	rec := post(t, h, body(skillID, `{"type":"LaunchRequest","requestId":"r1","locale":"en-US"}`))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get(middleware.HeaderRequestID))

	env := decode(t, rec)
	require.NotNil(t, env.Response.OutputSpeech)
	assert.Equal(t, "<speak>Welcome! What would you like to do?</speak>", env.Response.OutputSpeech.SSML)
	require.NotNil(t, env.Response.ShouldEndSession)
	assert.False(t, *env.Response.ShouldEndSession)
	require.NotNil(t, env.Response.Card)
	assert.Equal(t, "Welcome", env.Response.Card.Title)
	assert.NotNil(t, env.Response.Reprompt)
}

func TestWebhook_MinimalEnvelope(t *testing.T) {
	h := newTestServer(t, nil)
	tests := []struct {
		name    string
		payload string
	}{
		{"foreign skill id", body("amzn1.ask.skill.X", `{"type":"LaunchRequest","locale":"en-US"}`)},
		{"unknown request type", body(skillID, `{"type":"Display.ElementSelected","locale":"en-US"}`)},
		{"permission accepted", body(skillID, `{"type":"AlexaSkillEvent.SkillPermissionAccepted"}`)},
		{"malformed body", `{not json`},
		{"empty body", ``},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, h, tt.payload)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t, `{"version":"1.0","response":{}}`, rec.Body.String())
		})
	}
}

func TestWebhook_GoodByeEndsSession(t *testing.T) {
	h := newTestServer(t, nil)
	rec := post(t, h, body(skillID, `{"type":"IntentRequest","locale":"en-US","intent":{"name":"AMAZON.StopIntent"}}`))

	require.Equal(t, http.StatusOK, rec.Code)
	env := decode(t, rec)
	require.NotNil(t, env.Response.ShouldEndSession)
	assert.True(t, *env.Response.ShouldEndSession)
	assert.Equal(t, "<speak>Goodbye!</speak>", env.Response.OutputSpeech.SSML)
	assert.Nil(t, env.Response.Card)
	assert.Nil(t, env.Response.Reprompt)
}

func TestWebhook_UnregisteredIntent(t *testing.T) {
	h := newTestServer(t, nil)
	rec := post(t, h, body(skillID, `{"type":"IntentRequest","locale":"en-US","intent":{"name":"PlaySong"}}`))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var problem map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Contains(t, problem["error"], "PlaySong")
	assert.Equal(t, rec.Header().Get(middleware.HeaderRequestID), problem["requestId"])
}

func TestWebhook_RegisteredIntent(t *testing.T) {
	h := newTestServer(t, func(r *dispatch.Registry) {
		r.MustRegister("PlaySong", func(c *dispatch.Context) dispatch.Handler {
			return dispatch.HandlerFunc(func(context.Context) (*response.Response, error) {
				return dispatch.NewIntent(c, dispatch.LogicalName("PlaySong")).Respond(nil).ElicitSlot("SongTitle", true), nil
			})
		})
	})
	rec := post(t, h, body(skillID, `{"type":"IntentRequest","locale":"en-US","intent":{"name":"PlaySong"}}`))

	require.Equal(t, http.StatusOK, rec.Code)
	env := decode(t, rec)
	require.Len(t, env.Response.Directives, 1)
	assert.Equal(t, response.DirectiveElicitSlot, env.Response.Directives[0].Type)
	assert.Equal(t, "SongTitle", env.Response.Directives[0].SlotToElicit)
	assert.Nil(t, env.Response.OutputSpeech)
}

func TestWebhook_HandlerError(t *testing.T) {
	h := newTestServer(t, func(r *dispatch.Registry) {
		r.MustRegister("PlaySong", func(*dispatch.Context) dispatch.Handler {
			return dispatch.HandlerFunc(func(context.Context) (*response.Response, error) {
				return nil, errors.New("catalog offline")
			})
		})
	})
	rec := post(t, h, body(skillID, `{"type":"IntentRequest","locale":"en-US","intent":{"name":"PlaySong"}}`))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "handler failed")
}

func TestWebhook_BodyTooLarge(t *testing.T) {
	h := newTestServer(t, nil)
	rec := post(t, h, `{"pad":"`+strings.Repeat("a", maxBodyBytes)+`"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestRoutes_HealthAndMethods(t *testing.T) {
	h := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, config.DefaultWebhookPath, nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetricsHandler(t *testing.T) {
	h := newTestServer(t, nil)
	post(t, h, body(skillID, `{"type":"LaunchRequest","locale":"en-US"}`))

	rec := httptest.NewRecorder()
	MetricsHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "skillgate_http_request_duration_seconds")
	assert.Contains(t, rec.Body.String(), "skillgate_dispatch_total")
}
