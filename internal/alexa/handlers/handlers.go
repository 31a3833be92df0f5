// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package handlers implements the handlers for platform built-in intents and
// request types. Their spoken output lives in templates; the handlers only
// decide the session and audio directives.
package handlers

import (
	"context"

	"github.com/ManuGH/skillgate/internal/alexa/dispatch"
	"github.com/ManuGH/skillgate/internal/alexa/response"
	xglog "github.com/ManuGH/skillgate/internal/log"
)

// Builtins returns the factories for every built-in handler.
func Builtins() dispatch.Builtins {
	return dispatch.Builtins{
		GoodBye:    NewGoodBye,
		Help:       NewHelp,
		Pause:      NewPause,
		Resume:     NewResume,
		Fallback:   NewFallback,
		Launch:     NewLaunchApp,
		SessionEnd: NewSessionEnd,
	}
}

// GoodBye ends the conversation. It answers cancel and stop.
type GoodBye struct{ dispatch.Intent }

// NewGoodBye is a dispatch.Factory.
func NewGoodBye(c *dispatch.Context) dispatch.Handler {
	return &GoodBye{dispatch.NewIntent(c, dispatch.LogicalName("GoodBye"))}
}

// Handle implements dispatch.Handler.
func (h *GoodBye) Handle(context.Context) (*response.Response, error) {
	resp := h.Respond(nil)
	if h.Context().Device.AudioSupported() {
		resp.StopAudio()
	}
	return resp, nil
}

// Help explains the skill and keeps the microphone open.
type Help struct{ dispatch.Intent }

// NewHelp is a dispatch.Factory.
func NewHelp(c *dispatch.Context) dispatch.Handler {
	return &Help{dispatch.NewIntent(c, dispatch.LogicalName("Help"))}
}

// Handle implements dispatch.Handler.
func (h *Help) Handle(context.Context) (*response.Response, error) {
	return h.Respond(nil).KeepListening(), nil
}

// Pause stops audio playback.
type Pause struct{ dispatch.Intent }

// NewPause is a dispatch.Factory.
func NewPause(c *dispatch.Context) dispatch.Handler {
	return &Pause{dispatch.NewIntent(c, dispatch.LogicalName("Pause"))}
}

// Handle implements dispatch.Handler.
func (h *Pause) Handle(context.Context) (*response.Response, error) {
	return h.Respond(nil).StopAudio(), nil
}

// Resume marks the turn as an audio player response. It carries no stream,
// so no play directive is sent and the session closes.
type Resume struct{ dispatch.Intent }

// NewResume is a dispatch.Factory.
func NewResume(c *dispatch.Context) dispatch.Handler {
	return &Resume{dispatch.NewIntent(c, dispatch.LogicalName("Resume"))}
}

// Handle implements dispatch.Handler.
func (h *Resume) Handle(context.Context) (*response.Response, error) {
	return h.Respond(nil).AudioPlayer(), nil
}

// Fallback answers utterances that matched no intent and re-prompts.
type Fallback struct{ dispatch.Intent }

// NewFallback is a dispatch.Factory.
func NewFallback(c *dispatch.Context) dispatch.Handler {
	return &Fallback{dispatch.NewIntent(c, dispatch.LogicalName("Fallback"))}
}

// Handle implements dispatch.Handler.
func (h *Fallback) Handle(context.Context) (*response.Response, error) {
	return h.Respond(nil).KeepListening(), nil
}

// LaunchApp greets the user when the skill is opened without an intent.
type LaunchApp struct{ dispatch.Intent }

// NewLaunchApp is a dispatch.Factory.
func NewLaunchApp(c *dispatch.Context) dispatch.Handler {
	return &LaunchApp{dispatch.NewIntent(c, dispatch.LogicalName("LaunchApp"))}
}

// Handle implements dispatch.Handler.
func (h *LaunchApp) Handle(context.Context) (*response.Response, error) {
	c := h.Context()
	resp := h.Respond(map[string]any{
		"NewSession": c.Session.New,
		"HasScreen":  c.Device.APLSupported(),
	}).KeepListening()
	if c.Device.APLSupported() {
		resp.KeepScreenActive()
	}
	return resp, nil
}

// SessionEnd acknowledges the platform closing the session. The platform
// ignores any speech in the reply.
type SessionEnd struct{ dispatch.Intent }

// NewSessionEnd is a dispatch.Factory.
func NewSessionEnd(c *dispatch.Context) dispatch.Handler {
	return &SessionEnd{dispatch.NewIntent(c, dispatch.LogicalName("SessionEnd"))}
}

// Handle implements dispatch.Handler.
func (h *SessionEnd) Handle(context.Context) (*response.Response, error) {
	h.Context().Logger.Debug().
		Str(xglog.FieldEvent, "session.ended").
		Str(xglog.FieldUserID, h.Context().Session.UserID).
		Msg("session ended by platform")
	return h.Respond(nil), nil
}
