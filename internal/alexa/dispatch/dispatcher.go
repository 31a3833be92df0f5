// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package dispatch selects and invokes the handler for a classified request.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ManuGH/skillgate/internal/alexa/request"
	"github.com/ManuGH/skillgate/internal/alexa/response"
	xglog "github.com/ManuGH/skillgate/internal/log"
	"github.com/ManuGH/skillgate/internal/telemetry"
)

// Built-in handler names reported in Result.Handler.
const (
	HandlerGoodBye    = "goodbye"
	HandlerHelp       = "help"
	HandlerPause      = "pause"
	HandlerResume     = "resume"
	HandlerFallback   = "fallback"
	HandlerLaunch     = "launch"
	HandlerSessionEnd = "session_end"
)

// Builtins holds the factories for platform built-in intents and request types.
type Builtins struct {
	GoodBye    Factory
	Help       Factory
	Pause      Factory
	Resume     Factory
	Fallback   Factory
	Launch     Factory
	SessionEnd Factory
}

func (b Builtins) validate() error {
	missing := make([]string, 0, 7)
	for name, f := range map[string]Factory{
		HandlerGoodBye:    b.GoodBye,
		HandlerHelp:       b.Help,
		HandlerPause:      b.Pause,
		HandlerResume:     b.Resume,
		HandlerFallback:   b.Fallback,
		HandlerLaunch:     b.Launch,
		HandlerSessionEnd: b.SessionEnd,
	} {
		if f == nil {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingBuiltin, strings.Join(missing, ", "))
	}
	return nil
}

type route struct {
	handler     string
	displayCard bool
}

// builtinIntents is the fixed table for platform intents.
var builtinIntents = map[string]route{
	request.IntentCancel:   {handler: HandlerGoodBye},
	request.IntentStop:     {handler: HandlerGoodBye},
	request.IntentHelp:     {handler: HandlerHelp, displayCard: true},
	request.IntentPause:    {handler: HandlerPause},
	request.IntentResume:   {handler: HandlerResume},
	request.IntentFallback: {handler: HandlerFallback},
}

func isBuiltin(intent string) bool {
	_, ok := builtinIntents[intent]
	return ok
}

// Result is the outcome of one dispatch. A nil Response means no handler
// was invoked and the caller should answer with an empty response.
type Result struct {
	Response *response.Response
	// DisplayCard tells the renderer whether to include a visual card.
	DisplayCard bool
	// Handler names the selected handler, or "" when none ran.
	Handler string
}

// Options configures a Dispatcher.
type Options struct {
	Logger *zerolog.Logger
	Tracer trace.Tracer
}

// Dispatcher maps requests to handlers. It keeps no per-request state.
type Dispatcher struct {
	builtins Builtins
	registry *Registry
	logger   zerolog.Logger
	tracer   trace.Tracer
}

// New creates a dispatcher. Every built-in factory must be set.
func New(builtins Builtins, registry *Registry, opts Options) (*Dispatcher, error) {
	if err := builtins.validate(); err != nil {
		return nil, err
	}
	if registry == nil {
		registry = NewRegistry()
	}

	logger := xglog.WithComponent("dispatch")
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = telemetry.Tracer("skillgate/dispatch")
	}

	return &Dispatcher{builtins: builtins, registry: registry, logger: logger, tracer: tracer}, nil
}

// Registry returns the custom intent registry.
func (d *Dispatcher) Registry() *Registry { return d.registry }

// Dispatch selects at most one handler for req and invokes it. Invalid and
// unrecognized requests yield an empty Result and no error. An intent with
// no registered handler yields a *ConfigError wrapping ErrUnregisteredIntent.
func (d *Dispatcher) Dispatch(ctx context.Context, req *request.Request) (Result, error) {
	ctx, span := d.tracer.Start(ctx, "alexa.dispatch",
		trace.WithAttributes(telemetry.RequestAttributes(req.Type(), req.RequestID(), req.IntentName(), req.Locale(), req.Valid())...))
	defer span.End()

	logger := xglog.WithContext(ctx, d.logger).With().
		Str(xglog.FieldRequestType, req.Type()).
		Str(xglog.FieldApplicationID, req.ApplicationID()).
		Logger()

	name, factory, displayCard, err := d.selectHandler(req)
	if err != nil {
		dispatchTotal.WithLabelValues("", outcomeConfigError).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "unregistered intent")
		logger.Error().Err(err).
			Str(xglog.FieldEvent, "dispatch.unregistered_intent").
			Str(xglog.FieldIntent, req.IntentName()).
			Msg("no handler registered for intent")
		return Result{}, err
	}
	if factory == nil {
		outcome := outcomeUnrecognized
		if !req.Valid() {
			outcome = outcomeInvalid
		}
		dispatchTotal.WithLabelValues("", outcome).Inc()
		logger.Debug().
			Str(xglog.FieldEvent, "dispatch.skipped").
			Str("reason", outcome).
			Msg("no handler selected")
		return Result{}, nil
	}

	hctx := newContext(req, logger.With().Str(xglog.FieldHandler, name).Logger())
	resp, err := factory(hctx).Handle(ctx)
	if err == nil && resp == nil {
		err = ErrNilResponse
	}
	if err != nil {
		dispatchTotal.WithLabelValues(name, outcomeHandlerError).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "handler failed")
		logger.Error().Err(err).
			Str(xglog.FieldEvent, "dispatch.handler_failed").
			Str(xglog.FieldHandler, name).
			Msg("handler failed")
		return Result{Handler: name}, &HandlerError{Handler: name, Err: err}
	}

	dispatchTotal.WithLabelValues(name, outcomeHandled).Inc()
	span.SetAttributes(telemetry.DispatchAttributes(name, displayCard, resp.EndSession(), len(resp.Directives()))...)
	logger.Debug().
		Str(xglog.FieldEvent, "dispatch.handled").
		Str(xglog.FieldHandler, name).
		Bool("display_card", displayCard).
		Bool("end_session", resp.EndSession()).
		Msg("request dispatched")

	return Result{Response: resp, DisplayCard: displayCard, Handler: name}, nil
}

// selectHandler applies the dispatch rules in priority order. A nil factory
// with a nil error means no handler applies.
func (d *Dispatcher) selectHandler(req *request.Request) (string, Factory, bool, error) {
	switch {
	case !req.Valid():
		return "", nil, false, nil

	case req.IntentRequest():
		intent := req.IntentName()
		if rt, ok := builtinIntents[intent]; ok {
			return rt.handler, d.builtin(rt.handler), rt.displayCard, nil
		}
		f, ok := d.registry.Lookup(intent)
		if !ok {
			return "", nil, false, &ConfigError{Intent: intent, Err: ErrUnregisteredIntent}
		}
		return intent, f, true, nil

	case req.LaunchRequest():
		return HandlerLaunch, d.builtins.Launch, true, nil

	case req.SessionEndedRequest():
		return HandlerSessionEnd, d.builtins.SessionEnd, false, nil

	case req.PlaybackRequest():
		switch {
		case strings.HasSuffix(req.Type(), "PlayCommandIssued"):
			return HandlerResume, d.builtins.Resume, false, nil
		case strings.HasSuffix(req.Type(), "PauseCommandIssued"):
			return HandlerPause, d.builtins.Pause, false, nil
		}
	}
	return "", nil, false, nil
}

func (d *Dispatcher) builtin(name string) Factory {
	switch name {
	case HandlerGoodBye:
		return d.builtins.GoodBye
	case HandlerHelp:
		return d.builtins.Help
	case HandlerPause:
		return d.builtins.Pause
	case HandlerResume:
		return d.builtins.Resume
	case HandlerFallback:
		return d.builtins.Fallback
	}
	return nil
}

// IsConfigError reports whether err is a deployment configuration defect.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
