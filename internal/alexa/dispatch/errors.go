// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package dispatch

import (
	"errors"
	"fmt"
)

var (
	// ErrUnregisteredIntent reports an intent with no registered handler.
	ErrUnregisteredIntent = errors.New("unregistered intent")
	// ErrDuplicateHandler reports a second registration for an intent name.
	ErrDuplicateHandler = errors.New("duplicate intent handler")
	// ErrBuiltinIntent reports an attempt to register a platform built-in intent.
	ErrBuiltinIntent = errors.New("built-in intent cannot be registered")
	// ErrMissingBuiltin reports a Builtins table with an unset factory.
	ErrMissingBuiltin = errors.New("missing built-in handler")
	// ErrNilResponse reports a handler that returned neither a response nor an error.
	ErrNilResponse = errors.New("handler returned no response")
)

// ConfigError is a deployment defect: the interaction model names an intent
// the service has no handler for.
type ConfigError struct {
	Intent string
	Err    error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("intent %q: %v", e.Intent, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// HandlerError wraps an error returned by a handler.
type HandlerError struct {
	Handler string
	Err     error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("handler %s: %v", e.Handler, e.Err)
}

func (e *HandlerError) Unwrap() error { return e.Err }
