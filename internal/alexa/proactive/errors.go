// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package proactive

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrTransport wraps network failures talking to the platform.
	ErrTransport = errors.New("proactive events transport failure")
	// ErrMalformedToken reports a 2xx token response without an access token.
	ErrMalformedToken = errors.New("token response has no access_token")
	// ErrInvalidEvent reports event parameters rejected before any call.
	ErrInvalidEvent = errors.New("invalid proactive event")
	// ErrMissingCredentials reports a client without client id or secret.
	ErrMissingCredentials = errors.New("missing client credentials")
)

// Steps of the publish sequence.
const (
	StepToken  = "token"
	StepSubmit = "submit"
)

// TransportError is a network failure during one step.
type TransportError struct {
	Step string
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrTransport, e.Step, e.Err)
}

// Unwrap exposes both ErrTransport and the underlying cause.
func (e *TransportError) Unwrap() []error { return []error{ErrTransport, e.Err} }

// PlatformResponse is a platform HTTP reply passed through unmodified,
// except that Body holds at most the first 1 MiB. Truncated reports a cut.
type PlatformResponse struct {
	Step       string
	StatusCode int
	Header     http.Header
	Body       []byte
	Truncated  bool
}

// OK reports a 2xx status.
func (r *PlatformResponse) OK() bool {
	return r != nil && r.StatusCode >= 200 && r.StatusCode < 300
}
