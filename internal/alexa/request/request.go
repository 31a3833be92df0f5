// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package request models an inbound voice platform request: its type,
// session identity, device capabilities and intent slots.
package request

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/text/language"

	"github.com/ManuGH/skillgate/internal/platform/httpx"
)

// Request types.
const (
	TypeIntent             = "IntentRequest"
	TypeLaunch             = "LaunchRequest"
	TypeSessionEnded       = "SessionEndedRequest"
	TypePermissionAccepted = "AlexaSkillEvent.SkillPermissionAccepted"
	TypePlaybackPlay       = "PlaybackController.PlayCommandIssued"
	TypePlaybackPause      = "PlaybackController.PauseCommandIssued"

	playbackMarker = "PlaybackController"
)

// Built-in intent names.
const (
	IntentHelp     = "AMAZON.HelpIntent"
	IntentCancel   = "AMAZON.CancelIntent"
	IntentStop     = "AMAZON.StopIntent"
	IntentPause    = "AMAZON.PauseIntent"
	IntentResume   = "AMAZON.ResumeIntent"
	IntentFallback = "AMAZON.FallbackIntent"
)

// locationLookupTimeout bounds the whole device address call.
const locationLookupTimeout = 3 * time.Second

// ErrMalformedBody is returned when the body is not a JSON object. The
// accompanying Request is still usable and behaves like an empty payload.
var ErrMalformedBody = errors.New("malformed request body")

var defaultLocationClient = sync.OnceValue(func() *http.Client {
	return httpx.NewClient(locationLookupTimeout)
})

// Config is the read-only process configuration a request consults.
type Config struct {
	// SkillIDs is the allow-list of application ids accepted by Valid.
	SkillIDs []string
	// LocationPermission selects the device address lookup mode.
	LocationPermission LocationPermission
	// HTTPClient performs the device address lookup. Nil uses a client
	// with a 2s connect and 3s total timeout.
	HTTPClient *http.Client
}

// Request is one parsed inbound platform call. All fields are derived at
// construction and never change afterwards.
type Request struct {
	rawType     string
	requestID   string
	timestamp   string
	intentName  string
	dialogState string
	locale      string
	valid       bool

	session Session
	device  *Device
	slots   SlotMap
}

// Parse classifies a raw request body. An empty body yields an empty request
// and no error. A body that is not valid JSON yields an empty request and an
// error wrapping ErrMalformedBody. Values of the wrong type are left at their
// zero value and the rest of the payload is kept.
func Parse(body []byte, cfg Config) (*Request, error) {
	var env envelope
	var parseErr error

	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &env); err != nil {
			var typeErr *json.UnmarshalTypeError
			if !errors.As(err, &typeErr) {
				env = envelope{}
				parseErr = fmt.Errorf("%w: %v", ErrMalformedBody, err)
			}
		}
	}

	r := newRequest(&env, cfg)
	requestsParsed.WithLabelValues(typeLabel(r.rawType), fmt.Sprint(r.valid)).Inc()
	return r, parseErr
}

func newRequest(env *envelope, cfg Config) *Request {
	r := &Request{}
	if req := env.Request; req != nil {
		r.rawType = req.Type
		r.requestID = req.RequestID
		r.timestamp = req.Timestamp
		r.dialogState = req.DialogState
		r.locale = req.Locale
		if r.rawType == TypeIntent && req.Intent != nil {
			r.intentName = req.Intent.Name
		}
	}

	r.session = newSession(env)
	r.device = newDevice(env, r.session, cfg)
	r.valid = r.session.ApplicationID != "" && slices.Contains(cfg.SkillIDs, r.session.ApplicationID)

	r.slots = SlotMap{}
	if r.IntentRequest() && !r.HelpRequest() && !r.CancelRequest() && env.Request.Intent != nil {
		r.slots = newSlotMap(env.Request.Intent.Slots)
	}
	return r
}

// Type returns the raw request.type value.
func (r *Request) Type() string { return r.rawType }

// RequestID returns the platform request id.
func (r *Request) RequestID() string { return r.requestID }

// Timestamp returns the platform timestamp as sent.
func (r *Request) Timestamp() string { return r.timestamp }

// IntentRequest reports an IntentRequest.
func (r *Request) IntentRequest() bool { return r.rawType == TypeIntent }

// LaunchRequest reports a LaunchRequest.
func (r *Request) LaunchRequest() bool { return r.rawType == TypeLaunch }

// SessionEndedRequest reports a SessionEndedRequest.
func (r *Request) SessionEndedRequest() bool { return r.rawType == TypeSessionEnded }

// PlaybackRequest reports any PlaybackController request.
func (r *Request) PlaybackRequest() bool { return strings.Contains(r.rawType, playbackMarker) }

// PermissionAccepted reports a skill permission accepted event.
func (r *Request) PermissionAccepted() bool { return r.rawType == TypePermissionAccepted }

// HelpRequest reports the built-in help intent.
func (r *Request) HelpRequest() bool { return r.IntentRequest() && r.intentName == IntentHelp }

// CancelRequest reports the built-in cancel intent.
func (r *Request) CancelRequest() bool { return r.IntentRequest() && r.intentName == IntentCancel }

// IntentName returns the intent name, or "" for non-intent requests.
func (r *Request) IntentName() string { return r.intentName }

// DialogState returns request.dialogState, or "".
func (r *Request) DialogState() string { return r.dialogState }

// Locale returns request.locale as sent, e.g. "en-US".
func (r *Request) Locale() string { return r.locale }

// LanguageTag returns the parsed locale, or language.Und when absent or invalid.
func (r *Request) LanguageTag() language.Tag {
	tag, err := language.Parse(r.locale)
	if err != nil {
		return language.Und
	}
	return tag
}

// Valid reports whether the application id is in the configured allow-list.
func (r *Request) Valid() bool { return r.valid }

// Session returns the session identity.
func (r *Request) Session() Session { return r.session }

// ApplicationID returns the skill application id.
func (r *Request) ApplicationID() string { return r.session.ApplicationID }

// UserID returns the platform user id.
func (r *Request) UserID() string { return r.session.UserID }

// Device returns the device context. It is never nil.
func (r *Request) Device() *Device { return r.device }

// Slots returns the intent slots. The map is empty for non-intent requests
// and for the help and cancel intents. Callers must not modify it.
func (r *Request) Slots() SlotMap { return r.slots }

// MarshalZerologObject logs the request classification without credentials.
func (r *Request) MarshalZerologObject(e *zerolog.Event) {
	e.Str("type", r.rawType).
		Str("request_id", r.requestID).
		Str("application_id", r.session.ApplicationID).
		Bool("valid", r.valid)
	if r.intentName != "" {
		e.Str("intent", r.intentName)
	}
	if r.locale != "" {
		e.Str("locale", r.locale)
	}
	if r.dialogState != "" {
		e.Str("dialog_state", r.dialogState)
	}
}

func typeLabel(t string) string {
	switch {
	case t == "":
		return "empty"
	case t == TypeIntent, t == TypeLaunch, t == TypeSessionEnded, t == TypePermissionAccepted:
		return t
	case strings.Contains(t, playbackMarker):
		return playbackMarker
	default:
		return "other"
	}
}
