// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package proactive

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultExpiry is applied when an event has no expiry time.
const DefaultExpiry = 24 * time.Hour

// AudienceMulticast targets every user subscribed to the event.
const AudienceMulticast = "Multicast"

// EventBody is the request body of the proactive events API.
type EventBody struct {
	Timestamp           string               `json:"timestamp"`
	ReferenceID         string               `json:"referenceId"`
	ExpiryTime          string               `json:"expiryTime"`
	Event               Event                `json:"event"`
	LocalizedAttributes []LocalizedAttribute `json:"localizedAttributes,omitempty"`
	RelevantAudience    Audience             `json:"relevantAudience"`
}

// Event is a named event schema instance.
type Event struct {
	Name    string `json:"name"`
	Payload any    `json:"payload"`
}

// LocalizedAttribute carries per-locale strings referenced by the event.
type LocalizedAttribute map[string]string

// Audience selects who receives the event. Multicast carries an empty payload.
type Audience struct {
	Type    string   `json:"type"`
	Payload struct{} `json:"payload"`
}

// EventParams describes an event before defaults are applied.
type EventParams struct {
	Name        string
	Payload     any
	ReferenceID string
	// Timestamp defaults to now.
	Timestamp time.Time
	// Expiry defaults to DefaultExpiry after the effective timestamp.
	Expiry              time.Time
	LocalizedAttributes []LocalizedAttribute
}

// BuildEventBody applies defaults and wraps the event in a multicast
// audience. now is the reference time for defaults. An explicit expiry that
// is not after the timestamp is rejected.
func BuildEventBody(p EventParams, now time.Time) (EventBody, error) {
	if strings.TrimSpace(p.Name) == "" {
		return EventBody{}, fmt.Errorf("%w: event name is empty", ErrInvalidEvent)
	}

	ts := p.Timestamp
	if ts.IsZero() {
		ts = now
	}
	expiry := p.Expiry
	if expiry.IsZero() {
		expiry = ts.Add(DefaultExpiry)
	}
	if !expiry.After(ts) {
		return EventBody{}, fmt.Errorf("%w: expiry %s is not after timestamp %s", ErrInvalidEvent,
			expiry.UTC().Format(time.RFC3339), ts.UTC().Format(time.RFC3339))
	}

	ref := p.ReferenceID
	if ref == "" {
		ref = uuid.NewString()
	}

	return EventBody{
		Timestamp:           ts.UTC().Format(time.RFC3339),
		ReferenceID:         ref,
		ExpiryTime:          expiry.UTC().Format(time.RFC3339),
		Event:               Event{Name: p.Name, Payload: p.Payload},
		LocalizedAttributes: p.LocalizedAttributes,
		RelevantAudience:    Audience{Type: AudienceMulticast},
	}, nil
}
