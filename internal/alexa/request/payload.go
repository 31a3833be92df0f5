// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package request

import "encoding/json"

// Wire shapes of the inbound platform envelope. Every nested object is a
// pointer so absent keys decode to nil and accessors can check presence.
// Slots and resolutions stay raw and are decoded one entry at a time.

type envelope struct {
	Version string       `json:"version"`
	Session *sessionJSON `json:"session"`
	Context *contextJSON `json:"context"`
	Request *requestJSON `json:"request"`
}

type sessionJSON struct {
	New         bool             `json:"new"`
	SessionID   string           `json:"sessionId"`
	Application *applicationJSON `json:"application"`
	User        *userJSON        `json:"user"`
}

type applicationJSON struct {
	ApplicationID string `json:"applicationId"`
	UserID        string `json:"userId"`
}

type userJSON struct {
	UserID      string `json:"userId"`
	AccessToken string `json:"accessToken"`
}

type contextJSON struct {
	System *systemJSON `json:"System"`
}

type systemJSON struct {
	Application         *applicationJSON           `json:"application"`
	User                *userJSON                  `json:"user"`
	Device              *deviceJSON                `json:"device"`
	SupportedInterfaces map[string]json.RawMessage `json:"supportedInterfaces"`
	APIEndpoint         string                     `json:"apiEndpoint"`
	APIAccessToken      string                     `json:"apiAccessToken"`
}

type deviceJSON struct {
	DeviceID            string                     `json:"deviceId"`
	SupportedInterfaces map[string]json.RawMessage `json:"supportedInterfaces"`
}

type requestJSON struct {
	Type        string      `json:"type"`
	RequestID   string      `json:"requestId"`
	Timestamp   string      `json:"timestamp"`
	Locale      string      `json:"locale"`
	DialogState string      `json:"dialogState"`
	Intent      *intentJSON `json:"intent"`
}

type intentJSON struct {
	Name               string                     `json:"name"`
	ConfirmationStatus string                     `json:"confirmationStatus"`
	Slots              map[string]json.RawMessage `json:"slots"`
}

type slotJSON struct {
	Name               string          `json:"name"`
	Value              string          `json:"value"`
	ConfirmationStatus string          `json:"confirmationStatus"`
	Resolutions        json.RawMessage `json:"resolutions"`
}
