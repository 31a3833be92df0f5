// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldRequestID     = "request_id"
	FieldApplicationID = "application_id"
	FieldUserID        = "user_id"
	FieldDeviceID      = "device_id"
	FieldReferenceID   = "reference_id"

	// Process fields
	FieldEvent     = "event"
	FieldComponent = "component"
	FieldHandler   = "handler"

	// Turn fields
	FieldRequestType = "request_type"
	FieldIntent      = "intent"
	FieldLocale      = "locale"
	FieldDialogState = "dialog_state"
	FieldTemplate    = "template"

	// Outbound fields
	FieldStep       = "step"
	FieldStatusCode = "status_code"
	FieldStage      = "stage"
	FieldPath       = "path"
	FieldDuration   = "duration"
)
