// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Attribute keys shared by spans across the service.
const (
	HTTPMethodKey     = "http.method"
	HTTPStatusCodeKey = "http.status_code"
	HTTPRouteKey      = "http.route"
	HTTPURLKey        = "http.url"
	HTTPUserAgentKey  = "http.user_agent"

	RequestTypeKey   = "alexa.request.type"
	RequestIDKey     = "alexa.request.id"
	RequestValidKey  = "alexa.request.valid"
	IntentKey        = "alexa.intent"
	LocaleKey        = "alexa.locale"
	HandlerKey       = "alexa.handler"
	DisplayCardKey   = "alexa.display_card"
	EndSessionKey    = "alexa.end_session"
	DirectiveCntKey  = "alexa.directives"
	ProactiveStepKey = "proactive.step"
	ProactiveStage   = "proactive.stage"
	ProactiveEvent   = "proactive.event"
	ProactiveRefKey  = "proactive.reference_id"

	ErrorKey     = "error"
	ErrorTypeKey = "error.type"
)

// HTTPAttributes creates common HTTP span attributes.
func HTTPAttributes(method, route, url string, statusCode int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(HTTPMethodKey, method),
		attribute.String(HTTPRouteKey, route),
		attribute.String(HTTPURLKey, url),
		attribute.Int(HTTPStatusCodeKey, statusCode),
	}
}

// RequestAttributes describes a classified inbound request. Empty intent and
// locale values are omitted.
func RequestAttributes(requestType, requestID, intent, locale string, valid bool) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 5)
	attrs = append(attrs,
		attribute.String(RequestTypeKey, requestType),
		attribute.Bool(RequestValidKey, valid),
	)
	if requestID != "" {
		attrs = append(attrs, attribute.String(RequestIDKey, requestID))
	}
	if intent != "" {
		attrs = append(attrs, attribute.String(IntentKey, intent))
	}
	if locale != "" {
		attrs = append(attrs, attribute.String(LocaleKey, locale))
	}
	return attrs
}

// DispatchAttributes describes the handler chosen for a turn.
func DispatchAttributes(handler string, displayCard, endSession bool, directives int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(HandlerKey, handler),
		attribute.Bool(DisplayCardKey, displayCard),
		attribute.Bool(EndSessionKey, endSession),
		attribute.Int(DirectiveCntKey, directives),
	}
}

// ProactiveAttributes describes one proactive events API step.
func ProactiveAttributes(step, stage, eventName, referenceID string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{attribute.String(ProactiveStepKey, step)}
	if stage != "" {
		attrs = append(attrs, attribute.String(ProactiveStage, stage))
	}
	if eventName != "" {
		attrs = append(attrs, attribute.String(ProactiveEvent, eventName))
	}
	if referenceID != "" {
		attrs = append(attrs, attribute.String(ProactiveRefKey, referenceID))
	}
	return attrs
}

// ErrorAttributes creates error-related span attributes.
func ErrorAttributes(_ error, errorType string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Bool(ErrorKey, true),
		attribute.String(ErrorTypeKey, errorType),
	}
}
