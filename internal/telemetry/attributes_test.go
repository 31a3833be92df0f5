// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package telemetry

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
)

func attrMap(attrs []attribute.KeyValue) map[string]attribute.Value {
	m := make(map[string]attribute.Value, len(attrs))
	for _, a := range attrs {
		m[string(a.Key)] = a.Value
	}
	return m
}

func TestHTTPAttributes(t *testing.T) {
	m := attrMap(HTTPAttributes("POST", "/alexa/intent_handlers", "http://localhost:8080/alexa/intent_handlers", 200))
	require.Len(t, m, 4)
	assert.Equal(t, "POST", m[HTTPMethodKey].AsString())
	assert.Equal(t, "/alexa/intent_handlers", m[HTTPRouteKey].AsString())
	assert.Equal(t, int64(200), m[HTTPStatusCodeKey].AsInt64())
}

func TestRequestAttributes(t *testing.T) {
	m := attrMap(RequestAttributes("IntentRequest", "req-1", "PlaySong", "en-US", true))
	require.Len(t, m, 5)
	assert.Equal(t, "PlaySong", m[IntentKey].AsString())
	assert.True(t, m[RequestValidKey].AsBool())

	m = attrMap(RequestAttributes("LaunchRequest", "", "", "", false))
	require.Len(t, m, 2)
	assert.NotContains(t, m, IntentKey)
	assert.False(t, m[RequestValidKey].AsBool())
}

func TestDispatchAttributes(t *testing.T) {
	m := attrMap(DispatchAttributes("pause", false, true, 1))
	assert.Equal(t, "pause", m[HandlerKey].AsString())
	assert.False(t, m[DisplayCardKey].AsBool())
	assert.True(t, m[EndSessionKey].AsBool())
	assert.Equal(t, int64(1), m[DirectiveCntKey].AsInt64())
}

func TestProactiveAttributes(t *testing.T) {
	m := attrMap(ProactiveAttributes("token", "", "", ""))
	require.Len(t, m, 1)

	m = attrMap(ProactiveAttributes("submit", "development", "AMAZON.MessageAlert.Activated", "ref-1"))
	require.Len(t, m, 4)
	assert.Equal(t, "development", m[ProactiveStage].AsString())
	assert.Equal(t, "ref-1", m[ProactiveRefKey].AsString())
}

func TestErrorAttributes(t *testing.T) {
	m := attrMap(ErrorAttributes(errors.New("boom"), "transport"))
	assert.True(t, m[ErrorKey].AsBool())
	assert.Equal(t, "transport", m[ErrorTypeKey].AsString())
}
