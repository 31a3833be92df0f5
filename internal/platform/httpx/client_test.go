// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_DefaultTimeout(t *testing.T) {
	client := NewClient(0)
	assert.Equal(t, defaultClientTimeout, client.Timeout)
	require.NotNil(t, client.Transport)
}

func TestNewTransport_CapsDialAndHeaderTimeouts(t *testing.T) {
	transport := newTransport(10 * time.Second)
	assert.Equal(t, defaultDialTimeout, transport.TLSHandshakeTimeout)
	assert.Equal(t, defaultResponseHeaderTimeout, transport.ResponseHeaderTimeout)
	assert.Equal(t, defaultMaxIdleConns, transport.MaxIdleConns)
	assert.Equal(t, defaultMaxIdleConnsPerHost, transport.MaxIdleConnsPerHost)
}

func TestNewTransport_UsesShortTimeoutAsProvided(t *testing.T) {
	want := 1500 * time.Millisecond
	transport := newTransport(want)
	assert.Equal(t, want, transport.TLSHandshakeTimeout)
	assert.Equal(t, want, transport.ResponseHeaderTimeout)
}

func TestNewClient_RoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	resp, err := NewClient(time.Second).Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}
