// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package daemon

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ManuGH/skillgate/internal/config"
	"github.com/ManuGH/skillgate/internal/log"
)

func testServerConfig(addr string) config.ServerConfig {
	return config.ServerConfig{
		ListenAddr:      addr,
		ReadTimeout:     5 * time.Second,
		WriteTimeout:    10 * time.Second,
		IdleTimeout:     120 * time.Second,
		MaxHeaderBytes:  1 << 20,
		ShutdownTimeout: 5 * time.Second,
	}
}

func reserveListenAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	_ = ln.Close()
	return addr
}

func waitForAddr(t *testing.T, m Manager) net.Addr {
	t.Helper()
	var addr net.Addr
	require.Eventually(t, func() bool {
		addr = m.APIAddr()
		return addr != nil
	}, 2*time.Second, 10*time.Millisecond)
	return addr
}

// noKeepAlive avoids idle connection goroutines outliving the test.
var noKeepAlive = &http.Client{Transport: &http.Transport{DisableKeepAlives: true}, Timeout: 2 * time.Second}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := noKeepAlive.Get(url)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(b)
}

func TestNewManager_Validation(t *testing.T) {
	_, err := NewManager(testServerConfig("127.0.0.1:0"), Deps{
		Logger:     log.WithComponent("test"),
		APIHandler: http.NotFoundHandler(),
	})
	require.NoError(t, err)

	_, err = NewManager(testServerConfig("127.0.0.1:0"), Deps{Logger: zerolog.Nop(), APIHandler: http.NotFoundHandler()})
	assert.ErrorIs(t, err, ErrMissingLogger)

	_, err = NewManager(testServerConfig("127.0.0.1:0"), Deps{Logger: log.WithComponent("test")})
	assert.ErrorIs(t, err, ErrMissingAPIHandler)
}

func TestManager_StartServeShutdown(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	metricsAddr := reserveListenAddr(t)
	m, err := NewManager(testServerConfig("127.0.0.1:0"), Deps{
		Logger: log.WithComponent("test"),
		APIHandler: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("api"))
		}),
		MetricsHandler: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("metrics"))
		}),
		MetricsAddr: metricsAddr,
	})
	require.NoError(t, err)

	var hookOrder []string
	m.RegisterShutdownHook("first", func(context.Context) error {
		hookOrder = append(hookOrder, "first")
		return nil
	})
	m.RegisterShutdownHook("second", func(context.Context) error {
		hookOrder = append(hookOrder, "second")
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Start(ctx) }()

	addr := waitForAddr(t, m)
	code, body := get(t, "http://"+addr.String()+"/")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "api", body)

	_, body = get(t, "http://"+metricsAddr+"/metrics")
	assert.Equal(t, "metrics", body)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("manager did not stop")
	}
	assert.Equal(t, []string{"second", "first"}, hookOrder)
}

func TestManager_ExplicitShutdownUnblocksStart(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	m, err := NewManager(testServerConfig("127.0.0.1:0"), Deps{
		Logger:     log.WithComponent("test"),
		APIHandler: http.NotFoundHandler(),
	})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- m.Start(context.Background()) }()
	waitForAddr(t, m)

	require.NoError(t, m.Shutdown(context.Background()))
	require.NoError(t, m.Shutdown(context.Background()), "second shutdown is a no-op")

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Start did not return after Shutdown")
	}
}

func TestManager_BindFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer func() { _ = ln.Close() }()

	m, err := NewManager(testServerConfig(ln.Addr().String()), Deps{
		Logger:     log.WithComponent("test"),
		APIHandler: http.NotFoundHandler(),
	})
	require.NoError(t, err)

	err = m.Start(context.Background())
	require.ErrorIs(t, err, ErrServerStartFailed)
	assert.True(t, strings.Contains(err.Error(), "API listener"))
}

func TestManager_StartTwiceAndShutdownBeforeStart(t *testing.T) {
	m, err := NewManager(testServerConfig("127.0.0.1:0"), Deps{
		Logger:     log.WithComponent("test"),
		APIHandler: http.NotFoundHandler(),
	})
	require.NoError(t, err)
	assert.ErrorIs(t, m.Shutdown(context.Background()), ErrManagerNotStarted)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Start(ctx) }()
	waitForAddr(t, m)

	assert.ErrorIs(t, m.Start(ctx), ErrAlreadyStarted)
	cancel()
	require.NoError(t, <-done)
}

func TestManager_HookErrorsAreJoined(t *testing.T) {
	m, err := NewManager(testServerConfig("127.0.0.1:0"), Deps{
		Logger:     log.WithComponent("test"),
		APIHandler: http.NotFoundHandler(),
	})
	require.NoError(t, err)

	var ran atomic.Int32
	boom := errors.New("flush failed")
	m.RegisterShutdownHook("telemetry", func(context.Context) error {
		ran.Add(1)
		return boom
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Start(ctx) }()
	waitForAddr(t, m)
	cancel()

	err = <-done
	require.ErrorIs(t, err, boom)
	assert.Equal(t, int32(1), ran.Load())
}
