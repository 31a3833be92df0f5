// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package daemon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ManuGH/skillgate/internal/config"
	"github.com/ManuGH/skillgate/internal/log"
)

// ShutdownHook is a function that performs cleanup during graceful shutdown.
// Hooks are executed in reverse registration order (LIFO).
type ShutdownHook func(ctx context.Context) error

// Manager manages the daemon lifecycle: starting servers, handling shutdown.
type Manager interface {
	// Start binds all configured servers and blocks until ctx is cancelled
	// or a server fails.
	Start(ctx context.Context) error

	// Shutdown gracefully shuts down all servers
	Shutdown(ctx context.Context) error

	// RegisterShutdownHook registers a function to be called during shutdown
	RegisterShutdownHook(name string, hook ShutdownHook)

	// APIAddr is the bound webhook address, nil before Start has bound it.
	APIAddr() net.Addr
}

type manager struct {
	serverCfg config.ServerConfig
	deps      Deps

	apiServer     *http.Server
	metricsServer *http.Server
	apiAddr       net.Addr

	shutdownHooks []namedHook
	stopped       chan struct{}

	started  bool
	stopping bool
	mu       sync.Mutex

	logger zerolog.Logger
}

type namedHook struct {
	name string
	hook ShutdownHook
}

// NewManager creates a new daemon manager with the given configuration and dependencies.
func NewManager(serverCfg config.ServerConfig, deps Deps) (Manager, error) {
	if err := deps.Validate(); err != nil {
		return nil, fmt.Errorf("invalid dependencies: %w", err)
	}

	return &manager{
		serverCfg:     serverCfg,
		deps:          deps,
		logger:        deps.Logger.With().Str(log.FieldComponent, "manager").Logger(),
		shutdownHooks: make([]namedHook, 0),
		stopped:       make(chan struct{}),
	}, nil
}

// Start binds the listeners up front so address errors surface
// synchronously, then serves until ctx is cancelled or a server fails.
func (m *manager) Start(ctx context.Context) error {
	if ctx == nil {
		return fmt.Errorf("start context is nil")
	}

	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return ErrAlreadyStarted
	}
	m.started = true
	m.mu.Unlock()

	m.logger.Info().
		Str(log.FieldEvent, "daemon.starting").
		Str("listen", m.serverCfg.ListenAddr).
		Dur("read_timeout", m.serverCfg.ReadTimeout).
		Dur("write_timeout", m.serverCfg.WriteTimeout).
		Dur("shutdown_timeout", m.serverCfg.ShutdownTimeout).
		Msg("starting daemon manager")

	apiLn, err := net.Listen("tcp", m.serverCfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("%w: API listener %s: %w", ErrServerStartFailed, m.serverCfg.ListenAddr, err)
	}

	var metricsLn net.Listener
	if m.deps.MetricsHandler != nil && m.deps.MetricsAddr != "" {
		metricsLn, err = net.Listen("tcp", m.deps.MetricsAddr)
		if err != nil {
			_ = apiLn.Close()
			return fmt.Errorf("%w: metrics listener %s: %w", ErrServerStartFailed, m.deps.MetricsAddr, err)
		}
	}

	m.mu.Lock()
	m.apiAddr = apiLn.Addr()
	m.apiServer = &http.Server{
		Handler:           m.deps.APIHandler,
		ReadTimeout:       m.serverCfg.ReadTimeout,
		ReadHeaderTimeout: m.serverCfg.ReadTimeout / 2,
		WriteTimeout:      m.serverCfg.WriteTimeout,
		IdleTimeout:       m.serverCfg.IdleTimeout,
		MaxHeaderBytes:    m.serverCfg.MaxHeaderBytes,
	}
	if metricsLn != nil {
		m.metricsServer = &http.Server{
			Handler:           m.deps.MetricsHandler,
			ReadHeaderTimeout: m.serverCfg.ReadTimeout / 2,
		}
	}
	m.mu.Unlock()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		m.logger.Info().Str(log.FieldEvent, "api.server.listening").Str("addr", apiLn.Addr().String()).Msg("API server listening (HTTP)")
		return serve(m.apiServer, apiLn, "API server")
	})
	if metricsLn != nil {
		g.Go(func() error {
			m.logger.Info().Str(log.FieldEvent, "metrics.server.listening").Str("addr", metricsLn.Addr().String()).Msg("metrics server listening")
			return serve(m.metricsServer, metricsLn, "metrics server")
		})
	}
	g.Go(func() error {
		select {
		case <-m.stopped:
			return nil
		case <-gctx.Done():
		}
		if ctx.Err() != nil {
			m.logger.Info().Str(log.FieldEvent, "daemon.shutdown_signal").Msg("shutdown signal received")
		}
		// Detached so shutdown completes even though ctx is already cancelled.
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
		defer cancel()
		return m.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		m.logger.Error().Err(err).Str(log.FieldEvent, "daemon.stopped_with_error").Msg("daemon stopped with error")
		return err
	}
	return nil
}

func serve(srv *http.Server, ln net.Listener, name string) error {
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func (m *manager) APIAddr() net.Addr {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.apiAddr
}

func (m *manager) Shutdown(ctx context.Context) error {
	if ctx == nil {
		return fmt.Errorf("shutdown context is nil")
	}

	m.mu.Lock()
	if m.stopping {
		m.mu.Unlock()
		return nil
	}
	if !m.started {
		m.mu.Unlock()
		return ErrManagerNotStarted
	}
	m.stopping = true
	close(m.stopped)
	apiServer, metricsServer := m.apiServer, m.metricsServer
	hooks := append([]namedHook(nil), m.shutdownHooks...)
	m.mu.Unlock()

	m.logger.Info().Str(log.FieldEvent, "daemon.stopping").Msg("shutting down daemon manager")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.serverCfg.ShutdownTimeout)
	defer cancel()

	var errs []error

	if apiServer != nil {
		m.logger.Debug().Msg("shutting down API server")
		if err := apiServer.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("API server shutdown: %w", err))
		}
	}

	if metricsServer != nil {
		m.logger.Debug().Msg("shutting down metrics server")
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}

	m.logger.Debug().Int("hooks", len(hooks)).Msg("executing shutdown hooks")
	for i := len(hooks) - 1; i >= 0; i-- {
		hook := hooks[i]
		hookStart := time.Now()
		if err := hook.hook(shutdownCtx); err != nil {
			m.logger.Error().
				Err(err).
				Str("hook", hook.name).
				Dur(log.FieldDuration, time.Since(hookStart)).
				Msg("shutdown hook failed")
			errs = append(errs, fmt.Errorf("hook %s: %w", hook.name, err))
		} else {
			m.logger.Debug().
				Str("hook", hook.name).
				Dur(log.FieldDuration, time.Since(hookStart)).
				Msg("shutdown hook completed")
		}
	}

	if len(errs) > 0 {
		m.logger.Error().
			Int("error_count", len(errs)).
			Msg("shutdown completed with errors")
		return fmt.Errorf("shutdown errors: %w", errors.Join(errs...))
	}

	m.logger.Info().Str(log.FieldEvent, "daemon.stopped").Msg("daemon manager stopped cleanly")
	return nil
}

// RegisterShutdownHook registers a cleanup function to be called during shutdown.
func (m *manager) RegisterShutdownHook(name string, hook ShutdownHook) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.shutdownHooks = append(m.shutdownHooks, namedHook{name: name, hook: hook})
	m.logger.Debug().Str("hook", name).Msg("registered shutdown hook")
}
