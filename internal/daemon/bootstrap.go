// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package daemon wires the webhook components from configuration and owns
// the server lifecycle.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/ManuGH/skillgate/internal/alexa/dispatch"
	"github.com/ManuGH/skillgate/internal/alexa/handlers"
	"github.com/ManuGH/skillgate/internal/alexa/proactive"
	"github.com/ManuGH/skillgate/internal/alexa/render"
	"github.com/ManuGH/skillgate/internal/alexa/request"
	"github.com/ManuGH/skillgate/internal/api"
	"github.com/ManuGH/skillgate/internal/cache"
	"github.com/ManuGH/skillgate/internal/config"
	"github.com/ManuGH/skillgate/internal/health"
	"github.com/ManuGH/skillgate/internal/log"
	"github.com/ManuGH/skillgate/internal/platform/httpx"
	"github.com/ManuGH/skillgate/internal/telemetry"
)

const memoryCacheCleanup = time.Minute

// Options customises Bootstrap.
type Options struct {
	// Registry holds the custom intent handlers. Nil means none.
	Registry *dispatch.Registry
	// Templates is searched before the templates directory and the
	// embedded defaults.
	Templates fs.FS
	Logger    *zerolog.Logger
}

// Runtime is the wired application of one process.
type Runtime struct {
	Config     config.AppConfig
	Registry   *dispatch.Registry
	Dispatcher *dispatch.Dispatcher
	Health     *health.Manager
	API        *api.Server
	Proactive  *proactive.Client

	closers []namedHook
	logger  zerolog.Logger
}

// Bootstrap builds every component from cfg. On error, anything already
// opened is closed again.
func Bootstrap(ctx context.Context, cfg config.AppConfig, opts Options) (rt *Runtime, err error) {
	logger := log.WithComponent("bootstrap")
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	rt = &Runtime{Config: cfg, logger: logger}
	defer func() {
		if err != nil {
			_ = rt.Close(context.WithoutCancel(ctx))
			rt = nil
		}
	}()

	tp, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    cfg.LogService,
		ServiceVersion: cfg.Version,
		Environment:    cfg.Telemetry.Environment,
		ExporterType:   cfg.Telemetry.Exporter,
		Endpoint:       cfg.Telemetry.Endpoint,
		SamplingRate:   cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		return nil, fmt.Errorf("telemetry: %w", err)
	}
	rt.addCloser("telemetry", tp.Shutdown)

	store, err := NewTokenCache(cfg.Proactive, logger)
	if err != nil {
		return nil, err
	}
	if store != nil {
		rt.addCloser("token_cache", func(context.Context) error { return store.Close() })
	}
	rt.Proactive = NewProactiveClient(cfg, store)

	rt.Registry = opts.Registry
	if rt.Registry == nil {
		rt.Registry = dispatch.NewRegistry()
	}
	rt.Dispatcher, err = dispatch.New(handlers.Builtins(), rt.Registry, dispatch.Options{})
	if err != nil {
		return nil, fmt.Errorf("dispatcher: %w", err)
	}

	var layers []fs.FS
	if opts.Templates != nil {
		layers = append(layers, opts.Templates)
	}
	if dir := cfg.Skill.TemplatesDir; dir != "" {
		layers = append(layers, os.DirFS(dir))
	}
	layers = append(layers, render.DefaultTemplates())
	composer := render.NewComposer(render.NewTemplateRenderer(layers...), log.WithComponent("render"))

	rt.Health = health.NewManager(cfg.Version)
	rt.Health.RegisterChecker(health.NewDirChecker("templates", cfg.Skill.TemplatesDir))
	rt.Health.RegisterChecker(health.NewFuncChecker("intent_handlers", health.StatusUnhealthy, func(context.Context) error {
		return rt.Registry.Require(cfg.Skill.Intents...)
	}))
	if pinger, ok := store.(interface{ HealthCheck(context.Context) error }); ok {
		rt.Health.RegisterChecker(health.NewFuncChecker("token_cache", health.StatusDegraded, pinger.HealthCheck))
	}

	rt.API = api.New(api.Deps{
		Config:        cfg,
		RequestConfig: RequestConfig(cfg),
		Dispatcher:    rt.Dispatcher,
		Composer:      composer,
		Health:        rt.Health,
	})

	logger.Info().
		Str(log.FieldEvent, "bootstrap.completed").
		Strs("custom_intents", rt.Registry.Names()).
		Str("token_cache", cfg.Proactive.TokenCache).
		Str("stage", rt.Proactive.Stage()).
		Msg("components wired")
	return rt, nil
}

// RequestConfig derives the request parsing settings from cfg.
func RequestConfig(cfg config.AppConfig) request.Config {
	return request.Config{
		SkillIDs:           cfg.Skill.IDs,
		LocationPermission: request.LocationPermission(cfg.Skill.LocationPermission),
		HTTPClient:         httpx.NewClient(cfg.Skill.DeviceAPITimeout),
	}
}

// TokenCache is a cache that must be closed on shutdown.
type TokenCache interface {
	cache.Cache
	Close() error
}

// NewTokenCache opens the configured proactive token cache. The "none"
// backend yields a nil cache.
func NewTokenCache(cfg config.ProactiveConfig, logger zerolog.Logger) (TokenCache, error) {
	switch cfg.TokenCache {
	case "", config.TokenCacheNone:
		return nil, nil
	case config.TokenCacheMemory:
		return cache.NewMemory(memoryCacheCleanup), nil
	case config.TokenCacheRedis:
		rc, err := cache.NewRedis(cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("token cache: %w", err)
		}
		return rc, nil
	default:
		return nil, fmt.Errorf("token cache: unknown backend %q", cfg.TokenCache)
	}
}

// NewProactiveClient builds the proactive events client from cfg. A nil
// store fetches a fresh token for every publish.
func NewProactiveClient(cfg config.AppConfig, store cache.Cache) *proactive.Client {
	opts := proactive.Options{
		BaseURL:  cfg.Proactive.BaseURL,
		TokenURL: cfg.Proactive.TokenURL,
		Credentials: proactive.Credentials{
			ClientID:     cfg.Proactive.ClientID,
			ClientSecret: cfg.Proactive.ClientSecret,
		},
		Production: cfg.Proactive.Production,
		HTTPClient: httpx.NewClient(cfg.Proactive.Timeout),
	}
	if cfg.Proactive.RateLimit > 0 {
		opts.Limiter = rate.NewLimiter(rate.Limit(cfg.Proactive.RateLimit), 1)
	}
	if store != nil {
		opts.TokenCache = store
	}
	return proactive.New(opts)
}

func (rt *Runtime) addCloser(name string, fn ShutdownHook) {
	rt.closers = append(rt.closers, namedHook{name: name, hook: fn})
}

// RegisterShutdownHooks hands the runtime's resources to m for cleanup.
func (rt *Runtime) RegisterShutdownHooks(m Manager) {
	for _, c := range rt.closers {
		m.RegisterShutdownHook(c.name, c.hook)
	}
	rt.closers = nil
}

// Close releases resources not handed to a Manager, in reverse order.
func (rt *Runtime) Close(ctx context.Context) error {
	var errs []error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i].hook(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", rt.closers[i].name, err))
		}
	}
	rt.closers = nil
	return errors.Join(errs...)
}
