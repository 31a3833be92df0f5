// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package middleware provides the HTTP middleware stack of the webhook server.
package middleware

import (
	"github.com/go-chi/chi/v5"

	xglog "github.com/ManuGH/skillgate/internal/log"
)

// StackConfig configures the ingress middleware stack.
type StackConfig struct {
	// Observability
	EnableMetrics  bool
	TracingService string // empty disables tracing
	EnableLogging  bool

	// DumpPaths are request paths whose JSON responses are logged at debug level.
	DumpPaths []string

	// Rate limiting
	EnableRateLimit      bool
	RateLimitPerMinute   int
	RateLimitExemptPaths []string
}

// NewRouter constructs a chi router with the middleware stack applied.
func NewRouter(cfg StackConfig) *chi.Mux {
	r := chi.NewRouter()
	ApplyStack(r, cfg)
	return r
}

// ApplyStack applies the middleware stack to r.
func ApplyStack(r chi.Router, cfg StackConfig) {
	// 1. Recoverer (outermost safety net)
	r.Use(Recoverer)
	// 2. RequestID (correlation early)
	r.Use(RequestID)
	// 3. Metrics
	if cfg.EnableMetrics {
		r.Use(Metrics())
	}
	// 4. Tracing
	if cfg.TracingService != "" {
		r.Use(Tracing(cfg.TracingService))
	}
	// 5. Logging (wraps handlers, captures full latency)
	if cfg.EnableLogging {
		r.Use(xglog.Middleware())
	}
	// 6. Response dump
	if len(cfg.DumpPaths) > 0 {
		r.Use(ResponseDump(cfg.DumpPaths...))
	}
	// 7. Rate limit
	if cfg.EnableRateLimit {
		r.Use(WebhookRateLimit(cfg.RateLimitPerMinute, cfg.RateLimitExemptPaths...))
	}
}
