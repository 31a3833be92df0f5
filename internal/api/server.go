// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package api serves the platform webhook over HTTP.
package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/ManuGH/skillgate/internal/alexa/dispatch"
	"github.com/ManuGH/skillgate/internal/alexa/render"
	"github.com/ManuGH/skillgate/internal/alexa/request"
	"github.com/ManuGH/skillgate/internal/api/middleware"
	"github.com/ManuGH/skillgate/internal/config"
	"github.com/ManuGH/skillgate/internal/health"
	"github.com/ManuGH/skillgate/internal/log"
)

// maxBodyBytes bounds an inbound platform request.
const maxBodyBytes = 1 << 20

// Dispatcher selects and runs the handler for a request.
type Dispatcher interface {
	Dispatch(ctx context.Context, req *request.Request) (dispatch.Result, error)
}

// Composer turns a dispatch result into the reply envelope.
type Composer interface {
	Compose(ctx context.Context, res dispatch.Result) (render.Envelope, error)
}

// Deps are the collaborators of a Server.
type Deps struct {
	Config        config.AppConfig
	RequestConfig request.Config
	Dispatcher    Dispatcher
	Composer      Composer
	Health        *health.Manager
	Logger        *zerolog.Logger
}

// Server is the webhook HTTP surface.
type Server struct {
	cfg        config.AppConfig
	reqCfg     request.Config
	dispatcher Dispatcher
	composer   Composer
	health     *health.Manager
	logger     zerolog.Logger
}

// New creates a server from deps. A nil Health gets an empty manager.
func New(deps Deps) *Server {
	logger := log.WithComponent("api")
	if deps.Logger != nil {
		logger = *deps.Logger
	}
	hm := deps.Health
	if hm == nil {
		hm = health.NewManager(deps.Config.Version)
	}
	return &Server{
		cfg:        deps.Config,
		reqCfg:     deps.RequestConfig,
		dispatcher: deps.Dispatcher,
		composer:   deps.Composer,
		health:     hm,
		logger:     logger,
	}
}

// WebhookPath returns the route the platform posts to.
func (s *Server) WebhookPath() string {
	if s.cfg.API.WebhookPath == "" {
		return config.DefaultWebhookPath
	}
	return s.cfg.API.WebhookPath
}

// Handler returns the router with the full middleware stack.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	s.routes(r)
	return r
}

func (s *Server) routes(r chi.Router) {
	webhook := s.WebhookPath()
	middleware.ApplyStack(r, middleware.StackConfig{
		EnableMetrics:        true,
		TracingService:       "skillgate/api",
		EnableLogging:        true,
		DumpPaths:            []string{webhook},
		EnableRateLimit:      s.cfg.API.RateLimit.Enabled,
		RateLimitPerMinute:   s.cfg.API.RateLimit.RequestsPerMinute,
		RateLimitExemptPaths: []string{"/healthz", "/readyz"},
	})

	r.Get("/healthz", s.health.ServeHealth)
	r.Get("/readyz", s.health.ServeReady)
	r.Post(webhook, s.handleWebhook)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeProblem(w, r, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeProblem(w, r, http.StatusMethodNotAllowed, "method not allowed")
	})
}

// MetricsHandler serves the Prometheus registry.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
