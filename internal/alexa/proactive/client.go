// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package proactive publishes proactive events to the voice platform using
// an OAuth client-credentials token.
package proactive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/ManuGH/skillgate/internal/cache"
	xglog "github.com/ManuGH/skillgate/internal/log"
	"github.com/ManuGH/skillgate/internal/platform/httpx"
	"github.com/ManuGH/skillgate/internal/telemetry"
)

// Platform endpoints.
const (
	DefaultBaseURL  = "https://api.amazonalexa.com/"
	DefaultTokenURL = "https://api.amazon.com/auth/o2/token"
	DevelopmentPath = "/v1/proactiveEvents/stages/development"
	ProductionPath  = "/v1/proactiveEvents/"
	TokenScope      = "alexa::proactive_events"

	defaultTimeout  = 10 * time.Second
	maxResponseBody = 1 << 20
)

// Credentials are the skill's OAuth client credentials.
type Credentials struct {
	ClientID     string
	ClientSecret string
}

// Options configures a Client.
type Options struct {
	BaseURL     string
	TokenURL    string
	Credentials Credentials
	// Production selects the live stage instead of development.
	Production bool
	HTTPClient *http.Client
	// Limiter paces event submissions. Nil means unlimited.
	Limiter *rate.Limiter
	// TokenSource supplies bearer tokens. Nil fetches a fresh token for
	// every publish, or caches them in TokenCache when that is set.
	TokenSource TokenSource
	TokenCache  cache.Cache
	TokenMargin time.Duration
	Logger      *zerolog.Logger
	Now         func() time.Time
}

// Client talks to the token endpoint and the proactive events API. Apart
// from an optional token cache it holds no state between calls.
type Client struct {
	baseURL  string
	tokenURL string
	creds    Credentials
	prod     bool
	http     *http.Client
	limiter  *rate.Limiter
	tokens   TokenSource
	logger   zerolog.Logger
	tracer   trace.Tracer
	now      func() time.Time
}

// New creates a client. Unset URLs use the platform defaults.
func New(opts Options) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(firstNonEmpty(opts.BaseURL, DefaultBaseURL), "/"),
		tokenURL: firstNonEmpty(opts.TokenURL, DefaultTokenURL),
		creds:    opts.Credentials,
		prod:     opts.Production,
		http:     opts.HTTPClient,
		limiter:  opts.Limiter,
		tokens:   opts.TokenSource,
		logger:   xglog.WithComponent("proactive"),
		tracer:   telemetry.Tracer("skillgate/proactive"),
		now:      opts.Now,
	}
	if c.http == nil {
		c.http = httpx.NewClient(defaultTimeout)
	}
	if opts.Logger != nil {
		c.logger = *opts.Logger
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.tokens == nil {
		c.tokens = FreshTokenSource{Client: c}
		if opts.TokenCache != nil {
			c.tokens = NewCachedTokenSource(c.tokens, opts.TokenCache, opts.TokenMargin)
		}
	}
	return c
}

// Stage returns "production" or "development".
func (c *Client) Stage() string {
	if c.prod {
		return "production"
	}
	return "development"
}

// EventsURL returns the submission endpoint for the configured stage.
func (c *Client) EventsURL() string {
	if c.prod {
		return c.baseURL + ProductionPath
	}
	return c.baseURL + DevelopmentPath
}

// FetchAccessToken requests a client-credentials token. Non-2xx replies are
// returned in the result with a zero token and no error.
func (c *Client) FetchAccessToken(ctx context.Context, creds Credentials) (*TokenResult, error) {
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return nil, ErrMissingCredentials
	}

	ctx, span := c.tracer.Start(ctx, "proactive.token",
		trace.WithAttributes(telemetry.ProactiveAttributes(StepToken, "", "", "")...))
	defer span.End()

	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {creds.ClientID},
		"client_secret": {creds.ClientSecret},
		"scope":         {TokenScope},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.do(req, StepToken, span)
	if err != nil {
		return nil, err
	}

	logger := xglog.WithContext(ctx, c.logger)
	if !resp.OK() {
		logger.Warn().
			Str(xglog.FieldEvent, "proactive.token_rejected").
			Int(xglog.FieldStatusCode, resp.StatusCode).
			Msg("token endpoint returned non-success status")
		return &TokenResult{Response: resp}, nil
	}

	var tok Token
	if err := json.Unmarshal(resp.Body, &tok); err != nil || tok.AccessToken == "" {
		span.SetStatus(codes.Error, "malformed token")
		return nil, ErrMalformedToken
	}

	logger.Debug().
		Str(xglog.FieldEvent, "proactive.token_requested").
		Int("expires_in", tok.ExpiresIn).
		Msg("access token issued")
	return &TokenResult{Token: tok, Response: resp}, nil
}

// BuildEventBody applies defaults relative to the client clock.
func (c *Client) BuildEventBody(p EventParams) (EventBody, error) {
	return BuildEventBody(p, c.now())
}

// Submit posts an event body with the bearer token. The platform reply is
// returned whatever its status.
func (c *Client) Submit(ctx context.Context, accessToken string, body EventBody) (*PlatformResponse, error) {
	ctx, span := c.tracer.Start(ctx, "proactive.submit",
		trace.WithAttributes(telemetry.ProactiveAttributes(StepSubmit, c.Stage(), body.Event.Name, body.ReferenceID)...))
	defer span.End()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("wait for submit slot: %w", err)
		}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("%w: encode body: %v", ErrInvalidEvent, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.EventsURL(), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build submit request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(req, StepSubmit, span)
	if err != nil {
		return nil, err
	}

	logger := xglog.WithContext(ctx, c.logger)
	event := logger.Info()
	if !resp.OK() {
		event = logger.Warn()
	}
	event.
		Str(xglog.FieldEvent, "proactive.event_submitted").
		Str(xglog.FieldStage, c.Stage()).
		Str(xglog.FieldReferenceID, body.ReferenceID).
		Str("event_name", body.Event.Name).
		Int(xglog.FieldStatusCode, resp.StatusCode).
		Msg("proactive event submitted")
	return resp, nil
}

// CreateBroadcastEvent obtains a token and submits body. A non-2xx token
// reply is returned as is and the event is not submitted.
func (c *Client) CreateBroadcastEvent(ctx context.Context, body EventBody) (*PlatformResponse, error) {
	tr, err := c.tokens.Token(ctx, c.creds)
	if err != nil {
		return nil, err
	}
	if tr.Response != nil && !tr.Response.OK() {
		return tr.Response, nil
	}
	resp, err := c.Submit(ctx, tr.Token.AccessToken, body)
	if err == nil && resp.StatusCode == http.StatusUnauthorized {
		if inv, ok := c.tokens.(interface {
			Invalidate(context.Context, Credentials)
		}); ok {
			inv.Invalidate(ctx, c.creds)
		}
	}
	return resp, err
}

// PublishMessageAlert validates alert, builds its event body and broadcasts it.
func (c *Client) PublishMessageAlert(ctx context.Context, alert MessageAlert) (*PlatformResponse, error) {
	if err := alert.Validate(); err != nil {
		return nil, err
	}
	body, err := c.BuildEventBody(alert.Params())
	if err != nil {
		return nil, err
	}
	return c.CreateBroadcastEvent(ctx, body)
}

func (c *Client) do(req *http.Request, step string, span trace.Span) (*PlatformResponse, error) {
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		requestsTotal.WithLabelValues(step, "error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport")
		return nil, &TransportError{Step: step, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody+1))
	if err != nil {
		requestsTotal.WithLabelValues(step, "error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport")
		return nil, &TransportError{Step: step, Err: err}
	}

	truncated := len(body) > maxResponseBody
	if truncated {
		body = body[:maxResponseBody]
		c.logger.Warn().
			Str(xglog.FieldEvent, "proactive.response_truncated").
			Str("step", step).
			Int(xglog.FieldStatusCode, resp.StatusCode).
			Int("limit_bytes", maxResponseBody).
			Msg("platform response body truncated")
	}

	requestsTotal.WithLabelValues(step, statusClass(resp.StatusCode)).Inc()
	requestDuration.WithLabelValues(step).Observe(time.Since(start).Seconds())
	span.SetAttributes(attribute.Int(telemetry.HTTPStatusCodeKey, resp.StatusCode))

	return &PlatformResponse{
		Step:       step,
		StatusCode: resp.StatusCode,
		Header:     resp.Header.Clone(),
		Body:       body,
		Truncated:  truncated,
	}, nil
}

func statusClass(code int) string {
	return fmt.Sprintf("%dxx", code/100)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
