// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package middleware

import (
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/httprate"
)

// DefaultWebhookRequestsPerMinute applies when no explicit limit is configured.
const DefaultWebhookRequestsPerMinute = 600

// RateLimitConfig holds configuration for rate limiting middleware.
type RateLimitConfig struct {
	// RequestLimit is the maximum number of requests allowed in the window
	RequestLimit int
	// WindowSize is the time window for rate limiting
	WindowSize time.Duration
	// KeyFunc extracts the rate limit key, defaults to the client IP
	KeyFunc func(r *http.Request) (string, error)
	// ExemptPaths bypass the limiter entirely
	ExemptPaths []string
}

// RateLimit creates a sliding window rate limiter backed by httprate.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	keyFunc := cfg.KeyFunc
	if keyFunc == nil {
		keyFunc = httprate.KeyByIP
	}

	limiter := httprate.Limit(
		cfg.RequestLimit,
		cfg.WindowSize,
		httprate.WithKeyFuncs(keyFunc),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", fmt.Sprintf("%d", int(cfg.WindowSize.Seconds())))
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"rate_limit_exceeded","detail":"Too many requests. Please try again later."}`))
		}),
	)

	return func(next http.Handler) http.Handler {
		limited := limiter(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if slices.Contains(cfg.ExemptPaths, r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}
			limited.ServeHTTP(w, r)
		})
	}
}

// WebhookRateLimit limits each client IP to perMinute requests. A
// non-positive value selects DefaultWebhookRequestsPerMinute.
func WebhookRateLimit(perMinute int, exempt ...string) func(http.Handler) http.Handler {
	if perMinute <= 0 {
		perMinute = DefaultWebhookRequestsPerMinute
	}
	return RateLimit(RateLimitConfig{
		RequestLimit: perMinute,
		WindowSize:   time.Minute,
		ExemptPaths:  exempt,
	})
}
