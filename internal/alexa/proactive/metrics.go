// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package proactive

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skillgate_proactive_requests_total",
		Help: "Proactive events API calls, by step and status class",
	}, []string{"step", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "skillgate_proactive_request_duration_seconds",
		Help:    "Proactive events API call latency, by step",
		Buckets: prometheus.DefBuckets,
	}, []string{"step"})

	tokenCacheTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skillgate_proactive_token_cache_total",
		Help: "Cached token lookups, by result",
	}, []string{"result"})
)
