// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package request

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsParsed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skillgate_requests_parsed_total",
		Help: "Inbound platform requests parsed, by request type and validity",
	}, []string{"type", "valid"})

	locationLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skillgate_device_location_lookups_total",
		Help: "Device address lookups, by permission mode and result",
	}, []string{"mode", "result"})
)
