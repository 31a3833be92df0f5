// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package dispatch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeHandled      = "handled"
	outcomeInvalid      = "invalid"
	outcomeUnrecognized = "unrecognized"
	outcomeConfigError  = "config_error"
	outcomeHandlerError = "handler_error"
)

var dispatchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "skillgate_dispatch_total",
	Help: "Dispatch decisions, by handler and outcome",
}, []string{"handler", "outcome"})
