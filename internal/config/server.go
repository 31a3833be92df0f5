// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"time"
)

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	// ListenAddr is the address to listen on (e.g., ":8080")
	ListenAddr string

	// ReadTimeout is the maximum duration for reading the entire request
	ReadTimeout time.Duration

	// WriteTimeout is the maximum duration before timing out writes of the response
	WriteTimeout time.Duration

	// IdleTimeout is the maximum amount of time to wait for the next request
	IdleTimeout time.Duration

	// MaxHeaderBytes controls the maximum number of bytes the server will read parsing the request header's keys and values
	MaxHeaderBytes int

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown
	ShutdownTimeout time.Duration
}

const (
	// The platform expects an answer well within 8s; a turn never streams.
	defaultReadTimeout     = 10 * time.Second
	defaultWriteTimeout    = 10 * time.Second
	defaultIdleTimeout     = 120 * time.Second
	defaultMaxHeaderBytes  = 1 << 20 // 1 MB
	defaultShutdownTimeout = 15 * time.Second
	minShutdownTimeout     = 3 * time.Second
)

// ParseServerConfigForApp resolves the HTTP server config from a loaded AppConfig,
// filling zero values with defaults.
func ParseServerConfigForApp(cfg AppConfig) ServerConfig {
	out := ServerConfig{
		ListenAddr:      cfg.API.ListenAddr,
		ReadTimeout:     defaultReadTimeout,
		WriteTimeout:    defaultWriteTimeout,
		IdleTimeout:     defaultIdleTimeout,
		MaxHeaderBytes:  defaultMaxHeaderBytes,
		ShutdownTimeout: defaultShutdownTimeout,
	}
	if cfg.Server.ReadTimeout > 0 {
		out.ReadTimeout = cfg.Server.ReadTimeout
	}
	if cfg.Server.WriteTimeout > 0 {
		out.WriteTimeout = cfg.Server.WriteTimeout
	}
	if cfg.Server.IdleTimeout > 0 {
		out.IdleTimeout = cfg.Server.IdleTimeout
	}
	if cfg.Server.MaxHeaderBytes > 0 {
		out.MaxHeaderBytes = cfg.Server.MaxHeaderBytes
	}
	if cfg.Server.ShutdownTimeout > 0 {
		out.ShutdownTimeout = cfg.Server.ShutdownTimeout
	}
	if out.ShutdownTimeout < minShutdownTimeout {
		out.ShutdownTimeout = minShutdownTimeout
	}
	return out
}
