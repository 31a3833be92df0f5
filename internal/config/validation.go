// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"strings"

	"github.com/ManuGH/skillgate/internal/validate"
)

// Validate validates an AppConfig using the centralized validation package
func Validate(cfg AppConfig) error {
	v := validate.New()

	v.OneOf("LogLevel", cfg.LogLevel, []string{"trace", "debug", "info", "warn", "error"})

	// Ingress
	v.ListenAddr("API.ListenAddr", cfg.API.ListenAddr)
	if !strings.HasPrefix(cfg.API.WebhookPath, "/") {
		v.AddError("API.WebhookPath", "must start with /", cfg.API.WebhookPath)
	}
	if cfg.API.RateLimit.Enabled {
		v.Range("API.RateLimit.RequestsPerMinute", cfg.API.RateLimit.RequestsPerMinute, 1, 100000)
	}
	if cfg.Metrics.Enabled {
		v.ListenAddr("Metrics.ListenAddr", cfg.Metrics.ListenAddr)
	}

	// Skill identity
	v.NotEmptyList("Skill.IDs", cfg.Skill.IDs)
	v.OneOf("Skill.LocationPermission", cfg.Skill.LocationPermission, []string{
		LocationPermissionNone,
		LocationPermissionFullAddress,
		LocationPermissionCountryAndPostalCode,
	})
	v.PositiveDuration("Skill.DeviceAPITimeout", cfg.Skill.DeviceAPITimeout)
	v.ExistingDirectory("Skill.TemplatesDir", cfg.Skill.TemplatesDir)

	// Proactive events
	v.URL("Proactive.BaseURL", cfg.Proactive.BaseURL, []string{"http", "https"})
	v.URL("Proactive.TokenURL", cfg.Proactive.TokenURL, []string{"http", "https"})
	v.PositiveDuration("Proactive.Timeout", cfg.Proactive.Timeout)
	if cfg.Proactive.RateLimit < 0 {
		v.AddError("Proactive.RateLimit", "cannot be negative", cfg.Proactive.RateLimit)
	}
	v.OneOf("Proactive.TokenCache", cfg.Proactive.TokenCache, []string{TokenCacheNone, TokenCacheMemory, TokenCacheRedis})
	if cfg.Proactive.TokenCache == TokenCacheRedis {
		v.NotEmpty("Proactive.Redis.Addr", cfg.Proactive.Redis.Addr)
		v.Range("Proactive.Redis.DB", cfg.Proactive.Redis.DB, 0, 15)
	}

	// Telemetry
	if cfg.Telemetry.Enabled {
		v.OneOf("Telemetry.Exporter", cfg.Telemetry.Exporter, []string{"grpc", "http"})
		v.NotEmpty("Telemetry.Endpoint", cfg.Telemetry.Endpoint)
		v.FloatRange("Telemetry.SamplingRate", cfg.Telemetry.SamplingRate, 0, 1)
	}

	// Server
	if cfg.Server.WriteTimeout < 0 {
		v.AddError("Server.WriteTimeout", "cannot be negative", cfg.Server.WriteTimeout)
	}

	return v.Err()
}

// HasProactiveCredentials reports whether the proactive client can authenticate.
func (c AppConfig) HasProactiveCredentials() bool {
	return strings.TrimSpace(c.Proactive.ClientID) != "" && strings.TrimSpace(c.Proactive.ClientSecret) != ""
}
