// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package config provides configuration management for skillgate.
//
// Configuration is resolved once at startup (ENV > YAML file > defaults) and
// passed by value into every component that needs it. Nothing mutates an
// AppConfig after Load returns.
package config

import "time"

// Location permission modes accepted by skill.locationPermission.
const (
	LocationPermissionNone                 = "none"
	LocationPermissionFullAddress          = "full_address"
	LocationPermissionCountryAndPostalCode = "country_and_postal_code"
)

// DefaultWebhookPath is the route the platform posts requests to.
const DefaultWebhookPath = "/alexa/intent_handlers"

// Token cache backends accepted by proactive.tokenCache.
const (
	TokenCacheNone   = "none"
	TokenCacheMemory = "memory"
	TokenCacheRedis  = "redis"
)

// AppConfig is the resolved, immutable process configuration.
type AppConfig struct {
	// Version is injected from the binary and never read from file or ENV.
	Version string `yaml:"-"`

	LogLevel   string `yaml:"logLevel"`
	LogService string `yaml:"logService"`

	API       APIConfig       `yaml:"api"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Skill     SkillConfig     `yaml:"skill"`
	Proactive ProactiveConfig `yaml:"proactive"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Server    ServerFileConfig `yaml:"server"`
}

// APIConfig configures the webhook ingress.
type APIConfig struct {
	ListenAddr  string          `yaml:"listenAddr"`
	WebhookPath string          `yaml:"webhookPath"`
	RateLimit   RateLimitConfig `yaml:"rateLimit"`
}

// RateLimitConfig configures per-IP ingress rate limiting.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
}

// MetricsConfig configures the Prometheus listener.
type MetricsConfig struct {
	Enabled    bool   `yaml:"enabled"`
	ListenAddr string `yaml:"listenAddr"`
}

// SkillConfig holds the skill identity and turn-handling settings.
type SkillConfig struct {
	// IDs is the allow-list of application ids accepted by the webhook.
	IDs []string `yaml:"ids"`
	// LocationPermission selects which device address lookup is performed, if any.
	LocationPermission string `yaml:"locationPermission"`
	// Intents lists interaction-model intents that must have a registered handler.
	Intents []string `yaml:"intents"`
	// TemplatesDir is the root of the speech/card/document templates.
	TemplatesDir string `yaml:"templatesDir"`
	// DeviceAPITimeout bounds the device address lookup.
	DeviceAPITimeout time.Duration `yaml:"deviceAPITimeout"`
}

// ProactiveConfig configures the proactive events client.
type ProactiveConfig struct {
	BaseURL      string        `yaml:"baseURL"`
	TokenURL     string        `yaml:"tokenURL"`
	ClientID     string        `yaml:"clientID"`
	ClientSecret string        `yaml:"clientSecret"`
	Production   bool          `yaml:"production"`
	Timeout      time.Duration `yaml:"timeout"`
	// RateLimit caps published events per second. Zero disables pacing.
	RateLimit  float64     `yaml:"rateLimit"`
	TokenCache string      `yaml:"tokenCache"`
	Redis      RedisConfig `yaml:"redis"`
}

// RedisConfig holds Redis connection configuration for the token cache.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// TelemetryConfig configures OpenTelemetry tracing.
type TelemetryConfig struct {
	Enabled      bool    `yaml:"enabled"`
	Exporter     string  `yaml:"exporter"`
	Endpoint     string  `yaml:"endpoint"`
	SamplingRate float64 `yaml:"samplingRate"`
	Environment  string  `yaml:"environment"`
}

// ServerFileConfig carries HTTP server tuning from the config file.
type ServerFileConfig struct {
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	IdleTimeout     time.Duration `yaml:"idleTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
	MaxHeaderBytes  int           `yaml:"maxHeaderBytes"`
}

// Defaults returns the baseline configuration before file and ENV are applied.
func Defaults() AppConfig {
	return AppConfig{
		LogLevel:   "info",
		LogService: "skillgate",
		API: APIConfig{
			ListenAddr:  ":8080",
			WebhookPath: DefaultWebhookPath,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 600,
			},
		},
		Metrics: MetricsConfig{
			Enabled:    true,
			ListenAddr: ":9090",
		},
		Skill: SkillConfig{
			LocationPermission: LocationPermissionNone,
			DeviceAPITimeout:   3 * time.Second,
		},
		Proactive: ProactiveConfig{
			BaseURL:    "https://api.amazonalexa.com/",
			TokenURL:   "https://api.amazon.com/auth/o2/token",
			Timeout:    10 * time.Second,
			TokenCache: TokenCacheNone,
		},
		Telemetry: TelemetryConfig{
			Exporter:     "grpc",
			Endpoint:     "localhost:4317",
			SamplingRate: 1.0,
			Environment:  "production",
		},
		Server: ServerFileConfig{
			ReadTimeout:     defaultReadTimeout,
			WriteTimeout:    defaultWriteTimeout,
			IdleTimeout:     defaultIdleTimeout,
			ShutdownTimeout: defaultShutdownTimeout,
			MaxHeaderBytes:  defaultMaxHeaderBytes,
		},
	}
}
