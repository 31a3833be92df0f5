// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variable names. All overrides share the SKILLGATE_ prefix.
const (
	EnvLogLevel             = "SKILLGATE_LOG_LEVEL"
	EnvLogService           = "SKILLGATE_LOG_SERVICE"
	EnvListen               = "SKILLGATE_LISTEN"
	EnvWebhookPath          = "SKILLGATE_WEBHOOK_PATH"
	EnvRateLimitEnabled     = "SKILLGATE_RATELIMIT_ENABLED"
	EnvRateLimitRPM         = "SKILLGATE_RATELIMIT_RPM"
	EnvMetricsEnabled       = "SKILLGATE_METRICS_ENABLED"
	EnvMetricsListen        = "SKILLGATE_METRICS_LISTEN"
	EnvSkillIDs             = "SKILLGATE_SKILL_IDS"
	EnvLocationPermission   = "SKILLGATE_LOCATION_PERMISSION"
	EnvTemplatesDir         = "SKILLGATE_TEMPLATES_DIR"
	EnvDeviceAPITimeout     = "SKILLGATE_DEVICE_API_TIMEOUT"
	EnvProactiveBaseURL     = "SKILLGATE_PROACTIVE_BASE_URL"
	EnvProactiveTokenURL    = "SKILLGATE_PROACTIVE_TOKEN_URL"
	EnvProactiveClientID    = "SKILLGATE_PROACTIVE_CLIENT_ID"
	EnvProactiveSecret      = "SKILLGATE_PROACTIVE_CLIENT_SECRET"
	EnvProactiveProduction  = "SKILLGATE_PROACTIVE_PRODUCTION"
	EnvProactiveTimeout     = "SKILLGATE_PROACTIVE_TIMEOUT"
	EnvProactiveRateLimit   = "SKILLGATE_PROACTIVE_RATE_LIMIT"
	EnvProactiveTokenCache  = "SKILLGATE_PROACTIVE_TOKEN_CACHE"
	EnvRedisAddr            = "SKILLGATE_REDIS_ADDR"
	EnvRedisPassword        = "SKILLGATE_REDIS_PASSWORD"
	EnvRedisDB              = "SKILLGATE_REDIS_DB"
	EnvTelemetryEnabled     = "SKILLGATE_TELEMETRY_ENABLED"
	EnvTelemetryExporter    = "SKILLGATE_TELEMETRY_EXPORTER"
	EnvTelemetryEndpoint    = "SKILLGATE_TELEMETRY_ENDPOINT"
	EnvTelemetrySampling    = "SKILLGATE_TELEMETRY_SAMPLING_RATE"
	EnvTelemetryEnvironment = "SKILLGATE_TELEMETRY_ENVIRONMENT"
)

// Loader handles configuration loading with precedence
type Loader struct {
	configPath      string
	version         string
	ConsumedEnvKeys map[string]struct{} // Mechanical tracking of consumed keys
}

// NewLoader creates a new configuration loader
func NewLoader(configPath, version string) *Loader {
	return &Loader{
		configPath:      configPath,
		version:         version,
		ConsumedEnvKeys: make(map[string]struct{}),
	}
}

// Wrapper methods for mechanical connection tracking

func (l *Loader) envString(key, defaultVal string) string {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseString(key, defaultVal)
}

func (l *Loader) envBool(key string, defaultVal bool) bool {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseBool(key, defaultVal)
}

func (l *Loader) envInt(key string, defaultVal int) int {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseInt(key, defaultVal)
}

func (l *Loader) envDuration(key string, defaultVal time.Duration) time.Duration {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseDuration(key, defaultVal)
}

func (l *Loader) envFloat(key string, defaultVal float64) float64 {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseFloat(key, defaultVal)
}

func (l *Loader) envList(key string, defaultVal []string) []string {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseList(key, defaultVal)
}

// Load loads configuration with precedence: ENV > File > Defaults
// It enforces Strict Validated Order: Parse File (Strict) -> Apply Env -> Validate
func (l *Loader) Load() (AppConfig, error) {
	// 1. Defaults
	cfg := Defaults()

	// 2. File (decoded over the defaults; absent keys keep their default)
	if l.configPath != "" {
		if err := l.loadFile(l.configPath, &cfg); err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
	}

	// 3. Environment (highest priority)
	l.mergeEnvConfig(&cfg)

	normalize(&cfg)

	// 4. Version from binary
	cfg.Version = l.version

	// 5. Validate final configuration
	if err := Validate(cfg); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFile decodes a YAML file with STRICT parsing into cfg.
// Unknown fields will cause a fatal error to prevent misconfiguration.
func (l *Loader) loadFile(path string, cfg *AppConfig) error {
	path = filepath.Clean(path)

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("%w: %s (only YAML supported)", ErrUnsupportedFormat, ext)
	}

	// #nosec G304 -- configuration file paths are provided by the operator via CLI/ENV
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true) // Reject unknown fields

	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		if strings.Contains(err.Error(), "field") && strings.Contains(err.Error(), "not found") {
			return fmt.Errorf("strict config parse error: %w: %v", ErrUnknownConfigField, err)
		}
		return fmt.Errorf("strict config parse error: %w", err)
	}

	// Strict: Ensure no multiple documents or trailing content
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("config file contains multiple documents or trailing content")
	}

	return nil
}

func (l *Loader) mergeEnvConfig(cfg *AppConfig) {
	cfg.LogLevel = l.envString(EnvLogLevel, cfg.LogLevel)
	cfg.LogService = l.envString(EnvLogService, cfg.LogService)

	cfg.API.ListenAddr = l.envString(EnvListen, cfg.API.ListenAddr)
	cfg.API.WebhookPath = l.envString(EnvWebhookPath, cfg.API.WebhookPath)
	cfg.API.RateLimit.Enabled = l.envBool(EnvRateLimitEnabled, cfg.API.RateLimit.Enabled)
	cfg.API.RateLimit.RequestsPerMinute = l.envInt(EnvRateLimitRPM, cfg.API.RateLimit.RequestsPerMinute)

	cfg.Metrics.Enabled = l.envBool(EnvMetricsEnabled, cfg.Metrics.Enabled)
	cfg.Metrics.ListenAddr = l.envString(EnvMetricsListen, cfg.Metrics.ListenAddr)

	cfg.Skill.IDs = l.envList(EnvSkillIDs, cfg.Skill.IDs)
	cfg.Skill.LocationPermission = l.envString(EnvLocationPermission, cfg.Skill.LocationPermission)
	cfg.Skill.TemplatesDir = l.envString(EnvTemplatesDir, cfg.Skill.TemplatesDir)
	cfg.Skill.DeviceAPITimeout = l.envDuration(EnvDeviceAPITimeout, cfg.Skill.DeviceAPITimeout)

	cfg.Proactive.BaseURL = l.envString(EnvProactiveBaseURL, cfg.Proactive.BaseURL)
	cfg.Proactive.TokenURL = l.envString(EnvProactiveTokenURL, cfg.Proactive.TokenURL)
	cfg.Proactive.ClientID = l.envString(EnvProactiveClientID, cfg.Proactive.ClientID)
	cfg.Proactive.ClientSecret = l.envString(EnvProactiveSecret, cfg.Proactive.ClientSecret)
	cfg.Proactive.Production = l.envBool(EnvProactiveProduction, cfg.Proactive.Production)
	cfg.Proactive.Timeout = l.envDuration(EnvProactiveTimeout, cfg.Proactive.Timeout)
	cfg.Proactive.RateLimit = l.envFloat(EnvProactiveRateLimit, cfg.Proactive.RateLimit)
	cfg.Proactive.TokenCache = l.envString(EnvProactiveTokenCache, cfg.Proactive.TokenCache)
	cfg.Proactive.Redis.Addr = l.envString(EnvRedisAddr, cfg.Proactive.Redis.Addr)
	cfg.Proactive.Redis.Password = l.envString(EnvRedisPassword, cfg.Proactive.Redis.Password)
	cfg.Proactive.Redis.DB = l.envInt(EnvRedisDB, cfg.Proactive.Redis.DB)

	cfg.Telemetry.Enabled = l.envBool(EnvTelemetryEnabled, cfg.Telemetry.Enabled)
	cfg.Telemetry.Exporter = l.envString(EnvTelemetryExporter, cfg.Telemetry.Exporter)
	cfg.Telemetry.Endpoint = l.envString(EnvTelemetryEndpoint, cfg.Telemetry.Endpoint)
	cfg.Telemetry.SamplingRate = l.envFloat(EnvTelemetrySampling, cfg.Telemetry.SamplingRate)
	cfg.Telemetry.Environment = l.envString(EnvTelemetryEnvironment, cfg.Telemetry.Environment)
}

// normalize trims operator input so validation and consumers see canonical values.
func normalize(cfg *AppConfig) {
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.Skill.LocationPermission = strings.ToLower(strings.TrimSpace(cfg.Skill.LocationPermission))
	if cfg.Skill.LocationPermission == "" {
		cfg.Skill.LocationPermission = LocationPermissionNone
	}
	cfg.Proactive.TokenCache = strings.ToLower(strings.TrimSpace(cfg.Proactive.TokenCache))
	if cfg.Proactive.TokenCache == "" {
		cfg.Proactive.TokenCache = TokenCacheNone
	}
	ids := make([]string, 0, len(cfg.Skill.IDs))
	for _, id := range cfg.Skill.IDs {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	cfg.Skill.IDs = ids
}
