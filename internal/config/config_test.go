// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ManuGH/skillgate/internal/validate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_DefaultsWithRequiredEnv(t *testing.T) {
	t.Setenv(EnvSkillIDs, "amzn1.ask.skill.Y")

	cfg, err := NewLoader("", "v1.2.3").Load()
	require.NoError(t, err)

	assert.Equal(t, "v1.2.3", cfg.Version)
	assert.Equal(t, []string{"amzn1.ask.skill.Y"}, cfg.Skill.IDs)
	assert.Equal(t, LocationPermissionNone, cfg.Skill.LocationPermission)
	assert.Equal(t, 3*time.Second, cfg.Skill.DeviceAPITimeout)
	assert.Equal(t, "/alexa/intent_handlers", cfg.API.WebhookPath)
	assert.Equal(t, "https://api.amazonalexa.com/", cfg.Proactive.BaseURL)
	assert.Equal(t, "https://api.amazon.com/auth/o2/token", cfg.Proactive.TokenURL)
	assert.Equal(t, TokenCacheNone, cfg.Proactive.TokenCache)
	assert.False(t, cfg.Proactive.Production)
	assert.False(t, cfg.HasProactiveCredentials())
}

func TestLoad_MissingSkillIDsFailsValidation(t *testing.T) {
	_, err := NewLoader("", "v").Load()
	require.Error(t, err)

	var verr validate.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "Skill.IDs", verr.Errors()[0].Field)
}

func TestLoad_FileThenEnvPrecedence(t *testing.T) {
	path := writeConfig(t, `
logLevel: debug
skill:
  ids: ["amzn1.ask.skill.FILE"]
  locationPermission: full_address
  intents: ["WeatherIntent"]
proactive:
  clientID: file-client
  clientSecret: file-secret
  production: true
  timeout: 4s
`)
	t.Setenv(EnvSkillIDs, "amzn1.ask.skill.A, amzn1.ask.skill.B")
	t.Setenv(EnvProactiveClientID, "env-client")

	l := NewLoader(path, "v")
	cfg, err := l.Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, []string{"amzn1.ask.skill.A", "amzn1.ask.skill.B"}, cfg.Skill.IDs)
	assert.Equal(t, LocationPermissionFullAddress, cfg.Skill.LocationPermission)
	assert.Equal(t, []string{"WeatherIntent"}, cfg.Skill.Intents)
	assert.Equal(t, "env-client", cfg.Proactive.ClientID)
	assert.Equal(t, "file-secret", cfg.Proactive.ClientSecret)
	assert.True(t, cfg.Proactive.Production)
	assert.Equal(t, 4*time.Second, cfg.Proactive.Timeout)
	assert.True(t, cfg.HasProactiveCredentials())

	_, consumed := l.ConsumedEnvKeys[EnvSkillIDs]
	assert.True(t, consumed)
}

func TestLoad_UnknownFieldRejected(t *testing.T) {
	path := writeConfig(t, "skill:\n  ids: [x]\n  bogus: 1\n")

	_, err := NewLoader(path, "v").Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownConfigField)
}

func TestLoad_MultipleDocumentsRejected(t *testing.T) {
	path := writeConfig(t, "skill:\n  ids: [x]\n---\nlogLevel: info\n")

	_, err := NewLoader(path, "v").Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "multiple documents")
}

func TestLoad_UnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o600))

	_, err := NewLoader(path, "v").Load()
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoad_EmptyFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, "")
	t.Setenv(EnvSkillIDs, "amzn1.ask.skill.Y")

	cfg, err := NewLoader(path, "v").Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.API.ListenAddr)
}

func TestValidate_Rules(t *testing.T) {
	base := Defaults()
	base.Skill.IDs = []string{"amzn1.ask.skill.Y"}
	require.NoError(t, Validate(base))

	tests := []struct {
		name  string
		field string
		mut   func(*AppConfig)
	}{
		{"location mode", "Skill.LocationPermission", func(c *AppConfig) { c.Skill.LocationPermission = "gps" }},
		{"token cache", "Proactive.TokenCache", func(c *AppConfig) { c.Proactive.TokenCache = "disk" }},
		{"redis addr", "Proactive.Redis.Addr", func(c *AppConfig) { c.Proactive.TokenCache = TokenCacheRedis }},
		{"base url", "Proactive.BaseURL", func(c *AppConfig) { c.Proactive.BaseURL = "not a url" }},
		{"webhook path", "API.WebhookPath", func(c *AppConfig) { c.API.WebhookPath = "alexa" }},
		{"sampling", "Telemetry.SamplingRate", func(c *AppConfig) {
			c.Telemetry.Enabled = true
			c.Telemetry.SamplingRate = 2
		}},
		{"rate limit", "Proactive.RateLimit", func(c *AppConfig) { c.Proactive.RateLimit = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			cfg.Skill.IDs = []string{"amzn1.ask.skill.Y"}
			tt.mut(&cfg)

			err := Validate(cfg)
			require.Error(t, err)
			var verr validate.ValidationError
			require.True(t, errors.As(err, &verr))
			fields := make([]string, 0, len(verr.Errors()))
			for _, e := range verr.Errors() {
				fields = append(fields, e.Field)
			}
			assert.Contains(t, fields, tt.field)
		})
	}
}

func TestParseEnvHelpers(t *testing.T) {
	t.Setenv("SKILLGATE_TEST_INT", "42")
	t.Setenv("SKILLGATE_TEST_BAD_INT", "forty")
	t.Setenv("SKILLGATE_TEST_BOOL", "yes")
	t.Setenv("SKILLGATE_TEST_DUR", "250ms")
	t.Setenv("SKILLGATE_TEST_LIST", " a, ,b ")
	t.Setenv("SKILLGATE_TEST_EMPTY", "")

	assert.Equal(t, 42, ParseInt("SKILLGATE_TEST_INT", 1))
	assert.Equal(t, 1, ParseInt("SKILLGATE_TEST_BAD_INT", 1))
	assert.True(t, ParseBool("SKILLGATE_TEST_BOOL", false))
	assert.Equal(t, 250*time.Millisecond, ParseDuration("SKILLGATE_TEST_DUR", time.Second))
	assert.Equal(t, []string{"a", "b"}, ParseList("SKILLGATE_TEST_LIST", nil))
	assert.Equal(t, "fallback", ParseString("SKILLGATE_TEST_EMPTY", "fallback"))
	assert.Equal(t, "fallback", ParseString("SKILLGATE_TEST_UNSET", "fallback"))
}

func TestParseServerConfigForApp(t *testing.T) {
	cfg := Defaults()
	cfg.Server.ShutdownTimeout = time.Second
	cfg.Server.ReadTimeout = 0

	sc := ParseServerConfigForApp(cfg)
	assert.Equal(t, ":8080", sc.ListenAddr)
	assert.Equal(t, defaultReadTimeout, sc.ReadTimeout)
	assert.Equal(t, minShutdownTimeout, sc.ShutdownTimeout)
	assert.Equal(t, defaultMaxHeaderBytes, sc.MaxHeaderBytes)
}
