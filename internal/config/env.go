// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ManuGH/skillgate/internal/log"
	"github.com/rs/zerolog"
)

func isSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	return strings.Contains(lower, "token") ||
		strings.Contains(lower, "password") ||
		strings.Contains(lower, "secret")
}

// parseEnv resolves key through parse, falling back to defaultValue when the
// variable is unset, empty or unparsable. Every decision is logged at debug
// level (warn for parse failures); sensitive values are never logged.
func parseEnv[T any](key string, defaultValue T, parse func(string) (T, bool)) T {
	logger := log.WithComponent("config")
	v, ok := os.LookupEnv(key)
	if !ok {
		logger.Debug().
			Str("key", key).
			Str("source", "default").
			Msg("using default value")
		return defaultValue
	}
	if v == "" {
		logger.Debug().
			Str("key", key).
			Str("source", "default").
			Msg("using default value (environment variable is empty)")
		return defaultValue
	}
	parsed, ok := parse(v)
	if !ok {
		ev := logger.Warn().Str("key", key)
		if !isSensitiveKey(key) {
			ev = ev.Str("value", v)
		}
		ev.Msg("invalid value in environment variable, using default")
		return defaultValue
	}
	logEnvSource(logger, key, v)
	return parsed
}

func logEnvSource(logger zerolog.Logger, key, value string) {
	ev := logger.Debug().Str("key", key).Str("source", "environment")
	if isSensitiveKey(key) {
		ev = ev.Bool("sensitive", true)
	} else {
		ev = ev.Str("value", value)
	}
	ev.Msg("using environment variable")
}

// ParseString reads a string from environment variable or returns default value.
func ParseString(key, defaultValue string) string {
	return parseEnv(key, defaultValue, func(v string) (string, bool) { return v, true })
}

// ParseInt reads an integer from environment variable or returns default value.
func ParseInt(key string, defaultValue int) int {
	return parseEnv(key, defaultValue, func(v string) (int, bool) {
		i, err := strconv.Atoi(v)
		return i, err == nil
	})
}

// ParseFloat reads a float64 from environment variable or returns default value.
func ParseFloat(key string, defaultValue float64) float64 {
	return parseEnv(key, defaultValue, func(v string) (float64, bool) {
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	})
}

// ParseDuration reads a duration in Go duration format (e.g. "5s").
func ParseDuration(key string, defaultValue time.Duration) time.Duration {
	return parseEnv(key, defaultValue, func(v string) (time.Duration, bool) {
		d, err := time.ParseDuration(v)
		return d, err == nil
	})
}

// ParseBool reads a boolean from environment variable or returns default value.
// It accepts "true", "false", "1", "0", "yes", "no" (case-insensitive).
func ParseBool(key string, defaultValue bool) bool {
	return parseEnv(key, defaultValue, func(v string) (bool, bool) {
		switch strings.ToLower(v) {
		case "true", "1", "yes":
			return true, true
		case "false", "0", "no":
			return false, true
		}
		return false, false
	})
}

// ParseList reads a comma separated list. Blank entries are dropped.
func ParseList(key string, defaultValue []string) []string {
	return parseEnv(key, defaultValue, func(v string) ([]string, bool) {
		var out []string
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out, len(out) > 0
	})
}
