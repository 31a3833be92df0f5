// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package health

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/ManuGH/skillgate/internal/config"
	"github.com/ManuGH/skillgate/internal/log"
)

// IntentRequirer reports which of the given intents have no handler.
type IntentRequirer interface {
	Require(names ...string) error
}

// PerformStartupChecks validates the environment before the server starts.
// Every configured interaction-model intent must have a registered handler.
func PerformStartupChecks(ctx context.Context, cfg config.AppConfig, intents IntentRequirer) error {
	logger := log.WithComponent("startup-check")
	logger.Info().Str(log.FieldEvent, "startup.checks_begin").Msg("running pre-flight startup checks")

	if err := checkListenAddr(logger, "api", cfg.API.ListenAddr); err != nil {
		return err
	}
	if cfg.Metrics.Enabled {
		if err := checkListenAddr(logger, "metrics", cfg.Metrics.ListenAddr); err != nil {
			return err
		}
	}

	if dir := cfg.Skill.TemplatesDir; dir != "" {
		if res := NewDirChecker("templates", dir).Check(ctx); res.Status == StatusUnhealthy {
			return fmt.Errorf("templates directory %s: %s", dir, res.Error)
		}
		logger.Info().Str(log.FieldPath, dir).Msg("templates directory is readable")
	}

	if intents != nil && len(cfg.Skill.Intents) > 0 {
		if err := intents.Require(cfg.Skill.Intents...); err != nil {
			return fmt.Errorf("intent handlers: %w", err)
		}
		logger.Info().Int("count", len(cfg.Skill.Intents)).Msg("all configured intents have handlers")
	}

	if len(cfg.Skill.IDs) == 0 {
		logger.Warn().Msg("no skill ids configured; every request will be treated as invalid")
	}

	logger.Info().Str(log.FieldEvent, "startup.checks_passed").Msg("all startup checks passed")
	return nil
}

func checkListenAddr(logger zerolog.Logger, name, addr string) error {
	if addr == "" {
		return fmt.Errorf("%s listen address is empty", name)
	}
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("invalid %s listen address %q: %w", name, addr, err)
	}
	portNum, err := strconv.Atoi(port)
	if err != nil || portNum < 0 || portNum > 65535 {
		return fmt.Errorf("invalid %s listen port %q in %q", name, port, addr)
	}
	logger.Debug().Str("addr", addr).Str("listener", name).Msg("listen address is valid")
	return nil
}
