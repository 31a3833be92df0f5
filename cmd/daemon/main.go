// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ManuGH/skillgate/internal/api"
	"github.com/ManuGH/skillgate/internal/config"
	"github.com/ManuGH/skillgate/internal/daemon"
	"github.com/ManuGH/skillgate/internal/health"
	xglog "github.com/ManuGH/skillgate/internal/log"
	"github.com/ManuGH/skillgate/internal/version"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "config":
			os.Exit(runConfigCLI(os.Args[2:]))
		case "proactive":
			os.Exit(runProactiveCLI(os.Args[2:]))
		}
	}

	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "", "path to config file (YAML)")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		os.Exit(0)
	}

	// Safe defaults until config is loaded
	xglog.Configure(xglog.Config{
		Level:   "info",
		Service: "skillgate",
		Version: version.Version,
	})
	logger := xglog.WithComponent("daemon")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	path := strings.TrimSpace(*configPath)
	if path == "" {
		path = resolveDefaultConfigPath()
	}

	cfg, err := config.NewLoader(path, version.Version).Load()
	if err != nil {
		logger.Fatal().
			Err(err).
			Str(xglog.FieldEvent, "config.load_failed").
			Str("config_path", path).
			Msg("failed to load configuration")
	}

	xglog.Configure(xglog.Config{
		Level:   cfg.LogLevel,
		Service: cfg.LogService,
		Version: cfg.Version,
	})
	logger = xglog.WithComponent("daemon")

	source := "env+defaults"
	if path != "" {
		source = "file"
	}
	logger.Info().
		Str(xglog.FieldEvent, "config.loaded").
		Str("source", source).
		Str(xglog.FieldPath, path).
		Msg("configuration loaded")

	rt, err := daemon.Bootstrap(ctx, cfg, daemon.Options{})
	if err != nil {
		logger.Fatal().Err(err).Str(xglog.FieldEvent, "bootstrap.failed").Msg("failed to wire components")
	}

	if err := health.PerformStartupChecks(ctx, cfg, rt.Registry); err != nil {
		_ = rt.Close(context.Background())
		logger.Fatal().
			Err(err).
			Str(xglog.FieldEvent, "startup.check_failed").
			Msg("startup checks failed, verify configuration")
	}

	deps := daemon.Deps{
		Logger:     logger,
		APIHandler: rt.API.Handler(),
	}
	if cfg.Metrics.Enabled {
		deps.MetricsHandler = api.MetricsHandler()
		deps.MetricsAddr = cfg.Metrics.ListenAddr
	}

	serverCfg := config.ParseServerConfigForApp(cfg)
	mgr, err := daemon.NewManager(serverCfg, deps)
	if err != nil {
		_ = rt.Close(context.Background())
		logger.Fatal().Err(err).Str(xglog.FieldEvent, "manager.creation_failed").Msg("failed to create daemon manager")
	}
	rt.RegisterShutdownHooks(mgr)

	logger.Info().
		Str(xglog.FieldEvent, "startup").
		Str("version", version.Version).
		Str("commit", version.Commit).
		Str("build_date", version.Date).
		Str("addr", serverCfg.ListenAddr).
		Str("webhook_path", rt.API.WebhookPath()).
		Int("skill_ids", len(cfg.Skill.IDs)).
		Bool("proactive_credentials", cfg.HasProactiveCredentials()).
		Msg("starting skillgate")

	if err := mgr.Start(ctx); err != nil {
		logger.Fatal().Err(err).Str(xglog.FieldEvent, "manager.failed").Msg("daemon failed")
	}
	logger.Info().Str(xglog.FieldEvent, "shutdown.complete").Msg("server exiting")
}

// resolveDefaultConfigPath returns $SKILLGATE_CONFIG when set.
func resolveDefaultConfigPath() string {
	return strings.TrimSpace(os.Getenv("SKILLGATE_CONFIG"))
}
