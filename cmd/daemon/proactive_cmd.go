// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ManuGH/skillgate/internal/alexa/proactive"
	"github.com/ManuGH/skillgate/internal/config"
	"github.com/ManuGH/skillgate/internal/daemon"
	xglog "github.com/ManuGH/skillgate/internal/log"
)

func runProactiveCLI(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return proactiveCLI(ctx, args, os.Stdout, os.Stderr)
}

func proactiveCLI(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		printProactiveUsage(stderr)
		return 0
	}
	switch args[0] {
	case "message-alert":
		return runMessageAlert(ctx, args[1:], stdout, stderr)
	default:
		fmt.Fprintf(stderr, "Unknown subcommand: %s\n\n", args[0])
		printProactiveUsage(stderr)
		return 2
	}
}

func printProactiveUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  skillgate proactive message-alert --creator NAME [--count N] [--status UNREAD|FLAGGED]")
	fmt.Fprintln(w, "      [--freshness NEW|OVERDUE] [--reference-id ID] [--expiry 24h] [--file|-f config.yaml]")
}

func runMessageAlert(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("skillgate proactive message-alert", flag.ContinueOnError)
	fs.SetOutput(stderr)
	file := configFileFlag(fs)
	creator := fs.String("creator", "", "name of the message creator")
	count := fs.Int("count", 1, "number of messages")
	status := fs.String("status", proactive.StatusUnread, "message status: UNREAD or FLAGGED")
	freshness := fs.String("freshness", proactive.FreshnessNew, "message freshness: NEW or OVERDUE")
	referenceID := fs.String("reference-id", "", "event reference id (default: random UUID)")
	expiry := fs.Duration("expiry", proactive.DefaultExpiry, "time until the event expires")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, path, err := loadConfig(*file)
	if err != nil {
		fmt.Fprintf(stderr, "Configuration error in %s:\n  %v\n", path, err)
		return 1
	}
	if !cfg.HasProactiveCredentials() {
		fmt.Fprintf(stderr, "Error: %v (set %s and %s)\n", proactive.ErrMissingCredentials,
			config.EnvProactiveClientID, config.EnvProactiveSecret)
		return 2
	}

	xglog.Configure(xglog.Config{Level: cfg.LogLevel, Service: cfg.LogService, Version: cfg.Version, Output: stderr})
	logger := xglog.WithComponent("proactive-cli")

	store, err := daemon.NewTokenCache(cfg.Proactive, logger)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if store != nil {
		defer func() { _ = store.Close() }()
	}
	client := daemon.NewProactiveClient(cfg, store)

	now := time.Now()
	resp, err := client.PublishMessageAlert(ctx, proactive.MessageAlert{
		ReferenceID: *referenceID,
		Timestamp:   now,
		Expiry:      now.Add(*expiry),
		Status:      *status,
		Freshness:   *freshness,
		CreatorName: *creator,
		Count:       *count,
	})
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	fmt.Fprintf(stdout, "%s %d (%s)\n", resp.Step, resp.StatusCode, client.Stage())
	if len(resp.Body) > 0 {
		fmt.Fprintf(stdout, "%s\n", resp.Body)
	}
	if !resp.OK() {
		return 1
	}
	return 0
}
