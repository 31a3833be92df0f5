// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ManuGH/skillgate/internal/config"
	"github.com/ManuGH/skillgate/internal/version"
)

const redacted = "***"

func runConfigCLI(args []string) int {
	return configCLI(args, os.Stdout, os.Stderr)
}

func configCLI(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		printConfigUsage(stderr)
		return 0
	}

	switch args[0] {
	case "validate":
		return runConfigValidate(args[1:], stdout, stderr)
	case "dump":
		return runConfigDump(args[1:], stdout, stderr)
	default:
		fmt.Fprintf(stderr, "Unknown subcommand: %s\n\n", args[0])
		printConfigUsage(stderr)
		return 2
	}
}

func printConfigUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  skillgate config validate [--file|-f config.yaml]")
	fmt.Fprintln(w, "  skillgate config dump [--file|-f config.yaml] [--format=yaml|json]")
}

func configFileFlag(fs *flag.FlagSet) *string {
	var file string
	fs.StringVar(&file, "file", "", "path to YAML configuration file")
	fs.StringVar(&file, "f", "", "path to YAML configuration file (shorthand)")
	return &file
}

func loadConfig(file string) (config.AppConfig, string, error) {
	path := strings.TrimSpace(file)
	if path == "" {
		path = resolveDefaultConfigPath()
	}
	cfg, err := config.NewLoader(path, version.Version).Load()
	return cfg, path, err
}

func runConfigValidate(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("skillgate config validate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	file := configFileFlag(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	_, path, err := loadConfig(*file)
	label := path
	if label == "" {
		label = "environment configuration"
	}
	if err != nil {
		fmt.Fprintf(stderr, "Configuration error in %s:\n  %v\n", label, err)
		return 1
	}

	fmt.Fprintf(stdout, "%s is valid\n", label)
	return 0
}

func runConfigDump(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("skillgate config dump", flag.ContinueOnError)
	fs.SetOutput(stderr)
	file := configFileFlag(fs)
	format := fs.String("format", "yaml", "output format: yaml or json")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, path, err := loadConfig(*file)
	if err != nil {
		fmt.Fprintf(stderr, "Configuration error in %s:\n  %v\n", path, err)
		return 1
	}
	cfg = redactSecrets(cfg)

	switch *format {
	case "json":
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(cfg); err != nil {
			fmt.Fprintf(stderr, "Failed to encode config: %v\n", err)
			return 1
		}
	case "yaml":
		enc := yaml.NewEncoder(stdout)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			fmt.Fprintf(stderr, "Failed to encode config: %v\n", err)
			return 1
		}
		_ = enc.Close()
	default:
		fmt.Fprintf(stderr, "Unknown format: %s\n", *format)
		return 2
	}
	return 0
}

func redactSecrets(cfg config.AppConfig) config.AppConfig {
	if cfg.Proactive.ClientSecret != "" {
		cfg.Proactive.ClientSecret = redacted
	}
	if cfg.Proactive.Redis.Password != "" {
		cfg.Proactive.Redis.Password = redacted
	}
	return cfg
}
