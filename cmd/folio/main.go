// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main is the entry point for the folio server. The serve command
// loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support; the other commands
// maintain the database from the shell.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"folio/internal/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "folio",
	Short: "Single-page portfolio site with in-place editing",
	Long: `Folio serves a one-page portfolio site. Visitors get cached read-only
pages; the signed-in owner edits every field in place and publishes the
draft with a single save.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "YAML config file (overrides "+config.EnvPrefix+"CONFIG)")
	rootCmd.PersistentPreRunE = useConfigFile
}

// useConfigFile hands the --config flag to config.Load.
func useConfigFile(cmd *cobra.Command, args []string) error {
	if cfgFile != "" {
		return os.Setenv(config.EnvPrefix+"CONFIG", cfgFile)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the configuration and installs the default logger:
// JSON in production, text otherwise.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if cfg.IsDev() {
		opts.Level = slog.LevelDebug
	}
	var handler slog.Handler = slog.NewTextHandler(os.Stdout, opts)
	if cfg.Env == "production" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
	)
	return cfg, nil
}
