package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/snipecord/internal/config"
)

const defaultConfigPath = "config.json"

// newRootCmd builds the command tree. The root command runs the watcher, so
// "snipecord" and "snipecord run" are equivalent.
func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "snipecord",
		Short:         "Watch Rutgers course sections and announce openings",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCommand(cmd, configPath)
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to the config file (.json, .yaml or .toml)")

	root.AddCommand(&cobra.Command{
		Use:   "run",
		Short: "Watch the configured sections until interrupted (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCommand(cmd, configPath)
		},
	})
	root.AddCommand(newLabelsCmd(&configPath))

	return root
}

// loadConfig loads the config file and builds the process logger from it.
func loadConfig(path string, logOut io.Writer) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, newLogger(cfg.LogLevel, cfg.LogFormat, logOut), nil
}

// newLogger returns a text or JSON slog logger at the given level.
func newLogger(level, format string, w io.Writer) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
