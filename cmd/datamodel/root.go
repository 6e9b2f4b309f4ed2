package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/datamodel/internal/cli"
	"github.com/aretw0/datamodel/internal/logging"
	"github.com/aretw0/datamodel/pkg/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "datamodel",
	Short: "datamodel manages typed records with derived fields",
	Long: `datamodel loads schemas and records from a directory, Redis or JSON files,
coerces values into typed fields and keeps derived fields such as color palettes
in sync with their sources.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("config", config.DefaultFile, "Configuration file (YAML or JSON)")
	flags.String("dir", "", "Directory holding the workspace (overrides config)")
	flags.String("store", "", "Store backend: loam, file, memory or redis (overrides config)")
	flags.String("log-level", "", "Log level: debug, info, warn or error (overrides config)")
	flags.String("log-format", string(logging.FormatText), "Log format: text or json")
}

// loadConfig reads the configuration file and applies flag overrides.
func loadConfig(cmd *cobra.Command) (config.Config, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, nil, err
	}
	if v, _ := cmd.Flags().GetString("dir"); v != "" {
		cfg.Dir = v
	}
	if v, _ := cmd.Flags().GetString("store"); v != "" {
		cfg.Store = v
	}
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		cfg.LogLevel = v
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, nil, err
	}
	format, _ := cmd.Flags().GetString("log-format")
	return cfg, logging.NewWithWriter(os.Stderr, cfg.Level(), logging.Format(format)), nil
}

// openEnv loads the configuration and opens the workspace it describes.
func openEnv(cmd *cobra.Command) (*cli.Env, config.Config, *slog.Logger, error) {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return nil, config.Config{}, nil, err
	}
	env, err := cli.OpenWorkspace(cmd.Context(), cfg, logger)
	if err != nil {
		return nil, config.Config{}, nil, fmt.Errorf("failed to open workspace: %w", err)
	}
	return env, cfg, logger, nil
}
