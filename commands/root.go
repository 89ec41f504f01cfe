// Package commands wires the CLI surface: one subcommand per workflow step.
package commands

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"doge-savings-scraper/config"

	"github.com/spf13/cobra"
)

var (
	configPath string
	debugMode  bool
)

var rootCmd = &cobra.Command{
	Use:          "doge-savings-scraper",
	Short:        "Scrape the doge.gov/savings contract table into timestamped CSV files",
	SilenceUsage: true,
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "path to the configuration file")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "verbose logging and a visible browser window")
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if debugMode {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// loadConfig reads the configured file, falling back to defaults when it does
// not exist.
func loadConfig(logger *slog.Logger) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Debug("config file not found, using defaults", "path", configPath)
			return config.Default(), nil
		}
		return nil, err
	}
	return cfg, nil
}
