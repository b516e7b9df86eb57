// Package cmd implements the CLI commands for gtuberctl.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/rafostar/gtuber-go/internal/config"
	"github.com/rafostar/gtuber-go/internal/observability"
	"github.com/rafostar/gtuber-go/internal/version"
)

var (
	cfgFile   string
	logLevel  string
	logFormat string

	cfg *config.Config
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:     "gtuberctl",
	Short:   "Fetch and inspect streamable media info for a page URL",
	Version: version.Short(),
	Long: `gtuberctl is a thin CLI over gtuber's extraction client.

It locates a compatible plugin for a URL, extracts its playable streams,
and can dump the result as JSON or as a DASH/HLS manifest.`,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		return initLogging()
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		return fmt.Errorf("executing root command: %w", err)
	}
	return nil
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $XDG_CONFIG_HOME/gtuber/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level, overrides config (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format, overrides config (text, json)")
}

// initConfig loads configuration from cfgFile (or config.Load's default
// search locations, which already layer GTUBER_-prefixed environment
// variables over file values), then applies any --log-level/--log-format
// flag override on top.
func initConfig() {
	loaded, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "gtuberctl: loading config:", err)
		loaded, _ = config.Load("")
	}
	if logLevel != "" {
		loaded.Logging.Level = logLevel
	}
	if logFormat != "" {
		loaded.Logging.Format = logFormat
	}
	cfg = loaded
}

// initLogging builds and installs the default slog logger from the
// resolved config, so every subcommand logs the same way.
func initLogging() error {
	if cfg == nil {
		initConfig()
	}
	logger := observability.NewLogger(cfg.Logging)
	observability.SetLogLevel(cfg.Logging.Level)
	slog.SetDefault(logger)
	return nil
}
