package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kamusis/acco/internal/config"
	"github.com/kamusis/acco/internal/observability"
)

var flagLogLevel string

// logger is built in PersistentPreRunE; commands log through it.
var logger = zap.NewNop()

var rootCmd = &cobra.Command{
	Use:          "acco",
	Short:        "Browse, filter and cache an accountant directory listing",
	SilenceUsage: true, // don't print usage on operational errors
	Long: `acco loads an accountant directory listing (markup page, catalog or the
built-in seed), filters it by free text or structured criteria, grows it with
"load more" pages and keeps an offline cache of the site's assets.

Configuration lives in ~/.acco/acco.yaml and ~/.acco/.env.`,
	PersistentPreRunE: setupLogger,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level (debug, info, warn, error); overrides "+config.EnvLogLevel)
}

// setupLogger builds the logger at the level named by the flag, then
// ACCO_LOG_LEVEL (environment or ~/.acco/.env), then log_level in acco.yaml.
func setupLogger(_ *cobra.Command, _ []string) error {
	level, err := resolveLogLevel()
	if err != nil {
		return err
	}
	l, err := observability.NewLogger(level)
	if err != nil {
		return err
	}
	logger = l
	return nil
}

func resolveLogLevel() (string, error) {
	if flagLogLevel != "" {
		return flagLogLevel, nil
	}
	if cfg, err := config.LoadOrDefault(); err == nil {
		return cfg.LogLevel, nil
	}
	// A broken acco.yaml is reported by the command that reads it.
	return config.GetConfigValue(config.EnvLogLevel)
}

// Execute is called by main.go.
func Execute() {
	err := rootCmd.Execute()
	_ = logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
