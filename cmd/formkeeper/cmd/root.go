// Package cmd implements the formkeeper command line.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/solatis/formkeeper/internal/core/config"
	"github.com/solatis/formkeeper/internal/log"
)

// Version is the formkeeper release.
const Version = "0.1.0"

var (
	configFile string
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:           "formkeeper",
	Short:         "Conditional question rule engine",
	Long:          `formkeeper decides which questions of a CMS-driven form apply, and validates the answers to the ones that do.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		loaded, err := config.LoadConfig(configFile, cmd.Flags())
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		return setupLogging(cfg.Log)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "config file path")
	pf.String("db-url", "", "database connection URL (sqlite://path or postgres://...)")
	pf.String("log-level", "", "log level (debug, info, warn, error)")
	pf.String("log-format", "", "log format (json, logfmt, text)")
	pf.String("locale", "", "language of generated messages (en, cy)")
	pf.String("timezone", "", "time zone for date checks, e.g. Europe/London")
	pf.Duration("regex-timeout", 0, "REGEX match timeout, at most 1s")
}

func setupLogging(lc config.LogConfig) error {
	handler, err := log.CreateHandlerWithStrings(os.Stderr, lc.Level, lc.Format)
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(handler))
	return nil
}

// Execute runs the root command and reports any error on stderr.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		slog.Error("command failed", "error", err)
	}
	return err
}
