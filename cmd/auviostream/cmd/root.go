// Package cmd implements the CLI commands for auviostream.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/auviostream/auviostream/internal/config"
	"github.com/auviostream/auviostream/internal/observability"
	"github.com/auviostream/auviostream/internal/version"
)

// cfgFile holds the config file path from the CLI flag.
var cfgFile string

// cfg is the loaded configuration, available to every subcommand after
// PersistentPreRunE.
var cfg *config.Config

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:     "auviostream",
	Short:   "Belgian French-language streaming aggregation daemon",
	Version: version.Short(),
	Long: `auviostream aggregates Belgian French-language streaming platforms
(RTBF Auvio, RTL Play, LN24 and the regional Walloon stations) behind a
single REST API: unified catalogs, cross-platform search, live and
on-demand stream resolution, watch progress and a daily TV guide.`,
}

// Execute adds all child commands to the root command and runs it.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		return fmt.Errorf("executing root command: %w", err)
	}
	return nil
}

func init() {
	rootCmd.PersistentPreRunE = func(_ *cobra.Command, _ []string) error {
		return initConfigAndLogging()
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default searches ., /etc/auviostream, $HOME/.auviostream)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "json", "log format (text, json)")

	// Accept underscored spellings of flags, e.g. --log_level.
	rootCmd.PersistentFlags().SetNormalizeFunc(func(f *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})
}

// initConfigAndLogging loads the configuration and installs the default
// logger. CLI flags override config and environment values only when
// explicitly set, keeping the priority flag > env > file > default.
func initConfigAndLogging() error {
	loaded, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	cfg = loaded

	if rootCmd.PersistentFlags().Changed("log-level") {
		level, _ := rootCmd.PersistentFlags().GetString("log-level")
		cfg.Logging.Level = strings.ToLower(level)
	}
	if rootCmd.PersistentFlags().Changed("log-format") {
		format, _ := rootCmd.PersistentFlags().GetString("log-format")
		cfg.Logging.Format = strings.ToLower(format)
	}

	logger := observability.NewLoggerWithWriter(cfg.Logging, os.Stderr)
	observability.SetDefault(logger)

	return nil
}
