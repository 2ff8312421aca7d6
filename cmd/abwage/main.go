// Command abwage runs the wage/employment fixed-effects analysis.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/invertedv/panelfe/internal/config"
	"github.com/invertedv/panelfe/internal/pipeline"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	configFile string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "abwage",
	Short: "Fixed-effects wage regressions on a firm panel",
	Long: `abwage loads a firm/year panel, plots wages against employment with a least-squares line
and prints regression tables for four specifications of

  W ~ N + K + YS | ID + YEAR

with standard errors clustered by firm: the baseline, stepwise fixed effects, a split by
industry and the sample from 1980 on.

The panel is read from data/ab_data.csv (columns EMP, WAGE, W, N, K, YS, ID, YEAR, IND),
which is not distributed and must be supplied; point source.path or ABWAGE_SOURCE_PATH
elsewhere to use another file. data/ab_sample.csv is a synthetic panel of the same layout.

Settings come from an embedded default, an optional --config YAML file and ABWAGE_*
environment variables, in that order.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = config.Load(configFile); err != nil {
			return err
		}

		if logger, err = newLogger(cfg.Logging, verbose); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return pipeline.Run(cfg, logger, cmd.OutOrStdout())
	},
}

var describeCmd = &cobra.Command{
	Use:   "describe",
	Short: "Print the data overview and summary statistics only",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := pipeline.Load(cfg.Source, cfg.Columns, logger)
		if err != nil {
			return err
		}

		return pipeline.Describe(data, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(describeCmd)
}

func newLogger(lc config.LoggingConfig, verbose bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if lc.Development {
		zc = zap.NewDevelopmentConfig()
	}

	var level zapcore.Level
	if err := level.Set(lc.Level); err != nil {
		return nil, err
	}

	if verbose {
		level = zapcore.DebugLevel
	}

	zc.Level = zap.NewAtomicLevelAt(level)

	return zc.Build()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if logger != nil {
			logger.Error("abwage failed", zap.Error(err))
			_ = logger.Sync()
		}

		_, _ = color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
