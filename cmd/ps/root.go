// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package main

import (
	"github.com/spf13/cobra"

	"github.com/Hybbon/ps/internal/config"
	"github.com/Hybbon/ps/internal/logging"
)

// rootOptions are the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
	datasetDir string
	outputDir  string
	workers    int
	logLevel   string

	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "ps",
		Short:         "Evaluate recommender rankings and build oracle rankings",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.load(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "Path to a YAML config file")
	flags.StringVarP(&opts.datasetDir, "dataset", "d", "", "Dataset directory with u<fold>.base/test and u<fold>-<source>.out files")
	flags.StringVarP(&opts.outputDir, "output", "o", "", "Output directory for results and oracle rankings")
	flags.IntVarP(&opts.workers, "workers", "w", 0, "Worker goroutines for evaluation (default GOMAXPROCS)")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level: trace, debug, info, warn, error, disabled")

	cmd.AddCommand(newEvaluateCmd(opts))
	cmd.AddCommand(newOraclesCmd(opts))
	cmd.AddCommand(newStatsCmd(opts))
	cmd.AddCommand(newConfigCmd(opts))

	return cmd
}

// load builds the configuration with explicitly set flags as the top layer,
// then configures the global logger from it.
func (o *rootOptions) load(cmd *cobra.Command) error {
	overrides := make(map[string]interface{})
	flags := cmd.Flags()
	if flags.Changed("dataset") {
		overrides["dataset.dir"] = o.datasetDir
	}
	if flags.Changed("output") {
		overrides["output.dir"] = o.outputDir
	}
	if flags.Changed("workers") {
		overrides["evaluation.workers"] = o.workers
	}
	if flags.Changed("log-level") {
		overrides["logging.level"] = o.logLevel
	}

	cfg, err := config.Load(config.LoadOptions{Path: o.configPath, Overrides: overrides})
	if err != nil {
		return err
	}
	o.cfg = cfg

	logCfg := logging.DefaultConfig()
	logCfg.Level = cfg.Logging.Level
	logCfg.Format = cfg.Logging.Format
	logCfg.Caller = cfg.Logging.Caller
	logCfg.Output = cmd.ErrOrStderr()
	logging.Init(logCfg)

	logging.Debug().
		Str("dataset", cfg.Dataset.Dir).
		Str("output", cfg.Output.Dir).
		Strs("formats", cfg.Output.Formats).
		Int("workers", cfg.Evaluation.Workers).
		Bool("cache", cfg.Cache.Enabled).
		Msg("Configuration loaded")
	return nil
}
