// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/Hybbon/ps/internal/dataset"
	"github.com/Hybbon/ps/internal/evaluation"
)

func newEvaluateCmd(root *rootOptions) *cobra.Command {
	var (
		withOracles bool
		oracleKinds []string
	)

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Score every ranking set with the configured metrics",
		Long: `Load the dataset, score every (fold, source) ranking set with MAP, EPC
and EILD at the configured cutoffs, and write the records to the configured
sinks. With --oracles (or oracle.enabled in the config) oracle rankings are
built from the loaded sources and scored alongside them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("oracles") {
				root.cfg.Oracle.Enabled = withOracles
			}
			kinds, err := parseOracleKinds(oracleKinds)
			if err != nil {
				return err
			}

			ctx, a, err := newApp(cmd.Context(), root.cfg)
			if err != nil {
				return err
			}

			return a.supervise(ctx, "evaluate", func(ctx context.Context) error {
				ratings, err := a.loadRatings()
				if err != nil {
					return err
				}
				rankings, err := a.loadRankings(ctx)
				if err != nil {
					return err
				}

				evalCfg := a.cfg.EvaluatorConfig()
				cache := a.newCache(ratings)
				defer a.pruneSnapshots(ratings.Folds())

				targets := rankings
				if a.cfg.Oracle.Enabled {
					var oracles dataset.RankingSets
					oracles, err = a.generateOracles(ctx, evalCfg, rankings, cache, kinds, a.cfg.Output.SaveOracleRankings)
					if err != nil {
						return err
					}
					targets = rankings.Merge(oracles)
				}

				var res evaluation.Results
				res, err = a.evaluate(ctx, evalCfg, cache, targets)
				if err != nil {
					return err
				}
				return a.writeResults(ctx, res)
			})
		},
	}

	cmd.Flags().BoolVar(&withOracles, "oracles", false, "Also generate and score oracle rankings")
	cmd.Flags().StringSliceVar(&oracleKinds, "oracle-kinds", nil, "Oracles to build: EPC, EILD, MAP (default all)")

	return cmd
}
