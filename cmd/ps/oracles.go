// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package main

import (
	"context"

	"github.com/spf13/cobra"
)

func newOraclesCmd(root *rootOptions) *cobra.Command {
	var oracleKinds []string

	cmd := &cobra.Command{
		Use:   "oracles",
		Short: "Build, save and score oracle rankings",
		Long: `Build oracle rankings for every fold from the union of the loaded
sources' candidates, save them as u<fold>-<Oracle>.out files under
<output>/oracles, score them, and write the records to the configured sinks.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			kinds, err := parseOracleKinds(oracleKinds)
			if err != nil {
				return err
			}

			ctx, a, err := newApp(cmd.Context(), root.cfg)
			if err != nil {
				return err
			}

			return a.supervise(ctx, "oracles", func(ctx context.Context) error {
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

				oracles, err := a.generateOracles(ctx, evalCfg, rankings, cache, kinds, true)
				if err != nil {
					return err
				}
				res, err := a.evaluate(ctx, evalCfg, cache, oracles)
				if err != nil {
					return err
				}
				return a.writeResults(ctx, res)
			})
		},
	}

	cmd.Flags().StringSliceVar(&oracleKinds, "kinds", nil, "Oracles to build: EPC, EILD, MAP (default all)")

	return cmd
}
