// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/Hybbon/ps/internal/evaluation/statistics"
)

func newStatsCmd(root *rootOptions) *cobra.Command {
	var warm bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Log per-fold rating statistics",
		Long: `Load the rating splits and log users, items, ratings per split and
sparsity for each fold. With --warm every derived statistic (popularity,
likers, hits and the item distance matrix) is also computed, which fills the
snapshot cache when cache.enabled is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, a, err := newApp(cmd.Context(), root.cfg)
			if err != nil {
				return err
			}

			return a.supervise(ctx, "stats", func(ctx context.Context) error {
				ratings, err := a.loadRatings()
				if err != nil {
					return err
				}
				if !warm {
					return nil
				}

				cache := a.newCache(ratings)
				defer a.pruneSnapshots(ratings.Folds())
				if err := cache.Warm(ctx, statistics.AllKinds...); err != nil {
					return err
				}
				for _, fold := range cache.Folds() {
					dist, err := cache.Distance(ctx, fold)
					if err != nil {
						return err
					}
					a.logger.Info().Str("fold", fold).Int("items", dist.Len()).Msg("Statistics ready")
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&warm, "warm", false, "Also compute every derived statistic")

	return cmd
}
