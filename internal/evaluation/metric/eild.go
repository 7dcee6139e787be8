// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package metric

import (
	"context"

	"github.com/Hybbon/ps/internal/dataset"
	"github.com/Hybbon/ps/internal/evaluation/statistics"
)

// EILD is the expected intra-list distance.
//
// Position k's local score is the mean distance to every other position l
// weighted by Discount^max(0, l-k-1). Local scores are then combined with the
// absolute discount Discount^k and normalized over the first C positions.
// Padding positions keep their weight but contribute zero distance.
type EILD struct {
	cache *statistics.Cache
}

// Name implements Metric.
func (m *EILD) Name() string { return KindEILD.String() }

// Compute implements Metric.
func (m *EILD) Compute(ctx context.Context, rs *dataset.RankingSet, cutoff int) (float64, error) {
	if err := checkCutoff(cutoff); err != nil {
		return 0, err
	}
	dist, err := m.cache.Distance(ctx, rs.ID.Fold)
	if err != nil {
		return 0, err
	}

	c := effectiveCutoff(rs, cutoff)
	table := discounts(c)
	norm := normalizer(table, c)

	// Relative weight sums depend only on k and C.
	weightSums := make([]float64, c)
	for k := range c {
		for l := range c {
			if l != k {
				weightSums[k] += table[max(0, l-k-1)]
			}
		}
	}

	return meanOverUsers(ctx, rs, func(i int) (float64, error) {
		if norm == 0 {
			return 0, nil
		}
		ranking := rs.Truncated(i, c)

		total := 0.0
		for k, kItem := range ranking {
			if weightSums[k] == 0 {
				continue
			}
			local := 0.0
			for l, lItem := range ranking {
				if l == k {
					continue
				}
				local += dist.Distance(kItem, lItem) * table[max(0, l-k-1)]
			}
			total += table[k] * local / weightSums[k]
		}
		return total / norm, nil
	})
}
