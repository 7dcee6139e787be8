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

// EPC is the expected popularity complement: the discounted mean of
// 1 - popularity over the first C cells of each row, normalized by the
// discount sum of those positions. Sentinel padding is an unknown item with
// popularity 0.
type EPC struct {
	cache *statistics.Cache
}

// Name implements Metric.
func (m *EPC) Name() string { return KindEPC.String() }

// Compute implements Metric.
func (m *EPC) Compute(ctx context.Context, rs *dataset.RankingSet, cutoff int) (float64, error) {
	if err := checkCutoff(cutoff); err != nil {
		return 0, err
	}
	pop, err := m.cache.Popularity(ctx, rs.ID.Fold)
	if err != nil {
		return 0, err
	}

	c := effectiveCutoff(rs, cutoff)
	table := discounts(c)
	norm := normalizer(table, c)

	return meanOverUsers(ctx, rs, func(i int) (float64, error) {
		if norm == 0 {
			return 0, nil
		}
		ranking := rs.Truncated(i, c)
		total := 0.0
		for k := range c {
			p := 0.0
			if k < len(ranking) {
				p = pop.Of(ranking[k])
			}
			total += (1 - p) * table[k]
		}
		return total / norm, nil
	})
}
