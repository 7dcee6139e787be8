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

// MAP is mean average precision over the test split hits.
//
// For each user, every hit at position i adds (hits so far)/(i+1); the sum is
// divided by min(C, hit count), where C = min(cutoff, width). Sentinel padding
// occupies positions but never hits, so a short row cannot score higher than
// a full one. Users without hits score 0. Repeated items count at every
// position they appear.
type MAP struct {
	cache *statistics.Cache
}

// Name implements Metric.
func (m *MAP) Name() string { return KindMAP.String() }

// Compute implements Metric.
func (m *MAP) Compute(ctx context.Context, rs *dataset.RankingSet, cutoff int) (float64, error) {
	if err := checkCutoff(cutoff); err != nil {
		return 0, err
	}
	hits, err := m.cache.Hits(ctx, rs.ID.Fold)
	if err != nil {
		return 0, err
	}

	c := effectiveCutoff(rs, cutoff)
	return meanOverUsers(ctx, rs, func(i int) (float64, error) {
		userHits := hits.Of(rs.UserIDs[i])
		if len(userHits) == 0 {
			return 0, nil
		}

		ranking := rs.Truncated(i, c)
		if len(ranking) == 0 {
			return 0, &EmptyRankingError{Fold: rs.ID.Fold, Source: rs.ID.Source, UserID: rs.UserIDs[i]}
		}
		return AveragePrecision(ranking, userHits, c), nil
	})
}

// AveragePrecision scores the real prefix of a ranking cut at n positions
// against a non-empty hit set. Positions past len(ranking) are padding.
func AveragePrecision(ranking []int64, hits statistics.Set, n int) float64 {
	numHits := 0
	total := 0.0
	for i, item := range ranking {
		if hits.Contains(item) {
			numHits++
			total += float64(numHits) / float64(i+1)
		}
	}
	return total / float64(min(n, len(hits)))
}
