// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package oracle

import (
	"cmp"
	"context"
	"slices"

	"github.com/Hybbon/ps/internal/dataset"
)

// EPCOracle keeps the least popular candidates. Ties keep pool order.
type EPCOracle struct {
	base
}

// Name implements Oracle.
func (o *EPCOracle) Name() string { return EPCOracleName }

// Generate implements Oracle.
func (o *EPCOracle) Generate(ctx context.Context, fold string, inputCutoff, outputCutoff int) (*dataset.RankingSet, error) {
	if err := checkCutoffs(inputCutoff, outputCutoff); err != nil {
		return nil, err
	}
	pop, err := o.cache.Popularity(ctx, fold)
	if err != nil {
		return nil, err
	}

	return o.generate(ctx, EPCOracleName, fold, inputCutoff, outputCutoff, func(_ int64, candidates []int64) []int64 {
		row := slices.Clone(candidates)
		slices.SortStableFunc(row, func(a, b int64) int {
			return cmp.Compare(pop.Of(a), pop.Of(b))
		})
		return row
	})
}

// EILDOracle keeps the candidates with the largest distance column sum.
// Ties keep pool order. This is a greedy heuristic, not an exact EILD maximiser.
type EILDOracle struct {
	base
}

// Name implements Oracle.
func (o *EILDOracle) Name() string { return EILDOracleName }

// Generate implements Oracle.
func (o *EILDOracle) Generate(ctx context.Context, fold string, inputCutoff, outputCutoff int) (*dataset.RankingSet, error) {
	if err := checkCutoffs(inputCutoff, outputCutoff); err != nil {
		return nil, err
	}
	dist, err := o.cache.Distance(ctx, fold)
	if err != nil {
		return nil, err
	}

	return o.generate(ctx, EILDOracleName, fold, inputCutoff, outputCutoff, func(_ int64, candidates []int64) []int64 {
		row := slices.Clone(candidates)
		slices.SortStableFunc(row, func(a, b int64) int {
			return cmp.Compare(dist.ColumnSum(b), dist.ColumnSum(a))
		})
		return row
	})
}

// MAPOracle ranks a user's hits first, then the remaining candidates, both in pool order.
type MAPOracle struct {
	base
}

// Name implements Oracle.
func (o *MAPOracle) Name() string { return MAPOracleName }

// Generate implements Oracle.
func (o *MAPOracle) Generate(ctx context.Context, fold string, inputCutoff, outputCutoff int) (*dataset.RankingSet, error) {
	if err := checkCutoffs(inputCutoff, outputCutoff); err != nil {
		return nil, err
	}
	hits, err := o.cache.Hits(ctx, fold)
	if err != nil {
		return nil, err
	}

	return o.generate(ctx, MAPOracleName, fold, inputCutoff, outputCutoff, func(userID int64, candidates []int64) []int64 {
		userHits := hits.Of(userID)
		row := make([]int64, 0, len(candidates))
		for _, item := range candidates {
			if userHits.Contains(item) {
				row = append(row, item)
			}
		}
		for _, item := range candidates {
			if !userHits.Contains(item) {
				row = append(row, item)
			}
		}
		return row
	})
}
