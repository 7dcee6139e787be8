// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package oracle

import (
	"context"
	"slices"

	"github.com/Hybbon/ps/internal/dataset"
)

// CandidatePool holds, per user, the items real sources ranked within the input cutoff.
type CandidatePool struct {
	Fold       string
	UserIDs    []int64
	Candidates [][]int64
}

// Sizes returns the candidate count of every user.
func (p *CandidatePool) Sizes() []int {
	sizes := make([]int, len(p.Candidates))
	for i, c := range p.Candidates {
		sizes[i] = len(c)
	}
	return sizes
}

// BuildCandidatePool unions, per user, the first inputCutoff real items of every
// non-oracle ranking set in fold. Sets are visited in source order and items are
// deduplicated in first-seen order. Users are sorted by id.
func BuildCandidatePool(ctx context.Context, rankings dataset.RankingSets, fold string, inputCutoff int) (*CandidatePool, error) {
	if err := checkCutoffs(inputCutoff, 1); err != nil {
		return nil, err
	}

	type userPool struct {
		items []int64
		seen  map[int64]struct{}
	}
	pools := make(map[int64]*userPool)

	sources := 0
	for _, rs := range rankings.InFold(fold) {
		if IsOracleSource(rs.ID.Source) {
			continue
		}
		sources++

		for i, userID := range rs.UserIDs {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			up, ok := pools[userID]
			if !ok {
				up = &userPool{seen: make(map[int64]struct{})}
				pools[userID] = up
			}
			for _, item := range rs.Truncated(i, inputCutoff) {
				if _, dup := up.seen[item]; dup {
					continue
				}
				up.seen[item] = struct{}{}
				up.items = append(up.items, item)
			}
		}
	}
	if sources == 0 {
		return nil, &EmptyCandidatePoolError{Fold: fold, UserID: -1}
	}

	pool := &CandidatePool{
		Fold:       fold,
		UserIDs:    make([]int64, 0, len(pools)),
		Candidates: make([][]int64, 0, len(pools)),
	}
	for userID := range pools {
		pool.UserIDs = append(pool.UserIDs, userID)
	}
	slices.Sort(pool.UserIDs)

	for _, userID := range pool.UserIDs {
		items := pools[userID].items
		if len(items) == 0 {
			return nil, &EmptyCandidatePoolError{Fold: fold, UserID: userID}
		}
		pool.Candidates = append(pool.Candidates, items)
	}
	return pool, nil
}
