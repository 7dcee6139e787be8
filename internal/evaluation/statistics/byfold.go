// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package statistics

import (
	"context"

	"github.com/Hybbon/ps/internal/dataset"
)

// FoldValue pairs a fold with one of its derived statistics.
type FoldValue[T any] struct {
	Fold  string
	Value T
}

func byFold[T any](sets dataset.RatingSets, compute func(*dataset.RatingSet) T) []FoldValue[T] {
	folds := sets.Folds()
	out := make([]FoldValue[T], 0, len(folds))
	for _, fold := range folds {
		out = append(out, FoldValue[T]{Fold: fold, Value: compute(sets[fold])})
	}
	return out
}

// PopularityByFold computes popularity for every fold, ordered by fold.
func PopularityByFold(sets dataset.RatingSets) []FoldValue[Popularity] {
	return byFold(sets, ComputePopularity)
}

// LikersByFold computes likers for every fold, ordered by fold.
func LikersByFold(sets dataset.RatingSets) []FoldValue[Likers] {
	return byFold(sets, ComputeLikers)
}

// HitsByFold computes hit sets for every fold, ordered by fold.
func HitsByFold(sets dataset.RatingSets) []FoldValue[Hits] {
	return byFold(sets, ComputeHits)
}

// DistanceByFold computes the distance matrix for every fold, ordered by fold.
func DistanceByFold(ctx context.Context, sets dataset.RatingSets, workers int) ([]FoldValue[*DistanceMatrix], error) {
	folds := sets.Folds()
	out := make([]FoldValue[*DistanceMatrix], 0, len(folds))
	for _, fold := range folds {
		m, err := ComputeDistance(ctx, sets[fold], workers)
		if err != nil {
			return nil, err
		}
		out = append(out, FoldValue[*DistanceMatrix]{Fold: fold, Value: m})
	}
	return out, nil
}
