// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

// Package statistics derives per-fold rating statistics used by the metrics
// and oracles: item popularity, item likers, the item co-liking distance
// matrix and per-user hit sets.
//
// Every derivation is a pure function of one dataset.RatingSet. Popularity,
// likers and distance come from the base split; hits come from the test split.
//
// # Sharing
//
// Cache computes each derivation of each fold at most once and hands out the
// same read-only value to every caller:
//
//	cache := statistics.NewCache(ratings, statistics.WithWorkers(8))
//	if err := cache.Warm(ctx, statistics.KindPopularity); err != nil {
//	    return err
//	}
//	pop, err := cache.Popularity(ctx, "1")
//
// Values returned by the cache must not be modified.
package statistics
