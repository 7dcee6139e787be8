// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

// Package evaluation runs metrics over ranking sets and collects the results.
//
// An Evaluator fans out one task per (metric, cutoff, ranking set). Tasks
// read shared statistics from a statistics.Cache and write to their own
// result slot, so the output order is fixed regardless of scheduling:
// metric config order, then cutoff, then ranking set id.
//
// # Usage
//
//	cache := statistics.NewCache(ratings, statistics.CacheConfig{Logger: logger})
//	ev, err := evaluation.NewEvaluator(evaluation.DefaultConfig(), cache, logger)
//	if err != nil {
//	    return err
//	}
//	results, err := ev.Evaluate(ctx, rankings)
//
// Oracle ranking sets from GenerateOracles can be merged into the input and
// evaluated in the same batch; Summarize labels them by Category.
package evaluation
