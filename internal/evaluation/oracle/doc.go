// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

// Package oracle builds synthetic "oracle" ranking sets that approximate the
// best score a metric can reach given the items real sources recommended.
//
// For each fold the candidate pool of a user is the union of the first
// inputCutoff items every real source ranked for that user. An oracle then
// reorders the pool to favour its metric and keeps outputCutoff items:
//
//   - EPCOracle keeps the least popular candidates
//   - EILDOracle keeps the candidates with the largest distance column sum,
//     a greedy proxy for marginal distance rather than an exact maximiser
//   - MAPOracle puts hits first, then the remaining candidates
//
// Oracle ranking sets use the same dataset.RankingSet shape as real sources
// and can be evaluated by the metric package like any other source.
package oracle
