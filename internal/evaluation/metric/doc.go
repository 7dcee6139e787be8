// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

// Package metric scores ranking sets against per-fold statistics.
//
// Three metrics are supported:
//
//   - MAP: mean average precision against the test split (accuracy)
//   - EPC: expected popularity complement, discounted by rank (novelty)
//   - EILD: expected intra-list distance, discounted by rank (diversity)
//
// A metric's value for a ranking set is the mean of per-user scores over
// every user of the set. Rankings are truncated at the cutoff. Sentinel
// padding keeps its positions up to the cutoff: it is never a hit, and EPC
// scores it like an item missing from the fold statistics. Missing items
// have popularity 0, distance 0 and are never hits.
//
// Ranks are discounted geometrically by Discount^position, positions starting at 0.
package metric
