// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

// Package dataset defines ranking and rating sets and reads and writes them
// in the flat-file layout used by recommender evaluation pipelines.
//
// # File Layout
//
// A dataset directory holds, per fold N:
//
//	uN.base         training ratings   (user<TAB>item<TAB>rating[...])
//	uN.test         held-out ratings
//	uN.validation   optional held-out ratings
//	uN-<source>.out one ranking set per recommender source
//
// Ranking lines look like:
//
//	196	[242:5.0,302:4.0,377:3.0]
//
// Ranking sets are rectangular: shorter rows are padded with Sentinel so
// every row has the width of the longest ranking.
package dataset
