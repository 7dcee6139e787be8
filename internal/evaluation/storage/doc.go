// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

// Package storage persists per-fold distance matrices between runs.
//
// Computing a distance matrix is quadratic in the number of base items, so
// repeated evaluations of the same dataset reuse snapshots keyed by fold and
// by a fingerprint of the fold's base split (statistics.Fingerprint). A
// changed base split yields a new fingerprint and therefore a cache miss.
//
// # Storage Format
//
//	filename: distance_u{fold}_{fingerprint}.gob.gz
//
//	structure:
//	  - Metadata (SnapshotMetadata)
//	  - CompressedData (gzip-compressed gob-encoded statistics.DistanceMatrix)
//
// The SHA-256 checksum of the uncompressed data is verified on load.
//
// # Usage Example
//
//	store, err := storage.NewStore(".cache/ps")
//	if err != nil {
//	    return err
//	}
//	cache := statistics.NewCache(ratings, statistics.CacheConfig{Store: store})
//
// Store implements statistics.SnapshotStore and is safe for concurrent use.
package storage
