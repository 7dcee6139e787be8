// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

// Package database stores evaluation results in DuckDB.
//
// # Overview
//
// ResultStore is a results.Sink. Every run appends its records to one table,
// keyed by run id, so runs can be compared with plain SQL:
//
//	CREATE TABLE evaluation_results (
//	    run_id TEXT, metric TEXT, cutoff INTEGER, fold TEXT, source TEXT,
//	    value DOUBLE, created_at TIMESTAMP,
//	    PRIMARY KEY (run_id, metric, cutoff, fold, source)
//	)
//
// Write inserts a run's records in a single transaction; a duplicate key
// rolls the whole run back. SourceMeans is the SQL form of
// evaluation.Summarize and returns the same summaries for the same records.
//
// # Connections
//
// Open owns its connection and disables DuckDB extension auto-install so that
// opening a file never touches the network. NewResultStore wraps a connection
// the caller owns, which is what the tests do with ":memory:".
//
// # Testing
//
// Tests need the DuckDB CGO driver and carry the integration build tag:
//
//	go test -tags integration ./internal/database/...
package database
