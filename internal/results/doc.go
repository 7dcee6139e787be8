// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

// Package results writes evaluation results to files.
//
// A Sink receives every record of one run. CSVSink writes metrics.csv with
// one row per record; JSONSink writes metrics.json holding the records and
// the per-source summary. The DuckDB sink lives in internal/database.
package results
