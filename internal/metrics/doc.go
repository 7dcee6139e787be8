// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

/*
Package metrics provides Prometheus instrumentation for evaluation runs.

# Overview

The package records:
  - Metric evaluations per (metric, status) and their latency
  - Per-fold statistics derivation time (popularity, likers, distance, hits)
  - Distance snapshot cache hits and misses
  - Oracle generation latency and candidate pool sizes
  - Ranking sets loaded and result records written per sink

# Batch Export

The evaluator is a batch job, so there is no /metrics endpoint. Instead the
registry is written once at exit in the node_exporter textfile format:

	if err := metrics.WriteTextfile("/var/lib/node_exporter/ps.prom"); err != nil {
	    logging.Warn().Err(err).Msg("Failed to write metrics textfile")
	}

# Available Metrics

  - ps_evaluations_total{metric,status}
  - ps_evaluation_duration_seconds{metric}
  - ps_statistics_duration_seconds{derivation}
  - ps_statistics_cache_total{result}
  - ps_oracle_generation_duration_seconds{oracle}
  - ps_oracle_candidate_pool_size
  - ps_ranking_sets_loaded_total
  - ps_records_written_total{sink}
*/
package metrics
