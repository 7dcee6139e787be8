// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

/*
Package config provides configuration loading and validation for the ps
evaluator.

# Configuration Sources

Configuration is layered with koanf, later layers overriding earlier ones:

 1. Struct defaults (defaultConfig)
 2. YAML file: --config flag, then CONFIG_PATH, then ./ps.yaml or ./config.yaml
 3. Environment variables (explicit mapping table, see envTransformFunc)
 4. Command-line overrides passed in LoadOptions.Overrides

# Configuration Structure

  - DatasetConfig: directory holding u<fold>.base/test/validation and u<fold>-<source>.out
  - OutputConfig: result directory, sink formats, DuckDB path, oracle ranking export
  - EvaluationConfig: worker count and per-metric cutoffs and parallelism
  - OracleConfig: oracle generation switch and input/output cutoffs
  - CacheConfig: on-disk distance matrix snapshots
  - LoggingConfig: zerolog level, format, caller
  - TelemetryConfig: Prometheus textfile output

# Environment Variables

Dataset and output:
  - PS_DATASET_DIR: dataset directory (required)
  - PS_OUTPUT_DIR: result directory (default: output)
  - PS_OUTPUT_FORMATS: comma-separated sinks: csv, json, duckdb (default: csv)
  - PS_DUCKDB_PATH: DuckDB file (default: <output>/results.duckdb)
  - PS_SAVE_ORACLE_RANKINGS: write oracle rankings as u<fold>-<oracle>.out (default: true)

Evaluation:
  - PS_WORKERS: worker goroutines (default: GOMAXPROCS)
  - PS_MAP_CUTOFFS, PS_EPC_CUTOFFS, PS_EILD_CUTOFFS: comma-separated cutoffs (default: 10)
  - PS_MAP_ENABLED, PS_EPC_ENABLED, PS_EILD_ENABLED
  - PS_MAP_PARALLEL, PS_EPC_PARALLEL, PS_EILD_PARALLEL

Oracles:
  - PS_ORACLE_ENABLED (default: false)
  - PS_ORACLE_INPUT_CUTOFF (default: 20)
  - PS_ORACLE_OUTPUT_CUTOFF (default: 10)

Cache, logging, telemetry:
  - PS_CACHE_ENABLED, PS_CACHE_DIR, PS_CACHE_KEEP
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER
  - PS_METRICS_TEXTFILE: write Prometheus metrics here on exit

# Validation

Validate runs struct-tag validation through internal/validation and then
cross-field checks (at least one metric enabled, cache directory present
when caching is on).
*/
package config
