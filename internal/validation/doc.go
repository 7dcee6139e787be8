// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

// Package validation provides struct validation using go-playground/validator v10.
//
// A single validator instance is built lazily and shared; it caches struct
// metadata, so repeated validation of the same config type is cheap.
//
// Field names in errors come from the `koanf` struct tag, so a failure reads
// the same way the user wrote the setting:
//
//	evaluation.workers must be at least 1
//
// # Custom Tags
//
//   - cutoffs: a non-empty []int whose values are all >= 1 and distinct
//   - sinkformat: one of csv, json, duckdb
//
// Example usage:
//
//	type OracleConfig struct {
//	    InputCutoff  int `koanf:"input_cutoff" validate:"min=1"`
//	    OutputCutoff int `koanf:"output_cutoff" validate:"min=1"`
//	}
//
//	if err := validation.ValidateStruct(&cfg); err != nil {
//	    return fmt.Errorf("invalid config: %w", err)
//	}
package validation
