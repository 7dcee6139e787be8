// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/Hybbon/ps/internal/evaluation"
	"github.com/Hybbon/ps/internal/evaluation/metric"
	"github.com/Hybbon/ps/internal/validation"
)

// Config is the full evaluator configuration.
type Config struct {
	Dataset    DatasetConfig    `koanf:"dataset"`
	Output     OutputConfig     `koanf:"output"`
	Evaluation EvaluationConfig `koanf:"evaluation"`
	Oracle     OracleConfig     `koanf:"oracle"`
	Cache      CacheConfig      `koanf:"cache"`
	Logging    LoggingConfig    `koanf:"logging"`
	Telemetry  TelemetryConfig  `koanf:"telemetry"`
}

// DatasetConfig locates the rating splits and ranking files.
type DatasetConfig struct {
	Dir string `koanf:"dir" validate:"required"`
}

// OutputConfig controls where results go.
type OutputConfig struct {
	Dir                string   `koanf:"dir" validate:"required"`
	Formats            []string `koanf:"formats" validate:"min=1,dive,sinkformat"`
	DuckDBPath         string   `koanf:"duckdb_path"`
	SaveOracleRankings bool     `koanf:"save_oracle_rankings"`
}

// EvaluationConfig holds orchestrator settings.
type EvaluationConfig struct {
	Workers int            `koanf:"workers" validate:"min=1,max=1024"`
	MAP     MetricSettings `koanf:"map"`
	EPC     MetricSettings `koanf:"epc"`
	EILD    MetricSettings `koanf:"eild"`
}

// MetricSettings configures one metric.
type MetricSettings struct {
	Enabled  bool  `koanf:"enabled"`
	Cutoffs  []int `koanf:"cutoffs" validate:"cutoffs"`
	Parallel bool  `koanf:"parallel"`
}

// OracleConfig configures oracle ranking generation.
type OracleConfig struct {
	Enabled      bool `koanf:"enabled"`
	InputCutoff  int  `koanf:"input_cutoff" validate:"min=1"`
	OutputCutoff int  `koanf:"output_cutoff" validate:"min=1"`
}

// CacheConfig configures distance matrix snapshots on disk.
type CacheConfig struct {
	Enabled bool   `koanf:"enabled"`
	Dir     string `koanf:"dir"`
	Keep    int    `koanf:"keep" validate:"min=1"`
}

// LoggingConfig mirrors logging.Config for file and env configuration.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// TelemetryConfig configures Prometheus output for batch runs.
type TelemetryConfig struct {
	TextfilePath string `koanf:"textfile_path"`
}

// ErrNoMetricsEnabled is returned when every metric is switched off.
var ErrNoMetricsEnabled = errors.New("at least one metric must be enabled")

// Validate checks struct tags and cross-field constraints.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return err
	}

	if !c.Evaluation.MAP.Enabled && !c.Evaluation.EPC.Enabled && !c.Evaluation.EILD.Enabled {
		return ErrNoMetricsEnabled
	}

	if c.Cache.Enabled && c.Cache.Dir == "" {
		return fmt.Errorf("cache.dir is required when cache.enabled=true")
	}

	return nil
}

// HasFormat reports whether the given sink format is configured.
func (c *Config) HasFormat(format string) bool {
	return slices.Contains(c.Output.Formats, format)
}

// DuckDBFile returns the configured DuckDB path or the default under the output directory.
func (c *Config) DuckDBFile() string {
	if c.Output.DuckDBPath != "" {
		return c.Output.DuckDBPath
	}
	return filepath.Join(c.Output.Dir, "results.duckdb")
}

// OracleDir is where generated oracle rankings are written.
func (c *Config) OracleDir() string {
	return filepath.Join(c.Output.Dir, "oracles")
}

// EvaluatorConfig maps the enabled metrics, worker count and oracle cutoffs
// onto an evaluation.Config. Metrics keep the MAP, EPC, EILD order.
func (c *Config) EvaluatorConfig() *evaluation.Config {
	out := &evaluation.Config{
		Workers: c.Evaluation.Workers,
		Oracle: evaluation.OracleConfig{
			InputCutoff:  c.Oracle.InputCutoff,
			OutputCutoff: c.Oracle.OutputCutoff,
		},
	}

	settings := []struct {
		kind metric.Kind
		s    MetricSettings
	}{
		{metric.KindMAP, c.Evaluation.MAP},
		{metric.KindEPC, c.Evaluation.EPC},
		{metric.KindEILD, c.Evaluation.EILD},
	}
	for _, m := range settings {
		if !m.s.Enabled {
			continue
		}
		cutoffs := slices.Clone(m.s.Cutoffs)
		if len(cutoffs) == 0 {
			cutoffs = []int{evaluation.DefaultCutoff}
		}
		out.Metrics = append(out.Metrics, evaluation.MetricConfig{
			Kind:     m.kind,
			Cutoffs:  cutoffs,
			Parallel: m.s.Parallel,
		})
	}
	return out
}
