// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package evaluation

import (
	"errors"
	"fmt"
	"runtime"
	"slices"

	"github.com/Hybbon/ps/internal/evaluation/metric"
	"github.com/Hybbon/ps/internal/evaluation/oracle"
)

// MetricConfig enables one metric at a set of cutoffs.
type MetricConfig struct {
	Kind    metric.Kind
	Cutoffs []int

	// Parallel runs this metric's tasks on the worker pool.
	Parallel bool
}

// OracleConfig controls oracle generation.
type OracleConfig struct {
	// InputCutoff is how many items of each source ranking enter the candidate pool.
	InputCutoff int

	// OutputCutoff is the length of each oracle ranking.
	OutputCutoff int
}

// Config configures an Evaluator.
type Config struct {
	Metrics []MetricConfig
	Workers int
	Oracle  OracleConfig
}

// DefaultCutoff is used when a metric lists no cutoffs.
const DefaultCutoff = 10

// DefaultConfig enables every metric at cutoff 10 on the worker pool.
func DefaultConfig() *Config {
	cfg := &Config{
		Workers: runtime.GOMAXPROCS(0),
		Oracle: OracleConfig{
			InputCutoff:  20,
			OutputCutoff: 10,
		},
	}
	for _, kind := range metric.Kinds {
		cfg.Metrics = append(cfg.Metrics, MetricConfig{
			Kind:     kind,
			Cutoffs:  []int{DefaultCutoff},
			Parallel: true,
		})
	}
	return cfg
}

// ErrNoMetrics is returned when a config enables no metric.
var ErrNoMetrics = errors.New("no metrics configured")

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if len(c.Metrics) == 0 {
		return ErrNoMetrics
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}

	seen := make(map[metric.Kind]bool, len(c.Metrics))
	for _, mc := range c.Metrics {
		if !slices.Contains(metric.Kinds, mc.Kind) {
			return fmt.Errorf("unknown metric kind %d", int(mc.Kind))
		}
		if seen[mc.Kind] {
			return fmt.Errorf("metric %s configured twice", mc.Kind)
		}
		seen[mc.Kind] = true

		if len(mc.Cutoffs) == 0 {
			return fmt.Errorf("metric %s has no cutoffs", mc.Kind)
		}
		for _, cutoff := range mc.Cutoffs {
			if cutoff < 1 {
				return fmt.Errorf("metric %s: %w: got %d", mc.Kind, metric.ErrInvalidCutoff, cutoff)
			}
		}
	}

	if c.Oracle.InputCutoff < 1 {
		return fmt.Errorf("%w: input cutoff %d", oracle.ErrInvalidCutoff, c.Oracle.InputCutoff)
	}
	if c.Oracle.OutputCutoff < 1 {
		return fmt.Errorf("%w: output cutoff %d", oracle.ErrInvalidCutoff, c.Oracle.OutputCutoff)
	}
	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	out := &Config{
		Workers: c.Workers,
		Oracle:  c.Oracle,
		Metrics: make([]MetricConfig, len(c.Metrics)),
	}
	for i, mc := range c.Metrics {
		mc.Cutoffs = slices.Clone(mc.Cutoffs)
		out.Metrics[i] = mc
	}
	return out
}
