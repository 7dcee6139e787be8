// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package evaluation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/Hybbon/ps/internal/dataset"
	"github.com/Hybbon/ps/internal/evaluation/metric"
	"github.com/Hybbon/ps/internal/evaluation/oracle"
	"github.com/Hybbon/ps/internal/evaluation/statistics"
	"github.com/Hybbon/ps/internal/metrics"
)

// Evaluator computes metric records for ranking sets.
// It is safe for concurrent use; each Evaluate call is independent.
type Evaluator struct {
	config  *Config
	cache   *statistics.Cache
	logger  zerolog.Logger
	metrics []metric.Metric
}

// NewEvaluator creates an evaluator. A nil cfg uses DefaultConfig.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEvaluator(cfg *Config, cache *statistics.Cache, logger zerolog.Logger) (*Evaluator, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if cache == nil {
		return nil, errors.New("nil statistics cache")
	}

	cfg = cfg.Clone()
	ms := make([]metric.Metric, len(cfg.Metrics))
	for i, mc := range cfg.Metrics {
		m, err := metric.New(mc.Kind, cache)
		if err != nil {
			return nil, err
		}
		ms[i] = m
	}

	return &Evaluator{
		config:  cfg,
		cache:   cache,
		logger:  logger.With().Str("component", "evaluator").Logger(),
		metrics: ms,
	}, nil
}

// task is one (metric, cutoff, ranking set) evaluation writing to results[slot].
type task struct {
	slot   int
	metric metric.Metric
	cutoff int
	rs     *dataset.RankingSet
}

func (t task) run(ctx context.Context) (Record, error) {
	start := time.Now()
	value, err := t.metric.Compute(ctx, t.rs, t.cutoff)
	metrics.RecordEvaluation(t.metric.Name(), time.Since(start), err)
	if err != nil {
		return Record{}, fmt.Errorf("evaluate %s@%d on %s: %w", t.metric.Name(), t.cutoff, t.rs.ID, err)
	}
	return Record{
		Metric: t.metric.Name(),
		Cutoff: t.cutoff,
		Fold:   t.rs.ID.Fold,
		Source: t.rs.ID.Source,
		Value:  value,
	}, nil
}

// Evaluate scores every ranking set with every configured metric and cutoff.
//
// Statistics a metric needs are computed for every input fold before its
// tasks start, so a fold without ratings fails before any scoring. The first
// task error cancels the remaining tasks and is returned; no partial results
// are returned.
func (e *Evaluator) Evaluate(ctx context.Context, rankings dataset.RankingSets) (Results, error) {
	ids := rankings.IDs()
	folds := rankings.Folds()

	total := 0
	for _, mc := range e.config.Metrics {
		total += len(mc.Cutoffs) * len(ids)
	}
	results := make(Results, total)

	e.logger.Info().
		Int("ranking_sets", len(ids)).
		Int("folds", len(folds)).
		Int("tasks", total).
		Int("workers", e.config.Workers).
		Msg("Starting evaluation")
	start := time.Now()

	slot := 0
	for i, mc := range e.config.Metrics {
		m := e.metrics[i]

		warmStart := time.Now()
		if err := e.cache.WarmFolds(ctx, folds, mc.Kind.Requires()...); err != nil {
			return nil, fmt.Errorf("prepare statistics for %s: %w", m.Name(), err)
		}
		e.logger.Debug().Str("metric", m.Name()).Dur("duration", time.Since(warmStart)).Msg("Statistics ready")

		tasks := make([]task, 0, len(mc.Cutoffs)*len(ids))
		for _, cutoff := range mc.Cutoffs {
			for _, id := range ids {
				tasks = append(tasks, task{slot: slot, metric: m, cutoff: cutoff, rs: rankings[id]})
				slot++
			}
		}

		metricStart := time.Now()
		var err error
		if mc.Parallel && e.config.Workers > 1 {
			err = e.runParallel(ctx, tasks, results)
		} else {
			err = runSequential(ctx, tasks, results)
		}
		if err != nil {
			e.logger.Error().Err(err).Str("metric", m.Name()).Msg("Evaluation failed")
			return nil, err
		}

		e.logger.Info().
			Str("metric", m.Name()).
			Ints("cutoffs", mc.Cutoffs).
			Int("tasks", len(tasks)).
			Bool("parallel", mc.Parallel).
			Dur("duration", time.Since(metricStart)).
			Msg("Metric evaluated")
	}

	e.logger.Info().
		Int("records", len(results)).
		Dur("duration", time.Since(start)).
		Msg("Evaluation complete")
	return results, nil
}

func (e *Evaluator) runParallel(ctx context.Context, tasks []task, results Results) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.config.Workers)
	for _, t := range tasks {
		g.Go(func() error {
			rec, err := t.run(gctx)
			if err != nil {
				return err
			}
			results[t.slot] = rec
			return nil
		})
	}
	return g.Wait()
}

func runSequential(ctx context.Context, tasks []task, results Results) error {
	for _, t := range tasks {
		rec, err := t.run(ctx)
		if err != nil {
			return err
		}
		results[t.slot] = rec
	}
	return nil
}

// GenerateOracles builds the requested oracle ranking sets for every fold of
// the cache's rating sets, using cfg.Oracle cutoffs.
func GenerateOracles(ctx context.Context, cfg *Config, rankings dataset.RankingSets, cache *statistics.Cache, kinds []oracle.Kind) (dataset.RankingSets, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if cache == nil {
		return nil, errors.New("nil statistics cache")
	}
	if len(kinds) == 0 {
		kinds = oracle.Kinds
	}

	folds := cache.Folds()
	oracles := make([]oracle.Oracle, 0, len(kinds))
	var required []statistics.Kind
	for _, kind := range kinds {
		o, err := oracle.New(kind, rankings, cache)
		if err != nil {
			return nil, err
		}
		oracles = append(oracles, o)
		required = append(required, kind.Requires()...)
	}

	if err := cache.WarmFolds(ctx, folds, required...); err != nil {
		return nil, fmt.Errorf("prepare statistics for oracles: %w", err)
	}
	return oracle.GenerateAll(ctx, oracles, folds, cfg.Oracle.InputCutoff, cfg.Oracle.OutputCutoff, cfg.Workers)
}
