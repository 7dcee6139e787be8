// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package main

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/rs/zerolog"

	"github.com/Hybbon/ps/internal/config"
	"github.com/Hybbon/ps/internal/database"
	"github.com/Hybbon/ps/internal/dataset"
	"github.com/Hybbon/ps/internal/evaluation"
	"github.com/Hybbon/ps/internal/evaluation/oracle"
	"github.com/Hybbon/ps/internal/evaluation/statistics"
	"github.com/Hybbon/ps/internal/evaluation/storage"
	"github.com/Hybbon/ps/internal/logging"
	"github.com/Hybbon/ps/internal/metrics"
	"github.com/Hybbon/ps/internal/results"
	"github.com/Hybbon/ps/internal/supervisor"
	"github.com/Hybbon/ps/internal/supervisor/services"
)

// textfileInterval is how often the Prometheus textfile is refreshed during a run.
const textfileInterval = 15 * time.Second

// app holds the per-run state shared by the subcommands.
type app struct {
	cfg    *config.Config
	runID  string
	logger zerolog.Logger

	snapshots *storage.Store
}

func newApp(ctx context.Context, cfg *config.Config) (context.Context, *app, error) {
	runID := logging.NewRunID()
	ctx = logging.ContextWithRunID(ctx, runID)

	a := &app{
		cfg:    cfg,
		runID:  runID,
		logger: *logging.Ctx(ctx),
	}

	logging.Info().
		Str("run_id", runID).
		Str("dataset", cfg.Dataset.Dir).
		Msg("Run started")

	if cfg.Cache.Enabled {
		store, err := storage.NewStore(cfg.Cache.Dir)
		if err != nil {
			return nil, nil, fmt.Errorf("open statistics cache: %w", err)
		}
		a.snapshots = store
	}
	return ctx, a, nil
}

// supervise runs fn as a one-shot job under a supervisor tree. The textfile
// service runs alongside it when telemetry is configured.
func (a *app) supervise(ctx context.Context, name string, fn services.JobFunc) error {
	treeLogger := logging.With().Str("component", "supervisor").Str("run_id", a.runID).Logger()
	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(treeLogger), supervisor.TreeConfig{})
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}

	if path := a.cfg.Telemetry.TextfilePath; path != "" {
		tree.AddTelemetryService(services.NewTextfileService(path, textfileInterval, metrics.WriteTextfile, a.logger))
	}

	job := services.NewJobService(name, fn, services.JobConfig{}, a.logger)
	return tree.Run(ctx, job)
}

// loadRatings reads the rating splits and logs one summary line per fold.
func (a *app) loadRatings() (dataset.RatingSets, error) {
	ratings, err := dataset.LoadRatingSets(a.cfg.Dataset.Dir)
	if err != nil {
		return nil, err
	}
	for _, fold := range ratings.Folds() {
		a.logger.Info().EmbedObject(statistics.FoldSummary(ratings[fold])).Msg("Fold loaded")
	}
	return ratings, nil
}

func (a *app) loadRankings(ctx context.Context) (dataset.RankingSets, error) {
	rankings, err := dataset.LoadRankingSets(ctx, a.cfg.Dataset.Dir, a.cfg.Evaluation.Workers)
	if err != nil {
		return nil, err
	}
	metrics.RecordRankingSetsLoaded(len(rankings))
	a.logger.Info().
		Int("ranking_sets", len(rankings)).
		Strs("folds", rankings.Folds()).
		Msg("Ranking sets loaded")
	return rankings, nil
}

func (a *app) newCache(ratings dataset.RatingSets) *statistics.Cache {
	cfg := statistics.CacheConfig{
		Workers: a.cfg.Evaluation.Workers,
		Logger:  a.logger,
	}
	if a.snapshots != nil {
		cfg.Store = a.snapshots
	}
	return statistics.NewCache(ratings, cfg)
}

// pruneSnapshots keeps the newest cache.keep snapshots per fold.
func (a *app) pruneSnapshots(folds []string) {
	if a.snapshots == nil {
		return
	}
	for _, fold := range folds {
		if err := a.snapshots.Prune(fold, a.cfg.Cache.Keep); err != nil {
			a.logger.Warn().Err(err).Str("fold", fold).Msg("Failed to prune statistics snapshots")
		}
	}
}

// generateOracles builds oracle rankings and saves them when configured.
func (a *app) generateOracles(ctx context.Context, evalCfg *evaluation.Config, rankings dataset.RankingSets, cache *statistics.Cache, kinds []oracle.Kind, save bool) (dataset.RankingSets, error) {
	start := time.Now()
	oracles, err := evaluation.GenerateOracles(ctx, evalCfg, rankings, cache, kinds)
	if err != nil {
		return nil, err
	}
	a.logger.Info().
		Int("ranking_sets", len(oracles)).
		Int("input_cutoff", evalCfg.Oracle.InputCutoff).
		Int("output_cutoff", evalCfg.Oracle.OutputCutoff).
		Dur("duration", time.Since(start)).
		Msg("Oracle rankings generated")

	if save {
		paths, err := dataset.SaveRankingSets(a.cfg.OracleDir(), oracles)
		if err != nil {
			return nil, fmt.Errorf("save oracle rankings: %w", err)
		}
		a.logger.Info().Int("files", len(paths)).Str("dir", a.cfg.OracleDir()).Msg("Oracle rankings saved")
	}
	return oracles, nil
}

// openSinks builds the configured result sinks. The returned close function
// releases the DuckDB connection, if any.
func (a *app) openSinks(ctx context.Context) ([]results.Sink, func(), error) {
	var (
		sinks []results.Sink
		store *database.ResultStore
	)
	closeAll := func() {
		if store != nil {
			if err := store.Close(); err != nil {
				a.logger.Warn().Err(err).Msg("Failed to close results database")
			}
		}
	}

	for _, format := range a.cfg.Output.Formats {
		switch format {
		case "csv":
			sinks = append(sinks, results.NewCSVSink(a.cfg.Output.Dir))
		case "json":
			sinks = append(sinks, results.NewJSONSink(a.cfg.Output.Dir))
		case "duckdb":
			var err error
			store, err = database.Open(ctx, a.cfg.DuckDBFile(), a.logger)
			if err != nil {
				return nil, closeAll, err
			}
			sinks = append(sinks, store)
		default:
			return nil, closeAll, fmt.Errorf("unknown output format %q", format)
		}
	}
	return sinks, closeAll, nil
}

// writeResults stores res in every sink and logs the per-source means.
func (a *app) writeResults(ctx context.Context, res evaluation.Results) error {
	sinks, closeSinks, err := a.openSinks(ctx)
	defer closeSinks()
	if err != nil {
		return err
	}

	if err := results.WriteAll(ctx, sinks, a.runID, res, a.logger); err != nil {
		return err
	}

	for _, s := range evaluation.Summarize(res) {
		a.logger.Info().
			Str("metric", s.Metric).
			Int("cutoff", s.Cutoff).
			Str("source", s.Source).
			Str("category", s.Category).
			Float64("mean", s.Mean).
			Int("folds", s.Folds).
			Msg("Source summary")
	}
	return nil
}

// evaluate scores rankings with the configured metrics.
func (a *app) evaluate(ctx context.Context, evalCfg *evaluation.Config, cache *statistics.Cache, rankings dataset.RankingSets) (evaluation.Results, error) {
	evaluator, err := evaluation.NewEvaluator(evalCfg, cache, a.logger)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	res, err := evaluator.Evaluate(ctx, rankings)
	if err != nil {
		return nil, err
	}
	a.logger.Info().
		Int("records", len(res)).
		Dur("duration", time.Since(start)).
		Msg("Evaluation complete")
	return res, nil
}

// parseOracleKinds accepts oracle names such as "EPC" or "MAPOracle".
// An empty list means every oracle.
func parseOracleKinds(names []string) ([]oracle.Kind, error) {
	if len(names) == 0 {
		return oracle.Kinds, nil
	}
	kinds := make([]oracle.Kind, 0, len(names))
	var errs []error
	for _, name := range names {
		kind, err := oracle.ParseKind(name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if !slices.Contains(kinds, kind) {
			kinds = append(kinds, kind)
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return kinds, nil
}
