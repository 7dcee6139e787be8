// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	_ "github.com/duckdb/duckdb-go/v2" // registers the "duckdb" driver
	"github.com/rs/zerolog"

	"github.com/Hybbon/ps/internal/evaluation"
	"github.com/Hybbon/ps/internal/evaluation/oracle"
	"github.com/Hybbon/ps/internal/results"
)

// ResultStore persists evaluation records in a DuckDB database.
// Every run is kept; rows are keyed by run id.
type ResultStore struct {
	db     *sql.DB
	owned  bool
	logger zerolog.Logger
	mu     sync.Mutex
}

var _ results.Sink = (*ResultStore)(nil)

// Open opens or creates the DuckDB file at path and ensures the schema exists.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func Open(ctx context.Context, path string, logger zerolog.Logger) (*ResultStore, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "" {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	// Disable auto-install/auto-load so opening never reaches the network.
	connStr := fmt.Sprintf("%s?access_mode=read_write&threads=%d&autoinstall_known_extensions=false&autoload_known_extensions=false",
		path, runtime.NumCPU())
	if path == ":memory:" {
		connStr = ":memory:?autoinstall_known_extensions=false&autoload_known_extensions=false"
	}

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close() //nolint:errcheck // ping error takes precedence
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := NewResultStore(conn, logger)
	s.owned = true
	if err := s.CreateTable(ctx); err != nil {
		_ = conn.Close() //nolint:errcheck // schema error takes precedence
		return nil, err
	}

	s.logger.Info().Str("path", path).Msg("Results database opened")
	return s, nil
}

// NewResultStore wraps an open connection. The caller keeps ownership of db
// and must call CreateTable before writing.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewResultStore(db *sql.DB, logger zerolog.Logger) *ResultStore {
	return &ResultStore{
		db:     db,
		logger: logger.With().Str("component", "results_db").Logger(),
	}
}

// Close closes the connection if Open created it.
func (s *ResultStore) Close() error {
	if !s.owned {
		return nil
	}
	return s.db.Close()
}

// CreateTable creates the evaluation_results table if it doesn't exist.
func (s *ResultStore) CreateTable(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS evaluation_results (
			run_id TEXT NOT NULL,
			metric TEXT NOT NULL,
			cutoff INTEGER NOT NULL,
			fold TEXT NOT NULL,
			source TEXT NOT NULL,
			value DOUBLE NOT NULL,
			created_at TIMESTAMP NOT NULL,
			PRIMARY KEY (run_id, metric, cutoff, fold, source)
		);

		CREATE INDEX IF NOT EXISTS idx_results_source ON evaluation_results(metric, cutoff, source);
	`

	for _, stmt := range strings.Split(query, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}
	return nil
}

// Name implements results.Sink.
func (s *ResultStore) Name() string { return "duckdb" }

// ErrEmptyRunID is returned when writing without a run id.
var ErrEmptyRunID = errors.New("run id is required")

// Write inserts every record under runID in one transaction.
func (s *ResultStore) Write(ctx context.Context, runID string, res evaluation.Results) (err error) {
	if runID == "" {
		return ErrEmptyRunID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback() //nolint:errcheck // original error takes precedence
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO evaluation_results (run_id, metric, cutoff, fold, source, value, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, rec := range res {
		if _, err = stmt.ExecContext(ctx, runID, rec.Metric, rec.Cutoff, rec.Fold, rec.Source, rec.Value, now); err != nil {
			return fmt.Errorf("failed to insert %s@%d u%s-%s: %w", rec.Metric, rec.Cutoff, rec.Fold, rec.Source, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit results: %w", err)
	}
	s.logger.Debug().Str("run_id", runID).Int("records", len(res)).Msg("Results stored")
	return nil
}

// Records returns the records of one run ordered by metric, cutoff, fold and source.
func (s *ResultStore) Records(ctx context.Context, runID string) (evaluation.Results, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT metric, cutoff, fold, source, value
		FROM evaluation_results
		WHERE run_id = ?
		ORDER BY metric, cutoff, fold, source`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	var out evaluation.Results
	for rows.Next() {
		var rec evaluation.Record
		if err := rows.Scan(&rec.Metric, &rec.Cutoff, &rec.Fold, &rec.Source, &rec.Value); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating records: %w", err)
	}
	return out, nil
}

// SourceMeans averages one run's values over folds per (metric, cutoff, source).
// It matches evaluation.Summarize computed in SQL.
func (s *ResultStore) SourceMeans(ctx context.Context, runID string) ([]evaluation.SourceSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT metric, cutoff, source, AVG(value) AS mean, COUNT(*) AS folds
		FROM evaluation_results
		WHERE run_id = ?
		GROUP BY metric, cutoff, source
		ORDER BY metric, cutoff, source`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query source means: %w", err)
	}
	defer rows.Close()

	var out []evaluation.SourceSummary
	for rows.Next() {
		var sum evaluation.SourceSummary
		if err := rows.Scan(&sum.Metric, &sum.Cutoff, &sum.Source, &sum.Mean, &sum.Folds); err != nil {
			return nil, fmt.Errorf("failed to scan source mean: %w", err)
		}
		sum.Category = evaluation.CategoryRecommender
		if oracle.IsOracleSource(sum.Source) {
			sum.Category = evaluation.CategoryOracle
		}
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating source means: %w", err)
	}
	return out, nil
}

// RunInfo describes one stored run.
type RunInfo struct {
	RunID     string
	Records   int
	CreatedAt time.Time
}

// Runs lists stored runs, newest first.
func (s *ResultStore) Runs(ctx context.Context) ([]RunInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, COUNT(*), MAX(created_at)
		FROM evaluation_results
		GROUP BY run_id
		ORDER BY MAX(created_at) DESC, run_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var out []RunInfo
	for rows.Next() {
		var run RunInfo
		if err := rows.Scan(&run.RunID, &run.Records, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		out = append(out, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return out, nil
}
