// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

//go:build integration

package database

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"path/filepath"
	"testing"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/rs/zerolog"

	"github.com/Hybbon/ps/internal/evaluation"
)

func setupTestStore(t *testing.T) *ResultStore {
	t.Helper()

	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open in-memory DuckDB: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	store := NewResultStore(db, zerolog.Nop())
	if err := store.CreateTable(context.Background()); err != nil {
		t.Fatalf("CreateTable failed: %v", err)
	}
	return store
}

func sampleResults() evaluation.Results {
	return evaluation.Results{
		{Metric: "MAP", Cutoff: 10, Fold: "1", Source: "ItemKNN", Value: 0.2},
		{Metric: "MAP", Cutoff: 10, Fold: "2", Source: "ItemKNN", Value: 0.4},
		{Metric: "MAP", Cutoff: 10, Fold: "1", Source: "MAPOracle", Value: 0.9},
		{Metric: "EPC", Cutoff: 5, Fold: "1", Source: "ItemKNN", Value: 0.5},
	}
}

func TestResultStore_CreateTable(t *testing.T) {
	store := setupTestStore(t)

	// Idempotent.
	if err := store.CreateTable(context.Background()); err != nil {
		t.Fatalf("second CreateTable failed: %v", err)
	}

	var count int
	err := store.db.QueryRow(`SELECT COUNT(*) FROM information_schema.tables WHERE table_name = 'evaluation_results'`).Scan(&count)
	if err != nil {
		t.Fatalf("Failed to query tables: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected evaluation_results table, got count %d", count)
	}
}

func TestResultStore_WriteAndRecords(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	if err := store.Write(ctx, "run-1", sampleResults()); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	got, err := store.Records(ctx, "run-1")
	if err != nil {
		t.Fatalf("Records failed: %v", err)
	}
	want := sampleResults()
	want.Sort()
	if len(got) != len(want) {
		t.Fatalf("Expected %d records, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("record %d: got %+v, want %+v", i, got[i], want[i])
		}
	}

	other, err := store.Records(ctx, "run-2")
	if err != nil {
		t.Fatalf("Records failed: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("Expected no records for unknown run, got %d", len(other))
	}
}

func TestResultStore_WriteIsAtomic(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	dup := evaluation.Results{
		{Metric: "MAP", Cutoff: 10, Fold: "1", Source: "ItemKNN", Value: 0.2},
		{Metric: "MAP", Cutoff: 10, Fold: "1", Source: "ItemKNN", Value: 0.3},
	}
	if err := store.Write(ctx, "run-1", dup); err == nil {
		t.Fatal("Expected primary key violation")
	}

	got, err := store.Records(ctx, "run-1")
	if err != nil {
		t.Fatalf("Records failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Expected rollback to leave no rows, got %d", len(got))
	}
}

func TestResultStore_RequiresRunID(t *testing.T) {
	store := setupTestStore(t)
	if err := store.Write(context.Background(), "", sampleResults()); !errors.Is(err, ErrEmptyRunID) {
		t.Errorf("Expected ErrEmptyRunID, got %v", err)
	}
}

func TestResultStore_SourceMeansMatchesSummarize(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	res := sampleResults()
	if err := store.Write(ctx, "run-1", res); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	got, err := store.SourceMeans(ctx, "run-1")
	if err != nil {
		t.Fatalf("SourceMeans failed: %v", err)
	}
	want := evaluation.Summarize(res)
	if len(got) != len(want) {
		t.Fatalf("Expected %d summaries, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i].Metric != want[i].Metric || got[i].Cutoff != want[i].Cutoff ||
			got[i].Source != want[i].Source || got[i].Category != want[i].Category ||
			got[i].Folds != want[i].Folds {
			t.Errorf("summary %d: got %+v, want %+v", i, got[i], want[i])
		}
		if math.Abs(got[i].Mean-want[i].Mean) > 1e-12 {
			t.Errorf("summary %d mean: got %v, want %v", i, got[i].Mean, want[i].Mean)
		}
	}
}

func TestResultStore_Runs(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	if err := store.Write(ctx, "run-1", sampleResults()); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := store.Write(ctx, "run-2", sampleResults()[:1]); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	runs, err := store.Runs(ctx)
	if err != nil {
		t.Fatalf("Runs failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("Expected 2 runs, got %d", len(runs))
	}
	counts := map[string]int{}
	for _, r := range runs {
		counts[r.RunID] = r.Records
	}
	if counts["run-1"] != 4 || counts["run-2"] != 1 {
		t.Errorf("unexpected record counts: %v", counts)
	}
}

func TestOpen_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "results.duckdb")

	store, err := Open(context.Background(), path, zerolog.Nop())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := store.Write(context.Background(), "run-1", sampleResults()); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := Open(context.Background(), path, zerolog.Nop())
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Records(context.Background(), "run-1")
	if err != nil {
		t.Fatalf("Records failed: %v", err)
	}
	if len(got) != 4 {
		t.Errorf("Expected 4 persisted records, got %d", len(got))
	}
}
