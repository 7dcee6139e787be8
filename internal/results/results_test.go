// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package results

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/Hybbon/ps/internal/evaluation"
	"github.com/Hybbon/ps/internal/logging"
)

func sampleResults() evaluation.Results {
	return evaluation.Results{
		{Metric: "MAP", Cutoff: 10, Fold: "1", Source: "ItemKNN", Value: 0.125},
		{Metric: "MAP", Cutoff: 10, Fold: "2", Source: "ItemKNN", Value: 0.375},
		{Metric: "EPC", Cutoff: 5, Fold: "1", Source: "MAPOracle", Value: 0.9},
	}
}

func TestCSVSink(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "out")
	sink := NewCSVSink(dir)
	if sink.Name() != "csv" {
		t.Errorf("Name() = %q", sink.Name())
	}

	if err := sink.Write(context.Background(), "run-1", sampleResults()); err != nil {
		t.Fatalf("Write() error: %v", err)
	}

	data, err := os.ReadFile(sink.Path())
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if lines[0] != "metric,cutoff,fold,source,value" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != "MAP,10,1,ItemKNN,0.125" {
		t.Errorf("first row = %q", lines[1])
	}

	back, err := ReadCSV(sink.Path())
	if err != nil {
		t.Fatalf("ReadCSV() error: %v", err)
	}
	if !reflect.DeepEqual(back, sampleResults()) {
		t.Errorf("ReadCSV() = %+v", back)
	}
}

func TestReadCSV_Malformed(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.csv")
	if err := os.WriteFile(path, []byte("metric,cutoff,fold,source,value\nMAP,ten,1,A,0.1\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadCSV(path); err == nil {
		t.Error("expected error for non-numeric cutoff")
	}
}

func TestJSONSink(t *testing.T) {
	t.Parallel()

	sink := NewJSONSink(t.TempDir())
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	sink.now = func() time.Time { return fixed }

	if err := sink.Write(context.Background(), "run-42", sampleResults()); err != nil {
		t.Fatalf("Write() error: %v", err)
	}

	doc, err := ReadJSON(sink.Path())
	if err != nil {
		t.Fatalf("ReadJSON() error: %v", err)
	}
	if doc.RunID != "run-42" || !doc.GeneratedAt.Equal(fixed) {
		t.Errorf("doc header = %q %v", doc.RunID, doc.GeneratedAt)
	}
	if !reflect.DeepEqual(doc.Records, sampleResults()) {
		t.Errorf("Records = %+v", doc.Records)
	}
	if len(doc.Summary) != 2 {
		t.Fatalf("Summary = %+v", doc.Summary)
	}
	if s := doc.Summary[1]; s.Source != "ItemKNN" || s.Mean != 0.25 || s.Folds != 2 || s.Category != evaluation.CategoryRecommender {
		t.Errorf("ItemKNN summary = %+v", s)
	}
}

func TestJSONSink_EmptyResults(t *testing.T) {
	t.Parallel()

	sink := NewJSONSink(t.TempDir())
	if err := sink.Write(context.Background(), "run", nil); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	data, err := os.ReadFile(sink.Path())
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(data, []byte(`"records": []`)) {
		t.Errorf("expected empty records array, got %s", data)
	}
}

type failingSink struct{ err error }

func (f failingSink) Name() string { return "failing" }
func (f failingSink) Write(context.Context, string, evaluation.Results) error {
	return f.err
}

func TestWriteAll(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	var buf bytes.Buffer
	logger := logging.NewTestLogger(&buf)

	sinks := []Sink{NewCSVSink(dir), NewJSONSink(dir)}
	if err := WriteAll(context.Background(), sinks, "run", sampleResults(), logger); err != nil {
		t.Fatalf("WriteAll() error: %v", err)
	}
	for _, name := range []string{CSVFilename, JSONFilename} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
	if !strings.Contains(buf.String(), "Results written") {
		t.Errorf("expected log output, got %q", buf.String())
	}

	boom := errors.New("boom")
	err := WriteAll(context.Background(), []Sink{failingSink{err: boom}}, "run", sampleResults(), logger)
	if !errors.Is(err, boom) {
		t.Errorf("expected wrapped sink error, got %v", err)
	}
}
