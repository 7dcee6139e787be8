// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package results

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/Hybbon/ps/internal/evaluation"
)

// CSVFilename is the file CSVSink writes.
const CSVFilename = "metrics.csv"

var csvHeader = []string{"metric", "cutoff", "fold", "source", "value"}

// CSVSink writes records to <dir>/metrics.csv, replacing any previous file.
type CSVSink struct {
	dir string
}

// NewCSVSink returns a sink writing under dir.
func NewCSVSink(dir string) *CSVSink {
	return &CSVSink{dir: dir}
}

// Name implements Sink.
func (s *CSVSink) Name() string { return "csv" }

// Path returns the output file path.
func (s *CSVSink) Path() string {
	return filepath.Join(s.dir, CSVFilename)
}

// Write implements Sink. The run id is not part of the CSV layout.
func (s *CSVSink) Write(ctx context.Context, _ string, results evaluation.Results) (err error) {
	if err := ensureDir(s.dir); err != nil {
		return err
	}

	f, err := os.Create(s.Path())
	if err != nil {
		return fmt.Errorf("create %s: %w", s.Path(), err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", s.Path(), cerr)
		}
	}()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for i, rec := range results {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		row := []string{
			rec.Metric,
			strconv.Itoa(rec.Cutoff),
			rec.Fold,
			rec.Source,
			strconv.FormatFloat(rec.Value, 'g', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

// ReadCSV parses a file written by CSVSink.
func ReadCSV(path string) (evaluation.Results, error) {
	f, err := os.Open(path) //nolint:gosec // caller-provided results path
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }() //nolint:errcheck // read-only file

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: missing header", path)
	}

	results := make(evaluation.Results, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if len(row) != len(csvHeader) {
			return nil, fmt.Errorf("%s:%d: expected %d columns, got %d", path, i+2, len(csvHeader), len(row))
		}
		cutoff, err := strconv.Atoi(row[1])
		if err != nil {
			return nil, fmt.Errorf("%s:%d: cutoff: %w", path, i+2, err)
		}
		value, err := strconv.ParseFloat(row[4], 64)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: value: %w", path, i+2, err)
		}
		results = append(results, evaluation.Record{
			Metric: row[0],
			Cutoff: cutoff,
			Fold:   row[2],
			Source: row[3],
			Value:  value,
		})
	}
	return results, nil
}
