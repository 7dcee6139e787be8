// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package results

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"

	"github.com/Hybbon/ps/internal/evaluation"
)

// JSONFilename is the file JSONSink writes.
const JSONFilename = "metrics.json"

// Document is the JSON output layout.
type Document struct {
	RunID       string                     `json:"run_id"`
	GeneratedAt time.Time                  `json:"generated_at"`
	Records     evaluation.Results         `json:"records"`
	Summary     []evaluation.SourceSummary `json:"summary"`
}

// JSONSink writes records and their summary to <dir>/metrics.json.
type JSONSink struct {
	dir string
	now func() time.Time
}

// NewJSONSink returns a sink writing under dir.
func NewJSONSink(dir string) *JSONSink {
	return &JSONSink{dir: dir, now: time.Now}
}

// Name implements Sink.
func (s *JSONSink) Name() string { return "json" }

// Path returns the output file path.
func (s *JSONSink) Path() string {
	return filepath.Join(s.dir, JSONFilename)
}

// Write implements Sink.
func (s *JSONSink) Write(ctx context.Context, runID string, results evaluation.Results) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := ensureDir(s.dir); err != nil {
		return err
	}

	records := results
	if records == nil {
		records = evaluation.Results{}
	}
	doc := Document{
		RunID:       runID,
		GeneratedAt: s.now().UTC(),
		Records:     records,
		Summary:     evaluation.Summarize(results),
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	if err := os.WriteFile(s.Path(), append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("write %s: %w", s.Path(), err)
	}
	return nil
}

// ReadJSON parses a file written by JSONSink.
func ReadJSON(path string) (*Document, error) {
	data, err := os.ReadFile(path) //nolint:gosec // caller-provided results path
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &doc, nil
}
