// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package results

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/Hybbon/ps/internal/evaluation"
	"github.com/Hybbon/ps/internal/metrics"
)

// Sink stores the records of one evaluation run.
type Sink interface {
	Name() string
	Write(ctx context.Context, runID string, results evaluation.Results) error
}

// WriteAll writes results to every sink in order and stops at the first failure.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func WriteAll(ctx context.Context, sinks []Sink, runID string, results evaluation.Results, logger zerolog.Logger) error {
	for _, sink := range sinks {
		if err := ctx.Err(); err != nil {
			return err
		}
		start := time.Now()
		if err := sink.Write(ctx, runID, results); err != nil {
			return fmt.Errorf("write %s results: %w", sink.Name(), err)
		}
		metrics.RecordRecordsWritten(sink.Name(), len(results))
		logger.Info().
			Str("sink", sink.Name()).
			Int("records", len(results)).
			Dur("duration", time.Since(start)).
			Msg("Results written")
	}
	return nil
}

func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	return nil
}
