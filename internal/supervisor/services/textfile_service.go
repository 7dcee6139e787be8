// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// TextfileWriter writes metrics to path.
type TextfileWriter func(path string) error

// DefaultTextfileInterval is used when NewTextfileService gets a non-positive interval.
const DefaultTextfileInterval = 15 * time.Second

// TextfileService keeps a Prometheus textfile current while a run is in progress.
type TextfileService struct {
	path     string
	interval time.Duration
	write    TextfileWriter
	logger   zerolog.Logger
}

// NewTextfileService creates a service writing to path every interval.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewTextfileService(path string, interval time.Duration, write TextfileWriter, logger zerolog.Logger) *TextfileService {
	if interval <= 0 {
		interval = DefaultTextfileInterval
	}
	return &TextfileService{
		path:     path,
		interval: interval,
		write:    write,
		logger:   logger.With().Str("service", "textfile").Logger(),
	}
}

// Serve implements suture.Service. Write errors are logged, not returned;
// a missing metrics file never fails a run.
func (s *TextfileService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.flush()
			return ctx.Err()
		case <-ticker.C:
			s.flush()
		}
	}
}

func (s *TextfileService) flush() {
	if err := s.write(s.path); err != nil {
		s.logger.Warn().Err(err).Str("path", s.path).Msg("failed to write metrics textfile")
		return
	}
	s.logger.Debug().Str("path", s.path).Msg("metrics textfile written")
}

// String returns the service name for logging.
func (s *TextfileService) String() string {
	return "textfile-service"
}
