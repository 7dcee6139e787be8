// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"
)

// JobFunc is the work a JobService runs.
type JobFunc func(ctx context.Context) error

// JobConfig holds configuration for a JobService.
type JobConfig struct {
	// MaxAttempts bounds how often a failing job is started. Default: 1
	MaxAttempts int
}

// ErrAttemptsExhausted is the outcome of a job that was restarted after its
// last allowed attempt, e.g. because that attempt panicked.
var ErrAttemptsExhausted = errors.New("job attempts exhausted")

// JobService runs a JobFunc under supervision until it has an outcome.
type JobService struct {
	name   string
	fn     JobFunc
	config JobConfig
	logger zerolog.Logger

	mu       sync.Mutex
	attempts int
	err      error
	done     chan struct{}
	doneOnce sync.Once
}

// NewJobService creates a job named name.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewJobService(name string, fn JobFunc, cfg JobConfig, logger zerolog.Logger) *JobService {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &JobService{
		name:   name,
		fn:     fn,
		config: cfg,
		logger: logger.With().Str("service", "job").Str("job", name).Logger(),
		done:   make(chan struct{}),
	}
}

// Serve implements suture.Service.
func (s *JobService) Serve(ctx context.Context) error {
	select {
	case <-s.done:
		return suture.ErrDoNotRestart
	default:
	}

	s.mu.Lock()
	s.attempts++
	attempt := s.attempts
	s.mu.Unlock()

	if attempt > s.config.MaxAttempts {
		s.finish(fmt.Errorf("%s: %w after %d attempts", s.name, ErrAttemptsExhausted, s.config.MaxAttempts))
		return suture.ErrDoNotRestart
	}

	start := time.Now()
	s.logger.Info().Int("attempt", attempt).Msg("job starting")

	err := s.fn(ctx)
	switch {
	case err == nil:
		s.logger.Info().Dur("duration", time.Since(start)).Msg("job complete")
		s.finish(nil)
		return suture.ErrDoNotRestart

	case ctx.Err() != nil:
		s.logger.Info().Err(err).Msg("job canceled")
		s.finish(err)
		return ctx.Err()

	case attempt < s.config.MaxAttempts:
		s.logger.Warn().Err(err).Int("attempt", attempt).Msg("job failed, will retry")
		return err

	default:
		s.logger.Error().Err(err).Int("attempt", attempt).Msg("job failed")
		s.finish(err)
		return suture.ErrDoNotRestart
	}
}

func (s *JobService) finish(err error) {
	s.doneOnce.Do(func() {
		s.mu.Lock()
		s.err = err
		s.mu.Unlock()
		close(s.done)
	})
}

// Done is closed when the job has an outcome.
func (s *JobService) Done() <-chan struct{} {
	return s.done
}

// Err returns the job's outcome. It is nil until Done is closed.
func (s *JobService) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Attempts returns how many times the job was started.
func (s *JobService) Attempts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempts
}

// String returns the service name for logging.
func (s *JobService) String() string {
	return "job-" + s.name
}
