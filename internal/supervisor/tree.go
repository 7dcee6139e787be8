// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package supervisor

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/thejerf/suture/v4"
	"github.com/thejerf/sutureslog"
)

// TreeConfig holds supervisor tree configuration.
type TreeConfig struct {
	// FailureThreshold is the number of failures before entering backoff.
	// Default: 5
	FailureThreshold float64

	// FailureDecay is the rate at which failures decay in seconds.
	// Default: 30
	FailureDecay float64

	// FailureBackoff is the duration to wait when threshold is exceeded.
	// Default: 15s
	FailureBackoff time.Duration

	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	// Default: 10s
	ShutdownTimeout time.Duration
}

// DefaultTreeConfig returns suture's default failure parameters.
func DefaultTreeConfig() TreeConfig {
	return TreeConfig{
		FailureThreshold: 5.0,
		FailureDecay:     30.0,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	}
}

// Job is a supervised unit of work that finishes.
// Done is closed once the job has a final outcome, available from Err.
type Job interface {
	suture.Service
	Done() <-chan struct{}
	Err() error
}

// ErrJobNotFinished is returned by Run when the tree stopped before the job had an outcome.
var ErrJobNotFinished = errors.New("job did not finish")

// SupervisorTree is the two-layer tree a run executes under.
type SupervisorTree struct {
	root      *suture.Supervisor
	telemetry *suture.Supervisor
	work      *suture.Supervisor
	logger    *slog.Logger
	config    TreeConfig
}

// NewSupervisorTree creates a tree, filling zero config fields with defaults.
func NewSupervisorTree(logger *slog.Logger, config TreeConfig) (*SupervisorTree, error) {
	defaults := DefaultTreeConfig()
	if config.FailureThreshold == 0 {
		config.FailureThreshold = defaults.FailureThreshold
	}
	if config.FailureDecay == 0 {
		config.FailureDecay = defaults.FailureDecay
	}
	if config.FailureBackoff == 0 {
		config.FailureBackoff = defaults.FailureBackoff
	}
	if config.ShutdownTimeout == 0 {
		config.ShutdownTimeout = defaults.ShutdownTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}

	// MustHook has a pointer receiver.
	handler := &sutureslog.Handler{Logger: logger}

	rootSpec := suture.Spec{
		EventHook:        handler.MustHook(),
		FailureThreshold: config.FailureThreshold,
		FailureDecay:     config.FailureDecay,
		FailureBackoff:   config.FailureBackoff,
		Timeout:          config.ShutdownTimeout,
	}

	// Children inherit the EventHook when added to the root.
	childSpec := suture.Spec{
		FailureThreshold: config.FailureThreshold,
		FailureDecay:     config.FailureDecay,
		FailureBackoff:   config.FailureBackoff,
		Timeout:          config.ShutdownTimeout,
	}

	root := suture.New("ps", rootSpec)
	telemetry := suture.New("telemetry-layer", childSpec)
	work := suture.New("work-layer", childSpec)

	root.Add(telemetry)
	root.Add(work)

	return &SupervisorTree{
		root:      root,
		telemetry: telemetry,
		work:      work,
		logger:    logger,
		config:    config,
	}, nil
}

// Root returns the root supervisor.
func (t *SupervisorTree) Root() *suture.Supervisor {
	return t.root
}

// AddTelemetryService adds a long-lived helper that runs alongside the job.
func (t *SupervisorTree) AddTelemetryService(svc suture.Service) suture.ServiceToken {
	return t.telemetry.Add(svc)
}

// AddWorkService adds a service to the work layer.
func (t *SupervisorTree) AddWorkService(svc suture.Service) suture.ServiceToken {
	return t.work.Add(svc)
}

// Run adds job to the work layer, serves the tree until the job finishes or
// ctx is canceled, and returns the job's outcome.
func (t *SupervisorTree) Run(ctx context.Context, job Job) error {
	treeCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	t.AddWorkService(job)
	errCh := t.root.ServeBackground(treeCtx)

	select {
	case <-job.Done():
		cancel()
		t.logShutdown(<-errCh)
		return job.Err()
	case err := <-errCh:
		// The tree stopped on its own or ctx was canceled.
		t.logShutdown(err)
		select {
		case <-job.Done():
			return job.Err()
		default:
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return ErrJobNotFinished
	}
}

func (t *SupervisorTree) logShutdown(err error) {
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}
	t.logger.Warn("supervisor tree stopped with error", "error", err)
}

// UnstoppedServiceReport returns services that failed to stop within the shutdown timeout.
func (t *SupervisorTree) UnstoppedServiceReport() ([]suture.UnstoppedService, error) {
	return t.root.UnstoppedServiceReport()
}
