// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

/*
Package supervisor runs an evaluation under a suture v4 supervisor tree.

A batch run is a finite job, but it shares the process with helpers that live
as long as the job does, such as the Prometheus textfile writer. The tree
keeps them in separate layers:

	RootSupervisor ("ps")
	├── TelemetrySupervisor ("telemetry-layer")
	│   └── TextfileService (if telemetry.textfile_path is set)
	└── WorkSupervisor ("work-layer")
	    └── JobService (evaluate, oracles or stats)

Run starts the tree, waits for the job to finish, then cancels the tree so the
telemetry layer flushes and stops. The job's own error is returned; the
supervisor's shutdown error is only logged.

Supervisor events (restarts, backoff, timeouts) go through sutureslog into the
zerolog logger via logging.NewSlogLogger.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(logger), supervisor.TreeConfig{})
	if err != nil {
	    return err
	}
	tree.AddTelemetryService(services.NewTextfileService(path, 15*time.Second, metrics.WriteTextfile, logger))
	err = tree.Run(ctx, services.NewJobService("evaluate", runEvaluation, services.JobConfig{}, logger))
*/
package supervisor
