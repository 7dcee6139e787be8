// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

/*
Package services provides suture.Service wrappers for the pieces of a run.

JobService runs one finite function (an evaluation, an oracle generation, a
statistics dump) and reports its outcome through Done and Err. It returns
suture.ErrDoNotRestart once it has an outcome, so the supervisor never reruns
a finished job. Failed attempts are retried up to JobConfig.MaxAttempts.

TextfileService periodically writes the Prometheus registry to a textfile for
node_exporter's textfile collector, and writes once more on shutdown.

Each wrapper implements fmt.Stringer so supervisor events name it.
*/
package services
