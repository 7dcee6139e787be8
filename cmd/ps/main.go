// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

// Package main is the entry point for ps, the ranking evaluation and oracle tool.
//
// ps reads one dataset directory holding cross-validation folds and the
// rankings produced by recommender algorithms, then scores every ranking set
// with MAP, EPC and EILD at the configured cutoffs. It can also build oracle
// rankings that re-rank the union of all sources' candidates to maximise one
// metric, giving an upper reference for each fold.
//
// # Dataset layout
//
//	u1.base        user<TAB>item<TAB>rating   training split
//	u1.test        user<TAB>item<TAB>rating   held-out split
//	u1.validation  optional
//	u1-ItemKNN.out user<TAB>[item:score,...]  one file per (fold, source)
//
// # Commands
//
//	ps evaluate [--oracles]   score every source, optionally with oracles
//	ps oracles                build, save and score oracle rankings
//	ps stats [--warm]         log per-fold rating statistics
//	ps config                 print the effective configuration
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest priority wins):
//   - Command-line flags (--dataset, --output, --workers, --log-level)
//   - Environment variables (PS_DATASET_DIR, PS_MAP_CUTOFFS, LOG_LEVEL, ...)
//   - Config file (--config, CONFIG_PATH, ps.yaml or config.yaml)
//   - Built-in defaults
//
// # Signal Handling
//
// SIGINT and SIGTERM cancel the run. Workers stop at the next user boundary,
// nothing is written to the sinks, and the Prometheus textfile (if
// configured) is flushed before exit.
//
// # Example Usage
//
//	export PS_MAP_CUTOFFS=5,10
//	./ps evaluate --dataset data/ml100k --output out --oracles
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Hybbon/ps/internal/logging"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	interrupted := ctx.Err() != nil
	stop()

	if interrupted {
		logging.Warn().Msg("Interrupted, run canceled")
	}
	if err != nil {
		logging.Err(err).Msg("Command failed")
		os.Exit(1)
	}
}
