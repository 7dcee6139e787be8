// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

// Package logging provides the zerolog-based structured logger shared by the
// ps evaluator.
//
// # Overview
//
// A single global logger is configured once from main via Init. Components
// derive their own loggers with a "component" field and keep them by value:
//
//	logger := logging.With().Str("component", "oracle").Logger()
//	logger.Info().Str("fold", fold).Int("users", n).Msg("Oracle ranking built")
//
// # Run Correlation
//
// Every invocation of the CLI gets a run id (a UUID). It is stored in the
// context and attached to log lines via Ctx, and to result records written
// to the DuckDB results store.
//
//	ctx = logging.ContextWithRunID(ctx, logging.NewRunID())
//	logging.Ctx(ctx).Info().Msg("Evaluation started")
//
// # slog Bridge
//
// The supervisor package uses sutureslog, which requires a *slog.Logger.
// NewSlogLogger returns one that writes through zerolog so supervisor
// events share the same output and level.
//
// # Testing
//
// NewTestLogger writes JSON to any io.Writer, which lets tests assert on
// captured fields. Tests that need silence pass zerolog.Nop().
package logging
