// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if cfg.Level != "info" {
		t.Errorf("expected default level 'info', got '%s'", cfg.Level)
	}
	if cfg.Format != "console" {
		t.Errorf("expected default format 'console', got '%s'", cfg.Format)
	}
	if !cfg.Timestamp {
		t.Error("expected default timestamp to be true")
	}
}

func TestInit(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "debug", Format: "json", Timestamp: true, Output: &buf})
	defer Init(DefaultConfig())

	Info().Str("fold", "1").Msg("fold loaded")

	output := buf.String()
	if !strings.Contains(output, "fold loaded") {
		t.Errorf("expected output to contain message, got: %s", output)
	}
	if !strings.Contains(output, `"fold":"1"`) {
		t.Errorf("expected output to contain fold field, got: %s", output)
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"off", zerolog.Disabled},
		{"bogus", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestCtx_AddsRunID(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "info", Format: "json", Output: &buf})
	defer Init(DefaultConfig())

	ctx := ContextWithRunID(context.Background(), "run-42")
	if got := RunIDFromContext(ctx); got != "run-42" {
		t.Fatalf("RunIDFromContext() = %q, want run-42", got)
	}

	Ctx(ctx).Info().Msg("evaluating")
	if !strings.Contains(buf.String(), `"run_id":"run-42"`) {
		t.Errorf("expected run_id in output, got: %s", buf.String())
	}
}

func TestGlobalEvents(t *testing.T) {
	tests := []struct {
		name  string
		level string
		emit  func()
		want  []string
		quiet bool
	}{
		{
			name:  "err carries error field",
			level: "info",
			emit:  func() { Err(errors.New("boom")).Msg("Command failed") },
			want:  []string{`"level":"error"`, `"error":"boom"`, "Command failed"},
		},
		{
			name:  "err nil logs at info",
			level: "info",
			emit:  func() { Err(nil).Msg("done") },
			want:  []string{`"level":"info"`, "done"},
		},
		{
			name:  "debug shown at debug level",
			level: "debug",
			emit:  func() { Debug().Int("workers", 4).Msg("Configuration loaded") },
			want:  []string{`"level":"debug"`, `"workers":4`},
		},
		{
			name:  "debug suppressed at info level",
			level: "info",
			emit:  func() { Debug().Msg("Configuration loaded") },
			quiet: true,
		},
		{
			name:  "warn",
			level: "info",
			emit:  func() { Warn().Msg("Interrupted, run canceled") },
			want:  []string{`"level":"warn"`, "Interrupted"},
		},
		{
			name:  "with adds component",
			level: "info",
			emit: func() {
				l := With().Str("component", "supervisor").Logger()
				l.Info().Msg("started")
			},
			want: []string{`"component":"supervisor"`, "started"},
		},
	}

	defer Init(DefaultConfig())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			Init(Config{Level: tt.level, Format: "json", Output: &buf})

			tt.emit()

			out := buf.String()
			if tt.quiet {
				if out != "" {
					t.Errorf("expected no output, got: %s", out)
				}
				return
			}
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("expected %s in output, got: %s", w, out)
				}
			}
		})
	}
}

func TestRunIDFromContext_Missing(t *testing.T) {
	t.Parallel()

	if got := RunIDFromContext(context.Background()); got != "" {
		t.Errorf("expected empty run id, got %q", got)
	}
}

func TestNewRunID_Unique(t *testing.T) {
	t.Parallel()

	a, b := NewRunID(), NewRunID()
	if a == b {
		t.Errorf("expected distinct run ids, got %q twice", a)
	}
	if len(a) != 36 {
		t.Errorf("expected UUID string of length 36, got %d", len(a))
	}
}

func TestSlogHandler(t *testing.T) {
	var buf bytes.Buffer
	slogger := NewSlogLogger(NewTestLogger(&buf))

	slogger.With("service", "job").WithGroup("supervisor").Warn("restarting",
		slog.Int("attempt", 2),
		slog.Group("backoff", slog.Duration("wait", 0)),
	)

	output := buf.String()
	for _, want := range []string{
		`"level":"warn"`,
		`"message":"restarting"`,
		`"service":"job"`,
		`"supervisor.attempt":2`,
		`"supervisor.backoff.wait"`,
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %s in output, got: %s", want, output)
		}
	}
}

func TestSlogHandler_Enabled(t *testing.T) {
	t.Parallel()

	h := NewSlogHandler(zerolog.Nop().Level(zerolog.WarnLevel))
	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("info should be disabled on a warn-level logger")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Error("error should be enabled on a warn-level logger")
	}
}
