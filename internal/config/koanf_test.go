// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

// TestDefaultConfig verifies that defaultConfig() returns the documented defaults
func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Dataset.Dir != "" {
		t.Errorf("Dataset.Dir should be empty by default, got %q", cfg.Dataset.Dir)
	}
	if cfg.Output.Dir != "output" {
		t.Errorf("Output.Dir = %q, want output", cfg.Output.Dir)
	}
	if !reflect.DeepEqual(cfg.Output.Formats, []string{"csv"}) {
		t.Errorf("Output.Formats = %v, want [csv]", cfg.Output.Formats)
	}
	for name, m := range map[string]MetricSettings{
		"map":  cfg.Evaluation.MAP,
		"epc":  cfg.Evaluation.EPC,
		"eild": cfg.Evaluation.EILD,
	} {
		if !m.Enabled || !m.Parallel || !reflect.DeepEqual(m.Cutoffs, []int{10}) {
			t.Errorf("%s defaults = %+v, want enabled, parallel, cutoffs [10]", name, m)
		}
	}
	if cfg.Evaluation.Workers < 1 {
		t.Errorf("Evaluation.Workers = %d, want >= 1", cfg.Evaluation.Workers)
	}
	if cfg.Oracle.Enabled {
		t.Error("Oracle.Enabled should be false by default")
	}
	if cfg.Oracle.InputCutoff != 20 || cfg.Oracle.OutputCutoff != 10 {
		t.Errorf("Oracle cutoffs = %d/%d, want 20/10", cfg.Oracle.InputCutoff, cfg.Oracle.OutputCutoff)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		env  string
		want string
	}{
		{"PS_DATASET_DIR", "dataset.dir"},
		{"PS_MAP_CUTOFFS", "evaluation.map.cutoffs"},
		{"PS_ORACLE_OUTPUT_CUTOFF", "oracle.output_cutoff"},
		{"LOG_LEVEL", "logging.level"},
		{"HOME", ""},
		{"PATH", ""},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			if got := envTransformFunc(tt.env); got != tt.want {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.env, got, tt.want)
			}
		})
	}
}

func TestLoad_FileEnvAndOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ps.yaml")
	content := `
dataset:
  dir: /data/ml100k
output:
  formats: [csv, json]
evaluation:
  workers: 2
  eild:
    cutoffs: [5, 10, 20]
oracle:
  enabled: true
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("PS_MAP_CUTOFFS", "1, 5,10")
	t.Setenv("PS_ORACLE_INPUT_CUTOFF", "30")

	cfg, err := Load(LoadOptions{
		Path:      path,
		Overrides: map[string]interface{}{"evaluation.workers": 8},
	})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Dataset.Dir != "/data/ml100k" {
		t.Errorf("Dataset.Dir = %q, want /data/ml100k", cfg.Dataset.Dir)
	}
	if !reflect.DeepEqual(cfg.Output.Formats, []string{"csv", "json"}) {
		t.Errorf("Output.Formats = %v", cfg.Output.Formats)
	}
	if cfg.Evaluation.Workers != 8 {
		t.Errorf("Workers = %d, want override 8", cfg.Evaluation.Workers)
	}
	if !reflect.DeepEqual(cfg.Evaluation.EILD.Cutoffs, []int{5, 10, 20}) {
		t.Errorf("EILD cutoffs = %v, want [5 10 20]", cfg.Evaluation.EILD.Cutoffs)
	}
	if !reflect.DeepEqual(cfg.Evaluation.MAP.Cutoffs, []int{1, 5, 10}) {
		t.Errorf("MAP cutoffs = %v, want [1 5 10] from env", cfg.Evaluation.MAP.Cutoffs)
	}
	if !reflect.DeepEqual(cfg.Evaluation.EPC.Cutoffs, []int{10}) {
		t.Errorf("EPC cutoffs = %v, want default [10]", cfg.Evaluation.EPC.Cutoffs)
	}
	if !cfg.Oracle.Enabled || cfg.Oracle.InputCutoff != 30 || cfg.Oracle.OutputCutoff != 10 {
		t.Errorf("Oracle = %+v, want enabled 30/10", cfg.Oracle)
	}
}

func TestLoad_MissingDatasetFails(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "absent.yaml"))

	if _, err := Load(LoadOptions{}); err == nil {
		t.Fatal("expected validation error without dataset.dir")
	}
}

func TestLoad_ExplicitPathMustExist(t *testing.T) {
	_, err := Load(LoadOptions{Path: filepath.Join(t.TempDir(), "nope.yaml")})
	if err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}
