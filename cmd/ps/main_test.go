// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/Hybbon/ps/internal/config"
	"github.com/Hybbon/ps/internal/evaluation/oracle"
	"github.com/Hybbon/ps/internal/logging"
	"github.com/Hybbon/ps/internal/results"
)

// writeDataset creates a one-fold dataset with two sources.
func writeDataset(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"u1.base": "1\t2\t5\n2\t2\t4\n2\t3\t3\n3\t3\t5\n3\t4\t2\n",
		"u1.test": "1\t3\t4\n2\t4\t5\n3\t2\t1\n",
		"u1-A.out": "1\t[3:0.9,4:0.8,2:0.1]\n" +
			"2\t[4:0.9,2:0.5]\n" +
			"3\t[2:0.7,4:0.6]\n",
		"u1-B.out": "1\t[4:0.9,3:0.2]\n" +
			"2\t[3:0.9,4:0.3,2:0.2]\n" +
			"3\t[4:0.8,2:0.4,3:0.1]\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

func runCmd(t *testing.T, args ...string) error {
	t.Helper()
	cmd := newRootCmd()
	var stderr bytes.Buffer
	cmd.SetOut(&stderr)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	return cmd.ExecuteContext(context.Background())
}

func TestEvaluateCommand(t *testing.T) {
	dataDir := writeDataset(t)
	outDir := t.TempDir()

	err := runCmd(t, "evaluate",
		"--dataset", dataDir,
		"--output", outDir,
		"--workers", "2",
		"--log-level", "disabled",
		"--oracles",
	)
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}

	records, err := results.ReadCSV(filepath.Join(outDir, results.CSVFilename))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	// 3 metrics x (2 sources + 3 oracles) x 1 fold at the default cutoff.
	if len(records) != 15 {
		t.Fatalf("expected 15 records, got %d", len(records))
	}

	sources := map[string]bool{}
	for _, rec := range records {
		sources[rec.Source] = true
		if rec.Value < 0 || rec.Value > 1 {
			t.Errorf("record %+v out of [0,1]", rec)
		}
	}
	for _, want := range []string{"A", "B", oracle.EPCOracleName, oracle.EILDOracleName, oracle.MAPOracleName} {
		if !sources[want] {
			t.Errorf("missing records for source %s", want)
		}
	}

	// Oracle rankings are saved by default.
	for _, name := range []string{oracle.EPCOracleName, oracle.EILDOracleName, oracle.MAPOracleName} {
		path := filepath.Join(outDir, "oracles", "u1-"+name+".out")
		if _, err := os.Stat(path); err != nil {
			t.Errorf("expected oracle file %s: %v", path, err)
		}
	}
}

func TestEvaluateCommand_WithoutOracles(t *testing.T) {
	dataDir := writeDataset(t)
	outDir := t.TempDir()

	if err := runCmd(t, "evaluate", "-d", dataDir, "-o", outDir, "--log-level", "disabled"); err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	records, err := results.ReadCSV(filepath.Join(outDir, results.CSVFilename))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if len(records) != 6 {
		t.Errorf("expected 6 records, got %d", len(records))
	}
	if _, err := os.Stat(filepath.Join(outDir, "oracles")); !os.IsNotExist(err) {
		t.Errorf("oracle directory should not exist, stat err = %v", err)
	}
}

func TestOraclesCommand(t *testing.T) {
	dataDir := writeDataset(t)
	outDir := t.TempDir()
	cfgPath := filepath.Join(t.TempDir(), "ps.yaml")
	cfgYAML := "output:\n  formats: [json]\nevaluation:\n  epc:\n    enabled: false\n  eild:\n    enabled: false\n"
	if err := os.WriteFile(cfgPath, []byte(cfgYAML), 0o600); err != nil {
		t.Fatal(err)
	}

	err := runCmd(t, "oracles", "--config", cfgPath, "-d", dataDir, "-o", outDir,
		"--log-level", "disabled", "--kinds", "MAP")
	if err != nil {
		t.Fatalf("oracles failed: %v", err)
	}

	doc, err := results.ReadJSON(filepath.Join(outDir, results.JSONFilename))
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if len(doc.Records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(doc.Records))
	}
	rec := doc.Records[0]
	if rec.Metric != "MAP" || rec.Source != oracle.MAPOracleName {
		t.Errorf("unexpected record %+v", rec)
	}
	if doc.RunID == "" {
		t.Error("run id should be set")
	}
}

func TestStatsCommand_WarmFillsSnapshotCache(t *testing.T) {
	dataDir := writeDataset(t)
	cacheDir := t.TempDir()
	cfgPath := filepath.Join(t.TempDir(), "ps.yaml")
	cfgYAML := "cache:\n  enabled: true\n  dir: " + cacheDir + "\n"
	if err := os.WriteFile(cfgPath, []byte(cfgYAML), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := runCmd(t, "stats", "-c", cfgPath, "-d", dataDir, "-o", t.TempDir(), "--log-level", "disabled", "--warm"); err != nil {
		t.Fatalf("stats failed: %v", err)
	}

	entries, err := os.ReadDir(cacheDir)
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "distance_u1_") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a distance snapshot for fold 1 in %s", cacheDir)
	}
}

func TestCommand_MissingDatasetFails(t *testing.T) {
	err := runCmd(t, "evaluate", "-d", filepath.Join(t.TempDir(), "missing"), "--log-level", "disabled")
	if err == nil {
		t.Fatal("expected an error for a missing dataset directory")
	}
}

func TestConfigCommand(t *testing.T) {
	cmd := newRootCmd()
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"config", "-d", "data", "--workers", "7", "--log-level", "disabled"})
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("config failed: %v", err)
	}

	var got config.Config
	if err := json.Unmarshal(stdout.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, stdout.String())
	}
	if got.Dataset.Dir != "data" || got.Evaluation.Workers != 7 {
		t.Errorf("flags not applied: dataset=%q workers=%d", got.Dataset.Dir, got.Evaluation.Workers)
	}
}

func TestRootCommand_LogsLoadedConfig(t *testing.T) {
	defer logging.Init(logging.DefaultConfig())

	tests := []struct {
		level string
		want  bool
	}{
		{"debug", true},
		{"info", false},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			cmd := newRootCmd()
			var stderr bytes.Buffer
			cmd.SetOut(&bytes.Buffer{})
			cmd.SetErr(&stderr)
			cmd.SetArgs([]string{"config", "-d", "data", "--workers", "3", "--log-level", tt.level})
			if err := cmd.ExecuteContext(context.Background()); err != nil {
				t.Fatalf("config failed: %v", err)
			}

			got := strings.Contains(stderr.String(), "Configuration loaded")
			if got != tt.want {
				t.Errorf("Configuration loaded logged = %v, want %v; stderr: %s", got, tt.want, stderr.String())
			}
		})
	}
}

func TestParseOracleKinds(t *testing.T) {
	tests := []struct {
		name    string
		input   []string
		want    []oracle.Kind
		wantErr bool
	}{
		{name: "empty means all", input: nil, want: oracle.Kinds},
		{name: "short and long names", input: []string{"EPC", "MAPOracle"}, want: []oracle.Kind{oracle.KindEPC, oracle.KindMAP}},
		{name: "duplicates collapse", input: []string{"EILD", "EILDOracle"}, want: []oracle.Kind{oracle.KindEILD}},
		{name: "unknown", input: []string{"NDCG"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseOracleKinds(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("got %v, want %v", got, tt.want)
				}
			}
		})
	}
}
