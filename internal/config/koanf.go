// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths searched for a config file, in order.
var DefaultConfigPaths = []string{
	"ps.yaml",
	"ps.yml",
	"config.yaml",
	"config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// LoadOptions controls Load.
type LoadOptions struct {
	// Path is an explicit config file. When set it must exist.
	Path string

	// Overrides are koanf keys applied last, e.g. from command-line flags.
	Overrides map[string]interface{}
}

func defaultConfig() *Config {
	return &Config{
		Output: OutputConfig{
			Dir:                "output",
			Formats:            []string{"csv"},
			SaveOracleRankings: true,
		},
		Evaluation: EvaluationConfig{
			Workers: runtime.GOMAXPROCS(0),
			MAP:     MetricSettings{Enabled: true, Cutoffs: []int{10}, Parallel: true},
			EPC:     MetricSettings{Enabled: true, Cutoffs: []int{10}, Parallel: true},
			EILD:    MetricSettings{Enabled: true, Cutoffs: []int{10}, Parallel: true},
		},
		Oracle: OracleConfig{
			Enabled:      false,
			InputCutoff:  20,
			OutputCutoff: 10,
		},
		Cache: CacheConfig{
			Enabled: false,
			Dir:     filepath.Join(".cache", "ps"),
			Keep:    3,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load builds a Config from defaults, an optional YAML file, the environment
// and explicit overrides, then validates it.
func Load(opts LoadOptions) (*Config, error) {
	k := koanf.New(".")

	// Layer 1: struct defaults
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: config file
	configPath, err := findConfigFile(opts.Path)
	if err != nil {
		return nil, err
	}
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: environment
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Layer 4: explicit overrides
	for key, value := range opts.Overrides {
		if err := k.Set(key, value); err != nil {
			return nil, fmt.Errorf("failed to apply override %s: %w", key, err)
		}
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile resolves the config file: explicit path, CONFIG_PATH, then defaults.
// Returns "" when no file is found and none was requested.
func findConfigFile(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file %s: %w", explicit, err)
		}
		return explicit, nil
	}

	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath, nil
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", nil
}

// sliceConfigPaths are split on commas when they arrive as strings from env or flags.
var sliceConfigPaths = []string{
	"output.formats",
	"evaluation.map.cutoffs",
	"evaluation.epc.cutoffs",
	"evaluation.eild.cutoffs",
}

// processSliceFields converts comma-separated string values to slices.
// Cutoffs stay strings here; koanf's weakly typed decode turns them into ints.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
var envMappings = map[string]string{
	"ps_dataset_dir": "dataset.dir",

	"ps_output_dir":           "output.dir",
	"ps_output_formats":       "output.formats",
	"ps_duckdb_path":          "output.duckdb_path",
	"ps_save_oracle_rankings": "output.save_oracle_rankings",

	"ps_workers":       "evaluation.workers",
	"ps_map_enabled":   "evaluation.map.enabled",
	"ps_map_cutoffs":   "evaluation.map.cutoffs",
	"ps_map_parallel":  "evaluation.map.parallel",
	"ps_epc_enabled":   "evaluation.epc.enabled",
	"ps_epc_cutoffs":   "evaluation.epc.cutoffs",
	"ps_epc_parallel":  "evaluation.epc.parallel",
	"ps_eild_enabled":  "evaluation.eild.enabled",
	"ps_eild_cutoffs":  "evaluation.eild.cutoffs",
	"ps_eild_parallel": "evaluation.eild.parallel",

	"ps_oracle_enabled":       "oracle.enabled",
	"ps_oracle_input_cutoff":  "oracle.input_cutoff",
	"ps_oracle_output_cutoff": "oracle.output_cutoff",

	"ps_cache_enabled": "cache.enabled",
	"ps_cache_dir":     "cache.dir",
	"ps_cache_keep":    "cache.keep",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	"ps_metrics_textfile": "telemetry.textfile_path",
}

// envTransformFunc maps known environment variables to koanf paths.
// Unmapped variables return "" and are skipped.
//
// Examples:
//   - PS_DATASET_DIR -> dataset.dir
//   - PS_MAP_CUTOFFS -> evaluation.map.cutoffs
//   - LOG_LEVEL -> logging.level
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}
