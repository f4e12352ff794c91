package config

import (
	"os"
	"path/filepath"
	"testing"
)

type testOptions struct {
	Config        string
	MaxConcurrent int    `toml:"pool.max_concurrent" env:"POOL_MAX_CONCURRENT"`
	LoggingLevel  string `toml:"logging.level" env:"LOGGING_LEVEL"`
	MetricsAddr   string `toml:"metrics.addr" env:"METRICS_ADDR"`
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadFromTOML(t *testing.T) {
	path := writeConfig(t, `
[pool]
max_concurrent = 8

[logging]
level = "debug"
`)

	opts := testOptions{Config: path, MaxConcurrent: 5, LoggingLevel: "info"}
	if err := Load(&opts, nil); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if opts.MaxConcurrent != 8 {
		t.Errorf("MaxConcurrent = %d, want 8", opts.MaxConcurrent)
	}
	if opts.LoggingLevel != "debug" {
		t.Errorf("LoggingLevel = %q, want debug", opts.LoggingLevel)
	}
	// Untouched fields keep their defaults.
	if opts.MetricsAddr != "" {
		t.Errorf("MetricsAddr = %q, want empty", opts.MetricsAddr)
	}
}

func TestEnvOverridesTOML(t *testing.T) {
	path := writeConfig(t, `
[pool]
max_concurrent = 8
`)

	t.Setenv("PROCEX_POOL_MAX_CONCURRENT", "3")

	opts := testOptions{Config: path}
	if err := Load(&opts, nil); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if opts.MaxConcurrent != 3 {
		t.Errorf("MaxConcurrent = %d, want env override 3", opts.MaxConcurrent)
	}
}

func TestLoadMissingFileIsNotAnError(t *testing.T) {
	opts := testOptions{Config: "/nonexistent/config.toml", MaxConcurrent: 5}
	if err := Load(&opts, nil); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if opts.MaxConcurrent != 5 {
		t.Errorf("MaxConcurrent = %d, want untouched default 5", opts.MaxConcurrent)
	}
}

func TestLoadMalformedFileFails(t *testing.T) {
	path := writeConfig(t, `not [valid toml`)
	opts := testOptions{Config: path}
	if err := Load(&opts, nil); err == nil {
		t.Error("expected error for malformed TOML")
	}
}

func TestFieldNameToFlag(t *testing.T) {
	tests := map[string]string{
		"MaxConcurrent": "max-concurrent",
		"Config":        "config",
		"MetricsAddr":   "metrics-addr",
	}
	for in, want := range tests {
		if got := fieldNameToFlag(in); got != want {
			t.Errorf("fieldNameToFlag(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLoadLogging(t *testing.T) {
	path := writeConfig(t, `
[logging]
level = "warn"
format = "json"

[logging.modules]
process = "debug"
`)

	cfg := LoadLogging(path)
	if cfg.Level != "warn" || cfg.Format != "json" {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.Modules["process"] != "debug" {
		t.Errorf("module override missing: %+v", cfg.Modules)
	}
}

func TestLoadLoggingDefaults(t *testing.T) {
	cfg := LoadLogging("")
	if cfg.Level != "info" || cfg.Format != "text" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	cfg = LoadLogging("/nonexistent/config.toml")
	if cfg.Level != "info" {
		t.Errorf("missing file should give defaults: %+v", cfg)
	}
}
