package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// Helper to create a temp config file.
func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "rorv.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to create temp config file: %v", err)
	}
	return configPath
}

const validConfigYAML = `
matching:
  fuzzy_threshold: 90
  workers: 8
geonames:
  username: "curator"
  timeout_sec: 5
  cache:
    redis_url: "redis://localhost:6379/2"
    ttl_sec: 3600
output:
  dir: "reports"
logging:
  level: "debug"
metrics:
  textfile: "/var/lib/node_exporter/rorv.prom"
`

func TestLoad_Valid(t *testing.T) {
	t.Setenv(EnvGeoNamesUsername, "from-env")

	cfg, err := Load(createTempConfigFile(t, validConfigYAML))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Matching.FuzzyThreshold != 90 {
		t.Errorf("FuzzyThreshold = %d, want 90", cfg.Matching.FuzzyThreshold)
	}
	if cfg.Matching.ExactScore != 100 {
		t.Errorf("ExactScore = %d, want default 100", cfg.Matching.ExactScore)
	}
	if cfg.Matching.Workers != 8 {
		t.Errorf("Workers = %d, want 8", cfg.Matching.Workers)
	}
	if cfg.GeoNames.Username != "curator" {
		t.Errorf("Username = %q, file value should win over env", cfg.GeoNames.Username)
	}
	if got := cfg.GeoNames.GetTimeout(); got != 5*time.Second {
		t.Errorf("GeoNames timeout = %v, want 5s", got)
	}
	if got := cfg.GeoNames.Cache.GetTTL(); got != time.Hour {
		t.Errorf("cache TTL = %v, want 1h", got)
	}
	if cfg.Search.BaseURL == "" {
		t.Error("Search.BaseURL should keep its default")
	}
	if cfg.Output.Dir != "reports" {
		t.Errorf("Output.Dir = %q, want reports", cfg.Output.Dir)
	}
	if cfg.Metrics.Textfile == "" {
		t.Error("Metrics.Textfile not loaded")
	}
}

func TestLoad_EmptyPathUsesDefaults(t *testing.T) {
	t.Setenv(EnvGeoNamesUsername, "")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Matching.FuzzyThreshold != 85 || cfg.Matching.Workers != 5 {
		t.Errorf("unexpected matching defaults: %+v", cfg.Matching)
	}
	if cfg.Output.Dir != DefaultOutputDir {
		t.Errorf("Output.Dir = %q, want %q", cfg.Output.Dir, DefaultOutputDir)
	}
	if cfg.GeoNames.Username != "" {
		t.Errorf("Username = %q, want empty", cfg.GeoNames.Username)
	}
}

func TestLoad_UsernameFromEnvironment(t *testing.T) {
	t.Setenv(EnvGeoNamesUsername, " curator ")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.GeoNames.Username != "curator" {
		t.Errorf("Username = %q, want curator", cfg.GeoNames.Username)
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file error = %v, want os.ErrNotExist", err)
	}

	if _, err := Load(createTempConfigFile(t, "matching: [")); err == nil {
		t.Error("expected parse error for malformed YAML")
	}

	_, err := Load(createTempConfigFile(t, "logging:\n  level: loud\n"))
	if !errors.Is(err, ErrInvalidLogLevel) {
		t.Errorf("error = %v, want ErrInvalidLogLevel", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{name: "defaults are valid", mutate: func(*Config) {}},
		{name: "zero threshold", mutate: func(c *Config) { c.Matching.FuzzyThreshold = 0 }, wantErr: ErrInvalidThreshold},
		{name: "threshold above 100", mutate: func(c *Config) { c.Matching.FuzzyThreshold = 101 }, wantErr: ErrInvalidThreshold},
		{name: "exact below threshold", mutate: func(c *Config) { c.Matching.ExactScore = 80 }, wantErr: ErrInvalidExactScore},
		{name: "no workers", mutate: func(c *Config) { c.Matching.Workers = 0 }, wantErr: ErrInvalidWorkers},
		{name: "no geonames url", mutate: func(c *Config) { c.GeoNames.BaseURL = "" }, wantErr: ErrMissingBaseURL},
		{name: "geonames timeout", mutate: func(c *Config) { c.GeoNames.TimeoutSec = 0 }, wantErr: ErrInvalidTimeout},
		{name: "negative ttl", mutate: func(c *Config) { c.GeoNames.Cache.TTLSec = -1 }, wantErr: ErrInvalidCacheTTL},
		{name: "no search url", mutate: func(c *Config) { c.Search.BaseURL = "" }, wantErr: ErrMissingBaseURL},
		{name: "search timeout", mutate: func(c *Config) { c.Search.TimeoutSec = 0 }, wantErr: ErrInvalidTimeout},
		{name: "blank output dir", mutate: func(c *Config) { c.Output.Dir = "  " }, wantErr: ErrMissingOutputDir},
		{name: "uppercase level", mutate: func(c *Config) { c.Logging.Level = "WARN" }},
		{name: "bad level", mutate: func(c *Config) { c.Logging.Level = "trace" }, wantErr: ErrInvalidLogLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestMatchOptions(t *testing.T) {
	cfg := Default()
	cfg.Matching.FuzzyThreshold = 92

	opts := cfg.MatchOptions()
	if opts.FuzzyThreshold != 92 || opts.ExactScore != 100 || opts.Workers != 5 {
		t.Errorf("MatchOptions() = %+v", opts)
	}
}
