// Package config loads the rorv YAML configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/eykd/rorv/internal/dupe"
	"github.com/eykd/rorv/internal/geonames"
	"github.com/eykd/rorv/internal/rorapi"
)

// EnvGeoNamesUsername fills geonames.username when the file leaves it empty.
const EnvGeoNamesUsername = "ROR_GEONAMES_USERNAME"

// DefaultOutputDir is where reports go when nothing else is configured.
const DefaultOutputDir = "."

// Configuration validation errors.
var (
	ErrInvalidThreshold  = errors.New("matching.fuzzy_threshold must be between 1 and 100")
	ErrInvalidExactScore = errors.New("matching.exact_score must be between matching.fuzzy_threshold and 100")
	ErrInvalidWorkers    = errors.New("matching.workers must be at least 1")
	ErrInvalidTimeout    = errors.New("timeout_sec must be at least 1")
	ErrInvalidCacheTTL   = errors.New("geonames.cache.ttl_sec must be non-negative")
	ErrMissingBaseURL    = errors.New("base_url is required")
	ErrMissingOutputDir  = errors.New("output.dir is required")
	ErrInvalidLogLevel   = errors.New("logging.level must be one of: debug, info, warn, error")
)

// Config is the complete rorv configuration.
type Config struct {
	Matching MatchingConfig `yaml:"matching"`
	GeoNames GeoNamesConfig `yaml:"geonames"`
	Search   SearchConfig   `yaml:"search"`
	Output   OutputConfig   `yaml:"output"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// MatchingConfig tunes duplicate detection.
type MatchingConfig struct {
	FuzzyThreshold int `yaml:"fuzzy_threshold"`
	ExactScore     int `yaml:"exact_score"`
	Workers        int `yaml:"workers"`
}

// GeoNamesConfig configures the GeoNames lookup client.
type GeoNamesConfig struct {
	BaseURL    string      `yaml:"base_url"`
	Username   string      `yaml:"username"`
	TimeoutSec int         `yaml:"timeout_sec"`
	Cache      CacheConfig `yaml:"cache"`
}

// CacheConfig selects the GeoNames lookup cache. An empty RedisURL keeps
// lookups in memory.
type CacheConfig struct {
	RedisURL string `yaml:"redis_url"`
	TTLSec   int    `yaml:"ttl_sec"`
}

// SearchConfig configures the live registry search.
type SearchConfig struct {
	BaseURL    string `yaml:"base_url"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// OutputConfig defines where reports are written.
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// MetricsConfig names the node-exporter textfile written after a run. An
// empty path disables it.
type MetricsConfig struct {
	Textfile string `yaml:"textfile"`
}

// Default returns the built-in configuration.
func Default() *Config {
	opts := dupe.DefaultOptions()
	return &Config{
		Matching: MatchingConfig{
			FuzzyThreshold: opts.FuzzyThreshold,
			ExactScore:     opts.ExactScore,
			Workers:        opts.Workers,
		},
		GeoNames: GeoNamesConfig{
			BaseURL:    geonames.DefaultBaseURL,
			TimeoutSec: int(geonames.DefaultTimeout / time.Second),
			Cache:      CacheConfig{TTLSec: 7 * 24 * 60 * 60},
		},
		Search: SearchConfig{
			BaseURL:    rorapi.DefaultBaseURL,
			TimeoutSec: int(rorapi.DefaultTimeout / time.Second),
		},
		Output:  OutputConfig{Dir: DefaultOutputDir},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads the YAML file at path over the defaults, applies environment
// overrides and validates the result. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	cfg.ApplyEnv(os.Getenv)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// ApplyEnv fills settings left empty in the file from the environment.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if c.GeoNames.Username == "" {
		c.GeoNames.Username = strings.TrimSpace(getenv(EnvGeoNamesUsername))
	}
}

// Validate checks every section.
func (c *Config) Validate() error {
	m := c.Matching
	if m.FuzzyThreshold < 1 || m.FuzzyThreshold > 100 {
		return ErrInvalidThreshold
	}
	if m.ExactScore < m.FuzzyThreshold || m.ExactScore > 100 {
		return ErrInvalidExactScore
	}
	if m.Workers < 1 {
		return ErrInvalidWorkers
	}

	if c.GeoNames.BaseURL == "" {
		return fmt.Errorf("geonames.%w", ErrMissingBaseURL)
	}
	if c.GeoNames.TimeoutSec < 1 {
		return fmt.Errorf("geonames.%w", ErrInvalidTimeout)
	}
	if c.GeoNames.Cache.TTLSec < 0 {
		return ErrInvalidCacheTTL
	}
	if c.Search.BaseURL == "" {
		return fmt.Errorf("search.%w", ErrMissingBaseURL)
	}
	if c.Search.TimeoutSec < 1 {
		return fmt.Errorf("search.%w", ErrInvalidTimeout)
	}

	if strings.TrimSpace(c.Output.Dir) == "" {
		return ErrMissingOutputDir
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return ErrInvalidLogLevel
	}
	return nil
}

// MatchOptions returns the duplicate-detection options.
func (c *Config) MatchOptions() dupe.Options {
	return dupe.Options{
		ExactScore:     c.Matching.ExactScore,
		FuzzyThreshold: c.Matching.FuzzyThreshold,
		Workers:        c.Matching.Workers,
	}
}

// GetTimeout returns the GeoNames request timeout.
func (g GeoNamesConfig) GetTimeout() time.Duration {
	return time.Duration(g.TimeoutSec) * time.Second
}

// GetTTL returns the cache entry lifetime; zero keeps entries forever.
func (c CacheConfig) GetTTL() time.Duration {
	return time.Duration(c.TTLSec) * time.Second
}

// GetTimeout returns the registry search timeout.
func (s SearchConfig) GetTimeout() time.Duration {
	return time.Duration(s.TimeoutSec) * time.Second
}
