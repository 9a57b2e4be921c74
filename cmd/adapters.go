package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/eykd/rorv/internal/config"
	"github.com/eykd/rorv/internal/domain"
	"github.com/eykd/rorv/internal/fs"
	"github.com/eykd/rorv/internal/geonames"
	"github.com/eykd/rorv/internal/lock"
	"github.com/eykd/rorv/internal/logger"
	"github.com/eykd/rorv/internal/metrics"
	"github.com/eykd/rorv/internal/report"
	"github.com/eykd/rorv/internal/rorapi"
	"github.com/eykd/rorv/internal/validate"
)

// ErrNoInputs is returned when neither --csv nor --json is given.
var ErrNoInputs = errors.New("no input given: pass --csv and/or --json")

// validateAdapter wires configuration, readers, collaborators and report
// output around a validate.Orchestrator.
type validateAdapter struct {
	stderr   io.Writer
	getenv   func(string) string
	newRunID func() string
	now      func() time.Time
	registry func() *validate.Registry
}

func newValidateAdapter() *validateAdapter {
	return &validateAdapter{
		stderr:   os.Stderr,
		getenv:   os.Getenv,
		newRunID: uuid.NewString,
		now:      time.Now,
		registry: validate.Default,
	}
}

// loadConfig reads the configuration file and applies flag overrides.
func (a *validateAdapter) loadConfig(opts ValidateOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, &ConfigurationError{Err: &ContextError{Op: "loading config", Path: opts.ConfigPath, Err: err}}
	}
	cfg.ApplyEnv(a.getenv)
	if opts.GeoNamesUser != "" {
		cfg.GeoNames.Username = opts.GeoNamesUser
	}
	if opts.OutputDir != "" {
		cfg.Output.Dir = opts.OutputDir
	}
	if GetVerbose() {
		cfg.Logging.Level = "debug"
	}
	return cfg, nil
}

// readInputs loads the CSV and JSON inputs that were given.
func readInputs(ctx context.Context, opts ValidateOptions) (validate.Inputs, error) {
	var in validate.Inputs
	if opts.CSVPath == "" && opts.JSONPath == "" {
		return in, &ConfigurationError{Err: ErrNoInputs}
	}
	if opts.CSVPath != "" {
		records, err := (&fs.CSVReader{Path: opts.CSVPath}).Read(ctx)
		if err != nil {
			return in, &ContextError{Op: "reading csv", Path: opts.CSVPath, Err: err}
		}
		in.Tabular = nonNil(records)
	}
	if opts.JSONPath != "" {
		records, err := (&fs.JSONReader{Path: opts.JSONPath}).Read(ctx)
		if err != nil {
			return in, &ContextError{Op: "reading json", Path: opts.JSONPath, Err: err}
		}
		in.Canonical = nonNil(records)
	}
	return in, nil
}

// nonNil keeps "supplied but empty" distinct from "not supplied".
func nonNil(records []domain.Record) []domain.Record {
	if records == nil {
		return []domain.Record{}
	}
	return records
}

// newGeocoder builds the GeoNames client, caching in Redis when configured
// and reachable. The returned closer releases the cache connection.
func newGeocoder(ctx context.Context, cfg config.GeoNamesConfig, log *logger.Logger) (*geonames.Client, func(), error) {
	opts := []geonames.Option{
		geonames.WithBaseURL(cfg.BaseURL),
		geonames.WithHTTPClient(&http.Client{Timeout: cfg.GetTimeout()}),
	}
	closer := func() {}

	if cfg.Cache.RedisURL != "" {
		rc, err := geonames.NewRedisCache(cfg.Cache.RedisURL, cfg.Cache.GetTTL())
		if err != nil {
			return nil, closer, &ConfigurationError{Err: err}
		}
		if err := rc.Ping(ctx); err != nil {
			log.Warn("redis cache unavailable, caching in memory", "error", err)
			_ = rc.Close()
		} else {
			log.Debug("caching geonames lookups in redis")
			opts = append(opts, geonames.WithCache(rc))
			closer = func() { _ = rc.Close() }
		}
	}
	return geonames.NewClient(cfg.Username, opts...), closer, nil
}

// Validate performs one validation run.
func (a *validateAdapter) Validate(ctx context.Context, opts ValidateOptions) (*ValidateResult, error) {
	cfg, err := a.loadConfig(opts)
	if err != nil {
		return nil, err
	}

	runID := a.newRunID()
	log := logger.NewLogger(cfg.Logging.Level, a.stderr).With("run_id", runID)

	in, err := readInputs(ctx, opts)
	if err != nil {
		return nil, err
	}
	vc := validate.NewContext(in)
	vc.Logger = log
	vc.Options = cfg.MatchOptions()
	log.Info("inputs loaded", "csv_records", len(in.Tabular), "json_records", len(in.Canonical))

	if opts.DataDump != "" {
		dump, err := (&fs.DumpLoader{Path: opts.DataDump}).Load(ctx)
		if err != nil {
			return nil, &ContextError{Op: "loading data dump", Path: opts.DataDump, Err: err}
		}
		vc.DataSource = nonNil(dump)
		log.Info("data dump loaded", "records", len(dump))
	}

	if cfg.GeoNames.Username != "" {
		geocoder, closeCache, err := newGeocoder(ctx, cfg.GeoNames, log)
		if err != nil {
			return nil, err
		}
		defer closeCache()
		vc.Geocoder = geocoder
		vc.Search = rorapi.NewClient(
			rorapi.WithBaseURL(cfg.Search.BaseURL),
			rorapi.WithHTTPClient(&http.Client{Timeout: cfg.Search.GetTimeout()}),
		)
	}

	locker, err := lock.NewForDir(cfg.Output.Dir)
	if err != nil {
		return nil, err
	}
	writer := report.NewCSVWriter(&fs.OSWriter{Root: cfg.Output.Dir})
	m := metrics.New()

	orch := validate.NewOrchestrator(a.registry(), writer, locker, m, log)
	res, runErr := orch.Run(ctx, opts.Validators, vc)

	if cfg.Metrics.Textfile != "" {
		if err := m.WriteTextfile(cfg.Metrics.Textfile, a.now()); err != nil {
			log.Warn("metrics not written", "error", err)
		}
	}

	result := &ValidateResult{
		RunID:     runID,
		OutputDir: cfg.Output.Dir,
		Reports:   summarize(res.Reports),
	}
	if runErr != nil {
		return result, fmt.Errorf("validation run %s: %w", runID, runErr)
	}
	return result, nil
}
