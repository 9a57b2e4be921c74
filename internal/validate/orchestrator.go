package validate

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/eykd/rorv/internal/domain"
)

// AllValidators selects every registered validator.
const AllValidators = "all"

// ReportWriter persists the findings of one validator.
type ReportWriter interface {
	Write(ctx context.Context, filename string, fields []string, findings []domain.Finding) (string, error)
}

// Locker abstracts advisory lock acquisition on the report directory.
type Locker interface {
	TryLock(ctx context.Context) error
	Unlock() error
}

// Recorder observes validator runs.
type Recorder interface {
	ValidatorRan(name string, findings int, elapsed time.Duration)
	ValidatorSkipped(name, reason string)
}

// Report describes the outcome of one validator.
type Report struct {
	Validator string
	// Path is the written report, empty when there were no findings.
	Path     string
	Findings int
	Skipped  bool
	Reason   string
}

// Result holds the outcome of an orchestrated run.
type Result struct {
	Reports []Report
}

// TotalFindings sums findings across reports.
func (r Result) TotalFindings() int {
	n := 0
	for _, rep := range r.Reports {
		n += rep.Findings
	}
	return n
}

// Orchestrator resolves requested validators, runs those that can run and
// writes one report per validator with findings.
type Orchestrator struct {
	registry *Registry
	writer   ReportWriter
	locker   Locker
	recorder Recorder
	logger   Logger
	now      func() time.Time
}

// NewOrchestrator creates an Orchestrator. The locker, recorder and logger
// may be nil.
func NewOrchestrator(registry *Registry, writer ReportWriter, locker Locker, recorder Recorder, logger Logger) *Orchestrator {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	if logger == nil {
		logger = nopLogger{}
	}
	return &Orchestrator{
		registry: registry,
		writer:   writer,
		locker:   locker,
		recorder: recorder,
		logger:   logger,
		now:      time.Now,
	}
}

// Resolve maps requested names to validators. No names, or "all", selects
// every validator and marks the request as implicit. Unknown names are
// logged and skipped.
func (o *Orchestrator) Resolve(names []string) (validators []Validator, explicit bool) {
	if len(names) == 0 || slices.Contains(names, AllValidators) {
		return o.registry.All(), false
	}

	seen := make(map[string]bool, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if seen[name] {
			continue
		}
		seen[name] = true
		v, ok := o.registry.Lookup(name)
		if !ok {
			o.logger.Warn("unknown validator, skipping", "validator", name)
			continue
		}
		validators = append(validators, v)
	}
	return validators, true
}

// Run executes the requested validators against vc. Explicitly requested
// validators whose prerequisites are missing produce a *ConfigError; these
// are returned together after every other validator has run.
func (o *Orchestrator) Run(ctx context.Context, names []string, vc *Context) (Result, error) {
	if vc.Logger == nil {
		vc.Logger = o.logger
	}
	validators, explicit := o.Resolve(names)

	if o.locker != nil {
		if err := o.locker.TryLock(ctx); err != nil {
			return Result{}, fmt.Errorf("acquiring report lock: %w", err)
		}
		defer o.locker.Unlock()
	}

	var (
		result     Result
		configErrs []error
		runErrs    []error
	)
	for _, v := range validators {
		d := v.Descriptor()

		if ok, reason := d.CanRun(vc); !ok {
			o.recorder.ValidatorSkipped(d.Name, reason)
			result.Reports = append(result.Reports, Report{Validator: d.Name, Skipped: true, Reason: reason})
			if explicit {
				configErrs = append(configErrs, &ConfigError{Validator: d.Name, Reason: reason})
				continue
			}
			o.logger.Info("skipping validator", "validator", d.Name, "reason", reason)
			continue
		}

		if err := ctx.Err(); err != nil {
			return result, err
		}

		start := o.now()
		o.logger.Debug("running validator", "validator", d.Name, "records", len(vc.Records))
		findings, err := v.Run(ctx, vc)
		if err != nil {
			runErrs = append(runErrs, fmt.Errorf("running %s: %w", d.Name, err))
			continue
		}
		o.recorder.ValidatorRan(d.Name, len(findings), o.now().Sub(start))

		rep := Report{Validator: d.Name, Findings: len(findings)}
		if len(findings) > 0 {
			path, err := o.writer.Write(ctx, d.OutputFilename(), d.Fields, findings)
			if err != nil {
				runErrs = append(runErrs, fmt.Errorf("writing %s report: %w", d.Name, err))
				continue
			}
			rep.Path = path
			o.logger.Info("findings written", "validator", d.Name, "findings", len(findings), "path", path)
		} else {
			o.logger.Info("no findings", "validator", d.Name)
		}
		result.Reports = append(result.Reports, rep)
	}

	if len(runErrs) > 0 {
		return result, errors.Join(runErrs...)
	}
	return result, errors.Join(configErrs...)
}

type nopRecorder struct{}

func (nopRecorder) ValidatorRan(string, int, time.Duration) {}
func (nopRecorder) ValidatorSkipped(string, string)         {}
