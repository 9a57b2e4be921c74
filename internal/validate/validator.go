// Package validate runs named checks over submitted registry records and
// hands their findings to a report writer.
package validate

import (
	"context"
	"fmt"
	"strings"

	"github.com/eykd/rorv/internal/domain"
	"github.com/eykd/rorv/internal/dupe"
)

// Common report columns.
const (
	ColumnMessage    = "message"
	ColumnRegistryID = "ror_id"
)

// Descriptor declares what a validator needs and what it reports.
type Descriptor struct {
	Name string
	// Formats lists the primary input formats the validator accepts.
	Formats         domain.Format
	NeedsDataSource bool
	NeedsGeoNames   bool
	NeedsBothInputs bool
	// NeedsCorpus validators require a data dump or live registry search.
	NeedsCorpus bool
	// Fields are the ordered report columns.
	Fields []string
}

// OutputFilename returns the report file name for the validator.
func (d Descriptor) OutputFilename() string {
	return strings.ReplaceAll(d.Name, "-", "_") + ".csv"
}

// CanRun reports whether the context satisfies every prerequisite. When it
// does not, reason names the first missing one.
func (d Descriptor) CanRun(vc *Context) (bool, string) {
	switch {
	case d.NeedsBothInputs && !(vc.Inputs.HasTabular() && vc.Inputs.HasCanonical()):
		return false, "requires both csv and json input"
	case d.Formats&vc.Format == 0:
		return false, fmt.Sprintf("does not support %s input", vc.Format)
	case d.NeedsDataSource && vc.DataSource == nil:
		return false, "requires a registry data dump"
	case d.NeedsGeoNames && vc.Geocoder == nil:
		return false, "requires geonames credentials"
	case d.NeedsCorpus && vc.DataSource == nil && vc.Search == nil:
		return false, "requires a registry data dump or registry search"
	}
	return true, ""
}

// Validator is a named, stateless check.
type Validator interface {
	Descriptor() Descriptor
	Run(ctx context.Context, vc *Context) ([]domain.Finding, error)
}

// Inputs holds the record sets loaded for a run. A nil slice means the
// input was not supplied; an empty one means it was supplied but empty.
type Inputs struct {
	Tabular   []domain.Record
	Canonical []domain.Record
}

// HasTabular reports whether CSV input was supplied.
func (in Inputs) HasTabular() bool { return in.Tabular != nil }

// HasCanonical reports whether JSON input was supplied.
func (in Inputs) HasCanonical() bool { return in.Canonical != nil }

// Primary returns the record set single-input validators work on. JSON
// input takes precedence over CSV when both are present.
func (in Inputs) Primary() ([]domain.Record, domain.Format) {
	switch {
	case in.HasCanonical():
		return in.Canonical, domain.FormatCanonical
	case in.HasTabular():
		return in.Tabular, domain.FormatTabular
	}
	return nil, 0
}

// Logger is the logging surface validators and the orchestrator use.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

// Context carries the resources of one run. It is built once and shared
// read-only by every validator.
type Context struct {
	Inputs  Inputs
	Records []domain.Record
	Format  domain.Format
	// DataSource is the registry data dump, nil when none was given.
	DataSource []domain.Record
	Geocoder   dupe.Geocoder
	// Search is the live registry search, used when no data dump is given.
	Search  dupe.Corpus
	Options dupe.Options
	Logger  Logger
}

// NewContext resolves the primary record set from in.
func NewContext(in Inputs) *Context {
	records, format := in.Primary()
	return &Context{
		Inputs:  in,
		Records: records,
		Format:  format,
		Options: dupe.DefaultOptions(),
		Logger:  nopLogger{},
	}
}

// ConfigError reports a validator that was requested but cannot run.
type ConfigError struct {
	Validator string
	Reason    string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("validator %s cannot run: %s", e.Validator, e.Reason)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
