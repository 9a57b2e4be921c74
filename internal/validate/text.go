package validate

import (
	"context"
	"strings"

	"github.com/eykd/rorv/internal/directive"
	"github.com/eykd/rorv/internal/domain"
	"github.com/eykd/rorv/internal/normalize"
)

// Statuses reported by the text checks.
const (
	StatusControlChars    = "control_characters"
	StatusReplacementChar = "replacement_character"
	StatusMisencoded      = "possible_mojibake"
	StatusSurroundingText = "leading_trailing_whitespace"
)

var textFields = []string{domain.ColumnRecord, domain.ColumnField, domain.ColumnStatus, domain.ColumnValue}

// cells yields every submitted text of a record: raw cells for CSV rows,
// individual values for JSON records.
func cells(rec domain.Record, fn func(field, value string)) {
	if rec.Format == domain.FormatTabular {
		for _, field := range rec.RawNames() {
			if v := rec.Raw[field]; v != "" {
				fn(field, v)
			}
		}
		return
	}
	for _, field := range rec.FieldNames() {
		for _, v := range rec.Values(field) {
			fn(field, v)
		}
	}
}

// EncodingValidator flags control characters, failed decodes and text that
// looks double-encoded.
type EncodingValidator struct{}

// Descriptor implements Validator.
func (EncodingValidator) Descriptor() Descriptor {
	return Descriptor{Name: "validate-encoding", Formats: domain.FormatBoth, Fields: textFields}
}

// Run implements Validator.
func (EncodingValidator) Run(_ context.Context, vc *Context) ([]domain.Finding, error) {
	var findings []domain.Finding
	for _, rec := range vc.Records {
		cells(rec, func(field, value string) {
			emit := func(status string) {
				findings = append(findings, domain.Finding{
					Record: rec.Identifier(),
					Field:  field,
					Status: status,
					Value:  value,
				})
			}
			if normalize.HasControlChars(value) {
				emit(StatusControlChars)
			}
			if normalize.HasReplacementChar(value) {
				emit(StatusReplacementChar)
			}
			if normalize.LooksMisencoded(value) {
				emit(StatusMisencoded)
			}
		})
	}
	return findings, nil
}

// LeadingTrailingValidator flags values with surrounding whitespace.
type LeadingTrailingValidator struct{}

// Descriptor implements Validator.
func (LeadingTrailingValidator) Descriptor() Descriptor {
	return Descriptor{Name: "leading-trailing", Formats: domain.FormatBoth, Fields: textFields}
}

// Run implements Validator.
func (LeadingTrailingValidator) Run(_ context.Context, vc *Context) ([]domain.Finding, error) {
	var findings []domain.Finding
	for _, rec := range vc.Records {
		cells(rec, func(field, value string) {
			if !normalize.HasSurroundingSpace(value) {
				return
			}
			findings = append(findings, domain.Finding{
				Record:   rec.Identifier(),
				Field:    field,
				Status:   StatusSurroundingText,
				Value:    value,
				Severity: domain.SeverityWarning,
			})
		})
	}
	return findings, nil
}

// DuplicateValuesValidator flags a value repeated inside one field.
type DuplicateValuesValidator struct{}

// Descriptor implements Validator.
func (DuplicateValuesValidator) Descriptor() Descriptor {
	return Descriptor{Name: "duplicate-values", Formats: domain.FormatBoth, Fields: textFields}
}

// Run implements Validator.
func (DuplicateValuesValidator) Run(_ context.Context, vc *Context) ([]domain.Finding, error) {
	var findings []domain.Finding
	for _, rec := range vc.Records {
		for _, field := range fieldsOf(rec) {
			for _, group := range valueGroups(rec, field) {
				seen := make(map[string]bool, len(group))
				for _, v := range group {
					key := strings.ToLower(normalize.Text(v, false))
					if !seen[key] {
						seen[key] = true
						continue
					}
					findings = append(findings, domain.Finding{
						Record:   rec.Identifier(),
						Field:    field,
						Status:   domain.StatusDuplicate,
						Value:    v,
						Severity: domain.SeverityWarning,
					})
				}
			}
		}
	}
	return findings, nil
}

func fieldsOf(rec domain.Record) []string {
	if rec.Format == domain.FormatTabular {
		return rec.RawNames()
	}
	return rec.FieldNames()
}

// valueGroups returns the lists of values that must not repeat: one list
// per action for update rows, the field's values otherwise.
func valueGroups(rec domain.Record, field string) [][]string {
	if !rec.IsUpdate() {
		return [][]string{rec.Values(field)}
	}
	spec, ok := domain.LookupField(field)
	if !ok || spec.Meta {
		return nil
	}
	edit, _ := directive.Parse(rec.Raw[field])
	var groups [][]string
	for _, a := range domain.Actions {
		var vals []string
		for _, v := range edit.Values(a) {
			vals = append(vals, splitAsserted(spec, v)...)
		}
		groups = append(groups, vals)
	}
	return groups
}
