package validate

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/eykd/rorv/internal/directive"
	"github.com/eykd/rorv/internal/domain"
	"github.com/eykd/rorv/internal/fieldcheck"
)

// FieldsValidator checks value formats, unknown columns, directive
// structure on update rows and required fields on new records.
type FieldsValidator struct{}

// Descriptor implements Validator.
func (FieldsValidator) Descriptor() Descriptor {
	return Descriptor{
		Name:    "validate-fields",
		Formats: domain.FormatBoth,
		Fields: []string{
			domain.ColumnRecord, domain.ColumnField, domain.ColumnStatus,
			domain.ColumnValue, domain.ColumnSeverity, ColumnMessage,
		},
	}
}

// Run implements Validator.
func (FieldsValidator) Run(_ context.Context, vc *Context) ([]domain.Finding, error) {
	var findings []domain.Finding
	for _, rec := range vc.Records {
		findings = append(findings, unknownFields(rec)...)
		if rec.IsUpdate() {
			findings = append(findings, checkUpdateRow(rec)...)
			continue
		}
		findings = append(findings, checkRecordValues(rec)...)
		findings = append(findings, checkRequired(rec)...)
		findings = append(findings, checkPreferred(rec)...)
	}
	return findings, nil
}

func fieldFinding(rec domain.Record, field, status, value string, err error) domain.Finding {
	f := domain.Finding{
		Record:   rec.Identifier(),
		Field:    field,
		Status:   status,
		Value:    value,
		Severity: domain.SeverityError,
	}
	if err != nil {
		f = f.With(ColumnMessage, err.Error())
	}
	return f
}

func unknownFields(rec domain.Record) []domain.Finding {
	columns := rec.FieldNames()
	if rec.Format == domain.FormatTabular {
		columns = rec.RawNames()
	}

	var findings []domain.Finding
	for _, col := range columns {
		if _, ok := domain.LookupField(col); ok {
			continue
		}
		f := fieldFinding(rec, col, domain.StatusUnknownField, "", nil)
		f.Severity = domain.SeverityWarning
		findings = append(findings, f.With(ColumnMessage, "column is not part of schema v"+domain.SchemaVersion))
	}
	return findings
}

func checkUpdateRow(rec domain.Record) []domain.Finding {
	var findings []domain.Finding
	if err := fieldcheck.Check(domain.FieldID, rec.ID); err != nil {
		findings = append(findings, fieldFinding(rec, domain.FieldID, domain.StatusInvalidValue, rec.ID, err))
	}

	for _, field := range rec.RawNames() {
		spec, ok := domain.LookupField(field)
		cell := rec.Raw[field]
		if !ok || spec.Meta || cell == "" {
			continue
		}

		edit, err := directive.Parse(cell)
		if err != nil {
			findings = append(findings, fieldFinding(rec, field, domain.StatusInvalidSyntax, cell, err))
		}
		for _, verr := range directive.Validate(field, edit) {
			findings = append(findings, fieldFinding(rec, field, domain.StatusInvalidSyntax, cell, verr))
		}

		for _, d := range edit.Directives(field) {
			if d.Whole || (d.Action == domain.ActionReplace && isClear(d.Value)) {
				continue
			}
			for _, v := range splitAsserted(spec, d.Value) {
				if err := fieldcheck.Check(field, v); err != nil {
					findings = append(findings, fieldFinding(rec, field, domain.StatusInvalidValue, v, err))
				}
			}
		}
	}
	return findings
}

// splitAsserted splits an implicit replace cell of a multi-value field.
func splitAsserted(spec domain.FieldSpec, value string) []string {
	if spec.Multi {
		return domain.SplitValues(value)
	}
	return []string{value}
}

func isClear(v string) bool {
	return strings.EqualFold(strings.TrimSpace(v), directive.ClearValue)
}

func checkRecordValues(rec domain.Record) []domain.Finding {
	var findings []domain.Finding
	for _, field := range rec.FieldNames() {
		spec, ok := domain.LookupField(field)
		if !ok {
			continue
		}
		values := rec.Values(field)
		if !spec.Multi && len(values) > 1 && rec.Format == domain.FormatTabular {
			findings = append(findings, fieldFinding(rec, field, domain.StatusInvalidValue, rec.Raw[field],
				fmt.Errorf("%w: %s", directive.ErrMultipleValues, field)))
		}
		for _, v := range values {
			if err := fieldcheck.Check(field, v); err != nil {
				findings = append(findings, fieldFinding(rec, field, domain.StatusInvalidValue, v, err))
			}
		}
	}
	return findings
}

func checkRequired(rec domain.Record) []domain.Finding {
	var findings []domain.Finding
	for _, spec := range domain.Fields() {
		if !spec.Required || spec.Meta || len(rec.Values(spec.Path)) > 0 {
			continue
		}
		findings = append(findings, fieldFinding(rec, spec.Path, domain.StatusMissingValue, "", nil))
	}
	return findings
}

func checkPreferred(rec domain.Record) []domain.Finding {
	var findings []domain.Finding
	for _, idType := range domain.ExternalIDTypes {
		prefField := domain.ExternalIDField(idType, "preferred")
		all := rec.Values(domain.ExternalIDField(idType, "all"))
		for _, p := range rec.Values(prefField) {
			if slices.Contains(all, p) {
				continue
			}
			findings = append(findings, fieldFinding(rec, prefField, domain.StatusInvalidValue, p,
				fmt.Errorf("preferred %s id is not listed in all", idType)))
		}
	}
	return findings
}
