package integrity

import (
	"strings"

	"github.com/eykd/rorv/internal/directive"
	"github.com/eykd/rorv/internal/domain"
)

// CheckUpdates compares every update row with the canonical record sharing
// its id.
func CheckUpdates(rows, canonical []domain.Record) []domain.Finding {
	byID := make(map[string]*domain.Record, len(canonical))
	for i := range canonical {
		byID[domain.NormalizeID(canonical[i].ID)] = &canonical[i]
	}

	var findings []domain.Finding
	for _, row := range rows {
		if !row.IsUpdate() {
			continue
		}
		findings = append(findings, CheckUpdate(row, byID[domain.NormalizeID(row.ID)])...)
	}
	return findings
}

// CheckUpdate verifies that the directives of an update row took effect on
// the canonical record. Parse errors do not stop the comparison; the
// partial edit is still checked.
func CheckUpdate(row domain.Record, canonical *domain.Record) []domain.Finding {
	if canonical == nil {
		return []domain.Finding{{
			Record: row.Identifier(),
			Field:  domain.FieldID,
			Status: domain.StatusRecordNotFound,
			Value:  row.ID,
		}}
	}

	idx := indexRecord(*canonical)
	var findings []domain.Finding
	emit := func(field string, action domain.Action, status, value string) {
		findings = append(findings, domain.Finding{
			Record: row.Identifier(),
			Field:  field,
			Status: status,
			Value:  value,
		}.With(ColumnRegistryID, canonical.ID).With(ColumnAction, string(action)))
	}

	for _, field := range row.RawNames() {
		if !comparable(field) {
			continue
		}
		edit, _ := directive.Parse(row.Raw[field])
		if len(edit) == 0 {
			continue
		}
		present := canonical.Values(field)

		if edit.ClearsField() {
			action := domain.ActionDelete
			if !edit.Has(domain.ActionDelete) {
				action = domain.ActionReplace
			}
			for _, v := range present {
				emit(field, action, domain.StatusStillPresent, v)
			}
		}

		for _, action := range []domain.Action{domain.ActionAdd, domain.ActionReplace} {
			for _, cell := range edit.Values(action) {
				for _, v := range domain.SplitValues(cell) {
					if strings.EqualFold(v, directive.ClearValue) || idx.has(field, v) {
						continue
					}
					emit(field, action, domain.StatusMissing, v)
				}
			}
		}

		for _, v := range edit.Values(domain.ActionDelete) {
			if idx.has(field, v) {
				emit(field, domain.ActionDelete, domain.StatusStillPresent, v)
			}
		}
	}
	return findings
}
