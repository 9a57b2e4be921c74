package validate

import (
	"context"

	"github.com/eykd/rorv/internal/domain"
	"github.com/eykd/rorv/internal/integrity"
)

// NewRecordIntegrityValidator checks that new-record rows were carried
// into the generated JSON records.
type NewRecordIntegrityValidator struct{}

// Descriptor implements Validator.
func (NewRecordIntegrityValidator) Descriptor() Descriptor {
	return Descriptor{
		Name:            "new-record-integrity",
		Formats:         domain.FormatBoth,
		NeedsBothInputs: true,
		Fields: []string{
			domain.ColumnRecord, integrity.ColumnRegistryID, domain.ColumnField,
			domain.ColumnStatus, domain.ColumnValue, integrity.ColumnFoundIn,
		},
	}
}

// Run implements Validator.
func (NewRecordIntegrityValidator) Run(_ context.Context, vc *Context) ([]domain.Finding, error) {
	return integrity.CheckNew(vc.Inputs.Tabular, vc.Inputs.Canonical), nil
}

// UpdateRecordIntegrityValidator checks that update directives took effect
// on the JSON records.
type UpdateRecordIntegrityValidator struct{}

// Descriptor implements Validator.
func (UpdateRecordIntegrityValidator) Descriptor() Descriptor {
	return Descriptor{
		Name:            "update-record-integrity",
		Formats:         domain.FormatBoth,
		NeedsBothInputs: true,
		Fields: []string{
			domain.ColumnRecord, integrity.ColumnRegistryID, domain.ColumnField,
			integrity.ColumnAction, domain.ColumnStatus, domain.ColumnValue,
		},
	}
}

// Run implements Validator.
func (UpdateRecordIntegrityValidator) Run(_ context.Context, vc *Context) ([]domain.Finding, error) {
	return integrity.CheckUpdates(vc.Inputs.Tabular, vc.Inputs.Canonical), nil
}
