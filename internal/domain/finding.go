package domain

import "strconv"

// FindingSeverity indicates how severe a finding is.
type FindingSeverity string

const (
	// SeverityError indicates a finding that must be resolved.
	SeverityError FindingSeverity = "error"
	// SeverityWarning indicates a finding that should be reviewed.
	SeverityWarning FindingSeverity = "warning"
)

// Status values shared by several checks.
const (
	StatusMissing        = "missing"
	StatusTransposition  = "transposition"
	StatusStillPresent   = "still_present"
	StatusRecordNotFound = "record_not_found"
	StatusAPIError       = "api error"
	StatusUnknownField   = "unknown_field"
	StatusInvalidSyntax  = "invalid_syntax"
	StatusInvalidValue   = "invalid_value"
	StatusMissingValue   = "missing_required"
	StatusDuplicate      = "duplicate"
)

// Report column names understood by Finding.Column.
const (
	ColumnRecord   = "record"
	ColumnField    = "field"
	ColumnStatus   = "status"
	ColumnValue    = "value"
	ColumnSeverity = "severity"
)

// Finding is the atomic result every validator emits.
type Finding struct {
	Record   string
	Field    string
	Status   string
	Value    string
	Severity FindingSeverity
	// Extra holds validator-specific columns.
	Extra map[string]string
}

// Column returns the value for a report column.
func (f Finding) Column(name string) string {
	switch name {
	case ColumnRecord:
		return f.Record
	case ColumnField:
		return f.Field
	case ColumnStatus:
		return f.Status
	case ColumnValue:
		return f.Value
	case ColumnSeverity:
		if f.Severity == "" {
			return string(SeverityError)
		}
		return string(f.Severity)
	}
	return f.Extra[name]
}

// With returns a copy of f with an extra column set.
func (f Finding) With(column, value string) Finding {
	extra := make(map[string]string, len(f.Extra)+1)
	for k, v := range f.Extra {
		extra[k] = v
	}
	extra[column] = value
	f.Extra = extra
	return f
}

// WithInt is With for integer columns.
func (f Finding) WithInt(column string, value int) Finding {
	return f.With(column, strconv.Itoa(value))
}

// IsWarning reports whether the finding is advisory.
func (f Finding) IsWarning() bool {
	return f.Severity == SeverityWarning
}
