// Package integrity compares submitted rows against the canonical records
// produced from them and reports edits that were lost, misfiled or never
// applied.
package integrity

import (
	"strconv"
	"strings"

	"github.com/eykd/rorv/internal/domain"
	"github.com/eykd/rorv/internal/normalize"
)

// Extra report columns.
const (
	ColumnRegistryID = "ror_id"
	ColumnFoundIn    = "found_in"
	ColumnAction     = "action"
)

// compareKey reduces a value to the form used for equality under field.
func compareKey(field, value string) string {
	spec, ok := domain.LookupField(field)
	if !ok {
		return normalize.Text(value, false)
	}

	if locationColumns[field] {
		return strings.ToLower(normalize.Text(value, false))
	}
	switch spec.Kind {
	case domain.KindName:
		return normalize.Text(normalize.CleanName(value), false)
	case domain.KindURL:
		key := normalize.URLWithPath(value)
		if field == domain.FieldWikipedia {
			key = strings.ReplaceAll(key, "_", " ")
		}
		return key
	case domain.KindInteger:
		s := normalize.Text(value, false)
		if n, err := strconv.Atoi(s); err == nil {
			return strconv.Itoa(n)
		}
		return s
	case domain.KindEnum:
		return strings.ToLower(normalize.Text(value, false))
	}
	return normalize.Text(value, false)
}

// valueIndex records, for one canonical record, which fields hold each
// comparison key.
type valueIndex map[string][]string

func indexRecord(rec domain.Record) valueIndex {
	idx := valueIndex{}
	for _, field := range rec.FieldNames() {
		for _, v := range rec.Values(field) {
			key := compareKey(field, v)
			if key == "" {
				continue
			}
			idx[key] = append(idx[key], field)
		}
	}
	return idx
}

// fieldsFor returns the canonical fields that hold value once it is keyed
// the way field compares.
func (idx valueIndex) fieldsFor(field, value string) []string {
	return idx[compareKey(field, value)]
}

// has reports whether value is present under field.
func (idx valueIndex) has(field, value string) bool {
	for _, f := range idx.fieldsFor(field, value) {
		if f == field {
			return true
		}
	}
	return false
}

// locationColumns are the denormalized place columns of a new-record row.
// They compare case-insensitively against the canonical geonames_details.
var locationColumns = map[string]bool{
	domain.FieldCity:        true,
	domain.FieldCountry:     true,
	domain.FieldCountryCode: true,
}

// comparable reports whether a submitted column takes part in integrity
// comparison: known, editable fields only.
func comparable(field string) bool {
	spec, ok := domain.LookupField(field)
	return ok && !spec.Meta
}

// comparableNew is comparable plus the location columns, which a new
// record's canonical form fills from GeoNames.
func comparableNew(field string) bool {
	return comparable(field) || locationColumns[field]
}
