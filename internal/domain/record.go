package domain

import (
	"slices"
	"strconv"
	"strings"
)

// Format identifies the physical representation a record was read from.
type Format int

const (
	// FormatTabular is a flat CSV row.
	FormatTabular Format = 1 << iota
	// FormatCanonical is a nested JSON registry document.
	FormatCanonical
	// FormatBoth accepts either representation.
	FormatBoth = FormatTabular | FormatCanonical
)

// String returns the human name of the format.
func (f Format) String() string {
	switch f {
	case FormatTabular:
		return "csv"
	case FormatCanonical:
		return "json"
	case FormatBoth:
		return "csv or json"
	}
	return "none"
}

// Name is an organization name with its role tags and language.
type Name struct {
	Value string   `json:"value"`
	Types []string `json:"types"`
	Lang  string   `json:"lang,omitempty"`
}

// HasType reports whether the name carries the given role.
func (n Name) HasType(t string) bool {
	return slices.Contains(n.Types, t)
}

// Place is a location resolved by the geocoding service.
type Place struct {
	GeoNamesID  string
	City        string
	CountryCode string
	CountryName string
}

// Record is the logical shape shared by CSV rows and canonical documents.
type Record struct {
	ID string
	// Source is the submission URL (html_url) or empty for canonical documents.
	Source string
	// Line is the 1-based CSV line, zero for canonical documents.
	Line   int
	Format Format
	Fields map[string][]string
	// Raw holds the cell text of every CSV column as submitted.
	Raw   map[string]string
	Names []Name
}

// Identifier returns the best label for reports: the submission URL, the
// registry id, or the CSV line.
func (r Record) Identifier() string {
	switch {
	case r.Source != "":
		return r.Source
	case r.ID != "":
		return r.ID
	case r.Line > 0:
		return "row " + strconv.Itoa(r.Line)
	}
	return ""
}

// IsUpdate reports whether the record is a CSV row editing an existing record.
func (r Record) IsUpdate() bool {
	return r.Format == FormatTabular && r.ID != ""
}

// Values returns the values of a field.
func (r Record) Values(field string) []string {
	return r.Fields[field]
}

// First returns the first value of a field or "".
func (r Record) First(field string) string {
	if v := r.Fields[field]; len(v) > 0 {
		return v[0]
	}
	return ""
}

// FieldNames returns the populated field paths in sorted order.
func (r Record) FieldNames() []string {
	out := make([]string, 0, len(r.Fields))
	for k, v := range r.Fields {
		if len(v) > 0 {
			out = append(out, k)
		}
	}
	slices.Sort(out)
	return out
}

// RawNames returns the CSV column names in sorted order.
func (r Record) RawNames() []string {
	out := make([]string, 0, len(r.Raw))
	for k := range r.Raw {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// DisplayName returns the ror_display name or "".
func (r Record) DisplayName() string {
	for _, n := range r.Names {
		if n.HasType(NameTypeDisplay) {
			return n.Value
		}
	}
	return ""
}

// NormalizeID reduces a registry id to its bare suffix so that
// "https://ror.org/02mhbdp94" and "02mhbdp94" compare equal.
func NormalizeID(id string) string {
	id = strings.ToLower(strings.TrimSpace(id))
	id = strings.TrimPrefix(id, "https://")
	id = strings.TrimPrefix(id, "http://")
	id = strings.TrimPrefix(id, "ror.org/")
	return strings.TrimSuffix(id, "/")
}

// SplitValues splits a ';'-delimited cell into trimmed non-empty values.
func SplitValues(cell string) []string {
	var out []string
	for _, v := range strings.Split(cell, ";") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
