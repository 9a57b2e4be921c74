package integrity

import (
	"github.com/eykd/rorv/internal/domain"
	"github.com/eykd/rorv/internal/normalize"
)

// Pair is a submitted new-record row and the canonical record produced
// for it. Canonical is nil when no record could be matched.
type Pair struct {
	Row       domain.Record
	Canonical *domain.Record
}

// PairNew matches every new-record row to a canonical record: first on the
// cleaned, case-folded display name, then on any submitted name appearing
// among a canonical record's names. Rows carrying an id are ignored.
func PairNew(rows, canonical []domain.Record) []Pair {
	byDisplay := make(map[string]int)
	byName := make(map[string]int)
	for i, rec := range canonical {
		for _, v := range rec.Values(domain.FieldNameDisplay) {
			if k := nameKey(v); k != "" {
				if _, seen := byDisplay[k]; !seen {
					byDisplay[k] = i
				}
			}
		}
		for _, field := range nameFieldOrder {
			for _, v := range rec.Values(field) {
				if k := nameKey(v); k != "" {
					if _, seen := byName[k]; !seen {
						byName[k] = i
					}
				}
			}
		}
	}

	var pairs []Pair
	for _, row := range rows {
		if row.IsUpdate() {
			continue
		}
		p := Pair{Row: row}
		if i, ok := lookupNames(byDisplay, row.Values(domain.FieldNameDisplay)); ok {
			p.Canonical = &canonical[i]
		} else if i, ok := lookupNames(byName, rowNames(row)); ok {
			p.Canonical = &canonical[i]
		}
		pairs = append(pairs, p)
	}
	return pairs
}

// CheckNew pairs new-record rows with canonical records and compares every
// pair. Unmatched rows yield one record_not_found finding.
func CheckNew(rows, canonical []domain.Record) []domain.Finding {
	var findings []domain.Finding
	for _, p := range PairNew(rows, canonical) {
		if p.Canonical == nil {
			findings = append(findings, domain.Finding{
				Record: p.Row.Identifier(),
				Field:  domain.FieldNameDisplay,
				Status: domain.StatusRecordNotFound,
				Value:  p.Row.First(domain.FieldNameDisplay),
			})
			continue
		}
		findings = append(findings, CheckNewRecord(p.Row, *p.Canonical)...)
	}
	return findings
}

// CheckNewRecord compares each submitted value of row with the canonical
// record. A value absent from the whole record is missing; a value present
// only under another field is a transposition.
func CheckNewRecord(row, canonical domain.Record) []domain.Finding {
	idx := indexRecord(canonical)

	var findings []domain.Finding
	for _, field := range row.FieldNames() {
		if !comparableNew(field) {
			continue
		}
		for _, v := range row.Values(field) {
			if compareKey(field, v) == "" || idx.has(field, v) {
				continue
			}
			f := domain.Finding{
				Record: row.Identifier(),
				Field:  field,
				Value:  v,
			}.With(ColumnRegistryID, canonical.ID)

			if found := idx.fieldsFor(field, v); len(found) > 0 {
				f.Status = domain.StatusTransposition
				f = f.With(ColumnFoundIn, found[0])
			} else {
				f.Status = domain.StatusMissing
			}
			findings = append(findings, f)
		}
	}
	return findings
}

func nameKey(v string) string {
	return normalize.FuzzyKey(normalize.CleanName(v))
}

func lookupNames(index map[string]int, names []string) (int, bool) {
	for _, n := range names {
		if i, ok := index[nameKey(n)]; ok {
			return i, true
		}
	}
	return 0, false
}

var nameFieldOrder = []string{
	domain.FieldNameDisplay,
	domain.FieldNameLabel,
	domain.FieldNameAlias,
	domain.FieldNameAcronym,
}

func rowNames(row domain.Record) []string {
	var out []string
	for _, field := range nameFieldOrder {
		out = append(out, row.Values(field)...)
	}
	return out
}
