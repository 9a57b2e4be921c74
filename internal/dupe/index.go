package dupe

import (
	"context"
	"strings"

	"github.com/eykd/rorv/internal/domain"
)

// Index is an in-memory Corpus over a data dump, grouped by country.
type Index struct {
	byCountry map[string][]domain.Record
}

// NewIndex groups records by their country codes.
func NewIndex(records []domain.Record) *Index {
	idx := &Index{byCountry: make(map[string][]domain.Record)}
	for _, rec := range records {
		seen := map[string]bool{}
		for _, cc := range rec.Values(domain.FieldCountryCode) {
			cc = strings.ToUpper(cc)
			if seen[cc] {
				continue
			}
			seen[cc] = true
			idx.byCountry[cc] = append(idx.byCountry[cc], rec)
		}
	}
	return idx
}

// Candidates returns every indexed record in the country. The name is not
// used for filtering; scoring happens in the matcher.
func (ix *Index) Candidates(_ context.Context, _ string, countryCode string) ([]domain.Record, error) {
	return ix.byCountry[strings.ToUpper(countryCode)], nil
}

// Len returns the number of indexed countries.
func (ix *Index) Len() int {
	return len(ix.byCountry)
}
