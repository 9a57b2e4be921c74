// Package dupe finds likely duplicate organizations, within one batch and
// against an external record set, by normalized website host and by exact
// or fuzzy name similarity.
package dupe

import (
	"slices"

	"github.com/eykd/rorv/internal/domain"
	"github.com/eykd/rorv/internal/normalize"
)

// Default scoring thresholds.
const (
	ExactScore     = 100
	FuzzyThreshold = 85
	DefaultWorkers = 5
)

// Match types.
const (
	MatchURL       = "url"
	MatchNameExact = "name_exact"
	MatchNameFuzzy = "name_fuzzy"
)

// Options tunes matching.
type Options struct {
	ExactScore     int
	FuzzyThreshold int
	Workers        int
}

// DefaultOptions returns the standard thresholds.
func DefaultOptions() Options {
	return Options{
		ExactScore:     ExactScore,
		FuzzyThreshold: FuzzyThreshold,
		Workers:        DefaultWorkers,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.ExactScore <= 0 {
		o.ExactScore = d.ExactScore
	}
	if o.FuzzyThreshold <= 0 {
		o.FuzzyThreshold = d.FuzzyThreshold
	}
	if o.Workers <= 0 {
		o.Workers = d.Workers
	}
	return o
}

// classify returns the match type for a score, or "" below the threshold.
func (o Options) classify(score int) string {
	switch {
	case score >= o.ExactScore:
		return MatchNameExact
	case score >= o.FuzzyThreshold:
		return MatchNameFuzzy
	}
	return ""
}

// matchNames are the name fields compared for duplicates. Acronyms are
// too short to compare meaningfully.
var matchNames = []string{
	domain.FieldNameDisplay,
	domain.FieldNameLabel,
	domain.FieldNameAlias,
}

// Names returns the distinct cleaned, non-acronym names of a record.
func Names(rec domain.Record) []string {
	var out []string
	for _, field := range matchNames {
		for _, v := range rec.Values(field) {
			n := normalize.Text(normalize.CleanName(v), false)
			if n != "" && !slices.Contains(out, n) {
				out = append(out, n)
			}
		}
	}
	return out
}

// Hosts returns the distinct normalized website hosts of a record.
func Hosts(rec domain.Record) []string {
	var out []string
	for _, v := range rec.Values(domain.FieldWebsite) {
		h := normalize.URL(v)
		if h != "" && !slices.Contains(out, h) {
			out = append(out, h)
		}
	}
	return out
}
