package dupe

import (
	"github.com/eykd/rorv/internal/domain"
	"github.com/eykd/rorv/internal/normalize"
)

// Pair is a suspected duplicate inside one batch.
type Pair struct {
	A, B      domain.Record
	MatchType string
	Score     int
	// ValueA and ValueB are the matching values from each record.
	ValueA, ValueB string
}

type keyedName struct {
	name string
	key  string
}

// InBatch compares every unordered pair of records. A shared website host
// yields one url pair per record pair. Names are compared across records
// and each unordered pair of names is reported once per call.
func InBatch(records []domain.Record, opts Options) []Pair {
	opts = opts.withDefaults()

	hosts := make([][]string, len(records))
	names := make([][]keyedName, len(records))
	for i, rec := range records {
		hosts[i] = Hosts(rec)
		for _, n := range Names(rec) {
			if k := normalize.FuzzyKey(n); k != "" {
				names[i] = append(names[i], keyedName{name: n, key: k})
			}
		}
	}

	var pairs []Pair
	seenNames := make(map[[2]string]bool)
	for i := 0; i < len(records); i++ {
		for j := i + 1; j < len(records); j++ {
			if host, ok := sharedHost(hosts[i], hosts[j]); ok {
				pairs = append(pairs, Pair{
					A: records[i], B: records[j],
					MatchType: MatchURL,
					Score:     opts.ExactScore,
					ValueA:    host, ValueB: host,
				})
			}

			for _, na := range names[i] {
				for _, nb := range names[j] {
					key := pairKey(na.key, nb.key)
					if seenNames[key] {
						continue
					}
					if normalize.MaxRatio(na.key, nb.key) < opts.FuzzyThreshold {
						continue
					}
					score := normalize.KeyRatio(na.key, nb.key)
					matchType := opts.classify(score)
					if matchType == "" {
						continue
					}
					seenNames[key] = true
					pairs = append(pairs, Pair{
						A: records[i], B: records[j],
						MatchType: matchType,
						Score:     score,
						ValueA:    na.name, ValueB: nb.name,
					})
				}
			}
		}
	}
	return pairs
}

func sharedHost(a, b []string) (string, bool) {
	for _, ha := range a {
		for _, hb := range b {
			if ha == hb {
				return ha, true
			}
		}
	}
	return "", false
}

func pairKey(a, b string) [2]string {
	if a > b {
		a, b = b, a
	}
	return [2]string{a, b}
}
