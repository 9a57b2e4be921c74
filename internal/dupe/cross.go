package dupe

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/eykd/rorv/internal/domain"
	"github.com/eykd/rorv/internal/normalize"
)

// Geocoder resolves a GeoNames id to a place.
type Geocoder interface {
	Lookup(ctx context.Context, geonamesID string) (domain.Place, error)
}

// Corpus returns registry records that may duplicate a name in a country.
type Corpus interface {
	Candidates(ctx context.Context, name, countryCode string) ([]domain.Record, error)
}

// Logger is the logging surface the matcher needs.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

// Match is a registry record whose name resembles a submitted name.
type Match struct {
	Record      domain.Record
	InputName   string
	CountryCode string
	MatchedID   string
	MatchedName string
	MatchType   string
	Score       int
}

// CrossMatcher matches records against an external corpus with a bounded
// worker pool.
type CrossMatcher struct {
	geocoder Geocoder
	corpus   Corpus
	logger   Logger
	opts     Options
}

// NewCrossMatcher creates a CrossMatcher.
func NewCrossMatcher(geocoder Geocoder, corpus Corpus, logger Logger, opts Options) *CrossMatcher {
	return &CrossMatcher{
		geocoder: geocoder,
		corpus:   corpus,
		logger:   logger,
		opts:     opts.withDefaults(),
	}
}

type unit struct {
	rec     int
	name    string
	country string
}

// Run matches every name of every record with a resolvable country against
// same-country corpus records. Records without a resolvable location are
// skipped. A failing unit is logged and skipped; only cancellation of ctx
// fails the run.
func (m *CrossMatcher) Run(ctx context.Context, records []domain.Record) ([]Match, error) {
	countries, err := m.resolveCountries(ctx, records)
	if err != nil {
		return nil, err
	}

	var units []unit
	for i, rec := range records {
		if countries[i] == "" {
			m.logger.Info("skipping record without resolvable location", "record", rec.Identifier())
			continue
		}
		for _, n := range Names(rec) {
			units = append(units, unit{rec: i, name: n, country: countries[i]})
		}
	}

	var (
		mu      sync.Mutex
		matches []Match
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.opts.Workers)
	for _, u := range units {
		g.Go(func() error {
			found, err := m.matchName(gctx, records[u.rec], u.name, u.country)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				m.logger.Warn("skipping name after search failure",
					"record", records[u.rec].Identifier(), "name", u.name, "error", err)
				return nil
			}
			mu.Lock()
			matches = append(matches, found...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return dedupe(matches), nil
}

// resolveCountries looks up the country of every record through the
// geocoder, falling back to the country code embedded in the record.
func (m *CrossMatcher) resolveCountries(ctx context.Context, records []domain.Record) ([]string, error) {
	countries := make([]string, len(records))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.opts.Workers)
	for i, rec := range records {
		g.Go(func() error {
			for _, id := range rec.Values(domain.FieldGeoNamesID) {
				place, err := m.geocoder.Lookup(gctx, id)
				if err != nil {
					if gctx.Err() != nil {
						return gctx.Err()
					}
					m.logger.Warn("geonames lookup failed", "record", rec.Identifier(), "geonames_id", id, "error", err)
					continue
				}
				if place.CountryCode != "" {
					countries[i] = strings.ToUpper(place.CountryCode)
					return nil
				}
			}
			countries[i] = strings.ToUpper(rec.First(domain.FieldCountryCode))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return countries, nil
}

func (m *CrossMatcher) matchName(ctx context.Context, rec domain.Record, name, country string) ([]Match, error) {
	candidates, err := m.corpus.Candidates(ctx, name, country)
	if err != nil {
		return nil, err
	}

	key := normalize.FuzzyKey(name)
	self := domain.NormalizeID(rec.ID)
	var out []Match
	for _, cand := range candidates {
		if self != "" && domain.NormalizeID(cand.ID) == self {
			continue
		}
		if !slices.ContainsFunc(cand.Values(domain.FieldCountryCode), func(cc string) bool {
			return strings.EqualFold(cc, country)
		}) {
			continue
		}

		best, bestName := 0, ""
		for _, cn := range Names(cand) {
			ck := normalize.FuzzyKey(cn)
			if ub := normalize.MaxRatio(key, ck); ub < m.opts.FuzzyThreshold || ub <= best {
				continue
			}
			if score := normalize.KeyRatio(key, ck); score > best {
				best, bestName = score, cn
			}
		}
		matchType := m.opts.classify(best)
		if matchType == "" {
			continue
		}
		out = append(out, Match{
			Record:      rec,
			InputName:   name,
			CountryCode: country,
			MatchedID:   cand.ID,
			MatchedName: bestName,
			MatchType:   matchType,
			Score:       best,
		})
	}
	return out, nil
}

// dedupe keeps the best score per (record, input name, matched id) and
// orders the result by record, descending score, then matched id.
func dedupe(matches []Match) []Match {
	type key struct{ record, name, id string }
	best := make(map[key]int)
	var out []Match
	for _, mt := range matches {
		k := key{mt.Record.Identifier(), mt.InputName, mt.MatchedID}
		if i, ok := best[k]; ok {
			if mt.Score > out[i].Score {
				out[i] = mt
			}
			continue
		}
		best[k] = len(out)
		out = append(out, mt)
	}

	slices.SortStableFunc(out, func(a, b Match) int {
		return cmp.Or(
			cmp.Compare(a.Record.Line, b.Record.Line),
			strings.Compare(a.Record.Identifier(), b.Record.Identifier()),
			cmp.Compare(b.Score, a.Score),
			strings.Compare(a.InputName, b.InputName),
			strings.Compare(a.MatchedID, b.MatchedID),
		)
	})
	return out
}
