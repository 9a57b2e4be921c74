// Package fieldcheck holds the per-field value format rules: a table from
// field path to an ordered list of rule functions.
package fieldcheck

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/eykd/rorv/internal/directive"
	"github.com/eykd/rorv/internal/domain"
	"github.com/eykd/rorv/internal/normalize"
)

// ErrInvalidValue is wrapped by every rule failure.
var ErrInvalidValue = errors.New("invalid value")

// Rule checks one value and returns an error wrapping ErrInvalidValue.
type Rule func(value string) error

// Statuses is the closed vocabulary of record statuses.
var Statuses = []string{"active", "inactive", "withdrawn"}

// Types is the closed vocabulary of organization types.
var Types = []string{
	"archive", "company", "education", "facility", "funder",
	"government", "healthcare", "nonprofit", "other",
}

var (
	rorIDRegex    = regexp.MustCompile(`^https://ror\.org/0[a-hj-km-np-tv-z0-9]{6}[0-9]{2}$`)
	digitsRegex   = regexp.MustCompile(`^[0-9]+$`)
	isniRegex     = regexp.MustCompile(`^[0-9]{4} ?[0-9]{4} ?[0-9]{4} ?[0-9]{3}[0-9X]$`)
	fundrefRegex  = regexp.MustCompile(`^[1-9][0-9]{2,}$`)
	gridRegex     = regexp.MustCompile(`^grid\.[0-9]+\.[0-9a-f]+$`)
	wikidataRegex = regexp.MustCompile(`^Q[1-9][0-9]*$`)
	hostnameRegex = regexp.MustCompile(`^([a-z0-9]([a-z0-9-]*[a-z0-9])?\.)+[a-z]{2,}$`)
)

// MinYear and MaxYear bound the established year.
const (
	MinYear = 1000
	MaxYear = 2100
)

var ruleTable = map[string][]Rule{
	domain.FieldID:          {pattern(rorIDRegex, "registry id")},
	domain.FieldIssueURL:    {webURL},
	domain.FieldEstablished: {year},
	domain.FieldStatus:      {oneOf(Statuses)},
	domain.FieldTypes:       {oneOf(Types)},
	domain.FieldDomains:     {hostname},
	domain.FieldWebsite:     {webURL},
	domain.FieldWikipedia:   {webURL, wikipediaURL},
	domain.FieldGeoNamesID:  {pattern(digitsRegex, "geonames id")},
	domain.FieldNameDisplay: {nameLang},
	domain.FieldNameAlias:   {nameLang},
	domain.FieldNameLabel:   {nameLang},
	domain.FieldNameAcronym: {nameLang},
}

func init() {
	idRules := map[string]Rule{
		domain.ExternalIDFundRef:  pattern(fundrefRegex, "fundref id"),
		domain.ExternalIDGRID:     pattern(gridRegex, "grid id"),
		domain.ExternalIDISNI:     pattern(isniRegex, "isni"),
		domain.ExternalIDWikidata: pattern(wikidataRegex, "wikidata id"),
	}
	for idType, rule := range idRules {
		ruleTable[domain.ExternalIDField(idType, "all")] = []Rule{rule}
		ruleTable[domain.ExternalIDField(idType, "preferred")] = []Rule{rule}
	}
}

// Rules returns the ordered rules for a field path, nil when none apply.
func Rules(field string) []Rule {
	return ruleTable[field]
}

// Check runs every rule for the field against value and returns the first
// failure.
func Check(field, value string) error {
	for _, rule := range ruleTable[field] {
		if err := rule(value); err != nil {
			return err
		}
	}
	return nil
}

func pattern(re *regexp.Regexp, what string) Rule {
	return func(value string) error {
		if !re.MatchString(value) {
			return fmt.Errorf("%w: %q is not a valid %s", ErrInvalidValue, value, what)
		}
		return nil
	}
}

func oneOf(allowed []string) Rule {
	return func(value string) error {
		if !slices.Contains(allowed, strings.ToLower(value)) {
			return fmt.Errorf("%w: %q must be one of %s", ErrInvalidValue, value, strings.Join(allowed, ", "))
		}
		return nil
	}
}

func year(value string) error {
	n, err := strconv.Atoi(value)
	if err != nil || n < MinYear || n > MaxYear {
		return fmt.Errorf("%w: %q is not a year between %d and %d", ErrInvalidValue, value, MinYear, MaxYear)
	}
	return nil
}

func hostname(value string) error {
	if !hostnameRegex.MatchString(strings.ToLower(value)) {
		return fmt.Errorf("%w: %q is not a bare domain name", ErrInvalidValue, value)
	}
	return nil
}

func webURL(value string) error {
	u, err := url.Parse(value)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q is not an http(s) URL", ErrInvalidValue, value)
	}
	return nil
}

func wikipediaURL(value string) error {
	if !strings.HasSuffix(normalize.URL(value), "wikipedia.org") {
		return fmt.Errorf("%w: %q is not a Wikipedia URL", ErrInvalidValue, value)
	}
	return nil
}

func nameLang(value string) error {
	if err := directive.ValidateNameLang(value); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidValue, err)
	}
	return nil
}
