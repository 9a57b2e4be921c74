package validate

import (
	"context"
	"strings"

	"github.com/eykd/rorv/internal/domain"
	"github.com/eykd/rorv/internal/dupe"
	"github.com/eykd/rorv/internal/normalize"
)

// Duplicate report columns.
const (
	ColumnMatchType       = "match_type"
	ColumnScore           = "similarity_score"
	ColumnDuplicateRecord = "duplicate_record"
	ColumnDuplicateValue  = "duplicate_value"
	ColumnCountryCode     = "country_code"
	ColumnMatchedID       = "matched_id"
	ColumnMatchedName     = "matched_name"
)

// InReleaseDuplicatesValidator finds duplicates inside the submitted batch.
type InReleaseDuplicatesValidator struct{}

// Descriptor implements Validator.
func (InReleaseDuplicatesValidator) Descriptor() Descriptor {
	return Descriptor{
		Name:    "in-release-duplicates",
		Formats: domain.FormatBoth,
		Fields: []string{
			domain.ColumnRecord, domain.ColumnValue, ColumnMatchType, ColumnScore,
			ColumnDuplicateRecord, ColumnDuplicateValue,
		},
	}
}

// Run implements Validator.
func (InReleaseDuplicatesValidator) Run(_ context.Context, vc *Context) ([]domain.Finding, error) {
	var findings []domain.Finding
	for _, p := range dupe.InBatch(vc.Records, vc.Options) {
		findings = append(findings, domain.Finding{
			Record: p.A.Identifier(),
			Status: domain.StatusDuplicate,
			Value:  p.ValueA,
		}.
			With(ColumnMatchType, p.MatchType).
			WithInt(ColumnScore, p.Score).
			With(ColumnDuplicateRecord, p.B.Identifier()).
			With(ColumnDuplicateValue, p.ValueB))
	}
	return findings, nil
}

// DuplicateURLsValidator flags website hosts already used by a registry record.
type DuplicateURLsValidator struct{}

// Descriptor implements Validator.
func (DuplicateURLsValidator) Descriptor() Descriptor {
	return Descriptor{
		Name:            "duplicate-urls",
		Formats:         domain.FormatBoth,
		NeedsDataSource: true,
		Fields: []string{
			domain.ColumnRecord, domain.ColumnField, domain.ColumnValue,
			ColumnRegistryID, ColumnDuplicateValue,
		},
	}
}

// Run implements Validator.
func (DuplicateURLsValidator) Run(_ context.Context, vc *Context) ([]domain.Finding, error) {
	type owner struct{ id, url string }
	byHost := make(map[string][]owner)
	for _, rec := range vc.DataSource {
		for _, v := range rec.Values(domain.FieldWebsite) {
			if h := normalize.URL(v); h != "" {
				byHost[h] = append(byHost[h], owner{id: rec.ID, url: v})
			}
		}
	}

	var findings []domain.Finding
	for _, rec := range vc.Records {
		self := domain.NormalizeID(rec.ID)
		for _, v := range rec.Values(domain.FieldWebsite) {
			for _, o := range byHost[normalize.URL(v)] {
				if self != "" && domain.NormalizeID(o.id) == self {
					continue
				}
				findings = append(findings, domain.Finding{
					Record: rec.Identifier(),
					Field:  domain.FieldWebsite,
					Status: domain.StatusDuplicate,
					Value:  v,
				}.With(ColumnRegistryID, o.id).With(ColumnDuplicateValue, o.url))
			}
		}
	}
	return findings, nil
}

// DuplicateExternalIDsValidator flags external identifiers already held by
// a registry record.
type DuplicateExternalIDsValidator struct{}

// Descriptor implements Validator.
func (DuplicateExternalIDsValidator) Descriptor() Descriptor {
	return Descriptor{
		Name:            "duplicate-external-ids",
		Formats:         domain.FormatBoth,
		NeedsDataSource: true,
		Fields: []string{
			domain.ColumnRecord, domain.ColumnField, domain.ColumnValue, ColumnRegistryID,
		},
	}
}

// externalIDKey normalizes an identifier for cross-record equality.
func externalIDKey(idType, value string) string {
	return idType + ":" + strings.ToLower(strings.Join(strings.Fields(value), ""))
}

// Run implements Validator.
func (DuplicateExternalIDsValidator) Run(_ context.Context, vc *Context) ([]domain.Finding, error) {
	owners := make(map[string][]string)
	for _, rec := range vc.DataSource {
		for _, idType := range domain.ExternalIDTypes {
			for _, v := range rec.Values(domain.ExternalIDField(idType, "all")) {
				k := externalIDKey(idType, v)
				owners[k] = append(owners[k], rec.ID)
			}
		}
	}

	var findings []domain.Finding
	for _, rec := range vc.Records {
		self := domain.NormalizeID(rec.ID)
		for _, idType := range domain.ExternalIDTypes {
			for _, part := range []string{"all", "preferred"} {
				field := domain.ExternalIDField(idType, part)
				for _, v := range rec.Values(field) {
					for _, id := range owners[externalIDKey(idType, v)] {
						if self != "" && domain.NormalizeID(id) == self {
							continue
						}
						findings = append(findings, domain.Finding{
							Record: rec.Identifier(),
							Field:  field,
							Status: domain.StatusDuplicate,
							Value:  v,
						}.With(ColumnRegistryID, id))
					}
				}
			}
		}
	}
	return findings, nil
}

// ProductionDuplicatesValidator matches submitted names against registry
// records in the same country.
type ProductionDuplicatesValidator struct{}

// Descriptor implements Validator.
func (ProductionDuplicatesValidator) Descriptor() Descriptor {
	return Descriptor{
		Name:          "production-duplicates",
		Formats:       domain.FormatBoth,
		NeedsGeoNames: true,
		NeedsCorpus:   true,
		Fields: []string{
			domain.ColumnRecord, domain.ColumnValue, ColumnCountryCode,
			ColumnMatchedID, ColumnMatchedName, ColumnMatchType, ColumnScore,
		},
	}
}

// Run implements Validator. A data dump, when present, is indexed and
// preferred over live registry search.
func (ProductionDuplicatesValidator) Run(ctx context.Context, vc *Context) ([]domain.Finding, error) {
	corpus := vc.Search
	if vc.DataSource != nil {
		corpus = dupe.NewIndex(vc.DataSource)
	}

	matches, err := dupe.NewCrossMatcher(vc.Geocoder, corpus, vc.Logger, vc.Options).Run(ctx, vc.Records)
	if err != nil {
		return nil, err
	}

	findings := make([]domain.Finding, 0, len(matches))
	for _, m := range matches {
		findings = append(findings, domain.Finding{
			Record: m.Record.Identifier(),
			Status: domain.StatusDuplicate,
			Value:  m.InputName,
		}.
			With(ColumnCountryCode, m.CountryCode).
			With(ColumnMatchedID, m.MatchedID).
			With(ColumnMatchedName, m.MatchedName).
			With(ColumnMatchType, m.MatchType).
			WithInt(ColumnScore, m.Score))
	}
	return findings, nil
}
