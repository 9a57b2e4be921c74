package validate

import (
	"context"
	"strings"

	"github.com/eykd/rorv/internal/domain"
	"github.com/eykd/rorv/internal/normalize"
)

// ColumnExpected holds the value GeoNames reports for a mismatched field.
const ColumnExpected = "geonames_value"

// AddressValidator resolves every GeoNames id and checks that the city and
// country submitted alongside it agree.
type AddressValidator struct{}

// Descriptor implements Validator.
func (AddressValidator) Descriptor() Descriptor {
	return Descriptor{
		Name:          "address-validation",
		Formats:       domain.FormatBoth,
		NeedsGeoNames: true,
		Fields: []string{
			domain.ColumnRecord, domain.ColumnField, domain.ColumnStatus,
			domain.ColumnValue, ColumnExpected, ColumnMessage,
		},
	}
}

// Run implements Validator. Lookup failures become "api error" findings.
func (AddressValidator) Run(ctx context.Context, vc *Context) ([]domain.Finding, error) {
	var findings []domain.Finding
	for _, rec := range vc.Records {
		for _, id := range rec.Values(domain.FieldGeoNamesID) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			place, err := vc.Geocoder.Lookup(ctx, id)
			if err != nil {
				findings = append(findings, domain.Finding{
					Record: rec.Identifier(),
					Field:  domain.FieldGeoNamesID,
					Status: domain.StatusAPIError,
					Value:  id,
				}.With(ColumnMessage, err.Error()))
				continue
			}

			checks := []struct{ field, want string }{
				{domain.FieldCity, place.City},
				{domain.FieldCountry, place.CountryName},
				{domain.FieldCountryCode, place.CountryCode},
			}
			for _, c := range checks {
				got := rec.First(c.field)
				if got == "" || c.want == "" || sameText(got, c.want) {
					continue
				}
				findings = append(findings, domain.Finding{
					Record: rec.Identifier(),
					Field:  c.field,
					Status: domain.StatusInvalidValue,
					Value:  got,
				}.With(ColumnExpected, c.want).With(ColumnMessage, "does not match geonames id "+id))
			}
		}
	}
	return findings, nil
}

func sameText(a, b string) bool {
	return strings.EqualFold(normalize.Text(a, false), normalize.Text(b, false))
}
