package validate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eykd/rorv/internal/domain"
)

func statuses(findings []domain.Finding) map[string][]string {
	out := map[string][]string{}
	for _, f := range findings {
		out[f.Field] = append(out[f.Field], f.Status)
	}
	return out
}

func runValidator(t *testing.T, v Validator, vc *Context) []domain.Finding {
	t.Helper()
	ok, reason := v.Descriptor().CanRun(vc)
	require.True(t, ok, reason)
	findings, err := v.Run(context.Background(), vc)
	require.NoError(t, err)
	return findings
}

func dumpRecord(id, name, website, cc string, ext ...domain.ExternalID) domain.Record {
	return domain.Document{
		ID:          id,
		Status:      "active",
		Types:       []string{"education"},
		Names:       []domain.Name{{Value: name, Types: []string{domain.NameTypeDisplay}}},
		Links:       []domain.Link{{Type: "website", Value: website}},
		ExternalIDs: ext,
		Locations:   []domain.Location{{GeoNamesID: 2640729, GeoNamesDetails: domain.GeoNamesDetails{Name: "Oxford", CountryCode: cc}}},
	}.Record()
}

func TestFieldsValidator_NewRow(t *testing.T) {
	row := csvRow(2, map[string]string{
		domain.FieldIssueURL:    issue(1),
		domain.FieldNameDisplay: "Example Institute*english",
		domain.FieldStatus:      "active",
		domain.FieldTypes:       "education;university",
		domain.FieldEstablished: "1901;1902",
		domain.FieldWebsite:     "https://example.org",
		"notes":                 "free text",
		domain.ExternalIDField(domain.ExternalIDWikidata, "all"):       "Q1",
		domain.ExternalIDField(domain.ExternalIDWikidata, "preferred"): "Q2",
	})

	findings := runValidator(t, FieldsValidator{}, NewContext(Inputs{Tabular: []domain.Record{row}}))
	got := statuses(findings)

	assert.Equal(t, []string{domain.StatusInvalidValue}, got[domain.FieldNameDisplay])
	assert.Equal(t, []string{domain.StatusInvalidValue}, got[domain.FieldTypes])
	assert.Equal(t, []string{domain.StatusInvalidValue}, got[domain.FieldEstablished])
	assert.Equal(t, []string{domain.StatusMissingValue}, got[domain.FieldGeoNamesID])
	assert.Equal(t, []string{domain.StatusUnknownField}, got["notes"])
	assert.Equal(t, []string{domain.StatusInvalidValue}, got[domain.ExternalIDField(domain.ExternalIDWikidata, "preferred")])
	assert.NotContains(t, got, domain.FieldWebsite)
	assert.NotContains(t, got, domain.FieldStatus)

	for _, f := range findings {
		if f.Status == domain.StatusUnknownField {
			assert.True(t, f.IsWarning())
		}
	}
}

func TestFieldsValidator_UpdateRow(t *testing.T) {
	row := csvRow(3, map[string]string{
		domain.FieldID:          "https://ror.org/052gg0110",
		domain.FieldIssueURL:    issue(2),
		domain.FieldStatus:      "add==active",
		domain.FieldNameAlias:   "add==Alias*en;delete==Old",
		domain.FieldNameAcronym: "replace==EX;add==EXI",
		domain.FieldTypes:       "education;company",
		domain.FieldEstablished: "delete",
		domain.FieldWebsite:     "replace==not a url",
	})

	findings := runValidator(t, FieldsValidator{}, NewContext(Inputs{Tabular: []domain.Record{row}}))
	got := statuses(findings)

	assert.Equal(t, []string{domain.StatusInvalidSyntax}, got[domain.FieldStatus])
	assert.Equal(t, []string{domain.StatusInvalidSyntax}, got[domain.FieldNameAcronym])
	assert.Equal(t, []string{domain.StatusInvalidValue}, got[domain.FieldWebsite])
	assert.NotContains(t, got, domain.FieldNameAlias)
	assert.NotContains(t, got, domain.FieldTypes)
	assert.NotContains(t, got, domain.FieldEstablished)
	assert.NotContains(t, got, domain.FieldID)
	assert.NotContains(t, got, domain.FieldGeoNamesID, "update rows need not repeat required fields")
}

func TestFieldsValidator_CanonicalRecord(t *testing.T) {
	rec := dumpRecord("https://ror.org/052gg0110", "University of Oxford", "https://www.ox.ac.uk", "GB")

	findings := runValidator(t, FieldsValidator{}, NewContext(Inputs{Canonical: []domain.Record{rec}}))

	assert.Empty(t, findings)
}

func TestEncodingValidator(t *testing.T) {
	row := csvRow(2, map[string]string{
		domain.FieldNameDisplay: "Universit\u00c3\u00a9 Laval",
		domain.FieldNameAlias:   "Bad\u0007Bell",
		domain.FieldNameLabel:   "Lost \ufffd char",
		domain.FieldCity:        "Québec",
	})

	got := statuses(runValidator(t, EncodingValidator{}, NewContext(Inputs{Tabular: []domain.Record{row}})))

	assert.Equal(t, map[string][]string{
		domain.FieldNameDisplay: {StatusMisencoded},
		domain.FieldNameAlias:   {StatusControlChars},
		domain.FieldNameLabel:   {StatusReplacementChar},
	}, got)
}

func TestLeadingTrailingValidator(t *testing.T) {
	row := csvRow(2, map[string]string{
		domain.FieldNameDisplay: " Padded",
		domain.FieldNameAlias:   "One; Two",
		domain.FieldCity:        "Oxford\t",
	})

	got := statuses(runValidator(t, LeadingTrailingValidator{}, NewContext(Inputs{Tabular: []domain.Record{row}})))

	assert.Equal(t, map[string][]string{
		domain.FieldNameDisplay: {StatusSurroundingText},
		domain.FieldCity:        {StatusSurroundingText},
	}, got)
}

func TestDuplicateValuesValidator(t *testing.T) {
	newRow := csvRow(2, map[string]string{
		domain.FieldNameAlias: "Alpha; alpha ;Beta",
		domain.FieldTypes:     "education",
	})
	updateRow := csvRow(3, map[string]string{
		domain.FieldID:      "https://ror.org/052gg0110",
		domain.FieldDomains: "add==a.org;a.org;delete==a.org",
	})

	findings := runValidator(t, DuplicateValuesValidator{}, NewContext(Inputs{Tabular: []domain.Record{newRow, updateRow}}))

	require.Len(t, findings, 2)
	assert.Equal(t, domain.FieldNameAlias, findings[0].Field)
	assert.Equal(t, "alpha", findings[0].Value)
	assert.Equal(t, domain.FieldDomains, findings[1].Field)
	assert.Equal(t, "https://ror.org/052gg0110", findings[1].Record)
}

func TestDuplicateURLsValidator(t *testing.T) {
	dump := []domain.Record{
		dumpRecord("https://ror.org/052gg0110", "University of Oxford", "http://www.ox.ac.uk/", "GB"),
	}
	rows := []domain.Record{
		csvRow(2, map[string]string{domain.FieldIssueURL: issue(1), domain.FieldWebsite: "https://ox.ac.uk/research"}),
		csvRow(3, map[string]string{domain.FieldIssueURL: issue(2), domain.FieldWebsite: "https://cam.ac.uk"}),
		csvRow(4, map[string]string{domain.FieldID: "https://ror.org/052gg0110", domain.FieldWebsite: "https://www.ox.ac.uk"}),
	}
	vc := NewContext(Inputs{Tabular: rows})
	vc.DataSource = dump

	findings := runValidator(t, DuplicateURLsValidator{}, vc)

	require.Len(t, findings, 1)
	assert.Equal(t, issue(1), findings[0].Record)
	assert.Equal(t, "https://ror.org/052gg0110", findings[0].Column(ColumnRegistryID))
}

func TestDuplicateExternalIDsValidator(t *testing.T) {
	isniAll := domain.ExternalIDField(domain.ExternalIDISNI, "all")
	dump := []domain.Record{
		dumpRecord("https://ror.org/052gg0110", "University of Oxford", "http://www.ox.ac.uk/", "GB",
			domain.ExternalID{Type: domain.ExternalIDISNI, All: []string{"0000 0004 1936 8948"}}),
	}
	rows := []domain.Record{
		csvRow(2, map[string]string{isniAll: "0000000419368948"}),
		csvRow(3, map[string]string{domain.ExternalIDField(domain.ExternalIDGRID, "all"): "0000000419368948"}),
	}
	vc := NewContext(Inputs{Tabular: rows})
	vc.DataSource = dump

	findings := runValidator(t, DuplicateExternalIDsValidator{}, vc)

	require.Len(t, findings, 1)
	assert.Equal(t, isniAll, findings[0].Field)
	assert.Equal(t, "row 2", findings[0].Record)
}

func TestAddressValidator(t *testing.T) {
	geocoder := &fakeGeocoder{places: map[string]domain.Place{
		"2640729": {GeoNamesID: "2640729", City: "Oxford", CountryCode: "GB", CountryName: "United Kingdom"},
	}}
	rows := []domain.Record{
		csvRow(2, map[string]string{domain.FieldGeoNamesID: "2640729", domain.FieldCity: "oxford", domain.FieldCountry: "United Kingdom"}),
		csvRow(3, map[string]string{domain.FieldGeoNamesID: "2640729", domain.FieldCity: "Cambridge"}),
		csvRow(4, map[string]string{domain.FieldGeoNamesID: "1"}),
	}
	vc := NewContext(Inputs{Tabular: rows})
	vc.Geocoder = geocoder

	findings := runValidator(t, AddressValidator{}, vc)

	require.Len(t, findings, 2)
	assert.Equal(t, domain.FieldCity, findings[0].Field)
	assert.Equal(t, "Oxford", findings[0].Column(ColumnExpected))
	assert.Equal(t, domain.StatusAPIError, findings[1].Status)
	assert.Equal(t, "1", findings[1].Value)
}

func TestProductionDuplicatesValidator_PrefersDump(t *testing.T) {
	geocoder := &fakeGeocoder{places: map[string]domain.Place{
		"2640729": {GeoNamesID: "2640729", City: "Oxford", CountryCode: "GB"},
	}}
	rows := []domain.Record{
		csvRow(2, map[string]string{
			domain.FieldNameDisplay: "University of Oxford",
			domain.FieldGeoNamesID:  "2640729",
		}),
	}
	vc := NewContext(Inputs{Tabular: rows})
	vc.Geocoder = geocoder
	vc.Search = stubCorpus{}
	vc.DataSource = []domain.Record{
		dumpRecord("https://ror.org/052gg0110", "University of Oxford", "http://www.ox.ac.uk/", "GB"),
	}

	findings := runValidator(t, ProductionDuplicatesValidator{}, vc)

	require.Len(t, findings, 1)
	assert.Equal(t, "https://ror.org/052gg0110", findings[0].Column(ColumnMatchedID))
	assert.Equal(t, "name_exact", findings[0].Column(ColumnMatchType))
	assert.Equal(t, "GB", findings[0].Column(ColumnCountryCode))
}

func TestProductionDuplicatesValidator_LiveSearch(t *testing.T) {
	geocoder := &fakeGeocoder{places: map[string]domain.Place{
		"2640729": {GeoNamesID: "2640729", CountryCode: "GB"},
	}}
	rows := []domain.Record{
		csvRow(2, map[string]string{
			domain.FieldNameDisplay: "University of Oxfrd",
			domain.FieldGeoNamesID:  "2640729",
		}),
	}
	vc := NewContext(Inputs{Tabular: rows})
	vc.Geocoder = geocoder
	vc.Search = stubCorpus{records: []domain.Record{
		dumpRecord("https://ror.org/052gg0110", "University of Oxford", "http://www.ox.ac.uk/", "GB"),
	}}

	findings := runValidator(t, ProductionDuplicatesValidator{}, vc)

	require.Len(t, findings, 1)
	assert.Equal(t, "name_fuzzy", findings[0].Column(ColumnMatchType))
}

func TestIntegrityValidators(t *testing.T) {
	canonical := []domain.Record{
		domain.Document{
			ID: "https://ror.org/052gg0110",
			Names: []domain.Name{
				{Value: "Example", Types: []string{domain.NameTypeDisplay}},
				{Value: "Old Alias", Types: []string{domain.NameTypeAlias}},
			},
		}.Record(),
	}
	tabular := []domain.Record{
		csvRow(2, map[string]string{
			domain.FieldID:        "https://ror.org/052gg0110",
			domain.FieldNameAlias: "delete==Old Alias",
		}),
		csvRow(3, map[string]string{domain.FieldNameDisplay: "Unknown New Org"}),
	}
	vc := NewContext(Inputs{Tabular: tabular, Canonical: canonical})

	update := runValidator(t, UpdateRecordIntegrityValidator{}, vc)
	require.Len(t, update, 1)
	assert.Equal(t, domain.StatusStillPresent, update[0].Status)

	created := runValidator(t, NewRecordIntegrityValidator{}, vc)
	require.Len(t, created, 1)
	assert.Equal(t, domain.StatusRecordNotFound, created[0].Status)
}
