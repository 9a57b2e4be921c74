package domain

import (
	"slices"
	"strings"
)

// SchemaVersion is the version of the record schema the field vocabulary follows.
const SchemaVersion = "2"

// Field paths of the v2 bulk vocabulary.
const (
	FieldID          = "id"
	FieldIssueURL    = "html_url"
	FieldDomains     = "domains"
	FieldEstablished = "established"
	FieldStatus      = "status"
	FieldTypes       = "types"
	FieldWebsite     = "links.type.website"
	FieldWikipedia   = "links.type.wikipedia"
	FieldGeoNamesID  = "locations.geonames_id"
	FieldCity        = "city"
	FieldCountry     = "country"
	FieldCountryCode = "locations.geonames_details.country_code"
	FieldNameDisplay = "names.types.ror_display"
	FieldNameAlias   = "names.types.alias"
	FieldNameLabel   = "names.types.label"
	FieldNameAcronym = "names.types.acronym"
)

// Name roles.
const (
	NameTypeDisplay = "ror_display"
	NameTypeAlias   = "alias"
	NameTypeLabel   = "label"
	NameTypeAcronym = "acronym"
)

// External identifier types.
const (
	ExternalIDFundRef  = "fundref"
	ExternalIDGRID     = "grid"
	ExternalIDISNI     = "isni"
	ExternalIDWikidata = "wikidata"
)

// ExternalIDTypes is the closed set of external identifier namespaces.
var ExternalIDTypes = []string{ExternalIDFundRef, ExternalIDGRID, ExternalIDISNI, ExternalIDWikidata}

// NameFields maps each name role to its field path.
var NameFields = map[string]string{
	NameTypeDisplay: FieldNameDisplay,
	NameTypeAlias:   FieldNameAlias,
	NameTypeLabel:   FieldNameLabel,
	NameTypeAcronym: FieldNameAcronym,
}

// ExternalIDField returns the field path for an identifier type and part
// ("all" or "preferred").
func ExternalIDField(idType, part string) string {
	return "external_ids.type." + idType + "." + part
}

// ValueKind describes how values of a field are compared and validated.
type ValueKind int

const (
	// KindText is free text compared after whitespace normalization.
	KindText ValueKind = iota
	// KindName is an organization name that may carry a *lang suffix.
	KindName
	// KindURL is a link compared after percent-decoding.
	KindURL
	// KindInteger compares numerically.
	KindInteger
	// KindEnum compares case-insensitively against a closed vocabulary.
	KindEnum
	// KindIdentifier is an opaque identifier compared verbatim.
	KindIdentifier
)

// FieldSpec describes one path of the field vocabulary.
type FieldSpec struct {
	Path string
	Kind ValueKind
	// Multi fields hold several values separated by ';'.
	Multi bool
	// Required fields may not be cleared by an update.
	Required bool
	// Meta fields identify or annotate a row and are never edited.
	Meta    bool
	Actions ActionSet
}

var (
	multiActions  = NewActionSet(ActionAdd, ActionDelete, ActionReplace)
	singleActions = NewActionSet(ActionDelete, ActionReplace)
	replaceOnly   = NewActionSet(ActionReplace)
)

var fieldTable = buildFieldTable()

func buildFieldTable() map[string]FieldSpec {
	specs := []FieldSpec{
		{Path: FieldID, Kind: KindIdentifier, Meta: true},
		{Path: FieldIssueURL, Kind: KindURL, Meta: true},
		{Path: FieldCity, Kind: KindText, Meta: true},
		{Path: FieldCountry, Kind: KindText, Meta: true},
		{Path: FieldCountryCode, Kind: KindEnum, Meta: true},
		{Path: FieldDomains, Kind: KindText, Multi: true, Actions: multiActions},
		{Path: FieldEstablished, Kind: KindInteger, Actions: singleActions},
		{Path: FieldStatus, Kind: KindEnum, Required: true, Actions: replaceOnly},
		{Path: FieldTypes, Kind: KindEnum, Multi: true, Required: true, Actions: multiActions},
		{Path: FieldWebsite, Kind: KindURL, Actions: singleActions},
		{Path: FieldWikipedia, Kind: KindURL, Actions: singleActions},
		{Path: FieldGeoNamesID, Kind: KindInteger, Multi: true, Required: true, Actions: multiActions},
		{Path: FieldNameDisplay, Kind: KindName, Required: true, Actions: replaceOnly},
		{Path: FieldNameAlias, Kind: KindName, Multi: true, Actions: multiActions},
		{Path: FieldNameLabel, Kind: KindName, Multi: true, Actions: multiActions},
		{Path: FieldNameAcronym, Kind: KindName, Multi: true, Actions: multiActions},
	}
	for _, t := range ExternalIDTypes {
		specs = append(specs,
			FieldSpec{Path: ExternalIDField(t, "all"), Kind: KindIdentifier, Multi: true, Actions: multiActions},
			FieldSpec{Path: ExternalIDField(t, "preferred"), Kind: KindIdentifier, Actions: singleActions},
		)
	}

	table := make(map[string]FieldSpec, len(specs))
	for _, s := range specs {
		table[s.Path] = s
	}
	return table
}

// LookupField returns the FieldSpec for a path.
func LookupField(path string) (FieldSpec, bool) {
	spec, ok := fieldTable[strings.TrimSpace(path)]
	return spec, ok
}

// Fields returns every field spec sorted by path.
func Fields() []FieldSpec {
	out := make([]FieldSpec, 0, len(fieldTable))
	for _, s := range fieldTable {
		out = append(out, s)
	}
	slices.SortFunc(out, func(a, b FieldSpec) int { return strings.Compare(a.Path, b.Path) })
	return out
}

// IsNameField reports whether path holds organization names.
func IsNameField(path string) bool {
	spec, ok := LookupField(path)
	return ok && spec.Kind == KindName
}

// ExternalIDType returns the identifier type encoded in an external_ids path.
func ExternalIDType(path string) (string, bool) {
	rest, ok := strings.CutPrefix(path, "external_ids.type.")
	if !ok {
		return "", false
	}
	idType, _, ok := strings.Cut(rest, ".")
	return idType, ok && slices.Contains(ExternalIDTypes, idType)
}
