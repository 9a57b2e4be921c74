package domain

import (
	"strconv"
	"strings"
)

// Document is a canonical registry record as published in JSON.
type Document struct {
	ID            string         `json:"id"`
	Names         []Name         `json:"names"`
	Links         []Link         `json:"links"`
	ExternalIDs   []ExternalID   `json:"external_ids"`
	Locations     []Location     `json:"locations"`
	Relationships []Relationship `json:"relationships"`
	Status        string         `json:"status"`
	Types         []string       `json:"types"`
	Established   *int           `json:"established"`
	Domains       []string       `json:"domains"`
}

// Link is a typed URL.
type Link struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// ExternalID groups the identifiers an organization holds in one namespace.
type ExternalID struct {
	Type      string   `json:"type"`
	Preferred string   `json:"preferred"`
	All       []string `json:"all"`
}

// Location is a GeoNames place attached to a record.
type Location struct {
	GeoNamesID      int64           `json:"geonames_id"`
	GeoNamesDetails GeoNamesDetails `json:"geonames_details"`
}

// GeoNamesDetails is the denormalized place information stored on a record.
type GeoNamesDetails struct {
	Name        string `json:"name"`
	CountryCode string `json:"country_code"`
	CountryName string `json:"country_name"`
}

// Relationship links a record to another registry record.
type Relationship struct {
	Type  string `json:"type"`
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Record flattens the document into the logical field-path shape.
func (d Document) Record() Record {
	fields := make(map[string][]string)
	add := func(field, value string) {
		if value = strings.TrimSpace(value); value != "" {
			fields[field] = append(fields[field], value)
		}
	}

	add(FieldID, d.ID)
	add(FieldStatus, d.Status)
	for _, t := range d.Types {
		add(FieldTypes, t)
	}
	if d.Established != nil {
		add(FieldEstablished, strconv.Itoa(*d.Established))
	}
	for _, dom := range d.Domains {
		add(FieldDomains, dom)
	}

	names := make([]Name, 0, len(d.Names))
	for _, n := range d.Names {
		types := append([]string(nil), n.Types...)
		if n.HasType(NameTypeDisplay) && !n.HasType(NameTypeLabel) {
			types = append(types, NameTypeLabel)
		}
		for _, t := range types {
			if field, ok := NameFields[t]; ok {
				add(field, n.Value)
			}
		}
		names = append(names, Name{Value: n.Value, Types: types, Lang: n.Lang})
	}

	for _, l := range d.Links {
		add("links.type."+l.Type, l.Value)
	}
	for _, ext := range d.ExternalIDs {
		for _, v := range ext.All {
			add(ExternalIDField(ext.Type, "all"), v)
		}
		add(ExternalIDField(ext.Type, "preferred"), ext.Preferred)
	}
	for _, loc := range d.Locations {
		if loc.GeoNamesID != 0 {
			add(FieldGeoNamesID, strconv.FormatInt(loc.GeoNamesID, 10))
		}
		add(FieldCity, loc.GeoNamesDetails.Name)
		add(FieldCountry, loc.GeoNamesDetails.CountryName)
		add(FieldCountryCode, strings.ToUpper(loc.GeoNamesDetails.CountryCode))
	}

	return Record{
		ID:     d.ID,
		Format: FormatCanonical,
		Fields: fields,
		Names:  names,
	}
}
