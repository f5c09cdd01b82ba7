package models

import "github.com/xthemadgenius/rain-papa/normalize"

// FieldSpec describes one canonical output field: the labels that identify it
// in markup and the normalizer applied to its raw value. The spec set is the
// whole field-recognition configuration; adding a field means appending an
// entry here, nothing else.
type FieldSpec struct {
	Name   string
	Labels []string
	// Normalize coerces the raw value; ok=false means the value was kept
	// verbatim and should be flagged as unparsed.
	Normalize func(string) (string, bool)
}

// DefaultFieldSpecs is the label table for county appraiser result pages.
// Label lists run from most to least specific; the mapper breaks overlaps by
// longest literal match, so short generic labels ("name", "type") are safe to
// keep as last resorts.
func DefaultFieldSpecs() []FieldSpec {
	return []FieldSpec{
		{
			Name:      "property_address",
			Labels:    []string{"property address", "site address", "property location", "situs address", "location", "address", "situs"},
			Normalize: normalize.Text,
		},
		{
			Name:      "owner_name",
			Labels:    []string{"owner name", "taxpayer name", "owner", "taxpayer", "name"},
			Normalize: normalize.Text,
		},
		{
			Name:      "property_value",
			Labels:    []string{"total market value", "just value", "total value", "appraised value", "property value", "value"},
			Normalize: normalize.Currency,
		},
		{
			Name:      "assessed_value",
			Labels:    []string{"assessed value", "assessment", "assessed"},
			Normalize: normalize.Currency,
		},
		{
			Name:      "market_value",
			Labels:    []string{"market value", "fair market value", "market"},
			Normalize: normalize.Currency,
		},
		{
			Name:      "square_footage",
			Labels:    []string{"square footage", "building area", "living area", "bldg sqft", "bldg sq ft", "square feet", "sq ft", "sqft"},
			Normalize: normalize.Area,
		},
		{
			Name:      "property_type",
			Labels:    []string{"property type", "property use", "land use", "use code", "classification", "type", "use"},
			Normalize: normalize.Text,
		},
		{
			Name:      "parcel_id",
			Labels:    []string{"parcel control number", "parcel number", "parcel id", "folio number", "account number", "parcel", "folio", "pcn", "account"},
			Normalize: normalize.Text,
		},
		{
			Name:      "sale_price",
			Labels:    []string{"last sale price", "sale price", "sold price", "sale amount", "sale"},
			Normalize: normalize.Currency,
		},
		{
			Name:      "sale_date",
			Labels:    []string{"last sale date", "sale date", "sold date", "date sold"},
			Normalize: normalize.Date,
		},
		{
			Name:      "year_built",
			Labels:    []string{"year built", "year constructed", "built"},
			Normalize: normalize.Count,
		},
		{
			Name:      "lot_size",
			Labels:    []string{"lot size", "land area", "lot sqft", "lot area", "acreage", "acres", "lot"},
			Normalize: normalize.Area,
		},
		{
			Name:      "bedrooms",
			Labels:    []string{"bedrooms", "bedroom", "beds", "bed", "br"},
			Normalize: normalize.Count,
		},
		{
			Name:      "bathrooms",
			Labels:    []string{"bathrooms", "bathroom", "full baths", "baths", "bath", "ba"},
			Normalize: normalize.Count,
		},
		{
			Name:      "municipality",
			Labels:    []string{"municipality", "jurisdiction", "city"},
			Normalize: normalize.Text,
		},
		{
			Name:      "zoning",
			Labels:    []string{"zoning", "zone"},
			Normalize: normalize.Text,
		},
		{
			Name:      "tax_amount",
			Labels:    []string{"tax amount", "annual tax", "total tax", "taxes", "tax"},
			Normalize: normalize.Currency,
		},
		// record_url is filled from fragment links, never from labels, but it
		// stays in the spec set so the schema and the spec table agree.
		{
			Name:      "record_url",
			Labels:    nil,
			Normalize: normalize.Text,
		},
	}
}
