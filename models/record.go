package models

import "strings"

// Canonical output field names, in export order. Every PropertyRecord carries
// all of these keys; fields that were never found stay empty.
var FieldNames = []string{
	"property_address",
	"owner_name",
	"property_value",
	"assessed_value",
	"market_value",
	"square_footage",
	"property_type",
	"parcel_id",
	"sale_price",
	"sale_date",
	"year_built",
	"lot_size",
	"bedrooms",
	"bathrooms",
	"municipality",
	"zoning",
	"tax_amount",
	"record_url",
}

// FriendlyHeaders maps field names to the column headers used in exports.
var FriendlyHeaders = map[string]string{
	"property_address": "Property Address",
	"owner_name":       "Owner Name",
	"property_value":   "Property Value",
	"assessed_value":   "Assessed Value",
	"market_value":     "Market Value",
	"square_footage":   "Square Footage",
	"property_type":    "Property Type",
	"parcel_id":        "Parcel ID",
	"sale_price":       "Sale Price",
	"sale_date":        "Sale Date",
	"year_built":       "Year Built",
	"lot_size":         "Lot Size",
	"bedrooms":         "Bedrooms",
	"bathrooms":        "Bathrooms",
	"municipality":     "Municipality",
	"zoning":           "Zoning",
	"tax_amount":       "Tax Amount",
	"record_url":       "Record URL",
}

// PropertyRecord holds one extracted property in the canonical schema.
type PropertyRecord struct {
	Fields     map[string]string
	PageNumber int
	// Unparsed lists field names whose raw value could not be normalized
	// and was kept verbatim (currently only dates end up here).
	Unparsed []string
}

// NewPropertyRecord returns a record with every canonical field present and empty.
func NewPropertyRecord() PropertyRecord {
	fields := make(map[string]string, len(FieldNames))
	for _, name := range FieldNames {
		fields[name] = ""
	}
	return PropertyRecord{Fields: fields}
}

// Get returns the value of a canonical field.
func (r PropertyRecord) Get(name string) string {
	return r.Fields[name]
}

// Set assigns a canonical field. Unknown names are ignored so a stale spec
// entry cannot widen the schema.
func (r PropertyRecord) Set(name, value string) {
	if _, ok := r.Fields[name]; ok {
		r.Fields[name] = value
	}
}

// IsValid reports whether the record carries at least one key field.
func (r PropertyRecord) IsValid() bool {
	return r.Get("parcel_id") != "" || r.Get("property_address") != ""
}

// Row returns the field values in canonical schema order.
func (r PropertyRecord) Row() []string {
	row := make([]string, len(FieldNames))
	for i, name := range FieldNames {
		row[i] = r.Fields[name]
	}
	return row
}

// DedupKey returns the identity used for cross-page deduplication: the parcel
// ID when present, otherwise the case-folded, whitespace-collapsed
// address+owner pair.
func (r PropertyRecord) DedupKey() string {
	if pcn := r.Get("parcel_id"); pcn != "" {
		return "pcn|" + foldKey(pcn)
	}
	return "ao|" + foldKey(r.Get("property_address")) + "|" + foldKey(r.Get("owner_name"))
}

func foldKey(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
