package mapper

import (
	"errors"
	"reflect"
	"testing"

	"github.com/xthemadgenius/rain-papa/models"
)

func newTestMapper(t *testing.T) *Mapper {
	t.Helper()
	return New(models.DefaultFieldSpecs(), ModeFuzzy, false)
}

func TestMapInlineLabels(t *testing.T) {
	m := newTestMapper(t)

	f := models.RawFragment{
		Text: "Owner Name: JANE DOE\n" +
			"Property Address: 123 MAIN ST\n" +
			"Parcel Number: 00-4241-003-0120\n" +
			"Just Value: $450,000\n" +
			"Bldg SqFt: 1,850\n" +
			"Sale Date: 3/15/2021",
	}

	rec, err := m.Map(f)
	if err != nil {
		t.Fatalf("Map() error = %v", err)
	}

	want := map[string]string{
		"owner_name":       "JANE DOE",
		"property_address": "123 MAIN ST",
		"parcel_id":        "00-4241-003-0120",
		"property_value":   "450000",
		"square_footage":   "1850 sqft",
		"sale_date":        "2021-03-15",
	}
	for name, expected := range want {
		if got := rec.Get(name); got != expected {
			t.Errorf("field %s = %q, want %q", name, got, expected)
		}
	}
}

func TestMapTabularRow(t *testing.T) {
	m := newTestMapper(t)

	f := models.RawFragment{
		Headers: []string{"Owner Name", "Property Location", "Parcel Control Number", "Total Market Value"},
		Cells:   []string{"JOHN ROE", "456 OAK AVE", "00-4241-003-0121", "$N/A"},
		Text:    "JOHN ROE 456 OAK AVE 00-4241-003-0121 $N/A",
		URL:     "https://papa.example.gov/detail?pcn=00-4241-003-0121",
	}

	rec, err := m.Map(f)
	if err != nil {
		t.Fatalf("Map() error = %v", err)
	}

	if got := rec.Get("owner_name"); got != "JOHN ROE" {
		t.Errorf("owner_name = %q, want JOHN ROE", got)
	}
	if got := rec.Get("property_address"); got != "456 OAK AVE" {
		t.Errorf("property_address = %q, want 456 OAK AVE", got)
	}
	// "N/A" normalizes to null but the record stays valid through parcel_id.
	if got := rec.Get("property_value"); got != "" {
		t.Errorf("property_value = %q, want empty", got)
	}
	if got := rec.Get("parcel_id"); got != "00-4241-003-0121" {
		t.Errorf("parcel_id = %q, want 00-4241-003-0121", got)
	}
	if got := rec.Get("record_url"); got == "" {
		t.Error("record_url not captured from fragment link")
	}
}

func TestMapRejections(t *testing.T) {
	m := newTestMapper(t)

	tests := []struct {
		name    string
		frag    models.RawFragment
		wantErr error
	}{
		{"empty fragment", models.RawFragment{}, ErrEmptyFragment},
		{"no recognizable fields", models.RawFragment{Text: "lorem ipsum dolor sit amet"}, ErrEmptyFragment},
		{"fields but no key", models.RawFragment{Text: "Year Built: 1987\nBedrooms: 3"}, ErrNoKeyField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Map(tt.frag)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Map() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestMapLongestLabelWins(t *testing.T) {
	m := newTestMapper(t)

	// "Lot Size" must map to lot_size, not be eaten by the shorter "lot"
	// candidate, and "Sale Date" must not fall through to "sale".
	f := models.RawFragment{
		Text: "Parcel: 00-4241-003-0122\nLot Size: 7,500 sq ft\nSale Date: 01/02/2020\nSale Price: $310,000",
	}

	rec, err := m.Map(f)
	if err != nil {
		t.Fatalf("Map() error = %v", err)
	}
	if got := rec.Get("lot_size"); got != "7500 sqft" {
		t.Errorf("lot_size = %q, want 7500 sqft", got)
	}
	if got := rec.Get("sale_date"); got != "2020-01-02" {
		t.Errorf("sale_date = %q, want 2020-01-02", got)
	}
	if got := rec.Get("sale_price"); got != "310000" {
		t.Errorf("sale_price = %q, want 310000", got)
	}
}

func TestMapPatternSweep(t *testing.T) {
	m := newTestMapper(t)

	// No labels at all: a bare comma-joined table row. The regex sweep must
	// still recover the key fields.
	f := models.RawFragment{
		Text: "123 MAIN ST, JANE DOE, $450,000, 00-4241-003-0120",
	}

	rec, err := m.Map(f)
	if err != nil {
		t.Fatalf("Map() error = %v", err)
	}
	if got := rec.Get("property_address"); got != "123 MAIN ST" {
		t.Errorf("property_address = %q, want 123 MAIN ST", got)
	}
	if got := rec.Get("parcel_id"); got != "00-4241-003-0120" {
		t.Errorf("parcel_id = %q, want 00-4241-003-0120", got)
	}
}

func TestMapIdempotent(t *testing.T) {
	m := newTestMapper(t)

	f := models.RawFragment{
		Text: "Owner: ACME HOLDINGS LLC\nSitus Address: 789 PALM WAY\nAssessed Value: $1,200,000",
	}

	first, err := m.Map(f)
	if err != nil {
		t.Fatalf("Map() error = %v", err)
	}
	second, err := m.Map(f)
	if err != nil {
		t.Fatalf("Map() second error = %v", err)
	}
	if !reflect.DeepEqual(first.Fields, second.Fields) {
		t.Errorf("mapping is not idempotent:\nfirst:  %v\nsecond: %v", first.Fields, second.Fields)
	}
}

func TestMapStrictMode(t *testing.T) {
	strict := New(models.DefaultFieldSpecs(), ModeStrict, false)

	// The dotted "Sq. Ft." variant only matches in fuzzy mode.
	f := models.RawFragment{
		Text: "Parcel: 00-4241-003-0123\nSq. Ft.: 1,850",
	}

	rec, err := strict.Map(f)
	if err != nil {
		t.Fatalf("Map() error = %v", err)
	}
	if got := rec.Get("square_footage"); got != "" {
		t.Errorf("strict mode matched squeezed label, square_footage = %q", got)
	}

	fuzzy := newTestMapper(t)
	rec, err = fuzzy.Map(f)
	if err != nil {
		t.Fatalf("Map() fuzzy error = %v", err)
	}
	if got := rec.Get("square_footage"); got != "1850 sqft" {
		t.Errorf("fuzzy mode square_footage = %q, want 1850 sqft", got)
	}
}
