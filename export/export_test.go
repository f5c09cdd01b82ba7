package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"testing"

	"github.com/xthemadgenius/rain-papa/models"
)

func sampleRecord(address, parcel string) models.PropertyRecord {
	rec := models.NewPropertyRecord()
	rec.Set("property_address", address)
	rec.Set("parcel_id", parcel)
	rec.Set("property_value", "450000")
	return rec
}

func TestWriteCSV(t *testing.T) {
	dir := t.TempDir()
	records := []models.PropertyRecord{
		sampleRecord("123 MAIN ST", "00-11-22"),
		sampleRecord("456 OAK AVE", "00-11-23"),
	}

	path, err := WriteCSV(records, dir)
	if err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading csv: %v", err)
	}
	if !bytes.HasPrefix(data, utf8BOM) {
		t.Error("csv file missing UTF-8 BOM")
	}

	rows, err := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM))).ReadAll()
	if err != nil {
		t.Fatalf("parsing csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("csv has %d rows, want header + 2", len(rows))
	}
	if rows[0][0] != "Property Address" {
		t.Errorf("header[0] = %q, want friendly name", rows[0][0])
	}
	if len(rows[1]) != len(models.FieldNames) {
		t.Errorf("row width = %d, want %d", len(rows[1]), len(models.FieldNames))
	}
	if rows[2][0] != "456 OAK AVE" {
		t.Errorf("rows out of order: got %q", rows[2][0])
	}
}

func TestWriteJSONCarriesCounters(t *testing.T) {
	dir := t.TempDir()
	report := &models.SessionReport{
		PagesVisited: 3,
		ValidRecords: 1,
		Aborted:      true,
		PageErrors:   []string{"page 4: connection reset"},
		Records:      []models.PropertyRecord{sampleRecord("123 MAIN ST", "00-11-22")},
	}

	path, err := WriteJSON(report, dir)
	if err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading json: %v", err)
	}

	var doc jsonDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("parsing json: %v", err)
	}
	if doc.PagesVisited != 3 || !doc.Aborted || len(doc.PageErrors) != 1 {
		t.Errorf("counters lost: %+v", doc)
	}
	if len(doc.Records) != 1 || doc.Records[0]["parcel_id"] != "00-11-22" {
		t.Errorf("records lost: %+v", doc.Records)
	}
}

func TestSanitizeSheetName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Palm Beach 2026-08-30", "Palm Beach 2026-08-30"},
		{"run/08[30]?*", "run_08_30___"},
		{"   ", "Sheet1"},
	}
	for _, tt := range tests {
		if got := sanitizeSheetName(tt.in); got != tt.want {
			t.Errorf("sanitizeSheetName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExtractSpreadsheetID(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://docs.google.com/spreadsheets/d/abc123XYZ/edit", "abc123XYZ"},
		{"https://docs.google.com/spreadsheets/d/abc123XYZ/edit?usp=sharing", "abc123XYZ"},
		{"https://docs.google.com/spreadsheets/d/abc123XYZ?gid=0", "abc123XYZ"},
		{"not a sheets url", ""},
	}
	for _, tt := range tests {
		if got := ExtractSpreadsheetID(tt.url); got != tt.want {
			t.Errorf("ExtractSpreadsheetID(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}
