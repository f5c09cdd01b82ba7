package filter

import (
	"testing"

	"github.com/xthemadgenius/rain-papa/config"
	"github.com/xthemadgenius/rain-papa/models"
)

func record(fields map[string]string) models.PropertyRecord {
	rec := models.NewPropertyRecord()
	for k, v := range fields {
		rec.Set(k, v)
	}
	return rec
}

func TestApplyFiltersValueRange(t *testing.T) {
	cfg := config.GetDefaultConfig()
	cfg.Filters.MinPropertyValue = 100000
	cfg.Filters.MaxPropertyValue = 500000

	records := []models.PropertyRecord{
		record(map[string]string{"property_address": "1 LOW ST", "property_value": "50000"}),
		record(map[string]string{"property_address": "2 MID ST", "property_value": "250000"}),
		record(map[string]string{"property_address": "3 HIGH ST", "property_value": "900000"}),
		// No value extracted: must pass through untouched.
		record(map[string]string{"property_address": "4 UNKNOWN ST"}),
	}

	got := NewFilter(cfg).ApplyFilters(records)
	if len(got) != 2 {
		t.Fatalf("ApplyFilters() kept %d records, want 2", len(got))
	}
	if got[0].Get("property_address") != "2 MID ST" || got[1].Get("property_address") != "4 UNKNOWN ST" {
		t.Errorf("kept wrong records: %q, %q",
			got[0].Get("property_address"), got[1].Get("property_address"))
	}
}

func TestApplyFiltersMarketValueFallback(t *testing.T) {
	cfg := config.GetDefaultConfig()
	cfg.Filters.MinPropertyValue = 100000

	records := []models.PropertyRecord{
		record(map[string]string{"property_address": "1 MAIN ST", "market_value": "80000"}),
		record(map[string]string{"property_address": "2 MAIN ST", "market_value": "150000"}),
	}

	got := NewFilter(cfg).ApplyFilters(records)
	if len(got) != 1 || got[0].Get("property_address") != "2 MAIN ST" {
		t.Fatalf("ApplyFilters() = %d records, want only 2 MAIN ST", len(got))
	}
}

func TestApplyFiltersMunicipality(t *testing.T) {
	cfg := config.GetDefaultConfig()
	cfg.Filters.Municipalities = []string{"West Palm Beach", "Boca Raton"}

	records := []models.PropertyRecord{
		record(map[string]string{"property_address": "1 A ST", "municipality": "WEST PALM BEACH"}),
		record(map[string]string{"property_address": "2 B ST", "municipality": "Jupiter"}),
		// Unknown municipality passes through.
		record(map[string]string{"property_address": "3 C ST"}),
	}

	got := NewFilter(cfg).ApplyFilters(records)
	if len(got) != 2 {
		t.Fatalf("ApplyFilters() kept %d records, want 2", len(got))
	}
}

func TestApplyFiltersNoCriteria(t *testing.T) {
	cfg := config.GetDefaultConfig()
	records := []models.PropertyRecord{
		record(map[string]string{"property_address": "1 A ST"}),
		record(map[string]string{"property_address": "2 B ST", "property_value": "1"}),
	}

	if got := NewFilter(cfg).ApplyFilters(records); len(got) != 2 {
		t.Fatalf("ApplyFilters() with no criteria kept %d records, want 2", len(got))
	}
}
