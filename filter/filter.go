package filter

import (
	"strconv"
	"strings"

	"github.com/xthemadgenius/rain-papa/config"
	"github.com/xthemadgenius/rain-papa/models"
)

// Filter applies filter criteria to extracted property records
type Filter struct {
	cfg *config.Config
}

// NewFilter creates a new Filter instance
func NewFilter(cfg *config.Config) *Filter {
	return &Filter{
		cfg: cfg,
	}
}

// ApplyFilters filters records based on the configuration
func (f *Filter) ApplyFilters(records []models.PropertyRecord) []models.PropertyRecord {
	var filtered []models.PropertyRecord

	for _, rec := range records {
		if f.matchesFilters(rec) {
			filtered = append(filtered, rec)
		}
	}

	return filtered
}

// matchesFilters checks if a record matches all filter criteria
func (f *Filter) matchesFilters(rec models.PropertyRecord) bool {
	// Value range - only filter if a value was successfully extracted.
	// A missing or unparsable value never disqualifies a record.
	if value, ok := recordValue(rec); ok {
		if f.cfg.Filters.MinPropertyValue > 0 && value < f.cfg.Filters.MinPropertyValue {
			return false
		}
		if f.cfg.Filters.MaxPropertyValue > 0 && value > f.cfg.Filters.MaxPropertyValue {
			return false
		}
	}

	if len(f.cfg.Filters.Municipalities) > 0 {
		if m := rec.Get("municipality"); m != "" && !containsFold(f.cfg.Filters.Municipalities, m) {
			return false
		}
	}

	if len(f.cfg.Filters.PropertyTypes) > 0 {
		if p := rec.Get("property_type"); p != "" && !containsFold(f.cfg.Filters.PropertyTypes, p) {
			return false
		}
	}

	return true
}

// recordValue returns the best available valuation for range filtering,
// preferring the generic property value over the assessment-specific ones.
func recordValue(rec models.PropertyRecord) (float64, bool) {
	for _, field := range []string{"property_value", "market_value", "assessed_value"} {
		raw := rec.Get(field)
		if raw == "" {
			continue
		}
		if v, err := strconv.ParseFloat(raw, 64); err == nil && v > 0 {
			return v, true
		}
	}
	return 0, false
}

func containsFold(haystack []string, needle string) bool {
	for _, s := range haystack {
		if strings.EqualFold(strings.TrimSpace(s), strings.TrimSpace(needle)) {
			return true
		}
	}
	return false
}
