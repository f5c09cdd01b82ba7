package normalize

import "testing"

func TestCurrency(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		wantOK   bool
	}{
		{"plain dollars", "$450,000", "450000", true},
		{"no symbol", "450000", "450000", true},
		{"no symbol seven digits", "1234567", "1234567", true},
		{"symbol without commas", "$450000", "450000", true},
		{"no commas with cents", "450000.50", "450000.50", true},
		{"cents kept", "$1,234.56", "1234.56", true},
		{"trailing zero cents dropped", "$450,000.00", "450000", true},
		{"n/a marker", "N/A", "", true},
		{"dollar n/a", "$N/A", "", true},
		{"dash marker", "-", "", true},
		{"empty", "", "", true},
		{"garbage", "call for price", "call for price", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Currency(tt.input)
			if got != tt.expected || ok != tt.wantOK {
				t.Errorf("Currency(%q) = (%q, %v), want (%q, %v)", tt.input, got, ok, tt.expected, tt.wantOK)
			}
		})
	}
}

func TestDate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		wantOK   bool
	}{
		{"us slashes", "3/15/2021", "2021-03-15", true},
		{"padded slashes", "03/15/2021", "2021-03-15", true},
		{"iso", "2021-03-15", "2021-03-15", true},
		{"short month name", "Mar 15, 2021", "2021-03-15", true},
		{"long month name", "March 15, 2021", "2021-03-15", true},
		{"dashes", "3-15-2021", "2021-03-15", true},
		{"empty", "", "", true},
		{"unparsable kept", "sometime in 2021", "sometime in 2021", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Date(tt.input)
			if got != tt.expected || ok != tt.wantOK {
				t.Errorf("Date(%q) = (%q, %v), want (%q, %v)", tt.input, got, ok, tt.expected, tt.wantOK)
			}
		})
	}
}

func TestArea(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		wantOK   bool
	}{
		{"sq ft with comma", "1,850 Sq Ft", "1850 sqft", true},
		{"sqft compact", "1850sqft", "1850 sqft", true},
		{"square feet words", "2100 square feet", "2100 sqft", true},
		{"acres", "0.25 acres", "0.25 acres", true},
		{"single acre", "1 acre", "1 acres", true},
		{"ac abbreviation", "2.5 ac", "2.5 acres", true},
		{"bare number assumed sqft", "1850", "1850 sqft", true},
		{"n/a", "N/A", "", true},
		{"unparsable kept", "irregular lot", "irregular lot", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Area(tt.input)
			if got != tt.expected || ok != tt.wantOK {
				t.Errorf("Area(%q) = (%q, %v), want (%q, %v)", tt.input, got, ok, tt.expected, tt.wantOK)
			}
		})
	}
}

func TestCount(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		wantOK   bool
	}{
		{"integer", "3", "3", true},
		{"fractional bathrooms", "2.5", "2.5", true},
		{"year built", "1987", "1987", true},
		{"trailing label", "4 beds", "4", true},
		{"comma thousands", "1,987", "1987", true},
		{"decimal point whole", "3.0", "3", true},
		{"n/a", "n/a", "", true},
		{"no number kept", "unknown", "unknown", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Count(tt.input)
			if got != tt.expected || ok != tt.wantOK {
				t.Errorf("Count(%q) = (%q, %v), want (%q, %v)", tt.input, got, ok, tt.expected, tt.wantOK)
			}
		})
	}
}

func TestClean(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"collapse whitespace", "  123   Main\n St ", "123 Main St"},
		{"strip edge separators", ": Jane Doe -", "Jane Doe"},
		{"already clean", "456 Oak Ave", "456 Oak Ave"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.input); got != tt.expected {
				t.Errorf("Clean(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
