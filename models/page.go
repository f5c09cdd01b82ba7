package models

import "strings"

// LayoutKind identifies which extraction strategy applies to a results page.
type LayoutKind int

const (
	LayoutUnknown LayoutKind = iota
	LayoutTabular
	LayoutContainer
	LayoutText
	LayoutNoResults
)

// String returns a human-readable layout name for logs and reports.
func (k LayoutKind) String() string {
	switch k {
	case LayoutTabular:
		return "tabular"
	case LayoutContainer:
		return "container"
	case LayoutText:
		return "text"
	case LayoutNoResults:
		return "no_results"
	default:
		return "unknown"
	}
}

// RawFragment is one candidate record's markup, reduced to what the field
// mapper needs. Tabular rows carry parallel header/cell slices; container and
// text fragments carry only flattened text. URL is the first link found inside
// the fragment, if any.
type RawFragment struct {
	Text    string
	Headers []string
	Cells   []string
	URL     string
}

// IsEmpty reports whether the fragment has no usable content at all.
func (f RawFragment) IsEmpty() bool {
	for _, c := range f.Cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return strings.TrimSpace(f.Text) == ""
}

// PageResult is the outcome of extracting a single results page.
type PageResult struct {
	Page          int
	Layout        LayoutKind
	FragmentCount int
	MappedCount   int
	Records       []PropertyRecord
}

// SessionReport is the terminal artifact of an extraction run: cumulative
// counters plus the deduplicated record sequence in first-seen order.
type SessionReport struct {
	PagesVisited     int
	FragmentsSeen    int
	ValidRecords     int
	DroppedRecords   int
	DuplicateRecords int
	PageErrors       []string
	Aborted          bool
	Records          []PropertyRecord
}
