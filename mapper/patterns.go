package mapper

import (
	"regexp"

	"github.com/xthemadgenius/rain-papa/normalize"
)

// Fallback patterns for records whose pages never spell the labels out.
// These only fill fields that are still empty after label mapping.
var (
	pcnRegex = regexp.MustCompile(`\b[0-9]{2}-[0-9]{4}-[0-9]{3}-[0-9]{4}\b`)

	pcnLabelRegex = regexp.MustCompile(`(?i)(?:pcn|parcel)[:\s#]*([A-Z0-9][A-Z0-9\-]{4,})`)

	addressRegex = regexp.MustCompile(`(?i)\b\d+\s+[A-Z0-9][A-Z0-9 ]*?\s(?:ST|AVE|RD|DR|LN|CT|PL|WAY|BLVD|CIR|TER|HWY|STREET|AVENUE|ROAD|DRIVE|LANE|COURT|PLACE|BOULEVARD|CIRCLE|TERRACE|HIGHWAY)\b`)

	justValueRegex = regexp.MustCompile(`(?i)(?:just|market|total|appraised)\s+value[:\s]*\$?([0-9][0-9,]*)`)

	usDateRegex = regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{4}\b`)
)

// sweepPatterns runs the regex fallbacks over the whole fragment text.
func (m *Mapper) sweepPatterns(text string, set func(name, raw string, norm func(string) (string, bool))) {
	if text == "" {
		return
	}

	if hit := pcnRegex.FindString(text); hit != "" {
		set("parcel_id", hit, normalize.Text)
	} else if sub := pcnLabelRegex.FindStringSubmatch(text); sub != nil {
		set("parcel_id", sub[1], normalize.Text)
	}

	if hit := addressRegex.FindString(text); hit != "" {
		set("property_address", hit, normalize.Text)
	}

	if sub := justValueRegex.FindStringSubmatch(text); sub != nil {
		set("property_value", sub[1], normalize.Currency)
	}

	if hit := usDateRegex.FindString(text); hit != "" {
		set("sale_date", hit, normalize.Date)
	}
}
