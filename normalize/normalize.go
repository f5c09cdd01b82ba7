// Package normalize coerces raw text tokens pulled from result pages into
// canonical values. Every function is total: unparsable input degrades to the
// cleaned original string instead of failing, so a bad cell never blocks
// record creation.
package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	spaceRegex    = regexp.MustCompile(`\s+`)
	edgePunctRe   = regexp.MustCompile(`^[.:\-\s]+|[.:\-\s]+$`)
	currencyRegex = regexp.MustCompile(`\$?\s*([0-9]{1,3}(?:,[0-9]{3})+|[0-9]+)(\.[0-9]+)?`)
	sqftRegex     = regexp.MustCompile(`(?i)([0-9]{1,7}(?:,[0-9]{3})*(?:\.[0-9]+)?)\s*(?:sq\.?\s*ft\.?|sqft|square\s*feet)`)
	acresRegex    = regexp.MustCompile(`(?i)([0-9]+(?:\.[0-9]+)?)\s*(?:acres?|ac\b)`)
	numberRegex   = regexp.MustCompile(`[0-9]{1,7}(?:,[0-9]{3})*(?:\.[0-9]+)?`)
	naRegex       = regexp.MustCompile(`(?i)^(?:\$?\s*n/?a|none|null|--?)$`)
)

// Accepted input date layouts, tried in order.
var dateLayouts = []string{
	"1/2/2006",
	"01/02/2006",
	"2006-01-02",
	"Jan 2, 2006",
	"January 2, 2006",
	"1-2-2006",
	"2006/01/02",
}

// Clean collapses whitespace and strips the stray separator punctuation the
// portal leaves on cell edges. Used for free-text fields (address, owner,
// municipality, and the like).
func Clean(s string) string {
	s = spaceRegex.ReplaceAllString(strings.TrimSpace(s), " ")
	return strings.TrimSpace(edgePunctRe.ReplaceAllString(s, ""))
}

// Currency normalizes a monetary token to a bare decimal string: "$450,000"
// becomes "450000". Empty and N/A-style markers normalize to "".
func Currency(s string) (string, bool) {
	s = Clean(s)
	if s == "" || naRegex.MatchString(s) {
		return "", true
	}
	m := currencyRegex.FindStringSubmatch(s)
	if m == nil {
		return s, false
	}
	value := strings.ReplaceAll(m[1], ",", "") + m[2]
	// Drop a trailing ".00" so equal amounts compare equal across formats.
	value = strings.TrimSuffix(value, ".00")
	return value, true
}

// Date normalizes to YYYY-MM-DD. Unparsable dates are returned cleaned but
// otherwise verbatim, with ok=false so the caller can flag them.
func Date(s string) (string, bool) {
	s = Clean(s)
	if s == "" || naRegex.MatchString(s) {
		return "", true
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02"), true
		}
	}
	return s, false
}

// Area normalizes a size token to "<number> <unit>", inferring the unit from
// trailing label text: "1,850 Sq Ft" -> "1850 sqft", "0.25 acres" ->
// "0.25 acres". A bare number is assumed to be square feet.
func Area(s string) (string, bool) {
	s = Clean(s)
	if s == "" || naRegex.MatchString(s) {
		return "", true
	}
	if m := sqftRegex.FindStringSubmatch(s); m != nil {
		return strings.ReplaceAll(m[1], ",", "") + " sqft", true
	}
	if m := acresRegex.FindStringSubmatch(s); m != nil {
		return m[1] + " acres", true
	}
	if m := numberRegex.FindString(s); m != "" && m == strings.TrimSpace(s) {
		return strings.ReplaceAll(m, ",", "") + " sqft", true
	}
	return s, false
}

// Count normalizes integer-like fields (bedrooms, year built). Fractional
// values survive, so "2.5" bathrooms stays "2.5".
func Count(s string) (string, bool) {
	s = Clean(s)
	if s == "" || naRegex.MatchString(s) {
		return "", true
	}
	m := numberRegex.FindString(s)
	if m == "" {
		return s, false
	}
	m = strings.ReplaceAll(m, ",", "")
	if f, err := strconv.ParseFloat(m, 64); err == nil {
		if f == float64(int64(f)) {
			return strconv.FormatInt(int64(f), 10), true
		}
		return strconv.FormatFloat(f, 'f', -1, 64), true
	}
	return s, false
}

// Text is the identity normalizer for fields that stay free text.
func Text(s string) (string, bool) {
	return Clean(s), true
}

// FormatNumber renders a float the way Count does, dropping a useless
// fractional part.
func FormatNumber(f float64) string {
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return fmt.Sprintf("%g", f)
}
