// Package mapper turns raw markup fragments into canonical property records
// using the FieldSpec label table. The same label matcher serves table
// headers and inline text, so mapping behaves identically no matter which
// layout strategy carved the fragment out.
package mapper

import (
	"errors"
	"log"
	"regexp"
	"sort"
	"strings"

	"github.com/xthemadgenius/rain-papa/models"
)

// Mode selects how tolerant label matching is.
type Mode int

const (
	// ModeStrict requires the label verbatim (word-bounded, optional colon).
	ModeStrict Mode = iota
	// ModeFuzzy also tolerates punctuation and squeezed-together label
	// tokens: "Sq. Ft.", "SqFt" and "Sq Ft" all hit the same label.
	ModeFuzzy
)

// ParseMode reads a label_match_mode config value. Unknown values fall back
// to fuzzy, which is what the county portals need in practice.
func ParseMode(s string) Mode {
	if strings.EqualFold(strings.TrimSpace(s), "strict") {
		return ModeStrict
	}
	return ModeFuzzy
}

// Rejection reasons. Callers count these per page; they never abort a page.
var (
	ErrEmptyFragment = errors.New("fragment has no recognizable fields")
	ErrNoKeyField    = errors.New("fragment has neither parcel id nor property address")
)

// valueSpanLimit caps how much text after a label is taken as its value when
// no other label bounds it.
const valueSpanLimit = 120

type labelPattern struct {
	literal string
	re      *regexp.Regexp
}

type fieldMatcher struct {
	spec   models.FieldSpec
	labels []labelPattern
}

// Mapper maps RawFragments to PropertyRecords. It is stateless after
// construction; mapping the same fragment twice yields identical output.
type Mapper struct {
	matchers []fieldMatcher
	debug    bool
}

// New compiles the label table for the given matching mode.
func New(specs []models.FieldSpec, mode Mode, debug bool) *Mapper {
	m := &Mapper{debug: debug}
	for _, spec := range specs {
		fm := fieldMatcher{spec: spec}
		for _, label := range spec.Labels {
			fm.labels = append(fm.labels, labelPattern{
				literal: label,
				re:      compileLabel(label, mode),
			})
		}
		m.matchers = append(m.matchers, fm)
	}
	return m
}

// compileLabel builds the recognition regex for one candidate label.
func compileLabel(label string, mode Mode) *regexp.Regexp {
	tokens := strings.Fields(strings.ToLower(label))
	quoted := make([]string, len(tokens))
	for i, tok := range tokens {
		quoted[i] = regexp.QuoteMeta(tok)
	}
	var body string
	if mode == ModeStrict {
		body = strings.Join(quoted, `\s+`)
	} else {
		body = strings.Join(quoted, `[\s./\-]*`)
	}
	// Word-bounded so "ba" does not fire inside "bathrooms"; trailing
	// separator is optional either way.
	return regexp.MustCompile(`(?i)\b` + body + `\.?\b[\s]*[:\-]?`)
}

// Map converts one fragment into a record, or reports why it was rejected.
func (m *Mapper) Map(f models.RawFragment) (models.PropertyRecord, error) {
	if f.IsEmpty() {
		return models.PropertyRecord{}, ErrEmptyFragment
	}

	rec := models.NewPropertyRecord()
	var unparsed []string
	recognized := 0

	set := func(name, raw string, norm func(string) (string, bool)) {
		if strings.TrimSpace(raw) == "" || rec.Get(name) != "" {
			return
		}
		value, ok := norm(raw)
		if value == "" && ok {
			// Normalized-away marker (N/A and friends): the field was
			// recognized even though the value is null.
			recognized++
			return
		}
		if value == "" {
			return
		}
		rec.Set(name, value)
		recognized++
		if !ok {
			unparsed = append(unparsed, name)
		}
	}

	// Tabular fragments: map header cells to fields with the same label
	// matcher used for inline text.
	if len(f.Headers) > 0 {
		for i, header := range f.Headers {
			if i >= len(f.Cells) {
				break
			}
			spec, ok := m.matchHeader(header)
			if !ok {
				continue
			}
			set(spec.Name, f.Cells[i], spec.Normalize)
			if m.debug {
				log.Printf("mapper: header %q -> %s\n", header, spec.Name)
			}
		}
	}

	// Inline pass over the fragment text fills whatever the headers (if any)
	// did not cover.
	for _, hit := range m.scanText(f.Text) {
		set(hit.spec.Name, hit.value, hit.spec.Normalize)
		if m.debug {
			log.Printf("mapper: label %q -> %s = %q\n", hit.literal, hit.spec.Name, hit.value)
		}
	}

	// Last-resort regex sweep for key fields the labels missed.
	m.sweepPatterns(f.Text, set)

	if recognized == 0 {
		return models.PropertyRecord{}, ErrEmptyFragment
	}
	if !rec.IsValid() {
		return models.PropertyRecord{}, ErrNoKeyField
	}

	if f.URL != "" {
		rec.Set("record_url", f.URL)
	}
	rec.Unparsed = unparsed
	return rec, nil
}

// matchHeader returns the spec whose label best matches a column header,
// preferring the longest literal when several specs fire.
func (m *Mapper) matchHeader(header string) (models.FieldSpec, bool) {
	var best models.FieldSpec
	bestLen := -1
	for _, fm := range m.matchers {
		for _, lp := range fm.labels {
			if lp.re.MatchString(header) && len(lp.literal) > bestLen {
				best = fm.spec
				bestLen = len(lp.literal)
			}
		}
	}
	return best, bestLen >= 0
}

type textHit struct {
	spec    models.FieldSpec
	literal string
	value   string
}

type rawMatch struct {
	spec       models.FieldSpec
	literal    string
	start, end int
}

// scanText locates every candidate label occurrence in the fragment text,
// resolves overlaps in favor of the longer literal, and carves each field's
// value as the text up to the next label, the end of the line, or the span
// limit, whichever comes first.
func (m *Mapper) scanText(text string) []textHit {
	if text == "" {
		return nil
	}

	var matches []rawMatch
	for _, fm := range m.matchers {
		for _, lp := range fm.labels {
			for _, loc := range lp.re.FindAllStringIndex(text, -1) {
				matches = append(matches, rawMatch{
					spec:    fm.spec,
					literal: lp.literal,
					start:   loc[0],
					end:     loc[1],
				})
			}
		}
	}
	if len(matches) == 0 {
		return nil
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].start != matches[j].start {
			return matches[i].start < matches[j].start
		}
		return len(matches[i].literal) > len(matches[j].literal)
	})

	// Overlapping spans: most-specific (longest literal) match wins.
	var kept []rawMatch
	for _, mt := range matches {
		if len(kept) > 0 {
			last := &kept[len(kept)-1]
			if mt.start < last.end {
				if len(mt.literal) > len(last.literal) {
					*last = mt
				}
				continue
			}
		}
		kept = append(kept, mt)
	}

	var hits []textHit
	for i, mt := range kept {
		end := len(text)
		if i+1 < len(kept) && kept[i+1].start < end {
			end = kept[i+1].start
		}
		if nl := strings.IndexByte(text[mt.end:], '\n'); nl >= 0 && mt.end+nl < end {
			end = mt.end + nl
		}
		if end > mt.end+valueSpanLimit {
			end = mt.end + valueSpanLimit
		}
		value := strings.TrimSpace(text[mt.end:end])
		if value == "" {
			continue
		}
		hits = append(hits, textHit{spec: mt.spec, literal: mt.literal, value: value})
	}
	return hits
}
