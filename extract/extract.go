// Package extract applies the classifier's verdict to one page: it carves the
// page into raw fragments, maps each through the field mapper, and reports
// how many fragments survived. Extraction is record-isolated; a malformed
// fragment is counted and skipped, never fatal for the page.
package extract

import (
	"log"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/xthemadgenius/rain-papa/classify"
	"github.com/xthemadgenius/rain-papa/mapper"
	"github.com/xthemadgenius/rain-papa/models"
)

// textBlockLimit caps how many free-text blocks one page may yield,
// protecting against pathological pages exploding into thousands of blocks.
const textBlockLimit = 50

var blockSeparatorRegex = regexp.MustCompile(`\n\s*\n|_{3,}|-{3,}|={3,}|(?i)(?:property|record)\s*#`)

// Page extracts all records from one classified page.
func Page(verdict classify.Verdict, m *mapper.Mapper, pageNum int, debug bool) models.PageResult {
	result := models.PageResult{Page: pageNum, Layout: verdict.Kind}

	var fragments []models.RawFragment
	switch verdict.Kind {
	case models.LayoutTabular:
		fragments = tableFragments(verdict.Table)
	case models.LayoutContainer:
		fragments = containerFragments(verdict.Containers)
	case models.LayoutText:
		fragments = textFragments(verdict.Text, m)
	case models.LayoutNoResults:
		return result
	}

	result.FragmentCount = len(fragments)
	for i, frag := range fragments {
		rec, err := m.Map(frag)
		if err != nil {
			if debug {
				log.Printf("extract: page %d fragment %d rejected: %v\n", pageNum, i+1, err)
			}
			continue
		}
		rec.PageNumber = pageNum
		result.Records = append(result.Records, rec)
		result.MappedCount++
	}

	return result
}

// tableFragments turns each data row into a fragment carrying the header
// cells alongside its own, so the mapper can do positional column mapping.
func tableFragments(table *goquery.Selection) []models.RawFragment {
	rows := table.Find("tr")
	if rows.Length() < 2 {
		return nil
	}

	headerRow := rows.First()
	headers := cellTexts(headerRow, "th")
	if len(headers) == 0 {
		// First row doubles as an implicit header when the table has no th
		// cells; it is still skipped as a data row.
		headers = cellTexts(headerRow, "td")
	}

	var fragments []models.RawFragment
	rows.Slice(1, rows.Length()).Each(func(_ int, row *goquery.Selection) {
		cells := cellTexts(row, "td")
		if len(cells) == 0 {
			return
		}
		fragments = append(fragments, models.RawFragment{
			Text:    rowText(row),
			Headers: headers,
			Cells:   cells,
			URL:     firstLink(row),
		})
	})
	return fragments
}

func containerFragments(containers []*goquery.Selection) []models.RawFragment {
	fragments := make([]models.RawFragment, 0, len(containers))
	for _, el := range containers {
		fragments = append(fragments, models.RawFragment{
			Text: blockText(el),
			URL:  firstLink(el),
		})
	}
	return fragments
}

// textFragments splits the page text into candidate blocks on blank lines
// and separator runs, keeping only blocks that look like property records.
func textFragments(text string, m *mapper.Mapper) []models.RawFragment {
	blocks := blockSeparatorRegex.Split(text, -1)

	var fragments []models.RawFragment
	for _, block := range blocks {
		block = strings.TrimSpace(block)
		if len(block) < 40 {
			continue
		}
		if !looksLikeRecord(block) {
			continue
		}
		fragments = append(fragments, models.RawFragment{Text: block})
		if len(fragments) >= textBlockLimit {
			break
		}
	}
	return fragments
}

var recordHintRegex = regexp.MustCompile(`(?i)address|owner|parcel|value|sq\.?\s*ft|sqft|property`)

func looksLikeRecord(block string) bool {
	return recordHintRegex.MatchString(block)
}

// cellTexts returns the trimmed text of a row's cells of the given kind.
func cellTexts(row *goquery.Selection, cellTag string) []string {
	var cells []string
	row.Find(cellTag).Each(func(_ int, cell *goquery.Selection) {
		cells = append(cells, strings.TrimSpace(cell.Text()))
	})
	return cells
}

// rowText joins a row's cells with newlines so inline label scanning sees
// cell boundaries instead of run-together words.
func rowText(row *goquery.Selection) string {
	var parts []string
	row.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
		if t := strings.TrimSpace(cell.Text()); t != "" {
			parts = append(parts, t)
		}
	})
	return strings.Join(parts, "\n")
}

// blockText flattens a container element, keeping <br> and block boundaries
// as newlines so labels stay line-scoped.
func blockText(el *goquery.Selection) string {
	clone := el.Clone()
	clone.Find("br").ReplaceWithHtml("\n")
	clone.Find("div, p, li, tr, section").AfterHtml("\n")
	return strings.TrimSpace(clone.Text())
}

func firstLink(el *goquery.Selection) string {
	return el.Find("a[href]").First().AttrOr("href", "")
}
