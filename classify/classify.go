// Package classify decides which extraction strategy applies to a results
// page. Decision order is deliberate: tabular structure is the strongest
// signal, then repeated sibling containers, then label-bearing free text.
// Pages matching nothing classify as no-results rather than failing.
package classify

import (
	"log"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/xthemadgenius/rain-papa/models"
)

// Options tunes the container-similarity heuristics. Zero values fall back
// to the defaults.
type Options struct {
	// MinContainerCount is how many similar siblings make a container
	// layout (default 2).
	MinContainerCount int
	// SimilarityTolerance is the allowed deviation from the group median of
	// labeled sub-elements per container (default 2).
	SimilarityTolerance int
	// Labels are the candidate label literals used for the text-layout and
	// container checks.
	Labels []string
	Debug  bool
}

func (o Options) minContainers() int {
	if o.MinContainerCount > 0 {
		return o.MinContainerCount
	}
	return 2
}

func (o Options) tolerance() int {
	if o.SimilarityTolerance > 0 {
		return o.SimilarityTolerance
	}
	return 2
}

// Verdict is the classifier's output: the layout family plus the located
// repeating-structure anchor for the layouts that have one.
type Verdict struct {
	Kind models.LayoutKind
	// Table anchors a tabular layout.
	Table *goquery.Selection
	// Containers anchors a container layout: the matched sibling elements.
	Containers []*goquery.Selection
	// Text is the page's flattened text for the text layout.
	Text string
}

// Header keywords that mark a table as holding property results rather than
// page chrome.
var resultKeywords = []string{"property", "address", "owner", "value", "parcel", "account", "situs"}

var noResultsRegex = regexp.MustCompile(`(?i)no (?:results|records|properties|matches)(?: were)? found|your search returned no|0 records? found`)

// Selectors the portals actually use for result containers, tried before the
// generic sibling-shape scan.
var containerSelectors = []string{
	".property-result",
	".result-item",
	".search-result",
	"[data-property]",
	".property-card",
	".listing",
	"[class*='result-row']",
}

// Page classifies one results page.
func Page(doc *goquery.Document, opts Options) Verdict {
	pageText := flattenText(doc)

	if noResultsRegex.MatchString(pageText) {
		return Verdict{Kind: models.LayoutNoResults}
	}

	if table := findResultTable(doc); table != nil {
		return Verdict{Kind: models.LayoutTabular, Table: table}
	}

	if containers := findContainers(doc, opts); len(containers) >= opts.minContainers() {
		return Verdict{Kind: models.LayoutContainer, Containers: containers}
	}

	hits := countLabelHits(pageText, opts.Labels)
	if hits >= 2 {
		return Verdict{Kind: models.LayoutText, Text: pageText}
	}

	if hits == 1 {
		// One label on an otherwise structureless page is ambiguous; treat
		// it as no results but say so.
		log.Println("classify: page structure ambiguous, treating as no results")
	}
	return Verdict{Kind: models.LayoutNoResults}
}

// findResultTable returns the first table with a header row (or a usable
// implicit one), at least two data rows, and result-like header text.
func findResultTable(doc *goquery.Document) *goquery.Selection {
	var found *goquery.Selection
	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		rows := table.Find("tr")
		if rows.Length() < 3 { // header + 2 data rows minimum
			return true
		}
		text := strings.ToLower(table.Text())
		for _, kw := range resultKeywords {
			if strings.Contains(text, kw) {
				found = table
				return false
			}
		}
		return true
	})
	return found
}

// findContainers looks for repeated record-shaped elements: first via the
// portal selectors, then by scanning for sibling groups with a similar
// internal shape.
func findContainers(doc *goquery.Document, opts Options) []*goquery.Selection {
	for _, selector := range containerSelectors {
		sel := doc.Find(selector)
		if sel.Length() >= opts.minContainers() {
			if opts.Debug {
				log.Printf("classify: container selector %q matched %d elements\n", selector, sel.Length())
			}
			return splitSelection(sel)
		}
	}
	return similarSiblings(doc, opts)
}

// similarSiblings groups each parent's children by tag+class signature and
// keeps the first group whose members carry a similar count of labeled
// sub-elements (within the configured tolerance of the group median).
func similarSiblings(doc *goquery.Document, opts Options) []*goquery.Selection {
	var result []*goquery.Selection

	doc.Find("body *").EachWithBreak(func(_ int, parent *goquery.Selection) bool {
		groups := make(map[string][]*goquery.Selection)
		var order []string
		parent.Children().Each(func(_ int, child *goquery.Selection) {
			sig := signature(child)
			if _, seen := groups[sig]; !seen {
				order = append(order, sig)
			}
			groups[sig] = append(groups[sig], child)
		})

		for _, sig := range order {
			group := groups[sig]
			if len(group) < opts.minContainers() {
				continue
			}
			counts := make([]int, len(group))
			for i, el := range group {
				counts[i] = countLabelHits(el.Text(), opts.Labels)
			}
			med := median(counts)
			if med < 1 {
				continue // repeated siblings without field labels are layout, not records
			}
			var kept []*goquery.Selection
			for i, el := range group {
				if abs(counts[i]-med) <= opts.tolerance() {
					kept = append(kept, el)
				}
			}
			if len(kept) >= opts.minContainers() {
				result = kept
				return false
			}
		}
		return true
	})
	return result
}

func signature(el *goquery.Selection) string {
	tag := goquery.NodeName(el)
	class, _ := el.Attr("class")
	return tag + "." + strings.Join(strings.Fields(class), ".")
}

func splitSelection(sel *goquery.Selection) []*goquery.Selection {
	out := make([]*goquery.Selection, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		out = append(out, s)
	})
	return out
}

// countLabelHits counts distinct label literals present in the text.
func countLabelHits(text string, labels []string) int {
	lower := strings.ToLower(text)
	hits := 0
	for _, label := range labels {
		if strings.Contains(lower, strings.ToLower(label)) {
			hits++
		}
	}
	return hits
}

// flattenText returns the page text with script and style content removed.
func flattenText(doc *goquery.Document) string {
	clone := doc.Selection.Clone()
	clone.Find("script, style, noscript").Remove()
	return clone.Text()
}

func median(values []int) int {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]int, len(values))
	copy(sorted, values)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j] < sorted[j-1]; j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	return sorted[len(sorted)/2]
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// LabelLiterals flattens a spec set's candidate labels for the classifier's
// text checks, skipping the short generics that would hit on page chrome.
func LabelLiterals(specs []models.FieldSpec) []string {
	var labels []string
	for _, spec := range specs {
		for _, label := range spec.Labels {
			if len(label) >= 4 {
				labels = append(labels, label)
			}
		}
	}
	return labels
}
