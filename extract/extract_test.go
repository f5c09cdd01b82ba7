package extract

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/xthemadgenius/rain-papa/classify"
	"github.com/xthemadgenius/rain-papa/mapper"
	"github.com/xthemadgenius/rain-papa/models"
)

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("failed to parse fixture: %v", err)
	}
	return doc
}

func testMapper() *mapper.Mapper {
	return mapper.New(models.DefaultFieldSpecs(), mapper.ModeFuzzy, false)
}

func classifyOptions() classify.Options {
	return classify.Options{Labels: classify.LabelLiterals(models.DefaultFieldSpecs())}
}

const tabularPage = `<html><body>
<table>
  <tr><th>Property Address</th><th>Owner Name</th><th>Just Value</th><th>Parcel Number</th></tr>
  <tr><td><a href="/detail?pcn=00-11-22">123 Main St</a></td><td>Jane Doe</td><td>$450,000</td><td>00-11-22</td></tr>
  <tr><td>456 Oak Ave</td><td>John Roe</td><td>$N/A</td><td>00-11-23</td></tr>
</table>
</body></html>`

func TestPageTabular(t *testing.T) {
	v := classify.Page(mustDoc(t, tabularPage), classifyOptions())
	if v.Kind != models.LayoutTabular {
		t.Fatalf("fixture classified %v, want tabular", v.Kind)
	}

	result := Page(v, testMapper(), 1, false)
	if result.FragmentCount != 2 {
		t.Errorf("FragmentCount = %d, want 2", result.FragmentCount)
	}
	if result.MappedCount != 2 {
		t.Fatalf("MappedCount = %d, want 2", result.MappedCount)
	}

	first, second := result.Records[0], result.Records[1]
	if got := first.Get("property_value"); got != "450000" {
		t.Errorf("first property_value = %q, want 450000", got)
	}
	if got := first.Get("record_url"); got != "/detail?pcn=00-11-22" {
		t.Errorf("first record_url = %q", got)
	}
	// N/A normalizes to null, but the record survives on its parcel id.
	if got := second.Get("property_value"); got != "" {
		t.Errorf("second property_value = %q, want empty", got)
	}
	if got := second.Get("parcel_id"); got != "00-11-23" {
		t.Errorf("second parcel_id = %q, want 00-11-23", got)
	}
}

func TestPageMalformedRowIsolated(t *testing.T) {
	// Middle row is junk: it must reduce MappedCount, not kill the page.
	html := `<html><body>
<table>
  <tr><th>Property Address</th><th>Owner Name</th><th>Parcel Number</th></tr>
  <tr><td>123 Main St</td><td>Jane Doe</td><td>00-11-22</td></tr>
  <tr><td>&nbsp;</td><td></td><td></td></tr>
  <tr><td>456 Oak Ave</td><td>John Roe</td><td>00-11-23</td></tr>
</table>
</body></html>`

	v := classify.Page(mustDoc(t, html), classifyOptions())
	result := Page(v, testMapper(), 1, false)

	if result.FragmentCount != 3 {
		t.Errorf("FragmentCount = %d, want 3", result.FragmentCount)
	}
	if result.MappedCount != 2 {
		t.Errorf("MappedCount = %d, want 2", result.MappedCount)
	}
	if len(result.Records) != 2 {
		t.Fatalf("got %d records, want 2", len(result.Records))
	}
}

func TestPageContainers(t *testing.T) {
	html := `<html><body>
<div class="result-item">Owner: JANE DOE<br>Address: 123 MAIN ST<br>Parcel: 00-11-22<br><a href="/p/00-11-22">view</a></div>
<div class="result-item">Owner: JOHN ROE<br>Address: 456 OAK AVE<br>Parcel: 00-11-23</div>
</body></html>`

	v := classify.Page(mustDoc(t, html), classifyOptions())
	if v.Kind != models.LayoutContainer {
		t.Fatalf("fixture classified %v, want container", v.Kind)
	}

	result := Page(v, testMapper(), 2, false)
	if result.MappedCount != 2 {
		t.Fatalf("MappedCount = %d, want 2", result.MappedCount)
	}
	if got := result.Records[0].Get("record_url"); got != "/p/00-11-22" {
		t.Errorf("record_url = %q, want /p/00-11-22", got)
	}
	if got := result.Records[1].Get("owner_name"); got != "JOHN ROE" {
		t.Errorf("owner_name = %q, want JOHN ROE", got)
	}
	if result.Records[0].PageNumber != 2 {
		t.Errorf("PageNumber = %d, want 2", result.Records[0].PageNumber)
	}
}

func TestPageTextBlocks(t *testing.T) {
	html := `<html><body><pre>
Owner Name: JANE DOE
Property Address: 123 MAIN ST
Parcel Number: 00-4241-003-0120

Owner Name: JOHN ROE
Property Address: 456 OAK AVE
Parcel Number: 00-4241-003-0121
</pre></body></html>`

	v := classify.Page(mustDoc(t, html), classifyOptions())
	if v.Kind != models.LayoutText {
		t.Fatalf("fixture classified %v, want text", v.Kind)
	}

	result := Page(v, testMapper(), 1, false)
	if result.MappedCount != 2 {
		t.Fatalf("MappedCount = %d, want 2", result.MappedCount)
	}
	if got := result.Records[1].Get("parcel_id"); got != "00-4241-003-0121" {
		t.Errorf("second parcel_id = %q", got)
	}
}

func TestPageNoResults(t *testing.T) {
	v := classify.Page(mustDoc(t, `<html><body><p>No results found for this search.</p></body></html>`), classifyOptions())
	result := Page(v, testMapper(), 1, false)
	if result.Layout != models.LayoutNoResults {
		t.Errorf("Layout = %v, want no_results", result.Layout)
	}
	if result.FragmentCount != 0 || len(result.Records) != 0 {
		t.Errorf("no-results page produced fragments (%d) or records (%d)", result.FragmentCount, len(result.Records))
	}
}
