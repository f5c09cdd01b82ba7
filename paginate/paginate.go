// Package paginate drives page extraction across a paginated result set. The
// walker only ever asks its Navigator for the markup currently on screen and
// for the way forward; sessions, cookies and timeouts belong to the
// Navigator implementation (live browser, static fetcher, or test double).
package paginate

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/xthemadgenius/rain-papa/classify"
	"github.com/xthemadgenius/rain-papa/extract"
	"github.com/xthemadgenius/rain-papa/mapper"
	"github.com/xthemadgenius/rain-papa/models"
)

// Handle is an opaque next-page control owned by the Navigator.
type Handle interface{}

// Navigator supplies rendered pages and forward navigation.
type Navigator interface {
	// CurrentHTML returns the markup of the page currently presented.
	CurrentHTML() (string, error)
	// FindNext locates the next-page control, if any.
	FindNext() (Handle, bool)
	// Activate advances to the page behind the handle.
	Activate(h Handle) error
}

// URLSource is implemented by navigators that know the address of the page
// they are presenting. The walker uses it to resolve relative record links
// to absolute URLs.
type URLSource interface {
	CurrentURL() string
}

// Status is the walker's terminal state.
type Status int

const (
	// StatusDone means the walk finished normally: no next control, the
	// page limit, or the loop guard.
	StatusDone Status = iota
	// StatusAborted means navigation failed mid-walk; pages extracted
	// before the failure are preserved in the result.
	StatusAborted
)

// Result is the ordered sequence of per-page outcomes plus how the walk
// ended. Err is set only for StatusAborted.
type Result struct {
	Pages  []models.PageResult
	Status Status
	Err    error
}

// Walker extracts records across pages up to a configured bound.
type Walker struct {
	mapper   *mapper.Mapper
	classify classify.Options
	maxPages int
	debug    bool
}

// NewWalker wires the extraction pipeline the walker applies to every page.
func NewWalker(m *mapper.Mapper, copts classify.Options, maxPages int, debug bool) *Walker {
	return &Walker{mapper: m, classify: copts, maxPages: maxPages, debug: debug}
}

// Walk runs the pagination state machine: extract the current page, then
// follow next-page controls until none remain, the page bound is hit, two
// consecutive pages look identical, the context is cancelled, or navigation
// fails. A navigation failure aborts with partial results; it is never a
// crash.
func (w *Walker) Walk(ctx context.Context, nav Navigator) Result {
	var result Result
	prevSignature := ""

	for pageNum := 1; pageNum <= w.maxPages; pageNum++ {
		// Cooperative cancellation point: checked before every page, never
		// mid-page.
		select {
		case <-ctx.Done():
			log.Printf("paginate: cancelled after %d page(s)\n", len(result.Pages))
			result.Status = StatusAborted
			result.Err = ctx.Err()
			return result
		default:
		}

		html, err := nav.CurrentHTML()
		if err != nil {
			result.Status = StatusAborted
			result.Err = fmt.Errorf("failed to read page %d: %w", pageNum, err)
			return result
		}

		doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
		if err != nil {
			result.Status = StatusAborted
			result.Err = fmt.Errorf("failed to parse page %d: %w", pageNum, err)
			return result
		}

		verdict := classify.Page(doc, w.classify)
		page := extract.Page(verdict, w.mapper, pageNum, w.debug)
		if src, ok := nav.(URLSource); ok {
			absolutizeRecordURLs(page.Records, src.CurrentURL())
		}

		// Loop guard: a next control that reloads the same page must not
		// spin until max_pages.
		sig := pageSignature(page, doc)
		if pageNum > 1 && sig == prevSignature {
			log.Printf("paginate: page %d repeats page %d, stopping\n", pageNum, pageNum-1)
			result.Pages = append(result.Pages, page)
			result.Status = StatusDone
			return result
		}
		prevSignature = sig

		result.Pages = append(result.Pages, page)
		log.Printf("paginate: page %d (%s): %d/%d fragments mapped\n",
			pageNum, page.Layout, page.MappedCount, page.FragmentCount)

		handle, ok := nav.FindNext()
		if !ok {
			result.Status = StatusDone
			return result
		}
		if pageNum == w.maxPages {
			log.Printf("paginate: reached page limit (%d)\n", w.maxPages)
			result.Status = StatusDone
			return result
		}
		if err := nav.Activate(handle); err != nil {
			result.Status = StatusAborted
			result.Err = fmt.Errorf("failed to advance past page %d: %w", pageNum, err)
			return result
		}
	}

	result.Status = StatusDone
	return result
}

// pageSignature fingerprints a page's extracted content. Record identities
// absolutizeRecordURLs resolves relative record links against the address of
// the page they were carved from. Links stay as found when the base is
// missing or unparsable.
func absolutizeRecordURLs(records []models.PropertyRecord, pageURL string) {
	base, err := url.Parse(pageURL)
	if err != nil || !base.IsAbs() {
		return
	}
	for _, rec := range records {
		raw := rec.Get("record_url")
		if raw == "" {
			continue
		}
		ref, err := url.Parse(raw)
		if err != nil {
			continue
		}
		rec.Set("record_url", base.ResolveReference(ref).String())
	}
}

// are preferred; pages without records fall back to collapsed text, so
// markup noise like timestamps does not defeat the guard.
func pageSignature(page models.PageResult, doc *goquery.Document) string {
	if len(page.Records) > 0 {
		keys := make([]string, len(page.Records))
		for i, rec := range page.Records {
			keys[i] = rec.DedupKey()
		}
		return strings.Join(keys, ";")
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
