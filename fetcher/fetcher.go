// Package fetcher navigates server-rendered portal result pages over plain
// HTTP with colly. Portals that render results without JavaScript do not need
// a browser; this keeps unattended runs cheap.
package fetcher

import (
	"fmt"
	"log"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"github.com/xthemadgenius/rain-papa/paginate"
)

// nextLinkSelectors are tried in order before falling back to link-text
// matching.
var nextLinkSelectors = []string{
	"a[rel='next']",
	"a[aria-label='Next']",
	"a.next",
	"li.next a",
	"a.paginate_button.next",
}

var nextTextRegex = regexp.MustCompile(`(?i)^\s*(?:next|next\s*page|>|»|&gt;)\s*$`)

// Navigator fetches pages with colly and satisfies paginate.Navigator.
// The next-page handle is the absolute URL of the page to visit.
type Navigator struct {
	collector  *colly.Collector
	currentURL string
	html       string
	fetchErr   error
	visited    map[string]bool
}

// New builds the collector and fetches the first results page.
func New(startURL string) (*Navigator, error) {
	c := colly.NewCollector(
		colly.UserAgent("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
	)

	// Government portals throttle aggressively; stay slow and sequential.
	c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: 1,
		Delay:       4 * time.Second,
	})

	n := &Navigator{
		collector: c,
		visited:   make(map[string]bool),
	}

	c.OnResponse(func(r *colly.Response) {
		n.html = string(r.Body)
		n.currentURL = r.Request.URL.String()
	})
	c.OnError(func(r *colly.Response, err error) {
		log.Printf("Error fetching %s: %v\n", r.Request.URL, err)
		n.fetchErr = err
	})

	if err := n.visit(startURL); err != nil {
		return nil, fmt.Errorf("failed to fetch first page: %w", err)
	}
	return n, nil
}

// CurrentURL returns the address of the page fetched last.
func (n *Navigator) CurrentURL() string {
	return n.currentURL
}

// CurrentHTML returns the body of the page fetched last.
func (n *Navigator) CurrentHTML() (string, error) {
	if n.html == "" {
		return "", fmt.Errorf("no page fetched yet")
	}
	return n.html, nil
}

// FindNext scans the current markup for an unvisited next-page link.
func (n *Navigator) FindNext() (paginate.Handle, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(n.html))
	if err != nil {
		return nil, false
	}

	for _, sel := range nextLinkSelectors {
		if next, ok := n.resolveLink(doc.Find(sel).First()); ok {
			return next, true
		}
	}

	// Fall back on link text: "Next", ">", "»".
	var found string
	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if !nextTextRegex.MatchString(s.Text()) {
			return true
		}
		if next, ok := n.resolveLink(s); ok {
			found = next
			return false
		}
		return true
	})
	if found != "" {
		return found, true
	}
	return nil, false
}

// Activate fetches the page behind the handle.
func (n *Navigator) Activate(h paginate.Handle) error {
	next, ok := h.(string)
	if !ok {
		return fmt.Errorf("unexpected handle type %T", h)
	}
	return n.visit(next)
}

func (n *Navigator) visit(pageURL string) error {
	n.fetchErr = nil
	before := n.html
	if err := n.collector.Visit(pageURL); err != nil {
		return fmt.Errorf("failed to visit %s: %w", pageURL, err)
	}
	n.collector.Wait()
	if n.fetchErr != nil {
		return fmt.Errorf("failed to fetch %s: %w", pageURL, n.fetchErr)
	}
	if n.html == before && n.currentURL != pageURL {
		return fmt.Errorf("no response received for %s", pageURL)
	}
	n.visited[pageURL] = true
	if n.currentURL != "" {
		n.visited[n.currentURL] = true
	}
	return nil
}

// resolveLink turns a candidate anchor into an absolute, unvisited URL.
func (n *Navigator) resolveLink(s *goquery.Selection) (string, bool) {
	href, ok := s.Attr("href")
	if !ok {
		return "", false
	}
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(strings.ToLower(href), "javascript:") {
		return "", false
	}

	base, err := url.Parse(n.currentURL)
	if err != nil {
		return "", false
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	abs := base.ResolveReference(ref).String()

	if n.visited[abs] || abs == n.currentURL {
		return "", false
	}
	return abs, true
}
