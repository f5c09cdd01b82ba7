// Package browser navigates portal result pages through a real Chrome
// instance via rod. It can attach to an already-running Chrome with remote
// debugging enabled, so searches performed by hand (logins, captchas, form
// fills) stay intact, or launch its own headless instance for unattended
// runs.
package browser

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/xthemadgenius/rain-papa/paginate"
)

// DefaultDebugAddress is where an operator-started Chrome exposes its
// DevTools endpoint (chrome --remote-debugging-port=9222).
const DefaultDebugAddress = "127.0.0.1:9222"

// nextSelectors covers the pagination controls the common assessor and
// clerk portals render.
var nextSelectors = []string{
	"a[aria-label='Next']",
	"button[aria-label='Next']",
	"a[title='Next']",
	"a[rel='next']",
	"input[value='Next']",
	"a.next",
	"li.next a",
	"a.paginate_button.next",
}

// Navigator drives a single Chrome tab. It satisfies paginate.Navigator.
type Navigator struct {
	browser  *rod.Browser
	page     *rod.Page
	attached bool
	settle   time.Duration
}

// Attach connects to a Chrome already running with remote debugging on addr
// and takes over its most recently used tab. The operator is expected to have
// the search results on screen.
func Attach(addr string) (*Navigator, error) {
	if addr == "" {
		addr = DefaultDebugAddress
	}

	// Resolve the DevTools websocket URL before handing off to rod so a
	// missing Chrome yields a plain error instead of a panic.
	resp, err := http.Get("http://" + addr + "/json/version")
	if err != nil {
		return nil, fmt.Errorf("no Chrome debug session at %s (start Chrome with --remote-debugging-port): %w", addr, err)
	}
	resp.Body.Close()

	u, err := launcher.ResolveURL(addr)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve debug url: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	pages, err := browser.Pages()
	if err != nil {
		return nil, fmt.Errorf("failed to list tabs: %w", err)
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("attached Chrome has no open tabs")
	}

	page := pages.First()
	if info, err := page.Info(); err == nil {
		log.Printf("Attached to tab: %s\n", info.Title)
	}

	return &Navigator{browser: browser, page: page, attached: true, settle: 2 * time.Second}, nil
}

// Launch starts a headless Chrome and opens url in a fresh tab.
func Launch(url string) (*Navigator, error) {
	userDataDir := os.Getenv("BOT_DATA_DIR")
	if userDataDir == "" {
		userDataDir = "/tmp/papa-data"
	}
	if err := os.MkdirAll(userDataDir, 0755); err != nil {
		log.Printf("Warning: Failed to create data directory %s: %v\n", userDataDir, err)
		userDataDir = ""
	}

	l := launcher.New().
		Headless(true).
		Set("disable-blink-features", "AutomationControlled").
		NoSandbox(true).
		Leakless(false).
		UserDataDir(userDataDir).
		Set("disable-dev-shm-usage").
		Set("disable-gpu").
		Set("no-first-run").
		Set("no-default-browser-check").
		Set("disable-extensions").
		Set("mute-audio")

	for _, path := range []string{
		"/usr/bin/google-chrome",
		"/usr/bin/google-chrome-stable",
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
		"/snap/bin/chromium",
	} {
		if _, err := os.Stat(path); err == nil {
			l = l.Bin(path)
			break
		}
	}

	browserURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(browserURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		browser.Close()
		return nil, fmt.Errorf("failed to open tab: %w", err)
	}
	if err := page.Navigate(url); err != nil {
		browser.Close()
		return nil, fmt.Errorf("failed to navigate: %w", err)
	}
	page.WaitLoad()
	time.Sleep(3 * time.Second) // give portal JavaScript time to render

	return &Navigator{browser: browser, page: page, settle: 3 * time.Second}, nil
}

// Close releases the tab, and the whole browser when we launched it. An
// attached operator Chrome is left running.
func (n *Navigator) Close() error {
	if n.attached {
		return nil
	}
	if n.browser != nil {
		return n.browser.Close()
	}
	return nil
}

// CurrentURL returns the address of the active tab.
func (n *Navigator) CurrentURL() string {
	info, err := n.page.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

// CurrentHTML returns the rendered markup of the active tab.
func (n *Navigator) CurrentHTML() (string, error) {
	html, err := n.page.HTML()
	if err != nil {
		return "", fmt.Errorf("failed to get HTML: %w", err)
	}
	return html, nil
}

// FindNext locates a visible next-page control on the active tab.
func (n *Navigator) FindNext() (paginate.Handle, bool) {
	for _, sel := range nextSelectors {
		el, err := n.page.Timeout(3 * time.Second).Element(sel)
		if err != nil {
			continue
		}
		if visible, _ := el.Visible(); !visible {
			continue
		}
		if disabled, _ := el.Attribute("disabled"); disabled != nil {
			continue
		}
		return el, true
	}
	return nil, false
}

// Activate clicks the next-page control and waits for the new page to settle.
func (n *Navigator) Activate(h paginate.Handle) error {
	el, ok := h.(*rod.Element)
	if !ok {
		return fmt.Errorf("unexpected handle type %T", h)
	}
	if err := el.Click("left", 1); err != nil {
		return fmt.Errorf("failed to click next control: %w", err)
	}
	n.page.WaitLoad()
	time.Sleep(n.settle)
	n.page.Timeout(10 * time.Second).WaitStable(time.Second)
	return nil
}
