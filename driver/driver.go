// Package driver hides the browser automation backend behind a small
// capability interface so the scrape loop never depends on a specific
// library's API shape.
package driver

import (
	"fmt"
	"time"
)

// Driver is the browser capability the scraper runs against. Implementations
// own one browser process and one page for their whole lifetime; Close must
// release both on every exit path.
type Driver interface {
	// Navigate loads the given URL and waits for the load event.
	Navigate(url string) error

	// HTML returns the current DOM serialized as HTML.
	HTML() (string, error)

	// WaitVisible blocks until the selector matches a visible element or the
	// timeout expires.
	WaitVisible(selector string, timeout time.Duration) error

	// Click clicks the first element matching the selector.
	Click(selector string) error

	// ClickNth scrolls the n-th (0-based) element matching the selector into
	// view and clicks it.
	ClickNth(selector string, n int) error

	// ClickText clicks the first element matching the selector whose text
	// equals the given string.
	ClickText(selector, text string) error

	// Visible reports whether the selector currently matches a visible
	// element, without waiting.
	Visible(selector string) (bool, error)

	// Close shuts down the page and the browser process.
	Close() error
}

// New creates a driver for the requested browser. Chrome is driven over CDP
// with rod, firefox through playwright.
func New(browser string, headless bool) (Driver, error) {
	switch browser {
	case "chrome":
		return NewRodDriver(headless)
	case "firefox":
		return NewPlaywrightDriver(headless)
	default:
		return nil, fmt.Errorf("unknown browser type %q, should be 'chrome' or 'firefox'", browser)
	}
}
