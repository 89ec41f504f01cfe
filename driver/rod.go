package driver

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// actionTimeout bounds individual element lookups so a vanished element
// surfaces as an error instead of hanging the session.
const actionTimeout = 10 * time.Second

// RodDriver drives a Chrome/Chromium instance over CDP.
type RodDriver struct {
	browser *rod.Browser
	page    *rod.Page
}

// chromePaths are the usual Chrome/Chromium install locations, tried in order
// before falling back to rod's managed download.
var chromePaths = []string{
	"/usr/bin/google-chrome",
	"/usr/bin/google-chrome-stable",
	"/usr/bin/chromium",
	"/usr/bin/chromium-browser",
	"/snap/bin/chromium",
}

// NewRodDriver launches a Chrome instance and opens a blank page on it.
func NewRodDriver(headless bool) (*RodDriver, error) {
	l := launcher.New().
		Headless(headless).
		NoSandbox(true).
		Leakless(false).
		Set("disable-blink-features", "AutomationControlled").
		Set("disable-dev-shm-usage").
		Set("disable-gpu").
		Set("disable-extensions").
		Set("no-first-run").
		Set("no-default-browser-check").
		Set("mute-audio")

	for _, path := range chromePaths {
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
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	return &RodDriver{
		browser: browser,
		page:    page,
	}, nil
}

// Navigate implements the Driver interface.
func (d *RodDriver) Navigate(url string) error {
	if err := d.page.Navigate(url); err != nil {
		return fmt.Errorf("failed to navigate: %w", err)
	}
	if err := d.page.WaitLoad(); err != nil {
		return fmt.Errorf("failed to wait for page load: %w", err)
	}
	return nil
}

// HTML implements the Driver interface.
func (d *RodDriver) HTML() (string, error) {
	html, err := d.page.HTML()
	if err != nil {
		return "", fmt.Errorf("failed to get HTML: %w", err)
	}
	return html, nil
}

// WaitVisible implements the Driver interface.
func (d *RodDriver) WaitVisible(selector string, timeout time.Duration) error {
	el, err := d.page.Timeout(timeout).Element(selector)
	if err != nil {
		return fmt.Errorf("element %q did not appear: %w", selector, err)
	}
	if err := el.WaitVisible(); err != nil {
		return fmt.Errorf("element %q did not become visible: %w", selector, err)
	}
	return nil
}

// Click implements the Driver interface.
func (d *RodDriver) Click(selector string) error {
	el, err := d.page.Timeout(actionTimeout).Element(selector)
	if err != nil {
		return fmt.Errorf("element %q not found: %w", selector, err)
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("failed to click %q: %w", selector, err)
	}
	return nil
}

// ClickNth implements the Driver interface.
func (d *RodDriver) ClickNth(selector string, n int) error {
	els, err := d.page.Timeout(actionTimeout).Elements(selector)
	if err != nil {
		return fmt.Errorf("elements %q not found: %w", selector, err)
	}
	if n < 0 || n >= len(els) {
		return fmt.Errorf("element %q index %d out of range (%d matches)", selector, n, len(els))
	}

	el := els[n]
	if err := el.ScrollIntoView(); err != nil {
		return fmt.Errorf("failed to scroll element into view: %w", err)
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("failed to click %q [%d]: %w", selector, n, err)
	}
	return nil
}

// ClickText implements the Driver interface.
func (d *RodDriver) ClickText(selector, text string) error {
	pattern := "/^" + regexp.QuoteMeta(text) + "$/"
	el, err := d.page.Timeout(actionTimeout).ElementR(selector, pattern)
	if err != nil {
		return fmt.Errorf("element %q with text %q not found: %w", selector, text, err)
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("failed to click %q with text %q: %w", selector, text, err)
	}
	return nil
}

// Visible implements the Driver interface.
func (d *RodDriver) Visible(selector string) (bool, error) {
	has, el, err := d.page.Has(selector)
	if err != nil {
		return false, fmt.Errorf("failed to query %q: %w", selector, err)
	}
	if !has {
		return false, nil
	}

	visible, err := el.Visible()
	if err != nil {
		return false, fmt.Errorf("failed to check visibility of %q: %w", selector, err)
	}
	return visible, nil
}

// Close implements the Driver interface.
func (d *RodDriver) Close() error {
	if d.page != nil {
		d.page.Close()
	}
	if d.browser != nil {
		return d.browser.Close()
	}
	return nil
}
