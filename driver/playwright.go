package driver

import (
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"
)

// PlaywrightDriver drives a Firefox instance through playwright.
type PlaywrightDriver struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	page    playwright.Page
}

// NewPlaywrightDriver launches Firefox and opens a blank page on it.
func NewPlaywrightDriver(headless bool) (*PlaywrightDriver, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	browser, err := pw.Firefox.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(headless),
	})
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("failed to launch firefox: %w", err)
	}

	page, err := browser.NewPage()
	if err != nil {
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	return &PlaywrightDriver{
		pw:      pw,
		browser: browser,
		page:    page,
	}, nil
}

// Navigate implements the Driver interface.
func (d *PlaywrightDriver) Navigate(url string) error {
	if _, err := d.page.Goto(url); err != nil {
		return fmt.Errorf("failed to navigate: %w", err)
	}
	return nil
}

// HTML implements the Driver interface.
func (d *PlaywrightDriver) HTML() (string, error) {
	html, err := d.page.Content()
	if err != nil {
		return "", fmt.Errorf("failed to get HTML: %w", err)
	}
	return html, nil
}

// WaitVisible implements the Driver interface.
func (d *PlaywrightDriver) WaitVisible(selector string, timeout time.Duration) error {
	err := d.page.Locator(selector).First().WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	if err != nil {
		return fmt.Errorf("element %q did not become visible: %w", selector, err)
	}
	return nil
}

// Click implements the Driver interface.
func (d *PlaywrightDriver) Click(selector string) error {
	if err := d.page.Locator(selector).First().Click(); err != nil {
		return fmt.Errorf("failed to click %q: %w", selector, err)
	}
	return nil
}

// ClickNth implements the Driver interface.
func (d *PlaywrightDriver) ClickNth(selector string, n int) error {
	loc := d.page.Locator(selector).Nth(n)
	if err := loc.ScrollIntoViewIfNeeded(); err != nil {
		return fmt.Errorf("failed to scroll element into view: %w", err)
	}
	if err := loc.Click(); err != nil {
		return fmt.Errorf("failed to click %q [%d]: %w", selector, n, err)
	}
	return nil
}

// ClickText implements the Driver interface.
func (d *PlaywrightDriver) ClickText(selector, text string) error {
	loc := d.page.Locator(selector, playwright.PageLocatorOptions{HasText: text}).First()
	if err := loc.Click(); err != nil {
		return fmt.Errorf("failed to click %q with text %q: %w", selector, text, err)
	}
	return nil
}

// Visible implements the Driver interface.
func (d *PlaywrightDriver) Visible(selector string) (bool, error) {
	visible, err := d.page.Locator(selector).First().IsVisible()
	if err != nil {
		return false, fmt.Errorf("failed to check visibility of %q: %w", selector, err)
	}
	return visible, nil
}

// Close implements the Driver interface.
func (d *PlaywrightDriver) Close() error {
	if d.page != nil {
		d.page.Close()
	}
	if d.browser != nil {
		if err := d.browser.Close(); err != nil {
			return err
		}
	}
	if d.pw != nil {
		return d.pw.Stop()
	}
	return nil
}
