package scraper

import "fmt"

// NavigationError means the start page could not be reached or never rendered.
// It is fatal: no partial result is meaningful without page 1.
type NavigationError struct {
	URL string
	Err error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("failed to reach %s: %v", e.URL, e.Err)
}

func (e *NavigationError) Unwrap() error { return e.Err }

// RenderTimeout means a page's content did not appear within the wait window.
// It is recovered locally by retrying the page up to the retry budget.
type RenderTimeout struct {
	Page int
	Err  error
}

func (e *RenderTimeout) Error() string {
	return fmt.Sprintf("page %d did not render: %v", e.Page, e.Err)
}

func (e *RenderTimeout) Unwrap() error { return e.Err }

// ExtractionExhausted means a page past the first burned through its whole
// retry budget without producing a valid table. Whether it aborts the session
// or only skips the page depends on the configured policy.
type ExtractionExhausted struct {
	Page     int
	Attempts int
	Err      error
}

func (e *ExtractionExhausted) Error() string {
	return fmt.Sprintf("page %d still failing after %d attempts: %v", e.Page, e.Attempts, e.Err)
}

func (e *ExtractionExhausted) Unwrap() error { return e.Err }
