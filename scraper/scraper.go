// Package scraper drives the browser through every page of the savings table:
// load page, wait for content, parse rows, advance. One session owns one
// driver for its whole lifetime and visits pages strictly in order.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"doge-savings-scraper/config"
	"doge-savings-scraper/driver"
	"doge-savings-scraper/filter"
	"doge-savings-scraper/models"
	"doge-savings-scraper/parser"
)

// Policy is what happens when a page past the first exhausts its retries.
type Policy string

const (
	// PolicyAbort stops the session, returning the records accumulated so far
	// together with an ExtractionExhausted error.
	PolicyAbort Policy = "abort"
	// PolicySkip logs a warning and moves on to the next page.
	PolicySkip Policy = "skip"
)

// Options configures a scrape session.
type Options struct {
	StartURL        string
	LogFreq         int // pages between progress log lines
	MaxRetries      int // per-page retries past the first attempt
	MaxResults      int // stop after this many records; 0 = unlimited
	WaitTimeout     time.Duration
	ExhaustedPolicy Policy
	Selectors       config.Selectors
	Agency          string
}

// Stats summarizes a finished (or aborted) session.
type Stats struct {
	Pages       int
	Records     int
	RowsDropped int
	Retries     int
}

// Session is one scrape run over the paginated table.
type Session struct {
	drv    driver.Driver
	opts   Options
	parser *parser.Parser
	filter *filter.Filter
	log    *slog.Logger

	records []models.SavingsRecord
	stats   Stats
}

// NewSession creates a session over an already-open driver. The session does
// not take ownership of the driver; the caller closes it.
func NewSession(drv driver.Driver, opts Options, logger *slog.Logger) *Session {
	if opts.LogFreq <= 0 {
		opts.LogFreq = 10
	}
	if opts.WaitTimeout <= 0 {
		opts.WaitTimeout = 10 * time.Second
	}
	if opts.ExhaustedPolicy == "" {
		opts.ExhaustedPolicy = PolicyAbort
	}

	return &Session{
		drv:    drv,
		opts:   opts,
		parser: parser.NewParser(),
		filter: filter.NewFilter(opts.Agency),
		log:    logger,
	}
}

// Run scrapes every page of the table and returns the records in scrape
// order. On an abort the records accumulated so far are returned alongside
// the error.
func (s *Session) Run(ctx context.Context) ([]models.SavingsRecord, Stats, error) {
	if s.opts.StartURL == "" {
		return nil, s.stats, errors.New("start URL is required")
	}

	if err := s.openStart(); err != nil {
		return nil, s.stats, &NavigationError{URL: s.opts.StartURL, Err: err}
	}

	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return s.records, s.stats, err
		}

		batch, err := s.scrapePageWithRetry(page)
		switch {
		case err != nil && page == 1:
			// Without page 1 the run is worthless.
			return nil, s.stats, err
		case err != nil:
			exhausted := &ExtractionExhausted{Page: page, Attempts: s.opts.MaxRetries + 1, Err: err}
			if s.opts.ExhaustedPolicy != PolicySkip {
				s.stats.Pages = page
				return s.records, s.stats, exhausted
			}
			s.log.Warn("page exhausted its retry budget, skipping", "page", page, "error", err)
		default:
			// The batch lands as one unit: a page contributes all of its
			// parsed rows or none.
			s.records = append(s.records, batch...)
		}

		s.stats.Pages = page
		s.stats.Records = len(s.records)

		if s.opts.MaxResults > 0 && len(s.records) >= s.opts.MaxResults {
			s.records = s.records[:s.opts.MaxResults]
			s.stats.Records = len(s.records)
			s.log.Info("reached max results, stopping early", "records", s.stats.Records)
			break
		}

		if page%s.opts.LogFreq == 0 {
			s.log.Info("scrape progress", "page", page, "records", len(s.records))
		}

		if !s.hasNextPage() {
			break
		}
		if err := s.drv.Click(s.opts.Selectors.Next); err != nil {
			return s.records, s.stats, fmt.Errorf("failed to advance past page %d: %w", page, err)
		}
	}

	s.log.Info("scrape complete",
		"pages", s.stats.Pages,
		"records", s.stats.Records,
		"rows_dropped", s.stats.RowsDropped)

	return s.records, s.stats, nil
}

// openStart navigates to the start URL and reveals the full contract table.
func (s *Session) openStart() error {
	navigate := func() error { return s.drv.Navigate(s.opts.StartURL) }
	notify := func(err error, _ time.Duration) {
		s.stats.Retries++
		s.log.Warn("navigation failed, retrying", "url", s.opts.StartURL, "error", err)
	}
	if err := retryImmediate(navigate, s.opts.MaxRetries, notify); err != nil {
		return err
	}

	if s.opts.Selectors.ViewAllText != "" {
		if err := s.drv.ClickText("button", s.opts.Selectors.ViewAllText); err != nil {
			return fmt.Errorf("could not find %q button: %w", s.opts.Selectors.ViewAllText, err)
		}
	}
	return nil
}

// scrapePageWithRetry runs the wait-render-parse cycle for one page under the
// retry budget. The whole cycle is redone on failure so a half-extracted page
// never leaks into the accumulator.
func (s *Session) scrapePageWithRetry(page int) ([]models.SavingsRecord, error) {
	var batch []models.SavingsRecord

	op := func() error {
		var err error
		batch, err = s.scrapePage(page)
		return err
	}
	notify := func(err error, _ time.Duration) {
		s.stats.Retries++
		s.log.Warn("page attempt failed, retrying", "page", page, "error", err)
	}

	if err := retryImmediate(op, s.opts.MaxRetries, notify); err != nil {
		return nil, err
	}
	return batch, nil
}

// scrapePage waits for the table to render, snapshots the DOM and extracts
// every row of the current page, detail popups included.
func (s *Session) scrapePage(page int) ([]models.SavingsRecord, error) {
	if err := s.drv.WaitVisible(s.opts.Selectors.Row, s.opts.WaitTimeout); err != nil {
		return nil, &RenderTimeout{Page: page, Err: err}
	}

	snapshot, err := s.drv.HTML()
	if err != nil {
		return nil, fmt.Errorf("page %d snapshot: %w", page, err)
	}

	seeds, err := s.parser.ParseTable(snapshot)
	if err != nil {
		// An absent table means the render check raced ahead of the content.
		return nil, &RenderTimeout{Page: page, Err: err}
	}
	seeds = s.filter.Apply(seeds)

	batch := make([]models.SavingsRecord, 0, len(seeds))
	for _, seed := range seeds {
		rec, err := s.scrapeRow(page, seed)
		if err != nil {
			// Row-level isolation: the rest of the page still contributes.
			s.log.Warn("dropping row", "page", page, "row", seed.Index, "error", err)
			s.stats.RowsDropped++
			continue
		}
		batch = append(batch, rec)
	}

	return batch, nil
}

// scrapeRow clicks a table row open, parses its detail popup and closes it
// again.
func (s *Session) scrapeRow(page int, seed parser.RowSeed) (models.SavingsRecord, error) {
	rec := models.SavingsRecord{
		Agency:     seed.Agency,
		URL:        seed.URL,
		PIID:       seed.PIID,
		ModNumber:  seed.ModNumber,
		PageNumber: page,
	}

	if err := s.drv.ClickNth(s.opts.Selectors.Row, seed.Index); err != nil {
		return rec, fmt.Errorf("open detail popup: %w", err)
	}

	if err := s.drv.WaitVisible(s.opts.Selectors.Popup, s.opts.WaitTimeout); err != nil {
		s.closePopup()
		return rec, fmt.Errorf("detail popup did not render: %w", err)
	}

	snapshot, err := s.drv.HTML()
	if err != nil {
		s.closePopup()
		return rec, fmt.Errorf("popup snapshot: %w", err)
	}

	detail, err := s.parser.ParsePopup(snapshot)
	if err != nil {
		s.closePopup()
		return rec, fmt.Errorf("parse popup: %w", err)
	}

	if err := s.closePopup(); err != nil {
		// The record is complete; a stuck popup will surface on the next row.
		s.log.Warn("failed to close detail popup", "page", page, "row", seed.Index, "error", err)
	}

	rec.BusinessName = detail.BusinessName
	rec.ClaimedSavings = detail.ClaimedSavings
	rec.TotalContract = detail.TotalContract
	rec.Description = detail.Description
	return rec, nil
}

func (s *Session) closePopup() error {
	return s.drv.Click(s.opts.Selectors.PopupClose)
}

// hasNextPage decides whether a further page exists. Absence of the next
// control is not taken as authoritative right away: it could be a rendering
// gap rather than true completion, so it is re-checked with the same bounded
// wait up to the retry budget before the terminal page is declared.
func (s *Session) hasNextPage() bool {
	for attempt := 0; ; attempt++ {
		visible, err := s.drv.Visible(s.opts.Selectors.Next)
		if err == nil && visible {
			return true
		}
		if attempt >= s.opts.MaxRetries {
			return false
		}
		if err := s.drv.WaitVisible(s.opts.Selectors.Next, s.opts.WaitTimeout); err == nil {
			return true
		}
	}
}
