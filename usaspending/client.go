// Package usaspending resolves contract PIIDs against the USASpending search
// API so each record can link to its award page.
package usaspending

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"doge-savings-scraper/models"

	"github.com/go-resty/resty/v2"
)

const (
	// DefaultBaseURL is the public USASpending API host.
	DefaultBaseURL = "https://api.usaspending.gov"

	searchPath   = "/api/v2/search/spending_by_award/"
	awardBaseURL = "https://www.usaspending.gov/award/"
)

// ErrAwardNotFound is returned when no award-code group matches a PIID.
var ErrAwardNotFound = errors.New("award not found")

// awardCodeGroups are tried in order; plain contracts first, then IDVs.
var awardCodeGroups = [][]string{
	{"A", "B", "C", "D"},
	{"IDV_A", "IDV_B", "IDV_B_A", "IDV_B_B", "IDV_B_C", "IDV_C", "IDV_D", "IDV_E"},
}

type searchRequest struct {
	Filters searchFilters `json:"filters"`
	Fields  []string      `json:"fields"`
	Limit   int           `json:"limit"`
}

type searchFilters struct {
	TimePeriod     []timePeriod `json:"time_period"`
	AwardTypeCodes []string     `json:"award_type_codes"`
	AwardIDs       []string     `json:"award_ids"`
}

type timePeriod struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type searchResponse struct {
	Results []struct {
		GeneratedInternalID string `json:"generated_internal_id"`
	} `json:"results"`
}

// Client looks up awards on the USASpending search API.
type Client struct {
	http *resty.Client
	log  *slog.Logger
}

// NewClient creates a client against the given API host.
func NewClient(baseURL string, logger *slog.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json, text/plain, */*").
		SetHeader("Origin", "https://www.usaspending.gov").
		SetHeader("Referer", "https://www.usaspending.gov/").
		SetHeader("X-Requested-With", "USASpendingFrontend")

	return &Client{
		http: httpClient,
		log:  logger,
	}
}

// LookupInternalID resolves a PIID to USASpending's generated internal award
// id, trying each award-code group until one matches.
func (c *Client) LookupInternalID(ctx context.Context, piid string) (string, error) {
	for _, codes := range awardCodeGroups {
		body := searchRequest{
			Filters: searchFilters{
				TimePeriod: []timePeriod{
					{StartDate: "2007-10-01", EndDate: "2025-09-30"},
				},
				AwardTypeCodes: codes,
				AwardIDs:       []string{piid},
			},
			Fields: []string{"Award ID"},
			Limit:  1,
		}

		var result searchResponse
		resp, err := c.http.R().
			SetContext(ctx).
			SetBody(body).
			SetResult(&result).
			Post(searchPath)
		if err != nil {
			return "", fmt.Errorf("search POST failed: %w", err)
		}
		if resp.StatusCode() != 200 {
			return "", fmt.Errorf("bad status code on search POST: %d", resp.StatusCode())
		}

		if len(result.Results) == 1 {
			return result.Results[0].GeneratedInternalID, nil
		}
	}

	return "", fmt.Errorf("%w: %s", ErrAwardNotFound, piid)
}

// Enrich fills InternalID and USASavingsURL in place for every record with a
// PIID. Lookup failures are logged and leave the record untouched; progress
// is logged every logFreq records.
func (c *Client) Enrich(ctx context.Context, records []models.SavingsRecord, logFreq int) {
	if logFreq <= 0 {
		logFreq = 10
	}

	c.log.Info("resolving USASpending award ids", "records", len(records))

	for i := range records {
		if err := ctx.Err(); err != nil {
			c.log.Warn("enrichment cancelled", "resolved", i)
			return
		}
		if i%logFreq == 0 {
			c.log.Info("enrichment progress", "record", i+1, "total", len(records))
		}

		piid := records[i].PIID
		if piid == "" {
			continue
		}

		internalID, err := c.LookupInternalID(ctx, piid)
		if err != nil {
			c.log.Warn("couldn't resolve internal id", "piid", piid, "error", err)
			continue
		}

		records[i].InternalID = internalID
		records[i].USASavingsURL = awardBaseURL + internalID
	}
}
