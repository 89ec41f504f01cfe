// Package sheets is an optional second sink: a finished scrape can be pushed
// to a Google spreadsheet for people who'd rather browse there than in CSVs.
package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"regexp"

	"doge-savings-scraper/models"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

var spreadsheetIDPattern = regexp.MustCompile(`/d/([a-zA-Z0-9-_]+)`)

// ExtractSpreadsheetID pulls the spreadsheet id out of a docs.google.com URL.
func ExtractSpreadsheetID(url string) string {
	m := spreadsheetIDPattern.FindStringSubmatch(url)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}

// Writer appends scrape runs to a spreadsheet, one sheet per run.
type Writer struct {
	service       *sheets.Service
	spreadsheetID string
}

// NewWriter creates a writer from a spreadsheet URL and a service-account
// credentials file.
func NewWriter(ctx context.Context, spreadsheetURL, credentialsPath string) (*Writer, error) {
	spreadsheetID := ExtractSpreadsheetID(spreadsheetURL)
	if spreadsheetID == "" {
		return nil, fmt.Errorf("could not extract spreadsheet id from %q", spreadsheetURL)
	}

	credsJSON, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	var creds map[string]interface{}
	if err := json.Unmarshal(credsJSON, &creds); err != nil {
		return nil, fmt.Errorf("invalid credentials JSON: %w", err)
	}
	if creds["type"] != "service_account" {
		return nil, fmt.Errorf("credentials must be a service account JSON file, got type: %v", creds["type"])
	}

	service, err := sheets.NewService(ctx, option.WithCredentialsJSON(credsJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &Writer{
		service:       service,
		spreadsheetID: spreadsheetID,
	}, nil
}

// AppendRun creates a sheet with the given name and writes the records into
// it, header first, in record order. It returns a URL opening that sheet.
func (w *Writer) AppendRun(ctx context.Context, sheetName string, records []models.SavingsRecord) (string, error) {
	batch := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{
			{
				AddSheet: &sheets.AddSheetRequest{
					Properties: &sheets.SheetProperties{Title: sheetName},
				},
			},
		},
	}
	resp, err := w.service.Spreadsheets.BatchUpdate(w.spreadsheetID, batch).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to create sheet %q: %w", sheetName, err)
	}
	sheetID := resp.Replies[0].AddSheet.Properties.SheetId

	var values [][]interface{}
	header := make([]interface{}, 0, len(models.Columns()))
	for _, name := range models.Columns() {
		header = append(header, name)
	}
	values = append(values, header)

	for _, rec := range records {
		row := make([]interface{}, 0, len(models.Columns()))
		for _, cell := range rec.CSVRow() {
			row = append(row, cell)
		}
		values = append(values, row)
	}

	_, err = w.service.Spreadsheets.Values.
		Update(w.spreadsheetID, fmt.Sprintf("%s!A1", sheetName), &sheets.ValueRange{Values: values}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("failed to write records to sheet %q: %w", sheetName, err)
	}

	return fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s/edit#gid=%d", w.spreadsheetID, sheetID), nil
}
