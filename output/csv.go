// Package output writes finished scrapes to timestamped CSV files.
package output

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"doge-savings-scraper/models"
)

// filePrefix tags every scrape file so the data directory sorts
// chronologically by name.
const filePrefix = "doge_savings_cfpb_"

// timeTag is the timestamp layout embedded in file names.
const timeTag = "2006-01-02__15-04-05"

// FileName returns the scrape file name for a run that started at t.
func FileName(t time.Time) string {
	return filePrefix + t.Format(timeTag) + ".csv"
}

// WriteCSV writes the header line and one line per record, in record order,
// to a timestamped file under dir. It returns the path of the written file.
func WriteCSV(dir string, records []models.SavingsRecord, t time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(dir, FileName(t))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(models.Columns()); err != nil {
		return "", fmt.Errorf("failed to write header: %w", err)
	}
	for _, rec := range records {
		if err := w.Write(rec.CSVRow()); err != nil {
			return "", fmt.Errorf("failed to write record: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to flush output file: %w", err)
	}
	return path, nil
}
