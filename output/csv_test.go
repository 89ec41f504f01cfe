package output

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"doge-savings-scraper/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileName(t *testing.T) {
	ts := time.Date(2025, 3, 9, 14, 30, 5, 0, time.UTC)
	assert.Equal(t, "doge_savings_cfpb_2025-03-09__14-30-05.csv", FileName(ts))
}

func TestWriteCSV(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	claimed := 70000.0
	records := []models.SavingsRecord{
		{
			Agency:         "CONSUMER FINANCIAL PROTECTION BUREAU",
			URL:            "https://www.fpds.gov/view?PIID=P1&modNumber=0",
			PIID:           "P1",
			ModNumber:      "0",
			BusinessName:   "ACME, INC.",
			ClaimedSavings: &claimed,
			TotalContract:  250000.5,
			Description:    "management advisory services",
			InternalID:     "CONT_AWD_P1",
			USASavingsURL:  "https://www.usaspending.gov/award/CONT_AWD_P1",
		},
		{
			Agency:        "CONSUMER FINANCIAL PROTECTION BUREAU",
			PIID:          "P2",
			BusinessName:  "BETA",
			TotalContract: 100,
		},
	}

	ts := time.Date(2025, 3, 9, 14, 30, 5, 0, time.UTC)
	path, err := WriteCSV(dir, records, ts)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, FileName(ts)), path)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, models.Columns(), rows[0])
	assert.Equal(t, []string{
		"CONSUMER FINANCIAL PROTECTION BUREAU",
		"https://www.fpds.gov/view?PIID=P1&modNumber=0",
		"P1",
		"0",
		"ACME, INC.",
		"70000",
		"250000.5",
		"management advisory services",
		"CONT_AWD_P1",
		"https://www.usaspending.gov/award/CONT_AWD_P1",
	}, rows[1])

	// A record without a claimed value writes an empty cell.
	assert.Equal(t, "", rows[2][5])
	assert.Equal(t, "100", rows[2][6])
}

func TestWriteCSVEmptyRun(t *testing.T) {
	dir := t.TempDir()
	path, err := WriteCSV(dir, nil, time.Now())
	require.NoError(t, err)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, models.Columns(), rows[0])
}
