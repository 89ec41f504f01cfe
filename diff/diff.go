// Package diff compares and summarizes scrape files. Two runs are reconciled
// by PIID: rows appearing, disappearing, or changing between scrapes are what
// the daily workflow is actually after.
package diff

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"doge-savings-scraper/models"

	"github.com/jedib0t/go-pretty/v6/table"
)

// Pair is one record as seen in the new and the old scrape.
type Pair struct {
	New models.SavingsRecord
	Old models.SavingsRecord
}

// Report is the outcome of comparing two scrape files.
type Report struct {
	NewPath string
	OldPath string

	Added   []models.SavingsRecord
	Removed []models.SavingsRecord
	// Modified holds rows with changes beyond modNumber; those may be
	// substantive. ModNumberOnly holds rows where only modNumber moved, which
	// is common and lags in FPDS.
	Modified      []Pair
	ModNumberOnly []Pair
}

// LoadScrape reads a scrape CSV back into records. Columns are resolved by
// header name, so files from older versions with extra columns still load.
func LoadScrape(path string) ([]models.SavingsRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open scrape file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}
	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var records []models.SavingsRecord
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}

		rec := models.SavingsRecord{
			Agency:        field(row, "agency"),
			URL:           field(row, "url"),
			PIID:          field(row, "PIID"),
			ModNumber:     field(row, "modNumber"),
			BusinessName:  field(row, "business_name"),
			Description:   field(row, "description"),
			InternalID:    field(row, "internal_id"),
			USASavingsURL: field(row, "usa_savings_url"),
		}
		if s := field(row, "claimed_savings"); s != "" {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("bad claimed_savings %q: %w", s, err)
			}
			rec.ClaimedSavings = &v
		}
		if s := field(row, "total_contract"); s != "" {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("bad total_contract %q: %w", s, err)
			}
			rec.TotalContract = v
		}

		records = append(records, rec)
	}

	return records, nil
}

// Compare diffs two record sets keyed on PIID.
func Compare(newRecs, oldRecs []models.SavingsRecord) *Report {
	report := &Report{}

	oldByPIID := make(map[string]models.SavingsRecord, len(oldRecs))
	for _, rec := range oldRecs {
		oldByPIID[rec.PIID] = rec
	}
	newByPIID := make(map[string]models.SavingsRecord, len(newRecs))
	for _, rec := range newRecs {
		newByPIID[rec.PIID] = rec
	}

	for _, rec := range newRecs {
		old, ok := oldByPIID[rec.PIID]
		if !ok {
			report.Added = append(report.Added, rec)
			continue
		}
		switch {
		case !sameCore(rec, old):
			report.Modified = append(report.Modified, Pair{New: rec, Old: old})
		case rec.ModNumber != old.ModNumber:
			report.ModNumberOnly = append(report.ModNumberOnly, Pair{New: rec, Old: old})
		}
	}

	for _, rec := range oldRecs {
		if _, ok := newByPIID[rec.PIID]; !ok {
			report.Removed = append(report.Removed, rec)
		}
	}

	return report
}

// sameCore compares the fields whose change is substantive. The url,
// internal_id and usa_savings_url columns are derived, and modNumber churn is
// tracked separately.
func sameCore(a, b models.SavingsRecord) bool {
	return a.Agency == b.Agency &&
		a.BusinessName == b.BusinessName &&
		a.Description == b.Description &&
		a.TotalContract == b.TotalContract &&
		sameClaimed(a.ClaimedSavings, b.ClaimedSavings)
}

func sameClaimed(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Render writes the report as a sequence of tables.
func (r *Report) Render(w io.Writer) {
	fmt.Fprintln(w, "Scrape diff:")
	fmt.Fprintln(w, "  new =", r.NewPath)
	fmt.Fprintln(w, "  old =", r.OldPath)
	fmt.Fprintln(w)

	renderRecords(w, fmt.Sprintf("Rows added: %d", len(r.Added)), r.Added)
	renderRecords(w, fmt.Sprintf("Rows removed: %d", len(r.Removed)), r.Removed)
	renderPairs(w, fmt.Sprintf("Rows modified beyond modNumber: %d", len(r.Modified)), r.Modified)
	renderPairs(w, fmt.Sprintf("Rows with only modNumber changed: %d", len(r.ModNumberOnly)), r.ModNumberOnly)
}

func renderRecords(w io.Writer, title string, records []models.SavingsRecord) {
	fmt.Fprintln(w, title)
	if len(records) == 0 {
		fmt.Fprintln(w)
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"PIID", "modNumber", "Business", "Claimed savings", "Total contract", "Description"})
	for _, rec := range records {
		t.AppendRow(recordRow("", rec))
	}
	t.Render()
	fmt.Fprintln(w)
}

func renderPairs(w io.Writer, title string, pairs []Pair) {
	fmt.Fprintln(w, title)
	if len(pairs) == 0 {
		fmt.Fprintln(w)
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Version", "PIID", "modNumber", "Business", "Claimed savings", "Total contract", "Description"})
	for _, pair := range pairs {
		t.AppendRow(recordRow("new", pair.New))
		t.AppendRow(recordRow("old", pair.Old))
		t.AppendSeparator()
	}
	t.Render()
	fmt.Fprintln(w)
}

func recordRow(version string, rec models.SavingsRecord) table.Row {
	claimed := ""
	if rec.ClaimedSavings != nil {
		claimed = fmt.Sprintf("%.2f", *rec.ClaimedSavings)
	}
	desc := rec.Description
	if len(desc) > 60 {
		desc = desc[:57] + "..."
	}

	row := table.Row{rec.PIID, rec.ModNumber, rec.BusinessName, claimed, fmt.Sprintf("%.2f", rec.TotalContract), desc}
	if version != "" {
		row = append(table.Row{version}, row...)
	}
	return row
}

// Summarize prints the totals for a single scrape file.
func Summarize(path string, w io.Writer) error {
	records, err := LoadScrape(path)
	if err != nil {
		return err
	}

	var savings, ceiling float64
	for _, rec := range records {
		if rec.ClaimedSavings != nil {
			savings += *rec.ClaimedSavings
		}
		ceiling += rec.TotalContract
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("Summary of %s", path)
	t.AppendRow(table.Row{"rows", len(records)})
	t.AppendRow(table.Row{"claimed savings", fmt.Sprintf("%.2f", savings)})
	t.AppendRow(table.Row{"total ceiling", fmt.Sprintf("%.2f", ceiling)})
	if ceiling > 0 {
		t.AppendRow(table.Row{"claimed saving percent", fmt.Sprintf("%.3f%%", savings/ceiling*100)})
	}
	t.Render()
	fmt.Fprintln(w)
	return nil
}

// LatestPair returns the newest scrape file in dir and the one baseIndex
// steps behind it in reverse-chronological order. baseIndex is clamped to the
// oldest available file.
func LatestPair(dir string, baseIndex int) (newest, base string, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", "", fmt.Errorf("failed to read data directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	if len(names) < 2 {
		return "", "", fmt.Errorf("need at least two scrape files in %s, found %d", dir, len(names))
	}

	// File names embed the run timestamp, so lexical order is chronological.
	sort.Sort(sort.Reverse(sort.StringSlice(names)))

	if baseIndex < 1 {
		baseIndex = 1
	}
	if baseIndex >= len(names) {
		baseIndex = len(names) - 1
	}

	return filepath.Join(dir, names[0]), filepath.Join(dir, names[baseIndex]), nil
}
