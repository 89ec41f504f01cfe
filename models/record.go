package models

import "strconv"

// SavingsRecord represents one contract row scraped from the savings table.
// The detail-popup fields (business name, amounts, description) are filled in
// by a second extraction step after the row itself is parsed.
type SavingsRecord struct {
	Agency         string
	URL            string // FPDS link found in the row, if any
	PIID           string
	ModNumber      string
	BusinessName   string
	ClaimedSavings *float64 // nil when the popup only reports a total
	TotalContract  float64
	Description    string
	InternalID     string // USASpending generated internal id
	USASavingsURL  string

	PageNumber int // page the row was scraped from, not serialized
}

// Columns is the CSV header in the fixed output order. Row values must be
// emitted in exactly this order.
func Columns() []string {
	return []string{
		"agency",
		"url",
		"PIID",
		"modNumber",
		"business_name",
		"claimed_savings",
		"total_contract",
		"description",
		"internal_id",
		"usa_savings_url",
	}
}

// CSVRow serializes the record in the Columns order. A nil ClaimedSavings
// becomes an empty cell.
func (r SavingsRecord) CSVRow() []string {
	claimed := ""
	if r.ClaimedSavings != nil {
		claimed = strconv.FormatFloat(*r.ClaimedSavings, 'f', -1, 64)
	}

	return []string{
		r.Agency,
		r.URL,
		r.PIID,
		r.ModNumber,
		r.BusinessName,
		claimed,
		strconv.FormatFloat(r.TotalContract, 'f', -1, 64),
		r.Description,
		r.InternalID,
		r.USASavingsURL,
	}
}
