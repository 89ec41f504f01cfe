package filter

import (
	"strings"

	"doge-savings-scraper/parser"
)

// Filter keeps only the table rows belonging to the configured agency.
type Filter struct {
	agency string
}

// NewFilter creates a new Filter instance. An empty agency keeps every row.
func NewFilter(agency string) *Filter {
	return &Filter{
		agency: agency,
	}
}

// Apply filters row seeds by agency.
func (f *Filter) Apply(seeds []parser.RowSeed) []parser.RowSeed {
	if f.agency == "" {
		return seeds
	}

	var filtered []parser.RowSeed
	for _, seed := range seeds {
		if f.matches(seed) {
			filtered = append(filtered, seed)
		}
	}

	return filtered
}

// matches checks if a row belongs to the configured agency.
func (f *Filter) matches(seed parser.RowSeed) bool {
	return strings.EqualFold(seed.Agency, f.agency)
}
