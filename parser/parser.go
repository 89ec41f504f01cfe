package parser

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ErrNoTable is returned when the snapshot contains no contract table at all,
// which usually means the page has not finished rendering.
var ErrNoTable = errors.New("no table found in document")

// RowSeed is the part of a record visible in the table itself. Index is the
// row's position among all "table tr" elements (header included), so it can be
// handed back to the driver to click the same row.
type RowSeed struct {
	Index     int
	Agency    string
	URL       string
	PIID      string
	ModNumber string
}

// PopupDetail is the part of a record only visible in the row's detail popup.
type PopupDetail struct {
	BusinessName   string
	ClaimedSavings *float64
	TotalContract  float64
	Description    string
}

// Parser extracts savings records from HTML snapshots. Parsing is a pure
// function of the snapshot: the same HTML always yields the same result.
type Parser struct{}

// NewParser creates a new Parser instance.
func NewParser() *Parser {
	return &Parser{}
}

// ParseTable extracts one RowSeed per data row from the first table in the
// snapshot. The header row is skipped. Rows without cells are ignored.
func (p *Parser) ParseTable(htmlContent string) ([]RowSeed, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, ErrNoTable
	}

	var seeds []RowSeed
	table.Find("tr").Each(func(i int, row *goquery.Selection) {
		if i == 0 {
			// Header row.
			return
		}

		cells := row.Find("td")
		if cells.Length() == 0 {
			return
		}

		seed := RowSeed{
			Index:  i,
			Agency: cleanText(cells.Eq(0).Text()),
		}

		// The fourth cell links out to FPDS; the link's query string carries
		// the contract identifiers.
		if href, ok := cells.Eq(3).Find("a").First().Attr("href"); ok {
			seed.URL = href
			seed.PIID, seed.ModNumber = parseContractParams(href)
		}

		seeds = append(seeds, seed)
	})

	return seeds, nil
}

// ParsePopup extracts the detail fields from the popup shown after clicking a
// row. Popup structure differs between rows: most carry claimed savings, total
// contract value and a description, but some only report the total.
func (p *Parser) ParsePopup(htmlContent string) (PopupDetail, error) {
	var detail PopupDetail

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return detail, fmt.Errorf("failed to parse HTML: %w", err)
	}

	title := doc.Find("div.fixed h3").First()
	if title.Length() == 0 {
		return detail, errors.New("popup title not found")
	}
	detail.BusinessName = cleanText(title.Text())

	ptags := doc.Find("div.fixed p")
	n := ptags.Length()
	switch {
	case n >= 6:
		claimed, err := parseAmount(ptags.Eq(n - 5).Text())
		if err != nil {
			return detail, fmt.Errorf("claimed savings: %w", err)
		}
		detail.ClaimedSavings = &claimed

		detail.TotalContract, err = parseAmount(ptags.Eq(n - 3).Text())
		if err != nil {
			return detail, fmt.Errorf("total contract: %w", err)
		}
		detail.Description = cleanText(ptags.Eq(n - 1).Text())

	case n >= 2:
		detail.TotalContract, err = parseAmount(ptags.Eq(n - 2).Text())
		if err != nil {
			return detail, fmt.Errorf("total contract: %w", err)
		}
		detail.Description = cleanText(ptags.Eq(n - 1).Text())

	default:
		return detail, fmt.Errorf("unexpected popup structure: %d paragraphs", n)
	}

	return detail, nil
}

// parseContractParams pulls the PIID and modNumber query parameters out of an
// FPDS link.
func parseContractParams(href string) (piid, modNumber string) {
	u, err := url.Parse(href)
	if err != nil {
		return "", ""
	}
	q := u.Query()
	return q.Get("PIID"), q.Get("modNumber")
}

// parseAmount parses a currency string like "$1,234,567.89" into a float.
func parseAmount(text string) (float64, error) {
	s := cleanText(text)
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, errors.New("empty amount")
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed amount %q", text)
	}
	return v, nil
}

// cleanText collapses whitespace runs and trims the result.
func cleanText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
