package parser

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tableHTML(rows ...string) string {
	var b strings.Builder
	b.WriteString("<html><body><table>")
	b.WriteString("<tr><th>Agency</th><th>Uploaded</th><th>Value</th><th>Link</th></tr>")
	for _, row := range rows {
		b.WriteString(row)
	}
	b.WriteString("</table></body></html>")
	return b.String()
}

func rowHTML(agency, href string) string {
	link := ""
	if href != "" {
		link = fmt.Sprintf(`<a href="%s">FPDS</a>`, href)
	}
	return fmt.Sprintf("<tr><td>%s</td><td>1/15/2025</td><td>$1,000</td><td>%s</td></tr>", agency, link)
}

func TestParseTable(t *testing.T) {
	html := tableHTML(
		rowHTML("CONSUMER FINANCIAL PROTECTION BUREAU", "https://www.fpds.gov/view?agencyID=9531&PIID=95332225F0011&modNumber=P00003"),
		rowHTML("  DEPARTMENT   OF EDUCATION ", "https://www.fpds.gov/view?PIID=91990023C0014&modNumber=1"),
		rowHTML("GENERAL SERVICES ADMINISTRATION", ""),
	)

	seeds, err := NewParser().ParseTable(html)
	require.NoError(t, err)
	require.Len(t, seeds, 3)

	assert.Equal(t, 1, seeds[0].Index)
	assert.Equal(t, "CONSUMER FINANCIAL PROTECTION BUREAU", seeds[0].Agency)
	assert.Equal(t, "95332225F0011", seeds[0].PIID)
	assert.Equal(t, "P00003", seeds[0].ModNumber)

	// Whitespace runs collapse.
	assert.Equal(t, 2, seeds[1].Index)
	assert.Equal(t, "DEPARTMENT OF EDUCATION", seeds[1].Agency)
	assert.Equal(t, "91990023C0014", seeds[1].PIID)

	// A row without an FPDS link still parses, just without identifiers.
	assert.Equal(t, 3, seeds[2].Index)
	assert.Empty(t, seeds[2].URL)
	assert.Empty(t, seeds[2].PIID)
	assert.Empty(t, seeds[2].ModNumber)
}

func TestParseTableNoTable(t *testing.T) {
	_, err := NewParser().ParseTable("<html><body><div>loading...</div></body></html>")
	require.ErrorIs(t, err, ErrNoTable)
}

func TestParseTableIdempotent(t *testing.T) {
	html := tableHTML(
		rowHTML("CONSUMER FINANCIAL PROTECTION BUREAU", "https://www.fpds.gov/view?PIID=A1&modNumber=0"),
		rowHTML("DEPARTMENT OF LABOR", "https://www.fpds.gov/view?PIID=B2&modNumber=3"),
	)

	p := NewParser()
	first, err := p.ParseTable(html)
	require.NoError(t, err)
	second, err := p.ParseTable(html)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestParsePopup(t *testing.T) {
	tests := []struct {
		name         string
		html         string
		wantBusiness string
		wantClaimed  *float64
		wantTotal    float64
		wantDesc     string
		wantErr      bool
	}{
		{
			name: "full popup",
			html: `<div class="fixed"><h3>ACME CONSULTING LLC</h3>` +
				`<p>Savings</p><p>$70,000</p>` +
				`<p>Total Contract Value</p><p>$250,000.50</p>` +
				`<p>Description</p><p>Management advisory services</p></div>`,
			wantBusiness: "ACME CONSULTING LLC",
			wantClaimed:  ptr(70000.0),
			wantTotal:    250000.50,
			wantDesc:     "Management advisory services",
		},
		{
			name: "popup without claimed savings",
			html: `<div class="fixed"><h3>BETA SYSTEMS INC</h3>` +
				`<p>$1,500,000</p><p>Termination for convenience</p></div>`,
			wantBusiness: "BETA SYSTEMS INC",
			wantClaimed:  nil,
			wantTotal:    1500000,
			wantDesc:     "Termination for convenience",
		},
		{
			name: "malformed claimed savings",
			html: `<div class="fixed"><h3>GAMMA CORP</h3>` +
				`<p>Savings</p><p>TBD</p>` +
				`<p>Total Contract Value</p><p>$10</p>` +
				`<p>Description</p><p>x</p></div>`,
			wantErr: true,
		},
		{
			name:    "missing title",
			html:    `<div class="fixed"><p>$10</p><p>x</p></div>`,
			wantErr: true,
		},
		{
			name:    "empty popup",
			html:    `<div class="fixed"><h3>DELTA LLC</h3></div>`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			detail, err := NewParser().ParsePopup("<html><body>" + tt.html + "</body></html>")
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantBusiness, detail.BusinessName)
			assert.Equal(t, tt.wantClaimed, detail.ClaimedSavings)
			assert.Equal(t, tt.wantTotal, detail.TotalContract)
			assert.Equal(t, tt.wantDesc, detail.Description)
		})
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected float64
		wantErr  bool
	}{
		{"dollars with commas", "$1,234,567.89", 1234567.89, false},
		{"plain number", "42", 42, false},
		{"surrounding whitespace", "  $70,000 \n", 70000, false},
		{"zero", "$0", 0, false},
		{"empty string", "", 0, true},
		{"not a number", "TBD", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseAmount(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func ptr(v float64) *float64 { return &v }
