// Package xlsx reads OOXML spreadsheets into a table.Table using excelize.
package xlsx

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"sweeper/internal/table"
)

// Options configures the spreadsheet parser.
type Options struct {
	// Sheet names the worksheet to read. Empty selects the first sheet.
	Sheet string

	// Table controls missing-value spellings.
	Table table.Options
}

// Parser reads one worksheet per call. It may be reused.
type Parser struct{ opt Options }

// NewParser constructs a Parser with the provided Options.
func NewParser(opt Options) *Parser { return &Parser{opt: opt} }

// Parse opens the workbook in r and returns the selected sheet as a table.
// Cells are read as raw values so number formats do not leak into the data
// (dates arrive as serial numbers). Blank rows above the header and at the
// end of the sheet are dropped; blank rows between data rows are kept as
// all-missing rows.
func (p *Parser) Parse(r io.Reader) (*table.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := p.opt.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	raw, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	start, end := 0, len(raw)
	for start < end && blank(raw[start]) {
		start++
	}
	for end > start && blank(raw[end-1]) {
		end--
	}
	rows := raw[start:end]
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q: no columns to parse", sheet)
	}
	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}

	// excelize trims trailing empty cells, so a header can be narrower than
	// the data below it. Widen it; the blanks become "Unnamed: N".
	header := make([]string, width)
	copy(header, rows[0])
	return table.FromStrings(header, rows[1:], p.opt.Table)
}

func blank(row []string) bool {
	for _, c := range row {
		if c != "" {
			return false
		}
	}
	return true
}
