package serializer

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"sweeper/internal/table"
)

const defaultSheet = "Sheet1"

type xlsxWriter struct {
	sheet string
}

func (xw xlsxWriter) Write(w io.Writer, t *table.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	if xw.sheet != defaultSheet {
		if err := f.SetSheetName(defaultSheet, xw.sheet); err != nil {
			return fmt.Errorf("name sheet: %w", err)
		}
	}
	sw, err := f.NewStreamWriter(xw.sheet)
	if err != nil {
		return fmt.Errorf("open sheet: %w", err)
	}

	names := t.Names()
	header := make([]any, len(names))
	for i, n := range names {
		header[i] = n
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, r := range t.Rows {
		row := make([]any, len(names))
		for j, n := range names {
			row[j] = cellValue(r[n])
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush sheet: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// cellValue keeps numbers, strings and booleans native so the workbook types
// them; anything else is written as its text form.
func cellValue(v any) any {
	switch v.(type) {
	case nil, string, float64, float32, bool,
		int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return v
	}
	return FormatCell(v)
}
