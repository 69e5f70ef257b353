package serializer

import (
	"encoding/csv"
	"fmt"
	"io"

	"sweeper/internal/table"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

type csvWriter struct {
	comma rune
	bom   bool
}

func (cw csvWriter) Write(w io.Writer, t *table.Table) error {
	if cw.bom {
		if _, err := w.Write(utf8BOM); err != nil {
			return fmt.Errorf("write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)
	if cw.comma != 0 {
		writer.Comma = cw.comma
	}

	names := t.Names()
	if err := writer.Write(names); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	record := make([]string, len(names))
	for i, r := range t.Rows {
		for j, n := range names {
			record[j] = FormatCell(r[n])
		}
		var err error
		if len(record) == 1 && record[0] == "" {
			err = writeEmptyField(writer, w)
		} else {
			err = writer.Write(record)
		}
		if err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// writeEmptyField writes a lone empty field as `""`. encoding/csv would emit
// a blank line, which readers skip.
func writeEmptyField(writer *csv.Writer, w io.Writer) error {
	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}
	nl := "\n"
	if writer.UseCRLF {
		nl = "\r\n"
	}
	_, err := io.WriteString(w, `""`+nl)
	return err
}
