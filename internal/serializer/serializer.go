// Package serializer writes a table.Table out as CSV or XLSX into memory.
// It never touches the filesystem; the caller owns delivery of the bytes.
package serializer

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"sweeper/internal/format"
	"sweeper/internal/table"
)

// ErrNoColumns is wrapped by a SerializeError for a table without columns.
var ErrNoColumns = errors.New("table has no columns")

// Output is a serialized table ready for delivery.
type Output struct {
	Data     []byte
	MIME     string
	FileName string
}

// Options tunes the writers. The zero value writes plain comma-separated
// UTF-8 and a workbook with a single "Sheet1".
type Options struct {
	// Comma is the CSV delimiter; zero means ','.
	Comma rune
	// BOM prefixes CSV output with a UTF-8 byte order mark, which some
	// spreadsheet applications need to detect the encoding.
	BOM bool
	// Sheet names the worksheet of XLSX output.
	Sheet string
}

// Writer encodes a table in one format.
type Writer interface {
	Write(w io.Writer, t *table.Table) error
}

// ForFormat returns the writer for f.
func ForFormat(f format.Format, opt Options) (Writer, error) {
	switch f {
	case format.CSV:
		return csvWriter{comma: opt.Comma, bom: opt.BOM}, nil
	case format.XLSX:
		sheet := opt.Sheet
		if sheet == "" {
			sheet = defaultSheet
		}
		return xlsxWriter{sheet: sheet}, nil
	}
	return nil, fmt.Errorf("%w: %q", format.ErrUnsupported, f)
}

// Serializer turns tables into Output values.
type Serializer struct{ opt Options }

// New returns a Serializer using opt.
func New(opt Options) *Serializer { return &Serializer{opt: opt} }

// Serialize encodes t as target with default options. source is the name of
// the file the table came from; the output name swaps its extension.
func Serialize(t *table.Table, target format.Format, source string) (Output, error) {
	return New(Options{}).Serialize(t, target, source)
}

// Serialize encodes t as target. The header row is always written.
func (s *Serializer) Serialize(t *table.Table, target format.Format, source string) (Output, error) {
	if t == nil || t.Width() == 0 {
		return Output{}, &SerializeError{File: source, Format: target, Err: ErrNoColumns}
	}
	w, err := ForFormat(target, s.opt)
	if err != nil {
		return Output{}, &SerializeError{File: source, Format: target, Err: err}
	}

	var buf bytes.Buffer
	if err := w.Write(&buf, t); err != nil {
		return Output{}, &SerializeError{File: source, Format: target, Err: err}
	}
	return Output{
		Data:     buf.Bytes(),
		MIME:     target.MIME(),
		FileName: format.OutputName(source, target),
	}, nil
}

// SerializeError reports a table that could not be written.
type SerializeError struct {
	File   string
	Format format.Format
	Err    error
}

func (e *SerializeError) Error() string {
	return fmt.Sprintf("serialize %s as %s: %v", e.File, e.Format, e.Err)
}

func (e *SerializeError) Unwrap() error { return e.Err }

// FormatCell renders a cell as text: missing is empty, floats use the
// shortest representation that parses back to the same value, without an
// exponent for ordinary magnitudes.
func FormatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return formatFloat(x)
	case float32:
		return formatFloat(float64(x))
	case bool:
		if x {
			return "True"
		}
		return "False"
	}
	return fmt.Sprint(v)
}

func formatFloat(f float64) string {
	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
