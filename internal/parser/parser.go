// Package parser turns raw file bytes into a table.Table. The set of formats
// is closed: ForFormat dispatches on a format.Format tag to the CSV or XLSX
// implementation, and every failure is reported as a *ParseError carrying the
// file name.
package parser

import (
	"bytes"
	"fmt"
	"io"

	"sweeper/internal/format"
	csvparser "sweeper/internal/parser/csv"
	xlsxparser "sweeper/internal/parser/xlsx"
	"sweeper/internal/table"
)

// Parser reads a whole input into a table.
type Parser interface {
	Parse(r io.Reader) (*table.Table, error)
}

// Options carries the settings of both implementations; each uses the fields
// that apply to it.
type Options struct {
	// Comma is the CSV delimiter; zero means ','.
	Comma rune
	// TrimSpace trims CSV header and field values.
	TrimSpace bool
	// LazyQuotes relaxes CSV quote handling.
	LazyQuotes bool
	// Encoding names a legacy CSV charset; empty means UTF-8.
	Encoding string
	// Sheet selects the worksheet; empty means the first one.
	Sheet string
	// Table controls missing-value spellings for both formats.
	Table table.Options
}

// ForFormat returns the parser for f.
func ForFormat(f format.Format, opt Options) (Parser, error) {
	switch f {
	case format.CSV:
		return csvparser.NewParser(csvparser.Options{
			Comma:      opt.Comma,
			TrimSpace:  opt.TrimSpace,
			LazyQuotes: opt.LazyQuotes,
			Encoding:   opt.Encoding,
			Table:      opt.Table,
		}), nil
	case format.XLSX:
		return xlsxparser.NewParser(xlsxparser.Options{
			Sheet: opt.Sheet,
			Table: opt.Table,
		}), nil
	}
	return nil, fmt.Errorf("%w: %q", format.ErrUnsupported, f)
}

// Parse parses data, read from the file called name, as format f.
func Parse(name string, data []byte, f format.Format, opt Options) (*table.Table, error) {
	p, err := ForFormat(f, opt)
	if err != nil {
		return nil, &ParseError{File: name, Format: f, Err: err}
	}
	t, err := p.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, &ParseError{File: name, Format: f, Err: err}
	}
	return t, nil
}

// ParseError reports input that could not be read as its declared format.
type ParseError struct {
	File   string
	Format format.Format
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s as %s: %v", e.File, e.Format, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
