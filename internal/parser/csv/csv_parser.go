// Package csv reads comma-separated input into a table.Table. Input bytes are
// decoded through golang.org/x/text before they reach encoding/csv, so a UTF-8
// BOM is dropped, UTF-16 input with a BOM is transcoded, and legacy charsets
// can be named explicitly.
package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"sweeper/internal/table"
)

// Options configures the CSV parser. The zero value reads UTF-8, comma
// delimited input with pandas-style missing-value spellings.
type Options struct {
	// Comma specifies the field delimiter. When zero, ',' is used.
	Comma rune

	// TrimSpace trims leading/trailing spaces from header and field values.
	TrimSpace bool

	// LazyQuotes allows a quote to appear in an unquoted field and a
	// non-doubled quote inside a quoted field.
	LazyQuotes bool

	// Encoding names the input charset ("windows-1252", "iso-8859-2", ...).
	// Empty means UTF-8. A BOM in the input always wins.
	Encoding string

	// Table controls missing-value spellings.
	Table table.Options
}

// Parser parses CSV input according to Options. It holds no per-input state
// and may be reused.
type Parser struct{ opt Options }

// NewParser constructs a Parser with the provided Options.
func NewParser(opt Options) *Parser { return &Parser{opt: opt} }

// Parse reads all of r and returns the resulting table. The first record is
// the header. Blank lines are skipped; rows shorter than the header are
// padded with missing cells; a row longer than the header fails the parse.
func (p *Parser) Parse(r io.Reader) (*table.Table, error) {
	dec, err := decoderFor(p.opt.Encoding)
	if err != nil {
		return nil, err
	}

	cr := csv.NewReader(transform.NewReader(r, dec))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = p.opt.LazyQuotes
	if p.opt.Comma != 0 {
		cr.Comma = p.opt.Comma
	}

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("no columns to parse from input")
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	header = p.clean(header)

	var rows [][]string
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		if len(row) > len(header) {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("line %d: expected %d fields, saw %d", line, len(header), len(row))
		}
		rows = append(rows, p.clean(row))
	}

	return table.FromStrings(header, rows, p.opt.Table)
}

func (p *Parser) clean(row []string) []string {
	if !p.opt.TrimSpace {
		return row
	}
	for i, v := range row {
		row[i] = strings.TrimSpace(v)
	}
	return row
}

// decoderFor returns a decoder for the named charset wrapped in a BOM
// override, so a UTF-8 or UTF-16 BOM selects the encoding and is removed.
func decoderFor(name string) (transform.Transformer, error) {
	var enc encoding.Encoding = unicode.UTF8
	if name = strings.TrimSpace(name); name != "" {
		e, err := htmlindex.Get(name)
		if err != nil {
			return nil, fmt.Errorf("unknown encoding %q: %w", name, err)
		}
		enc = e
	}
	return unicode.BOMOverride(enc.NewDecoder()), nil
}
