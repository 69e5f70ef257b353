package table

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"sweeper/pkg/records"
)

// DefaultNullValues are the cell spellings read as missing unless
// Options.NoDefaultNA is set. The empty string is always missing.
var DefaultNullValues = []string{
	"NA", "N/A", "n/a", "NaN", "nan", "-NaN", "null", "NULL", "None", "#N/A", "<NA>",
}

// Options controls how raw string rows become a Table.
type Options struct {
	// NullValues are extra spellings treated as missing.
	NullValues []string

	// NoDefaultNA drops DefaultNullValues so only "" and NullValues are missing.
	NoDefaultNA bool
}

func (o Options) nullSet() map[string]struct{} {
	set := map[string]struct{}{"": {}}
	if !o.NoDefaultNA {
		for _, s := range DefaultNullValues {
			set[s] = struct{}{}
		}
	}
	for _, s := range o.NullValues {
		set[s] = struct{}{}
	}
	return set
}

// FromStrings builds a Table from a header row and raw string rows as read by
// a parser. Header names are made unique, short rows are padded with missing
// cells, null spellings become nil and each column is classified. A row wider
// than the header is an error.
func FromStrings(header []string, rows [][]string, opt Options) (*Table, error) {
	if len(header) == 0 {
		return nil, fmt.Errorf("no columns to parse")
	}
	names := UniqueHeaders(header)
	nulls := opt.nullSet()

	out := make([]records.Record, 0, len(rows))
	for i, row := range rows {
		if len(row) > len(names) {
			return nil, fmt.Errorf("data row %d: expected %d fields, saw %d", i+1, len(names), len(row))
		}
		rec := make(records.Record, len(names))
		for j, name := range names {
			if j >= len(row) {
				rec[name] = nil
				continue
			}
			if _, isNull := nulls[row[j]]; isNull {
				rec[name] = nil
				continue
			}
			rec[name] = row[j]
		}
		out = append(out, rec)
	}

	t := &Table{Columns: make([]Column, len(names)), Rows: out}
	for i, name := range names {
		t.Columns[i] = Column{Name: name, Kind: inferKind(out, name)}
		if t.Columns[i].Kind == Numeric {
			coerceColumn(out, name)
		}
	}
	return t, nil
}

// UniqueHeaders returns header with blank names replaced by "Unnamed: N" and
// repeats suffixed ".1", ".2", ... so that every name is distinct.
func UniqueHeaders(header []string) []string {
	out := make([]string, len(header))
	used := make(map[string]bool, len(header))
	counts := make(map[string]int, len(header))
	for i, h := range header {
		name := h
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		base := name
		for used[name] {
			counts[base]++
			name = fmt.Sprintf("%s.%d", base, counts[base])
		}
		used[name] = true
		out[i] = name
	}
	return out
}

// inferKind classifies column name. It is Numeric iff every present value
// coerces to a number. A column whose cells are all missing is Numeric when
// the table has rows, and Text when it has none.
func inferKind(rows []records.Record, name string) Kind {
	present := 0
	for _, r := range rows {
		v := r[name]
		if v == nil {
			continue
		}
		present++
		if _, ok := ToFloat(v); !ok {
			return Text
		}
	}
	if present == 0 && len(rows) == 0 {
		return Text
	}
	return Numeric
}

func coerceColumn(rows []records.Record, name string) {
	for _, r := range rows {
		if v := r[name]; v != nil {
			f, _ := ToFloat(v)
			r[name] = f
		}
	}
}

// ToFloat coerces a cell to float64. Strings are trimmed and parsed, except
// spellings of NaN, which only count as missing through the null set.
// Booleans and other non-numeric values do not coerce.
func ToFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}
