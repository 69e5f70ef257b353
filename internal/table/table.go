// Package table holds the in-memory tabular model shared by the parser,
// cleaning, projection, summary and serializer stages.
//
// A Table is an ordered list of uniquely named columns plus an ordered list of
// rows. Every row carries exactly the table's column keys; a nil cell is a
// missing value. Each column is classified once, when the table is built, as
// Numeric (every present value is a float64) or Text (every present value is
// kept as it was read). Stages never mutate a table they did not build; they
// derive a new one.
package table

import (
	"fmt"
	"math"
	"reflect"

	"sweeper/pkg/records"
)

// Kind classifies a column.
type Kind int

const (
	// Text columns keep their values as read (normally strings).
	Text Kind = iota
	// Numeric columns hold float64 values.
	Numeric
)

func (k Kind) String() string {
	if k == Numeric {
		return "numeric"
	}
	return "text"
}

// Column describes one table column.
type Column struct {
	Name string
	Kind Kind
}

// Table is the uniform tabular value passed between pipeline stages.
type Table struct {
	Columns []Column
	Rows    []records.Record
}

// New builds a Table from column names and rows assembled by hand. Kinds are
// inferred from the cell values and numeric columns are coerced to float64.
// A row key that is not one of names is an error; a name absent from a row is
// a missing cell.
func New(names []string, rows []records.Record) (*Table, error) {
	if err := checkUnique(names); err != nil {
		return nil, err
	}
	known := make(map[string]struct{}, len(names))
	for _, n := range names {
		known[n] = struct{}{}
	}

	out := make([]records.Record, len(rows))
	for i, r := range rows {
		rec := make(records.Record, len(names))
		for k, v := range r {
			if _, ok := known[k]; !ok {
				return nil, fmt.Errorf("table: row %d has unknown column %q", i, k)
			}
			rec[k] = normalizeCell(v)
		}
		for _, n := range names {
			if _, ok := rec[n]; !ok {
				rec[n] = nil
			}
		}
		out[i] = rec
	}

	t := &Table{Columns: make([]Column, len(names)), Rows: out}
	for i, n := range names {
		t.Columns[i] = Column{Name: n, Kind: inferKind(out, n)}
		if t.Columns[i].Kind == Numeric {
			coerceColumn(out, n)
		}
	}
	return t, nil
}

// MustNew is New for fixtures known to be valid; it panics on error.
func MustNew(names []string, rows []records.Record) *Table {
	t, err := New(names, rows)
	if err != nil {
		panic(err)
	}
	return t
}

// Names returns the column names in table order.
func (t *Table) Names() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}

// Column returns the column called name.
func (t *Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// NumericColumns returns the numeric columns in table order.
func (t *Table) NumericColumns() []Column {
	var out []Column
	for _, c := range t.Columns {
		if c.Kind == Numeric {
			out = append(out, c)
		}
	}
	return out
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Rows) }

// Width returns the number of columns.
func (t *Table) Width() int { return len(t.Columns) }

// Values returns the cells of column name in row order.
func (t *Table) Values(name string) []any {
	out := make([]any, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r[name]
	}
	return out
}

// Head returns a new table with at most the first n rows.
func (t *Table) Head(n int) *Table {
	if n < 0 {
		n = 0
	}
	if n > len(t.Rows) {
		n = len(t.Rows)
	}
	return t.Derive(cloneRows(t.Rows[:n]))
}

// Clone returns a deep copy of t.
func (t *Table) Clone() *Table {
	return t.Derive(cloneRows(t.Rows))
}

// Derive returns a table with t's columns and the given rows. The caller
// hands ownership of rows to the new table.
func (t *Table) Derive(rows []records.Record) *Table {
	cols := make([]Column, len(t.Columns))
	copy(cols, t.Columns)
	return &Table{Columns: cols, Rows: rows}
}

// Equal reports whether t and o have the same columns, kinds and cells.
func (t *Table) Equal(o *Table) bool {
	if t == nil || o == nil {
		return t == o
	}
	if len(t.Columns) != len(o.Columns) || len(t.Rows) != len(o.Rows) {
		return false
	}
	for i := range t.Columns {
		if t.Columns[i] != o.Columns[i] {
			return false
		}
	}
	for i := range t.Rows {
		if !RowEqual(t.Rows[i], o.Rows[i], t.Names()) {
			return false
		}
	}
	return true
}

// RowEqual reports whether a and b hold equal cells for every key in cols.
func RowEqual(a, b records.Record, cols []string) bool {
	for _, c := range cols {
		if !CellEqual(a[c], b[c]) {
			return false
		}
	}
	return true
}

// CellEqual compares two cells; missing equals missing.
func CellEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch x := a.(type) {
	case float64:
		y, ok := b.(float64)
		return ok && x == y
	case string:
		y, ok := b.(string)
		return ok && x == y
	}
	return reflect.DeepEqual(a, b)
}

func cloneRows(in []records.Record) []records.Record {
	out := make([]records.Record, len(in))
	for i, r := range in {
		out[i] = r.Clone()
	}
	return out
}

func checkUnique(names []string) error {
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if _, dup := seen[n]; dup {
			return &DuplicateColumnError{Name: n}
		}
		seen[n] = struct{}{}
	}
	return nil
}

// normalizeCell maps NaN floats to missing so every stage sees one notion of
// "absent".
func normalizeCell(v any) any {
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) {
			return nil
		}
	case float32:
		if math.IsNaN(float64(x)) {
			return nil
		}
	}
	return v
}
