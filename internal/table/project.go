package table

import (
	"errors"
	"fmt"

	"sweeper/pkg/records"
)

// ErrNoColumns is returned when a projection names no columns.
var ErrNoColumns = errors.New("no columns selected")

// UnknownColumnError reports a projection naming a column the table lacks.
type UnknownColumnError struct {
	Name string
}

func (e *UnknownColumnError) Error() string {
	return fmt.Sprintf("unknown column %q", e.Name)
}

// DuplicateColumnError reports a column name given more than once.
type DuplicateColumnError struct {
	Name string
}

func (e *DuplicateColumnError) Error() string {
	return fmt.Sprintf("column %q given more than once", e.Name)
}

// Project returns a new table restricted to names, in the order given.
// Column kinds carry over unchanged. The receiver is never modified.
func (t *Table) Project(names ...string) (*Table, error) {
	if len(names) == 0 {
		return nil, ErrNoColumns
	}
	if err := checkUnique(names); err != nil {
		return nil, err
	}

	cols := make([]Column, len(names))
	for i, n := range names {
		c, ok := t.Column(n)
		if !ok {
			return nil, &UnknownColumnError{Name: n}
		}
		cols[i] = c
	}

	rows := make([]records.Record, len(t.Rows))
	for i, r := range t.Rows {
		rec := make(records.Record, len(names))
		for _, n := range names {
			rec[n] = r[n]
		}
		rows[i] = rec
	}
	return &Table{Columns: cols, Rows: rows}, nil
}
