package builtin

import "sweeper/internal/table"

// Select restricts a table to Columns, in that order.
type Select struct {
	Columns []string
}

// Apply implements transformer.Transformer. An empty Columns list keeps
// every column.
func (s Select) Apply(t *table.Table) (*table.Table, error) {
	if len(s.Columns) == 0 {
		return t.Clone(), nil
	}
	return t.Project(s.Columns...)
}
