// Package transformer defines the table-to-table cleaning and reshaping step
// contract and a Chain that runs steps in order.
package transformer

import (
	"fmt"

	"sweeper/internal/table"
)

// Transformer derives a new table from its input. Implementations must not
// modify the input table.
type Transformer interface {
	Apply(t *table.Table) (*table.Table, error)
}

// Func adapts a function to the Transformer interface.
type Func func(t *table.Table) (*table.Table, error)

func (f Func) Apply(t *table.Table) (*table.Table, error) { return f(t) }

// Chain is an ordered list of transformers.
type Chain []Transformer

// Apply runs each transformer on the previous one's output and stops at the
// first error, reporting the failing step's position.
func (c Chain) Apply(in *table.Table) (*table.Table, error) {
	out := in
	for i, t := range c {
		next, err := t.Apply(out)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		out = next
	}
	return out, nil
}
