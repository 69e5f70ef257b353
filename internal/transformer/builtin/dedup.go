// Package builtin contains the stock table transformers.
//
// DeDup drops rows that repeat an earlier row. Equality is exact and
// cell-by-cell (a missing cell equals only another missing cell), over all
// columns or over a configured subset. Rows are bucketed by an xxh3
// fingerprint of their canonical encoding and every candidate match is
// confirmed with a full comparison, so a hash collision can never merge two
// distinct rows.
//
// Fill replaces missing numeric cells with the column mean, and Select
// restricts and reorders columns.
package builtin

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"github.com/zeebo/xxh3"

	"sweeper/internal/table"
	"sweeper/pkg/records"
)

// Deduplicate removes every row that equals an earlier row in all columns.
// The kept rows stay in their original order. It returns the new table and
// the number of rows removed.
func Deduplicate(t *table.Table) (*table.Table, int) {
	kept := dedupIndexes(t.Rows, t.Names(), false)
	return t.Derive(pick(t.Rows, kept)), len(t.Rows) - len(kept)
}

// DeDup is the configurable de-duplication transformer.
type DeDup struct {
	// Subset lists the columns that decide equality. Empty means all columns.
	Subset []string

	// Policy selects which duplicate survives: "keep-first" (default) or
	// "keep-last". Either way survivors keep their relative order.
	Policy string

	// Removed is set by Apply to the number of rows dropped.
	Removed int
}

// Apply implements transformer.Transformer.
func (d *DeDup) Apply(t *table.Table) (*table.Table, error) {
	cols := t.Names()
	if len(d.Subset) > 0 {
		for _, c := range d.Subset {
			if _, ok := t.Column(c); !ok {
				return nil, &table.UnknownColumnError{Name: c}
			}
		}
		cols = d.Subset
	}

	var last bool
	switch strings.ToLower(strings.TrimSpace(d.Policy)) {
	case "", "keep-first":
	case "keep-last":
		last = true
	default:
		return nil, fmt.Errorf("dedup: unknown policy %q", d.Policy)
	}

	kept := dedupIndexes(t.Rows, cols, last)
	d.Removed = len(t.Rows) - len(kept)
	return t.Derive(pick(t.Rows, kept)), nil
}

// dedupIndexes returns the ascending indexes of the rows that survive. With
// last set, the final occurrence of each distinct row is the survivor.
func dedupIndexes(rows []records.Record, cols []string, last bool) []int {
	buckets := make(map[uint64][]int, len(rows))
	keep := make([]bool, len(rows))
	var buf []byte

	visit := func(i int) {
		buf = appendKey(buf[:0], rows[i], cols)
		h := xxh3.Hash(buf)
		for _, j := range buckets[h] {
			if table.RowEqual(rows[i], rows[j], cols) {
				return
			}
		}
		buckets[h] = append(buckets[h], i)
		keep[i] = true
	}

	if last {
		for i := len(rows) - 1; i >= 0; i-- {
			visit(i)
		}
	} else {
		for i := range rows {
			visit(i)
		}
	}

	out := make([]int, 0, len(rows))
	for i, k := range keep {
		if k {
			out = append(out, i)
		}
	}
	return out
}

// appendKey appends a canonical, type-tagged encoding of r's cells in cols.
// Values that compare equal under table.CellEqual encode identically.
func appendKey(b []byte, r records.Record, cols []string) []byte {
	for _, c := range cols {
		switch v := r[c].(type) {
		case nil:
			b = append(b, 0)
		case float64:
			if v == 0 {
				v = 0 // fold -0 into +0
			}
			b = append(b, 1)
			b = binary.LittleEndian.AppendUint64(b, math.Float64bits(v))
		case string:
			b = append(b, 2)
			b = binary.AppendUvarint(b, uint64(len(v)))
			b = append(b, v...)
		default:
			s := fmt.Sprintf("%T:%v", v, v)
			b = append(b, 3)
			b = binary.AppendUvarint(b, uint64(len(s)))
			b = append(b, s...)
		}
	}
	return b
}

func pick(rows []records.Record, idx []int) []records.Record {
	out := make([]records.Record, len(idx))
	for i, j := range idx {
		out[i] = rows[j].Clone()
	}
	return out
}
