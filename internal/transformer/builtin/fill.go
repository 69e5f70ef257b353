package builtin

import (
	"gonum.org/v1/gonum/stat"

	"sweeper/internal/table"
	"sweeper/pkg/records"
)

// FillMissing replaces each missing cell of a numeric column with the mean of
// that column's present values, computed before any replacement. Text columns
// are left alone, as are numeric columns with no present values (their mean
// is undefined). It returns the new table and the number of cells filled.
func FillMissing(t *table.Table) (*table.Table, int) {
	means := make(map[string]float64)
	for _, c := range t.NumericColumns() {
		if m, ok := columnMean(t.Rows, c.Name); ok {
			means[c.Name] = m
		}
	}

	filled := 0
	rows := make([]records.Record, len(t.Rows))
	for i, r := range t.Rows {
		rec := r.Clone()
		for name, m := range means {
			if rec[name] == nil {
				rec[name] = m
				filled++
			}
		}
		rows[i] = rec
	}
	return t.Derive(rows), filled
}

// columnMean averages the present float64 cells of col. ok is false when the
// column has none.
func columnMean(rows []records.Record, col string) (mean float64, ok bool) {
	xs := make([]float64, 0, len(rows))
	for _, r := range rows {
		if f, isNum := r[col].(float64); isNum {
			xs = append(xs, f)
		}
	}
	if len(xs) == 0 {
		return 0, false
	}
	return stat.Mean(xs, nil), true
}

// Fill is the mean-imputation transformer.
type Fill struct {
	// Filled is set by Apply to the number of cells filled.
	Filled int
}

// Apply implements transformer.Transformer.
func (f *Fill) Apply(t *table.Table) (*table.Table, error) {
	out, n := FillMissing(t)
	f.Filled = n
	return out, nil
}
