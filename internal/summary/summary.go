// Package summary computes read-only views of a table for display: the
// descriptive statistics of its numeric columns, a numeric-only table for
// charting, and a bounded preview.
package summary

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"sweeper/internal/table"
	"sweeper/pkg/records"
)

// DefaultPreviewRows is the preview length used when none is requested.
const DefaultPreviewRows = 5

// ColumnStats is the descriptive statistics set for one numeric column.
// Every field but Count is NaN when the column has no present values; Std is
// also NaN when Count is 1.
type ColumnStats struct {
	Name  string  `json:"name" msgpack:"name"`
	Count int     `json:"count" msgpack:"count"`
	Mean  float64 `json:"mean" msgpack:"mean"`
	Std   float64 `json:"std" msgpack:"std"`
	Min   float64 `json:"min" msgpack:"min"`
	Q25   float64 `json:"q25" msgpack:"q25"`
	Q50   float64 `json:"q50" msgpack:"q50"`
	Q75   float64 `json:"q75" msgpack:"q75"`
	Max   float64 `json:"max" msgpack:"max"`
}

// Statistics holds ColumnStats for each numeric column, in table order.
type Statistics struct {
	Columns []ColumnStats `json:"columns" msgpack:"columns"`
}

// Describe computes count, mean, sample standard deviation, min, quartiles
// and max for every numeric column of t.
func Describe(t *table.Table) Statistics {
	var s Statistics
	for _, c := range t.NumericColumns() {
		s.Columns = append(s.Columns, describeColumn(c.Name, t.Rows))
	}
	return s
}

func describeColumn(name string, rows []records.Record) ColumnStats {
	xs := make([]float64, 0, len(rows))
	for _, r := range rows {
		if f, ok := r[name].(float64); ok {
			xs = append(xs, f)
		}
	}
	cs := ColumnStats{Name: name, Count: len(xs)}
	if len(xs) == 0 {
		nan := math.NaN()
		cs.Mean, cs.Std, cs.Min, cs.Q25, cs.Q50, cs.Q75, cs.Max = nan, nan, nan, nan, nan, nan, nan
		return cs
	}

	sort.Float64s(xs)
	cs.Mean, cs.Std = stat.MeanStdDev(xs, nil)
	if len(xs) < 2 {
		cs.Std = math.NaN()
	}
	cs.Min = xs[0]
	cs.Max = xs[len(xs)-1]
	cs.Q25 = quantile(xs, 0.25)
	cs.Q50 = quantile(xs, 0.50)
	cs.Q75 = quantile(xs, 0.75)
	return cs
}

// quantile interpolates linearly between the closest ranks of sorted, the
// same rule spreadsheet PERCENTILE.INC uses.
func quantile(sorted []float64, p float64) float64 {
	pos := p * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (sorted[hi]-sorted[lo])*(pos-float64(lo))
}

// Column returns the statistics for the named column.
func (s Statistics) Column(name string) (ColumnStats, bool) {
	for _, c := range s.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnStats{}, false
}

// statLabels are the row labels of Statistics.Table, in order.
var statLabels = []string{"count", "mean", "std", "min", "25%", "50%", "75%", "max"}

// Table lays the statistics out with one row per statistic and one column per
// described column, led by a "stat" label column. NaN values become missing
// cells, so the result can go straight to a serializer.
func (s Statistics) Table() *table.Table {
	header := []string{"stat"}
	for _, c := range s.Columns {
		header = append(header, c.Name)
	}
	names := table.UniqueHeaders(header)

	rows := make([]records.Record, len(statLabels))
	for i, label := range statLabels {
		rows[i] = records.Record{names[0]: label}
	}
	for j, c := range s.Columns {
		key := names[j+1]
		vals := []float64{float64(c.Count), c.Mean, c.Std, c.Min, c.Q25, c.Q50, c.Q75, c.Max}
		for i, v := range vals {
			rows[i][key] = v
		}
	}
	return table.MustNew(names, rows)
}

// NumericView returns t restricted to its numeric columns. A table without
// numeric columns yields a zero-column table with the same number of rows.
func NumericView(t *table.Table) *table.Table {
	cols := t.NumericColumns()
	rows := make([]records.Record, len(t.Rows))
	for i, r := range t.Rows {
		rec := make(records.Record, len(cols))
		for _, c := range cols {
			rec[c.Name] = r[c.Name]
		}
		rows[i] = rec
	}
	return &table.Table{Columns: cols, Rows: rows}
}

// HasNumeric reports whether t has at least one numeric column.
func HasNumeric(t *table.Table) bool {
	return len(t.NumericColumns()) > 0
}

// Preview returns the first n rows of t, or DefaultPreviewRows when n <= 0.
func Preview(t *table.Table, n int) *table.Table {
	if n <= 0 {
		n = DefaultPreviewRows
	}
	return t.Head(n)
}
