package builtin

import (
	"math"
	"testing"

	"sweeper/internal/table"
	"sweeper/pkg/records"
)

func TestFillMissingUsesPreFillMean(t *testing.T) {
	in := table.MustNew([]string{"n", "s"}, []records.Record{
		{"n": 1, "s": "x"},
		{"n": nil, "s": nil},
		{"n": 5, "s": "y"},
		{"n": nil, "s": "z"},
	})

	got, filled := FillMissing(in)
	if filled != 2 {
		t.Fatalf("filled=%d want 2", filled)
	}
	for i, r := range got.Rows {
		if r.Missing("n") {
			t.Fatalf("row %d: n still missing", i)
		}
	}
	if v := got.Rows[1]["n"]; v != 3.0 {
		t.Fatalf("fill value=%#v want 3", v)
	}
	if !got.Rows[1].Missing("s") {
		t.Fatalf("text column must not be filled")
	}
	if !in.Rows[1].Missing("n") {
		t.Fatalf("input table was modified")
	}
}

/*
TestFillMissingPreservesMean checks that the recomputed mean of a filled
column matches the mean of its original present values.
*/
func TestFillMissingPreservesMean(t *testing.T) {
	in := table.MustNew([]string{"n"}, []records.Record{
		{"n": 0.1}, {"n": nil}, {"n": 0.7}, {"n": nil}, {"n": 1.3}, {"n": 2.9},
	})
	before, _ := columnMean(in.Rows, "n")

	got, _ := FillMissing(in)
	after, ok := columnMean(got.Rows, "n")
	if !ok {
		t.Fatalf("no values after fill")
	}
	if math.Abs(after-before) > 1e-9 {
		t.Fatalf("mean drifted: before=%v after=%v", before, after)
	}
}

func TestFillMissingAllMissingColumnIsNoop(t *testing.T) {
	in := table.MustNew([]string{"a", "empty"}, []records.Record{
		{"a": 1, "empty": nil},
		{"a": nil, "empty": nil},
	})
	if c, _ := in.Column("empty"); c.Kind != table.Numeric {
		t.Fatalf("all-missing column kind=%v want numeric", c.Kind)
	}

	got, filled := FillMissing(in)
	if filled != 1 {
		t.Fatalf("filled=%d want 1 (only column a)", filled)
	}
	for i, r := range got.Rows {
		if !r.Missing("empty") {
			t.Fatalf("row %d: all-missing column was filled with %#v", i, r["empty"])
		}
	}
}

func TestFillIdempotent(t *testing.T) {
	in := table.MustNew([]string{"n"}, []records.Record{{"n": 2}, {"n": nil}})
	once, _ := FillMissing(in)

	f := &Fill{}
	twice, err := f.Apply(once)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if f.Filled != 0 {
		t.Fatalf("second fill changed %d cells", f.Filled)
	}
	if !once.Equal(twice) {
		t.Fatalf("second fill changed the table")
	}
}
