package builtin

import (
	"errors"
	"reflect"
	"testing"

	"sweeper/internal/table"
	"sweeper/pkg/records"
)

func TestSelect(t *testing.T) {
	in := table.MustNew([]string{"a", "b", "c"}, []records.Record{{"a": 1, "b": 2, "c": 3}})

	got, err := Select{Columns: []string{"c", "a"}}.Apply(in)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !reflect.DeepEqual(got.Names(), []string{"c", "a"}) {
		t.Fatalf("names=%q", got.Names())
	}

	all, err := Select{}.Apply(in)
	if err != nil {
		t.Fatalf("Apply all: %v", err)
	}
	if !all.Equal(in) {
		t.Fatalf("empty selection should keep every column")
	}

	var unknown *table.UnknownColumnError
	if _, err := (Select{Columns: []string{"a", "x"}}).Apply(in); !errors.As(err, &unknown) || unknown.Name != "x" {
		t.Fatalf("expected UnknownColumnError naming x, got %v", err)
	}
}
