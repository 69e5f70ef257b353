package file

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestReadList(t *testing.T) {
	t.Parallel()

	content := `
# monthly exports
data/sales.csv
   # returns come in by URL
https://example.com/returns.xlsx

   data/stock.csv  
`
	path := filepath.Join(t.TempDir(), "inputs.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	got, err := ReadList(path)
	if err != nil {
		t.Fatalf("ReadList error: %v", err)
	}
	want := []string{"data/sales.csv", "https://example.com/returns.xlsx", "data/stock.csv"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ReadList = %#v, want %#v", got, want)
	}
}

func TestParseListEmpty(t *testing.T) {
	t.Parallel()

	got, err := ParseList(strings.NewReader("\n# only comments\n\n"))
	if err != nil {
		t.Fatalf("ParseList error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no entries, got %#v", got)
	}
}

func TestReadListMissing(t *testing.T) {
	t.Parallel()

	if _, err := ReadList(filepath.Join(t.TempDir(), "nope.txt")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
