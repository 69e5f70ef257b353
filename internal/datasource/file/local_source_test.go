package file

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestLocalOpen covers success, a missing file, a directory and a context
// that is already canceled.
func TestLocalOpen(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	data := filepath.Join(dir, "data.csv")
	if err := os.WriteFile(data, []byte("a\n1\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	cases := []struct {
		name         string
		path         string
		ctx          context.Context
		wantErrIs    error
		wantContains string
		wantContent  string
	}{
		{name: "reads_content", path: data, ctx: context.Background(), wantContent: "a\n1\n"},
		{name: "missing_file", path: filepath.Join(dir, "missing.csv"), ctx: context.Background(), wantErrIs: os.ErrNotExist, wantContains: "open "},
		{name: "directory", path: dir, ctx: context.Background(), wantContains: "is a directory"},
		{name: "canceled_context", path: data, ctx: canceled, wantErrIs: context.Canceled},
	}

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			rc, err := NewLocal(c.path).Open(c.ctx)
			if c.wantErrIs != nil || c.wantContains != "" {
				if err == nil {
					rc.Close()
					t.Fatalf("expected error, got nil")
				}
				if c.wantErrIs != nil && !errors.Is(err, c.wantErrIs) {
					t.Fatalf("errors.Is(%v, %v) = false", err, c.wantErrIs)
				}
				if !strings.Contains(err.Error(), c.wantContains) {
					t.Fatalf("error %q does not contain %q", err, c.wantContains)
				}
				return
			}
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			defer rc.Close()
			got, err := io.ReadAll(rc)
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			if string(got) != c.wantContent {
				t.Fatalf("content=%q want %q", got, c.wantContent)
			}
		})
	}
}
