// Package file implements local-disk inputs and list files naming them.
package file

import (
	"context"
	"fmt"
	"io"
	"os"
)

// Local opens one file from the local disk. It is safe for concurrent use.
type Local struct{ path string }

// NewLocal returns a Local bound to path.
func NewLocal(path string) *Local { return &Local{path: path} }

// Path returns the bound path.
func (l *Local) Path() string { return l.path }

// Open returns the file for reading. A context that is already done wins
// over the filesystem. Errors keep the underlying cause for errors.Is, e.g.
// os.ErrNotExist.
func (l *Local) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", l.path, err)
	}
	if st, err := f.Stat(); err == nil && st.IsDir() {
		f.Close()
		return nil, fmt.Errorf("open %s: is a directory", l.path)
	}
	return f, nil
}
