// Package datasource opens sweep inputs by location: a local path or an
// http(s) URL. Sources are read whole, since every pipeline run holds its
// file in memory.
package datasource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"sweeper/internal/datasource/file"
	"sweeper/internal/datasource/httpds"
)

// DefaultMaxBytes caps how much of one input is read.
const DefaultMaxBytes = 512 << 20

// ErrTooLarge is returned by ReadAll when a source exceeds its limit.
var ErrTooLarge = errors.New("input exceeds size limit")

// Source yields the bytes of one input.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}

// IsRemote reports whether location is an http or https URL.
func IsRemote(location string) bool {
	l := strings.ToLower(location)
	return strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://")
}

// For returns the source for location. Remote locations use client, which
// must be non-nil for them.
func For(location string, client *httpds.Client) (Source, error) {
	if !IsRemote(location) {
		return file.NewLocal(location), nil
	}
	if client == nil {
		return nil, fmt.Errorf("datasource: no HTTP client for %s", location)
	}
	return httpds.NewSource(client, location), nil
}

// Name returns the file name of location: the base of a path, or the last
// segment of a URL path with the query dropped.
func Name(location string) string {
	if IsRemote(location) {
		if u, err := url.Parse(location); err == nil {
			if b := path.Base(u.Path); b != "/" && b != "." {
				return b
			}
			return u.Host
		}
	}
	return filepath.Base(location)
}

// ReadAll reads src fully, failing with ErrTooLarge past limit bytes
// (limit <= 0 means DefaultMaxBytes).
func ReadAll(ctx context.Context, src Source, limit int64) ([]byte, error) {
	if limit <= 0 {
		limit = DefaultMaxBytes
	}
	rc, err := src.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, limit+1))
	if err != nil {
		return nil, fmt.Errorf("datasource: read: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w (%d bytes)", ErrTooLarge, limit)
	}
	return data, nil
}
