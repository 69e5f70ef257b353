// Package format enumerates the file encodings the pipeline reads and writes.
package format

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Format is a supported tabular file encoding.
type Format string

const (
	CSV  Format = "csv"
	XLSX Format = "xlsx"
)

// ErrUnsupported is wrapped by every error about an unknown format tag.
var ErrUnsupported = errors.New("unsupported format")

// All lists the supported formats.
var All = []Format{CSV, XLSX}

// Parse maps a tag such as "csv", "XLSX" or ".xlsx" to a Format. "excel" is
// accepted as an alias for XLSX.
func Parse(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "csv":
		return CSV, nil
	case "xlsx", "excel":
		return XLSX, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupported, s)
}

// FromName derives the format from a file name's extension.
func FromName(name string) (Format, error) {
	ext := filepath.Ext(name)
	if ext == "" {
		return "", fmt.Errorf("%w: %q has no extension", ErrUnsupported, name)
	}
	return Parse(ext)
}

// Valid reports whether f is one of the supported formats.
func (f Format) Valid() bool {
	return f == CSV || f == XLSX
}

// Ext returns the file extension for f, including the dot.
func (f Format) Ext() string {
	return "." + string(f)
}

// MIME returns the media type used when handing output to a caller.
func (f Format) MIME() string {
	switch f {
	case CSV:
		return "text/csv"
	case XLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "application/octet-stream"
}

// OutputName replaces the extension of source with the one for target.
// A source without an extension gets the target extension appended.
func OutputName(source string, target Format) string {
	base := strings.TrimSuffix(source, filepath.Ext(source))
	return base + target.Ext()
}
