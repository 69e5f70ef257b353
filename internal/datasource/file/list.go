package file

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// ReadList reads a list file of input locations, one per line.
func ReadList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read list: %w", err)
	}
	defer f.Close()
	return ParseList(f)
}

// ParseList returns the entries of r in order. Blank lines and lines whose
// first non-space character is '#' are skipped; entries are trimmed.
func ParseList(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read list: %w", err)
	}
	return out, nil
}
