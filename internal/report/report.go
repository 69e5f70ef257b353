// Package report writes the inspection side of a sweep run (previews, column
// kinds and descriptive statistics per file) as JSON or MessagePack.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"sweeper/internal/pipeline"
	"sweeper/internal/summary"
	"sweeper/internal/table"
)

// Encoding selects the report wire format.
type Encoding string

const (
	JSON    Encoding = "json"
	Msgpack Encoding = "msgpack"
)

// EncodingFor picks the encoding from a report path's extension.
func EncodingFor(path string) (Encoding, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return JSON, nil
	case ".msgpack", ".mpk":
		return Msgpack, nil
	}
	return "", fmt.Errorf("report: unknown extension for %q (want .json or .msgpack)", path)
}

// Float is a float64 that encodes NaN and infinities as JSON null, since
// statistics of empty or single-value columns are undefined.
type Float float64

func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(v)
}

func (f *Float) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = Float(math.NaN())
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*f = Float(v)
	return nil
}

// Report is the document written for a whole run.
type Report struct {
	Job         string    `json:"job" msgpack:"job"`
	GeneratedAt time.Time `json:"generated_at" msgpack:"generated_at"`
	Files       []File    `json:"files" msgpack:"files"`
}

// File describes one input.
type File struct {
	Name  string `json:"name" msgpack:"name"`
	RunID string `json:"run_id,omitempty" msgpack:"run_id,omitempty"`
	Error string `json:"error,omitempty" msgpack:"error,omitempty"`

	Rows    int `json:"rows" msgpack:"rows"`
	Removed int `json:"removed" msgpack:"removed"`
	Filled  int `json:"filled" msgpack:"filled"`

	Columns []Column `json:"columns,omitempty" msgpack:"columns,omitempty"`
	// Numeric lists the numeric columns; empty means there is no numeric data.
	Numeric []string `json:"numeric" msgpack:"numeric"`
	Preview [][]any  `json:"preview,omitempty" msgpack:"preview,omitempty"`
	Stats   []Stat   `json:"stats,omitempty" msgpack:"stats,omitempty"`
	Output  string   `json:"output,omitempty" msgpack:"output,omitempty"`
}

// Column is a column name and its inferred kind.
type Column struct {
	Name string `json:"name" msgpack:"name"`
	Kind string `json:"kind" msgpack:"kind"`
}

// Stat mirrors summary.ColumnStats with report-safe floats.
type Stat struct {
	Name  string `json:"name" msgpack:"name"`
	Count int    `json:"count" msgpack:"count"`
	Mean  Float  `json:"mean" msgpack:"mean"`
	Std   Float  `json:"std" msgpack:"std"`
	Min   Float  `json:"min" msgpack:"min"`
	Q25   Float  `json:"25%" msgpack:"25%"`
	Q50   Float  `json:"50%" msgpack:"50%"`
	Q75   Float  `json:"75%" msgpack:"75%"`
	Max   Float  `json:"max" msgpack:"max"`
}

// FromResults builds a report from batch results, keeping their order.
func FromResults(job string, results []pipeline.FileResult, now time.Time) Report {
	rep := Report{Job: job, GeneratedAt: now.UTC(), Files: make([]File, 0, len(results))}
	for _, fr := range results {
		f := File{Name: fr.File}
		if fr.Err != nil {
			f.Error = fr.Err.Error()
			rep.Files = append(rep.Files, f)
			continue
		}
		res := fr.Result
		f.RunID = res.RunID
		f.Rows, f.Removed, f.Filled = res.Rows, res.Removed, res.Filled
		f.Output = res.Output.FileName
		for _, c := range res.Table.Columns {
			f.Columns = append(f.Columns, Column{Name: c.Name, Kind: c.Kind.String()})
		}
		f.Numeric = res.Numeric.Names()
		f.Preview = previewRows(res.Preview)
		if res.Stats != nil {
			f.Stats = stats(*res.Stats)
		}
		rep.Files = append(rep.Files, f)
	}
	return rep
}

// previewRows renders the header followed by each row, in column order.
func previewRows(t *table.Table) [][]any {
	if t == nil {
		return nil
	}
	names := t.Names()
	out := make([][]any, 0, t.Len()+1)
	hdr := make([]any, len(names))
	for i, n := range names {
		hdr[i] = n
	}
	out = append(out, hdr)
	for _, r := range t.Rows {
		row := make([]any, len(names))
		for i, n := range names {
			row[i] = previewCell(r[n])
		}
		out = append(out, row)
	}
	return out
}

// previewCell wraps non-finite numbers so JSON can carry them.
func previewCell(v any) any {
	if f, ok := v.(float64); ok && (math.IsInf(f, 0) || math.IsNaN(f)) {
		return Float(f)
	}
	return v
}

func stats(s summary.Statistics) []Stat {
	out := make([]Stat, len(s.Columns))
	for i, c := range s.Columns {
		out[i] = Stat{
			Name: c.Name, Count: c.Count,
			Mean: Float(c.Mean), Std: Float(c.Std),
			Min: Float(c.Min), Q25: Float(c.Q25), Q50: Float(c.Q50), Q75: Float(c.Q75),
			Max: Float(c.Max),
		}
	}
	return out
}

// Encode writes rep to w.
func Encode(w io.Writer, rep Report, enc Encoding) error {
	switch enc {
	case JSON:
		e := json.NewEncoder(w)
		e.SetIndent("", "  ")
		return e.Encode(rep)
	case Msgpack:
		return msgpack.NewEncoder(w).Encode(rep)
	}
	return fmt.Errorf("report: unknown encoding %q", enc)
}

// Decode reads a report written by Encode.
func Decode(r io.Reader, enc Encoding) (Report, error) {
	var rep Report
	switch enc {
	case JSON:
		if err := json.NewDecoder(r).Decode(&rep); err != nil {
			return Report{}, fmt.Errorf("report: decode json: %w", err)
		}
	case Msgpack:
		if err := msgpack.NewDecoder(r).Decode(&rep); err != nil {
			return Report{}, fmt.Errorf("report: decode msgpack: %w", err)
		}
	default:
		return Report{}, fmt.Errorf("report: unknown encoding %q", enc)
	}
	return rep, nil
}

// WriteFile encodes rep to path, choosing the encoding from its extension.
func WriteFile(path string, rep Report) error {
	enc, err := EncodingFor(path)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := Encode(&buf, rep, enc); err != nil {
		return fmt.Errorf("report: encode: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("report: %w", err)
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("report: %w", err)
	}
	return nil
}
