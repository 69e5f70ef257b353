// Package config defines the job file that drives the sweep command: which
// files to read, how to parse them, which cleaning and projection steps to
// run, what to export, and the ambient logging and metrics settings.
//
// Jobs are JSON or YAML; the decoder is picked by file extension. Field names
// are the same in both encodings.
//
// Example (YAML):
//
//	job: monthly-sales
//	inputs: [sales.xlsx, returns.csv]
//	clean:
//	  dedupe: true
//	  fill_missing: true
//	columns: [region, units, revenue]
//	output:
//	  format: csv
//	  dir: out
//	inspect:
//	  describe: true
//	  report: out/report.json
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"sweeper/internal/parser"
	"sweeper/internal/table"
)

// Job is the top-level object decoded from a job file.
type Job struct {
	// Job names the run in logs and metrics.
	Job string `json:"job" yaml:"job" validate:"required"`

	// Inputs lists the files to process, as local paths or http(s) URLs.
	// Each is handled independently.
	Inputs []string `json:"inputs" yaml:"inputs" validate:"required,min=1,dive,required"`

	Parser  Parser  `json:"parser" yaml:"parser"`
	Clean   Clean   `json:"clean" yaml:"clean"`
	Output  Output  `json:"output" yaml:"output"`
	Inspect Inspect `json:"inspect" yaml:"inspect"`
	Metrics Metrics `json:"metrics" yaml:"metrics"`
	Log     Log     `json:"log" yaml:"log"`
	Runtime Runtime `json:"runtime" yaml:"runtime"`
	Fetch   Fetch   `json:"fetch" yaml:"fetch"`

	// Columns selects and orders the exported columns. Empty keeps all.
	Columns []string `json:"columns" yaml:"columns" validate:"omitempty,unique,dive,required"`
}

// Parser holds input parsing settings shared by every input.
type Parser struct {
	// Delimiter is the CSV field separator (one character).
	Delimiter string `json:"delimiter" yaml:"delimiter"`
	// Encoding names a legacy CSV charset such as "windows-1252".
	Encoding string `json:"encoding" yaml:"encoding"`
	// Sheet selects the worksheet of spreadsheet inputs.
	Sheet      string `json:"sheet" yaml:"sheet"`
	TrimSpace  bool   `json:"trim_space" yaml:"trim_space"`
	LazyQuotes bool   `json:"lazy_quotes" yaml:"lazy_quotes"`
	// NullValues are extra cell spellings read as missing.
	NullValues []string `json:"null_values" yaml:"null_values"`
	// NoDefaultNA disables the built-in missing-value spellings.
	NoDefaultNA bool `json:"no_default_na" yaml:"no_default_na"`
}

// Clean selects the cleaning steps.
type Clean struct {
	Dedupe bool `json:"dedupe" yaml:"dedupe"`
	// Subset restricts duplicate detection to these columns.
	Subset []string `json:"subset" yaml:"subset" validate:"omitempty,unique"`
	// Policy is "keep-first" (default) or "keep-last".
	Policy      string `json:"policy" yaml:"policy" validate:"omitempty,oneof=keep-first keep-last"`
	FillMissing bool   `json:"fill_missing" yaml:"fill_missing"`
}

// Output selects the export format and destination.
type Output struct {
	// Format is "csv" or "xlsx".
	Format string `json:"format" yaml:"format" validate:"required"`
	// Dir receives the converted files. Empty means the working directory.
	Dir string `json:"dir" yaml:"dir"`
	// BOM prefixes CSV output with a UTF-8 byte order mark.
	BOM bool `json:"bom" yaml:"bom"`
	// Sheet names the worksheet of spreadsheet output.
	Sheet string `json:"sheet" yaml:"sheet"`
}

// Inspect selects the inspection outputs.
type Inspect struct {
	Describe    bool `json:"describe" yaml:"describe"`
	PreviewRows int  `json:"preview_rows" yaml:"preview_rows" validate:"gte=0"`
	// Report is a .json or .msgpack path receiving previews and statistics.
	Report string `json:"report" yaml:"report"`
}

// Metrics selects the metrics backend.
type Metrics struct {
	// Backend is "none" (default), "pushgateway" or "datadog".
	Backend        string `json:"backend" yaml:"backend" validate:"omitempty,oneof=none pushgateway datadog"`
	PushgatewayURL string `json:"pushgateway_url" yaml:"pushgateway_url" validate:"omitempty,url"`
	DatadogAddr    string `json:"datadog_addr" yaml:"datadog_addr"`
}

// Log configures the process logger.
type Log struct {
	Level  string `json:"level" yaml:"level" validate:"omitempty,oneof=debug info warn warning error"`
	Format string `json:"format" yaml:"format" validate:"omitempty,oneof=text json"`
}

// Runtime bounds how many inputs are processed at once.
type Runtime struct {
	// Workers is the number of files in flight; zero means one per CPU.
	Workers int `json:"workers" yaml:"workers" validate:"gte=0"`
}

// Fetch configures how inputs are read.
type Fetch struct {
	// TimeoutSeconds bounds each HTTP attempt; zero means 30.
	TimeoutSeconds int `json:"timeout_seconds" yaml:"timeout_seconds" validate:"gte=0"`
	// MaxRetries is the number of retries after a transient HTTP failure.
	MaxRetries         int  `json:"max_retries" yaml:"max_retries" validate:"gte=0,lte=10"`
	InsecureSkipVerify bool `json:"insecure_skip_verify" yaml:"insecure_skip_verify"`
	// MaxMB caps the size of one input in MiB; zero means 512.
	MaxMB int `json:"max_mb" yaml:"max_mb" validate:"gte=0"`
}

// Load reads a job file, decoding YAML for .yaml/.yml and JSON otherwise.
func Load(path string) (Job, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Job{}, fmt.Errorf("read job: %w", err)
	}
	return Decode(b, filepath.Ext(path))
}

// Decode parses a job from b. ext selects the encoding as in Load.
func Decode(b []byte, ext string) (Job, error) {
	var j Job
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &j); err != nil {
			return Job{}, fmt.Errorf("decode yaml job: %w", err)
		}
	default:
		if err := json.Unmarshal(b, &j); err != nil {
			return Job{}, fmt.Errorf("decode json job: %w", err)
		}
	}
	return j, nil
}

// ParserOptions converts the parser section into parser.Options.
func (p Parser) ParserOptions() parser.Options {
	var comma rune
	if p.Delimiter != "" {
		comma, _ = utf8.DecodeRuneInString(p.Delimiter)
	}
	return parser.Options{
		Comma:      comma,
		TrimSpace:  p.TrimSpace,
		LazyQuotes: p.LazyQuotes,
		Encoding:   p.Encoding,
		Sheet:      p.Sheet,
		Table: table.Options{
			NullValues:  p.NullValues,
			NoDefaultNA: p.NoDefaultNA,
		},
	}
}
