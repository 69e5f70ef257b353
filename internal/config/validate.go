package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"sweeper/internal/datasource"
	"sweeper/internal/format"
)

// Severity describes how serious a validation Issue is.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is a single finding from Validate. Path uses the job file's field
// names, e.g. "clean.policy" or "inputs[2]".
type Issue struct {
	Severity Severity
	Path     string
	Message  string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s: %s", i.Severity, i.Path, i.Message)
}

var (
	validateOnce sync.Once
	structCheck  *validator.Validate
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
		structCheck = v
	})
	return structCheck
}

// Validate checks a job before any input is opened. Struct tags cover the
// field-local rules; the rest are cross-field checks. The job is runnable
// when no issue has SeverityError.
func Validate(j Job) []Issue {
	var issues []Issue
	issues = append(issues, validateStruct(j)...)
	issues = append(issues, validateInputs(j)...)
	issues = append(issues, validateParser(j.Parser)...)
	issues = append(issues, validateClean(j.Clean)...)
	issues = append(issues, validateOutput(j.Output)...)
	issues = append(issues, validateInspect(j.Inspect)...)
	issues = append(issues, validateMetrics(j.Metrics)...)
	return issues
}

// HasErrors reports whether any issue is an error.
func HasErrors(issues []Issue) bool {
	for _, is := range issues {
		if is.Severity == SeverityError {
			return true
		}
	}
	return false
}

func validateStruct(j Job) []Issue {
	err := structValidator().Struct(j)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return []Issue{{Severity: SeverityError, Path: "", Message: err.Error()}}
	}
	out := make([]Issue, 0, len(ves))
	for _, fe := range ves {
		out = append(out, Issue{
			Severity: SeverityError,
			Path:     issuePath(fe.Namespace()),
			Message:  tagMessage(fe),
		})
	}
	return out
}

// issuePath drops the root type from a validator namespace.
func issuePath(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func tagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("needs at least %s entries", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s], got %v", fe.Param(), fe.Value())
	case "unique":
		return "must not contain duplicates"
	case "gte":
		return fmt.Sprintf("must be >= %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be <= %s", fe.Param())
	case "url":
		return fmt.Sprintf("is not a valid URL: %v", fe.Value())
	}
	return fmt.Sprintf("failed %q check", fe.Tag())
}

func validateInputs(j Job) []Issue {
	var out []Issue
	seen := map[string]int{}
	for i, in := range j.Inputs {
		if in == "" {
			continue // reported by the struct check
		}
		path := fmt.Sprintf("inputs[%d]", i)
		if _, err := format.FromName(datasource.Name(in)); err != nil {
			out = append(out, Issue{Severity: SeverityError, Path: path,
				Message: fmt.Sprintf("cannot tell the format of %q: use .csv or .xlsx", in)})
		}
		if prev, dup := seen[in]; dup {
			out = append(out, Issue{Severity: SeverityWarning, Path: path,
				Message: fmt.Sprintf("duplicates inputs[%d]", prev)})
		}
		seen[in] = i
	}
	return out
}

func validateParser(p Parser) []Issue {
	var out []Issue
	if p.Delimiter != "" {
		r, n := utf8.DecodeRuneInString(p.Delimiter)
		switch {
		case n != len(p.Delimiter):
			out = append(out, Issue{Severity: SeverityError, Path: "parser.delimiter",
				Message: fmt.Sprintf("must be a single character, got %q", p.Delimiter)})
		case r == '"' || r == '\r' || r == '\n' || r == utf8.RuneError:
			out = append(out, Issue{Severity: SeverityError, Path: "parser.delimiter",
				Message: fmt.Sprintf("%q cannot be used as a delimiter", p.Delimiter)})
		}
	}
	for i, v := range p.NullValues {
		if v == "" {
			out = append(out, Issue{Severity: SeverityWarning, Path: fmt.Sprintf("parser.null_values[%d]", i),
				Message: "empty cells are always missing; entry has no effect"})
		}
	}
	return out
}

func validateClean(c Clean) []Issue {
	var out []Issue
	if !c.Dedupe && (len(c.Subset) > 0 || c.Policy != "") {
		out = append(out, Issue{Severity: SeverityWarning, Path: "clean",
			Message: "subset/policy are ignored unless dedupe is true"})
	}
	return out
}

func validateOutput(o Output) []Issue {
	var out []Issue
	if o.Format != "" {
		f, err := format.Parse(o.Format)
		if err != nil {
			out = append(out, Issue{Severity: SeverityError, Path: "output.format",
				Message: fmt.Sprintf("unsupported format %q (want csv or xlsx)", o.Format)})
		}
		if err == nil && f == format.CSV && o.Sheet != "" {
			out = append(out, Issue{Severity: SeverityWarning, Path: "output.sheet",
				Message: "only used for xlsx output"})
		}
		if err == nil && f == format.XLSX && o.BOM {
			out = append(out, Issue{Severity: SeverityWarning, Path: "output.bom",
				Message: "only used for csv output"})
		}
	}
	if len(o.Sheet) > 31 {
		out = append(out, Issue{Severity: SeverityError, Path: "output.sheet",
			Message: "worksheet names are limited to 31 characters"})
	}
	return out
}

func validateInspect(in Inspect) []Issue {
	var out []Issue
	if in.Report != "" {
		switch strings.ToLower(filepath.Ext(in.Report)) {
		case ".json", ".msgpack":
		default:
			out = append(out, Issue{Severity: SeverityError, Path: "inspect.report",
				Message: fmt.Sprintf("report %q must end in .json or .msgpack", in.Report)})
		}
	}
	return out
}

func validateMetrics(m Metrics) []Issue {
	var out []Issue
	switch m.Backend {
	case "pushgateway":
		if m.PushgatewayURL == "" {
			out = append(out, Issue{Severity: SeverityError, Path: "metrics.pushgateway_url",
				Message: "required when backend is pushgateway"})
		}
	case "datadog":
		if m.DatadogAddr == "" {
			out = append(out, Issue{Severity: SeverityWarning, Path: "metrics.datadog_addr",
				Message: "empty; the statsd client will use DD_AGENT_HOST or 127.0.0.1:8125"})
		}
	}
	return out
}
