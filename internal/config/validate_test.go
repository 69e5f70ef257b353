package config

import (
	"strings"
	"testing"
)

func validJob() Job {
	return Job{
		Job:    "j",
		Inputs: []string{"a.csv"},
		Output: Output{Format: "csv"},
	}
}

func hasIssue(t *testing.T, issues []Issue, sev Severity, path, msgSubstr string) {
	t.Helper()
	for _, is := range issues {
		if is.Severity == sev && is.Path == path && strings.Contains(is.Message, msgSubstr) {
			return
		}
	}
	t.Fatalf("missing %s issue at %q containing %q; got %v", sev, path, msgSubstr, issues)
}

func TestValidate_MinimalJobIsClean(t *testing.T) {
	if issues := Validate(validJob()); len(issues) != 0 {
		t.Fatalf("unexpected issues: %v", issues)
	}
}

/*
TestValidate_RequiredFields checks that the struct tags surface under the job
file's own field names.
*/
func TestValidate_RequiredFields(t *testing.T) {
	issues := Validate(Job{})
	hasIssue(t, issues, SeverityError, "job", "required")
	hasIssue(t, issues, SeverityError, "inputs", "required")
	hasIssue(t, issues, SeverityError, "output.format", "required")
}

func TestValidate_TagRules(t *testing.T) {
	j := validJob()
	j.Inputs = append(j.Inputs, "")
	j.Columns = []string{"x", "x"}
	j.Clean = Clean{Dedupe: true, Policy: "most-complete"}
	j.Inspect.PreviewRows = -1
	j.Metrics = Metrics{Backend: "statsd"}
	j.Log = Log{Level: "trace"}
	j.Fetch.MaxRetries = 11

	issues := Validate(j)
	hasIssue(t, issues, SeverityError, "inputs[1]", "required")
	hasIssue(t, issues, SeverityError, "columns", "duplicates")
	hasIssue(t, issues, SeverityError, "clean.policy", "one of")
	hasIssue(t, issues, SeverityError, "inspect.preview_rows", ">= 0")
	hasIssue(t, issues, SeverityError, "metrics.backend", "one of")
	hasIssue(t, issues, SeverityError, "log.level", "one of")
	hasIssue(t, issues, SeverityError, "fetch.max_retries", "<= 10")
}

func TestValidate_Inputs(t *testing.T) {
	j := validJob()
	j.Inputs = []string{"a.csv", "notes.txt", "a.csv", "https://example.com/e/q1.xlsx?sig=1"}
	issues := Validate(j)
	for _, is := range issues {
		if is.Path == "inputs[3]" {
			t.Fatalf("URL input rejected: %v", is)
		}
	}
	hasIssue(t, issues, SeverityError, "inputs[1]", ".csv or .xlsx")
	hasIssue(t, issues, SeverityWarning, "inputs[2]", "duplicates inputs[0]")
}

func TestValidate_ParserDelimiter(t *testing.T) {
	j := validJob()
	j.Parser.Delimiter = ";;"
	hasIssue(t, Validate(j), SeverityError, "parser.delimiter", "single character")

	j.Parser.Delimiter = `"`
	hasIssue(t, Validate(j), SeverityError, "parser.delimiter", "cannot be used")

	j.Parser.Delimiter = "\t"
	if HasErrors(Validate(j)) {
		t.Fatalf("tab delimiter should be accepted")
	}
}

func TestValidate_Output(t *testing.T) {
	j := validJob()
	j.Output.Format = "parquet"
	hasIssue(t, Validate(j), SeverityError, "output.format", "unsupported")

	j.Output = Output{Format: "csv", Sheet: "Data"}
	hasIssue(t, Validate(j), SeverityWarning, "output.sheet", "xlsx")

	j.Output = Output{Format: "xlsx", BOM: true}
	hasIssue(t, Validate(j), SeverityWarning, "output.bom", "csv")
}

func TestValidate_CrossField(t *testing.T) {
	j := validJob()
	j.Clean.Subset = []string{"id"}
	hasIssue(t, Validate(j), SeverityWarning, "clean", "dedupe")

	j = validJob()
	j.Inspect.Report = "report.txt"
	hasIssue(t, Validate(j), SeverityError, "inspect.report", ".json or .msgpack")

	j = validJob()
	j.Metrics.Backend = "pushgateway"
	hasIssue(t, Validate(j), SeverityError, "metrics.pushgateway_url", "required")

	j.Metrics.PushgatewayURL = "http://localhost:9091"
	if HasErrors(Validate(j)) {
		t.Fatalf("pushgateway with URL should validate: %v", Validate(j))
	}
}
