// Command sweep converts CSV and XLSX files, optionally removing duplicate
// rows, filling missing numbers with column means and selecting columns, and
// can describe the numeric columns of each result.
//
// Usage:
//
//	sweep -config job.yaml
//	sweep -to xlsx -dedupe -fill -columns region,units -out out sales.csv returns.csv
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"sweeper/internal/config"
	"sweeper/internal/datasource/file"
	"sweeper/internal/logging"
	"sweeper/internal/metrics"
	"sweeper/internal/metrics/datadog"
	"sweeper/internal/metrics/prompush"
)

func main() {
	var (
		cfgPath  string
		validate bool
		o        overrides
	)

	flag.StringVar(&cfgPath, "config", "", "job file (.json, .yaml or .yml)")
	flag.BoolVar(&validate, "validate", false, "validate the job and exit")
	flag.StringVar(&o.inputs, "in", "", "comma-separated input files or URLs (also taken from arguments)")
	flag.StringVar(&o.list, "list", "", "file listing inputs, one per line (# comments allowed)")
	flag.StringVar(&o.to, "to", "csv", "output format: csv or xlsx")
	flag.BoolVar(&o.dedupe, "dedupe", false, "drop rows that repeat an earlier row")
	flag.BoolVar(&o.fill, "fill", false, "fill missing numeric cells with the column mean")
	flag.StringVar(&o.columns, "columns", "", "comma-separated columns to keep, in order")
	flag.BoolVar(&o.describe, "describe", false, "print descriptive statistics of numeric columns")
	flag.IntVar(&o.preview, "preview", 0, "rows to include in previews (default 5)")
	flag.StringVar(&o.out, "out", "", "output directory (default: working directory)")
	flag.StringVar(&o.report, "report", "", "write an inspection report (.json or .msgpack)")
	flag.StringVar(&o.delimiter, "delimiter", "", "CSV input delimiter (default ,)")
	flag.StringVar(&o.sheet, "sheet", "", "worksheet to read from xlsx inputs")
	flag.IntVar(&o.workers, "workers", 0, "files processed in parallel (default: one per CPU)")
	flag.StringVar(&o.logLevel, "log-level", "info", "debug, info, warn or error")
	flag.StringVar(&o.logFormat, "log-format", "text", "text or json")
	flag.StringVar(&o.metricsBackend, "metrics-backend", "", "none, pushgateway or datadog (env METRICS_BACKEND)")
	flag.StringVar(&o.pushgatewayURL, "pushgateway-url", "", "Pushgateway base URL (env PUSHGATEWAY_URL)")
	flag.StringVar(&o.datadogAddr, "datadog-addr", "", "DogStatsD address")
	flag.Parse()

	job := config.Job{Job: "sweep", Output: config.Output{Format: "csv"}}
	if cfgPath != "" {
		var err error
		if job, err = config.Load(cfgPath); err != nil {
			fatalf("load config: %v", err)
		}
	}
	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	o.apply(&job, set, flag.Args(), cfgPath == "")
	if o.list != "" {
		listed, err := file.ReadList(o.list)
		if err != nil {
			fatalf("%v", err)
		}
		job.Inputs = append(job.Inputs, listed...)
	}

	logging.Setup(job.Log.Level, job.Log.Format)

	issues := config.Validate(job)
	for _, iss := range issues {
		fmt.Fprintln(os.Stderr, iss.String())
	}
	if config.HasErrors(issues) {
		fatalf("job is invalid")
	}
	if validate {
		slog.Info("job is valid", "job", job.Job, "inputs", len(job.Inputs))
		return
	}

	if flush := setupMetrics(job); flush != nil {
		defer flush()
	}

	start := time.Now()
	failed := run(context.Background(), job, os.Stdout)
	slog.Info("sweep finished", "job", job.Job, "files", len(job.Inputs), "failed", failed,
		"took", time.Since(start).Truncate(time.Millisecond))
	if failed > 0 {
		metrics.Flush()
		os.Exit(1)
	}
}

// setupMetrics installs the configured backend and returns its flush hook.
func setupMetrics(job config.Job) func() {
	name := job.Metrics.Backend
	if name == "" {
		name = os.Getenv("METRICS_BACKEND")
	}

	var (
		b   metrics.Backend
		err error
	)
	switch name {
	case "", "none":
		slog.Debug("metrics disabled")
		return nil
	case "pushgateway":
		url := job.Metrics.PushgatewayURL
		if url == "" {
			url = os.Getenv("PUSHGATEWAY_URL")
		}
		if url == "" {
			url = "http://localhost:9091"
		}
		b, err = prompush.NewBackend(job.Job, url)
	case "datadog":
		b, err = datadog.NewBackend(datadog.Config{
			Addr:       job.Metrics.DatadogAddr,
			Namespace:  "sweeper.",
			GlobalTags: []string{"job:" + job.Job},
		})
	default:
		slog.Warn("unknown metrics backend; metrics disabled", "backend", name)
		return nil
	}
	if err != nil {
		slog.Warn("metrics backend unavailable; using nop", "backend", name, "err", err)
		return nil
	}

	metrics.SetBackend(b)
	slog.Info("metrics enabled", "backend", name)
	return func() {
		if err := metrics.Flush(); err != nil {
			slog.Warn("metrics flush failed", "err", err)
		}
	}
}

// overrides holds the command-line settings that take precedence over a
// job file.
type overrides struct {
	inputs, list, to, columns, out, report string
	delimiter, sheet                 string
	dedupe, fill, describe           bool
	preview, workers                 int
	logLevel, logFormat              string
	metricsBackend                   string
	pushgatewayURL, datadogAddr      string
}

// apply copies flags into job. Without a job file every flag applies;
// otherwise only the ones given explicitly.
func (o overrides) apply(job *config.Job, set map[string]bool, args []string, all bool) {
	use := func(name string) bool { return all || set[name] }

	if use("in") && o.inputs != "" {
		job.Inputs = splitList(o.inputs)
	}
	if len(args) > 0 {
		job.Inputs = append(job.Inputs, args...)
	}
	if use("to") {
		job.Output.Format = o.to
	}
	if use("dedupe") {
		job.Clean.Dedupe = o.dedupe
	}
	if use("fill") {
		job.Clean.FillMissing = o.fill
	}
	if use("columns") && o.columns != "" {
		job.Columns = splitList(o.columns)
	}
	if use("describe") {
		job.Inspect.Describe = o.describe
	}
	if use("preview") {
		job.Inspect.PreviewRows = o.preview
	}
	if use("out") && o.out != "" {
		job.Output.Dir = o.out
	}
	if use("report") && o.report != "" {
		job.Inspect.Report = o.report
	}
	if use("delimiter") && o.delimiter != "" {
		job.Parser.Delimiter = o.delimiter
	}
	if use("sheet") && o.sheet != "" {
		job.Parser.Sheet = o.sheet
	}
	if use("workers") {
		job.Runtime.Workers = o.workers
	}
	if use("log-level") {
		job.Log.Level = o.logLevel
	}
	if use("log-format") {
		job.Log.Format = o.logFormat
	}
	if use("metrics-backend") && o.metricsBackend != "" {
		job.Metrics.Backend = o.metricsBackend
	}
	if use("pushgateway-url") && o.pushgatewayURL != "" {
		job.Metrics.PushgatewayURL = o.pushgatewayURL
	}
	if use("datadog-addr") && o.datadogAddr != "" {
		job.Metrics.DatadogAddr = o.datadogAddr
	}
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
