package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"sweeper/internal/config"
	"sweeper/internal/datasource"
	"sweeper/internal/datasource/httpds"
	"sweeper/internal/format"
	"sweeper/internal/pipeline"
	"sweeper/internal/report"
	"sweeper/internal/serializer"
)

// Function variables used as test seams.
var (
	writeFileFn = os.WriteFile
	nowFn       = time.Now
)

// loader reads inputs by location.
type loader struct {
	client   *httpds.Client
	maxBytes int64
}

func newLoader(f config.Fetch) *loader {
	return &loader{
		client: httpds.NewClient(httpds.Config{
			Timeout:            time.Duration(f.TimeoutSeconds) * time.Second,
			MaxRetries:         f.MaxRetries,
			InsecureSkipVerify: f.InsecureSkipVerify,
			Header:             http.Header{"User-Agent": {"sweeper"}},
		}),
		maxBytes: int64(f.MaxMB) << 20,
	}
}

func (l *loader) load(ctx context.Context, location string) (pipeline.FileDescriptor, error) {
	src, err := datasource.For(location, l.client)
	if err != nil {
		return pipeline.FileDescriptor{}, err
	}
	data, err := datasource.ReadAll(ctx, src, l.maxBytes)
	if err != nil {
		return pipeline.FileDescriptor{}, err
	}
	return pipeline.NewFileDescriptor(datasource.Name(location), data)
}

// request maps a validated job onto a pipeline request.
func request(job config.Job) (pipeline.Request, error) {
	target, err := format.Parse(job.Output.Format)
	if err != nil {
		return pipeline.Request{}, err
	}
	return pipeline.Request{
		Job:         job.Job,
		Dedupe:      job.Clean.Dedupe,
		Subset:      job.Clean.Subset,
		Policy:      job.Clean.Policy,
		FillMissing: job.Clean.FillMissing,
		Columns:     job.Columns,
		Target:      target,
		Describe:    job.Inspect.Describe,
		PreviewRows: job.Inspect.PreviewRows,
		Parser:      job.Parser.ParserOptions(),
		Output: serializer.Options{
			BOM:   job.Output.BOM,
			Sheet: job.Output.Sheet,
		},
	}, nil
}

// run processes every input of job, writes outputs and the optional report,
// prints one status line per file (plus statistics when asked) to w, and
// returns the number of failed files.
func run(ctx context.Context, job config.Job, w io.Writer) int {
	req, err := request(job)
	if err != nil {
		fmt.Fprintf(w, "FAIL  %v\n", err)
		return len(job.Inputs)
	}

	// Inputs that cannot be read never reach the pipeline but keep their slot.
	results := make([]pipeline.FileResult, len(job.Inputs))
	var (
		files []pipeline.FileDescriptor
		slots []int
	)
	ld := newLoader(job.Fetch)
	for i, loc := range job.Inputs {
		fd, err := ld.load(ctx, loc)
		if err != nil {
			results[i] = pipeline.FileResult{File: datasource.Name(loc), Err: err}
			continue
		}
		files = append(files, fd)
		slots = append(slots, i)
	}
	for j, fr := range pipeline.RunBatch(ctx, files, req, job.Runtime.Workers) {
		results[slots[j]] = fr
	}

	claims := newOutputClaims(job.Inputs)
	for i, fr := range results {
		if fr.Err == nil {
			dst := filepath.Join(job.Output.Dir, fr.Result.Output.FileName)
			err := claims.claim(dst, fr.File)
			if err == nil {
				err = writeOutput(dst, fr.Result.Output.Data)
			}
			if err != nil {
				results[i] = pipeline.FileResult{File: fr.File, Err: err}
			}
		}
		printStatus(w, job, results[i])
	}

	if job.Inspect.Report != "" {
		if err := report.WriteFile(job.Inspect.Report, report.FromResults(job.Job, results, nowFn())); err != nil {
			slog.Error("write report", "path", job.Inspect.Report, "err", err)
		} else {
			slog.Info("report written", "path", job.Inspect.Report)
		}
	}
	return pipeline.Failed(results)
}

// outputClaims tracks the paths a run may not write to: its local inputs and
// every output already written.
type outputClaims struct {
	inputs  map[string]bool
	written map[string]string
}

func newOutputClaims(inputs []string) *outputClaims {
	c := &outputClaims{inputs: make(map[string]bool), written: make(map[string]string)}
	for _, in := range inputs {
		if datasource.IsRemote(in) {
			continue
		}
		c.inputs[absPath(in)] = true
	}
	return c
}

// claim reserves dst for file or reports why it cannot be written.
func (c *outputClaims) claim(dst, file string) error {
	p := absPath(dst)
	if c.inputs[p] {
		return fmt.Errorf("write output: %s would overwrite an input", dst)
	}
	if prev, ok := c.written[p]; ok {
		return fmt.Errorf("write output: %s already written for %s", dst, prev)
	}
	c.written[p] = file
	return nil
}

func absPath(p string) string {
	if a, err := filepath.Abs(p); err == nil {
		return a
	}
	return filepath.Clean(p)
}

func writeOutput(dst string, data []byte) error {
	if dir := filepath.Dir(dst); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	}
	if err := writeFileFn(dst, data, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

func printStatus(w io.Writer, job config.Job, fr pipeline.FileResult) {
	if fr.Err != nil {
		fmt.Fprintf(w, "FAIL  %s: %v\n", fr.File, fr.Err)
		return
	}
	res := fr.Result
	fmt.Fprintf(w, "OK    %s -> %s (rows=%d removed=%d filled=%d cols=%d)\n",
		fr.File, filepath.Join(job.Output.Dir, res.Output.FileName),
		res.Rows, res.Removed, res.Filled, res.Table.Width())

	if res.Stats == nil {
		return
	}
	if len(res.Stats.Columns) == 0 {
		fmt.Fprintln(w, "      no numeric columns to describe")
		return
	}
	out, err := serializer.Serialize(res.Stats.Table(), format.CSV, "describe.csv")
	if err != nil {
		fmt.Fprintf(w, "      describe: %v\n", err)
		return
	}
	if _, err := w.Write(out.Data); err != nil {
		slog.Warn("print statistics", "file", fr.File, "err", err)
	}
}
