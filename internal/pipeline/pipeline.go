// Package pipeline runs one file through parse, clean, project, inspect and
// serialize, and fans a batch of files out over a bounded worker pool.
//
// Every Run owns its tables; nothing is shared between concurrent runs except
// the process-wide logger and metrics backend.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"sweeper/internal/format"
	"sweeper/internal/logging"
	"sweeper/internal/metrics"
	"sweeper/internal/parser"
	"sweeper/internal/serializer"
	"sweeper/internal/summary"
	"sweeper/internal/table"
	"sweeper/internal/transformer"
	"sweeper/internal/transformer/builtin"
)

// Step names used in errors, logs and metrics.
const (
	StepParse     = "parse"
	StepDedupe    = "dedupe"
	StepFill      = "fill"
	StepProject   = "project"
	StepDescribe  = "describe"
	StepSerialize = "serialize"
)

// FileDescriptor is an uploaded or on-disk input held in memory.
type FileDescriptor struct {
	Name   string
	Size   int64
	Format format.Format
	Data   []byte
}

// NewFileDescriptor wraps data read from a file called name, deriving the
// format from its extension. An unknown extension is reported as a
// *parser.ParseError so callers see the same error as for unreadable content.
func NewFileDescriptor(name string, data []byte) (FileDescriptor, error) {
	f, err := format.FromName(name)
	if err != nil {
		return FileDescriptor{}, &parser.ParseError{File: name, Format: format.Format(filepath.Ext(name)), Err: err}
	}
	return FileDescriptor{Name: name, Size: int64(len(data)), Format: f, Data: data}, nil
}

// Request selects what Run does with a file.
type Request struct {
	// Job labels logs and metrics.
	Job string

	Dedupe bool
	// Subset and Policy refine Dedupe; see builtin.DeDup.
	Subset []string
	Policy string

	FillMissing bool

	// Columns selects and orders the exported columns. Empty keeps all.
	Columns []string

	// Target is the export format.
	Target format.Format

	// Describe computes per-column statistics of the final table.
	Describe bool
	// PreviewRows bounds Result.Preview; zero means summary.DefaultPreviewRows.
	PreviewRows int

	Parser parser.Options
	Output serializer.Options
}

// Result is everything Run produced for one file.
type Result struct {
	RunID string
	File  string

	// Table is the cleaned and projected table that was serialized.
	Table   *table.Table
	Preview *table.Table
	// Numeric holds only the numeric columns of Table; it may have none.
	Numeric *table.Table
	// Stats is set when Request.Describe is true.
	Stats *summary.Statistics

	// Rows is the row count as parsed, before cleaning.
	Rows    int
	Removed int
	Filled  int

	Output serializer.Output
}

// StepError locates a failure inside a cleaning or projection step. The
// cause is reachable with errors.As, e.g. *table.UnknownColumnError.
type StepError struct {
	File string
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Step, e.File, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Run processes fd according to req. A failure yields no Result; the error
// is a *parser.ParseError, a *StepError or a *serializer.SerializeError.
func Run(ctx context.Context, fd FileDescriptor, req Request) (res *Result, err error) {
	r := &run{
		id:  uuid.NewString(),
		job: req.Job,
		fd:  fd,
	}
	ctx = logging.WithRun(ctx, r.id)
	r.ctx = ctx
	log := logging.WithFields(ctx, "file", fd.Name, "format", fd.Format)

	start := time.Now()
	defer func() {
		metrics.RecordFile(req.Job, err)
		if err != nil {
			log.Error("pipeline failed", "err", err)
			return
		}
		log.Info("pipeline done",
			"rows", res.Rows,
			"removed", res.Removed,
			"filled", res.Filled,
			"out", res.Output.FileName,
			"bytes", len(res.Output.Data),
			"took", time.Since(start).Truncate(time.Millisecond))
	}()

	var t *table.Table
	err = r.step(StepParse, func() error {
		var perr error
		t, perr = parser.Parse(fd.Name, fd.Data, fd.Format, req.Parser)
		return perr
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordRow(req.Job, "read", int64(t.Len()))

	res = &Result{RunID: r.id, File: fd.Name, Rows: t.Len()}

	dedup := &builtin.DeDup{Subset: req.Subset, Policy: req.Policy}
	fill := &builtin.Fill{}
	var chain transformer.Chain
	if req.Dedupe {
		chain = append(chain, r.wrap(StepDedupe, dedup))
	}
	if req.FillMissing {
		chain = append(chain, r.wrap(StepFill, fill))
	}
	chain = append(chain, r.wrap(StepProject, builtin.Select{Columns: req.Columns}))

	t, err = chain.Apply(t)
	if err != nil {
		var se *StepError
		if errors.As(err, &se) {
			return nil, se
		}
		return nil, err
	}
	res.Removed, res.Filled = dedup.Removed, fill.Filled
	metrics.RecordRow(req.Job, "deduplicated", int64(res.Removed))
	metrics.RecordRow(req.Job, "filled", int64(res.Filled))

	res.Table = t
	res.Numeric = summary.NumericView(t)
	res.Preview = summary.Preview(t, req.PreviewRows)

	if req.Describe {
		err = r.step(StepDescribe, func() error {
			st := summary.Describe(t)
			res.Stats = &st
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	err = r.step(StepSerialize, func() error {
		var serr error
		res.Output, serr = serializer.New(req.Output).Serialize(t, req.Target, fd.Name)
		return serr
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordRow(req.Job, "written", int64(t.Len()))
	return res, nil
}

type run struct {
	ctx context.Context
	id  string
	job string
	fd  FileDescriptor
}

// step times fn, reports it and honours cancellation before starting.
func (r *run) step(name string, fn func() error) error {
	if err := r.ctx.Err(); err != nil {
		return &StepError{File: r.fd.Name, Step: name, Err: err}
	}
	start := time.Now()
	err := fn()
	d := time.Since(start)
	metrics.RecordStep(r.job, name, err, d)
	logging.WithFields(r.ctx, "file", r.fd.Name, "step", name).Debug("step", "took", d, "err", err)
	return err
}

// wrap adapts a transformer into a reported step whose errors are
// *StepError.
func (r *run) wrap(name string, t transformer.Transformer) transformer.Transformer {
	return transformer.Func(func(in *table.Table) (*table.Table, error) {
		var out *table.Table
		err := r.step(name, func() error {
			var terr error
			out, terr = t.Apply(in)
			return terr
		})
		if err != nil {
			var se *StepError
			if errors.As(err, &se) {
				return nil, err
			}
			return nil, &StepError{File: r.fd.Name, Step: name, Err: err}
		}
		return out, nil
	})
}
