// Package metrics records operational metrics from the sweep pipeline through
// a pluggable Backend.
//
// The default backend is a no-op, so the helpers are always safe to call.
// Concrete systems live in subpackages (prompush, datadog) and are installed
// once at startup with SetBackend. Backends must be safe for concurrent use;
// files in a batch are processed in parallel.
package metrics

import "time"

// Metric names emitted by the helpers below.
const (
	StepTotal    = "sweep_step_total"
	StepDuration = "sweep_step_duration_seconds"
	RowsTotal    = "sweep_rows_total"
	FilesTotal   = "sweep_files_total"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a latency/duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it (e.g. Pushgateway).
	Flush() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels)       {}
func (nopBackend) ObserveHistogram(name string, value float64, labels Labels) {}
func (nopBackend) Flush() error                                               { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the existing one.
// Call it before any pipeline runs.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	backend = b
}

// Flush delegates to the current backend.
func Flush() error {
	return backend.Flush()
}

func status(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}

// RecordStep counts one execution of a pipeline step (parse, dedupe, fill,
// project, describe, serialize) and observes its duration.
func RecordStep(job, step string, err error, d time.Duration) {
	lbls := Labels{
		"job":    job,
		"step":   step,
		"status": status(err),
	}
	backend.IncCounter(StepTotal, 1, lbls)
	backend.ObserveHistogram(StepDuration, d.Seconds(), lbls)
}

// RecordRow adds delta to the row counter of the given kind:
//   - "read"
//   - "deduplicated"
//   - "filled"
//   - "written"
//
// Non-positive deltas are dropped.
func RecordRow(job, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter(RowsTotal, float64(delta), Labels{
		"job":  job,
		"kind": kind,
	})
}

// RecordFile counts one processed input file by outcome.
func RecordFile(job string, err error) {
	backend.IncCounter(FilesTotal, 1, Labels{
		"job":    job,
		"status": status(err),
	})
}
