// Package prompush implements a Prometheus Pushgateway backend for the
// metrics package.
//
// A sweep run is a short-lived batch process, so there is no scrape endpoint:
// collectors live in a private registry and Flush pushes it to the gateway
// under the run's job name.
package prompush

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"sweeper/internal/metrics"
)

// Backend is a Prometheus Pushgateway metrics backend.
type Backend struct {
	gatewayURL string // e.g. http://pushgateway:9091
	jobName    string // Pushgateway "job" group
	reg        *prometheus.Registry

	stepCounter  *prometheus.CounterVec // sweep_step_total
	stepDuration *prometheus.SummaryVec // sweep_step_duration_seconds
	rowCounter   *prometheus.CounterVec // sweep_rows_total
	fileCounter  *prometheus.CounterVec // sweep_files_total
}

// NewBackend constructs a Pushgateway backend. jobName becomes the
// Pushgateway grouping key and defaults to "sweep".
func NewBackend(jobName, gatewayURL string) (*Backend, error) {
	if gatewayURL == "" {
		return nil, fmt.Errorf("prompush: gateway URL is required")
	}
	if jobName == "" {
		jobName = "sweep"
	}

	reg := prometheus.NewRegistry()

	stepCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: metrics.StepTotal,
			Help: "Pipeline step executions by step and status.",
		},
		[]string{"step", "status"},
	)
	stepDuration := prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       metrics.StepDuration,
			Help:       "Duration of pipeline steps in seconds.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"step", "status"},
	)
	rowCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: metrics.RowsTotal,
			Help: "Rows read, deduplicated, filled and written.",
		},
		[]string{"kind"},
	)
	fileCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: metrics.FilesTotal,
			Help: "Input files processed by outcome.",
		},
		[]string{"status"},
	)

	for name, c := range map[string]prometheus.Collector{
		"step counter": stepCounter,
		"step summary": stepDuration,
		"row counter":  rowCounter,
		"file counter": fileCounter,
	} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("prompush: register %s: %w", name, err)
		}
	}

	return &Backend{
		gatewayURL:   gatewayURL,
		jobName:      jobName,
		reg:          reg,
		stepCounter:  stepCounter,
		stepDuration: stepDuration,
		rowCounter:   rowCounter,
		fileCounter:  fileCounter,
	}, nil
}

// IncCounter implements metrics.Backend. Unknown names are ignored.
func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case metrics.StepTotal:
		if b.stepCounter != nil {
			b.stepCounter.WithLabelValues(labels["step"], labels["status"]).Add(delta)
		}
	case metrics.RowsTotal:
		if b.rowCounter != nil {
			b.rowCounter.WithLabelValues(labels["kind"]).Add(delta)
		}
	case metrics.FilesTotal:
		if b.fileCounter != nil {
			b.fileCounter.WithLabelValues(labels["status"]).Add(delta)
		}
	}
}

// ObserveHistogram implements metrics.Backend.
func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if name != metrics.StepDuration || b.stepDuration == nil {
		return
	}
	b.stepDuration.WithLabelValues(labels["step"], labels["status"]).Observe(value)
}

// Flush pushes the current registry to the Pushgateway.
func (b *Backend) Flush() error {
	return push.New(b.gatewayURL, b.jobName).
		Gatherer(b.reg).
		Push()
}
