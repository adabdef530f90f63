// Package metrics is a tiny facade between the masking run and whatever
// metrics backend is configured. The core code depends only on this package;
// concrete backends (Datadog) live in subpackages and are selected by the
// binary at startup.
//
// The default backend is a nop, so library code can emit metrics
// unconditionally without the binary paying for an unused integration.
package metrics

import "sync/atomic"

// Labels are optional metric dimensions (e.g. {"column": "email"}).
type Labels map[string]string

// Backend is the minimal surface a metrics integration must provide.
type Backend interface {
	// IncCounter adds delta to a named counter. Implementations ignore
	// metric names they do not know.
	IncCounter(name string, delta float64, labels Labels)

	// ObserveHistogram records one sample of a named distribution.
	ObserveHistogram(name string, value float64, labels Labels)

	// Flush submits buffered metrics. Safe to call at any time.
	Flush() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels)       {}
func (nopBackend) ObserveHistogram(string, float64, Labels) {}
func (nopBackend) Flush() error                             { return nil }

// holder gives atomic.Value a single concrete type; storing differently
// typed Backend implementations directly would panic.
type holder struct{ b Backend }

var backend atomic.Value // holder

func init() {
	backend.Store(holder{b: nopBackend{}})
}

// SetBackend installs b as the process-wide backend.
func SetBackend(b Backend) {
	if b == nil {
		b = nopBackend{}
	}
	backend.Store(holder{b: b})
}

func current() Backend {
	return backend.Load().(holder).b
}

// IncCounter adds delta to a named counter on the active backend.
func IncCounter(name string, delta float64, labels Labels) {
	current().IncCounter(name, delta, labels)
}

// ObserveHistogram records a distribution sample on the active backend.
func ObserveHistogram(name string, value float64, labels Labels) {
	current().ObserveHistogram(name, value, labels)
}

// Flush submits buffered metrics on the active backend.
func Flush() error {
	return current().Flush()
}

// Metric names emitted by the masking run.
const (
	MetricRowsTotal          = "mask_rows_total"
	MetricCellsExaminedTotal = "mask_cells_examined_total"
	MetricCellsReplacedTotal = "mask_cells_replaced_total"
	MetricRunDurationSeconds = "mask_run_duration_seconds"
)
