// Package metrics is the thin seam between the loader and whatever metrics
// system a deployment uses. The loader only ever calls the package-level
// helpers; the default backend is a nop so runs without a metrics backend
// cost nothing.
package metrics

import "sync"

// Labels attach low-cardinality dimensions to a counter (e.g. status, kind).
type Labels map[string]string

// Backend is implemented by concrete metric sinks (see metrics/datadog).
type Backend interface {
	// IncCounter adds delta to the named counter. Implementations ignore
	// names they do not recognize.
	IncCounter(name string, delta float64, labels Labels)

	// Flush submits anything buffered. Called once at the end of a run.
	Flush() error
}

// Counter names emitted by the loader.
const (
	CounterFiles   = "load_files_total"   // labels: status=parsed|failed
	CounterRecords = "load_records_total" // labels: kind=inserted|rejected
	CounterBatches = "load_batches_total"
)

type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels) {}
func (nopBackend) Flush() error                       { return nil }

var (
	mu      sync.RWMutex
	current Backend = nopBackend{}
)

// SetBackend installs b as the process-wide backend.
func SetBackend(b Backend) {
	mu.Lock()
	defer mu.Unlock()
	if b == nil {
		current = nopBackend{}
		return
	}
	current = b
}

func IncCounter(name string, delta float64, labels Labels) {
	mu.RLock()
	b := current
	mu.RUnlock()
	b.IncCounter(name, delta, labels)
}

func Flush() error {
	mu.RLock()
	b := current
	mu.RUnlock()
	return b.Flush()
}
