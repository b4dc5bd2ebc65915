// Package datadog implements a Datadog backend for the internal/metrics package.
//
// NOTE ABOUT FLUSHING:
// Submitting only once at process exit makes Datadog dashboards awkward for
// long loads (a single spike instead of a time series). Therefore we:
//   - buffer counters in-memory (fast, lock-protected)
//   - periodically Flush() on a ticker (default: once per minute)
//   - Flush() one final time on Close()
//
// Concurrency model:
//   - Loader code can call IncCounter at any time.
//   - Flush snapshots+resets buffers under a mutex, then submits out-of-lock.
//   - The flush loop calls Flush() periodically; Close() stops the loop.
//
// If the process dies with SIGKILL/OOM, Close() won't run (no backend can fix that).
package datadog

import (
	"context"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/laptevshr/crLoadCSVData/internal/metrics"

	dd "github.com/DataDog/datadog-api-client-go/v2/api/datadog"
	"github.com/DataDog/datadog-api-client-go/v2/api/datadogV2"
)

// Options controls Datadog backend configuration.
type Options struct {
	// JobName becomes tag "job:<name>" on every metric.
	// If empty, defaults to "csvloader".
	JobName string

	// Tags are extra Datadog tags (e.g. []string{"env:prod", "service:csvloader"}).
	Tags []string

	// FlushEvery controls how often buffered metrics are submitted.
	// If <= 0, defaults to 60 seconds.
	FlushEvery time.Duration

	// Unexported test seams. Production code never sets them; unit tests use
	// them to avoid real network submission and nondeterministic tickers.
	now       func() time.Time
	newTicker func(d time.Duration) *time.Ticker
	submitter metricsSubmitter
}

// metricsSubmitter is the minimal interface needed to submit metrics.
//
// The Datadog SDK exposes a concrete *datadogV2.MetricsApi which cannot be
// stubbed without real HTTP; depending on this tiny private interface instead
// keeps the tests deterministic.
type metricsSubmitter interface {
	SubmitMetrics(ctx context.Context, body datadogV2.MetricPayload, params ...datadogV2.SubmitMetricsOptionalParameters) (datadogV2.IntakePayloadAccepted, *http.Response, error)
}

// Backend implements metrics.Backend for Datadog.
type Backend struct {
	api metricsSubmitter
	ctx context.Context

	flushEvery time.Duration
	stopCh     chan struct{}
	doneCh     chan struct{}

	baseTags []string

	now       func() time.Time
	newTicker func(d time.Duration) *time.Ticker

	mu sync.Mutex

	fileCounts   map[string]float64 // status -> count
	recordCounts map[string]float64 // kind -> count
	batchCount   float64
}

func resolveEnvTag() string {
	if v := strings.TrimSpace(os.Getenv("ENV")); v != "" {
		return "env:" + v
	}
	if v := strings.TrimSpace(os.Getenv("DD_ENV")); v != "" {
		return "env:" + v
	}
	return "env:unknown"
}

// NewBackend constructs a Datadog backend using the official client and
// starts its periodic flush goroutine.
//
// Edge cases:
//   - If opts.FlushEvery <= 0, defaults to 60s.
//   - If opts.JobName is empty, defaults to "csvloader".
//   - Environment tag selection uses ENV then DD_ENV, otherwise env:unknown.
func NewBackend(parent context.Context, opts Options) (*Backend, error) {
	job := opts.JobName
	if job == "" {
		job = "csvloader"
	}

	flushEvery := opts.FlushEvery
	if flushEvery <= 0 {
		flushEvery = 60 * time.Second
	}

	baseTags := make([]string, 0, 2+len(opts.Tags))
	baseTags = append(baseTags, resolveEnvTag(), "job:"+job)
	baseTags = append(baseTags, opts.Tags...)

	nowFn := opts.now
	if nowFn == nil {
		nowFn = time.Now
	}
	newTicker := opts.newTicker
	if newTicker == nil {
		newTicker = time.NewTicker
	}

	submitter := opts.submitter
	if submitter == nil {
		client := dd.NewAPIClient(dd.NewConfiguration())
		submitter = datadogV2.NewMetricsApi(client)
	}

	b := &Backend{
		api:        submitter,
		ctx:        dd.NewDefaultContext(parent),
		flushEvery: flushEvery,
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),

		baseTags: baseTags,

		now:       nowFn,
		newTicker: newTicker,

		fileCounts:   make(map[string]float64),
		recordCounts: make(map[string]float64),
	}

	go b.loop()
	return b, nil
}

func (b *Backend) loop() {
	defer close(b.doneCh)

	t := b.newTicker(b.flushEvery)
	defer t.Stop()

	for {
		select {
		case <-t.C:
			_ = b.Flush()
		case <-b.stopCh:
			return
		}
	}
}

// Close stops the background flush loop and performs one final Flush().
// Close once; a second call panics on the closed channel, mirroring typical
// Go "Close once" semantics for process-lifetime backends.
func (b *Backend) Close() error {
	close(b.stopCh)
	<-b.doneCh
	return b.Flush()
}

// IncCounter implements metrics.Backend.
func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	if delta <= 0 {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	switch name {
	case metrics.CounterFiles:
		status := labels["status"]
		if status == "" {
			status = "unknown"
		}
		b.fileCounts[status] += delta

	case metrics.CounterRecords:
		kind := labels["kind"]
		if kind == "" {
			return
		}
		b.recordCounts[kind] += delta

	case metrics.CounterBatches:
		b.batchCount += delta

	default:
		// Ignore unknown metrics by design.
	}
}

// snapshot is the detached buffered state used to build one flush payload.
// Flush() must reset buffers under a lock but submit out-of-lock; snapshot
// separates collect+reset from payload building+submission.
type snapshot struct {
	fileCounts   map[string]float64
	recordCounts map[string]float64
	batchCount   float64
}

func (s snapshot) isEmpty() bool {
	return len(s.fileCounts) == 0 && len(s.recordCounts) == 0 && s.batchCount == 0
}

func (b *Backend) snapshotAndReset() snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := snapshot{
		fileCounts:   b.fileCounts,
		recordCounts: b.recordCounts,
		batchCount:   b.batchCount,
	}

	b.fileCounts = make(map[string]float64)
	b.recordCounts = make(map[string]float64)
	b.batchCount = 0

	return s
}

// Flush submits buffered metrics to Datadog and resets local buffers.
//
// Edge cases:
//   - Safe to call concurrently with IncCounter.
//   - Buffers are reset even if submission fails, to keep the loader fast and
//     avoid blocking future writes.
func (b *Backend) Flush() error {
	snap := b.snapshotAndReset()
	if snap.isEmpty() {
		return nil
	}

	payload := datadogV2.MetricPayload{Series: b.buildSeries(snap, b.now().Unix())}
	_, _, err := b.api.SubmitMetrics(b.ctx, payload, *datadogV2.NewSubmitMetricsOptionalParameters())
	return err
}

// buildSeries constructs Datadog series for a snapshot at a fixed timestamp.
// It is pure (no locks, no network, no clocks), which keeps it unit-testable,
// and it centralizes naming/tagging behavior.
func (b *Backend) buildSeries(s snapshot, nowUnix int64) []datadogV2.MetricSeries {
	count := func(metric string, value float64, tags []string) datadogV2.MetricSeries {
		return datadogV2.MetricSeries{
			Metric: metric,
			Type:   datadogV2.METRICINTAKETYPE_COUNT.Ptr(),
			Points: []datadogV2.MetricPoint{
				{Timestamp: dd.PtrInt64(nowUnix), Value: dd.PtrFloat64(value)},
			},
			Tags: tags,
		}
	}

	series := make([]datadogV2.MetricSeries, 0, len(s.fileCounts)+len(s.recordCounts)+1)

	for status, v := range s.fileCounts {
		if v == 0 {
			continue
		}
		series = append(series, count("csvloader.files.total", v, withTags(b.baseTags, "status:"+status)))
	}
	for kind, v := range s.recordCounts {
		if v == 0 {
			continue
		}
		series = append(series, count("csvloader.records.total", v, withTags(b.baseTags, "kind:"+kind)))
	}
	if s.batchCount != 0 {
		series = append(series, count("csvloader.batches.total", s.batchCount, b.baseTags))
	}

	return series
}

func withTags(base []string, extras ...string) []string {
	out := make([]string, 0, len(base)+len(extras))
	out = append(out, base...)
	out = append(out, extras...)
	return out
}

var _ metrics.Backend = (*Backend)(nil)

// ParseTagsCSV parses comma-separated tags like "env:prod,service:csvloader".
func ParseTagsCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
