// Package loader drives the end-to-end ingestion pipeline: discover files,
// parse and normalize each one, insert the records in batches, then provision
// indexes.
//
// Error containment works smallest-unit-first: a bad field becomes a null, a
// bad file is skipped, a bad batch is logged and the loop moves on. Only a
// connection failure or an empty input directory fails the whole run.
package loader

import (
	"context"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/laptevshr/crLoadCSVData/internal/discovery"
	"github.com/laptevshr/crLoadCSVData/internal/metrics"
	"github.com/laptevshr/crLoadCSVData/internal/normalize"
	csvparser "github.com/laptevshr/crLoadCSVData/internal/parser/csv"
	"github.com/laptevshr/crLoadCSVData/internal/storage"
)

// DefaultBatchSize is used when Options.BatchSize is not positive.
const DefaultBatchSize = 1000

// IndexFields is the declared set of queryable fields indexed after a load.
// The set is known ahead of time, so index provisioning never has to sample a
// persisted document to discover the shape.
var IndexFields = []string{
	csvparser.ColOpenTime,
	csvparser.ColCloseTime,
	normalize.FieldSourceFile,
}

// Options configure one load run.
type Options struct {
	CSVDir    string
	BatchSize int
	Encoding  string

	// Now stamps import_timestamp on normalized records. Defaults to time.Now.
	Now func() time.Time
}

// Result is the aggregate outcome of a run.
type Result struct {
	Success      bool
	TotalRecords int
}

// Loader runs the pipeline against one DocumentStore.
type Loader struct {
	store storage.DocumentStore
	opt   Options
}

func New(store storage.DocumentStore, opt Options) *Loader {
	if opt.BatchSize < 1 {
		opt.BatchSize = DefaultBatchSize
	}
	if opt.Now == nil {
		opt.Now = time.Now
	}
	return &Loader{store: store, opt: opt}
}

// accumulator carries the per-run counts through the pipeline calls.
// It is threaded explicitly rather than kept as Loader state so a future
// concurrent variant only has to make these increments atomic.
type accumulator struct {
	records     int
	filesParsed int
	filesFailed int
}

// Run executes one load. The store is disconnected on every path out of this
// function, whatever happened in between; Disconnect is idempotent and safe
// even when Connect failed.
func (l *Loader) Run(ctx context.Context) Result {
	defer func() {
		if err := l.store.Disconnect(ctx); err != nil {
			log.Printf("store disconnect: %v", err)
		}
	}()

	if err := l.store.Connect(ctx); err != nil {
		log.Printf("store connect: %v", err)
		return Result{}
	}

	files, err := discovery.ListDataFiles(l.opt.CSVDir)
	if err != nil {
		// Degrades to "no files found" rather than aborting.
		log.Printf("list data files in %s: %v", l.opt.CSVDir, err)
	}
	if len(files) == 0 {
		log.Printf("no %s files found in %s, nothing to load", discovery.DataFileSuffix, l.opt.CSVDir)
		return Result{}
	}
	log.Printf("found %d data files in %s", len(files), l.opt.CSVDir)

	acc := &accumulator{}
	for _, path := range files {
		l.loadFile(ctx, path, acc)
	}

	if acc.filesParsed == 0 {
		log.Printf("no data loaded: all %d files failed to parse", acc.filesFailed)
		return Result{TotalRecords: acc.records}
	}

	log.Printf("loaded %d records from %d files (%d files skipped)",
		acc.records, acc.filesParsed, acc.filesFailed)

	l.ensureIndexes(ctx)

	return Result{Success: true, TotalRecords: acc.records}
}

// loadFile parses, normalizes and inserts one file. A parse failure skips the
// file; it never aborts the run.
func (l *Loader) loadFile(ctx context.Context, path string, acc *accumulator) {
	table, err := csvparser.ParseFile(path, csvparser.Options{Encoding: l.opt.Encoding})
	if err != nil {
		log.Printf("skip file: %v", err)
		acc.filesFailed++
		metrics.IncCounter(metrics.CounterFiles, 1, metrics.Labels{"status": "failed"})
		return
	}
	acc.filesParsed++
	metrics.IncCounter(metrics.CounterFiles, 1, metrics.Labels{"status": "parsed"})

	base := filepath.Base(path)
	recs := normalize.Records(table, base, l.opt.Now)
	log.Printf("read %s: %d rows", base, len(recs))

	l.insertBatches(ctx, recs, acc)
}

// insertBatches splits recs into chunks of at most BatchSize and inserts each
// with unordered semantics.
//
// Rejected documents within a batch are counted, logged and permanently
// dropped; there is no retry or dead-letter capture. This is a stated design
// limitation of the loader, not an accident.
func (l *Loader) insertBatches(ctx context.Context, recs []normalize.Record, acc *accumulator) {
	for start := 0; start < len(recs); start += l.opt.BatchSize {
		end := start + l.opt.BatchSize
		if end > len(recs) {
			end = len(recs)
		}
		batch := recs[start:end]

		docs := make([]storage.Document, len(batch))
		for i, r := range batch {
			docs[i] = storage.Document(r)
		}

		batchNo := start/l.opt.BatchSize + 1
		res, err := l.store.InsertMany(ctx, docs)
		metrics.IncCounter(metrics.CounterBatches, 1, nil)

		// Whatever happened, only what the store acknowledged counts.
		acc.records += res.Inserted
		if res.Inserted > 0 {
			metrics.IncCounter(metrics.CounterRecords, float64(res.Inserted), metrics.Labels{"kind": "inserted"})
		}

		if err != nil {
			log.Printf("insert batch %d: %v", batchNo, err)
			continue
		}
		if n := res.Failed(); n > 0 {
			log.Printf("batch %d: %d of %d documents rejected, rejected documents are dropped",
				batchNo, n, len(batch))
			metrics.IncCounter(metrics.CounterRecords, float64(n), metrics.Labels{"kind": "rejected"})
			continue
		}
		log.Printf("inserted %d records (batch %d)", res.Inserted, batchNo)
	}
}

// ensureIndexes provisions the declared index set after all batches are in,
// keeping index maintenance out of the bulk-insert path. Failures are
// warnings; they never fail the run.
func (l *Loader) ensureIndexes(ctx context.Context) {
	if err := l.store.EnsureIndexes(ctx, IndexFields); err != nil {
		log.Printf("warning: create indexes: %v", err)
		return
	}
	log.Printf("ensured indexes on: %s", strings.Join(IndexFields, ", "))
}
