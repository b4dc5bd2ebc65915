package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/laptevshr/crLoadCSVData/internal/config"
	"github.com/laptevshr/crLoadCSVData/internal/loader"
	"github.com/laptevshr/crLoadCSVData/internal/metrics"
	"github.com/laptevshr/crLoadCSVData/internal/metrics/datadog"
	"github.com/laptevshr/crLoadCSVData/internal/storage"

	// register all backends with the storage factory.
	// config specifies which to use but we need to build in support for all of them.
	_ "github.com/laptevshr/crLoadCSVData/internal/storage/all"
)

// main is the entry point for the csvloader binary. It maps flags onto the
// loader configuration, optionally initializes a metrics backend, and runs
// one load. Exit code 1 signals a failed run to shells and schedulers.
func main() {
	os.Exit(run())
}

func run() int {
	var (
		cfg               config.Config
		metricsBackendFlg string
	)

	flag.StringVar(&cfg.CSVDir, "csv-dir", "", "directory with OHLCVT CSV files (required)")
	flag.StringVar(&cfg.URI, "mongo-uri", "mongodb://localhost:27017/", "store connection URI")
	flag.StringVar(&cfg.Database, "db-name", "financial_data", "target database name")
	flag.StringVar(&cfg.Collection, "collection", "ohlcvt_data", "target collection name")
	flag.IntVar(&cfg.BatchSize, "batch-size", 1000, "records per insert batch")
	flag.StringVar(&cfg.StoreKind, "store", "mongo", "storage backend kind (mongo, sqlite, postgres)")
	flag.StringVar(&cfg.Encoding, "csv-encoding", "utf-8", "input file encoding (utf-8, windows-1251, latin-1)")
	flag.StringVar(&metricsBackendFlg, "metrics-backend", "none", "metrics backend to use (datadog, none)")
	verbose := flag.Bool("v", false, "enable verbose logs")

	flag.Parse()

	issues := cfg.Validate()
	hasError := false
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
		if iss.Severity == config.SeverityError {
			hasError = true
		}
	}
	if hasError {
		log.Printf("configuration is invalid")
		return 1
	}

	// Decide metrics backend: flag → env → default.
	backendName := metricsBackendFlg
	if backendName == "" {
		backendName = os.Getenv("METRICS_BACKEND")
	}
	switch backendName {
	case "datadog":
		// Optional extra tags provided via environment, complementing the
		// backend-enforced env:<...> tag.
		extraTags := datadog.ParseTagsCSV(os.Getenv("METRICS_TAGS"))

		// The backend starts its own periodic flush goroutine; Close() stops
		// the loop and performs one final flush.
		b, err := datadog.NewBackend(context.Background(), datadog.Options{
			JobName: "csvloader",
			Tags:    extraTags,
		})
		if err != nil {
			log.Printf("metrics: failed to init datadog backend: %v; using nop", err)
		} else {
			log.Printf("metrics: backend=%v tags=%v", backendName, extraTags)
			metrics.SetBackend(b)
			defer func() {
				if err := b.Close(); err != nil {
					log.Printf("metrics: datadog close/flush error: %v", err)
				}
			}()
		}

	case "", "none":
		// metrics disabled; nop backend remains
		if *verbose {
			log.Printf("metrics: disabled (backend=%q)", backendName)
		}

	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", backendName)
	}

	store, err := storage.New(storage.Config{
		Kind:       cfg.StoreKind,
		URI:        cfg.URI,
		Database:   cfg.Database,
		Collection: cfg.Collection,
	})
	if err != nil {
		log.Printf("storage: %v", err)
		return 1
	}

	if *verbose {
		log.Printf("load: dir=%s store=%s db=%s collection=%s batch_size=%d",
			cfg.CSVDir, cfg.StoreKind, cfg.Database, cfg.Collection, cfg.BatchSize)
	}

	ctx := context.Background()
	start := time.Now()

	res := loader.New(store, loader.Options{
		CSVDir:    cfg.CSVDir,
		BatchSize: cfg.BatchSize,
		Encoding:  cfg.Encoding,
	}).Run(ctx)

	if *verbose {
		log.Printf("completed in %s", time.Since(start).Truncate(time.Millisecond))
	}

	if !res.Success {
		log.Printf("data load failed (%d records inserted)", res.TotalRecords)
		return 1
	}
	log.Printf("data load completed successfully: %d records", res.TotalRecords)
	return 0
}
