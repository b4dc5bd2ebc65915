// Package config holds the loader configuration and its validation rules.
//
// The CLI maps flags onto Config 1:1; Validate reports every problem it can
// find instead of stopping at the first one, so an operator can fix a bad
// invocation in a single pass.
package config

import "fmt"

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one validation finding. Path names the offending field in flag
// form (e.g. "csv-dir") so the message lines up with what the user typed.
type Issue struct {
	Severity Severity
	Path     string
	Message  string
}

// Config is the full configuration of one load run.
type Config struct {
	// CSVDir is the directory scanned for *.csv input files. Required.
	CSVDir string

	// StoreKind selects the storage backend registered under that kind
	// (e.g. "mongo", "sqlite", "postgres").
	StoreKind string

	// URI is the store connection string. For the mongo backend this is a
	// mongodb:// URI; for sqlite a file path; for postgres a DSN.
	URI string

	// Database and Collection name the destination namespace. SQL-backed
	// stores use Collection as the table name and ignore Database when the
	// DSN already carries it.
	Database   string
	Collection string

	// BatchSize is the maximum number of records per insert call. Must be >= 1.
	BatchSize int

	// Encoding is the input character encoding: "utf-8", "windows-1251" or
	// "latin-1".
	Encoding string
}

// Validate checks the configuration and returns all issues found. An empty
// slice means the config is usable.
func (c Config) Validate() []Issue {
	var issues []Issue

	errf := func(path, format string, a ...any) {
		issues = append(issues, Issue{SeverityError, path, fmt.Sprintf(format, a...)})
	}

	if c.CSVDir == "" {
		errf("csv-dir", "source directory is required")
	}
	if c.StoreKind == "" {
		errf("store", "storage backend kind must be set")
	}
	if c.URI == "" {
		errf("mongo-uri", "store URI must not be empty")
	}
	if c.Database == "" {
		errf("db-name", "database name must not be empty")
	}
	if c.Collection == "" {
		errf("collection", "collection name must not be empty")
	}
	if c.BatchSize < 1 {
		errf("batch-size", "batch size must be >= 1, got %d", c.BatchSize)
	}
	switch c.Encoding {
	case "", "utf-8", "utf8", "windows-1251", "latin-1", "iso-8859-1":
	default:
		issues = append(issues, Issue{
			SeverityWarning, "csv-encoding",
			fmt.Sprintf("unknown encoding %q, files will be read as utf-8", c.Encoding),
		})
	}

	return issues
}

// HasError reports whether any issue in the slice is an error.
func HasError(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}
