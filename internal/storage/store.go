// Package storage defines the document-store boundary the loader talks to,
// plus the factory registry backends use to make themselves selectable by
// kind. The loader never imports a backend package directly; cmd wires them
// in via the blank-import package storage/all.
package storage

import (
	"context"
	"fmt"
	"sync"
)

// Config is the minimal configuration needed to construct a store.
//
// Edge cases:
//   - Kind must be non-empty and must match a registered backend kind.
//   - URI is passed through to the backend factory; validation is
//     backend-specific (mongodb:// URI, SQLite path, Postgres DSN).
type Config struct {
	Kind       string
	URI        string
	Database   string
	Collection string
}

// Document is one schema-flexible record as persisted by a store.
type Document map[string]any

// ItemError describes a single rejected document within a bulk insert.
type ItemError struct {
	// Index of the document within the submitted batch, -1 if unknown.
	Index int
	Err   error
}

// BulkResult is the outcome of one unordered bulk insert. A batch with
// rejected documents is a partial success, not an error: Inserted counts what
// the store accepted and ItemErrors carries the rejects.
type BulkResult struct {
	Inserted   int
	ItemErrors []ItemError
}

// Failed returns the number of rejected documents.
func (r BulkResult) Failed() int { return len(r.ItemErrors) }

// DocumentStore is the collaborator boundary consumed by the loader.
//
// IMPORTANT: InsertMany must use unordered semantics: it continues past
// individual document failures and reports both counts, rather than stopping
// at the first error. Only a failure affecting the batch as a whole (lost
// connection, bad namespace) is returned as the error value.
type DocumentStore interface {
	// Connect establishes the connection and verifies liveness within a
	// bounded window. Failure is reported, not retried.
	Connect(ctx context.Context) error

	// Disconnect releases the connection. Idempotent and safe to call even
	// if Connect was never called or failed.
	Disconnect(ctx context.Context) error

	// InsertMany persists docs with unordered bulk semantics.
	InsertMany(ctx context.Context, docs []Document) (BulkResult, error)

	// EnsureIndexes creates an ascending index per field. Creating an index
	// that already exists is a no-op, not an error.
	EnsureIndexes(ctx context.Context, fields []string) error
}

// ---- factories ----

type factory func(cfg Config) (DocumentStore, error)

var (
	mu        sync.RWMutex
	factories = map[string]factory{}
)

// Register registers a store backend under a kind (e.g. "mongo", "sqlite").
//
// When to use:
//   - Call Register from an init() function in a backend package.
//
// Panics:
//   - If kind is empty.
//   - If f is nil.
//   - If kind is already registered. This is intentional to fail fast and
//     avoid ambiguous backend selection.
func Register(kind string, f factory) {
	mu.Lock()
	defer mu.Unlock()

	if kind == "" {
		panic("storage: Register called with empty kind")
	}
	if f == nil {
		panic("storage: Register called with nil factory")
	}
	if _, exists := factories[kind]; exists {
		panic(fmt.Sprintf("storage: factory already registered for kind=%q", kind))
	}

	factories[kind] = f
}

// New constructs a DocumentStore using the registered backend factory.
//
// Errors:
//   - Returns an error if cfg.Kind is empty or unsupported.
//   - Returns whatever error the registered factory returns.
func New(cfg Config) (DocumentStore, error) {
	if cfg.Kind == "" {
		return nil, fmt.Errorf("storage: missing Kind")
	}

	mu.RLock()
	f := factories[cfg.Kind]
	mu.RUnlock()

	if f == nil {
		return nil, fmt.Errorf("unsupported storage.kind=%s", cfg.Kind)
	}
	return f(cfg)
}
