// Package sqlite implements storage.DocumentStore on an embedded SQLite file.
//
// Documents are stored as JSON text, one row per document, in a table named
// after the configured collection. This backend exists for local runs and
// end-to-end tests that need real persistence without an external server.
//
// Key design points vs the Mongo backend:
//   - There is no server to ping; Connect opens the file and verifies it with
//     PingContext, then creates the collection table if missing.
//   - SQLite has no unordered bulk write. InsertMany inserts row by row and
//     collects per-row failures, which gives the same continue-past-errors
//     semantics at the cost of one statement per document.
//   - Timestamps inside documents are serialized by encoding/json as
//     RFC3339Nano strings, which round-trip reliably with modernc.org/sqlite.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/laptevshr/crLoadCSVData/internal/storage"
)

const connectTimeout = 5 * time.Second

func init() {
	storage.Register("sqlite", func(cfg storage.Config) (storage.DocumentStore, error) {
		return New(cfg), nil
	})
}

type Store struct {
	cfg   storage.Config
	table string
	db    *sql.DB
}

func New(cfg storage.Config) *Store {
	return &Store{cfg: cfg, table: storage.NormalizeIdent(cfg.Collection)}
}

func (s *Store) Connect(ctx context.Context) error {
	if s.table == "" {
		return errors.New("sqlite: empty collection name")
	}

	db, err := sql.Open("sqlite", s.cfg.URI)
	if err != nil {
		return fmt.Errorf("sqlite open: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return fmt.Errorf("sqlite ping %s: %w", s.cfg.URI, err)
	}

	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (doc TEXT NOT NULL)`, sqlIdent(s.table))
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		_ = db.Close()
		return fmt.Errorf("sqlite create table %s: %w", s.table, err)
	}

	s.db = db
	return nil
}

func (s *Store) Disconnect(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *Store) InsertMany(ctx context.Context, docs []storage.Document) (storage.BulkResult, error) {
	if s.db == nil {
		return storage.BulkResult{}, errors.New("sqlite: not connected")
	}

	q := fmt.Sprintf(`INSERT INTO %s (doc) VALUES (?)`, sqlIdent(s.table))

	var res storage.BulkResult
	for i, d := range docs {
		b, err := json.Marshal(d)
		if err != nil {
			res.ItemErrors = append(res.ItemErrors, storage.ItemError{Index: i, Err: err})
			continue
		}
		if _, err := s.db.ExecContext(ctx, q, string(b)); err != nil {
			res.ItemErrors = append(res.ItemErrors, storage.ItemError{Index: i, Err: err})
			continue
		}
		res.Inserted++
	}
	return res, nil
}

// EnsureIndexes creates one expression index per field over the JSON column.
// CREATE INDEX IF NOT EXISTS makes re-runs no-ops.
func (s *Store) EnsureIndexes(ctx context.Context, fields []string) error {
	if s.db == nil {
		return errors.New("sqlite: not connected")
	}

	for _, f := range fields {
		q := fmt.Sprintf(
			`CREATE INDEX IF NOT EXISTS %s ON %s (json_extract(doc, %s))`,
			sqlIdent(storage.IndexName(s.table, f)),
			sqlIdent(s.table),
			jsonPath(f),
		)
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("sqlite create index on %q: %w", f, err)
		}
	}
	return nil
}

func sqlIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

// jsonPath builds a quoted SQLite JSON path literal for a top-level field,
// e.g. `'$."Open time"'`.
func jsonPath(field string) string {
	field = strings.ReplaceAll(field, `"`, ``)
	field = strings.ReplaceAll(field, `'`, ``)
	return `'$."` + field + `"'`
}
