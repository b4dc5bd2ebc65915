// Package postgres implements storage.DocumentStore on a Postgres table with
// a single JSONB column. It targets deployments that already run Postgres and
// want candle documents queryable with ->> operators instead of standing up a
// separate document database.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/laptevshr/crLoadCSVData/internal/storage"
)

const connectTimeout = 5 * time.Second

func init() {
	storage.Register("postgres", func(cfg storage.Config) (storage.DocumentStore, error) {
		return New(cfg), nil
	})
}

type Store struct {
	cfg   storage.Config
	table string
	pool  *pgxpool.Pool
}

func New(cfg storage.Config) *Store {
	return &Store{cfg: cfg, table: storage.NormalizeIdent(cfg.Collection)}
}

func (s *Store) Connect(ctx context.Context) error {
	if s.table == "" {
		return errors.New("postgres: empty collection name")
	}

	pool, err := pgxpool.New(ctx, s.cfg.URI)
	if err != nil {
		return fmt.Errorf("postgres pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return fmt.Errorf("postgres ping: %w", err)
	}

	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (doc JSONB NOT NULL)`, sqlIdent(s.table))
	if _, err := pool.Exec(ctx, ddl); err != nil {
		pool.Close()
		return fmt.Errorf("postgres create table %s: %w", s.table, err)
	}

	s.pool = pool
	return nil
}

func (s *Store) Disconnect(ctx context.Context) error {
	if s.pool == nil {
		return nil
	}
	s.pool.Close()
	s.pool = nil
	return nil
}

// InsertMany inserts one statement per document. pgx.Batch is not used here:
// a batch runs in an implicit transaction, so the first rejected document
// would poison every statement after it, which breaks the unordered
// continue-past-errors contract.
func (s *Store) InsertMany(ctx context.Context, docs []storage.Document) (storage.BulkResult, error) {
	if s.pool == nil {
		return storage.BulkResult{}, errors.New("postgres: not connected")
	}

	q := fmt.Sprintf(`INSERT INTO %s (doc) VALUES ($1::jsonb)`, sqlIdent(s.table))

	var res storage.BulkResult
	for i, d := range docs {
		b, err := json.Marshal(d)
		if err != nil {
			res.ItemErrors = append(res.ItemErrors, storage.ItemError{Index: i, Err: err})
			continue
		}
		if _, err := s.pool.Exec(ctx, q, string(b)); err != nil {
			res.ItemErrors = append(res.ItemErrors, storage.ItemError{Index: i, Err: err})
			continue
		}
		res.Inserted++
	}
	return res, nil
}

func (s *Store) EnsureIndexes(ctx context.Context, fields []string) error {
	if s.pool == nil {
		return errors.New("postgres: not connected")
	}

	for _, f := range fields {
		q := fmt.Sprintf(
			`CREATE INDEX IF NOT EXISTS %s ON %s ((doc->>%s))`,
			sqlIdent(storage.IndexName(s.table, f)),
			sqlIdent(s.table),
			sqlString(f),
		)
		if _, err := s.pool.Exec(ctx, q); err != nil {
			return fmt.Errorf("postgres create index on %q: %w", f, err)
		}
	}
	return nil
}

func sqlIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

func sqlString(s string) string {
	return `'` + strings.ReplaceAll(s, `'`, `''`) + `'`
}
