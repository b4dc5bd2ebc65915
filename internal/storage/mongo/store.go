// Package mongo implements storage.DocumentStore on a MongoDB collection.
//
// This is the primary production backend: candle documents keep their
// original header field names (spaces included) and no schema is enforced
// server-side.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/laptevshr/crLoadCSVData/internal/storage"
)

// connectTimeout bounds both server selection and the liveness ping. A store
// that cannot answer within this window is declared unreachable.
const connectTimeout = 5 * time.Second

func init() {
	storage.Register("mongo", func(cfg storage.Config) (storage.DocumentStore, error) {
		return New(cfg), nil
	})
}

// Store holds the client and the bound target collection between Connect and
// Disconnect.
type Store struct {
	cfg    storage.Config
	client *mongo.Client
	coll   *mongo.Collection
}

func New(cfg storage.Config) *Store {
	return &Store{cfg: cfg}
}

func (s *Store) Connect(ctx context.Context) error {
	opts := options.Client().
		ApplyURI(s.cfg.URI).
		SetServerSelectionTimeout(connectTimeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return fmt.Errorf("mongo connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return fmt.Errorf("mongo ping %s: %w", s.cfg.URI, err)
	}

	s.client = client
	s.coll = client.Database(s.cfg.Database).Collection(s.cfg.Collection)
	return nil
}

func (s *Store) Disconnect(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	err := s.client.Disconnect(ctx)
	s.client = nil
	s.coll = nil
	return err
}

// InsertMany persists docs with ordered=false so the server keeps writing
// past individual rejects (duplicate keys, validation). A bulk-write
// exception is folded into the BulkResult; only batch-level failures come
// back as the error value.
func (s *Store) InsertMany(ctx context.Context, docs []storage.Document) (storage.BulkResult, error) {
	if s.coll == nil {
		return storage.BulkResult{}, errors.New("mongo: not connected")
	}
	if len(docs) == 0 {
		return storage.BulkResult{}, nil
	}

	payload := make([]any, len(docs))
	for i, d := range docs {
		payload[i] = d
	}

	res, err := s.coll.InsertMany(ctx, payload, options.InsertMany().SetOrdered(false))
	if err != nil {
		var bwe mongo.BulkWriteException
		if !errors.As(err, &bwe) {
			return storage.BulkResult{}, fmt.Errorf("mongo insert: %w", err)
		}

		items := make([]storage.ItemError, 0, len(bwe.WriteErrors))
		for _, we := range bwe.WriteErrors {
			items = append(items, storage.ItemError{Index: we.Index, Err: we})
		}
		inserted := len(docs) - len(items)
		if res != nil {
			inserted = len(res.InsertedIDs)
		}
		return storage.BulkResult{Inserted: inserted, ItemErrors: items}, nil
	}

	return storage.BulkResult{Inserted: len(res.InsertedIDs)}, nil
}

// EnsureIndexes creates one ascending index per field. createIndexes is
// idempotent server-side, so re-running a load changes nothing.
func (s *Store) EnsureIndexes(ctx context.Context, fields []string) error {
	if s.coll == nil {
		return errors.New("mongo: not connected")
	}
	if len(fields) == 0 {
		return nil
	}

	models := make([]mongo.IndexModel, 0, len(fields))
	for _, f := range fields {
		models = append(models, mongo.IndexModel{Keys: bson.D{{Key: f, Value: 1}}})
	}
	if _, err := s.coll.Indexes().CreateMany(ctx, models); err != nil {
		return fmt.Errorf("mongo create indexes: %w", err)
	}
	return nil
}
