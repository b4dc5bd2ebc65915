package storage

import (
	"context"
	"errors"
	"testing"
)

type stubStore struct{}

func (stubStore) Connect(ctx context.Context) error    { return nil }
func (stubStore) Disconnect(ctx context.Context) error { return nil }
func (stubStore) InsertMany(ctx context.Context, docs []Document) (BulkResult, error) {
	return BulkResult{}, nil
}
func (stubStore) EnsureIndexes(ctx context.Context, fields []string) error { return nil }

func TestRegisterAndNew(t *testing.T) {
	Register("stub", func(cfg Config) (DocumentStore, error) {
		return stubStore{}, nil
	})

	s, err := New(Config{Kind: "stub"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if s == nil {
		t.Fatalf("New returned nil store")
	}
}

func TestNew_Unsupported(t *testing.T) {
	if _, err := New(Config{Kind: "no-such-backend"}); err == nil {
		t.Fatalf("expected error for unregistered kind")
	}
}

func TestNew_EmptyKind(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatalf("expected error for empty kind")
	}
}

func TestNew_FactoryErrorPropagates(t *testing.T) {
	boom := errors.New("boom")
	Register("stub-err", func(cfg Config) (DocumentStore, error) {
		return nil, boom
	})

	if _, err := New(Config{Kind: "stub-err"}); !errors.Is(err, boom) {
		t.Fatalf("err=%v, want factory error", err)
	}
}

func TestRegister_DuplicatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on duplicate registration")
		}
	}()
	Register("stub-dup", func(cfg Config) (DocumentStore, error) { return stubStore{}, nil })
	Register("stub-dup", func(cfg Config) (DocumentStore, error) { return stubStore{}, nil })
}

func TestBulkResultFailed(t *testing.T) {
	r := BulkResult{Inserted: 7, ItemErrors: []ItemError{{Index: 0}, {Index: 3}}}
	if r.Failed() != 2 {
		t.Fatalf("Failed()=%d, want 2", r.Failed())
	}
}

func TestIndexName(t *testing.T) {
	tests := []struct {
		collection string
		field      string
		want       string
	}{
		{"ohlcvt_data", "Open time", "idx_ohlcvt_data_open_time"},
		{"ohlcvt_data", "source_file", "idx_ohlcvt_data_source_file"},
		{"Weird  Name!", "A/B", "idx_weird_name_a_b"},
	}
	for _, tc := range tests {
		if got := IndexName(tc.collection, tc.field); got != tc.want {
			t.Fatalf("IndexName(%q,%q)=%q, want %q", tc.collection, tc.field, got, tc.want)
		}
	}
}

func TestNormalizeIdent(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Open time", "open_time"},
		{"  padded  ", "padded"},
		{"already_fine", "already_fine"},
		{"Taker buy base asset volume", "taker_buy_base_asset_volume"},
	}
	for _, tc := range tests {
		if got := NormalizeIdent(tc.in); got != tc.want {
			t.Fatalf("NormalizeIdent(%q)=%q, want %q", tc.in, got, tc.want)
		}
	}
}
