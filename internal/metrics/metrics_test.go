package metrics

import (
	"errors"
	"testing"
)

type recordingBackend struct {
	names    []string
	deltas   []float64
	labels   []Labels
	flushed  int
	flushErr error
}

func (r *recordingBackend) IncCounter(name string, delta float64, labels Labels) {
	r.names = append(r.names, name)
	r.deltas = append(r.deltas, delta)
	r.labels = append(r.labels, labels)
}

func (r *recordingBackend) Flush() error {
	r.flushed++
	return r.flushErr
}

func TestSetBackend_ForwardsCalls(t *testing.T) {
	rec := &recordingBackend{flushErr: errors.New("submit failed")}
	SetBackend(rec)
	defer SetBackend(nil)

	IncCounter(CounterFiles, 1, Labels{"status": "parsed"})
	IncCounter(CounterRecords, 250, Labels{"kind": "inserted"})

	if len(rec.names) != 2 {
		t.Fatalf("got %d calls, want 2", len(rec.names))
	}
	if rec.names[0] != CounterFiles || rec.deltas[0] != 1 {
		t.Errorf("first call = %s/%v", rec.names[0], rec.deltas[0])
	}
	if rec.names[1] != CounterRecords || rec.deltas[1] != 250 {
		t.Errorf("second call = %s/%v", rec.names[1], rec.deltas[1])
	}
	if rec.labels[1]["kind"] != "inserted" {
		t.Errorf("labels not forwarded: %v", rec.labels[1])
	}

	if err := Flush(); err == nil || err.Error() != "submit failed" {
		t.Errorf("Flush error = %v, want submit failed", err)
	}
	if rec.flushed != 1 {
		t.Errorf("flushed = %d, want 1", rec.flushed)
	}
}

func TestSetBackend_NilRestoresNop(t *testing.T) {
	rec := &recordingBackend{}
	SetBackend(rec)
	SetBackend(nil)

	IncCounter(CounterBatches, 1, nil)
	if err := Flush(); err != nil {
		t.Fatalf("nop Flush: %v", err)
	}
	if len(rec.names) != 0 {
		t.Fatalf("nop backend forwarded to old backend: %v", rec.names)
	}
}
