// Package csv parses header-labeled candle CSV files into in-memory tables.
//
// Parsing is deliberately lenient: cell values stay strings (or nil for empty
// cells) except for the two designated timestamp columns, which are parsed
// into time.Time when the value is recognizable. Type coercion of the numeric
// candle fields happens later, in the normalize package.
package csv

import (
	"fmt"
	"time"
)

// Timestamp columns parsed during the table read. These match the Binance
// kline export header names, spaces included.
const (
	ColOpenTime  = "Open time"
	ColCloseTime = "Close time"
)

// Row maps a column name to its cell value: string, time.Time, or nil for an
// empty cell.
type Row map[string]any

// RawTable is the ordered contents of one parsed file.
type RawTable struct {
	Columns []string
	Rows    []Row
}

// ParseError wraps any failure to read one file. The loader catches it at
// per-file granularity so one bad file never aborts the rest of the run.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string { return fmt.Sprintf("parse %s: %v", e.Path, e.Err) }
func (e *ParseError) Unwrap() error { return e.Err }

// timestampLayouts are tried in order for non-numeric timestamp cells.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseTimestamp interprets a timestamp cell. Binance exports carry epoch
// milliseconds (sometimes microseconds in newer dumps); older tooling writes
// wall-clock strings. Unrecognized values are returned as (zero, false) and
// the caller keeps the raw string.
func parseTimestamp(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}

	if ms, ok := parseEpoch(s); ok {
		return ms, true
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func parseEpoch(s string) (time.Time, bool) {
	var n int64
	for _, r := range s {
		if r < '0' || r > '9' {
			return time.Time{}, false
		}
		n = n*10 + int64(r-'0')
	}
	switch {
	case len(s) >= 16: // microseconds
		return time.UnixMicro(n).UTC(), true
	case len(s) >= 12: // milliseconds
		return time.UnixMilli(n).UTC(), true
	case len(s) >= 9: // seconds
		return time.Unix(n, 0).UTC(), true
	}
	return time.Time{}, false
}
