// Package normalize turns parsed candle tables into store-ready records.
//
// Normalization is lossy-safe: a row is never dropped because a field failed
// coercion; the field alone becomes nil and the record is kept. The store
// renders nil as an explicit null, so downstream queries can distinguish
// "value was unusable" from "column absent".
package normalize

import (
	"math"
	"strconv"
	"time"

	"github.com/laptevshr/crLoadCSVData/internal/parser/csv"
)

// Provenance fields appended to every record.
const (
	FieldSourceFile      = "source_file"
	FieldImportTimestamp = "import_timestamp"
)

// fieldTradeCount is additionally coerced to an integer after the float pass.
const fieldTradeCount = "Number of trades"

// numericFields are the candle fields coerced to float64 when present.
var numericFields = []string{
	"Open",
	"High",
	"Low",
	"Close",
	"Volume",
	"Quote asset volume",
	fieldTradeCount,
	"Taker buy base asset volume",
	"Taker buy quote asset volume",
	"Ignore",
}

// Record is one store-ready document.
type Record map[string]any

// Records converts every row of t into a Record, 1:1. Each record carries the
// originating file's base name and its own capture timestamp taken from now.
func Records(t *csv.RawTable, sourceFile string, now func() time.Time) []Record {
	out := make([]Record, 0, len(t.Rows))
	for _, row := range t.Rows {
		rec := make(Record, len(row)+2)
		for k, v := range row {
			rec[k] = v
		}

		for _, field := range numericFields {
			v, ok := rec[field]
			if !ok || v == nil {
				continue
			}
			rec[field] = coerceFloat(v)
		}
		if v, ok := rec[fieldTradeCount]; ok && v != nil {
			rec[fieldTradeCount] = coerceInt(v)
		}

		rec[FieldSourceFile] = sourceFile
		rec[FieldImportTimestamp] = now()
		out = append(out, rec)
	}
	return out
}

// coerceFloat returns the value as float64, or nil when it cannot represent one.
func coerceFloat(v any) any {
	switch n := v.(type) {
	case float64:
		return n
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return nil
		}
		return f
	default:
		return nil
	}
}

// coerceInt narrows an already-coerced float to int64. NaN and infinities
// have no integer form and become nil; fractional values truncate.
func coerceInt(v any) any {
	f, ok := v.(float64)
	if !ok {
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f < math.MinInt64 || f > math.MaxInt64 {
		return nil
	}
	return int64(f)
}
