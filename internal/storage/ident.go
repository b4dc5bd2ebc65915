package storage

import "strings"

// IndexName derives a deterministic SQL index name for a field on a
// collection, e.g. ("ohlcvt_data", "Open time") -> "idx_ohlcvt_data_open_time".
// Field names may contain spaces (candle headers do); SQL identifiers may not.
func IndexName(collection, field string) string {
	return "idx_" + NormalizeIdent(collection) + "_" + NormalizeIdent(field)
}

// NormalizeIdent converts an arbitrary field or collection name into a safe
// SQL identifier fragment: lowercased, with every non-alphanumeric run
// collapsed to a single underscore.
func NormalizeIdent(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	lastUnderscore := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		alnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if alnum {
			b.WriteRune(r)
			lastUnderscore = false
			continue
		}
		if !lastUnderscore {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	return strings.Trim(b.String(), "_")
}
