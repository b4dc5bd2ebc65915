package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// Options control how a file is read.
type Options struct {
	// Encoding of the input bytes: "utf-8" (default), "windows-1251",
	// "latin-1"/"iso-8859-1". Unknown values fall back to utf-8.
	Encoding string
}

// ParseFile reads one header-labeled CSV file into a RawTable.
//
// Behavior:
//   - The first record is the header; a UTF-8 BOM on the first column is
//     stripped and edge whitespace is trimmed from every header cell.
//   - Cell values are trimmed; empty cells become nil.
//   - ColOpenTime / ColCloseTime cells are parsed into time.Time when
//     recognizable, otherwise the raw string is kept.
//   - Short rows leave missing trailing columns nil; extra cells beyond the
//     header are dropped.
//
// Any failure is returned as a *ParseError.
func ParseFile(path string, opt Options) (*RawTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	defer f.Close()

	t, err := parse(decodingReader(f, opt.Encoding))
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return t, nil
}

func parse(r io.Reader) (*RawTable, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true
	cr.FieldsPerRecord = -1

	hdr, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("read header: empty file")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	columns := make([]string, len(hdr))
	for i, h := range hdr {
		if i == 0 {
			h = strings.TrimPrefix(h, "\uFEFF")
		}
		columns[i] = strings.TrimSpace(h)
	}

	t := &RawTable{Columns: columns}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			return t, nil
		}
		if err != nil {
			return nil, fmt.Errorf("csv read: %w", err)
		}

		row := make(Row, len(columns))
		for i, col := range columns {
			if i >= len(rec) {
				row[col] = nil
				continue
			}
			v := strings.TrimSpace(rec[i])
			if v == "" {
				row[col] = nil
				continue
			}
			if col == ColOpenTime || col == ColCloseTime {
				if ts, ok := parseTimestamp(v); ok {
					row[col] = ts
					continue
				}
			}
			row[col] = v
		}
		t.Rows = append(t.Rows, row)
	}
}
