package csv

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func write(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestParseFile_BasicTable(t *testing.T) {
	path := write(t, "a.csv",
		"Open time,Open,High,Close time\n"+
			"1698796800000,1.5,2.5,1698796859999\n"+
			"1698796860000,2.0,3.0,1698796919999\n")

	tbl, err := ParseFile(path, Options{})
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}

	want := []string{"Open time", "Open", "High", "Close time"}
	if len(tbl.Columns) != len(want) {
		t.Fatalf("Columns=%v, want %v", tbl.Columns, want)
	}
	for i := range want {
		if tbl.Columns[i] != want[i] {
			t.Fatalf("Columns=%v, want %v", tbl.Columns, want)
		}
	}
	if len(tbl.Rows) != 2 {
		t.Fatalf("rows=%d, want 2", len(tbl.Rows))
	}

	ot, ok := tbl.Rows[0]["Open time"].(time.Time)
	if !ok {
		t.Fatalf("Open time type=%T, want time.Time", tbl.Rows[0]["Open time"])
	}
	if got := ot.UnixMilli(); got != 1698796800000 {
		t.Fatalf("Open time=%d, want 1698796800000", got)
	}
	if tbl.Rows[0]["Open"] != "1.5" {
		t.Fatalf("Open=%v, want literal string", tbl.Rows[0]["Open"])
	}
}

func TestParseFile_TimestampFormats(t *testing.T) {
	tests := []struct {
		name string
		cell string
		ok   bool
		want time.Time
	}{
		{"epoch_millis", "1698796800000", true, time.UnixMilli(1698796800000).UTC()},
		{"epoch_micros", "1698796800000000", true, time.UnixMicro(1698796800000000).UTC()},
		{"epoch_seconds", "1698796800", true, time.Unix(1698796800, 0).UTC()},
		{"datetime", "2023-10-31 23:59:59", true, time.Date(2023, 10, 31, 23, 59, 59, 0, time.UTC)},
		{"date_only", "2023-10-31", true, time.Date(2023, 10, 31, 0, 0, 0, 0, time.UTC)},
		{"rfc3339", "2023-10-31T23:59:59Z", true, time.Date(2023, 10, 31, 23, 59, 59, 0, time.UTC)},
		{"not_a_time", "hello", false, time.Time{}},
		{"short_number", "42", false, time.Time{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := parseTimestamp(tc.cell)
			if ok != tc.ok {
				t.Fatalf("parseTimestamp(%q) ok=%v, want %v", tc.cell, ok, tc.ok)
			}
			if ok && !got.Equal(tc.want) {
				t.Fatalf("parseTimestamp(%q)=%v, want %v", tc.cell, got, tc.want)
			}
		})
	}
}

func TestParseFile_UnparsableTimestampKeptAsString(t *testing.T) {
	path := write(t, "a.csv", "Open time,Open\nnot-a-date,1\n")

	tbl, err := ParseFile(path, Options{})
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if tbl.Rows[0]["Open time"] != "not-a-date" {
		t.Fatalf("Open time=%v, want raw string kept", tbl.Rows[0]["Open time"])
	}
}

func TestParseFile_EmptyCellsBecomeNil(t *testing.T) {
	path := write(t, "a.csv", "Open,High,Low\n1.0,,3.0\n")

	tbl, err := ParseFile(path, Options{})
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if tbl.Rows[0]["High"] != nil {
		t.Fatalf("High=%v, want nil", tbl.Rows[0]["High"])
	}
}

func TestParseFile_ShortRowLeavesTrailingNil(t *testing.T) {
	path := write(t, "a.csv", "Open,High,Low\n1.0,2.0\n")

	tbl, err := ParseFile(path, Options{})
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if tbl.Rows[0]["Low"] != nil {
		t.Fatalf("Low=%v, want nil for missing trailing column", tbl.Rows[0]["Low"])
	}
}

func TestParseFile_HeaderBOMAndSpaceStripped(t *testing.T) {
	path := write(t, "a.csv", "\uFEFFOpen time , Open\n1698796800000,1.0\n")

	tbl, err := ParseFile(path, Options{})
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if tbl.Columns[0] != "Open time" || tbl.Columns[1] != "Open" {
		t.Fatalf("Columns=%v, want BOM and edge space stripped", tbl.Columns)
	}
}

func TestParseFile_Errors(t *testing.T) {
	t.Run("missing_file", func(t *testing.T) {
		_, err := ParseFile(filepath.Join(t.TempDir(), "nope.csv"), Options{})
		var pe *ParseError
		if !errors.As(err, &pe) {
			t.Fatalf("err=%v, want *ParseError", err)
		}
	})

	t.Run("empty_file", func(t *testing.T) {
		path := write(t, "empty.csv", "")
		if _, err := ParseFile(path, Options{}); err == nil {
			t.Fatalf("expected error for empty file")
		}
	})

	t.Run("malformed_quotes", func(t *testing.T) {
		path := write(t, "bad.csv", "Open,High\n\"broken,1\n")
		_, err := ParseFile(path, Options{})
		var pe *ParseError
		if !errors.As(err, &pe) {
			t.Fatalf("err=%v, want *ParseError", err)
		}
		if pe.Path != path {
			t.Fatalf("ParseError.Path=%q, want %q", pe.Path, path)
		}
	})
}

func TestParseFile_Windows1251Encoding(t *testing.T) {
	// "символ" in windows-1251 bytes, in a non-numeric column.
	cyr := []byte{0xF1, 0xE8, 0xEC, 0xE2, 0xEE, 0xEB}
	contents := append([]byte("Open,Note\n1.0,"), cyr...)
	contents = append(contents, '\n')

	path := filepath.Join(t.TempDir(), "ru.csv")
	if err := os.WriteFile(path, contents, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	tbl, err := ParseFile(path, Options{Encoding: "windows-1251"})
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if tbl.Rows[0]["Note"] != "символ" {
		t.Fatalf("Note=%q, want decoded cyrillic", tbl.Rows[0]["Note"])
	}
}
