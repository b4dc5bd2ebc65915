package csv

import (
	"io"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// decodingReader wraps r with a charset decoder when the input is not UTF-8.
// Exchange dumps produced on Windows hosts occasionally arrive as
// windows-1251 or latin-1; everything else passes through untouched.
func decodingReader(r io.Reader, encoding string) io.Reader {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "windows-1251":
		return transform.NewReader(r, charmap.Windows1251.NewDecoder())
	case "latin-1", "iso-8859-1":
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	default:
		return r
	}
}
