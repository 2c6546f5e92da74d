package parsers

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// SkipBOM drops a leading UTF-8 byte order mark.
func SkipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	peeked, err := br.Peek(3)
	if err == nil && bytes.Equal(peeked, []byte{0xEF, 0xBB, 0xBF}) {
		br.Discard(3)
	}
	return br
}

// decodeExport returns the UTF-8 text of an export that is either UTF-8 or
// Windows-1252, as spreadsheet programs on Italian desktops write it.
func decodeExport(r io.Reader) ([]byte, error) {
	raw, err := io.ReadAll(SkipBOM(r))
	if err != nil {
		return nil, err
	}
	if utf8.Valid(raw) {
		return raw, nil
	}
	out, _, err := transform.Bytes(charmap.Windows1252.NewDecoder(), raw)
	return out, err
}

// getColIndex maps each trimmed header to its column index and checks the
// required ones.
func getColIndex(header []string, required []string) (map[string]int, error) {
	colIndex := make(map[string]int)
	for i, colName := range header {
		colIndex[strings.TrimSpace(colName)] = i
	}
	for _, req := range required {
		if _, ok := colIndex[req]; !ok {
			return nil, fmt.Errorf("Colonna obbligatoria mancante: %s", req)
		}
	}
	return colIndex, nil
}
