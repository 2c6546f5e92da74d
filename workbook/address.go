package workbook

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Address is a parsed "Sheet!A2:Z50" range.
type Address struct {
	Sheet    string
	StartCol string
	StartRow int
	EndCol   string
	EndRow   int
}

var cellRef = regexp.MustCompile(`^([A-Za-z]+)(\d+)$`)

func parseCell(s string) (string, int, bool) {
	m := cellRef.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return "", 0, false
	}
	row, err := strconv.Atoi(m[2])
	if err != nil {
		return "", 0, false
	}
	return strings.ToUpper(m[1]), row, true
}

// ParseAddress parses a range address. The sheet part may be quoted.
func ParseAddress(address string) (Address, bool) {
	sheetPart, rangePart, found := strings.Cut(address, "!")
	if !found {
		rangePart, sheetPart = sheetPart, ""
	}
	sheet := strings.Trim(sheetPart, "'")

	startRaw, endRaw, hasEnd := strings.Cut(rangePart, ":")
	startCol, startRow, ok := parseCell(startRaw)
	if !ok {
		return Address{}, false
	}
	a := Address{Sheet: sheet, StartCol: startCol, StartRow: startRow, EndCol: startCol, EndRow: startRow}
	if hasEnd {
		if endCol, endRow, ok := parseCell(endRaw); ok {
			a.EndCol, a.EndRow = endCol, endRow
		}
	}
	return a, true
}

// BuildRowRangeAddress returns the single-row address of the rowIndex-th
// data row. A negative rowCount takes the row count from the range itself;
// zero means the table has no data rows.
func BuildRowRangeAddress(dataBodyAddress string, rowIndex, rowCount int) (sheet, address string, ok bool) {
	a, ok := ParseAddress(dataBodyAddress)
	if !ok {
		return "", "", false
	}
	if rowCount < 0 {
		rowCount = a.EndRow - a.StartRow + 1
		if rowCount < 0 {
			rowCount = 0
		}
	}
	if rowIndex < 0 || rowIndex >= rowCount {
		return "", "", false
	}
	n := a.StartRow + rowIndex
	return a.Sheet, fmt.Sprintf("%s%d:%s%d", a.StartCol, n, a.EndCol, n), true
}
