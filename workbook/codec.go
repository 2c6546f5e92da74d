package workbook

import (
	"totem/columns"
	"totem/model"
	"totem/normalize"
)

// RowKey addresses a mirrored row. TUBI and FORGIATI rows are keyed by code
// and IdentLotto, SPARK-GUPS rows by code and Lotto.
type RowKey struct {
	Code       string
	IdentLotto string
	Lotto      string
}

// BuildRow serializes record in the order of the live columns.
func BuildRow(m *columns.Mapper, cols []string, record model.Fields) []any {
	row := make([]any, len(cols))
	for i, col := range cols {
		key := m.ResolveRecordKey(col, record)
		row[i] = cellValue(m, key, record[key])
	}
	return row
}

func cellValue(m *columns.Mapper, key string, value any) any {
	if key == "" {
		return ""
	}
	if m.IsDateField(key) {
		serial, ok := normalize.ToExcelSerial(value)
		if !ok {
			return ""
		}
		return serial
	}
	switch v := value.(type) {
	case nil:
		return ""
	case float64, float32, int, int64, bool:
		return v
	default:
		return normalize.ToStr(v)
	}
}

func cell(values []any, idx int) string {
	if idx < 0 || idx >= len(values) {
		return ""
	}
	return columns.NormalizeKey(normalize.ToStr(values[idx]))
}

// FindRowIndex locates the row of (code, identLotto). An empty ident cell
// counts as "A". Returns -1 when the key columns are missing or no row
// matches.
func FindRowIndex(m *columns.Mapper, rows []Row, cols []string, key RowKey) int {
	titleIdx := m.IndexOfCanonicalKey(cols, model.FieldTitle)
	identIdx := m.IndexOfCanonicalKey(cols, model.FieldIdentLotto)
	if titleIdx < 0 || identIdx < 0 {
		return -1
	}
	targetCode := columns.NormalizeKey(key.Code)
	targetIdent := columns.NormalizeKey(key.IdentLotto)

	for _, row := range rows {
		if cell(row.Values, titleIdx) != targetCode {
			continue
		}
		ident := cell(row.Values, identIdx)
		if ident == targetIdent || (ident == "" && targetIdent == "a") {
			return row.Index
		}
	}
	return -1
}

// FindSparkRowIndex locates a SPARK-GUPS row by code and lotto. Without a
// Lotto column the first code match wins.
func FindSparkRowIndex(m *columns.Mapper, rows []Row, cols []string, code, lotto string) int {
	titleIdx := m.IndexOfCanonicalKey(cols, model.FieldTitle)
	if titleIdx < 0 {
		return -1
	}
	lottoIdx := m.IndexOfCanonicalKey(cols, "field_1")
	targetCode := columns.NormalizeKey(code)
	targetLotto := columns.NormalizeKey(lotto)

	for _, row := range rows {
		if cell(row.Values, titleIdx) != targetCode {
			continue
		}
		if lottoIdx < 0 {
			return row.Index
		}
		if cell(row.Values, lottoIdx) == targetLotto {
			return row.Index
		}
	}
	return -1
}

// FindLastRowIndexByCode returns the highest row index holding code, or -1.
func FindLastRowIndexByCode(m *columns.Mapper, rows []Row, cols []string, code string) int {
	titleIdx := m.IndexOfCanonicalKey(cols, model.FieldTitle)
	if titleIdx < 0 {
		return -1
	}
	target := columns.NormalizeKey(code)
	last := -1
	for _, row := range rows {
		if cell(row.Values, titleIdx) == target && row.Index > last {
			last = row.Index
		}
	}
	return last
}

// Locate dispatches to the lookup used by the mapper's category.
func Locate(m *columns.Mapper, rows []Row, cols []string, key RowKey) int {
	if m.Category() == model.CategorySparkGups {
		return FindSparkRowIndex(m, rows, cols, key.Code, key.Lotto)
	}
	return FindRowIndex(m, rows, cols, key)
}
