package parsers

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"totem/columns"
	"totem/logger"
	"totem/model"
	"totem/normalize"
)

// ParseInventoryCSV reads a category export into list fields. Headers are
// resolved through the category's column map when it has one; other headers
// are taken as internal field names. Date columns are stored as ISO.
func ParseInventoryCSV(r io.Reader, cat model.Category) ([]model.Fields, error) {
	decoded, err := decodeExport(r)
	if err != nil {
		return nil, fmt.Errorf("lettura CSV: %w", err)
	}
	reader := csv.NewReader(bytes.NewReader(decoded))
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	reader.Comma = sniffComma(decoded)

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("Il file CSV è vuoto")
	}
	if err != nil {
		return nil, fmt.Errorf("lettura intestazione CSV: %w", err)
	}

	mapper, curated := columns.ForCategory(cat)
	keys := make([]string, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		keys[i] = h
		if curated {
			if k, ok := mapper.ResolveFieldKey(h); ok {
				keys[i] = k
			}
		}
	}
	if _, err := getColIndex(keys, []string{model.FieldTitle}); err != nil {
		return nil, err
	}

	var records []model.Fields
	line := 1
	for {
		line++
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			logger.Warn("csv row skipped", "category", cat, "line", line, "error", err)
			continue
		}
		fields := model.Fields{}
		for i, key := range keys {
			if key == "" || i >= len(rec) {
				continue
			}
			val := strings.TrimSpace(rec[i])
			if val == "" {
				continue
			}
			if curated && mapper.IsDateField(key) {
				if iso, ok := normalize.ToIsoOrNull(val); ok {
					val = iso
				}
			}
			fields[key] = val
		}
		if fields.String(model.FieldTitle) == "" {
			logger.Warn("csv row without code skipped", "category", cat, "line", line)
			continue
		}
		records = append(records, fields)
	}
	return records, nil
}

// sniffComma picks ';' when the header line has more semicolons than commas.
func sniffComma(data []byte) rune {
	first, _, _ := strings.Cut(string(data), "\n")
	if strings.Count(first, ";") > strings.Count(first, ",") {
		return ';'
	}
	return ','
}
