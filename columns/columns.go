// Package columns maps spreadsheet header text onto canonical list field keys.
package columns

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"totem/model"
)

// NormalizeKey lowercases, strips diacritics and drops everything outside
// [a-z0-9]. "Q.tà" and "QTA" both become "qta".
func NormalizeKey(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	stripped = strings.ToLower(stripped)

	var sb strings.Builder
	sb.Grow(len(stripped))
	for _, r := range stripped {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// Mapper is the immutable header map of one mirrored category.
type Mapper struct {
	category   model.Category
	keys       map[string]string
	dateFields map[string]struct{}
}

var (
	buildOnce sync.Once
	mappers   map[model.Category]*Mapper
)

// ForCategory returns the mapper of a mirrored category.
func ForCategory(cat model.Category) (*Mapper, bool) {
	buildOnce.Do(func() {
		mappers = map[model.Category]*Mapper{
			model.CategoryTubi:      newMapper(model.CategoryTubi, tubiHeaders, tubiDateFields),
			model.CategoryForgiati:  newMapper(model.CategoryForgiati, forgiatiHeaders, forgiatiDateFields),
			model.CategorySparkGups: newMapper(model.CategorySparkGups, sparkHeaders, nil),
		}
	})
	m, ok := mappers[cat]
	return m, ok
}

func newMapper(cat model.Category, headers []header, dates []string) *Mapper {
	m := &Mapper{
		category:   cat,
		keys:       make(map[string]string, len(headers)),
		dateFields: make(map[string]struct{}, len(dates)),
	}
	for _, h := range headers {
		m.keys[NormalizeKey(h.text)] = h.key
	}
	for _, d := range dates {
		m.dateFields[d] = struct{}{}
	}
	return m
}

func (m *Mapper) Category() model.Category { return m.category }

// IsDateField reports whether key is written to the sheet as a day serial.
func (m *Mapper) IsDateField(key string) bool {
	_, ok := m.dateFields[key]
	return ok
}

// ResolveFieldKey looks a live column up in the curated map.
func (m *Mapper) ResolveFieldKey(column string) (string, bool) {
	key, ok := m.keys[NormalizeKey(column)]
	return key, ok
}

// ResolveRecordKey resolves a live column for a specific record: the curated
// key first, then any record key with the same normalized spelling. Returns
// "" when neither matches.
func (m *Mapper) ResolveRecordKey(column string, record model.Fields) string {
	normalized := NormalizeKey(column)
	if key, ok := m.keys[normalized]; ok {
		return key
	}
	if normalized == "" {
		return ""
	}
	for key := range record {
		if NormalizeKey(key) == normalized {
			return key
		}
	}
	return ""
}

// IndexOfCanonicalKey returns the position of the live column currently
// holding key, or -1.
func (m *Mapper) IndexOfCanonicalKey(columns []string, key string) int {
	target := NormalizeKey(key)
	for i, col := range columns {
		mapped, ok := m.keys[NormalizeKey(col)]
		if ok && NormalizeKey(mapped) == target {
			return i
		}
	}
	return -1
}
