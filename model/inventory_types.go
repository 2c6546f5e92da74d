package model

import (
	"fmt"
	"strings"
)

// Category identifies one hosted inventory list.
type Category string

const (
	CategoryForgiati  Category = "FORGIATI"
	CategoryTubi      Category = "TUBI"
	CategoryOringHnbr Category = "ORING-HNBR"
	CategoryOringNbr  Category = "ORING-NBR"
	CategorySparkGups Category = "SPARK-GUPS"
)

// Categories lists every category in kiosk tab order.
var Categories = []Category{
	CategoryForgiati,
	CategoryTubi,
	CategoryOringHnbr,
	CategoryOringNbr,
	CategorySparkGups,
}

// ParseCategory accepts the upper-case tag or the lower-case slug used in URLs
// ("forgiati", "oring-hnbr", "spark-gups").
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Categories {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("categoria sconosciuta: %q", s)
}

// Slug is the lower-case name used for cache keys and URLs.
func (c Category) Slug() string {
	return strings.ToLower(string(c))
}

// Mirrored reports whether the category keeps a parallel spreadsheet table.
func (c Category) Mirrored() bool {
	switch c {
	case CategoryForgiati, CategoryTubi, CategorySparkGups:
		return true
	}
	return false
}

// Canonical field keys shared across categories.
const (
	FieldTitle            = "Title"
	FieldCreated          = "Created"
	FieldModified         = "Modified"
	FieldLottoProgressivo = "LottoProgressivo"
	FieldCodiceSAM        = "CodiceSAM"
	FieldIdentLotto       = "IdentLotto"
)

// Fields is the open field map of a list item. Values are nil, string,
// float64, bool or an ISO-8601 timestamp string, as decoded from JSON.
type Fields map[string]any

// Clone returns a shallow copy.
func (f Fields) Clone() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// String returns the value of key in string form, "" when absent or nil.
func (f Fields) String(key string) string {
	v, ok := f[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// InventoryRecord is one row of a hosted list.
type InventoryRecord struct {
	ID     string `json:"id" db:"id"`
	Fields Fields `json:"fields"`
}

// Title is the product code, the grouping key of a lot group.
func (r InventoryRecord) Title() string {
	return strings.TrimSpace(r.Fields.String(FieldTitle))
}

// LotGroup holds every record of one category sharing the same title.
type LotGroup struct {
	Title string            `json:"title"`
	Items []InventoryRecord `json:"items"`
}

// Representative is the first item, used for summary display.
func (g LotGroup) Representative() InventoryRecord {
	if len(g.Items) == 0 {
		return InventoryRecord{}
	}
	return g.Items[0]
}

// ListColumn describes a column of a hosted list.
type ListColumn struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	ColumnGroup string `json:"columnGroup,omitempty"`
}
