package render

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"totem/model"
	"totem/normalize"
)

func TestInventoryTableHTML(t *testing.T) {
	normalize.Location = time.UTC
	groups := []model.LotGroup{{
		Title: "T-100",
		Items: []model.InventoryRecord{
			{ID: "1", Fields: model.Fields{"Title": "T-100", "field_18": "C1", "field_21": "2024-01-10T00:00:00Z", "field_4": "Acciai <Nord>"}},
			{ID: "2", Fields: model.Fields{"Title": "T-100", "field_18": "C2", "field_21": "2024-03-05T00:00:00Z"}},
		},
	}}
	out := InventoryTableHTML(model.CategoryTubi, groups, map[string]string{"1": "a", "2": "b"})

	assert.Contains(t, out, `value="TUBI:1"`)
	assert.Contains(t, out, `<th scope="row" class="sticky-col">T-100</th>`)
	assert.Contains(t, out, "10/01/2024")
	assert.Contains(t, out, "Acciai &lt;Nord&gt;")
	assert.Contains(t, out, `C2 <span class="lotto-chip">B</span>`)
	assert.Contains(t, out, "+1")
	assert.Contains(t, out, "Colate")
}

func TestInventoryTableHTMLEmptyAndUnkeyed(t *testing.T) {
	out := InventoryTableHTML(model.CategoryOringNbr, nil, nil)
	assert.Contains(t, out, `colspan="11"`)
	assert.Contains(t, out, "Nessun articolo trovato.")
	assert.False(t, strings.Contains(out, "Colate"))
}
