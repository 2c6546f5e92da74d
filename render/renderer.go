package render

import (
	"fmt"
	"html"
	"sort"
	"strings"

	"totem/model"
	"totem/normalize"
)

type column struct {
	field string
	label string
	date  bool
}

var tableColumns = map[model.Category][]column{
	model.CategoryForgiati: {
		{"Title", "Codice", false},
		{"field_1", "N° ordine", false},
		{"field_2", "Data Ord", true},
		{"field_3", "Fornitore", false},
		{"field_6", "DN", false},
		{"field_7", "Classe", false},
		{"field_9", "Grado Materiale", false},
		{"field_21", "Giacenza mm da barra", false},
		{"field_22", "Giacenza Q.tà", false},
		{"field_23", "Data prelievo", true},
		{"field_24", "Commessa", false},
	},
	model.CategoryTubi: {
		{"Title", "Codice", false},
		{"field_2", "N° Ordine", false},
		{"field_3", "Data ordine", true},
		{"field_4", "Fornitore", false},
		{"field_8", "DN", false},
		{"field_10", "SP", false},
		{"field_11", "Grado", false},
		{"field_19", "Giacenza contab. (mm)", false},
		{"field_20", "Giacenza non tagliato (mm)", false},
		{"field_21", "Data ultimo prelievo", true},
		{"field_25", "Commessa", false},
	},
	model.CategoryOringHnbr: {
		{"Title", "Codice", false},
		{"field_2", "Codice cliente", false},
		{"field_3", "Colore Mescola", false},
		{"field_4", "Ø Int.", false},
		{"field_5", "Ø Est.", false},
		{"field_6", "Ø Corda", false},
		{"field_7", "Materiale", false},
		{"field_15", "Giacenza", false},
		{"field_16", "Prenotazione", false},
		{"field_17", "Data prelievo", true},
	},
	model.CategoryOringNbr: {
		{"Title", "Codice", false},
		{"field_1", "Codice cliente", false},
		{"field_2", "Colore Mescola", false},
		{"field_3", "Ø Int.", false},
		{"field_4", "Ø Est.", false},
		{"field_5", "Ø Corda", false},
		{"field_6", "Materiale", false},
		{"field_16", "Giacenza", false},
		{"field_15", "Prenotazione", false},
		{"field_17", "Data prelievo", true},
	},
	model.CategorySparkGups: {
		{"Title", "Codice", false},
		{"field_1", "Lotto", false},
		{"field_2", "Codice SAM", false},
		{"field_3", "Tipologia Articolo", false},
		{"field_5", "Data Ordine", true},
		{"field_10", "Giacenza", false},
		{"field_11", "Data Ultimo Prelievo", true},
		{"field_13", "Commessa", false},
	},
}

// Colata and last withdrawal date shown in the lot badge.
var lotBadge = map[model.Category]struct{ colata, date string }{
	model.CategoryForgiati: {"field_13", "field_23"},
	model.CategoryTubi:     {"field_18", "field_21"},
}

func cellText(c column, fields model.Fields) string {
	if c.date {
		return normalize.ToDisplayDate(fields[c.field])
	}
	return normalize.ToStr(fields[c.field])
}

// InventoryTableHTML renders the rows of a category table, one row per lot
// group showing its first record. letters maps record IDs to progressive
// letters.
func InventoryTableHTML(cat model.Category, groups []model.LotGroup, letters map[string]string) string {
	cols := tableColumns[cat]
	_, keyed := lotBadge[cat]
	span := len(cols) + 1
	if keyed {
		span++
	}

	var sb strings.Builder
	sb.WriteString(`<thead><tr><th class="col-select"></th>`)
	for _, c := range cols {
		class := "col-" + c.field
		if c.field == model.FieldTitle {
			class += " sticky-col"
		}
		sb.WriteString(fmt.Sprintf(`<th class="%s">%s</th>`, class, html.EscapeString(c.label)))
	}
	if keyed {
		sb.WriteString(`<th class="col-lots">Colate</th>`)
	}
	sb.WriteString(`</tr></thead>`)

	sb.WriteString(`<tbody>`)
	if len(groups) == 0 {
		sb.WriteString(fmt.Sprintf(`<tr><td colspan="%d" class="muted center">Nessun articolo trovato.</td></tr>`, span))
	}
	for _, g := range groups {
		rep := g.Representative()
		sb.WriteString(fmt.Sprintf(`<tr data-title="%s" data-items="%d">`, html.EscapeString(g.Title), len(g.Items)))
		sb.WriteString(fmt.Sprintf(`<td class="center col-select"><input type="checkbox" value="%s"></td>`,
			html.EscapeString(model.CartKey(cat, rep.ID))))
		for _, c := range cols {
			if c.field == model.FieldTitle {
				sb.WriteString(fmt.Sprintf(`<th scope="row" class="sticky-col">%s</th>`, html.EscapeString(g.Title)))
				continue
			}
			class := "col-" + c.field
			if c.date {
				class += " center"
			}
			sb.WriteString(fmt.Sprintf(`<td class="%s">%s</td>`, class, html.EscapeString(cellText(c, rep.Fields))))
		}
		if keyed {
			sb.WriteString(`<td class="col-lots">`)
			sb.WriteString(badge(cat, g, letters))
			sb.WriteString(`</td>`)
		}
		sb.WriteString(`</tr>`)
	}
	sb.WriteString(`</tbody>`)
	return sb.String()
}

// badge shows the colata and letter of the most recently withdrawn lot and
// how many other lots the code has.
func badge(cat model.Category, g model.LotGroup, letters map[string]string) string {
	cols := lotBadge[cat]
	items := append([]model.InventoryRecord(nil), g.Items...)
	sort.SliceStable(items, func(i, j int) bool {
		return normalize.TimeValue(items[i].Fields[cols.date]) > normalize.TimeValue(items[j].Fields[cols.date])
	})
	if len(items) == 0 {
		return ""
	}
	latest := items[0]
	colata := normalize.ToStr(latest.Fields[cols.colata])
	if colata == "" {
		colata = "-"
	}
	out := fmt.Sprintf(`<span class="pill ghost">%s <span class="lotto-chip">%s</span></span>`,
		html.EscapeString(colata), normalize.FormatLottoProg(letters[latest.ID]))
	if more := len(items) - 1; more > 0 {
		out += fmt.Sprintf(`<span class="pill ghost small">+%d</span>`, more)
	}
	return out
}
