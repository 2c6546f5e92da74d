package columns

import "totem/model"

type header struct {
	text string
	key  string
}

// Header variants seen in the warehouse workbooks, typos included.
var tubiHeaders = []header{
	{"CODICE", "Title"},
	{"CODICE SAM", "CodiceSAM"},
	{"NORDINE", "field_2"},
	{"N ORDINE", "field_2"},
	{"DATA OD", "field_3"},
	{"DATA ORDINE", "field_3"},
	{"FORNITORE", "field_4"},
	{"PRODUTTORE", "field_5"},
	{"QTA", "field_6"},
	{"QTA.", "field_6"},
	{"LUNGH TUBO METRO", "field_7"},
	{"LUNGH TUBO METRI", "field_7"},
	{"LUNGH TUBO M", "field_7"},
	{"DN", "field_8"},
	{"DNMM", "field_9"},
	{"DN MM", "field_9"},
	{"SP", "field_10"},
	{"GRADO", "field_11"},
	{"GRADO MATERIALE 2", "GRADOMATERIALE2"},
	{"PSL1PSL2", "field_12"},
	{"PED", "field_13"},
	{"HIC", "field_14"},
	{"NBOLLA", "field_15"},
	{"N BOLLA", "field_15"},
	{"DATA CONSEGNA", "field_16"},
	{"DATA CONSEGNA.", "field_16"},
	{"N CERT", "field_17"},
	{"N CERT.", "field_17"},
	{"N COLATA", "field_18"},
	{"GIACENZAMM PER CONTABILITA", "field_19"},
	{"GIACENZAMM CONTABILE", "field_19"},
	{"GIACENZAMM X GESTIONE MAGAZZINO", "field_20"},
	{"GIACENZAMM NON TAGLIATO", "field_20"},
	{"DATA ULTIMO PRELIEVO", "field_21"},
	{"PREZZO KGMT", "field_22"},
	{"PREZZO METRO", "field_23"},
	{"ACQUISTATO DAL CURATORE", "field_24"},
	{"NO COMMESSA", "field_25"},
	{"N COMMESSA", "field_25"},
	{"ESUBERO", "field_26"},
	{"RITARDO", "field_27"},
	{"IDENTLOTTO", "IdentLotto"},
	{"IDENT LOTTO", "IdentLotto"},
}

var tubiDateFields = []string{"field_3", "field_16", "field_21", "Modified", "Created"}

var forgiatiHeaders = []header{
	{"CODICE", "Title"},
	{"CODICE SAM", "CodiceSAM"},
	{"NORDINE", "field_1"},
	{"N ORDINE", "field_1"},
	{"DATA ORD", "field_2"},
	{"DATA ORDINE", "field_2"},
	{"FORNITORE", "field_3"},
	{"POS", "field_4"},
	{"QTA", "field_5"},
	{"QTA.", "field_5"},
	{"DN", "field_6"},
	{"CLASSE", "field_7"},
	{"NO DISEGNO PARTICOLARE", "field_8"},
	{"NO. DISEGNO - PARTICOLARE", "field_8"},
	{"GRADO MATERIALE", "field_9"},
	{"GRADO MATERIALE 2", "GRADOMATERIALE2"},
	{"N BOLLA", "field_10"},
	{"N BOLLA.", "field_10"},
	{"DATA CONSEGNA", "field_11"},
	{"N CERT", "field_12"},
	{"N CERT.", "field_12"},
	{"N COLATA", "field_13"},
	{"TIPO CERTIFICAZIONE", "field_14"},
	{"PREZ C D", "field_15"},
	{"PREZ C/D", "field_15"},
	{"Ø EST MM", "field_16"},
	{"O EST MM", "field_16"},
	{"Ø INT MM", "field_17"},
	{"O INT MM", "field_17"},
	{"H ALTEZ MM", "field_18"},
	{"ANELLO DISCO", "field_19"},
	{"GREZZO SGROSSATO", "field_20"},
	{"GIACENZA MM LUNGHEZZA DA BARRA", "field_21"},
	{"GIACENZA QTA", "field_22"},
	{"GIACENZA Q.TA", "field_22"},
	{"GIACENZA Q.TÀ", "field_22"},
	{"DATA PRELIEVO", "field_23"},
	{"COMMESSA", "field_24"},
	{"NOTE", "field_25"},
	{"IDENTLOTTO", "IdentLotto"},
	{"IDENT LOTTO", "IdentLotto"},
}

var forgiatiDateFields = []string{"field_2", "field_11", "field_23", "Modified", "Created"}

// SPARK-GUPS rows are keyed by code and Lotto, there is no IdentLotto column.
var sparkHeaders = []header{
	{"CODICE", "Title"},
	{"TITLE", "Title"},
	{"LOTTO", "field_1"},
	{"CODICE SAM", "field_2"},
	{"TIPOLOGIA ARTICOLO", "field_3"},
	{"N ORDINE", "field_4"},
	{"N. ORDINE", "field_4"},
	{"DATA ORDINE", "field_5"},
	{"FORNITORE", "field_6"},
	{"QUANTITA ORDINATA", "field_7"},
	{"QUANTITÀ ORDINATA", "field_7"},
	{"N BOLLA", "field_8"},
	{"N. BOLLA", "field_8"},
	{"DATA CONSEGNA", "field_9"},
	{"GIACENZA", "field_10"},
	{"DATA ULTIMO PRELIEVO", "field_11"},
	{"PREZZO UNITARIO", "field_12"},
	{"COMMESSA", "field_13"},
}

// Headers returns every curated header text of the category.
func (m *Mapper) Headers() []string {
	src := m.source()
	out := make([]string, len(src))
	for i, h := range src {
		out[i] = h.text
	}
	return out
}

// SeedHeaders returns one header per canonical key, in curated order. Used
// when a new workbook table has to be laid out.
func (m *Mapper) SeedHeaders() []string {
	seen := make(map[string]bool)
	var out []string
	for _, h := range m.source() {
		if seen[h.key] {
			continue
		}
		seen[h.key] = true
		out = append(out, h.text)
	}
	return out
}

func (m *Mapper) source() []header {
	switch m.category {
	case model.CategoryTubi:
		return tubiHeaders
	case model.CategoryForgiati:
		return forgiatiHeaders
	default:
		return sparkHeaders
	}
}
