package admin

import (
	"strings"

	"totem/model"
	"totem/normalize"
)

type FieldType string

const (
	TypeText     FieldType = "text"
	TypeNumber   FieldType = "number"
	TypeDate     FieldType = "date"
	TypeTextarea FieldType = "textarea"
)

// Field describes one input of the admin form. ReadOnly fields are shown but
// never sent to the list.
type Field struct {
	Key         string    `json:"key"`
	Label       string    `json:"label"`
	Type        FieldType `json:"type"`
	Required    bool      `json:"required,omitempty"`
	Placeholder string    `json:"placeholder,omitempty"`
	ReadOnly    bool      `json:"readOnly,omitempty"`
}

func text(key, label string) Field { return Field{Key: key, Label: label, Type: TypeText} }
func date(key, label string) Field { return Field{Key: key, Label: label, Type: TypeDate} }
func number(key, label string) Field {
	return Field{Key: key, Label: label, Type: TypeNumber}
}
func title(placeholder string) Field {
	return Field{Key: model.FieldTitle, Label: "Codice / Title", Type: TypeText, Required: true, Placeholder: placeholder}
}
func readOnly(f Field) Field {
	f.ReadOnly = true
	return f
}

var fieldSets = map[model.Category][]Field{
	model.CategoryForgiati: {
		title("Es. FOR-001"),
		text("field_1", "N° Ordine"),
		date("field_2", "Data Ordine"),
		text("field_10", "N° Bolla"),
		text("field_13", "N° Colata"),
		text("field_24", "Commessa"),
		text("field_23", "Data prelievo"),
		text("field_22", "Giacenza Q.tà"),
		text("field_21", "Giacenza mm da barra"),
		{Key: "field_25", Label: "Note", Type: TypeTextarea, Placeholder: "Annotazioni libere"},
		text("field_3", "Fornitore"),
		text("field_4", "Pos"),
		text("field_5", "Q.tà"),
		text("field_6", "DN"),
		text("field_7", "Classe"),
		text("field_8", "No. Disegno - Particolare"),
		text("field_9", "Grado Materiale"),
		text("GRADOMATERIALE2", "Grado Materiale 2"),
		date("field_11", "Data consegna"),
		text("field_12", "N° cert"),
		text("field_14", "Tipo Certificazione"),
		text("field_15", "Prez. C/D €"),
		text("field_16", "Ø Est.(mm)"),
		text("field_17", "Ø Int.(mm)"),
		text("field_18", "H Altez. (mm)"),
		text("field_19", "Anello - Disco"),
		text("field_20", "Grezzo - Sgrossato"),
		readOnly(date("field_26", "Data/ora modifica")),
		text(model.FieldCodiceSAM, "Codice SAM"),
		readOnly(text(model.FieldLottoProgressivo, "Lotto Progressivo")),
	},
	model.CategoryTubi: {
		title("Es. TUB-001"),
		text(model.FieldCodiceSAM, "Codice SAM"),
		text("field_1", "TIPO"),
		text("field_2", "N° Ordine"),
		date("field_3", "Data Ordine"),
		text("field_4", "Fornitore"),
		text("field_5", "P."),
		text("field_6", "Q.tà"),
		text("field_7", "Lungh. Tubo (metro)"),
		text("field_8", "DN (\")"),
		text("field_9", "DN (mm)"),
		text("field_10", "SP"),
		text("field_11", "GRADO"),
		text("GRADOMATERIALE2", "Grado materiale 2"),
		text("field_12", "PSL1 / PSL2"),
		text("field_13", "PED"),
		text("field_14", "HIC"),
		text("field_15", "N° Bolla"),
		text("field_17", "N° Certificato"),
		text("field_18", "N° Colata"),
		text("field_25", "No. Commessa"),
		text("field_21", "Data ultimo prelievo"),
		{Key: "field_19", Label: "Giacenza contab. (mm)", Type: TypeText, Placeholder: "es. 100+20"},
		text("field_20", "Giacenza non tagliato (mm)"),
		date("field_16", "Data consegna"),
		text("field_22", "Prezzo kg/mt"),
		text("field_23", "Prezzo metro"),
		text("field_24", "Acquistato dal Curatore"),
		readOnly(text("field_26", "Esubero")),
		text("field_27", "RITARDO"),
		readOnly(text(model.FieldLottoProgressivo, "Lotto Progressivo")),
	},
	model.CategoryOringHnbr: {
		title("Es. ORH-001"),
		text("field_0", "Posizione"),
		text("field_2", "Codice cliente"),
		text("field_3", "Colore Mescola"),
		text("field_4", "Ø Int."),
		text("field_5", "Ø Est."),
		text("field_6", "Ø Corda"),
		text("field_7", "Materiale"),
		text("field_8", "Durezza"),
		text("field_9", "FLUIDI"),
		text("field_10", "Colonna1"),
		text("field_11", "Colonna2"),
		text("field_12", "Commessa"),
		text("field_13", "Design temperature"),
		text("field_14", "Prezzo unitario"),
		number("field_15", "Giacenza"),
		number("field_16", "Prenotazione"),
		date("field_17", "Data prelievo"),
		text("field_18", "NR Ordine"),
		date("field_19", "Data ordine"),
	},
	model.CategoryOringNbr: {
		title("Es. ORN-001"),
		text("field_1", "Codice cliente"),
		text("field_2", "Colore Mescola"),
		text("field_3", "Ø Int."),
		text("field_4", "Ø Est."),
		text("field_5", "Ø Corda"),
		text("field_6", "Materiale"),
		text("field_7", "Durezza"),
		text("field_8", "Fluidi"),
		text("field_9", "Colonna1"),
		text("field_10", "Colonna2"),
		text("field_11", "Commessa"),
		text("field_12", "Design temperature"),
		text("field_13", "Prezzo unitario"),
		text("field_14", "Q.tà minima"),
		number("field_15", "Prenotazione"),
		number("field_16", "Giacenza"),
		date("field_17", "Data prelievo"),
	},
	model.CategorySparkGups: {
		{Key: model.FieldTitle, Label: "Title", Type: TypeText, Required: true, Placeholder: "Es. SPK-001"},
		text("field_1", "Lotto"),
		text("field_2", "Codice SAM"),
		text("field_3", "Tipologia Articolo"),
		text("field_4", "N. Ordine"),
		text("field_5", "Data Ordine"),
		text("field_6", "Fornitore"),
		text("field_7", "Quantità Ordinata"),
		text("field_8", "N. Bolla"),
		text("field_9", "Data Consegna"),
		text("field_10", "Giacenza"),
		text("field_11", "Data Ultimo Prelievo"),
		text("field_12", "Prezzo unitario"),
		text("field_13", "Commessa"),
	},
}

// Fields returns the form of a category in display order.
func Fields(cat model.Category) []Field {
	return fieldSets[cat]
}

// NormalizePayload turns a submitted form into a list update. Every writable
// field of the category is present in the result; blank inputs become nil so
// the backend clears them.
func NormalizePayload(cat model.Category, form map[string]string) model.Fields {
	payload := model.Fields{}
	for _, f := range fieldSets[cat] {
		if f.ReadOnly {
			continue
		}
		raw := form[f.Key]
		switch {
		case f.Type == TypeNumber:
			payload[f.Key] = normalize.NumberOrNil(raw)
		case f.Type == TypeDate:
			payload[f.Key] = normalize.IsoOrNil(raw)
		case f.Key == model.FieldTitle:
			if t := strings.TrimSpace(raw); t != "" {
				payload[f.Key] = t
			} else {
				payload[f.Key] = nil
			}
		case strings.TrimSpace(raw) == "":
			payload[f.Key] = nil
		default:
			payload[f.Key] = raw
		}
	}
	return payload
}

// FormFromRecord fills the form of a category from a record, dates in the
// dd/mm/yyyy form the inputs accept.
func FormFromRecord(cat model.Category, fields model.Fields) map[string]string {
	form := make(map[string]string, len(fieldSets[cat]))
	for _, f := range fieldSets[cat] {
		v := fields[f.Key]
		if f.Type == TypeDate {
			form[f.Key] = normalize.ToDisplayDate(v)
			continue
		}
		form[f.Key] = normalize.ToStr(v)
	}
	return form
}
