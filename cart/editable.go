package cart

import (
	"errors"
	"strconv"

	"totem/model"
	"totem/normalize"
)

var ErrUnknownField = errors.New("campo non modificabile")

// Editable is the form state of one cart line. There is one implementation
// per category, each holding only the fields that category lets the
// operator change.
type Editable interface {
	Category() model.Category
	// Set changes one form field by its JSON name.
	Set(field, value string) error
	// Payload is the partial list update written on save.
	Payload() model.Fields
	// notification returns the per-type fields of the webhook item.
	notification() map[string]any
}

// NewEditable seeds the form state from the record's current fields. It is
// nil for a source that is not a known category.
func NewEditable(item model.CartItem) Editable {
	f := item.Fields
	switch item.Source {
	case model.CategoryForgiati:
		return &ForgiatiEdit{
			Commessa:      normalize.ToStr(f["field_24"]),
			DataPrelievo:  normalize.ToInputDateIso(f["field_23"]),
			GiacenzaQt:    normalize.ToStr(f["field_22"]),
			Note:          normalize.ToStr(f["field_25"]),
			GiacenzaBarra: normalize.ToStr(f["field_21"]),
			Bolla:         item.Bolla,
			Colata:        item.Colata,
		}
	case model.CategoryOringHnbr:
		return &OringHnbrEdit{
			Commessa:     normalize.ToStr(f["field_12"]),
			DataPrelievo: normalize.ToInputDateIso(f["field_17"]),
			Giacenza:     normalize.ToStr(f["field_15"]),
			Prenotazione: normalize.ToStr(f["field_16"]),
			NrOrdine:     normalize.ToStr(f["field_18"]),
			DataOrdine:   normalize.ToInputDateIso(f["field_19"]),
		}
	case model.CategoryOringNbr:
		return &OringNbrEdit{
			Commessa:     normalize.ToStr(f["field_11"]),
			Giacenza:     normalize.ToStr(f["field_16"]),
			Prenotazione: normalize.ToStr(f["field_15"]),
			DataPrelievo: normalize.ToInputDateIso(f["field_17"]),
			QtaMinima:    normalize.ToStr(f["field_14"]),
		}
	case model.CategorySparkGups:
		return &SparkEdit{
			Commessa:           normalize.ToStr(f["field_13"]),
			Giacenza:           normalize.ToStr(f["field_10"]),
			DataUltimoPrelievo: normalize.ToInputDateIso(f["field_11"]),
		}
	case model.CategoryTubi:
		return &TubiEdit{
			DataUltimoPrelievo: normalize.ToInputDateIso(f["field_21"]),
			Commessa:           normalize.ToStr(f["field_25"]),
			GiacenzaBib:        normalize.ToStr(f["field_20"]),
			GiacenzaContab:     normalize.ToStr(f["field_19"]),
			Bolla:              item.Bolla,
			Colata:             item.Colata,
		}
	}
	return nil
}

type ForgiatiEdit struct {
	Commessa      string `json:"commessa"`
	DataPrelievo  string `json:"dataPrelievo"`
	GiacenzaQt    string `json:"giacenzaQt"`
	Note          string `json:"note"`
	GiacenzaBarra string `json:"giacenzaBarra"`
	Bolla         string `json:"bolla,omitempty"`
	Colata        string `json:"colata,omitempty"`
}

func (e *ForgiatiEdit) Category() model.Category { return model.CategoryForgiati }

func (e *ForgiatiEdit) Set(field, value string) error {
	switch field {
	case "commessa":
		e.Commessa = value
	case "dataPrelievo":
		e.DataPrelievo = value
	case "giacenzaQt":
		e.GiacenzaQt = value
	case "note":
		e.Note = value
	case "giacenzaBarra":
		e.GiacenzaBarra = value
	default:
		return ErrUnknownField
	}
	return nil
}

func (e *ForgiatiEdit) Payload() model.Fields {
	return model.Fields{
		"field_24": e.Commessa,
		"field_23": normalize.IsoOrNil(e.DataPrelievo),
		"field_22": normalize.NumberOrNil(e.GiacenzaQt),
		"field_25": e.Note,
		"field_21": normalize.NumberOrNil(e.GiacenzaBarra),
	}
}

func (e *ForgiatiEdit) notification() map[string]any {
	return map[string]any{
		"commessa":      e.Commessa,
		"giacenza":      e.GiacenzaQt,
		"note":          e.Note,
		"dataPrelievo":  e.DataPrelievo,
		"giacenzaQt":    e.GiacenzaQt,
		"giacenzaBarra": e.GiacenzaBarra,
	}
}

type TubiEdit struct {
	DataUltimoPrelievo string `json:"dataUltimoPrelievo"`
	Commessa           string `json:"commessa"`
	GiacenzaBib        string `json:"giacenzaBib"`
	GiacenzaContab     string `json:"giacenzaContab"`
	Bolla              string `json:"bolla,omitempty"`
	Colata             string `json:"colata,omitempty"`
}

func (e *TubiEdit) Category() model.Category { return model.CategoryTubi }

// Set on giacenzaContab also re-derives giacenzaBib when the expression sums.
func (e *TubiEdit) Set(field, value string) error {
	switch field {
	case "dataUltimoPrelievo":
		e.DataUltimoPrelievo = value
	case "commessa":
		e.Commessa = value
	case "giacenzaBib":
		e.GiacenzaBib = value
	case "giacenzaContab":
		e.GiacenzaContab = value
		if sum, ok := normalize.SumAdditiveExpression(value); ok {
			e.GiacenzaBib = strconv.FormatFloat(sum, 'f', -1, 64)
		}
	default:
		return ErrUnknownField
	}
	return nil
}

func (e *TubiEdit) Payload() model.Fields {
	var bib any
	if sum, ok := normalize.SumAdditiveExpression(e.GiacenzaContab); ok {
		bib = sum
	} else {
		bib = normalize.NumberOrNil(e.GiacenzaBib)
	}
	return model.Fields{
		"field_21": normalize.IsoOrNil(e.DataUltimoPrelievo),
		"field_25": e.Commessa,
		"field_20": bib,
		"field_19": e.GiacenzaContab,
	}
}

func (e *TubiEdit) notification() map[string]any {
	return map[string]any{
		"commessa":           e.Commessa,
		"giacenza":           e.GiacenzaBib,
		"dataUltimoPrelievo": e.DataUltimoPrelievo,
		"giacenzaTuboIntero": e.GiacenzaBib,
		"giacenzaContabMm":   e.GiacenzaContab,
	}
}

type OringHnbrEdit struct {
	Commessa     string `json:"commessa"`
	DataPrelievo string `json:"dataPrelievo"`
	Giacenza     string `json:"giacenza"`
	Prenotazione string `json:"prenotazione"`
	NrOrdine     string `json:"nrOrdine"`
	DataOrdine   string `json:"dataOrdine"`
}

func (e *OringHnbrEdit) Category() model.Category { return model.CategoryOringHnbr }

func (e *OringHnbrEdit) Set(field, value string) error {
	switch field {
	case "commessa":
		e.Commessa = value
	case "dataPrelievo":
		e.DataPrelievo = value
	case "giacenza":
		e.Giacenza = value
	case "prenotazione":
		e.Prenotazione = value
	case "nrOrdine":
		e.NrOrdine = value
	case "dataOrdine":
		e.DataOrdine = value
	default:
		return ErrUnknownField
	}
	return nil
}

func (e *OringHnbrEdit) Payload() model.Fields {
	return model.Fields{
		"field_12": e.Commessa,
		"field_15": normalize.NumberOrNil(e.Giacenza),
		"field_16": normalize.NumberOrNil(e.Prenotazione),
		"field_17": normalize.IsoOrNil(e.DataPrelievo),
		"field_18": e.NrOrdine,
		"field_19": normalize.IsoOrNil(e.DataOrdine),
	}
}

func (e *OringHnbrEdit) notification() map[string]any {
	return map[string]any{
		"commessa":     e.Commessa,
		"giacenza":     e.Giacenza,
		"prenotazione": e.Prenotazione,
	}
}

type OringNbrEdit struct {
	Commessa     string `json:"commessa"`
	Giacenza     string `json:"giacenza"`
	Prenotazione string `json:"prenotazione"`
	DataPrelievo string `json:"dataPrelievo"`
	QtaMinima    string `json:"qtaMinima"`
}

func (e *OringNbrEdit) Category() model.Category { return model.CategoryOringNbr }

func (e *OringNbrEdit) Set(field, value string) error {
	switch field {
	case "commessa":
		e.Commessa = value
	case "giacenza":
		e.Giacenza = value
	case "prenotazione":
		e.Prenotazione = value
	case "dataPrelievo":
		e.DataPrelievo = value
	case "qtaMinima":
		e.QtaMinima = value
	default:
		return ErrUnknownField
	}
	return nil
}

func (e *OringNbrEdit) Payload() model.Fields {
	return model.Fields{
		"field_11": e.Commessa,
		"field_14": normalize.NumberOrNil(e.QtaMinima),
		"field_16": normalize.NumberOrNil(e.Giacenza),
		"field_15": normalize.NumberOrNil(e.Prenotazione),
		"field_17": normalize.IsoOrNil(e.DataPrelievo),
	}
}

func (e *OringNbrEdit) notification() map[string]any {
	return map[string]any{
		"commessa":     e.Commessa,
		"giacenza":     e.Giacenza,
		"prenotazione": e.Prenotazione,
	}
}

type SparkEdit struct {
	Commessa           string `json:"commessa"`
	Giacenza           string `json:"giacenza"`
	DataUltimoPrelievo string `json:"dataUltimoPrelievo"`
}

func (e *SparkEdit) Category() model.Category { return model.CategorySparkGups }

func (e *SparkEdit) Set(field, value string) error {
	switch field {
	case "commessa":
		e.Commessa = value
	case "giacenza":
		e.Giacenza = value
	case "dataUltimoPrelievo":
		e.DataUltimoPrelievo = value
	default:
		return ErrUnknownField
	}
	return nil
}

func (e *SparkEdit) Payload() model.Fields {
	return model.Fields{
		"field_13": e.Commessa,
		"field_10": normalize.NumberOrNil(e.Giacenza),
		"field_11": normalize.IsoOrNil(e.DataUltimoPrelievo),
	}
}

func (e *SparkEdit) notification() map[string]any {
	return map[string]any{
		"commessa":           e.Commessa,
		"giacenza":           e.Giacenza,
		"dataUltimoPrelievo": e.DataUltimoPrelievo,
	}
}
