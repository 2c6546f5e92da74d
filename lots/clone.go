package lots

import (
	"strings"
	"time"

	"totem/model"
	"totem/normalize"
)

// Reset values written on a fresh lot.
const (
	QtaReset        = "0"
	GiacenzaQtReset = "0"
	NoteReset       = ""
	GiacenzaMmReset = "500"
)

// CloneOptions carries the operator input for a new lot. Empty strings mean
// "not provided".
type CloneOptions struct {
	Colata     string `json:"colata"`
	Ordine     string `json:"ordine"`
	DataOrdine string `json:"dataOrdine"`
	CodiceSAM  string `json:"codiceSam"`
}

// BuildClonePayload copies a lot record into the create payload of a new
// lot of the same code.
func BuildClonePayload(cat model.Category, source model.Fields, opts CloneOptions) model.Fields {
	switch cat {
	case model.CategoryTubi:
		return cloneTubi(source, opts)
	default:
		return cloneForgiati(source, opts)
	}
}

func cloneForgiati(source model.Fields, opts CloneOptions) model.Fields {
	dataOrdine := normalize.IsoOrNil(opts.DataOrdine)
	overrides := map[string]any{
		"field_13": strings.TrimSpace(opts.Colata),
		"field_1":  strings.TrimSpace(opts.Ordine),
		"field_2":  dataOrdine,
		"field_5":  QtaReset,
		"field_22": GiacenzaQtReset,
		"field_25": NoteReset,
	}

	payload := model.Fields{}
	for key, value := range source {
		if IsSystemField(key) || key == "field_26" || key == "field_11" {
			continue
		}
		switch key {
		case model.FieldCodiceSAM:
			payload[key] = textOrNil(opts.CodiceSAM)
		case model.FieldLottoProgressivo:
			payload[key] = nil
		default:
			if v, ok := overrides[key]; ok {
				payload[key] = v
			} else {
				payload[key] = value
			}
		}
	}
	for key, v := range overrides {
		if _, ok := payload[key]; !ok {
			payload[key] = v
		}
	}
	for key, v := range payload {
		if v == nil {
			delete(payload, key)
			continue
		}
		if s, ok := v.(string); ok && s == "" {
			delete(payload, key)
		}
	}
	return payload
}

func cloneTubi(source model.Fields, opts CloneOptions) model.Fields {
	ordine := textOrNil(opts.Ordine)
	if ordine == nil {
		ordine = textOrNil(normalize.ToStr(source["field_2"]))
	}
	var dataOrdine any
	if strings.TrimSpace(opts.DataOrdine) != "" {
		dataOrdine = normalize.IsoOrNil(opts.DataOrdine)
	} else {
		dataOrdine = isoOf(source["field_3"])
	}
	overrides := map[string]any{
		"field_18":           textOrNil(opts.Colata),
		"field_2":            ordine,
		"field_3":            dataOrdine,
		"field_16":           isoOf(source["field_16"]),
		"field_19":           GiacenzaMmReset,
		"field_20":           GiacenzaMmReset,
		"field_21":           isoOf(source["field_21"]),
		model.FieldCodiceSAM: textOrNil(opts.CodiceSAM),
	}

	payload := model.Fields{}
	for key, value := range source {
		if IsSystemField(key) {
			continue
		}
		if key == model.FieldLottoProgressivo {
			payload[key] = nil
			continue
		}
		if v, ok := overrides[key]; ok {
			payload[key] = v
			continue
		}
		payload[key] = textOrNil(normalize.ToStr(value))
	}
	for _, key := range []string{"field_18", "field_2", "field_3", "field_19", "field_20", model.FieldCodiceSAM} {
		if _, ok := payload[key]; !ok {
			payload[key] = overrides[key]
		}
	}
	return payload
}

func textOrNil(s string) any {
	if t := strings.TrimSpace(s); t != "" {
		return t
	}
	return nil
}

func isoOf(raw any) any {
	ms := normalize.TimeValue(raw)
	if ms == 0 {
		return nil
	}
	return time.UnixMilli(ms).UTC().Format("2006-01-02T15:04:05.000Z")
}
