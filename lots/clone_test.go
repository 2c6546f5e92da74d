package lots

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"totem/model"
)

func TestBuildClonePayloadTubi(t *testing.T) {
	source := model.Fields{
		"id":               "7",
		"@odata.etag":      "\"1\"",
		"Created":          "2024-01-01T00:00:00Z",
		"Title":            " T-100 ",
		"field_18":         "C1",
		"field_2":          " ORD1 ",
		"field_3":          "2024-03-15T00:00:00Z",
		"field_19":         "120+30",
		"field_20":         "150",
		"field_21":         45366.0,
		"field_7":          "  ",
		"LottoProgressivo": "a",
		"CodiceSAM":        "S-1",
	}

	got := BuildClonePayload(model.CategoryTubi, source, CloneOptions{Colata: " C9 "})

	assert.NotContains(t, got, "id")
	assert.NotContains(t, got, "@odata.etag")
	assert.NotContains(t, got, "Created")
	assert.Equal(t, "T-100", got["Title"])
	assert.Equal(t, "C9", got["field_18"])
	assert.Equal(t, "ORD1", got["field_2"])
	assert.Equal(t, "2024-03-15T00:00:00.000Z", got["field_3"])
	assert.Equal(t, "2024-03-15T00:00:00.000Z", got["field_21"])
	assert.Equal(t, "500", got["field_19"])
	assert.Equal(t, "500", got["field_20"])
	assert.Contains(t, got, "field_7")
	assert.Nil(t, got["field_7"])
	assert.Contains(t, got, "LottoProgressivo")
	assert.Nil(t, got["LottoProgressivo"])
	assert.Nil(t, got["CodiceSAM"])
	assert.NotContains(t, got, "field_16")
}

func TestBuildClonePayloadTubiOverrides(t *testing.T) {
	got := BuildClonePayload(model.CategoryTubi, model.Fields{"Title": "T-1"}, CloneOptions{
		Colata:     "C2",
		Ordine:     "ORD9",
		DataOrdine: "15/03/2024",
		CodiceSAM:  " SAM ",
	})

	assert.Equal(t, "ORD9", got["field_2"])
	assert.Equal(t, "2024-03-15T00:00:00.000Z", got["field_3"])
	assert.Equal(t, "SAM", got["CodiceSAM"])
	assert.Equal(t, "C2", got["field_18"])
	assert.Equal(t, "500", got["field_19"])
}

func TestBuildClonePayloadForgiati(t *testing.T) {
	source := model.Fields{
		"id":               "3",
		"Title":            "F-1",
		"field_13":         "C1",
		"field_1":          "O1",
		"field_2":          "2024-01-01",
		"field_5":          "7",
		"field_22":         "3",
		"field_25":         "nota",
		"field_26":         "2024-05-05",
		"field_11":         "2024-02-02",
		"field_7":          "keep",
		"field_8":          "",
		"CodiceSAM":        "S1",
		"LottoProgressivo": "a",
	}

	got := BuildClonePayload(model.CategoryForgiati, source, CloneOptions{
		Colata:     "C2",
		DataOrdine: "15/03/2024",
	})

	assert.Equal(t, model.Fields{
		"Title":    "F-1",
		"field_13": "C2",
		"field_2":  "2024-03-15T00:00:00.000Z",
		"field_5":  "0",
		"field_22": "0",
		"field_7":  "keep",
	}, got)
}
