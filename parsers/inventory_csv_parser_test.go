package parsers

import (
	"bytes"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"totem/model"
	"totem/normalize"
)

func TestMain(m *testing.M) {
	normalize.Location = time.UTC
	os.Exit(m.Run())
}

func TestParseInventoryCSVTubiWindows1252(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("CODICE;N COLATA;DATA ULTIMO PRELIEVO;Note\r\n")
	buf.WriteString("T-100;C1;15/03/2024;qualit")
	buf.WriteByte(0xE0) // à in Windows-1252
	buf.WriteString("\r\n")
	buf.WriteString(";C2;;senza codice\r\n")
	buf.WriteString("T-200;C9;;\r\n")

	recs, err := ParseInventoryCSV(&buf, model.CategoryTubi)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, model.Fields{
		"Title":    "T-100",
		"field_18": "C1",
		"field_21": "2024-03-15T00:00:00.000Z",
		"Note":     "qualità",
	}, recs[0])
	assert.Equal(t, model.Fields{"Title": "T-200", "field_18": "C9"}, recs[1])
}

func TestParseInventoryCSVUncuratedCategory(t *testing.T) {
	in := "\xEF\xBB\xBFTitle,field_15,field_17\nO-1,12,2024-01-01\n"
	recs, err := ParseInventoryCSV(strings.NewReader(in), model.CategoryOringNbr)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "O-1", recs[0]["Title"])
	assert.Equal(t, "12", recs[0]["field_15"])
	assert.Equal(t, "2024-01-01", recs[0]["field_17"])
}

func TestParseInventoryCSVErrors(t *testing.T) {
	_, err := ParseInventoryCSV(strings.NewReader(""), model.CategoryTubi)
	assert.EqualError(t, err, "Il file CSV è vuoto")

	_, err = ParseInventoryCSV(strings.NewReader("Descrizione,Qta\nx,1\n"), model.CategoryTubi)
	assert.EqualError(t, err, "Colonna obbligatoria mancante: Title")
}
