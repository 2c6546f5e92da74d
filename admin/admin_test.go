package admin

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"totem/database"
	"totem/listcache"
	"totem/model"
	"totem/workbook"
)

func TestNormalizePayload(t *testing.T) {
	got := NormalizePayload(model.CategoryForgiati, map[string]string{
		"Title":            "  F-1 ",
		"field_2":          "05/03/2024",
		"field_1":          "ORD-9",
		"field_25":         "   ",
		"field_26":         "2024-01-01",
		"LottoProgressivo": "b",
	})
	assert.Equal(t, "F-1", got["Title"])
	assert.Equal(t, "2024-03-05T00:00:00.000Z", got["field_2"])
	assert.Equal(t, "ORD-9", got["field_1"])
	assert.Contains(t, got, "field_25")
	assert.Nil(t, got["field_25"])
	assert.NotContains(t, got, "field_26")
	assert.NotContains(t, got, "LottoProgressivo")

	nbr := NormalizePayload(model.CategoryOringNbr, map[string]string{"field_16": "12", "field_15": "dieci", "field_17": "31/02/2024"})
	assert.Equal(t, 12.0, nbr["field_16"])
	assert.Nil(t, nbr["field_15"])
	assert.Nil(t, nbr["field_17"])
	assert.Nil(t, nbr["Title"])
}

func TestFieldsAndForm(t *testing.T) {
	for _, cat := range model.Categories {
		fields := Fields(cat)
		require.NotEmpty(t, fields, cat)
		assert.Equal(t, model.FieldTitle, fields[0].Key)
		assert.True(t, fields[0].Required)
	}
	form := FormFromRecord(model.CategoryTubi, model.Fields{"Title": "T-1", "field_3": "2024-03-05T00:00:00Z", "field_20": 130.0})
	assert.Equal(t, "T-1", form["Title"])
	assert.Equal(t, "130", form["field_20"])
	assert.Len(t, form["field_3"], len("05/03/2024"))
}

func forgiatiPanel(t *testing.T) (*Panel, *database.ItemStore, string) {
	t.Helper()
	dir := t.TempDir()
	db, err := database.Open(filepath.Join(dir, "totem.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.ApplySchema(db))
	store := database.NewItemStore(db)

	_, err = store.CreateItem(context.Background(), "forgiati", model.Fields{"Title": "F-1", "field_13": "C1"})
	require.NoError(t, err)
	_, err = store.CreateItem(context.Background(), "forgiati", model.Fields{"Title": "F-2", "field_13": "C7"})
	require.NoError(t, err)

	path := filepath.Join(dir, "forgiati.xlsx")
	require.NoError(t, workbook.CreateWorkbook(path, "Forgiati", []string{"CODICE", "N COLATA", "NOTE", "IDENT LOTTO"}))
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	for i, r := range [][]any{{"F-1", "C1", "", "A"}, {"F-2", "C7", "", "A"}} {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := r
		require.NoError(t, f.SetSheetRow("Forgiati", cell, &row))
	}
	require.NoError(t, f.Save())
	require.NoError(t, f.Close())

	mirror, err := workbook.NewMirror(workbook.NewXLSXBackend(dir), model.CategoryForgiati, workbook.Target{Path: "forgiati.xlsx", Table: "Forgiati"})
	require.NoError(t, err)

	p := NewPanel(store, listcache.New(store),
		map[model.Category]string{model.CategoryForgiati: "forgiati"},
		map[model.Category]*workbook.Mirror{model.CategoryForgiati: mirror})
	return p, store, path
}

func sheetRows(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Forgiati")
	require.NoError(t, err)
	return rows
}

func TestPanelCreateUpdateDelete(t *testing.T) {
	p, store, path := forgiatiPanel(t)
	ctx := context.Background()

	_, err := p.Create(ctx, model.CategoryForgiati, map[string]string{"Title": "  "})
	assert.ErrorIs(t, err, ErrTitleRequired)

	out, err := p.Create(ctx, model.CategoryForgiati, map[string]string{"Title": "F-1", "field_13": "C2"})
	require.NoError(t, err)
	assert.Equal(t, "Nuovo elemento creato", out.Message)
	require.NotNil(t, out.Record)
	created := out.Record.ID

	rows := sheetRows(t, path)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"F-1", "C2", "", "B"}, rows[2], "inserted after the last F-1 row")
	assert.Equal(t, "F-2", rows[3][0])

	out, err = p.Update(ctx, model.CategoryForgiati, created, map[string]string{"Title": "F-1", "field_13": "C2", "field_25": "verificato"})
	require.NoError(t, err)
	assert.Equal(t, "Elemento aggiornato con successo", out.Message)
	assert.Equal(t, []string{"F-1", "C2", "verificato", "B"}, sheetRows(t, path)[2])

	items, err := store.ListItems(ctx, "forgiati")
	require.NoError(t, err)
	for _, it := range items {
		if it.ID == created {
			assert.Equal(t, "verificato", it.Fields["field_25"])
		}
	}

	out, err = p.Delete(ctx, model.CategoryForgiati, created)
	require.NoError(t, err)
	assert.Equal(t, "Elemento eliminato con successo", out.Message)
	rows = sheetRows(t, path)
	require.Len(t, rows, 3)
	assert.Equal(t, "F-2", rows[2][0])

	_, err = p.Delete(ctx, model.CategoryForgiati, created)
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestPanelMirrorWarning(t *testing.T) {
	p, _, _ := forgiatiPanel(t)
	p.mirrors = nil
	out, err := p.Create(context.Background(), model.CategoryForgiati, map[string]string{"Title": "F-9"})
	require.NoError(t, err)
	assert.Equal(t, "Nuovo elemento creato; Excel non aggiornato: "+workbook.ErrNotConfigured.Error(), out.Message)
	assert.Equal(t, workbook.ErrNotConfigured.Error(), out.MirrorWarning)
}

func TestPanelUnmirroredCategory(t *testing.T) {
	p, _, _ := forgiatiPanel(t)
	p.listIDs[model.CategoryOringNbr] = "oring-nbr"
	out, err := p.Create(context.Background(), model.CategoryOringNbr, map[string]string{"Title": "OR-1", "field_16": "4"})
	require.NoError(t, err)
	assert.Equal(t, "Nuovo elemento creato", out.Message)
	assert.Empty(t, out.MirrorWarning)

	items, letters, err := p.Items(context.Background(), model.CategoryOringNbr, false)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 4.0, items[0].Fields["field_16"])
	assert.Empty(t, letters)

	_, err = p.Update(context.Background(), model.CategoryTubi, "1", map[string]string{"Title": "T"})
	assert.EqualError(t, err, "List ID non configurato per TUBI")
}
