package loader

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"totem/database"
	"totem/model"
)

func TestInitDatabaseSeedsEmptyLists(t *testing.T) {
	dir := t.TempDir()
	db, err := database.Open(filepath.Join(dir, "totem.db"))
	require.NoError(t, err)
	defer db.Close()

	seed := filepath.Join(dir, "seed")
	require.NoError(t, os.MkdirAll(seed, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(seed, "tubi.csv"), []byte("CODICE,N COLATA\nT-100,C1\nT-100,C2\n"), 0o644))

	ids := map[model.Category]string{model.CategoryTubi: "tubi-list", model.CategoryForgiati: "forgiati-list"}
	ctx := context.Background()
	require.NoError(t, InitDatabase(ctx, db, seed, ids))
	require.NoError(t, InitDatabase(ctx, db, seed, ids))

	items, err := database.NewItemStore(db).ListItems(ctx, "tubi-list")
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

type recordingInvalidator struct{ cats []model.Category }

func (r *recordingInvalidator) InvalidateCategory(cat model.Category) { r.cats = append(r.cats, cat) }

func TestImportCSVHandler(t *testing.T) {
	db, err := database.Open(filepath.Join(t.TempDir(), "totem.db"))
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, database.ApplySchema(db))
	store := database.NewItemStore(db)
	inv := &recordingInvalidator{}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/admin/{category}/import", ImportCSVHandler(store, inv, map[model.Category]string{model.CategoryForgiati: "F"}))

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "forgiati.csv")
	require.NoError(t, err)
	fw.Write([]byte("CODICE;N COLATA;NOTE\nF-1;C1;prima\n"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/admin/forgiati/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, float64(1), resp["rows"])
	assert.Equal(t, []model.Category{model.CategoryForgiati}, inv.cats)

	items, err := store.ListItems(context.Background(), "F")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "prima", items[0].Fields["field_25"])

	req = httptest.NewRequest(http.MethodPost, "/api/admin/tubi/import", nil)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
