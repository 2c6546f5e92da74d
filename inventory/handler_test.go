package inventory

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"totem/listcache"
	"totem/model"
)

type staticLists struct {
	fetches int
	records []model.InventoryRecord
}

func (s *staticLists) ListItems(context.Context, string) ([]model.InventoryRecord, error) {
	s.fetches++
	return s.records, nil
}

func TestInventoryHandler(t *testing.T) {
	lists := &staticLists{records: []model.InventoryRecord{
		{ID: "2", Fields: model.Fields{"Title": "F-10", "field_13": "C2", "Created": "2024-02-01T00:00:00Z"}},
		{ID: "1", Fields: model.Fields{"Title": "F-10", "field_13": "C1", "Created": "2024-01-01T00:00:00Z"}},
		{ID: "3", Fields: model.Fields{"Title": "F-9", "field_13": "C9"}},
	}}
	cache := listcache.New(lists)
	ids := map[model.Category]string{model.CategoryForgiati: "LIST-F"}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/inventory/{category}", InventoryHandler(cache, ids))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/inventory/forgiati", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var view View
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&view))
	assert.Equal(t, model.CategoryForgiati, view.Category)
	require.Len(t, view.Groups, 2)
	assert.Equal(t, "F-9", view.Groups[0].Title)
	assert.Equal(t, "F-10", view.Groups[1].Title)
	assert.Equal(t, "b", view.Letters["2"])
	assert.Equal(t, "a", view.Letters["1"])
	assert.Equal(t, "B", view.Groups[1].Items[0].LottoProg)
	assert.Equal(t, "C2", view.Groups[1].Items[0].Colata)
	assert.Contains(t, view.TableHTML, "F-10")

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/inventory/forgiati?refresh=1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, lists.fetches)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/inventory/tubi", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "List ID non configurato per TUBI")

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/inventory/viti", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
