package graph

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"totem/model"
	"totem/workbook"
)

type recorded struct {
	Method  string
	Path    string
	Query   string
	Session string
	Body    map[string]any
}

type fakeGraph struct {
	mu       sync.Mutex
	requests []recorded
	handler  func(w http.ResponseWriter, r *http.Request, body map[string]any)
}

func (f *fakeGraph) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if raw, _ := io.ReadAll(r.Body); len(raw) > 0 {
		_ = json.Unmarshal(raw, &body)
	}
	f.mu.Lock()
	f.requests = append(f.requests, recorded{
		Method:  r.Method,
		Path:    r.URL.Path,
		Query:   r.URL.RawQuery,
		Session: r.Header.Get(sessionHeader),
		Body:    body,
	})
	f.mu.Unlock()
	f.handler(w, r, body)
}

func newTestClient(t *testing.T, h func(w http.ResponseWriter, r *http.Request, body map[string]any)) (*Client, *fakeGraph, *httptest.Server) {
	t.Helper()
	fg := &fakeGraph{handler: h}
	srv := httptest.NewServer(fg)
	t.Cleanup(srv.Close)
	return New(nil, "site-1", WithBaseURL(srv.URL)), fg, srv
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func TestListItemsFollowsNextLinkAndDedups(t *testing.T) {
	var srvURL string
	c, fg, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request, _ map[string]any) {
		if r.URL.Query().Get("page") == "2" {
			writeJSON(w, map[string]any{"value": []any{
				map[string]any{"id": "2", "fields": map[string]any{"Title": "T-100"}},
				map[string]any{"id": "3", "fields": map[string]any{"Title": "T-200"}},
			}})
			return
		}
		writeJSON(w, map[string]any{
			"value": []any{
				map[string]any{"id": "1", "fields": map[string]any{"Title": "T-100", "field_18": "C1"}},
				map[string]any{"id": "2", "fields": map[string]any{"Title": "T-100"}},
			},
			"@odata.nextLink": srvURL + "/sites/site-1/lists/L1/items?page=2",
		})
	})
	srvURL = srv.URL

	recs, err := c.ListItems(context.Background(), "L1")
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, []string{"1", "2", "3"}, []string{recs[0].ID, recs[1].ID, recs[2].ID})
	assert.Equal(t, "C1", recs[0].Fields["field_18"])

	require.Len(t, fg.requests, 2)
	assert.Equal(t, "/sites/site-1/lists/L1/items", fg.requests[0].Path)
	assert.Contains(t, fg.requests[0].Query, "expand=fields")
	assert.Contains(t, fg.requests[0].Query, "$top=999")
	assert.Contains(t, fg.requests[0].Query, "createdDateTime+desc")
}

func TestCreateUpdateDeleteItem(t *testing.T) {
	c, fg, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request, body map[string]any) {
		switch r.Method {
		case http.MethodPost:
			writeJSON(w, map[string]any{"id": "42", "fields": body["fields"]})
		case http.MethodPatch:
			writeJSON(w, body)
		default:
			w.WriteHeader(http.StatusNoContent)
		}
	})
	ctx := context.Background()

	rec, err := c.CreateItem(ctx, "L1", model.Fields{"Title": "T-1"})
	require.NoError(t, err)
	assert.Equal(t, "42", rec.ID)
	assert.Equal(t, "T-1", rec.Fields["Title"])

	require.NoError(t, c.UpdateItem(ctx, "L1", "42", model.Fields{"field_19": "90"}))
	require.NoError(t, c.DeleteItem(ctx, "L1", "42"))

	require.Len(t, fg.requests, 3)
	assert.Equal(t, map[string]any{"fields": map[string]any{"Title": "T-1"}}, fg.requests[0].Body)
	assert.Equal(t, "/sites/site-1/lists/L1/items/42/fields", fg.requests[1].Path)
	assert.Equal(t, "90", fg.requests[1].Body["field_19"])
	assert.Equal(t, http.MethodDelete, fg.requests[2].Method)
	assert.Equal(t, "/sites/site-1/lists/L1/items/42", fg.requests[2].Path)
}

func TestAPIErrorDecoding(t *testing.T) {
	c, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request, _ map[string]any) {
		if r.URL.Path == "/sites/site-1/lists/bad/columns" {
			w.WriteHeader(http.StatusBadGateway)
			fmt.Fprint(w, "upstream down")
			return
		}
		w.WriteHeader(http.StatusForbidden)
		writeJSON(w, map[string]any{"error": map[string]any{"code": "accessDenied", "message": "no access"}})
	})

	_, err := c.ListItems(context.Background(), "L1")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
	assert.Equal(t, "accessDenied", apiErr.Code)
	assert.Contains(t, err.Error(), "no access")

	_, err = c.ListColumns(context.Background(), "bad")
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Graph HTTP 502: upstream down", apiErr.Error())
}

func TestDriveIDByName(t *testing.T) {
	c, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request, _ map[string]any) {
		switch r.URL.Path {
		case "/sites/site-1/drive":
			writeJSON(w, map[string]any{"id": "default", "name": "Documenti"})
		default:
			writeJSON(w, map[string]any{"value": []any{
				map[string]any{"id": "d1", "name": "Documenti"},
				map[string]any{"id": "d2", "name": "Magazzino"},
			}})
		}
	})
	ctx := context.Background()

	id, err := c.DriveID(ctx, " magazzino ")
	require.NoError(t, err)
	assert.Equal(t, "d2", id)

	id, err = c.DriveID(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "default", id)

	_, err = c.DriveID(ctx, "Archivio")
	assert.EqualError(t, err, `Libreria "Archivio" non trovata`)
}

func TestWorkbookSession(t *testing.T) {
	c, fg, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request, _ map[string]any) {
		switch {
		case r.URL.Path == "/sites/site-1/drives":
			writeJSON(w, map[string]any{"value": []any{map[string]any{"id": "d1", "name": "Magazzino"}}})
		case r.URL.Path == "/drives/d1/root:/Excel/tubi.xlsx":
			writeJSON(w, map[string]any{"id": "item-9", "name": "tubi.xlsx"})
		case r.URL.Path == "/drives/d1/items/item-9/workbook/createSession":
			writeJSON(w, map[string]any{"id": "sess-1"})
		case r.URL.Path == "/drives/d1/items/item-9/workbook/tables/Tubi/columns":
			writeJSON(w, map[string]any{"value": []any{map[string]any{"name": "CODICE"}, map[string]any{"name": "IDENT LOTTO"}}})
		case r.URL.Path == "/drives/d1/items/item-9/workbook/tables/Tubi/rows" && r.Method == http.MethodGet:
			writeJSON(w, map[string]any{"value": []any{
				map[string]any{"index": 0, "values": []any{[]any{"T-100", "A"}}},
				map[string]any{"index": 1, "values": []any{[]any{"T-200", "A"}}},
			}})
		case r.URL.Path == "/drives/d1/items/item-9/workbook/tables/Tubi/dataBodyRange":
			writeJSON(w, map[string]any{"address": "Foglio1!A2:B3"})
		case r.Method == http.MethodPatch && r.URL.Path == "/drives/d1/items/item-9/workbook/tables/Tubi/rows/itemAt(index=1)":
			w.WriteHeader(http.StatusBadRequest)
			writeJSON(w, map[string]any{"error": map[string]any{"code": "invalidRequest", "message": "itemAt"}})
		default:
			w.WriteHeader(http.StatusNoContent)
		}
	})
	ctx := context.Background()
	b := NewWorkbookBackend(c)

	file, err := b.ResolveFile(ctx, "Magazzino", "/Excel/tubi.xlsx")
	require.NoError(t, err)
	assert.Equal(t, workbook.FileRef{DriveID: "d1", ItemID: "item-9", Path: "/Excel/tubi.xlsx"}, file)

	sess, err := b.OpenSession(ctx, file)
	require.NoError(t, err)
	assert.Equal(t, "sess-1", sess.ID())

	tbl, err := sess.Table(ctx, "Tubi")
	require.NoError(t, err)
	assert.Equal(t, []string{"CODICE", "IDENT LOTTO"}, tbl.Columns)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, 1, tbl.Rows[1].Index)
	assert.Equal(t, "T-200", tbl.Rows[1].Values[0])
	assert.Equal(t, "Foglio1!A2:B3", tbl.Address)

	err = sess.UpdateRow(ctx, "Tubi", 1, []any{"T-200", "B"})
	assert.ErrorIs(t, err, workbook.ErrRowAddressing)

	require.NoError(t, sess.UpdateRange(ctx, "Foglio1", "A3:B3", [][]any{{"T-200", "B"}}))
	require.NoError(t, sess.AppendRow(ctx, "Tubi", []any{"T-300", "A"}))
	require.NoError(t, sess.Close(ctx))

	var sawRange, sawClose bool
	for _, r := range fg.requests {
		if r.Path == "/drives/d1/items/item-9/workbook/createSession" {
			assert.Equal(t, true, r.Body["persistChanges"])
			continue
		}
		if r.Path == "/drives/d1/items/item-9/workbook/worksheets/Foglio1/range(address='A3:B3')" {
			sawRange = true
			assert.Equal(t, http.MethodPatch, r.Method)
		}
		if r.Path == "/drives/d1/items/item-9/workbook/closeSession" {
			sawClose = true
		}
		if r.Path != "/sites/site-1/drives" && r.Path != "/drives/d1/root:/Excel/tubi.xlsx" {
			assert.Equal(t, "sess-1", r.Session, r.Path)
		}
	}
	assert.True(t, sawRange)
	assert.True(t, sawClose)
}
