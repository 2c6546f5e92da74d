package documents

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"totem/graph"
)

type fakeDrive struct {
	resolves int
	children map[string][]graph.DriveItem
	items    map[string]graph.DriveItem
	err      error
}

func (f *fakeDrive) DriveID(_ context.Context, name string) (string, error) {
	f.resolves++
	return "drive-" + name, nil
}

func (f *fakeDrive) Children(_ context.Context, driveID, path string) ([]graph.DriveItem, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.children[path], nil
}

func (f *fakeDrive) Search(_ context.Context, _, q string) ([]graph.DriveItem, error) {
	var out []graph.DriveItem
	for _, it := range f.items {
		if it.Name == q {
			out = append(out, it)
		}
	}
	return out, nil
}

func (f *fakeDrive) Item(_ context.Context, _, itemID string) (graph.DriveItem, error) {
	it, ok := f.items[itemID]
	if !ok {
		return graph.DriveItem{}, &graph.APIError{Status: http.StatusNotFound, Message: "itemNotFound"}
	}
	return it, nil
}

func file(id, name, mime string) graph.DriveItem {
	it := graph.DriveItem{ID: id, Name: name}
	it.File = &struct {
		MimeType string `json:"mimeType"`
	}{MimeType: mime}
	return it
}

func folder(id, name string) graph.DriveItem {
	it := graph.DriveItem{ID: id, Name: name}
	it.Folder = &struct {
		ChildCount int `json:"childCount"`
	}{ChildCount: 1}
	return it
}

func TestListFoldersFirst(t *testing.T) {
	d := &fakeDrive{children: map[string][]graph.DriveItem{
		"": {file("1", "b.pdf", "application/pdf"), folder("2", "Manuali"), file("3", "A.docx", "application/msword")},
	}}
	b := NewBrowser(d, "Documenti")
	entries, err := b.List(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "Manuali", entries[0].Name)
	assert.True(t, entries[0].IsFolder)
	assert.Equal(t, "A.docx", entries[1].Name)
	assert.False(t, entries[1].IsPDF)
	assert.True(t, entries[2].IsPDF)

	_, err = b.List(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 1, d.resolves)
}

func TestOpen(t *testing.T) {
	pdf := file("1", "scheda.PDF", "")
	pdf.DownloadURL = "https://download.example/scheda"
	d := &fakeDrive{items: map[string]graph.DriveItem{
		"1": pdf,
		"2": file("2", "foto.jpg", "image/jpeg"),
		"3": file("3", "vuoto.pdf", "application/pdf"),
	}}
	b := NewBrowser(d, "")

	e, err := b.Open(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "https://download.example/scheda", e.DownloadURL)

	_, err = b.Open(context.Background(), "2")
	assert.ErrorIs(t, err, ErrNotPDF)
	_, err = b.Open(context.Background(), "3")
	assert.ErrorIs(t, err, ErrNoDownloadURL)
}

func TestEntryPath(t *testing.T) {
	it := file("1", "a.pdf", "application/pdf")
	it.ParentReference = &struct {
		Path string `json:"path"`
	}{Path: "/drives/x/root:/Manuali/Pompe"}
	assert.Equal(t, "Manuali/Pompe/a.pdf", toEntry(it).Path)

	it.ParentReference.Path = "/drives/x/root:"
	assert.Equal(t, "a.pdf", toEntry(it).Path)

	hit := file("2", "b.pdf", "application/pdf")
	hit.WebURL = "https://tenant.sharepoint.com/sites/mag/Documenti%20condivisi/Schede/b.pdf"
	assert.Equal(t, "Schede/b.pdf", toEntry(hit).Path)

	hit.WebURL = "https://tenant.sharepoint.com/other/b.pdf"
	assert.Empty(t, toEntry(hit).Path)
}

func TestHandlers(t *testing.T) {
	pdf := file("1", "scheda.pdf", "application/pdf")
	pdf.DownloadURL = "https://download.example/scheda"
	d := &fakeDrive{
		children: map[string][]graph.DriveItem{"Manuali": {pdf}},
		items:    map[string]graph.DriveItem{"1": pdf, "2": file("2", "x.txt", "text/plain")},
	}
	b := NewBrowser(d, "")
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/documents", ListHandler(b))
	mux.HandleFunc("GET /api/documents/search", SearchHandler(b))
	mux.HandleFunc("GET /api/documents/open/{id}", OpenHandler(b))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/documents?path=Manuali", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var listed struct {
		Items []Entry `json:"items"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&listed))
	require.Len(t, listed.Items, 1)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/documents/search?q=scheda.pdf", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "scheda.pdf")

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/documents/open/1?redirect=1", nil))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://download.example/scheda", rec.Header().Get("Location"))

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/documents/open/2", nil))
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/documents/open/9", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
