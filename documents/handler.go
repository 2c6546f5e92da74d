package documents

import (
	"encoding/json"
	"errors"
	"net/http"

	"totem/graph"
	"totem/logger"
)

func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}

func graphStatus(err error) int {
	var apiErr *graph.APIError
	if errors.As(err, &apiErr) && (apiErr.Status == http.StatusNotFound || apiErr.Status == http.StatusForbidden) {
		return http.StatusNotFound
	}
	return http.StatusBadGateway
}

// ListHandler serves GET /api/documents?path=.
func ListHandler(b *Browser) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Query().Get("path")
		entries, err := b.List(r.Context(), path)
		if err != nil {
			logger.Error("document list failed", "path", path, "error", err)
			status := graphStatus(err)
			msg := "Impossibile caricare i documenti. Controlla la connessione."
			if status == http.StatusNotFound {
				msg = "Cartella non trovata o accesso negato."
			}
			writeJSONError(w, msg, status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"path": path, "items": entries})
	}
}

// SearchHandler serves GET /api/documents/search?q=.
func SearchHandler(b *Browser) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		entries, err := b.Search(r.Context(), q)
		if err != nil {
			logger.Error("document search failed", "q", q, "error", err)
			writeJSONError(w, "Impossibile completare la ricerca globale.", graphStatus(err))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"q": q, "items": entries})
	}
}

// OpenHandler serves GET /api/documents/open/{id}. With ?redirect=1 the
// client is sent straight to the file.
func OpenHandler(b *Browser) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		entry, err := b.Open(r.Context(), id)
		switch {
		case errors.Is(err, ErrNotPDF):
			writeJSONError(w, err.Error(), http.StatusUnsupportedMediaType)
			return
		case errors.Is(err, ErrNoDownloadURL):
			writeJSONError(w, err.Error(), http.StatusNotFound)
			return
		case err != nil:
			logger.Error("document open failed", "id", id, "error", err)
			writeJSONError(w, "Impossibile aprire il documento. Riprova.", graphStatus(err))
			return
		}
		if r.URL.Query().Get("redirect") == "1" {
			http.Redirect(w, r, entry.DownloadURL, http.StatusFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(entry)
	}
}
