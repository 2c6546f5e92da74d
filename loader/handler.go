package loader

import (
	"encoding/json"
	"fmt"
	"net/http"

	"totem/logger"
	"totem/model"
)

// Invalidator drops cached lists after an import.
type Invalidator interface {
	InvalidateCategory(cat model.Category)
}

func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}

// ImportCSVHandler serves POST /api/admin/{category}/import with a multipart
// "file" field holding a category export.
func ImportCSVHandler(store Importer, cache Invalidator, listIDs map[model.Category]string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeJSONError(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		cat, err := model.ParseCategory(r.PathValue("category"))
		if err != nil {
			writeJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		listID := listIDs[cat]
		if listID == "" {
			writeJSONError(w, fmt.Sprintf("List ID non configurato per %s", cat), http.StatusBadRequest)
			return
		}
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			writeJSONError(w, "File non valido: "+err.Error(), http.StatusBadRequest)
			return
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			writeJSONError(w, "File mancante", http.StatusBadRequest)
			return
		}
		defer file.Close()

		n, err := Import(r.Context(), store, file, cat, listID)
		if err != nil {
			logger.Error("csv import failed", "category", cat, "error", err)
			writeJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		cache.InvalidateCategory(cat)
		logger.Info("csv imported", "category", cat, "rows", n)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"message": fmt.Sprintf("%d righe importate in %s.", n, cat),
			"rows":    n,
		})
	}
}
