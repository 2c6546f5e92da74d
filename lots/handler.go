package lots

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"totem/logger"
	"totem/model"
)

func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}

// LettersHandler serves GET /api/letters/{category}/{code}: the progressive
// letters of a code group and the proposal for its next lot.
func LettersHandler(d *Duplicator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cat, err := model.ParseCategory(r.PathValue("category"))
		if err != nil {
			writeJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		code := r.PathValue("code")
		group, err := d.Group(r.Context(), cat, code)
		if err != nil {
			logger.Error("letters lookup failed", "category", cat, "code", code, "error", err)
			writeJSONError(w, err.Error(), http.StatusInternalServerError)
			return
		}
		letters := AssignLetters(group)
		next := NextLetter(group, letters, "")

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"letters":           letters,
			"next":              next,
			"colataPlaceholder": ColataPlaceholder(next, time.Now()),
		})
	}
}

// DuplicateHandler serves POST /api/lots/duplicate.
func DuplicateHandler(d *Duplicator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeJSONError(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, "Richiesta non valida: "+err.Error(), http.StatusBadRequest)
			return
		}
		cat, err := model.ParseCategory(string(req.Category))
		if err != nil {
			writeJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		req.Category = cat

		out, err := d.Create(r.Context(), req)
		switch {
		case errors.Is(err, ErrEmptyColata), errors.Is(err, ErrDuplicateColata):
			writeJSONError(w, err.Error(), http.StatusConflict)
			return
		case errors.Is(err, ErrLotNotFound):
			writeJSONError(w, err.Error(), http.StatusNotFound)
			return
		case err != nil:
			logger.Error("lot creation failed", "category", req.Category, "code", req.Code, "error", err)
			writeJSONError(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(out)
	}
}
