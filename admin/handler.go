package admin

import (
	"encoding/json"
	"errors"
	"net/http"

	"totem/identity"
	"totem/logger"
	"totem/model"
)

func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}

// FieldsHandler serves GET /api/admin/{category}/fields.
func FieldsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cat, err := model.ParseCategory(r.PathValue("category"))
		if err != nil {
			writeJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"category": cat, "fields": Fields(cat)})
	}
}

// ItemsHandler serves GET /api/admin/{category}/items, ?refresh=1 bypassing
// the cache.
func ItemsHandler(p *Panel) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cat, err := model.ParseCategory(r.PathValue("category"))
		if err != nil {
			writeJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		items, letters, err := p.Items(r.Context(), cat, r.URL.Query().Get("refresh") == "1")
		if err != nil {
			logger.Error("admin list failed", "category", cat, "error", err)
			writeJSONError(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"items": items, "letters": letters})
	}
}

type writeRequest struct {
	ID   string            `json:"id"`
	Form map[string]string `json:"form"`
}

// WriteHandler serves POST /api/admin/{category}/{action} for the create,
// update and delete actions.
func WriteHandler(p *Panel) http.HandlerFunc {
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
		var req writeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, "Richiesta non valida: "+err.Error(), http.StatusBadRequest)
			return
		}

		action := r.PathValue("action")
		var out Outcome
		switch action {
		case "create":
			out, err = p.Create(r.Context(), cat, req.Form)
		case "update":
			out, err = p.Update(r.Context(), cat, req.ID, req.Form)
		case "delete":
			out, err = p.Delete(r.Context(), cat, req.ID)
		default:
			writeJSONError(w, "Azione non supportata: "+action, http.StatusNotFound)
			return
		}

		switch {
		case errors.Is(err, ErrTitleRequired):
			writeJSONError(w, err.Error(), http.StatusBadRequest)
			return
		case errors.Is(err, ErrItemNotFound):
			writeJSONError(w, err.Error(), http.StatusNotFound)
			return
		case err != nil:
			user, _ := identity.UserFrom(r.Context())
			logger.Error("admin write failed", "action", action, "category", cat, "id", req.ID, "user", user.Username, "error", err)
			writeJSONError(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(out)
	}
}
