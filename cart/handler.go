package cart

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"totem/identity"
	"totem/logger"
	"totem/model"
)

func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}

func writeCart(w http.ResponseWriter, c *Cart, extra map[string]interface{}) {
	lines := c.Lines()
	out := make([]map[string]interface{}, 0, len(lines))
	for _, l := range lines {
		out = append(out, map[string]interface{}{"item": l.Item, "edit": l.Edit})
	}
	resp := map[string]interface{}{"lines": out, "count": len(lines), "max": MaxItems}
	for k, v := range extra {
		resp[k] = v
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func cartStatus(err error) int {
	switch {
	case errors.Is(err, ErrCartFull):
		return http.StatusConflict
	case errors.Is(err, ErrNotInCart):
		return http.StatusNotFound
	default:
		return http.StatusBadRequest
	}
}

// CartHandler serves /api/cart: GET lists the lines, POST adds an item,
// DELETE removes the item named by ?key= or clears the cart without it.
func CartHandler(c *Cart) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			writeCart(w, c, nil)
		case http.MethodPost:
			var item model.CartItem
			if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
				writeJSONError(w, "Richiesta non valida: "+err.Error(), http.StatusBadRequest)
				return
			}
			if err := c.Add(item); err != nil {
				writeJSONError(w, err.Error(), cartStatus(err))
				return
			}
			writeCart(w, c, nil)
		case http.MethodDelete:
			key := r.URL.Query().Get("key")
			if key == "" {
				c.Clear()
			} else if !c.Remove(key) {
				writeJSONError(w, ErrNotInCart.Error(), http.StatusNotFound)
				return
			}
			writeCart(w, c, nil)
		default:
			writeJSONError(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		}
	}
}

// ToggleHandler serves POST /api/cart/toggle.
func ToggleHandler(c *Cart) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeJSONError(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		var item model.CartItem
		if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
			writeJSONError(w, "Richiesta non valida: "+err.Error(), http.StatusBadRequest)
			return
		}
		selected, err := c.Toggle(item)
		if err != nil {
			writeJSONError(w, err.Error(), cartStatus(err))
			return
		}
		writeCart(w, c, map[string]interface{}{"selected": selected})
	}
}

type editRequest struct {
	Key   string `json:"key"`
	Field string `json:"field"`
	Value string `json:"value"`
}

// EditHandler serves POST /api/cart/edit, changing one form field of a line.
func EditHandler(c *Cart) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeJSONError(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		var req editRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, "Richiesta non valida: "+err.Error(), http.StatusBadRequest)
			return
		}
		edit, err := c.SetField(req.Key, req.Field, req.Value)
		if err != nil {
			writeJSONError(w, err.Error(), cartStatus(err))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"key": req.Key, "edit": edit})
	}
}

// SaveHandler serves POST /api/cart/save. Validation and list failures are
// reported with status 422 and the save result as body.
func SaveHandler(o *Orchestrator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeJSONError(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		user, _ := identity.UserFrom(r.Context())
		res := o.Save(r.Context(), user)

		w.Header().Set("Content-Type", "application/json")
		if res.Status == model.StatusError {
			w.WriteHeader(http.StatusUnprocessableEntity)
		}
		if err := json.NewEncoder(w).Encode(res); err != nil {
			logger.Warn("encode save result", "run", res.RunID, "error", err)
		}
	}
}

// StatusHandler serves GET /api/cart/status.
func StatusHandler(o *Orchestrator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, last := o.Status()
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"status": status, "last": last})
	}
}

// History reads persisted save outcomes.
type History interface {
	Recent(ctx context.Context, limit int) ([]model.SaveRecord, error)
}

// JournalHandler serves GET /api/journal?limit=N.
func JournalHandler(h History) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 50
		if s := r.URL.Query().Get("limit"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n <= 0 {
				writeJSONError(w, "limit non valido", http.StatusBadRequest)
				return
			}
			limit = min(n, 500)
		}
		records, err := h.Recent(r.Context(), limit)
		if err != nil {
			logger.Error("read journal", "error", err)
			writeJSONError(w, "Lettura dello storico non riuscita", http.StatusInternalServerError)
			return
		}
		if records == nil {
			records = []model.SaveRecord{}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"records": records})
	}
}
