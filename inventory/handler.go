// Package inventory serves the per-category kiosk tables.
package inventory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"totem/listcache"
	"totem/logger"
	"totem/lots"
	"totem/mappers"
	"totem/model"
	"totem/render"
)

type Records interface {
	Get(ctx context.Context, name, listID string, force bool) ([]model.InventoryRecord, error)
}

// Group is a lot group with its records already shaped as cart items.
type Group struct {
	Title string           `json:"title"`
	Items []model.CartItem `json:"items"`
}

// View is one category table.
type View struct {
	Category  model.Category    `json:"category"`
	Groups    []Group           `json:"groups"`
	Letters   map[string]string `json:"letters,omitempty"`
	TableHTML string            `json:"tableHTML"`
}

// Load reads a category through the shared cache and builds its view.
func Load(ctx context.Context, records Records, listIDs map[model.Category]string, cat model.Category, force bool) (View, error) {
	listID := listIDs[cat]
	if listID == "" {
		return View{}, fmt.Errorf("List ID non configurato per %s", cat)
	}
	items, err := records.Get(ctx, listcache.ViewName(cat), listID, force)
	if err != nil {
		return View{}, err
	}
	lotGroups := mappers.GroupByTitle(items)

	letters := map[string]string{}
	if cat == model.CategoryForgiati || cat == model.CategoryTubi {
		for _, g := range lotGroups {
			for id, l := range lots.AssignLetters(g.Items) {
				letters[id] = l
			}
		}
	}

	view := View{Category: cat, Groups: make([]Group, 0, len(lotGroups))}
	if len(letters) > 0 {
		view.Letters = letters
	}
	for _, g := range lotGroups {
		group := Group{Title: g.Title, Items: make([]model.CartItem, 0, len(g.Items))}
		for _, r := range g.Items {
			group.Items = append(group.Items, mappers.ToCartItem(cat, r, letters[r.ID]))
		}
		view.Groups = append(view.Groups, group)
	}
	view.TableHTML = render.InventoryTableHTML(cat, lotGroups, letters)
	return view, nil
}

func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}

// InventoryHandler serves GET /api/inventory/{category}; ?refresh=1 skips
// the cache.
func InventoryHandler(records Records, listIDs map[model.Category]string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cat, err := model.ParseCategory(r.PathValue("category"))
		if err != nil {
			writeJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		view, err := Load(r.Context(), records, listIDs, cat, r.URL.Query().Get("refresh") == "1")
		if err != nil {
			logger.Error("inventory load failed", "category", cat, "error", err)
			writeJSONError(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(view)
	}
}
