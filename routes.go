package main

import (
	"net/http"

	"totem/admin"
	"totem/automation"
	"totem/cart"
	"totem/documents"
	"totem/identity"
	"totem/inventory"
	"totem/listcache"
	"totem/loader"
	"totem/lots"
	"totem/model"
)

// App holds the wired services the routes serve. Documents, Website and
// Importer are nil when their backend is not available.
type App struct {
	Cache    *listcache.Cache
	ListIDs  map[model.Category]string
	Cart     *cart.Cart
	Saver    *cart.Orchestrator
	History  cart.History
	Lots     *lots.Duplicator
	Admin    *admin.Panel
	Importer loader.Importer

	Documents *documents.Browser
	Website   *automation.Snapshotter
	Verifier  *identity.Verifier
}

func SetupRoutes(mux *http.ServeMux, app *App) http.Handler {
	mux.HandleFunc("GET /api/inventory/{category}", inventory.InventoryHandler(app.Cache, app.ListIDs))
	mux.HandleFunc("GET /api/letters/{category}/{code}", lots.LettersHandler(app.Lots))
	mux.HandleFunc("POST /api/lots/duplicate", lots.DuplicateHandler(app.Lots))

	mux.HandleFunc("/api/cart", cart.CartHandler(app.Cart))
	mux.HandleFunc("POST /api/cart/toggle", cart.ToggleHandler(app.Cart))
	mux.HandleFunc("POST /api/cart/edit", cart.EditHandler(app.Cart))
	mux.HandleFunc("POST /api/cart/save", cart.SaveHandler(app.Saver))
	mux.HandleFunc("GET /api/cart/status", cart.StatusHandler(app.Saver))
	if app.History != nil {
		mux.HandleFunc("GET /api/journal", cart.JournalHandler(app.History))
	}

	adminOnly := func(h http.HandlerFunc) http.Handler { return identity.RequireAdmin(h) }
	mux.Handle("GET /api/admin/{category}/fields", adminOnly(admin.FieldsHandler()))
	mux.Handle("GET /api/admin/{category}/items", adminOnly(admin.ItemsHandler(app.Admin)))
	mux.Handle("POST /api/admin/{category}/{action}", adminOnly(admin.WriteHandler(app.Admin)))
	if app.Importer != nil {
		mux.Handle("POST /api/admin/{category}/import", adminOnly(loader.ImportCSVHandler(app.Importer, app.Cache, app.ListIDs)))
	}

	if app.Documents != nil {
		mux.HandleFunc("GET /api/documents", documents.ListHandler(app.Documents))
		mux.HandleFunc("GET /api/documents/search", documents.SearchHandler(app.Documents))
		mux.HandleFunc("GET /api/documents/open/{id}", documents.OpenHandler(app.Documents))
	}
	if app.Website != nil {
		mux.HandleFunc("GET /api/website", automation.WebsiteHandler(app.Website))
		mux.HandleFunc("GET /api/website/snapshot", automation.SnapshotHandler(app.Website))
	}

	mux.HandleFunc("GET /api/me", identity.MeHandler())
	mux.HandleFunc("GET /api/config", GetConfigHandler())
	mux.Handle("POST /api/config", adminOnly(SaveConfigHandler()))

	return app.Verifier.Authenticate(mux)
}
