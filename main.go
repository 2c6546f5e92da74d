package main

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"golang.org/x/oauth2"

	"totem/admin"
	"totem/automation"
	"totem/cart"
	"totem/columns"
	"totem/config"
	"totem/database"
	"totem/documents"
	"totem/graph"
	"totem/identity"
	"totem/listcache"
	"totem/loader"
	"totem/logger"
	"totem/lots"
	"totem/model"
	"totem/normalize"
	"totem/notify"
	"totem/workbook"
)

// listBackend is the list store both backends provide.
type listBackend interface {
	ListItems(ctx context.Context, listID string) ([]model.InventoryRecord, error)
	CreateItem(ctx context.Context, listID string, fields model.Fields) (model.InventoryRecord, error)
	UpdateItem(ctx context.Context, listID, itemID string, fields model.Fields) error
	DeleteItem(ctx context.Context, listID, itemID string) error
}

func main() {
	if err := config.LoadEnv(); err != nil {
		logger.Warn("failed to load .env", "error", err)
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load config file, using defaults", "error", err)
		os.Exit(1)
	}
	closer, err := logger.Setup(cfg.Log)
	if err != nil {
		logger.Error("logger setup failed", "error", err)
		os.Exit(1)
	}
	defer closer.Close()

	if loc, err := time.LoadLocation(cfg.TimeZone); err == nil {
		normalize.Location = loc
	} else {
		logger.Warn("unknown time zone, using local time", "zone", cfg.TimeZone, "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("connecting to database", "path", cfg.DatabasePath)
	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		logger.Error("database open failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	cfg.ListIDs = maps.Clone(cfg.ListIDs)
	if cfg.Backend == config.BackendLocal {
		defaultLocalListIDs(cfg.ListIDs)
	}
	if err := loader.InitDatabase(ctx, db, cfg.SeedDir, cfg.ListIDs); err != nil {
		logger.Error("database initialization failed", "error", err)
		os.Exit(1)
	}
	logger.Info("database initialization complete")

	app, err := buildApp(ctx, cfg, database.NewItemStore(db), database.NewJournal(db))
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           SetupRoutes(http.NewServeMux(), app),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logger.Info("starting server", "addr", cfg.ListenAddr, "backend", cfg.Backend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func defaultLocalListIDs(ids map[model.Category]string) {
	for _, cat := range model.Categories {
		if ids[cat] == "" {
			ids[cat] = "local-" + cat.Slug()
		}
	}
}

func buildApp(ctx context.Context, cfg config.Config, store *database.ItemStore, journal *database.Journal) (*App, error) {
	app := &App{
		ListIDs:  cfg.ListIDs,
		History:  journal,
		Verifier: identity.NewVerifier(cfg.JWTSigningKey, cfg.AllowAnonymous),
	}

	var (
		lists   listBackend
		backend workbook.Backend
		targets = cfg.Mirrors
	)
	switch cfg.Backend {
	case config.BackendGraph:
		ts, err := identity.NewTokenSource(ctx, identity.AppConfig{
			TenantID:     cfg.TenantID,
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
		})
		if err != nil {
			return nil, fmt.Errorf("graph token: %w", err)
		}
		client := graph.New(ts, cfg.SiteID)
		lists = client
		backend = graph.NewWorkbookBackend(client)
		if cfg.DocumentsDrive != "" {
			app.Documents = documents.NewBrowser(client, cfg.DocumentsDrive)
		}
		logTokenCheck(ts)
	case config.BackendLocal:
		lists = store
		app.Importer = store
		var err error
		if targets, err = seedLocalWorkbooks(cfg); err != nil {
			return nil, err
		}
		backend = workbook.NewXLSXBackend(cfg.WorkbookDir)
	default:
		return nil, fmt.Errorf("backend sconosciuto: %s", cfg.Backend)
	}

	mirrors := make(map[model.Category]*workbook.Mirror)
	for _, cat := range model.Categories {
		if !cat.Mirrored() {
			continue
		}
		m, err := workbook.NewMirror(backend, cat, targets[cat])
		if err != nil {
			return nil, err
		}
		mirrors[cat] = m
	}

	app.Cache = listcache.New(lists, listcache.WithTTL(time.Duration(cfg.CacheTTLSeconds)*time.Second))
	app.Lots = lots.NewDuplicator(lists, app.Cache, cfg.ListIDs, mirrors)
	app.Admin = admin.NewPanel(lists, app.Cache, cfg.ListIDs, mirrors)

	app.Cart = cart.New()
	deps := cart.Deps{
		Lists:   lists,
		ListIDs: cfg.ListIDs,
		Mirrors: mirrors,
		Cache:   app.Cache,
		Journal: journal,
	}
	if cfg.FlowURL != "" {
		deps.Notifier = notify.NewFlow(cfg.FlowURL)
	} else {
		logger.Warn("flow URL not configured, notifications disabled")
	}
	app.Saver = cart.NewOrchestrator(app.Cart, deps)

	if cfg.WebsiteURL != "" {
		app.Website = automation.NewSnapshotter(cfg.WebsiteURL, time.Duration(cfg.CacheTTLSeconds)*time.Second)
	}
	return app, nil
}

// seedLocalWorkbooks returns the local spreadsheet targets, creating missing
// files with the curated headers of each mirrored category.
func seedLocalWorkbooks(cfg config.Config) (map[model.Category]workbook.Target, error) {
	targets := maps.Clone(cfg.Mirrors)
	if targets == nil {
		targets = make(map[model.Category]workbook.Target)
	}
	for _, cat := range model.Categories {
		if !cat.Mirrored() {
			continue
		}
		t, ok := targets[cat]
		if !ok {
			t = workbook.Target{Path: cat.Slug() + ".xlsx", Table: string(cat)}
			targets[cat] = t
		}
		if t.Path == "" || t.Table == "" {
			continue
		}
		full := filepath.Join(cfg.WorkbookDir, t.DriveName, filepath.FromSlash(t.Path))
		if _, err := os.Stat(full); err == nil {
			continue
		}
		m, _ := columns.ForCategory(cat)
		if err := workbook.CreateWorkbook(full, t.Table, m.SeedHeaders()); err != nil {
			return nil, fmt.Errorf("create workbook %s: %w", full, err)
		}
		logger.Info("created workbook", "category", cat, "path", full)
	}
	return targets, nil
}

func logTokenCheck(ts oauth2.TokenSource) {
	if _, err := identity.AccessToken(ts); err != nil {
		logger.Warn("graph token not available yet", "error", err)
		return
	}
	logger.Info("graph token acquired")
}
