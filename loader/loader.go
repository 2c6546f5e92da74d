package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"

	"totem/database"
	"totem/logger"
	"totem/model"
	"totem/parsers"
)

// InitDatabase applies the schema and seeds empty local lists from
// <seedDir>/<category>.csv when such files exist.
func InitDatabase(ctx context.Context, db *sqlx.DB, seedDir string, listIDs map[model.Category]string) error {
	logger.Info("applying database schema")
	if err := database.ApplySchema(db); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	if seedDir == "" {
		return nil
	}

	store := database.NewItemStore(db)
	for _, cat := range model.Categories {
		listID := listIDs[cat]
		if listID == "" {
			continue
		}
		path := filepath.Join(seedDir, cat.Slug()+".csv")
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			continue
		}
		existing, err := store.ListItems(ctx, listID)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			continue
		}
		n, err := LoadCSV(ctx, store, path, cat, listID)
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
		logger.Info("seeded list", "category", cat, "file", path, "rows", n)
	}
	return nil
}

// Importer receives parsed rows.
type Importer interface {
	ImportItems(ctx context.Context, listID string, records []model.Fields) error
}

// LoadCSV imports a category export file into listID.
func LoadCSV(ctx context.Context, store Importer, path string, cat model.Category, listID string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("could not open file %s: %w", path, err)
	}
	defer f.Close()
	return Import(ctx, store, f, cat, listID)
}

func Import(ctx context.Context, store Importer, r io.Reader, cat model.Category, listID string) (int, error) {
	records, err := parsers.ParseInventoryCSV(r, cat)
	if err != nil {
		return 0, err
	}
	if err := store.ImportItems(ctx, listID, records); err != nil {
		return 0, err
	}
	return len(records), nil
}
