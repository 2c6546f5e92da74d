package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"totem/model"
)

// Journal records the outcome of every cart save.
type Journal struct {
	db *sqlx.DB
}

func NewJournal(db *sqlx.DB) *Journal {
	return &Journal{db: db}
}

func (j *Journal) Append(ctx context.Context, rec model.SaveRecord) error {
	if rec.CreatedAt == "" {
		rec.CreatedAt = time.Now().UTC().Format(timeLayout)
	}
	const q = `INSERT INTO save_journal
		(run_id, username, status, message, item_count, mirror_warning, notify_warning, created_at)
		VALUES (:run_id, :username, :status, :message, :item_count, :mirror_warning, :notify_warning, :created_at)`
	if _, err := j.db.NamedExecContext(ctx, q, rec); err != nil {
		return fmt.Errorf("journal append failed: %w", err)
	}
	return nil
}

// Recent returns the newest limit entries.
func (j *Journal) Recent(ctx context.Context, limit int) ([]model.SaveRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	var out []model.SaveRecord
	const q = `SELECT id, run_id, username, status, message, item_count, mirror_warning, notify_warning, created_at
		FROM save_journal ORDER BY created_at DESC, id DESC LIMIT ?`
	if err := j.db.SelectContext(ctx, &out, q, limit); err != nil {
		return nil, fmt.Errorf("journal read failed: %w", err)
	}
	return out, nil
}
