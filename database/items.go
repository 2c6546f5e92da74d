package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"

	"totem/model"
	"totem/normalize"
)

const timeLayout = "2006-01-02T15:04:05.000Z"

var ErrItemNotFound = errors.New("elemento non trovato")

type itemRow struct {
	ID         int64  `db:"id"`
	ListID     string `db:"list_id"`
	Fields     string `db:"fields"`
	CreatedAt  string `db:"created_at"`
	ModifiedAt string `db:"modified_at"`
}

func (r itemRow) record() (model.InventoryRecord, error) {
	fields := model.Fields{}
	if err := json.Unmarshal([]byte(r.Fields), &fields); err != nil {
		return model.InventoryRecord{}, fmt.Errorf("item %d fields: %w", r.ID, err)
	}
	fields[model.FieldCreated] = r.CreatedAt
	fields[model.FieldModified] = r.ModifiedAt
	return model.InventoryRecord{ID: strconv.FormatInt(r.ID, 10), Fields: fields}, nil
}

// ItemStore keeps list items in sqlite with the same contract as the hosted
// lists, for offline kiosks and tests.
type ItemStore struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewItemStore(db *sqlx.DB) *ItemStore {
	return &ItemStore{db: db, now: time.Now}
}

func (s *ItemStore) stamp() string {
	return s.now().UTC().Format(timeLayout)
}

func encodeFields(fields model.Fields) (string, error) {
	clean := model.Fields{}
	for k, v := range fields {
		if k == model.FieldCreated || k == model.FieldModified || k == "id" || v == nil {
			continue
		}
		clean[k] = v
	}
	b, err := json.Marshal(clean)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ListItems returns the items of listID, newest first.
func (s *ItemStore) ListItems(ctx context.Context, listID string) ([]model.InventoryRecord, error) {
	var rows []itemRow
	const q = `SELECT id, list_id, fields, created_at, modified_at FROM list_items
		WHERE list_id = ? ORDER BY created_at DESC, id DESC`
	if err := s.db.SelectContext(ctx, &rows, q, listID); err != nil {
		return nil, fmt.Errorf("ListItems (%s) failed: %w", listID, err)
	}
	out := make([]model.InventoryRecord, 0, len(rows))
	for _, r := range rows {
		rec, err := r.record()
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *ItemStore) CreateItem(ctx context.Context, listID string, fields model.Fields) (model.InventoryRecord, error) {
	encoded, err := encodeFields(fields)
	if err != nil {
		return model.InventoryRecord{}, fmt.Errorf("CreateItem encode: %w", err)
	}
	now := s.stamp()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO list_items (list_id, fields, created_at, modified_at) VALUES (?, ?, ?, ?)`,
		listID, encoded, now, now)
	if err != nil {
		return model.InventoryRecord{}, fmt.Errorf("CreateItem failed: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.InventoryRecord{}, fmt.Errorf("CreateItem id: %w", err)
	}
	return s.get(ctx, s.db, listID, id)
}

func (s *ItemStore) get(ctx context.Context, q sqlx.QueryerContext, listID string, id int64) (model.InventoryRecord, error) {
	var r itemRow
	err := sqlx.GetContext(ctx, q, &r,
		`SELECT id, list_id, fields, created_at, modified_at FROM list_items WHERE list_id = ? AND id = ?`, listID, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.InventoryRecord{}, ErrItemNotFound
	}
	if err != nil {
		return model.InventoryRecord{}, fmt.Errorf("get item %d: %w", id, err)
	}
	return r.record()
}

// UpdateItem merges fields into the stored item; a nil value clears the
// field.
func (s *ItemStore) UpdateItem(ctx context.Context, listID, itemID string, fields model.Fields) error {
	id, err := strconv.ParseInt(itemID, 10, 64)
	if err != nil {
		return ErrItemNotFound
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	current, err := s.get(ctx, tx, listID, id)
	if err != nil {
		return err
	}
	merged := current.Fields
	for k, v := range fields {
		if v == nil {
			delete(merged, k)
			continue
		}
		merged[k] = v
	}
	encoded, err := encodeFields(merged)
	if err != nil {
		return fmt.Errorf("UpdateItem encode: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE list_items SET fields = ?, modified_at = ? WHERE id = ?`, encoded, s.stamp(), id); err != nil {
		return fmt.Errorf("UpdateItem failed: %w", err)
	}
	return tx.Commit()
}

func (s *ItemStore) DeleteItem(ctx context.Context, listID, itemID string) error {
	id, err := strconv.ParseInt(itemID, 10, 64)
	if err != nil {
		return ErrItemNotFound
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM list_items WHERE list_id = ? AND id = ?`, listID, id)
	if err != nil {
		return fmt.Errorf("DeleteItem failed: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrItemNotFound
	}
	return nil
}

// ListColumns reports every field name used by the list's items.
func (s *ItemStore) ListColumns(ctx context.Context, listID string) ([]model.ListColumn, error) {
	items, err := s.ListItems(ctx, listID)
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	for _, it := range items {
		for k := range it.Fields {
			seen[k] = true
		}
	}
	names := make([]string, 0, len(seen))
	for k := range seen {
		names = append(names, k)
	}
	sort.Strings(names)
	cols := make([]model.ListColumn, len(names))
	for i, n := range names {
		cols[i] = model.ListColumn{Name: n, DisplayName: n}
	}
	return cols, nil
}

// ImportItems inserts records in one transaction. A record's Created field is
// kept when it parses.
func (s *ItemStore) ImportItems(ctx context.Context, listID string, records []model.Fields) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	stmt, err := tx.PreparexContext(ctx,
		`INSERT INTO list_items (list_id, fields, created_at, modified_at) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare import: %w", err)
	}
	defer stmt.Close()

	for i, fields := range records {
		encoded, encErr := encodeFields(fields)
		if encErr != nil {
			return fmt.Errorf("import row %d: %w", i+1, encErr)
		}
		created := s.stamp()
		if ms := normalize.TimeValue(fields[model.FieldCreated]); ms != 0 {
			created = time.UnixMilli(ms).UTC().Format(timeLayout)
		}
		if _, err = stmt.ExecContext(ctx, listID, encoded, created, created); err != nil {
			return fmt.Errorf("import row %d: %w", i+1, err)
		}
	}
	return nil
}
