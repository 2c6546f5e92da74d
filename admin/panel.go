package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"totem/listcache"
	"totem/logger"
	"totem/lots"
	"totem/model"
	"totem/workbook"
)

var (
	ErrTitleRequired = errors.New("Il campo Title è obbligatorio")
	ErrItemNotFound  = errors.New("Elemento non trovato")
)

// Store is the write side of the list backend.
type Store interface {
	CreateItem(ctx context.Context, listID string, fields model.Fields) (model.InventoryRecord, error)
	UpdateItem(ctx context.Context, listID, itemID string, fields model.Fields) error
	DeleteItem(ctx context.Context, listID, itemID string) error
}

type Records interface {
	Get(ctx context.Context, name, listID string, force bool) ([]model.InventoryRecord, error)
	InvalidateCategory(cat model.Category)
}

// Outcome of an admin write. The list write succeeded; MirrorWarning is set
// when the spreadsheet could not follow.
type Outcome struct {
	Record        *model.InventoryRecord `json:"record,omitempty"`
	Message       string                 `json:"message"`
	MirrorWarning string                 `json:"mirrorWarning,omitempty"`
}

// Panel runs the admin CRUD operations on every category list.
type Panel struct {
	store   Store
	records Records
	listIDs map[model.Category]string
	mirrors map[model.Category]*workbook.Mirror
}

func NewPanel(store Store, records Records, listIDs map[model.Category]string, mirrors map[model.Category]*workbook.Mirror) *Panel {
	return &Panel{store: store, records: records, listIDs: listIDs, mirrors: mirrors}
}

func (p *Panel) listID(cat model.Category) (string, error) {
	id := p.listIDs[cat]
	if id == "" {
		return "", fmt.Errorf("List ID non configurato per %s", cat)
	}
	return id, nil
}

// Items returns the admin view of a list with the progressive letter of each
// keyed record.
func (p *Panel) Items(ctx context.Context, cat model.Category, force bool) ([]model.InventoryRecord, map[string]string, error) {
	listID, err := p.listID(cat)
	if err != nil {
		return nil, nil, err
	}
	items, err := p.records.Get(ctx, listcache.AdminName(cat), listID, force)
	if err != nil {
		return nil, nil, err
	}
	letters := map[string]string{}
	if keyedCategory(cat) {
		for _, group := range groupByCode(items) {
			for id, l := range lots.AssignLetters(group) {
				letters[id] = l
			}
		}
	}
	return items, letters, nil
}

func keyedCategory(cat model.Category) bool {
	return cat == model.CategoryForgiati || cat == model.CategoryTubi
}

func codeKey(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func groupByCode(items []model.InventoryRecord) map[string][]model.InventoryRecord {
	groups := map[string][]model.InventoryRecord{}
	for _, r := range items {
		k := codeKey(r.Title())
		groups[k] = append(groups[k], r)
	}
	return groups
}

// find returns the record and its progressive letter. A miss on the cached
// view is retried once against a fresh read.
func (p *Panel) find(ctx context.Context, cat model.Category, id string) (model.InventoryRecord, string, error) {
	rec, ident, err := p.lookup(ctx, cat, id, false)
	if errors.Is(err, ErrItemNotFound) {
		return p.lookup(ctx, cat, id, true)
	}
	return rec, ident, err
}

func (p *Panel) lookup(ctx context.Context, cat model.Category, id string, force bool) (model.InventoryRecord, string, error) {
	items, letters, err := p.Items(ctx, cat, force)
	if err != nil {
		return model.InventoryRecord{}, "", err
	}
	for _, r := range items {
		if r.ID != id {
			continue
		}
		ident := r.Fields.String(model.FieldLottoProgressivo)
		if ident == "" {
			ident = letters[id]
		}
		return r, ident, nil
	}
	return model.InventoryRecord{}, "", ErrItemNotFound
}

func withWarning(base string, err error) (string, string) {
	if err == nil {
		return base + " con successo", ""
	}
	return base + "; Excel non aggiornato: " + err.Error(), err.Error()
}

// Create adds a record. Keyed categories get the next free progressive
// letter of the code in their spreadsheet row.
func (p *Panel) Create(ctx context.Context, cat model.Category, form map[string]string) (Outcome, error) {
	listID, err := p.listID(cat)
	if err != nil {
		return Outcome{}, err
	}
	payload := NormalizePayload(cat, form)
	if payload[model.FieldTitle] == nil {
		return Outcome{}, ErrTitleRequired
	}

	var row model.Fields
	if cat.Mirrored() {
		row = payload.Clone()
		if keyedCategory(cat) {
			items, letters, err := p.Items(ctx, cat, false)
			if err != nil {
				return Outcome{}, err
			}
			same := groupByCode(items)[codeKey(payload.String(model.FieldTitle))]
			row[model.FieldIdentLotto] = lots.NextLetter(same, letters, "")
		}
	}

	created, err := p.store.CreateItem(ctx, listID, payload)
	if err != nil {
		return Outcome{}, err
	}
	p.records.InvalidateCategory(cat)
	out := Outcome{Record: &created}

	if !cat.Mirrored() {
		out.Message = "Nuovo elemento creato"
		return out, nil
	}
	err = p.mirror(cat, func(m *workbook.Mirror) error { return m.Insert(ctx, row, true) })
	if err != nil {
		logger.Warn("admin create mirror failed", "category", cat, "title", payload.String(model.FieldTitle), "error", err)
		out.Message, out.MirrorWarning = "Nuovo elemento creato; Excel non aggiornato: "+err.Error(), err.Error()
		return out, nil
	}
	out.Message = "Nuovo elemento creato"
	return out, nil
}

// Update overwrites the writable fields of a record and its spreadsheet row.
func (p *Panel) Update(ctx context.Context, cat model.Category, id string, form map[string]string) (Outcome, error) {
	listID, err := p.listID(cat)
	if err != nil {
		return Outcome{}, err
	}
	payload := NormalizePayload(cat, form)
	if payload[model.FieldTitle] == nil {
		return Outcome{}, ErrTitleRequired
	}
	current, ident, err := p.find(ctx, cat, id)
	if err != nil {
		return Outcome{}, err
	}
	if err := p.store.UpdateItem(ctx, listID, id, payload); err != nil {
		return Outcome{}, err
	}
	p.records.InvalidateCategory(cat)

	var out Outcome
	if !cat.Mirrored() {
		out.Message = "Elemento aggiornato con successo"
		return out, nil
	}
	merged := current.Fields.Clone()
	for k, v := range payload {
		merged[k] = v
	}
	err = p.mirror(cat, func(m *workbook.Mirror) error {
		return m.UpdateRecord(ctx, m.KeyFor(current.Fields, ident), merged)
	})
	if err != nil {
		logger.Warn("admin update mirror failed", "category", cat, "id", id, "error", err)
	}
	out.Message, out.MirrorWarning = withWarning("Elemento aggiornato", err)
	return out, nil
}

// Delete removes a record and its spreadsheet row.
func (p *Panel) Delete(ctx context.Context, cat model.Category, id string) (Outcome, error) {
	listID, err := p.listID(cat)
	if err != nil {
		return Outcome{}, err
	}
	current, ident, err := p.find(ctx, cat, id)
	if err != nil {
		return Outcome{}, err
	}
	if err := p.store.DeleteItem(ctx, listID, id); err != nil {
		return Outcome{}, err
	}
	p.records.InvalidateCategory(cat)

	var out Outcome
	if !cat.Mirrored() {
		out.Message = "Elemento eliminato con successo"
		return out, nil
	}
	err = p.mirror(cat, func(m *workbook.Mirror) error {
		return m.DeleteRecord(ctx, m.KeyFor(current.Fields, ident))
	})
	if err != nil {
		logger.Warn("admin delete mirror failed", "category", cat, "id", id, "error", err)
	}
	out.Message, out.MirrorWarning = withWarning("Elemento eliminato", err)
	return out, nil
}

func (p *Panel) mirror(cat model.Category, fn func(*workbook.Mirror) error) error {
	m := p.mirrors[cat]
	if m == nil {
		return workbook.ErrNotConfigured
	}
	return fn(m)
}
