package lots

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"totem/listcache"
	"totem/logger"
	"totem/model"
	"totem/workbook"
)

var (
	ErrEmptyColata     = errors.New("Inserisci il N° colata del nuovo lotto.")
	ErrDuplicateColata = errors.New("Inserisci un N° colata diverso dai lotti esistenti.")
	ErrLotNotFound     = errors.New("Lotto di riferimento non trovato.")
)

// ColataField is the list field holding a lot's heat number.
func ColataField(cat model.Category) string {
	if cat == model.CategoryTubi {
		return "field_18"
	}
	return "field_13"
}

// Store is the part of the list backend lot creation needs.
type Store interface {
	CreateItem(ctx context.Context, listID string, fields model.Fields) (model.InventoryRecord, error)
}

// Records returns the current records of a category's list.
type Records interface {
	Get(ctx context.Context, name, listID string, force bool) ([]model.InventoryRecord, error)
	InvalidateCategory(cat model.Category)
}

// Request asks for a new lot cloned from the group of Code.
type Request struct {
	Category model.Category `json:"category"`
	Code     string         `json:"code"`
	CloneOptions
}

// Outcome of a duplication. MirrorWarning is set when the list record was
// created but the spreadsheet row was not.
type Outcome struct {
	Record        model.InventoryRecord `json:"record"`
	IdentLotto    string                `json:"identLotto"`
	Message       string                `json:"message"`
	MirrorWarning string                `json:"mirrorWarning,omitempty"`
}

// Duplicator creates new lots of an existing code.
type Duplicator struct {
	store   Store
	records Records
	listIDs map[model.Category]string
	mirrors map[model.Category]*workbook.Mirror
}

func NewDuplicator(store Store, records Records, listIDs map[model.Category]string, mirrors map[model.Category]*workbook.Mirror) *Duplicator {
	return &Duplicator{store: store, records: records, listIDs: listIDs, mirrors: mirrors}
}

// Group returns the records of cat whose Title equals code.
func (d *Duplicator) Group(ctx context.Context, cat model.Category, code string) ([]model.InventoryRecord, error) {
	listID := d.listIDs[cat]
	if listID == "" {
		return nil, fmt.Errorf("List ID non configurato per %s", cat)
	}
	all, err := d.records.Get(ctx, listcache.ViewName(cat), listID, false)
	if err != nil {
		return nil, err
	}
	code = strings.TrimSpace(code)
	var group []model.InventoryRecord
	for _, r := range all {
		if strings.EqualFold(strings.TrimSpace(r.Title()), code) {
			group = append(group, r)
		}
	}
	return group, nil
}

// Create clones the first record of the group into a new lot.
func (d *Duplicator) Create(ctx context.Context, req Request) (Outcome, error) {
	if req.Category != model.CategoryTubi && req.Category != model.CategoryForgiati {
		return Outcome{}, fmt.Errorf("duplicazione lotti non disponibile per %s", req.Category)
	}
	colata := strings.TrimSpace(req.Colata)
	if colata == "" {
		return Outcome{}, ErrEmptyColata
	}
	group, err := d.Group(ctx, req.Category, req.Code)
	if err != nil {
		return Outcome{}, err
	}
	if len(group) == 0 {
		return Outcome{}, ErrLotNotFound
	}
	field := ColataField(req.Category)
	for _, r := range group {
		if strings.EqualFold(strings.TrimSpace(r.Fields.String(field)), colata) {
			return Outcome{}, ErrDuplicateColata
		}
	}

	letters := AssignLetters(group)
	ident := NextLetter(group, letters, "")

	opts := req.CloneOptions
	opts.Colata = colata
	payload := BuildClonePayload(req.Category, group[0].Fields, opts)

	created, err := d.store.CreateItem(ctx, d.listIDs[req.Category], payload)
	if err != nil {
		return Outcome{}, fmt.Errorf("creazione lotto: %w", err)
	}
	d.records.InvalidateCategory(req.Category)

	out := Outcome{Record: created, IdentLotto: ident}
	row := payload.Clone()
	row[model.FieldIdentLotto] = ident
	if err := d.mirror(ctx, req.Category, row); err != nil {
		logger.Warn("lot mirror failed", "category", req.Category, "code", req.Code, "error", err)
		out.MirrorWarning = err.Error()
		out.Message = "Nuovo lotto creato su SharePoint. Excel non aggiornato: " + err.Error()
		return out, nil
	}
	out.Message = "Nuovo lotto creato e registrato su Excel."
	return out, nil
}

// mirror places the new lot right after the last row of its code; Insert
// appends when no such row exists or positional insert fails.
func (d *Duplicator) mirror(ctx context.Context, cat model.Category, row model.Fields) error {
	m := d.mirrors[cat]
	if m == nil {
		return workbook.ErrNotConfigured
	}
	return m.Insert(ctx, row, true)
}
