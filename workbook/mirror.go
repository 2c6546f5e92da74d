package workbook

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"totem/columns"
	"totem/logger"
	"totem/model"
)

// ErrNotConfigured is returned when the mirror has no file or table.
var ErrNotConfigured = errors.New("Percorso Excel o tabella non configurati")

// MissingRowsError lists mirrored rows that could not be located.
type MissingRowsError struct {
	Rows []string
}

func (e *MissingRowsError) Error() string {
	return "Righe non trovate: " + strings.Join(e.Rows, ", ")
}

// Target is where a category is mirrored.
type Target struct {
	DriveName string `json:"driveName"`
	Path      string `json:"path"`
	Table     string `json:"table"`
}

func (t Target) configured() bool {
	return t.Path != "" && t.Table != ""
}

// RowUpdate overwrites the row identified by Key with Fields.
type RowUpdate struct {
	Key    RowKey
	Fields model.Fields
}

// Mirror writes one category's records into its spreadsheet table.
type Mirror struct {
	backend Backend
	mapper  *columns.Mapper
	target  Target
}

// NewMirror returns a mirror for a category with a curated header map.
func NewMirror(backend Backend, cat model.Category, target Target) (*Mirror, error) {
	m, ok := columns.ForCategory(cat)
	if !ok {
		return nil, fmt.Errorf("categoria %s senza tabella Excel", cat)
	}
	return &Mirror{backend: backend, mapper: m, target: target}, nil
}

func (m *Mirror) Category() model.Category { return m.mapper.Category() }

// KeyFor builds the row key of a record. lottoProg is the record's assigned
// progressive letter.
func (m *Mirror) KeyFor(fields model.Fields, lottoProg string) RowKey {
	key := RowKey{
		Code:       strings.TrimSpace(fields.String(model.FieldTitle)),
		IdentLotto: formatIdent(lottoProg),
	}
	if m.Category() == model.CategorySparkGups {
		key.Lotto = fields.String("field_1")
	}
	return key
}

func formatIdent(s string) string {
	if s == "" {
		return "A"
	}
	return strings.ToUpper(s)
}

func (k RowKey) String() string {
	if k.Lotto != "" {
		return fmt.Sprintf("%s (%s)", k.Code, k.Lotto)
	}
	return fmt.Sprintf("%s (%s)", k.Code, formatIdent(k.IdentLotto))
}

func (m *Mirror) keyed() bool {
	return m.Category() != model.CategorySparkGups
}

func (m *Mirror) open(ctx context.Context) (Session, error) {
	if m.backend == nil || !m.target.configured() {
		return nil, ErrNotConfigured
	}
	file, err := m.backend.ResolveFile(ctx, m.target.DriveName, m.target.Path)
	if err != nil {
		return nil, fmt.Errorf("file Excel %s: %w", m.target.Path, err)
	}
	sess, err := m.backend.OpenSession(ctx, file)
	if err != nil {
		return nil, fmt.Errorf("apertura sessione Excel: %w", err)
	}
	return sess, nil
}

func (m *Mirror) close(ctx context.Context, sess Session) {
	if err := sess.Close(context.WithoutCancel(ctx)); err != nil {
		logger.Warn("workbook session close failed",
			"category", m.Category(), "session", sess.ID(), "error", err)
	}
}

func (m *Mirror) table(ctx context.Context, sess Session) (*Table, error) {
	tbl, err := sess.Table(ctx, m.target.Table)
	if err != nil {
		return nil, fmt.Errorf("lettura tabella %s: %w", m.target.Table, err)
	}
	if m.mapper.IndexOfCanonicalKey(tbl.Columns, model.FieldTitle) < 0 {
		return nil, errors.New("Colonna CODICE non trovata nella tabella Excel")
	}
	if m.keyed() && m.mapper.IndexOfCanonicalKey(tbl.Columns, model.FieldIdentLotto) < 0 {
		return nil, errors.New("Colonna IdentLotto non trovata nella tabella Excel")
	}
	return tbl, nil
}

// UpdateRows overwrites the rows of updates inside one session. Each row is
// located again right before it is written, so a row moved by an earlier
// write is still found and a vanished row is reported instead of
// overwriting whatever took its place.
func (m *Mirror) UpdateRows(ctx context.Context, updates []RowUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	sess, err := m.open(ctx)
	if err != nil {
		return err
	}
	defer m.close(ctx, sess)

	tbl, err := m.table(ctx, sess)
	if err != nil {
		return err
	}
	if m.keyed() {
		if err := m.backfillIdent(ctx, sess, tbl, updates); err != nil {
			return err
		}
	}

	var missing []string
	for _, u := range updates {
		tbl, err := m.table(ctx, sess)
		if err != nil {
			return err
		}
		idx := Locate(m.mapper, tbl.Rows, tbl.Columns, u.Key)
		if idx < 0 {
			missing = append(missing, u.Key.String())
			continue
		}
		fields := u.Fields.Clone()
		if m.keyed() {
			fields[model.FieldIdentLotto] = formatIdent(u.Key.IdentLotto)
		}
		if err := m.writeRow(ctx, sess, tbl, idx, BuildRow(m.mapper, tbl.Columns, fields)); err != nil {
			return fmt.Errorf("aggiornamento riga %s: %w", u.Key, err)
		}
	}
	if len(missing) > 0 {
		return &MissingRowsError{Rows: missing}
	}
	return nil
}

// backfillIdent writes "A" into empty IdentLotto cells of the codes about
// to be updated, so legacy single-lot rows become addressable.
func (m *Mirror) backfillIdent(ctx context.Context, sess Session, tbl *Table, updates []RowUpdate) error {
	titleIdx := m.mapper.IndexOfCanonicalKey(tbl.Columns, model.FieldTitle)
	identIdx := m.mapper.IndexOfCanonicalKey(tbl.Columns, model.FieldIdentLotto)

	targets := make(map[string]bool, len(updates))
	for _, u := range updates {
		targets[columns.NormalizeKey(u.Key.Code)] = true
	}
	for _, row := range tbl.Rows {
		if !targets[cell(row.Values, titleIdx)] || cell(row.Values, identIdx) != "" {
			continue
		}
		values := make([]any, len(tbl.Columns))
		copy(values, row.Values)
		values[identIdx] = "A"
		if err := m.writeRow(ctx, sess, tbl, row.Index, values); err != nil {
			return fmt.Errorf("IdentLotto riga %d: %w", row.Index, err)
		}
	}
	return nil
}

func (m *Mirror) writeRow(ctx context.Context, sess Session, tbl *Table, idx int, values []any) error {
	err := sess.UpdateRow(ctx, m.target.Table, idx, values)
	if !errors.Is(err, ErrRowAddressing) {
		return err
	}
	sheet, addr, ok := BuildRowRangeAddress(tbl.Address, idx, len(tbl.Rows))
	if !ok {
		return fmt.Errorf("indirizzo riga %d non valido per %q", idx, tbl.Address)
	}
	return sess.UpdateRange(ctx, sheet, addr, [][]any{values})
}

// Insert adds a row for fields. With afterSameCode the row goes right after
// the last row of the same code; otherwise, or when positional insert
// fails, it is appended.
func (m *Mirror) Insert(ctx context.Context, fields model.Fields, afterSameCode bool) error {
	sess, err := m.open(ctx)
	if err != nil {
		return err
	}
	defer m.close(ctx, sess)

	tbl, err := m.table(ctx, sess)
	if err != nil {
		return err
	}
	row := BuildRow(m.mapper, tbl.Columns, fields)

	if afterSameCode {
		code := fields.String(model.FieldTitle)
		if last := FindLastRowIndexByCode(m.mapper, tbl.Rows, tbl.Columns, code); last >= 0 {
			err := sess.InsertRow(ctx, m.target.Table, last+1, row)
			if err == nil {
				return nil
			}
			logger.Warn("positional insert failed, appending",
				"category", m.Category(), "code", code, "index", last+1, "error", err)
		}
	}
	if err := sess.AppendRow(ctx, m.target.Table, row); err != nil {
		return fmt.Errorf("aggiunta riga Excel: %w", err)
	}
	return nil
}

// UpdateRecord overwrites the row of key through its range address.
func (m *Mirror) UpdateRecord(ctx context.Context, key RowKey, fields model.Fields) error {
	sess, err := m.open(ctx)
	if err != nil {
		return err
	}
	defer m.close(ctx, sess)

	tbl, err := m.table(ctx, sess)
	if err != nil {
		return err
	}
	idx := Locate(m.mapper, tbl.Rows, tbl.Columns, key)
	if idx < 0 {
		return &MissingRowsError{Rows: []string{key.String()}}
	}
	fields = fields.Clone()
	if m.keyed() {
		fields[model.FieldIdentLotto] = formatIdent(key.IdentLotto)
	}
	sheet, addr, ok := BuildRowRangeAddress(tbl.Address, idx, len(tbl.Rows))
	if !ok {
		return fmt.Errorf("indirizzo riga %d non valido per %q", idx, tbl.Address)
	}
	row := BuildRow(m.mapper, tbl.Columns, fields)
	if err := sess.UpdateRange(ctx, sheet, addr, [][]any{row}); err != nil {
		return fmt.Errorf("aggiornamento intervallo %s: %w", addr, err)
	}
	return nil
}

// DeleteRecord removes the row of key, by table row index first and by range
// address when the backend refuses index addressing.
func (m *Mirror) DeleteRecord(ctx context.Context, key RowKey) error {
	sess, err := m.open(ctx)
	if err != nil {
		return err
	}
	defer m.close(ctx, sess)

	tbl, err := m.table(ctx, sess)
	if err != nil {
		return err
	}
	idx := Locate(m.mapper, tbl.Rows, tbl.Columns, key)
	if idx < 0 {
		return &MissingRowsError{Rows: []string{key.String()}}
	}
	err = sess.DeleteRow(ctx, m.target.Table, idx)
	if err == nil {
		return nil
	}
	logger.Warn("row delete by index failed, trying range",
		"category", m.Category(), "row", idx, "error", err)

	sheet, addr, ok := BuildRowRangeAddress(tbl.Address, idx, len(tbl.Rows))
	if !ok {
		return fmt.Errorf("eliminazione riga %d: %w", idx, err)
	}
	if err := sess.DeleteRange(ctx, sheet, addr); err != nil {
		return fmt.Errorf("eliminazione intervallo %s: %w", addr, err)
	}
	return nil
}
