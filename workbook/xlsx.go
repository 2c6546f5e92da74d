package workbook

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

// XLSXBackend serves workbooks from local .xlsx files. A table is a sheet
// whose first row holds the headers; data rows start at row 2.
type XLSXBackend struct {
	dir string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewXLSXBackend(dir string) *XLSXBackend {
	return &XLSXBackend{dir: dir, locks: make(map[string]*sync.Mutex)}
}

// CreateWorkbook writes a new file holding one table with the given headers.
func CreateWorkbook(path, table string, headers []string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", table); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	row := make([]any, len(headers))
	for i, h := range headers {
		row[i] = h
	}
	if err := f.SetSheetRow(table, "A1", &row); err != nil {
		return fmt.Errorf("write headers: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return f.SaveAs(path)
}

func (b *XLSXBackend) ResolveFile(_ context.Context, driveName, path string) (FileRef, error) {
	full := filepath.Join(b.dir, driveName, filepath.FromSlash(strings.TrimPrefix(path, "/")))
	if _, err := os.Stat(full); err != nil {
		return FileRef{}, fmt.Errorf("resolve %s: %w", path, err)
	}
	return FileRef{DriveID: driveName, ItemID: full, Path: full}, nil
}

func (b *XLSXBackend) lockFor(path string) *sync.Mutex {
	b.mu.Lock()
	defer b.mu.Unlock()
	l, ok := b.locks[path]
	if !ok {
		l = &sync.Mutex{}
		b.locks[path] = l
	}
	return l
}

// OpenSession locks the file until Close, which saves it.
func (b *XLSXBackend) OpenSession(_ context.Context, file FileRef) (Session, error) {
	lock := b.lockFor(file.Path)
	lock.Lock()
	f, err := excelize.OpenFile(file.Path)
	if err != nil {
		lock.Unlock()
		return nil, fmt.Errorf("open %s: %w", file.Path, err)
	}
	return &xlsxSession{id: uuid.NewString(), path: file.Path, f: f, unlock: lock.Unlock}, nil
}

type xlsxSession struct {
	id     string
	path   string
	f      *excelize.File
	dirty  bool
	closed bool
	unlock func()
}

func (s *xlsxSession) ID() string { return s.id }

func (s *xlsxSession) rows(sheet string) ([][]string, error) {
	if s.closed {
		return nil, errors.New("session closed")
	}
	if idx, err := s.f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, fmt.Errorf("tabella %s non trovata", sheet)
	}
	return s.f.GetRows(sheet)
}

func (s *xlsxSession) Table(_ context.Context, table string) (*Table, error) {
	raw, err := s.rows(table)
	if err != nil {
		return nil, err
	}
	t := &Table{Name: table}
	if len(raw) == 0 {
		return t, nil
	}
	t.Columns = raw[0]
	for i, r := range raw[1:] {
		values := make([]any, len(t.Columns))
		for j := range values {
			if j < len(r) {
				values[j] = r[j]
			} else {
				values[j] = ""
			}
		}
		t.Rows = append(t.Rows, Row{Index: i, Values: values})
	}

	lastCol, err := excelize.ColumnNumberToName(max(len(t.Columns), 1))
	if err != nil {
		return nil, err
	}
	t.Address = fmt.Sprintf("'%s'!A2:%s%d", table, lastCol, max(len(raw), 2))
	return t, nil
}

func (s *xlsxSession) setRow(sheet string, rowNum int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	row := append([]any(nil), values...)
	if err := s.f.SetSheetRow(sheet, cell, &row); err != nil {
		return err
	}
	s.dirty = true
	return nil
}

func (s *xlsxSession) dataRows(table string) (int, error) {
	raw, err := s.rows(table)
	if err != nil {
		return 0, err
	}
	if len(raw) == 0 {
		return 0, nil
	}
	return len(raw) - 1, nil
}

func (s *xlsxSession) AppendRow(_ context.Context, table string, values []any) error {
	n, err := s.dataRows(table)
	if err != nil {
		return err
	}
	return s.setRow(table, n+2, values)
}

func (s *xlsxSession) InsertRow(_ context.Context, table string, index int, values []any) error {
	n, err := s.dataRows(table)
	if err != nil {
		return err
	}
	if index < 0 || index > n {
		return fmt.Errorf("indice riga %d fuori tabella (%d righe)", index, n)
	}
	if err := s.f.InsertRows(table, index+2, 1); err != nil {
		return err
	}
	return s.setRow(table, index+2, values)
}

func (s *xlsxSession) UpdateRow(_ context.Context, table string, index int, values []any) error {
	n, err := s.dataRows(table)
	if err != nil {
		return err
	}
	if index < 0 || index >= n {
		return fmt.Errorf("indice riga %d fuori tabella (%d righe)", index, n)
	}
	return s.setRow(table, index+2, values)
}

func (s *xlsxSession) DeleteRow(_ context.Context, table string, index int) error {
	n, err := s.dataRows(table)
	if err != nil {
		return err
	}
	if index < 0 || index >= n {
		return fmt.Errorf("indice riga %d fuori tabella (%d righe)", index, n)
	}
	if err := s.f.RemoveRow(table, index+2); err != nil {
		return err
	}
	s.dirty = true
	return nil
}

func (s *xlsxSession) UpdateRange(_ context.Context, sheet, address string, values [][]any) error {
	a, ok := ParseAddress(address)
	if !ok {
		return fmt.Errorf("indirizzo non valido: %s", address)
	}
	if sheet == "" {
		sheet = a.Sheet
	}
	col, err := excelize.ColumnNameToNumber(a.StartCol)
	if err != nil {
		return err
	}
	for i, vals := range values {
		cell, err := excelize.CoordinatesToCellName(col, a.StartRow+i)
		if err != nil {
			return err
		}
		row := append([]any(nil), vals...)
		if err := s.f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	s.dirty = true
	return nil
}

// DeleteRange removes the whole rows spanned by address, shifting up.
func (s *xlsxSession) DeleteRange(_ context.Context, sheet, address string) error {
	a, ok := ParseAddress(address)
	if !ok {
		return fmt.Errorf("indirizzo non valido: %s", address)
	}
	if sheet == "" {
		sheet = a.Sheet
	}
	for r := a.EndRow; r >= a.StartRow; r-- {
		if err := s.f.RemoveRow(sheet, r); err != nil {
			return err
		}
	}
	s.dirty = true
	return nil
}

func (s *xlsxSession) Close(_ context.Context) error {
	if s.closed {
		return nil
	}
	s.closed = true
	defer s.unlock()

	var saveErr error
	if s.dirty {
		saveErr = s.f.Save()
	}
	if err := s.f.Close(); err != nil && saveErr == nil {
		saveErr = err
	}
	return saveErr
}
