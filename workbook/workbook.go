// Package workbook mirrors list records into spreadsheet tables.
package workbook

import (
	"context"
	"errors"
)

// ErrRowAddressing is returned by backends that cannot address table rows by
// index; callers fall back to range addresses.
var ErrRowAddressing = errors.New("row index addressing not supported")

// FileRef identifies a workbook file on a drive.
type FileRef struct {
	DriveID string
	ItemID  string
	Path    string
}

// Row is one data row of a table. Index is zero-based within the data body.
type Row struct {
	Index  int
	Values []any
}

// Table is a snapshot of a named table.
type Table struct {
	Name    string
	Columns []string
	Rows    []Row
	// Address of the data body range, e.g. "Sheet1!A2:Z50".
	Address string
}

// Backend resolves workbook files and opens write sessions on them.
type Backend interface {
	ResolveFile(ctx context.Context, driveName, path string) (FileRef, error)
	OpenSession(ctx context.Context, file FileRef) (Session, error)
}

// Session is a persistent write session on one workbook. It must be closed.
type Session interface {
	ID() string
	Table(ctx context.Context, table string) (*Table, error)
	AppendRow(ctx context.Context, table string, values []any) error
	InsertRow(ctx context.Context, table string, index int, values []any) error
	UpdateRow(ctx context.Context, table string, index int, values []any) error
	DeleteRow(ctx context.Context, table string, index int) error
	UpdateRange(ctx context.Context, sheet, address string, values [][]any) error
	DeleteRange(ctx context.Context, sheet, address string) error
	Close(ctx context.Context) error
}
