package graph

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"totem/workbook"
)

const sessionHeader = "workbook-session-id"

// WorkbookBackend reaches workbook tables stored in the site's libraries.
type WorkbookBackend struct {
	client *Client

	mu     sync.Mutex
	drives map[string]string
}

func NewWorkbookBackend(c *Client) *WorkbookBackend {
	return &WorkbookBackend{client: c, drives: make(map[string]string)}
}

func (b *WorkbookBackend) driveID(ctx context.Context, name string) (string, error) {
	b.mu.Lock()
	id, ok := b.drives[name]
	b.mu.Unlock()
	if ok {
		return id, nil
	}
	id, err := b.client.DriveID(ctx, name)
	if err != nil {
		return "", err
	}
	b.mu.Lock()
	b.drives[name] = id
	b.mu.Unlock()
	return id, nil
}

func (b *WorkbookBackend) ResolveFile(ctx context.Context, driveName, path string) (workbook.FileRef, error) {
	driveID, err := b.driveID(ctx, driveName)
	if err != nil {
		return workbook.FileRef{}, err
	}
	it, err := b.client.ItemByPath(ctx, driveID, path)
	if err != nil {
		return workbook.FileRef{}, err
	}
	return workbook.FileRef{DriveID: driveID, ItemID: it.ID, Path: path}, nil
}

func (b *WorkbookBackend) OpenSession(ctx context.Context, file workbook.FileRef) (workbook.Session, error) {
	s := &graphSession{client: b.client, file: file}
	var resp struct {
		ID string `json:"id"`
	}
	if err := b.client.do(ctx, http.MethodPost, s.path("/createSession"), nil, map[string]bool{"persistChanges": true}, &resp); err != nil {
		return nil, err
	}
	s.id = resp.ID
	return s, nil
}

type graphSession struct {
	client *Client
	file   workbook.FileRef
	id     string
}

func (s *graphSession) ID() string { return s.id }

func (s *graphSession) path(suffix string) string {
	return fmt.Sprintf("/drives/%s/items/%s/workbook%s", url.PathEscape(s.file.DriveID), url.PathEscape(s.file.ItemID), suffix)
}

func (s *graphSession) tablePath(table, suffix string) string {
	return s.path(fmt.Sprintf("/tables/%s%s", url.PathEscape(table), suffix))
}

func (s *graphSession) do(ctx context.Context, method, path string, in, out any) error {
	h := http.Header{}
	if s.id != "" {
		h.Set(sessionHeader, s.id)
	}
	return s.client.do(ctx, method, path, h, in, out)
}

func (s *graphSession) Table(ctx context.Context, table string) (*workbook.Table, error) {
	var cols struct {
		Value []struct {
			Name string `json:"name"`
		} `json:"value"`
	}
	if err := s.do(ctx, http.MethodGet, s.tablePath(table, "/columns?$select=name"), nil, &cols); err != nil {
		return nil, err
	}
	var rows struct {
		Value []struct {
			Values [][]any `json:"values"`
		} `json:"value"`
	}
	if err := s.do(ctx, http.MethodGet, s.tablePath(table, "/rows"), nil, &rows); err != nil {
		return nil, err
	}
	var body struct {
		Address string `json:"address"`
	}
	if err := s.do(ctx, http.MethodGet, s.tablePath(table, "/dataBodyRange?$select=address"), nil, &body); err != nil {
		return nil, err
	}

	t := &workbook.Table{Name: table, Address: body.Address}
	for _, c := range cols.Value {
		t.Columns = append(t.Columns, c.Name)
	}
	for i, r := range rows.Value {
		var values []any
		if len(r.Values) > 0 {
			values = r.Values[0]
		}
		t.Rows = append(t.Rows, workbook.Row{Index: i, Values: values})
	}
	return t, nil
}

func (s *graphSession) AppendRow(ctx context.Context, table string, values []any) error {
	return s.do(ctx, http.MethodPost, s.tablePath(table, "/rows"), map[string]any{"values": [][]any{values}}, nil)
}

func (s *graphSession) InsertRow(ctx context.Context, table string, index int, values []any) error {
	body := map[string]any{"index": index, "values": [][]any{values}}
	return s.do(ctx, http.MethodPost, s.tablePath(table, "/rows"), body, nil)
}

func (s *graphSession) UpdateRow(ctx context.Context, table string, index int, values []any) error {
	p := s.tablePath(table, fmt.Sprintf("/rows/itemAt(index=%d)", index))
	return addressing(s.do(ctx, http.MethodPatch, p, map[string]any{"values": [][]any{values}}, nil))
}

func (s *graphSession) DeleteRow(ctx context.Context, table string, index int) error {
	p := s.tablePath(table, fmt.Sprintf("/rows/itemAt(index=%d)", index))
	return addressing(s.do(ctx, http.MethodDelete, p, nil, nil))
}

func (s *graphSession) rangePath(sheet, address, suffix string) string {
	return s.path(fmt.Sprintf("/worksheets/%s/range(address='%s')%s", url.PathEscape(sheet), url.PathEscape(address), suffix))
}

func (s *graphSession) UpdateRange(ctx context.Context, sheet, address string, values [][]any) error {
	return s.do(ctx, http.MethodPatch, s.rangePath(sheet, address, ""), map[string]any{"values": values}, nil)
}

func (s *graphSession) DeleteRange(ctx context.Context, sheet, address string) error {
	return s.do(ctx, http.MethodPost, s.rangePath(sheet, address, "/delete"), map[string]string{"shift": "Up"}, nil)
}

func (s *graphSession) Close(ctx context.Context) error {
	return s.do(ctx, http.MethodPost, s.path("/closeSession"), nil, nil)
}

// addressing maps the refusals Graph returns for itemAt on some tables to
// workbook.ErrRowAddressing.
func addressing(err error) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Status {
		case http.StatusBadRequest, http.StatusNotFound, http.StatusMethodNotAllowed, http.StatusNotImplemented:
			return fmt.Errorf("%w: %v", workbook.ErrRowAddressing, err)
		}
	}
	return err
}
