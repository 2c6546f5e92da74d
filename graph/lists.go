package graph

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"totem/model"
)

type listItem struct {
	ID     string       `json:"id"`
	Fields model.Fields `json:"fields"`
}

func (it listItem) record() model.InventoryRecord {
	fields := it.Fields
	if fields == nil {
		fields = model.Fields{}
	}
	return model.InventoryRecord{ID: it.ID, Fields: fields}
}

type listItemsPage struct {
	Value    []listItem `json:"value"`
	NextLink string     `json:"@odata.nextLink"`
}

// ListItems reads every item of a list, newest first, following
// @odata.nextLink. Items repeated across pages are kept once.
func (c *Client) ListItems(ctx context.Context, listID string) ([]model.InventoryRecord, error) {
	next := c.sitePath("/lists/%s/items?expand=fields&$top=999&$orderby=%s",
		url.PathEscape(listID), url.QueryEscape("createdDateTime desc"))
	seen := make(map[string]bool)
	var out []model.InventoryRecord
	for next != "" {
		var page listItemsPage
		if err := c.do(ctx, http.MethodGet, next, nil, nil, &page); err != nil {
			return nil, fmt.Errorf("lettura lista %s: %w", listID, err)
		}
		for _, it := range page.Value {
			if seen[it.ID] {
				continue
			}
			seen[it.ID] = true
			out = append(out, it.record())
		}
		next = page.NextLink
	}
	return out, nil
}

// CreateItem adds an item with the given fields.
func (c *Client) CreateItem(ctx context.Context, listID string, fields model.Fields) (model.InventoryRecord, error) {
	var created listItem
	body := map[string]any{"fields": fields}
	if err := c.do(ctx, http.MethodPost, c.sitePath("/lists/%s/items", url.PathEscape(listID)), nil, body, &created); err != nil {
		return model.InventoryRecord{}, err
	}
	return created.record(), nil
}

// UpdateItem patches the fields of one item.
func (c *Client) UpdateItem(ctx context.Context, listID, itemID string, fields model.Fields) error {
	path := c.sitePath("/lists/%s/items/%s/fields", url.PathEscape(listID), url.PathEscape(itemID))
	return c.do(ctx, http.MethodPatch, path, nil, fields, nil)
}

func (c *Client) DeleteItem(ctx context.Context, listID, itemID string) error {
	path := c.sitePath("/lists/%s/items/%s", url.PathEscape(listID), url.PathEscape(itemID))
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

// ListColumns returns the column definitions of a list.
func (c *Client) ListColumns(ctx context.Context, listID string) ([]model.ListColumn, error) {
	var resp struct {
		Value []model.ListColumn `json:"value"`
	}
	path := c.sitePath("/lists/%s/columns?$select=name,displayName,columnGroup", url.PathEscape(listID))
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Value, nil
}
