package graph

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DriveItem is a file or folder of a document library.
type DriveItem struct {
	ID                   string    `json:"id"`
	Name                 string    `json:"name"`
	Size                 int64     `json:"size"`
	LastModifiedDateTime time.Time `json:"lastModifiedDateTime"`
	WebURL               string    `json:"webUrl"`
	DownloadURL          string    `json:"@microsoft.graph.downloadUrl,omitempty"`
	Folder               *struct {
		ChildCount int `json:"childCount"`
	} `json:"folder,omitempty"`
	File *struct {
		MimeType string `json:"mimeType"`
	} `json:"file,omitempty"`
	ParentReference *struct {
		Path string `json:"path"`
	} `json:"parentReference,omitempty"`
}

func (d DriveItem) IsFolder() bool { return d.Folder != nil }

type drive struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// DriveID resolves a document library by display name. An empty name is the
// site's default library.
func (c *Client) DriveID(ctx context.Context, name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		var d drive
		if err := c.do(ctx, http.MethodGet, c.sitePath("/drive"), nil, nil, &d); err != nil {
			return "", err
		}
		return d.ID, nil
	}
	var resp struct {
		Value []drive `json:"value"`
	}
	if err := c.do(ctx, http.MethodGet, c.sitePath("/drives"), nil, nil, &resp); err != nil {
		return "", err
	}
	for _, d := range resp.Value {
		if strings.EqualFold(strings.TrimSpace(d.Name), strings.TrimSpace(name)) {
			return d.ID, nil
		}
	}
	return "", fmt.Errorf("Libreria %q non trovata", name)
}

func escapePath(p string) string {
	parts := strings.Split(strings.Trim(p, "/"), "/")
	for i, s := range parts {
		parts[i] = url.PathEscape(s)
	}
	return strings.Join(parts, "/")
}

// ItemByPath returns the drive item at a path relative to the drive root.
func (c *Client) ItemByPath(ctx context.Context, driveID, path string) (DriveItem, error) {
	var it DriveItem
	p := fmt.Sprintf("/drives/%s/root:/%s", url.PathEscape(driveID), escapePath(path))
	if err := c.do(ctx, http.MethodGet, p, nil, nil, &it); err != nil {
		return DriveItem{}, err
	}
	return it, nil
}

// Item returns one drive item, including its short-lived download URL.
func (c *Client) Item(ctx context.Context, driveID, itemID string) (DriveItem, error) {
	var it DriveItem
	p := fmt.Sprintf("/drives/%s/items/%s", url.PathEscape(driveID), url.PathEscape(itemID))
	if err := c.do(ctx, http.MethodGet, p, nil, nil, &it); err != nil {
		return DriveItem{}, err
	}
	return it, nil
}

// Children lists a folder; an empty path lists the drive root.
func (c *Client) Children(ctx context.Context, driveID, path string) ([]DriveItem, error) {
	p := fmt.Sprintf("/drives/%s/root/children", url.PathEscape(driveID))
	if strings.Trim(path, "/") != "" {
		p = fmt.Sprintf("/drives/%s/root:/%s:/children", url.PathEscape(driveID), escapePath(path))
	}
	return c.collectItems(ctx, p)
}

// Search runs a drive-wide search.
func (c *Client) Search(ctx context.Context, driveID, q string) ([]DriveItem, error) {
	escaped := strings.ReplaceAll(q, "'", "''")
	p := fmt.Sprintf("/drives/%s/root/search(q='%s')", url.PathEscape(driveID), url.PathEscape(escaped))
	return c.collectItems(ctx, p)
}

func (c *Client) collectItems(ctx context.Context, next string) ([]DriveItem, error) {
	var out []DriveItem
	for next != "" {
		var page struct {
			Value    []DriveItem `json:"value"`
			NextLink string      `json:"@odata.nextLink"`
		}
		if err := c.do(ctx, http.MethodGet, next, nil, nil, &page); err != nil {
			return nil, err
		}
		out = append(out, page.Value...)
		next = page.NextLink
	}
	return out, nil
}
