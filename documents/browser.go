// Package documents browses the PDF manuals and drawings kept in a site
// document library.
package documents

import (
	"context"
	"errors"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"totem/graph"
)

var (
	ErrNotPDF        = errors.New("Al momento è possibile aprire solo file PDF.")
	ErrNoDownloadURL = errors.New("Link di download non disponibile.")
)

// Drive is the part of the Graph client the browser needs.
type Drive interface {
	DriveID(ctx context.Context, name string) (string, error)
	Children(ctx context.Context, driveID, path string) ([]graph.DriveItem, error)
	Search(ctx context.Context, driveID, q string) ([]graph.DriveItem, error)
	Item(ctx context.Context, driveID, itemID string) (graph.DriveItem, error)
}

// Entry is one row of the browser. Path is the item's own path relative to
// the library root, empty when it cannot be derived.
type Entry struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	IsFolder    bool      `json:"isFolder"`
	IsPDF       bool      `json:"isPdf"`
	Size        int64     `json:"size"`
	Modified    time.Time `json:"modified"`
	WebURL      string    `json:"webUrl"`
	DownloadURL string    `json:"downloadUrl,omitempty"`
	Path        string    `json:"path,omitempty"`
}

type Browser struct {
	drive     Drive
	driveName string

	mu      sync.Mutex
	driveID string
}

// NewBrowser browses the library named driveName; "" is the site's default
// library.
func NewBrowser(drive Drive, driveName string) *Browser {
	return &Browser{drive: drive, driveName: driveName}
}

func (b *Browser) resolve(ctx context.Context) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.driveID != "" {
		return b.driveID, nil
	}
	id, err := b.drive.DriveID(ctx, b.driveName)
	if err != nil {
		return "", err
	}
	b.driveID = id
	return id, nil
}

// List returns the content of a folder, folders first.
func (b *Browser) List(ctx context.Context, path string) ([]Entry, error) {
	driveID, err := b.resolve(ctx)
	if err != nil {
		return nil, err
	}
	items, err := b.drive.Children(ctx, driveID, path)
	if err != nil {
		return nil, err
	}
	entries := toEntries(items)
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].IsFolder != entries[j].IsFolder {
			return entries[i].IsFolder
		}
		return strings.ToLower(entries[i].Name) < strings.ToLower(entries[j].Name)
	})
	return entries, nil
}

// Search runs a library-wide search. A blank query returns nothing.
func (b *Browser) Search(ctx context.Context, q string) ([]Entry, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, nil
	}
	driveID, err := b.resolve(ctx)
	if err != nil {
		return nil, err
	}
	items, err := b.drive.Search(ctx, driveID, q)
	if err != nil {
		return nil, err
	}
	return toEntries(items), nil
}

// Open returns a PDF entry with its short-lived download URL.
func (b *Browser) Open(ctx context.Context, itemID string) (Entry, error) {
	driveID, err := b.resolve(ctx)
	if err != nil {
		return Entry{}, err
	}
	it, err := b.drive.Item(ctx, driveID, itemID)
	if err != nil {
		return Entry{}, err
	}
	e := toEntry(it)
	if !e.IsPDF {
		return Entry{}, ErrNotPDF
	}
	if e.DownloadURL == "" {
		return Entry{}, ErrNoDownloadURL
	}
	return e, nil
}

func toEntries(items []graph.DriveItem) []Entry {
	out := make([]Entry, 0, len(items))
	for _, it := range items {
		out = append(out, toEntry(it))
	}
	return out
}

func toEntry(it graph.DriveItem) Entry {
	e := Entry{
		ID:          it.ID,
		Name:        it.Name,
		IsFolder:    it.IsFolder(),
		Size:        it.Size,
		Modified:    it.LastModifiedDateTime,
		WebURL:      it.WebURL,
		DownloadURL: it.DownloadURL,
	}
	mime := ""
	if it.File != nil {
		mime = it.File.MimeType
	}
	e.IsPDF = !e.IsFolder && isPDF(it.Name, mime)
	if parent, ok := parentPath(it); ok {
		if parent == "" {
			e.Path = it.Name
		} else {
			e.Path = parent + "/" + it.Name
		}
	}
	return e
}

func isPDF(name, mime string) bool {
	if strings.EqualFold(mime, "application/pdf") {
		return true
	}
	return strings.HasSuffix(strings.ToLower(name), ".pdf")
}

// libraryMarkers are the URL path segments of a default library root.
var libraryMarkers = []string{"/shared documents", "/documenti condivisi"}

// parentPath derives the folder of an item relative to the library root,
// from parentReference.path or, for search hits that lack it, from webUrl.
func parentPath(it graph.DriveItem) (string, bool) {
	if it.ParentReference != nil {
		if _, rel, ok := strings.Cut(it.ParentReference.Path, "/root:"); ok {
			return strings.TrimPrefix(rel, "/"), true
		}
	}
	if it.WebURL == "" {
		return "", false
	}
	u, err := url.Parse(it.WebURL)
	if err != nil {
		return "", false
	}
	decoded := u.Path
	lower := strings.ToLower(decoded)
	for _, m := range libraryMarkers {
		idx := strings.Index(lower, m)
		if idx < 0 {
			continue
		}
		rel := strings.TrimPrefix(decoded[idx+len(m):], "/")
		if it.Name != "" && strings.HasSuffix(strings.ToLower(rel), strings.ToLower(it.Name)) {
			rel = strings.TrimSuffix(rel[:len(rel)-len(it.Name)], "/")
		}
		return rel, true
	}
	return "", false
}
