// Package listcache keeps the records of each list in memory for a short
// time so every view shares one fetch.
package listcache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"totem/logger"
	"totem/model"
)

const defaultTTL = 5 * time.Minute

// Fetcher loads every record of a list.
type Fetcher interface {
	ListItems(ctx context.Context, listID string) ([]model.InventoryRecord, error)
}

type entry struct {
	records   []model.InventoryRecord
	fetchedAt time.Time
}

// Cache is safe for concurrent use. One instance is shared by the process.
type Cache struct {
	fetcher Fetcher
	ttl     time.Duration
	now     func() time.Time

	mu      sync.Mutex
	entries map[string]entry
	hits    int64
	misses  int64

	group singleflight.Group
}

type Option func(*Cache)

func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

func New(fetcher Fetcher, opts ...Option) *Cache {
	c := &Cache{
		fetcher: fetcher,
		ttl:     defaultTTL,
		now:     time.Now,
		entries: make(map[string]entry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached records of name, fetching listID when the entry is
// missing, expired or force is set. A failed fetch leaves the previous entry
// untouched.
func (c *Cache) Get(ctx context.Context, name, listID string, force bool) ([]model.InventoryRecord, error) {
	if !force {
		c.mu.Lock()
		e, ok := c.entries[name]
		if ok && c.now().Sub(e.fetchedAt) < c.ttl {
			c.hits++
			c.mu.Unlock()
			return e.records, nil
		}
		c.misses++
		c.mu.Unlock()
	}

	v, err, _ := c.group.Do(name, func() (any, error) {
		records, err := c.fetcher.ListItems(ctx, listID)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.entries[name] = entry{records: records, fetchedAt: c.now()}
		c.mu.Unlock()
		logger.Debug("list cached", "name", name, "records", len(records))
		return records, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]model.InventoryRecord), nil
}

func (c *Cache) Invalidate(name string) {
	c.mu.Lock()
	delete(c.entries, name)
	c.mu.Unlock()
}

func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.mu.Unlock()
}

// Stats reports hit and miss counters and the number of cached lists.
func (c *Cache) Stats() (hits, misses int64, size int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses, len(c.entries)
}

// ViewName and AdminName are the cache names used for a category.
func ViewName(cat model.Category) string  { return cat.Slug() }
func AdminName(cat model.Category) string { return "admin-" + cat.Slug() }

// InvalidateCategory drops every entry that mirrors cat's list.
func (c *Cache) InvalidateCategory(cat model.Category) {
	c.Invalidate(ViewName(cat))
	c.Invalidate(AdminName(cat))
}
