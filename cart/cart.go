// Package cart holds the kiosk's selection of records and saves the edited
// stock values in one batch.
package cart

import (
	"errors"
	"reflect"
	"slices"
	"sync"

	"totem/model"
)

const MaxItems = 10

var (
	ErrCartFull    = errors.New("Puoi selezionare massimo 10 articoli.")
	ErrNotInCart   = errors.New("articolo non presente nel carrello")
	ErrInvalidItem = errors.New("articolo non valido")
)

// Line is one cart entry with its form state.
type Line struct {
	Item model.CartItem `json:"item"`
	Edit Editable       `json:"edit"`
}

// Cart is a bounded ordered set of records keyed by source and item id.
// It is safe for concurrent use.
type Cart struct {
	mu    sync.Mutex
	order []string
	lines map[string]*Line
}

func New() *Cart {
	return &Cart{lines: make(map[string]*Line)}
}

func normalizeItem(item model.CartItem) (model.CartItem, error) {
	if item.ItemID == "" {
		return item, ErrInvalidItem
	}
	cat, err := model.ParseCategory(string(item.Source))
	if err != nil {
		return item, ErrInvalidItem
	}
	item.Source = cat
	item.Key = model.CartKey(item.Source, item.ItemID)
	if item.Fields == nil {
		item.Fields = model.Fields{}
	}
	return item, nil
}

// Add inserts item unless it is already present. The eleventh distinct item
// is rejected with ErrCartFull and the cart is left unchanged.
func (c *Cart) Add(item model.CartItem) error {
	item, err := normalizeItem(item)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.lines[item.Key]; ok {
		return nil
	}
	if len(c.order) >= MaxItems {
		return ErrCartFull
	}
	c.lines[item.Key] = &Line{Item: item, Edit: NewEditable(item)}
	c.order = append(c.order, item.Key)
	return nil
}

// Toggle removes item when present and adds it otherwise. It reports whether
// the item is selected afterwards.
func (c *Cart) Toggle(item model.CartItem) (bool, error) {
	item, err := normalizeItem(item)
	if err != nil {
		return false, err
	}
	if c.Remove(item.Key) {
		return false, nil
	}
	if err := c.Add(item); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Cart) Remove(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.lines[key]; !ok {
		return false
	}
	delete(c.lines, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return true
}

func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order = nil
	c.lines = make(map[string]*Line)
}

// RemoveSaved drops the lines whose edits still equal the saved copies.
// Lines added or edited after the snapshot was taken stay in the cart.
func (c *Cart) RemoveSaved(saved []Line) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, s := range saved {
		l, ok := c.lines[s.Item.Key]
		if !ok || !reflect.DeepEqual(l.Edit, s.Edit) {
			continue
		}
		delete(c.lines, s.Item.Key)
		c.order = slices.DeleteFunc(c.order, func(k string) bool { return k == s.Item.Key })
	}
}

func (c *Cart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.order)
}

// Items returns the selected records in insertion order.
func (c *Cart) Items() []model.CartItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.CartItem, 0, len(c.order))
	for _, k := range c.order {
		out = append(out, c.lines[k].Item)
	}
	return out
}

// Lines returns a copy of every line; edits are copied by value so the
// caller can read them without holding the cart.
func (c *Cart) Lines() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Line, 0, len(c.order))
	for _, k := range c.order {
		l := c.lines[k]
		out = append(out, Line{Item: l.Item, Edit: copyEdit(l.Edit)})
	}
	return out
}

// SetField updates one form field of a line.
func (c *Cart) SetField(key, field, value string) (Editable, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.lines[key]
	if !ok {
		return nil, ErrNotInCart
	}
	if err := l.Edit.Set(field, value); err != nil {
		return nil, err
	}
	return copyEdit(l.Edit), nil
}

func copyEdit(e Editable) Editable {
	switch v := e.(type) {
	case *ForgiatiEdit:
		c := *v
		return &c
	case *TubiEdit:
		c := *v
		return &c
	case *OringHnbrEdit:
		c := *v
		return &c
	case *OringNbrEdit:
		c := *v
		return &c
	case *SparkEdit:
		c := *v
		return &c
	}
	return e
}
