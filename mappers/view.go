package mappers

import (
	"totem/model"
	"totem/normalize"
)

// Bolla and colata columns of the lot-keyed categories.
var lotColumns = map[model.Category]struct{ bolla, colata string }{
	model.CategoryForgiati: {"field_10", "field_13"},
	model.CategoryTubi:     {"field_15", "field_18"},
}

// ToCartItem builds the cart entry of a record. letter is the record's
// progressive letter, ignored for categories without lots.
func ToCartItem(cat model.Category, rec model.InventoryRecord, letter string) model.CartItem {
	item := model.CartItem{
		Key:    model.CartKey(cat, rec.ID),
		ItemID: rec.ID,
		Title:  rec.Title(),
		Source: cat,
		Fields: rec.Fields.Clone(),
	}
	if cols, ok := lotColumns[cat]; ok {
		item.Bolla = normalize.ToStr(rec.Fields[cols.bolla])
		item.Colata = normalize.ToStr(rec.Fields[cols.colata])
		item.LottoProg = normalize.FormatLottoProg(letter)
	}
	return item
}
