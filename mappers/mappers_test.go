package mappers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"totem/model"
)

func TestCompareTitles(t *testing.T) {
	assert.Negative(t, CompareTitles("TUB2", "tub10"))
	assert.Positive(t, CompareTitles("TUC1", "TUB99"))
	assert.Negative(t, CompareTitles("T-9", "T-100"))
	assert.Negative(t, CompareTitles("T-100", "T-100A"))
	assert.Positive(t, CompareTitles("", "A"))
	assert.Negative(t, CompareTitles("A", " "))
	assert.Zero(t, CompareTitles(" t-1 ", "T-1"))
	assert.Zero(t, CompareTitles("T-01", "T-1"))
}

func TestGroupByTitle(t *testing.T) {
	records := []model.InventoryRecord{
		{ID: "1", Fields: model.Fields{"Title": "T-100"}},
		{ID: "2", Fields: model.Fields{"Title": "T-20"}},
		{ID: "3", Fields: model.Fields{"Title": "t-100 "}},
		{ID: "4", Fields: model.Fields{}},
	}
	groups := GroupByTitle(records)
	require.Len(t, groups, 3)
	assert.Equal(t, "T-20", groups[0].Title)
	assert.Equal(t, "T-100", groups[1].Title)
	require.Len(t, groups[1].Items, 2)
	assert.Equal(t, "1", groups[1].Items[0].ID)
	assert.Equal(t, "3", groups[1].Items[1].ID)
	assert.Equal(t, "", groups[2].Title)
	assert.Equal(t, "1", groups[1].Representative().ID)
}

func TestToCartItem(t *testing.T) {
	rec := model.InventoryRecord{ID: "7", Fields: model.Fields{"Title": " T-1 ", "field_15": "B-9", "field_18": 4411.0}}
	item := ToCartItem(model.CategoryTubi, rec, "c")
	assert.Equal(t, "TUBI:7", item.Key)
	assert.Equal(t, "T-1", item.Title)
	assert.Equal(t, "B-9", item.Bolla)
	assert.Equal(t, "4411", item.Colata)
	assert.Equal(t, "C", item.LottoProg)

	spark := ToCartItem(model.CategorySparkGups, rec, "c")
	assert.Empty(t, spark.LottoProg)
	assert.Empty(t, spark.Bolla)

	item.Fields["Title"] = "changed"
	assert.Equal(t, " T-1 ", rec.Fields["Title"])
}
