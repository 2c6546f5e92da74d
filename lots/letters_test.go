package lots

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"totem/model"
	"totem/normalize"
)

func TestMain(m *testing.M) {
	normalize.Location = time.UTC
	os.Exit(m.Run())
}

func rec(id, created, lp string) model.InventoryRecord {
	f := model.Fields{model.FieldTitle: "T-100"}
	if created != "" {
		f[model.FieldCreated] = created
	}
	if lp != "" {
		f[model.FieldLottoProgressivo] = lp
	}
	return model.InventoryRecord{ID: id, Fields: f}
}

func TestAssignLetters(t *testing.T) {
	tests := []struct {
		name  string
		group []model.InventoryRecord
		want  map[string]string
	}{
		{
			name: "oldest first, existing kept, collision reassigned",
			group: []model.InventoryRecord{
				rec("1", "2024-01-02T00:00:00Z", "b"),
				rec("2", "2024-01-01T00:00:00Z", ""),
				rec("3", "", "b"),
			},
			want: map[string]string{"2": "a", "1": "b", "3": "c"},
		},
		{
			name: "undated records by numeric id",
			group: []model.InventoryRecord{
				rec("10", "", ""),
				rec("9", "", ""),
			},
			want: map[string]string{"9": "a", "10": "b"},
		},
		{
			name: "invalid existing letters ignored",
			group: []model.InventoryRecord{
				rec("1", "2024-01-01T00:00:00Z", "AB"),
				rec("2", "2024-01-02T00:00:00Z", "C"),
			},
			want: map[string]string{"1": "a", "2": "c"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first := AssignLetters(tt.group)
			assert.Equal(t, tt.want, first)

			// stored letters that already agree are left alone
			stored := make([]model.InventoryRecord, len(tt.group))
			for i, r := range tt.group {
				f := r.Fields.Clone()
				f[model.FieldLottoProgressivo] = first[r.ID]
				stored[i] = model.InventoryRecord{ID: r.ID, Fields: f}
			}
			assert.Equal(t, first, AssignLetters(stored))
		})
	}
}

func TestAssignLettersSaturates(t *testing.T) {
	var group []model.InventoryRecord
	for i := 0; i < 28; i++ {
		group = append(group, rec(string(rune('0'+i)), "", ""))
	}
	letters := AssignLetters(group)
	assert.Len(t, letters, 28)
	assert.Equal(t, "z", letters[group[27].ID])
}

func TestNextLetter(t *testing.T) {
	items := []model.InventoryRecord{{ID: "1"}, {ID: "2"}}

	assert.Equal(t, "A", NextLetter(nil, nil, ""))
	assert.Equal(t, "D", NextLetter(items, map[string]string{"1": "a", "2": "c"}, ""))
	assert.Equal(t, "G", NextLetter(items, map[string]string{"1": "a"}, "f"))
	assert.Equal(t, "Z", NextLetter(items, map[string]string{"1": "z"}, ""))
}

func TestExtractProgLetter(t *testing.T) {
	assert.Equal(t, "B", ExtractProgLetter("  12b-x"))
	assert.Equal(t, "", ExtractProgLetter("123"))
	assert.Equal(t, "", ExtractProgLetter(""))
}

func TestColataPlaceholder(t *testing.T) {
	now := time.Date(2024, 3, 15, 8, 9, 10, 0, time.UTC)
	assert.Equal(t, "B-20240315080910", ColataPlaceholder("b", now))
	assert.Equal(t, "A-20240315080910", ColataPlaceholder("", now))
}

func TestIsSystemField(t *testing.T) {
	for _, k := range []string{"id", "Created", "LinkTitleNoMenu", "_ComplianceTag", "@odata.etag", "odata.type", "_Version"} {
		assert.True(t, IsSystemField(k), k)
	}
	for _, k := range []string{"Title", "field_18", "CodiceSAM", "LottoProgressivo"} {
		assert.False(t, IsSystemField(k), k)
	}
}
