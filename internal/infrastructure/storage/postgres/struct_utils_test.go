package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"pneutrack/internal/core/entity"
	"pneutrack/internal/core/id"
)

type mockCatalog struct {
	entity.Catalog
	Phone  string `db:"phone" json:"phone"`
	Hidden string `db:"-" json:"hidden"`
	NoTag  string
}

func TestExtractDBColumns(t *testing.T) {
	cols := ExtractDBColumns[mockCatalog]()

	expected := []string{"id", "deletion_mark", "version", "code", "name", "phone"}
	for _, col := range expected {
		assert.Contains(t, cols, col)
	}

	assert.NotContains(t, cols, "-")
	assert.NotContains(t, cols, "Hidden")
	assert.NotContains(t, cols, "NoTag")
}

func TestStructToMap(t *testing.T) {
	cat := mockCatalog{
		Catalog: entity.Catalog{
			BaseCatalog: entity.BaseCatalog{
				BaseEntity: entity.BaseEntity{
					ID:           id.New(),
					DeletionMark: true,
					Version:      5,
				},
			},
			Code: "CLI-2026-00001",
			Name: "Garage Dupont",
		},
		Phone:  "+33 6 12 34 56 78",
		Hidden: "ignored",
	}

	m := StructToMap(cat)

	assert.Equal(t, cat.ID, m["id"])
	assert.Equal(t, true, m["deletion_mark"])
	assert.Equal(t, 5, m["version"])
	assert.Equal(t, "CLI-2026-00001", m["code"])
	assert.Equal(t, "Garage Dupont", m["name"])
	assert.Equal(t, "+33 6 12 34 56 78", m["phone"])

	_, hasHidden := m["-"]
	assert.False(t, hasHidden)
}

func TestStructToMap_Pointer(t *testing.T) {
	cat := &mockCatalog{}
	cat.Code = "PRD-2026-00042"

	m := StructToMap(cat)
	assert.Equal(t, "PRD-2026-00042", m["code"])
}

func TestStructToMap_NonStruct(t *testing.T) {
	assert.Nil(t, StructToMap(42))
	assert.Nil(t, StructToMap("not a struct"))
}
