package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog() *Catalog {
	authors := &Table{
		Name: "authors",
		Columns: []Column{
			{Name: "slug", DataType: "text"},
			{Name: "name", DataType: "text", Nullable: true},
		},
	}
	books := &Table{
		Name: "books",
		Columns: []Column{
			{Name: "id", DataType: "integer"},
			{Name: "title", DataType: "text"},
			{Name: "author_slug", DataType: "text"},
		},
		ForeignKeys: []ForeignKey{
			{Column: "author_slug", RefTable: "authors", RefColumn: "slug"},
		},
	}
	return NewCatalog(authors, books)
}

func TestTableColumnLookup(t *testing.T) {
	c := testCatalog()
	books, ok := c.Table("books")
	require.True(t, ok)

	col, ok := books.Column("title")
	require.True(t, ok)
	assert.Equal(t, "text", col.DataType)

	_, ok = books.Column("missing")
	assert.False(t, ok)

	assert.True(t, books.HasColumn("author_slug"))
	assert.Equal(t, []string{"id", "title", "author_slug"}, books.ColumnNames())
}

func TestConstraintsReferencing(t *testing.T) {
	c := testCatalog()
	books, _ := c.Table("books")

	fks := books.ConstraintsReferencing("authors")
	require.Len(t, fks, 1)
	assert.Equal(t, "author_slug", fks[0].Column)
	assert.Equal(t, "slug", fks[0].RefColumn)

	assert.Empty(t, books.ConstraintsReferencing("publishers"))
}

func TestCatalogNames(t *testing.T) {
	c := testCatalog()
	assert.Equal(t, []string{"authors", "books"}, c.Names())
	assert.Equal(t, 2, c.Len())

	_, ok := c.Table("nope")
	assert.False(t, ok)
}
