// Package schema models the relational metadata the loader needs: which
// tables exist, their columns, their foreign keys, and a load order that
// puts parents before children. A Catalog is either introspected from a
// live database or built literally in tests.
package schema

import "sort"

// Column describes one table column.
type Column struct {
	Name     string
	DataType string
	Nullable bool
}

// ForeignKey is one local-column → referenced-table.column constraint.
type ForeignKey struct {
	Column    string
	RefTable  string
	RefColumn string
}

// Table identifies a table and its declared structure. Read-only to the
// loader subsystem.
type Table struct {
	Name        string
	Columns     []Column
	ForeignKeys []ForeignKey
}

// Column returns the declared column with the given name.
func (t *Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// HasColumn reports whether name is a declared column.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.Column(name)
	return ok
}

// ColumnNames returns the declared column names in order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// ConstraintsReferencing returns this table's foreign keys that point at
// the given parent table.
func (t *Table) ConstraintsReferencing(parent string) []ForeignKey {
	var fks []ForeignKey
	for _, fk := range t.ForeignKeys {
		if fk.RefTable == parent {
			fks = append(fks, fk)
		}
	}
	return fks
}

// Catalog is the set of known tables.
type Catalog struct {
	tables map[string]*Table
}

// NewCatalog builds a catalog from table definitions.
func NewCatalog(tables ...*Table) *Catalog {
	c := &Catalog{tables: make(map[string]*Table, len(tables))}
	for _, t := range tables {
		c.tables[t.Name] = t
	}
	return c
}

// Table looks up a table by name.
func (c *Catalog) Table(name string) (*Table, bool) {
	t, ok := c.tables[name]
	return t, ok
}

// Names returns all table names, sorted alphabetically.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.tables))
	for name := range c.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of tables in the catalog.
func (c *Catalog) Len() int {
	return len(c.tables)
}
