package schema

import (
	"context"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the subset of database operations introspection needs.
// Satisfied by *pgxpool.Pool, pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

const columnsQuery = `
SELECT table_name, column_name, data_type, is_nullable
FROM information_schema.columns
WHERE table_schema = $1
ORDER BY table_name, ordinal_position`

const foreignKeysQuery = `
SELECT tc.table_name,
       kcu.column_name,
       ccu.table_name  AS ref_table,
       ccu.column_name AS ref_column
FROM information_schema.table_constraints tc
JOIN information_schema.key_column_usage kcu
  ON kcu.constraint_name = tc.constraint_name
 AND kcu.constraint_schema = tc.constraint_schema
JOIN information_schema.constraint_column_usage ccu
  ON ccu.constraint_name = tc.constraint_name
 AND ccu.constraint_schema = tc.constraint_schema
WHERE tc.constraint_type = 'FOREIGN KEY'
  AND tc.table_schema = $1
ORDER BY tc.table_name, kcu.ordinal_position`

// Introspect reads table, column and foreign-key metadata for one
// database schema (usually "public") and builds a Catalog from it.
func Introspect(ctx context.Context, db DBTX, schemaName string) (*Catalog, error) {
	tables := make(map[string]*Table)

	rows, err := db.Query(ctx, columnsQuery, schemaName)
	if err != nil {
		return nil, fmt.Errorf("introspect columns: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var tableName, columnName, dataType, isNullable string
		if err := rows.Scan(&tableName, &columnName, &dataType, &isNullable); err != nil {
			return nil, fmt.Errorf("introspect columns: %w", err)
		}
		t, ok := tables[tableName]
		if !ok {
			t = &Table{Name: tableName}
			tables[tableName] = t
		}
		t.Columns = append(t.Columns, Column{
			Name:     columnName,
			DataType: dataType,
			Nullable: isNullable == "YES",
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("introspect columns: %w", err)
	}
	rows.Close()

	fkRows, err := db.Query(ctx, foreignKeysQuery, schemaName)
	if err != nil {
		return nil, fmt.Errorf("introspect foreign keys: %w", err)
	}
	defer fkRows.Close()

	for fkRows.Next() {
		var tableName string
		var fk ForeignKey
		if err := fkRows.Scan(&tableName, &fk.Column, &fk.RefTable, &fk.RefColumn); err != nil {
			return nil, fmt.Errorf("introspect foreign keys: %w", err)
		}
		t, ok := tables[tableName]
		if !ok {
			// Constraint on a table outside the column listing (e.g. a
			// view); skip rather than invent a table with no columns.
			continue
		}
		t.ForeignKeys = append(t.ForeignKeys, fk)
	}
	if err := fkRows.Err(); err != nil {
		return nil, fmt.Errorf("introspect foreign keys: %w", err)
	}

	names := make([]string, 0, len(tables))
	for name := range tables {
		names = append(names, name)
	}
	sort.Strings(names)

	defs := make([]*Table, 0, len(names))
	for _, name := range names {
		defs = append(defs, tables[name])
	}
	return NewCatalog(defs...), nil
}
