package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dirseed/dirseed/internal/loader"
	"github.com/dirseed/dirseed/internal/schema"
)

// Sink accepts constructed records within a unit of work. Loaders only
// add records; committing or rolling back the unit of work belongs to
// the orchestrator that owns it.
type Sink interface {
	// Add takes ownership of one record.
	Add(ctx context.Context, rec loader.Record) error

	// Flush pushes buffered records to the backing store. Constraint
	// violations surface here as KindPersistenceConflict errors.
	Flush(ctx context.Context) error
}

// BatchSender is the pgx surface the sink writes through.
// Satisfied by pgx.Tx, *pgx.Conn and *pgxpool.Pool.
type BatchSender interface {
	SendBatch(context.Context, *pgx.Batch) pgx.BatchResults
}

// PgSink writes records into PostgreSQL through a pgx transaction.
// Added records are queued into a pgx.Batch and sent on Flush, one
// round trip per flush instead of one per row.
type PgSink struct {
	db      BatchSender
	catalog *schema.Catalog
	batch   *pgx.Batch
	tables  []string // table per queued statement, for error context
}

// NewPgSink creates a sink writing through db, typically a pgx.Tx owned
// by the load orchestrator.
func NewPgSink(db BatchSender, catalog *schema.Catalog) *PgSink {
	return &PgSink{
		db:      db,
		catalog: catalog,
		batch:   &pgx.Batch{},
	}
}

// Add queues an INSERT for the record. Column order follows the table's
// declared column order so statements are stable and cacheable.
func (s *PgSink) Add(ctx context.Context, rec loader.Record) error {
	table, ok := s.catalog.Table(rec.Table)
	if !ok {
		return fmt.Errorf("record for unknown table %q", rec.Table)
	}

	cols := table.ColumnNames()
	args := make([]any, len(cols))
	for i, col := range cols {
		args[i] = rec.Values[col]
	}

	s.batch.Queue(insertSQL(table), args...)
	s.tables = append(s.tables, rec.Table)
	return nil
}

// Flush sends the queued batch. On a constraint violation the error is
// classified as a persistence conflict naming the offending table.
func (s *PgSink) Flush(ctx context.Context) error {
	if s.batch.Len() == 0 {
		return nil
	}

	queued := s.tables
	br := s.db.SendBatch(ctx, s.batch)

	var flushErr error
	for i := 0; i < len(queued); i++ {
		if _, err := br.Exec(); err != nil {
			flushErr = classifyWriteError(err, queued[i])
			break
		}
	}
	if err := br.Close(); err != nil && flushErr == nil {
		flushErr = classifyWriteError(err, "")
	}

	s.batch = &pgx.Batch{}
	s.tables = nil
	return flushErr
}

// insertSQL builds INSERT INTO "t" ("a","b") VALUES ($1,$2).
func insertSQL(table *schema.Table) string {
	cols := table.ColumnNames()
	quoted := make([]string, len(cols))
	params := make([]string, len(cols))
	for i, col := range cols {
		quoted[i] = pgx.Identifier{col}.Sanitize()
		params[i] = fmt.Sprintf("$%d", i+1)
	}
	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		pgx.Identifier{table.Name}.Sanitize(),
		strings.Join(quoted, ", "),
		strings.Join(params, ", "),
	)
}

// classifyWriteError maps PostgreSQL integrity violations (SQLSTATE
// class 23) to KindPersistenceConflict, keeping the pg error wrapped.
func classifyWriteError(err error, table string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && strings.HasPrefix(pgErr.Code, "23") {
		return &loader.Error{
			Kind:  loader.KindPersistenceConflict,
			Table: table,
			Err:   err,
		}
	}
	if table != "" {
		return fmt.Errorf("flush records for %s: %w", table, err)
	}
	return fmt.Errorf("flush records: %w", err)
}
