// Package core orchestrates a load run: it walks tables in dependency
// order, selects a loader strategy per table, streams the extracted
// records into a sink, and owns the single unit of work the whole run
// commits or rolls back atomically.
package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dirseed/dirseed/internal/config"
	"github.com/dirseed/dirseed/internal/loader"
	"github.com/dirseed/dirseed/internal/logging"
	"github.com/dirseed/dirseed/internal/schema"
)

// Service runs loads against one catalog and data directory.
type Service struct {
	pool    *pgxpool.Pool
	catalog *schema.Catalog
	cfg     *config.Config
}

// TableResult reports one table's contribution to a run. Records counts
// everything emitted while processing the table, including child records
// expanded into sibling tables.
type TableResult struct {
	Table    string `json:"table"`
	Strategy string `json:"strategy,omitempty"`
	Records  int    `json:"records"`
	Skipped  bool   `json:"skipped,omitempty"`
}

// Result is the outcome of one committed load run.
type Result struct {
	RunID    string        `json:"runId"`
	Tables   []TableResult `json:"tables"`
	Records  int           `json:"records"`
	Duration time.Duration `json:"duration"`
}

// NewService validates the load setup: the data directory must exist and
// at least one model must be registered. The pool may be nil for callers
// that only use Run with their own sink.
func NewService(pool *pgxpool.Pool, catalog *schema.Catalog, cfg *config.Config) (*Service, error) {
	if catalog == nil || catalog.Len() == 0 {
		return nil, fmt.Errorf("empty schema catalog")
	}
	if ModelCount() == 0 {
		return nil, fmt.Errorf("no models registered")
	}

	info, err := os.Stat(cfg.Loader.DataDir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", cfg.Loader.DataDir)
	}

	return &Service{pool: pool, catalog: catalog, cfg: cfg}, nil
}

// Catalog exposes the service's schema catalog.
func (s *Service) Catalog() *schema.Catalog {
	return s.catalog
}

// Load runs one full load inside a single transaction. Every error
// rolls the whole run back; no partial commit is ever visible. Deferred
// constraint checking lets child records arrive before their parent
// within a table's flush.
func (s *Service) Load(ctx context.Context) (*Result, error) {
	if s.pool == nil {
		return nil, fmt.Errorf("no database pool configured")
	}

	start := time.Now()
	runID := uuid.New().String()
	log := logging.WithFields(ctx, "run_id", runID)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin load transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "SET CONSTRAINTS ALL DEFERRED"); err != nil {
		return nil, fmt.Errorf("defer constraints: %w", err)
	}

	sink := NewPgSink(tx, s.catalog)
	tables, err := s.Run(ctx, sink)
	if err != nil {
		log.Error("load failed, rolling back", "error", err)
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		log.Error("load commit failed, rolling back", "error", err)
		return nil, classifyWriteError(err, "")
	}

	result := &Result{
		RunID:    runID,
		Tables:   tables,
		Duration: time.Since(start),
	}
	for _, t := range tables {
		result.Records += t.Records
	}

	log.Info("load complete",
		"tables", len(tables),
		"records", result.Records,
		"duration_ms", result.Duration.Milliseconds(),
	)
	return result, nil
}

// Run performs the orchestration against an arbitrary sink: tables in
// dependency order, one strategy per table, per-table flush. It never
// commits or rolls back; the caller owns the unit of work.
func (s *Service) Run(ctx context.Context, sink Sink) ([]TableResult, error) {
	tables, err := s.catalog.Sorted()
	if err != nil {
		return nil, fmt.Errorf("order tables: %w", err)
	}

	// Nested expansion sees the registered sibling tables only when the
	// feature is switched on; otherwise embedded sequences are ignored.
	models := loader.ModelMap{}
	if s.cfg.Loader.MapNested {
		models = ModelMap()
	}

	log := logging.FromContext(ctx)
	var results []TableResult

	for _, table := range tables {
		model, ok := Get(table.Name)
		if !ok {
			if s.cfg.Loader.SkipNoModel {
				log.Debug("skipping table without model", "table", table.Name)
				results = append(results, TableResult{Table: table.Name, Skipped: true})
				continue
			}
			return nil, &loader.Error{Kind: loader.KindNoModel, Table: table.Name}
		}

		strat, ok := loader.For(s.cfg.Loader.DataDir, table, model.Mapping, models, s.catalog)
		if !ok {
			if s.cfg.Loader.SkipNoLoader {
				log.Debug("skipping table without loader", "table", table.Name)
				results = append(results, TableResult{Table: table.Name, Skipped: true})
				continue
			}
			return nil, &loader.Error{Kind: loader.KindNoLoader, Table: table.Name}
		}

		count := 0
		err := strat.Extract(func(rec loader.Record) error {
			count++
			return sink.Add(ctx, rec)
		})
		if err != nil {
			return nil, err
		}

		if err := sink.Flush(ctx); err != nil {
			return nil, err
		}

		log.Debug("table loaded",
			"table", table.Name,
			"strategy", strat.Name(),
			"records", count,
		)
		results = append(results, TableResult{
			Table:    table.Name,
			Strategy: strat.Name(),
			Records:  count,
		})
	}

	return results, nil
}

// StrategyFor reports which strategy currently validates for a table,
// for status endpoints. Returns false when none applies.
func (s *Service) StrategyFor(tableName string) (string, bool) {
	table, ok := s.catalog.Table(tableName)
	if !ok {
		return "", false
	}
	model, _ := Get(table.Name)

	models := loader.ModelMap{}
	if s.cfg.Loader.MapNested {
		models = ModelMap()
	}

	strat, ok := loader.For(s.cfg.Loader.DataDir, table, model.Mapping, models, s.catalog)
	if !ok {
		return "", false
	}
	return strat.Name(), true
}

// IsConflict reports whether err is a persistence conflict.
func IsConflict(err error) bool {
	var le *loader.Error
	return errors.As(err, &le) && le.Kind == loader.KindPersistenceConflict
}
