// Package loader discovers how a table's data directory is laid out and
// extracts rows from it. Two strategies exist: a single aggregate file
// (`_all.yml`) holding every record as a list, and one-file-per-record
// scattered through a subtree. Strategies are validated against the
// directory shape and the first valid one wins; a table with no valid
// strategy is a normal outcome, not an error.
package loader

import (
	"strings"

	"github.com/dirseed/dirseed/internal/schema"
)

// AggregateFileName is the marker file for the aggregate strategy.
const AggregateFileName = "_all.yml"

// yamlExtensions are the file suffixes the directory strategy accepts.
var yamlExtensions = []string{".yml", ".yaml", ".YML", ".YAML"}

// Strategy is a table-bound extraction plan. A strategy instance is only
// meaningful if Validate succeeded against the current directory shape;
// callers revalidate per table rather than caching instances.
type Strategy interface {
	// Name identifies the strategy for logs.
	Name() string

	// Validate checks the strategy's precondition against the data
	// directory. A non-nil error means "not applicable".
	Validate() error

	// Extract streams records one at a time through emit, children
	// before their parent. A non-nil error from emit aborts the walk
	// and is returned unchanged.
	Extract(emit func(Record) error) error
}

// For selects the strategy for one table by trying candidates in fixed
// precedence order: aggregate file first, then directory. It returns
// false when neither validates, which callers must treat as "no loader"
// rather than a failure.
func For(dataDir string, table *schema.Table, columns ColumnMap, models ModelMap, catalog *schema.Catalog) (Strategy, bool) {
	candidates := []Strategy{
		&AggregateStrategy{DataDir: dataDir, Table: table},
		&DirectoryStrategy{
			DataDir: dataDir,
			Table:   table,
			Columns: columns,
			Models:  models,
			Catalog: catalog,
		},
	}

	for _, s := range candidates {
		if err := s.Validate(); err == nil {
			return s, true
		}
	}
	return nil, false
}

// hasYAMLExtension mirrors a suffix match against the recognized
// extension variants, so "notes.txt" and "data.json" both fail.
func hasYAMLExtension(name string) bool {
	for _, ext := range yamlExtensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// withTable stamps a table name onto a loader error that was produced
// below the table level (e.g. by ParseFile).
func withTable(err error, table string) error {
	if le, ok := err.(*Error); ok && le.Table == "" {
		le.Table = table
	}
	return err
}
