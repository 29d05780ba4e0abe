package core

import (
	"fmt"
	"sort"
	"sync"

	"github.com/dirseed/dirseed/internal/loader"
)

// Model binds a table name to its column mapping rules. Registering a
// model is what marks a table as a load target; tables without a model
// are skipped or rejected depending on configuration.
type Model struct {
	// Table is the database table the model populates.
	Table string

	// Mapping holds the per-column derivation rules (file name, folder
	// name). Nil means every column reads from document content.
	Mapping loader.ColumnMap
}

var (
	registry   = make(map[string]Model)
	registryMu sync.RWMutex
)

// Register adds a model to the registry.
// Panics if a model for the same table is already registered.
func Register(m Model) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[m.Table]; exists {
		panic(fmt.Sprintf("model already registered: %s", m.Table))
	}
	registry[m.Table] = m
}

// Get returns the model for a table.
// Returns false if not found.
func Get(table string) (Model, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	m, ok := registry[table]
	return m, ok
}

// All returns every registered model, sorted by table name for
// consistent ordering.
func All() []Model {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]Model, 0, len(registry))
	for _, m := range registry {
		result = append(result, m)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Table < result[j].Table
	})
	return result
}

// ModelMap returns the registered tables as a loader.ModelMap for
// nested child expansion.
func ModelMap() loader.ModelMap {
	registryMu.RLock()
	defer registryMu.RUnlock()

	mm := make(loader.ModelMap, len(registry))
	for table, m := range registry {
		mm[table] = m.Mapping
	}
	return mm
}

// ModelCount returns the number of registered models.
func ModelCount() int {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return len(registry)
}

// Clear removes all registered models.
// Primarily useful for testing.
func Clear() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[string]Model)
}
