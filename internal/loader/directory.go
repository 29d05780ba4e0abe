package loader

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dirseed/dirseed/internal/schema"
)

// DirectoryStrategy loads one record per YAML file scattered at any
// depth under the table's directory. Column values come from the file's
// mapping, or are derived from the file/folder name when a mapping rule
// says so. When Models is non-empty, a key that names a sibling table
// and holds a sequence expands into child records for that table, linked
// to the current record through the child table's foreign keys.
type DirectoryStrategy struct {
	DataDir string
	Table   *schema.Table
	Columns ColumnMap
	Models  ModelMap
	Catalog *schema.Catalog
}

func (s *DirectoryStrategy) Name() string { return "directory" }

// root is <dataDir>/<table>.
func (s *DirectoryStrategy) root() string {
	return filepath.Join(s.DataDir, s.Table.Name)
}

// Validate requires the table directory to exist and every regular file
// under it, at any depth, to carry a recognized YAML extension. A single
// non-matching file invalidates the whole strategy; validation fails
// closed rather than skipping files.
func (s *DirectoryStrategy) Validate() error {
	info, err := os.Stat(s.root())
	if err != nil || !info.IsDir() {
		return errNotApplicable
	}

	return filepath.WalkDir(s.root(), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return errNotApplicable
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if !hasYAMLExtension(d.Name()) {
			return errNotApplicable
		}
		return nil
	})
}

// Extract walks the table directory in lexical order and emits the
// records built from each file, children before their parent.
func (s *DirectoryStrategy) Extract(emit func(Record) error) error {
	return filepath.WalkDir(s.root(), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return &Error{Kind: KindUnreadable, Table: s.Table.Name, Path: path, Err: err}
		}
		if !d.Type().IsRegular() {
			return nil
		}
		return s.extractFile(path, emit)
	})
}

// extractFile parses one file as a single mapping and builds its record
// tree.
func (s *DirectoryStrategy) extractFile(path string, emit func(Record) error) error {
	doc, err := ParseFile(path)
	if err != nil {
		return withTable(err, s.Table.Name)
	}
	if doc.IsSequence() {
		return &Error{
			Kind:  KindInvalidFormat,
			Table: s.Table.Name,
			Path:  path,
			Err:   fmt.Errorf("file must contain a single mapping"),
		}
	}

	return s.buildEntry(s.Table, s.Columns, doc.Mapping, path, emit)
}

// buildEntry assembles the record for one data entry and emits it, after
// first emitting any child records expanded from embedded sequences.
// Value precedence per column: derived mapping rule, then the document's
// own value, then nil. A key is matched against declared columns before
// sibling table names; a key that is both is a column value, never an
// expansion.
func (s *DirectoryStrategy) buildEntry(table *schema.Table, columns ColumnMap, entry map[string]any, path string, emit func(Record) error) error {
	values := make(map[string]any, len(table.Columns))

	// Mapped columns first. An unrecognized rule is a configuration bug
	// and fails before any document value is read.
	for _, col := range table.Columns {
		switch rule := columns[col.Name]; rule {
		case RuleNone:
		case RuleFileName:
			values[col.Name] = fileStem(path)
		case RuleFolderName:
			values[col.Name] = filepath.Base(filepath.Dir(path))
		default:
			return &Error{
				Kind:  KindInvalidMapping,
				Table: table.Name,
				Path:  path,
				Err:   fmt.Errorf("unknown column mapping %d for column %q", rule, col.Name),
			}
		}
	}

	for _, key := range sortedKeys(entry) {
		if !table.HasColumn(key) {
			continue
		}
		if _, mapped := values[key]; mapped {
			// A derived mapping always beats the document value.
			continue
		}
		v, err := canonicalValue(entry[key])
		if err != nil {
			return &Error{Kind: KindInvalidFormat, Table: table.Name, Path: path, Err: err}
		}
		values[key] = v
	}

	// The record's value set is total over declared columns.
	for _, col := range table.Columns {
		if _, ok := values[col.Name]; !ok {
			values[col.Name] = nil
		}
	}

	if len(s.Models) > 0 {
		if err := s.expandChildren(table, entry, values, path, emit); err != nil {
			return err
		}
	}

	return emit(Record{Table: table.Name, Values: values})
}

// expandChildren emits child records for every entry key that names a
// known sibling table and holds a sequence. Each child entry receives
// the parent's value for every foreign key the child table declares
// against the parent, then is built with the child table's own mapping
// rules, recursively.
func (s *DirectoryStrategy) expandChildren(parent *schema.Table, entry map[string]any, parentValues map[string]any, path string, emit func(Record) error) error {
	for _, key := range sortedKeys(entry) {
		if parent.HasColumn(key) {
			continue
		}
		childColumns, known := s.Models[key]
		if !known {
			continue
		}
		childTable, ok := s.Catalog.Table(key)
		if !ok {
			continue
		}
		seq, ok := entry[key].([]any)
		if !ok {
			continue
		}

		fks := childTable.ConstraintsReferencing(parent.Name)

		for i, elem := range seq {
			childEntry, ok := asMapping(elem)
			if !ok {
				return &Error{
					Kind:  KindInvalidFormat,
					Table: childTable.Name,
					Path:  path,
					Err:   fmt.Errorf("embedded %q element %d is not a mapping", key, i),
				}
			}

			linked := make(map[string]any, len(childEntry)+len(fks))
			for k, v := range childEntry {
				linked[k] = v
			}
			for _, fk := range fks {
				linked[fk.Column] = parentValues[fk.RefColumn]
			}

			if err := s.buildEntry(childTable, childColumns, linked, path, emit); err != nil {
				return err
			}
		}
	}
	return nil
}

// fileStem returns the file name without its extension.
func fileStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// sortedKeys keeps entry iteration deterministic.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
