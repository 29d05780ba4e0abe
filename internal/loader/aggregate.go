package loader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dirseed/dirseed/internal/schema"
)

// AggregateStrategy loads every record for a table from a single
// `_all.yml` file directly under the table's directory. The presence of
// that file is necessary and sufficient: other files in the directory do
// not affect selection. Column values are read by name from each entry;
// no derived mappings and no nested expansion apply.
type AggregateStrategy struct {
	DataDir string
	Table   *schema.Table
}

var errNotApplicable = errors.New("strategy not applicable")

func (s *AggregateStrategy) Name() string { return "aggregate" }

// dataPath is <dataDir>/<table>/_all.yml.
func (s *AggregateStrategy) dataPath() string {
	return filepath.Join(s.DataDir, s.Table.Name, AggregateFileName)
}

// Validate requires _all.yml to exist as a regular file.
func (s *AggregateStrategy) Validate() error {
	info, err := os.Stat(s.dataPath())
	if err != nil || !info.Mode().IsRegular() {
		return errNotApplicable
	}
	return nil
}

// Extract parses _all.yml as a sequence of mappings and emits one record
// per entry in file order. Keys missing from an entry become nil values;
// compound values are canonicalized to JSON strings.
func (s *AggregateStrategy) Extract(emit func(Record) error) error {
	path := s.dataPath()

	doc, err := ParseFile(path)
	if err != nil {
		return withTable(err, s.Table.Name)
	}
	if !doc.IsSequence() {
		return &Error{
			Kind:  KindInvalidFormat,
			Table: s.Table.Name,
			Path:  path,
			Err:   fmt.Errorf("aggregate file must be a sequence of mappings"),
		}
	}

	for _, entry := range doc.Sequence {
		values := make(map[string]any, len(s.Table.Columns))
		for _, col := range s.Table.Columns {
			raw, ok := entry[col.Name]
			if !ok {
				values[col.Name] = nil
				continue
			}
			v, err := canonicalValue(raw)
			if err != nil {
				return &Error{Kind: KindInvalidFormat, Table: s.Table.Name, Path: path, Err: err}
			}
			values[col.Name] = v
		}

		if err := emit(Record{Table: s.Table.Name, Values: values}); err != nil {
			return err
		}
	}
	return nil
}
