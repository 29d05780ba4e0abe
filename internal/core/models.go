package core

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dirseed/dirseed/internal/loader"
)

// modelSpec is the YAML shape of one model entry in a models file:
//
//	authors:
//	  columns:
//	    slug: file_name
//	    shelf: folder_name
//	books: {}
type modelSpec struct {
	Columns map[string]string `yaml:"columns"`
}

// ruleNames maps the models-file rule spellings to loader rules.
var ruleNames = map[string]loader.Rule{
	"file_name":   loader.RuleFileName,
	"folder_name": loader.RuleFolderName,
}

// RegisterFromFile reads a YAML models file and registers one model per
// entry. An unrecognized column rule name is a configuration error.
func RegisterFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read models file: %w", err)
	}

	var specs map[string]modelSpec
	if err := yaml.Unmarshal(data, &specs); err != nil {
		return fmt.Errorf("parse models file %s: %w", path, err)
	}

	for table, spec := range specs {
		mapping := make(loader.ColumnMap, len(spec.Columns))
		for column, name := range spec.Columns {
			rule, ok := ruleNames[name]
			if !ok {
				return &loader.Error{
					Kind:  loader.KindInvalidMapping,
					Table: table,
					Path:  path,
					Err:   fmt.Errorf("unknown column mapping %q for column %q", name, column),
				}
			}
			mapping[column] = rule
		}
		Register(Model{Table: table, Mapping: mapping})
	}
	return nil
}
