package loader

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Document is one parsed YAML file: either a single mapping (directory
// strategy files) or a sequence of mappings (aggregate files). Exactly
// one of the two fields is set.
type Document struct {
	Mapping  map[string]any
	Sequence []map[string]any
}

// IsSequence reports whether the document's top level was a sequence.
func (d *Document) IsSequence() bool {
	return d.Sequence != nil
}

// ParseFile reads path as UTF-8 YAML and validates its shape: the top
// level must be a mapping, or a sequence whose every element is a
// mapping. Mixed-type sequences are rejected. The parsed values are
// returned unchanged apart from normalizing YAML map keys to strings.
func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Kind: KindUnreadable, Path: path, Err: err}
	}

	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &Error{Kind: KindInvalidFormat, Path: path, Err: err}
	}

	switch v := raw.(type) {
	case []any:
		seq := make([]map[string]any, 0, len(v))
		for i, elem := range v {
			m, ok := asMapping(elem)
			if !ok {
				return nil, &Error{
					Kind: KindInvalidFormat,
					Path: path,
					Err:  fmt.Errorf("sequence element %d is not a mapping", i),
				}
			}
			seq = append(seq, m)
		}
		return &Document{Sequence: seq}, nil
	default:
		m, ok := asMapping(raw)
		if !ok {
			return nil, &Error{
				Kind: KindInvalidFormat,
				Path: path,
				Err:  fmt.Errorf("top-level value is neither a mapping nor a sequence of mappings"),
			}
		}
		return &Document{Mapping: m}, nil
	}
}

// asMapping converts a decoded YAML value to a string-keyed map.
// yaml.v3 already produces map[string]any for string keys; non-string
// keys make the value a non-mapping for our purposes.
func asMapping(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			s, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[s] = val
		}
		return out, true
	default:
		return nil, false
	}
}
