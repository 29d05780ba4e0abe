package schema

import (
	"fmt"
	"sort"
)

// Sorted returns the catalog's tables in dependency order: every table
// appears after the tables its foreign keys reference. Ties break
// alphabetically so the order is deterministic across runs. Self
// references are ignored. A reference cycle between distinct tables is
// an error naming the tables involved.
func (c *Catalog) Sorted() ([]*Table, error) {
	// Kahn's algorithm over the FK graph, parent → child.
	indegree := make(map[string]int, len(c.tables))
	children := make(map[string][]string, len(c.tables))

	for name := range c.tables {
		indegree[name] = 0
	}
	for name, t := range c.tables {
		for _, fk := range t.ForeignKeys {
			if fk.RefTable == name {
				continue
			}
			if _, known := c.tables[fk.RefTable]; !known {
				continue
			}
			children[fk.RefTable] = append(children[fk.RefTable], name)
			indegree[name]++
		}
	}

	var ready []string
	for name, deg := range indegree {
		if deg == 0 {
			ready = append(ready, name)
		}
	}
	sort.Strings(ready)

	ordered := make([]*Table, 0, len(c.tables))
	for len(ready) > 0 {
		name := ready[0]
		ready = ready[1:]
		ordered = append(ordered, c.tables[name])

		next := children[name]
		sort.Strings(next)
		for _, child := range next {
			indegree[child]--
			if indegree[child] == 0 {
				// Insert keeping ready sorted.
				i := sort.SearchStrings(ready, child)
				ready = append(ready, "")
				copy(ready[i+1:], ready[i:])
				ready[i] = child
			}
		}
	}

	if len(ordered) != len(c.tables) {
		var stuck []string
		for name, deg := range indegree {
			if deg > 0 {
				stuck = append(stuck, name)
			}
		}
		sort.Strings(stuck)
		return nil, fmt.Errorf("foreign key cycle involving tables %v", stuck)
	}

	return ordered, nil
}
