package loader

// Rule tells the directory strategy where a column's value comes from.
type Rule int

const (
	// RuleNone takes the value from the document by column name.
	RuleNone Rule = iota

	// RuleFileName derives the value from the file name without its
	// extension.
	RuleFileName

	// RuleFolderName derives the value from the name of the file's
	// immediate parent directory.
	RuleFolderName
)

// ColumnMap assigns a Rule per column name. Columns without an entry
// behave as RuleNone. A ColumnMap is supplied per table by configuration
// and treated as immutable for a load run.
type ColumnMap map[string]Rule

// ModelMap names the tables eligible for nested child expansion, each
// with its own column mapping rules. An empty ModelMap disables nested
// expansion entirely.
type ModelMap map[string]ColumnMap
