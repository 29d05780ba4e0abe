package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dirseed/dirseed/internal/schema"
)

func widgetsTable() *schema.Table {
	return &schema.Table{
		Name: "widgets",
		Columns: []schema.Column{
			{Name: "id", DataType: "integer"},
			{Name: "name", DataType: "text", Nullable: true},
		},
	}
}

func TestFor_AggregateWins(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "widgets/_all.yml", "- name: A\n")
	// Other files in the directory do not affect aggregate selection,
	// even ones the directory strategy would reject.
	writeFile(t, dir, "widgets/notes.txt", "scratch")
	writeFile(t, dir, "widgets/extra.yml", "name: B\n")

	catalog := schema.NewCatalog(widgetsTable())
	strat, ok := For(dir, widgetsTable(), nil, nil, catalog)
	if !ok {
		t.Fatal("For() found no strategy, want aggregate")
	}
	if strat.Name() != "aggregate" {
		t.Errorf("strategy = %q, want aggregate", strat.Name())
	}
}

func TestFor_DirectoryWhenOnlyYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "widgets/a.yml", "name: A\n")
	writeFile(t, dir, "widgets/deep/nested/b.yaml", "name: B\n")
	writeFile(t, dir, "widgets/c.YML", "name: C\n")
	writeFile(t, dir, "widgets/d.YAML", "name: D\n")

	catalog := schema.NewCatalog(widgetsTable())
	strat, ok := For(dir, widgetsTable(), nil, nil, catalog)
	if !ok {
		t.Fatal("For() found no strategy, want directory")
	}
	if strat.Name() != "directory" {
		t.Errorf("strategy = %q, want directory", strat.Name())
	}
}

// A single unrecognized file anywhere in the subtree invalidates the
// directory strategy entirely.
func TestFor_DirectoryFailsClosed(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "widgets/a.yml", "name: A\n")
	writeFile(t, dir, "widgets/deep/readme.md", "# notes\n")

	catalog := schema.NewCatalog(widgetsTable())
	if _, ok := For(dir, widgetsTable(), nil, nil, catalog); ok {
		t.Error("For() selected a strategy, want none")
	}
}

func TestFor_NoBackingDirectory(t *testing.T) {
	dir := t.TempDir()

	catalog := schema.NewCatalog(widgetsTable())
	if _, ok := For(dir, widgetsTable(), nil, nil, catalog); ok {
		t.Error("For() selected a strategy for a missing directory, want none")
	}
}

func TestFor_EmptyDirectoryValidates(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "widgets"), 0o755); err != nil {
		t.Fatal(err)
	}

	catalog := schema.NewCatalog(widgetsTable())
	strat, ok := For(dir, widgetsTable(), nil, nil, catalog)
	if !ok {
		t.Fatal("For() found no strategy for empty directory, want directory")
	}

	count := 0
	err := strat.Extract(func(Record) error { count++; return nil })
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if count != 0 {
		t.Errorf("Extract() emitted %d records, want 0", count)
	}
}

// Selection is revalidated per call; a directory change between calls
// changes the outcome.
func TestFor_Revalidates(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "widgets/a.yml", "name: A\n")

	catalog := schema.NewCatalog(widgetsTable())
	strat, ok := For(dir, widgetsTable(), nil, nil, catalog)
	if !ok || strat.Name() != "directory" {
		t.Fatalf("first For() = %v, %v; want directory", strat, ok)
	}

	writeFile(t, dir, "widgets/_all.yml", "- name: B\n")
	strat, ok = For(dir, widgetsTable(), nil, nil, catalog)
	if !ok || strat.Name() != "aggregate" {
		t.Fatalf("second For() = %v, %v; want aggregate", strat, ok)
	}
}
