package loader

import (
	"testing"

	"github.com/dirseed/dirseed/internal/schema"
)

func postsTable() *schema.Table {
	return &schema.Table{
		Name: "posts",
		Columns: []schema.Column{
			{Name: "id", DataType: "integer"},
			{Name: "title", DataType: "text", Nullable: true},
		},
	}
}

func commentsTable() *schema.Table {
	return &schema.Table{
		Name: "comments",
		Columns: []schema.Column{
			{Name: "body", DataType: "text", Nullable: true},
			{Name: "post_id", DataType: "integer"},
		},
		ForeignKeys: []schema.ForeignKey{
			{Column: "post_id", RefTable: "posts", RefColumn: "id"},
		},
	}
}

func TestDirectory_SimpleRecord(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "widgets/a.yml", "name: A\n")

	s := &DirectoryStrategy{
		DataDir: dir,
		Table:   widgetsTable(),
		Catalog: schema.NewCatalog(widgetsTable()),
	}
	records := collect(t, s)
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if records[0].Values["name"] != "A" {
		t.Errorf("name = %v, want A", records[0].Values["name"])
	}
	if records[0].Values["id"] != nil {
		t.Errorf("id = %v, want nil", records[0].Values["id"])
	}
}

func TestDirectory_StableWalkOrder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "widgets/b.yml", "name: B\n")
	writeFile(t, dir, "widgets/a.yml", "name: A\n")
	writeFile(t, dir, "widgets/sub/c.yml", "name: C\n")

	s := &DirectoryStrategy{
		DataDir: dir,
		Table:   widgetsTable(),
		Catalog: schema.NewCatalog(widgetsTable()),
	}
	records := collect(t, s)
	got := []any{records[0].Values["name"], records[1].Values["name"], records[2].Values["name"]}
	want := []any{"A", "B", "C"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("walk order = %v, want %v", got, want)
		}
	}
}

// A derived mapping rule always wins over the document's own value for
// that column.
func TestDirectory_FileNameRuleBeatsDocument(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "widgets/foo.yml", "name: from-document\n")

	s := &DirectoryStrategy{
		DataDir: dir,
		Table:   widgetsTable(),
		Columns: ColumnMap{"name": RuleFileName},
		Catalog: schema.NewCatalog(widgetsTable()),
	}
	records := collect(t, s)
	if records[0].Values["name"] != "foo" {
		t.Errorf("name = %v, want foo (file stem)", records[0].Values["name"])
	}
}

func TestDirectory_FolderNameRule(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "widgets/shelf-a/item.yml", "id: 1\n")

	s := &DirectoryStrategy{
		DataDir: dir,
		Table:   widgetsTable(),
		Columns: ColumnMap{"name": RuleFolderName},
		Catalog: schema.NewCatalog(widgetsTable()),
	}
	records := collect(t, s)
	if records[0].Values["name"] != "shelf-a" {
		t.Errorf("name = %v, want shelf-a", records[0].Values["name"])
	}
}

func TestDirectory_UnknownRule(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "widgets/a.yml", "name: A\n")

	s := &DirectoryStrategy{
		DataDir: dir,
		Table:   widgetsTable(),
		Columns: ColumnMap{"name": Rule(99)},
		Catalog: schema.NewCatalog(widgetsTable()),
	}
	err := s.Extract(func(Record) error { return nil })
	if err == nil {
		t.Fatal("Extract() error = nil, want InvalidMapping")
	}
	if kind, _ := KindOf(err); kind != KindInvalidMapping {
		t.Errorf("error kind = %v, want %v", kind, KindInvalidMapping)
	}
}

func TestDirectory_SequenceFileRejected(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "widgets/a.yml", "- name: A\n")

	s := &DirectoryStrategy{
		DataDir: dir,
		Table:   widgetsTable(),
		Catalog: schema.NewCatalog(widgetsTable()),
	}
	err := s.Extract(func(Record) error { return nil })
	if kind, _ := KindOf(err); kind != KindInvalidFormat {
		t.Errorf("error kind = %v, want %v", kind, KindInvalidFormat)
	}
}

func TestDirectory_NestedExpansion(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "posts/p1.yml",
		"id: 5\ntitle: T\ncomments:\n  - body: hi\n  - body: bye\n")

	catalog := schema.NewCatalog(postsTable(), commentsTable())
	s := &DirectoryStrategy{
		DataDir: dir,
		Table:   postsTable(),
		Models:  ModelMap{"posts": nil, "comments": nil},
		Catalog: catalog,
	}

	records := collect(t, s)
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3 (2 children + parent)", len(records))
	}

	// Children come before their parent.
	if records[0].Table != "comments" || records[1].Table != "comments" {
		t.Fatalf("first records = %s, %s; want comments, comments", records[0].Table, records[1].Table)
	}
	if records[2].Table != "posts" {
		t.Fatalf("last record = %s, want posts", records[2].Table)
	}

	// Every child carries the parent's FK value at yield time.
	for i, child := range records[:2] {
		if child.Values["post_id"] != 5 {
			t.Errorf("child %d post_id = %v, want 5", i, child.Values["post_id"])
		}
	}
	if records[0].Values["body"] != "hi" || records[1].Values["body"] != "bye" {
		t.Errorf("child bodies = %v, %v; want hi, bye", records[0].Values["body"], records[1].Values["body"])
	}
}

// Child tables keep their own mapping rules during expansion.
func TestDirectory_NestedChildMappingApplies(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "posts/p1.yml", "id: 5\ncomments:\n  - body: hi\n")

	catalog := schema.NewCatalog(postsTable(), commentsTable())
	s := &DirectoryStrategy{
		DataDir: dir,
		Table:   postsTable(),
		Models:  ModelMap{"comments": {"body": RuleFileName}},
		Catalog: catalog,
	}

	records := collect(t, s)
	if records[0].Values["body"] != "p1" {
		t.Errorf("child body = %v, want p1 (file stem)", records[0].Values["body"])
	}
	if records[0].Values["post_id"] != 5 {
		t.Errorf("child post_id = %v, want 5", records[0].Values["post_id"])
	}
}

// With an empty model map, keys that look like nested-table sequences
// are ignored, not errors.
func TestDirectory_NestedDisabled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "posts/p1.yml", "id: 5\ncomments:\n  - body: hi\n")

	catalog := schema.NewCatalog(postsTable(), commentsTable())
	s := &DirectoryStrategy{
		DataDir: dir,
		Table:   postsTable(),
		Catalog: catalog,
	}

	records := collect(t, s)
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1 (no expansion)", len(records))
	}
	if records[0].Table != "posts" {
		t.Errorf("record table = %s, want posts", records[0].Table)
	}
}

// A key that names both a declared column and a sibling table is a
// column value, never an expansion.
func TestDirectory_ColumnBeatsTableName(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "posts/p1.yml", "id: 5\ncomments:\n  - body: hi\n")

	// A posts table that also declares a "comments" column.
	posts := &schema.Table{
		Name: "posts",
		Columns: []schema.Column{
			{Name: "id", DataType: "integer"},
			{Name: "comments", DataType: "text", Nullable: true},
		},
	}
	catalog := schema.NewCatalog(posts, commentsTable())
	s := &DirectoryStrategy{
		DataDir: dir,
		Table:   posts,
		Models:  ModelMap{"comments": nil},
		Catalog: catalog,
	}

	records := collect(t, s)
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1 (no expansion)", len(records))
	}
	if records[0].Values["comments"] != `[{"body":"hi"}]` {
		t.Errorf("comments = %v, want canonical JSON string", records[0].Values["comments"])
	}
}

func TestDirectory_NonSequenceTableKeyIgnored(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "posts/p1.yml", "id: 5\ncomments: not-a-sequence\n")

	catalog := schema.NewCatalog(postsTable(), commentsTable())
	s := &DirectoryStrategy{
		DataDir: dir,
		Table:   postsTable(),
		Models:  ModelMap{"comments": nil},
		Catalog: catalog,
	}

	records := collect(t, s)
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
}

func TestDirectory_NestedNonMappingElement(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "posts/p1.yml", "id: 5\ncomments:\n  - just a string\n")

	catalog := schema.NewCatalog(postsTable(), commentsTable())
	s := &DirectoryStrategy{
		DataDir: dir,
		Table:   postsTable(),
		Models:  ModelMap{"comments": nil},
		Catalog: catalog,
	}

	err := s.Extract(func(Record) error { return nil })
	if kind, _ := KindOf(err); kind != KindInvalidFormat {
		t.Errorf("error kind = %v, want %v", kind, KindInvalidFormat)
	}
}
