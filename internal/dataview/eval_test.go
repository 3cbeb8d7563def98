package dataview

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/starford/wunjo/internal/storage"
)

func testEngine(t *testing.T, files map[string]string) *Engine {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		full := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	fs, err := storage.NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return NewEngine(fs)
}

func TestExecuteTableSorted(t *testing.T) {
	eng := testEngine(t, map[string]string{
		"small.md": "#project tiny",
		"big.md":   "#project this file is clearly the larger of the two",
		"other.md": "#personal not part of the project",
	})

	q := ParseQuery("TABLE file.name, file.size\nFROM #project\nSORT file.size DESC")
	res, err := eng.Execute(q, "")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	table, ok := res.(*TableResult)
	if !ok {
		t.Fatalf("result type %T", res)
	}
	if diff := cmp.Diff([]string{"file.name", "file.size"}, table.Headers); diff != "" {
		t.Errorf("headers mismatch (-want +got):\n%s", diff)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(table.Rows))
	}
	if table.Rows[0][0] != "big.md" || table.Rows[1][0] != "small.md" {
		t.Errorf("row order = %v, %v", table.Rows[0][0], table.Rows[1][0])
	}
}

func TestExecuteList(t *testing.T) {
	eng := testEngine(t, map[string]string{
		"a.md": "#keep one",
		"b.md": "#drop two",
	})

	res, err := eng.Execute(ParseQuery("LIST\nFROM #keep"), "")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	list, ok := res.(*ListResult)
	if !ok {
		t.Fatalf("result type %T", res)
	}
	if len(list.Items) != 1 || list.Items[0].File.Name != "a.md" {
		t.Errorf("items = %+v", list.Items)
	}
}

func TestExecuteWhereContains(t *testing.T) {
	files := map[string]string{
		"notes/alpha.md":    "plain",
		"archive/beta.md":   "plain",
		"archive/gamma.md":  "plain",
		"notes/template.md": "plain",
	}

	eng := testEngine(t, files)
	q := ParseQuery("TABLE file.path\nFROM x\nWHERE contains(file.path, \"archive\")")
	res, err := eng.Execute(q, "")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	table := res.(*TableResult)
	if len(table.Rows) != 2 {
		t.Fatalf("rows = %d, want 2: %v", len(table.Rows), table.Rows)
	}

	// Negated form keeps the complement.
	q = ParseQuery("TABLE file.path\nFROM x\nWHERE !contains(file.path, \"archive\")")
	res, err = eng.Execute(q, "")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	table = res.(*TableResult)
	if len(table.Rows) != 2 {
		t.Fatalf("negated rows = %d, want 2: %v", len(table.Rows), table.Rows)
	}
	for _, row := range table.Rows {
		if p := row[0].(string); filepath.Dir(p) == "archive" {
			t.Errorf("negated filter kept %q", p)
		}
	}
}

func TestExecuteMultipleWhereClauses(t *testing.T) {
	files := map[string]string{
		"archive/report.md": "plain",
		"archive/notes.md":  "plain",
		"drafts/report.md":  "plain",
	}

	eng := testEngine(t, files)
	q := ParseQuery("TABLE file.path\nFROM x\nWHERE contains(file.path, \"archive\")\nWHERE contains(file.name, \"report\")")
	res, err := eng.Execute(q, "")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	table := res.(*TableResult)
	if len(table.Rows) != 1 {
		t.Fatalf("rows = %d, want 1 (both clauses must apply): %v", len(table.Rows), table.Rows)
	}
	if p := table.Rows[0][0].(string); p != "archive/report.md" {
		t.Errorf("row = %q, want archive/report.md", p)
	}
}

func TestExecuteFrontmatterFields(t *testing.T) {
	eng := testEngine(t, map[string]string{
		"task.md": "---\nstatus: done\npriority: 2\n---\nbody",
		"open.md": "---\nstatus: open\npriority: 1\n---\nbody",
	})

	q := ParseQuery("TABLE file.name, status\nFROM x\nSORT priority DESC")
	res, err := eng.Execute(q, "")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	table := res.(*TableResult)
	if len(table.Rows) != 2 {
		t.Fatalf("rows = %d", len(table.Rows))
	}
	if table.Rows[0][0] != "task.md" || table.Rows[0][1] != "done" {
		t.Errorf("first row = %v", table.Rows[0])
	}
}

func TestExecuteExpressions(t *testing.T) {
	eng := testEngine(t, map[string]string{
		"done.md": "---\nfinished: true\n---\nx",
	})

	q := ParseQuery("TABLE link(file.link, file.name) as Note, choice(finished, \"yes\", \"no\") as Done\nFROM x")
	res, err := eng.Execute(q, "")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	table := res.(*TableResult)
	if len(table.Rows) != 1 {
		t.Fatalf("rows = %d", len(table.Rows))
	}

	link, ok := table.Rows[0][0].(map[string]any)
	if !ok {
		t.Fatalf("link cell = %T %v", table.Rows[0][0], table.Rows[0][0])
	}
	if link["url"] != "done.md" || link["text"] != "done.md" {
		t.Errorf("link = %v", link)
	}
	if table.Rows[0][1] != "yes" {
		t.Errorf("choice cell = %v", table.Rows[0][1])
	}
}

func TestExecuteSortSkippedOnMixedTypes(t *testing.T) {
	eng := testEngine(t, map[string]string{
		"a.md": "---\nrank: 1\n---\nx",
		"b.md": "---\nrank: high\n---\nx",
	})

	q := ParseQuery("TABLE file.name\nFROM x\nSORT rank")
	res, err := eng.Execute(q, "")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	// Walk order is lexicographic, and mixed key types leave it untouched.
	table := res.(*TableResult)
	if table.Rows[0][0] != "a.md" || table.Rows[1][0] != "b.md" {
		t.Errorf("rows = %v", table.Rows)
	}
}

func TestExecuteFolderScope(t *testing.T) {
	eng := testEngine(t, map[string]string{
		"work/one.md": "x",
		"home/two.md": "x",
	})

	q := ParseQuery("TABLE file.path\nFROM x")
	res, err := eng.Execute(q, "work")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	table := res.(*TableResult)
	if len(table.Rows) != 1 {
		t.Fatalf("rows = %d", len(table.Rows))
	}
	// Paths come back relative to the queried folder.
	if table.Rows[0][0] != "one.md" {
		t.Errorf("path = %v", table.Rows[0][0])
	}
}

func TestExecuteNoFields(t *testing.T) {
	eng := testEngine(t, map[string]string{"a.md": "x"})

	res, err := eng.Execute(ParseQuery("TABLE\nFROM x"), "")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	table := res.(*TableResult)
	if diff := cmp.Diff([]string{"File"}, table.Headers); diff != "" {
		t.Errorf("headers mismatch (-want +got):\n%s", diff)
	}
	if len(table.Rows) != 1 || table.Rows[0][0] != "a.md" {
		t.Errorf("rows = %v", table.Rows)
	}
}

func TestExecuteMissingFolder(t *testing.T) {
	eng := testEngine(t, map[string]string{"a.md": "x"})

	if _, err := eng.Execute(ParseQuery("TABLE\nFROM x"), "nope"); err == nil {
		t.Error("expected error for missing folder")
	}
}
