package search

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/wunjo/internal/storage"
)

func testSearcher(t *testing.T, files map[string]string) *Searcher {
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
	return NewSearcher(fs)
}

func TestSearchInFile(t *testing.T) {
	s := testSearcher(t, map[string]string{
		"note.md": "Alpha beta\ngamma alpha ALPHA\nnothing here",
	})

	r := s.SearchInFile("note.md", "alpha", false)
	if r == nil {
		t.Fatal("no result")
	}
	if r.MatchCount != 3 {
		t.Errorf("match count = %d, want 3", r.MatchCount)
	}
	if len(r.Matches) != 2 {
		t.Fatalf("matched lines = %d, want 2", len(r.Matches))
	}
	if r.Matches[0].LineNumber != 1 || r.Matches[1].LineNumber != 2 {
		t.Errorf("line numbers = %d, %d", r.Matches[0].LineNumber, r.Matches[1].LineNumber)
	}
	// Offsets index the original line and Text keeps its casing.
	first := r.Matches[0].Matches[0]
	if first.Start != 0 || first.End != 5 || first.Text != "Alpha" {
		t.Errorf("first match = %+v", first)
	}
}

func TestSearchCaseSensitivity(t *testing.T) {
	s := testSearcher(t, map[string]string{
		"note.md": "Alpha\nalpha",
	})

	if r := s.SearchInFile("note.md", "alpha", false); r == nil || r.MatchCount != 2 {
		t.Errorf("insensitive count = %v, want 2", r)
	}
	if r := s.SearchInFile("note.md", "alpha", true); r == nil || r.MatchCount != 1 {
		t.Errorf("sensitive count = %v, want 1", r)
	}
}

func TestSearchInFileNoMatch(t *testing.T) {
	s := testSearcher(t, map[string]string{"note.md": "content"})

	if r := s.SearchInFile("note.md", "absent", false); r != nil {
		t.Errorf("result = %+v, want nil", r)
	}
	if r := s.SearchInFile("missing.md", "x", false); r != nil {
		t.Errorf("missing file result = %+v, want nil", r)
	}
}

func TestSearchOverlapping(t *testing.T) {
	s := testSearcher(t, map[string]string{"note.md": "aaaa"})

	r := s.SearchInFile("note.md", "aa", false)
	if r == nil || r.MatchCount != 2 {
		t.Errorf("non-overlapping count = %v, want 2", r)
	}
}

func TestSearchFilesSorted(t *testing.T) {
	s := testSearcher(t, map[string]string{
		"one.md": "hit",
		"two.md": "hit hit\nhit",
	})

	results, err := s.SearchFiles("", "hit", []string{".md"}, false, 0)
	if err != nil {
		t.Fatalf("SearchFiles: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}
	if results[0].Filename != "two.md" || results[0].MatchCount != 3 {
		t.Errorf("first result = %+v", results[0])
	}
	if got := TotalMatches(results); got != 4 {
		t.Errorf("total matches = %d, want 4", got)
	}
}

func TestSearchFilesLimit(t *testing.T) {
	s := testSearcher(t, map[string]string{
		"a.md": "hit",
		"b.md": "hit hit",
		"c.md": "hit hit hit",
	})

	// The limit caps scanning, so only the first two files in walk order
	// are collected before sorting.
	results, err := s.SearchFiles("", "hit", []string{".md"}, false, 2)
	if err != nil {
		t.Fatalf("SearchFiles: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}
	if results[0].Filename != "b.md" {
		t.Errorf("first result = %+v", results[0])
	}
}

func TestSearchFilesFolderScope(t *testing.T) {
	s := testSearcher(t, map[string]string{
		"work/deep/note.md": "hit",
		"other.md":          "hit",
	})

	results, err := s.SearchFiles("work", "hit", []string{".md"}, false, 0)
	if err != nil {
		t.Fatalf("SearchFiles: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("results = %d, want 1", len(results))
	}
	if results[0].Path != "work/deep/note.md" || results[0].RelativePath != "deep/note.md" {
		t.Errorf("paths = %q / %q", results[0].Path, results[0].RelativePath)
	}
}

func TestSearchFilesExtensionFilter(t *testing.T) {
	s := testSearcher(t, map[string]string{
		"a.md":  "hit",
		"b.txt": "hit",
	})

	results, err := s.SearchFiles("", "hit", []string{".txt"}, false, 0)
	if err != nil {
		t.Fatalf("SearchFiles: %v", err)
	}
	if len(results) != 1 || results[0].Filename != "b.txt" {
		t.Errorf("results = %+v", results)
	}
}

func TestQuickSearch(t *testing.T) {
	s := testSearcher(t, map[string]string{
		"Projects.md": "nothing relevant",
		"daily.md":    "working on the project today",
		"other.md":    "unrelated",
	})

	results, err := s.QuickSearch("", "project")
	if err != nil {
		t.Fatalf("QuickSearch: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2: %+v", len(results), results)
	}

	byName := map[string]string{}
	for _, r := range results {
		byName[r.Filename] = r.MatchedIn
	}
	if byName["Projects.md"] != "filename" {
		t.Errorf("Projects.md matched in %q, want filename", byName["Projects.md"])
	}
	if byName["daily.md"] != "content" {
		t.Errorf("daily.md matched in %q, want content", byName["daily.md"])
	}
}
