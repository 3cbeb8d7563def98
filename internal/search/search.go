// Package search scans vault files for substring matches. Every search reads
// the files it inspects; nothing is indexed.
package search

import (
	"path"
	"sort"
	"strings"

	"github.com/starford/wunjo/internal/storage"
)

// LineMatch is one occurrence of the query within a line, with byte offsets
// into the line.
type LineMatch struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Text  string `json:"text"`
}

// FileMatch is one line of a file containing at least one occurrence.
type FileMatch struct {
	LineNumber int         `json:"line_number"`
	LineText   string      `json:"line_text"`
	Matches    []LineMatch `json:"matches"`
}

// Result is the per-file outcome of a content search.
type Result struct {
	Path         string      `json:"file_path"`
	Filename     string      `json:"filename"`
	RelativePath string      `json:"relative_path"`
	Matches      []FileMatch `json:"matches"`
	MatchCount   int         `json:"match_count"`
}

// QuickResult is the lightweight outcome of a quick search.
type QuickResult struct {
	Path         string `json:"file_path"`
	RelativePath string `json:"relative_path"`
	Filename     string `json:"filename"`
	MatchedIn    string `json:"matched_in"` // "filename" or "content"
}

// Searcher runs substring searches over the vault.
type Searcher struct {
	files storage.Provider
}

func NewSearcher(files storage.Provider) *Searcher {
	return &Searcher{files: files}
}

// SearchInFile returns the matches for query within one file, or nil when the
// file has none or cannot be read as text.
func (s *Searcher) SearchInFile(filePath, query string, caseSensitive bool) *Result {
	if query == "" {
		return nil
	}
	content, err := s.files.Read(filePath)
	if err != nil {
		return nil
	}

	var matches []FileMatch
	total := 0
	for i, line := range strings.Split(content, "\n") {
		lineMatches := findInLine(line, query, caseSensitive)
		if len(lineMatches) == 0 {
			continue
		}
		matches = append(matches, FileMatch{
			LineNumber: i + 1,
			LineText:   line,
			Matches:    lineMatches,
		})
		total += len(lineMatches)
	}
	if len(matches) == 0 {
		return nil
	}

	return &Result{
		Path:       filePath,
		Filename:   path.Base(filePath),
		Matches:    matches,
		MatchCount: total,
	}
}

// findInLine locates every non-overlapping occurrence of query in line.
func findInLine(line, query string, caseSensitive bool) []LineMatch {
	haystack, needle := line, query
	if !caseSensitive {
		haystack = strings.ToLower(line)
		needle = strings.ToLower(query)
	}

	var out []LineMatch
	for from := 0; ; {
		at := strings.Index(haystack[from:], needle)
		if at < 0 {
			return out
		}
		start := from + at
		end := start + len(needle)
		out = append(out, LineMatch{Start: start, End: end, Text: line[start:end]})
		from = end
	}
}

// SearchFiles searches every file under folder whose name matches the
// extension allow-list. A limit > 0 stops scanning once that many files have
// matched; the collected results are then ordered by match count descending.
func (s *Searcher) SearchFiles(folder, query string, extensions []string, caseSensitive bool, limit int) ([]Result, error) {
	paths, err := s.files.Walk(folder, extensions)
	if err != nil {
		return nil, err
	}

	results := []Result{}
	for _, p := range paths {
		r := s.SearchInFile(p, query, caseSensitive)
		if r == nil {
			continue
		}
		r.RelativePath = relativeTo(p, folder)
		results = append(results, *r)
		if limit > 0 && len(results) >= limit {
			break
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].MatchCount > results[j].MatchCount
	})
	return results, nil
}

// QuickSearch matches query against file names first and content second,
// case-insensitive, over the markdown files under folder.
func (s *Searcher) QuickSearch(folder, query string) ([]QuickResult, error) {
	paths, err := s.files.Walk(folder, []string{".md"})
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(query)
	results := []QuickResult{}
	for _, p := range paths {
		name := path.Base(p)
		matchedIn := ""
		if strings.Contains(strings.ToLower(name), needle) {
			matchedIn = "filename"
		} else if content, err := s.files.Read(p); err == nil &&
			strings.Contains(strings.ToLower(content), needle) {
			matchedIn = "content"
		}
		if matchedIn == "" {
			continue
		}
		results = append(results, QuickResult{
			Path:         p,
			RelativePath: relativeTo(p, folder),
			Filename:     name,
			MatchedIn:    matchedIn,
		})
	}
	return results, nil
}

func relativeTo(p, folder string) string {
	if folder == "" {
		return p
	}
	return strings.TrimPrefix(p, strings.TrimSuffix(folder, "/")+"/")
}

// TotalMatches sums the match counts of a result set.
func TotalMatches(results []Result) int {
	total := 0
	for _, r := range results {
		total += r.MatchCount
	}
	return total
}
