package dataview

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/starford/wunjo/internal/models"
	"github.com/starford/wunjo/internal/parser"
	"github.com/starford/wunjo/internal/storage"
)

var (
	tagRe      = regexp.MustCompile(`#([a-zA-Z0-9_-]+)`)
	containsRe = regexp.MustCompile(`contains\(([^,]+),\s*"([^"]+)"\)`)
	linkRe     = regexp.MustCompile(`link\(([^,]+),\s*([^)]+)\)`)
	choiceRe   = regexp.MustCompile(`choice\(([^,]+),\s*"([^"]+)",\s*"([^"]+)"\)`)
	asAliasRe  = regexp.MustCompile(`(.*?)\s+as\s+(\w+)`)
	fieldRe    = regexp.MustCompile(`^[\w.]+$`)
	sortPathRe = regexp.MustCompile(`[\w.]+`)
)

// TableResult is the response for a TABLE query.
type TableResult struct {
	Type    string   `json:"type"`
	Headers []string `json:"headers"`
	Rows    [][]any  `json:"rows"`
}

// ListResult is the response for a LIST query: the full metadata records
// that survived filtering.
type ListResult struct {
	Type  string                 `json:"type"`
	Items []*models.FileMetadata `json:"items"`
}

// Engine evaluates parsed queries against the vault.
type Engine struct {
	files storage.Provider
}

func NewEngine(files storage.Provider) *Engine {
	return &Engine{files: files}
}

// Execute runs a query over the markdown files under folder (empty for the
// whole vault) and returns a *TableResult or *ListResult. Files that cannot
// be read are skipped.
func (e *Engine) Execute(q *Query, folder string) (any, error) {
	paths, err := e.files.Walk(folder, []string{".md"})
	if err != nil {
		return nil, err
	}

	records := make([]*models.FileMetadata, 0, len(paths))
	for _, p := range paths {
		if meta := e.metadataFor(p, folder); meta != nil {
			records = append(records, meta)
		}
	}

	records = filterBySource(records, q.Source)
	for _, clause := range q.Filters {
		records = applyFilter(records, clause)
	}
	sortRecords(records, q.Sort)

	if q.Type == "TABLE" {
		return tableResult(records, q.Fields), nil
	}
	return &ListResult{Type: "list", Items: records}, nil
}

// metadataFor derives the metadata record for one file. Paths inside the
// record are relative to the query folder, matching what the caller queried
// over, not to the vault root.
func (e *Engine) metadataFor(path, folder string) *models.FileMetadata {
	content, err := e.files.Read(path)
	if err != nil {
		return nil
	}
	entry, err := e.files.Stat(path)
	if err != nil {
		return nil
	}
	rel := path
	if folder != "" {
		rel = strings.TrimPrefix(rel, strings.TrimSuffix(folder, "/")+"/")
	}
	var size int64
	if entry.Size != nil {
		size = *entry.Size
	}
	return parser.Metadata(rel, size, entry.Modified, content)
}

// filterBySource keeps the records matching the FROM clause. Only tag
// sources are understood; any tag named in the clause matching any tag of
// the record (case-insensitive) keeps it. Other sources pass everything.
func filterBySource(records []*models.FileMetadata, source string) []*models.FileMetadata {
	if source == "" || !strings.Contains(source, "#") {
		return records
	}
	var want []string
	for _, m := range tagRe.FindAllStringSubmatch(source, -1) {
		want = append(want, strings.ToLower(m[1]))
	}
	if len(want) == 0 {
		return records
	}

	out := records[:0]
	for _, rec := range records {
		if hasAnyTag(rec.Tags, want) {
			out = append(out, rec)
		}
	}
	return out
}

func hasAnyTag(tags, want []string) bool {
	for _, t := range tags {
		lower := strings.ToLower(t)
		for _, w := range want {
			if lower == w {
				return true
			}
		}
	}
	return false
}

// applyFilter evaluates one WHERE clause. Only contains(path, "value") is
// understood, with an optional '!' before the call for negation; records
// whose field path does not resolve are dropped either way. A clause that
// does not parse filters nothing.
func applyFilter(records []*models.FileMetadata, clause string) []*models.FileMetadata {
	lower := strings.ToLower(clause)
	at := strings.Index(lower, "contains")
	if at < 0 {
		return records
	}
	m := containsRe.FindStringSubmatch(clause)
	if m == nil {
		return records
	}
	fieldPath := strings.TrimSpace(m[1])
	value := strings.ToLower(m[2])
	negated := strings.Contains(clause[:at], "!")

	out := records[:0]
	for _, rec := range records {
		v, ok := rec.Lookup(fieldPath)
		if !ok {
			continue
		}
		match := strings.Contains(strings.ToLower(fmt.Sprint(v)), value)
		if match != negated {
			out = append(out, rec)
		}
	}
	return out
}

// sortRecords orders records by the first field path in the SORT clause,
// descending when the clause contains DESC. Sorting is skipped entirely
// unless the field resolves to the same comparable type on every record.
func sortRecords(records []*models.FileMetadata, clause string) {
	if clause == "" {
		return
	}
	fieldPath := sortPathRe.FindString(clause)
	if fieldPath == "" || fieldPath == "DESC" || fieldPath == "ASC" {
		return
	}
	desc := strings.Contains(clause, "DESC")

	type keyed struct {
		key any
		rec *models.FileMetadata
	}
	rows := make([]keyed, len(records))
	keys := make([]any, len(records))
	for i, rec := range records {
		v, ok := rec.Lookup(fieldPath)
		if !ok {
			return
		}
		rows[i] = keyed{key: normalizeKey(v), rec: rec}
		keys[i] = rows[i].key
	}
	if !uniformKeys(keys) {
		return
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if desc {
			i, j = j, i
		}
		return lessKey(rows[i].key, rows[j].key)
	})
	for i, r := range rows {
		records[i] = r.rec
	}
}

// normalizeKey folds the numeric types YAML and file stats produce into
// float64 so "size: 10" in frontmatter compares against an int64 stat.
func normalizeKey(v any) any {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case uint64:
		return float64(n)
	case float64:
		return n
	default:
		return v
	}
}

func uniformKeys(keys []any) bool {
	if len(keys) < 2 {
		return true
	}
	kind := keyKind(keys[0])
	if kind == "" {
		return false
	}
	for _, k := range keys[1:] {
		if keyKind(k) != kind {
			return false
		}
	}
	return true
}

func keyKind(v any) string {
	switch v.(type) {
	case float64:
		return "number"
	case string:
		return "string"
	case bool:
		return "bool"
	case time.Time:
		return "time"
	}
	return ""
}

func lessKey(a, b any) bool {
	switch av := a.(type) {
	case float64:
		return av < b.(float64)
	case string:
		return av < b.(string)
	case bool:
		return !av && b.(bool)
	case time.Time:
		return av.Before(b.(time.Time))
	}
	return false
}

func tableResult(records []*models.FileMetadata, fields []string) *TableResult {
	headers := fields
	if len(headers) == 0 {
		headers = []string{"File"}
	}
	result := &TableResult{Type: "table", Headers: headers, Rows: [][]any{}}

	for _, rec := range records {
		row := make([]any, 0, len(fields))
		if len(fields) == 0 {
			row = append(row, rec.File.Name)
		}
		for _, expr := range fields {
			row = append(row, evalField(expr, rec))
		}
		result.Rows = append(result.Rows, row)
	}
	return result
}

// evalField resolves one field expression against a record. Plain dot paths
// are looked up directly; link() and choice() calls are evaluated; anything
// else is returned verbatim.
func evalField(expr string, rec *models.FileMetadata) any {
	if m := asAliasRe.FindStringSubmatch(expr); m != nil {
		expr = strings.TrimSpace(m[1])
	}

	if fieldRe.MatchString(expr) {
		v, _ := rec.Lookup(expr)
		return v
	}

	if m := linkRe.FindStringSubmatch(expr); m != nil {
		url, _ := rec.Lookup(strings.TrimSpace(m[1]))
		text, _ := rec.Lookup(strings.TrimSpace(m[2]))
		return map[string]any{"type": "link", "url": url, "text": text}
	}

	if m := choiceRe.FindStringSubmatch(expr); m != nil {
		v, _ := rec.Lookup(strings.TrimSpace(m[1]))
		if truthy(v) {
			return m[2]
		}
		return m[3]
	}

	if strings.Contains(expr, "link(") || strings.Contains(expr, "choice(") {
		return fmt.Sprintf("Error: malformed expression %q", expr)
	}
	return expr
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case int:
		return t != 0
	case int64:
		return t != 0
	case float64:
		return t != 0
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	}
	return true
}
