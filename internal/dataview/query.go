// Package dataview executes table and list queries over markdown file
// metadata. Metadata is derived from file content at query time; nothing is
// indexed or cached.
package dataview

import "strings"

// Query is the parsed form of a dataview query string.
type Query struct {
	Type      string   // "TABLE" or "LIST"
	Fields    []string // field expressions for TABLE queries
	Source    string   // FROM clause, e.g. "#project"
	Filters   []string // WHERE clauses
	Sort      string   // SORT clause, e.g. "file.size DESC"
	WithoutID bool
}

// ParseQuery breaks a query string into its clauses. Parsing is best-effort
// and never fails: missing clauses stay empty and the query type defaults
// to TABLE.
func ParseQuery(text string) *Query {
	q := &Query{Type: "TABLE", Fields: []string{}, Filters: []string{}}

	tableAt := findKeyword(text, "TABLE")
	if tableAt < 0 {
		if findKeyword(text, "LIST") >= 0 {
			q.Type = "LIST"
		}
	} else if findKeyword(text, "WITHOUT ID") >= 0 {
		q.WithoutID = true
	}

	fromAt := findKeyword(text, "FROM")
	whereAts := findKeywordAll(text, "WHERE")
	sortAt := findKeyword(text, "SORT")

	whereAt := -1
	if len(whereAts) > 0 {
		whereAt = whereAts[0]
	}

	if fromAt >= 0 {
		end := len(text)
		if whereAt > fromAt {
			end = whereAt
		}
		if sortAt > fromAt && sortAt < end {
			end = sortAt
		}
		q.Source = strings.TrimSpace(text[fromAt+len("FROM") : end])
	}

	if q.Type == "TABLE" && fromAt >= 0 {
		start := tableAt + len("TABLE")
		if q.WithoutID {
			if at := findKeyword(text, "WITHOUT ID"); at >= 0 && at < fromAt {
				start = at + len("WITHOUT ID")
			}
		}
		if start < fromAt {
			q.Fields = splitFields(text[start:fromAt])
		}
	}

	// Each WHERE opens its own clause, running to the next WHERE or SORT.
	for i, at := range whereAts {
		end := len(text)
		if i+1 < len(whereAts) {
			end = whereAts[i+1]
		}
		if sortAt > at && sortAt < end {
			end = sortAt
		}
		if clause := strings.TrimSpace(text[at+len("WHERE") : end]); clause != "" {
			q.Filters = append(q.Filters, clause)
		}
	}

	if sortAt >= 0 {
		q.Sort = strings.TrimSpace(text[sortAt+len("SORT"):])
	}

	return q
}

// findKeyword returns the index of the first standalone occurrence of the
// keyword, where standalone means bounded by non-word characters or the text
// edges. Field names like "sortOrder" never match SORT.
func findKeyword(text, keyword string) int {
	return findKeywordFrom(text, keyword, 0)
}

// findKeywordAll returns every standalone occurrence of the keyword in order.
func findKeywordAll(text, keyword string) []int {
	var out []int
	for from := 0; ; {
		at := findKeywordFrom(text, keyword, from)
		if at < 0 {
			return out
		}
		out = append(out, at)
		from = at + len(keyword)
	}
}

func findKeywordFrom(text, keyword string, from int) int {
	for {
		at := strings.Index(text[from:], keyword)
		if at < 0 {
			return -1
		}
		at += from
		end := at + len(keyword)
		if (at == 0 || !isWord(text[at-1])) && (end == len(text) || !isWord(text[end])) {
			return at
		}
		from = at + 1
	}
}

func isWord(c byte) bool {
	return c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

// splitFields splits a field list on commas, keeping commas inside
// parentheses and brackets intact so function calls like link(a, b) stay
// one field.
func splitFields(text string) []string {
	fields := []string{}
	depth := 0
	var current strings.Builder
	flush := func() {
		if f := strings.TrimSpace(current.String()); f != "" {
			fields = append(fields, f)
		}
		current.Reset()
	}
	for i := 0; i < len(text); i++ {
		switch c := text[i]; c {
		case '(', '[':
			depth++
			current.WriteByte(c)
		case ')', ']':
			depth--
			current.WriteByte(c)
		case ',':
			if depth == 0 {
				flush()
			} else {
				current.WriteByte(c)
			}
		default:
			current.WriteByte(c)
		}
	}
	flush()
	return fields
}
