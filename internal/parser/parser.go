// Package parser extracts frontmatter, tags, tasks, and links from Markdown
// content. Every function is pure: no I/O, and malformed input degrades to an
// empty value rather than an error.
package parser

import (
	"path"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/starford/wunjo/internal/models"
)

const frontmatterDelim = "---"

var (
	tagRe       = regexp.MustCompile(`#([a-zA-Z0-9_-]+)`)
	parenLinkRe = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
	wikiLinkRe  = regexp.MustCompile(`\[\[([^\]]+)\]\]`)
)

// Frontmatter splits YAML frontmatter from content. The block must open the
// document; it is delimited by the first two "---" occurrences. On any parse
// failure the original content is returned unchanged with an empty mapping.
func Frontmatter(content string) (map[string]any, string) {
	if !strings.HasPrefix(content, frontmatterDelim) {
		return map[string]any{}, content
	}
	parts := strings.SplitN(content, frontmatterDelim, 3)
	if len(parts) < 3 {
		return map[string]any{}, content
	}

	var fm map[string]any
	if err := yaml.Unmarshal([]byte(parts[1]), &fm); err != nil || fm == nil {
		return map[string]any{}, content
	}
	return fm, parts[2]
}

// Tags returns every #tag token (alphanumerics, hyphen, underscore) with
// duplicates collapsed, in first-seen order.
func Tags(content string) []string {
	matches := tagRe.FindAllStringSubmatch(content, -1)
	seen := make(map[string]struct{}, len(matches))
	out := []string{}
	for _, m := range matches {
		if _, dup := seen[m[1]]; dup {
			continue
		}
		seen[m[1]] = struct{}{}
		out = append(out, m[1])
	}
	return out
}

// Tasks returns every checkbox list item in document order. A task line is a
// "-" or "*" bullet followed by "[ ]", "[x]" or "[X]" and non-empty text.
func Tasks(content string) []models.Task {
	out := []models.Task{}
	for _, line := range strings.Split(content, "\n") {
		s := strings.TrimLeft(line, " \t")
		if len(s) == 0 || (s[0] != '-' && s[0] != '*') {
			continue
		}
		rest := strings.TrimLeft(s[1:], " \t")
		if len(rest) < 3 || rest[0] != '[' || rest[2] != ']' {
			continue
		}
		status := rest[1]
		if status != ' ' && status != 'x' && status != 'X' {
			continue
		}
		text := strings.TrimSpace(rest[3:])
		if text == "" {
			continue
		}
		out = append(out, models.Task{
			Text:      text,
			Completed: status == 'x' || status == 'X',
		})
	}
	return out
}

// Links returns both recognized link syntaxes: [text](url) matches first in
// document order, then [[target]] / [[target|display]] matches in document
// order. Consumers treat the result as a set, so this ordering is fine.
func Links(content string) []models.Link {
	out := []models.Link{}
	for _, m := range parenLinkRe.FindAllStringSubmatch(content, -1) {
		out = append(out, models.Link{Text: m[1], URL: m[2]})
	}
	for _, m := range wikiLinkRe.FindAllStringSubmatch(content, -1) {
		raw := m[1]
		if target, display, ok := strings.Cut(raw, "|"); ok {
			out = append(out, models.Link{
				Text: strings.TrimSpace(display),
				URL:  strings.TrimSpace(target),
			})
		} else {
			trimmed := strings.TrimSpace(raw)
			out = append(out, models.Link{Text: trimmed, URL: trimmed})
		}
	}
	return out
}

// Metadata builds the full metadata record for one file. relPath is the
// caller-relative path used for the file.path and file.link fields.
func Metadata(relPath string, size int64, modified time.Time, content string) *models.FileMetadata {
	fm, _ := Frontmatter(content)

	meta := &models.FileMetadata{
		File: models.FileFacts{
			Path:      relPath,
			Name:      path.Base(relPath),
			Extension: path.Ext(relPath),
			Link:      relPath,
			Size:      size,
			CTime:     modified,
			MTime:     modified,
			Tasks:     Tasks(content),
		},
		Frontmatter: fm,
		Tags:        Tags(content),
		Links:       Links(content),
		Extra:       make(map[string]any, len(fm)),
	}
	for k, v := range fm {
		meta.Extra[k] = v
	}
	return meta
}
