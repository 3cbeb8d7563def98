// Package models defines the domain types for Wunjo.
package models

import (
	"encoding/json"
	"time"
)

// FileEntry is one item in a directory listing.
type FileEntry struct {
	Name     string    `json:"name"`
	Path     string    `json:"path"`
	Type     string    `json:"type"` // "file" or "directory"
	Size     *int64    `json:"size,omitempty"`
	Modified time.Time `json:"modified"`
}

// IsDir reports whether the entry is a directory.
func (e FileEntry) IsDir() bool { return e.Type == "directory" }

// TreeNode is a FileEntry with children, used for recursive tree listings.
type TreeNode struct {
	FileEntry
	Children []TreeNode `json:"children,omitempty"`
}

// Task is one checkbox list item extracted from markdown content.
type Task struct {
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// Link is one link extracted from markdown content, in either
// [text](url) or [[target|display]] syntax.
type Link struct {
	Text string `json:"text"`
	URL  string `json:"url"`
}

// FileFacts holds the reserved "file" fields of a metadata record.
//
// Created mirrors Modified: a portable creation timestamp is not available
// on every filesystem, so the modification time stands in.
type FileFacts struct {
	Path      string    `json:"path"`
	Name      string    `json:"name"`
	Extension string    `json:"extension"`
	Link      string    `json:"link"`
	Size      int64     `json:"size"`
	CTime     time.Time `json:"ctime"`
	MTime     time.Time `json:"mtime"`
	Tasks     []Task    `json:"tasks"`
}

// FileMetadata is the per-file record the dataview engine evaluates queries
// against. Frontmatter keys are additionally flattened onto the top level
// through Extra; on a name collision with a reserved field the frontmatter
// value wins, both in Lookup and in the JSON form.
type FileMetadata struct {
	File        FileFacts      `json:"file"`
	Frontmatter map[string]any `json:"frontmatter"`
	Tags        []string       `json:"tags"`
	Links       []Link         `json:"links"`
	Extra       map[string]any `json:"-"`
}

// MarshalJSON merges the flattened frontmatter keys over the reserved fields.
func (m FileMetadata) MarshalJSON() ([]byte, error) {
	out := map[string]any{
		"file":        m.File,
		"frontmatter": m.Frontmatter,
		"tags":        m.Tags,
		"links":       m.Links,
	}
	for k, v := range m.Extra {
		out[k] = v
	}
	return json.Marshal(out)
}

// Lookup navigates a dot-separated field path through the record.
// The second return value is false when the path does not resolve.
func (m *FileMetadata) Lookup(path string) (any, bool) {
	parts := splitPath(path)
	if len(parts) == 0 {
		return nil, false
	}

	// Flattened frontmatter shadows reserved fields.
	if v, ok := m.Extra[parts[0]]; ok {
		return navigate(v, parts[1:])
	}

	switch parts[0] {
	case "file":
		return m.File.lookup(parts[1:])
	case "frontmatter":
		return navigate(m.Frontmatter, parts[1:])
	case "tags":
		if len(parts) == 1 {
			return m.Tags, true
		}
	case "links":
		if len(parts) == 1 {
			return m.Links, true
		}
	}
	return nil, false
}

func (f *FileFacts) lookup(parts []string) (any, bool) {
	if len(parts) == 0 {
		return *f, true
	}
	if len(parts) > 1 {
		return nil, false
	}
	switch parts[0] {
	case "path":
		return f.Path, true
	case "name":
		return f.Name, true
	case "extension":
		return f.Extension, true
	case "link":
		return f.Link, true
	case "size":
		return f.Size, true
	case "ctime":
		return f.CTime, true
	case "mtime":
		return f.MTime, true
	case "tasks":
		return f.Tasks, true
	}
	return nil, false
}

func navigate(v any, parts []string) (any, bool) {
	for _, p := range parts {
		m, ok := v.(map[string]any)
		if !ok {
			return nil, false
		}
		v, ok = m[p]
		if !ok {
			return nil, false
		}
	}
	return v, true
}

func splitPath(path string) []string {
	var parts []string
	start := 0
	for i := 0; i <= len(path); i++ {
		if i == len(path) || path[i] == '.' {
			if i > start {
				parts = append(parts, path[start:i])
			}
			start = i + 1
		}
	}
	return parts
}
