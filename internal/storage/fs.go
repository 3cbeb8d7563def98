package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/starford/wunjo/internal/apperr"
	"github.com/starford/wunjo/internal/models"
)

// FS implements Provider backed by the local file system.
type FS struct {
	root string // absolute, symlink-resolved path to the vault directory
}

// NewFS creates a new FS provider rooted at the given directory.
// The directory must already exist.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	abs, err = filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	return &FS{root: abs}, nil
}

// safePath resolves a relative path against the vault root and rejects any
// result that escapes it. Two independent defenses: the input is scrubbed
// textually before joining, and the joined path is canonicalized (following
// symlinks on its existing prefix) and prefix-checked against the root.
func (f *FS) safePath(rel string) (string, error) {
	if rel == "" {
		return f.root, nil
	}

	cleaned := scrub(rel)
	if cleaned == "" || cleaned == "." {
		return f.root, nil
	}

	joined := filepath.Join(f.root, filepath.FromSlash(cleaned))
	abs, err := filepath.Abs(joined)
	if err != nil {
		return "", fmt.Errorf("storage: resolve %s: %w", rel, apperr.ErrAccessDenied)
	}

	resolved, err := resolveExisting(abs)
	if err != nil {
		return "", fmt.Errorf("storage: resolve %s: %w", rel, apperr.ErrAccessDenied)
	}
	if resolved != f.root && !strings.HasPrefix(resolved, f.root+string(os.PathSeparator)) {
		return "", fmt.Errorf("storage: path escapes vault root %s: %w", rel, apperr.ErrAccessDenied)
	}
	return abs, nil
}

// scrub normalizes separators and textually removes traversal segments.
func scrub(rel string) string {
	p := strings.ReplaceAll(rel, "\\", "/")
	p = path.Clean(p)
	// Strip leading dots and slashes only on escaping prefixes, so that
	// dotfile names like ".hidden.md" survive intact.
	if strings.HasPrefix(p, "..") || strings.HasPrefix(p, "/") {
		p = strings.TrimLeft(p, "./")
	}
	for strings.Contains(p, "../") {
		p = strings.ReplaceAll(p, "../", "")
	}
	if p == ".." {
		p = ""
	}
	return p
}

// resolveExisting canonicalizes the deepest existing ancestor of p (following
// symlinks) and re-joins the non-existing remainder. This keeps the prefix
// check meaningful for paths about to be created.
func resolveExisting(p string) (string, error) {
	suffix := ""
	cur := p
	for {
		resolved, err := filepath.EvalSymlinks(cur)
		if err == nil {
			return filepath.Join(resolved, suffix), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return p, nil
		}
		suffix = filepath.Join(filepath.Base(cur), suffix)
		cur = parent
	}
}

// relPath converts an absolute path back to a slash-separated vault-relative one.
func (f *FS) relPath(abs string) string {
	rel, err := filepath.Rel(f.root, abs)
	if err != nil || rel == "." {
		return ""
	}
	return filepath.ToSlash(rel)
}

func (f *FS) entryFor(abs string, info fs.FileInfo) models.FileEntry {
	e := models.FileEntry{
		Name:     info.Name(),
		Path:     f.relPath(abs),
		Modified: info.ModTime(),
	}
	if info.IsDir() {
		e.Type = "directory"
	} else {
		e.Type = "file"
		size := info.Size()
		e.Size = &size
	}
	return e
}

// List returns the direct entries of dir, directories first, then
// case-insensitive name ascending.
func (f *FS) List(dir string) ([]models.FileEntry, error) {
	abs, err := f.safePath(dir)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: list %s: %w", dir, apperr.ErrNotFound)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: list %s: %w", dir, apperr.ErrNotADirectory)
	}

	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: list %s: %w", dir, err)
	}

	out := make([]models.FileEntry, 0, len(entries))
	for _, de := range entries {
		fi, err := de.Info()
		if err != nil {
			continue
		}
		out = append(out, f.entryFor(filepath.Join(abs, de.Name()), fi))
	}
	sortEntries(out)
	return out, nil
}

func sortEntries(entries []models.FileEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].IsDir() != entries[j].IsDir() {
			return entries[i].IsDir()
		}
		return strings.ToLower(entries[i].Name) < strings.ToLower(entries[j].Name)
	})
}

// Tree returns the recursive directory tree rooted at dir. Hidden entries
// (dot-prefixed names) are skipped.
func (f *FS) Tree(dir string) ([]models.TreeNode, error) {
	abs, err := f.safePath(dir)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: tree %s: %w", dir, apperr.ErrNotFound)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: tree %s: %w", dir, apperr.ErrNotADirectory)
	}
	return f.tree(abs), nil
}

func (f *FS) tree(abs string) []models.TreeNode {
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil
	}

	flat := make([]models.FileEntry, 0, len(entries))
	byName := make(map[string]bool, len(entries))
	for _, de := range entries {
		if strings.HasPrefix(de.Name(), ".") {
			continue
		}
		fi, err := de.Info()
		if err != nil {
			continue
		}
		flat = append(flat, f.entryFor(filepath.Join(abs, de.Name()), fi))
		byName[de.Name()] = de.IsDir()
	}
	sortEntries(flat)

	out := make([]models.TreeNode, 0, len(flat))
	for _, e := range flat {
		node := models.TreeNode{FileEntry: e}
		if byName[e.Name] {
			node.Children = f.tree(filepath.Join(abs, e.Name))
		}
		out = append(out, node)
	}
	return out
}

// Stat returns the entry for a single path.
func (f *FS) Stat(path string) (models.FileEntry, error) {
	abs, err := f.safePath(path)
	if err != nil {
		return models.FileEntry{}, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return models.FileEntry{}, fmt.Errorf("storage: stat %s: %w", path, apperr.ErrNotFound)
	}
	return f.entryFor(abs, info), nil
}

// ReadBytes returns the raw content of a vault file.
func (f *FS) ReadBytes(path string) ([]byte, error) {
	abs, err := f.safePath(path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", path, apperr.ErrNotFound)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("storage: read %s is a directory: %w", path, apperr.ErrNotADirectory)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", path, err)
	}
	return data, nil
}

// Read returns the content of a vault file as text.
func (f *FS) Read(path string) (string, error) {
	data, err := f.ReadBytes(path)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("storage: read %s: %w", path, apperr.ErrNotText)
	}
	return string(data), nil
}

// Write atomically writes content: tmp file → fsync → rename.
// Parent directories are created as needed.
func (f *FS) Write(path string, content []byte) error {
	abs, err := f.safePath(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("storage: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".wunjo-tmp-*")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	// Clean up on any failure path.
	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	return nil
}

// Delete removes a file, or a directory if it is empty. There is no recursive
// delete through this path.
func (f *FS) Delete(path string) error {
	abs, err := f.safePath(path)
	if err != nil {
		return err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("storage: delete %s: %w", path, apperr.ErrNotFound)
	}
	if info.IsDir() {
		entries, err := os.ReadDir(abs)
		if err != nil {
			return fmt.Errorf("storage: delete %s: %w", path, err)
		}
		if len(entries) > 0 {
			return fmt.Errorf("storage: delete %s: %w", path, apperr.ErrDirectoryNotEmpty)
		}
	}
	if err := os.Remove(abs); err != nil {
		return fmt.Errorf("storage: delete %s: %w", path, err)
	}
	return nil
}

// Mkdir creates a directory and any missing parents.
func (f *FS) Mkdir(path string) error {
	abs, err := f.safePath(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(abs); err == nil {
		return fmt.Errorf("storage: mkdir %s: %w", path, apperr.ErrAlreadyExists)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return fmt.Errorf("storage: mkdir %s: %w", path, err)
	}
	return nil
}

// Move renames oldPath to newPath within the vault, creating the
// destination's parent directories.
func (f *FS) Move(oldPath, newPath string) error {
	absOld, err := f.safePath(oldPath)
	if err != nil {
		return err
	}
	absNew, err := f.safePath(newPath)
	if err != nil {
		return err
	}
	if _, err := os.Stat(absOld); err != nil {
		return fmt.Errorf("storage: move %s: %w", oldPath, apperr.ErrNotFound)
	}
	if _, err := os.Stat(absNew); err == nil {
		return fmt.Errorf("storage: move to %s: %w", newPath, apperr.ErrAlreadyExists)
	}
	if err := os.MkdirAll(filepath.Dir(absNew), 0o755); err != nil {
		return fmt.Errorf("storage: mkdir for move: %w", err)
	}
	if err := os.Rename(absOld, absNew); err != nil {
		return fmt.Errorf("storage: move: %w", err)
	}
	return nil
}

// Upload writes data verbatim under dir/filename. The filename must be a
// bare name without path separators. No content validation is performed.
func (f *FS) Upload(dir, filename string, data []byte) (models.FileEntry, error) {
	if filename == "" || filepath.Clean(filename) != filepath.Base(filepath.Clean(filename)) ||
		strings.Contains(filename, "..") {
		return models.FileEntry{}, fmt.Errorf("storage: upload filename %q: %w", filename, apperr.ErrAccessDenied)
	}
	rel := filename
	if dir != "" {
		rel = scrub(dir) + "/" + filename
	}
	if err := f.Write(rel, data); err != nil {
		return models.FileEntry{}, err
	}
	return f.Stat(rel)
}

// Walk returns the relative paths of all files under dir whose name matches
// the extension allow-list (case-insensitive). A nil list matches every file.
func (f *FS) Walk(dir string, extensions []string) ([]string, error) {
	abs, err := f.safePath(dir)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: walk %s: %w", dir, apperr.ErrNotFound)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: walk %s: %w", dir, apperr.ErrNotADirectory)
	}

	var out []string
	err = filepath.WalkDir(abs, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() {
			return nil
		}
		if matchesExtension(d.Name(), extensions) {
			out = append(out, f.relPath(p))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("storage: walk %s: %w", dir, err)
	}
	sort.Strings(out)
	return out, nil
}

func matchesExtension(name string, extensions []string) bool {
	if len(extensions) == 0 {
		return true
	}
	lower := strings.ToLower(name)
	for _, ext := range extensions {
		if strings.HasSuffix(lower, strings.ToLower(ext)) {
			return true
		}
	}
	return false
}
