// Package storage implements the sandboxed vault file store.
package storage

import "github.com/starford/wunjo/internal/models"

// Provider is the interface for vault file operations. All paths are relative
// to the vault root; every operation resolves the path through the sandbox
// first and fails with apperr.ErrAccessDenied if it would escape the root.
type Provider interface {
	// List returns the direct entries of a directory, directories first,
	// then case-insensitive name ascending.
	List(dir string) ([]models.FileEntry, error)
	// Tree returns the recursive directory tree rooted at dir,
	// skipping hidden entries.
	Tree(dir string) ([]models.TreeNode, error)
	// Stat returns the entry for a single path.
	Stat(path string) (models.FileEntry, error)
	// Read returns the file content as text, failing with ErrNotText
	// when the content is not valid UTF-8.
	Read(path string) (string, error)
	// ReadBytes returns the raw file content.
	ReadBytes(path string) ([]byte, error)
	// Write atomically writes content to path, creating parent directories.
	Write(path string, content []byte) error
	// Delete removes a file, or an empty directory.
	Delete(path string) error
	// Mkdir creates a directory (and parents), failing if path exists.
	Mkdir(path string) error
	// Move renames oldPath to newPath, creating newPath's parent directories.
	Move(oldPath, newPath string) error
	// Upload writes data verbatim under dir/filename.
	Upload(dir, filename string, data []byte) (models.FileEntry, error)
	// Walk returns the relative paths of all files under dir whose name
	// matches the extension allow-list (nil means every file).
	Walk(dir string, extensions []string) ([]string, error)
}
