// Package fileservice coordinates vault file operations for the HTTP and MCP
// surfaces.
package fileservice

import (
	"context"
	"fmt"
	"time"

	"github.com/starford/wunjo/internal/apperr"
	"github.com/starford/wunjo/internal/checksum"
	"github.com/starford/wunjo/internal/models"
	"github.com/starford/wunjo/internal/storage"
)

// FileContent is the full representation of a text file.
type FileContent struct {
	Path     string    `json:"path"`
	Content  string    `json:"content"`
	Checksum string    `json:"checksum"`
	Modified time.Time `json:"modified"`
}

// Service wraps the storage provider with the semantics the API exposes.
type Service struct {
	store storage.Provider
}

func NewService(store storage.Provider) *Service {
	return &Service{store: store}
}

// List returns the direct entries of a directory.
func (s *Service) List(_ context.Context, dir string) ([]models.FileEntry, error) {
	return s.store.List(dir)
}

// Tree returns the recursive directory tree rooted at dir.
func (s *Service) Tree(_ context.Context, dir string) ([]models.TreeNode, error) {
	return s.store.Tree(dir)
}

// Content reads a text file along with its checksum, used by clients for
// optimistic concurrency on later updates.
func (s *Service) Content(_ context.Context, path string) (*FileContent, error) {
	content, err := s.store.Read(path)
	if err != nil {
		return nil, err
	}
	entry, err := s.store.Stat(path)
	if err != nil {
		return nil, err
	}
	return &FileContent{
		Path:     path,
		Content:  content,
		Checksum: checksum.Sum([]byte(content)),
		Modified: entry.Modified,
	}, nil
}

// Create writes a new file, failing if the path already exists.
func (s *Service) Create(_ context.Context, path string, content []byte) (*FileContent, error) {
	if _, err := s.store.Stat(path); err == nil {
		return nil, fmt.Errorf("fileservice: create %s: %w", path, apperr.ErrAlreadyExists)
	}
	if err := s.store.Write(path, content); err != nil {
		return nil, err
	}
	return s.contentAfterWrite(path, content)
}

// Update overwrites an existing file. Last write wins; a non-empty ifMatch
// checksum turns the write into a compare-and-swap that fails with
// ErrConflict when the file changed since the client last read it.
func (s *Service) Update(_ context.Context, path string, content []byte, ifMatch string) (*FileContent, error) {
	existing, err := s.store.ReadBytes(path)
	if err != nil {
		return nil, err
	}
	if ifMatch != "" && !checksum.Matches(existing, ifMatch) {
		return nil, fmt.Errorf("fileservice: update %s: %w", path, apperr.ErrConflict)
	}
	if err := s.store.Write(path, content); err != nil {
		return nil, err
	}
	return s.contentAfterWrite(path, content)
}

// Save writes content to a path unconditionally, creating or overwriting.
func (s *Service) Save(_ context.Context, path string, content []byte) (*FileContent, error) {
	if err := s.store.Write(path, content); err != nil {
		return nil, err
	}
	return s.contentAfterWrite(path, content)
}

// Delete removes a file or an empty directory.
func (s *Service) Delete(_ context.Context, path string) error {
	return s.store.Delete(path)
}

// CreateFolder creates a directory, failing if the path already exists.
func (s *Service) CreateFolder(_ context.Context, path string) error {
	return s.store.Mkdir(path)
}

// Move renames a file or directory.
func (s *Service) Move(_ context.Context, oldPath, newPath string) error {
	return s.store.Move(oldPath, newPath)
}

// Upload stores raw bytes under dir/filename and returns the stored entry.
func (s *Service) Upload(_ context.Context, dir, filename string, data []byte) (models.FileEntry, error) {
	return s.store.Upload(dir, filename, data)
}

// Download returns a file's raw bytes (binary allowed) and its entry.
func (s *Service) Download(_ context.Context, path string) ([]byte, models.FileEntry, error) {
	data, err := s.store.ReadBytes(path)
	if err != nil {
		return nil, models.FileEntry{}, err
	}
	entry, err := s.store.Stat(path)
	if err != nil {
		return nil, models.FileEntry{}, err
	}
	return data, entry, nil
}

func (s *Service) contentAfterWrite(path string, content []byte) (*FileContent, error) {
	entry, err := s.store.Stat(path)
	if err != nil {
		return nil, err
	}
	return &FileContent{
		Path:     path,
		Content:  string(content),
		Checksum: checksum.Sum(content),
		Modified: entry.Modified,
	}, nil
}
