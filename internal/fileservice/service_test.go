package fileservice

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/wunjo/internal/apperr"
	"github.com/starford/wunjo/internal/storage"
)

func testService(t *testing.T, files map[string]string) (*Service, string) {
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
	return NewService(fs), dir
}

func TestContent(t *testing.T) {
	s, _ := testService(t, map[string]string{"a.md": "hello"})
	ctx := context.Background()

	fc, err := s.Content(ctx, "a.md")
	if err != nil {
		t.Fatalf("Content: %v", err)
	}
	if fc.Content != "hello" || fc.Path != "a.md" {
		t.Errorf("content = %+v", fc)
	}
	if fc.Checksum == "" || fc.Modified.IsZero() {
		t.Errorf("missing checksum or mtime: %+v", fc)
	}
}

func TestCreate(t *testing.T) {
	s, _ := testService(t, map[string]string{"existing.md": "x"})
	ctx := context.Background()

	fc, err := s.Create(ctx, "new.md", []byte("fresh"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if fc.Content != "fresh" {
		t.Errorf("content = %q", fc.Content)
	}

	if _, err := s.Create(ctx, "existing.md", []byte("y")); !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Errorf("err = %v, want ErrAlreadyExists", err)
	}
}

func TestUpdateLastWriteWins(t *testing.T) {
	s, _ := testService(t, map[string]string{"a.md": "v1"})
	ctx := context.Background()

	// No If-Match: overwrite unconditionally.
	fc, err := s.Update(ctx, "a.md", []byte("v2"), "")
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if fc.Content != "v2" {
		t.Errorf("content = %q", fc.Content)
	}

	if _, err := s.Update(ctx, "missing.md", []byte("x"), ""); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestUpdateIfMatch(t *testing.T) {
	s, _ := testService(t, map[string]string{"a.md": "v1"})
	ctx := context.Background()

	fc, err := s.Content(ctx, "a.md")
	if err != nil {
		t.Fatalf("Content: %v", err)
	}

	// Matching checksum: write allowed.
	fc2, err := s.Update(ctx, "a.md", []byte("v2"), fc.Checksum)
	if err != nil {
		t.Fatalf("Update with matching checksum: %v", err)
	}

	// Stale checksum: rejected.
	if _, err := s.Update(ctx, "a.md", []byte("v3"), fc.Checksum); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("stale update err = %v, want ErrConflict", err)
	}

	// Fresh checksum: allowed again.
	if _, err := s.Update(ctx, "a.md", []byte("v3"), fc2.Checksum); err != nil {
		t.Errorf("fresh update err = %v", err)
	}
}

func TestSaveOverwritesOrCreates(t *testing.T) {
	s, _ := testService(t, map[string]string{"a.md": "v1"})
	ctx := context.Background()

	if _, err := s.Save(ctx, "a.md", []byte("v2")); err != nil {
		t.Errorf("Save existing: %v", err)
	}
	if _, err := s.Save(ctx, "brand/new.md", []byte("x")); err != nil {
		t.Errorf("Save new: %v", err)
	}
}

func TestMoveAndDelete(t *testing.T) {
	s, dir := testService(t, map[string]string{"a.md": "x"})
	ctx := context.Background()

	if err := s.Move(ctx, "a.md", "sub/b.md"); err != nil {
		t.Fatalf("Move: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "sub", "b.md")); err != nil {
		t.Errorf("moved file missing: %v", err)
	}

	if err := s.Delete(ctx, "sub/b.md"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(ctx, "sub/b.md"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("second delete err = %v", err)
	}
}

func TestCreateFolder(t *testing.T) {
	s, dir := testService(t, nil)
	ctx := context.Background()

	if err := s.CreateFolder(ctx, "projects/2024"); err != nil {
		t.Fatalf("CreateFolder: %v", err)
	}
	info, err := os.Stat(filepath.Join(dir, "projects", "2024"))
	if err != nil || !info.IsDir() {
		t.Errorf("folder missing: %v", err)
	}
	if err := s.CreateFolder(ctx, "projects/2024"); !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Errorf("duplicate folder err = %v", err)
	}
}

func TestUploadAndDownload(t *testing.T) {
	s, _ := testService(t, nil)
	ctx := context.Background()

	payload := []byte{0xFF, 0x00, 0x01} // binary is fine for uploads
	entry, err := s.Upload(ctx, "assets", "blob.bin", payload)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if entry.Name != "blob.bin" {
		t.Errorf("entry = %+v", entry)
	}

	data, got, err := s.Download(ctx, "assets/blob.bin")
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if string(data) != string(payload) || got.Name != "blob.bin" {
		t.Errorf("download = %v %+v", data, got)
	}
}
