// Package watch streams vault file changes to a callback via fsnotify.
package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// EventCallback is called for each vault file change.
// kind is one of "created", "updated", "deleted".
type EventCallback func(kind string, path string)

// Watch starts an fsnotify watcher on the vault root and reports file change
// events until ctx is cancelled. Hidden files and directories are ignored.
//
// New directories created at runtime are automatically added to the watch
// list, and files already inside them are reported as created. fsnotify fires
// Rename on the old path only; the new path arrives as a separate Create
// event, so a rename surfaces as deleted followed by created.
func Watch(ctx context.Context, vaultRoot string, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, vaultRoot); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", vaultRoot))

	emit := func(kind, rel string) {
		logger.Debug("watcher: "+kind, slog.String("path", rel))
		if cb != nil {
			cb(kind, rel)
		}
	}

	for {
		select {
		case <-ctx.Done():
			logger.Info("watcher: stopped")
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			absPath := ev.Name
			rel, relErr := filepath.Rel(vaultRoot, absPath)
			if relErr != nil || hidden(rel) {
				continue
			}
			rel = filepath.ToSlash(rel)

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(absPath); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, absPath); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", absPath),
							slog.String("error", addErr.Error()))
					}
					reportNewDir(vaultRoot, absPath, emit)
					continue
				}
			}

			switch {
			case ev.Op&fsnotify.Create != 0:
				emit("created", rel)
			case ev.Op&fsnotify.Write != 0:
				emit("updated", rel)
			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				emit("deleted", rel)
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// reportNewDir reports the files already present in a newly created
// directory, since their individual Create events predate the watch.
func reportNewDir(vaultRoot, dirPath string, emit func(kind, rel string)) {
	_ = filepath.WalkDir(dirPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(vaultRoot, path)
		if relErr != nil || hidden(rel) {
			return nil
		}
		emit("created", filepath.ToSlash(rel))
		return nil
	})
}

// hidden reports whether any segment of the relative path starts with a dot.
func hidden(rel string) bool {
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}

// addDirsRecursive adds root and all its non-hidden subdirectories to the
// watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root {
			if rel, relErr := filepath.Rel(root, path); relErr == nil && hidden(rel) {
				return filepath.SkipDir
			}
		}
		return w.Add(path)
	})
}
