package prompt

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
)

// Source serves the current catalog, optionally backed by a file that
// can be reloaded while the server runs.
type Source struct {
	path    string
	logger  *slog.Logger
	current atomic.Pointer[Catalog]
}

// NewSource loads the catalog at path, or the built-in one when path is empty
func NewSource(path string, logger *slog.Logger) (*Source, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Source{path: path, logger: logger}

	if path == "" {
		s.current.Store(Default())
		return s, nil
	}

	c, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	s.current.Store(c)
	return s, nil
}

// Catalog returns the active catalog
func (s *Source) Catalog() *Catalog {
	return s.current.Load()
}

// Reload re-reads the backing file. On error the previous catalog stays active.
func (s *Source) Reload() error {
	if s.path == "" {
		return nil
	}
	c, err := LoadFile(s.path)
	if err != nil {
		return err
	}
	prev := s.current.Swap(c)
	s.logger.Info("prompts reloaded", "path", s.path, "version", c.Version, "previous_version", prev.Version)
	return nil
}

// Watch reloads the catalog whenever its file changes, until ctx is done.
// The parent directory is watched so editors that replace the file are seen.
func (s *Source) Watch(ctx context.Context) error {
	if s.path == "" {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	go func() {
		defer watcher.Close()
		target := filepath.Clean(s.path)
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				if err := s.Reload(); err != nil {
					s.logger.Warn("prompt reload failed, keeping previous catalog", "path", s.path, "error", err)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.logger.Error("fsnotify error", "error", err)
			}
		}
	}()

	return nil
}
