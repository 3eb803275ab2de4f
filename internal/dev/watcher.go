// Package dev implements watch mode: regenerate output whenever a
// declaration file or the project config changes.
package dev

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// FileWatcher watches files for changes based on patterns
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	patterns []string
	exclude  []string
	onChange func(path string, op fsnotify.Op)
	logger   zerolog.Logger
}

// NewFileWatcher creates a new file watcher
func NewFileWatcher(patterns []string, exclude []string, onChange func(path string, op fsnotify.Op), logger zerolog.Logger) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	return &FileWatcher{
		watcher:  watcher,
		patterns: patterns,
		exclude:  exclude,
		onChange: onChange,
		logger:   logger,
	}, nil
}

// AddDirectory recursively adds a directory tree to the watcher
func (fw *FileWatcher) AddDirectory(dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if fw.excluded(path) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		// fsnotify watches directories, not files
		if info.IsDir() {
			if err := fw.watcher.Add(path); err != nil {
				return fmt.Errorf("failed to watch directory %s: %w", path, err)
			}
		}

		return nil
	})
}

// Start begins watching for file changes until the context is cancelled
func (fw *FileWatcher) Start(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher channel closed")
			}

			if fw.matches(event.Name) {
				fw.onChange(event.Name, event.Op)
			}

			// Newly created directories need their own watch
			if event.Op&fsnotify.Create == fsnotify.Create {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					fw.AddDirectory(event.Name)
				}
			}

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher error channel closed")
			}
			if err != nil {
				// Keep watching; a transient error must not end dev mode.
				fw.logger.Warn().Err(err).Msg("file watcher error")
			}
		}
	}
}

// matches checks if a changed file should trigger the change callback
func (fw *FileWatcher) matches(path string) bool {
	if fw.excluded(path) {
		return false
	}

	base := filepath.Base(path)
	for _, pattern := range fw.patterns {
		// `**/*.ext` means any depth; plain patterns match the basename
		if strings.HasPrefix(pattern, "**/*") {
			if strings.HasSuffix(path, strings.TrimPrefix(pattern, "**/*")) {
				return true
			}
			continue
		}
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}

	return false
}

// excluded checks a path against the exclude list. Entries ending in a
// slash exclude a directory and everything beneath it.
func (fw *FileWatcher) excluded(path string) bool {
	base := filepath.Base(path)
	for _, pattern := range fw.exclude {
		if dir, ok := strings.CutSuffix(pattern, "/"); ok {
			if base == dir || strings.Contains(path, string(filepath.Separator)+dir+string(filepath.Separator)) {
				return true
			}
			continue
		}
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}
	return false
}

// Close stops the watcher
func (fw *FileWatcher) Close() error {
	return fw.watcher.Close()
}
