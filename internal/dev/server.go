package dev

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/MolecularSadism/enumgen/internal/build"
	"github.com/MolecularSadism/enumgen/internal/config"
	"github.com/MolecularSadism/enumgen/internal/schema"
)

// debounceWindow coalesces the bursts of events editors produce per save.
const debounceWindow = 200 * time.Millisecond

// Server watches a project and reruns the generation pipeline on changes.
type Server struct {
	config      *config.Config
	projectRoot string
	watcher     *FileWatcher
	pipeline    *build.Pipeline
	logger      zerolog.Logger

	mu      sync.Mutex
	pending *time.Timer
}

// NewServer creates a watch-mode server for one project
func NewServer(cfg *config.Config, projectRoot string) *Server {
	logger := zerolog.New(os.Stderr).With().
		Timestamp().
		Str("component", "dev").
		Logger()

	return &Server{
		config:      cfg,
		projectRoot: projectRoot,
		pipeline:    build.NewPipeline(cfg, projectRoot, logger),
		logger:      logger,
	}
}

// Start runs an initial generation, then watches until the context ends.
// A broken initial state is not fatal: watch mode exists to iterate on
// declarations, so failures are reported and watching continues.
func (s *Server) Start(ctx context.Context) error {
	s.regenerate()

	watcher, err := NewFileWatcher(
		s.config.Dev.Watch,
		s.config.Dev.Exclude,
		s.handleFileChange,
		s.logger,
	)
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	s.watcher = watcher
	defer s.watcher.Close()

	if err := s.watcher.AddDirectory(s.projectRoot); err != nil {
		return fmt.Errorf("failed to watch project directory: %w", err)
	}

	fmt.Println("👀 Watching for changes. Press Ctrl+C to stop.")
	return s.watcher.Start(ctx)
}

// handleFileChange is called when a watched file changes
func (s *Server) handleFileChange(path string, op fsnotify.Op) {
	// Editor temp files
	if strings.Contains(path, ".tmp") || strings.HasSuffix(path, "~") {
		return
	}

	switch op {
	case fsnotify.Create, fsnotify.Write, fsnotify.Remove, fsnotify.Rename:
	default:
		return
	}

	relPath, _ := filepath.Rel(s.projectRoot, path)
	s.logger.Debug().Str("path", relPath).Str("op", op.String()).Msg("file changed")

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending != nil {
		s.pending.Stop()
	}
	s.pending = time.AfterFunc(debounceWindow, func() {
		fmt.Printf("\n📝 %s changed\n", relPath)
		s.regenerate()
	})
}

// regenerate reruns the pipeline and reports the outcome
func (s *Server) regenerate() {
	start := time.Now()
	result, err := s.pipeline.Run()
	if err != nil {
		var verr *schema.ValidationError
		if errors.As(err, &verr) {
			for _, v := range verr.Violations {
				fmt.Printf("❌ %s\n", v)
			}
			return
		}
		fmt.Printf("❌ Generation failed: %v\n", err)
		return
	}

	fmt.Printf("✅ Regenerated %d file(s) in %s\n",
		len(result.Artifacts), time.Since(start).Round(time.Millisecond))
}
