// Package watcher provides a filesystem trigger that re-ingests files
// as they appear or change inside a watched directory.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/praxis-labs/knowctl/internal/core/ports/driven"
	"github.com/praxis-labs/knowctl/internal/core/ports/driving"
	"github.com/praxis-labs/knowctl/internal/logger"
)

// Ensure Watcher implements the interface.
var _ driven.Trigger = (*Watcher)(nil)

// DefaultDebounce is the quiet period before a changed file is
// re-ingested. Editors fire several write events per save; the
// debounce collapses them into one ingestion run.
const DefaultDebounce = 500 * time.Millisecond

// Config holds configuration for the filesystem watcher.
type Config struct {
	// Dir is the directory to watch (required).
	Dir string

	// Extensions lists file suffixes to ingest (default: .txt, .md).
	Extensions []string

	// Debounce is the quiet period per file (default: 500ms).
	Debounce time.Duration
}

// Watcher watches a directory and ingests created or modified files.
type Watcher struct {
	ingestor driving.Ingestor
	dir      string
	exts     map[string]struct{}
	debounce time.Duration

	mu      sync.Mutex
	fs      *fsnotify.Watcher
	timers  map[string]*time.Timer
	running bool
	done    chan struct{}
}

// New creates a filesystem watcher that feeds the given ingestor.
func New(ingestor driving.Ingestor, cfg Config) *Watcher {
	exts := cfg.Extensions
	if len(exts) == 0 {
		exts = []string{".txt", ".md"}
	}

	extSet := make(map[string]struct{}, len(exts))
	for _, e := range exts {
		extSet[strings.ToLower(e)] = struct{}{}
	}

	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	return &Watcher{
		ingestor: ingestor,
		dir:      cfg.Dir,
		exts:     extSet,
		debounce: debounce,
		timers:   make(map[string]*time.Timer),
	}
}

// Start begins watching. It returns once the watch is established; the
// event loop runs until Stop is called or ctx is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return fmt.Errorf("watcher already running")
	}

	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	if err := fs.Add(w.dir); err != nil {
		fs.Close()
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}

	w.fs = fs
	w.running = true
	w.done = make(chan struct{})

	go w.loop(ctx)

	logger.Info("Watching %s", w.dir)
	return nil
}

// Stop ends the watch and waits for the event loop to drain.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}

	fs := w.fs
	done := w.done
	w.running = false

	for path, timer := range w.timers {
		timer.Stop()
		delete(w.timers, path)
	}
	w.mu.Unlock()

	err := fs.Close()
	<-done
	return err
}

// Running reports whether the watcher is active.
func (w *Watcher) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.done)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				w.schedule(ctx, event.Name)
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			logger.Warn("Watcher error: %v", err)
		}
	}
}

// schedule arms (or re-arms) the debounce timer for path.
func (w *Watcher) schedule(ctx context.Context, path string) {
	ext := strings.ToLower(filepath.Ext(path))
	if _, ok := w.exts[ext]; !ok {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}

	if timer, ok := w.timers[path]; ok {
		timer.Reset(w.debounce)
		return
	}

	w.timers[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, path)
		running := w.running
		w.mu.Unlock()

		if !running || ctx.Err() != nil {
			return
		}

		if _, err := w.ingestor.Ingest(ctx, path); err != nil {
			logger.Warn("Ingesting %s failed: %v", path, err)
		}
	})
}
