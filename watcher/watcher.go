package watcher

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultInterval is the quiet period after the last write before a file is processed.
const DefaultInterval = 500 * time.Millisecond

// Filter decides which paths the watcher reports.
type Filter interface {
	ShouldIgnoreDir(absolutePath string) bool
	ShouldIgnore(absolutePath string) bool
}

// HandleFunc processes one settled feedback file.
type HandleFunc func(ctx context.Context, path string) error

// Watcher reports settled files under an inbox directory.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	debouncer *Debouncer
	filter    Filter
	rootDir   string
	logger    *slog.Logger
}

// NewWatcher creates a recursive watcher on rootDir. Every directory the filter
// does not reject is registered.
func NewWatcher(rootDir string, filter Filter, interval time.Duration, logger *slog.Logger) (*Watcher, error) {
	info, err := os.Stat(rootDir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, &os.PathError{Op: "watch", Path: rootDir, Err: os.ErrInvalid}
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	w := &Watcher{
		fsWatcher: fsWatcher,
		debouncer: NewDebouncer(interval),
		filter:    filter,
		rootDir:   rootDir,
		logger:    logger,
	}

	// Walk directory tree and add all non-ignored directories to the watcher
	err = filepath.WalkDir(rootDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // Skip entries that can't be read
		}
		if !d.IsDir() {
			return nil
		}
		if path != rootDir && filter.ShouldIgnoreDir(path) {
			return filepath.SkipDir
		}
		if watchErr := fsWatcher.Add(path); watchErr != nil {
			w.logger.Warn("failed to watch directory", "path", path, "error", watchErr)
		}
		return nil
	})
	if err != nil {
		fsWatcher.Close()
		return nil, err
	}

	return w, nil
}

// Events returns the channel that receives debounced file system events.
func (w *Watcher) Events() <-chan []DebouncedEvent {
	return w.debouncer.Output()
}

// Start begins listening for file system events. Call this in a goroutine.
// It runs until the watcher is closed.
func (w *Watcher) Start() {
	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}

// Run consumes debounced batches until ctx is done, calling handle once per settled
// file. Files are handled one at a time in path order; a failing file is logged and
// the loop continues.
func (w *Watcher) Run(ctx context.Context, handle HandleFunc) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case batch := <-w.Events():
			for _, path := range SettledFiles(batch) {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				start := time.Now()
				if err := handle(ctx, path); err != nil {
					w.logger.Error("processing feedback file failed", "path", path, "error", err)
					continue
				}
				w.logger.Info("processed feedback file", "path", path, "elapsed", time.Since(start))
			}
		}
	}
}

// SettledFiles returns the paths of created or written regular files in a batch.
func SettledFiles(batch []DebouncedEvent) []string {
	var paths []string
	for _, event := range batch {
		if event.Op != OpCreate && event.Op != OpWrite {
			continue
		}
		info, err := os.Stat(event.Path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		paths = append(paths, event.Path)
	}
	return paths
}

// handleEvent processes a single fsnotify event, converting it to a debounced event.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name

	// If a new directory was created, start watching it
	if event.Has(fsnotify.Create) {
		info, err := os.Stat(path)
		if err == nil && info.IsDir() {
			if !w.filter.ShouldIgnoreDir(path) {
				if err := w.fsWatcher.Add(path); err != nil {
					w.logger.Warn("failed to watch new directory", "path", path, "error", err)
				}
			}
			return // Don't emit events for directory creation
		}
	}

	if w.filter.ShouldIgnore(path) {
		return
	}

	var op EventOp
	switch {
	case event.Has(fsnotify.Create):
		op = OpCreate
	case event.Has(fsnotify.Write):
		op = OpWrite
	case event.Has(fsnotify.Remove):
		op = OpRemove
	case event.Has(fsnotify.Rename):
		op = OpRename
	default:
		return
	}

	w.debouncer.Add(path, op)
}

// Close stops the watcher and releases resources.
func (w *Watcher) Close() error {
	w.debouncer.Stop()
	return w.fsWatcher.Close()
}
