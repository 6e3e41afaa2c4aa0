// Package watch re-runs a callback whenever a notes file settles after an
// edit.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"taskpilot/internal/logging"
)

// DefaultDebounce is how long a file must be quiet before the handler runs.
const DefaultDebounce = 500 * time.Millisecond

// Handler receives the full notes file content after it changed.
type Handler func(ctx context.Context, notes string) error

// NotesWatcher watches a single notes file. It watches the containing
// directory so that editors which save by rename are still seen.
type NotesWatcher struct {
	mu          sync.Mutex
	watcher     *fsnotify.Watcher
	path        string
	handler     Handler
	debounceDur time.Duration
	pendingAt   time.Time // zero when nothing is pending
	lastContent string
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool

	stats Stats
}

// Stats tracks watcher activity.
type Stats struct {
	Events        int
	HandlerRuns   int
	Unchanged     int
	Errors        int
	LastEventTime time.Time
	LastEventType string
}

// NewNotesWatcher creates a watcher for path. A non-positive debounce means
// DefaultDebounce.
func NewNotesWatcher(path string, debounce time.Duration, handler Handler) (*NotesWatcher, error) {
	if handler == nil {
		return nil, errors.New("watch: handler is required")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve %s: %w", path, err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &NotesWatcher{
		watcher:     watcher,
		path:        abs,
		handler:     handler,
		debounceDur: debounce,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}, nil
}

// Path returns the absolute path being watched.
func (w *NotesWatcher) Path() string {
	return w.path
}

// Start begins watching. It does not block. The file's current content is
// remembered so that saving it unchanged does not trigger the handler.
func (w *NotesWatcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	if content, err := os.ReadFile(w.path); err == nil {
		w.lastContent = string(content)
	}
	w.running = true
	w.mu.Unlock()

	dir := filepath.Dir(w.path)
	if err := w.watcher.Add(dir); err != nil {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		w.watcher.Close()
		return fmt.Errorf("watch: add %s: %w", dir, err)
	}
	logging.Watch("NotesWatcher: watching %s", w.path)

	go w.run(ctx)
	return nil
}

// Stop stops the watcher and waits for the event loop to exit.
func (w *NotesWatcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	if err := w.watcher.Close(); err != nil {
		logging.WatchError("NotesWatcher: error closing watcher: %v", err)
	}
	logging.Watch("NotesWatcher: stopped")
}

// Stats returns a snapshot of watcher activity.
func (w *NotesWatcher) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

func (w *NotesWatcher) run(ctx context.Context) {
	defer close(w.doneCh)

	tick := w.debounceDur / 4
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	debounceTicker := time.NewTicker(tick)
	defer debounceTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.WatchDebug("NotesWatcher: context cancelled")
			return

		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.WatchError("NotesWatcher error: %v", err)
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()

		case <-debounceTicker.C:
			w.processDebounced(ctx)
		}
	}
}

func (w *NotesWatcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.path {
		return
	}

	var eventType string
	switch {
	case event.Op&fsnotify.Create != 0:
		eventType = "create"
	case event.Op&fsnotify.Write != 0:
		eventType = "modify"
	case event.Op&fsnotify.Rename != 0:
		eventType = "rename"
	default:
		// Removal and chmod leave nothing to read.
		return
	}
	logging.WatchDebug("NotesWatcher: %s event for %s", eventType, event.Name)

	w.mu.Lock()
	now := time.Now()
	w.stats.Events++
	w.stats.LastEventTime = now
	w.stats.LastEventType = eventType
	w.pendingAt = now
	w.mu.Unlock()
}

// processDebounced runs the handler once the file has been quiet for the
// debounce window.
func (w *NotesWatcher) processDebounced(ctx context.Context) {
	w.mu.Lock()
	if w.pendingAt.IsZero() || time.Since(w.pendingAt) < w.debounceDur {
		w.mu.Unlock()
		return
	}
	w.pendingAt = time.Time{}
	w.mu.Unlock()

	content, err := os.ReadFile(w.path)
	if err != nil {
		if !os.IsNotExist(err) {
			logging.WatchError("NotesWatcher: failed to read %s: %v", w.path, err)
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()
		}
		return
	}

	w.mu.Lock()
	if string(content) == w.lastContent {
		w.stats.Unchanged++
		w.mu.Unlock()
		logging.WatchDebug("NotesWatcher: %s unchanged, skipping", w.path)
		return
	}
	w.lastContent = string(content)
	w.stats.HandlerRuns++
	w.mu.Unlock()

	if err := w.handler(ctx, string(content)); err != nil {
		logging.WatchError("NotesWatcher: handler failed for %s: %v", w.path, err)
		w.mu.Lock()
		w.stats.Errors++
		w.mu.Unlock()
	}
}
