// Package watcher reloads a local page file when it changes on disk.
package watcher

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/spotus/spotus_viewer/pkg/debounce"
)

// DefaultDebounceDuration is the default debounce window.
const DefaultDebounceDuration = 250 * time.Millisecond

// ErrClosed is returned by Start on a watcher that was already stopped.
var ErrClosed = errors.New("watcher closed")

// Watcher calls onChange after the watched file is written, created or
// renamed into place. Editors that save by rename are handled by watching
// the parent directory and filtering on the file name.
type Watcher struct {
	path      string
	onChange  func()
	debouncer *debounce.Debouncer
	logger    *slog.Logger

	mu      sync.Mutex
	fsw     *fsnotify.Watcher
	done    chan struct{}
	stopped bool
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce overrides the debounce window.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debouncer = debounce.New(d) }
}

// WithLogger sets the logger used for watch errors.
func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) { w.logger = l }
}

// New creates a watcher for path. It does not start watching until Start.
func New(path string, onChange func(), opts ...Option) *Watcher {
	w := &Watcher{
		path:      filepath.Clean(path),
		onChange:  onChange,
		debouncer: debounce.New(DefaultDebounceDuration),
		logger:    slog.Default(),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start begins watching. Events are handled on a background goroutine until Stop.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return ErrClosed
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		fsw.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}
	w.fsw = fsw

	go w.loop(fsw)
	return nil
}

func (w *Watcher) loop(fsw *fsnotify.Watcher) {
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				w.debouncer.Debounce(w.path, w.onChange)
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("page watch error", "path", w.path, "error", err)
		}
	}
}

// Stop ends watching and drops any pending change notification.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return nil
	}
	w.stopped = true
	close(w.done)
	w.debouncer.CancelAll()
	if w.fsw != nil {
		return w.fsw.Close()
	}
	return nil
}

// Path returns the watched file.
func (w *Watcher) Path() string {
	return w.path
}
