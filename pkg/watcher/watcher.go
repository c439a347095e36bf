// Package watcher reports debounced changes to a single tree document.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher signals on Changed after the watched file stops changing for the
// debounce duration. The parent directory is watched so that editors which
// save by rename are still seen.
type Watcher struct {
	path      string
	fsw       *fsnotify.Watcher
	wait      time.Duration
	debouncer *debouncer
	logger    *zap.Logger

	changed chan struct{}

	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	once    sync.Once
	started atomic.Bool
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounceDuration sets the quiet period before a change is reported.
func WithDebounceDuration(d time.Duration) Option {
	return func(w *Watcher) {
		w.wait = d
	}
}

// WithLogger sets the logger for watch errors.
func WithLogger(l *zap.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// New creates a watcher for path. Call Start to begin watching.
func New(path string, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve watch path: %w", err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		path:      abs,
		fsw:       fsw,
		logger:    zap.NewNop(),
		changed:   make(chan struct{}, 1),
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.debouncer = newDebouncer(w.wait, w.signal)
	return w, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Changed delivers one signal per settled burst of changes. Signals that
// arrive while a previous one is unread are merged.
func (w *Watcher) Changed() <-chan struct{} {
	return w.changed
}

// Start begins watching. It returns once the watch is registered.
func (w *Watcher) Start() error {
	if err := w.fsw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}
	w.started.Store(true)
	go w.watchLoop()
	return nil
}

// Stop shuts the watcher down and waits for its goroutine to exit. It is
// safe to call more than once, and before Start.
func (w *Watcher) Stop() {
	w.once.Do(func() {
		w.cancel()
		w.debouncer.stop()
		if err := w.fsw.Close(); err != nil {
			w.logger.Warn("close watcher", zap.Error(err))
		}
	})
	if w.started.Load() {
		<-w.done
	}
	w.debouncer.stop()
}

func (w *Watcher) watchLoop() {
	defer close(w.done)
	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			// Only content changes matter (not chmod)
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			w.logger.Debug("document event", zap.String("op", event.Op.String()))
			w.debouncer.poke()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			// Errors are logged but don't stop the watcher
			w.logger.Warn("watch error", zap.String("path", w.path), zap.Error(err))
		}
	}
}

func (w *Watcher) signal() {
	if w.ctx.Err() != nil {
		return
	}
	select {
	case w.changed <- struct{}{}:
	default:
	}
}
