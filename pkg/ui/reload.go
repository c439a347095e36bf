// This file implements the Reloader, which rebuilds the tree off the UI
// goroutine when the document changes.
package ui

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/vanderheijden86/treeflat/pkg/node"
)

// ReloadMsg carries a freshly loaded forest, or the error that prevented it.
// Errors from a Reloader are *ReloadError. The model applies it on the UI
// goroutine.
type ReloadMsg struct {
	Roots []*node.Node
	Err   error
}

// ReloadError wraps a load failure with retry context.
type ReloadError struct {
	Cause   error     // The underlying error
	Time    time.Time // When the error occurred
	Retries int       // Consecutive failures including this one
}

func (e *ReloadError) Error() string {
	return fmt.Sprintf("reload failed: %v (retries: %d)", e.Cause, e.Retries)
}

func (e *ReloadError) Unwrap() error {
	return e.Cause
}

// ChangeSource reports settled document changes. *watcher.Watcher satisfies it.
// A nil source leaves TriggerRefresh as the only trigger.
type ChangeSource interface {
	Changed() <-chan struct{}
}

// LoadFunc loads and processes the document.
type LoadFunc func() ([]*node.Node, error)

// Reloader turns change signals into ReloadMsg values. Loads run on the
// Reloader's goroutine; only the resulting message reaches the UI.
type Reloader struct {
	source ChangeSource
	load   LoadFunc
	send   func(tea.Msg)
	logger *zap.Logger

	refresh chan struct{}

	mu         sync.Mutex
	lastError  *ReloadError
	errorCount int
}

// NewReloader creates a reloader. send is usually (*tea.Program).Send.
func NewReloader(source ChangeSource, load LoadFunc, send func(tea.Msg), logger *zap.Logger) *Reloader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reloader{
		source:  source,
		load:    load,
		send:    send,
		logger:  logger,
		refresh: make(chan struct{}, 1),
	}
}

// TriggerRefresh requests a reload without a file change. Requests made
// while one is pending are merged.
func (r *Reloader) TriggerRefresh() {
	select {
	case r.refresh <- struct{}{}:
	default:
	}
}

// LastError returns the most recent load error, or nil after a success.
func (r *Reloader) LastError() *ReloadError {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastError
}

// Run processes changes until ctx is done. It always returns nil so that it
// can share an errgroup with the program without cancelling it.
func (r *Reloader) Run(ctx context.Context) error {
	var changed <-chan struct{}
	if r.source != nil {
		changed = r.source.Changed()
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-changed:
			r.process()
		case <-r.refresh:
			r.process()
		}
	}
}

func (r *Reloader) process() {
	roots, err := r.safeLoad()
	r.recordError(err)
	if err != nil {
		last := r.LastError()
		r.logger.Warn("reload document", zap.Error(err), zap.Int("retries", last.Retries))
		r.send(ReloadMsg{Err: last})
		return
	}
	r.logger.Debug("reloaded document", zap.Int("roots", len(roots)))
	r.send(ReloadMsg{Roots: roots})
}

// safeLoad runs the load function and recovers from any panic.
func (r *Reloader) safeLoad() (roots []*node.Node, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v\n%s", p, debug.Stack())
		}
	}()
	return r.load()
}

func (r *Reloader) recordError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err == nil {
		r.lastError = nil
		r.errorCount = 0
		return
	}
	r.errorCount++
	r.lastError = &ReloadError{Cause: err, Time: time.Now(), Retries: r.errorCount}
}
