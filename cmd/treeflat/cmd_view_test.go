package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vanderheijden86/treeflat/pkg/config"
)

func newViewApp(root string) *app {
	return &app{cfg: config.Default(root), logger: zap.NewNop()}
}

// TestStartWatcherRunsBeforeView verifies the watcher is ready for the
// document before any program is started.
func TestStartWatcherRunsBeforeView(t *testing.T) {
	root := setupProject(t)
	a := newViewApp(root)

	w, err := a.startWatcher(a.cfg.DocumentPath())
	require.NoError(t, err)
	require.NotNil(t, w)
	t.Cleanup(w.Stop)
	require.Equal(t, a.cfg.DocumentPath(), w.Path())
}

// TestStartWatcherDisabled verifies --no-watch and watch: false skip the watcher.
func TestStartWatcherDisabled(t *testing.T) {
	root := setupProject(t)

	a := newViewApp(root)
	a.noWatch = true
	w, err := a.startWatcher(a.cfg.DocumentPath())
	require.NoError(t, err)
	require.Nil(t, w)

	off := false
	a = newViewApp(root)
	a.cfg.Watch = &off
	w, err = a.startWatcher(a.cfg.DocumentPath())
	require.NoError(t, err)
	require.Nil(t, w)
}

// TestStartWatcherMissingDirectory verifies an unwatchable path disables
// watching instead of failing the view.
func TestStartWatcherMissingDirectory(t *testing.T) {
	a := newViewApp(t.TempDir())

	w, err := a.startWatcher(filepath.Join(t.TempDir(), "gone", "tree.yaml"))
	require.NoError(t, err)
	require.Nil(t, w)
}
