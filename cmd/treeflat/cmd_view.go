package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/vanderheijden86/treeflat/pkg/node"
	"github.com/vanderheijden86/treeflat/pkg/ui"
	"github.com/vanderheijden86/treeflat/pkg/watcher"
)

// runView starts the interactive tree view, or prints a dump when stdout is
// not a terminal.
func (a *app) runView(cmd *cobra.Command, args []string) error {
	path := a.documentPath(args)
	roots, err := a.loadForest(path)
	if err != nil {
		return err
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		a.logger.Debug("stdout is not a terminal, printing rows")
		return writeDump(cmd.OutOrStdout(), roots, dumpOptions{})
	}

	model := ui.NewTreeModel(ui.DefaultTheme(lipgloss.DefaultRenderer()),
		ui.WithTitle(filepath.Base(path)),
		ui.WithStatePath(a.statePath()),
		ui.WithTreeLogger(a.logger))
	model.SetRoots(roots)

	// The watcher is set up before the program so a failure here never
	// leaves the terminal in alt-screen mode.
	w, err := a.startWatcher(path)
	if err != nil {
		return err
	}
	if w != nil {
		defer w.Stop()
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(gctx))

	// Saved state is not re-applied on reload; the view carries its own.
	load := func() ([]*node.Node, error) {
		return a.loadDocument(path)
	}
	var source ui.ChangeSource
	if w != nil {
		source = w
	}
	reloader := ui.NewReloader(source, load, p.Send, a.logger)
	model.SetRefresh(reloader.TriggerRefresh)

	g.Go(func() error {
		defer cancel()
		_, err := p.Run()
		if errors.Is(err, tea.ErrProgramKilled) && cmd.Context().Err() != nil {
			return nil // interrupted
		}
		return err
	})

	g.Go(func() error {
		return reloader.Run(gctx)
	})

	return g.Wait()
}

// startWatcher returns a running watcher for path, or nil when watching is
// disabled or the watch could not be registered.
func (a *app) startWatcher(path string) (*watcher.Watcher, error) {
	if !a.cfg.WatchEnabled() || a.noWatch {
		return nil, nil
	}
	w, err := watcher.New(path,
		watcher.WithDebounceDuration(a.cfg.DebounceDuration()),
		watcher.WithLogger(a.logger))
	if err != nil {
		return nil, err
	}
	if err := w.Start(); err != nil {
		a.logger.Warn("watch disabled", zap.Error(err))
		w.Stop()
		return nil, nil
	}
	return w, nil
}
