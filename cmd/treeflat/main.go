// Command treeflat browses a tree document with expandable, previewable
// nodes.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/vanderheijden86/treeflat/pkg/config"
	"github.com/vanderheijden86/treeflat/pkg/loader"
	"github.com/vanderheijden86/treeflat/pkg/node"
	"github.com/vanderheijden86/treeflat/pkg/treestate"
)

// app holds the flags and resources shared by every command.
type app struct {
	verbose bool
	logFile string
	preview int
	noState bool
	noWatch bool

	cfg    *config.Config
	logger *zap.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(&app{}).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "treeflat [file]",
		Short: "Browse a tree document with expandable, previewable nodes",
		Long: `treeflat shows a YAML or JSON tree document as a flat, scrollable list.

Nodes expand in place. Nodes with preview_enabled show their first few
children first and the rest on a second expand. Expand state is saved to
.treeflat/tree-state.json and restored on the next run.

Without a file argument the document is read from .treeflat/tree.yaml in the
nearest enclosing project. When stdout is not a terminal the flattened rows
are printed as JSON instead.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
		RunE: a.runView,
	}

	flags := root.PersistentFlags()
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")
	flags.StringVar(&a.logFile, "log-file", "", "Write logs to this file (interactive mode defaults to a temp file)")
	flags.IntVar(&a.preview, "preview", node.DefaultPreviewCount, "Default preview size for preview_enabled nodes (negative = all, 0 = never)")
	flags.BoolVar(&a.noState, "no-state", false, "Neither restore nor save expand state")
	root.Flags().BoolVar(&a.noWatch, "no-watch", false, "Don't reload when the document changes")

	root.AddCommand(newDumpCmd(a), newCheckedCmd(a), newInitCmd(a))
	return root
}

// setup loads the project config and builds the logger.
func (a *app) setup(cmd *cobra.Command) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	a.cfg, err = config.LoadNearest(cwd)
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("preview") {
		a.preview = a.cfg.PreviewCount()
	}

	logFile := a.logFile
	if logFile == "" && a.verbose && cmd.Parent() == nil {
		// The interactive view owns the terminal.
		logFile = filepath.Join(os.TempDir(), "treeflat.log")
	}
	a.logger, err = buildLogger(a.verbose, logFile)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

func buildLogger(verbose bool, logFile string) (*zap.Logger, error) {
	if !verbose && logFile == "" {
		return zap.NewNop(), nil
	}
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	if logFile != "" {
		cfg.OutputPaths = []string{logFile}
		cfg.ErrorOutputPaths = []string{logFile}
	}
	return cfg.Build()
}

// documentPath resolves the file argument, falling back to the config.
func (a *app) documentPath(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return a.cfg.DocumentPath()
}

// loadDocument reads the document without any saved state.
func (a *app) loadDocument(path string) ([]*node.Node, error) {
	return loader.LoadFile(path, loader.WithDefaultPreview(a.preview))
}

// loadForest reads the document and applies saved expand state.
func (a *app) loadForest(path string) ([]*node.Node, error) {
	roots, err := a.loadDocument(path)
	if err != nil {
		return nil, err
	}
	if a.noState {
		return roots, nil
	}
	state, err := treestate.Load(a.cfg.StatePath())
	if err != nil {
		a.logger.Warn("invalid tree state file, using defaults", zap.Error(err))
	}
	applied := state.Apply(roots)
	a.logger.Debug("loaded document",
		zap.String("path", path),
		zap.Int("roots", len(roots)),
		zap.Int("state_applied", applied))
	return roots, nil
}

func (a *app) statePath() string {
	if a.noState {
		return ""
	}
	return a.cfg.StatePath()
}

func fprintln(w io.Writer, args ...any) {
	_, _ = fmt.Fprintln(w, args...)
}
