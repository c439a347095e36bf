package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vanderheijden86/treeflat/pkg/config"
	"github.com/vanderheijden86/treeflat/pkg/loader"
)

const sampleDocument = `# Tree document for treeflat. See "treeflat --help".
preview: 3
nodes:
  - id: inbox
    title: Inbox
    preview_enabled: true
    checkable: true
    children:
      - {id: inbox-1, title: Reply to review comments, checked: false}
      - {id: inbox-2, title: Update changelog, checked: true}
      - {id: inbox-3, title: Rotate API keys, checked: false}
      - {id: inbox-4, title: Plan next sprint, checked: false}
  - id: archive
    title: Archive
    children:
      - id: archive-2025
        title: "2025"
        children:
          - {id: archive-2025-q4, title: Q4}
`

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create .treeflat/ with a config and sample document",
		Long: `Creates .treeflat/config.yaml and .treeflat/tree.yaml in the current
directory unless they exist, and adds the view state file to .gitignore.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := os.Getwd()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			cfg := config.Default(cwd)

			cfgPath := filepath.Join(cfg.Dir(), config.FileName)
			if created, err := createIfMissing(cfgPath, cfg.Save); err != nil {
				return err
			} else if created {
				fprintln(out, "created", cfgPath)
			}

			docPath := cfg.DocumentPath()
			writeDoc := func() error {
				return os.WriteFile(docPath, []byte(sampleDocument), 0o644)
			}
			if created, err := createIfMissing(docPath, writeDoc); err != nil {
				return err
			} else if created {
				fprintln(out, "created", docPath)
			}

			if err := loader.EnsureStateIgnored(cwd); err != nil {
				return fmt.Errorf("updating .gitignore: %w", err)
			}
			a.logger.Debug("initialized project")
			return nil
		},
	}
}

// createIfMissing runs create unless path already exists.
func createIfMissing(path string, create func() error) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, err
	}
	if err := create(); err != nil {
		return false, err
	}
	return true, nil
}
