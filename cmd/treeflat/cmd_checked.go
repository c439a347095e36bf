package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/vanderheijden86/treeflat/pkg/node"
)

// checkedGroup is the roll-up for one checkable parent.
type checkedGroup struct {
	ID      string   `json:"id"`
	Checked []string `json:"checked"`
}

func newCheckedCmd(a *app) *cobra.Command {
	var deep, asJSON bool
	cmd := &cobra.Command{
		Use:   "checked [file]",
		Short: "Print the checked children of every checkable parent",
		Long: `For every checkable node with children, prints the IDs of its checked
children in document order. With --deep, checked nodes anywhere below the
parent are listed, descending only through checkable nodes.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			roots, err := a.loadDocument(a.documentPath(args))
			if err != nil {
				return err
			}
			groups := rollUp(roots, deep)
			if asJSON {
				data, err := json.MarshalIndent(groups, "", "  ")
				if err != nil {
					return fmt.Errorf("encoding roll-up: %w", err)
				}
				fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}
			writeChecked(cmd.OutOrStdout(), groups)
			return nil
		},
	}
	cmd.Flags().BoolVar(&deep, "deep", false, "Include checked descendants, not only direct children")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of text")
	return cmd
}

func rollUp(roots []*node.Node, deep bool) []checkedGroup {
	groups := []checkedGroup{}
	node.Walk(roots, func(n *node.Node) bool {
		if !n.Has(node.CapCheckable) || !n.HasChildren() {
			return true
		}
		picked := node.CheckedChildren(n)
		if deep {
			picked = node.CheckedDescendants(n)
		}
		ids := make([]string, len(picked))
		for i, c := range picked {
			ids[i] = c.ID
		}
		groups = append(groups, checkedGroup{ID: n.ID, Checked: ids})
		return true
	})
	return groups
}

func writeChecked(w io.Writer, groups []checkedGroup) {
	for _, g := range groups {
		list := "(none)"
		if len(g.Checked) > 0 {
			list = strings.Join(g.Checked, ", ")
		}
		fprintln(w, g.ID+": "+list)
	}
}
