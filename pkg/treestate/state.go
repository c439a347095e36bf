// Package treestate persists expand and preview state across sessions.
//
// File format (JSON):
//
//	{
//	  "version": 1,
//	  "expanded": {
//	    "release": true,   // fully expanded
//	    "backlog": false   // explicitly collapsed
//	  },
//	  "preview": {
//	    "inbox": true      // showing only its preview slice
//	  }
//	}
//
// Only nodes with children are recorded. IDs in the file that no longer exist
// in the tree are ignored on Apply. A missing file means defaults; a corrupt
// file means defaults plus an error the caller logs.
package treestate

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"

	"github.com/vanderheijden86/treeflat/pkg/flatten"
	"github.com/vanderheijden86/treeflat/pkg/node"
)

// Version is the current schema version.
const Version = 1

// FileName is the state file name inside the project's .treeflat directory.
const FileName = "tree-state.json"

// State is the persisted expansion state, keyed by node ID.
type State struct {
	Version  int             `json:"version"`
	Expanded map[string]bool `json:"expanded"`
	Preview  map[string]bool `json:"preview,omitempty"`
}

// Default returns an empty state at the current version.
func Default() *State {
	return &State{
		Version:  Version,
		Expanded: make(map[string]bool),
		Preview:  make(map[string]bool),
	}
}

// Path returns the state file path inside dir.
func Path(dir string) string {
	if dir == "" {
		dir = ".treeflat"
	}
	return filepath.Join(dir, FileName)
}

// Load reads the state at path. A missing file yields Default and no error.
// An unreadable or corrupt file yields Default and the error.
func Load(path string) (*State, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Default(), fmt.Errorf("read tree state %s: %w", path, err)
	}

	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return Default(), fmt.Errorf("invalid tree state %s: %w", path, err)
	}
	if s.Version > Version {
		return Default(), fmt.Errorf("tree state %s: unsupported version %d", path, s.Version)
	}
	if s.Expanded == nil {
		s.Expanded = make(map[string]bool)
	}
	if s.Preview == nil {
		s.Preview = make(map[string]bool)
	}
	s.Version = Version
	return &s, nil
}

// Save writes the state to path, creating the directory if needed.
func (s *State) Save(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal tree state: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write tree state %s: %w", path, err)
	}
	return nil
}

// Capture records the expansion state of every node with children.
func Capture(roots []*node.Node) *State {
	s := Default()
	node.Walk(roots, func(n *node.Node) bool {
		if !n.HasChildren() || !n.Has(node.CapExpandable) {
			return true
		}
		switch flatten.StateOf(n) {
		case flatten.FullyExpanded:
			s.Expanded[n.ID] = true
		case flatten.PreviewExpanded:
			s.Preview[n.ID] = true
		default:
			s.Expanded[n.ID] = false
		}
		return true
	})
	return s
}

// Apply sets expansion flags on nodes named in the state and returns how many
// nodes it touched. It must run before the row sequence is built from roots.
// A preview entry puts preview-capable nodes back into preview mode.
func (s *State) Apply(roots []*node.Node) int {
	if s == nil {
		return 0
	}
	applied := 0
	node.Walk(roots, func(n *node.Node) bool {
		if !n.Has(node.CapExpandable) {
			return true
		}
		if expanded, ok := s.Expanded[n.ID]; ok {
			n.Expanded = expanded
			n.PreviewExpanded = false
			applied++
		}
		if !s.Preview[n.ID] || !n.Has(node.CapPreview) {
			return true
		}
		// Preview mode may have been switched on by expand all.
		n.SetPreviewEnabled(true)
		if flatten.Previews(n) {
			n.Expanded = false
			n.PreviewExpanded = true
			applied++
		}
		return true
	})
	return applied
}
