package flatten

import (
	"slices"

	"github.com/vanderheijden86/treeflat/pkg/node"
)

// Sequence is the ordered row list a renderer iterates. The host owns it and
// reads it; only the Engine changes it.
type Sequence struct {
	rows []*node.Node
}

// NewSequence lays out roots and their currently visible descendants.
func NewSequence(roots ...*node.Node) *Sequence {
	s := &Sequence{}
	for _, root := range roots {
		if root != nil {
			s.rows = appendVisible(s.rows, root)
		}
	}
	return s
}

// Len returns the number of rows.
func (s *Sequence) Len() int {
	return len(s.rows)
}

// At returns the row at index i, or nil when i is out of range.
func (s *Sequence) At(i int) *node.Node {
	if i < 0 || i >= len(s.rows) {
		return nil
	}
	return s.rows[i]
}

// Index returns the index of n by identity, or -1.
func (s *Sequence) Index(n *node.Node) int {
	for i, row := range s.rows {
		if row == n {
			return i
		}
	}
	return -1
}

// Items returns a copy of the rows.
func (s *Sequence) Items() []*node.Node {
	return slices.Clone(s.rows)
}

// IDs returns the row IDs in order.
func (s *Sequence) IDs() []string {
	ids := make([]string, len(s.rows))
	for i, row := range s.rows {
		ids[i] = row.ID
	}
	return ids
}

func (s *Sequence) insert(at int, rows ...*node.Node) {
	if at > len(s.rows) {
		at = len(s.rows)
	}
	s.rows = slices.Insert(s.rows, at, rows...)
}

// removeRange deletes [start, start+count), clamped to the sequence bounds.
// It returns how many rows were actually removed.
func (s *Sequence) removeRange(start, count int) int {
	if start < 0 || start >= len(s.rows) || count <= 0 {
		return 0
	}
	end := min(start+count, len(s.rows))
	s.rows = slices.Delete(s.rows, start, end)
	return end - start
}

func (s *Sequence) removeSet(set map[*node.Node]struct{}) int {
	before := len(s.rows)
	s.rows = slices.DeleteFunc(s.rows, func(n *node.Node) bool {
		_, ok := set[n]
		return ok
	})
	return before - len(s.rows)
}

func (s *Sequence) clear() {
	clear(s.rows)
	s.rows = s.rows[:0]
}
