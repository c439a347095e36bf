package flatten

import "github.com/vanderheijden86/treeflat/pkg/node"

// State is the expansion state of a single node.
type State int

const (
	Collapsed State = iota
	PreviewExpanded
	FullyExpanded
)

func (s State) String() string {
	switch s {
	case PreviewExpanded:
		return "preview"
	case FullyExpanded:
		return "expanded"
	default:
		return "collapsed"
	}
}

// StateOf reports the node's current state.
func StateOf(n *node.Node) State {
	switch {
	case n == nil:
		return Collapsed
	case n.Expanded:
		return FullyExpanded
	case n.PreviewExpanded:
		return PreviewExpanded
	default:
		return Collapsed
	}
}

// previewLimit resolves the node's preview policy against its child count.
// Negative counts and counts past the end mean every child.
func previewLimit(n *node.Node) int {
	count := n.PreviewCount()
	if count < 0 || count > len(n.Children) {
		return len(n.Children)
	}
	return count
}

// Previews reports whether an expand from Collapsed should stop at the
// preview slice. A preview count of zero never previews.
func Previews(n *node.Node) bool {
	if !n.PreviewEnabled {
		return false
	}
	count := n.PreviewCount()
	return count > 0 && count < len(n.Children)
}

// visibleChildren returns the children of n that belong in the sequence
// right now. This is the single rule both expand and collapse follow.
func visibleChildren(n *node.Node) []*node.Node {
	switch {
	case !n.Has(node.CapExpandable):
		return nil
	case n.Expanded:
		return n.Children
	case n.PreviewExpanded:
		return n.Children[:previewLimit(n)]
	default:
		return nil
	}
}

// appendVisible adds n and its visible descendants to rows in pre-order.
func appendVisible(rows []*node.Node, n *node.Node) []*node.Node {
	rows = append(rows, n)
	for _, child := range visibleChildren(n) {
		rows = appendVisible(rows, child)
	}
	return rows
}

// VisibleDescendants returns every row that currently sits under n in the
// sequence, pre-order, without n itself. Collapsed branches are pruned.
func VisibleDescendants(n *node.Node) []*node.Node {
	var rows []*node.Node
	for _, child := range visibleChildren(n) {
		rows = appendVisible(rows, child)
	}
	return rows
}
