package flatten

import (
	"go.uber.org/zap"

	"github.com/vanderheijden86/treeflat/pkg/node"
)

// Engine expands and collapses nodes in place inside a Sequence.
type Engine struct {
	seq          *Sequence
	headerOffset int
	notifier     Notifier
	logger       *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithHeaderOffset sets the number of host rows drawn above the first node.
func WithHeaderOffset(offset int) Option {
	return func(e *Engine) {
		e.headerOffset = offset
	}
}

// WithNotifier sets the receiver of change signals.
func WithNotifier(n Notifier) Option {
	return func(e *Engine) {
		if n != nil {
			e.notifier = n
		}
	}
}

// WithLogger sets the logger used for debug traces of each mutation.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an engine over seq. The engine never replaces seq; it only
// inserts and removes rows.
func New(seq *Sequence, opts ...Option) *Engine {
	e := &Engine{
		seq:      seq,
		notifier: NopNotifier{},
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Sequence returns the backing sequence.
func (e *Engine) Sequence() *Sequence {
	return e.seq
}

// HeaderOffset returns the configured header offset.
func (e *Engine) HeaderOffset() int {
	return e.headerOffset
}

// NodeAt returns the node at a display position, or nil.
func (e *Engine) NodeAt(pos int) *node.Node {
	return e.seq.At(pos - e.headerOffset)
}

// resolve maps a display position to an expandable node and its index.
// Stale or out-of-range positions resolve to nil.
func (e *Engine) resolve(pos int) (*node.Node, int) {
	idx := pos - e.headerOffset
	n := e.seq.At(idx)
	if !n.Has(node.CapExpandable) {
		return nil, -1
	}
	return n, idx
}

// Expand inserts the next slice of children of the node at pos and returns
// how many rows were inserted, nested re-expansions included.
//
// From Collapsed the slice is the preview (first PreviewCount children) when
// the node is in preview mode, otherwise every child. From PreviewExpanded
// the slice is the remainder, placed after the preview block. Children that
// were left expanded reappear with their own visible subtrees.
//
// A childless node is only flagged expanded. Positions that do not resolve
// to an expandable node, and nodes already fully expanded, are no-ops.
func (e *Engine) Expand(pos int, animate, notify bool) int {
	n, idx := e.resolve(pos)
	if n == nil || n.Expanded {
		return 0
	}

	if len(n.Children) == 0 {
		n.Expanded = true
		e.logger.Debug("expand leaf", zap.String("id", n.ID), zap.Int("position", pos))
		if notify {
			e.notifier.ItemChanged(pos)
		}
		return 0
	}

	at := idx + 1
	var slice []*node.Node
	switch {
	case n.PreviewExpanded:
		at += len(VisibleDescendants(n))
		slice = n.Children[previewLimit(n):]
		n.PreviewExpanded = false
		n.Expanded = true
	case Previews(n):
		slice = n.Children[:previewLimit(n)]
		n.PreviewExpanded = true
	default:
		slice = n.Children
		n.Expanded = true
	}

	var rows []*node.Node
	for _, child := range slice {
		rows = appendVisible(rows, child)
	}
	e.seq.insert(at, rows...)

	e.logger.Debug("expand",
		zap.String("id", n.ID),
		zap.Int("position", pos),
		zap.Int("inserted", len(rows)),
		zap.Stringer("state", StateOf(n)))

	if notify {
		if animate {
			e.notifier.ItemChanged(pos)
			if len(rows) > 0 {
				e.notifier.RangeInserted(at+e.headerOffset, len(rows))
			}
		} else {
			e.notifier.FullRefresh()
		}
	}
	return len(rows)
}

// Collapse removes every visible descendant of the node at pos in one range
// and returns how many rows were removed. The node returns to Collapsed;
// descendants keep their own flags so a later Expand restores them.
func (e *Engine) Collapse(pos int, animate, notify bool) int {
	n, idx := e.resolve(pos)
	if n == nil || (!n.Expanded && !n.PreviewExpanded) {
		return 0
	}

	// The descendants occupy [idx+1, idx+1+count) by construction, so the
	// removal is by range, never by value.
	count := len(VisibleDescendants(n))
	removed := e.seq.removeRange(idx+1, count)
	if removed != count {
		e.logger.Warn("sequence shorter than visible subtree",
			zap.String("id", n.ID),
			zap.Int("want", count),
			zap.Int("removed", removed))
	}
	n.Expanded = false
	n.PreviewExpanded = false

	e.logger.Debug("collapse",
		zap.String("id", n.ID),
		zap.Int("position", pos),
		zap.Int("removed", removed))

	if notify {
		if animate {
			e.notifier.ItemChanged(pos)
			if removed > 0 {
				e.notifier.RangeRemoved(pos+1, removed)
			}
		} else {
			e.notifier.FullRefresh()
		}
	}
	return removed
}

// Toggle collapses the node at pos if it is fully expanded and expands it
// otherwise, with animation and notification.
func (e *Engine) Toggle(pos int) {
	n, _ := e.resolve(pos)
	if n == nil {
		return
	}
	if n.Expanded {
		e.Collapse(pos, true, true)
	} else {
		e.Expand(pos, true, true)
	}
}

// ExpandAll expands every row currently in the sequence.
func (e *Engine) ExpandAll() {
	e.ExpandAllN(e.seq.Len())
}

// ExpandAllN expands the first limit rows, walking from the last toward the
// first so insertions never shift a row that is still to be visited. Rows
// with children that support previews are switched to preview mode first, so
// large trees stay bounded. One FullRefresh follows.
func (e *Engine) ExpandAllN(limit int) {
	limit = min(limit, e.seq.Len())
	inserted := 0
	for i := limit - 1; i >= 0; i-- {
		if n := e.seq.At(i); n.Has(node.CapPreview) && n.HasChildren() {
			n.SetPreviewEnabled(true)
		}
		inserted += e.Expand(i+e.headerOffset, false, false)
	}
	e.logger.Debug("expand all", zap.Int("limit", limit), zap.Int("inserted", inserted))
	e.notifier.FullRefresh()
}

// ExpandSubtree expands the node at pos and then every expandable row that
// appears beneath it, stopping at the row that followed the node's subtree
// before the call. It returns the total rows inserted.
func (e *Engine) ExpandSubtree(pos int, animate, notify bool) int {
	n, idx := e.resolve(pos)
	if n == nil {
		return 0
	}
	before := len(VisibleDescendants(n))
	end := e.seq.At(idx + 1 + before)

	count := e.Expand(pos, false, false)
	for i := idx + 1; i < e.seq.Len(); i++ {
		row := e.seq.At(i)
		if row == end {
			break
		}
		if row.Has(node.CapExpandable) {
			count += e.Expand(i+e.headerOffset, false, false)
		}
	}

	e.logger.Debug("expand subtree", zap.String("id", n.ID), zap.Int("inserted", count))

	if notify {
		// Rows land in a single block only when nothing was visible below.
		if animate && before == 0 {
			e.notifier.ItemChanged(pos)
			if count > 0 {
				e.notifier.RangeInserted(pos+1, count)
			}
		} else {
			e.notifier.FullRefresh()
		}
	}
	return count
}

// ParentPosition returns the display position of n's parent. Roots return
// their own position. Nodes not in the sequence return -1.
func (e *Engine) ParentPosition(n *node.Node) int {
	idx := e.seq.Index(n)
	if idx < 0 {
		return -1
	}
	if n.Parent == nil {
		return idx + e.headerOffset
	}
	for i := idx - 1; i >= 0; i-- {
		if e.seq.At(i) == n.Parent {
			return i + e.headerOffset
		}
	}
	return -1
}

// RemoveAll drops the given rows from the sequence by identity. It does not
// notify; callers removing rows directly also own the view refresh.
func (e *Engine) RemoveAll(nodes ...*node.Node) {
	if len(nodes) == 0 {
		return
	}
	set := make(map[*node.Node]struct{}, len(nodes))
	for _, n := range nodes {
		set[n] = struct{}{}
	}
	removed := e.seq.removeSet(set)
	e.logger.Debug("remove rows", zap.Int("requested", len(nodes)), zap.Int("removed", removed))
}

// Clear empties the sequence and requests a full refresh.
func (e *Engine) Clear() {
	e.seq.clear()
	e.logger.Debug("clear")
	e.notifier.FullRefresh()
}
