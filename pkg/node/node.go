// Package node defines the tree record that the flattening engine lays out
// into a row sequence.
//
// A Node carries data only. Expand, collapse and preview transitions live in
// package flatten; the fields below are mutated there under single-writer
// discipline (the goroutine that owns the rendering surface).
package node

import "fmt"

// Role distinguishes parent rows from child rows. It is independent of depth.
type Role int

const (
	RoleChild  Role = iota // leaf row
	RoleParent             // row with children
)

func (r Role) String() string {
	switch r {
	case RoleParent:
		return "parent"
	case RoleChild:
		return "child"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// Capability is a bit set of optional behaviors, fixed at construction.
type Capability uint8

const (
	CapExpandable Capability = 1 << iota // can be expanded/collapsed
	CapPreview                           // supports bounded preview expansion
	CapCheckable                         // carries a checked flag
)

func (c Capability) String() string {
	switch c {
	case CapExpandable:
		return "expandable"
	case CapPreview:
		return "preview"
	case CapCheckable:
		return "checkable"
	default:
		return fmt.Sprintf("capability(%#x)", uint8(c))
	}
}

// DefaultPreviewCount is the preview size used by WithPreview when a node
// type does not choose its own.
const DefaultPreviewCount = 6

// Node is one element of the tree.
type Node struct {
	ID       string
	Title    string
	Role     Role
	Depth    int   // Nesting level (0 = root)
	Parent   *Node // Back-reference, set by Process
	Children []*Node

	Expanded        bool // Full children are in the row sequence
	PreviewEnabled  bool // Node uses bounded preview expansion
	PreviewExpanded bool // Only the preview slice is in the row sequence
	Checked         bool

	caps         Capability
	previewCount int
}

// Option configures a Node at construction.
type Option func(*Node)

// New creates an expandable node. Capabilities are resolved here once and
// never re-derived.
func New(id, title string, opts ...Option) *Node {
	n := &Node{
		ID:    id,
		Title: title,
		caps:  CapExpandable,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// WithChildren appends children in order.
func WithChildren(children ...*Node) Option {
	return func(n *Node) {
		n.Children = append(n.Children, children...)
	}
}

// WithPreview gives the node the preview capability with the given policy:
// negative shows every child, zero never previews, N > 0 previews the first N.
func WithPreview(count int) Option {
	return func(n *Node) {
		n.caps |= CapPreview
		n.previewCount = count
	}
}

// WithPreviewEnabled starts the node in preview mode. Requires WithPreview
// earlier in the option list.
func WithPreviewEnabled() Option {
	return func(n *Node) {
		n.SetPreviewEnabled(true)
	}
}

// WithCheckable adds the checked capability.
func WithCheckable() Option {
	return func(n *Node) {
		n.caps |= CapCheckable
	}
}

// WithChecked marks a checkable node as checked.
func WithChecked(checked bool) Option {
	return func(n *Node) {
		n.caps |= CapCheckable
		n.Checked = checked
	}
}

// WithExpanded declares the node expanded at construction.
func WithExpanded() Option {
	return func(n *Node) {
		n.Expanded = true
	}
}

// WithoutExpand makes a plain row that the engine will never expand.
func WithoutExpand() Option {
	return func(n *Node) {
		n.caps &^= CapExpandable
	}
}

// Has reports whether the node was constructed with capability c.
func (n *Node) Has(c Capability) bool {
	return n != nil && n.caps&c == c
}

// Capabilities returns the full capability set.
func (n *Node) Capabilities() Capability {
	return n.caps
}

// PreviewCount returns the preview policy. Panics if the node lacks
// CapPreview.
func (n *Node) PreviewCount() int {
	MustHave(n, CapPreview)
	return n.previewCount
}

// SetPreviewEnabled switches preview mode. Panics if the node lacks
// CapPreview.
func (n *Node) SetPreviewEnabled(enabled bool) {
	MustHave(n, CapPreview)
	n.PreviewEnabled = enabled
}

// HasChildren reports whether the node has at least one child.
func (n *Node) HasChildren() bool {
	return n != nil && len(n.Children) > 0
}

// Path returns the titles from the root down to n, joined by sep.
func (n *Node) Path(sep string) string {
	if n == nil {
		return ""
	}
	if n.Parent == nil {
		return n.Title
	}
	return n.Parent.Path(sep) + sep + n.Title
}

func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s(%s, depth %d)", n.ID, n.Role, n.Depth)
}

// Equal compares two nodes by value over every attribute, recursing into
// children. Parent links are not compared.
func (n *Node) Equal(o *Node) bool {
	if n == nil || o == nil {
		return n == o
	}
	if n.ID != o.ID || n.Title != o.Title || n.Role != o.Role || n.Depth != o.Depth {
		return false
	}
	if n.Expanded != o.Expanded || n.PreviewEnabled != o.PreviewEnabled ||
		n.PreviewExpanded != o.PreviewExpanded || n.Checked != o.Checked {
		return false
	}
	if n.caps != o.caps || n.previewCount != o.previewCount {
		return false
	}
	if len(n.Children) != len(o.Children) {
		return false
	}
	for i := range n.Children {
		if !n.Children[i].Equal(o.Children[i]) {
			return false
		}
	}
	return true
}

// Process walks the forest assigning Depth, Parent and Role. Roots get
// depth 0 and a nil parent.
func Process(roots []*Node) {
	for _, root := range roots {
		process(root, nil, 0)
	}
}

func process(n, parent *Node, depth int) {
	if n == nil {
		return
	}
	n.Parent = parent
	n.Depth = depth
	if len(n.Children) > 0 {
		n.Role = RoleParent
	} else {
		n.Role = RoleChild
	}
	for _, child := range n.Children {
		process(child, n, depth+1)
	}
}

// Walk visits n and all of its descendants in pre-order, regardless of
// expansion state. Returning false from fn skips that node's children.
func Walk(roots []*Node, fn func(*Node) bool) {
	for _, n := range roots {
		walk(n, fn)
	}
}

func walk(n *Node, fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, child := range n.Children {
		walk(child, fn)
	}
}
