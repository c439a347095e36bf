// tree.go - Interactive tree view over the flattening engine
package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"go.uber.org/zap"

	"github.com/vanderheijden86/treeflat/pkg/flatten"
	"github.com/vanderheijden86/treeflat/pkg/node"
	"github.com/vanderheijden86/treeflat/pkg/treestate"
)

// HeaderRows is the number of rows drawn above the first node. It is the
// engine's header offset.
const HeaderRows = 1

// footerRows is the status line below the tree.
const footerRows = 1

// TreeModel manages the tree view state. It is a tea.Model and the engine's
// Notifier; the cursor and viewport follow every inserted or removed range.
type TreeModel struct {
	roots  []*node.Node
	seq    *flatten.Sequence
	engine *flatten.Engine

	cursor         int // Index into seq of the selected row
	viewportOffset int // Index of first visible row
	width          int
	height         int

	theme  Theme
	keys   KeyMap
	logger *zap.Logger

	title  string
	status string // One-shot footer message

	// anchor is the row to re-find after a full refresh
	anchor *node.Node

	// Persistence state
	statePath string

	copyFn  func(string) error
	refresh func() // Requests a document reload, nil when unavailable
	built   bool
}

// TreeOption configures a TreeModel.
type TreeOption func(*TreeModel)

// WithStatePath persists expand state to path after every change.
func WithStatePath(path string) TreeOption {
	return func(t *TreeModel) {
		t.statePath = path
	}
}

// WithTreeLogger sets the logger used by the model and its engine.
func WithTreeLogger(l *zap.Logger) TreeOption {
	return func(t *TreeModel) {
		if l != nil {
			t.logger = l
		}
	}
}

// WithTitle sets the header title.
func WithTitle(title string) TreeOption {
	return func(t *TreeModel) {
		t.title = title
	}
}

// WithKeyMap replaces the default bindings.
func WithKeyMap(k KeyMap) TreeOption {
	return func(t *TreeModel) {
		t.keys = k
	}
}

// withClipboard replaces the system clipboard, for tests.
func withClipboard(fn func(string) error) TreeOption {
	return func(t *TreeModel) {
		t.copyFn = fn
	}
}

// NewTreeModel creates an empty tree model. Call SetRoots to populate it.
func NewTreeModel(theme Theme, opts ...TreeOption) *TreeModel {
	t := &TreeModel{
		theme:  theme,
		keys:   DefaultKeyMap(),
		logger: zap.NewNop(),
		title:  "treeflat",
		copyFn: clipboard.WriteAll,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.SetRoots(nil)
	t.built = false
	return t
}

// SetRoots replaces the tree. Nodes are expected to be processed already,
// with any persisted state applied.
func (t *TreeModel) SetRoots(roots []*node.Node) {
	t.roots = roots
	t.seq = flatten.NewSequence(roots...)
	t.engine = flatten.New(t.seq,
		flatten.WithHeaderOffset(HeaderRows),
		flatten.WithNotifier(t),
		flatten.WithLogger(t.logger))
	t.cursor = 0
	t.viewportOffset = 0
	t.built = true
}

// SetRefresh sets the function the reload key calls. It must be set before
// the program starts.
func (t *TreeModel) SetRefresh(fn func()) {
	t.refresh = fn
}

// Engine returns the engine driving the view.
func (t *TreeModel) Engine() *flatten.Engine {
	return t.engine
}

// SetSize updates the available dimensions for the tree view
func (t *TreeModel) SetSize(width, height int) {
	t.width = width
	t.height = height
	t.ensureCursorVisible()
}

// Init implements tea.Model.
func (t *TreeModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (t *TreeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		t.SetSize(msg.Width, msg.Height)

	case ReloadMsg:
		t.applyReload(msg)

	case tea.KeyMsg:
		t.status = ""
		switch {
		case key.Matches(msg, t.keys.Quit):
			t.saveState()
			return t, tea.Quit
		case key.Matches(msg, t.keys.Up):
			t.MoveUp()
		case key.Matches(msg, t.keys.Down):
			t.MoveDown()
		case key.Matches(msg, t.keys.PageUp):
			t.PageUp()
		case key.Matches(msg, t.keys.PageDown):
			t.PageDown()
		case key.Matches(msg, t.keys.Top):
			t.JumpToTop()
		case key.Matches(msg, t.keys.Bottom):
			t.JumpToBottom()
		case key.Matches(msg, t.keys.Toggle):
			t.ToggleExpand()
		case key.Matches(msg, t.keys.Expand):
			t.ExpandOrMoveToChild()
		case key.Matches(msg, t.keys.Collapse):
			t.CollapseOrJumpToParent()
		case key.Matches(msg, t.keys.ExpandAll):
			t.ExpandAll()
		case key.Matches(msg, t.keys.ExpandSubtree):
			t.ExpandSubtree()
		case key.Matches(msg, t.keys.Check):
			t.ToggleChecked()
		case key.Matches(msg, t.keys.Copy):
			t.CopyPath()
		case key.Matches(msg, t.keys.Reload):
			t.Reload()
		}
	}
	return t, nil
}

// position returns the display position of the cursor row.
func (t *TreeModel) position() int {
	return t.cursor + HeaderRows
}

// SelectedNode returns the currently selected node, or nil if none.
func (t *TreeModel) SelectedNode() *node.Node {
	return t.seq.At(t.cursor)
}

// Cursor returns the selected row index.
func (t *TreeModel) Cursor() int {
	return t.cursor
}

// MoveDown moves the cursor down one row.
func (t *TreeModel) MoveDown() {
	if t.cursor < t.seq.Len()-1 {
		t.cursor++
	}
	t.ensureCursorVisible()
}

// MoveUp moves the cursor up one row.
func (t *TreeModel) MoveUp() {
	if t.cursor > 0 {
		t.cursor--
	}
	t.ensureCursorVisible()
}

// JumpToTop moves cursor to the first row.
func (t *TreeModel) JumpToTop() {
	t.cursor = 0
	t.ensureCursorVisible()
}

// JumpToBottom moves cursor to the last row.
func (t *TreeModel) JumpToBottom() {
	if t.seq.Len() > 0 {
		t.cursor = t.seq.Len() - 1
	}
	t.ensureCursorVisible()
}

// PageDown moves cursor down by half a viewport.
func (t *TreeModel) PageDown() {
	t.cursor = min(t.cursor+t.pageSize(), t.seq.Len()-1)
	t.clampCursor()
	t.ensureCursorVisible()
}

// PageUp moves cursor up by half a viewport.
func (t *TreeModel) PageUp() {
	t.cursor -= t.pageSize()
	t.clampCursor()
	t.ensureCursorVisible()
}

func (t *TreeModel) pageSize() int {
	if size := t.treeHeight() / 2; size > 0 {
		return size
	}
	return 5
}

// ToggleExpand expands or collapses the selected node.
func (t *TreeModel) ToggleExpand() {
	if t.SelectedNode() == nil {
		return
	}
	t.engine.Toggle(t.position())
	t.saveState()
}

// ExpandOrMoveToChild handles the → / l key:
// - If node is collapsed or showing a preview: expand it one step
// - If node is fully expanded: move to first child
func (t *TreeModel) ExpandOrMoveToChild() {
	n := t.SelectedNode()
	if n == nil || !n.Has(node.CapExpandable) {
		return
	}
	if flatten.StateOf(n) != flatten.FullyExpanded {
		t.engine.Expand(t.position(), true, true)
		t.saveState()
		return
	}
	if n.HasChildren() {
		t.MoveDown()
	}
}

// CollapseOrJumpToParent handles the ← / h key:
// - If node is expanded or previewing: collapse it
// - Otherwise: jump to parent
func (t *TreeModel) CollapseOrJumpToParent() {
	n := t.SelectedNode()
	if n == nil {
		return
	}
	if flatten.StateOf(n) != flatten.Collapsed && n.HasChildren() {
		t.engine.Collapse(t.position(), true, true)
		t.saveState()
		return
	}
	t.JumpToParent()
}

// JumpToParent moves cursor to the parent of the selected node.
func (t *TreeModel) JumpToParent() {
	n := t.SelectedNode()
	if n == nil || n.Parent == nil {
		return
	}
	if pos := t.engine.ParentPosition(n); pos >= 0 {
		t.cursor = pos - HeaderRows
		t.ensureCursorVisible()
	}
}

// ExpandAll expands every visible row one step, previews first.
func (t *TreeModel) ExpandAll() {
	t.anchor = t.SelectedNode()
	t.engine.ExpandAll()
	t.anchor = nil
	t.saveState()
}

// ExpandSubtree expands the selected node and every level beneath it one
// step; preview-enabled nodes stop at their preview.
func (t *TreeModel) ExpandSubtree() {
	n := t.SelectedNode()
	if n == nil {
		return
	}
	t.anchor = n
	inserted := t.engine.ExpandSubtree(t.position(), true, true)
	t.anchor = nil
	t.status = fmt.Sprintf("expanded %d rows", inserted)
	t.saveState()
}

// ToggleChecked flips the checked flag of a checkable node.
func (t *TreeModel) ToggleChecked() {
	n := t.SelectedNode()
	if !n.Has(node.CapCheckable) {
		return
	}
	n.Checked = !n.Checked
	t.ItemChanged(t.position())
}

// CopyPath copies the selected node's title path to the clipboard.
func (t *TreeModel) CopyPath() {
	n := t.SelectedNode()
	if n == nil {
		return
	}
	path := n.Path(" / ")
	if err := t.copyFn(path); err != nil {
		t.logger.Warn("copy to clipboard", zap.Error(err))
		t.status = "clipboard unavailable"
		return
	}
	t.status = "copied " + path
}

// SelectByID moves cursor to the row with the given ID.
// Returns true if found, false otherwise.
func (t *TreeModel) SelectByID(id string) bool {
	for i, n := range t.seq.Items() {
		if n.ID == id {
			t.cursor = i
			t.ensureCursorVisible()
			return true
		}
	}
	return false
}

// GetSelectedID returns the ID of the selected row, or empty string.
func (t *TreeModel) GetSelectedID() string {
	if n := t.SelectedNode(); n != nil {
		return n.ID
	}
	return ""
}

// ItemChanged implements flatten.Notifier. Rows are re-rendered on every
// View, so only the viewport needs attention.
func (t *TreeModel) ItemChanged(int) {
	t.ensureCursorVisible()
}

// RangeInserted implements flatten.Notifier.
func (t *TreeModel) RangeInserted(start, count int) {
	if idx := start - HeaderRows; t.cursor >= idx {
		t.cursor += count
	}
	t.ensureCursorVisible()
}

// RangeRemoved implements flatten.Notifier. A cursor inside the removed
// range moves to the row above it, the collapsed node.
func (t *TreeModel) RangeRemoved(start, count int) {
	idx := start - HeaderRows
	switch {
	case t.cursor >= idx+count:
		t.cursor -= count
	case t.cursor >= idx:
		t.cursor = idx - 1
	}
	t.clampCursor()
	t.ensureCursorVisible()
}

// FullRefresh implements flatten.Notifier.
func (t *TreeModel) FullRefresh() {
	if t.anchor != nil {
		if idx := t.seq.Index(t.anchor); idx >= 0 {
			t.cursor = idx
		}
	}
	t.clampCursor()
	t.ensureCursorVisible()
}

func (t *TreeModel) clampCursor() {
	if t.cursor >= t.seq.Len() {
		t.cursor = t.seq.Len() - 1
	}
	if t.cursor < 0 {
		t.cursor = 0
	}
}

// treeHeight is the number of node rows that fit between header and footer.
func (t *TreeModel) treeHeight() int {
	h := t.height - HeaderRows - footerRows
	if t.height <= 0 {
		h = 20 // Default
	}
	return max(h, 1)
}

func (t *TreeModel) ensureCursorVisible() {
	h := t.treeHeight()
	if t.cursor < t.viewportOffset {
		t.viewportOffset = t.cursor
	}
	if t.cursor >= t.viewportOffset+h {
		t.viewportOffset = t.cursor - h + 1
	}
	if t.viewportOffset < 0 {
		t.viewportOffset = 0
	}
}

// visibleRange returns the start and end indices of rows to render.
// The range [start, end) covers rows visible in the viewport.
func (t *TreeModel) visibleRange() (start, end int) {
	n := t.seq.Len()
	if n == 0 {
		return 0, 0
	}
	visibleCount := t.treeHeight()

	start = t.viewportOffset
	end = start + visibleCount

	if end > n {
		end = n
		start = max(end-visibleCount, 0)
	}
	return start, end
}

// View renders the header, the visible rows and the footer.
func (t *TreeModel) View() string {
	if !t.built || t.seq.Len() == 0 {
		return t.renderEmptyState()
	}

	var sb strings.Builder
	sb.WriteString(t.renderHeader())
	sb.WriteString("\n")

	start, end := t.visibleRange()
	for i := start; i < end; i++ {
		line := t.renderNode(t.seq.At(i))
		if i == t.cursor {
			line = t.theme.Selected.Render(line)
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	sb.WriteString(t.renderFooter())
	return sb.String()
}

func (t *TreeModel) renderHeader() string {
	r := t.theme.Renderer
	titleStyle := r.NewStyle().Foreground(t.theme.Primary).Bold(true)
	countStyle := r.NewStyle().Foreground(t.theme.Muted)

	total := 0
	node.Walk(t.roots, func(*node.Node) bool {
		total++
		return true
	})
	return titleStyle.Render(t.title) + " " +
		countStyle.Render(fmt.Sprintf("%d/%d rows", t.seq.Len(), total))
}

func (t *TreeModel) renderFooter() string {
	r := t.theme.Renderer
	style := r.NewStyle().Foreground(t.theme.Secondary).Italic(true)

	if t.status != "" {
		return style.Render(t.status)
	}
	n := t.SelectedNode()
	if n.Has(node.CapCheckable) && n.HasChildren() {
		checked := node.CheckedChildren(n)
		titles := make([]string, len(checked))
		for i, c := range checked {
			titles[i] = c.Title
		}
		summary := fmt.Sprintf("%d/%d checked", len(checked), len(n.Children))
		if len(titles) > 0 {
			summary += ": " + strings.Join(titles, ", ")
		}
		limit := 80
		if t.width > 0 {
			limit = t.width
		}
		return style.Render(t.truncateTitle(summary, limit))
	}
	return style.Render("enter: toggle | E: expand all | x: check | y: copy | q: quit")
}

// renderEmptyState renders the view when there are no nodes.
func (t *TreeModel) renderEmptyState() string {
	r := t.theme.Renderer

	titleStyle := r.NewStyle().
		Foreground(t.theme.Primary).
		Bold(true)

	mutedStyle := r.NewStyle().
		Foreground(t.theme.Muted)

	var sb strings.Builder
	sb.WriteString(titleStyle.Render(t.title))
	sb.WriteString("\n\n")
	sb.WriteString(mutedStyle.Render("No nodes to display."))
	sb.WriteString("\n\n")
	sb.WriteString(mutedStyle.Render("Add nodes to .treeflat/tree.yaml:"))
	sb.WriteString("\n")
	sb.WriteString(mutedStyle.Render("  nodes: [{id: inbox, children: [{id: first}]}]"))
	return sb.String()
}

// renderNode renders a single row with tree characters and styling.
func (t *TreeModel) renderNode(n *node.Node) string {
	if n == nil {
		return ""
	}
	r := t.theme.Renderer
	var sb strings.Builder

	prefix := t.buildTreePrefix(n)
	sb.WriteString(prefix)

	indicatorStyle := r.NewStyle().Foreground(t.theme.Secondary)
	sb.WriteString(indicatorStyle.Render(t.getExpandIndicator(n)))
	sb.WriteString(" ")

	if n.Has(node.CapCheckable) {
		box := "[ ]"
		boxStyle := r.NewStyle().Foreground(t.theme.Muted)
		if n.Checked {
			box = "[x]"
			boxStyle = boxStyle.Foreground(t.theme.Success)
		}
		sb.WriteString(boxStyle.Render(box))
		sb.WriteString(" ")
	}

	suffix := ""
	if hidden := t.hiddenCount(n); hidden > 0 {
		suffix = fmt.Sprintf(" +%d more", hidden)
	}

	maxTitleLen := 80
	if t.width > 0 {
		// Account for prefix, indicator, checkbox and preview hint
		maxTitleLen = max(t.width-lipgloss.Width(prefix)-6-runewidth.StringWidth(suffix), 10)
	}
	sb.WriteString(t.truncateTitle(n.Title, maxTitleLen))

	if suffix != "" {
		sb.WriteString(r.NewStyle().Foreground(t.theme.Muted).Render(suffix))
	}
	return sb.String()
}

// hiddenCount is the number of children a preview-expanded node holds back.
func (t *TreeModel) hiddenCount(n *node.Node) int {
	if flatten.StateOf(n) != flatten.PreviewExpanded {
		return 0
	}
	count := n.PreviewCount()
	if count < 0 || count >= len(n.Children) {
		return 0
	}
	return len(n.Children) - count
}

// buildTreePrefix builds the indentation and branch characters for a node.
func (t *TreeModel) buildTreePrefix(n *node.Node) string {
	if n.Depth == 0 {
		return "" // Root nodes have no prefix
	}

	treeStyle := t.theme.Renderer.NewStyle().Foreground(t.theme.Muted)

	var prefixParts []string
	ancestors := t.getAncestors(n)

	// For each ancestor level below the root, draw a vertical line when
	// more siblings follow it
	for i := 1; i < len(ancestors)-1; i++ {
		if t.hasSiblingsBelow(ancestors[i]) {
			prefixParts = append(prefixParts, "│   ")
		} else {
			prefixParts = append(prefixParts, "    ")
		}
	}

	if t.hasSiblingsBelow(n) {
		prefixParts = append(prefixParts, "├── ")
	} else {
		prefixParts = append(prefixParts, "└── ")
	}

	return treeStyle.Render(strings.Join(prefixParts, ""))
}

// getAncestors returns the ancestors of a node from root to parent, with the
// node itself at the end.
func (t *TreeModel) getAncestors(n *node.Node) []*node.Node {
	var ancestors []*node.Node
	for current := n.Parent; current != nil; current = current.Parent {
		ancestors = append([]*node.Node{current}, ancestors...)
	}
	return append(ancestors, n)
}

// hasSiblingsBelow reports whether a sibling follows n among the rows its
// parent currently shows.
func (t *TreeModel) hasSiblingsBelow(n *node.Node) bool {
	siblings := t.roots
	if n.Parent != nil {
		siblings = n.Parent.Children
		if flatten.StateOf(n.Parent) == flatten.PreviewExpanded {
			siblings = siblings[:len(siblings)-t.hiddenCount(n.Parent)]
		}
	}
	for i, sibling := range siblings {
		if sibling == n {
			return i < len(siblings)-1
		}
	}
	return false
}

// getExpandIndicator returns the expand/collapse indicator for a node.
func (t *TreeModel) getExpandIndicator(n *node.Node) string {
	if len(n.Children) == 0 {
		return "•" // Leaf node
	}
	switch flatten.StateOf(n) {
	case flatten.FullyExpanded:
		return "▾"
	case flatten.PreviewExpanded:
		return "▿"
	default:
		return "▸"
	}
}

// truncateTitle truncates a title to the given display width with ellipsis.
func (t *TreeModel) truncateTitle(title string, maxWidth int) string {
	if maxWidth <= 1 {
		return "…"
	}
	return runewidth.Truncate(title, maxWidth, "…")
}

// saveState persists the current expand state. Errors are logged but do not
// interrupt the user experience.
func (t *TreeModel) saveState() {
	if t.statePath == "" {
		return
	}
	if err := treestate.Capture(t.roots).Save(t.statePath); err != nil {
		t.logger.Warn("failed to save tree state", zap.Error(err))
	}
}

// Reload asks for the document to be read again. The result arrives as a
// ReloadMsg.
func (t *TreeModel) Reload() {
	if t.refresh == nil {
		t.status = "reload unavailable"
		return
	}
	t.refresh()
	t.status = "reloading"
}

// applyReload swaps in a reloaded document, carrying over the current
// expand state and selection.
func (t *TreeModel) applyReload(msg ReloadMsg) {
	if msg.Err != nil {
		t.logger.Warn("reload failed", zap.Error(msg.Err))
		var re *ReloadError
		if errors.As(msg.Err, &re) {
			t.status = re.Error()
		} else {
			t.status = "reload failed: " + msg.Err.Error()
		}
		return
	}
	selected := t.GetSelectedID()
	state := treestate.Capture(t.roots)
	state.Apply(msg.Roots)

	t.SetRoots(msg.Roots)
	if selected != "" {
		t.SelectByID(selected)
	}
	t.status = "reloaded"
}

// IsBuilt returns whether the tree has been built.
func (t *TreeModel) IsBuilt() bool {
	return t.built
}

// NodeCount returns the total number of visible rows.
func (t *TreeModel) NodeCount() int {
	return t.seq.Len()
}

// RootCount returns the number of root nodes.
func (t *TreeModel) RootCount() int {
	return len(t.roots)
}
