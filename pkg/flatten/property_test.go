package flatten

import (
	"fmt"
	"slices"
	"testing"

	"pgregory.net/rapid"

	"github.com/vanderheijden86/treeflat/pkg/node"
)

// genTree draws a random tree up to four levels deep with random remembered
// expansion flags and preview policies.
func genTree(t *rapid.T) *node.Node {
	next := 0
	var build func(depth int) *node.Node
	build = func(depth int) *node.Node {
		id := fmt.Sprintf("n%d", next)
		next++

		var opts []node.Option
		if depth < 3 {
			k := rapid.IntRange(0, 4).Draw(t, "children")
			for i := 0; i < k; i++ {
				opts = append(opts, node.WithChildren(build(depth+1)))
			}
		}
		if rapid.Bool().Draw(t, "preview") {
			opts = append(opts,
				node.WithPreview(rapid.IntRange(-1, 3).Draw(t, "previewCount")),
				node.WithPreviewEnabled())
		}
		if depth > 0 && rapid.Bool().Draw(t, "expanded") {
			opts = append(opts, node.WithExpanded())
		}
		return node.New(id, id, opts...)
	}
	root := build(0)
	node.Process([]*node.Node{root})
	return root
}

// checkLayout fails if seq differs from a fresh flattening of root.
func checkLayout(t *rapid.T, seq *Sequence, root *node.Node) {
	want := NewSequence(root)
	if !slices.Equal(want.Items(), seq.Items()) {
		t.Fatalf("sequence drifted from tree\nwant %v\ngot  %v", want.IDs(), seq.IDs())
	}
}

// TestPropertyLayoutInvariant drives random expand/collapse/toggle calls,
// including stale positions, and checks the sequence stays a valid flattening.
func TestPropertyLayoutInvariant(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		root := genTree(t)
		offset := rapid.IntRange(0, 2).Draw(t, "offset")
		seq := NewSequence(root)
		e := New(seq, WithHeaderOffset(offset))

		steps := rapid.IntRange(1, 40).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			pos := rapid.IntRange(0, seq.Len()+offset).Draw(t, "pos")
			before := seq.Len()
			switch rapid.SampledFrom([]string{"expand", "collapse", "toggle"}).Draw(t, "op") {
			case "expand":
				got := e.Expand(pos, true, true)
				if seq.Len() != before+got {
					t.Fatalf("expand reported %d but length went %d -> %d", got, before, seq.Len())
				}
			case "collapse":
				got := e.Collapse(pos, true, true)
				if seq.Len() != before-got {
					t.Fatalf("collapse reported %d but length went %d -> %d", got, before, seq.Len())
				}
			case "toggle":
				e.Toggle(pos)
			}
			checkLayout(t, seq, root)
		}
	})
}

// TestPropertyRoundTrip checks that collapsing a fully expanded node and
// expanding it back to full restores the exact rows.
func TestPropertyRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		root := genTree(t)
		seq := NewSequence(root)
		e := New(seq)
		e.ExpandSubtree(0, false, false)

		var full []int
		for i, n := range seq.Items() {
			if StateOf(n) == FullyExpanded && n.HasChildren() {
				full = append(full, i)
			}
		}
		if len(full) == 0 {
			t.Skip("no fully expanded node with children")
		}
		pos := rapid.SampledFrom(full).Draw(t, "pos")
		n := seq.At(pos)
		before := seq.Items()

		removed := e.Collapse(pos, true, true)
		inserted := 0
		for StateOf(n) != FullyExpanded {
			inserted += e.Expand(pos, true, true)
		}
		if removed != inserted {
			t.Fatalf("collapse removed %d, expand restored %d", removed, inserted)
		}
		if !slices.Equal(before, seq.Items()) {
			t.Fatalf("round trip changed rows\nbefore %v\nafter  %v", idsOf(before), seq.IDs())
		}
	})
}

// TestPropertyPreviewMonotonic checks the two-step preview expansion counts.
func TestPropertyPreviewMonotonic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		c := rapid.IntRange(2, 12).Draw(t, "children")
		p := rapid.IntRange(1, c-1).Draw(t, "preview")
		children := make([]*node.Node, c)
		for i := range children {
			children[i] = node.New(fmt.Sprintf("c%d", i), "child")
		}
		n := node.New("P", "P", node.WithPreview(p), node.WithPreviewEnabled(), node.WithChildren(children...))
		node.Process([]*node.Node{n})
		e := New(NewSequence(n))

		if got := e.Expand(0, true, true); got != p {
			t.Fatalf("first expand inserted %d, want %d", got, p)
		}
		if StateOf(n) != PreviewExpanded {
			t.Fatalf("state after first expand = %s", StateOf(n))
		}
		if got := e.Expand(0, true, true); got != c-p {
			t.Fatalf("second expand inserted %d, want %d", got, c-p)
		}
		if StateOf(n) != FullyExpanded {
			t.Fatalf("state after second expand = %s", StateOf(n))
		}
	})
}
