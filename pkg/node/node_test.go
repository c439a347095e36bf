package node

import (
	"errors"
	"testing"
)

// TestProcessAssignsDepthRoleParent verifies the forest walk
func TestProcessAssignsDepthRoleParent(t *testing.T) {
	grand := New("g", "Grand")
	child := New("c", "Child", WithChildren(grand))
	root := New("r", "Root", WithChildren(child, New("leaf", "Leaf")))
	other := New("o", "Other root")

	Process([]*Node{root, other})

	tests := []struct {
		n      *Node
		depth  int
		role   Role
		parent *Node
	}{
		{root, 0, RoleParent, nil},
		{child, 1, RoleParent, root},
		{grand, 2, RoleChild, child},
		{root.Children[1], 1, RoleChild, root},
		{other, 0, RoleChild, nil},
	}
	for _, tt := range tests {
		if tt.n.Depth != tt.depth {
			t.Errorf("%s: depth %d, want %d", tt.n.ID, tt.n.Depth, tt.depth)
		}
		if tt.n.Role != tt.role {
			t.Errorf("%s: role %s, want %s", tt.n.ID, tt.n.Role, tt.role)
		}
		if tt.n.Parent != tt.parent {
			t.Errorf("%s: parent %v, want %v", tt.n.ID, tt.n.Parent, tt.parent)
		}
	}
}

// TestCapabilitiesResolvedAtConstruction verifies option-driven capability sets
func TestCapabilitiesResolvedAtConstruction(t *testing.T) {
	plain := New("p", "Plain", WithoutExpand())
	if plain.Has(CapExpandable) {
		t.Error("WithoutExpand should drop the expandable capability")
	}

	n := New("n", "N", WithPreview(3), WithChecked(true))
	for _, c := range []Capability{CapExpandable, CapPreview, CapCheckable} {
		if !n.Has(c) {
			t.Errorf("expected %s capability", c)
		}
	}
	if n.PreviewCount() != 3 {
		t.Errorf("PreviewCount = %d, want 3", n.PreviewCount())
	}
	if !n.Checked {
		t.Error("expected node to start checked")
	}

	var nilNode *Node
	if nilNode.Has(CapExpandable) {
		t.Error("nil node should have no capabilities")
	}
}

// TestPreviewWithoutCapabilityPanics verifies the capability guard
func TestPreviewWithoutCapabilityPanics(t *testing.T) {
	n := New("n", "N")
	defer func() {
		r := recover()
		err, ok := r.(error)
		var capErr *CapabilityError
		if !ok || !errors.As(err, &capErr) {
			t.Fatalf("expected *CapabilityError, got %v", r)
		}
		if capErr.NodeID != "n" || capErr.Want != CapPreview {
			t.Errorf("unexpected error contents: %+v", capErr)
		}
	}()
	n.SetPreviewEnabled(true)
}

// TestEqualIsStructural verifies value comparison over attributes and children
func TestEqualIsStructural(t *testing.T) {
	build := func() *Node {
		return New("a", "A", WithPreview(2), WithChildren(New("b", "B", WithChecked(true))))
	}
	a, b := build(), build()
	if !a.Equal(b) {
		t.Fatal("identically built nodes should be equal")
	}

	b.Children[0].Checked = false
	if a.Equal(b) {
		t.Error("differing child checked flag should break equality")
	}

	c := build()
	c.Expanded = true
	if a.Equal(c) {
		t.Error("differing expanded flag should break equality")
	}

	if !(*Node)(nil).Equal(nil) {
		t.Error("nil should equal nil")
	}
	if a.Equal(nil) {
		t.Error("node should not equal nil")
	}
}

// TestPath verifies title paths from the root
func TestPath(t *testing.T) {
	leaf := New("l", "Leaf")
	root := New("r", "Root", WithChildren(New("m", "Mid", WithChildren(leaf))))
	Process([]*Node{root})

	if got := leaf.Path(" / "); got != "Root / Mid / Leaf" {
		t.Errorf("Path = %q", got)
	}
}

// TestWalkSkipsPrunedBranches verifies Walk honors the callback result
func TestWalkSkipsPrunedBranches(t *testing.T) {
	root := New("r", "R", WithChildren(
		New("a", "A", WithChildren(New("a1", "A1"))),
		New("b", "B"),
	))
	var seen []string
	Walk([]*Node{root}, func(n *Node) bool {
		seen = append(seen, n.ID)
		return n.ID != "a"
	})
	want := []string{"r", "a", "b"}
	if len(seen) != len(want) {
		t.Fatalf("visited %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("visit %d = %s, want %s", i, seen[i], want[i])
		}
	}
}
