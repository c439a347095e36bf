package node

// CheckedChildren returns the direct children of n that are checkable and
// checked, in order. It looks one level deep and ignores expansion state.
// Nodes without CapCheckable, and childless nodes, yield nil.
func CheckedChildren(n *Node) []*Node {
	if !n.Has(CapCheckable) || len(n.Children) == 0 {
		return nil
	}
	var checked []*Node
	for _, child := range n.Children {
		if child.Has(CapCheckable) && child.Checked {
			checked = append(checked, child)
		}
	}
	return checked
}

// CheckedDescendants applies CheckedChildren level by level and returns every
// checked node below n in pre-order. A checkable node that is not checked is
// still descended into.
func CheckedDescendants(n *Node) []*Node {
	var out []*Node
	collectChecked(n, &out)
	return out
}

func collectChecked(n *Node, out *[]*Node) {
	if !n.Has(CapCheckable) {
		return
	}
	checked := CheckedChildren(n)
	ci := 0
	for _, child := range n.Children {
		if ci < len(checked) && checked[ci] == child {
			*out = append(*out, child)
			ci++
		}
		collectChecked(child, out)
	}
}
