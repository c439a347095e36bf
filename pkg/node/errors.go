package node

import "fmt"

// CapabilityError is the panic value raised when a node is used through a
// capability it was not constructed with. It signals a bug in the node
// model, not a runtime condition.
type CapabilityError struct {
	NodeID string
	Want   Capability
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("node %q does not have the %s capability", e.NodeID, e.Want)
}

// MustHave panics with a *CapabilityError if n lacks capability c.
func MustHave(n *Node, c Capability) {
	if n.Has(c) {
		return
	}
	id := "<nil>"
	if n != nil {
		id = n.ID
	}
	panic(&CapabilityError{NodeID: id, Want: c})
}
