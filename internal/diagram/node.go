package diagram

import (
	"github.com/google/uuid"

	"github.com/gyaneshwarpardhi/rxndiagram/internal/notify"
)

// NodeID identifies a node within its diagram.
type NodeID string

// NewNodeID returns a fresh random id.
func NewNodeID() NodeID { return NodeID(uuid.NewString()) }

// Common node kinds. Hosts may use any other string.
const (
	KindReaction = "reaction"
	KindMolecule = "molecule"
	KindLabel    = "label"
)

// NodeSpec describes a node to create.
type NodeSpec struct {
	ID         NodeID
	Kind       string
	Attributes Attributes
	Bounds     Bounds
}

// Node is a diagram entity (a reaction or molecule box) that connections
// attach to. Its connection lists are kept in lockstep with the endpoints of
// the connections; the connection side is authoritative.
type Node struct {
	id       NodeID
	kind     string
	attrs    Attributes
	bounds   Bounds
	sources  []ConnID // connections whose source is this node
	targets  []ConnID // connections whose target is this node
	d        *Diagram
	notifier *notify.Notifier
}

func (n *Node) ID() NodeID   { return n.id }
func (n *Node) Kind() string { return n.kind }

// Diagram returns the diagram that owns n.
func (n *Node) Diagram() *Diagram { return n.d }

// Notifier returns the change notifier of n.
func (n *Node) Notifier() *notify.Notifier { return n.notifier }

// Attributes returns a copy of the node's attributes.
func (n *Node) Attributes() Attributes { return n.attrs.Clone() }

// Attribute returns a single attribute value.
func (n *Node) Attribute(key string) (interface{}, bool) {
	v, ok := n.attrs[key]
	return v, ok
}

// SetAttribute stores value under key and raises an "attributes" event whose
// old and new values are single-entry maps.
func (n *Node) SetAttribute(key string, value interface{}) error {
	if err := n.d.checkMutable(); err != nil {
		return err
	}
	old, had := n.attrs[key]
	n.attrs[key] = value
	oldVal := Attributes{}
	if had {
		oldVal[key] = old
	}
	n.d.report(n.notifier.Notify(notify.PropAttributes, oldVal, Attributes{key: value}))
	return nil
}

// RemoveAttribute deletes key. Removing a missing key does nothing.
func (n *Node) RemoveAttribute(key string) error {
	if err := n.d.checkMutable(); err != nil {
		return err
	}
	old, had := n.attrs[key]
	if !had {
		return nil
	}
	delete(n.attrs, key)
	n.d.report(n.notifier.Notify(notify.PropAttributes, Attributes{key: old}, Attributes{}))
	return nil
}

// Bounds returns the node's position and size.
func (n *Node) Bounds() Bounds { return n.bounds }

// SetBounds moves or resizes the node.
func (n *Node) SetBounds(b Bounds) error {
	if err := n.d.checkMutable(); err != nil {
		return err
	}
	old := n.bounds
	if old == b {
		return nil
	}
	n.bounds = b
	n.d.report(n.notifier.Notify(notify.PropPosition, old, b))
	return nil
}

// SourceConnections returns the ids of connections leaving n, in attach order.
func (n *Node) SourceConnections() []ConnID { return cloneIDs(n.sources) }

// TargetConnections returns the ids of connections entering n, in attach order.
func (n *Node) TargetConnections() []ConnID { return cloneIDs(n.targets) }

// Degree returns the number of incoming and outgoing connections.
func (n *Node) Degree() (in, out int) { return len(n.targets), len(n.sources) }

func (n *Node) list(end End) *[]ConnID {
	if end == SourceEnd {
		return &n.sources
	}
	return &n.targets
}

// insert adds id to the list for end. When order holds an earlier snapshot of
// that list, id is placed so the relative order of the snapshot is restored;
// otherwise it is appended.
func (n *Node) insert(end End, id ConnID, order []ConnID) {
	l := n.list(end)
	*l = insertOrdered(*l, id, order)
}

func (n *Node) remove(end End, id ConnID) {
	l := n.list(end)
	for i, cur := range *l {
		if cur == id {
			*l = append((*l)[:i:i], (*l)[i+1:]...)
			return
		}
	}
}

func insertOrdered(list []ConnID, id ConnID, order []ConnID) []ConnID {
	rank := make(map[ConnID]int, len(order))
	for i, cid := range order {
		rank[cid] = i
	}
	want, ok := rank[id]
	pos := len(list)
	if ok {
		for i, cur := range list {
			if r, known := rank[cur]; known && r > want {
				pos = i
				break
			}
		}
	}
	out := make([]ConnID, 0, len(list)+1)
	out = append(out, list[:pos]...)
	out = append(out, id)
	return append(out, list[pos:]...)
}

func cloneIDs(ids []ConnID) []ConnID {
	out := make([]ConnID, len(ids))
	copy(out, ids)
	return out
}
