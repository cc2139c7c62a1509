package diagram

import (
	"github.com/google/uuid"

	"github.com/gyaneshwarpardhi/rxndiagram/internal/notify"
)

// Diagram is the arena that owns every node and connection of one document.
// Nodes and connections refer to each other by id only; lookups go through
// the diagram. Entities stay registered after they are removed or detached so
// that commands can restore them.
//
// A Diagram is not safe for concurrent use. All mutation and notification
// happen on the caller's goroutine.
type Diagram struct {
	id        string
	hub       *notify.Hub
	nodes     map[NodeID]*Node
	nodeOrder []NodeID
	conns     map[ConnID]*Connection
	connOrder []ConnID
	contents  *Container

	listenerErrs []error
}

// New creates an empty diagram. An empty id gets a random one.
func New(id string) *Diagram {
	if id == "" {
		id = uuid.NewString()
	}
	d := &Diagram{
		id:    id,
		hub:   notify.NewHub(),
		nodes: make(map[NodeID]*Node),
		conns: make(map[ConnID]*Connection),
	}
	d.contents = &Container{d: d, notifier: notify.New(id, d.hub)}
	return d
}

func (d *Diagram) ID() string { return d.id }

// Hub returns the notification hub shared by all entities of d.
func (d *Diagram) Hub() *notify.Hub { return d.hub }

// Contents returns the top-level container.
func (d *Diagram) Contents() *Container { return d.contents }

// NewNode registers a node. It is not a child of the container until added.
func (d *Diagram) NewNode(spec NodeSpec) (*Node, error) {
	if err := d.checkMutable(); err != nil {
		return nil, err
	}
	if spec.ID == "" {
		spec.ID = NewNodeID()
	}
	if _, ok := d.nodes[spec.ID]; ok {
		return nil, Errorf(KindDuplicateEntity, "node %s already exists", spec.ID)
	}
	n := &Node{
		id:       spec.ID,
		kind:     spec.Kind,
		attrs:    spec.Attributes.Clone(),
		bounds:   spec.Bounds,
		d:        d,
		notifier: notify.New(string(spec.ID), d.hub),
	}
	d.nodes[n.id] = n
	d.nodeOrder = append(d.nodeOrder, n.id)
	return n, nil
}

// NewConnection registers a detached connection.
func (d *Diagram) NewConnection(spec ConnectionSpec) (*Connection, error) {
	if err := d.checkMutable(); err != nil {
		return nil, err
	}
	if spec.ID == "" {
		spec.ID = NewConnID()
	}
	if _, ok := d.conns[spec.ID]; ok {
		return nil, Errorf(KindDuplicateEntity, "connection %s already exists", spec.ID)
	}
	c := &Connection{
		id:         spec.ID,
		bendpoints: clonePoints(spec.Bendpoints),
		attrs:      spec.Attributes.Clone(),
		d:          d,
		notifier:   notify.New(string(spec.ID), d.hub),
	}
	d.conns[c.id] = c
	d.connOrder = append(d.connOrder, c.id)
	return c, nil
}

// Node returns a registered node or nil.
func (d *Diagram) Node(id NodeID) *Node { return d.nodes[id] }

// Connection returns a registered connection or nil.
func (d *Diagram) Connection(id ConnID) *Connection { return d.conns[id] }

// LookupNode is Node with a NotFound error.
func (d *Diagram) LookupNode(id NodeID) (*Node, error) {
	n := d.nodes[id]
	if n == nil {
		return nil, Errorf(KindNotFound, "node %s", id)
	}
	return n, nil
}

// LookupConnection is Connection with a NotFound error.
func (d *Diagram) LookupConnection(id ConnID) (*Connection, error) {
	c := d.conns[id]
	if c == nil {
		return nil, Errorf(KindNotFound, "connection %s", id)
	}
	return c, nil
}

// Children returns the container's nodes in order.
func (d *Diagram) Children() []*Node {
	out := make([]*Node, 0, len(d.contents.children))
	for _, id := range d.contents.children {
		out = append(out, d.nodes[id])
	}
	return out
}

// Connections returns registered connections with at least one end
// attached, in registration order.
func (d *Diagram) Connections() []*Connection {
	out := make([]*Connection, 0, len(d.connOrder))
	for _, id := range d.connOrder {
		if c := d.conns[id]; c.Attached() {
			out = append(out, c)
		}
	}
	return out
}

// ListenerErrors returns and clears the errors listeners reported since the
// last call. Mutations never fail because a listener did.
func (d *Diagram) ListenerErrors() []error {
	errs := d.listenerErrs
	d.listenerErrs = nil
	return errs
}

func (d *Diagram) report(err error) {
	if err != nil {
		d.listenerErrs = append(d.listenerErrs, err)
	}
}

func (d *Diagram) checkMutable() error {
	if d.hub.Dispatching() {
		return ErrReentrantMutation
	}
	return nil
}
