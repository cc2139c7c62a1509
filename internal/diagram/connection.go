package diagram

import (
	"github.com/google/uuid"

	"github.com/gyaneshwarpardhi/rxndiagram/internal/notify"
)

// ConnID identifies a connection within its diagram.
type ConnID string

// NewConnID returns a fresh random id.
func NewConnID() ConnID { return ConnID(uuid.NewString()) }

// End selects one endpoint of a connection.
type End int

const (
	SourceEnd End = iota
	TargetEnd
)

func (e End) String() string {
	if e == SourceEnd {
		return "source"
	}
	return "target"
}

func (e End) attachedProp() string {
	if e == SourceEnd {
		return notify.PropSourceAttached
	}
	return notify.PropTargetAttached
}

func (e End) detachedProp() string {
	if e == SourceEnd {
		return notify.PropSourceDetached
	}
	return notify.PropTargetDetached
}

// ConnectionSpec describes a connection to create.
type ConnectionSpec struct {
	ID         ConnID
	Attributes Attributes
	Bendpoints []Point
}

// Connection is a directed edge with two optional endpoints and an ordered
// list of bendpoints. Attaching and detaching each end are separate steps.
type Connection struct {
	id         ConnID
	source     NodeID
	target     NodeID
	bendpoints []Point
	attrs      Attributes
	d          *Diagram
	notifier   *notify.Notifier
}

func (c *Connection) ID() ConnID { return c.id }

// Source returns the source node id, empty when detached.
func (c *Connection) Source() NodeID { return c.source }

// Target returns the target node id, empty when detached.
func (c *Connection) Target() NodeID { return c.target }

// Endpoint returns the node id at end.
func (c *Connection) Endpoint(end End) NodeID {
	if end == SourceEnd {
		return c.source
	}
	return c.target
}

// Attached reports whether at least one end is attached.
func (c *Connection) Attached() bool { return c.source != "" || c.target != "" }

// Notifier returns the change notifier of c.
func (c *Connection) Notifier() *notify.Notifier { return c.notifier }

// Attributes returns a copy of the connection's attributes.
func (c *Connection) Attributes() Attributes { return c.attrs.Clone() }

func (c *Connection) AttachSource(n *Node) error { return c.attach(SourceEnd, n, nil) }
func (c *Connection) AttachTarget(n *Node) error { return c.attach(TargetEnd, n, nil) }

// Attach connects end to n, appending c to n's list for that end.
func (c *Connection) Attach(end End, n *Node) error { return c.attach(end, n, nil) }

// AttachOrdered is Attach for undo paths: order is a snapshot of n's list for
// end taken before c was detached, and c is put back at its old position
// relative to the entries still present.
func (c *Connection) AttachOrdered(end End, n *Node, order []ConnID) error {
	return c.attach(end, n, order)
}

func (c *Connection) DetachSource() error { return c.Detach(SourceEnd) }
func (c *Connection) DetachTarget() error { return c.Detach(TargetEnd) }

func (c *Connection) attach(end End, n *Node, order []ConnID) error {
	if err := c.d.checkMutable(); err != nil {
		return err
	}
	if n == nil {
		return Errorf(KindInvalidOperation, "attach %s of %s: nil node", end, c.id)
	}
	if n.d != c.d {
		return Errorf(KindInvalidOperation, "attach %s of %s: node %s belongs to another diagram", end, c.id, n.id)
	}
	cur := c.Endpoint(end)
	if cur == n.id {
		return nil
	}
	if cur != "" {
		return Errorf(KindInvalidOperation, "%s of %s already attached to %s; detach first", end, c.id, cur)
	}
	c.setEndpoint(end, n.id)
	n.insert(end, c.id, order)
	c.d.report(c.notifier.Notify(end.attachedProp(), NodeID(""), n.id))
	return nil
}

// Detach releases end. Detaching an end that is not attached is a no-op.
func (c *Connection) Detach(end End) error {
	if err := c.d.checkMutable(); err != nil {
		return err
	}
	cur := c.Endpoint(end)
	if cur == "" {
		return nil
	}
	if n := c.d.nodes[cur]; n != nil {
		n.remove(end, c.id)
	}
	c.setEndpoint(end, "")
	c.d.report(c.notifier.Notify(end.detachedProp(), cur, NodeID("")))
	return nil
}

func (c *Connection) setEndpoint(end End, id NodeID) {
	if end == SourceEnd {
		c.source = id
	} else {
		c.target = id
	}
}

// Bendpoints returns a copy of the waypoint list.
func (c *Connection) Bendpoints() []Point { return clonePoints(c.bendpoints) }

// SetBendpoints replaces the waypoint list and raises one "bendpoints" event
// carrying the old and new lists.
func (c *Connection) SetBendpoints(points []Point) error {
	if err := c.d.checkMutable(); err != nil {
		return err
	}
	old := clonePoints(c.bendpoints)
	c.bendpoints = clonePoints(points)
	c.d.report(c.notifier.Notify(notify.PropBendpoints, old, clonePoints(c.bendpoints)))
	return nil
}

// Route returns the polyline a view draws for c: the source node's center
// (when attached), the bendpoints, then the target node's center. It is
// derived on every call and never stored.
func (c *Connection) Route() []Point {
	route := make([]Point, 0, len(c.bendpoints)+2)
	if n := c.d.nodes[c.source]; n != nil && c.source != "" {
		route = append(route, n.bounds.Center())
	}
	route = append(route, c.bendpoints...)
	if n := c.d.nodes[c.target]; n != nil && c.target != "" {
		route = append(route, n.bounds.Center())
	}
	return route
}
