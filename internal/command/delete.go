package command

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/gyaneshwarpardhi/rxndiagram/internal/diagram"
)

// endpoints records where one connection was attached before a delete.
type endpoints struct {
	conn   diagram.ConnID
	source diagram.NodeID
	target diagram.NodeID
}

// listOrder is a copy of a node's connection lists.
type listOrder struct {
	sources []diagram.ConnID
	targets []diagram.ConnID
}

func (o listOrder) of(end diagram.End) []diagram.ConnID {
	if end == diagram.SourceEnd {
		return o.sources
	}
	return o.targets
}

// DeleteCommand removes a node from the container after detaching every
// connection attached to it. Undo puts the node back at its old index and
// reattaches each connection to the nodes it was attached to, restoring the
// order of every affected node's connection lists.
type DeleteCommand struct {
	lifecycle
	d      *diagram.Diagram
	nodeID diagram.NodeID

	index    int
	captured []endpoints
	orders   map[diagram.NodeID]listOrder
}

// NewDelete returns a command deleting node id from d.
func NewDelete(d *diagram.Diagram, id diagram.NodeID) *DeleteCommand {
	return &DeleteCommand{d: d, nodeID: id}
}

func (c *DeleteCommand) Label() string { return fmt.Sprintf("delete %s", c.nodeID) }

// NodeID returns the id of the node this command deletes.
func (c *DeleteCommand) NodeID() diagram.NodeID { return c.nodeID }

func (c *DeleteCommand) Execute() error {
	if err := c.canExecute(c.Label()); err != nil {
		return err
	}
	n, err := c.d.LookupNode(c.nodeID)
	if err != nil {
		return err
	}
	index := c.d.Contents().IndexOf(c.nodeID)
	if index < 0 {
		return diagram.Errorf(diagram.KindNotFound, "node %s is not in the diagram", c.nodeID)
	}

	c.index = index
	c.captured = c.captured[:0]
	c.orders = make(map[diagram.NodeID]listOrder)
	seen := make(map[diagram.ConnID]bool)
	for _, cid := range append(n.SourceConnections(), n.TargetConnections()...) {
		if seen[cid] {
			continue // self loop, listed on both sides
		}
		seen[cid] = true
		conn := c.d.Connection(cid)
		ep := endpoints{conn: cid, source: conn.Source(), target: conn.Target()}
		c.remember(ep.source)
		c.remember(ep.target)
		c.captured = append(c.captured, ep)
	}

	for i, ep := range c.captured {
		conn := c.d.Connection(ep.conn)
		if err := conn.DetachSource(); err != nil {
			return multierr.Append(err, c.reattach(c.captured[:i]))
		}
		if err := conn.DetachTarget(); err != nil {
			return multierr.Append(err, c.reattach(c.captured[:i+1]))
		}
	}
	if err := c.d.Contents().RemoveChild(n); err != nil {
		return multierr.Append(err, c.reattach(c.captured))
	}
	c.executed = true
	return nil
}

func (c *DeleteCommand) Undo() error {
	if err := c.canUndo(c.Label()); err != nil {
		return err
	}
	n, err := c.d.LookupNode(c.nodeID)
	if err != nil {
		return err
	}
	if err := c.d.Contents().InsertChild(c.index, n); err != nil {
		return err
	}
	if err := c.reattach(c.captured); err != nil {
		return err
	}
	c.executed = false
	return nil
}

func (c *DeleteCommand) remember(id diagram.NodeID) {
	if id == "" {
		return
	}
	if _, ok := c.orders[id]; ok {
		return
	}
	n := c.d.Node(id)
	c.orders[id] = listOrder{sources: n.SourceConnections(), targets: n.TargetConnections()}
}

// reattach restores the recorded endpoints of eps in order, source then
// target. Ends that are already attached to the recorded node are skipped.
func (c *DeleteCommand) reattach(eps []endpoints) error {
	var errs error
	for _, ep := range eps {
		conn := c.d.Connection(ep.conn)
		for _, end := range []diagram.End{diagram.SourceEnd, diagram.TargetEnd} {
			id := ep.source
			if end == diagram.TargetEnd {
				id = ep.target
			}
			if id == "" {
				continue
			}
			errs = multierr.Append(errs, conn.AttachOrdered(end, c.d.Node(id), c.orders[id].of(end)))
		}
	}
	return errs
}
