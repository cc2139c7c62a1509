package command

import (
	"fmt"

	"github.com/gyaneshwarpardhi/rxndiagram/internal/diagram"
)

// ReconnectCommand moves one end of a connection to another node. Undo puts
// the end back on the previous node at its old list position, or leaves it
// detached if it was detached before.
type ReconnectCommand struct {
	lifecycle
	d    *diagram.Diagram
	conn diagram.ConnID
	end  diagram.End
	to   diagram.NodeID

	from  diagram.NodeID
	order []diagram.ConnID
}

// NewReconnect returns a command attaching end of conn to node to.
func NewReconnect(d *diagram.Diagram, conn diagram.ConnID, end diagram.End, to diagram.NodeID) *ReconnectCommand {
	return &ReconnectCommand{d: d, conn: conn, end: end, to: to}
}

func (c *ReconnectCommand) Label() string {
	return fmt.Sprintf("reconnect %s of %s to %s", c.end, c.conn, c.to)
}

func (c *ReconnectCommand) Execute() error {
	if err := c.canExecute(c.Label()); err != nil {
		return err
	}
	conn, err := c.d.LookupConnection(c.conn)
	if err != nil {
		return err
	}
	to, err := c.d.LookupNode(c.to)
	if err != nil {
		return err
	}
	if !c.d.Contents().Contains(c.to) {
		return diagram.Errorf(diagram.KindInvalidOperation, "node %s is not in the diagram", c.to)
	}
	from := conn.Endpoint(c.end)
	if from == c.to {
		return diagram.Errorf(diagram.KindInvalidOperation, "%s of %s is already attached to %s", c.end, c.conn, c.to)
	}

	c.from = from
	c.order = nil
	if from != "" {
		c.order = listFor(c.d.Node(from), c.end)
	}
	if err := conn.Detach(c.end); err != nil {
		return err
	}
	if err := conn.Attach(c.end, to); err != nil {
		if c.from != "" {
			if rerr := conn.AttachOrdered(c.end, c.d.Node(c.from), c.order); rerr != nil {
				return fmt.Errorf("%w (rollback: %v)", err, rerr)
			}
		}
		return err
	}
	c.executed = true
	return nil
}

func (c *ReconnectCommand) Undo() error {
	if err := c.canUndo(c.Label()); err != nil {
		return err
	}
	conn, err := c.d.LookupConnection(c.conn)
	if err != nil {
		return err
	}
	if err := conn.Detach(c.end); err != nil {
		return err
	}
	if c.from != "" {
		if err := conn.AttachOrdered(c.end, c.d.Node(c.from), c.order); err != nil {
			return err
		}
	}
	c.executed = false
	return nil
}

func listFor(n *diagram.Node, end diagram.End) []diagram.ConnID {
	if end == diagram.SourceEnd {
		return n.SourceConnections()
	}
	return n.TargetConnections()
}
