package command

import (
	"fmt"

	"github.com/gyaneshwarpardhi/rxndiagram/internal/diagram"
)

// CreateNodeCommand registers a node and adds it to the container. The node
// is registered on the first Execute only; redo adds the same node again.
type CreateNodeCommand struct {
	lifecycle
	d     *diagram.Diagram
	spec  diagram.NodeSpec
	index int
	node  *diagram.Node
}

// NewCreateNode returns a command that appends a node built from spec.
func NewCreateNode(d *diagram.Diagram, spec diagram.NodeSpec) *CreateNodeCommand {
	if spec.ID == "" {
		spec.ID = diagram.NewNodeID()
	}
	return &CreateNodeCommand{d: d, spec: spec, index: -1}
}

// At makes the command insert the node at index i instead of appending.
func (c *CreateNodeCommand) At(i int) *CreateNodeCommand {
	c.index = i
	return c
}

func (c *CreateNodeCommand) Label() string {
	if c.spec.Kind == "" {
		return fmt.Sprintf("create node %s", c.spec.ID)
	}
	return fmt.Sprintf("create %s %s", c.spec.Kind, c.spec.ID)
}

// NodeID returns the id the created node has.
func (c *CreateNodeCommand) NodeID() diagram.NodeID { return c.spec.ID }

func (c *CreateNodeCommand) Execute() error {
	if err := c.canExecute(c.Label()); err != nil {
		return err
	}
	if c.node == nil {
		n, err := c.d.NewNode(c.spec)
		if err != nil {
			return err
		}
		c.node = n
	}
	index := c.index
	if index < 0 {
		index = c.d.Contents().Len()
	}
	if err := c.d.Contents().InsertChild(index, c.node); err != nil {
		return err
	}
	c.executed = true
	return nil
}

func (c *CreateNodeCommand) Undo() error {
	if err := c.canUndo(c.Label()); err != nil {
		return err
	}
	if err := c.d.Contents().RemoveChild(c.node); err != nil {
		return err
	}
	c.executed = false
	return nil
}

// CreateConnectionCommand registers a connection and attaches it between two
// nodes of the container. Undo detaches both ends; the connection keeps its
// bendpoints and is reattached by redo.
type CreateConnectionCommand struct {
	lifecycle
	d      *diagram.Diagram
	spec   diagram.ConnectionSpec
	source diagram.NodeID
	target diagram.NodeID
	conn   *diagram.Connection
}

// NewCreateConnection returns a command connecting source to target.
func NewCreateConnection(d *diagram.Diagram, spec diagram.ConnectionSpec, source, target diagram.NodeID) *CreateConnectionCommand {
	if spec.ID == "" {
		spec.ID = diagram.NewConnID()
	}
	return &CreateConnectionCommand{d: d, spec: spec, source: source, target: target}
}

func (c *CreateConnectionCommand) Label() string {
	return fmt.Sprintf("connect %s to %s", c.source, c.target)
}

// ConnID returns the id of the created connection.
func (c *CreateConnectionCommand) ConnID() diagram.ConnID { return c.spec.ID }

func (c *CreateConnectionCommand) Execute() error {
	if err := c.canExecute(c.Label()); err != nil {
		return err
	}
	src, err := c.child(c.source)
	if err != nil {
		return err
	}
	dst, err := c.child(c.target)
	if err != nil {
		return err
	}
	if c.conn == nil {
		conn, err := c.d.NewConnection(c.spec)
		if err != nil {
			return err
		}
		c.conn = conn
	}
	if err := c.conn.AttachSource(src); err != nil {
		return err
	}
	if err := c.conn.AttachTarget(dst); err != nil {
		if derr := c.conn.DetachSource(); derr != nil {
			return fmt.Errorf("%w (rollback: %v)", err, derr)
		}
		return err
	}
	c.executed = true
	return nil
}

func (c *CreateConnectionCommand) Undo() error {
	if err := c.canUndo(c.Label()); err != nil {
		return err
	}
	if err := c.conn.DetachTarget(); err != nil {
		return err
	}
	if err := c.conn.DetachSource(); err != nil {
		return err
	}
	c.executed = false
	return nil
}

func (c *CreateConnectionCommand) child(id diagram.NodeID) (*diagram.Node, error) {
	n, err := c.d.LookupNode(id)
	if err != nil {
		return nil, err
	}
	if !c.d.Contents().Contains(id) {
		return nil, diagram.Errorf(diagram.KindInvalidOperation, "node %s is not in the diagram", id)
	}
	return n, nil
}
