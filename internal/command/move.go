package command

import (
	"fmt"

	"github.com/gyaneshwarpardhi/rxndiagram/internal/diagram"
)

// MoveNodeCommand changes the position and size of a node.
type MoveNodeCommand struct {
	lifecycle
	d      *diagram.Diagram
	node   diagram.NodeID
	bounds diagram.Bounds
	old    diagram.Bounds
}

func NewMoveNode(d *diagram.Diagram, node diagram.NodeID, bounds diagram.Bounds) *MoveNodeCommand {
	return &MoveNodeCommand{d: d, node: node, bounds: bounds}
}

func (c *MoveNodeCommand) Label() string { return fmt.Sprintf("move %s", c.node) }

func (c *MoveNodeCommand) Execute() error {
	if err := c.canExecute(c.Label()); err != nil {
		return err
	}
	n, err := c.d.LookupNode(c.node)
	if err != nil {
		return err
	}
	old := n.Bounds()
	if err := n.SetBounds(c.bounds); err != nil {
		return err
	}
	c.old = old
	c.executed = true
	return nil
}

func (c *MoveNodeCommand) Undo() error {
	if err := c.canUndo(c.Label()); err != nil {
		return err
	}
	n, err := c.d.LookupNode(c.node)
	if err != nil {
		return err
	}
	if err := n.SetBounds(c.old); err != nil {
		return err
	}
	c.executed = false
	return nil
}
