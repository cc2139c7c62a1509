package command

import (
	"fmt"

	"github.com/gyaneshwarpardhi/rxndiagram/internal/diagram"
)

// SetAttributeCommand edits one attribute of a node, as a property sheet
// does. Undo restores the previous value, or removes the key if the node did
// not have it.
type SetAttributeCommand struct {
	lifecycle
	d     *diagram.Diagram
	node  diagram.NodeID
	key   string
	value interface{}

	old interface{}
	had bool
}

func NewSetAttribute(d *diagram.Diagram, node diagram.NodeID, key string, value interface{}) *SetAttributeCommand {
	return &SetAttributeCommand{d: d, node: node, key: key, value: value}
}

func (c *SetAttributeCommand) Label() string { return fmt.Sprintf("set %s of %s", c.key, c.node) }

func (c *SetAttributeCommand) Execute() error {
	if err := c.canExecute(c.Label()); err != nil {
		return err
	}
	if c.key == "" {
		return diagram.Errorf(diagram.KindInvalidOperation, "attribute key is empty")
	}
	n, err := c.d.LookupNode(c.node)
	if err != nil {
		return err
	}
	old, had := n.Attribute(c.key)
	if err := n.SetAttribute(c.key, c.value); err != nil {
		return err
	}
	c.old, c.had = old, had
	c.executed = true
	return nil
}

func (c *SetAttributeCommand) Undo() error {
	if err := c.canUndo(c.Label()); err != nil {
		return err
	}
	n, err := c.d.LookupNode(c.node)
	if err != nil {
		return err
	}
	if c.had {
		err = n.SetAttribute(c.key, c.old)
	} else {
		err = n.RemoveAttribute(c.key)
	}
	if err != nil {
		return err
	}
	c.executed = false
	return nil
}
