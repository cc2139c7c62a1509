package command

import (
	"fmt"

	"go.uber.org/multierr"
)

// CompoundCommand runs its children in order and undoes them in reverse.
// If a child fails to execute, the children already executed are undone so
// the diagram is left as it was.
type CompoundCommand struct {
	lifecycle
	label    string
	children []Command
}

func NewCompound(label string, children ...Command) *CompoundCommand {
	return &CompoundCommand{label: label, children: children}
}

// Add appends a child. Children added after Execute are ignored until the
// next Execute.
func (c *CompoundCommand) Add(cmd Command) { c.children = append(c.children, cmd) }

func (c *CompoundCommand) Len() int { return len(c.children) }

// Children returns the child commands in execution order.
func (c *CompoundCommand) Children() []Command {
	out := make([]Command, len(c.children))
	copy(out, c.children)
	return out
}

func (c *CompoundCommand) Label() string { return c.label }

func (c *CompoundCommand) Execute() error {
	if err := c.canExecute(c.Label()); err != nil {
		return err
	}
	for i, child := range c.children {
		if err := child.Execute(); err != nil {
			err = fmt.Errorf("%s: step %d (%s): %w", c.label, i+1, child.Label(), err)
			return multierr.Append(err, undoAll(c.children[:i]))
		}
	}
	c.executed = true
	return nil
}

func (c *CompoundCommand) Undo() error {
	if err := c.canUndo(c.Label()); err != nil {
		return err
	}
	if err := undoAll(c.children); err != nil {
		return err
	}
	c.executed = false
	return nil
}

func undoAll(cmds []Command) error {
	for i := len(cmds) - 1; i >= 0; i-- {
		if err := cmds[i].Undo(); err != nil {
			return fmt.Errorf("undo %s: %w", cmds[i].Label(), err)
		}
	}
	return nil
}
