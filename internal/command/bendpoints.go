package command

import (
	"fmt"

	"github.com/gyaneshwarpardhi/rxndiagram/internal/diagram"
)

// SetBendpointsCommand replaces the bendpoint list of a connection.
type SetBendpointsCommand struct {
	lifecycle
	d      *diagram.Diagram
	conn   diagram.ConnID
	points []diagram.Point
	old    []diagram.Point
}

// NewSetBendpoints returns a command giving conn the bendpoints points.
func NewSetBendpoints(d *diagram.Diagram, conn diagram.ConnID, points []diagram.Point) *SetBendpointsCommand {
	cp := make([]diagram.Point, len(points))
	copy(cp, points)
	return &SetBendpointsCommand{d: d, conn: conn, points: cp}
}

func (c *SetBendpointsCommand) Label() string { return fmt.Sprintf("set bendpoints of %s", c.conn) }

func (c *SetBendpointsCommand) Execute() error {
	if err := c.canExecute(c.Label()); err != nil {
		return err
	}
	conn, err := c.d.LookupConnection(c.conn)
	if err != nil {
		return err
	}
	old := conn.Bendpoints()
	if err := conn.SetBendpoints(c.points); err != nil {
		return err
	}
	c.old = old
	c.executed = true
	return nil
}

func (c *SetBendpointsCommand) Undo() error {
	if err := c.canUndo(c.Label()); err != nil {
		return err
	}
	conn, err := c.d.LookupConnection(c.conn)
	if err != nil {
		return err
	}
	if err := conn.SetBendpoints(c.old); err != nil {
		return err
	}
	c.executed = false
	return nil
}

// CreateBendpoint returns a copy of points with p inserted at index.
func CreateBendpoint(points []diagram.Point, index int, p diagram.Point) ([]diagram.Point, error) {
	if index < 0 || index > len(points) {
		return nil, diagram.Errorf(diagram.KindInvalidOperation, "bendpoint index %d out of range [0,%d]", index, len(points))
	}
	out := make([]diagram.Point, 0, len(points)+1)
	out = append(out, points[:index]...)
	out = append(out, p)
	return append(out, points[index:]...), nil
}

// MoveBendpoint returns a copy of points with the point at index replaced by p.
func MoveBendpoint(points []diagram.Point, index int, p diagram.Point) ([]diagram.Point, error) {
	if index < 0 || index >= len(points) {
		return nil, diagram.Errorf(diagram.KindInvalidOperation, "bendpoint index %d out of range [0,%d)", index, len(points))
	}
	out := make([]diagram.Point, len(points))
	copy(out, points)
	out[index] = p
	return out, nil
}

// DeleteBendpoint returns a copy of points without the point at index.
func DeleteBendpoint(points []diagram.Point, index int) ([]diagram.Point, error) {
	if index < 0 || index >= len(points) {
		return nil, diagram.Errorf(diagram.KindInvalidOperation, "bendpoint index %d out of range [0,%d)", index, len(points))
	}
	out := make([]diagram.Point, 0, len(points)-1)
	out = append(out, points[:index]...)
	return append(out, points[index+1:]...), nil
}
