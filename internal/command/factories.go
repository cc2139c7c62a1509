package command

import (
	"fmt"

	"github.com/gyaneshwarpardhi/rxndiagram/internal/diagram"
)

// Built-in command kinds.
const (
	KindCreateNode    = "create-node"
	KindDelete        = "delete"
	KindConnect       = "connect"
	KindReconnect     = "reconnect"
	KindSetBendpoints = "set-bendpoints"
	KindMove          = "move"
	KindSetAttribute  = "set-attribute"
)

// createNodeFactory handles "create-node":
//   - kind: node kind (required)
//   - id, attributes, bounds, index: optional
type createNodeFactory struct{}

func (createNodeFactory) Kind() string { return KindCreateNode }

func (createNodeFactory) Validate(p Params) error {
	if _, err := requireString(p, KindCreateNode, "kind"); err != nil {
		return err
	}
	if _, _, err := optionalBounds(p, KindCreateNode, "bounds"); err != nil {
		return err
	}
	_, err := optionalAttributes(p, KindCreateNode, "attributes")
	return err
}

func (createNodeFactory) Build(d *diagram.Diagram, p Params) (Command, error) {
	kind, _ := p["kind"].(string)
	id, _ := p["id"].(string)
	bounds, _, err := optionalBounds(p, KindCreateNode, "bounds")
	if err != nil {
		return nil, err
	}
	attrs, err := optionalAttributes(p, KindCreateNode, "attributes")
	if err != nil {
		return nil, err
	}
	cmd := NewCreateNode(d, diagram.NodeSpec{ID: diagram.NodeID(id), Kind: kind, Attributes: attrs, Bounds: bounds})
	if idx, ok := toFloat64(p["index"]); ok {
		cmd.At(int(idx))
	}
	return cmd, nil
}

// deleteFactory handles "delete": node (required).
type deleteFactory struct{}

func (deleteFactory) Kind() string { return KindDelete }

func (deleteFactory) Validate(p Params) error {
	_, err := requireString(p, KindDelete, "node")
	return err
}

func (deleteFactory) Build(d *diagram.Diagram, p Params) (Command, error) {
	node, _ := p["node"].(string)
	return NewDelete(d, diagram.NodeID(node)), nil
}

// connectFactory handles "connect":
//   - source, target: node ids (required)
//   - id, bendpoints, attributes: optional
type connectFactory struct{}

func (connectFactory) Kind() string { return KindConnect }

func (connectFactory) Validate(p Params) error {
	for _, key := range []string{"source", "target"} {
		if _, err := requireString(p, KindConnect, key); err != nil {
			return err
		}
	}
	if _, err := optionalPoints(p, KindConnect, "bendpoints"); err != nil {
		return err
	}
	_, err := optionalAttributes(p, KindConnect, "attributes")
	return err
}

func (connectFactory) Build(d *diagram.Diagram, p Params) (Command, error) {
	source, _ := p["source"].(string)
	target, _ := p["target"].(string)
	id, _ := p["id"].(string)
	points, err := optionalPoints(p, KindConnect, "bendpoints")
	if err != nil {
		return nil, err
	}
	attrs, err := optionalAttributes(p, KindConnect, "attributes")
	if err != nil {
		return nil, err
	}
	spec := diagram.ConnectionSpec{ID: diagram.ConnID(id), Attributes: attrs, Bendpoints: points}
	return NewCreateConnection(d, spec, diagram.NodeID(source), diagram.NodeID(target)), nil
}

// reconnectFactory handles "reconnect":
//   - connection, node: ids (required)
//   - end: "source" or "target" (required)
type reconnectFactory struct{}

func (reconnectFactory) Kind() string { return KindReconnect }

func (reconnectFactory) Validate(p Params) error {
	for _, key := range []string{"connection", "node"} {
		if _, err := requireString(p, KindReconnect, key); err != nil {
			return err
		}
	}
	_, err := parseEnd(p)
	return err
}

func (reconnectFactory) Build(d *diagram.Diagram, p Params) (Command, error) {
	end, err := parseEnd(p)
	if err != nil {
		return nil, err
	}
	conn, _ := p["connection"].(string)
	node, _ := p["node"].(string)
	return NewReconnect(d, diagram.ConnID(conn), end, diagram.NodeID(node)), nil
}

func parseEnd(p Params) (diagram.End, error) {
	switch s, _ := p["end"].(string); s {
	case "source":
		return diagram.SourceEnd, nil
	case "target":
		return diagram.TargetEnd, nil
	default:
		return 0, fmt.Errorf("%w: %s: end must be 'source' or 'target', got %q", ErrInvalidParams, KindReconnect, s)
	}
}

// setBendpointsFactory handles "set-bendpoints":
//   - connection (required)
//   - op: "set" (default, uses points), "create" or "move" (index, point),
//     "delete" (index)
type setBendpointsFactory struct{}

func (setBendpointsFactory) Kind() string { return KindSetBendpoints }

func (setBendpointsFactory) Validate(p Params) error {
	if _, err := requireString(p, KindSetBendpoints, "connection"); err != nil {
		return err
	}
	op, _ := p["op"].(string)
	switch op {
	case "", "set":
		if _, ok := p["points"]; !ok {
			return fmt.Errorf("%w: %s: points is required", ErrInvalidParams, KindSetBendpoints)
		}
		_, err := optionalPoints(p, KindSetBendpoints, "points")
		return err
	case "create", "move":
		if _, ok := toFloat64(p["index"]); !ok {
			return fmt.Errorf("%w: %s: index is required", ErrInvalidParams, KindSetBendpoints)
		}
		_, err := toPoint(p["point"])
		if err != nil {
			return fmt.Errorf("%w: %s: point: %v", ErrInvalidParams, KindSetBendpoints, err)
		}
		return nil
	case "delete":
		if _, ok := toFloat64(p["index"]); !ok {
			return fmt.Errorf("%w: %s: index is required", ErrInvalidParams, KindSetBendpoints)
		}
		return nil
	default:
		return fmt.Errorf("%w: %s: unknown op %q", ErrInvalidParams, KindSetBendpoints, op)
	}
}

func (setBendpointsFactory) Build(d *diagram.Diagram, p Params) (Command, error) {
	id, _ := p["connection"].(string)
	conn, err := d.LookupConnection(diagram.ConnID(id))
	if err != nil {
		return nil, err
	}
	op, _ := p["op"].(string)
	index, _ := toFloat64(p["index"])
	var points []diagram.Point
	switch op {
	case "", "set":
		points, err = optionalPoints(p, KindSetBendpoints, "points")
	case "create":
		pt, _ := toPoint(p["point"])
		points, err = CreateBendpoint(conn.Bendpoints(), int(index), pt)
	case "move":
		pt, _ := toPoint(p["point"])
		points, err = MoveBendpoint(conn.Bendpoints(), int(index), pt)
	case "delete":
		points, err = DeleteBendpoint(conn.Bendpoints(), int(index))
	}
	if err != nil {
		return nil, err
	}
	return NewSetBendpoints(d, conn.ID(), points), nil
}

// moveFactory handles "move":
//   - node (required)
//   - bounds: new box, or dx/dy: translation of the current box
type moveFactory struct{}

func (moveFactory) Kind() string { return KindMove }

func (moveFactory) Validate(p Params) error {
	if _, err := requireString(p, KindMove, "node"); err != nil {
		return err
	}
	_, hasBounds, err := optionalBounds(p, KindMove, "bounds")
	if err != nil {
		return err
	}
	_, hasDX := toFloat64(p["dx"])
	_, hasDY := toFloat64(p["dy"])
	if !hasBounds && !hasDX && !hasDY {
		return fmt.Errorf("%w: %s: one of 'bounds' or 'dx'/'dy' is required", ErrInvalidParams, KindMove)
	}
	return nil
}

func (moveFactory) Build(d *diagram.Diagram, p Params) (Command, error) {
	id, _ := p["node"].(string)
	n, err := d.LookupNode(diagram.NodeID(id))
	if err != nil {
		return nil, err
	}
	bounds, ok, err := optionalBounds(p, KindMove, "bounds")
	if err != nil {
		return nil, err
	}
	if !ok {
		dx, _ := toFloat64(p["dx"])
		dy, _ := toFloat64(p["dy"])
		bounds = n.Bounds().Translate(dx, dy)
	}
	return NewMoveNode(d, n.ID(), bounds), nil
}

// setAttributeFactory handles "set-attribute": node, key (required), value.
type setAttributeFactory struct{}

func (setAttributeFactory) Kind() string { return KindSetAttribute }

func (setAttributeFactory) Validate(p Params) error {
	for _, key := range []string{"node", "key"} {
		if _, err := requireString(p, KindSetAttribute, key); err != nil {
			return err
		}
	}
	return nil
}

func (setAttributeFactory) Build(d *diagram.Diagram, p Params) (Command, error) {
	node, _ := p["node"].(string)
	key, _ := p["key"].(string)
	return NewSetAttribute(d, diagram.NodeID(node), key, p["value"]), nil
}
