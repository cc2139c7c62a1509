// Package selector evaluates boolean expressions over diagram nodes, e.g.
//
//	node.kind == "molecule" AND degree.in == 0
//	attr.label matches "^ATP" OR NOT pos.x < 100
//
// Fields: node.id, node.kind, attr.<key>, pos.x, pos.y, pos.width,
// pos.height, degree.in, degree.out. A missing attribute is null.
package selector

import (
	"fmt"
	"strings"

	"github.com/gyaneshwarpardhi/rxndiagram/internal/diagram"
)

// Selector is a compiled expression.
type Selector struct {
	src  string
	expr Expr
}

// Compile parses src and checks that every field it names exists.
func Compile(src string) (*Selector, error) {
	if strings.TrimSpace(src) == "" {
		return nil, fmt.Errorf("selector: empty expression")
	}
	expr, err := Parse(src)
	if err != nil {
		return nil, fmt.Errorf("selector: %w", err)
	}
	if err := checkFields(expr); err != nil {
		return nil, fmt.Errorf("selector: %w", err)
	}
	return &Selector{src: src, expr: expr}, nil
}

func (s *Selector) String() string { return s.src }

// Match reports whether n satisfies the selector.
func (s *Selector) Match(n *diagram.Node) (bool, error) {
	return Evaluate(s.expr, nodeContext{n})
}

// Select returns the ids of the container children that match, in
// container order.
func (s *Selector) Select(d *diagram.Diagram) ([]diagram.NodeID, error) {
	var out []diagram.NodeID
	for _, n := range d.Children() {
		ok, err := s.Match(n)
		if err != nil {
			return nil, fmt.Errorf("selector %q on node %s: %w", s.src, n.ID(), err)
		}
		if ok {
			out = append(out, n.ID())
		}
	}
	return out, nil
}

// Context resolves field paths for Evaluate.
type Context interface {
	Resolve(path []string) (interface{}, bool)
}

type nodeContext struct {
	n *diagram.Node
}

func (c nodeContext) Resolve(path []string) (interface{}, bool) {
	if len(path) < 2 {
		return nil, false
	}
	switch path[0] {
	case "node":
		switch path[1] {
		case "id":
			return string(c.n.ID()), len(path) == 2
		case "kind":
			return c.n.Kind(), len(path) == 2
		}
	case "attr":
		v, _ := c.n.Attribute(strings.Join(path[1:], "."))
		return v, true
	case "pos":
		b := c.n.Bounds()
		switch path[1] {
		case "x":
			return b.X, true
		case "y":
			return b.Y, true
		case "width":
			return b.Width, true
		case "height":
			return b.Height, true
		}
	case "degree":
		in, out := c.n.Degree()
		switch path[1] {
		case "in":
			return in, true
		case "out":
			return out, true
		}
	}
	return nil, false
}

var knownFields = map[string]bool{
	"node.id": true, "node.kind": true,
	"pos.x": true, "pos.y": true, "pos.width": true, "pos.height": true,
	"degree.in": true, "degree.out": true,
}

func checkFields(e Expr) error {
	switch x := e.(type) {
	case *LogicalExpr:
		if err := checkFields(x.Left); err != nil {
			return err
		}
		return checkFields(x.Right)
	case *NotExpr:
		return checkFields(x.Expr)
	case *CompareExpr:
		for _, op := range []Operand{x.Left, x.Right} {
			f, ok := op.(*Field)
			if !ok {
				continue
			}
			if len(f.Path) >= 2 && f.Path[0] == "attr" && f.Path[1] != "" {
				continue
			}
			if !knownFields[f.String()] {
				return fmt.Errorf("unknown field %q", f.String())
			}
		}
	}
	return nil
}
