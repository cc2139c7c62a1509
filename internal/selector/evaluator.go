package selector

import (
	"fmt"
)

// Evaluate walks expr against ctx. AND and OR short-circuit.
func Evaluate(expr Expr, ctx Context) (bool, error) {
	switch e := expr.(type) {
	case *LogicalExpr:
		left, err := Evaluate(e.Left, ctx)
		if err != nil {
			return false, err
		}
		if e.Op == "AND" && !left {
			return false, nil
		}
		if e.Op == "OR" && left {
			return true, nil
		}
		return Evaluate(e.Right, ctx)
	case *NotExpr:
		v, err := Evaluate(e.Expr, ctx)
		return !v && err == nil, err
	case *CompareExpr:
		left, err := operandValue(e.Left, ctx)
		if err != nil {
			return false, err
		}
		right, err := operandValue(e.Right, ctx)
		if err != nil {
			return false, err
		}
		return compare(e.Op, left, right, e.re)
	default:
		return false, fmt.Errorf("unknown expression %T", expr)
	}
}

func operandValue(op Operand, ctx Context) (interface{}, error) {
	switch o := op.(type) {
	case *Literal:
		return o.Value, nil
	case *Field:
		v, ok := ctx.Resolve(o.Path)
		if !ok {
			return nil, fmt.Errorf("field %q not found", o.String())
		}
		return v, nil
	default:
		return nil, fmt.Errorf("unknown operand %T", op)
	}
}
