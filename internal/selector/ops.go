package selector

import (
	"fmt"
	"math"
	"regexp"
	"strings"
)

// Operator is a comparison operator.
type Operator string

const (
	OpEq       Operator = "=="
	OpNeq      Operator = "!="
	OpGt       Operator = ">"
	OpGte      Operator = ">="
	OpLt       Operator = "<"
	OpLte      Operator = "<="
	OpContains Operator = "contains"
	OpMatches  Operator = "matches"
)

func toFloat64(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// compare applies op. A nil operand (a missing attribute) only satisfies !=
// and never errors.
func compare(op Operator, left, right interface{}, re *regexp.Regexp) (bool, error) {
	if left == nil || right == nil {
		switch op {
		case OpEq:
			return left == nil && right == nil, nil
		case OpNeq:
			return !(left == nil && right == nil), nil
		default:
			return false, nil
		}
	}
	switch op {
	case OpEq:
		return equal(left, right), nil
	case OpNeq:
		return !equal(left, right), nil
	case OpGt, OpGte, OpLt, OpLte:
		return ordered(op, left, right)
	case OpContains:
		return strings.Contains(fmt.Sprint(left), fmt.Sprint(right)), nil
	case OpMatches:
		if re == nil {
			pattern, ok := right.(string)
			if !ok {
				return false, fmt.Errorf("matches: pattern must be a string, got %T", right)
			}
			var err error
			if re, err = regexp.Compile(pattern); err != nil {
				return false, fmt.Errorf("matches: invalid pattern %q: %w", pattern, err)
			}
		}
		return re.MatchString(fmt.Sprint(left)), nil
	default:
		return false, fmt.Errorf("unknown operator %q", op)
	}
}

// equal compares numbers by value, bools as bools and anything else by its
// string form.
func equal(left, right interface{}) bool {
	lf, lok := toFloat64(left)
	rf, rok := toFloat64(right)
	if lok && rok {
		return math.Abs(lf-rf) < 1e-9
	}
	if lb, ok := left.(bool); ok {
		rb, ok := right.(bool)
		return ok && lb == rb
	}
	return fmt.Sprint(left) == fmt.Sprint(right)
}

func ordered(op Operator, left, right interface{}) (bool, error) {
	lf, lok := toFloat64(left)
	rf, rok := toFloat64(right)
	if !lok || !rok {
		ls, lsok := left.(string)
		rs, rsok := right.(string)
		if !lsok || !rsok {
			return false, fmt.Errorf("operator %s needs two numbers or two strings, got %T and %T", op, left, right)
		}
		c := strings.Compare(ls, rs)
		lf, rf = float64(c), 0
	}
	switch op {
	case OpGt:
		return lf > rf, nil
	case OpGte:
		return lf >= rf, nil
	case OpLt:
		return lf < rf, nil
	default:
		return lf <= rf, nil
	}
}
