package selector

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Expr is a node of a parsed selector.
type Expr interface {
	exprNode()
}

// LogicalExpr is AND / OR.
type LogicalExpr struct {
	Op    string
	Left  Expr
	Right Expr
}

// NotExpr negates its operand.
type NotExpr struct {
	Expr Expr
}

// CompareExpr is <operand> <operator> <operand>.
type CompareExpr struct {
	Left  Operand
	Op    Operator
	Right Operand

	re *regexp.Regexp // compiled pattern when Op is matches with a literal
}

func (*LogicalExpr) exprNode() {}
func (*NotExpr) exprNode()     {}
func (*CompareExpr) exprNode() {}

// Operand is a Literal or a Field.
type Operand interface {
	operandNode()
}

// Literal is a constant: string, float64, bool or nil.
type Literal struct {
	Value interface{}
}

// Field is a path such as node.kind or attr.label.
type Field struct {
	Path []string
}

func (*Literal) operandNode() {}
func (*Field) operandNode()   {}

func (f *Field) String() string { return strings.Join(f.Path, ".") }

type parser struct {
	tokens []token
	pos    int
}

func (p *parser) peek() token { return p.tokens[p.pos] }

func (p *parser) next() token {
	t := p.tokens[p.pos]
	p.pos++
	return t
}

func (p *parser) keyword(kw string) bool {
	t := p.peek()
	return t.kind == tokWord && strings.EqualFold(t.val, kw)
}

// Parse turns a selector expression into its syntax tree.
//
//	or      = and { "OR" and }
//	and     = unary { "AND" unary }
//	unary   = "NOT" unary | "(" or ")" | compare
//	compare = operand op operand
func Parse(src string) (Expr, error) {
	tokens, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	e, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, fmt.Errorf("position %d: unexpected %q after expression", t.pos, t.val)
	}
	return e, nil
}

func (p *parser) parseOr() (Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.keyword("OR") {
		p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &LogicalExpr{Op: "OR", Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.keyword("AND") {
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &LogicalExpr{Op: "AND", Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseUnary() (Expr, error) {
	if p.keyword("NOT") {
		p.next()
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &NotExpr{Expr: inner}, nil
	}
	if p.peek().kind == tokLParen {
		p.next()
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if t := p.next(); t.kind != tokRParen {
			return nil, fmt.Errorf("position %d: expected ')', got %q", t.pos, t.val)
		}
		return inner, nil
	}
	return p.parseCompare()
}

func (p *parser) parseCompare() (Expr, error) {
	left, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	t := p.peek()
	var op Operator
	switch {
	case t.kind == tokOp:
		op = Operator(t.val)
	case p.keyword("contains"):
		op = OpContains
	case p.keyword("matches"):
		op = OpMatches
	default:
		return nil, fmt.Errorf("position %d: expected comparison operator, got %q", t.pos, t.val)
	}
	p.next()
	right, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	cmp := &CompareExpr{Left: left, Op: op, Right: right}
	if lit, ok := right.(*Literal); ok && op == OpMatches {
		pattern, ok := lit.Value.(string)
		if !ok {
			return nil, fmt.Errorf("position %d: matches needs a string pattern", t.pos)
		}
		if cmp.re, err = regexp.Compile(pattern); err != nil {
			return nil, fmt.Errorf("position %d: invalid pattern %q: %w", t.pos, pattern, err)
		}
	}
	return cmp, nil
}

func (p *parser) parseOperand() (Operand, error) {
	t := p.next()
	switch t.kind {
	case tokString:
		return &Literal{Value: t.val}, nil
	case tokNumber:
		f, err := strconv.ParseFloat(t.val, 64)
		if err != nil {
			return nil, fmt.Errorf("position %d: invalid number %q", t.pos, t.val)
		}
		return &Literal{Value: f}, nil
	case tokBool:
		return &Literal{Value: t.val == "true"}, nil
	case tokNull:
		return &Literal{}, nil
	case tokWord:
		return &Field{Path: strings.Split(t.val, ".")}, nil
	default:
		return nil, fmt.Errorf("position %d: expected operand, got %q", t.pos, t.val)
	}
}
