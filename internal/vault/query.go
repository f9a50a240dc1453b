package vault

import (
	"fmt"
	"strconv"
	"strings"
)

// expr is a boolean expression over pages and list items.
type expr interface {
	eval(c *evalCtx, t target) bool
}

// operand yields a value for a target: a field lookup or a literal.
type operand interface {
	value(c *evalCtx, t target) any
}

type (
	andExpr    struct{ left, right expr }
	orExpr     struct{ left, right expr }
	notExpr    struct{ inner expr }
	typeExpr   struct{ kind string }
	pathExpr   struct{ prefix string }
	childOf    struct{ parent expr }
	truthyExpr struct{ operand operand }
)

type compareExpr struct {
	left  operand
	op    string
	right operand
}

type containsExpr struct {
	left operand
	arg  operand
}

type (
	fieldRef struct{ name string }
	literal  struct{ v any }
	dateLit  struct{ raw string }
)

// Query is a parsed query expression.
type Query struct {
	src  string
	root expr
}

func (q *Query) String() string {
	return q.src
}

// ParseQuery parses src into a Query.
func ParseQuery(src string) (*Query, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	root, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokEOF {
		return nil, fmt.Errorf("unexpected %s", tok)
	}
	return &Query{src: src, root: root}, nil
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() token {
	return p.toks[p.pos]
}

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) expect(kind tokenKind, what string) (token, error) {
	t := p.next()
	if t.kind != kind {
		return t, fmt.Errorf("expected %s, got %s", what, t)
	}
	return t, nil
}

func (p *parser) keyword(word string) bool {
	t := p.peek()
	if t.kind == tokIdent && strings.EqualFold(t.text, word) {
		p.pos++
		return true
	}
	return false
}

func (p *parser) parseOr() (expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.keyword("or") {
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = orExpr{left, right}
	}
	return left, nil
}

func (p *parser) parseAnd() (expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.keyword("and") {
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = andExpr{left, right}
	}
	return left, nil
}

func (p *parser) parseUnary() (expr, error) {
	if p.peek().kind == tokNot {
		p.next()
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return notExpr{inner}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (expr, error) {
	t := p.peek()
	switch {
	case t.kind == tokLParen:
		p.next()
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen, `")"`); err != nil {
			return nil, err
		}
		return inner, nil
	case t.kind == tokIdent && strings.HasPrefix(t.text, "@"):
		p.next()
		switch kind := strings.ToLower(t.text); kind {
		case "@page", "@task", "@list-item":
			return typeExpr{kind}, nil
		}
		return nil, fmt.Errorf("unknown type %s", t)
	case t.kind == tokIdent && p.call("path"):
		s, err := p.expect(tokString, "path string")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen, `")"`); err != nil {
			return nil, err
		}
		return pathExpr{strings.Trim(s.text, "/")}, nil
	case t.kind == tokIdent && p.call("childof"):
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen, `")"`); err != nil {
			return nil, err
		}
		return &childOf{inner}, nil
	}
	return p.parseComparison()
}

// call consumes name followed by "(".
func (p *parser) call(name string) bool {
	t := p.peek()
	if t.kind != tokIdent || !strings.EqualFold(t.text, name) {
		return false
	}
	if p.pos+1 >= len(p.toks) || p.toks[p.pos+1].kind != tokLParen {
		return false
	}
	p.pos += 2
	return true
}

func (p *parser) parseComparison() (expr, error) {
	left, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	switch t := p.peek(); {
	case t.kind == tokOp:
		p.next()
		right, err := p.parseOperand()
		if err != nil {
			return nil, err
		}
		return compareExpr{left: left, op: t.text, right: right}, nil
	case t.kind == tokDot:
		p.next()
		name, err := p.expect(tokIdent, "method name")
		if err != nil {
			return nil, err
		}
		if !strings.EqualFold(name.text, "contains") {
			return nil, fmt.Errorf("unknown method %s", name)
		}
		if _, err := p.expect(tokLParen, `"("`); err != nil {
			return nil, err
		}
		arg, err := p.parseOperand()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen, `")"`); err != nil {
			return nil, err
		}
		return containsExpr{left: left, arg: arg}, nil
	}
	return truthyExpr{left}, nil
}

func (p *parser) parseOperand() (operand, error) {
	t := p.next()
	switch t.kind {
	case tokString:
		return literal{t.text}, nil
	case tokNumber:
		f, err := strconv.ParseFloat(t.text, 64)
		if err != nil {
			return nil, fmt.Errorf("bad number %s", t)
		}
		return literal{f}, nil
	case tokDate:
		switch strings.ToLower(t.text) {
		case "today", "now":
			return dateLit{strings.ToLower(t.text)}, nil
		}
		if _, ok := toTime(t.text); !ok {
			return nil, fmt.Errorf("bad date %s", t)
		}
		return dateLit{t.text}, nil
	case tokIdent:
		switch strings.ToLower(t.text) {
		case "true":
			return literal{true}, nil
		case "false":
			return literal{false}, nil
		case "null":
			return literal{nil}, nil
		case "and", "or":
			return nil, fmt.Errorf("unexpected %s", t)
		}
		return fieldRef{t.text}, nil
	}
	return nil, fmt.Errorf("unexpected %s", t)
}
