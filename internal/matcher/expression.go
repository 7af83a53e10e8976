package matcher

import (
	"context"
	"fmt"
	"strings"

	"github.com/xxxsen/sshgen/internal/hosts"
)

// BuildExpressionMatcher compiles a logical expression composed of registered matchers.
// Supported operators: &&, ||, ! plus their textual counterparts (and, or, not).
// Precedence from high to low is not, and, or.
func BuildExpressionMatcher(expr string, registry map[string]IHostMatcher) (IHostMatcher, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, fmt.Errorf("empty matcher expression")
	}
	p := &exprParser{tokens: tokenizeExpression(expr), registry: registry}
	root, err := p.parseOr()
	if err != nil {
		return nil, fmt.Errorf("parse expression %q: %w", expr, err)
	}
	if !p.done() {
		return nil, fmt.Errorf("parse expression %q: unexpected token %q", expr, p.peek().value)
	}
	return &expressionMatcher{raw: expr, root: root}, nil
}

type tokenType int

const (
	tokenIdentifier tokenType = iota
	tokenAnd
	tokenOr
	tokenNot
	tokenLParen
	tokenRParen
)

type token struct {
	typ   tokenType
	value string
}

func tokenizeExpression(expr string) []token {
	normalised := strings.NewReplacer(
		"&&", " && ",
		"||", " || ",
		"(", " ( ",
		")", " ) ",
		"!", " ! ",
	).Replace(expr)
	fields := strings.Fields(normalised)
	tokens := make([]token, 0, len(fields))
	for _, part := range fields {
		tk := token{typ: tokenIdentifier, value: part}
		switch strings.ToLower(part) {
		case "&&", "and":
			tk.typ = tokenAnd
		case "||", "or":
			tk.typ = tokenOr
		case "!", "not":
			tk.typ = tokenNot
		case "(":
			tk.typ = tokenLParen
		case ")":
			tk.typ = tokenRParen
		}
		tokens = append(tokens, tk)
	}
	return tokens
}

type exprParser struct {
	tokens   []token
	pos      int
	registry map[string]IHostMatcher
}

func (p *exprParser) done() bool {
	return p.pos >= len(p.tokens)
}

func (p *exprParser) peek() token {
	return p.tokens[p.pos]
}

func (p *exprParser) accept(typ tokenType) bool {
	if p.done() || p.peek().typ != typ {
		return false
	}
	p.pos++
	return true
}

func (p *exprParser) parseOr() (exprNode, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.accept(tokenOr) {
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = orNode{left: left, right: right}
	}
	return left, nil
}

func (p *exprParser) parseAnd() (exprNode, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.accept(tokenAnd) {
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = andNode{left: left, right: right}
	}
	return left, nil
}

func (p *exprParser) parseUnary() (exprNode, error) {
	if p.accept(tokenNot) {
		child, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return notNode{child: child}, nil
	}
	if p.accept(tokenLParen) {
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if !p.accept(tokenRParen) {
			return nil, fmt.Errorf("mismatched parentheses")
		}
		return inner, nil
	}
	if p.done() {
		return nil, fmt.Errorf("missing operand")
	}
	tk := p.peek()
	if tk.typ != tokenIdentifier {
		return nil, fmt.Errorf("missing operand before %q", tk.value)
	}
	p.pos++
	mt, ok := p.registry[tk.value]
	if !ok {
		return nil, fmt.Errorf("matcher %s not found", tk.value)
	}
	return matcherNode{matcher: mt}, nil
}

type exprNode interface {
	eval(ctx context.Context, entry *hosts.HostEntry) (bool, error)
}

type expressionMatcher struct {
	raw  string
	root exprNode
}

func (e *expressionMatcher) Name() string {
	return e.raw
}

func (e *expressionMatcher) Type() string {
	return "expression"
}

func (e *expressionMatcher) Match(ctx context.Context, entry *hosts.HostEntry) (bool, error) {
	return e.root.eval(ctx, entry)
}

type matcherNode struct {
	matcher IHostMatcher
}

func (m matcherNode) eval(ctx context.Context, entry *hosts.HostEntry) (bool, error) {
	return m.matcher.Match(ctx, entry)
}

type notNode struct {
	child exprNode
}

func (n notNode) eval(ctx context.Context, entry *hosts.HostEntry) (bool, error) {
	ok, err := n.child.eval(ctx, entry)
	if err != nil {
		return false, err
	}
	return !ok, nil
}

type andNode struct {
	left  exprNode
	right exprNode
}

func (a andNode) eval(ctx context.Context, entry *hosts.HostEntry) (bool, error) {
	ok, err := a.left.eval(ctx, entry)
	if err != nil || !ok {
		return false, err
	}
	return a.right.eval(ctx, entry)
}

type orNode struct {
	left  exprNode
	right exprNode
}

func (o orNode) eval(ctx context.Context, entry *hosts.HostEntry) (bool, error) {
	ok, err := o.left.eval(ctx, entry)
	if err != nil {
		return false, err
	}
	if ok {
		return true, nil
	}
	return o.right.eval(ctx, entry)
}
