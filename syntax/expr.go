package syntax

import (
	"github.com/shopspring/decimal"

	"github.com/sqlcore/frontend/token"
)

// parseCondition implements:
//
//	Condition = AndCondition { 'OR' AndCondition }
func (p *Parser) parseCondition() *Node {
	left := p.parseAndCondition()
	for p.curIsKeyword("OR") {
		op := terminal(p.advance())
		right := p.parseAndCondition()
		left = newNode("Condition", left, op, right)
	}
	return left
}

// parseAndCondition implements:
//
//	AndCondition = NotCondition { 'AND' NotCondition }
func (p *Parser) parseAndCondition() *Node {
	left := p.parseNotCondition()
	for p.curIsKeyword("AND") {
		op := terminal(p.advance())
		right := p.parseNotCondition()
		left = newNode("AndCondition", left, op, right)
	}
	return left
}

// parseNotCondition implements:
//
//	NotCondition = ['NOT'] PrimaryCondition
func (p *Parser) parseNotCondition() *Node {
	if not, ok := p.tryEatKeyword("NOT"); ok {
		inner := p.parsePrimaryCondition()
		return newNode("NotCondition", not, inner)
	}
	return p.parsePrimaryCondition()
}

// parsePrimaryCondition implements:
//
//	PrimaryCondition = Comparison | Between | In | Like | IsNull
//	                 | '(' Condition ')'
//	                 | Expression
//
// A leading '(' is ambiguous between boolean grouping and a
// parenthesized arithmetic sub-expression that is itself the left
// operand of a Comparison/Between/In/Like (e.g. "(a+b) > 5"). The
// parser resolves this with bounded backtracking: it first tries
// '(' Condition ')'; if what follows the closing paren looks like a
// condition operator (meaning the parens were really just grouping an
// expression), it rewinds and reparses as Expression instead.
func (p *Parser) parsePrimaryCondition() *Node {
	if p.curIs(token.DELIMITER, "(") {
		savedPos := p.pos
		savedDiags := len(p.diags)
		open := p.eatDelim("(")
		inner := p.parseCondition()
		if p.curIs(token.DELIMITER, ")") {
			closeTok := p.eatDelim(")")
			if !p.looksLikeConditionSuffix() {
				return newNode("GroupCondition", open, inner, closeTok)
			}
		}
		p.pos = savedPos
		p.diags = p.diags[:savedDiags]
	}
	expr := p.parseExpression()
	return p.parseConditionSuffix(expr)
}

func (p *Parser) looksLikeConditionSuffix() bool {
	if p.cur().Kind == token.COMPARISON {
		return true
	}
	return p.curIsAnyKeyword("BETWEEN", "IN", "LIKE", "IS") ||
		(p.curIsKeyword("NOT") && p.peekIsAnyKeyword(1, "BETWEEN", "IN", "LIKE"))
}

func (p *Parser) peekIsAnyKeyword(n int, kws ...string) bool {
	t := p.peek(n)
	if t.Kind != token.KEYWORD {
		return false
	}
	for _, kw := range kws {
		if t.Value == kw {
			return true
		}
	}
	return false
}

// parseConditionSuffix attaches a Comparison/Between/In/Like/IsNull
// operator to an already-parsed Expression, or demotes it to a bare
// expression condition (spec.md §4.2's documented tie-break).
func (p *Parser) parseConditionSuffix(expr *Node) *Node {
	negated := false
	var notNode *Node
	if p.curIsKeyword("NOT") && p.peekIsAnyKeyword(1, "BETWEEN", "IN", "LIKE") {
		notNode = terminal(p.advance())
		negated = true
	}
	switch {
	case p.curIsKeyword("BETWEEN"):
		return p.parseBetween(expr, negated, notNode)
	case p.curIsKeyword("IN"):
		return p.parseIn(expr, negated, notNode)
	case p.curIsKeyword("LIKE"):
		return p.parseLike(expr, negated, notNode)
	case p.curIsKeyword("IS"):
		return p.parseIsNull(expr)
	case p.cur().Kind == token.COMPARISON:
		return p.parseComparison(expr)
	default:
		return newNode("ExprCondition", expr)
	}
}

func (p *Parser) parseComparison(left *Node) *Node {
	op := terminal(p.advance())
	right := p.parseExpression()
	n := newNode("Comparison", left, op, right)
	n.Pos = left.Pos
	return n
}

func (p *Parser) parseBetween(expr *Node, negated bool, notNode *Node) *Node {
	kw := p.eatKeyword("BETWEEN")
	lo := p.parseAddExpr()
	and := p.eatKeyword("AND")
	hi := p.parseAddExpr()
	children := []*Node{expr}
	if notNode != nil {
		children = append(children, notNode)
	}
	children = append(children, kw, lo, and, hi)
	n := newNode("Between", children...)
	n.Pos = expr.Pos
	if negated {
		n.Rule = "NotBetween"
	}
	return n
}

func (p *Parser) parseIn(expr *Node, negated bool, notNode *Node) *Node {
	kw := p.eatKeyword("IN")
	open := p.eatDelim("(")
	list := p.parseExprList()
	closeTok := p.eatDelim(")")
	children := []*Node{expr}
	if notNode != nil {
		children = append(children, notNode)
	}
	children = append(children, kw, open)
	children = append(children, list...)
	children = append(children, closeTok)
	n := newNode("In", children...)
	n.Pos = expr.Pos
	if negated {
		n.Rule = "NotIn"
	}
	return n
}

func (p *Parser) parseLike(expr *Node, negated bool, notNode *Node) *Node {
	kw := p.eatKeyword("LIKE")
	pattern := p.parseAddExpr()
	children := []*Node{expr}
	if notNode != nil {
		children = append(children, notNode)
	}
	children = append(children, kw, pattern)
	if escKw, ok := p.tryEatKeyword("ESCAPE"); ok {
		escVal := p.parseAddExpr()
		children = append(children, escKw, escVal)
	}
	n := newNode("Like", children...)
	n.Pos = expr.Pos
	if negated {
		n.Rule = "NotLike"
	}
	return n
}

func (p *Parser) parseIsNull(expr *Node) *Node {
	isKw := p.eatKeyword("IS")
	children := []*Node{expr, isKw}
	notPresent := false
	if notKw, ok := p.tryEatKeyword("NOT"); ok {
		children = append(children, notKw)
		notPresent = true
	}
	nullKw := p.eatKeyword("NULL")
	children = append(children, nullKw)
	n := newNode("IsNull", children...)
	n.Pos = expr.Pos
	if notPresent {
		n.Rule = "IsNotNull"
	}
	return n
}

// ---- arithmetic expressions ----

// parseExpression implements `Expression = AddExpr`.
func (p *Parser) parseExpression() *Node { return p.parseAddExpr() }

// parseAddExpr implements `AddExpr = MulExpr { ('+'|'-'|'||') MulExpr }`.
// '||' is string concatenation at the same precedence tier as '+'/'-'
// (spec.md §4.1's open-question resolution, see DESIGN.md).
func (p *Parser) parseAddExpr() *Node {
	left := p.parseMulExpr()
	for p.cur().Kind == token.OPERATOR && (p.cur().Value == "+" || p.cur().Value == "-" || p.cur().Value == "||") {
		op := terminal(p.advance())
		right := p.parseMulExpr()
		n := newNode("AddExpr", left, op, right)
		n.Pos = left.Pos
		left = n
	}
	return left
}

// parseMulExpr implements `MulExpr = Primary { ('*'|'/'|'%') Primary }`.
func (p *Parser) parseMulExpr() *Node {
	left := p.parseUnary()
	for p.cur().Kind == token.OPERATOR && (p.cur().Value == "*" || p.cur().Value == "/" || p.cur().Value == "%") {
		op := terminal(p.advance())
		right := p.parseUnary()
		n := newNode("MulExpr", left, op, right)
		n.Pos = left.Pos
		left = n
	}
	return left
}

// parseUnary implements unary minus, the highest-precedence prefix
// operator named in spec.md §4.2's precedence table.
func (p *Parser) parseUnary() *Node {
	if p.cur().Kind == token.OPERATOR && p.cur().Value == "-" {
		op := terminal(p.advance())
		operand := p.parseUnary()
		n := newNode("UnaryMinus", op, operand)
		n.Pos = op.Pos
		return n
	}
	return p.parsePrimary()
}

// parsePrimary implements:
//
//	Primary = Literal | ColumnRef | FunctionCall | '(' Expression ')'
func (p *Parser) parsePrimary() *Node {
	t := p.cur()
	switch {
	case t.Kind == token.INTEGER || t.Kind == token.FLOAT || t.Kind == token.STRING:
		return p.parseLiteral()
	case t.Kind == token.KEYWORD && (t.Value == "TRUE" || t.Value == "FALSE"):
		lit := terminal(p.advance())
		n := newNode("Literal", lit)
		n.Pos = lit.Pos
		return n
	case t.Kind == token.KEYWORD && t.Value == "NULL":
		lit := terminal(p.advance())
		n := newNode("Literal", lit)
		n.Pos = lit.Pos
		return n
	case t.Kind == token.KEYWORD && p.peek(1).Kind == token.DELIMITER && p.peek(1).Value == "(":
		// Aggregate and scalar function names are reserved words.
		switch t.Value {
		case "COUNT", "SUM", "AVG", "MIN", "MAX", "UPPER", "LOWER", "COALESCE", "CAST":
			return p.parseFunctionCallFrom(terminal(p.advance()))
		}
		return p.expectFail("expression", token.IDENTIFIER)
	case t.Kind == token.IDENTIFIER:
		return p.parseIdentLed()
	case t.Kind == token.DELIMITER && t.Value == "(":
		open := p.eatDelim("(")
		inner := p.parseExpression()
		closeTok := p.eatDelim(")")
		n := newNode("Paren", open, inner, closeTok)
		n.Pos = open.Pos
		return n
	default:
		n := p.expectFail("expression", token.IDENTIFIER)
		return n
	}
}

// parseLiteral wraps a numeric or string literal token, parsing its
// exact decimal magnitude for numeric kinds.
func (p *Parser) parseLiteral() *Node {
	t := p.advance()
	lit := terminal(t)
	n := newNode("Literal", lit)
	n.Pos = t.Pos
	if t.Kind == token.INTEGER || t.Kind == token.FLOAT {
		if d, err := decimal.NewFromString(t.Value); err == nil {
			n.Decimal = &d
		}
	}
	return n
}

// parseIdentLed disambiguates ColumnRef (Identifier ['.' Identifier])
// from FunctionCall (Identifier '(' ... ')').
func (p *Parser) parseIdentLed() *Node {
	first := p.eatIdent()
	if p.curIs(token.DELIMITER, "(") {
		return p.parseFunctionCallFrom(first)
	}
	if p.curIs(token.DOT, ".") {
		dot := p.eatDelim(".")
		second := p.eatIdent()
		n := newNode("ColumnRef", first, dot, second)
		n.Pos = first.Pos
		return n
	}
	n := newNode("ColumnRef", first)
	n.Pos = first.Pos
	return n
}

// parseFunctionCallFrom implements:
//
//	FunctionCall = Identifier '(' ['DISTINCT'] ( '*' | ArgList | ε ) ')'
func (p *Parser) parseFunctionCallFrom(name *Node) *Node {
	open := p.eatDelim("(")
	children := []*Node{name, open}
	if d, ok := p.tryEatKeyword("DISTINCT"); ok {
		children = append(children, d)
	}
	if star, ok := p.tryEatOperator("*"); ok {
		children = append(children, star)
	} else if !p.curIs(token.DELIMITER, ")") {
		children = append(children, p.parseExprList()...)
	}
	closeTok := p.eatDelim(")")
	children = append(children, closeTok)
	n := newNode("FunctionCall", children...)
	n.Pos = name.Pos
	return n
}

// parseExprList parses a comma-separated Expression list, used by
// FunctionCall args and the IN (...) operand list.
func (p *Parser) parseExprList() []*Node {
	var out []*Node
	out = append(out, p.parseExpression())
	for {
		comma, ok := p.tryEatDelim(",")
		if !ok {
			break
		}
		out = append(out, comma)
		out = append(out, p.parseExpression())
	}
	return out
}
