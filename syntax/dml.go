package syntax

import "github.com/sqlcore/frontend/token"

// parseSelectStmt implements:
//
//	SelectStmt = 'SELECT' ['DISTINCT'] SelectList
//	             ['FROM' TableRef { Join }]
//	             ['WHERE' Condition]
//	             ['GROUP' 'BY' ColumnList]
//	             ['HAVING' Condition]
//	             ['ORDER' 'BY' SortList]
//	             ['LIMIT' Integer]
//
// FROM may be omitted (e.g. "SELECT 1"); when it is absent and the next
// token is WHERE, GROUP, HAVING, ORDER or LIMIT, a "Missing FROM clause"
// diagnostic is recorded and the remaining clauses are still parsed.
func (p *Parser) parseSelectStmt() *Node {
	kw := p.eatKeyword("SELECT")
	children := []*Node{kw}
	if d, ok := p.tryEatKeyword("DISTINCT"); ok {
		children = append(children, d)
	}
	selectList := p.parseSelectList()
	children = append(children, newNode("SelectList", selectList...))

	if p.curIsKeyword("FROM") {
		fromKw := p.eatKeyword("FROM")
		table := p.parseTableRef()
		fromChildren := []*Node{fromKw, table}
		for p.curIsJoinStart() {
			fromChildren = append(fromChildren, p.parseJoin())
		}
		children = append(children, newNode("FromClause", fromChildren...))
	} else if p.curIsAnyKeyword("WHERE", "GROUP", "HAVING", "ORDER", "LIMIT") {
		// Missing FROM clause recovery policy (spec.md §4.2): emit a
		// diagnostic, place an ERROR in the FROM slot, and keep
		// parsing the remaining optional clauses.
		d := p.errorf("Missing FROM clause before %s", p.cur().Value)
		children = append(children, errorNode(d))
	}

	if whereKw, ok := p.tryEatKeyword("WHERE"); ok {
		cond := p.parseCondition()
		children = append(children, newNode("WhereClause", whereKw, cond))
	}
	if groupKw, ok := p.tryEatKeyword("GROUP"); ok {
		byKw := p.eatKeyword("BY")
		cols := p.parseColumnList()
		children = append(children, newNode("GroupByClause", append([]*Node{groupKw, byKw}, cols...)...))
	}
	if havingKw, ok := p.tryEatKeyword("HAVING"); ok {
		cond := p.parseCondition()
		children = append(children, newNode("HavingClause", havingKw, cond))
	}
	if orderKw, ok := p.tryEatKeyword("ORDER"); ok {
		byKw := p.eatKeyword("BY")
		items := p.parseSortList()
		children = append(children, newNode("OrderByClause", append([]*Node{orderKw, byKw}, items...)...))
	}
	if limitKw, ok := p.tryEatKeyword("LIMIT"); ok {
		n := p.eatInteger()
		children = append(children, newNode("LimitClause", limitKw, n))
	}

	stmt := newNode("SelectStmt", children...)
	stmt.Pos = kw.Pos
	return stmt
}

func (p *Parser) eatInteger() *Node {
	if p.cur().Kind == token.INTEGER {
		return p.parseLiteral()
	}
	return p.expectFail("integer", token.INTEGER)
}

// parseSelectList parses a comma-separated select list where each
// item is '*', 'table.*', or Expression [AS alias].
func (p *Parser) parseSelectList() []*Node {
	var out []*Node
	out = append(out, p.parseSelectItem())
	for {
		comma, ok := p.tryEatDelim(",")
		if !ok {
			break
		}
		out = append(out, comma, p.parseSelectItem())
	}
	return out
}

func (p *Parser) parseSelectItem() *Node {
	if star, ok := p.tryEatOperator("*"); ok {
		n := newNode("StarItem", star)
		n.Pos = star.Pos
		return n
	}
	// table.* — identifier followed by '.' '*'
	if p.cur().Kind == token.IDENTIFIER && p.peek(1).Kind == token.DOT && p.peek(2).Kind == token.OPERATOR && p.peek(2).Value == "*" {
		ident := p.eatIdent()
		dot := p.eatDelim(".")
		star, _ := p.tryEatOperator("*")
		n := newNode("StarItem", ident, dot, star)
		n.Pos = ident.Pos
		return n
	}
	expr := p.parseExpression()
	children := []*Node{expr}
	if asKw, ok := p.tryEatKeyword("AS"); ok {
		alias := p.eatIdent()
		children = append(children, asKw, alias)
	} else if p.cur().Kind == token.IDENTIFIER {
		alias := p.eatIdent()
		children = append(children, alias)
	}
	n := newNode("SelectItem", children...)
	n.Pos = expr.Pos
	return n
}

// parseColumnList parses a comma-separated list of ColumnRefs (used
// by GROUP BY and by column-name lists in DDL).
func (p *Parser) parseColumnList() []*Node {
	var out []*Node
	out = append(out, p.parseColumnRefItem())
	for {
		comma, ok := p.tryEatDelim(",")
		if !ok {
			break
		}
		out = append(out, comma, p.parseColumnRefItem())
	}
	return out
}

func (p *Parser) parseColumnRefItem() *Node {
	first := p.eatIdent()
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

// parseSortList parses ORDER BY's comma-separated `Expression [ASC|DESC]` items.
func (p *Parser) parseSortList() []*Node {
	var out []*Node
	out = append(out, p.parseSortItem())
	for {
		comma, ok := p.tryEatDelim(",")
		if !ok {
			break
		}
		out = append(out, comma, p.parseSortItem())
	}
	return out
}

func (p *Parser) parseSortItem() *Node {
	expr := p.parseExpression()
	children := []*Node{expr}
	if asc, ok := p.tryEatKeyword("ASC"); ok {
		children = append(children, asc)
	} else if desc, ok := p.tryEatKeyword("DESC"); ok {
		children = append(children, desc)
	}
	n := newNode("SortItem", children...)
	n.Pos = expr.Pos
	return n
}

// parseTableRef implements a single `TableRef`: Identifier [['AS'] alias].
func (p *Parser) parseTableRef() *Node {
	name := p.eatIdent()
	children := []*Node{name}
	if asKw, ok := p.tryEatKeyword("AS"); ok {
		alias := p.eatIdent()
		children = append(children, asKw, alias)
	} else if p.cur().Kind == token.IDENTIFIER {
		alias := p.eatIdent()
		children = append(children, alias)
	}
	n := newNode("TableRef", children...)
	n.Pos = name.Pos
	return n
}

func (p *Parser) curIsJoinStart() bool {
	return p.curIsAnyKeyword("JOIN", "INNER", "LEFT", "RIGHT", "FULL", "CROSS")
}

// parseJoin implements:
//
//	Join = [ 'INNER' | 'LEFT' | 'RIGHT' | 'FULL' | 'CROSS' ] 'JOIN'
//	       TableRef ['ON' Condition]
func (p *Parser) parseJoin() *Node {
	var children []*Node
	if kind, ok := p.tryEatKeyword("INNER"); ok {
		children = append(children, kind)
	} else if kind, ok := p.tryEatKeyword("LEFT"); ok {
		children = append(children, kind)
	} else if kind, ok := p.tryEatKeyword("RIGHT"); ok {
		children = append(children, kind)
	} else if kind, ok := p.tryEatKeyword("FULL"); ok {
		children = append(children, kind)
	} else if kind, ok := p.tryEatKeyword("CROSS"); ok {
		children = append(children, kind)
	}
	joinKw := p.eatKeyword("JOIN")
	table := p.parseTableRef()
	children = append(children, joinKw, table)
	if onKw, ok := p.tryEatKeyword("ON"); ok {
		cond := p.parseCondition()
		children = append(children, onKw, cond)
	}
	n := newNode("Join", children...)
	if len(children) > 0 {
		n.Pos = children[0].Pos
	}
	return n
}

// parseInsertStmt implements:
//
//	InsertStmt = 'INSERT' 'INTO' Identifier ['(' ColumnList ')']
//	             'VALUES' '(' ExprList ')' { ',' '(' ExprList ')' }
func (p *Parser) parseInsertStmt() *Node {
	insertKw := p.eatKeyword("INSERT")
	intoKw := p.eatKeyword("INTO")
	table := p.eatIdent()
	children := []*Node{insertKw, intoKw, table}

	if open, ok := p.tryEatDelim("("); ok {
		cols := p.parseColumnList()
		closeTok := p.eatDelim(")")
		children = append(children, newNode("ColumnList", append(append([]*Node{open}, cols...), closeTok)...))
	}

	valuesKw := p.eatKeyword("VALUES")
	children = append(children, valuesKw)
	children = append(children, p.parseValueRow())
	for {
		comma, ok := p.tryEatDelim(",")
		if !ok {
			break
		}
		children = append(children, comma, p.parseValueRow())
	}

	stmt := newNode("InsertStmt", children...)
	stmt.Pos = insertKw.Pos
	return stmt
}

func (p *Parser) parseValueRow() *Node {
	open := p.eatDelim("(")
	exprs := p.parseExprList()
	closeTok := p.eatDelim(")")
	n := newNode("ValueRow", append(append([]*Node{open}, exprs...), closeTok)...)
	n.Pos = open.Pos
	return n
}

// parseUpdateStmt implements:
//
//	UpdateStmt = 'UPDATE' Identifier 'SET' Assignment {',' Assignment} ['WHERE' Condition]
func (p *Parser) parseUpdateStmt() *Node {
	updateKw := p.eatKeyword("UPDATE")
	table := p.eatIdent()
	setKw := p.eatKeyword("SET")
	children := []*Node{updateKw, table, setKw}
	children = append(children, p.parseAssignment())
	for {
		comma, ok := p.tryEatDelim(",")
		if !ok {
			break
		}
		children = append(children, comma, p.parseAssignment())
	}
	if whereKw, ok := p.tryEatKeyword("WHERE"); ok {
		cond := p.parseCondition()
		children = append(children, newNode("WhereClause", whereKw, cond))
	}
	stmt := newNode("UpdateStmt", children...)
	stmt.Pos = updateKw.Pos
	return stmt
}

func (p *Parser) parseAssignment() *Node {
	col := p.eatIdent()
	eq := p.eatComparison("=")
	val := p.parseExpression()
	n := newNode("Assignment", col, eq, val)
	n.Pos = col.Pos
	return n
}

func (p *Parser) eatComparison(val string) *Node {
	if p.curIs(token.COMPARISON, val) {
		return terminal(p.advance())
	}
	return p.expectFail(val, token.COMPARISON)
}

// parseDeleteStmt implements:
//
//	DeleteStmt = 'DELETE' 'FROM' Identifier ['WHERE' Condition]
func (p *Parser) parseDeleteStmt() *Node {
	deleteKw := p.eatKeyword("DELETE")
	fromKw := p.eatKeyword("FROM")
	table := p.eatIdent()
	children := []*Node{deleteKw, fromKw, table}
	if whereKw, ok := p.tryEatKeyword("WHERE"); ok {
		cond := p.parseCondition()
		children = append(children, newNode("WhereClause", whereKw, cond))
	}
	stmt := newNode("DeleteStmt", children...)
	stmt.Pos = deleteKw.Pos
	return stmt
}
