package syntax

import "github.com/sqlcore/frontend/token"

// parseCreateStmt dispatches on the keyword following CREATE: TABLE,
// VIEW, or INDEX (SPEC_FULL.md §5's supplemented CREATE VIEW/INDEX
// productions).
func (p *Parser) parseCreateStmt() *Node {
	createKw := p.eatKeyword("CREATE")
	switch {
	case p.curIsKeyword("TABLE"):
		return p.parseCreateTableStmt(createKw)
	case p.curIsKeyword("VIEW") || p.curIsKeyword("OR"):
		return p.parseCreateViewStmt(createKw)
	case p.curIsKeyword("INDEX") || p.curIsKeyword("UNIQUE"):
		return p.parseCreateIndexStmt(createKw)
	default:
		d := p.errorf("Expected TABLE, VIEW or INDEX but found %s", p.cur().Value)
		p.recover()
		return errorNode(d, createKw)
	}
}

// parseCreateTableStmt implements:
//
//	CreateTableStmt = 'CREATE' 'TABLE' ['IF' 'NOT' 'EXISTS'] Identifier
//	                  '(' ColumnDef {',' ColumnDef} {',' TableConstraint} ')'
func (p *Parser) parseCreateTableStmt(createKw *Node) *Node {
	tableKw := p.eatKeyword("TABLE")
	children := []*Node{createKw, tableKw}
	children = append(children, p.tryParseIfNotExists()...)
	name := p.eatIdent()
	open := p.eatDelim("(")
	children = append(children, name, open)
	children = append(children, p.parseColumnOrConstraint())
	for {
		comma, ok := p.tryEatDelim(",")
		if !ok {
			break
		}
		children = append(children, comma, p.parseColumnOrConstraint())
	}
	closeTok := p.eatDelim(")")
	children = append(children, closeTok)
	stmt := newNode("CreateTableStmt", children...)
	stmt.Pos = createKw.Pos
	return stmt
}

func (p *Parser) tryParseIfNotExists() []*Node {
	ifKw, ok := p.tryEatKeyword("IF")
	if !ok {
		return nil
	}
	notKw := p.eatKeyword("NOT")
	existsKw := p.eatKeyword("EXISTS")
	return []*Node{ifKw, notKw, existsKw}
}

// parseColumnOrConstraint disambiguates a ColumnDef from a
// TableConstraint by checking for a leading constraint keyword.
func (p *Parser) parseColumnOrConstraint() *Node {
	if p.curIsAnyKeyword("PRIMARY", "FOREIGN", "UNIQUE", "CHECK", "CONSTRAINT") {
		return p.parseTableConstraint()
	}
	return p.parseColumnDef()
}

// parseColumnDef implements:
//
//	ColumnDef = Identifier DataType {ColumnConstraint}
func (p *Parser) parseColumnDef() *Node {
	name := p.eatIdent()
	dtype := p.parseDataType()
	children := []*Node{name, dtype}
	for p.curIsColumnConstraintStart() {
		children = append(children, p.parseColumnConstraint())
	}
	n := newNode("ColumnDef", children...)
	n.Pos = name.Pos
	return n
}

func (p *Parser) curIsColumnConstraintStart() bool {
	return p.curIsAnyKeyword("PRIMARY", "NOT", "NULL", "UNIQUE", "DEFAULT", "REFERENCES", "CHECK")
}

// parseDataType implements `DataType = INTEGER|INT|FLOAT|VARCHAR['(' Integer ')']|TEXT|BOOLEAN|DATE|DECIMAL['(' Integer ',' Integer ')']|NUMERIC[...]`.
func (p *Parser) parseDataType() *Node {
	t := p.cur()
	isType := false
	if t.Kind == token.KEYWORD {
		switch t.Value {
		case "INTEGER", "INT", "FLOAT", "VARCHAR", "TEXT", "BOOLEAN", "DATE", "DECIMAL", "NUMERIC":
			isType = true
		}
	}
	if !isType {
		return p.expectFail("data type", token.KEYWORD)
	}
	name := terminal(p.advance())
	children := []*Node{name}
	if open, ok := p.tryEatDelim("("); ok {
		children = append(children, open)
		first := p.eatInteger()
		children = append(children, first)
		if comma, ok := p.tryEatDelim(","); ok {
			second := p.eatInteger()
			children = append(children, comma, second)
		}
		closeTok := p.eatDelim(")")
		children = append(children, closeTok)
	}
	n := newNode("DataType", children...)
	n.Pos = name.Pos
	return n
}

// parseColumnConstraint implements one of:
//
//	'PRIMARY' 'KEY' | ['NOT'] 'NULL' | 'UNIQUE' | 'DEFAULT' Expression
//	| 'REFERENCES' Identifier '(' Identifier ')' | 'CHECK' '(' Condition ')'
func (p *Parser) parseColumnConstraint() *Node {
	switch {
	case p.curIsKeyword("PRIMARY"):
		primKw := p.eatKeyword("PRIMARY")
		keyKw := p.eatKeyword("KEY")
		n := newNode("PrimaryKeyConstraint", primKw, keyKw)
		n.Pos = primKw.Pos
		return n
	case p.curIsKeyword("NOT"):
		notKw := p.eatKeyword("NOT")
		nullKw := p.eatKeyword("NULL")
		n := newNode("NotNullConstraint", notKw, nullKw)
		n.Pos = notKw.Pos
		return n
	case p.curIsKeyword("NULL"):
		nullKw := p.eatKeyword("NULL")
		n := newNode("NullConstraint", nullKw)
		n.Pos = nullKw.Pos
		return n
	case p.curIsKeyword("UNIQUE"):
		uniqKw := p.eatKeyword("UNIQUE")
		n := newNode("UniqueConstraint", uniqKw)
		n.Pos = uniqKw.Pos
		return n
	case p.curIsKeyword("DEFAULT"):
		defKw := p.eatKeyword("DEFAULT")
		val := p.parseExpression()
		n := newNode("DefaultConstraint", defKw, val)
		n.Pos = defKw.Pos
		return n
	case p.curIsKeyword("REFERENCES"):
		refKw := p.eatKeyword("REFERENCES")
		table := p.eatIdent()
		open := p.eatDelim("(")
		col := p.eatIdent()
		closeTok := p.eatDelim(")")
		n := newNode("ReferencesConstraint", refKw, table, open, col, closeTok)
		n.Pos = refKw.Pos
		return n
	case p.curIsKeyword("CHECK"):
		checkKw := p.eatKeyword("CHECK")
		open := p.eatDelim("(")
		cond := p.parseCondition()
		closeTok := p.eatDelim(")")
		n := newNode("CheckConstraint", checkKw, open, cond, closeTok)
		n.Pos = checkKw.Pos
		return n
	default:
		return p.expectFail("column constraint", token.KEYWORD)
	}
}

// parseTableConstraint implements a table-level constraint: a named
// CONSTRAINT wrapper, PRIMARY KEY(cols), FOREIGN KEY(cols) REFERENCES
// table(cols), UNIQUE(cols), or CHECK(Condition).
func (p *Parser) parseTableConstraint() *Node {
	var nameChildren []*Node
	if constraintKw, ok := p.tryEatKeyword("CONSTRAINT"); ok {
		name := p.eatIdent()
		nameChildren = []*Node{constraintKw, name}
	}
	var body *Node
	switch {
	case p.curIsKeyword("PRIMARY"):
		primKw := p.eatKeyword("PRIMARY")
		keyKw := p.eatKeyword("KEY")
		open := p.eatDelim("(")
		cols := p.parseColumnList()
		closeTok := p.eatDelim(")")
		body = newNode("TablePrimaryKey", append(append([]*Node{primKw, keyKw, open}, cols...), closeTok)...)
	case p.curIsKeyword("FOREIGN"):
		fkKw := p.eatKeyword("FOREIGN")
		keyKw := p.eatKeyword("KEY")
		open := p.eatDelim("(")
		cols := p.parseColumnList()
		closeTok := p.eatDelim(")")
		refKw := p.eatKeyword("REFERENCES")
		refTable := p.eatIdent()
		refOpen := p.eatDelim("(")
		refCols := p.parseColumnList()
		refClose := p.eatDelim(")")
		children := append([]*Node{fkKw, keyKw, open}, cols...)
		children = append(children, closeTok, refKw, refTable, refOpen)
		children = append(children, refCols...)
		children = append(children, refClose)
		body = newNode("TableForeignKey", children...)
	case p.curIsKeyword("UNIQUE"):
		uniqKw := p.eatKeyword("UNIQUE")
		open := p.eatDelim("(")
		cols := p.parseColumnList()
		closeTok := p.eatDelim(")")
		body = newNode("TableUnique", append(append([]*Node{uniqKw, open}, cols...), closeTok)...)
	case p.curIsKeyword("CHECK"):
		checkKw := p.eatKeyword("CHECK")
		open := p.eatDelim("(")
		cond := p.parseCondition()
		closeTok := p.eatDelim(")")
		body = newNode("TableCheck", checkKw, open, cond, closeTok)
	default:
		body = p.expectFail("table constraint", token.KEYWORD)
	}
	children := append(nameChildren, body)
	n := newNode("TableConstraint", children...)
	if len(children) > 0 {
		n.Pos = children[0].Pos
	}
	return n
}

// parseCreateViewStmt implements the supplemented:
//
//	CreateViewStmt = 'CREATE' ['OR' 'REPLACE'] 'VIEW' Identifier ['(' ColumnList ')'] 'AS' SelectStmt
func (p *Parser) parseCreateViewStmt(createKw *Node) *Node {
	children := []*Node{createKw}
	if orKw, ok := p.tryEatKeyword("OR"); ok {
		replaceKw := p.eatKeyword("REPLACE")
		children = append(children, orKw, replaceKw)
	}
	viewKw := p.eatKeyword("VIEW")
	name := p.eatIdent()
	children = append(children, viewKw, name)
	if open, ok := p.tryEatDelim("("); ok {
		cols := p.parseColumnList()
		closeTok := p.eatDelim(")")
		children = append(children, newNode("ColumnList", append(append([]*Node{open}, cols...), closeTok)...))
	}
	asKw := p.eatKeyword("AS")
	sel := p.parseSelectStmt()
	children = append(children, asKw, sel)
	stmt := newNode("CreateViewStmt", children...)
	stmt.Pos = createKw.Pos
	return stmt
}

// parseCreateIndexStmt implements the supplemented:
//
//	CreateIndexStmt = 'CREATE' ['UNIQUE'] 'INDEX' Identifier 'ON' Identifier '(' ColumnList ')'
func (p *Parser) parseCreateIndexStmt(createKw *Node) *Node {
	children := []*Node{createKw}
	if uniqKw, ok := p.tryEatKeyword("UNIQUE"); ok {
		children = append(children, uniqKw)
	}
	indexKw := p.eatKeyword("INDEX")
	name := p.eatIdent()
	onKw := p.eatKeyword("ON")
	table := p.eatIdent()
	open := p.eatDelim("(")
	cols := p.parseColumnList()
	closeTok := p.eatDelim(")")
	children = append(children, indexKw, name, onKw, table, open)
	children = append(children, cols...)
	children = append(children, closeTok)
	stmt := newNode("CreateIndexStmt", children...)
	stmt.Pos = createKw.Pos
	return stmt
}

// parseAlterTableStmt implements the supplemented:
//
//	AlterTableStmt = 'ALTER' 'TABLE' Identifier
//	                 ( 'ADD' ['COLUMN'] ColumnDef
//	                 | 'DROP' ['COLUMN'] Identifier
//	                 | 'ADD' 'CONSTRAINT' ... )
func (p *Parser) parseAlterTableStmt() *Node {
	alterKw := p.eatKeyword("ALTER")
	tableKw := p.eatKeyword("TABLE")
	name := p.eatIdent()
	children := []*Node{alterKw, tableKw, name}

	switch {
	case p.curIsKeyword("ADD"):
		addKw := p.eatKeyword("ADD")
		if p.curIsKeyword("CONSTRAINT") || p.curIsAnyKeyword("PRIMARY", "FOREIGN", "UNIQUE", "CHECK") {
			constraint := p.parseTableConstraint()
			children = append(children, newNode("AddConstraint", addKw, constraint))
		} else {
			if colKw, ok := p.tryEatKeyword("COLUMN"); ok {
				def := p.parseColumnDef()
				children = append(children, newNode("AddColumn", addKw, colKw, def))
			} else {
				def := p.parseColumnDef()
				children = append(children, newNode("AddColumn", addKw, def))
			}
		}
	case p.curIsKeyword("DROP"):
		dropKw := p.eatKeyword("DROP")
		if colKw, ok := p.tryEatKeyword("COLUMN"); ok {
			col := p.eatIdent()
			children = append(children, newNode("DropColumn", dropKw, colKw, col))
		} else {
			col := p.eatIdent()
			children = append(children, newNode("DropColumn", dropKw, col))
		}
	default:
		d := p.errorf("Expected ADD or DROP but found %s", p.cur().Value)
		p.recover()
		children = append(children, errorNode(d))
	}

	stmt := newNode("AlterTableStmt", children...)
	stmt.Pos = alterKw.Pos
	return stmt
}

// parseDropStmt implements the supplemented:
//
//	DropStmt = 'DROP' ('TABLE' | 'VIEW' | 'INDEX') ['IF' 'EXISTS'] Identifier
//	           ['ON' Identifier]          -- INDEX only
//	           ['CASCADE' | 'RESTRICT']
func (p *Parser) parseDropStmt() *Node {
	dropKw := p.eatKeyword("DROP")
	var kindKw *Node
	switch {
	case p.curIsKeyword("TABLE"):
		kindKw = p.eatKeyword("TABLE")
	case p.curIsKeyword("VIEW"):
		kindKw = p.eatKeyword("VIEW")
	case p.curIsKeyword("INDEX"):
		kindKw = p.eatKeyword("INDEX")
	default:
		kindKw = p.expectFail("TABLE, VIEW or INDEX", token.KEYWORD)
	}
	children := []*Node{dropKw, kindKw}
	if ifKw, ok := p.tryEatKeyword("IF"); ok {
		existsKw := p.eatKeyword("EXISTS")
		children = append(children, ifKw, existsKw)
	}
	name := p.eatIdent()
	children = append(children, name)
	if kindKw.Tok != nil && kindKw.Tok.Value == "INDEX" {
		if onKw, ok := p.tryEatKeyword("ON"); ok {
			table := p.eatIdent()
			children = append(children, onKw, table)
		}
	}
	if cascadeKw, ok := p.tryEatKeyword("CASCADE"); ok {
		children = append(children, cascadeKw)
	} else if restrictKw, ok := p.tryEatKeyword("RESTRICT"); ok {
		children = append(children, restrictKw)
	}
	stmt := newNode("DropStmt", children...)
	stmt.Pos = dropKw.Pos
	return stmt
}
