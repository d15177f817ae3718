package syntax_test

import (
	"testing"

	"github.com/sqlcore/frontend/lexer"
	"github.com/sqlcore/frontend/syntax"
)

func mustParse(t *testing.T, sql string) *syntax.Node {
	t.Helper()
	toks, lexDiags := lexer.Scan(sql)
	if len(lexDiags) != 0 {
		t.Fatalf("unexpected lexical diagnostics: %v", lexDiags)
	}
	tree, synDiags := syntax.Parse(toks)
	if len(synDiags) != 0 {
		t.Fatalf("unexpected syntax diagnostics: %v", synDiags)
	}
	return tree
}

func firstStmt(t *testing.T, sql string) *syntax.Node {
	t.Helper()
	tree := mustParse(t, sql)
	if len(tree.Children) == 0 {
		t.Fatalf("expected at least one statement")
	}
	return tree.Children[0]
}

func TestSelectStarFromScenario(t *testing.T) {
	stmt := firstStmt(t, "SELECT * FROM users;")
	if stmt.Rule != "SelectStmt" {
		t.Fatalf("expected SelectStmt, got %s", stmt.Rule)
	}
	if len(stmt.Children) == 0 || stmt.Children[0].Tok == nil || stmt.Children[0].Tok.Value != "SELECT" {
		t.Fatalf("expected first child to be the SELECT terminal")
	}
	foundFrom := false
	for _, c := range stmt.Children {
		if c.Rule == "FromClause" {
			foundFrom = true
		}
	}
	if !foundFrom {
		t.Fatalf("expected a FromClause child")
	}
}

func TestSelectJoinAndOrderBy(t *testing.T) {
	tree := mustParse(t, `
		SELECT u.id, o.total
		FROM users u
		INNER JOIN orders o ON u.id = o.user_id
		WHERE o.total > 100
		ORDER BY o.total DESC
		LIMIT 10;`)
	stmt := tree.Children[0]
	fromClause, ok := findChild(stmt, "FromClause")
	if !ok {
		t.Fatalf("expected FromClause")
	}
	joins := findChildren(fromClause, "Join")
	if len(joins) != 1 {
		t.Fatalf("expected 1 join, got %d", len(joins))
	}
	if _, ok := findChild(stmt, "OrderByClause"); !ok {
		t.Fatalf("expected OrderByClause")
	}
	if _, ok := findChild(stmt, "LimitClause"); !ok {
		t.Fatalf("expected LimitClause")
	}
}

func TestArithmeticPrecedenceAndAssociativity(t *testing.T) {
	// 1 + 2 * 3 - 4 should parse as (1 + (2*3)) - 4: a left-associative
	// AddExpr whose right-hand operands are MulExpr subtrees.
	tree := mustParse(t, "SELECT 1 + 2 * 3 - 4;")
	stmt := tree.Children[0]
	list, ok := findChild(stmt, "SelectList")
	if !ok {
		t.Fatalf("expected SelectList")
	}
	item, ok := findChild(list, "SelectItem")
	if !ok {
		t.Fatalf("expected SelectItem")
	}
	expr := item.Children[0]
	if expr.Rule != "AddExpr" {
		t.Fatalf("expected top-level AddExpr, got %s", expr.Rule)
	}
	// Outer AddExpr's right side is the '4' literal (left-associative).
	right := expr.Children[2]
	if right.Rule != "Literal" {
		t.Fatalf("expected outer AddExpr's right operand to be a Literal, got %s", right.Rule)
	}
	left := expr.Children[0]
	if left.Rule != "AddExpr" {
		t.Fatalf("expected left-associative nesting, got %s", left.Rule)
	}
	innerRight := left.Children[2]
	if innerRight.Rule != "MulExpr" {
		t.Fatalf("expected '2 * 3' to bind tighter as MulExpr, got %s", innerRight.Rule)
	}
}

func TestConcatOperatorParsesAtAdditivePrecedence(t *testing.T) {
	tree := mustParse(t, "SELECT a || b FROM t;")
	stmt := tree.Children[0]
	list, _ := findChild(stmt, "SelectList")
	item, _ := findChild(list, "SelectItem")
	expr := item.Children[0]
	if expr.Rule != "AddExpr" {
		t.Fatalf("expected '||' to parse as AddExpr, got %s", expr.Rule)
	}
	if expr.Children[1].Tok == nil || expr.Children[1].Tok.Value != "||" {
		t.Fatalf("expected '||' operator terminal, got %+v", expr.Children[1])
	}
}

func TestUnaryMinusHighestPrecedence(t *testing.T) {
	tree := mustParse(t, "SELECT -a * b;")
	stmt := tree.Children[0]
	list, _ := findChild(stmt, "SelectList")
	item, _ := findChild(list, "SelectItem")
	expr := item.Children[0]
	if expr.Rule != "MulExpr" {
		t.Fatalf("expected MulExpr at top, got %s", expr.Rule)
	}
	if expr.Children[0].Rule != "UnaryMinus" {
		t.Fatalf("expected unary minus to bind to 'a' alone, got %s", expr.Children[0].Rule)
	}
}

func TestBetweenInLikeIsNull(t *testing.T) {
	mustParse(t, "SELECT * FROM t WHERE a BETWEEN 1 AND 10;")
	mustParse(t, "SELECT * FROM t WHERE a NOT BETWEEN 1 AND 10;")
	mustParse(t, "SELECT * FROM t WHERE a IN (1, 2, 3);")
	mustParse(t, "SELECT * FROM t WHERE a NOT IN (1, 2, 3);")
	mustParse(t, "SELECT * FROM t WHERE a LIKE 'A%';")
	mustParse(t, "SELECT * FROM t WHERE a IS NULL;")
	mustParse(t, "SELECT * FROM t WHERE a IS NOT NULL;")
}

func TestParenthesizedArithmeticLeftOfComparison(t *testing.T) {
	// "(a+b) > 5" must NOT be read as a GroupCondition — the backtracking
	// rule demotes it back to an Expression once '>' follows the ')'.
	tree := mustParse(t, "SELECT * FROM t WHERE (a + b) > 5;")
	stmt := tree.Children[0]
	whereClause, ok := findChild(stmt, "WhereClause")
	if !ok {
		t.Fatalf("expected WhereClause")
	}
	cond := whereClause.Children[1]
	if cond.Rule != "Comparison" {
		t.Fatalf("expected Comparison, got %s", cond.Rule)
	}
	if cond.Children[0].Rule != "Paren" {
		t.Fatalf("expected left operand to be Paren, got %s", cond.Children[0].Rule)
	}
}

func TestBareParenGroupCondition(t *testing.T) {
	tree := mustParse(t, "SELECT * FROM t WHERE (a = 1 OR b = 2) AND c = 3;")
	stmt := tree.Children[0]
	whereClause, _ := findChild(stmt, "WhereClause")
	cond := whereClause.Children[1]
	if cond.Rule != "AndCondition" {
		t.Fatalf("expected AndCondition, got %s", cond.Rule)
	}
	if cond.Children[0].Rule != "GroupCondition" {
		t.Fatalf("expected left operand to be GroupCondition, got %s", cond.Children[0].Rule)
	}
}

func TestInsertMultiRow(t *testing.T) {
	stmt := firstStmt(t, "INSERT INTO t (a, b) VALUES (1, 'x'), (2, 'y');")
	rows := findChildren(stmt, "ValueRow")
	if len(rows) != 2 {
		t.Fatalf("expected 2 value rows, got %d", len(rows))
	}
}

func TestCreateTableWithConstraints(t *testing.T) {
	stmt := firstStmt(t, `CREATE TABLE orders (
		id INTEGER PRIMARY KEY,
		user_id INTEGER NOT NULL REFERENCES users(id),
		total FLOAT DEFAULT 0,
		CHECK (total >= 0)
	);`)
	if stmt.Rule != "CreateTableStmt" {
		t.Fatalf("expected CreateTableStmt, got %s", stmt.Rule)
	}
	cols := findChildren(stmt, "ColumnDef")
	if len(cols) != 3 {
		t.Fatalf("expected 3 column defs, got %d", len(cols))
	}
	if tcs := findChildren(stmt, "TableConstraint"); len(tcs) != 1 {
		t.Fatalf("expected 1 table constraint, got %d", len(tcs))
	}
}

func TestCreateOrReplaceViewWithColumnList(t *testing.T) {
	stmt := firstStmt(t, "CREATE OR REPLACE VIEW v (a, b) AS SELECT x, y FROM t;")
	if stmt.Rule != "CreateViewStmt" {
		t.Fatalf("expected CreateViewStmt, got %s", stmt.Rule)
	}
	if _, ok := findChild(stmt, "ColumnList"); !ok {
		t.Fatalf("expected a ColumnList child")
	}
	if _, ok := findChild(stmt, "SelectStmt"); !ok {
		t.Fatalf("expected the defining SELECT to be present")
	}
}

func TestCreateUniqueIndex(t *testing.T) {
	stmt := firstStmt(t, "CREATE UNIQUE INDEX idx_email ON users (email);")
	if stmt.Rule != "CreateIndexStmt" {
		t.Fatalf("expected CreateIndexStmt, got %s", stmt.Rule)
	}
}

func TestAlterTableAddAndDropColumn(t *testing.T) {
	stmt := firstStmt(t, "ALTER TABLE t ADD COLUMN age INTEGER;")
	if _, ok := findChild(stmt, "AddColumn"); !ok {
		t.Fatalf("expected AddColumn")
	}
	stmt = firstStmt(t, "ALTER TABLE t DROP COLUMN age;")
	if _, ok := findChild(stmt, "DropColumn"); !ok {
		t.Fatalf("expected DropColumn")
	}
}

func TestDropIndexWithOnClause(t *testing.T) {
	stmt := firstStmt(t, "DROP INDEX idx_email ON users;")
	if stmt.Rule != "DropStmt" {
		t.Fatalf("expected DropStmt, got %s", stmt.Rule)
	}
}

func TestUnknownStatementStartRecovers(t *testing.T) {
	// Scenario 3: zero LEX errors, one SYN "Unknown statement", one ERROR
	// statement, parser resynchronizes at ';'.
	toks, lexDiags := lexer.Scan("SLECT id FROM users;")
	if len(lexDiags) != 0 {
		t.Fatalf("unexpected lexical diagnostics: %v", lexDiags)
	}
	tree, synDiags := syntax.Parse(toks)
	if len(synDiags) != 1 || synDiags[0].Message != "Unknown statement" {
		t.Fatalf("unexpected diagnostics: %v", synDiags)
	}
	if len(tree.Children) != 1 || !tree.Children[0].IsError() {
		t.Fatalf("expected one ERROR statement, got %+v", tree.Children)
	}
}

func TestMissingFromRecoveryScenario(t *testing.T) {
	// Scenario 4: "SELECT * WHERE id = 10; DROP TABLE Users;" -> one SYN
	// error for stmt 1, stmt 2 parses cleanly, exactly 2 statements.
	toks, _ := lexer.Scan("SELECT * WHERE id = 10; DROP TABLE Users;")
	tree, synDiags := syntax.Parse(toks)
	if len(tree.Children) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(tree.Children))
	}
	if len(synDiags) != 1 || synDiags[0].Message != "Missing FROM clause before WHERE" {
		t.Fatalf("unexpected diagnostics: %v", synDiags)
	}
	if tree.Children[1].Rule != "DropStmt" {
		t.Fatalf("expected stmt 2 to parse cleanly as DropStmt, got %s", tree.Children[1].Rule)
	}
}

func TestLeavesMatchTokenStreamWhenNoDiagnostics(t *testing.T) {
	sql := "SELECT id, name FROM users WHERE id = 1;"
	toks, lexDiags := lexer.Scan(sql)
	if len(lexDiags) != 0 {
		t.Fatalf("unexpected lexical diagnostics: %v", lexDiags)
	}
	tree, synDiags := syntax.Parse(toks)
	if len(synDiags) != 0 {
		t.Fatalf("unexpected syntax diagnostics: %v", synDiags)
	}
	leaves := tree.Leaves()
	nonEOF := toks[:len(toks)-1]
	if len(leaves) != len(nonEOF) {
		t.Fatalf("leaf count %d != non-EOF token count %d", len(leaves), len(nonEOF))
	}
	for i := range leaves {
		if leaves[i].Lexeme != nonEOF[i].Lexeme {
			t.Fatalf("leaf %d: %q != %q", i, leaves[i].Lexeme, nonEOF[i].Lexeme)
		}
	}
}

func findChild(n *syntax.Node, rule string) (*syntax.Node, bool) {
	for _, c := range n.Children {
		if c != nil && c.Rule == rule {
			return c, true
		}
	}
	return nil, false
}

func findChildren(n *syntax.Node, rule string) []*syntax.Node {
	var out []*syntax.Node
	for _, c := range n.Children {
		if c != nil && c.Rule == rule {
			out = append(out, c)
		}
	}
	return out
}

