package semantic_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlcore/frontend/diagnostic"
	"github.com/sqlcore/frontend/lexer"
	"github.com/sqlcore/frontend/semantic"
	"github.com/sqlcore/frontend/symtab"
	"github.com/sqlcore/frontend/syntax"
)

// analyze lexes and parses sql (failing the test on any LEX/SYN
// diagnostic) then runs the semantic pass over sym, returning the
// resulting diagnostics.
func analyze(t *testing.T, sym *symtab.SymbolTable, sql string) []diagnostic.Diagnostic {
	t.Helper()
	toks, lexDiags := lexer.Scan(sql)
	require.Empty(t, lexDiags, "unexpected lexical diagnostics")
	tree, synDiags := syntax.Parse(toks)
	require.Empty(t, synDiags, "unexpected syntax diagnostics")
	_, semDiags := semantic.Analyze(tree, sym, nil)
	return semDiags
}

func messages(diags []diagnostic.Diagnostic) []string {
	out := make([]string, len(diags))
	for i, d := range diags {
		out[i] = d.Message
	}
	return out
}

func TestCreateTableThenInsertResolvesWithinOneRun(t *testing.T) {
	sym := symtab.New()
	diags := analyze(t, sym, "CREATE TABLE T (a INT); INSERT INTO T VALUES (1);")
	assert.Empty(t, diags)

	tbl, ok := sym.Lookup("T")
	require.True(t, ok)
	assert.Len(t, tbl.Columns, 1)
}

func TestCreateTableDuplicateIsDuplicateError(t *testing.T) {
	sym := symtab.New()
	sym.Define(&symtab.Table{Name: "T"})
	diags := analyze(t, sym, "CREATE TABLE T (a INT);")
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "already exists")
}

func TestInsertIntoUnknownTableReportsMissingTable(t *testing.T) {
	sym := symtab.New()
	diags := analyze(t, sym, "INSERT INTO ghost VALUES (1);")
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "'ghost' does not exist")
}

// TestInsertTypeMismatchScenario is spec.md §8 scenario 2: a STRING
// literal where an INT column is declared.
func TestInsertTypeMismatchScenario(t *testing.T) {
	sym := symtab.New()
	diags := analyze(t, sym, "CREATE TABLE T (a INT);")
	require.Empty(t, diags)

	diags = analyze(t, sym, "INSERT INTO T VALUES ('x');")
	require.Len(t, diags, 1)
	assert.Equal(t, "column 'a' declared INT, STRING literal provided", diags[0].Message)
}

func TestInsertArityMismatch(t *testing.T) {
	sym := symtab.New()
	analyze(t, sym, "CREATE TABLE T (a INT, b INT);")
	diags := analyze(t, sym, "INSERT INTO T VALUES (1);")
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "INSERT has 1 values but 2 columns")
}

func TestInsertNumericWideningAllowed(t *testing.T) {
	sym := symtab.New()
	analyze(t, sym, "CREATE TABLE T (a FLOAT);")
	diags := analyze(t, sym, "INSERT INTO T VALUES (1);")
	assert.Empty(t, diags)
}

func TestInsertNullIntoNotNullColumnRejected(t *testing.T) {
	sym := symtab.New()
	analyze(t, sym, "CREATE TABLE T (a INT NOT NULL);")
	diags := analyze(t, sym, "INSERT INTO T VALUES (NULL);")
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "is NOT NULL")
}

func TestSelectUnknownColumnReference(t *testing.T) {
	sym := symtab.New()
	analyze(t, sym, "CREATE TABLE e (name TEXT);")
	diags := analyze(t, sym, "SELECT missing FROM e;")
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "unknown column 'missing'")
}

// TestSelectAmbiguousUnqualifiedColumnReference is rule 2's
// SEM_AMBIGUOUS branch: an unqualified column name resolves to more
// than one FROM-list table.
func TestSelectAmbiguousUnqualifiedColumnReference(t *testing.T) {
	sym := symtab.New()
	analyze(t, sym, "CREATE TABLE a (id INT); CREATE TABLE b (id INT);")
	diags := analyze(t, sym, "SELECT id FROM a JOIN b ON a.id = b.id;")
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "ambiguous column reference 'id'")
}

// TestSelectQualifiedReferenceToUnboundAlias is rule 2's "unknown
// table or alias" branch: a qualified ColumnRef whose prefix was never
// bound into scope by the FROM/JOIN list.
func TestSelectQualifiedReferenceToUnboundAlias(t *testing.T) {
	sym := symtab.New()
	analyze(t, sym, "CREATE TABLE t (id INT);")
	diags := analyze(t, sym, "SELECT z.id FROM t;")
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "unknown table or alias 'z'")
}

// TestDoubledQuoteLiteralComparisonScenario is spec.md §8 scenario 6:
// comparing a TEXT column against a string literal containing a
// doubled single quote produces zero diagnostics.
func TestDoubledQuoteLiteralComparisonScenario(t *testing.T) {
	sym := symtab.New()
	analyze(t, sym, "CREATE TABLE e (name TEXT);")
	diags := analyze(t, sym, "SELECT name FROM e WHERE name = 'O''Brien';")
	assert.Empty(t, diags)
}

func TestWhereRequiresBooleanExpression(t *testing.T) {
	sym := symtab.New()
	analyze(t, sym, "CREATE TABLE e (flag BOOLEAN, name TEXT);")
	diags := analyze(t, sym, "SELECT name FROM e WHERE name;")
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "BOOLEAN-compatible")
}

func TestAggregateInWhereRejected(t *testing.T) {
	sym := symtab.New()
	analyze(t, sym, "CREATE TABLE e (salary FLOAT);")
	diags := analyze(t, sym, "SELECT salary FROM e WHERE COUNT(salary) > 1;")
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "aggregate functions are not allowed in WHERE")
}

func TestGroupByRequiresNonAggregatedColumnsListed(t *testing.T) {
	sym := symtab.New()
	analyze(t, sym, "CREATE TABLE e (dept TEXT, salary FLOAT);")
	diags := analyze(t, sym, "SELECT dept, salary FROM e GROUP BY dept;")
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "must appear in GROUP BY")
}

func TestGroupByWithAggregateProjectionIsClean(t *testing.T) {
	sym := symtab.New()
	analyze(t, sym, "CREATE TABLE e (dept TEXT, salary FLOAT);")
	diags := analyze(t, sym, "SELECT dept, SUM(salary) FROM e GROUP BY dept;")
	assert.Empty(t, diags)
}

// TestGroupByCatchesUngroupedColumnInsideArithmetic is rule 6's check
// walking into a compound select-item expression rather than only
// matching a bare ColumnRef.
func TestGroupByCatchesUngroupedColumnInsideArithmetic(t *testing.T) {
	sym := symtab.New()
	analyze(t, sym, "CREATE TABLE e (dept TEXT, salary FLOAT);")
	diags := analyze(t, sym, "SELECT dept, salary + 1 FROM e GROUP BY dept;")
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "must appear in GROUP BY")
}

// TestGroupByCatchesUngroupedColumnInsideNonAggregateCall mirrors the
// arithmetic case for a non-aggregate function call argument.
func TestGroupByCatchesUngroupedColumnInsideNonAggregateCall(t *testing.T) {
	sym := symtab.New()
	analyze(t, sym, "CREATE TABLE e (dept TEXT, salary FLOAT);")
	diags := analyze(t, sym, "SELECT dept, UPPER(dept), salary FROM e GROUP BY dept;")
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "'salary' must appear in GROUP BY")
}

// TestGroupByIgnoresColumnsInsideAggregateArguments confirms an
// aggregate call's own argument is exempt even nested inside other
// arithmetic (e.g. SUM(salary) * 2).
func TestGroupByIgnoresColumnsInsideAggregateArguments(t *testing.T) {
	sym := symtab.New()
	analyze(t, sym, "CREATE TABLE e (dept TEXT, salary FLOAT);")
	diags := analyze(t, sym, "SELECT dept, SUM(salary) * 2 FROM e GROUP BY dept;")
	assert.Empty(t, diags)
}

func TestConcatRequiresTextOperands(t *testing.T) {
	sym := symtab.New()
	analyze(t, sym, "CREATE TABLE e (name TEXT, age INT);")
	diags := analyze(t, sym, "SELECT name || age FROM e;")
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "'||' requires TEXT operands")
}

func TestConcatOfTwoTextColumnsIsClean(t *testing.T) {
	sym := symtab.New()
	analyze(t, sym, "CREATE TABLE e (first TEXT, last TEXT);")
	diags := analyze(t, sym, "SELECT first || ' ' || last FROM e;")
	assert.Empty(t, diags)
}

func TestCreateViewDerivesProjectionColumns(t *testing.T) {
	sym := symtab.New()
	analyze(t, sym, "CREATE TABLE e (id INT, name TEXT);")
	diags := analyze(t, sym, "CREATE VIEW v AS SELECT id, name FROM e;")
	assert.Empty(t, diags)

	view, ok := sym.Lookup("v")
	require.True(t, ok)
	assert.True(t, view.IsView)
	require.Len(t, view.Columns, 2)
	assert.Equal(t, "id", view.Columns[0].Name)
	assert.Equal(t, "name", view.Columns[1].Name)
}

func TestCreateOrReplaceViewOverwritesExisting(t *testing.T) {
	sym := symtab.New()
	analyze(t, sym, "CREATE TABLE e (id INT, name TEXT);")
	analyze(t, sym, "CREATE VIEW v AS SELECT id FROM e;")
	diags := analyze(t, sym, "CREATE OR REPLACE VIEW v AS SELECT id, name FROM e;")
	assert.Empty(t, diags)

	view, ok := sym.Lookup("v")
	require.True(t, ok)
	assert.Len(t, view.Columns, 2)
}

func TestAlterTableAddColumnThenUseIt(t *testing.T) {
	sym := symtab.New()
	analyze(t, sym, "CREATE TABLE e (id INT);")
	diags := analyze(t, sym, "ALTER TABLE e ADD COLUMN name TEXT;")
	assert.Empty(t, diags)

	diags = analyze(t, sym, "SELECT name FROM e;")
	assert.Empty(t, diags)
}

func TestAlterTableDropColumnThenReferenceFails(t *testing.T) {
	sym := symtab.New()
	analyze(t, sym, "CREATE TABLE e (id INT, name TEXT);")
	diags := analyze(t, sym, "ALTER TABLE e DROP COLUMN name;")
	assert.Empty(t, diags)

	diags = analyze(t, sym, "SELECT name FROM e;")
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "unknown column 'name'")
}

func TestDropTableRemovesItFromSymbolTable(t *testing.T) {
	sym := symtab.New()
	analyze(t, sym, "CREATE TABLE e (id INT);")
	diags := analyze(t, sym, "DROP TABLE e;")
	assert.Empty(t, diags)
	_, ok := sym.Lookup("e")
	assert.False(t, ok)
}

func TestDropUnknownTableReportsError(t *testing.T) {
	sym := symtab.New()
	diags := analyze(t, sym, "DROP TABLE ghost;")
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "does not exist")
}

func TestJoinOnConditionValidatesBothSides(t *testing.T) {
	sym := symtab.New()
	analyze(t, sym, "CREATE TABLE a (id INT); CREATE TABLE b (a_id INT);")
	diags := analyze(t, sym, "SELECT a.id FROM a JOIN b ON a.id = b.a_id;")
	assert.Empty(t, diags)
}

func TestUpdateAssignmentTypeMismatch(t *testing.T) {
	sym := symtab.New()
	analyze(t, sym, "CREATE TABLE e (age INT);")
	diags := analyze(t, sym, "UPDATE e SET age = 'old';")
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "column 'age' declared INT, STRING literal provided")
}

func TestDeleteWhereValidatesColumnReferences(t *testing.T) {
	sym := symtab.New()
	analyze(t, sym, "CREATE TABLE e (id INT);")
	diags := analyze(t, sym, "DELETE FROM e WHERE missing = 1;")
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "unknown column 'missing'")
}

func TestErrorSubtreeIsNotReanalyzed(t *testing.T) {
	sym := symtab.New()
	toks, _ := lexer.Scan("SLECT id FROM users;")
	tree, synDiags := syntax.Parse(toks)
	require.Len(t, synDiags, 1)
	_, semDiags := semantic.Analyze(tree, sym, nil)
	assert.Empty(t, semDiags)
}
