package syntax

import (
	"github.com/samber/lo"

	"github.com/sqlcore/frontend/diagnostic"
	"github.com/sqlcore/frontend/lexer"
	"github.com/sqlcore/frontend/token"
)

// statementStartList is token.StatementStart's key set, computed once
// so recover()'s sentinel check can use lo.Contains over a small fixed
// slice (design note §9's "small fixed set of sentinel token values")
// instead of re-deriving it from the map on every call.
var statementStartList = lo.Keys(token.StatementStart)

// Parser turns a token stream into a parse tree under panic-mode
// recovery: a syntax error never aborts the run, it produces an
// ERROR node and resyncs at the fixed recovery set from spec.md §4.2.
type Parser struct {
	toks []token.Token
	pos  int

	suggestDistance int
	diags           []diagnostic.Diagnostic
}

// New creates a Parser over an already-scanned token stream. toks
// must end with exactly one EOF token (as lexer.Scan guarantees).
func New(toks []token.Token) *Parser {
	return &Parser{toks: toks, suggestDistance: 2}
}

// SetSuggestDistance overrides the Levenshtein threshold used for
// "did you mean" hints (frontendcfg.Config.SuggestionEditDistance).
func (p *Parser) SetSuggestDistance(d int) { p.suggestDistance = d }

// Parse parses the full token stream into a Program node plus
// syntactic diagnostics ordered by position.
func Parse(toks []token.Token) (*Node, []diagnostic.Diagnostic) {
	p := New(toks)
	return p.ParseProgram()
}

// ParseProgram parses `{ Statement ';' }`.
func (p *Parser) ParseProgram() (*Node, []diagnostic.Diagnostic) {
	start := token.Position{Line: 1, Col: 1}
	if len(p.toks) > 0 {
		start = p.toks[0].Pos
	}
	prog := &Node{Rule: "Program", Pos: start}
	for p.cur().Kind != token.EOF {
		for p.curIs(token.DELIMITER, ";") {
			p.advance()
		}
		if p.cur().Kind == token.EOF {
			break
		}
		stmt := p.parseStatement()
		if p.curIs(token.DELIMITER, ";") {
			stmt.Children = append(stmt.Children, terminal(p.advance()))
		}
		prog.Children = append(prog.Children, stmt)
	}
	diagnostic.SortByPosition(p.diags)
	return prog, p.diags
}

// ---- token-stream primitives ----

func (p *Parser) cur() token.Token {
	if p.pos < len(p.toks) {
		return p.toks[p.pos]
	}
	return p.toks[len(p.toks)-1] // EOF
}

func (p *Parser) peek(n int) token.Token {
	idx := p.pos + n
	if idx < len(p.toks) {
		return p.toks[idx]
	}
	return p.toks[len(p.toks)-1]
}

func (p *Parser) advance() token.Token {
	t := p.cur()
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) curIs(kind token.Kind, value string) bool {
	t := p.cur()
	return t.Kind == kind && t.Value == value
}

func (p *Parser) curIsKeyword(kw string) bool {
	return p.curIs(token.KEYWORD, kw)
}

func (p *Parser) curIsAnyKeyword(kws ...string) bool {
	t := p.cur()
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

// eatKeyword consumes the current token if it is the given keyword,
// else emits "Expected X but found Y" and returns an ERROR leaf.
func (p *Parser) eatKeyword(kw string) *Node {
	if p.curIsKeyword(kw) {
		return terminal(p.advance())
	}
	return p.expectFail(kw, token.KEYWORD)
}

func (p *Parser) tryEatKeyword(kw string) (*Node, bool) {
	if p.curIsKeyword(kw) {
		return terminal(p.advance()), true
	}
	return nil, false
}

func (p *Parser) eatDelim(val string) *Node {
	if p.curIs(token.DELIMITER, val) || p.curIs(token.DOT, val) {
		return terminal(p.advance())
	}
	return p.expectFail(val, token.DELIMITER)
}

func (p *Parser) tryEatDelim(val string) (*Node, bool) {
	if p.curIs(token.DELIMITER, val) {
		return terminal(p.advance()), true
	}
	return nil, false
}

func (p *Parser) tryEatOperator(val string) (*Node, bool) {
	if p.curIs(token.OPERATOR, val) {
		return terminal(p.advance()), true
	}
	return nil, false
}

func (p *Parser) eatIdent() *Node {
	if p.cur().Kind == token.IDENTIFIER {
		return terminal(p.advance())
	}
	return p.expectFail("identifier", token.IDENTIFIER)
}

// expectFail records "Expected X but found Y" at the current token
// and returns an ERROR leaf without consuming the offending token
// (the caller decides whether to recover immediately or keep parsing
// optional trailing clauses, per spec.md §4.2's specific policies).
// When a keyword was expected and an identifier was found, the
// diagnostic carries the closest reserved word as its Suggestion.
func (p *Parser) expectFail(expected string, expectedKind token.Kind) *Node {
	found := p.cur()
	foundDesc := found.Lexeme
	if found.Kind == token.EOF {
		foundDesc = "end of input"
	}
	d := diagnostic.Newf(diagnostic.SYN, found.Pos, "Expected %s but found %s", expected, foundDesc)
	d.Expected = expected
	d.Found = foundDesc
	if expectedKind == token.KEYWORD && found.Kind == token.IDENTIFIER {
		d.Suggestion = lexer.SuggestKeyword(found.Lexeme, p.suggestDistance)
	}
	p.diags = append(p.diags, d)
	return errorNode(d)
}

func (p *Parser) errorf(format string, args ...any) diagnostic.Diagnostic {
	d := diagnostic.Newf(diagnostic.SYN, p.cur().Pos, format, args...)
	p.diags = append(p.diags, d)
	return d
}

// recover implements panic-mode resync (spec.md §4.2): advance tokens
// until the current token is ';' (not consumed here — ParseProgram
// consumes it) or a statement-start keyword (not consumed).
func (p *Parser) recover() {
	for {
		t := p.cur()
		if t.Kind == token.EOF {
			return
		}
		if t.Kind == token.DELIMITER && t.Value == ";" {
			return
		}
		if t.Kind == token.KEYWORD && lo.Contains(statementStartList, t.Value) {
			return
		}
		p.advance()
	}
}

// parseStatement dispatches on the current keyword and recovers on an
// unrecognized statement start.
func (p *Parser) parseStatement() *Node {
	t := p.cur()
	if t.Kind != token.KEYWORD {
		d := p.errorf("Unknown statement")
		p.recover()
		return errorNode(d)
	}
	switch t.Value {
	case "SELECT":
		return p.parseSelectStmt()
	case "INSERT":
		return p.parseInsertStmt()
	case "UPDATE":
		return p.parseUpdateStmt()
	case "DELETE":
		return p.parseDeleteStmt()
	case "CREATE":
		return p.parseCreateStmt()
	case "ALTER":
		return p.parseAlterTableStmt()
	case "DROP":
		return p.parseDropStmt()
	default:
		d := p.errorf("Unknown statement")
		p.recover()
		return errorNode(d)
	}
}
