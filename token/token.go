// Package token defines the lexical atoms produced by the scanner:
// token kinds, the reserved-word table, and source positions.
package token

import "strings"

// Kind classifies a lexical atom. It is a closed sum — every scanner
// output is exactly one of these, per the data model's KEYWORD,
// IDENTIFIER, STRING, INTEGER, FLOAT, OPERATOR, COMPARISON, DELIMITER,
// DOT, EOF categories.
type Kind uint8

const (
	ILLEGAL Kind = iota
	EOF

	KEYWORD
	IDENTIFIER
	STRING
	INTEGER
	FLOAT
	OPERATOR
	COMPARISON
	DELIMITER
	DOT
)

func (k Kind) String() string {
	switch k {
	case ILLEGAL:
		return "ILLEGAL"
	case EOF:
		return "EOF"
	case KEYWORD:
		return "KEYWORD"
	case IDENTIFIER:
		return "IDENTIFIER"
	case STRING:
		return "STRING"
	case INTEGER:
		return "INTEGER"
	case FLOAT:
		return "FLOAT"
	case OPERATOR:
		return "OPERATOR"
	case COMPARISON:
		return "COMPARISON"
	case DELIMITER:
		return "DELIMITER"
	case DOT:
		return "DOT"
	default:
		return "UNKNOWN"
	}
}

// Position is a 1-based line/column within the source, plus the byte
// offset of the first character — mirrors the teacher lexer's Pos
// field but keeps line/col as the primary identity since diagnostics
// are reported in those terms.
type Position struct {
	Offset int
	Line   int
	Col    int
}

// Token is an immutable lexical atom.
type Token struct {
	Kind Kind
	// Lexeme is the original source slice, case preserved.
	Lexeme string
	// Value is the normalized form: upper-cased keyword text, the
	// escape-resolved string content, or the parsed numeric magnitude
	// (as the original decimal text — the parser turns this into an
	// exact value, see syntax.Node.Decimal).
	Value string
	Pos   Position
}

// Reserved is the 78-word reserved set from spec.md §4.1: DDL and
// DML verbs, clauses, join types, logical operators, aggregate/scalar
// function names, data-type keywords, and TRUE/FALSE/NULL constants.
// Membership is checked case-insensitively by the scanner, which
// upper-cases the candidate before lookup.
var Reserved = map[string]bool{
	"SELECT": true, "INSERT": true, "UPDATE": true, "DELETE": true,
	"CREATE": true, "ALTER": true, "DROP": true, "TABLE": true,
	"VIEW": true, "INDEX": true, "DATABASE": true,
	"FROM": true, "WHERE": true, "GROUP": true, "BY": true, "HAVING": true,
	"ORDER": true, "LIMIT": true, "OFFSET": true, "DISTINCT": true,
	"INTO": true, "VALUES": true, "SET": true,
	"INNER": true, "LEFT": true, "RIGHT": true, "FULL": true, "CROSS": true,
	"JOIN": true, "ON": true, "USING": true, "AS": true,
	"AND": true, "OR": true, "NOT": true,
	"BETWEEN": true, "IN": true, "LIKE": true, "IS": true, "NULL": true,
	"EXISTS": true,
	"PRIMARY": true, "KEY": true, "FOREIGN": true, "REFERENCES": true,
	"UNIQUE": true, "DEFAULT": true, "CHECK": true, "CONSTRAINT": true,
	"COLUMN": true, "ADD": true, "IF": true,
	"INTEGER": true, "INT": true, "FLOAT": true, "VARCHAR": true,
	"TEXT": true, "BOOLEAN": true, "DATE": true, "DECIMAL": true, "NUMERIC": true,
	"TRUE": true, "FALSE": true,
	"COUNT": true, "SUM": true, "AVG": true, "MIN": true, "MAX": true,
	"UPPER": true, "LOWER": true, "COALESCE": true, "CAST": true,
	"ASC": true, "DESC": true, "ALL": true, "CASCADE": true, "RESTRICT": true,
	"REPLACE": true,
}

// Lookup returns KEYWORD if upper-cased lexeme is reserved, else IDENTIFIER.
func Lookup(lexeme string) Kind {
	if Reserved[strings.ToUpper(lexeme)] {
		return KEYWORD
	}
	return IDENTIFIER
}

// StatementStart is the panic-mode recovery sentinel set from spec.md
// §4.2: the fixed set of statement-start keywords the parser resyncs
// to (in addition to ';').
var StatementStart = map[string]bool{
	"SELECT": true, "INSERT": true, "UPDATE": true, "DELETE": true,
	"CREATE": true, "ALTER": true, "DROP": true,
}
