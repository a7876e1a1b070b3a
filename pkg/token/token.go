// Package token defines the lexical tokens of the functional query notation.
package token

import "fmt"

// TokenType represents the type of a lexical token.
//
//nolint:revive // Accept stutter as token.TokenType is clear and widely used
type TokenType int32

const (
	// Special tokens
	EOF TokenType = iota
	ILLEGAL

	// Literals
	IDENT  // table, column, command name, number or operator symbol
	STRING // verbatim content of a quoted span

	// Delimiters
	LPAREN // (
	RPAREN // )
	COMMA  // ,
	QUOTE  // '
)

// String returns a human-readable representation of the token type.
func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TOKEN(%d)", t)
}

var tokenNames = map[TokenType]string{
	EOF:     "EOF",
	ILLEGAL: "ILLEGAL",
	IDENT:   "IDENT",
	STRING:  "STRING",
	LPAREN:  "(",
	RPAREN:  ")",
	COMMA:   ",",
	QUOTE:   "'",
}

// Token represents a lexical token.
type Token struct {
	Type    TokenType
	Literal string
	Pos     Position
}

// String returns the literal, or the type name for tokens without one.
func (t Token) String() string {
	if t.Literal != "" || t.Type == STRING {
		return t.Literal
	}
	return t.Type.String()
}

// Is reports whether the token is a delimiter or identifier with the given literal.
func (t Token) Is(literal string) bool {
	return t.Type != STRING && t.Literal == literal
}

// IsDelimiter returns true for bracket, comma and quote tokens.
func (t TokenType) IsDelimiter() bool {
	switch t {
	case LPAREN, RPAREN, COMMA, QUOTE:
		return true
	}
	return false
}
