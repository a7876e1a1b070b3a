// Package lexer splits functional query notation into tokens.
//
// Brackets, commas and quotes delimit themselves. Outside a quoted span a
// maximal run of other non-whitespace characters forms one IDENT token, so
// identifiers, numbers and operator symbols such as ">=" all lex alike. A
// quoted span is returned as QUOTE, STRING, QUOTE with the STRING holding the
// verbatim content.
package lexer

import "github.com/leapstack-labs/funcsql/pkg/token"

// Lexer tokenizes functional query notation.
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      byte // current char under examination
	count   int  // tokens emitted so far

	// quoted is true between an opening quote and its match.
	quoted bool
	// pending is set after an opening quote: the span content is due next.
	pending bool
}

// New creates a new Lexer for the given input.
func New(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

// Tokenize lexes the whole input. The result always ends with an EOF token.
func Tokenize(input string) []token.Token {
	l := New(input)
	var tokens []token.Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == token.EOF {
			return tokens
		}
	}
}

func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++
}

func (l *Lexer) atEnd() bool {
	return l.pos >= len(l.input)
}

// NextToken returns the next token.
func (l *Lexer) NextToken() token.Token {
	if l.pending {
		l.pending = false
		return l.readQuoted()
	}

	if !l.quoted {
		l.skipWhitespace()
	}

	start := l.pos
	if l.atEnd() {
		return l.emit(token.EOF, "", start)
	}

	switch l.ch {
	case '\'':
		l.readChar()
		l.quoted = !l.quoted
		l.pending = l.quoted
		return l.emit(token.QUOTE, "'", start)
	case '(':
		l.readChar()
		return l.emit(token.LPAREN, "(", start)
	case ')':
		l.readChar()
		return l.emit(token.RPAREN, ")", start)
	case ',':
		l.readChar()
		return l.emit(token.COMMA, ",", start)
	}

	for !l.atEnd() && !isSpecial(l.ch) && !isWhitespace(l.ch) {
		l.readChar()
	}
	return l.emit(token.IDENT, l.input[start:l.pos], start)
}

// readQuoted reads the content of a quoted span up to, not including, the
// closing quote or the end of input.
func (l *Lexer) readQuoted() token.Token {
	start := l.pos
	for !l.atEnd() && l.ch != '\'' {
		l.readChar()
	}
	return l.emit(token.STRING, l.input[start:l.pos], start)
}

func (l *Lexer) emit(t token.TokenType, literal string, offset int) token.Token {
	l.count++
	return token.Token{
		Type:    t,
		Literal: literal,
		Pos:     token.Position{Offset: offset, Index: l.count},
	}
}

func (l *Lexer) skipWhitespace() {
	for !l.atEnd() && isWhitespace(l.ch) {
		l.readChar()
	}
}

func isSpecial(ch byte) bool {
	return ch == '(' || ch == ')' || ch == ',' || ch == '\''
}

func isWhitespace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}
