package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/leapstack-labs/funcsql/pkg/token"
)

// ErrInvariant marks internal invariant violations. These are programming
// errors, never the result of bad input.
var ErrInvariant = errors.New("internal invariant violated")

// ErrorKind classifies a syntax error.
type ErrorKind int

// Syntax error kinds.
const (
	UnknownCommand ErrorKind = iota
	MissingBracket
	MissingQuote
	MissingComma
	ArgumentCount
	UnexpectedArgument
	MalformedName
	UnresolvedTable
	TableReference
	AmbiguousAlias
	NoRelation
	ClauseDefined
	InvalidValue
	UnknownOperator
	JoinOrder
	NestingDepth
)

var errorKindNames = map[ErrorKind]string{
	UnknownCommand:     "unknown command",
	MissingBracket:     "missing bracket",
	MissingQuote:       "missing quote",
	MissingComma:       "missing comma",
	ArgumentCount:      "argument count",
	UnexpectedArgument: "unexpected argument",
	MalformedName:      "malformed name",
	UnresolvedTable:    "unresolved table",
	TableReference:     "table reference",
	AmbiguousAlias:     "ambiguous alias",
	NoRelation:         "no relation",
	ClauseDefined:      "clause defined",
	InvalidValue:       "invalid value",
	UnknownOperator:    "unknown operator",
	JoinOrder:          "join order",
	NestingDepth:       "nesting depth",
}

// String returns the string representation of the error kind.
func (k ErrorKind) String() string {
	if name, ok := errorKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Common error messages
const (
	ErrUnknownCommand           = "Unknown command (%s)."
	ErrExpectedOpeningBracket   = "Expected opening bracket."
	ErrUnexpectedClosingBracket = "Unexpected closing bracket."
	ErrExpectedComma            = "Expected ',' instead of (%s)."
	ErrExpectedArgument         = "Expected an argument instead of (%s)."
	ErrMissingEndQuote          = "Missing end quote."
	ErrNoArguments              = "Command has no arguments."
	ErrTooManyArguments         = "Command has too many arguments."
	ErrUnexpectedEndOfCommand   = "Unexpected end of command."
	ErrUnexpectedEndOfStatement = "Unexpected end of statement."
	ErrCannotUseCommand         = "Cannot use command (%s) as argument of command (%s)."
	ErrExpectedCommand          = "Expected a command call instead of (%s)."
	ErrWrongFormatName          = "Wrong format table or column name: %s."
	ErrNullTable                = "Null table."
	ErrNullField                = "Null field."
	ErrMultipleInstances        = "If table has multiple instances, use the ref command (table=%s)."
	ErrNonExistingTable         = "Refering to a non existing table (%s)."
	ErrReferenceNotNumeric      = "Table reference should be nummerical (%s)."
	ErrReferenceBelowOne        = "Reference should be equal or greater than one (%s)."
	ErrReferenceNotCorrect      = "Table reference (%s) is not correct."
	ErrJoinShouldFollowJoin     = "A join can only be followed by another join. Instead found '%s'."
	ErrNoJoinColumns            = "No join columns defined in statement and no relation found."
	ErrClauseAlreadyDefined     = "%s clause (%s) is already defined."
	ErrValueShouldBeQuoted      = "Value (%s) should be quoted."
	ErrNeedOperatorValue        = "Need a value to filter on when using operator in filter command."
	ErrOneOperatorValue         = "Only one value when using operator in filter command (%s)."
	ErrUnknownOperator          = "Unknown operator (%s)."
	ErrNestingDepth             = "Maximum nesting depth (%d) exceeded."
)

// SyntaxError is a user-facing compile error. Commands create it without
// Source; the compiler fills in Source and Pos before returning it.
type SyntaxError struct {
	Kind    ErrorKind
	Message string
	Source  string
	Pos     token.Position
}

// Errorf creates a SyntaxError of the given kind.
func Errorf(kind ErrorKind, format string, args ...any) *SyntaxError {
	return &SyntaxError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Error renders the message, the source and a caret line under the
// position of the last consumed token.
func (e *SyntaxError) Error() string {
	if e.Source == "" {
		return "Syntax error: " + e.Message
	}

	n := e.Pos.Index - 1
	if n < 0 {
		n = 0
	}
	return fmt.Sprintf("Syntax error: %s\n%s\n%s|\n%s",
		e.Message,
		e.Source,
		strings.Repeat(" ", n),
		strings.Repeat("-", n+1))
}

// Invariantf reports a programming error.
func Invariantf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvariant, fmt.Sprintf(format, args...))
}

// FormatValues renders a value list as [a, b].
func FormatValues(values []string) string {
	return "[" + strings.Join(values, ", ") + "]"
}
