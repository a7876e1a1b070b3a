package core

import (
	"regexp"
	"strings"
)

var (
	identifierPattern = regexp.MustCompile(`^[a-zA-Z0-9_]*$`)
	numericPattern    = regexp.MustCompile(`^-?([0-9]+\.?[0-9]*|\.[0-9]+)$`)
)

// IsIdentifier reports whether s is a valid table or column name.
func IsIdentifier(s string) bool {
	return identifierPattern.MatchString(s)
}

// IsNumeric reports whether s is a number literal.
func IsNumeric(s string) bool {
	return numericPattern.MatchString(s)
}

// IsQuoted reports whether s is a reassembled quoted literal.
func IsQuoted(s string) bool {
	return strings.HasPrefix(s, "'")
}

// CheckName validates a table or column name.
func CheckName(s string) error {
	if !IsIdentifier(s) {
		return Errorf(MalformedName, ErrWrongFormatName, s)
	}
	return nil
}

// SplitTableColumn splits "table.column" at the first dot. Column is empty
// when s holds no dot.
func SplitTableColumn(s string) (table, column string, err error) {
	idx := strings.IndexByte(s, '.')
	switch {
	case idx < 0:
		return s, "", nil
	case idx == 0:
		return "", "", Errorf(MalformedName, ErrNullTable)
	case idx == len(s)-1:
		return "", "", Errorf(MalformedName, ErrNullField)
	}
	return s[:idx], s[idx+1:], nil
}
