package token

// Position represents a location in the source text.
type Position struct {
	Offset int // 0-based byte offset
	Index  int // 1-based token index
}

// IsValid returns true if the position refers to an emitted token.
func (p Position) IsValid() bool {
	return p.Index > 0
}
