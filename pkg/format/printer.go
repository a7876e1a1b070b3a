package format

import "strings"

const indent = "  "

// layout builds the formatted statement line by line.
type layout struct {
	b     strings.Builder
	depth int
	fresh bool // nothing written on the current line yet
}

func newLayout() *layout {
	return &layout{fresh: true}
}

// String returns the statement with a single trailing newline.
func (l *layout) String() string {
	return strings.TrimRight(l.b.String(), "\n") + "\n"
}

// put writes s, indenting first when it starts a line.
func (l *layout) put(s string) {
	if s == "" {
		return
	}
	if l.fresh {
		l.b.WriteString(strings.Repeat(indent, l.depth))
	}
	l.b.WriteString(s)
	l.fresh = false
}

// lineBreak ends the current line, even an empty one.
func (l *layout) lineBreak() {
	l.b.WriteByte('\n')
	l.fresh = true
}

// endLine ends the current line unless nothing was written on it.
func (l *layout) endLine() {
	if !l.fresh {
		l.lineBreak()
	}
}

// word writes w on the current line, keeping its leading space.
func (l *layout) word(w word) {
	if w.space && !l.fresh {
		l.b.WriteByte(' ')
	}
	l.put(w.text)
}
