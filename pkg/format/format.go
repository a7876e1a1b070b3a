// Package format lays out compiled SQL over several lines. It only moves
// whitespace: the words of the statement are never changed.
//
//	SELECT
//	  t0.name,
//	  COUNT( t1.id )
//	FROM customer t0
//	LEFT JOIN orders t1
//	  ON t0.id = t1.customer_id
//	WHERE
//	  t0.kind = 'x'
//	  AND t1.total > 10
//	GROUP BY
//	  t0.name
package format

import "strings"

type clause int

const (
	noClause clause = iota
	selectClause
	fromClause
	joinClause
	whereClause
	groupByClause
	orderByClause
)

// SQL formats a SQL statement. Subqueries are indented under their opening
// bracket.
func SQL(sql string) string {
	words := scan(sql)
	l := newLayout()
	for i := 0; i < len(words); {
		i = l.query(words, i)
		if i < len(words) {
			// Unbalanced closing bracket.
			l.word(words[i])
			i++
		}
	}
	return l.String()
}

// clauseAt reports the clause starting at words[i] and how many words its
// keyword takes.
func clauseAt(words []word, i int) (clause, int) {
	next := ""
	if i+1 < len(words) {
		next = words[i+1].text
	}

	switch words[i].text {
	case "SELECT":
		return selectClause, 1
	case "FROM":
		return fromClause, 1
	case "WHERE":
		return whereClause, 1
	case "JOIN":
		return joinClause, 1
	case "GROUP":
		if next == "BY" {
			return groupByClause, 2
		}
	case "ORDER":
		if next == "BY" {
			return orderByClause, 2
		}
	case "INNER", "LEFT", "RIGHT", "FULL", "CROSS":
		if next == "JOIN" {
			return joinClause, 2
		}
	}
	return noClause, 0
}

// listClause reports whether each item of c goes on its own line.
func listClause(c clause) bool {
	return c == selectClause || c == groupByClause || c == orderByClause
}

// query prints one query from words[i] up to its unmatched closing bracket
// or the end, and returns the index where it stopped.
func (l *layout) query(words []word, i int) int {
	base := l.depth
	defer func() { l.depth = base }()

	current := noClause
	parens := 0

	for i < len(words) {
		w := words[i]

		if parens == 0 {
			if w.text == ")" {
				return i
			}

			if c, n := clauseAt(words, i); n > 0 {
				l.depth = base
				l.endLine()
				texts := make([]string, n)
				for k := range texts {
					texts[k] = words[i+k].text
				}
				l.put(strings.Join(texts, " "))
				i += n
				current = c

				if c == selectClause && i < len(words) && words[i].text == "DISTINCT" {
					l.word(words[i])
					i++
				}
				if listClause(c) || c == whereClause {
					l.lineBreak()
					l.depth = base + 1
				}
				continue
			}

			switch {
			case w.text == "," && listClause(current):
				l.put(",")
				l.lineBreak()
				i++
				continue
			case w.text == "AND" && current == whereClause:
				l.endLine()
				l.put("AND")
				i++
				continue
			case w.text == "ON" && current == joinClause:
				l.endLine()
				l.depth = base + 1
				l.put("ON")
				i++
				continue
			}
		}

		if w.text == "(" && i+1 < len(words) && words[i+1].text == "SELECT" {
			l.word(w)
			l.lineBreak()
			outer := l.depth
			l.depth++
			i = l.query(words, i+1)
			l.depth = outer
			l.endLine()
			if i < len(words) {
				l.put(")")
				i++
			}
			continue
		}

		switch w.text {
		case "(":
			parens++
		case ")":
			parens--
		}
		l.word(w)
		i++
	}
	return i
}
