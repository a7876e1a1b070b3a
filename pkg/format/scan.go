package format

// word is one token of SQL text. space records whether whitespace
// preceded it.
type word struct {
	text  string
	space bool
}

// scan splits SQL text into words. Brackets and commas are words of
// their own and quoted literals, with '' escapes, are kept whole.
func scan(sql string) []word {
	var (
		words []word
		space bool
	)
	for i := 0; i < len(sql); {
		ch := sql[i]
		switch {
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r':
			space = true
			i++
			continue
		case ch == '(' || ch == ')' || ch == ',':
			words = append(words, word{text: sql[i : i+1], space: space})
			i++
		case ch == '\'':
			j := i + 1
			for j < len(sql) {
				if sql[j] == '\'' {
					if j+1 < len(sql) && sql[j+1] == '\'' {
						j += 2
						continue
					}
					j++
					break
				}
				j++
			}
			words = append(words, word{text: sql[i:j], space: space})
			i = j
		default:
			j := i
			for j < len(sql) && !isDelimiter(sql[j]) {
				j++
			}
			words = append(words, word{text: sql[i:j], space: space})
			i = j
		}
		space = false
	}
	return words
}

func isDelimiter(ch byte) bool {
	switch ch {
	case ' ', '\t', '\n', '\r', '(', ')', ',', '\'':
		return true
	}
	return false
}
