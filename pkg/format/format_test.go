package format

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSQL(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:  "select all",
			input: "SELECT * FROM a t0",
			expected: `SELECT
  *
FROM a t0
`,
		},
		{
			name:  "implicit join",
			input: "SELECT t0.name, t1.total FROM a t0, b t1 WHERE t0.id = t1.a_id",
			expected: `SELECT
  t0.name,
  t1.total
FROM a t0, b t1
WHERE
  t0.id = t1.a_id
`,
		},
		{
			name: "all clauses",
			input: "SELECT DISTINCT t0.name, COUNT( t1.id ) FROM customer t0 LEFT JOIN orders t1 ON t0.id = t1.customer_id " +
				"WHERE t0.kind = 'x y' AND t1.total > 10 GROUP BY t0.name ORDER BY t0.name DESC",
			expected: `SELECT DISTINCT
  t0.name,
  COUNT( t1.id )
FROM customer t0
LEFT JOIN orders t1
  ON t0.id = t1.customer_id
WHERE
  t0.kind = 'x y'
  AND t1.total > 10
GROUP BY
  t0.name
ORDER BY
  t0.name DESC
`,
		},
		{
			name:  "multiple joins",
			input: "SELECT * FROM a t0 FULL JOIN b t1 ON t0.id = t1.id LEFT JOIN c t2 ON t1.id = t2.id",
			expected: `SELECT
  *
FROM a t0
FULL JOIN b t1
  ON t0.id = t1.id
LEFT JOIN c t2
  ON t1.id = t2.id
`,
		},
		{
			name:  "logic stays inline",
			input: "SELECT * FROM a t0 WHERE ( x = 1 OR ( y >= '2' AND y < '3' ) ) AND z IN ( 1, 2 )",
			expected: `SELECT
  *
FROM a t0
WHERE
  ( x = 1 OR ( y >= '2' AND y < '3' ) )
  AND z IN ( 1, 2 )
`,
		},
		{
			name:  "subqueries",
			input: "SELECT * FROM a t0, (SELECT * FROM b t0 WHERE kind = 1) t1 WHERE t0.id = t1.a_id AND id IN (SELECT aid FROM c t0)",
			expected: `SELECT
  *
FROM a t0, (
  SELECT
    *
  FROM b t0
  WHERE
    kind = 1
) t1
WHERE
  t0.id = t1.a_id
  AND id IN (
    SELECT
      aid
    FROM c t0
  )
`,
		},
		{
			name:  "keywords inside literals",
			input: "SELECT * FROM a t0 WHERE v = 'FROM x, y' AND w = 'it''s'",
			expected: `SELECT
  *
FROM a t0
WHERE
  v = 'FROM x, y'
  AND w = 'it''s'
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SQL(tt.input))
		})
	}
}

func TestSQL_KeepsWords(t *testing.T) {
	inputs := []string{
		"SELECT t0.field, t1.field, MAX( t3.field ) FROM a t0, b t1, c t3 WHERE t0.id = t1.id GROUP BY t0.field, t1.field",
		"SELECT * FROM a t0 WHERE id IN (SELECT id FROM b t0 WHERE x IN ( 'a', 'b' ))",
		"SELECT * FROM a t0) WHERE",
	}
	for _, in := range inputs {
		assert.Equal(t, words(in), words(SQL(in)), in)
	}
}

func words(sql string) []string {
	var out []string
	for _, w := range scan(sql) {
		out = append(out, w.text)
	}
	return out
}

func TestScan(t *testing.T) {
	got := scan("MAX( a.b ),'x ''y'")
	assert.Equal(t, []word{
		{text: "MAX"},
		{text: "("},
		{text: "a.b", space: true},
		{text: ")", space: true},
		{text: ","},
		{text: "'x ''y'"},
	}, got)
	assert.True(t, strings.HasPrefix(SQL(""), "\n"))
}
