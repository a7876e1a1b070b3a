package id

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/funcsql/pkg/compiler"
	"github.com/leapstack-labs/funcsql/pkg/core"
)

func newCompiler(t *testing.T) *compiler.Compiler {
	t.Helper()
	c := compiler.New()
	Install(c)
	require.NoError(t, c.AddRelation("a", "id", "b", "id"))
	return c
}

func TestID(t *testing.T) {
	c := newCompiler(t)

	tests := []struct {
		src  string
		want string
	}{
		{"a id(10)", "SELECT * FROM a t0 WHERE id = 10"},
		{"a join(b) id(b, 10)", "SELECT * FROM a t0, b t1 WHERE t0.id = t1.id AND t1.id = 10"},
		{"a or(id(1), id(a, 2))", "SELECT * FROM a t0 WHERE ( id = 1 OR t0.id = 2 )"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			sql, err := c.Compile(tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.want, sql)
		})
	}
}

func TestID_Errors(t *testing.T) {
	c := newCompiler(t)

	tests := []struct {
		src  string
		kind core.ErrorKind
		msg  string
	}{
		{"a id(b)", core.InvalidValue, "Argument (b) should be nummerical."},
		{"a id(a, 1.5)", core.InvalidValue, "Argument (1.5) should be nummerical."},
		{"a id(table, 10)", core.UnresolvedTable, "Refering to a non existing table (table)."},
		{"'a' id(table,10)", core.MalformedName, "Wrong format table or column name: 'a'."},
		{"a id(1, 2, 3)", core.ArgumentCount, "Command has too many arguments."},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, err := c.Compile(tt.src)
			var se *core.SyntaxError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.kind, se.Kind)
			assert.Equal(t, tt.msg, se.Message)
		})
	}
}

func TestID_NotInstalled(t *testing.T) {
	_, err := compiler.New().Compile("a id(10)")
	var se *core.SyntaxError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "Unknown command (id).", se.Message)
}
