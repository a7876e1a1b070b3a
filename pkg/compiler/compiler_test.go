package compiler

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/funcsql/internal/testutil"
	"github.com/leapstack-labs/funcsql/pkg/core"
)

type relationSpec struct{ t1, c1, t2, c2 string }

func newCompiler(t *testing.T, relations ...relationSpec) *Compiler {
	t.Helper()
	c := New(WithLogger(testutil.NewTestLogger(t)))
	for _, r := range relations {
		require.NoError(t, c.AddRelation(r.t1, r.c1, r.t2, r.c2))
	}
	return c
}

func requireSyntaxError(t *testing.T, err error, kind core.ErrorKind, message string) *core.SyntaxError {
	t.Helper()
	require.Error(t, err)
	var se *core.SyntaxError
	require.True(t, errors.As(err, &se), "expected *core.SyntaxError, got %T: %v", err, err)
	assert.Equal(t, kind, se.Kind, "kind of %q", se.Message)
	assert.Equal(t, message, se.Message)
	return se
}

func TestCompile_Select(t *testing.T) {
	c := newCompiler(t)

	for _, src := range []string{"a", "(a)", "((a))", "(((a)))"} {
		sql, err := c.Compile(src)
		require.NoError(t, err, src)
		assert.Equal(t, "SELECT * FROM a t0", sql, src)
	}

	for _, src := range []string{
		"a filter(field, 2)",
		"(a) filter(field, 2)",
		"((a) filter(field, 2))",
		"((((a))) filter(field, 2))",
		"((a filter(field, 2)))",
		"(((((a) filter(field, 2)))))",
	} {
		sql, err := c.Compile(src)
		require.NoError(t, err, src)
		assert.Equal(t, "SELECT * FROM a t0 WHERE field = 2", sql, src)
	}
}

func TestCompile_Query(t *testing.T) {
	c := newCompiler(t,
		relationSpec{"a", "id", "b", "id"},
		relationSpec{"b", "id", "c", "id"},
		relationSpec{"a", "id", "c", "id"},
	)

	sql, err := c.Compile("(a) join(b, join(c)) join(newtable(c)) max(ref(c.field, 2), a.field, b.field, ref(c.field2, 2))")
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT t0.field, t1.field, t3.field2, MAX( t3.field ) FROM a t0, b t1, c t2, c t3 "+
			"WHERE t0.id = t1.id AND t0.id = t3.id AND t1.id = t2.id GROUP BY t0.field, t1.field, t3.field2",
		sql)
}

func TestCompile_NestedQuery(t *testing.T) {
	c := newCompiler(t,
		relationSpec{"a", "id", "b", "id"},
		relationSpec{"b", "id", "c", "id"},
	)

	sql, err := c.Compile("a join((b join(c)), id, id )")
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT * FROM a t0, (SELECT * FROM b t0, c t1 WHERE t0.id = t1.id) t1 WHERE t0.id = t1.id",
		sql)
}

func TestCompile_Join(t *testing.T) {
	c := newCompiler(t)

	sql, err := c.Compile("a join(b, v_a, v_b ) ")
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM a t0, b t1 WHERE t0.v_a = t1.v_b", sql)

	_, err = c.Compile("a join(b) ")
	requireSyntaxError(t, err, core.NoRelation, core.ErrNoJoinColumns)

	require.NoError(t, c.AddRelation("a", "v_a", "b", "v_b"))

	tests := []struct {
		src  string
		want string
	}{
		{"a join(b) ", "SELECT * FROM a t0, b t1 WHERE t0.v_a = t1.v_b"},
		{"a join(b) join(c, v_a, v_c)", "SELECT * FROM a t0, b t1, c t2 WHERE t0.v_a = t1.v_b AND t0.v_a = t2.v_c"},
	}
	for _, tt := range tests {
		sql, err := c.Compile(tt.src)
		require.NoError(t, err, tt.src)
		assert.Equal(t, tt.want, sql, tt.src)
	}

	require.NoError(t, c.AddRelation("a", "v_a", "c", "v_c"))
	sql, err = c.Compile("a join(b) join(c)")
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM a t0, b t1, c t2 WHERE t0.v_a = t1.v_b AND t0.v_a = t2.v_c", sql)

	require.NoError(t, c.AddRelation("b", "v_b", "c", "v_c"))
	sql, err = c.Compile("a join(b, join(c))")
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM a t0, b t1, c t2 WHERE t0.v_a = t1.v_b AND t1.v_b = t2.v_c", sql)

	_, err = c.Compile("a join(b, like(c))")
	requireSyntaxError(t, err, core.UnexpectedArgument, "Cannot use command (like) as argument of command (join).")

	_, err = c.Compile("a print(asc(v1))")
	requireSyntaxError(t, err, core.UnexpectedArgument, "Cannot use command (asc) as argument of command (print).")
}

func TestCompile_RelationEquivalence(t *testing.T) {
	c := newCompiler(t, relationSpec{"a", "id", "b", "id"})

	implicit, err := c.Compile("a join(b)")
	require.NoError(t, err)
	explicit, err := c.Compile("a join(b,id,id)")
	require.NoError(t, err)

	assert.Equal(t, "SELECT * FROM a t0, b t1 WHERE t0.id = t1.id", implicit)
	assert.Equal(t, implicit, explicit)
}

func TestCompile_JoinEqualityOrderedByAlias(t *testing.T) {
	c := newCompiler(t, relationSpec{"a", "id", "b", "aid"})

	tests := []struct {
		src  string
		want string
	}{
		{"a join(b)", "SELECT * FROM a t0, b t1 WHERE t0.id = t1.aid"},
		{"b join(a)", "SELECT * FROM b t0, a t1 WHERE t0.aid = t1.id"},
		// The nested join drives from t1 back to t0.
		{"a join(b, join(a, aid, id))", "SELECT * FROM a t0, b t1 WHERE t0.id = t1.aid"},
		{"a join(b, join(newtable(a), aid, id))", "SELECT * FROM a t0, b t1, a t2 WHERE t0.id = t1.aid AND t1.aid = t2.id"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			sql, err := c.Compile(tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.want, sql)
		})
	}
}

func TestCompile_DefaultRelation(t *testing.T) {
	c := newCompiler(t)
	require.NoError(t, c.AddDefaultRelation("id", "id"))

	sql, err := c.Compile("a join(b) join(c, id)")
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM a t0, b t1, c t2 WHERE t0.id = t1.id AND t0.id = t2.id", sql)

	_, err = c.Compile("a join(b, code)")
	requireSyntaxError(t, err, core.NoRelation, core.ErrNoJoinColumns)

	err = c.AddDefaultRelation("id1", "id2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Default relation has no equal columns.")
}

func TestCompile_Print(t *testing.T) {
	c := newCompiler(t)

	sql, err := c.Compile("a print(v)")
	require.NoError(t, err)
	assert.Equal(t, "SELECT v FROM a t0", sql)

	require.NoError(t, c.AddRelation("a", "v_a", "b", "v_b"))
	sql, err = c.Compile("a join(b) print( b.v ) ")
	require.NoError(t, err)
	assert.Equal(t, "SELECT t1.v FROM a t0, b t1 WHERE t0.v_a = t1.v_b", sql)

	sql, err = c.Compile("a join(b) print(a, b.v)")
	require.NoError(t, err)
	assert.Equal(t, "SELECT t0.*, t1.v FROM a t0, b t1 WHERE t0.v_a = t1.v_b", sql)
}

func TestCompile_Like(t *testing.T) {
	c := newCompiler(t)

	sql, err := c.Compile("a like( v, 'a%b')")
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM a t0 WHERE v LIKE 'a%b'", sql)

	sql, err = c.Compile("a like(v, 1)")
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM a t0 WHERE v LIKE 1", sql)

	_, err = c.Compile("a like(v, a)")
	requireSyntaxError(t, err, core.InvalidValue, "Value (a) should be quoted.")
}

func TestCompile_SelectCommands(t *testing.T) {
	c := newCompiler(t, relationSpec{"a", "id", "b", "id"})

	tests := []struct {
		src  string
		want string
	}{
		{"a join(b) group(field, b.field)", "SELECT field, t1.field FROM a t0, b t1 WHERE t0.id = t1.id GROUP BY field, t1.field"},
		{"a asc(v1, v2)", "SELECT * FROM a t0 ORDER BY v1, v2 ASC"},
		{"a desc(v1, v2)", "SELECT * FROM a t0 ORDER BY v1, v2 DESC"},
		{"a sum(1)", "SELECT SUM( 1 ) FROM a t0"},
		{"a sum(v)", "SELECT SUM( v ) FROM a t0"},
		{"a sum(1, v1, v2)", "SELECT v1, v2, SUM( 1 ) FROM a t0 GROUP BY v1, v2"},
		{"a max(1)", "SELECT MAX( 1 ) FROM a t0"},
		{"a max(1, v1, v2)", "SELECT v1, v2, MAX( 1 ) FROM a t0 GROUP BY v1, v2"},
		{"a min(v)", "SELECT MIN( v ) FROM a t0"},
		{"a min(1, v1, v2)", "SELECT v1, v2, MIN( 1 ) FROM a t0 GROUP BY v1, v2"},
		{"a avg(price, kind)", "SELECT kind, AVG( price ) FROM a t0 GROUP BY kind"},
		{"a count(1)", "SELECT COUNT( 1 ) FROM a t0"},
		{"a distinct(va, 1, vb)", "SELECT DISTINCT va, 1, vb FROM a t0"},
		{"a distinct(a)", "SELECT DISTINCT t0.* FROM a t0"},
		{"table distinct(a, b)", "SELECT DISTINCT a, b FROM table t0"},
		{"a distinct()", "SELECT DISTINCT * FROM a t0"},
		{"a distinct() print(v)", "SELECT DISTINCT v FROM a t0"},
		{"a group(kind) distinct() desc(kind)", "SELECT DISTINCT kind FROM a t0 GROUP BY kind ORDER BY kind DESC"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			sql, err := c.Compile(tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.want, sql)
		})
	}

	_, err := c.Compile("a print(v1) distinct(v2)")
	requireSyntaxError(t, err, core.ClauseDefined, "Select clause (SELECT v1) is already defined.")

	_, err = c.Compile("a asc(v1) desc(v2)")
	requireSyntaxError(t, err, core.ClauseDefined, "Order by clause (ORDER BY v1 ASC) is already defined.")
}

func TestCompile_Filter(t *testing.T) {
	c := newCompiler(t, relationSpec{"a", "va", "b", "vb"})

	tests := []struct {
		src  string
		want string
	}{
		{"a filter(field, '1')", "SELECT * FROM a t0 WHERE field = '1'"},
		{"a filter(field, 1)", "SELECT * FROM a t0 WHERE field = 1"},
		{"a filter(v, 'a b')", "SELECT * FROM a t0 WHERE v = 'a b'"},
		{"a filter(v, 'a', 'b')", "SELECT * FROM a t0 WHERE v IN ( 'a', 'b' )"},
		{"a join(b) filter(v, 'a', 'b')", "SELECT * FROM a t0, b t1 WHERE t0.va = t1.vb AND v IN ( 'a', 'b' )"},
		{"a join(b) filter(b.v, 'a', 'b')", "SELECT * FROM a t0, b t1 WHERE t0.va = t1.vb AND t1.v IN ( 'a', 'b' )"},
		{"a filter(v, !=, 1)", "SELECT * FROM a t0 WHERE v != 1"},
		{"a filter(v, ==, 1)", "SELECT * FROM a t0 WHERE v == 1"},
		{"a filter(v, <, 1)", "SELECT * FROM a t0 WHERE v < 1"},
		{"a filter(v, >, 1)", "SELECT * FROM a t0 WHERE v > 1"},
		{"a filter(v, <=, 1)", "SELECT * FROM a t0 WHERE v <= 1"},
		{"a filter(v, >=, 1)", "SELECT * FROM a t0 WHERE v >= 1"},
		{"a filter(v, '<')", "SELECT * FROM a t0 WHERE v = '<'"},
		{"a filter(v, 1) filter(v, 1)", "SELECT * FROM a t0 WHERE v = 1"},
		{"a notfilter(field, 1)", "SELECT * FROM a t0 WHERE field != 1"},
		{"a notfilter(field, 1, 2)", "SELECT * FROM a t0 WHERE field NOT IN ( 1, 2 )"},
		{"a notfilter(field, '1')", "SELECT * FROM a t0 WHERE field != '1'"},
		{"a notfilter(field, '1', '2')", "SELECT * FROM a t0 WHERE field NOT IN ( '1', '2' )"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			sql, err := c.Compile(tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.want, sql)
		})
	}

	_, err := c.Compile("a filter(1)")
	requireSyntaxError(t, err, core.ArgumentCount, core.ErrUnexpectedEndOfCommand)

	_, err = c.Compile("a filter(1, a)")
	requireSyntaxError(t, err, core.InvalidValue, "Value (a) should be quoted.")

	for _, v := range []string{"-", ".", "--"} {
		_, err = c.Compile("a filter(x, " + v + ")")
		requireSyntaxError(t, err, core.InvalidValue, "Value ("+v+") should be quoted.")
	}

	_, err = c.Compile("a filter(v,!=)")
	requireSyntaxError(t, err, core.ArgumentCount, core.ErrNeedOperatorValue)

	_, err = c.Compile("a filter(c, >, 1, 2)")
	requireSyntaxError(t, err, core.ArgumentCount, "Only one value when using operator in filter command ([1, 2]).")

	_, err = c.Compile("a filter(v,!=, 'a', 'b')")
	requireSyntaxError(t, err, core.ArgumentCount, "Only one value when using operator in filter command (['a', 'b']).")
}

func TestCompile_FilterDate(t *testing.T) {
	c := newCompiler(t)

	tests := []struct {
		src  string
		want string
	}{
		{"a filterdate(v, 20010101)", "SELECT * FROM a t0 WHERE v = '20010101'"},
		{"a filterdate(v, 20010101, >= )", "SELECT * FROM a t0 WHERE v >= '20010101'"},
		{"a filterdate(v, 20010101, <= )", "SELECT * FROM a t0 WHERE v <= '20010101'"},
		{"a filterdate(v, 20010101, > )", "SELECT * FROM a t0 WHERE v > '20010101'"},
		{"a filterdate(v, 20010101, < )", "SELECT * FROM a t0 WHERE v < '20010101'"},
		{"a filterdate(v, 20010101, '<' )", "SELECT * FROM a t0 WHERE v < '20010101'"},
		{"a filterdate(v, 20010101, 20020101)", "SELECT * FROM a t0 WHERE v < '20020101' AND v >= '20010101'"},
		{"a or(filterdate(v, 20010101, 20020101), filter(w, 1))", "SELECT * FROM a t0 WHERE ( ( v >= '20010101' AND v < '20020101' ) OR w = 1 )"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			sql, err := c.Compile(tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.want, sql)
		})
	}

	_, err := c.Compile("a filterdate(v, 20010101, between)")
	requireSyntaxError(t, err, core.UnknownOperator, "Unknown operator (between).")
}

func TestCompile_RefAndNewTable(t *testing.T) {
	c := newCompiler(t, relationSpec{"a", "id", "a", "id"})

	sql, err := c.Compile("a join(newtable(a)) print(ref(a,2))")
	require.NoError(t, err)
	assert.Equal(t, "SELECT t1.* FROM a t0, a t1 WHERE t0.id = t1.id", sql)

	tests := []struct {
		src  string
		kind core.ErrorKind
		msg  string
	}{
		{"a join(newtable(a)) print(ref(a,3))", core.TableReference, "Table reference (3) is not correct."},
		{"a join(newtable(a)) print(ref(z,3))", core.UnresolvedTable, "Refering to a non existing table (z)."},
		{"a join(newtable(a)) print(ref(a,i))", core.TableReference, "Table reference should be nummerical (i)."},
		{"a join(newtable(a)) print(ref(a,0))", core.TableReference, "Reference should be equal or greater than one (0)."},
		{"a join(newtable(a)) print(a)", core.AmbiguousAlias, "If table has multiple instances, use the ref command (table=a)."},
		{"a filter(ref(a, 1), 1) join(ref(a, 1))", core.UnexpectedArgument, "Cannot use command (ref) as argument of command (join)."},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, err := c.Compile(tt.src)
			requireSyntaxError(t, err, tt.kind, tt.msg)
		})
	}
}

func TestCompile_TypedJoins(t *testing.T) {
	c := newCompiler(t,
		relationSpec{"a", "id", "b", "id"},
		relationSpec{"b", "id", "c", "id"},
		relationSpec{"a", "id", "c", "id"},
	)

	tests := []struct {
		src  string
		want string
	}{
		{"a innerjoin(b)", "SELECT * FROM a t0 INNER JOIN b t1 ON t0.id = t1.id"},
		{"a leftjoin(b)", "SELECT * FROM a t0 LEFT JOIN b t1 ON t0.id = t1.id"},
		{"a rightjoin(b)", "SELECT * FROM a t0 RIGHT JOIN b t1 ON t0.id = t1.id"},
		{"a fulljoin(b)", "SELECT * FROM a t0 FULL JOIN b t1 ON t0.id = t1.id"},
		{"a fulljoin(b, leftjoin(c))", "SELECT * FROM a t0 FULL JOIN b t1 ON t0.id = t1.id LEFT JOIN c t2 ON t1.id = t2.id"},
		{"a fulljoin(b) leftjoin(c)", "SELECT * FROM a t0 FULL JOIN b t1 ON t0.id = t1.id LEFT JOIN c t2 ON t0.id = t2.id"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			sql, err := c.Compile(tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.want, sql)
		})
	}
}

func TestCompile_LogicAndIn(t *testing.T) {
	c := newCompiler(t, relationSpec{"a", "id", "b", "aid"})

	tests := []struct {
		src  string
		want string
	}{
		{
			"a or(filter(x, 1), filter(y, 2))",
			"SELECT * FROM a t0 WHERE ( x = 1 OR y = 2 )",
		},
		{
			"a filter(z, 3) and(like(n, 'a%'), notfilter(k, 'v'))",
			"SELECT * FROM a t0 WHERE ( n LIKE 'a%' AND k != 'v' ) AND z = 3",
		},
		{
			"a or(filter(x, 1), and(filter(y, 2), filter(z, 3)))",
			"SELECT * FROM a t0 WHERE ( x = 1 OR ( y = 2 AND z = 3 ) )",
		},
		{
			"a in(id, (b filter(kind, 'x') print(aid)))",
			"SELECT * FROM a t0 WHERE id IN (SELECT aid FROM b t0 WHERE kind = 'x')",
		},
		{
			"a join(b) in(b.aid, (c print(id)))",
			"SELECT * FROM a t0, b t1 WHERE t0.id = t1.aid AND t1.aid IN (SELECT id FROM c t0)",
		},
		{
			"a or(in(id, (b)), filter(id, 0))",
			"SELECT * FROM a t0 WHERE ( id IN (SELECT * FROM b t0) OR id = 0 )",
		},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			sql, err := c.Compile(tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.want, sql)
		})
	}

	_, err := c.Compile("a or(join(b))")
	requireSyntaxError(t, err, core.UnexpectedArgument, "Cannot use command (join) as argument of command (or).")

	_, err = c.Compile("a or(x)")
	requireSyntaxError(t, err, core.UnexpectedArgument, "Expected a command call instead of (x).")
}

func TestCompile_Errors(t *testing.T) {
	c := newCompiler(t, relationSpec{"a", "id", "b", "id"}, relationSpec{"b", "id", "c", "id"})

	tests := []struct {
		name string
		src  string
		kind core.ErrorKind
		msg  string
	}{
		{"no arguments", "a print()", core.ArgumentCount, "Command has no arguments."},
		{"null field", "a print( a.)", core.MalformedName, "Null field."},
		{"null table", "a print( .field)", core.MalformedName, "Null table."},
		{"opening bracket", "a join b", core.MissingBracket, "Expected opening bracket."},
		{"join after join", "a join(b, join(c), id, id)", core.JoinOrder, "A join can only be followed by another join. Instead found 'id'."},
		{"too many arguments", "a like(c, 1, 2)", core.ArgumentCount, "Command has too many arguments."},
		{"unclosed command", "a join(b", core.ArgumentCount, "Unexpected end of statement."},
		{"trailing comma", "a join(b,", core.ArgumentCount, "Unexpected end of command."},
		{"missing comma", "a join(b a", core.MissingComma, "Expected ',' instead of (a)."},
		{"empty argument", "a filter(x,, 1)", core.ArgumentCount, "Expected an argument instead of (,)."},
		{"quoted drive table", "'a'", core.MalformedName, "Wrong format table or column name: 'a'."},
		{"quoted join table", "a join('b')", core.MalformedName, "Wrong format table or column name: 'b'."},
		{"quoted newtable", "a join(newtable('a'))", core.MalformedName, "Wrong format table or column name: 'a'."},
		{"quoted print", "a print('b')", core.MalformedName, "Wrong format table or column name: 'b'."},
		{"missing end quote", "a filter(field, 'value", core.MissingQuote, "Missing end quote."},
		{"unknown command", "a frobnicate(b)", core.UnknownCommand, "Unknown command (frobnicate)."},
		{"unknown table", "a print(z.v)", core.UnresolvedTable, "Refering to a non existing table (z)."},
		{"nested statement after drive", "a (b)", core.UnknownCommand, "Unknown command (()."},
		{"stray closing bracket", "a) filter(x, 1)", core.MissingBracket, "Unexpected closing bracket."},
		{"empty statement", "()", core.ArgumentCount, "Unexpected end of statement."},
		{"command as drive", "filter(x, 1)", core.UnexpectedArgument, "Cannot use command (filter) as argument of command (statement)."},
		{"statement as print argument", "a print((b))", core.UnexpectedArgument, "Cannot use command (statement) as argument of command (print)."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Compile(tt.src)
			se := requireSyntaxError(t, err, tt.kind, tt.msg)
			assert.Equal(t, tt.src, se.Source)
			assert.True(t, strings.HasPrefix(se.Error(), "Syntax error: "+tt.msg+"\n"+tt.src+"\n"))
		})
	}
}

func TestCompile_ErrorCaret(t *testing.T) {
	c := newCompiler(t)

	_, err := c.Compile("a print()")
	require.Error(t, err)
	assert.Equal(t, "Syntax error: Command has no arguments.\na print()\n   |\n----", err.Error())
}

func TestCompile_NoStatementAndHelp(t *testing.T) {
	c := newCompiler(t)

	_, err := c.Compile("")
	assert.ErrorIs(t, err, ErrNoStatement)

	_, err = c.Compile("  \n ")
	assert.ErrorIs(t, err, ErrNoStatement)

	_, err = c.Compile("HELP")
	assert.ErrorIs(t, err, ErrHelp)
	assert.Equal(t, Usage, err.Error())
}

func TestCompile_MaxDepth(t *testing.T) {
	c := New(WithMaxDepth(4))

	sql, err := c.Compile("((a))")
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM a t0", sql)

	deep := strings.Repeat("(", 10) + "a" + strings.Repeat(")", 10)
	_, err = c.Compile(deep)
	requireSyntaxError(t, err, core.NestingDepth, "Maximum nesting depth (4) exceeded.")

	deep = strings.Repeat("(", 200) + "a" + strings.Repeat(")", 200)
	_, err = New().Compile(deep)
	requireSyntaxError(t, err, core.NestingDepth, "Maximum nesting depth (64) exceeded.")
}

func TestCompiler_Rename(t *testing.T) {
	c := newCompiler(t, relationSpec{"a", "id", "b", "id"})
	require.NoError(t, c.Rename("fulljoin", "fjoin"))

	sql, err := c.Compile("a fjoin(b)")
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM a t0 FULL JOIN b t1 ON t0.id = t1.id", sql)

	_, err = c.Compile("a fulljoin(b)")
	requireSyntaxError(t, err, core.UnknownCommand, "Unknown command (fulljoin).")

	err = c.Rename("nosuch", "other")
	requireSyntaxError(t, err, core.UnknownCommand, "Unknown command (nosuch).")
}

func TestCompiler_CommandsAndWithoutDefaults(t *testing.T) {
	c := New()
	names := c.Commands()
	assert.Contains(t, names, "join")
	assert.Contains(t, names, "filterdate")
	assert.IsIncreasing(t, names)

	empty := New(WithoutDefaults())
	assert.Empty(t, empty.Commands())

	_, err := empty.Compile("a filter(x, 1)")
	requireSyntaxError(t, err, core.UnknownCommand, "Unknown command (filter).")
}

func TestCompiler_Deterministic(t *testing.T) {
	c := newCompiler(t, relationSpec{"a", "id", "b", "id"}, relationSpec{"a", "id", "c", "id"})

	first, err := c.Compile("a join(c) filter(z, 1) join(b) filter(y, 2)")
	require.NoError(t, err)
	second, err := c.Compile("a join(c) filter(y, 2) join(b) filter(z, 1) filter(y, 2)")
	require.NoError(t, err)

	// Aliases follow source order, clause text is sorted.
	assert.Equal(t, "SELECT * FROM a t0, c t1, b t2 WHERE t0.id = t1.id AND t0.id = t2.id AND y = 2 AND z = 1", first)
	assert.Equal(t, first, second)
}

func TestCompiler_LogsCompilation(t *testing.T) {
	logger, buf := testutil.NewCaptureLogger()
	c := New(WithLogger(logger))

	_, err := c.Compile("a print(v)")
	require.NoError(t, err)
	_, err = c.Compile("a print()")
	require.Error(t, err)

	out := buf.String()
	assert.Contains(t, out, `msg=compiled`)
	assert.Contains(t, out, `sql="SELECT v FROM a t0"`)
	assert.Contains(t, out, `msg="compile failed"`)
}
