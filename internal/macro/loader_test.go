package macro

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.starlark.net/syntax"
)

func writeMacro(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func functionNames(modules []*module) map[string][]string {
	got := make(map[string][]string)
	for _, m := range modules {
		for _, f := range m.functions {
			got[m.namespace] = append(got[m.namespace], f.name)
		}
	}
	return got
}

func TestLoadDir(t *testing.T) {
	tests := []struct {
		name      string
		files     map[string]string
		dir       string // overrides the temp dir when set
		wantErr   string
		wantFuncs map[string][]string
	}{
		{
			name:      "empty directory",
			wantFuncs: map[string][]string{},
		},
		{
			name:      "missing directory",
			dir:       "missing",
			wantFuncs: map[string][]string{},
		},
		{
			name:    "not a directory",
			files:   map[string]string{"macros": "x"},
			dir:     "macros",
			wantErr: "not a directory",
		},
		{
			name: "public defs only",
			files: map[string]string{
				"utils.star": `
def since(column, day):
    return column + " >= " + quote(day)

def _helper(column):
    pass

alias = since
LIMIT = 10
`,
				"ranges.star": "def between(c, a, b):\n    return c\n\ndef after(c, a):\n    return c\n",
				"notes.txt":   "ignored",
			},
			wantFuncs: map[string][]string{
				"ranges": {"after", "between"},
				"utils":  {"since"},
			},
		},
		{
			name:    "syntax error",
			files:   map[string]string{"bad.star": "def broken(:\n"},
			wantErr: "macros/bad.star",
		},
		{
			name:    "undefined name",
			files:   map[string]string{"bad.star": "def f(c):\n    return nope(c)\n"},
			wantErr: "undefined: nope",
		},
		{
			name:    "runtime error",
			files:   map[string]string{"boom.star": "x = 1 // 0\n"},
			wantErr: "execution failed",
		},
		{
			name:    "invalid namespace",
			files:   map[string]string{"my-dates.star": "def f(c):\n    return c\n"},
			wantErr: `"my-dates" is not a valid namespace`,
		},
		{
			name:    "no column parameter",
			files:   map[string]string{"dates.star": "def today():\n    return 'x'\n"},
			wantErr: "today must take the column as first parameter",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for name, content := range tt.files {
				writeMacro(t, dir, name, content)
			}
			if tt.dir != "" {
				dir = filepath.Join(dir, tt.dir)
			}

			modules, err := loadDir(dir, testPredeclared())
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantFuncs, functionNames(modules))
		})
	}
}

func TestLoadModule_FileError(t *testing.T) {
	dir := t.TempDir()
	writeMacro(t, dir, "bad.star", "def (:")

	_, err := loadModule(filepath.Join(dir, "bad.star"), testPredeclared())
	var fe *FileError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, filepath.Join(dir, "bad.star"), fe.Path)

	var se syntax.Error
	assert.ErrorAs(t, err, &se)
}

func parseSignatures(t *testing.T, src string) map[string]*Signature {
	t.Helper()
	f, err := (&syntax.FileOptions{}).Parse("dates.star", src, 0)
	require.NoError(t, err)
	return signatures(f, []byte(src))
}

func TestSignatures(t *testing.T) {
	sigs := parseSignatures(t, `
def since(column, day, op=">="):
    """Rows on or after day."""
    return column

def _private(column):
    pass

def spread(column, *days):
    return column

def named(column, *, strict=True, **opts):
    return column
`)
	require.Len(t, sigs, 3)
	assert.NotContains(t, sigs, "_private")

	since := sigs["since"]
	assert.Equal(t, `dates.since(column, day, op=">=")`, since.Usage("dates"))
	assert.Equal(t, "Rows on or after day.", since.Doc)
	assert.Equal(t, 2, since.Line)

	spread := sigs["spread"]
	assert.Equal(t, "dates.spread(column, *days)", spread.Usage("dates"))
	assert.Empty(t, spread.Doc)

	assert.Equal(t, "dates.named(column, *, strict=True, **opts)", sigs["named"].Usage("dates"))
}

func TestSignature_Arity(t *testing.T) {
	sigs := parseSignatures(t, `
def one(column):
    pass

def optional(column, day, op=">="):
    pass

def spread(column, first, *rest):
    pass

def keyword_only(column, *, strict=True):
    pass
`)
	tests := []struct {
		name             string
		required, accept int
	}{
		{"one", 1, 1},
		{"optional", 2, 3},
		{"spread", 2, -1},
		{"keyword_only", 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			required, accepted := sigs[tt.name].Arity()
			assert.Equal(t, tt.required, required)
			assert.Equal(t, tt.accept, accepted)
		})
	}

	assert.NoError(t, sigs["optional"].checkArgs("d.optional", 2))
	assert.NoError(t, sigs["spread"].checkArgs("d.spread", 9))
	assert.ErrorContains(t, sigs["optional"].checkArgs("d.optional", 4), "too many")
	assert.ErrorContains(t, sigs["spread"].checkArgs("d.spread", 1), "Macro (d.spread) needs at least 1 values.")
}
