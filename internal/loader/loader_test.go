package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/funcsql/pkg/compiler"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantYAML bool
		wantSrc  string
		check    func(t *testing.T, fm Frontmatter)
	}{
		{
			name:    "plain expression",
			content: "  orders filter(amount, >, 100)\n",
			wantSrc: "orders filter(amount, >, 100)",
		},
		{
			name: "frontmatter",
			content: `/*---
name: big_orders
description: Orders above 100
tags: [finance]
relations:
  - [orders, customer_id, customers, id]
default_relation: id
meta:
  owner: ops
---*/
orders join(customers)
  filter(amount, >, 100)
`,
			wantYAML: true,
			wantSrc:  "orders join(customers)\n  filter(amount, >, 100)",
			check: func(t *testing.T, fm Frontmatter) {
				assert.Equal(t, "big_orders", fm.Name)
				assert.Equal(t, "Orders above 100", fm.Description)
				assert.Equal(t, []string{"finance"}, fm.Tags)
				assert.Equal(t, [][]string{{"orders", "customer_id", "customers", "id"}}, fm.Relations)
				assert.Equal(t, "id", fm.DefaultRelation)
				assert.Equal(t, "ops", fm.Meta["owner"])
			},
		},
		{
			name:     "empty frontmatter",
			content:  "/*---\n---*/\na",
			wantYAML: true,
			wantSrc:  "a",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := Parse(tt.content)
			require.NoError(t, err)
			assert.Equal(t, tt.wantYAML, q.HasYAML)
			assert.Equal(t, tt.wantSrc, q.Source)
			if tt.check != nil {
				tt.check(t, q.Frontmatter)
			}
		})
	}
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse("/*---\nowner: me\n---*/\na")
	var ue *UnknownFieldError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "owner", ue.Field)

	_, err = Parse("/*---\nrelations:\n  - [a, id, b]\n---*/\na")
	var pe *FrontmatterParseError
	require.ErrorAs(t, err, &pe)
	assert.Contains(t, pe.Message, "relations[0]")

	_, err = Parse("/*---\nname: [\n---*/\na")
	require.ErrorAs(t, err, &pe)
	assert.Contains(t, pe.Message, "invalid YAML")
}

func TestQuery_ApplyTo(t *testing.T) {
	q, err := Parse(`/*---
relations:
  - [orders, customer_id, customers, id]
---*/
orders join(customers) print(customers.name)`)
	require.NoError(t, err)

	c := compiler.New()
	require.NoError(t, q.ApplyTo(c))
	sql, err := c.Compile(q.Source)
	require.NoError(t, err)
	assert.Equal(t, "SELECT t1.name FROM orders t0, customers t1 WHERE t0.customer_id = t1.id", sql)

	q, err = Parse("/*---\ndefault_relation: id\n---*/\na join(b)")
	require.NoError(t, err)
	c = compiler.New()
	require.NoError(t, q.ApplyTo(c))
	sql, err = c.Compile(q.Source)
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM a t0, b t1 WHERE t0.id = t1.id", sql)
}

func TestQuery_Name(t *testing.T) {
	q := &Query{Path: filepath.Join("queries", "daily_sales.fsql")}
	assert.Equal(t, "daily_sales", q.Name())

	q.Frontmatter.Name = "sales"
	assert.Equal(t, "sales", q.Name())
}

func TestScanDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.fsql"), "b")
	writeFile(t, filepath.Join(dir, "a.fsql"), "a")
	writeFile(t, filepath.Join(dir, "nested", "c.fsql"), "/*---\nname: cee\n---*/\nc")
	writeFile(t, filepath.Join(dir, "notes.txt"), "x")
	writeFile(t, filepath.Join(dir, ".hidden.fsql"), "h")
	writeFile(t, filepath.Join(dir, ".cache", "d.fsql"), "d")

	queries, err := ScanDir(dir)
	require.NoError(t, err)

	var names []string
	for _, q := range queries {
		names = append(names, q.Name())
	}
	assert.Equal(t, []string{"a", "b", "cee"}, names)
}

func TestLoad_ErrorNamesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.fsql")
	writeFile(t, path, "/*---\nowner: me\n---*/\na")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)

	_, err = Load(filepath.Join(t.TempDir(), "missing.fsql"))
	assert.ErrorContains(t, err, "failed to read")
}
