package duckdb

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/funcsql/pkg/adapter"
	"github.com/leapstack-labs/funcsql/pkg/compiler"
)

func connect(t *testing.T, cfg adapter.Config) *Adapter {
	t.Helper()
	adp := New(nil)
	require.NoError(t, adp.Connect(context.Background(), cfg))
	t.Cleanup(func() { _ = adp.Close() })
	return adp
}

func TestAdapter_Connect(t *testing.T) {
	tests := []struct {
		name      string
		setupPath func(t *testing.T) string
		verify    func(t *testing.T, path string)
	}{
		{
			name:      "in-memory",
			setupPath: func(_ *testing.T) string { return "" },
		},
		{
			name: "file-based",
			setupPath: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "test.duckdb")
			},
			verify: func(t *testing.T, path string) {
				_, err := os.Stat(path)
				assert.False(t, os.IsNotExist(err), "database file was not created")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := tt.setupPath(t)
			adp := connect(t, adapter.Config{Path: path})
			assert.True(t, adp.Connected())
			if tt.verify != nil {
				tt.verify(t, path)
			}
		})
	}
}

func TestAdapter_NotConnected(t *testing.T) {
	ctx := context.Background()
	adp := New(nil)

	assert.ErrorIs(t, adp.Exec(ctx, "SELECT 1"), adapter.ErrNotConnected)
	_, err := adp.Query(ctx, "SELECT 1")
	assert.ErrorIs(t, err, adapter.ErrNotConnected)
	_, err = adp.Relations(ctx)
	assert.ErrorIs(t, err, adapter.ErrNotConnected)
	assert.NoError(t, adp.Close())
}

func TestAdapter_Settings(t *testing.T) {
	adp := connect(t, adapter.Config{Params: map[string]any{
		"settings": map[string]any{"threads": 2},
	}})

	result, err := adp.Query(context.Background(), "SELECT current_setting('threads')")
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, "2", fmt.Sprint(result.Rows[0][0]))
}

func TestParseParams(t *testing.T) {
	p, err := ParseParams(map[string]any{
		"extensions": []any{"json"},
		"settings":   map[string]any{"memory_limit": "1GB"},
	})
	require.NoError(t, err)
	assert.Equal(t, Params{Extensions: []string{"json"}, Settings: map[string]string{"memory_limit": "1GB"}}, p)

	p, err = ParseParams(nil)
	require.NoError(t, err)
	assert.Equal(t, Params{}, p)

	_, err = ParseParams(map[string]any{"secrets": []any{}})
	assert.Error(t, err)

	_, err = ParseParams(map[string]any{"settings": map[string]any{"threads; DROP": "1"}})
	assert.ErrorContains(t, err, "invalid duckdb setting name")
}

func TestAdapter_CompiledQuery(t *testing.T) {
	ctx := context.Background()
	adp := connect(t, adapter.Config{})

	for _, stmt := range []string{
		`CREATE TABLE customers (customer_id INTEGER, name VARCHAR)`,
		`CREATE TABLE orders (order_id INTEGER, customer_id INTEGER, amount DOUBLE)`,
		`INSERT INTO customers VALUES (1, 'Alice'), (2, 'Bob')`,
		`INSERT INTO orders VALUES (1, 1, 100.0), (2, 1, 150.0), (3, 2, 200.0)`,
	} {
		require.NoError(t, adp.Exec(ctx, stmt))
	}

	c := compiler.New()
	require.NoError(t, c.AddRelation("orders", "customer_id", "customers", "customer_id"))
	sql, err := c.Compile("orders join(customers) sum(amount, customers.name) desc(customers.name)")
	require.NoError(t, err)

	result, err := adp.Query(ctx, sql)
	require.NoError(t, err)
	require.Len(t, result.Rows, 2)
	assert.Equal(t, "Bob", result.Rows[0][0])
	assert.InEpsilon(t, 200.0, result.Rows[0][1], 0.001)
	assert.Equal(t, "Alice", result.Rows[1][0])
	assert.InEpsilon(t, 250.0, result.Rows[1][1], 0.001)
}

func TestRegistered(t *testing.T) {
	assert.Contains(t, adapter.Types(), TypeName)
	a, err := adapter.New(adapter.Config{Type: TypeName}, nil)
	require.NoError(t, err)
	assert.IsType(t, &Adapter{}, a)
}
