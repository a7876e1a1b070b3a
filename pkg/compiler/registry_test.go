package compiler

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/funcsql/pkg/commands"
	"github.com/leapstack-labs/funcsql/pkg/core"
)

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := NewRegistry()

	_, ok := r.Get("print")
	assert.False(t, ok)

	r.Register("print", func(ctx core.Context) core.Command { return commands.NewPrint(ctx) })
	f, ok := r.Get("print")
	require.True(t, ok)

	cmd := f(core.Context{Name: "print"})
	assert.Equal(t, "print", cmd.Name())
	assert.Equal(t, core.SelectKind, cmd.Kind())
}

func TestRegistry_Rename(t *testing.T) {
	r := NewRegistry()
	r.Register("print", func(ctx core.Context) core.Command { return commands.NewPrint(ctx) })

	require.NoError(t, r.Rename("print", "show"))
	_, ok := r.Get("print")
	assert.False(t, ok)
	_, ok = r.Get("show")
	assert.True(t, ok)

	err := r.Rename("print", "other")
	var se *core.SyntaxError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, core.UnknownCommand, se.Kind)
}

func TestRegistry_List(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"b", "c", "a"} {
		r.Register(name, nil)
	}
	assert.Equal(t, []string{"a", "b", "c"}, r.List())
}

func TestRegistry_Concurrent(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := string(rune('a' + i))
			r.Register(name, nil)
			_, _ = r.Get(name)
			_ = r.List()
		}(i)
	}
	wg.Wait()
	assert.Len(t, r.List(), 8)
}
