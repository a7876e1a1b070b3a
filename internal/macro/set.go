package macro

import (
	"sort"

	starctx "github.com/leapstack-labs/funcsql/internal/starlark"
	"github.com/leapstack-labs/funcsql/pkg/compiler"
	"github.com/leapstack-labs/funcsql/pkg/core"
)

// Set is a loaded macro directory. One Set may be installed on any number
// of compilers; their calls share its thread pool.
type Set struct {
	modules []*module
	pool    *starctx.ThreadPool
}

// Description documents one macro command.
type Description struct {
	Name      string
	Signature string
	Doc       string
}

// Load loads the macros under dir. target is exposed to the macros as the
// "target" global and may be nil.
func Load(dir string, target *starctx.TargetInfo) (*Set, error) {
	modules, err := loadDir(dir, starctx.Predeclared(target))
	if err != nil {
		return nil, err
	}
	return &Set{modules: modules, pool: starctx.NewThreadPool(0, 0)}, nil
}

// Install registers every macro on c as a filter command.
func (s *Set) Install(c *compiler.Compiler) {
	for _, m := range s.modules {
		for _, f := range m.functions {
			c.Register(m.namespace+"."+f.name, func(ctx core.Context) core.Command {
				return newCommand(ctx, f, s.pool)
			})
		}
	}
}

// Describe lists the macro commands sorted by name.
func (s *Set) Describe() []Description {
	var out []Description
	for _, m := range s.modules {
		for _, f := range m.functions {
			out = append(out, Description{
				Name:      m.namespace + "." + f.name,
				Signature: f.sig.Usage(m.namespace),
				Doc:       f.sig.Doc,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Len returns the number of macro commands.
func (s *Set) Len() int {
	n := 0
	for _, m := range s.modules {
		n += len(m.functions)
	}
	return n
}
