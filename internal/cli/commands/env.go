// Package commands implements the funcsql subcommands.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/leapstack-labs/funcsql/internal/config"
	"github.com/leapstack-labs/funcsql/internal/macro"
	starctx "github.com/leapstack-labs/funcsql/internal/starlark"
	"github.com/leapstack-labs/funcsql/pkg/compiler"
	"github.com/leapstack-labs/funcsql/pkg/extensions/id"
	"github.com/leapstack-labs/funcsql/pkg/relation"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	// Database targets selectable from config.
	_ "github.com/leapstack-labs/funcsql/pkg/adapters/duckdb"
	_ "github.com/leapstack-labs/funcsql/pkg/adapters/postgres"
	_ "github.com/leapstack-labs/funcsql/pkg/adapters/sqlite"
)

// Env is the state shared by every subcommand of one invocation.
type Env struct {
	Config *config.Config
	Logger *slog.Logger

	macros   *macro.Set
	inferred []relation.Relation
}

type envKey struct{}

// WithEnv stores env in ctx.
func WithEnv(ctx context.Context, env *Env) context.Context {
	return context.WithValue(ctx, envKey{}, env)
}

// getEnv retrieves the Env from the command context. Without one, a default
// configuration is used.
func getEnv(cmd *cobra.Command) *Env {
	if ctx := cmd.Context(); ctx != nil {
		if env, ok := ctx.Value(envKey{}).(*Env); ok {
			return env
		}
	}
	return &Env{
		Config: &config.Config{
			MacrosDir:   config.DefaultMacrosDir,
			Environment: config.DefaultEnv,
			Output:      config.DefaultOutput,
			Target:      &config.TargetConfig{Type: config.DefaultTargetType},
		},
		Logger: slog.New(slog.DiscardHandler),
	}
}

// Macros loads the configured macro directory once.
func (e *Env) Macros() (*macro.Set, error) {
	if e.macros != nil {
		return e.macros, nil
	}
	var target *starctx.TargetInfo
	if t := e.Config.Target; t != nil {
		target = &starctx.TargetInfo{Type: t.Type, Database: t.Database}
	}
	set, err := macro.Load(e.Config.MacrosDir, target)
	if err != nil {
		return nil, fmt.Errorf("failed to load macros: %w", err)
	}
	if n := set.Len(); n > 0 {
		e.Logger.Debug("macros loaded", "dir", e.Config.MacrosDir, "count", n)
	}
	e.macros = set
	return set, nil
}

// Infer adds relations read from a database. Configured relations are
// declared first and win on lookup.
func (e *Env) Infer(relations []relation.Relation) {
	e.inferred = append(e.inferred, relations...)
}

// NewCompiler creates a compiler with the configured and inferred
// relations, the configured renames, the bundled extensions and every
// loaded macro.
func (e *Env) NewCompiler() (*compiler.Compiler, error) {
	set, err := e.Macros()
	if err != nil {
		return nil, err
	}
	comp := compiler.New(e.Config.CompilerOptions(e.Logger)...)
	id.Install(comp)
	set.Install(comp)
	// Renames run last so extensions and macros can be renamed too.
	if err := e.Config.ApplyTo(comp); err != nil {
		return nil, err
	}
	for _, r := range e.inferred {
		if err := comp.AddRelation(r.Table1, r.Column1, r.Table2, r.Column2); err != nil {
			return nil, err
		}
	}
	return comp, nil
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
