package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/leapstack-labs/funcsql/internal/cli/output"
	"github.com/leapstack-labs/funcsql/internal/loader"
	"github.com/leapstack-labs/funcsql/pkg/core"
	"github.com/leapstack-labs/funcsql/pkg/format"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// ErrNoInput is returned when a command gets no query from its arguments,
// files or stdin.
var ErrNoInput = errors.New("no query given: pass an expression, use -f, or pipe one on stdin")

// CompileOptions holds options for the compile command.
type CompileOptions struct {
	Files []string
}

// compiled is the outcome of compiling one input.
type compiled struct {
	Name   string `json:"name,omitempty"`
	Source string `json:"source"`
	SQL    string `json:"sql,omitempty"`
	Err    error  `json:"-"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand() *cobra.Command {
	opts := &CompileOptions{}

	cmd := &cobra.Command{
		Use:   "compile [expression...]",
		Short: "Compile queries to SQL",
		Long: `Compile functional queries to SQL and print the result.

Each argument is compiled as one query. Query files (.fsql) and directories
of query files are read with -f. Without either, the query is read from
stdin.`,
		Example: `  # Compile an expression
  funcsql compile "customers join(orders) print(name)"

  # Compile every query file in a directory, formatted
  funcsql compile -f queries/ --pretty

  # Compile from stdin
  echo "orders filter(amount, 40)" | funcsql compile`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(cmd, args, opts)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.Files, "file", "f", nil, "Query file or directory (repeatable)")

	return cmd
}

func runCompile(cmd *cobra.Command, args []string, opts *CompileOptions) error {
	env := getEnv(cmd)

	queries, err := collectQueries(cmd, args, opts.Files)
	if err != nil {
		return err
	}

	results, err := compileAll(cmd.Context(), env, queries)
	if err != nil {
		return err
	}

	if env.Config.Pretty {
		prettify(results)
	}

	var failed int
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}

	out := cmd.OutOrStdout()
	if env.Config.Output == "json" {
		if err := writeCompiledJSON(out, results); err != nil {
			return err
		}
	} else {
		writeCompiledText(out, cmd.ErrOrStderr(), results)
	}

	switch {
	case failed == 0:
		return nil
	case len(results) == 1:
		return results[0].Err
	default:
		return fmt.Errorf("%d of %d queries failed", failed, len(results))
	}
}

// collectQueries gathers queries from args, then files, then stdin.
func collectQueries(cmd *cobra.Command, args, files []string) ([]*loader.Query, error) {
	var queries []*loader.Query
	for _, arg := range args {
		queries = append(queries, &loader.Query{Source: strings.TrimSpace(arg)})
	}

	for _, path := range files {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		if info.IsDir() {
			found, err := loader.ScanDir(path)
			if err != nil {
				return nil, err
			}
			queries = append(queries, found...)
			continue
		}
		q, err := loader.Load(path)
		if err != nil {
			return nil, err
		}
		queries = append(queries, q)
	}

	if len(queries) > 0 {
		return queries, nil
	}

	q, err := readStdin(cmd.InOrStdin())
	if err != nil {
		return nil, err
	}
	return []*loader.Query{q}, nil
}

// readStdin reads one query from r. A terminal is never read.
func readStdin(r io.Reader) (*loader.Query, error) {
	if f, ok := r.(*os.File); ok && isTerminal(f) {
		return nil, ErrNoInput
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read stdin: %w", err)
	}
	q, err := loader.Parse(string(data))
	if err != nil {
		return nil, err
	}
	if q.Source == "" {
		return nil, ErrNoInput
	}
	return q, nil
}

// compileAll compiles each query on its own compiler. Compile errors are
// recorded per result; the returned error is a setup failure.
func compileAll(ctx context.Context, env *Env, queries []*loader.Query) ([]compiled, error) {
	// Load macros before fanning out so the goroutines share one set.
	if _, err := env.Macros(); err != nil {
		return nil, err
	}

	results := make([]compiled, len(queries))
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, q := range queries {
		g.Go(func() error {
			r := compiled{Source: q.Source}
			if q.Path != "" {
				r.Name = q.Name()
			}

			comp, err := env.NewCompiler()
			if err != nil {
				return err
			}
			if err := q.ApplyTo(comp); err != nil {
				r.Err = fmt.Errorf("%s: %w", q.Path, err)
			} else {
				r.SQL, r.Err = comp.Compile(q.Source)
			}
			if r.Err != nil {
				env.Logger.Debug("compile failed", "query", r.Name, "error", r.Err)
			}
			results[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// prettify formats the SQL of every successful result.
func prettify(results []compiled) {
	for i := range results {
		if results[i].Err == nil {
			results[i].SQL = prettySQL(results[i].SQL)
		}
	}
}

// prettySQL formats sql one clause per line, without the trailing newline.
func prettySQL(sql string) string {
	return strings.TrimRight(format.SQL(sql), "\n")
}

func writeCompiledText(out, errOut io.Writer, results []compiled) {
	if len(results) == 1 && results[0].Name == "" {
		if results[0].Err == nil {
			_, _ = fmt.Fprintln(out, results[0].SQL)
		}
		return
	}

	outStyles, errStyles := output.NewStyles(out), output.NewStyles(errOut)
	for _, r := range results {
		if r.Err != nil {
			_, _ = fmt.Fprintf(errOut, "%s\n%s\n\n",
				errStyles.Muted.Render("-- "+label(r)), output.Lines(errStyles.Error, r.Err.Error()))
			continue
		}
		_, _ = fmt.Fprintf(out, "%s\n%s;\n\n", outStyles.Muted.Render("-- "+label(r)), r.SQL)
	}
}

type compiledJSON struct {
	compiled
	Error string `json:"error,omitempty"`
	Kind  string `json:"kind,omitempty"`
}

func writeCompiledJSON(w io.Writer, results []compiled) error {
	items := make([]compiledJSON, len(results))
	for i, r := range results {
		items[i] = compiledJSON{compiled: r}
		if r.Err == nil {
			continue
		}
		items[i].Error = r.Err.Error()
		var se *core.SyntaxError
		if errors.As(r.Err, &se) {
			items[i].Error = se.Message
			items[i].Kind = se.Kind.String()
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(items)
}

func label(r compiled) string {
	if r.Name != "" {
		return r.Name
	}
	return r.Source
}
