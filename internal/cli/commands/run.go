package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/leapstack-labs/funcsql/pkg/adapter"
	"github.com/spf13/cobra"
)

// RunOptions holds options for the run command.
type RunOptions struct {
	Files   []string
	ShowSQL bool
}

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	opts := &RunOptions{}

	cmd := &cobra.Command{
		Use:   "run [expression...]",
		Short: "Compile queries and run them against the target",
		Long: `Compile functional queries and execute the SQL against the configured
target database. Results are printed in the --output format.

Queries are read the same way as by compile: arguments, -f files and
directories, or stdin.`,
		Example: `  # Run against a SQLite file
  funcsql run --database shop.db "customers join(orders) print(name)"

  # Read join relations from the target's foreign keys
  funcsql run --infer-relations "orders join(customers)"

  # Results as JSON
  funcsql run -o json -f reports/`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd, args, opts)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.Files, "file", "f", nil, "Query file or directory (repeatable)")
	cmd.Flags().BoolVar(&opts.ShowSQL, "show-sql", false, "Print the compiled SQL to stderr before running it")

	return cmd
}

func runRun(cmd *cobra.Command, args []string, opts *RunOptions) error {
	ctx := cmd.Context()
	env := getEnv(cmd)
	logger := env.Logger.With("run_id", uuid.NewString())

	queries, err := collectQueries(cmd, args, opts.Files)
	if err != nil {
		return err
	}

	db, err := openTarget(ctx, env)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	results, err := compileAll(ctx, env, queries)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for i, r := range results {
		if r.Err != nil {
			return r.Err
		}
		if len(results) > 1 {
			if i > 0 {
				_, _ = fmt.Fprintln(out)
			}
			_, _ = fmt.Fprintf(out, "-- %s\n", label(r))
		}
		if opts.ShowSQL {
			_, _ = fmt.Fprintln(cmd.ErrOrStderr(), r.SQL)
		}
		logger.Debug("running query", "query", label(r), "sql", r.SQL)
		if err := executeAndRender(ctx, out, db, r.SQL, env.Config.Output); err != nil {
			return fmt.Errorf("%s: %w", label(r), err)
		}
	}
	return nil
}

// openTarget connects to the configured target. With infer_relations set,
// the target's foreign keys are added to env.
func openTarget(ctx context.Context, env *Env) (adapter.Adapter, error) {
	cfg := env.Config.Target.AdapterConfig()
	db, err := adapter.Open(ctx, cfg, env.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s target: %w", cfg.Type, err)
	}

	if env.Config.InferRelations {
		relations, err := db.Relations(ctx)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to read relations: %w", err)
		}
		env.Logger.Debug("relations inferred", "count", len(relations))
		env.Infer(relations)
	}
	return db, nil
}

func executeAndRender(ctx context.Context, w io.Writer, db adapter.Adapter, query, format string) error {
	result, err := db.Query(ctx, query)
	if err != nil {
		return err
	}
	return renderResult(w, result, format)
}
