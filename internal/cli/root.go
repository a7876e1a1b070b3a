// Package cli provides the command-line interface for funcsql.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/leapstack-labs/funcsql/internal/cli/commands"
	"github.com/leapstack-labs/funcsql/internal/cli/output"
	"github.com/leapstack-labs/funcsql/internal/config"
	"github.com/spf13/cobra"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "funcsql",
		Short: "funcsql - compile functional queries to SQL",
		Long: `funcsql compiles a compact functional query notation into SQL.

  customers join(orders) filter(city, 'Utrecht') print(name)

compiles to a SELECT over customers and orders joined by their declared
relation. Compiled queries can be printed, watched or run against a
SQLite, DuckDB or PostgreSQL target.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" || cmd.Name() == "version" {
				return nil
			}

			cfg, err := config.Load(config.LoadOptions{
				File:  cfgFile,
				Flags: cmd.Root().PersistentFlags(),
			})
			if err != nil {
				return err
			}

			logger := NewLogger(cmd.ErrOrStderr(), cfg.Verbose)
			if cfg.File != "" {
				logger.Debug("using config file", "path", cfg.File)
			}
			logger.Debug("configuration loaded", "environment", cfg.Environment, "target", cfg.Target.Type)

			cmd.SetContext(commands.WithEnv(cmd.Context(), &commands.Env{Config: cfg, Logger: logger}))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
`)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: ./funcsql.yaml)")
	flags.String("env", "", "Environment name")
	flags.StringP("target", "t", "", "Target database type (sqlite|duckdb|postgres)")
	flags.String("database", "", "Path to the target database (empty for in-memory)")
	flags.String("macros-dir", "", "Path to macros directory")
	flags.Int("max-depth", 0, "Maximum nesting depth of a query")
	flags.Bool("infer-relations", false, "Read join relations from the target's foreign keys")
	flags.Bool("pretty", false, "Print compiled SQL one clause per line")
	flags.BoolP("verbose", "v", false, "Verbose output")
	flags.StringP("output", "o", "", "Result format (table|json|csv|md)")

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"table", "json", "csv", "md"}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("target", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"sqlite", "duckdb", "postgres"}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(commands.NewVersionCommand(Version, BuildDate, GitCommit))
	rootCmd.AddCommand(commands.NewCompileCommand())
	rootCmd.AddCommand(commands.NewRunCommand())
	rootCmd.AddCommand(commands.NewREPLCommand())
	rootCmd.AddCommand(commands.NewWatchCommand())
	rootCmd.AddCommand(commands.NewCommandsCommand())
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// NewLogger creates the text logger commands write diagnostics with.
// Debug records are only emitted when verbose is set.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		styles := output.NewStyles(os.Stderr)
		fmt.Fprintf(os.Stderr, "%s %s\n", styles.Error.Render("Error:"), err)
		return err
	}
	return nil
}

// NewCompletionCommand creates the completion command.
func NewCompletionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for funcsql.

Bash:
  $ source <(funcsql completion bash)

Zsh:
  $ funcsql completion zsh > "${fpath[1]}/_funcsql"

Fish:
  $ funcsql completion fish | source

PowerShell:
  PS> funcsql completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
}
