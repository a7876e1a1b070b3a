package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/leapstack-labs/funcsql/internal/cli/output"
	"github.com/leapstack-labs/funcsql/pkg/adapter"
	"github.com/leapstack-labs/funcsql/pkg/compiler"
	"github.com/spf13/cobra"
)

const (
	prompt         = "funcsql> "
	continuePrompt = "    ...> "
	historyFile    = ".funcsql_history"
)

// REPLOptions holds options for the repl command.
type REPLOptions struct {
	Execute bool
}

// NewREPLCommand creates the repl command.
func NewREPLCommand() *cobra.Command {
	opts := &REPLOptions{}

	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Compile queries interactively",
		Long: `Start an interactive session. Each query is compiled and its SQL printed;
with --exec (or .run) it is also run against the target.

A query continues over several lines until its brackets are balanced.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runREPL(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Execute, "exec", false, "Run each query against the target")

	return cmd
}

// session is the state of one REPL.
type session struct {
	env     *Env
	out     io.Writer
	errOut  io.Writer
	comp    *compiler.Compiler
	db      adapter.Adapter
	styles  *output.Styles
	execute bool
	pretty  bool
}

func newSession(cmd *cobra.Command, env *Env) (*session, error) {
	comp, err := env.NewCompiler()
	if err != nil {
		return nil, err
	}
	return &session{
		env:    env,
		out:    cmd.OutOrStdout(),
		errOut: cmd.ErrOrStderr(),
		comp:   comp,
		styles: output.NewStyles(cmd.ErrOrStderr()),
		pretty: env.Config.Pretty,
	}, nil
}

func (s *session) close() {
	if s.db != nil {
		_ = s.db.Close()
	}
}

func runREPL(cmd *cobra.Command, opts *REPLOptions) error {
	ctx := cmd.Context()
	env := getEnv(cmd)

	s, err := newSession(cmd, env)
	if err != nil {
		return err
	}
	defer s.close()

	if opts.Execute {
		if err := s.connect(ctx); err != nil {
			return err
		}
		s.execute = true
	}

	promptStyle := output.NewStyles(s.out).Prompt
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          promptStyle.Render(prompt),
		HistoryFile:     filepath.Join(env.Config.ProjectRoot, historyFile),
		AutoComplete:    s.completer(),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
		Stdout:          s.out,
		Stderr:          s.errOut,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	_, _ = fmt.Fprintln(s.out, "funcsql REPL")
	_, _ = fmt.Fprintln(s.out, "Type .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(s.out)

	var buf strings.Builder
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			buf.Reset()
			rl.SetPrompt(promptStyle.Render(prompt))
			continue
		}
		if err != nil {
			break
		}

		if buf.Len() > 0 {
			buf.WriteString(" ")
		}
		buf.WriteString(strings.TrimSpace(line))
		if !balanced(buf.String()) {
			rl.SetPrompt(promptStyle.Render(continuePrompt))
			continue
		}
		rl.SetPrompt(promptStyle.Render(prompt))

		input := buf.String()
		buf.Reset()
		if s.handle(ctx, input) {
			break
		}
	}
	return nil
}

// handle processes one complete input and reports whether to quit.
func (s *session) handle(ctx context.Context, input string) bool {
	input = strings.TrimSpace(input)
	switch {
	case input == "":
		return false
	case strings.HasPrefix(input, "."):
		return s.dotCommand(ctx, input)
	}

	sql, err := s.comp.Compile(input)
	if err != nil {
		_, _ = fmt.Fprintln(s.errOut, output.Lines(s.styles.Error, err.Error()))
		return false
	}
	if s.pretty {
		sql = prettySQL(sql)
	}
	_, _ = fmt.Fprintln(s.out, sql)

	if s.execute {
		if err := executeAndRender(ctx, s.out, s.db, sql, s.env.Config.Output); err != nil {
			_, _ = fmt.Fprintln(s.errOut, s.styles.Error.Render("Error: "+err.Error()))
		}
	}
	_, _ = fmt.Fprintln(s.out)
	return false
}

func (s *session) dotCommand(ctx context.Context, line string) bool {
	parts := strings.Fields(line)
	switch strings.ToLower(parts[0]) {
	case ".quit", ".exit":
		return true

	case ".help":
		printREPLHelp(s.out)

	case ".commands":
		infos, err := describeCommands(s.env)
		if err != nil {
			_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
			break
		}
		renderCommands(s.out, infos)

	case ".relations":
		for _, r := range s.comp.Relations().All() {
			if r.IsDefault() {
				_, _ = fmt.Fprintf(s.out, "*.%s = *.%s\n", r.Column1, r.Column2)
				continue
			}
			_, _ = fmt.Fprintf(s.out, "%s.%s = %s.%s\n", r.Table1, r.Column1, r.Table2, r.Column2)
		}

	case ".relation":
		if len(parts) != 5 {
			_, _ = fmt.Fprintln(s.errOut, "Usage: .relation <table1> <column1> <table2> <column2>")
			break
		}
		if err := s.comp.AddRelation(parts[1], parts[2], parts[3], parts[4]); err != nil {
			_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
		}

	case ".run":
		if !s.execute {
			if err := s.connect(ctx); err != nil {
				_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
				break
			}
		}
		s.execute = !s.execute
		_, _ = fmt.Fprintf(s.out, "run: %s\n", onOff(s.execute))

	case ".pretty":
		s.pretty = !s.pretty
		_, _ = fmt.Fprintf(s.out, "pretty: %s\n", onOff(s.pretty))

	default:
		_, _ = fmt.Fprintf(s.errOut, "Unknown command: %s (type .help for commands)\n", parts[0])
	}
	return false
}

// connect opens the target once. Relations inferred from it are added to
// the session compiler.
func (s *session) connect(ctx context.Context) error {
	if s.db != nil {
		return nil
	}
	before := len(s.env.inferred)
	db, err := openTarget(ctx, s.env)
	if err != nil {
		return err
	}
	for _, r := range s.env.inferred[before:] {
		if err := s.comp.AddRelation(r.Table1, r.Column1, r.Table2, r.Column2); err != nil {
			_ = db.Close()
			return err
		}
	}
	s.db = db
	return nil
}

func (s *session) completer() *readline.PrefixCompleter {
	var items []readline.PrefixCompleterInterface
	for _, name := range s.comp.Commands() {
		items = append(items, readline.PcItem(name+"("))
	}
	for _, dot := range []string{".help", ".commands", ".relations", ".relation", ".run", ".pretty", ".quit", ".exit"} {
		items = append(items, readline.PcItem(dot))
	}
	return readline.NewPrefixCompleter(items...)
}

// balanced reports whether every bracket outside quotes is closed.
func balanced(s string) bool {
	depth := 0
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == '(':
			depth++
		case c == ')':
			depth--
		}
	}
	return depth <= 0 && quote == 0
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func printREPLHelp(w io.Writer) {
	help := `
Commands:
  .help                      Show this help message
  .commands                  List the available commands
  .relations                 List the declared relations
  .relation t1 c1 t2 c2      Declare a relation for this session
  .run                       Toggle running queries against the target
  .pretty                    Toggle formatted SQL
  .quit / .exit              Exit the REPL

Tips:
  - A query continues over lines until its brackets are balanced
  - Use arrow keys to navigate history
  - Tab completion works for command names
`
	_, _ = fmt.Fprintln(w, help)
}
