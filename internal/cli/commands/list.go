package commands

import (
	"encoding/json"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	builtin "github.com/leapstack-labs/funcsql/pkg/commands"
	"github.com/leapstack-labs/funcsql/pkg/extensions/id"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// commandInfo describes one registered command.
type commandInfo struct {
	Name   string `json:"name"`
	Source string `json:"source"`
	Usage  string `json:"usage"`
	Doc    string `json:"doc,omitempty"`
}

// NewCommandsCommand creates the commands command.
func NewCommandsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "commands",
		Short: "List the commands queries can use",
		Long: `List every command a query can use: the built-in commands, bundled
extensions and the macros loaded from the macros directory. Renamed commands
are listed under their configured names.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env := getEnv(cmd)
			infos, err := describeCommands(env)
			if err != nil {
				return err
			}
			if env.Config.Output == "json" {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(infos)
			}
			renderCommands(cmd.OutOrStdout(), infos)
			return nil
		},
	}
}

// describeCommands lists the commands of a configured compiler.
func describeCommands(env *Env) ([]commandInfo, error) {
	comp, err := env.NewCompiler()
	if err != nil {
		return nil, err
	}
	set, err := env.Macros()
	if err != nil {
		return nil, err
	}

	original := make(map[string]string, len(env.Config.Renames))
	for from, to := range env.Config.Renames {
		original[to] = from
	}

	usage := builtin.Usage()
	macros := make(map[string]commandInfo)
	for _, d := range set.Describe() {
		macros[d.Name] = commandInfo{Source: "macro", Usage: d.Signature, Doc: d.Doc}
	}

	names := comp.Commands()
	infos := make([]commandInfo, 0, len(names))
	for _, name := range names {
		key := name
		if from, ok := original[name]; ok {
			key = from
		}

		info := commandInfo{Name: name, Source: "builtin", Usage: usage[key]}
		switch {
		case key == id.Name:
			info.Source = "extension"
			info.Usage = "id([table,] value) id = value"
		case macros[key].Source != "":
			info = macros[key]
			info.Name = name
		}
		infos = append(infos, info)
	}
	return infos, nil
}

func renderCommands(w io.Writer, infos []commandInfo) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Command", "Source", "Usage"})
	title := cases.Title(language.English)
	for _, info := range infos {
		t.AppendRow(table.Row{info.Name, title.String(info.Source), info.Usage})
	}
	t.Render()
}
