package cli

import (
	"fmt"
	"os"
	"strings"

	"stacks-cli/internal/catalog"
	"stacks-cli/internal/format"
	"stacks-cli/internal/tui"

	"github.com/spf13/cobra"
)

const defaultServer = "http://127.0.0.1:8073"

type App struct {
	Server     string
	PrettyJSON bool
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "stacks",
		Short:        "Book catalog client (CLI + TUI)",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive TUI
  stacks

  # Scriptable commands
  stacks search
  stacks search 9780134190440 --field isbn
  stacks add --title "The Go Programming Language" --price 39.99
  stacks delete 3

  # Run the catalog service itself
  stacks serve --addr 127.0.0.1:8073 --db ./books.db
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return tui.Run(app.client())
			}
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&app.Server, "server", envOr("STACKS_SERVER", defaultServer), "Base URL of the catalog service")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")

	cmd.AddCommand(newSearchCmd(app))
	cmd.AddCommand(newAddCmd(app))
	cmd.AddCommand(newModifyCmd(app))
	cmd.AddCommand(newDeleteCmd(app))
	cmd.AddCommand(newServeCmd(app))

	return cmd
}

func (a *App) client() *catalog.Client {
	return catalog.NewClient(a.Server)
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.WriteJSON(cmd.OutOrStdout(), v, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
