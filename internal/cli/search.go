package cli

import (
	"strings"

	"stacks-cli/internal/catalog"

	"github.com/spf13/cobra"
)

func newSearchCmd(app *App) *cobra.Command {
	var fieldName string

	cmd := &cobra.Command{
		Use:   "search [text]",
		Short: "Search the catalog (no text: full catalog)",
		Args:  cobra.MaximumNArgs(1),
		Example: strings.TrimSpace(`
  # Full catalog
  stacks search

  # Filter on one field
  stacks search "Kernighan" --field author
  stacks search 9780134190440 --field isbn
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			field, err := catalog.ParseQueryField(fieldName)
			if err != nil {
				return writeErr(cmd, err)
			}

			text := ""
			if len(args) == 1 {
				text = args[0]
			}

			items, err := app.client().Search(cmd.Context(), field, text)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, items)
		},
	}

	cmd.Flags().StringVar(&fieldName, "field", "title", "Field to filter on (id|title|isbn|author|publisher|extra)")
	return cmd
}
