package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"stacks-cli/internal/catalog"
	"stacks-cli/internal/model"

	"github.com/spf13/cobra"
)

// itemFlags binds the writable item fields to flags, shared between add and
// modify.
type itemFlags struct {
	title, isbn, author, publisher, desc, cover, price, extra string
}

func (f *itemFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.title, "title", "", "Title")
	cmd.Flags().StringVar(&f.isbn, "isbn", "", "ISBN")
	cmd.Flags().StringVar(&f.author, "author", "", "Author")
	cmd.Flags().StringVar(&f.publisher, "publisher", "", "Publisher")
	cmd.Flags().StringVar(&f.desc, "desc", "", "Description")
	cmd.Flags().StringVar(&f.cover, "cover", "", "Cover URL or path")
	cmd.Flags().StringVar(&f.price, "price", "", "Price (non-negative decimal)")
	cmd.Flags().StringVar(&f.extra, "extra", "", "Free-form extra data")
}

// apply overlays set flags onto it, leaving untouched fields as they are.
func (f *itemFlags) apply(cmd *cobra.Command, it *model.Item) error {
	if cmd.Flags().Changed("title") {
		it.Title = f.title
	}
	if cmd.Flags().Changed("isbn") {
		it.ISBN = f.isbn
	}
	if cmd.Flags().Changed("author") {
		it.Author = f.author
	}
	if cmd.Flags().Changed("publisher") {
		it.Publisher = f.publisher
	}
	if cmd.Flags().Changed("desc") {
		it.Desc = f.desc
	}
	if cmd.Flags().Changed("cover") {
		it.Cover = f.cover
	}
	if cmd.Flags().Changed("extra") {
		it.Extra = f.extra
	}
	if cmd.Flags().Changed("price") {
		p, err := model.ParsePrice(f.price)
		if err != nil {
			return err
		}
		it.Price = p
	}
	return nil
}

func newAddCmd(app *App) *cobra.Command {
	flags := &itemFlags{}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an item to the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var it model.Item
			if err := flags.apply(cmd, &it); err != nil {
				return writeErr(cmd, err)
			}

			id, err := app.client().Add(cmd.Context(), it)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]int64{"id": id})
		},
	}

	flags.register(cmd)
	return cmd
}

func newModifyCmd(app *App) *cobra.Command {
	flags := &itemFlags{}

	cmd := &cobra.Command{
		Use:   "modify <id>",
		Short: "Modify an item; only the given flags change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(strings.TrimSpace(args[0]), 10, 64)
			if err != nil || id <= 0 {
				return writeErr(cmd, fmt.Errorf("bad item id %q", args[0]))
			}

			c := app.client()

			// The modify endpoint takes a full record, so fetch the current
			// one and overlay the set flags.
			current, err := c.Search(cmd.Context(), catalog.QueryID, strconv.FormatInt(id, 10))
			if err != nil {
				return writeErr(cmd, err)
			}
			if len(current) == 0 {
				return writeErr(cmd, fmt.Errorf("item %d not found", id))
			}
			it := current[0]
			if err := flags.apply(cmd, &it); err != nil {
				return writeErr(cmd, err)
			}

			if err := c.Modify(cmd.Context(), it); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, it)
		},
	}

	flags.register(cmd)
	return cmd
}

func newDeleteCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>...",
		Short: "Delete items from the catalog",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]int64, 0, len(args))
			for _, a := range args {
				id, err := strconv.ParseInt(strings.TrimSpace(a), 10, 64)
				if err != nil || id <= 0 {
					return writeErr(cmd, fmt.Errorf("bad item id %q", a))
				}
				ids = append(ids, id)
			}

			// Destructive, so gate on an explicit confirmation.
			if !yes {
				ok, err := confirmDeletion(cmd, len(ids))
				if err != nil {
					return writeErr(cmd, err)
				}
				if !ok {
					return writeOut(cmd, app, map[string]any{"deleted": []int64{}, "aborted": true})
				}
			}

			c := app.client()
			for _, id := range ids {
				if err := c.Delete(cmd.Context(), id); err != nil {
					return writeErr(cmd, err)
				}
			}
			return writeOut(cmd, app, map[string][]int64{"deleted": ids})
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Skip the confirmation prompt")
	return cmd
}

func confirmDeletion(cmd *cobra.Command, n int) (bool, error) {
	fmt.Fprintf(cmd.ErrOrStderr(), "delete %d item(s)? [y/N] ", n)
	r := bufio.NewReader(cmd.InOrStdin())
	line, err := r.ReadString('\n')
	if err != nil && line == "" {
		return false, errors.New("no confirmation input")
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
