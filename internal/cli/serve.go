package cli

import (
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"stacks-cli/internal/server"
	"stacks-cli/internal/store"

	"github.com/spf13/cobra"
)

func newServeCmd(app *App) *cobra.Command {
	var addr string
	var dbPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the catalog service (sqlite-backed)",
		Example: strings.TrimSpace(`
  # Serve ./books.db on the default client address
  stacks serve --addr 127.0.0.1:8073 --db ./books.db
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			listenAddr := strings.TrimSpace(addr)
			if listenAddr == "" {
				return writeErr(cmd, errors.New("serve: missing --addr"))
			}

			db, err := store.Open(cmd.Context(), dbPath)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer db.Close()

			ln, err := net.Listen("tcp", listenAddr)
			if err != nil {
				return writeErr(cmd, err)
			}

			_ = writeOut(cmd, app, map[string]any{
				"addr": ln.Addr().String(),
				"db":   dbPath,
			})

			srv := &http.Server{
				Handler:           server.New(db).Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}
			if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return writeErr(cmd, err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8073", "Listen address")
	cmd.Flags().StringVar(&dbPath, "db", "./books.db", "Path to the sqlite database file")
	return cmd
}
