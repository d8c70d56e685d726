package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"stacks-cli/internal/model"

	_ "modernc.org/sqlite"
)

// textSearchColumns are the columns matched by substring on search; id is
// matched exactly.
var textSearchColumns = map[string]bool{
	"title":     true,
	"isbn":      true,
	"author":    true,
	"publisher": true,
	"extra":     true,
}

// DB is a sqlite-backed catalog store.
type DB struct {
	sql *sql.DB
}

// Open opens (and if needed creates) the catalog database at path.
func Open(ctx context.Context, path string) (*DB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("store: empty database path")
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL enables one writer + many readers; busy_timeout helps avoid
	// "database is locked" flakiness when the CLI and a server share a file.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &DB{sql: db}, nil
}

func (d *DB) Close() error { return d.sql.Close() }

func migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS books (
		title TEXT NOT NULL,
		isbn TEXT NOT NULL,
		author TEXT NOT NULL,
		publisher TEXT NOT NULL,
		"desc" TEXT NOT NULL,
		cover TEXT NOT NULL,
		price REAL NOT NULL,
		extra TEXT NOT NULL,
		id INTEGER PRIMARY KEY AUTOINCREMENT
	);`)
	return err
}

// Add inserts a new item and returns its assigned id.
func (d *DB) Add(ctx context.Context, it model.Item) (int64, error) {
	res, err := d.sql.ExecContext(ctx,
		`INSERT INTO books (title, isbn, author, publisher, "desc", cover, price, extra)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		it.Title, it.ISBN, it.Author, it.Publisher, it.Desc, it.Cover, it.Price, it.Extra)
	if err != nil {
		return 0, fmt.Errorf("store: add: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("store: add: %w", err)
	}
	return id, nil
}

// Modify replaces the content fields of the item with the given id.
// Modifying an unknown id is not an error; it applies to nothing
// (mirrors DELETE/UPDATE semantics of the underlying table).
func (d *DB) Modify(ctx context.Context, it model.Item) error {
	if it.ID == 0 {
		return errors.New("store: modify: missing item id")
	}
	_, err := d.sql.ExecContext(ctx,
		`UPDATE books SET title = ?, isbn = ?, author = ?, publisher = ?, "desc" = ?, cover = ?, price = ?, extra = ?
		 WHERE id = ?`,
		it.Title, it.ISBN, it.Author, it.Publisher, it.Desc, it.Cover, it.Price, it.Extra, it.ID)
	if err != nil {
		return fmt.Errorf("store: modify: %w", err)
	}
	return nil
}

// Delete removes the item with the given id.
func (d *DB) Delete(ctx context.Context, id int64) error {
	if _, err := d.sql.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, id); err != nil {
		return fmt.Errorf("store: delete: %w", err)
	}
	return nil
}

// Search returns items matching every entry of filter, ordered by id. Text
// columns match by substring, id matches exactly. An empty filter returns
// the full catalog. Filter keys outside the searchable set are rejected.
func (d *DB) Search(ctx context.Context, filter map[string]string) ([]model.Item, error) {
	query := `SELECT id, title, isbn, author, publisher, "desc", cover, price, extra FROM books`
	var conds []string
	var args []any
	for col, val := range filter {
		switch {
		case col == "id":
			id, err := strconv.ParseInt(strings.TrimSpace(val), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("store: search: bad id %q", val)
			}
			conds = append(conds, "id = ?")
			args = append(args, id)
		case textSearchColumns[col]:
			conds = append(conds, col+" LIKE ? ESCAPE '\\'")
			args = append(args, "%"+escapeLike(val)+"%")
		default:
			return nil, fmt.Errorf("store: search: unknown field %q", col)
		}
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY id"

	rows, err := d.sql.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: search: %w", err)
	}
	defer rows.Close()

	items := []model.Item{}
	for rows.Next() {
		var it model.Item
		if err := rows.Scan(&it.ID, &it.Title, &it.ISBN, &it.Author, &it.Publisher, &it.Desc, &it.Cover, &it.Price, &it.Extra); err != nil {
			return nil, fmt.Errorf("store: search: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: search: %w", err)
	}
	return items, nil
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

// IsSearchable reports whether col may appear in a Search filter.
func IsSearchable(col string) bool {
	return col == "id" || textSearchColumns[col]
}
