package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"stacks-cli/internal/model"
	"stacks-cli/internal/server"
	"stacks-cli/internal/store"
)

func newCatalogServer(t *testing.T) (string, *store.DB) {
	t.Helper()
	db, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "books.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	srv := httptest.NewServer(server.New(db).Handler())
	t.Cleanup(srv.Close)
	return srv.URL, db
}

func runCmd(t *testing.T, srvURL, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append(args, "--server", srvURL))
	err := cmd.Execute()
	return out.String(), err
}

func TestAddSearchModifyDeleteFlow(t *testing.T) {
	url, _ := newCatalogServer(t)

	out, err := runCmd(t, url, "", "add", "--title", "The Go Programming Language", "--isbn", "978", "--price", "9.5")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	var added struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal([]byte(out), &added); err != nil || added.ID == 0 {
		t.Fatalf("add must report the assigned id, got %q (%v)", out, err)
	}

	out, err = runCmd(t, url, "", "search", "Go", "--field", "title")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	var items []model.Item
	if err := json.Unmarshal([]byte(out), &items); err != nil {
		t.Fatalf("search output: %v", err)
	}
	if len(items) != 1 || items[0].ID != added.ID || items[0].Price != 9.5 {
		t.Fatalf("unexpected search result: %+v", items)
	}

	out, err = runCmd(t, url, "", "modify", "1", "--price", "12")
	if err != nil {
		t.Fatalf("modify: %v", err)
	}
	var modified model.Item
	if err := json.Unmarshal([]byte(out), &modified); err != nil {
		t.Fatalf("modify output: %v", err)
	}
	// Only the price flag was set; everything else stays as stored.
	if modified.Price != 12 || modified.Title != "The Go Programming Language" || modified.ISBN != "978" {
		t.Fatalf("modify must overlay only the given flags: %+v", modified)
	}

	if _, err = runCmd(t, url, "", "delete", "1", "--yes"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	out, err = runCmd(t, url, "", "search")
	if err != nil {
		t.Fatalf("search after delete: %v", err)
	}
	if strings.TrimSpace(out) != "[]" {
		t.Fatalf("catalog must be empty after delete, got %q", out)
	}
}

func TestDeleteAsksBeforeActing(t *testing.T) {
	url, db := newCatalogServer(t)
	if _, err := db.Add(context.Background(), model.Item{Title: "A"}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	// Declined (and anything but an explicit yes is a decline).
	out, err := runCmd(t, url, "n\n", "delete", "1")
	if err != nil {
		t.Fatalf("declined delete: %v", err)
	}
	if !strings.Contains(out, `"aborted":true`) {
		t.Fatalf("declined delete must report aborted, got %q", out)
	}
	items, err := db.Search(context.Background(), nil)
	if err != nil {
		t.Fatalf("search store: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("declined delete must not delete, have %d items", len(items))
	}

	// Confirmed.
	if _, err := runCmd(t, url, "y\n", "delete", "1"); err != nil {
		t.Fatalf("confirmed delete: %v", err)
	}
	items, err = db.Search(context.Background(), nil)
	if err != nil {
		t.Fatalf("search store: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("confirmed delete must delete, have %d items", len(items))
	}
}

func TestBadPriceFlagNeverReachesService(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("no request may reach the service")
	}))
	t.Cleanup(srv.Close)

	if _, err := runCmd(t, srv.URL, "", "add", "--title", "X", "--price", "cheap"); err == nil {
		t.Fatalf("expected a local price validation error")
	}
}
