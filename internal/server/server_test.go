package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"stacks-cli/internal/model"
	"stacks-cli/internal/store"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	db, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "books.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	srv := httptest.NewServer(New(db).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", bytes.NewReader([]byte(body)))
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func searchAll(t *testing.T, base string) []model.Item {
	t.Helper()
	resp, err := http.Get(base + "/search")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("search status %d", resp.StatusCode)
	}
	var items []model.Item
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		t.Fatalf("decode search: %v", err)
	}
	return items
}

func TestAddSearchModifyDelete_FullFlow(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/add", `{"title":"A","isbn":"111","author":"x","publisher":"p","desc":"d","cover":"c","price":9.5,"extra":"e"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("add status %d", resp.StatusCode)
	}
	var added struct {
		IDs []int64 `json:"ids"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&added); err != nil {
		t.Fatalf("decode add: %v", err)
	}
	if len(added.IDs) != 1 || added.IDs[0] == 0 {
		t.Fatalf("expected one nonzero assigned id, got %v", added.IDs)
	}
	id := added.IDs[0]

	// Search by isbn finds it; price survives as a number.
	resp2, err := http.Get(srv.URL + "/search?isbn=111")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	defer resp2.Body.Close()
	var found []model.Item
	if err := json.NewDecoder(resp2.Body).Decode(&found); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(found) != 1 || found[0].ID != id || found[0].Price != 9.5 {
		t.Fatalf("unexpected search result: %+v", found)
	}

	// Modify keeps the id, changes the title.
	resp = postJSON(t, srv.URL+"/modify", fmt.Sprintf(`{"id":%d,"title":"B","isbn":"111","author":"x","publisher":"p","desc":"d","cover":"c","price":9.5,"extra":"e"}`, id))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("modify status %d", resp.StatusCode)
	}
	items := searchAll(t, srv.URL)
	if len(items) != 1 || items[0].Title != "B" || items[0].ID != id {
		t.Fatalf("modify not applied: %+v", items)
	}

	// Delete with the bare identifier body.
	resp = postJSON(t, srv.URL+"/delete", fmt.Sprintf("%d", id))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete status %d", resp.StatusCode)
	}
	if items := searchAll(t, srv.URL); len(items) != 0 {
		t.Fatalf("expected empty catalog, got %+v", items)
	}
}

func TestSearch_EmptyCatalogReturnsArrayNotNull(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/search")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	defer resp.Body.Close()
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		t.Fatalf("read: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Fatalf("expected [], got %q", buf.String())
	}
}

func TestSearch_UnknownFieldRejected(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/search?price=9.5")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown field, got %d", resp.StatusCode)
	}
}

func TestAdd_RejectsIDAndBadJSON(t *testing.T) {
	srv := newTestServer(t)

	if resp := postJSON(t, srv.URL+"/add", `{"id":5,"title":"A"}`); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for add with id, got %d", resp.StatusCode)
	}
	if resp := postJSON(t, srv.URL+"/add", `{not json`); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid JSON, got %d", resp.StatusCode)
	}
}

func TestAdd_AcceptsBatch(t *testing.T) {
	srv := newTestServer(t)
	resp := postJSON(t, srv.URL+"/add", `[{"title":"A"},{"title":"B"}]`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("batch add status %d", resp.StatusCode)
	}
	var added struct {
		IDs []int64 `json:"ids"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&added); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(added.IDs) != 2 {
		t.Fatalf("expected two ids, got %v", added.IDs)
	}
}

func TestDelete_AcceptsAllPayloadForms(t *testing.T) {
	srv := newTestServer(t)

	var ids []int64
	for _, title := range []string{"A", "B", "C"} {
		resp := postJSON(t, srv.URL+"/add", `{"title":"`+title+`"}`)
		var added struct {
			IDs []int64 `json:"ids"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&added); err != nil {
			t.Fatalf("decode add: %v", err)
		}
		ids = append(ids, added.IDs[0])
	}

	cases := []string{
		fmt.Sprintf("%d", ids[0]),
		fmt.Sprintf("[%d]", ids[1]),
		fmt.Sprintf(`{"ids":[%d]}`, ids[2]),
	}
	for _, body := range cases {
		if resp := postJSON(t, srv.URL+"/delete", body); resp.StatusCode != http.StatusOK {
			t.Fatalf("delete %q status %d", body, resp.StatusCode)
		}
	}
	if items := searchAll(t, srv.URL); len(items) != 0 {
		t.Fatalf("expected empty catalog, got %+v", items)
	}
}
