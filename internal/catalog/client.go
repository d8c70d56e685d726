package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"stacks-cli/internal/model"
)

// Client talks to a catalog service over HTTP/JSON.
//
// Wire contract:
//   - GET  /search[?<field>=<text>]  -> JSON array of items
//   - POST /add     with an item (no id)
//   - POST /modify  with an item (id required)
//   - POST /delete  with the bare id value as the JSON body
//
// Success is decided by the HTTP status alone; response bodies are parsed
// opportunistically (the add response carries the assigned id when the
// server provides one).
type Client struct {
	baseURL string
	hc      *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		hc:      &http.Client{Timeout: 15 * time.Second},
	}
}

// Search fetches items matching text on the given field. Empty text requests
// the full catalog (no query parameter at all).
func (c *Client) Search(ctx context.Context, field QueryField, text string) ([]model.Item, error) {
	api := c.baseURL + "/search"
	if strings.TrimSpace(text) != "" {
		q := url.Values{}
		q.Set(string(field), strings.TrimSpace(text))
		api += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, api, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus("search", resp); err != nil {
		return nil, err
	}

	var items []model.Item
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("search: decode response: %w", err)
	}
	return items, nil
}

// Add creates a new item and returns the id the server assigned (0 when the
// response body does not carry one).
func (c *Client) Add(ctx context.Context, it model.Item) (int64, error) {
	it.ID = 0 // never send an id on create
	body, err := c.post(ctx, "/add", it)
	if err != nil {
		return 0, err
	}
	return firstAssignedID(body), nil
}

// Modify updates the item identified by it.ID with the given field values.
func (c *Client) Modify(ctx context.Context, it model.Item) error {
	if it.ID == 0 {
		return fmt.Errorf("modify: missing item id")
	}
	_, err := c.post(ctx, "/modify", it)
	return err
}

// Delete removes the item with the given id. The request body is the bare
// identifier value, not an object.
func (c *Client) Delete(ctx context.Context, id int64) error {
	_, err := c.post(ctx, "/delete", id)
	return err
}

func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	op := strings.TrimPrefix(path, "/")

	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%s: encode request: %w", op, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(op, resp); err != nil {
		return nil, err
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	return body, nil
}

func checkStatus(op string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	// Include a short reason when the server sent one.
	reason, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
	msg := strings.TrimSpace(string(reason))
	if msg != "" {
		return fmt.Errorf("%s: server returned %s: %s", op, resp.Status, msg)
	}
	return fmt.Errorf("%s: server returned %s", op, resp.Status)
}

// firstAssignedID extracts an assigned id from an add response. Servers
// respond with either {"ids":[...]} or {"id":...}; both forms are accepted,
// anything else yields 0.
func firstAssignedID(body []byte) int64 {
	var multi struct {
		IDs []int64 `json:"ids"`
	}
	if err := json.Unmarshal(body, &multi); err == nil && len(multi.IDs) > 0 {
		return multi.IDs[0]
	}
	var single struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(body, &single); err == nil {
		return single.ID
	}
	return 0
}
