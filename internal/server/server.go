package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"stacks-cli/internal/model"
	"stacks-cli/internal/store"
)

// Server exposes the catalog store over the HTTP/JSON wire contract the
// client consumes:
//
//	GET  /search[?<field>=<text>]
//	POST /add      item or [item...]           -> {"ids":[...]}
//	POST /modify   item or [item...] with ids  -> {"ids":[...]}
//	POST /delete   id, [id...] or {"ids":[...]} -> {"ids":[...]}
type Server struct {
	db *store.DB
}

func New(db *store.DB) *Server {
	return &Server{db: db}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /search", s.handleSearch)
	mux.HandleFunc("POST /add", s.handleAdd)
	mux.HandleFunc("POST /modify", s.handleModify)
	mux.HandleFunc("POST /delete", s.handleDelete)
	return mux
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	filter := map[string]string{}
	for key, vals := range r.URL.Query() {
		if !store.IsSearchable(key) {
			http.Error(w, fmt.Sprintf("unknown search field %q", key), http.StatusBadRequest)
			return
		}
		if len(vals) > 0 {
			filter[key] = vals[0]
		}
	}

	items, err := s.db.Search(r.Context(), filter)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, items)
}

func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	items, ok := decodeItems(w, r)
	if !ok {
		return
	}
	for _, it := range items {
		if it.ID != 0 {
			http.Error(w, "add payload must not carry an id", http.StatusBadRequest)
			return
		}
	}

	ids := []int64{}
	for _, it := range items {
		id, err := s.db.Add(r.Context(), it)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		ids = append(ids, id)
	}
	writeJSON(w, map[string][]int64{"ids": ids})
}

func (s *Server) handleModify(w http.ResponseWriter, r *http.Request) {
	items, ok := decodeItems(w, r)
	if !ok {
		return
	}

	// Items without an id are skipped rather than rejected; the response's
	// ids list tells the caller what was applied.
	ids := []int64{}
	for _, it := range items {
		if it.ID == 0 {
			continue
		}
		if err := s.db.Modify(r.Context(), it); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		ids = append(ids, it.ID)
	}
	writeJSON(w, map[string][]int64{"ids": ids})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		http.Error(w, "read body", http.StatusBadRequest)
		return
	}
	ids, err := parseDeleteIDs(body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	deleted := []int64{}
	for _, id := range ids {
		if err := s.db.Delete(r.Context(), id); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		deleted = append(deleted, id)
	}
	writeJSON(w, map[string][]int64{"ids": deleted})
}

// decodeItems accepts a single item object or an array of them.
func decodeItems(w http.ResponseWriter, r *http.Request) ([]model.Item, bool) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		http.Error(w, "read body", http.StatusBadRequest)
		return nil, false
	}

	var many []model.Item
	if err := json.Unmarshal(body, &many); err == nil {
		return many, true
	}
	var one model.Item
	if err := json.Unmarshal(body, &one); err == nil {
		return []model.Item{one}, true
	}
	http.Error(w, "invalid JSON", http.StatusBadRequest)
	return nil, false
}

// parseDeleteIDs accepts the delete body forms the original service took:
// a bare id, a list of ids (or of {"id":...} objects), or {"ids":[...]}.
func parseDeleteIDs(body []byte) ([]int64, error) {
	var bare int64
	if err := json.Unmarshal(body, &bare); err == nil {
		return []int64{bare}, nil
	}

	var list []json.RawMessage
	if err := json.Unmarshal(body, &list); err == nil {
		ids := []int64{}
		for _, raw := range list {
			var id int64
			if err := json.Unmarshal(raw, &id); err == nil {
				ids = append(ids, id)
				continue
			}
			var obj struct {
				ID *int64 `json:"id"`
			}
			if err := json.Unmarshal(raw, &obj); err == nil && obj.ID != nil {
				ids = append(ids, *obj.ID)
			}
		}
		return ids, nil
	}

	var wrapped struct {
		IDs []int64 `json:"ids"`
	}
	if err := json.Unmarshal(body, &wrapped); err == nil {
		return wrapped.IDs, nil
	}
	return nil, fmt.Errorf("invalid delete payload")
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers are already out; nothing useful left to do.
		return
	}
}
