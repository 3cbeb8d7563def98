package api

import (
	"encoding/json"
	"net/http"

	"github.com/starford/wunjo/internal/search"
)

const defaultContentSearchLimit = 100

// SearchHandler serves the /api/search routes.
type SearchHandler struct {
	searcher *search.Searcher
}

func NewSearchHandler(searcher *search.Searcher) *SearchHandler {
	return &SearchHandler{searcher: searcher}
}

func decodeSearch(w http.ResponseWriter, r *http.Request) (*SearchRequest, bool) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return nil, false
	}
	if req.Query == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query is required"))
		return nil, false
	}
	if len(req.Extensions) == 0 {
		req.Extensions = []string{".md"}
	}
	return &req, true
}

func (h *SearchHandler) run(w http.ResponseWriter, req *SearchRequest, limit int) {
	results, err := h.searcher.SearchFiles(req.Folder, req.Query, req.Extensions, req.CaseSensitive, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"query":         req.Query,
		"results":       results,
		"total_files":   len(results),
		"total_matches": search.TotalMatches(results),
	})
}

// Files handles POST /api/search/files: exhaustive search.
func (h *SearchHandler) Files(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeSearch(w, r)
	if !ok {
		return
	}
	h.run(w, req, 0)
}

// Content handles POST /api/search/content: same search with a result cap.
func (h *SearchHandler) Content(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeSearch(w, r)
	if !ok {
		return
	}
	limit := req.Limit
	if limit <= 0 {
		limit = defaultContentSearchLimit
	}
	h.run(w, req, limit)
}

// Quick handles POST /api/search/quick: filename-or-content matching.
func (h *SearchHandler) Quick(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Query == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query is required"))
		return
	}
	results, err := h.searcher.QuickSearch(req.Folder, req.Query)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"query":         req.Query,
		"results":       results,
		"total_matches": len(results),
	})
}
