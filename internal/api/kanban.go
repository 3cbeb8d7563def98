package api

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/wunjo/internal/kanban"
)

// KanbanHandler serves the /api/kanban routes.
type KanbanHandler struct {
	store *kanban.Store
}

func NewKanbanHandler(store *kanban.Store) *KanbanHandler {
	return &KanbanHandler{store: store}
}

// wildcardPath extracts the file path from the URL wildcard, tolerating
// encoded slashes from clients that escape the whole path segment.
func wildcardPath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// Board handles GET /api/kanban/board/*.
func (h *KanbanHandler) Board(w http.ResponseWriter, r *http.Request) {
	path := wildcardPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	board, err := h.store.Board(path)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}

// SaveBoard handles PUT /api/kanban/board/*: replaces the whole board.
func (h *KanbanHandler) SaveBoard(w http.ResponseWriter, r *http.Request) {
	path := wildcardPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	var board kanban.Board
	if err := json.NewDecoder(r.Body).Decode(&board); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := h.store.SaveBoard(path, &board); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, BoardResponse{Message: "board saved", Board: &board})
}

// AddItem handles POST /api/kanban/item/*.
func (h *KanbanHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	path := wildcardPath(r)
	var req KanbanItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || path == "" || req.Lane == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path and lane are required"))
		return
	}
	if req.Text == "" {
		req.Text = "New task"
	}
	board, err := h.store.AddCard(path, req.Lane, req.Text, req.Completed)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, BoardResponse{Message: "item added", Board: board})
}

// UpdateItem handles PUT /api/kanban/item/*.
func (h *KanbanHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	path := wildcardPath(r)
	var req KanbanUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || path == "" || req.Lane == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path and lane are required"))
		return
	}
	board, err := h.store.UpdateCard(path, req.Lane, req.Index, kanban.CardUpdate{
		Text:      req.Text,
		Completed: req.Completed,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, BoardResponse{Message: "item updated", Board: board})
}

// DeleteItem handles DELETE /api/kanban/item/*.
func (h *KanbanHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	path := wildcardPath(r)
	var req KanbanItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || path == "" || req.Lane == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path and lane are required"))
		return
	}
	index := -1
	if req.Index != nil {
		index = *req.Index
	}
	board, err := h.store.DeleteCard(path, req.Lane, req.Text, index)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, BoardResponse{Message: "item deleted", Board: board})
}

// MoveItem handles PUT /api/kanban/move/*.
func (h *KanbanHandler) MoveItem(w http.ResponseWriter, r *http.Request) {
	path := wildcardPath(r)
	var req KanbanMoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || path == "" ||
		req.SourceLane == "" || req.TargetLane == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path, sourceLane and targetLane are required"))
		return
	}
	board, err := h.store.MoveCard(path, req.SourceLane, req.SourceIndex, req.TargetLane, req.TargetIndex)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, BoardResponse{Message: "item moved", Board: board})
}
