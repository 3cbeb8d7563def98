package api

import (
	"encoding/json"
	"net/http"

	"github.com/starford/wunjo/internal/render"
)

// MarkdownHandler serves the /api/markdown routes.
type MarkdownHandler struct {
	renderer *render.Renderer
}

func NewMarkdownHandler(renderer *render.Renderer) *MarkdownHandler {
	return &MarkdownHandler{renderer: renderer}
}

func decodeMarkdown(w http.ResponseWriter, r *http.Request) (string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req MarkdownRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return "", false
	}
	return req.Content, true
}

// Render handles POST /api/markdown/render: full conversion with the mermaid
// shield applied.
func (h *MarkdownHandler) Render(w http.ResponseWriter, r *http.Request) {
	content, ok := decodeMarkdown(w, r)
	if !ok {
		return
	}
	out, err := h.renderer.Render(content)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Preview handles POST /api/markdown/preview: the unauthenticated variant,
// converted without the mermaid shield.
func (h *MarkdownHandler) Preview(w http.ResponseWriter, r *http.Request) {
	content, ok := decodeMarkdown(w, r)
	if !ok {
		return
	}
	out, err := h.renderer.Preview(content)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
