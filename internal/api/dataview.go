package api

import (
	"encoding/json"
	"net/http"

	"github.com/starford/wunjo/internal/dataview"
)

// DataviewHandler serves POST /api/dataview/query.
type DataviewHandler struct {
	engine *dataview.Engine
}

func NewDataviewHandler(engine *dataview.Engine) *DataviewHandler {
	return &DataviewHandler{engine: engine}
}

// Query parses and executes a dataview query over the vault.
func (h *DataviewHandler) Query(w http.ResponseWriter, r *http.Request) {
	var req DataviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Query == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query is required"))
		return
	}
	result, err := h.engine.Execute(dataview.ParseQuery(req.Query), req.Folder)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
