package api

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/starford/wunjo/internal/fileservice"
)

const maxBodyBytes = 10 << 20
const maxUploadBytes = 50 << 20

// FileHandler serves the /api/files routes.
type FileHandler struct {
	svc *fileservice.Service
}

func NewFileHandler(svc *fileservice.Service) *FileHandler {
	return &FileHandler{svc: svc}
}

// List handles GET /api/files/list?path=.
func (h *FileHandler) List(w http.ResponseWriter, r *http.Request) {
	dir := r.URL.Query().Get("path")
	items, err := h.svc.List(r.Context(), dir)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"path":  dir,
		"items": items,
	})
}

// Tree handles GET /api/files/tree?path=.
func (h *FileHandler) Tree(w http.ResponseWriter, r *http.Request) {
	dir := r.URL.Query().Get("path")
	nodes, err := h.svc.Tree(r.Context(), dir)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"path": dir,
		"tree": nodes,
	})
}

// Content handles GET /api/files/content?path=.
func (h *FileHandler) Content(w http.ResponseWriter, r *http.Request) {
	p := r.URL.Query().Get("path")
	if p == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	fc, err := h.svc.Content(r.Context(), p)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, fc)
}

// Create handles POST /api/files/create.
func (h *FileHandler) Create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req FileCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	fc, err := h.svc.Create(r.Context(), req.Path, []byte(req.Content))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, fc)
}

// Update handles POST /api/files/update. The optional If-Match header turns
// the default last-write-wins overwrite into a checksum-guarded one.
func (h *FileHandler) Update(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req FileCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	ifMatch := strings.Trim(r.Header.Get("If-Match"), `"`)
	fc, err := h.svc.Update(r.Context(), req.Path, []byte(req.Content), ifMatch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, fc)
}

// Delete handles POST /api/files/delete.
func (h *FileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var req PathRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	if err := h.svc.Delete(r.Context(), req.Path); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "deleted " + req.Path,
	})
}

// CreateFolder handles POST /api/files/create-folder.
func (h *FileHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	var req PathRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	if err := h.svc.CreateFolder(r.Context(), req.Path); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{
		"message": "created folder " + req.Path,
	})
}

// Move handles POST /api/files/move.
func (h *FileHandler) Move(w http.ResponseWriter, r *http.Request) {
	var req MoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.OldPath == "" || req.NewPath == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("old_path and new_path are required"))
		return
	}
	if err := h.svc.Move(r.Context(), req.OldPath, req.NewPath); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"old_path": req.OldPath,
		"new_path": req.NewPath,
	})
}

// Upload handles POST /api/files/upload (multipart, fields "file" and "path").
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("file too large or invalid multipart"))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("missing 'file' field in multipart form"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read upload"))
		return
	}

	dir := r.FormValue("path")
	entry, err := h.svc.Upload(r.Context(), dir, header.Filename, data)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"filename": entry.Name,
		"path":     entry.Path,
		"size":     entry.Size,
	})
}

// Download handles GET /api/files/download?path=.
func (h *FileHandler) Download(w http.ResponseWriter, r *http.Request) {
	p := r.URL.Query().Get("path")
	if p == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	data, entry, err := h.svc.Download(r.Context(), p)
	if err != nil {
		writeError(w, err)
		return
	}

	ctype := mime.TypeByExtension(path.Ext(entry.Name))
	if ctype == "" {
		ctype = "application/octet-stream"
	}
	w.Header().Set("Content-Type", ctype)
	w.Header().Set("Content-Disposition", `attachment; filename="`+entry.Name+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
