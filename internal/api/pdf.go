package api

import (
	"net/http"

	"github.com/starford/wunjo/internal/pdf"
)

// PDFHandler serves GET /api/pdf/export/*.
type PDFHandler struct {
	exporter *pdf.Exporter
}

func NewPDFHandler(exporter *pdf.Exporter) *PDFHandler {
	return &PDFHandler{exporter: exporter}
}

// Export converts a markdown file to PDF and returns it as a download.
func (h *PDFHandler) Export(w http.ResponseWriter, r *http.Request) {
	path := wildcardPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	data, filename, err := h.exporter.Export(r.Context(), path)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
