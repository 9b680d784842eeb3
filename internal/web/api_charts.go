package web

import (
	"errors"
	"net/http"
	"strings"

	"github.com/haasonsaas/chartd/internal/charts"
)

// DELETE /api/charts/{filename} moves a chart to the trash.
func (h *Handler) deleteChart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		h.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	filename := strings.TrimPrefix(r.URL.Path, "/api/charts/")
	if filename == "" {
		h.jsonError(w, "filename is required", http.StatusBadRequest)
		return
	}

	if err := h.config.Charts.Delete(r.Context(), filename); err != nil {
		h.chartError(w, err)
		return
	}
	h.jsonResponse(w, map[string]string{"status": "deleted", "filename": filename})
}

// GET /api/charts/trash lists trashed charts, newest first.
func (h *Handler) listTrash(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	entries, err := h.config.Charts.ListTrash(r.Context())
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []charts.TrashEntry{}
	}
	h.jsonResponse(w, map[string]any{"trash": entries})
}

// POST /api/charts/trash/{filename}/restore moves a chart back out of
// the trash.
func (h *Handler) restoreChart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/api/charts/trash/")
	filename, ok := strings.CutSuffix(rest, "/restore")
	if !ok || filename == "" {
		h.jsonError(w, "filename is required", http.StatusBadRequest)
		return
	}

	url, meta, err := h.config.Charts.Restore(r.Context(), filename)
	if err != nil {
		h.chartError(w, err)
		return
	}
	h.jsonResponse(w, map[string]any{
		"status":    "restored",
		"filename":  filename,
		"chart_url": url,
		"metadata":  meta,
	})
}

func (h *Handler) chartError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, charts.ErrInvalidFilename):
		h.jsonError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, charts.ErrNotFound):
		h.jsonError(w, err.Error(), http.StatusNotFound)
	default:
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
	}
}
