package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/haasonsaas/chartd/internal/charts"
	"github.com/haasonsaas/chartd/internal/layout"
	"github.com/haasonsaas/chartd/internal/render"
)

// LayoutRequest is the POST /api/layouts payload.
type LayoutRequest struct {
	LayoutType     string   `json:"layout_type"`
	ChartFilenames []string `json:"chart_filenames"`
	Title          string   `json:"title,omitempty"`
}

// LayoutResponse reports the composed image.
type LayoutResponse struct {
	ChartURL   string `json:"chart_url"`
	LayoutType string `json:"layout_type"`
}

func (h *Handler) composeLayout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req LayoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.jsonError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.LayoutType == "" {
		h.jsonError(w, "layout_type is required", http.StatusBadRequest)
		return
	}

	stems := make([]string, 0, len(req.ChartFilenames))
	paths := make([]string, 0, len(req.ChartFilenames))
	for _, name := range req.ChartFilenames {
		stem, err := charts.Stem(name)
		if err != nil {
			h.jsonError(w, fmt.Sprintf("invalid chart filename %q", name), http.StatusBadRequest)
			return
		}
		stems = append(stems, stem+".png")
		paths = append(paths, h.config.Charts.ImagePath(stem))
	}

	img, err := layout.Compose(req.LayoutType, paths)
	if err != nil {
		h.layoutError(w, err)
		return
	}

	title := req.Title
	if title == "" {
		title = "Layout"
	}
	url, err := h.config.Renderer.SaveImage(r.Context(), img, render.Metadata{
		ChartType:    "layout",
		Title:        title,
		LayoutType:   req.LayoutType,
		SourceCharts: stems,
		RowCount:     len(stems),
	})
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.jsonResponse(w, LayoutResponse{ChartURL: url, LayoutType: req.LayoutType})
}

func (h *Handler) layoutError(w http.ResponseWriter, err error) {
	var unknown *layout.UnknownTypeError
	var count *layout.SlotCountError
	var missing *layout.ImageNotFoundError
	switch {
	case errors.As(err, &unknown), errors.As(err, &count):
		h.jsonError(w, err.Error(), http.StatusBadRequest)
	case errors.As(err, &missing):
		h.jsonError(w, err.Error(), http.StatusNotFound)
	default:
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
	}
}
