package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"

	"github.com/haasonsaas/chartd/internal/observability"
	"github.com/haasonsaas/chartd/internal/render"
	"github.com/haasonsaas/chartd/internal/themes"
)

// RegenerateRequest is the POST /api/regenerate payload: re-render a
// chart from the session's working table with explicit parameters, no
// model round trip.
type RegenerateRequest struct {
	SessionID    string `json:"session_id"`
	ChartType    string `json:"chart_type"`
	XColumn      string `json:"x_column,omitempty"`
	YColumn      string `json:"y_column,omitempty"`
	LabelsColumn string `json:"labels_column,omitempty"`
	ValuesColumn string `json:"values_column,omitempty"`
	Title        string `json:"title,omitempty"`
	Theme        string `json:"theme,omitempty"`
}

// RegenerateResponse reports the new chart and its sidecar metadata.
type RegenerateResponse struct {
	ChartURL      string          `json:"chart_url"`
	ChartMetadata render.Metadata `json:"chart_metadata"`
}

func (h *Handler) regenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req RegenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.jsonError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.SessionID == "" {
		h.jsonError(w, "session_id is required", http.StatusBadRequest)
		return
	}

	ctx := observability.AddSessionID(r.Context(), req.SessionID)
	tbl := h.config.Store.Current(req.SessionID)
	if tbl == nil {
		h.jsonError(w, "No data loaded", http.StatusBadRequest)
		return
	}

	themeName := req.Theme
	if themeName == "" {
		themeName = h.config.Store.Theme(req.SessionID)
	}
	th, err := themes.Get(themeName)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	title := req.Title
	var p *plot.Plot
	meta := render.Metadata{
		ChartType:  req.ChartType,
		RowCount:   tbl.NumRows(),
		DataSource: h.config.Store.DataSourceFor(req.SessionID),
	}

	switch req.ChartType {
	case "bar", "line", "area":
		if fail := h.checkColumns(w, tbl.Columns(), tbl.HasColumn, req.XColumn, req.YColumn); fail {
			return
		}
		if title == "" {
			title = map[string]string{"bar": "Bar Chart", "line": "Line Chart", "area": "Area Chart"}[req.ChartType]
		}
		switch req.ChartType {
		case "bar":
			p, err = render.Bar(tbl, req.XColumn, req.YColumn, title, th)
		case "line":
			p, err = render.Line(tbl, req.XColumn, req.YColumn, title, th)
		default:
			p, err = render.Area(tbl, req.XColumn, req.YColumn, title, th)
		}
		meta.XColumn = req.XColumn
		meta.YColumn = req.YColumn
	case "distribution":
		if fail := h.checkColumns(w, tbl.Columns(), tbl.HasColumn, req.LabelsColumn, req.ValuesColumn); fail {
			return
		}
		if title == "" {
			title = "Distribution Chart"
		}
		var shown int
		p, shown, err = render.Distribution(tbl, req.LabelsColumn, req.ValuesColumn, title, th)
		meta.LabelsColumn = req.LabelsColumn
		meta.ValuesColumn = req.ValuesColumn
		meta.RowCount = shown
	default:
		h.jsonError(w, fmt.Sprintf("Unknown chart type: %s", req.ChartType), http.StatusBadRequest)
		return
	}
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	meta.Title = title

	url, err := h.config.Renderer.Save(ctx, p, th, meta)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	saved, err := h.savedMetadata(url)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.config.Logger.Info(ctx, "chart regenerated", "chart_type", req.ChartType, "url", url)
	h.jsonResponse(w, RegenerateResponse{ChartURL: url, ChartMetadata: saved})
}

// savedMetadata reads back the sidecar written for a chart URL.
func (h *Handler) savedMetadata(url string) (render.Metadata, error) {
	filename := strings.TrimPrefix(url, render.ChartURLPrefix)
	path := filepath.Join(h.config.Renderer.Dir(), strings.TrimSuffix(filename, ".png")+".json")
	raw, err := os.ReadFile(path)
	if err != nil {
		return render.Metadata{}, fmt.Errorf("reading chart metadata: %w", err)
	}
	var meta render.Metadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return render.Metadata{}, fmt.Errorf("decoding chart metadata: %w", err)
	}
	return meta, nil
}

// checkColumns writes a 400 and reports true when any named column is
// missing from the table.
func (h *Handler) checkColumns(w http.ResponseWriter, available []string, has func(string) bool, columns ...string) bool {
	for _, c := range columns {
		if !has(c) {
			h.jsonError(w, fmt.Sprintf("Column '%s' not found. Available: %v", c, available), http.StatusBadRequest)
			return true
		}
	}
	return false
}
