package web

import (
	"encoding/json"
	"net/http"

	"github.com/haasonsaas/chartd/internal/observability"
	"github.com/haasonsaas/chartd/internal/themes"
)

// LoadDataRequest is the POST /api/data/load payload.
type LoadDataRequest struct {
	SessionID string          `json:"session_id"`
	Data      json.RawMessage `json:"data,omitempty"`
	SheetURL  string          `json:"sheet_url,omitempty"`
}

// LoadDataResponse summarizes what was loaded.
type LoadDataResponse struct {
	SessionID string   `json:"session_id"`
	Rows      int      `json:"rows"`
	Columns   []string `json:"columns"`
}

func (h *Handler) loadData(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req LoadDataRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.jsonError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.SessionID == "" {
		h.jsonError(w, "session_id is required", http.StatusBadRequest)
		return
	}
	if len(req.Data) == 0 && req.SheetURL == "" {
		h.jsonError(w, "data or sheet_url is required", http.StatusBadRequest)
		return
	}

	ctx := observability.AddSessionID(r.Context(), req.SessionID)
	if err := h.applyRequestData(ctx, req.SessionID, req.SheetURL, req.Data); err != nil {
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	tbl := h.config.Store.Current(req.SessionID)
	if tbl == nil {
		h.jsonError(w, "No data loaded", http.StatusBadRequest)
		return
	}
	h.config.Logger.Info(ctx, "data loaded", "rows", tbl.NumRows(), "columns", tbl.NumCols())
	h.jsonResponse(w, LoadDataResponse{
		SessionID: req.SessionID,
		Rows:      tbl.NumRows(),
		Columns:   tbl.Columns(),
	})
}

func (h *Handler) listThemes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.jsonResponse(w, map[string]any{"themes": themes.List(), "default": themes.DefaultName})
}
