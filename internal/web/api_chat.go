package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/haasonsaas/chartd/internal/observability"
	"github.com/haasonsaas/chartd/internal/sheets"
	"github.com/haasonsaas/chartd/internal/store"
	"github.com/haasonsaas/chartd/internal/tabular"
	"github.com/haasonsaas/chartd/internal/themes"
)

// ChatRequest is the POST /api/chat payload. Data is kept raw so row key
// order survives decoding.
type ChatRequest struct {
	Message   string          `json:"message"`
	SessionID string          `json:"session_id"`
	Data      json.RawMessage `json:"data,omitempty"`
	SheetURL  string          `json:"sheet_url,omitempty"`
	Theme     string          `json:"theme,omitempty"`
}

// ChatResponse is the POST /api/chat result.
type ChatResponse struct {
	Response  string `json:"response"`
	ChartURL  string `json:"chart_url,omitempty"`
	SessionID string `json:"session_id"`
}

func (h *Handler) chat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.jsonError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Message == "" || req.SessionID == "" {
		h.jsonError(w, "message and session_id are required", http.StatusBadRequest)
		return
	}

	ctx := observability.AddSessionID(r.Context(), req.SessionID)
	log := h.config.Logger
	log.Info(ctx, "chat request", "message_len", len(req.Message))

	if err := h.applyRequestData(ctx, req.SessionID, req.SheetURL, req.Data); err != nil {
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	theme := req.Theme
	if theme == "" {
		theme = themes.DefaultName
	}
	if err := h.config.Store.SetTheme(req.SessionID, theme); err != nil {
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.config.Runtime.Run(ctx, req.Message)
	if err != nil {
		log.Error(ctx, "chat failed", "error", err)
		h.jsonError(w, "Chat request failed", http.StatusInternalServerError)
		return
	}

	h.jsonResponse(w, ChatResponse{
		Response:  result.Response,
		ChartURL:  result.ChartURL,
		SessionID: req.SessionID,
	})
}

// applyRequestData loads the request's data inputs into the session. A
// sheet URL takes precedence; when the fetch fails the handler falls
// back to inline data and clears the session's data source.
func (h *Handler) applyRequestData(ctx context.Context, sessionID, sheetURL string, data json.RawMessage) error {
	if sheetURL != "" && h.config.Sheets != nil {
		sheetID, gid, err := sheets.ParseURL(sheetURL)
		if err != nil {
			return err
		}
		records, err := h.config.Sheets.Fetch(ctx, sheetID, gid)
		if err != nil {
			var fetchErr *sheets.FetchError
			if !errors.As(err, &fetchErr) {
				return err
			}
			h.config.Logger.Warn(ctx, "sheet fetch failed, falling back to inline data", "error", err)
			h.config.Store.SetDataSource(sessionID, nil)
		} else {
			h.config.Store.Load(sessionID, records)
			h.config.Store.SetDataSource(sessionID, &store.DataSource{
				Type:    "google_sheets",
				SheetID: sheetID,
				GID:     gid,
			})
			return nil
		}
	}

	if len(data) > 0 {
		records, err := tabular.DecodeRecords(data)
		if err != nil {
			return err
		}
		h.config.Store.Load(sessionID, records)
		h.config.Store.SetDataSource(sessionID, nil)
	}
	return nil
}
