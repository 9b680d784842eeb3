package web

import (
	"fmt"
	"net/http"
	"strings"
)

// HistoryEntry is one conversation turn in the shape the history endpoint
// reports.
type HistoryEntry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// POST /api/reset/{session_id} clears the session: working table,
// provenance, theme, and conversation history.
func (h *Handler) resetSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	sessionID := strings.TrimPrefix(r.URL.Path, "/api/reset/")
	if sessionID == "" || strings.Contains(sessionID, "/") {
		h.jsonError(w, "session_id is required", http.StatusBadRequest)
		return
	}

	h.config.Store.Remove(sessionID)
	if h.config.Runtime != nil {
		h.config.Runtime.ClearHistory(sessionID)
	}
	h.jsonResponse(w, map[string]string{
		"status":  "ok",
		"message": fmt.Sprintf("Session %s reset", sessionID),
	})
}

// GET /api/sessions/{session_id}/history returns the session's
// conversation so far. Tool-call bookkeeping turns are elided; only the
// text exchange is reported.
func (h *Handler) sessionHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/api/sessions/")
	sessionID, ok := strings.CutSuffix(rest, "/history")
	if !ok || sessionID == "" || strings.Contains(sessionID, "/") {
		h.jsonError(w, "session_id is required", http.StatusBadRequest)
		return
	}

	history := []HistoryEntry{}
	if h.config.Runtime != nil {
		for _, msg := range h.config.Runtime.History(sessionID) {
			if msg.Content == "" {
				continue
			}
			history = append(history, HistoryEntry{Role: msg.Role, Content: msg.Content})
		}
	}
	h.jsonResponse(w, map[string]any{"session_id": sessionID, "history": history})
}
