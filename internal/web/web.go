// Package web is the HTTP surface: chat, data loading, theme listing,
// chart lifecycle, layout composition, static chart serving, health and
// metrics.
package web

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/haasonsaas/chartd/internal/charts"
	"github.com/haasonsaas/chartd/internal/observability"
	"github.com/haasonsaas/chartd/internal/orchestrator"
	"github.com/haasonsaas/chartd/internal/render"
	"github.com/haasonsaas/chartd/internal/sheets"
	"github.com/haasonsaas/chartd/internal/store"
)

// Config carries the handler's dependencies.
type Config struct {
	Store          *store.Store
	Runtime        *orchestrator.Runtime
	Charts         *charts.Manager
	Renderer       *render.Renderer
	Sheets         *sheets.Client
	Logger         *observability.Logger
	Metrics        *observability.Metrics
	AllowedOrigins []string
}

// Handler routes all HTTP endpoints.
type Handler struct {
	config Config
	mux    *http.ServeMux
}

// NewHandler builds the route table.
func NewHandler(cfg Config) *Handler {
	h := &Handler{config: cfg, mux: http.NewServeMux()}

	h.mux.HandleFunc("/health", h.health)
	h.mux.HandleFunc("/api/chat", h.chat)
	h.mux.HandleFunc("/api/data/load", h.loadData)
	h.mux.HandleFunc("/api/themes", h.listThemes)
	h.mux.HandleFunc("/api/charts/trash", h.listTrash)
	h.mux.HandleFunc("/api/charts/trash/", h.restoreChart)
	h.mux.HandleFunc("/api/charts/", h.deleteChart)
	h.mux.HandleFunc("/api/layouts", h.composeLayout)
	h.mux.HandleFunc("/api/regenerate", h.regenerate)
	h.mux.HandleFunc("/api/reset/", h.resetSession)
	h.mux.HandleFunc("/api/sessions/", h.sessionHistory)

	if cfg.Renderer != nil {
		fs := http.FileServer(http.Dir(cfg.Renderer.Dir()))
		h.mux.Handle(render.ChartURLPrefix, http.StripPrefix(render.ChartURLPrefix, fs))
	}
	if cfg.Metrics != nil {
		h.mux.Handle("/metrics", cfg.Metrics.Handler())
	}
	return h
}

// ServeHTTP applies the middleware chain around the route table.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	handler := h.requestIDMiddleware(h.corsMiddleware(h.loggingMiddleware(h.mux)))
	handler.ServeHTTP(w, r)
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	h.jsonResponse(w, map[string]string{"status": "ok"})
}

func (h *Handler) jsonResponse(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.config.Logger.Error(context.Background(), "json encode error", "error", err)
	}
}

func (h *Handler) jsonError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
