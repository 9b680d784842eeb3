package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/haasonsaas/chartd/internal/charts"
	"github.com/haasonsaas/chartd/internal/observability"
	"github.com/haasonsaas/chartd/internal/render"
	"github.com/haasonsaas/chartd/internal/store"
)

func newTestHandler(t *testing.T) (*Handler, *charts.Manager, string) {
	t.Helper()
	dir := t.TempDir()
	chartsDir := filepath.Join(dir, "charts")
	trashDir := filepath.Join(dir, "trash")
	log := observability.NewNopLogger()

	renderer, err := render.New(chartsDir, log, nil)
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}
	manager, err := charts.New(chartsDir, trashDir, 7*24*time.Hour, log, nil)
	if err != nil {
		t.Fatalf("charts manager: %v", err)
	}
	h := NewHandler(Config{
		Store:          store.New(),
		Charts:         manager,
		Renderer:       renderer,
		Logger:         log,
		AllowedOrigins: []string{"http://localhost:3000"},
	})
	return h, manager, chartsDir
}

func writeChartFiles(t *testing.T, dir, stem string) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, stem+".png"), buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write image: %v", err)
	}
	meta := fmt.Sprintf(`{"chart_type":"bar","title":"t","chart_url":"/static/charts/%s.png"}`, stem)
	if err := os.WriteFile(filepath.Join(dir, stem+".json"), []byte(meta), 0o644); err != nil {
		t.Fatalf("write sidecar: %v", err)
	}
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	h, _, _ := newTestHandler(t)
	rec := doJSON(t, h, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" {
		t.Fatalf("status field = %q", body["status"])
	}
}

func TestListThemes(t *testing.T) {
	h, _, _ := newTestHandler(t)
	rec := doJSON(t, h, http.MethodGet, "/api/themes", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		Themes  []map[string]any `json:"themes"`
		Default string           `json:"default"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Default != "meli_dark" {
		t.Fatalf("default theme = %q", body.Default)
	}
	if len(body.Themes) == 0 {
		t.Fatal("no themes listed")
	}
}

func TestLoadDataInline(t *testing.T) {
	h, _, _ := newTestHandler(t)
	req := map[string]any{
		"session_id": "s1",
		"data": []map[string]any{
			{"region": "north", "sales": 100},
			{"region": "south", "sales": 200},
		},
	}
	rec := doJSON(t, h, http.MethodPost, "/api/data/load", req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var body LoadDataResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Rows != 2 {
		t.Fatalf("rows = %d, want 2", body.Rows)
	}
	if len(body.Columns) != 2 || body.Columns[0] != "region" {
		t.Fatalf("columns = %v", body.Columns)
	}
}

func TestLoadDataRequiresInput(t *testing.T) {
	h, _, _ := newTestHandler(t)
	rec := doJSON(t, h, http.MethodPost, "/api/data/load", map[string]any{"session_id": "s1"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestDeleteUnknownChart(t *testing.T) {
	h, _, _ := newTestHandler(t)
	rec := doJSON(t, h, http.MethodDelete, "/api/charts/chart_missing.png", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestDeleteInvalidFilename(t *testing.T) {
	h, _, _ := newTestHandler(t)
	rec := doJSON(t, h, http.MethodDelete, "/api/charts/evil.png", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestChartTrashRoundTrip(t *testing.T) {
	h, _, chartsDir := newTestHandler(t)
	writeChartFiles(t, chartsDir, "chart_roundtrip_000001")

	rec := doJSON(t, h, http.MethodDelete, "/api/charts/chart_roundtrip_000001.png", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, h, http.MethodGet, "/api/charts/trash", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("trash status = %d", rec.Code)
	}
	var trash struct {
		Trash []charts.TrashEntry `json:"trash"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &trash); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(trash.Trash) != 1 {
		t.Fatalf("trash entries = %d, want 1", len(trash.Trash))
	}

	rec = doJSON(t, h, http.MethodPost, "/api/charts/trash/chart_roundtrip_000001/restore", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("restore status = %d, body %s", rec.Code, rec.Body.String())
	}
	var restored map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &restored); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if url, _ := restored["chart_url"].(string); !strings.HasSuffix(url, "chart_roundtrip_000001.png") {
		t.Fatalf("chart_url = %v", restored["chart_url"])
	}
	if _, err := os.Stat(filepath.Join(chartsDir, "chart_roundtrip_000001.png")); err != nil {
		t.Fatalf("image not restored: %v", err)
	}
}

func TestComposeLayoutSlotMismatch(t *testing.T) {
	h, _, chartsDir := newTestHandler(t)
	writeChartFiles(t, chartsDir, "chart_one_000001")
	req := LayoutRequest{
		LayoutType:     "grid",
		ChartFilenames: []string{"chart_one_000001.png"},
	}
	rec := doJSON(t, h, http.MethodPost, "/api/layouts", req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestComposeLayoutMissingImage(t *testing.T) {
	h, _, _ := newTestHandler(t)
	req := LayoutRequest{
		LayoutType:     "full",
		ChartFilenames: []string{"chart_missing_000001.png"},
	}
	rec := doJSON(t, h, http.MethodPost, "/api/layouts", req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestComposeLayoutGrid(t *testing.T) {
	h, _, chartsDir := newTestHandler(t)
	for i := 1; i <= 4; i++ {
		writeChartFiles(t, chartsDir, fmt.Sprintf("chart_grid_00000%d", i))
	}
	req := LayoutRequest{
		LayoutType: "grid",
		ChartFilenames: []string{
			"chart_grid_000001.png", "chart_grid_000002.png",
			"chart_grid_000003.png", "chart_grid_000004.png",
		},
	}
	rec := doJSON(t, h, http.MethodPost, "/api/layouts", req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var body LayoutResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.HasPrefix(body.ChartURL, render.ChartURLPrefix) {
		t.Fatalf("chart_url = %q", body.ChartURL)
	}

	name := strings.TrimPrefix(body.ChartURL, render.ChartURLPrefix)
	raw, err := os.ReadFile(filepath.Join(chartsDir, strings.TrimSuffix(name, ".png")+".json"))
	if err != nil {
		t.Fatalf("sidecar: %v", err)
	}
	var meta render.Metadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		t.Fatalf("decode sidecar: %v", err)
	}
	if meta.ChartType != "layout" || meta.LayoutType != "grid" {
		t.Fatalf("sidecar meta = %+v", meta)
	}
	if len(meta.SourceCharts) != 4 {
		t.Fatalf("source charts = %v", meta.SourceCharts)
	}
}

func TestCORSPreflight(t *testing.T) {
	h, _, _ := newTestHandler(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Fatalf("allow-origin = %q", got)
	}
}

func TestCORSDisallowedOrigin(t *testing.T) {
	h, _, _ := newTestHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("allow-origin = %q, want empty", got)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	h, _, _ := newTestHandler(t)
	for _, path := range []string{"/api/chat", "/api/data/load", "/api/layouts", "/api/regenerate", "/api/reset/s1"} {
		rec := doJSON(t, h, http.MethodGet, path, nil)
		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("%s status = %d, want 405", path, rec.Code)
		}
	}
	rec := doJSON(t, h, http.MethodPost, "/api/themes", nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("/api/themes status = %d, want 405", rec.Code)
	}
}
