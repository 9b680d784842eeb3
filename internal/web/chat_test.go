package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/haasonsaas/chartd/internal/agent"
	"github.com/haasonsaas/chartd/internal/observability"
	"github.com/haasonsaas/chartd/internal/orchestrator"
	"github.com/haasonsaas/chartd/internal/sheets"
	"github.com/haasonsaas/chartd/internal/store"
)

type textProvider struct {
	reply string
}

func (p *textProvider) Complete(ctx context.Context, system string, messages []orchestrator.Message, tools []agent.Tool) (*orchestrator.Turn, error) {
	return &orchestrator.Turn{Text: p.reply}, nil
}

func newChatHandler(t *testing.T, st *store.Store, sheetsClient *sheets.Client) *Handler {
	t.Helper()
	log := observability.NewNopLogger()
	runtime := orchestrator.NewRuntime(&textProvider{reply: "The total is 300."}, agent.NewRegistry(), log, nil, 4)
	return NewHandler(Config{
		Store:   st,
		Runtime: runtime,
		Sheets:  sheetsClient,
		Logger:  log,
	})
}

func TestChatLoadsInlineData(t *testing.T) {
	st := store.New()
	h := newChatHandler(t, st, nil)

	req := map[string]any{
		"message":    "sum the sales",
		"session_id": "chat-1",
		"data": []map[string]any{
			{"region": "north", "sales": 100},
			{"region": "south", "sales": 200},
		},
	}
	rec := doJSON(t, h, http.MethodPost, "/api/chat", req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var body ChatResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Response != "The total is 300." {
		t.Fatalf("response = %q", body.Response)
	}
	if body.SessionID != "chat-1" {
		t.Fatalf("session_id = %q", body.SessionID)
	}

	tbl := st.Current("chat-1")
	if tbl == nil || tbl.NumRows() != 2 {
		t.Fatalf("session data not loaded: %v", tbl)
	}
	if st.DataSourceFor("chat-1") != nil {
		t.Fatal("inline data should clear the data source")
	}
}

func TestChatRequiresMessageAndSession(t *testing.T) {
	h := newChatHandler(t, store.New(), nil)
	rec := doJSON(t, h, http.MethodPost, "/api/chat", map[string]any{"message": "hi"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestChatRejectsUnknownTheme(t *testing.T) {
	h := newChatHandler(t, store.New(), nil)
	req := map[string]any{
		"message":    "hi",
		"session_id": "chat-2",
		"theme":      "no_such_theme",
	}
	rec := doJSON(t, h, http.MethodPost, "/api/chat", req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestChatSheetFetch(t *testing.T) {
	csv := "region,sales\nnorth,100\nsouth,200\n"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(csv))
	}))
	defer srv.Close()

	st := store.New()
	h := newChatHandler(t, st, sheets.NewClientWithBase(srv.URL, observability.NewNopLogger()))

	req := map[string]any{
		"message":    "plot it",
		"session_id": "chat-3",
		"sheet_url":  "https://docs.google.com/spreadsheets/d/abc123/edit#gid=0",
	}
	rec := doJSON(t, h, http.MethodPost, "/api/chat", req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	src := st.DataSourceFor("chat-3")
	if src == nil || src.Type != "google_sheets" || src.SheetID != "abc123" {
		t.Fatalf("data source = %+v", src)
	}
	tbl := st.Current("chat-3")
	if tbl == nil || tbl.NumRows() != 2 {
		t.Fatal("sheet data not loaded")
	}
}

func TestChatSheetFetchFallsBackToInline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	st := store.New()
	h := newChatHandler(t, st, sheets.NewClientWithBase(srv.URL, observability.NewNopLogger()))

	req := map[string]any{
		"message":    "plot it",
		"session_id": "chat-4",
		"sheet_url":  "https://docs.google.com/spreadsheets/d/blocked/edit",
		"data": []map[string]any{
			{"region": "north", "sales": 100},
		},
	}
	rec := doJSON(t, h, http.MethodPost, "/api/chat", req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	if st.DataSourceFor("chat-4") != nil {
		t.Fatal("failed fetch should clear the data source")
	}
	tbl := st.Current("chat-4")
	if tbl == nil || tbl.NumRows() != 1 {
		t.Fatal("inline fallback data not loaded")
	}
	if !strings.Contains(rec.Body.String(), "The total is 300.") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestSessionHistoryAfterChat(t *testing.T) {
	st := store.New()
	h := newChatHandler(t, st, nil)

	req := map[string]any{
		"message":    "sum the sales",
		"session_id": "hist-1",
		"data":       []map[string]any{{"region": "north", "sales": 100}},
	}
	if rec := doJSON(t, h, http.MethodPost, "/api/chat", req); rec.Code != http.StatusOK {
		t.Fatalf("chat status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec := doJSON(t, h, http.MethodGet, "/api/sessions/hist-1/history", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("history status = %d", rec.Code)
	}
	var body struct {
		SessionID string         `json:"session_id"`
		History   []HistoryEntry `json:"history"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.SessionID != "hist-1" || len(body.History) != 2 {
		t.Fatalf("history = %+v", body)
	}
	if body.History[0].Role != "user" || body.History[0].Content != "sum the sales" {
		t.Fatalf("first entry = %+v", body.History[0])
	}
	if body.History[1].Role != "assistant" || body.History[1].Content != "The total is 300." {
		t.Fatalf("second entry = %+v", body.History[1])
	}
}

func TestResetSessionClearsStateAndHistory(t *testing.T) {
	st := store.New()
	h := newChatHandler(t, st, nil)

	req := map[string]any{
		"message":    "hello",
		"session_id": "reset-1",
		"data":       []map[string]any{{"region": "north", "sales": 100}},
	}
	if rec := doJSON(t, h, http.MethodPost, "/api/chat", req); rec.Code != http.StatusOK {
		t.Fatalf("chat status = %d", rec.Code)
	}
	if st.Current("reset-1") == nil {
		t.Fatal("session data missing before reset")
	}

	rec := doJSON(t, h, http.MethodPost, "/api/reset/reset-1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("reset status = %d, body %s", rec.Code, rec.Body.String())
	}
	if st.Current("reset-1") != nil {
		t.Fatal("working table survived reset")
	}

	rec = doJSON(t, h, http.MethodGet, "/api/sessions/reset-1/history", nil)
	var body struct {
		History []HistoryEntry `json:"history"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.History) != 0 {
		t.Fatalf("history survived reset: %+v", body.History)
	}
}

func TestSessionHistoryUnknownSessionIsEmpty(t *testing.T) {
	h := newChatHandler(t, store.New(), nil)
	rec := doJSON(t, h, http.MethodGet, "/api/sessions/never-seen/history", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"history":[]`) {
		t.Fatalf("body = %s", rec.Body.String())
	}
}
