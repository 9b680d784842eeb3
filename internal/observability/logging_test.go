package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestLoggerIncludesContextFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{Output: &buf, Format: "json"})

	ctx := AddRequestID(context.Background(), "req-1")
	ctx = AddSessionID(ctx, "sess-9")
	logger.Info(ctx, "hello", "k", "v")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("log output not JSON: %v: %s", err, buf.String())
	}
	if record["request_id"] != "req-1" {
		t.Errorf("request_id = %v", record["request_id"])
	}
	if record["session_id"] != "sess-9" {
		t.Errorf("session_id = %v", record["session_id"])
	}
	if record["k"] != "v" {
		t.Errorf("k = %v", record["k"])
	}
}

func TestLoggerRedactsSecrets(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{Output: &buf, Format: "text"})

	key := "sk-ant-" + strings.Repeat("a", 100)
	logger.Info(context.Background(), "key in message "+key)
	if strings.Contains(buf.String(), key) {
		t.Fatalf("API key leaked into log output")
	}
	if !strings.Contains(buf.String(), "[REDACTED]") {
		t.Fatalf("expected redaction marker, got %s", buf.String())
	}
}

func TestLogLevelFromString(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		if got := LogLevelFromString(in); got != want {
			t.Errorf("LogLevelFromString(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestSessionIDRoundTrip(t *testing.T) {
	ctx := context.Background()
	if GetSessionID(ctx) != "" {
		t.Fatalf("empty context should have no session id")
	}
	ctx = AddSessionID(ctx, "s-1")
	if GetSessionID(ctx) != "s-1" {
		t.Fatalf("session id = %q", GetSessionID(ctx))
	}
}

func TestMetricsHandler(t *testing.T) {
	m := NewMetrics()
	m.ToolExecutionCounter.WithLabelValues("filter_data", "success").Inc()
	m.ChartsRendered.WithLabelValues("bar").Inc()
	if m.Handler() == nil {
		t.Fatalf("metrics handler is nil")
	}
	// Two instances must not collide on registration.
	_ = NewMetrics()
}
