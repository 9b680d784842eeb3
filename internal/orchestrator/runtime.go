package orchestrator

import (
	"context"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/haasonsaas/chartd/internal/agent"
	"github.com/haasonsaas/chartd/internal/observability"
)

const systemPrompt = `You are a data visualization assistant with SQL-like data manipulation capabilities.

WORKFLOW:
1. Use inspect_data to understand the dataset (columns, types, sample rows)
2. Transform data as needed using the tools below
3. Create the chart

DATA TOOLS (SQL equivalents):
- filter_data: WHERE col = value
- filter_comparison: WHERE col > value (supports >, <, >=, <=, !=, ==)
- filter_numeric_range: WHERE col BETWEEN min AND max
- filter_date_range: Date range filtering (e.g., '2026-10-01' to '2026-12-31')
- filter_in: WHERE col IN (val1, val2, ...)
- filter_contains: WHERE col LIKE '%pattern%'
- drop_nulls: WHERE col IS NOT NULL
- group_and_aggregate: GROUP BY col with SUM/AVG/COUNT/MIN/MAX
- sort_data: ORDER BY col ASC/DESC
- get_top_n: ORDER BY col LIMIT n (for top/bottom N)
- limit_rows: LIMIT n
- get_last_n_rows: Last N rows (sorted by date if specified)
- get_distinct: SELECT DISTINCT
- select_columns: SELECT col1, col2
- count_rows: SELECT COUNT(*)
- reset_data: Undo all transformations, return to original data

CHART TYPES:
- Bar: comparing categories
- Line: trends over time
- Distribution: proportions (horizontal bars with percentages)
- Area: cumulative/volume data

Be efficient - use the most direct tool for the task. Minimize tool calls.
After filtering/transforming, create the visualization.`

// chartURLPattern matches chart references in tool results.
var chartURLPattern = regexp.MustCompile(`/static/charts/[^\s"',)]+\.png`)

// ToolTrace records one executed tool call.
type ToolTrace struct {
	Name    string `json:"name"`
	Content string `json:"content"`
	IsError bool   `json:"is_error,omitempty"`
}

// Result is the outcome of one conversation turn.
type Result struct {
	Response string
	ChartURL string
	Trace    []ToolTrace
}

// Runtime runs the tool-calling loop against a Provider. Conversations
// are threaded per session key: each Run continues from the messages the
// session has accumulated.
type Runtime struct {
	provider Provider
	registry *agent.Registry
	log      *observability.Logger
	metrics  *observability.Metrics
	maxTurns int

	mu      sync.Mutex
	history map[string][]Message
}

// NewRuntime wires a runtime. maxTurns bounds the number of model round
// trips per request.
func NewRuntime(provider Provider, registry *agent.Registry, log *observability.Logger, metrics *observability.Metrics, maxTurns int) *Runtime {
	if maxTurns <= 0 {
		maxTurns = 16
	}
	return &Runtime{
		provider: provider,
		registry: registry,
		log:      log,
		metrics:  metrics,
		maxTurns: maxTurns,
		history:  make(map[string][]Message),
	}
}

// History returns a copy of the session's accumulated conversation.
func (r *Runtime) History(sessionID string) []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.history[sessionID]...)
}

// ClearHistory discards the session's conversation.
func (r *Runtime) ClearHistory(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.history, sessionID)
}

func (r *Runtime) saveHistory(sessionID string, messages []Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.history[sessionID] = messages
}

// Run drives the conversation for one user message. The session key must
// already be on the context; tools resolve their working table through it
// and the conversation continues from that session's history.
func (r *Runtime) Run(ctx context.Context, userMessage string) (*Result, error) {
	sessionID := observability.GetSessionID(ctx)
	messages := append(r.History(sessionID), Message{Role: "user", Content: userMessage})
	tools := r.registry.Catalog()
	result := &Result{}

	for turn := 0; turn < r.maxTurns; turn++ {
		reply, err := r.provider.Complete(ctx, systemPrompt, messages, tools)
		if err != nil {
			return nil, err
		}

		if len(reply.ToolCalls) == 0 {
			result.Response = strings.TrimSpace(reply.Text)
			if result.Response == "" && result.ChartURL != "" {
				result.Response = "Chart generated successfully."
			}
			messages = append(messages, Message{Role: "assistant", Content: result.Response})
			r.saveHistory(sessionID, messages)
			return result, nil
		}

		messages = append(messages, Message{
			Role:      "assistant",
			Content:   reply.Text,
			ToolCalls: reply.ToolCalls,
		})

		results := make([]ToolResultMsg, 0, len(reply.ToolCalls))
		for _, call := range reply.ToolCalls {
			res := r.execute(ctx, call)
			results = append(results, ToolResultMsg{
				ToolCallID: call.ID,
				Content:    res.Content,
				IsError:    res.IsError,
			})
			result.Trace = append(result.Trace, ToolTrace{
				Name:    call.Name,
				Content: res.Content,
				IsError: res.IsError,
			})
			if url := chartURLPattern.FindString(res.Content); url != "" && !res.IsError {
				result.ChartURL = url
			}
		}
		messages = append(messages, Message{Role: "user", ToolResults: results})
	}

	r.log.Warn(ctx, "turn budget exhausted", "max_turns", r.maxTurns)
	result.Response = "I could not finish within the allowed number of steps."
	messages = append(messages, Message{Role: "assistant", Content: result.Response})
	r.saveHistory(sessionID, messages)
	return result, nil
}

func (r *Runtime) execute(ctx context.Context, call ToolCall) *agent.ToolResult {
	start := time.Now()
	res, err := r.registry.Execute(ctx, call.Name, call.Input)
	if err != nil {
		r.log.Error(ctx, "tool execution failed", "tool", call.Name, "error", err)
		res = agent.Errorf("tool %s failed: %v", call.Name, err)
	}

	if r.metrics != nil {
		status := "ok"
		if res.IsError {
			status = "error"
		}
		r.metrics.ToolExecutionCounter.WithLabelValues(call.Name, status).Inc()
		r.metrics.ToolExecutionDuration.WithLabelValues(call.Name).Observe(time.Since(start).Seconds())
	}
	r.log.Debug(ctx, "tool executed", "tool", call.Name, "is_error", res.IsError)
	return res
}
