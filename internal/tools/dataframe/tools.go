// Package dataframe implements the SQL-like table operations exposed to the
// orchestrator: inspection, filtering, grouping, sorting, row selection and
// reset. Every operation reads the session's working table, computes a
// replacement, and atomically swaps it in; a failed operation leaves the
// working table untouched.
package dataframe

import (
	"context"
	"strings"

	"github.com/haasonsaas/chartd/internal/agent"
	"github.com/haasonsaas/chartd/internal/observability"
	"github.com/haasonsaas/chartd/internal/store"
	"github.com/haasonsaas/chartd/internal/tabular"
)

const noDataMessage = "No data loaded."

// deps carries the shared dependencies of every dataframe tool.
type deps struct {
	store *store.Store
	log   *observability.Logger
}

// All constructs the full dataframe tool set backed by the given store.
func All(st *store.Store, log *observability.Logger) []agent.Tool {
	d := deps{store: st, log: log}
	return []agent.Tool{
		// Inspection
		&InspectTool{d},
		&ColumnValuesTool{d},
		&NumericSummaryTool{d},
		&CountRowsTool{d},
		// Filtering
		&FilterEqualsTool{d},
		&FilterComparisonTool{d},
		&FilterRangeTool{d},
		&FilterDateRangeTool{d},
		&FilterInTool{d},
		&FilterContainsTool{d},
		&DropNullsTool{d},
		// Row selection
		&LastNTool{d},
		&TopNTool{d},
		&LimitTool{d},
		&DistinctTool{d},
		// Transformation
		&GroupAggregateTool{d},
		&SortTool{d},
		&SelectColumnsTool{d},
		// Reset
		&ResetTool{d},
	}
}

// current resolves the session from the context and returns its working
// table. The third return is non-nil when the operation must stop: no
// session bound, or no data loaded. An empty table is still data; zero
// matching rows from an earlier filter is not a failure.
func (d deps) current(ctx context.Context) (string, *tabular.Table, *agent.ToolResult) {
	sid := observability.GetSessionID(ctx)
	if sid == "" {
		return "", nil, agent.Errorf("no session bound to this request")
	}
	tbl := d.store.Current(sid)
	if tbl == nil {
		return sid, nil, &agent.ToolResult{Content: noDataMessage, IsError: true}
	}
	return sid, tbl, nil
}

// columnList formats column names the way they appear in error messages.
func columnList(cols []string) string {
	return "[" + strings.Join(cols, ", ") + "]"
}

// valueList formats values the way they appear in result messages.
func valueList(vals []tabular.Value) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = v.Text()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// columnNotFound builds the standard missing-column result, enumerating the
// valid alternatives.
func columnNotFound(tbl *tabular.Table, column string) *agent.ToolResult {
	return agent.Errorf("Column '%s' not found. Available: %s", column, columnList(tbl.Columns()))
}

// splitTrimmed splits a comma-separated argument into trimmed items.
func splitTrimmed(s string) []string {
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func boolWord(ascending bool) string {
	if ascending {
		return "ascending"
	}
	return "descending"
}
