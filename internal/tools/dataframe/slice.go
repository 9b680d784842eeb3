package dataframe

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/haasonsaas/chartd/internal/agent"
	"github.com/haasonsaas/chartd/internal/tabular"
)

// TopNTool keeps the n rows with the most extreme values of a column,
// presented in sorted order. Ties break by original row order; null cells
// are never candidates.
type TopNTool struct{ deps }

func (t *TopNTool) Name() string { return "get_top_n" }

func (t *TopNTool) Description() string {
	return "Get top N rows by a column value. (SQL: ORDER BY col DESC LIMIT n)"
}

func (t *TopNTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"n": {"type": "integer", "minimum": 1, "description": "Number of rows to return"},
			"sort_column": {"type": "string", "description": "Column to sort by"},
			"ascending": {"type": "boolean", "description": "False for top (highest), true for bottom (lowest)"}
		},
		"required": ["n", "sort_column"],
		"additionalProperties": false
	}`)
}

func (t *TopNTool) Execute(ctx context.Context, params json.RawMessage) (*agent.ToolResult, error) {
	var args struct {
		N         int    `json:"n"`
		Column    string `json:"sort_column"`
		Ascending bool   `json:"ascending"`
	}
	if err := json.Unmarshal(params, &args); err != nil {
		return agent.Errorf("invalid parameters: %v", err), nil
	}

	sid, tbl, fail := t.current(ctx)
	if fail != nil {
		return fail, nil
	}
	if !tbl.HasColumn(args.Column) {
		return columnNotFound(tbl, args.Column), nil
	}

	idx, _ := tbl.ColumnIndex(args.Column)
	order := make([]int, 0, tbl.NumRows())
	for i := 0; i < tbl.NumRows(); i++ {
		if !tbl.Row(i)[idx].IsNull() {
			order = append(order, i)
		}
	}
	sort.SliceStable(order, func(a, b int) bool {
		cmp := tbl.Row(order[a])[idx].Compare(tbl.Row(order[b])[idx])
		if args.Ascending {
			return cmp < 0
		}
		return cmp > 0
	})
	if args.N < len(order) {
		order = order[:args.N]
	}

	result := tabular.New(tbl.Columns())
	for _, i := range order {
		result.AppendRow(tbl.Row(i))
	}
	t.store.SetCurrent(sid, result)

	direction := "Top"
	if args.Ascending {
		direction = "Bottom"
	}
	t.log.Info(ctx, "kept extreme rows", "n", args.N, "column", args.Column, "ascending", args.Ascending)
	return agent.Textf("%s %d rows by %s:\n%s", direction, args.N, args.Column, result.Render()), nil
}

// LimitTool keeps the first n rows.
type LimitTool struct{ deps }

func (t *LimitTool) Name() string { return "limit_rows" }

func (t *LimitTool) Description() string {
	return "Limit the dataset to first N rows. (SQL: LIMIT n)"
}

func (t *LimitTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"n": {"type": "integer", "minimum": 1, "description": "Maximum number of rows to keep"}
		},
		"required": ["n"],
		"additionalProperties": false
	}`)
}

func (t *LimitTool) Execute(ctx context.Context, params json.RawMessage) (*agent.ToolResult, error) {
	var args struct {
		N int `json:"n"`
	}
	if err := json.Unmarshal(params, &args); err != nil {
		return agent.Errorf("invalid parameters: %v", err), nil
	}

	sid, tbl, fail := t.current(ctx)
	if fail != nil {
		return fail, nil
	}

	result := tbl.Head(args.N)
	t.store.SetCurrent(sid, result)

	t.log.Info(ctx, "limited rows", "n", args.N, "before", tbl.NumRows(), "after", result.NumRows())
	return agent.Textf("Limited to first %d rows:\n%s", result.NumRows(), result.Render()), nil
}

// DistinctTool keeps the first row for each distinct value of a column,
// preserving first-occurrence order.
type DistinctTool struct{ deps }

func (t *DistinctTool) Name() string { return "get_distinct" }

func (t *DistinctTool) Description() string {
	return "Get distinct/unique rows based on a column. (SQL: SELECT DISTINCT)"
}

func (t *DistinctTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"column": {"type": "string", "description": "Column to get distinct values from"}
		},
		"required": ["column"],
		"additionalProperties": false
	}`)
}

func (t *DistinctTool) Execute(ctx context.Context, params json.RawMessage) (*agent.ToolResult, error) {
	var args struct {
		Column string `json:"column"`
	}
	if err := json.Unmarshal(params, &args); err != nil {
		return agent.Errorf("invalid parameters: %v", err), nil
	}

	sid, tbl, fail := t.current(ctx)
	if fail != nil {
		return fail, nil
	}
	if !tbl.HasColumn(args.Column) {
		return columnNotFound(tbl, args.Column), nil
	}

	idx, _ := tbl.ColumnIndex(args.Column)
	seen := make(map[string]bool, tbl.NumRows())
	result := tbl.Filter(func(r tabular.Row) bool {
		key := distinctKey(r[idx])
		if seen[key] {
			return false
		}
		seen[key] = true
		return true
	})
	t.store.SetCurrent(sid, result)

	t.log.Info(ctx, "kept distinct rows", "column", args.Column,
		"before", tbl.NumRows(), "after", result.NumRows())
	return agent.Textf("Got %d distinct rows by '%s':\n%s",
		result.NumRows(), args.Column, result.Render()), nil
}

// distinctKey buckets int and float cells with equal numeric value
// together, matching Value.Equal.
func distinctKey(v tabular.Value) string {
	if f, ok := v.Float64(); ok {
		return sprintfKey(f)
	}
	return v.Kind().String() + ":" + v.Text()
}

func sprintfKey(f float64) string {
	return "num:" + tabular.Float(f).Text()
}
