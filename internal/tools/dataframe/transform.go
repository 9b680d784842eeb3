package dataframe

import (
	"context"
	"encoding/json"

	"github.com/haasonsaas/chartd/internal/agent"
	"github.com/haasonsaas/chartd/internal/tabular"
)

// GroupAggregateTool groups rows by one column and aggregates another,
// producing a two-column table with one row per group. Groups appear in
// first-occurrence order.
type GroupAggregateTool struct{ deps }

func (t *GroupAggregateTool) Name() string { return "group_and_aggregate" }

func (t *GroupAggregateTool) Description() string {
	return "Group data by a column and aggregate another column."
}

func (t *GroupAggregateTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"group_by": {"type": "string", "description": "Column to group by"},
			"agg_column": {"type": "string", "description": "Column to aggregate"},
			"agg_func": {"type": "string", "enum": ["sum", "mean", "count", "min", "max"], "description": "Aggregation function (default: sum)"}
		},
		"required": ["group_by", "agg_column"],
		"additionalProperties": false
	}`)
}

func (t *GroupAggregateTool) Execute(ctx context.Context, params json.RawMessage) (*agent.ToolResult, error) {
	var args struct {
		GroupBy   string `json:"group_by"`
		AggColumn string `json:"agg_column"`
		AggFunc   string `json:"agg_func"`
	}
	if err := json.Unmarshal(params, &args); err != nil {
		return agent.Errorf("invalid parameters: %v", err), nil
	}
	if args.AggFunc == "" {
		args.AggFunc = "sum"
	}

	sid, tbl, fail := t.current(ctx)
	if fail != nil {
		return fail, nil
	}
	if !tbl.HasColumn(args.GroupBy) || !tbl.HasColumn(args.AggColumn) {
		return agent.Errorf("Column not found. Available: %s", columnList(tbl.Columns())), nil
	}
	if !validAggFunc(args.AggFunc) {
		return agent.Errorf("Invalid agg_func. Use one of: [sum, mean, count, min, max]"), nil
	}

	result := groupAggregate(tbl, args.GroupBy, args.AggColumn, args.AggFunc)
	t.store.SetCurrent(sid, result)

	t.log.Info(ctx, "grouped and aggregated", "group_by", args.GroupBy,
		"agg_column", args.AggColumn, "agg_func", args.AggFunc,
		"before", tbl.NumRows(), "groups", result.NumRows())
	return agent.Textf("Grouped by '%s', %s of '%s':\n%s",
		args.GroupBy, args.AggFunc, args.AggColumn, result.Render()), nil
}

func validAggFunc(fn string) bool {
	switch fn {
	case "sum", "mean", "count", "min", "max":
		return true
	}
	return false
}

type groupAcc struct {
	key     tabular.Value
	sum     float64
	count   int // non-null agg cells
	min     tabular.Value
	max     tabular.Value
	intOnly bool
}

func groupAggregate(tbl *tabular.Table, groupBy, aggColumn, aggFunc string) *tabular.Table {
	gIdx, _ := tbl.ColumnIndex(groupBy)
	aIdx, _ := tbl.ColumnIndex(aggColumn)

	var order []string
	groups := make(map[string]*groupAcc)
	for i := 0; i < tbl.NumRows(); i++ {
		row := tbl.Row(i)
		key := distinctKey(row[gIdx])
		acc, ok := groups[key]
		if !ok {
			acc = &groupAcc{key: row[gIdx], intOnly: true}
			groups[key] = acc
			order = append(order, key)
		}

		cell := row[aIdx]
		if cell.IsNull() {
			continue
		}
		acc.count++
		if f, ok := cell.Float64(); ok {
			acc.sum += f
			if cell.Kind() != tabular.KindInt {
				acc.intOnly = false
			}
		}
		if acc.min.IsNull() || cell.Compare(acc.min) < 0 {
			acc.min = cell
		}
		if acc.max.IsNull() || cell.Compare(acc.max) > 0 {
			acc.max = cell
		}
	}

	out := tabular.New([]string{groupBy, aggColumn})
	for _, key := range order {
		acc := groups[key]
		out.AppendRow(tabular.Row{acc.key, aggValue(acc, aggFunc)})
	}
	return out
}

func aggValue(acc *groupAcc, aggFunc string) tabular.Value {
	switch aggFunc {
	case "sum":
		if acc.intOnly {
			return tabular.Int(int64(acc.sum))
		}
		return tabular.Float(acc.sum)
	case "mean":
		if acc.count == 0 {
			return tabular.Null()
		}
		return tabular.Float(acc.sum / float64(acc.count))
	case "count":
		return tabular.Int(int64(acc.count))
	case "min":
		return acc.min
	case "max":
		return acc.max
	}
	return tabular.Null()
}

// SortTool orders the table by one column. The sort is stable; null cells
// sort last in either direction.
type SortTool struct{ deps }

func (t *SortTool) Name() string { return "sort_data" }

func (t *SortTool) Description() string {
	return "Sort the dataset by a column. (SQL: ORDER BY)"
}

func (t *SortTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"column": {"type": "string", "description": "Column to sort by"},
			"ascending": {"type": "boolean", "description": "Sort ascending (true) or descending (false); default true"}
		},
		"required": ["column"],
		"additionalProperties": false
	}`)
}

func (t *SortTool) Execute(ctx context.Context, params json.RawMessage) (*agent.ToolResult, error) {
	args := struct {
		Column    string `json:"column"`
		Ascending *bool  `json:"ascending"`
	}{}
	if err := json.Unmarshal(params, &args); err != nil {
		return agent.Errorf("invalid parameters: %v", err), nil
	}
	ascending := args.Ascending == nil || *args.Ascending

	sid, tbl, fail := t.current(ctx)
	if fail != nil {
		return fail, nil
	}
	if !tbl.HasColumn(args.Column) {
		return columnNotFound(tbl, args.Column), nil
	}

	sorted := tbl.SortBy(args.Column, ascending)
	t.store.SetCurrent(sid, sorted)

	t.log.Info(ctx, "sorted", "column", args.Column, "ascending", ascending)
	return agent.Textf("Sorted by '%s' %s", args.Column, boolWord(ascending)), nil
}

// SelectColumnsTool projects the table to a comma-separated list of
// columns, in the requested order.
type SelectColumnsTool struct{ deps }

func (t *SelectColumnsTool) Name() string { return "select_columns" }

func (t *SelectColumnsTool) Description() string {
	return "Select specific columns from the dataset. (SQL: SELECT col1, col2) Updates the working dataset to only include these columns."
}

func (t *SelectColumnsTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"columns": {"type": "string", "description": "Comma-separated column names (e.g., 'Date,Revenue' or 'name, age, city')"}
		},
		"required": ["columns"],
		"additionalProperties": false
	}`)
}

func (t *SelectColumnsTool) Execute(ctx context.Context, params json.RawMessage) (*agent.ToolResult, error) {
	var args struct {
		Columns string `json:"columns"`
	}
	if err := json.Unmarshal(params, &args); err != nil {
		return agent.Errorf("invalid parameters: %v", err), nil
	}

	sid, tbl, fail := t.current(ctx)
	if fail != nil {
		return fail, nil
	}

	names := splitTrimmed(args.Columns)
	var missing []string
	for _, name := range names {
		if !tbl.HasColumn(name) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return agent.Errorf("Columns not found: %s. Available: %s",
			columnList(missing), columnList(tbl.Columns())), nil
	}

	result := tbl.Select(names)
	t.store.SetCurrent(sid, result)

	t.log.Info(ctx, "selected columns", "columns", names)
	return agent.Textf("Selected columns: %s\n%s", columnList(names), result.RenderHead(5)), nil
}
