package dataframe

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/haasonsaas/chartd/internal/agent"
)

const maxColumnValuesShown = 20

// InspectTool reports the working table's shape, column types and a sample
// of rows. Pure read.
type InspectTool struct{ deps }

func (t *InspectTool) Name() string { return "inspect_data" }

func (t *InspectTool) Description() string {
	return "Inspect the current dataset. Returns column names, data types, shape, and sample rows. Use this first to understand the data structure."
}

func (t *InspectTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {},
		"additionalProperties": false
	}`)
}

func (t *InspectTool) Execute(ctx context.Context, params json.RawMessage) (*agent.ToolResult, error) {
	_, tbl, fail := t.current(ctx)
	if fail != nil {
		if fail.Content == noDataMessage {
			return &agent.ToolResult{Content: "No data loaded. Ask the user to provide data.", IsError: true}, nil
		}
		return fail, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Shape: %d rows, %d columns\n", tbl.NumRows(), tbl.NumCols())
	b.WriteString("\nColumns and types:\n")
	for _, col := range tbl.Columns() {
		fmt.Fprintf(&b, "  - %s: %s\n", col, tbl.ColumnKind(col))
	}
	b.WriteString("\nFirst 5 rows:\n")
	b.WriteString(tbl.RenderHead(5))

	t.log.Info(ctx, "inspected data", "rows", tbl.NumRows(), "cols", tbl.NumCols())
	return &agent.ToolResult{Content: b.String()}, nil
}

// ColumnValuesTool lists the distinct values of one column in order of
// first occurrence, truncated past twenty.
type ColumnValuesTool struct{ deps }

func (t *ColumnValuesTool) Name() string { return "get_column_values" }

func (t *ColumnValuesTool) Description() string {
	return "Get unique values from a specific column. Useful for understanding categorical data before plotting."
}

func (t *ColumnValuesTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"column": {"type": "string", "description": "The column name to inspect"}
		},
		"required": ["column"],
		"additionalProperties": false
	}`)
}

func (t *ColumnValuesTool) Execute(ctx context.Context, params json.RawMessage) (*agent.ToolResult, error) {
	var args struct {
		Column string `json:"column"`
	}
	if err := json.Unmarshal(params, &args); err != nil {
		return agent.Errorf("invalid parameters: %v", err), nil
	}

	_, tbl, fail := t.current(ctx)
	if fail != nil {
		return fail, nil
	}
	if !tbl.HasColumn(args.Column) {
		return columnNotFound(tbl, args.Column), nil
	}

	distinct := tbl.DistinctValues(args.Column)
	if len(distinct) > maxColumnValuesShown {
		return agent.Textf("Column '%s' has %d unique values. First %d: %s",
			args.Column, len(distinct), maxColumnValuesShown, valueList(distinct[:maxColumnValuesShown])), nil
	}
	return agent.Textf("Unique values in '%s': %s", args.Column, valueList(distinct)), nil
}

// NumericSummaryTool reports descriptive statistics for a numeric column.
type NumericSummaryTool struct{ deps }

func (t *NumericSummaryTool) Name() string { return "get_numeric_summary" }

func (t *NumericSummaryTool) Description() string {
	return "Get statistical summary of a numeric column (min, max, mean, median)."
}

func (t *NumericSummaryTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"column": {"type": "string", "description": "The numeric column to summarize"}
		},
		"required": ["column"],
		"additionalProperties": false
	}`)
}

func (t *NumericSummaryTool) Execute(ctx context.Context, params json.RawMessage) (*agent.ToolResult, error) {
	var args struct {
		Column string `json:"column"`
	}
	if err := json.Unmarshal(params, &args); err != nil {
		return agent.Errorf("invalid parameters: %v", err), nil
	}

	_, tbl, fail := t.current(ctx)
	if fail != nil {
		return fail, nil
	}
	if !tbl.HasColumn(args.Column) {
		return columnNotFound(tbl, args.Column), nil
	}
	if !tbl.IsNumericColumn(args.Column) {
		return agent.Errorf("Column '%s' is not numeric. Type: %s", args.Column, tbl.ColumnKind(args.Column)), nil
	}

	summary, ok := tbl.Describe(args.Column)
	if !ok {
		return agent.Errorf("Column '%s' has no numeric values to summarize.", args.Column), nil
	}
	return agent.Textf("Summary of '%s':\n%s", args.Column, summary.Render()), nil
}

// CountRowsTool reports the working table's row count.
type CountRowsTool struct{ deps }

func (t *CountRowsTool) Name() string { return "count_rows" }

func (t *CountRowsTool) Description() string {
	return "Count the number of rows in the current dataset. (SQL: SELECT COUNT(*))"
}

func (t *CountRowsTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {},
		"additionalProperties": false
	}`)
}

func (t *CountRowsTool) Execute(ctx context.Context, params json.RawMessage) (*agent.ToolResult, error) {
	_, tbl, fail := t.current(ctx)
	if fail != nil {
		return fail, nil
	}
	return agent.Textf("Current dataset has %d rows", tbl.NumRows()), nil
}
