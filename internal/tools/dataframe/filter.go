package dataframe

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/haasonsaas/chartd/internal/agent"
	"github.com/haasonsaas/chartd/internal/tabular"
)

// FilterEqualsTool keeps rows whose column equals the given value. The value
// arrives as a string and is coerced to a number when the column is numeric.
type FilterEqualsTool struct{ deps }

func (t *FilterEqualsTool) Name() string { return "filter_data" }

func (t *FilterEqualsTool) Description() string {
	return "Filter the dataset by a column value. Updates the working dataset."
}

func (t *FilterEqualsTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"column": {"type": "string", "description": "Column to filter on"},
			"value": {"type": "string", "description": "Value to filter for (as string, will be converted if needed)"}
		},
		"required": ["column", "value"],
		"additionalProperties": false
	}`)
}

func (t *FilterEqualsTool) Execute(ctx context.Context, params json.RawMessage) (*agent.ToolResult, error) {
	var args struct {
		Column string `json:"column"`
		Value  string `json:"value"`
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

	target := coerceForColumn(tbl, args.Column, args.Value)
	filtered := filterByColumn(tbl, args.Column, func(v tabular.Value) bool { return v.Equal(target) })
	t.store.SetCurrent(sid, filtered)

	t.log.Info(ctx, "filter applied", "column", args.Column, "before", tbl.NumRows(), "after", filtered.NumRows())
	return agent.Textf("Filtered to %d rows where %s = %s", filtered.NumRows(), args.Column, target.Text()), nil
}

// FilterComparisonTool keeps rows whose column satisfies an ordering or
// inequality comparison. Null cells never match, except != against a
// non-null comparand.
type FilterComparisonTool struct{ deps }

func (t *FilterComparisonTool) Name() string { return "filter_comparison" }

func (t *FilterComparisonTool) Description() string {
	return "Filter data using comparison operators. (SQL: WHERE col > value)"
}

func (t *FilterComparisonTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"column": {"type": "string", "description": "Column to filter on"},
			"operator": {"type": "string", "enum": [">", "<", ">=", "<=", "!=", "=="], "description": "Comparison operator"},
			"value": {"type": "string", "description": "Value to compare against (will be converted to number if possible)"}
		},
		"required": ["column", "operator", "value"],
		"additionalProperties": false
	}`)
}

func (t *FilterComparisonTool) Execute(ctx context.Context, params json.RawMessage) (*agent.ToolResult, error) {
	var args struct {
		Column   string `json:"column"`
		Operator string `json:"operator"`
		Value    string `json:"value"`
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

	pred, ok := comparePredicate(args.Operator)
	if !ok {
		return agent.Errorf("Invalid operator. Use one of: [>, <, >=, <=, !=, ==]"), nil
	}

	target, _ := tabular.CoerceNumeric(args.Value)
	filtered := filterByColumn(tbl, args.Column, func(v tabular.Value) bool {
		if v.IsNull() {
			return args.Operator == "!=" && !target.IsNull()
		}
		return pred(v.Compare(target), v.Equal(target))
	})
	t.store.SetCurrent(sid, filtered)

	t.log.Info(ctx, "comparison filter applied", "column", args.Column, "operator", args.Operator,
		"before", tbl.NumRows(), "after", filtered.NumRows())
	return agent.Textf("Filtered to %d rows where %s %s %s",
		filtered.NumRows(), args.Column, args.Operator, target.Text()), nil
}

// comparePredicate maps an operator to a test over (Compare result, Equal
// result). Equality is tested with Equal so int and float cells compare by
// numeric value.
func comparePredicate(op string) (func(cmp int, eq bool) bool, bool) {
	switch op {
	case ">":
		return func(cmp int, _ bool) bool { return cmp > 0 }, true
	case "<":
		return func(cmp int, _ bool) bool { return cmp < 0 }, true
	case ">=":
		return func(cmp int, eq bool) bool { return cmp >= 0 || eq }, true
	case "<=":
		return func(cmp int, eq bool) bool { return cmp <= 0 || eq }, true
	case "!=":
		return func(_ int, eq bool) bool { return !eq }, true
	case "==":
		return func(_ int, eq bool) bool { return eq }, true
	}
	return nil, false
}

// FilterRangeTool keeps rows whose numeric column value lies in
// [min, max], both ends inclusive.
type FilterRangeTool struct{ deps }

func (t *FilterRangeTool) Name() string { return "filter_numeric_range" }

func (t *FilterRangeTool) Description() string {
	return "Filter numeric column to values between min and max (inclusive). (SQL: BETWEEN)"
}

func (t *FilterRangeTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"column": {"type": "string", "description": "Numeric column to filter"},
			"min_value": {"type": "number", "description": "Minimum value (inclusive)"},
			"max_value": {"type": "number", "description": "Maximum value (inclusive)"}
		},
		"required": ["column", "min_value", "max_value"],
		"additionalProperties": false
	}`)
}

func (t *FilterRangeTool) Execute(ctx context.Context, params json.RawMessage) (*agent.ToolResult, error) {
	var args struct {
		Column string  `json:"column"`
		Min    float64 `json:"min_value"`
		Max    float64 `json:"max_value"`
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

	filtered := filterByColumn(tbl, args.Column, func(v tabular.Value) bool {
		f, ok := v.Float64()
		return ok && f >= args.Min && f <= args.Max
	})
	t.store.SetCurrent(sid, filtered)

	t.log.Info(ctx, "range filter applied", "column", args.Column,
		"before", tbl.NumRows(), "after", filtered.NumRows())
	return agent.Textf("Filtered to %d rows where %s BETWEEN %v AND %v",
		filtered.NumRows(), args.Column, args.Min, args.Max), nil
}

// FilterInTool keeps rows whose column value is a member of a
// comma-separated list. Items are trimmed, and coerced to numbers when the
// column is numeric and every item parses.
type FilterInTool struct{ deps }

func (t *FilterInTool) Name() string { return "filter_in" }

func (t *FilterInTool) Description() string {
	return "Filter where column value is in a list of values. (SQL: WHERE col IN (...))"
}

func (t *FilterInTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"column": {"type": "string", "description": "Column to filter on"},
			"values": {"type": "string", "description": "Comma-separated values (e.g., 'Apple,Orange,Banana' or '100,200,300')"}
		},
		"required": ["column", "values"],
		"additionalProperties": false
	}`)
}

func (t *FilterInTool) Execute(ctx context.Context, params json.RawMessage) (*agent.ToolResult, error) {
	var args struct {
		Column string `json:"column"`
		Values string `json:"values"`
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

	parts := splitTrimmed(args.Values)
	members := make([]tabular.Value, 0, len(parts))
	for _, p := range parts {
		members = append(members, tabular.String(p))
	}
	if tbl.IsNumericColumn(args.Column) {
		if nums, ok := coerceAll(members); ok {
			members = nums
		}
	}

	filtered := filterByColumn(tbl, args.Column, func(v tabular.Value) bool {
		for _, m := range members {
			if v.Equal(m) {
				return true
			}
		}
		return false
	})
	t.store.SetCurrent(sid, filtered)

	t.log.Info(ctx, "in filter applied", "column", args.Column,
		"before", tbl.NumRows(), "after", filtered.NumRows())
	return agent.Textf("Filtered to %d rows where %s IN %s",
		filtered.NumRows(), args.Column, valueList(members)), nil
}

// coerceAll converts every string member to a number, or reports failure
// without partial conversion.
func coerceAll(members []tabular.Value) ([]tabular.Value, bool) {
	out := make([]tabular.Value, len(members))
	for i, m := range members {
		v, ok := tabular.CoerceNumeric(m.Text())
		if !ok {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}

// FilterContainsTool keeps rows whose column's textual rendering contains
// the pattern as a substring. Null cells never match.
type FilterContainsTool struct{ deps }

func (t *FilterContainsTool) Name() string { return "filter_contains" }

func (t *FilterContainsTool) Description() string {
	return "Filter string column by pattern matching. (SQL: LIKE '%pattern%')"
}

func (t *FilterContainsTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"column": {"type": "string", "description": "String column to search in"},
			"pattern": {"type": "string", "description": "Text pattern to search for"},
			"case_sensitive": {"type": "boolean", "description": "Whether search is case-sensitive (default: false)"}
		},
		"required": ["column", "pattern"],
		"additionalProperties": false
	}`)
}

func (t *FilterContainsTool) Execute(ctx context.Context, params json.RawMessage) (*agent.ToolResult, error) {
	var args struct {
		Column        string `json:"column"`
		Pattern       string `json:"pattern"`
		CaseSensitive bool   `json:"case_sensitive"`
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

	pattern := args.Pattern
	if !args.CaseSensitive {
		pattern = strings.ToLower(pattern)
	}
	filtered := filterByColumn(tbl, args.Column, func(v tabular.Value) bool {
		if v.IsNull() {
			return false
		}
		cell := v.Text()
		if !args.CaseSensitive {
			cell = strings.ToLower(cell)
		}
		return strings.Contains(cell, pattern)
	})
	t.store.SetCurrent(sid, filtered)

	t.log.Info(ctx, "contains filter applied", "column", args.Column,
		"before", tbl.NumRows(), "after", filtered.NumRows())
	return agent.Textf("Filtered to %d rows where %s contains '%s'",
		filtered.NumRows(), args.Column, args.Pattern), nil
}

// DropNullsTool removes rows with null cells, either in one column or in
// any column.
type DropNullsTool struct{ deps }

func (t *DropNullsTool) Name() string { return "drop_nulls" }

func (t *DropNullsTool) Description() string {
	return "Remove rows with null/missing values. (SQL: WHERE col IS NOT NULL)"
}

func (t *DropNullsTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"column": {"type": "string", "description": "Specific column to check for nulls. If empty, drops rows with any null."}
		},
		"additionalProperties": false
	}`)
}

func (t *DropNullsTool) Execute(ctx context.Context, params json.RawMessage) (*agent.ToolResult, error) {
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

	var filtered *tabular.Table
	if args.Column != "" {
		if !tbl.HasColumn(args.Column) {
			return columnNotFound(tbl, args.Column), nil
		}
		filtered = filterByColumn(tbl, args.Column, func(v tabular.Value) bool { return !v.IsNull() })
	} else {
		filtered = tbl.Filter(func(r tabular.Row) bool {
			for _, v := range r {
				if v.IsNull() {
					return false
				}
			}
			return true
		})
	}
	t.store.SetCurrent(sid, filtered)

	dropped := tbl.NumRows() - filtered.NumRows()
	t.log.Info(ctx, "null rows dropped", "column", args.Column, "dropped", dropped)
	return agent.Textf("Dropped %d rows with null values. %d rows remaining.",
		dropped, filtered.NumRows()), nil
}

// filterByColumn applies a single-column predicate across the table.
func filterByColumn(tbl *tabular.Table, column string, keep func(tabular.Value) bool) *tabular.Table {
	idx, _ := tbl.ColumnIndex(column)
	return tbl.Filter(func(r tabular.Row) bool { return keep(r[idx]) })
}

// coerceForColumn converts a user-supplied string to the column's numeric
// type when possible, falling back to the raw string.
func coerceForColumn(tbl *tabular.Table, column, raw string) tabular.Value {
	if tbl.IsNumericColumn(column) {
		if v, ok := tabular.CoerceNumeric(raw); ok {
			return v
		}
	}
	return tabular.String(raw)
}
