package dataframe

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/haasonsaas/chartd/internal/agent"
	"github.com/haasonsaas/chartd/internal/tabular"
)

// FilterDateRangeTool keeps rows whose date column falls in [start, end],
// both ends inclusive. A month-only end bound extends to the last day of
// that month. Rows whose cell cannot be parsed as a date fail the whole
// operation; null cells are simply excluded.
type FilterDateRangeTool struct{ deps }

func (t *FilterDateRangeTool) Name() string { return "filter_date_range" }

func (t *FilterDateRangeTool) Description() string {
	return "Filter the dataset by a date range (inclusive). Use this for date/time filtering. Automatically parses various date formats. Updates the working dataset."
}

func (t *FilterDateRangeTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"date_column": {"type": "string", "description": "Column containing dates (e.g., 'Date', 'date', 'timestamp')"},
			"start_date": {"type": "string", "description": "Start date (e.g., '2026-10-01', '10/1/2026', 'October 2026')"},
			"end_date": {"type": "string", "description": "End date (e.g., '2026-12-31', '12/31/2026', 'December 2026')"}
		},
		"required": ["date_column", "start_date", "end_date"],
		"additionalProperties": false
	}`)
}

func (t *FilterDateRangeTool) Execute(ctx context.Context, params json.RawMessage) (*agent.ToolResult, error) {
	var args struct {
		Column string `json:"date_column"`
		Start  string `json:"start_date"`
		End    string `json:"end_date"`
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

	start, err := tabular.ParseRangeBound(args.Start, false)
	if err != nil {
		return dateError(err), nil
	}
	end, err := tabular.ParseRangeBound(args.End, true)
	if err != nil {
		return dateError(err), nil
	}

	dates, err := columnDates(tbl, args.Column)
	if err != nil {
		return dateError(err), nil
	}

	idx, _ := tbl.ColumnIndex(args.Column)
	row := -1
	filtered := tbl.Filter(func(r tabular.Row) bool {
		row++
		if r[idx].IsNull() {
			return false
		}
		d := dates[row]
		return !d.Before(start) && !d.After(end)
	})
	t.store.SetCurrent(sid, filtered)

	t.log.Info(ctx, "date range filter applied", "column", args.Column,
		"start", start.Format("2006-01-02"), "end", end.Format("2006-01-02"),
		"before", tbl.NumRows(), "after", filtered.NumRows())
	return agent.Textf("Filtered to %d rows where %s is between %s and %s\n%s",
		filtered.NumRows(), args.Column,
		start.Format("2006-01-02"), end.Format("2006-01-02"), filtered.Render()), nil
}

func dateError(err error) *agent.ToolResult {
	return agent.Errorf("Error parsing dates: %v. Try formats like '2026-10-01' or '10/1/2026'", err)
}

// columnDates parses every non-null cell of the column as a date. Null
// cells get the zero time and are the caller's business.
func columnDates(tbl *tabular.Table, column string) ([]time.Time, error) {
	idx, _ := tbl.ColumnIndex(column)
	out := make([]time.Time, tbl.NumRows())
	for i := 0; i < tbl.NumRows(); i++ {
		v := tbl.Row(i)[idx]
		if v.IsNull() {
			continue
		}
		if v.Kind() == tabular.KindDate {
			out[i] = v.Time()
			continue
		}
		d, err := tabular.ParseDate(v.Text())
		if err != nil {
			return nil, err
		}
		out[i] = d
	}
	return out, nil
}

// LastNTool keeps the last n rows, optionally interpreting "last" by a date
// column: sort by date, take the tail, then re-present those rows in their
// original table order. An unparseable date column falls back to plain
// tail-n.
type LastNTool struct{ deps }

func (t *LastNTool) Name() string { return "get_last_n_rows" }

func (t *LastNTool) Description() string {
	return "Get the last N rows of the dataset. Optionally sort by a date column first. Use this for queries like 'last 3 months' or 'most recent 5 entries'."
}

func (t *LastNTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"n": {"type": "integer", "minimum": 1, "description": "Number of rows to keep"},
			"date_column": {"type": "string", "description": "Optional date column to sort by before taking last N rows"}
		},
		"required": ["n"],
		"additionalProperties": false
	}`)
}

func (t *LastNTool) Execute(ctx context.Context, params json.RawMessage) (*agent.ToolResult, error) {
	var args struct {
		N      int    `json:"n"`
		Column string `json:"date_column"`
	}
	if err := json.Unmarshal(params, &args); err != nil {
		return agent.Errorf("invalid parameters: %v", err), nil
	}

	sid, tbl, fail := t.current(ctx)
	if fail != nil {
		return fail, nil
	}

	result := lastRows(tbl, args.N, args.Column)
	t.store.SetCurrent(sid, result)

	t.log.Info(ctx, "kept last rows", "n", args.N, "date_column", args.Column,
		"before", tbl.NumRows(), "after", result.NumRows())
	return agent.Textf("Got last %d rows:\n%s", args.N, result.Render()), nil
}

func lastRows(tbl *tabular.Table, n int, dateColumn string) *tabular.Table {
	if dateColumn == "" || !tbl.HasColumn(dateColumn) {
		return tbl.Tail(n)
	}
	dates, err := columnDates(tbl, dateColumn)
	if err != nil {
		return tbl.Tail(n)
	}

	// Stable date sort over row indices, then the tail n indices restored
	// to ascending order so the result keeps the original row order.
	order := make([]int, tbl.NumRows())
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return dates[order[a]].Before(dates[order[b]])
	})
	if n < len(order) {
		order = order[len(order)-n:]
	}
	keep := append([]int(nil), order...)
	sort.Ints(keep)

	out := tabular.New(tbl.Columns())
	for _, i := range keep {
		out.AppendRow(tbl.Row(i))
	}
	return out
}
