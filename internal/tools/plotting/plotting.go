// Package plotting exposes the chart creation operations. Each tool reads
// the session's working table, renders a themed image through
// internal/render, and reports the chart URL.
package plotting

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/haasonsaas/chartd/internal/agent"
	"github.com/haasonsaas/chartd/internal/observability"
	"github.com/haasonsaas/chartd/internal/render"
	"github.com/haasonsaas/chartd/internal/store"
	"github.com/haasonsaas/chartd/internal/tabular"
	"github.com/haasonsaas/chartd/internal/themes"
)

type deps struct {
	store    *store.Store
	renderer *render.Renderer
	log      *observability.Logger
}

// All constructs the chart tool set.
func All(st *store.Store, r *render.Renderer, log *observability.Logger) []agent.Tool {
	d := deps{store: st, renderer: r, log: log}
	return []agent.Tool{
		&BarChartTool{d},
		&LineChartTool{d},
		&DistributionChartTool{d},
		&AreaChartTool{d},
	}
}

// current resolves the session's working table for charting.
func (d deps) current(ctx context.Context) (string, *tabular.Table, *agent.ToolResult) {
	sid := observability.GetSessionID(ctx)
	if sid == "" {
		return "", nil, agent.Errorf("no session bound to this request")
	}
	tbl := d.store.Current(sid)
	if tbl == nil {
		return sid, nil, agent.Errorf("No data loaded. Cannot create chart.")
	}
	return sid, tbl, nil
}

func (d deps) theme(sid string) themes.Theme {
	th, err := themes.Get(d.store.Theme(sid))
	if err != nil {
		return themes.Default()
	}
	return th
}

func columnsMissing(tbl *tabular.Table, names ...string) *agent.ToolResult {
	for _, name := range names {
		if !tbl.HasColumn(name) {
			return agent.Errorf("Column not found. Available: [%s]",
				strings.Join(tbl.Columns(), ", "))
		}
	}
	return nil
}

func xyChartSchema(xDesc, yDesc string) json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"x_column": {"type": "string", "description": "` + xDesc + `"},
			"y_column": {"type": "string", "description": "` + yDesc + `"},
			"title": {"type": "string", "description": "Chart title"}
		},
		"required": ["x_column", "y_column"],
		"additionalProperties": false
	}`)
}

type xyArgs struct {
	XColumn string `json:"x_column"`
	YColumn string `json:"y_column"`
	Title   string `json:"title"`
}

// BarChartTool renders the working table as a vertical bar chart.
type BarChartTool struct{ deps }

func (t *BarChartTool) Name() string { return "create_bar_chart" }

func (t *BarChartTool) Description() string {
	return "Create a bar chart from the current dataset."
}

func (t *BarChartTool) Schema() json.RawMessage {
	return xyChartSchema("Column for x-axis (categories)", "Column for y-axis (values)")
}

func (t *BarChartTool) Execute(ctx context.Context, params json.RawMessage) (*agent.ToolResult, error) {
	var args xyArgs
	if err := json.Unmarshal(params, &args); err != nil {
		return agent.Errorf("invalid parameters: %v", err), nil
	}
	if args.Title == "" {
		args.Title = "Bar Chart"
	}

	sid, tbl, fail := t.current(ctx)
	if fail != nil {
		return fail, nil
	}
	if fail := columnsMissing(tbl, args.XColumn, args.YColumn); fail != nil {
		return fail, nil
	}

	th := t.theme(sid)
	p, err := render.Bar(tbl, args.XColumn, args.YColumn, args.Title, th)
	if err != nil {
		return nil, err
	}
	url, err := t.renderer.Save(ctx, p, th, render.Metadata{
		ChartType:  "bar",
		XColumn:    args.XColumn,
		YColumn:    args.YColumn,
		Title:      args.Title,
		RowCount:   tbl.NumRows(),
		DataSource: t.store.DataSourceFor(sid),
	})
	if err != nil {
		return nil, err
	}

	t.log.Info(ctx, "bar chart created", "rows", tbl.NumRows(), "url", url)
	return agent.Textf("Bar chart created: %s", url), nil
}

// LineChartTool renders the working table as a line chart with markers.
type LineChartTool struct{ deps }

func (t *LineChartTool) Name() string { return "create_line_chart" }

func (t *LineChartTool) Description() string {
	return "Create a line chart from the current dataset. Good for trends over time."
}

func (t *LineChartTool) Schema() json.RawMessage {
	return xyChartSchema("Column for x-axis (usually time/sequence)", "Column for y-axis (values)")
}

func (t *LineChartTool) Execute(ctx context.Context, params json.RawMessage) (*agent.ToolResult, error) {
	var args xyArgs
	if err := json.Unmarshal(params, &args); err != nil {
		return agent.Errorf("invalid parameters: %v", err), nil
	}
	if args.Title == "" {
		args.Title = "Line Chart"
	}

	sid, tbl, fail := t.current(ctx)
	if fail != nil {
		return fail, nil
	}
	if fail := columnsMissing(tbl, args.XColumn, args.YColumn); fail != nil {
		return fail, nil
	}

	th := t.theme(sid)
	p, err := render.Line(tbl, args.XColumn, args.YColumn, args.Title, th)
	if err != nil {
		return nil, err
	}
	url, err := t.renderer.Save(ctx, p, th, render.Metadata{
		ChartType:  "line",
		XColumn:    args.XColumn,
		YColumn:    args.YColumn,
		Title:      args.Title,
		RowCount:   tbl.NumRows(),
		DataSource: t.store.DataSourceFor(sid),
	})
	if err != nil {
		return nil, err
	}

	t.log.Info(ctx, "line chart created", "rows", tbl.NumRows(), "url", url)
	return agent.Textf("Line chart created: %s", url), nil
}

// DistributionChartTool renders a horizontal proportion chart of the
// largest categories, annotated with percentages.
type DistributionChartTool struct{ deps }

func (t *DistributionChartTool) Name() string { return "create_distribution_chart" }

func (t *DistributionChartTool) Description() string {
	return "Create a horizontal bar chart showing distribution/proportions. Shows percentages for each category. Good for comparing parts of a whole."
}

func (t *DistributionChartTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"labels_column": {"type": "string", "description": "Column for category labels"},
			"values_column": {"type": "string", "description": "Column for values"},
			"title": {"type": "string", "description": "Chart title"}
		},
		"required": ["labels_column", "values_column"],
		"additionalProperties": false
	}`)
}

func (t *DistributionChartTool) Execute(ctx context.Context, params json.RawMessage) (*agent.ToolResult, error) {
	var args struct {
		LabelsColumn string `json:"labels_column"`
		ValuesColumn string `json:"values_column"`
		Title        string `json:"title"`
	}
	if err := json.Unmarshal(params, &args); err != nil {
		return agent.Errorf("invalid parameters: %v", err), nil
	}
	if args.Title == "" {
		args.Title = "Distribution Chart"
	}

	sid, tbl, fail := t.current(ctx)
	if fail != nil {
		return fail, nil
	}
	if fail := columnsMissing(tbl, args.LabelsColumn, args.ValuesColumn); fail != nil {
		return fail, nil
	}

	th := t.theme(sid)
	p, shown, err := render.Distribution(tbl, args.LabelsColumn, args.ValuesColumn, args.Title, th)
	if err != nil {
		return nil, err
	}
	url, err := t.renderer.Save(ctx, p, th, render.Metadata{
		ChartType:    "distribution",
		LabelsColumn: args.LabelsColumn,
		ValuesColumn: args.ValuesColumn,
		Title:        args.Title,
		RowCount:     shown,
		DataSource:   t.store.DataSourceFor(sid),
	})
	if err != nil {
		return nil, err
	}

	t.log.Info(ctx, "distribution chart created", "categories", shown, "url", url)
	return agent.Textf("Distribution chart created: %s", url), nil
}

// AreaChartTool renders the working table as a filled line chart.
type AreaChartTool struct{ deps }

func (t *AreaChartTool) Name() string { return "create_area_chart" }

func (t *AreaChartTool) Description() string {
	return "Create an area chart (filled line chart). Good for volume/cumulative data."
}

func (t *AreaChartTool) Schema() json.RawMessage {
	return xyChartSchema("Column for x-axis", "Column for y-axis (values)")
}

func (t *AreaChartTool) Execute(ctx context.Context, params json.RawMessage) (*agent.ToolResult, error) {
	var args xyArgs
	if err := json.Unmarshal(params, &args); err != nil {
		return agent.Errorf("invalid parameters: %v", err), nil
	}
	if args.Title == "" {
		args.Title = "Area Chart"
	}

	sid, tbl, fail := t.current(ctx)
	if fail != nil {
		return fail, nil
	}
	if fail := columnsMissing(tbl, args.XColumn, args.YColumn); fail != nil {
		return fail, nil
	}

	th := t.theme(sid)
	p, err := render.Area(tbl, args.XColumn, args.YColumn, args.Title, th)
	if err != nil {
		return nil, err
	}
	url, err := t.renderer.Save(ctx, p, th, render.Metadata{
		ChartType:  "area",
		XColumn:    args.XColumn,
		YColumn:    args.YColumn,
		Title:      args.Title,
		RowCount:   tbl.NumRows(),
		DataSource: t.store.DataSourceFor(sid),
	})
	if err != nil {
		return nil, err
	}

	t.log.Info(ctx, "area chart created", "rows", tbl.NumRows(), "url", url)
	return agent.Textf("Area chart created: %s", url), nil
}
