package render

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"

	"github.com/haasonsaas/chartd/internal/tabular"
	"github.com/haasonsaas/chartd/internal/themes"
)

const (
	titleFontSize = 14
	areaFillAlpha = 178 // 0.7 opacity
)

var (
	barWidth     = vg.Points(30)
	lineWidth    = vg.Points(2)
	markerRadius = vg.Points(3)
)

// distributionLimit caps how many categories a distribution chart shows.
const distributionLimit = 10

// applyTheme styles the plot frame: background, title, axes, ticks, grid.
func applyTheme(p *plot.Plot, th themes.Theme, title string) {
	p.BackgroundColor = themes.ParseHex(th.AxesBackground)

	p.Title.Text = title
	p.Title.TextStyle.Color = themes.ParseHex(th.TextColor)
	p.Title.TextStyle.Font.Size = titleFontSize

	for _, axis := range []*plot.Axis{&p.X, &p.Y} {
		axis.Color = themes.ParseHex(th.EdgeColor)
		axis.Label.TextStyle.Color = themes.ParseHex(th.TextColor)
		axis.Tick.Color = themes.ParseHex(th.EdgeColor)
		axis.Tick.Label.Color = themes.ParseHex(th.TextColor)
	}

	grid := plotter.NewGrid()
	grid.Vertical.Color = themes.ParseHex(th.GridColor)
	grid.Horizontal.Color = themes.ParseHex(th.GridColor)
	p.Add(grid)
}

// rotateXTicks slants x tick labels the way crowded category axes need.
func rotateXTicks(p *plot.Plot) {
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = text.XRight
	p.X.Tick.Label.YAlign = text.YCenter
}

// Bar builds a vertical bar chart with one palette color per category.
func Bar(tbl *tabular.Table, xColumn, yColumn, title string, th themes.Theme) (*plot.Plot, error) {
	labels := columnTexts(tbl, xColumn)
	values := columnFloats(tbl, yColumn)

	p := plot.New()
	applyTheme(p, th, title)
	p.X.Label.Text = xColumn
	p.Y.Label.Text = yColumn

	// One BarChart per row so each category gets its own palette color.
	for i, v := range values {
		single := make(plotter.Values, len(values))
		single[i] = v
		bc, err := plotter.NewBarChart(single, barWidth)
		if err != nil {
			return nil, err
		}
		bc.Color = th.PaletteColor(i)
		bc.LineStyle.Width = 0
		p.Add(bc)
	}
	p.NominalX(labels...)
	rotateXTicks(p)
	return p, nil
}

// Line builds a line chart with point markers, rows plotted in order at
// index positions labeled from the x column.
func Line(tbl *tabular.Table, xColumn, yColumn, title string, th themes.Theme) (*plot.Plot, error) {
	labels := columnTexts(tbl, xColumn)
	values := columnFloats(tbl, yColumn)

	p := plot.New()
	applyTheme(p, th, title)
	p.X.Label.Text = xColumn
	p.Y.Label.Text = yColumn

	line, points, err := plotter.NewLinePoints(indexXYs(values))
	if err != nil {
		return nil, err
	}
	line.Color = th.PaletteColor(0)
	line.Width = lineWidth
	points.GlyphStyle.Color = th.PaletteColor(0)
	points.GlyphStyle.Radius = markerRadius
	p.Add(line, points)

	p.X.Tick.Marker = indexTicks(labels)
	rotateXTicks(p)
	return p, nil
}

// Distribution builds a horizontal bar chart of the largest categories,
// annotated with each bar's share of the shown subset.
func Distribution(tbl *tabular.Table, labelsColumn, valuesColumn, title string, th themes.Theme) (*plot.Plot, int, error) {
	labels := columnTexts(tbl, labelsColumn)
	values := columnFloats(tbl, valuesColumn)
	labels, values = topCategories(labels, values, distributionLimit)

	var total float64
	for _, v := range values {
		total += v
	}

	p := plot.New()
	applyTheme(p, th, title)
	p.X.Label.Text = valuesColumn
	p.Y.Label.Text = labelsColumn

	for i, v := range values {
		single := make(plotter.Values, len(values))
		single[i] = v
		bc, err := plotter.NewBarChart(single, barWidth)
		if err != nil {
			return nil, 0, err
		}
		bc.Horizontal = true
		bc.Color = th.PaletteColor(i)
		bc.LineStyle.Width = 0
		p.Add(bc)
	}
	p.NominalY(labels...)

	annotations, err := percentageLabels(values, total, th)
	if err != nil {
		return nil, 0, err
	}
	p.Add(annotations)
	return p, len(values), nil
}

// Area builds a filled line chart at index positions labeled from the x
// column.
func Area(tbl *tabular.Table, xColumn, yColumn, title string, th themes.Theme) (*plot.Plot, error) {
	labels := columnTexts(tbl, xColumn)
	values := columnFloats(tbl, yColumn)

	p := plot.New()
	applyTheme(p, th, title)
	p.X.Label.Text = xColumn
	p.Y.Label.Text = yColumn

	line, err := plotter.NewLine(indexXYs(values))
	if err != nil {
		return nil, err
	}
	line.Color = th.PaletteColor(1)
	line.Width = lineWidth
	line.FillColor = themes.WithAlpha(th.PaletteColor(0), areaFillAlpha)
	p.Add(line)

	p.X.Tick.Marker = indexTicks(labels)
	rotateXTicks(p)
	return p, nil
}

// topCategories keeps the limit largest values, ties broken by original
// order, and returns the kept pairs in descending value order.
func topCategories(labels []string, values []float64, limit int) ([]string, []float64) {
	if len(values) <= limit {
		return labels, values
	}
	order := make([]int, len(values))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return values[order[a]] > values[order[b]] })
	order = order[:limit]

	outLabels := make([]string, limit)
	outValues := make([]float64, limit)
	for i, idx := range order {
		outLabels[i] = labels[idx]
		outValues[i] = values[idx]
	}
	return outLabels, outValues
}

// percentageLabels places "%.1f%%" annotations just past each bar end.
func percentageLabels(values []float64, total float64, th themes.Theme) (*plotter.Labels, error) {
	xyl := plotter.XYLabels{
		XYs:    make(plotter.XYs, len(values)),
		Labels: make([]string, len(values)),
	}
	for i, v := range values {
		xyl.XYs[i] = plotter.XY{X: v + total*0.01, Y: float64(i)}
		pct := 0.0
		if total != 0 {
			pct = v / total * 100
		}
		xyl.Labels[i] = fmt.Sprintf("%.1f%%", pct)
	}
	labels, err := plotter.NewLabels(xyl)
	if err != nil {
		return nil, err
	}
	for i := range labels.TextStyle {
		labels.TextStyle[i].Color = themes.ParseHex(th.TextColor)
		labels.TextStyle[i].YAlign = text.YCenter
	}
	return labels, nil
}

func indexXYs(values []float64) plotter.XYs {
	xys := make(plotter.XYs, len(values))
	for i, v := range values {
		xys[i] = plotter.XY{X: float64(i), Y: v}
	}
	return xys
}

func indexTicks(labels []string) plot.ConstantTicks {
	ticks := make([]plot.Tick, len(labels))
	for i, l := range labels {
		ticks[i] = plot.Tick{Value: float64(i), Label: l}
	}
	return plot.ConstantTicks(ticks)
}

func columnTexts(tbl *tabular.Table, column string) []string {
	vals := tbl.ColumnValues(column)
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = v.Text()
	}
	return out
}

func columnFloats(tbl *tabular.Table, column string) []float64 {
	vals := tbl.ColumnValues(column)
	out := make([]float64, len(vals))
	for i, v := range vals {
		if f, ok := v.Float64(); ok {
			out[i] = f
		}
	}
	return out
}
