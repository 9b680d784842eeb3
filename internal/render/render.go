// Package render turns a working table into a themed PNG chart on disk,
// with a JSON metadata sidecar next to every image.
package render

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/haasonsaas/chartd/internal/config"
	"github.com/haasonsaas/chartd/internal/observability"
	"github.com/haasonsaas/chartd/internal/store"
	"github.com/haasonsaas/chartd/internal/themes"
)

// ChartURLPrefix is the public URL path under which chart images are served.
const ChartURLPrefix = "/static/charts/"

// Metadata is the sidecar written next to every chart image. Field names
// are part of the API response shape.
type Metadata struct {
	ChartType    string            `json:"chart_type"`
	XColumn      string            `json:"x_column,omitempty"`
	YColumn      string            `json:"y_column,omitempty"`
	LabelsColumn string            `json:"labels_column,omitempty"`
	ValuesColumn string            `json:"values_column,omitempty"`
	Title        string            `json:"title"`
	LayoutType   string            `json:"layout_type,omitempty"`
	SourceCharts []string          `json:"source_charts,omitempty"`
	RowCount     int               `json:"row_count"`
	Theme        string            `json:"theme"`
	CreatedAt    time.Time         `json:"created_at"`
	ChartURL     string            `json:"chart_url"`
	DataSource   *store.DataSource `json:"data_source,omitempty"`
}

// Renderer rasterizes plots into a charts directory.
type Renderer struct {
	dir     string
	log     *observability.Logger
	metrics *observability.Metrics
	now     func() time.Time
}

// New returns a Renderer writing into dir, creating it if needed.
func New(dir string, log *observability.Logger, metrics *observability.Metrics) (*Renderer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating charts dir: %w", err)
	}
	return &Renderer{dir: dir, log: log, metrics: metrics, now: time.Now}, nil
}

// Dir returns the charts directory.
func (r *Renderer) Dir() string { return r.dir }

// Save rasterizes the plot at the standard canvas size, writes the image
// and its metadata sidecar, and returns the chart URL. The image is staged
// under a temporary name and renamed into place; a sidecar write failure
// removes the image so the pair stays consistent.
func (r *Renderer) Save(ctx context.Context, p *plot.Plot, theme themes.Theme, meta Metadata) (string, error) {
	ts := r.now()
	filename := fmt.Sprintf("chart_%s_%06d.png",
		ts.Format("20060102_150405"), ts.Nanosecond()/1000)
	finalPath := filepath.Join(r.dir, filename)

	meta.Theme = theme.Name
	meta.CreatedAt = ts
	meta.ChartURL = ChartURLPrefix + filename

	widthIn := vg.Length(float64(config.ChartWidthPx)/float64(config.ChartDPI)) * vg.Inch
	heightIn := vg.Length(float64(config.ChartHeightPx)/float64(config.ChartDPI)) * vg.Inch
	canvas := vgimg.NewWith(
		vgimg.UseWH(widthIn, heightIn),
		vgimg.UseDPI(config.ChartDPI),
		vgimg.UseBackgroundColor(themes.ParseHex(theme.FigureBackground)),
	)
	p.Draw(draw.New(canvas))

	tmp, err := os.CreateTemp(r.dir, ".chart-*.png")
	if err != nil {
		return "", fmt.Errorf("staging chart image: %w", err)
	}
	tmpPath := tmp.Name()
	png := vgimg.PngCanvas{Canvas: canvas}
	if _, err := png.WriteTo(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("encoding chart image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("writing chart image: %w", err)
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("placing chart image: %w", err)
	}

	if err := writeSidecar(sidecarPath(finalPath), meta); err != nil {
		os.Remove(finalPath)
		return "", fmt.Errorf("writing chart metadata: %w", err)
	}

	if r.metrics != nil {
		r.metrics.ChartsRendered.WithLabelValues(meta.ChartType).Inc()
	}
	r.log.Info(ctx, "chart saved", "file", filename, "chart_type", meta.ChartType, "theme", theme.Name)
	return meta.ChartURL, nil
}

// SaveImage persists an already-rasterized image (a composed layout) with
// the same naming, staging, and sidecar rules as Save.
func (r *Renderer) SaveImage(ctx context.Context, img image.Image, meta Metadata) (string, error) {
	ts := r.now()
	filename := fmt.Sprintf("chart_%s_%06d.png",
		ts.Format("20060102_150405"), ts.Nanosecond()/1000)
	finalPath := filepath.Join(r.dir, filename)

	meta.CreatedAt = ts
	meta.ChartURL = ChartURLPrefix + filename

	tmp, err := os.CreateTemp(r.dir, ".chart-*.png")
	if err != nil {
		return "", fmt.Errorf("staging chart image: %w", err)
	}
	tmpPath := tmp.Name()
	if err := png.Encode(tmp, img); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("encoding chart image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("writing chart image: %w", err)
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("placing chart image: %w", err)
	}

	if err := writeSidecar(sidecarPath(finalPath), meta); err != nil {
		os.Remove(finalPath)
		return "", fmt.Errorf("writing chart metadata: %w", err)
	}

	if r.metrics != nil {
		r.metrics.ChartsRendered.WithLabelValues(meta.ChartType).Inc()
	}
	r.log.Info(ctx, "chart saved", "file", filename, "chart_type", meta.ChartType)
	return meta.ChartURL, nil
}
