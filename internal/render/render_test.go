package render

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/haasonsaas/chartd/internal/observability"
	"github.com/haasonsaas/chartd/internal/tabular"
	"github.com/haasonsaas/chartd/internal/themes"
)

func monthlyTable() *tabular.Table {
	tbl := tabular.New([]string{"month", "revenue"})
	tbl.AppendRow(tabular.Row{tabular.String("Jan"), tabular.Int(1000)})
	tbl.AppendRow(tabular.Row{tabular.String("Feb"), tabular.Int(2500)})
	tbl.AppendRow(tabular.Row{tabular.String("Mar"), tabular.Int(1500)})
	return tbl
}

func TestSaveWritesImageAndSidecarPair(t *testing.T) {
	dir := t.TempDir()
	r, err := New(dir, observability.NewNopLogger(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	p, err := Bar(monthlyTable(), "month", "revenue", "Revenue", themes.Default())
	if err != nil {
		t.Fatalf("Bar: %v", err)
	}

	url, err := r.Save(context.Background(), p, themes.Default(), Metadata{
		ChartType: "bar",
		XColumn:   "month",
		YColumn:   "revenue",
		Title:     "Revenue",
		RowCount:  3,
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !strings.HasPrefix(url, ChartURLPrefix+"chart_") || !strings.HasSuffix(url, ".png") {
		t.Errorf("unexpected chart URL: %q", url)
	}

	filename := strings.TrimPrefix(url, ChartURLPrefix)
	imgPath := filepath.Join(dir, filename)
	if _, err := os.Stat(imgPath); err != nil {
		t.Fatalf("image missing: %v", err)
	}

	raw, err := os.ReadFile(sidecarPath(imgPath))
	if err != nil {
		t.Fatalf("sidecar missing: %v", err)
	}
	var meta Metadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		t.Fatalf("sidecar not valid JSON: %v", err)
	}
	if meta.ChartType != "bar" || meta.Theme != themes.DefaultName || meta.ChartURL != url {
		t.Errorf("sidecar fields wrong: %+v", meta)
	}
	if meta.CreatedAt.IsZero() {
		t.Errorf("created_at not stamped")
	}
}

func TestAllChartKindsBuild(t *testing.T) {
	tbl := monthlyTable()
	th := themes.Default()

	if _, err := Bar(tbl, "month", "revenue", "t", th); err != nil {
		t.Errorf("Bar: %v", err)
	}
	if _, err := Line(tbl, "month", "revenue", "t", th); err != nil {
		t.Errorf("Line: %v", err)
	}
	if _, err := Area(tbl, "month", "revenue", "t", th); err != nil {
		t.Errorf("Area: %v", err)
	}
	if _, n, err := Distribution(tbl, "month", "revenue", "t", th); err != nil || n != 3 {
		t.Errorf("Distribution: n=%d err=%v", n, err)
	}
}

func TestTopCategoriesKeepsLargestTen(t *testing.T) {
	labels := make([]string, 12)
	values := make([]float64, 12)
	for i := range labels {
		labels[i] = string(rune('a' + i))
		values[i] = float64(i)
	}

	gotLabels, gotValues := topCategories(labels, values, 10)
	if len(gotLabels) != 10 {
		t.Fatalf("kept %d, want 10", len(gotLabels))
	}
	if gotValues[0] != 11 || gotLabels[0] != "l" {
		t.Errorf("largest first: got %v %q", gotValues[0], gotLabels[0])
	}
	for _, v := range gotValues {
		if v < 2 {
			t.Errorf("value %v should have been dropped", v)
		}
	}
}

func TestTopCategoriesBreaksTiesByOriginalOrder(t *testing.T) {
	labels := []string{"a", "b", "c"}
	values := []float64{5, 5, 5}

	gotLabels, _ := topCategories(labels, values, 2)
	if gotLabels[0] != "a" || gotLabels[1] != "b" {
		t.Errorf("tie break changed order: %v", gotLabels)
	}
}

func TestSidecarPath(t *testing.T) {
	if got := sidecarPath("/x/chart_1.png"); got != "/x/chart_1.json" {
		t.Errorf("got %q", got)
	}
}
