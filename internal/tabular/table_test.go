package tabular

import (
	"encoding/json"
	"strings"
	"testing"
)

func salesTable() *Table {
	t := New([]string{"Category", "Revenue"})
	t.AppendRow(Row{String("Electronics"), Int(1000)})
	t.AppendRow(Row{String("Clothing"), Int(2500)})
	t.AppendRow(Row{String("Electronics"), Int(1500)})
	t.AppendRow(Row{String("Food"), Int(3000)})
	t.AppendRow(Row{String("Clothing"), Int(2000)})
	return t
}

func TestTableCloneIsDeep(t *testing.T) {
	orig := salesTable()
	clone := orig.Clone()
	clone.rows[0][1] = Int(999)
	if orig.At(0, "Revenue").Int64() != 1000 {
		t.Fatalf("mutating a clone leaked into the original")
	}
}

func TestColumnKindPromotion(t *testing.T) {
	tbl := New([]string{"a", "b", "c", "d"})
	tbl.AppendRow(Row{Int(1), Int(1), String("x"), Null()})
	tbl.AppendRow(Row{Int(2), Float(2.5), Int(3), Null()})
	if k := tbl.ColumnKind("a"); k != KindInt {
		t.Errorf("all-int column kind = %s", k)
	}
	if k := tbl.ColumnKind("b"); k != KindFloat {
		t.Errorf("mixed int/float column kind = %s", k)
	}
	if k := tbl.ColumnKind("c"); k != KindString {
		t.Errorf("mixed string/int column kind = %s", k)
	}
	if k := tbl.ColumnKind("d"); k != KindNull {
		t.Errorf("all-null column kind = %s", k)
	}
}

func TestSortByStable(t *testing.T) {
	tbl := salesTable()
	sorted := tbl.SortBy("Category", true)
	got := make([]string, 0, sorted.NumRows())
	for i := 0; i < sorted.NumRows(); i++ {
		got = append(got, sorted.At(i, "Category").Text())
	}
	want := []string{"Clothing", "Clothing", "Electronics", "Electronics", "Food"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sorted categories = %v, want %v", got, want)
		}
	}
	// Stability: the two Clothing rows keep original relative order.
	if sorted.At(0, "Revenue").Int64() != 2500 || sorted.At(1, "Revenue").Int64() != 2000 {
		t.Fatalf("stable sort violated: %v then %v", sorted.At(0, "Revenue"), sorted.At(1, "Revenue"))
	}
	// Original untouched.
	if tbl.At(0, "Category").Text() != "Electronics" {
		t.Fatalf("SortBy mutated the source table")
	}
}

func TestSortByNullsLastBothDirections(t *testing.T) {
	tbl := New([]string{"v"})
	tbl.AppendRow(Row{Int(10)})
	tbl.AppendRow(Row{Null()})
	tbl.AppendRow(Row{Int(30)})

	read := func(sorted *Table) []Value {
		out := make([]Value, 0, sorted.NumRows())
		for i := 0; i < sorted.NumRows(); i++ {
			out = append(out, sorted.At(i, "v"))
		}
		return out
	}

	asc := read(tbl.SortBy("v", true))
	if asc[0].Int64() != 10 || asc[1].Int64() != 30 || !asc[2].IsNull() {
		t.Fatalf("ascending sort = %v, want [10 30 null]", asc)
	}
	desc := read(tbl.SortBy("v", false))
	if desc[0].Int64() != 30 || desc[1].Int64() != 10 || !desc[2].IsNull() {
		t.Fatalf("descending sort = %v, want [30 10 null]", desc)
	}
}

func TestSelectAndFilter(t *testing.T) {
	tbl := salesTable()
	sel := tbl.Select([]string{"Revenue"})
	if sel.NumCols() != 1 || sel.NumRows() != 5 {
		t.Fatalf("select shape = %dx%d", sel.NumRows(), sel.NumCols())
	}
	filtered := tbl.Filter(func(r Row) bool {
		f, _ := r[1].Float64()
		return f >= 2000
	})
	if filtered.NumRows() != 3 {
		t.Fatalf("filtered rows = %d, want 3", filtered.NumRows())
	}
}

func TestHeadTail(t *testing.T) {
	tbl := salesTable()
	if got := tbl.Head(2).NumRows(); got != 2 {
		t.Fatalf("head(2) rows = %d", got)
	}
	if got := tbl.Head(10).NumRows(); got != 5 {
		t.Fatalf("head(10) rows = %d", got)
	}
	tail := tbl.Tail(2)
	if tail.NumRows() != 2 || tail.At(0, "Category").Text() != "Food" {
		t.Fatalf("tail(2) = %v", tail.Render())
	}
}

func TestDistinctValuesOrder(t *testing.T) {
	tbl := salesTable()
	vals := tbl.DistinctValues("Category")
	if len(vals) != 3 {
		t.Fatalf("distinct count = %d", len(vals))
	}
	want := []string{"Electronics", "Clothing", "Food"}
	for i, w := range want {
		if vals[i].Text() != w {
			t.Fatalf("distinct order = %v", vals)
		}
	}
}

func TestRenderHeadAligned(t *testing.T) {
	out := salesTable().RenderHead(2)
	lines := strings.Split(out, "\n")
	if len(lines) != 3 {
		t.Fatalf("render lines = %d: %q", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "Category") || !strings.Contains(lines[0], "Revenue") {
		t.Fatalf("header = %q", lines[0])
	}
}

func TestFromRecordsColumnOrder(t *testing.T) {
	recs := []Record{
		{{Key: "b", Value: Int(1)}, {Key: "a", Value: Int(2)}},
		{{Key: "a", Value: Int(3)}, {Key: "c", Value: Int(4)}},
	}
	tbl := FromRecords(recs)
	cols := tbl.Columns()
	if len(cols) != 3 || cols[0] != "b" || cols[1] != "a" || cols[2] != "c" {
		t.Fatalf("column order = %v", cols)
	}
	if !tbl.At(0, "c").IsNull() {
		t.Fatalf("missing key should be null")
	}
	if FromRecords(nil) != nil {
		t.Fatalf("empty records should produce nil table")
	}
}

func TestDecodeRecordsPreservesOrderAndNumbers(t *testing.T) {
	raw := []byte(`[{"Date":"2026-01-01","Revenue":1000,"Share":0.25,"Active":true,"Note":null}]`)
	recs, err := DecodeRecords(raw)
	if err != nil {
		t.Fatalf("DecodeRecords: %v", err)
	}
	if len(recs) != 1 || len(recs[0]) != 5 {
		t.Fatalf("records = %v", recs)
	}
	if recs[0][0].Key != "Date" || recs[0][1].Key != "Revenue" {
		t.Fatalf("key order lost: %v", recs[0])
	}
	if recs[0][1].Value.Kind() != KindInt {
		t.Fatalf("whole JSON number should be int, got %s", recs[0][1].Value.Kind())
	}
	if recs[0][2].Value.Kind() != KindFloat {
		t.Fatalf("fractional JSON number should be float, got %s", recs[0][2].Value.Kind())
	}
	if recs[0][4].Value.Kind() != KindNull {
		t.Fatalf("JSON null should be null value")
	}
}

func TestDecodeRecordsNestedStructuresStayValidJSON(t *testing.T) {
	raw := []byte(`[{"id":1,"tags":["a","b"],"meta":{"a":1,"b":[true,null]}}]`)
	recs, err := DecodeRecords(raw)
	if err != nil {
		t.Fatalf("DecodeRecords: %v", err)
	}
	if got := recs[0][1].Value.Text(); got != `["a","b"]` {
		t.Fatalf("nested array text = %q", got)
	}
	meta := recs[0][2].Value.Text()
	if meta != `{"a":1,"b":[true,null]}` {
		t.Fatalf("nested object text = %q", meta)
	}
	var decoded map[string]any
	if err := json.Unmarshal([]byte(meta), &decoded); err != nil {
		t.Fatalf("captured text is not valid JSON: %v", err)
	}
}

func TestDecodeRecordsRejectsNonArray(t *testing.T) {
	if _, err := DecodeRecords([]byte(`{"a":1}`)); err == nil {
		t.Fatalf("expected error for non-array input")
	}
}
