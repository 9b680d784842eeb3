package sheets

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/haasonsaas/chartd/internal/observability"
	"github.com/haasonsaas/chartd/internal/tabular"
)

func TestParseURL(t *testing.T) {
	cases := []struct {
		url     string
		sheetID string
		gid     string
		wantErr bool
	}{
		{"https://docs.google.com/spreadsheets/d/abc123-XY_Z/edit#gid=42", "abc123-XY_Z", "42", false},
		{"https://docs.google.com/spreadsheets/d/abc123/edit", "abc123", "0", false},
		{"https://docs.google.com/spreadsheets/d/abc123/view?gid=7", "abc123", "7", false},
		{"https://example.com/not-a-sheet", "", "", true},
	}
	for _, c := range cases {
		sheetID, gid, err := ParseURL(c.url)
		if c.wantErr {
			if err == nil {
				t.Errorf("ParseURL(%q): expected error", c.url)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseURL(%q): %v", c.url, err)
			continue
		}
		if sheetID != c.sheetID || gid != c.gid {
			t.Errorf("ParseURL(%q) = (%q, %q), want (%q, %q)", c.url, sheetID, gid, c.sheetID, c.gid)
		}
	}
}

func TestFetchParsesCSVIntoTypedRecords(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("format") != "csv" || r.URL.Query().Get("gid") != "0" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		w.Write([]byte("month,revenue,rate\nJan,1000,0.5\nFeb,2500,\n"))
	}))
	defer srv.Close()

	c := NewClientWithBase(srv.URL, observability.NewNopLogger())
	records, err := c.Fetch(context.Background(), "sheet1", "0")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}

	tbl := tabular.FromRecords(records)
	cols := tbl.Columns()
	if len(cols) != 3 || cols[0] != "month" || cols[1] != "revenue" || cols[2] != "rate" {
		t.Fatalf("columns = %v", cols)
	}
	if tbl.At(0, "revenue").Kind() != tabular.KindInt {
		t.Errorf("revenue not parsed as int")
	}
	if tbl.At(0, "rate").Kind() != tabular.KindFloat {
		t.Errorf("rate not parsed as float")
	}
	if !tbl.At(1, "rate").IsNull() {
		t.Errorf("empty cell should be null")
	}
}

func TestFetchReportsHTTPFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewClientWithBase(srv.URL, observability.NewNopLogger())
	_, err := c.Fetch(context.Background(), "sheet1", "0")
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("got %v, want FetchError", err)
	}
	if fetchErr.SheetID != "sheet1" {
		t.Errorf("SheetID = %q", fetchErr.SheetID)
	}
}
