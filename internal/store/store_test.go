package store

import (
	"sync"
	"testing"

	"github.com/haasonsaas/chartd/internal/tabular"
	"github.com/haasonsaas/chartd/internal/themes"
)

func records() []tabular.Record {
	return []tabular.Record{
		{{Key: "Product", Value: tabular.String("A")}, {Key: "Revenue", Value: tabular.Int(1000)}},
		{{Key: "Product", Value: tabular.String("B")}, {Key: "Revenue", Value: tabular.Int(2500)}},
	}
}

func TestLoadAndCurrent(t *testing.T) {
	s := New()
	if s.Current("s1") != nil {
		t.Fatalf("unreferenced session should have no data")
	}
	s.Load("s1", records())
	tbl := s.Current("s1")
	if tbl == nil || tbl.NumRows() != 2 {
		t.Fatalf("loaded table = %v", tbl)
	}
	// Sessions are independent.
	if s.Current("s2") != nil {
		t.Fatalf("second session should be empty")
	}
}

func TestLoadEmptyClears(t *testing.T) {
	s := New()
	s.Load("s1", records())
	s.Load("s1", nil)
	if s.Current("s1") != nil {
		t.Fatalf("empty load should clear data")
	}
	if _, err := s.Reset("s1"); err != ErrNoOriginal {
		t.Fatalf("reset after clear = %v, want ErrNoOriginal", err)
	}
}

func TestResetRestoresOriginal(t *testing.T) {
	s := New()
	s.Load("s1", records())
	orig := s.Current("s1")

	// Simulate a transform replacing the working table.
	s.SetCurrent("s1", orig.Head(1))
	if s.Current("s1").NumRows() != 1 {
		t.Fatalf("transform did not apply")
	}

	restored, err := s.Reset("s1")
	if err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if restored.NumRows() != 2 {
		t.Fatalf("reset rows = %d, want 2", restored.NumRows())
	}
	if s.Current("s1").NumRows() != 2 {
		t.Fatalf("reset did not replace current")
	}
}

func TestResetWithoutLoad(t *testing.T) {
	s := New()
	if _, err := s.Reset("nobody"); err != ErrNoOriginal {
		t.Fatalf("err = %v, want ErrNoOriginal", err)
	}
}

func TestDataSourceRoundTrip(t *testing.T) {
	s := New()
	s.SetDataSource("s1", &DataSource{Type: "google_sheet", SheetID: "abc", GID: "0"})
	src := s.DataSourceFor("s1")
	if src == nil || src.SheetID != "abc" {
		t.Fatalf("data source = %v", src)
	}
	// Returned copy must not alias stored state.
	src.SheetID = "mutated"
	if s.DataSourceFor("s1").SheetID != "abc" {
		t.Fatalf("DataSourceFor leaked internal state")
	}
	s.SetDataSource("s1", nil)
	if s.DataSourceFor("s1") != nil {
		t.Fatalf("clearing data source failed")
	}
}

func TestThemeSelection(t *testing.T) {
	s := New()
	if got := s.Theme("s1"); got != themes.DefaultName {
		t.Fatalf("default theme = %q", got)
	}
	if err := s.SetTheme("s1", "meli_light"); err != nil {
		t.Fatalf("SetTheme: %v", err)
	}
	if got := s.Theme("s1"); got != "meli_light" {
		t.Fatalf("theme = %q", got)
	}
	if err := s.SetTheme("s1", "nope"); err == nil {
		t.Fatalf("invalid theme should error")
	}
}

func TestRemove(t *testing.T) {
	s := New()
	s.Load("s1", records())
	if !s.Remove("s1") {
		t.Fatalf("Remove should report existing session")
	}
	if s.Remove("s1") {
		t.Fatalf("Remove should report missing session")
	}
	if s.Len() != 0 {
		t.Fatalf("Len = %d", s.Len())
	}
}

func TestConcurrentSessionCreation(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := string(rune('a' + n%8))
			s.Load(id, records())
			s.Current(id)
			s.Theme(id)
		}(i)
	}
	wg.Wait()
	if s.Len() != 8 {
		t.Fatalf("sessions = %d, want 8", s.Len())
	}
}
