package tabular

import (
	"testing"
	"time"
)

func TestValueEqualCrossNumeric(t *testing.T) {
	if !Int(100).Equal(Float(100.0)) {
		t.Fatalf("Int(100) should equal Float(100.0)")
	}
	if Int(100).Equal(Float(100.5)) {
		t.Fatalf("Int(100) should not equal Float(100.5)")
	}
	if Int(100).Equal(String("100")) {
		t.Fatalf("numeric should not equal string")
	}
	if !Null().Equal(Null()) {
		t.Fatalf("null should equal null")
	}
	if Null().Equal(String("")) {
		t.Fatalf("null should not equal empty string")
	}
}

func TestValueCompare(t *testing.T) {
	cases := []struct {
		a, b Value
		want int
	}{
		{Int(1), Int(2), -1},
		{Float(2.5), Int(2), 1},
		{Int(3), Float(3.0), 0},
		{String("apple"), String("banana"), -1},
		{Date(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)), Date(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)), -1},
		{Null(), Int(0), 1},
		{Int(0), Null(), -1},
		{Null(), Null(), 0},
	}
	for i, c := range cases {
		if got := c.a.Compare(c.b); got != c.want {
			t.Errorf("case %d: Compare(%#v, %#v) = %d, want %d", i, c.a, c.b, got, c.want)
		}
	}
}

func TestValueText(t *testing.T) {
	if got := Int(42).Text(); got != "42" {
		t.Fatalf("Int text = %q", got)
	}
	if got := Float(1.5).Text(); got != "1.5" {
		t.Fatalf("Float text = %q", got)
	}
	if got := Bool(true).Text(); got != "true" {
		t.Fatalf("Bool text = %q", got)
	}
	if got := Null().Text(); got != "" {
		t.Fatalf("Null text = %q", got)
	}
	if got := Date(time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)).Text(); got != "2026-03-15" {
		t.Fatalf("Date text = %q", got)
	}
}

func TestParseScalar(t *testing.T) {
	cases := []struct {
		in   string
		kind Kind
	}{
		{"42", KindInt},
		{"-7", KindInt},
		{"3.14", KindFloat},
		{"1e3", KindFloat},
		{"true", KindBool},
		{"False", KindBool},
		{"", KindNull},
		{"  ", KindNull},
		{"hello", KindString},
		{"3.1.4", KindString},
	}
	for _, c := range cases {
		if got := ParseScalar(c.in).Kind(); got != c.kind {
			t.Errorf("ParseScalar(%q).Kind() = %s, want %s", c.in, got, c.kind)
		}
	}
}

func TestCoerceNumericFallback(t *testing.T) {
	v, ok := CoerceNumeric("2500")
	if !ok || v.Kind() != KindInt || v.Int64() != 2500 {
		t.Fatalf("CoerceNumeric(2500) = %#v, %v", v, ok)
	}
	v, ok = CoerceNumeric("2.5")
	if !ok || v.Kind() != KindFloat {
		t.Fatalf("CoerceNumeric(2.5) = %#v, %v", v, ok)
	}
	v, ok = CoerceNumeric("north")
	if ok || v.Kind() != KindString || v.Text() != "north" {
		t.Fatalf("CoerceNumeric(north) = %#v, %v", v, ok)
	}
}

func TestCoerceToColumn(t *testing.T) {
	if v := CoerceToColumn(KindInt, "100"); v.Kind() != KindInt {
		t.Fatalf("int column coercion: %#v", v)
	}
	if v := CoerceToColumn(KindFloat, "1.5"); v.Kind() != KindFloat {
		t.Fatalf("float column coercion: %#v", v)
	}
	// Parse failure silently keeps the string.
	if v := CoerceToColumn(KindInt, "abc"); v.Kind() != KindString {
		t.Fatalf("failed coercion should fall back to string: %#v", v)
	}
	if v := CoerceToColumn(KindString, "42"); v.Kind() != KindString {
		t.Fatalf("string column keeps string: %#v", v)
	}
	if v := CoerceToColumn(KindBool, "TRUE"); v.Kind() != KindBool || !v.Boolean() {
		t.Fatalf("bool column coercion: %#v", v)
	}
}
