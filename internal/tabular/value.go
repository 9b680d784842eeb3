// Package tabular implements the in-memory table model shared by the
// transform engine and the chart renderer: a closed tagged variant for cell
// values, ordered column/row storage, string-to-value coercion, and the
// permissive date parser used for date filtering.
package tabular

import (
	"fmt"
	"strconv"
	"time"
)

// Kind identifies the concrete type held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindInt
	KindFloat
	KindBool
	KindDate
)

// String returns the kind name as shown to users in inspect output.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindInt:
		return "int64"
	case KindFloat:
		return "float64"
	case KindBool:
		return "bool"
	case KindDate:
		return "date"
	default:
		return "unknown"
	}
}

// Value is a single table cell. The zero Value is null.
type Value struct {
	kind Kind
	s    string
	i    int64
	f    float64
	b    bool
	t    time.Time
}

// Null returns the null value.
func Null() Value { return Value{} }

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Int returns an integer value.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Float returns a float value.
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Date returns a date value.
func Date(t time.Time) Value { return Value{kind: KindDate, t: t} }

// Kind reports the concrete type of the value.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// IsNumeric reports whether the value is an int or float.
func (v Value) IsNumeric() bool { return v.kind == KindInt || v.kind == KindFloat }

// Int64 returns the integer payload. Valid only for KindInt.
func (v Value) Int64() int64 { return v.i }

// Boolean returns the bool payload. Valid only for KindBool.
func (v Value) Boolean() bool { return v.b }

// Time returns the date payload. Valid only for KindDate.
func (v Value) Time() time.Time { return v.t }

// Float64 returns the value as a float64 when it is numeric.
func (v Value) Float64() (float64, bool) {
	switch v.kind {
	case KindInt:
		return float64(v.i), true
	case KindFloat:
		return v.f, true
	default:
		return 0, false
	}
}

// Text renders the value the way it appears in tool output and chart labels.
func (v Value) Text() string {
	switch v.kind {
	case KindNull:
		return ""
	case KindString:
		return v.s
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindDate:
		return v.t.Format("2006-01-02")
	default:
		return ""
	}
}

// Equal reports whether two values are equal. Int and float compare by
// numeric value so that a coerced "100" matches both Int(100) and
// Float(100.0). Null equals only null.
func (v Value) Equal(o Value) bool {
	if v.IsNumeric() && o.IsNumeric() {
		a, _ := v.Float64()
		b, _ := o.Float64()
		return a == b
	}
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindString:
		return v.s == o.s
	case KindBool:
		return v.b == o.b
	case KindDate:
		return v.t.Equal(o.t)
	default:
		return false
	}
}

// Compare orders two values: negative when v < o, zero when equal, positive
// when v > o. Numeric pairs compare numerically, dates chronologically,
// everything else by rendered text. Nulls sort after all other values.
func (v Value) Compare(o Value) int {
	if v.IsNull() || o.IsNull() {
		switch {
		case v.IsNull() && o.IsNull():
			return 0
		case v.IsNull():
			return 1
		default:
			return -1
		}
	}
	if v.IsNumeric() && o.IsNumeric() {
		a, _ := v.Float64()
		b, _ := o.Float64()
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		default:
			return 0
		}
	}
	if v.kind == KindDate && o.kind == KindDate {
		switch {
		case v.t.Before(o.t):
			return -1
		case v.t.After(o.t):
			return 1
		default:
			return 0
		}
	}
	a, b := v.Text(), o.Text()
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// GoString helps test failure output.
func (v Value) GoString() string {
	return fmt.Sprintf("tabular.Value(%s:%s)", v.kind, v.Text())
}
