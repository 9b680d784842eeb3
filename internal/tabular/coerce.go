package tabular

import (
	"strconv"
	"strings"
)

// ParseScalar converts raw text from an external source (CSV cell, user
// input) into a Value: whole numbers become ints, numbers with a decimal
// point become floats, "true"/"false" become bools, empty text becomes null,
// anything else stays a string.
func ParseScalar(s string) Value {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Null()
	}
	if i, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return Int(i)
	}
	if strings.ContainsAny(trimmed, ".eE") {
		if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return Float(f)
		}
	}
	switch strings.ToLower(trimmed) {
	case "true":
		return Bool(true)
	case "false":
		return Bool(false)
	}
	return String(s)
}

// CoerceNumeric converts input text to an int or float when it parses as
// one. The second return reports whether a numeric conversion happened;
// otherwise the input is kept as a string value. This is the two-stage
// try/fallback rule used by the filter operations: coercion failure is not
// an error, the comparison simply proceeds on strings.
func CoerceNumeric(s string) (Value, bool) {
	trimmed := strings.TrimSpace(s)
	if i, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return Int(i), true
	}
	if strings.Contains(trimmed, ".") {
		if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return Float(f), true
		}
	}
	return String(s), false
}

// CoerceToColumn converts input text toward the column's inferred kind.
// Numeric target columns attempt the numeric coercion first; all other
// targets, and failed parses, fall back to the raw string.
func CoerceToColumn(kind Kind, s string) Value {
	switch kind {
	case KindInt, KindFloat:
		v, _ := CoerceNumeric(s)
		return v
	case KindBool:
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "true":
			return Bool(true)
		case "false":
			return Bool(false)
		}
		return String(s)
	default:
		return String(s)
	}
}
