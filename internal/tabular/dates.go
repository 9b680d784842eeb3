package tabular

import (
	"fmt"
	"strings"
	"time"
)

// dateFormats is the fixed registry of accepted date layouts, tried in
// priority order. MonthOnly layouts carry no day component; a range bound
// matching one of them is extended to the end of its month by callers that
// treat the bound as inclusive.
var dateFormats = []struct {
	layout    string
	monthOnly bool
}{
	{"2006-01-02T15:04:05", false},
	{"2006-01-02 15:04:05", false},
	{"2006-01-02", false},
	{"2006/01/02", false},
	{"1/2/2006", false},
	{"01/02/2006", false},
	{"January 2, 2006", false},
	{"Jan 2, 2006", false},
	{"2 January 2006", false},
	{"2 Jan 2006", false},
	{"January 2006", true},
	{"Jan 2006", true},
	{"2006-01", true},
}

// DateParseError reports the exact text that failed to parse as a date.
type DateParseError struct {
	Input string
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("cannot parse %q as a date; try formats like '2006-10-01' or '10/1/2006'", e.Input)
}

// ParseDate parses input against the format registry.
func ParseDate(s string) (time.Time, error) {
	t, _, err := ParseDateDetail(s)
	return t, err
}

// ParseDateDetail parses input against the format registry and reports
// whether the matched layout names only a month (no explicit day).
func ParseDateDetail(s string) (time.Time, bool, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return time.Time{}, false, &DateParseError{Input: s}
	}
	for _, f := range dateFormats {
		if t, err := time.Parse(f.layout, trimmed); err == nil {
			return t, f.monthOnly, nil
		}
	}
	return time.Time{}, false, &DateParseError{Input: s}
}

// EndOfMonth returns the last day of t's month at the same clock time.
func EndOfMonth(t time.Time) time.Time {
	firstOfNext := time.Date(t.Year(), t.Month(), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location()).AddDate(0, 1, 0)
	return firstOfNext.AddDate(0, 0, -1)
}

// ParseRangeBound parses a range bound. When the bound is the inclusive end
// of a range and names only a month or year-month, it is extended to the
// last day of that month so "December 2026" covers the whole of December.
func ParseRangeBound(s string, isEnd bool) (time.Time, error) {
	t, monthOnly, err := ParseDateDetail(s)
	if err != nil {
		return time.Time{}, err
	}
	if isEnd && monthOnly {
		t = EndOfMonth(t)
	}
	return t, nil
}
