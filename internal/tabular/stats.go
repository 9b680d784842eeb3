package tabular

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Summary holds descriptive statistics for a numeric column, mirroring the
// count/mean/std/min/quartiles/max block shown to users.
type Summary struct {
	Count int
	Mean  float64
	Std   float64
	Min   float64
	Q25   float64
	Q50   float64
	Q75   float64
	Max   float64
}

// Describe computes descriptive statistics over the column's non-null
// numeric values. Returns false when the column holds no numeric values.
func (t *Table) Describe(column string) (Summary, bool) {
	var vals []float64
	for _, v := range t.ColumnValues(column) {
		if f, ok := v.Float64(); ok {
			vals = append(vals, f)
		}
	}
	if len(vals) == 0 {
		return Summary{}, false
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)

	var sum float64
	for _, f := range vals {
		sum += f
	}
	mean := sum / float64(len(vals))

	// Sample standard deviation; zero for a single observation.
	var std float64
	if len(vals) > 1 {
		var ss float64
		for _, f := range vals {
			d := f - mean
			ss += d * d
		}
		std = math.Sqrt(ss / float64(len(vals)-1))
	}

	return Summary{
		Count: len(vals),
		Mean:  mean,
		Std:   std,
		Min:   sorted[0],
		Q25:   percentile(sorted, 0.25),
		Q50:   percentile(sorted, 0.50),
		Q75:   percentile(sorted, 0.75),
		Max:   sorted[len(sorted)-1],
	}, true
}

// percentile computes the q-th percentile of sorted values by linear
// interpolation between closest ranks.
func percentile(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// Render formats the summary as the text block returned by the numeric
// summary operation.
func (s Summary) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "count  %d\n", s.Count)
	fmt.Fprintf(&b, "mean   %.6g\n", s.Mean)
	fmt.Fprintf(&b, "std    %.6g\n", s.Std)
	fmt.Fprintf(&b, "min    %.6g\n", s.Min)
	fmt.Fprintf(&b, "25%%    %.6g\n", s.Q25)
	fmt.Fprintf(&b, "50%%    %.6g\n", s.Q50)
	fmt.Fprintf(&b, "75%%    %.6g\n", s.Q75)
	fmt.Fprintf(&b, "max    %.6g", s.Max)
	return b.String()
}
