package tabular

import (
	"fmt"
	"sort"
	"strings"
)

// Row is one table row, indexed parallel to the table's column order.
type Row []Value

// Table is an ordered, rectangular collection of rows. Column order matters
// for display; column names are unique. Transform operations never mutate a
// table in place: they build a new Table so a failed operation leaves the
// caller's table untouched.
type Table struct {
	columns []string
	index   map[string]int
	rows    []Row
}

// New creates an empty table with the given column order.
func New(columns []string) *Table {
	t := &Table{
		columns: append([]string(nil), columns...),
		index:   make(map[string]int, len(columns)),
	}
	for i, c := range t.columns {
		t.index[c] = i
	}
	return t
}

// Columns returns the ordered column names. Callers must not modify the
// returned slice.
func (t *Table) Columns() []string { return t.columns }

// NumRows returns the row count.
func (t *Table) NumRows() int { return len(t.rows) }

// NumCols returns the column count.
func (t *Table) NumCols() int { return len(t.columns) }

// HasColumn reports whether the named column exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// ColumnIndex returns the position of the named column.
func (t *Table) ColumnIndex(name string) (int, bool) {
	i, ok := t.index[name]
	return i, ok
}

// At returns the value at the given row and column name.
func (t *Table) At(row int, column string) Value {
	i, ok := t.index[column]
	if !ok {
		return Null()
	}
	return t.rows[row][i]
}

// Row returns the i-th row. Callers must not modify it.
func (t *Table) Row(i int) Row { return t.rows[i] }

// AppendRow adds a row. Short rows are padded with nulls; long rows are
// truncated to the column count.
func (t *Table) AppendRow(r Row) {
	row := make(Row, len(t.columns))
	for i := range row {
		if i < len(r) {
			row[i] = r[i]
		} else {
			row[i] = Null()
		}
	}
	t.rows = append(t.rows, row)
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	c := New(t.columns)
	c.rows = make([]Row, len(t.rows))
	for i, r := range t.rows {
		c.rows[i] = append(Row(nil), r...)
	}
	return c
}

// ColumnKind infers the column's type from its non-null values: int when all
// are ints, float when any is a float and the rest numeric, otherwise the
// kind shared by all values, falling back to string on a mix.
func (t *Table) ColumnKind(column string) Kind {
	ci, ok := t.index[column]
	if !ok {
		return KindNull
	}
	kind := KindNull
	for _, r := range t.rows {
		v := r[ci]
		if v.IsNull() {
			continue
		}
		switch {
		case kind == KindNull:
			kind = v.Kind()
		case kind == v.Kind():
		case kind == KindInt && v.Kind() == KindFloat,
			kind == KindFloat && v.Kind() == KindInt:
			kind = KindFloat
		default:
			return KindString
		}
	}
	return kind
}

// IsNumericColumn reports whether the column's inferred type is numeric.
func (t *Table) IsNumericColumn(column string) bool {
	k := t.ColumnKind(column)
	return k == KindInt || k == KindFloat
}

// Filter returns a new table containing rows matching the predicate, in
// their original order.
func (t *Table) Filter(keep func(Row) bool) *Table {
	out := New(t.columns)
	for _, r := range t.rows {
		if keep(r) {
			out.rows = append(out.rows, r)
		}
	}
	return out
}

// Select returns a new table with only the named columns, in the requested
// order. The caller validates column existence first.
func (t *Table) Select(columns []string) *Table {
	out := New(columns)
	idx := make([]int, len(columns))
	for i, c := range columns {
		idx[i] = t.index[c]
	}
	for _, r := range t.rows {
		row := make(Row, len(columns))
		for i, ci := range idx {
			row[i] = r[ci]
		}
		out.rows = append(out.rows, row)
	}
	return out
}

// SortBy returns a new table with rows stably sorted on the named column.
// Null cells sort after every other value in both directions.
func (t *Table) SortBy(column string, ascending bool) *Table {
	ci := t.index[column]
	out := New(t.columns)
	out.rows = append([]Row(nil), t.rows...)
	sort.SliceStable(out.rows, func(i, j int) bool {
		a, b := out.rows[i][ci], out.rows[j][ci]
		if a.IsNull() || b.IsNull() {
			return !a.IsNull() && b.IsNull()
		}
		c := a.Compare(b)
		if ascending {
			return c < 0
		}
		return c > 0
	})
	return out
}

// Head returns a new table with the first n rows.
func (t *Table) Head(n int) *Table {
	if n > len(t.rows) {
		n = len(t.rows)
	}
	if n < 0 {
		n = 0
	}
	out := New(t.columns)
	out.rows = append([]Row(nil), t.rows[:n]...)
	return out
}

// Tail returns a new table with the last n rows, in original order.
func (t *Table) Tail(n int) *Table {
	if n > len(t.rows) {
		n = len(t.rows)
	}
	if n < 0 {
		n = 0
	}
	out := New(t.columns)
	out.rows = append([]Row(nil), t.rows[len(t.rows)-n:]...)
	return out
}

// ColumnValues returns the column's values in row order.
func (t *Table) ColumnValues(column string) []Value {
	ci, ok := t.index[column]
	if !ok {
		return nil
	}
	out := make([]Value, len(t.rows))
	for i, r := range t.rows {
		out[i] = r[ci]
	}
	return out
}

// DistinctValues returns the column's distinct values in order of first
// occurrence. Null counts as a value.
func (t *Table) DistinctValues(column string) []Value {
	seen := make(map[string]bool)
	var out []Value
	for _, v := range t.ColumnValues(column) {
		key := v.Kind().String() + ":" + v.Text()
		if v.IsNumeric() {
			f, _ := v.Float64()
			key = fmt.Sprintf("num:%g", f)
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, v)
	}
	return out
}

// RenderHead renders the first n rows as an aligned text block, the format
// used by inspect output and transform summaries.
func (t *Table) RenderHead(n int) string {
	if n > len(t.rows) {
		n = len(t.rows)
	}
	widths := make([]int, len(t.columns))
	for i, c := range t.columns {
		widths[i] = len(c)
	}
	cells := make([][]string, n)
	for r := 0; r < n; r++ {
		cells[r] = make([]string, len(t.columns))
		for c := range t.columns {
			s := t.rows[r][c].Text()
			cells[r][c] = s
			if len(s) > widths[c] {
				widths[c] = len(s)
			}
		}
	}
	var b strings.Builder
	for i, c := range t.columns {
		if i > 0 {
			b.WriteString("  ")
		}
		fmt.Fprintf(&b, "%-*s", widths[i], c)
	}
	for r := 0; r < n; r++ {
		b.WriteByte('\n')
		for c := range t.columns {
			if c > 0 {
				b.WriteString("  ")
			}
			fmt.Fprintf(&b, "%-*s", widths[c], cells[r][c])
		}
	}
	return b.String()
}

// Render renders the whole table as text.
func (t *Table) Render() string { return t.RenderHead(len(t.rows)) }
