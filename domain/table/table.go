package table

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Kind identifies the storage type of a column.
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindTime
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindTime:
		return "time"
	}
	return "unknown"
}

// Column is a single named column. Exactly one of the value slices is
// populated, according to Kind. Missing cells are NaN for numbers and the
// zero time for times.
type Column struct {
	Name    string
	Kind    Kind
	Strings []string
	Floats  []float64
	Times   []time.Time
}

func (c *Column) len() int {
	switch c.Kind {
	case KindString:
		return len(c.Strings)
	case KindNumber:
		return len(c.Floats)
	case KindTime:
		return len(c.Times)
	}
	return 0
}

// Table is an in-memory column-oriented table. All columns have the same
// length. Tables are built once per request and never mutated in place by
// handlers; transforming operations return new tables.
type Table struct {
	cols  []*Column
	index map[string]int
	nrows int
}

// New creates an empty table.
func New() *Table {
	return &Table{index: make(map[string]int)}
}

// NumRows returns the number of rows.
func (t *Table) NumRows() int { return t.nrows }

// NumCols returns the number of columns.
func (t *Table) NumCols() int { return len(t.cols) }

// Names returns column names in insertion order.
func (t *Table) Names() []string {
	names := make([]string, len(t.cols))
	for i, c := range t.cols {
		names[i] = c.Name
	}
	return names
}

// Col returns the named column, or nil if absent.
func (t *Table) Col(name string) *Column {
	i, ok := t.index[name]
	if !ok {
		return nil
	}
	return t.cols[i]
}

// HasCol reports whether the named column exists.
func (t *Table) HasCol(name string) bool {
	_, ok := t.index[name]
	return ok
}

func (t *Table) addColumn(c *Column) error {
	if _, exists := t.index[c.Name]; exists {
		return fmt.Errorf("column %q already exists", c.Name)
	}
	if len(t.cols) > 0 && c.len() != t.nrows {
		return fmt.Errorf("column %q has %d rows, table has %d", c.Name, c.len(), t.nrows)
	}
	if len(t.cols) == 0 {
		t.nrows = c.len()
	}
	t.index[c.Name] = len(t.cols)
	t.cols = append(t.cols, c)
	return nil
}

// AddStrings appends a string column.
func (t *Table) AddStrings(name string, vals []string) error {
	return t.addColumn(&Column{Name: name, Kind: KindString, Strings: vals})
}

// AddNumbers appends a numeric column. NaN marks missing cells.
func (t *Table) AddNumbers(name string, vals []float64) error {
	return t.addColumn(&Column{Name: name, Kind: KindNumber, Floats: vals})
}

// AddTimes appends a time column. The zero time marks missing cells.
func (t *Table) AddTimes(name string, vals []time.Time) error {
	return t.addColumn(&Column{Name: name, Kind: KindTime, Times: vals})
}

// Strings returns the values of a string column.
func (t *Table) Strings(name string) ([]string, error) {
	c := t.Col(name)
	if c == nil {
		return nil, fmt.Errorf("no column %q", name)
	}
	if c.Kind != KindString {
		return nil, fmt.Errorf("column %q is %s, not string", name, c.Kind)
	}
	return c.Strings, nil
}

// Floats returns the values of a numeric column.
func (t *Table) Floats(name string) ([]float64, error) {
	c := t.Col(name)
	if c == nil {
		return nil, fmt.Errorf("no column %q", name)
	}
	if c.Kind != KindNumber {
		return nil, fmt.Errorf("column %q is %s, not number", name, c.Kind)
	}
	return c.Floats, nil
}

// Times returns the values of a time column.
func (t *Table) Times(name string) ([]time.Time, error) {
	c := t.Col(name)
	if c == nil {
		return nil, fmt.Errorf("no column %q", name)
	}
	if c.Kind != KindTime {
		return nil, fmt.Errorf("column %q is %s, not time", name, c.Kind)
	}
	return c.Times, nil
}

// take builds a new table containing the given row indices, in order.
func (t *Table) take(rows []int) *Table {
	out := New()
	for _, c := range t.cols {
		nc := &Column{Name: c.Name, Kind: c.Kind}
		switch c.Kind {
		case KindString:
			nc.Strings = make([]string, len(rows))
			for i, r := range rows {
				nc.Strings[i] = c.Strings[r]
			}
		case KindNumber:
			nc.Floats = make([]float64, len(rows))
			for i, r := range rows {
				nc.Floats[i] = c.Floats[r]
			}
		case KindTime:
			nc.Times = make([]time.Time, len(rows))
			for i, r := range rows {
				nc.Times[i] = c.Times[r]
			}
		}
		// addColumn cannot fail here: names are unique and lengths match.
		_ = out.addColumn(nc)
	}
	out.nrows = len(rows)
	return out
}

// Take builds a new table containing the given row indices, in order.
// Indices may repeat or reorder rows.
func (t *Table) Take(rows []int) (*Table, error) {
	for _, r := range rows {
		if r < 0 || r >= t.nrows {
			return nil, fmt.Errorf("row %d out of range [0,%d)", r, t.nrows)
		}
	}
	return t.take(rows), nil
}

// Head returns the first n rows (or all rows if the table is shorter).
func (t *Table) Head(n int) *Table {
	if n > t.nrows {
		n = t.nrows
	}
	rows := make([]int, n)
	for i := range rows {
		rows[i] = i
	}
	return t.take(rows)
}

// SortBy returns a copy of the table sorted by the given column. Missing
// cells sort last regardless of direction.
func (t *Table) SortBy(name string, ascending bool) (*Table, error) {
	c := t.Col(name)
	if c == nil {
		return nil, fmt.Errorf("no column %q", name)
	}
	rows := make([]int, t.nrows)
	for i := range rows {
		rows[i] = i
	}
	less := func(a, b int) bool { return false }
	switch c.Kind {
	case KindString:
		less = func(a, b int) bool {
			if ascending {
				return c.Strings[a] < c.Strings[b]
			}
			return c.Strings[a] > c.Strings[b]
		}
	case KindNumber:
		less = func(a, b int) bool {
			va, vb := c.Floats[a], c.Floats[b]
			if math.IsNaN(va) {
				return false
			}
			if math.IsNaN(vb) {
				return true
			}
			if ascending {
				return va < vb
			}
			return va > vb
		}
	case KindTime:
		less = func(a, b int) bool {
			va, vb := c.Times[a], c.Times[b]
			if va.IsZero() {
				return false
			}
			if vb.IsZero() {
				return true
			}
			if ascending {
				return va.Before(vb)
			}
			return va.After(vb)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool { return less(rows[i], rows[j]) })
	return t.take(rows), nil
}

// DropMissing returns rows where every listed column has a value.
func (t *Table) DropMissing(names ...string) (*Table, error) {
	for _, n := range names {
		if !t.HasCol(n) {
			return nil, fmt.Errorf("no column %q", n)
		}
	}
	var rows []int
	for i := 0; i < t.nrows; i++ {
		keep := true
		for _, n := range names {
			c := t.Col(n)
			switch c.Kind {
			case KindString:
				if c.Strings[i] == "" {
					keep = false
				}
			case KindNumber:
				if math.IsNaN(c.Floats[i]) {
					keep = false
				}
			case KindTime:
				if c.Times[i].IsZero() {
					keep = false
				}
			}
			if !keep {
				break
			}
		}
		if keep {
			rows = append(rows, i)
		}
	}
	return t.take(rows), nil
}

// Uniques returns the distinct non-empty values of a string column, sorted.
func (t *Table) Uniques(name string) ([]string, error) {
	vals, err := t.Strings(name)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(vals))
	var out []string
	for _, v := range vals {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Strings(out)
	return out, nil
}

// TimeBounds returns the min and max non-missing values of a time column.
func (t *Table) TimeBounds(name string) (time.Time, time.Time, error) {
	vals, err := t.Times(name)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	var lo, hi time.Time
	for _, v := range vals {
		if v.IsZero() {
			continue
		}
		if lo.IsZero() || v.Before(lo) {
			lo = v
		}
		if hi.IsZero() || v.After(hi) {
			hi = v
		}
	}
	return lo, hi, nil
}

// NumBounds returns the min and max non-missing values of a numeric column.
func (t *Table) NumBounds(name string) (float64, float64, error) {
	vals, err := t.Floats(name)
	if err != nil {
		return 0, 0, err
	}
	lo, hi := math.NaN(), math.NaN()
	for _, v := range vals {
		if math.IsNaN(v) {
			continue
		}
		if math.IsNaN(lo) || v < lo {
			lo = v
		}
		if math.IsNaN(hi) || v > hi {
			hi = v
		}
	}
	if math.IsNaN(lo) {
		return 0, 0, fmt.Errorf("column %q has no values", name)
	}
	return lo, hi, nil
}
