package table

import (
	"fmt"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Matrix is a pivoted view of a table: one row per Index time, one column
// per Columns label, NaN where no source row existed.
type Matrix struct {
	Index   []time.Time
	Columns []string
	Data    [][]float64 // Data[row][col]
}

// Column returns the values of one matrix column.
func (m *Matrix) Column(name string) ([]float64, bool) {
	for j, c := range m.Columns {
		if c == name {
			out := make([]float64, len(m.Index))
			for i := range m.Index {
				out[i] = m.Data[i][j]
			}
			return out, true
		}
	}
	return nil, false
}

// Empty reports whether the matrix has no cells.
func (m *Matrix) Empty() bool {
	return m == nil || len(m.Index) == 0 || len(m.Columns) == 0
}

// Subset returns the matrix restricted to the given columns, keeping the
// requested order and skipping unknown names.
func (m *Matrix) Subset(cols []string) *Matrix {
	out := &Matrix{Index: m.Index}
	var keep []int
	for _, want := range cols {
		for j, c := range m.Columns {
			if c == want {
				out.Columns = append(out.Columns, c)
				keep = append(keep, j)
				break
			}
		}
	}
	out.Data = make([][]float64, len(m.Index))
	for i := range m.Index {
		row := make([]float64, len(keep))
		for k, j := range keep {
			row[k] = m.Data[i][j]
		}
		out.Data[i] = row
	}
	return out
}

// Pivot spreads valueCol over an indexCol (time) × columnCol (string)
// grid, with the index sorted ascending. When several source rows land in
// the same cell the last one wins.
func (t *Table) Pivot(indexCol, columnCol, valueCol string) (*Matrix, error) {
	idx, err := t.Times(indexCol)
	if err != nil {
		return nil, err
	}
	cols, err := t.Strings(columnCol)
	if err != nil {
		return nil, err
	}
	vals, err := t.Floats(valueCol)
	if err != nil {
		return nil, err
	}

	timeSet := make(map[time.Time]bool)
	colSet := make(map[string]bool)
	for i := 0; i < t.nrows; i++ {
		if idx[i].IsZero() || cols[i] == "" {
			continue
		}
		timeSet[idx[i]] = true
		colSet[cols[i]] = true
	}

	m := &Matrix{}
	for ts := range timeSet {
		m.Index = append(m.Index, ts)
	}
	sort.Slice(m.Index, func(a, b int) bool { return m.Index[a].Before(m.Index[b]) })
	for c := range colSet {
		m.Columns = append(m.Columns, c)
	}
	sort.Strings(m.Columns)

	rowOf := make(map[time.Time]int, len(m.Index))
	for i, ts := range m.Index {
		rowOf[ts] = i
	}
	colOf := make(map[string]int, len(m.Columns))
	for j, c := range m.Columns {
		colOf[c] = j
	}

	m.Data = make([][]float64, len(m.Index))
	for i := range m.Data {
		row := make([]float64, len(m.Columns))
		for j := range row {
			row[j] = math.NaN()
		}
		m.Data[i] = row
	}
	for i := 0; i < t.nrows; i++ {
		if idx[i].IsZero() || cols[i] == "" {
			continue
		}
		m.Data[rowOf[idx[i]]][colOf[cols[i]]] = vals[i]
	}
	return m, nil
}

// NormalizeFirst rescales each column so its first non-missing value
// equals base (100 for a price index). Columns whose first value is zero
// or entirely missing are left unchanged.
func (m *Matrix) NormalizeFirst(base float64) {
	for j := range m.Columns {
		first := math.NaN()
		for i := range m.Index {
			if !math.IsNaN(m.Data[i][j]) {
				first = m.Data[i][j]
				break
			}
		}
		if math.IsNaN(first) || first == 0 {
			continue
		}
		for i := range m.Index {
			if !math.IsNaN(m.Data[i][j]) {
				m.Data[i][j] = base * m.Data[i][j] / first
			}
		}
	}
}

// CorrMatrix computes pairwise Pearson correlations between matrix
// columns over their pairwise-complete observations. Pairs with fewer
// than two complete observations yield NaN.
func (m *Matrix) CorrMatrix() *CorrResult {
	n := len(m.Columns)
	out := &CorrResult{Labels: m.Columns, Values: make([][]float64, n)}
	for a := 0; a < n; a++ {
		out.Values[a] = make([]float64, n)
		for b := 0; b < n; b++ {
			if a == b {
				out.Values[a][b] = 1
				continue
			}
			var xs, ys []float64
			for i := range m.Index {
				x, y := m.Data[i][a], m.Data[i][b]
				if math.IsNaN(x) || math.IsNaN(y) {
					continue
				}
				xs = append(xs, x)
				ys = append(ys, y)
			}
			if len(xs) < 2 {
				out.Values[a][b] = math.NaN()
				continue
			}
			out.Values[a][b] = stat.Correlation(xs, ys, nil)
		}
	}
	return out
}

// CorrResult is a labelled square correlation matrix.
type CorrResult struct {
	Labels []string
	Values [][]float64
}

// At returns the correlation between two labels.
func (c *CorrResult) At(a, b string) (float64, error) {
	ia, ib := -1, -1
	for i, l := range c.Labels {
		if l == a {
			ia = i
		}
		if l == b {
			ib = i
		}
	}
	if ia < 0 || ib < 0 {
		return 0, fmt.Errorf("unknown labels %q, %q", a, b)
	}
	return c.Values[ia][ib], nil
}

// Empty reports whether the matrix has no labels.
func (c *CorrResult) Empty() bool {
	return c == nil || len(c.Labels) == 0
}
