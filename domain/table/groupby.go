package table

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/montanaflynn/stats"
)

// AggOp names a per-group aggregate.
type AggOp int

const (
	AggCount AggOp = iota
	AggSum
	AggMean
	AggMedian
	AggMin
	AggMax
	AggQuantile
)

// Agg describes one aggregate column of a GroupBy result: apply Op to
// Col within each group and store it under As. Q is the quantile in
// [0,100] for AggQuantile. AggCount ignores Col.
type Agg struct {
	Col string
	Op  AggOp
	As  string
	Q   float64
}

// aggregate applies one op to the non-missing values of a group.
// Empty inputs yield NaN (count excepted).
func aggregate(op AggOp, q float64, vals []float64) float64 {
	clean := vals[:0:0]
	for _, v := range vals {
		if !math.IsNaN(v) {
			clean = append(clean, v)
		}
	}
	if op == AggCount {
		return float64(len(clean))
	}
	if len(clean) == 0 {
		return math.NaN()
	}
	var out float64
	var err error
	switch op {
	case AggSum:
		out, err = stats.Sum(clean)
	case AggMean:
		out, err = stats.Mean(clean)
	case AggMedian:
		out, err = stats.Median(clean)
	case AggMin:
		out, err = stats.Min(clean)
	case AggMax:
		out, err = stats.Max(clean)
	case AggQuantile:
		out, err = stats.Percentile(clean, q)
	default:
		return math.NaN()
	}
	if err != nil {
		return math.NaN()
	}
	return out
}

// GroupBy groups rows by the given key columns (string or time) and
// computes the aggregates. The result carries the key columns followed by
// one numeric column per aggregate, with groups in first-seen order.
func (t *Table) GroupBy(keys []string, aggs []Agg) (*Table, error) {
	for _, k := range keys {
		c := t.Col(k)
		if c == nil {
			return nil, fmt.Errorf("no column %q", k)
		}
		if c.Kind == KindNumber {
			return nil, fmt.Errorf("cannot group by numeric column %q", k)
		}
	}
	for _, a := range aggs {
		if a.Op == AggCount {
			continue
		}
		if _, err := t.Floats(a.Col); err != nil {
			return nil, err
		}
	}

	groupKey := func(row int) string {
		parts := make([]string, len(keys))
		for i, k := range keys {
			c := t.Col(k)
			switch c.Kind {
			case KindString:
				parts[i] = c.Strings[row]
			case KindTime:
				parts[i] = c.Times[row].Format(time.RFC3339)
			}
		}
		return strings.Join(parts, "\x1f")
	}

	var order []string
	groups := make(map[string][]int)
	for row := 0; row < t.nrows; row++ {
		k := groupKey(row)
		if _, seen := groups[k]; !seen {
			order = append(order, k)
		}
		groups[k] = append(groups[k], row)
	}

	out := New()
	for _, k := range keys {
		c := t.Col(k)
		switch c.Kind {
		case KindString:
			vals := make([]string, len(order))
			for i, gk := range order {
				vals[i] = c.Strings[groups[gk][0]]
			}
			if err := out.AddStrings(k, vals); err != nil {
				return nil, err
			}
		case KindTime:
			vals := make([]time.Time, len(order))
			for i, gk := range order {
				vals[i] = c.Times[groups[gk][0]]
			}
			if err := out.AddTimes(k, vals); err != nil {
				return nil, err
			}
		}
	}
	for _, a := range aggs {
		vals := make([]float64, len(order))
		for i, gk := range order {
			rows := groups[gk]
			var cell []float64
			if a.Op == AggCount {
				vals[i] = float64(len(rows))
				continue
			}
			src, _ := t.Floats(a.Col)
			cell = make([]float64, len(rows))
			for j, r := range rows {
				cell[j] = src[r]
			}
			vals[i] = aggregate(a.Op, a.Q, cell)
		}
		if err := out.AddNumbers(a.As, vals); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// ValueCounts returns the distinct values of a string column with their row
// counts, most frequent first.
func (t *Table) ValueCounts(name string) (*Table, error) {
	counted, err := t.GroupBy([]string{name}, []Agg{{Op: AggCount, As: "count"}})
	if err != nil {
		return nil, err
	}
	return counted.SortBy("count", false)
}

// TopCategories returns the n most frequent values of a string column.
func (t *Table) TopCategories(name string, n int) ([]string, error) {
	counted, err := t.ValueCounts(name)
	if err != nil {
		return nil, err
	}
	vals, err := counted.Strings(name)
	if err != nil {
		return nil, err
	}
	if n > len(vals) {
		n = len(vals)
	}
	top := make([]string, n)
	copy(top, vals[:n])
	return top, nil
}
