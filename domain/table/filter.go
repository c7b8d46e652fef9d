package table

import (
	"fmt"
	"math"
	"time"
)

// Mask is a per-row boolean filter. Masks are combined conjunctively and
// applied once; rows where any predicate fails are dropped together.
type Mask []bool

// TrueMask returns a mask selecting every row.
func TrueMask(n int) Mask {
	m := make(Mask, n)
	for i := range m {
		m[i] = true
	}
	return m
}

// And narrows the receiver in place by another mask of the same length.
func (m Mask) And(other Mask) Mask {
	for i := range m {
		m[i] = m[i] && other[i]
	}
	return m
}

// Count returns the number of selected rows.
func (m Mask) Count() int {
	n := 0
	for _, v := range m {
		if v {
			n++
		}
	}
	return n
}

// MaskIn selects rows whose string cell is one of the allowed values.
func (t *Table) MaskIn(name string, allowed []string) (Mask, error) {
	vals, err := t.Strings(name)
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(allowed))
	for _, v := range allowed {
		set[v] = true
	}
	m := make(Mask, len(vals))
	for i, v := range vals {
		m[i] = set[v]
	}
	return m, nil
}

// MaskNumBetween selects rows whose numeric cell lies in [lo, hi].
// Missing cells never match.
func (t *Table) MaskNumBetween(name string, lo, hi float64) (Mask, error) {
	vals, err := t.Floats(name)
	if err != nil {
		return nil, err
	}
	m := make(Mask, len(vals))
	for i, v := range vals {
		m[i] = !math.IsNaN(v) && v >= lo && v <= hi
	}
	return m, nil
}

// MaskTimeBetween selects rows whose time cell lies in [from, to].
// Missing cells never match.
func (t *Table) MaskTimeBetween(name string, from, to time.Time) (Mask, error) {
	vals, err := t.Times(name)
	if err != nil {
		return nil, err
	}
	m := make(Mask, len(vals))
	for i, v := range vals {
		m[i] = !v.IsZero() && !v.Before(from) && !v.After(to)
	}
	return m, nil
}

// Filter returns the rows selected by the mask, preserving order.
func (t *Table) Filter(m Mask) (*Table, error) {
	if len(m) != t.nrows {
		return nil, fmt.Errorf("mask has %d entries, table has %d rows", len(m), t.nrows)
	}
	var rows []int
	for i, keep := range m {
		if keep {
			rows = append(rows, i)
		}
	}
	return t.take(rows), nil
}
