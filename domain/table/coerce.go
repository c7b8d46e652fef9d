package table

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// timeLayouts are tried in order when coercing strings to times. The set
// covers the formats seen in exported spreadsheets.
var timeLayouts = []string{
	"2006-01-02",
	"1/2/2006",
	"01/02/2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// ParseNumber converts a cell to a float. Currency symbols, thousands
// separators and percent signs are stripped first. Unparseable cells
// become NaN rather than errors.
func ParseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN()
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimPrefix(s, "$")
	pct := strings.HasSuffix(s, "%")
	s = strings.TrimSuffix(s, "%")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	if pct {
		v /= 100
	}
	return v
}

// ParseTime converts a cell to a time. Unparseable cells become the zero
// time rather than errors.
func ParseTime(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if v, err := time.Parse(layout, s); err == nil {
			return v
		}
	}
	return time.Time{}
}

// ToNumeric replaces a string column with a numeric one, best effort.
// Cells that fail to parse become missing.
func (t *Table) ToNumeric(name string) error {
	c := t.Col(name)
	if c == nil {
		return fmt.Errorf("no column %q", name)
	}
	if c.Kind == KindNumber {
		return nil
	}
	if c.Kind != KindString {
		return fmt.Errorf("column %q is %s, cannot coerce to number", name, c.Kind)
	}
	floats := make([]float64, len(c.Strings))
	for i, s := range c.Strings {
		floats[i] = ParseNumber(s)
	}
	c.Kind = KindNumber
	c.Floats = floats
	c.Strings = nil
	return nil
}

// ToTime replaces a string column with a time one, best effort. Cells that
// fail to parse become missing.
func (t *Table) ToTime(name string) error {
	c := t.Col(name)
	if c == nil {
		return fmt.Errorf("no column %q", name)
	}
	if c.Kind == KindTime {
		return nil
	}
	if c.Kind != KindString {
		return fmt.Errorf("column %q is %s, cannot coerce to time", name, c.Kind)
	}
	times := make([]time.Time, len(c.Strings))
	for i, s := range c.Strings {
		times[i] = ParseTime(s)
	}
	c.Kind = KindTime
	c.Times = times
	c.Strings = nil
	return nil
}

// TruncateMonth maps a time to the first instant of its month, the grain
// used for monthly grouping. Zero times stay zero.
func TruncateMonth(v time.Time) time.Time {
	if v.IsZero() {
		return v
	}
	return time.Date(v.Year(), v.Month(), 1, 0, 0, 0, 0, v.Location())
}

// AddMonthColumn derives a month-truncated copy of a time column.
func (t *Table) AddMonthColumn(src, dst string) error {
	vals, err := t.Times(src)
	if err != nil {
		return err
	}
	months := make([]time.Time, len(vals))
	for i, v := range vals {
		months[i] = TruncateMonth(v)
	}
	return t.AddTimes(dst, months)
}
