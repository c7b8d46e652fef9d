package ui

import (
	"fmt"
	"math"
	"strings"

	"dashlab/domain/table"
)

// formatMoney renders a dollar amount with thousands separators and no
// cents, e.g. "$1,234,567".
func formatMoney(v float64) string {
	if math.IsNaN(v) {
		return "—"
	}
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return sign + "$" + groupThousands(fmt.Sprintf("%.0f", v))
}

// formatComma renders a number with thousands separators, keeping one
// decimal place only when the value is not whole.
func formatComma(v float64) string {
	if math.IsNaN(v) {
		return "—"
	}
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	if v == math.Trunc(v) {
		return sign + groupThousands(fmt.Sprintf("%.0f", v))
	}
	s := fmt.Sprintf("%.1f", v)
	dot := strings.IndexByte(s, '.')
	return sign + groupThousands(s[:dot]) + s[dot:]
}

// formatPct renders a fraction as a signed percentage, e.g. 0.123 ->
// "+12.3%".
func formatPct(v float64) string {
	if math.IsNaN(v) {
		return "—"
	}
	return fmt.Sprintf("%+.1f%%", v*100)
}

// formatFloat renders with a fixed precision, mapping NaN to a dash.
func formatFloat(v float64, prec int) string {
	if math.IsNaN(v) {
		return "—"
	}
	return fmt.Sprintf("%.*f", prec, v)
}

func groupThousands(digits string) string {
	n := len(digits)
	if n <= 3 {
		return digits
	}
	var b strings.Builder
	rem := n % 3
	if rem > 0 {
		b.WriteString(digits[:rem])
	}
	for i := rem; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// tableView is the shape templates render tables from.
type tableView struct {
	Headers []string
	Rows    [][]string
	Total   int
}

// viewTable formats up to limit rows of a table for display. Money-like
// column names get currency formatting, everything else falls back to
// kind-appropriate defaults.
func viewTable(t *table.Table, limit int) tableView {
	v := tableView{Headers: t.Names(), Total: t.NumRows()}
	head := t.Head(limit)
	n := head.NumRows()
	v.Rows = make([][]string, n)
	for i := 0; i < n; i++ {
		row := make([]string, len(v.Headers))
		for j, name := range v.Headers {
			row[j] = cellString(head.Col(name), name, i)
		}
		v.Rows[i] = row
	}
	return v
}

func cellString(c *table.Column, name string, i int) string {
	switch c.Kind {
	case table.KindString:
		return c.Strings[i]
	case table.KindNumber:
		v := c.Floats[i]
		switch {
		case math.IsNaN(v):
			return "—"
		case moneyColumn(name):
			return formatMoney(v)
		case strings.HasSuffix(name, "_pct") || name == "mom_change":
			return formatPct(v)
		default:
			return formatComma(v)
		}
	case table.KindTime:
		v := c.Times[i]
		if v.IsZero() {
			return "—"
		}
		return v.Format("2006-01-02")
	}
	return ""
}

func moneyColumn(name string) bool {
	return strings.Contains(name, "price") || name == "profit" || name == "ppsf"
}
