// Package charts builds declarative Vega-Lite chart specifications: data
// plus encodings, no imperative drawing. The JSON is embedded into the
// page and rendered by the browser-side grammar library, which keeps the
// grammar itself out of scope here.
package charts

import (
	"encoding/json"
	"html/template"
	"math"
	"time"

	"dashlab/domain/table"
)

const schemaURL = "https://vega.github.io/schema/vega-lite/v5.json"

// Field types, as the grammar understands them.
const (
	Quantitative = "quantitative"
	Nominal      = "nominal"
	Ordinal      = "ordinal"
	Temporal     = "temporal"
)

// Spec is a Vega-Lite unit or layer specification.
type Spec struct {
	Schema   string    `json:"$schema,omitempty"`
	Title    string    `json:"title,omitempty"`
	Width    any       `json:"width,omitempty"`
	Height   int       `json:"height,omitempty"`
	Data     *Data     `json:"data,omitempty"`
	Mark     *Mark     `json:"mark,omitempty"`
	Encoding *Encoding `json:"encoding,omitempty"`
	Layer    []*Spec   `json:"layer,omitempty"`
}

// Data carries inline records.
type Data struct {
	Values []map[string]any `json:"values"`
}

// Mark selects the geometric glyph and its options.
type Mark struct {
	Type        string  `json:"type"`
	Point       bool    `json:"point,omitempty"`
	Opacity     float64 `json:"opacity,omitempty"`
	StrokeDash  []int   `json:"strokeDash,omitempty"`
	OuterRadius int     `json:"outerRadius,omitempty"`
	Tooltip     bool    `json:"tooltip,omitempty"`
}

// Bin requests histogram binning on a channel.
type Bin struct {
	MaxBins int `json:"maxbins,omitempty"`
}

// Legend tunes legend layout.
type Legend struct {
	Columns int `json:"columns,omitempty"`
}

// Field maps a data field (or aggregate) onto a visual channel.
type Field struct {
	Field     string  `json:"field,omitempty"`
	Type      string  `json:"type,omitempty"`
	Title     string  `json:"title,omitempty"`
	Aggregate string  `json:"aggregate,omitempty"`
	TimeUnit  string  `json:"timeUnit,omitempty"`
	Sort      any     `json:"sort,omitempty"`
	Bin       *Bin    `json:"bin,omitempty"`
	Format    string  `json:"format,omitempty"`
	Stack     any     `json:"stack,omitempty"`
	Legend    *Legend `json:"legend,omitempty"`
}

// Encoding maps fields to channels.
type Encoding struct {
	X       *Field  `json:"x,omitempty"`
	Y       *Field  `json:"y,omitempty"`
	Y2      *Field  `json:"y2,omitempty"`
	Color   *Field  `json:"color,omitempty"`
	Theta   *Field  `json:"theta,omitempty"`
	Text    *Field  `json:"text,omitempty"`
	Detail  *Field  `json:"detail,omitempty"`
	Tooltip []Field `json:"tooltip,omitempty"`
}

// New starts a unit spec over inline records.
func New(values []map[string]any) *Spec {
	return &Spec{
		Schema: schemaURL,
		Width:  "container",
		Data:   &Data{Values: values},
	}
}

// Layered combines unit specs sharing the same data.
func Layered(values []map[string]any, layers ...*Spec) *Spec {
	for _, l := range layers {
		l.Schema = ""
		l.Data = nil
		l.Width = nil
	}
	return &Spec{
		Schema: schemaURL,
		Width:  "container",
		Data:   &Data{Values: values},
		Layer:  layers,
	}
}

// JSON marshals the spec for direct embedding into a template script
// block.
func (s *Spec) JSON() (template.JS, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	return template.JS(b), nil
}

// Records converts a table into inline chart data. Times render as
// RFC 3339 dates and missing cells become nulls, which the grammar
// skips.
func Records(t *table.Table) []map[string]any {
	if t == nil {
		return nil
	}
	out := make([]map[string]any, t.NumRows())
	names := t.Names()
	for i := range out {
		rec := make(map[string]any, len(names))
		for _, name := range names {
			c := t.Col(name)
			switch c.Kind {
			case table.KindString:
				rec[name] = c.Strings[i]
			case table.KindNumber:
				if math.IsNaN(c.Floats[i]) {
					rec[name] = nil
				} else {
					rec[name] = c.Floats[i]
				}
			case table.KindTime:
				if c.Times[i].IsZero() {
					rec[name] = nil
				} else {
					rec[name] = c.Times[i].Format(time.RFC3339)
				}
			}
		}
		out[i] = rec
	}
	return out
}

// MatrixRecords flattens a pivoted matrix into long-form records with the
// given field names, one record per non-missing cell.
func MatrixRecords(m *table.Matrix, indexField, columnField, valueField string) []map[string]any {
	if m.Empty() {
		return nil
	}
	var out []map[string]any
	for i, ts := range m.Index {
		for j, col := range m.Columns {
			v := m.Data[i][j]
			if math.IsNaN(v) {
				continue
			}
			out = append(out, map[string]any{
				indexField:  ts.Format(time.RFC3339),
				columnField: col,
				valueField:  v,
			})
		}
	}
	return out
}

// CorrRecords flattens a correlation matrix into long-form records.
func CorrRecords(c *table.CorrResult) []map[string]any {
	if c.Empty() {
		return nil
	}
	var out []map[string]any
	for i, a := range c.Labels {
		for j, b := range c.Labels {
			v := c.Values[i][j]
			if math.IsNaN(v) {
				continue
			}
			out = append(out, map[string]any{
				"city1":       a,
				"city2":       b,
				"correlation": v,
			})
		}
	}
	return out
}
