package ui

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"dashlab/domain/table"
)

// handleInteractivity shows a widget value driving logic in the same
// render: the threshold below filters the flips table immediately.
func (s *Server) handleInteractivity(c *gin.Context) {
	flips, _, err := s.source.Flips()
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}

	lo, hi, err := flips.NumBounds("sale_price")
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}
	threshold := lo
	if v, err := strconv.ParseFloat(c.Query("threshold"), 64); err == nil && v >= lo && v <= hi {
		threshold = v
	}

	mask, err := flips.MaskNumBetween("sale_price", threshold, hi)
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}
	above, err := flips.Filter(mask)
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}

	medianROI := math.NaN()
	medianProfit := math.NaN()
	if above.NumRows() > 0 {
		agg, err := above.GroupBy(nil, []table.Agg{
			{Col: "roi_pct", Op: table.AggMedian, As: "roi"},
			{Col: "profit", Op: table.AggMedian, As: "profit"},
		})
		if err == nil && agg.NumRows() == 1 {
			if v, err := agg.Floats("roi"); err == nil {
				medianROI = v[0]
			}
			if v, err := agg.Floats("profit"); err == nil {
				medianProfit = v[0]
			}
		}
	}

	data := s.pageData(c, "Interactivity", "interactivity")
	data["Lo"], data["Hi"] = lo, hi
	data["Threshold"] = threshold
	data["ThresholdStr"] = formatMoney(threshold)
	data["Metrics"] = []metricTile{
		{Label: "Flips at or above", Value: formatComma(float64(mask.Count())), Delta: "", Up: true},
		{Label: "Median ROI", Value: formatPct(medianROI), Delta: "", Up: !math.IsNaN(medianROI) && medianROI >= 0},
		{Label: "Median profit", Value: formatMoney(medianProfit), Delta: "", Up: !math.IsNaN(medianProfit) && medianProfit >= 0},
	}
	data["Preview"] = viewTable(above, 10)
	data["Prose"] = renderMarkdown(`## A value you can use immediately

The slider submits on release, the handler reads it as a query parameter, and the
rest of this render uses the value like any other variable: filter the table, compute
the metrics, format the output. No callback registration, no state machine. The
formatting helpers used on the tiles are the same ones applied to every table on
this site: money, comma grouping and signed percentages, with missing values
rendered as a dash.`)
	s.renderTemplate(c, "interactivity.html", data)
}

type widgetEcho struct {
	Widget string
	Raw    string
	Parsed string
}

// handleWidgets round-trips one of each control type and shows what the
// handler received, including how loose numeric and date strings coerce.
func (s *Server) handleWidgets(c *gin.Context) {
	q := c.Request.URL.Query()

	parsedNum := func(raw string) string {
		if raw == "" {
			return "—"
		}
		v := table.ParseNumber(raw)
		if math.IsNaN(v) {
			return "missing (unparseable)"
		}
		return formatComma(v)
	}
	parsedDate := func(raw string) string {
		if raw == "" {
			return "—"
		}
		v := table.ParseTime(raw)
		if v.IsZero() {
			return "missing (unparseable)"
		}
		return v.Format(dateLayout)
	}

	cats := q["pick"]
	picked := "—"
	if len(cats) > 0 {
		picked = ""
		for i, v := range cats {
			if i > 0 {
				picked += ", "
			}
			picked += v
		}
	}

	echoes := []widgetEcho{
		{"text", q.Get("text"), q.Get("text")},
		{"number", q.Get("number"), parsedNum(q.Get("number"))},
		{"range", q.Get("range"), parsedNum(q.Get("range"))},
		{"date", q.Get("date"), parsedDate(q.Get("date"))},
		{"select", q.Get("select"), q.Get("select")},
		{"multi-select", picked, picked},
		{"checkbox", q.Get("check"), strconv.FormatBool(q.Get("check") == "on")},
		{"radio", q.Get("radio"), q.Get("radio")},
	}
	for i := range echoes {
		if echoes[i].Raw == "" {
			echoes[i].Raw = "—"
		}
		if echoes[i].Parsed == "" {
			echoes[i].Parsed = "—"
		}
	}

	data := s.pageData(c, "Interactivity: Widgets", "interactivity-widgets")
	data["Echoes"] = echoes
	data["Query"] = q
	data["Prose"] = renderMarkdown(`## Every widget is a parameter

Whatever the control looks like in the browser, the handler sees a string (or a list
of strings). The table below shows the raw value each control submitted and what it
parsed to. Numbers go through the same lenient coercion the spreadsheet loader uses,
so "$1,200" and "45%" parse, and garbage becomes a missing value instead of an
error.`)
	s.renderTemplate(c, "interactivity_widgets.html", data)
}
