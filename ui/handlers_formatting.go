package ui

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dashlab/domain/synth"
	"dashlab/domain/table"
)

type metricTile struct {
	Label string
	Value string
	Delta string
	Up    bool
}

func (s *Server) handleFormatting(c *gin.Context) {
	sales := synth.RegionalSales(12, 3)

	vals, err := sales.Floats("sales")
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}

	total := 0.0
	for _, v := range vals {
		total += v
	}
	latest := vals[len(vals)-1]
	prev := vals[len(vals)-2]
	delta := latest - prev

	byRegion, err := sales.GroupBy([]string{"region"}, []table.Agg{
		{Col: "sales", Op: table.AggSum, As: "total"},
		{Col: "sales", Op: table.AggMean, As: "average"},
	})
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}

	data := s.pageData(c, "Formatting & Layout", "formatting")
	data["Metrics"] = []metricTile{
		{Label: "Total Sales", Value: formatComma(total), Delta: formatComma(delta), Up: delta >= 0},
		{Label: "Latest Month", Value: formatComma(latest), Delta: formatPct(delta / prev), Up: delta >= 0},
		{Label: "Monthly Average", Value: formatComma(total / float64(len(vals))), Delta: "", Up: true},
	}
	data["Sales"] = viewTable(sales, 12)
	data["ByRegion"] = viewTable(byRegion, 10)
	data["Prose"] = renderMarkdown(`## Why layout primitives matter

Dashboards read top to bottom, left to right. The building blocks on this page are the
ones every later lab composes:

- **Metric tiles** surface a single number with an optional delta against the last period.
- **Columns** put related tiles side by side instead of stacking them.
- **Tabs and expanders** hide detail until the reader asks for it.
- **Status boxes** separate narration from warnings and failures.

Everything below is rendered server-side from a twelve-month synthetic sales table.`)
	s.renderTemplate(c, "formatting.html", data)
}
