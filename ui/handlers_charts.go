package ui

import (
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"dashlab/domain/table"
	apperrors "dashlab/internal/errors"
	"dashlab/ui/charts"
)

type chartCard struct {
	ID      string
	Title   string
	Caption string
	Spec    template.JS
}

// gallery accumulates chart cards, keeping the first marshalling error.
type gallery struct {
	cards []chartCard
	err   error
}

func (g *gallery) add(id, title, caption string, spec *charts.Spec) {
	if g.err != nil {
		return
	}
	js, err := spec.JSON()
	if err != nil {
		g.err = err
		return
	}
	g.cards = append(g.cards, chartCard{ID: id, Title: title, Caption: caption, Spec: js})
}

// selectColumns copies the named columns into a narrow table so chart
// payloads only carry the fields they encode.
func selectColumns(t *table.Table, names ...string) (*table.Table, error) {
	out := table.New()
	for _, n := range names {
		c := t.Col(n)
		if c == nil {
			return nil, apperrors.NotFound("column " + n)
		}
		var err error
		switch c.Kind {
		case table.KindString:
			err = out.AddStrings(n, c.Strings)
		case table.KindNumber:
			err = out.AddNumbers(n, c.Floats)
		case table.KindTime:
			err = out.AddTimes(n, c.Times)
		}
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *Server) handleCharts(c *gin.Context) {
	flips, _, err := s.source.Flips()
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}

	monthly, err := flips.GroupBy([]string{"month"}, []table.Agg{
		{Op: table.AggCount, As: "flips"},
		{Col: "sale_price", Op: table.AggMedian, As: "median_price"},
		{Col: "roi_pct", Op: table.AggMedian, As: "median_roi"},
	})
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}
	monthlyRecs := charts.Records(monthly)

	quick := &gallery{}

	lineCount := charts.New(monthlyRecs)
	lineCount.Mark = &charts.Mark{Type: "line", Point: true}
	lineCount.Encoding = &charts.Encoding{
		X: &charts.Field{Field: "month", Type: charts.Temporal, Title: "Month"},
		Y: &charts.Field{Field: "flips", Type: charts.Quantitative, Title: "Flips"},
	}
	quick.add("quick-line", "Flips per month", "A line chart needs one temporal and one quantitative field.", lineCount)

	linePrice := charts.New(monthlyRecs)
	linePrice.Mark = &charts.Mark{Type: "area", Opacity: 0.6}
	linePrice.Encoding = &charts.Encoding{
		X: &charts.Field{Field: "month", Type: charts.Temporal, Title: "Month"},
		Y: &charts.Field{Field: "median_price", Type: charts.Quantitative, Title: "Median sale price", Format: "$,.0f"},
	}
	quick.add("quick-area", "Median sale price", "Same data, area mark.", linePrice)

	lineROI := charts.New(monthlyRecs)
	lineROI.Mark = &charts.Mark{Type: "line"}
	lineROI.Encoding = &charts.Encoding{
		X: &charts.Field{Field: "month", Type: charts.Temporal, Title: "Month"},
		Y: &charts.Field{Field: "median_roi", Type: charts.Quantitative, Title: "Median ROI", Format: ".1%"},
	}
	quick.add("quick-roi", "Median ROI per month", "Axis formats belong in the encoding, not the data.", lineROI)

	full := &gallery{}

	cityTbl, err := selectColumns(flips, "city")
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}
	bar := charts.New(charts.Records(cityTbl))
	bar.Mark = &charts.Mark{Type: "bar", Tooltip: true}
	bar.Encoding = &charts.Encoding{
		X: &charts.Field{Field: "city", Type: charts.Nominal, Sort: "-y", Title: "City"},
		Y: &charts.Field{Aggregate: "count", Type: charts.Quantitative, Title: "Flips"},
	}
	full.add("g-bar", "Flips by city", "The grammar aggregates in the browser: one count per nominal bucket, sorted descending.", bar)

	scatterTbl, err := selectColumns(flips, "size", "sale_price", "city", "bds")
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}
	scatter := charts.New(charts.Records(scatterTbl))
	scatter.Height = 320
	scatter.Mark = &charts.Mark{Type: "circle", Opacity: 0.65, Tooltip: true}
	scatter.Encoding = &charts.Encoding{
		X: &charts.Field{Field: "size", Type: charts.Quantitative, Title: "Size (sqft)"},
		Y: &charts.Field{Field: "sale_price", Type: charts.Quantitative, Title: "Sale price", Format: "$,.0f"},
		Color: &charts.Field{Field: "city", Type: charts.Nominal, Legend: &charts.Legend{Columns: 2}},
		Tooltip: []charts.Field{
			{Field: "city", Type: charts.Nominal},
			{Field: "size", Type: charts.Quantitative},
			{Field: "sale_price", Type: charts.Quantitative, Format: "$,.0f"},
			{Field: "bds", Type: charts.Quantitative},
		},
	}
	full.add("g-scatter", "Size vs sale price", "Color adds a third dimension; tooltips carry fields the marks do not encode.", scatter)

	domTbl, err := selectColumns(flips, "CDOM", "discount_pct")
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}
	dom := charts.New(charts.Records(domTbl))
	dom.Mark = &charts.Mark{Type: "circle", Opacity: 0.5}
	dom.Encoding = &charts.Encoding{
		X: &charts.Field{Field: "CDOM", Type: charts.Quantitative, Title: "Days on market"},
		Y: &charts.Field{Field: "discount_pct", Type: charts.Quantitative, Title: "Discount from list", Format: ".0%"},
	}
	full.add("g-dom", "Days on market vs discount", "Longer listings close further under list. Missing discounts become nulls and drop out.", dom)

	priceTbl, err := selectColumns(flips, "sale_price")
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}
	hist := charts.New(charts.Records(priceTbl))
	hist.Mark = &charts.Mark{Type: "bar"}
	hist.Encoding = &charts.Encoding{
		X: &charts.Field{Field: "sale_price", Type: charts.Quantitative, Bin: &charts.Bin{MaxBins: 30}, Title: "Sale price"},
		Y: &charts.Field{Aggregate: "count", Type: charts.Quantitative, Title: "Flips"},
	}
	full.add("g-hist", "Sale price distribution", "Binning is an encoding property, not a data transform you run yourself.", hist)

	roiTbl, err := selectColumns(flips, "roi_pct")
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}
	roiHist := charts.New(charts.Records(roiTbl))
	roiHist.Mark = &charts.Mark{Type: "bar"}
	roiHist.Encoding = &charts.Encoding{
		X: &charts.Field{Field: "roi_pct", Type: charts.Quantitative, Bin: &charts.Bin{MaxBins: 25}, Title: "ROI", Format: ".0%"},
		Y: &charts.Field{Aggregate: "count", Type: charts.Quantitative, Title: "Flips"},
	}
	full.add("g-roi-hist", "ROI distribution", "Most flips cluster in a narrow band; the tails are where the stories are.", roiHist)

	boxTbl, err := selectColumns(flips, "city", "sale_price")
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}
	box := charts.New(charts.Records(boxTbl))
	box.Mark = &charts.Mark{Type: "boxplot"}
	box.Encoding = &charts.Encoding{
		X: &charts.Field{Field: "city", Type: charts.Nominal, Title: "City"},
		Y: &charts.Field{Field: "sale_price", Type: charts.Quantitative, Title: "Sale price", Format: "$,.0f"},
	}
	full.add("g-box", "Price spread by city", "Boxplots show median, quartiles and outliers per bucket in one mark.", box)

	bbTbl, err := selectColumns(flips, "bds", "bths")
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}
	heat := charts.New(charts.Records(bbTbl))
	heat.Mark = &charts.Mark{Type: "rect", Tooltip: true}
	heat.Encoding = &charts.Encoding{
		X: &charts.Field{Field: "bds", Type: charts.Ordinal, Title: "Beds"},
		Y: &charts.Field{Field: "bths", Type: charts.Ordinal, Title: "Baths"},
		Color: &charts.Field{Aggregate: "count", Type: charts.Quantitative, Title: "Flips"},
	}
	full.add("g-heat", "Beds × baths", "A heatmap is a rect mark with a count on the color channel.", heat)

	pie := charts.New(charts.Records(bbTbl))
	pie.Mark = &charts.Mark{Type: "arc", OuterRadius: 110, Tooltip: true}
	pie.Encoding = &charts.Encoding{
		Theta: &charts.Field{Aggregate: "count", Type: charts.Quantitative},
		Color: &charts.Field{Field: "bds", Type: charts.Ordinal, Title: "Beds"},
	}
	full.add("g-pie", "Share of flips by bedrooms", "Pies are arcs with the count on the theta channel. Use sparingly.", pie)

	monthCityTbl, err := selectColumns(flips, "month", "city")
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}
	stacked := charts.New(charts.Records(monthCityTbl))
	stacked.Mark = &charts.Mark{Type: "bar"}
	stacked.Encoding = &charts.Encoding{
		X: &charts.Field{Field: "month", Type: charts.Temporal, TimeUnit: "yearmonth", Title: "Month"},
		Y: &charts.Field{Aggregate: "count", Type: charts.Quantitative, Title: "Flips", Stack: "zero"},
		Color: &charts.Field{Field: "city", Type: charts.Nominal, Legend: &charts.Legend{Columns: 2}},
	}
	full.add("g-stacked", "Monthly flips, stacked by city", "Stacking composes the city bars into one column per month.", stacked)

	if quick.err != nil {
		s.renderError(c, http.StatusInternalServerError, quick.err)
		return
	}
	if full.err != nil {
		s.renderError(c, http.StatusInternalServerError, full.err)
		return
	}

	data := s.pageData(c, "Chart Essentials", "charts")
	data["Quick"] = quick.cards
	data["Gallery"] = full.cards
	data["Rows"] = flips.NumRows()
	data["Preview"] = viewTable(flips, 8)
	data["Prose"] = renderMarkdown(`## Declarative charts

Every chart on this page is a JSON specification: data plus encodings, no drawing
code. The handler decides *what* to show (which fields map to which channels) and
the browser-side grammar decides *how* to draw it. Aggregation can happen on either
side: the quick charts above were grouped server-side, while most of the gallery
hands raw rows to the grammar and lets the encoding aggregate.`)
	s.renderTemplate(c, "charts.html", data)
}
