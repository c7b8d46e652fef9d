package ui

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"dashlab/internal/analysis"
	apperrors "dashlab/internal/errors"
	"dashlab/internal/session"
	"dashlab/ui/charts"
)

// marketResult loads the home-sales dataset and runs the analysis
// pipeline through the TTL cache. The second bool reports whether the
// pipeline result was served from cache.
func (s *Server) marketResult(ctx context.Context) (*analysis.Result, *SalesData, bool, error) {
	sales, _, err := s.source.HomeSales(ctx)
	if err != nil {
		return nil, nil, false, err
	}
	v, hit, err := s.analysisCache.GetOrCompute("analysis:"+sales.Origin, func() (interface{}, error) {
		return analysis.Compute(sales.Table, analysis.DefaultConfig())
	})
	if err != nil {
		return nil, nil, false, err
	}
	return v.(*analysis.Result), sales, hit, nil
}

func (s *Server) handleCaching(c *gin.Context) {
	topN := 5
	if v, err := strconv.Atoi(c.Query("top")); err == nil && v >= 1 && v <= 8 {
		topN = v
	}

	start := time.Now()
	result, sales, hit, err := s.marketResult(c.Request.Context())
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}
	elapsed := time.Since(start)

	cities := result.TopCities(topN)
	if len(cities) == 0 {
		s.renderError(c, http.StatusInternalServerError, apperrors.NotFound("market data"))
		return
	}
	selected := c.Query("city")
	if !containsString(cities, selected) {
		selected = cities[0]
	}

	summary, err := result.CitySummary.SortBy("total_sales", false)
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}
	summary = summary.Head(topN)

	g := &gallery{}

	bar := charts.New(charts.Records(summary))
	bar.Mark = &charts.Mark{Type: "bar", Tooltip: true}
	bar.Encoding = &charts.Encoding{
		X: &charts.Field{Field: "city", Type: charts.Nominal, Sort: "-y", Title: "City"},
		Y: &charts.Field{Field: "total_sales", Type: charts.Quantitative, Title: "Sales"},
		Color: &charts.Field{Field: "median_price", Type: charts.Quantitative, Title: "Median price"},
	}
	g.add("c-volume", "Sales volume", "Top cities by closed sales; color carries the median price.", bar)

	index := charts.New(charts.MatrixRecords(result.PriceIndex.Subset(cities), "month", "city", "index"))
	index.Height = 300
	index.Mark = &charts.Mark{Type: "line", Point: true}
	index.Encoding = &charts.Encoding{
		X: &charts.Field{Field: "month", Type: charts.Temporal, Title: "Month"},
		Y: &charts.Field{Field: "index", Type: charts.Quantitative, Title: "Price index (first month = 100)"},
		Color: &charts.Field{Field: "city", Type: charts.Nominal, Legend: &charts.Legend{Columns: 2}},
	}
	g.add("c-index", "Median price index", "Each city rebased to 100 at its first month, so growth rates compare directly.", index)

	corr := charts.New(charts.CorrRecords(result.Correlation))
	corr.Height = 300
	corr.Mark = &charts.Mark{Type: "rect", Tooltip: true}
	corr.Encoding = &charts.Encoding{
		X: &charts.Field{Field: "city1", Type: charts.Nominal, Title: ""},
		Y: &charts.Field{Field: "city2", Type: charts.Nominal, Title: ""},
		Color: &charts.Field{Field: "correlation", Type: charts.Quantitative, Title: "r"},
	}
	g.add("c-corr", "Cross-city price correlation", "Pairwise correlation of monthly median prices over months both cities reported.", corr)

	if g.err != nil {
		s.renderError(c, http.StatusInternalServerError, g.err)
		return
	}

	detail, err := s.cityDetailData(c, result, selected)
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}

	data := s.pageData(c, "Caching & Fragments", "caching")
	data["Charts"] = g.cards
	data["Summary"] = viewTable(summary, topN)
	data["Cities"] = cities
	data["Selected"] = selected
	data["TopN"] = topN
	data["Origin"] = sales.Origin
	data["FilteredRows"] = result.Filtered.NumRows()
	data["CacheHit"] = hit
	data["Elapsed"] = formatElapsed(elapsed)
	data["CacheStats"] = s.analysisCache.Stats()
	data["Detail"] = detail
	data["Prose"] = renderMarkdown(`## Caching the expensive part

The pipeline behind this page filters the sales table, aggregates per city and per
month, computes six-month rolling medians, pivots into a price index and finishes
with a correlation matrix. The first render pays for all of it; every later render
within the TTL gets the memoized result. Concurrent first renders collapse into a
single computation.

The city drill-down below is a **fragment**: picking a city swaps only that panel,
with its own run counter, while the rest of the page never re-renders.`)
	s.renderTemplate(c, "caching.html", data)
}

// handleCityDetail re-renders only the drill-down fragment.
func (s *Server) handleCityDetail(c *gin.Context) {
	city := c.Param("city")
	result, _, _, err := s.marketResult(c.Request.Context())
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}
	if !containsString(result.TopCities(8), city) {
		s.renderError(c, http.StatusNotFound, apperrors.NotFound("city "+city))
		return
	}
	if !isHTMX(c) {
		c.Redirect(http.StatusSeeOther, "/caching?city="+city)
		return
	}
	detail, err := s.cityDetailData(c, result, city)
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}
	s.renderTemplate(c, "city_detail.html", detail)
}

// cityDetailData builds the fragment payload: the layered band chart and
// the recent monthly table for one city, plus the fragment run counter.
func (s *Server) cityDetailData(c *gin.Context, result *analysis.Result, city string) (gin.H, error) {
	monthly, err := result.CityMonthly(city)
	if err != nil {
		return nil, err
	}
	recs := charts.Records(monthly)

	band := &charts.Spec{
		Mark: &charts.Mark{Type: "area", Opacity: 0.25},
		Encoding: &charts.Encoding{
			X:  &charts.Field{Field: "sold_month", Type: charts.Temporal, Title: "Month"},
			Y:  &charts.Field{Field: "q25_price", Type: charts.Quantitative, Title: "Price", Format: "$,.0f"},
			Y2: &charts.Field{Field: "q75_price"},
		},
	}
	median := &charts.Spec{
		Mark: &charts.Mark{Type: "line", Point: true},
		Encoding: &charts.Encoding{
			X: &charts.Field{Field: "sold_month", Type: charts.Temporal},
			Y: &charts.Field{Field: "median_price", Type: charts.Quantitative},
		},
	}
	rolling := &charts.Spec{
		Mark: &charts.Mark{Type: "line", StrokeDash: []int{6, 3}},
		Encoding: &charts.Encoding{
			X: &charts.Field{Field: "sold_month", Type: charts.Temporal},
			Y: &charts.Field{Field: "median_price_6m", Type: charts.Quantitative},
		},
	}
	layered := charts.Layered(recs, band, median, rolling)
	layered.Height = 300
	layered.Title = city + " monthly prices"
	js, err := layered.JSON()
	if err != nil {
		return nil, err
	}

	recent, err := monthly.SortBy("sold_month", false)
	if err != nil {
		return nil, err
	}

	sess := session.FromContext(c)
	runs := sess.Increment(c.Request.Context(), "runs:fragment-city", 1)

	return gin.H{
		"City":         city,
		"Spec":         js,
		"Recent":       viewTable(recent, 6),
		"FragmentRuns": runs,
	}, nil
}

func formatElapsed(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%.0fµs", float64(d.Microseconds()))
	}
	return fmt.Sprintf("%.1fms", float64(d.Microseconds())/1000)
}

func containsString(vals []string, v string) bool {
	for _, s := range vals {
		if s == v {
			return true
		}
	}
	return false
}
