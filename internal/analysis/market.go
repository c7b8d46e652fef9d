// Package analysis holds the housing-market aggregation pipeline behind
// the caching lab: city summaries, monthly statistics with rolling
// windows, a normalized price index, and city-to-city correlations.
package analysis

import (
	"dashlab/domain/table"
)

// Config tunes the pipeline.
type Config struct {
	// MinCitySales drops cities with fewer sales than this before the
	// per-city statistics are computed.
	MinCitySales int
	// RollingWindow and RollingMinPeriods control the trailing monthly
	// windows (6 months, minimum 3, in the lab).
	RollingWindow     int
	RollingMinPeriods int
}

// DefaultConfig matches the caching lab.
func DefaultConfig() Config {
	return Config{MinCitySales: 10, RollingWindow: 6, RollingMinPeriods: 3}
}

// Result bundles every stage's output so one computation serves all the
// page's charts.
type Result struct {
	Filtered    *table.Table
	CitySummary *table.Table
	Monthly     *table.Table
	PriceIndex  *table.Matrix
	Correlation *table.CorrResult
}

// TopCities returns up to n city names by descending total sales.
func (r *Result) TopCities(n int) []string {
	if r.CitySummary == nil || r.CitySummary.NumRows() == 0 {
		return nil
	}
	sorted, err := r.CitySummary.SortBy("total_sales", false)
	if err != nil {
		return nil
	}
	cities, err := sorted.Strings("city")
	if err != nil {
		return nil
	}
	if n > len(cities) {
		n = len(cities)
	}
	out := make([]string, n)
	copy(out, cities[:n])
	return out
}

func citySummaryAggs(t *table.Table) []table.Agg {
	aggs := []table.Agg{
		{Op: table.AggCount, As: "total_sales"},
		{Col: "price", Op: table.AggMedian, As: "median_price"},
		{Col: "price", Op: table.AggMean, As: "mean_price"},
	}
	if t.HasCol("area") {
		aggs = append(aggs, table.Agg{Col: "area", Op: table.AggMedian, As: "median_area"})
	}
	if t.HasCol("beds") {
		aggs = append(aggs, table.Agg{Col: "beds", Op: table.AggMean, As: "avg_beds"})
	}
	if t.HasCol("baths") {
		aggs = append(aggs, table.Agg{Col: "baths", Op: table.AggMean, As: "avg_baths"})
	}
	return aggs
}

// Compute runs the whole pipeline over a home-sales table. The table must
// carry "city" (string), "price" (number) and "sold_month" (time)
// columns; area/beds/baths enrich the summary when present. Empty input
// flows through as empty output at every stage.
func Compute(src *table.Table, cfg Config) (*Result, error) {
	empty := &Result{
		Filtered:    table.New(),
		CitySummary: table.New(),
		Monthly:     table.New(),
		PriceIndex:  &table.Matrix{},
		Correlation: &table.CorrResult{},
	}
	if src == nil || src.NumRows() == 0 {
		return empty, nil
	}

	data, err := src.DropMissing("city", "price", "sold_month")
	if err != nil {
		return nil, err
	}
	if data.NumRows() == 0 {
		return empty, nil
	}

	// City totals over the full data pick which cities are big enough.
	allCities, err := data.GroupBy([]string{"city"}, citySummaryAggs(data))
	if err != nil {
		return nil, err
	}
	names, err := allCities.Strings("city")
	if err != nil {
		return nil, err
	}
	totals, err := allCities.Floats("total_sales")
	if err != nil {
		return nil, err
	}
	var bigCities []string
	for i, name := range names {
		if int(totals[i]) >= cfg.MinCitySales {
			bigCities = append(bigCities, name)
		}
	}

	mask, err := data.MaskIn("city", bigCities)
	if err != nil {
		return nil, err
	}
	data, err = data.Filter(mask)
	if err != nil {
		return nil, err
	}
	if data.NumRows() == 0 {
		return empty, nil
	}

	citySummary, err := data.GroupBy([]string{"city"}, citySummaryAggs(data))
	if err != nil {
		return nil, err
	}

	monthly, err := monthlyStats(data, cfg)
	if err != nil {
		return nil, err
	}

	priceIndex, err := monthly.Pivot("sold_month", "city", "median_price")
	if err != nil {
		return nil, err
	}
	priceIndex.NormalizeFirst(100)

	return &Result{
		Filtered:    data,
		CitySummary: citySummary,
		Monthly:     monthly,
		PriceIndex:  priceIndex,
		Correlation: priceIndex.CorrMatrix(),
	}, nil
}

// monthlyStats groups sales by city and month, then appends the rolling
// and month-over-month columns per city in month order.
func monthlyStats(data *table.Table, cfg Config) (*table.Table, error) {
	grouped, err := data.GroupBy([]string{"city", "sold_month"}, []table.Agg{
		{Op: table.AggCount, As: "sales_count"},
		{Col: "price", Op: table.AggMedian, As: "median_price"},
		{Col: "price", Op: table.AggMean, As: "mean_price"},
		{Col: "price", Op: table.AggQuantile, Q: 25, As: "q25_price"},
		{Col: "price", Op: table.AggQuantile, Q: 75, As: "q75_price"},
	})
	if err != nil {
		return nil, err
	}

	// Order months ascending, then lay cities out contiguously so the
	// rolling windows never cross a city boundary.
	grouped, err = grouped.SortBy("sold_month", true)
	if err != nil {
		return nil, err
	}
	cities, err := grouped.Strings("city")
	if err != nil {
		return nil, err
	}
	var cityOrder []string
	rowsByCity := make(map[string][]int)
	for i, c := range cities {
		if _, seen := rowsByCity[c]; !seen {
			cityOrder = append(cityOrder, c)
		}
		rowsByCity[c] = append(rowsByCity[c], i)
	}
	var order []int
	var segments [][2]int // [start,end) of each city in the new layout
	for _, c := range cityOrder {
		start := len(order)
		order = append(order, rowsByCity[c]...)
		segments = append(segments, [2]int{start, len(order)})
	}
	monthly, err := grouped.Take(order)
	if err != nil {
		return nil, err
	}

	medians, err := monthly.Floats("median_price")
	if err != nil {
		return nil, err
	}
	counts, err := monthly.Floats("sales_count")
	if err != nil {
		return nil, err
	}

	n := monthly.NumRows()
	rollingMedian := make([]float64, n)
	rollingSales := make([]float64, n)
	momChange := make([]float64, n)
	for _, seg := range segments {
		lo, hi := seg[0], seg[1]
		copy(rollingMedian[lo:hi], table.RollingMedian(medians[lo:hi], cfg.RollingWindow, cfg.RollingMinPeriods))
		copy(rollingSales[lo:hi], table.RollingSum(counts[lo:hi], cfg.RollingWindow, cfg.RollingMinPeriods))
		copy(momChange[lo:hi], table.PctChange(medians[lo:hi]))
	}
	if err := monthly.AddNumbers("median_price_6m", rollingMedian); err != nil {
		return nil, err
	}
	if err := monthly.AddNumbers("sales_6m", rollingSales); err != nil {
		return nil, err
	}
	if err := monthly.AddNumbers("mom_change", momChange); err != nil {
		return nil, err
	}
	return monthly, nil
}

// CityMonthly filters the monthly table down to one city.
func (r *Result) CityMonthly(city string) (*table.Table, error) {
	if r.Monthly == nil || r.Monthly.NumRows() == 0 {
		return table.New(), nil
	}
	mask, err := r.Monthly.MaskIn("city", []string{city})
	if err != nil {
		return nil, err
	}
	return r.Monthly.Filter(mask)
}
