// Package synth generates the demo datasets the dashboard pages render.
// Every generator is driven by a seeded source so a given seed always
// produces the same table, which keeps pages stable across requests and
// tests free of flakes.
package synth

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"dashlab/domain/table"
)

// TrendConfig configures the category trend series used by the filter labs.
type TrendConfig struct {
	Days       int
	Categories []string
	Start      time.Time
	Base       float64
	Slope      float64
	NoiseStd   float64
	Seed       int64
}

// DefaultTrendConfig mirrors the filter labs: 180 days of three categories
// trending upward from 100 with cumulative noise.
func DefaultTrendConfig() TrendConfig {
	return TrendConfig{
		Days:       180,
		Categories: []string{"Alpha", "Beta", "Gamma"},
		Start:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Base:       100,
		Slope:      20,
		NoiseStd:   4,
		Seed:       0,
	}
}

// TrendSeries builds a date × category × value table. Values follow a
// linear trend plus a cumulative noise walk, floored at zero.
func TrendSeries(cfg TrendConfig) *table.Table {
	rng := rand.New(rand.NewSource(cfg.Seed))

	n := cfg.Days * len(cfg.Categories)
	dates := make([]time.Time, 0, n)
	cats := make([]string, 0, n)
	vals := make([]float64, 0, n)

	for _, c := range cfg.Categories {
		walk := 0.0
		for d := 0; d < cfg.Days; d++ {
			walk += rng.NormFloat64() * cfg.NoiseStd
			trend := cfg.Base + cfg.Slope*float64(d)/float64(cfg.Days-1)
			v := trend + walk
			if v < 0 {
				v = 0
			}
			dates = append(dates, cfg.Start.AddDate(0, 0, d))
			cats = append(cats, c)
			vals = append(vals, v)
		}
	}

	t := table.New()
	// Construction cannot fail: all columns are fresh and equal length.
	_ = t.AddTimes("date", dates)
	_ = t.AddStrings("category", cats)
	_ = t.AddNumbers("value", vals)
	return t
}

// RegionalSales builds the small monthly sales table used by the
// formatting lab: one row per month with a random region and sales figure.
func RegionalSales(months int, seed int64) *table.Table {
	rng := rand.New(rand.NewSource(seed))
	regions := []string{"East", "West", "North", "South"}
	start := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	dates := make([]time.Time, months)
	regs := make([]string, months)
	sales := make([]float64, months)
	for i := 0; i < months; i++ {
		dates[i] = start.AddDate(0, i, 0)
		regs[i] = regions[rng.Intn(len(regions))]
		sales[i] = float64(50 + rng.Intn(150))
	}

	t := table.New()
	_ = t.AddTimes("date", dates)
	_ = t.AddStrings("region", regs)
	_ = t.AddNumbers("sales", sales)
	return t
}

// FlipsConfig configures the house-flips dataset for the charts lab.
type FlipsConfig struct {
	Count int
	Seed  int64
	Start time.Time
	End   time.Time
}

// DefaultFlipsConfig covers two years of flips around Greater Seattle.
func DefaultFlipsConfig() FlipsConfig {
	return FlipsConfig{
		Count: 400,
		Seed:  7,
		Start: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
	}
}

var flipCities = []struct {
	name     string
	lat, lon float64
	base     float64
}{
	{"Seattle", 47.6062, -122.3321, 850000},
	{"Bellevue", 47.6101, -122.2015, 1100000},
	{"Kent", 47.3809, -122.2348, 550000},
	{"Renton", 47.4829, -122.2171, 620000},
	{"Everett", 47.9790, -122.2021, 520000},
	{"Tacoma", 47.2529, -122.4443, 460000},
	{"Kirkland", 47.6815, -122.2087, 980000},
	{"Auburn", 47.3073, -122.2285, 510000},
}

// HouseFlips builds the charts-lab dataset: dated flips with purchase,
// list and sale prices, property details, coordinates and the derived
// profit, ROI, discount and price-per-sqft columns.
func HouseFlips(cfg FlipsConfig) *table.Table {
	rng := rand.New(rand.NewSource(cfg.Seed))
	span := int(cfg.End.Sub(cfg.Start).Hours() / 24)

	n := cfg.Count
	addrs := make([]string, n)
	cities := make([]string, n)
	dates := make([]time.Time, n)
	lats := make([]float64, n)
	lons := make([]float64, n)
	beds := make([]float64, n)
	baths := make([]float64, n)
	sizes := make([]float64, n)
	years := make([]float64, n)
	cdom := make([]float64, n)
	purchase := make([]float64, n)
	list := make([]float64, n)
	sale := make([]float64, n)

	for i := 0; i < n; i++ {
		city := flipCities[rng.Intn(len(flipCities))]
		cities[i] = city.name
		addrs[i] = fmt.Sprintf("%d %s St", 100+rng.Intn(9900), []string{"Main", "Pine", "Cedar", "Maple", "Lake"}[rng.Intn(5)])
		dates[i] = cfg.Start.AddDate(0, 0, rng.Intn(span+1))
		lats[i] = city.lat + rng.NormFloat64()*0.02
		lons[i] = city.lon + rng.NormFloat64()*0.02
		beds[i] = float64(2 + rng.Intn(4))
		baths[i] = float64(1+rng.Intn(3)) + 0.5*float64(rng.Intn(2))
		sizes[i] = 900 + float64(rng.Intn(2600))
		years[i] = float64(1950 + rng.Intn(70))
		cdom[i] = float64(rng.Intn(120))

		sizeFactor := sizes[i] / 1800
		p := city.base * sizeFactor * (0.85 + rng.Float64()*0.3)
		purchase[i] = math.Round(p/1000) * 1000
		margin := 0.05 + rng.Float64()*0.3
		list[i] = math.Round(purchase[i]*(1+margin+0.05)/1000) * 1000
		sale[i] = math.Round(purchase[i]*(1+margin+rng.NormFloat64()*0.05)/1000) * 1000
	}

	t := table.New()
	_ = t.AddStrings("address", addrs)
	_ = t.AddStrings("city", cities)
	_ = t.AddTimes("date", dates)
	_ = t.AddNumbers("latitude", lats)
	_ = t.AddNumbers("longitude", lons)
	_ = t.AddNumbers("bds", beds)
	_ = t.AddNumbers("bths", baths)
	_ = t.AddNumbers("size", sizes)
	_ = t.AddNumbers("year_built", years)
	_ = t.AddNumbers("CDOM", cdom)
	_ = t.AddNumbers("purchase_price", purchase)
	_ = t.AddNumbers("list_price", list)
	_ = t.AddNumbers("sale_price", sale)
	AddFlipDerived(t)
	return t
}

// AddFlipDerived appends the derived flip metrics: profit, ROI, discount
// from list, and price per square foot. Rows with zero denominators get
// missing cells.
func AddFlipDerived(t *table.Table) {
	sale, _ := t.Floats("sale_price")
	purchase, _ := t.Floats("purchase_price")
	list, _ := t.Floats("list_price")
	size, _ := t.Floats("size")

	n := len(sale)
	profit := make([]float64, n)
	roi := make([]float64, n)
	discount := make([]float64, n)
	ppsf := make([]float64, n)
	for i := 0; i < n; i++ {
		profit[i] = sale[i] - purchase[i]
		roi[i] = math.NaN()
		if purchase[i] > 0 {
			roi[i] = (sale[i] - purchase[i]) / purchase[i]
		}
		discount[i] = math.NaN()
		if list[i] > 0 {
			discount[i] = (sale[i] - list[i]) / list[i]
		}
		ppsf[i] = math.NaN()
		if size[i] > 0 {
			ppsf[i] = sale[i] / size[i]
		}
	}
	_ = t.AddNumbers("profit", profit)
	_ = t.AddNumbers("roi_pct", roi)
	_ = t.AddNumbers("discount_pct", discount)
	_ = t.AddNumbers("ppsf", ppsf)
}

// HomeSalesConfig configures the caching-lab dataset used when no
// spreadsheet connection is configured.
type HomeSalesConfig struct {
	Count int
	Seed  int64
	Start time.Time
	End   time.Time
}

// DefaultHomeSalesConfig spans three years so the rolling windows have
// room to settle.
func DefaultHomeSalesConfig() HomeSalesConfig {
	return HomeSalesConfig{
		Count: 2400,
		Seed:  42,
		Start: time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
	}
}

// HomeSales builds the caching-lab dataset: sold homes with city, price,
// area, beds/baths and sold date. Prices drift upward over the window per
// city so the price index and correlations have structure.
func HomeSales(cfg HomeSalesConfig) *table.Table {
	rng := rand.New(rand.NewSource(cfg.Seed))
	span := int(cfg.End.Sub(cfg.Start).Hours() / 24)

	n := cfg.Count
	ids := make([]string, n)
	cities := make([]string, n)
	sold := make([]time.Time, n)
	prices := make([]float64, n)
	areas := make([]float64, n)
	beds := make([]float64, n)
	baths := make([]float64, n)

	for i := 0; i < n; i++ {
		city := flipCities[rng.Intn(len(flipCities))]
		cities[i] = city.name
		ids[i] = fmt.Sprintf("zpid_%06d", i+1)
		offset := rng.Intn(span + 1)
		sold[i] = cfg.Start.AddDate(0, 0, offset)

		// Per-city appreciation of roughly 10% a year plus noise.
		growth := 1 + 0.10*float64(offset)/365
		areas[i] = 800 + float64(rng.Intn(2800))
		beds[i] = float64(1 + rng.Intn(5))
		baths[i] = float64(1 + rng.Intn(4))
		p := city.base * (areas[i] / 1800) * growth * (0.9 + rng.Float64()*0.2)
		prices[i] = math.Round(p/1000) * 1000
	}

	t := table.New()
	_ = t.AddStrings("zpid", ids)
	_ = t.AddStrings("city", cities)
	_ = t.AddTimes("sold_date", sold)
	_ = t.AddNumbers("price", prices)
	_ = t.AddNumbers("area", areas)
	_ = t.AddNumbers("beds", beds)
	_ = t.AddNumbers("baths", baths)
	_ = t.AddMonthColumn("sold_date", "sold_month")
	return t
}
