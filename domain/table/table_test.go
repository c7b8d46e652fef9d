package table

import (
	"math"
	"testing"
	"time"
)

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func sampleTable(t *testing.T) *Table {
	t.Helper()
	tbl := New()
	if err := tbl.AddStrings("category", []string{"Alpha", "Beta", "Alpha", "Gamma", "Beta", "Alpha"}); err != nil {
		t.Fatal(err)
	}
	if err := tbl.AddNumbers("value", []float64{10, 20, 30, 40, 50, 60}); err != nil {
		t.Fatal(err)
	}
	if err := tbl.AddTimes("date", []time.Time{day(1), day(2), day(3), day(4), day(5), day(6)}); err != nil {
		t.Fatal(err)
	}
	return tbl
}

func TestCoercion(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want float64
	}{
		{"plain", "42", 42},
		{"decimal", "3.5", 3.5},
		{"thousands", "1,250,000", 1250000},
		{"currency", "$99.50", 99.5},
		{"percent", "12%", 0.12},
		{"empty", "", math.NaN()},
		{"garbage", "n/a", math.NaN()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseNumber(tt.in)
			if math.IsNaN(tt.want) {
				if !math.IsNaN(got) {
					t.Errorf("ParseNumber(%q) = %v, want NaN", tt.in, got)
				}
				return
			}
			if got != tt.want {
				t.Errorf("ParseNumber(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestToNumericCoercesFailuresToMissing(t *testing.T) {
	tbl := New()
	if err := tbl.AddStrings("price", []string{"100", "oops", "", "250"}); err != nil {
		t.Fatal(err)
	}
	if err := tbl.ToNumeric("price"); err != nil {
		t.Fatal(err)
	}
	vals, err := tbl.Floats("price")
	if err != nil {
		t.Fatal(err)
	}
	if vals[0] != 100 || vals[3] != 250 {
		t.Errorf("parsed values wrong: %v", vals)
	}
	if !math.IsNaN(vals[1]) || !math.IsNaN(vals[2]) {
		t.Errorf("coercion failures should be missing, got %v", vals)
	}
}

func TestToTime(t *testing.T) {
	tbl := New()
	if err := tbl.AddStrings("sold", []string{"2024-03-15", "3/15/2024", "never"}); err != nil {
		t.Fatal(err)
	}
	if err := tbl.ToTime("sold"); err != nil {
		t.Fatal(err)
	}
	vals, err := tbl.Times("sold")
	if err != nil {
		t.Fatal(err)
	}
	want := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	if !vals[0].Equal(want) || !vals[1].Equal(want) {
		t.Errorf("parsed times wrong: %v", vals)
	}
	if !vals[2].IsZero() {
		t.Errorf("unparseable time should be zero, got %v", vals[2])
	}
}

func TestConjunctiveFilter(t *testing.T) {
	tbl := sampleTable(t)

	mask := TrueMask(tbl.NumRows())
	catMask, err := tbl.MaskIn("category", []string{"Alpha", "Beta"})
	if err != nil {
		t.Fatal(err)
	}
	mask.And(catMask)
	dateMask, err := tbl.MaskTimeBetween("date", day(2), day(5))
	if err != nil {
		t.Fatal(err)
	}
	mask.And(dateMask)
	valMask, err := tbl.MaskNumBetween("value", 0, 45)
	if err != nil {
		t.Fatal(err)
	}
	mask.And(valMask)

	filtered, err := tbl.Filter(mask)
	if err != nil {
		t.Fatal(err)
	}
	// Rows 1 (Beta/20/day2) and 2 (Alpha/30/day3) survive all three predicates.
	if filtered.NumRows() != 2 {
		t.Fatalf("expected 2 rows, got %d", filtered.NumRows())
	}

	// Every surviving row must match every predicate.
	cats, _ := filtered.Strings("category")
	vals, _ := filtered.Floats("value")
	dates, _ := filtered.Times("date")
	for i := range cats {
		if cats[i] != "Alpha" && cats[i] != "Beta" {
			t.Errorf("row %d category %q escaped the filter", i, cats[i])
		}
		if vals[i] < 0 || vals[i] > 45 {
			t.Errorf("row %d value %v escaped the filter", i, vals[i])
		}
		if dates[i].Before(day(2)) || dates[i].After(day(5)) {
			t.Errorf("row %d date %v escaped the filter", i, dates[i])
		}
	}
}

func TestMaskMissingNeverMatches(t *testing.T) {
	tbl := New()
	if err := tbl.AddNumbers("v", []float64{1, math.NaN(), 3}); err != nil {
		t.Fatal(err)
	}
	m, err := tbl.MaskNumBetween("v", 0, 10)
	if err != nil {
		t.Fatal(err)
	}
	if m[1] {
		t.Error("missing cell matched a range predicate")
	}
	if m.Count() != 2 {
		t.Errorf("expected 2 matches, got %d", m.Count())
	}
}

func TestGroupByAggregates(t *testing.T) {
	tbl := sampleTable(t)
	out, err := tbl.GroupBy([]string{"category"}, []Agg{
		{Op: AggCount, As: "n"},
		{Col: "value", Op: AggMedian, As: "median_value"},
		{Col: "value", Op: AggMean, As: "mean_value"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if out.NumRows() != 3 {
		t.Fatalf("expected 3 groups, got %d", out.NumRows())
	}
	cats, _ := out.Strings("category")
	ns, _ := out.Floats("n")
	medians, _ := out.Floats("median_value")
	byCat := map[string][2]float64{}
	for i := range cats {
		byCat[cats[i]] = [2]float64{ns[i], medians[i]}
	}
	if byCat["Alpha"] != [2]float64{3, 30} {
		t.Errorf("Alpha group wrong: %v", byCat["Alpha"])
	}
	if byCat["Beta"] != [2]float64{2, 35} {
		t.Errorf("Beta group wrong: %v", byCat["Beta"])
	}
	if byCat["Gamma"] != [2]float64{1, 40} {
		t.Errorf("Gamma group wrong: %v", byCat["Gamma"])
	}
}

func TestGroupByEmptyTable(t *testing.T) {
	tbl := New()
	if err := tbl.AddStrings("city", nil); err != nil {
		t.Fatal(err)
	}
	if err := tbl.AddNumbers("price", nil); err != nil {
		t.Fatal(err)
	}
	out, err := tbl.GroupBy([]string{"city"}, []Agg{{Col: "price", Op: AggMedian, As: "m"}})
	if err != nil {
		t.Fatal(err)
	}
	if out.NumRows() != 0 {
		t.Errorf("empty in should give empty out, got %d rows", out.NumRows())
	}
}

func TestTopCategories(t *testing.T) {
	tbl := sampleTable(t)
	top, err := tbl.TopCategories("category", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(top) != 2 || top[0] != "Alpha" || top[1] != "Beta" {
		t.Errorf("top categories wrong: %v", top)
	}
}

func TestRollingMedian(t *testing.T) {
	vals := []float64{1, 2, 3, 4, 5, 6}
	got := RollingMedian(vals, 3, 2)
	if !math.IsNaN(got[0]) {
		t.Errorf("position 0 has one value, below min periods, got %v", got[0])
	}
	if got[1] != 1.5 {
		t.Errorf("got[1] = %v, want 1.5", got[1])
	}
	if got[5] != 5 {
		t.Errorf("got[5] = %v, want 5", got[5])
	}
}

func TestRollingSum(t *testing.T) {
	vals := []float64{1, 2, math.NaN(), 4}
	got := RollingSum(vals, 3, 2)
	if !math.IsNaN(got[0]) {
		t.Errorf("position 0 has one value, below min periods, got %v", got[0])
	}
	if got[1] != 3 {
		t.Errorf("got[1] = %v, want 3", got[1])
	}
	if got[2] != 3 {
		t.Errorf("got[2] = %v, want 3 (missing value excluded)", got[2])
	}
	if got[3] != 6 {
		t.Errorf("got[3] = %v, want 6", got[3])
	}
}

func TestPctChange(t *testing.T) {
	got := PctChange([]float64{100, 110, math.NaN(), 120, 0, 50})
	if !math.IsNaN(got[0]) {
		t.Error("first position should be missing")
	}
	if math.Abs(got[1]-0.1) > 1e-12 {
		t.Errorf("got[1] = %v, want 0.1", got[1])
	}
	if !math.IsNaN(got[2]) || !math.IsNaN(got[3]) {
		t.Error("changes across missing values should be missing")
	}
	if !math.IsNaN(got[5]) {
		t.Error("change from zero should be missing")
	}
}

func TestPivotNormalizeCorrelate(t *testing.T) {
	tbl := New()
	months := []time.Time{day(1), day(1), day(2), day(2), day(3), day(3)}
	cities := []string{"Kent", "Renton", "Kent", "Renton", "Kent", "Renton"}
	prices := []float64{100, 200, 110, 220, 121, 242}
	if err := tbl.AddTimes("month", months); err != nil {
		t.Fatal(err)
	}
	if err := tbl.AddStrings("city", cities); err != nil {
		t.Fatal(err)
	}
	if err := tbl.AddNumbers("median_price", prices); err != nil {
		t.Fatal(err)
	}

	m, err := tbl.Pivot("month", "city", "median_price")
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Index) != 3 || len(m.Columns) != 2 {
		t.Fatalf("pivot shape wrong: %d x %d", len(m.Index), len(m.Columns))
	}

	m.NormalizeFirst(100)
	kent, _ := m.Column("Kent")
	renton, _ := m.Column("Renton")
	if kent[0] != 100 || renton[0] != 100 {
		t.Errorf("first month should normalize to 100: %v %v", kent[0], renton[0])
	}
	if math.Abs(kent[2]-121) > 1e-9 || math.Abs(renton[2]-121) > 1e-9 {
		t.Errorf("normalized tails wrong: %v %v", kent[2], renton[2])
	}

	corr := m.CorrMatrix()
	v, err := corr.At("Kent", "Renton")
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(v-1) > 1e-9 {
		t.Errorf("perfectly co-moving series should correlate at 1, got %v", v)
	}
}

func TestSortByMissingLast(t *testing.T) {
	tbl := New()
	if err := tbl.AddNumbers("v", []float64{3, math.NaN(), 1}); err != nil {
		t.Fatal(err)
	}
	sorted, err := tbl.SortBy("v", true)
	if err != nil {
		t.Fatal(err)
	}
	vals, _ := sorted.Floats("v")
	if vals[0] != 1 || vals[1] != 3 || !math.IsNaN(vals[2]) {
		t.Errorf("sort order wrong: %v", vals)
	}
}

func TestDropMissing(t *testing.T) {
	tbl := New()
	if err := tbl.AddStrings("city", []string{"Kent", "", "Renton"}); err != nil {
		t.Fatal(err)
	}
	if err := tbl.AddNumbers("price", []float64{1, 2, math.NaN()}); err != nil {
		t.Fatal(err)
	}
	out, err := tbl.DropMissing("city", "price")
	if err != nil {
		t.Fatal(err)
	}
	if out.NumRows() != 1 {
		t.Errorf("expected 1 complete row, got %d", out.NumRows())
	}
}
