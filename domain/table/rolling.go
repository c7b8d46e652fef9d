package table

import (
	"math"

	"github.com/montanaflynn/stats"
)

// rollingApply slides a window over vals and applies fn to the non-missing
// values inside it. Positions with fewer than minPeriods values yield NaN.
func rollingApply(vals []float64, window, minPeriods int, fn func([]float64) (float64, error)) []float64 {
	out := make([]float64, len(vals))
	for i := range vals {
		start := i - window + 1
		if start < 0 {
			start = 0
		}
		var clean []float64
		for _, v := range vals[start : i+1] {
			if !math.IsNaN(v) {
				clean = append(clean, v)
			}
		}
		if len(clean) < minPeriods {
			out[i] = math.NaN()
			continue
		}
		v, err := fn(clean)
		if err != nil {
			out[i] = math.NaN()
			continue
		}
		out[i] = v
	}
	return out
}

// RollingMedian computes a trailing-window median.
func RollingMedian(vals []float64, window, minPeriods int) []float64 {
	return rollingApply(vals, window, minPeriods, func(v []float64) (float64, error) {
		return stats.Median(v)
	})
}

// RollingSum computes a trailing-window sum.
func RollingSum(vals []float64, window, minPeriods int) []float64 {
	return rollingApply(vals, window, minPeriods, func(v []float64) (float64, error) {
		return stats.Sum(v)
	})
}

// PctChange computes the fractional change from the previous value. The
// first position, and positions after a missing or zero value, yield NaN.
func PctChange(vals []float64) []float64 {
	out := make([]float64, len(vals))
	for i := range vals {
		if i == 0 {
			out[i] = math.NaN()
			continue
		}
		prev, cur := vals[i-1], vals[i]
		if math.IsNaN(prev) || math.IsNaN(cur) || prev == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = (cur - prev) / prev
	}
	return out
}
