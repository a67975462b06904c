package analytics

import (
	"math"
	"sort"
)

// Mean returns the arithmetic mean of xs. The input must be non-empty;
// callers check length before calling.
func Mean(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// Median returns the median of xs without mutating the input. The input
// must be non-empty.
func Median(xs []float64) float64 {
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// StdDev returns the sample standard deviation of xs with Bessel's
// correction. A single data point has no spread, so ok is false for
// fewer than two values.
func StdDev(xs []float64) (float64, bool) {
	if len(xs) < 2 {
		return 0, false
	}

	mean := Mean(xs)
	var sumSquares float64
	for _, x := range xs {
		diff := x - mean
		sumSquares += diff * diff
	}
	return math.Sqrt(sumSquares / float64(len(xs)-1)), true
}

// PercentileRank returns the percentage of values in xs strictly below
// x. Ties do not count as below. Returns 0 for an empty population.
func PercentileRank(x float64, xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}

	below := 0
	for _, y := range xs {
		if y < x {
			below++
		}
	}
	return float64(below) / float64(len(xs)) * 100
}
