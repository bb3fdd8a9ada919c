package calc

import (
	"math"
	"sort"
)

// Percentile returns the q-th percentile of xs, q in [0, 100], using
// linear interpolation between the two nearest order statistics. Returns
// NaN for an empty input. xs is not modified.
func Percentile(xs []float64, q float64) float64 {
	n := len(xs)
	if n == 0 {
		return math.NaN()
	}

	sorted := make([]float64, n)
	copy(sorted, xs)
	sort.Float64s(sorted)

	return percentileSorted(sorted, q)
}

// RollingPercentile applies a sliding-window q-th percentile filter to xs.
// The window is centered on each sample (even lengths extend one sample
// further back) and truncated at the sequence edges. A window of length
// >= len(xs) degenerates to the global percentile at every sample.
func RollingPercentile(xs []float64, q float64, window int) []float64 {
	n := len(xs)
	out := make([]float64, n)
	if n == 0 {
		return out
	}
	if window < 1 {
		window = 1
	}

	// Sorted copy of the current window, advanced incrementally: one
	// binary-search removal and one insertion per output sample.
	buf := make([]float64, 0, window)
	lo, hi := 0, 0

	for t := 0; t < n; t++ {
		wlo := t - window/2
		if wlo < 0 {
			wlo = 0
		}
		whi := t + (window - window/2)
		if whi > n {
			whi = n
		}

		for ; lo < wlo; lo++ {
			k := sort.SearchFloat64s(buf, xs[lo])
			buf = append(buf[:k], buf[k+1:]...)
		}
		for ; hi < whi; hi++ {
			k := sort.SearchFloat64s(buf, xs[hi])
			buf = append(buf, 0)
			copy(buf[k+1:], buf[k:])
			buf[k] = xs[hi]
		}

		out[t] = percentileSorted(buf, q)
	}

	return out
}

func percentileSorted(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 100 {
		return sorted[n-1]
	}

	pos := q / 100 * float64(n-1)
	k := int(math.Floor(pos))
	frac := pos - float64(k)
	if k+1 >= n {
		return sorted[n-1]
	}
	return sorted[k]*(1-frac) + sorted[k+1]*frac
}
