// Package quality splits extracted components into accepted and rejected
// sets by trace statistics, and applies the manual curation pass that
// follows automatic evaluation.
package quality

import (
	"math"
	"sort"

	"github.com/gonum/matrix/mat64"
)

// SNR returns the signal-to-noise ratio of a single trace: its peak
// excursion above the median, over the noise level estimated from the
// median absolute first difference. A flat trace has SNR 0; a noiseless
// trace with signal has SNR +Inf.
func SNR(trace []float64) float64 {
	n := len(trace)
	if n < 2 {
		return 0
	}

	med := median(trace)
	var peak float64
	for _, v := range trace {
		if d := v - med; d > peak {
			peak = d
		}
	}

	// Robust noise estimate: scaled median absolute difference between
	// consecutive samples. Transients are sparse, so the differences
	// are dominated by noise.
	diffs := make([]float64, n-1)
	for i := 1; i < n; i++ {
		diffs[i-1] = math.Abs(trace[i] - trace[i-1])
	}
	noise := 1.4826 * median(diffs) / math.Sqrt2

	if noise == 0 {
		if peak > 0 {
			return math.Inf(1)
		}
		return 0
	}
	return peak / noise
}

// Evaluate splits component indices by trace SNR against minSNR. Both
// returned sets are in ascending order.
func Evaluate(C *mat64.Dense, minSNR float64) (accepted, rejected []int) {
	nComp, _ := C.Dims()
	accepted = make([]int, 0, nComp)
	rejected = make([]int, 0)

	for i := 0; i < nComp; i++ {
		if SNR(C.RawRowView(i)) >= minSNR {
			accepted = append(accepted, i)
		} else {
			rejected = append(rejected, i)
		}
	}
	return accepted, rejected
}

// Curate applies a manual pass over automatic evaluation: indices in
// exclude move from accepted to rejected, indices in include move the
// other way. Unknown indices are ignored. The returned sets stay
// disjoint and ascending.
func Curate(accepted, rejected, exclude, include []int) (acc, rej []int) {
	inAcc := make(map[int]bool, len(accepted))
	for _, i := range accepted {
		inAcc[i] = true
	}
	inRej := make(map[int]bool, len(rejected))
	for _, i := range rejected {
		inRej[i] = true
	}

	for _, i := range exclude {
		if inAcc[i] {
			delete(inAcc, i)
			inRej[i] = true
		}
	}
	for _, i := range include {
		if inRej[i] {
			delete(inRej, i)
			inAcc[i] = true
		}
	}

	acc = make([]int, 0, len(inAcc))
	for i := range inAcc {
		acc = append(acc, i)
	}
	rej = make([]int, 0, len(inRej))
	for i := range inRej {
		rej = append(rej, i)
	}
	sort.Ints(acc)
	sort.Ints(rej)
	return acc, rej
}

func median(xs []float64) float64 {
	n := len(xs)
	if n == 0 {
		return math.NaN()
	}
	sorted := make([]float64, n)
	copy(sorted, xs)
	sort.Float64s(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
