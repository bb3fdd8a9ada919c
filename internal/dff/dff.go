// Package dff computes baseline-normalized fluorescence traces (ΔF/F)
// for components extracted from a microendoscopic calcium recording.
//
// Given the registered movie Yr (pixels × frames), the sparse spatial
// footprints A (pixels × components), the raw temporal traces
// C (components × frames) and the per-component baseline bl, Extract
// rescales the footprints to unit L2 norm, projects the movie onto them,
// subtracts the overlap of neighboring components, estimates each
// component's baseline fluorescence as a low percentile of the projected
// signal and divides it out. The projection runs in bounded pixel blocks
// so arbitrarily long out-of-core recordings never have to fit in memory.
package dff

import (
	"fmt"
	"math"

	"github.com/gonum/matrix/mat64"

	"github.com/Eric-H-Chang/calcium-imaging/internal/calc"
	"github.com/Eric-H-Chang/calcium-imaging/internal/movie"
	"github.com/Eric-H-Chang/calcium-imaging/internal/sparse"
)

// serialBlockSize is the block size at or above which the projection of
// an out-of-core movie runs serially: concurrent workers each hold a
// slab buffer, and large blocks times many workers defeats the point of
// blocking in the first place.
const serialBlockSize = 500

// Options control the normalization.
type Options struct {
	// QuantileMin is the percentile, in [0, 100], of the projected
	// signal taken as the baseline fluorescence denominator.
	QuantileMin float64
	// FramesWindow, when positive and smaller than the recording, is
	// the length in frames of the sliding window over which the
	// percentile is recomputed locally, tracking slow baseline drift.
	// Zero means a single percentile over the whole recording.
	FramesWindow int
	// BlockSize bounds the number of pixel rows read per slab when the
	// movie is out of core. It never changes the numeric result.
	BlockSize int
	// Pipe is the caller-owned worker pool. Nil runs everything
	// serially.
	Pipe *calc.Pipeline
}

// DefaultOptions returns the options used by the recording pipeline.
func DefaultOptions() Options {
	return Options{QuantileMin: 8, FramesWindow: 0, BlockSize: 400}
}

// Extract computes the ΔF/F trace matrix, components × frames, the same
// shape as C. Inputs are not modified. On any error the whole call fails
// and no traces are returned.
func Extract(Yr movie.Store, A *sparse.CSC, C *mat64.Dense, bl []float64, opts Options) (*mat64.Dense, error) {
	pixels, frames := Yr.Dims()
	aPixels, nComp := A.Dims()
	cComp, cFrames := C.Dims()

	if aPixels != pixels {
		return nil, fmt.Errorf("%w: A has %d pixels, movie has %d", ErrShapeMismatch, aPixels, pixels)
	}
	if cFrames != frames {
		return nil, fmt.Errorf("%w: C has %d frames, movie has %d", ErrShapeMismatch, cFrames, frames)
	}
	if cComp != nComp {
		return nil, fmt.Errorf("%w: A has %d components, C has %d", ErrShapeMismatch, nComp, cComp)
	}
	if len(bl) != nComp {
		return nil, fmt.Errorf("%w: bl has %d entries for %d components", ErrShapeMismatch, len(bl), nComp)
	}
	if opts.QuantileMin < 0 || opts.QuantileMin > 100 {
		return nil, fmt.Errorf("%w: quantile %v outside [0, 100]", ErrBadOption, opts.QuantileMin)
	}
	if opts.FramesWindow < 0 {
		return nil, fmt.Errorf("%w: frames window %d", ErrBadOption, opts.FramesWindow)
	}
	if opts.BlockSize <= 0 {
		opts.BlockSize = DefaultOptions().BlockSize
	}

	// Unit-normalize the footprints and push the norms into the traces
	// and baselines, leaving the reconstruction A·C unchanged.
	nA := A.ColNorms()
	inv := make([]float64, nComp)
	for i, v := range nA {
		if v == 0 {
			return nil, fmt.Errorf("%w: component %d has an all-zero spatial footprint", ErrDegenerateComponent, i)
		}
		inv[i] = 1 / v
	}

	An := A.ScaleCols(inv)
	Cn := mat64.NewDense(nComp, frames, nil)
	bln := make([]float64, nComp)
	for i := 0; i < nComp; i++ {
		row := Cn.RawRowView(i)
		for t := 0; t < frames; t++ {
			row[t] = C.At(i, t) * nA[i]
		}
		bln[i] = bl[i] * nA[i]
	}
	unit := An.ColNorms()

	AY, err := projectMovie(Yr, An, frames, opts)
	if err != nil {
		return nil, err
	}

	// Cf: baseline-subtracted traces, rescaled by the (now unit) norms.
	// C2: projected raw signal with overlap from other components
	// removed; its low percentile estimates the baseline fluorescence.
	AA := An.Gram(true)
	Cf := mat64.NewDense(nComp, frames, nil)
	C2 := mat64.NewDense(nComp, frames, nil)

	rowJob := func(i int) {
		cfRow := Cf.RawRowView(i)
		c2Row := C2.RawRowView(i)
		ayRow := AY.RawRowView(i)
		scale := unit[i] * unit[i]
		for t := 0; t < frames; t++ {
			cfRow[t] = (Cn.At(i, t) - bln[i]) * scale
			var overlap float64
			for j := 0; j < nComp; j++ {
				if v := AA.At(i, j); v != 0 {
					overlap += v * Cn.At(j, t)
				}
			}
			c2Row[t] = ayRow[t] - overlap
		}
	}
	if opts.Pipe != nil {
		opts.Pipe.Rows(nComp, rowJob)
	} else {
		for i := 0; i < nComp; i++ {
			rowJob(i)
		}
	}

	return divideBaseline(Cf, C2, opts)
}

// projectMovie computes AYᵗ·Yr in pixel slabs of at most opts.BlockSize
// rows. Out-of-core movies with large blocks are forced serial; otherwise
// blocks run on the pool, and partial products are summed in ascending
// block order so the result matches the serial pass exactly.
func projectMovie(Yr movie.Store, An *sparse.CSC, frames int, opts Options) (*mat64.Dense, error) {
	pixels, _ := Yr.Dims()
	_, nComp := An.Dims()

	blockSize := opts.BlockSize
	if blockSize > pixels {
		blockSize = pixels
	}
	numBlocks := (pixels + blockSize - 1) / blockSize

	serial := opts.Pipe == nil || (Yr.OutOfCore() && opts.BlockSize >= serialBlockSize)

	if serial {
		AY := mat64.NewDense(nComp, frames, nil)
		slab := make([]float64, blockSize*frames)
		for b := 0; b < numBlocks; b++ {
			row := b * blockSize
			numRows := blockSize
			if row+numRows > pixels {
				numRows = pixels - row
			}
			if err := Yr.Slab(slab, row, numRows); err != nil {
				return nil, err
			}
			An.MulTransposeSlab(AY, slab, row, numRows, frames)
		}
		return AY, nil
	}

	partials := make([]*mat64.Dense, numBlocks)
	errs := make([]error, numBlocks)

	opts.Pipe.Rows(numBlocks, func(b int) {
		row := b * blockSize
		numRows := blockSize
		if row+numRows > pixels {
			numRows = pixels - row
		}
		slab := make([]float64, numRows*frames)
		if err := Yr.Slab(slab, row, numRows); err != nil {
			errs[b] = err
			return
		}
		part := mat64.NewDense(nComp, frames, nil)
		An.MulTransposeSlab(part, slab, row, numRows, frames)
		partials[b] = part
	})

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	AY := mat64.NewDense(nComp, frames, nil)
	for b := 0; b < numBlocks; b++ {
		part := partials[b]
		for i := 0; i < nComp; i++ {
			row := AY.RawRowView(i)
			src := part.RawRowView(i)
			for t := range row {
				row[t] += src[t]
			}
		}
	}
	return AY, nil
}

// divideBaseline computes Cf / Df, where Df is the QuantileMin percentile
// of each C2 row, globally or over a sliding window.
func divideBaseline(Cf, C2 *mat64.Dense, opts Options) (*mat64.Dense, error) {
	nComp, frames := Cf.Dims()
	out := mat64.NewDense(nComp, frames, nil)
	errs := make([]error, nComp)

	windowed := opts.FramesWindow > 0 && opts.FramesWindow <= frames

	rowJob := func(i int) {
		cfRow := Cf.RawRowView(i)
		c2Row := C2.RawRowView(i)
		outRow := out.RawRowView(i)

		if !windowed {
			df := calc.Percentile(c2Row, opts.QuantileMin)
			if df == 0 || math.IsNaN(df) || math.IsInf(df, 0) {
				errs[i] = fmt.Errorf("%w: component %d has baseline denominator %v", ErrDegenerateComponent, i, df)
				return
			}
			for t := 0; t < frames; t++ {
				outRow[t] = cfRow[t] / df
			}
			return
		}

		df := calc.RollingPercentile(c2Row, opts.QuantileMin, opts.FramesWindow)
		for t := 0; t < frames; t++ {
			if df[t] == 0 || math.IsNaN(df[t]) || math.IsInf(df[t], 0) {
				errs[i] = fmt.Errorf("%w: component %d has baseline denominator %v at frame %d", ErrDegenerateComponent, i, df[t], t)
				return
			}
			outRow[t] = cfRow[t] / df[t]
		}
	}

	if opts.Pipe != nil {
		opts.Pipe.Rows(nComp, rowJob)
	} else {
		for i := 0; i < nComp; i++ {
			rowJob(i)
		}
	}

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
