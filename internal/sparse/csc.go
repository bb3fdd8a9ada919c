// Package sparse implements a column-compressed (CSC) float64 matrix with
// the operations needed for spatial-footprint algebra: column norms, column
// rescaling, and transpose products against dense matrices and row slabs.
package sparse

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/gonum/matrix/mat64"
)

var (
	// ErrBadShape indicates inconsistent construction arguments.
	ErrBadShape = errors.New("sparse: inconsistent shape or index data")
	// ErrIndexRange indicates a row index outside the matrix bounds.
	ErrIndexRange = errors.New("sparse: row index out of range")
)

// CSC is a sparse matrix in compressed-sparse-column form. Entries of
// column j live at positions indptr[j]:indptr[j+1] of indices/data, with
// indices holding row numbers in ascending order.
type CSC struct {
	rows, cols int
	indptr     []int
	indices    []int
	data       []float64
}

// New constructs a CSC matrix from raw compressed-column arrays.
func New(rows, cols int, indptr, indices []int, data []float64) (*CSC, error) {
	if rows < 0 || cols < 0 {
		return nil, fmt.Errorf("%w: %d by %d", ErrBadShape, rows, cols)
	}
	if len(indptr) != cols+1 {
		return nil, fmt.Errorf("%w: indptr length %d for %d columns", ErrBadShape, len(indptr), cols)
	}
	if len(indices) != len(data) {
		return nil, fmt.Errorf("%w: %d indices but %d values", ErrBadShape, len(indices), len(data))
	}
	if indptr[0] != 0 || indptr[cols] != len(data) {
		return nil, fmt.Errorf("%w: indptr bounds [%d, %d]", ErrBadShape, indptr[0], indptr[cols])
	}
	for j := 0; j < cols; j++ {
		if indptr[j] > indptr[j+1] {
			return nil, fmt.Errorf("%w: indptr not monotone at column %d", ErrBadShape, j)
		}
		// Row indices must be strictly ascending within a column; the
		// merge in dotCols and the window search rely on it.
		for k := indptr[j] + 1; k < indptr[j+1]; k++ {
			if indices[k-1] >= indices[k] {
				return nil, fmt.Errorf("%w: unsorted rows in column %d", ErrBadShape, j)
			}
		}
	}
	for _, r := range indices {
		if r < 0 || r >= rows {
			return nil, fmt.Errorf("%w: row %d in %d-row matrix", ErrIndexRange, r, rows)
		}
	}
	return &CSC{rows: rows, cols: cols, indptr: indptr, indices: indices, data: data}, nil
}

// FromDense compresses a dense matrix, keeping only non-zero entries.
func FromDense(m *mat64.Dense) *CSC {
	rows, cols := m.Dims()
	indptr := make([]int, cols+1)
	var indices []int
	var data []float64

	for j := 0; j < cols; j++ {
		for i := 0; i < rows; i++ {
			v := m.At(i, j)
			if v != 0 {
				indices = append(indices, i)
				data = append(data, v)
			}
		}
		indptr[j+1] = len(data)
	}

	return &CSC{rows: rows, cols: cols, indptr: indptr, indices: indices, data: data}
}

// Dims returns the matrix dimensions.
func (a *CSC) Dims() (rows, cols int) {
	return a.rows, a.cols
}

// Nnz returns the number of stored entries.
func (a *CSC) Nnz() int {
	return len(a.data)
}

// At returns the entry at (i, j).
func (a *CSC) At(i, j int) float64 {
	for k := a.indptr[j]; k < a.indptr[j+1]; k++ {
		if a.indices[k] == i {
			return a.data[k]
		}
	}
	return 0
}

// Raw returns the underlying compressed-column arrays. The caller must not
// modify them.
func (a *CSC) Raw() (indptr, indices []int, data []float64) {
	return a.indptr, a.indices, a.data
}

// ToDense expands the matrix into a dense mat64 matrix.
func (a *CSC) ToDense() *mat64.Dense {
	m := mat64.NewDense(a.rows, a.cols, nil)
	for j := 0; j < a.cols; j++ {
		for k := a.indptr[j]; k < a.indptr[j+1]; k++ {
			m.Set(a.indices[k], j, a.data[k])
		}
	}
	return m
}

// ColNorms returns the L2 norm of each column.
func (a *CSC) ColNorms() []float64 {
	norms := make([]float64, a.cols)
	for j := 0; j < a.cols; j++ {
		var acc float64
		for k := a.indptr[j]; k < a.indptr[j+1]; k++ {
			acc += a.data[k] * a.data[k]
		}
		norms[j] = math.Sqrt(acc)
	}
	return norms
}

// ScaleCols returns a copy of the matrix with column j multiplied by
// scale[j]. The receiver is left untouched.
func (a *CSC) ScaleCols(scale []float64) *CSC {
	indptr := make([]int, len(a.indptr))
	copy(indptr, a.indptr)
	indices := make([]int, len(a.indices))
	copy(indices, a.indices)
	data := make([]float64, len(a.data))

	for j := 0; j < a.cols; j++ {
		for k := a.indptr[j]; k < a.indptr[j+1]; k++ {
			data[k] = a.data[k] * scale[j]
		}
	}

	return &CSC{rows: a.rows, cols: a.cols, indptr: indptr, indices: indices, data: data}
}

// MulTransposeDense computes Aᵗ·B for a dense B with a.rows rows,
// returning an a.cols × Bcols dense matrix.
func (a *CSC) MulTransposeDense(b *mat64.Dense) *mat64.Dense {
	bRows, bCols := b.Dims()
	if bRows != a.rows {
		panic(fmt.Sprintf("sparse: MulTransposeDense got %d rows, want %d", bRows, a.rows))
	}

	out := mat64.NewDense(a.cols, bCols, nil)
	for j := 0; j < a.cols; j++ {
		row := out.RawRowView(j)
		for k := a.indptr[j]; k < a.indptr[j+1]; k++ {
			p := a.indices[k]
			w := a.data[k]
			bRow := b.RawRowView(p)
			for t := 0; t < bCols; t++ {
				row[t] += w * bRow[t]
			}
		}
	}
	return out
}

// MulTransposeSlab accumulates the contribution of the pixel-row window
// [row, row+numRows) to Aᵗ·Y into dst, where slab holds the window's rows
// of Y in row-major order with the given number of columns. dst must be
// a.cols × cols.
func (a *CSC) MulTransposeSlab(dst *mat64.Dense, slab []float64, row, numRows, cols int) {
	for j := 0; j < a.cols; j++ {
		out := dst.RawRowView(j)
		col := a.indices[a.indptr[j]:a.indptr[j+1]]
		k := a.indptr[j] + sort.SearchInts(col, row)
		for ; k < a.indptr[j+1] && a.indices[k] < row+numRows; k++ {
			w := a.data[k]
			off := (a.indices[k] - row) * cols
			for t := 0; t < cols; t++ {
				out[t] += w * slab[off+t]
			}
		}
	}
}

// Gram computes AᵗA as a dense cols × cols matrix. With zeroDiag the
// diagonal is forced to zero, leaving only cross-column overlaps.
func (a *CSC) Gram(zeroDiag bool) *mat64.Dense {
	out := mat64.NewDense(a.cols, a.cols, nil)
	for i := 0; i < a.cols; i++ {
		for j := i; j < a.cols; j++ {
			if zeroDiag && i == j {
				continue
			}
			v := a.dotCols(i, j)
			out.Set(i, j, v)
			out.Set(j, i, v)
		}
	}
	return out
}

// dotCols computes the dot product of two columns by merging their sorted
// row-index lists.
func (a *CSC) dotCols(i, j int) float64 {
	ki, kj := a.indptr[i], a.indptr[j]
	endI, endJ := a.indptr[i+1], a.indptr[j+1]

	var acc float64
	for ki < endI && kj < endJ {
		ri, rj := a.indices[ki], a.indices[kj]
		switch {
		case ri == rj:
			acc += a.data[ki] * a.data[kj]
			ki++
			kj++
		case ri < rj:
			ki++
		default:
			kj++
		}
	}
	return acc
}
