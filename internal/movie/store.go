// Package movie provides read-only pixel × time access to motion-corrected
// recordings. A recording is a 2-D view of the movie: rows are flattened
// pixels, columns are frames. Stores may be fully in memory or backed by
// out-of-core storage; consumers read them in row slabs and must not assume
// the whole matrix fits in memory.
package movie

import (
	"errors"
	"fmt"

	"github.com/gonum/matrix/mat64"
)

// ErrSlabRange indicates a slab request outside the store's pixel rows.
var ErrSlabRange = errors.New("movie: slab out of range")

// Store is a pixel × time matrix read in row-major slabs.
type Store interface {
	// Dims returns the number of pixel rows and time frames.
	Dims() (pixels, frames int)
	// Slab copies rows [row, row+numRows) into dst in row-major order.
	// dst must hold numRows*frames values.
	Slab(dst []float64, row, numRows int) error
	// OutOfCore reports whether reads hit backing storage rather than
	// process memory, which bounds how aggressively callers may buffer.
	OutOfCore() bool
}

// MatStore adapts an in-memory dense matrix to the Store interface.
type MatStore struct {
	m *mat64.Dense
}

// NewMatStore wraps a dense pixel × time matrix.
func NewMatStore(m *mat64.Dense) *MatStore {
	return &MatStore{m: m}
}

// Dims returns the matrix dimensions.
func (s *MatStore) Dims() (pixels, frames int) {
	return s.m.Dims()
}

// Slab copies the requested rows out of the dense matrix.
func (s *MatStore) Slab(dst []float64, row, numRows int) error {
	pixels, frames := s.m.Dims()
	if row < 0 || numRows < 0 || row+numRows > pixels {
		return fmt.Errorf("%w: rows [%d, %d) of %d", ErrSlabRange, row, row+numRows, pixels)
	}
	if len(dst) < numRows*frames {
		return fmt.Errorf("%w: dst holds %d values, need %d", ErrSlabRange, len(dst), numRows*frames)
	}
	for i := 0; i < numRows; i++ {
		copy(dst[i*frames:(i+1)*frames], s.m.RawRowView(row+i))
	}
	return nil
}

// OutOfCore reports false; the matrix is resident.
func (s *MatStore) OutOfCore() bool {
	return false
}
