package dff

import "errors"

var (
	// ErrShapeMismatch indicates inconsistent dimensions between the
	// movie, the spatial footprints, the temporal traces, or the
	// baseline vector.
	ErrShapeMismatch = errors.New("dff: input dimensions are inconsistent")
	// ErrDegenerateComponent indicates a component whose normalization
	// is undefined: an all-zero spatial footprint, or a zero or
	// non-finite percentile denominator. The whole call fails; no
	// partial traces are returned.
	ErrDegenerateComponent = errors.New("dff: degenerate component")
	// ErrBadOption indicates an option value outside its legal range.
	ErrBadOption = errors.New("dff: bad option")
)
