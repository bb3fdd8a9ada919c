package movie

import (
	"fmt"
	"unsafe"

	"github.com/ghetzel/shmtool/shm"
)

// ShmStore is a movie held in a System V shared-memory segment, the
// hand-off buffer used when an external motion-correction process writes
// the registered movie directly into shared memory. The segment id is
// passed to the external process on its command line; once that process
// exits, the store reads the segment in place, without copies.
type ShmStore struct {
	seg    *shm.Segment
	base   unsafe.Pointer
	data   []float64
	pixels int
	frames int
}

// CreateShm allocates and attaches a shared-memory segment sized for a
// pixels × frames float64 movie.
func CreateShm(pixels, frames int) (*ShmStore, error) {
	if pixels <= 0 || frames <= 0 {
		return nil, fmt.Errorf("movie: bad dims %d by %d", pixels, frames)
	}

	seg, err := shm.Create(pixels * frames * 8)
	if err != nil {
		return nil, fmt.Errorf("movie: create shm segment: %w", err)
	}

	base, err := seg.Attach()
	if err != nil {
		return nil, fmt.Errorf("movie: attach shm segment %d: %w", seg.Id, err)
	}

	data := unsafe.Slice((*float64)(unsafe.Pointer(uintptr(base))), pixels*frames)

	return &ShmStore{seg: seg, base: base, data: data, pixels: pixels, frames: frames}, nil
}

// ID returns the segment id to hand to the producing process.
func (s *ShmStore) ID() int {
	return s.seg.Id
}

// Data exposes the backing segment as a row-major float64 slice, for the
// in-process producer case.
func (s *ShmStore) Data() []float64 {
	return s.data
}

// Dims returns the store dimensions.
func (s *ShmStore) Dims() (pixels, frames int) {
	return s.pixels, s.frames
}

// Slab copies the requested pixel rows out of the segment.
func (s *ShmStore) Slab(dst []float64, row, numRows int) error {
	if row < 0 || numRows < 0 || row+numRows > s.pixels {
		return fmt.Errorf("%w: rows [%d, %d) of %d", ErrSlabRange, row, row+numRows, s.pixels)
	}
	n := numRows * s.frames
	if len(dst) < n {
		return fmt.Errorf("%w: dst holds %d values, need %d", ErrSlabRange, len(dst), n)
	}
	copy(dst[:n], s.data[row*s.frames:])
	return nil
}

// OutOfCore reports true: the segment is shared with other processes and
// sized for movies that should not be duplicated into process buffers.
func (s *ShmStore) OutOfCore() bool {
	return true
}

// Close detaches from the segment. The segment itself stays allocated for
// any process still attached.
func (s *ShmStore) Close() error {
	return s.seg.Detach(s.base)
}
