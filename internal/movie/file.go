package movie

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"

	"github.com/gonum/matrix/mat64"
)

// FileStore reads a movie from a raw binary file of little-endian float64
// values in row-major pixel × time order. The file stays on disk; only the
// requested slab is read into memory.
type FileStore struct {
	f      *os.File
	pixels int
	frames int
}

// OpenFile opens a raw movie file with the given dimensions.
func OpenFile(path string, pixels, frames int) (*FileStore, error) {
	if pixels <= 0 || frames <= 0 {
		return nil, fmt.Errorf("movie: bad dims %d by %d", pixels, frames)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("movie: open %s: %w", path, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("movie: stat %s: %w", path, err)
	}
	want := int64(pixels) * int64(frames) * 8
	if info.Size() != want {
		f.Close()
		return nil, fmt.Errorf("movie: %s holds %d bytes, want %d for %d by %d", path, info.Size(), want, pixels, frames)
	}

	return &FileStore{f: f, pixels: pixels, frames: frames}, nil
}

// Dims returns the store dimensions.
func (s *FileStore) Dims() (pixels, frames int) {
	return s.pixels, s.frames
}

// Slab reads the requested pixel rows from disk.
func (s *FileStore) Slab(dst []float64, row, numRows int) error {
	if row < 0 || numRows < 0 || row+numRows > s.pixels {
		return fmt.Errorf("%w: rows [%d, %d) of %d", ErrSlabRange, row, row+numRows, s.pixels)
	}
	n := numRows * s.frames
	if len(dst) < n {
		return fmt.Errorf("%w: dst holds %d values, need %d", ErrSlabRange, len(dst), n)
	}

	raw := make([]byte, n*8)
	off := int64(row) * int64(s.frames) * 8
	if _, err := s.f.ReadAt(raw, off); err != nil {
		return fmt.Errorf("movie: read rows [%d, %d): %w", row, row+numRows, err)
	}
	for i := 0; i < n; i++ {
		dst[i] = math.Float64frombits(binary.LittleEndian.Uint64(raw[i*8:]))
	}
	return nil
}

// OutOfCore reports true; every slab is a disk read.
func (s *FileStore) OutOfCore() bool {
	return true
}

// Close releases the underlying file.
func (s *FileStore) Close() error {
	return s.f.Close()
}

// WriteFile serializes a dense pixel × time matrix into the raw format
// read by OpenFile.
func WriteFile(path string, m *mat64.Dense) error {
	pixels, frames := m.Dims()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("movie: create %s: %w", path, err)
	}
	defer f.Close()

	buf := make([]byte, frames*8)
	for i := 0; i < pixels; i++ {
		row := m.RawRowView(i)
		for t, v := range row {
			binary.LittleEndian.PutUint64(buf[t*8:], math.Float64bits(v))
		}
		if _, err := f.Write(buf); err != nil {
			return fmt.Errorf("movie: write %s: %w", path, err)
		}
	}
	return nil
}
