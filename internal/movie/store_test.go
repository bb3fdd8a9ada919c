package movie

import (
	"path/filepath"
	"testing"

	"github.com/gonum/matrix/mat64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rampMovie(pixels, frames int) *mat64.Dense {
	m := mat64.NewDense(pixels, frames, nil)
	for p := 0; p < pixels; p++ {
		for t := 0; t < frames; t++ {
			m.Set(p, t, float64(p*frames+t)+0.5)
		}
	}
	return m
}

func TestMatStore_Slab(t *testing.T) {
	m := rampMovie(4, 3)
	s := NewMatStore(m)

	pixels, frames := s.Dims()
	require.Equal(t, 4, pixels)
	require.Equal(t, 3, frames)
	assert.False(t, s.OutOfCore())

	dst := make([]float64, 2*3)
	require.NoError(t, s.Slab(dst, 1, 2))
	for i := 0; i < 2; i++ {
		for j := 0; j < 3; j++ {
			assert.Equal(t, m.At(1+i, j), dst[i*3+j])
		}
	}
}

func TestMatStore_SlabRangeErrors(t *testing.T) {
	s := NewMatStore(rampMovie(4, 3))
	dst := make([]float64, 12)

	assert.ErrorIs(t, s.Slab(dst, -1, 2), ErrSlabRange)
	assert.ErrorIs(t, s.Slab(dst, 3, 2), ErrSlabRange)
	assert.ErrorIs(t, s.Slab(make([]float64, 2), 0, 2), ErrSlabRange)
}

func TestFileStore_MatchesMatStore(t *testing.T) {
	m := rampMovie(6, 4)
	path := filepath.Join(t.TempDir(), "movie.dat")
	require.NoError(t, WriteFile(path, m))

	fs, err := OpenFile(path, 6, 4)
	require.NoError(t, err)
	defer fs.Close()

	assert.True(t, fs.OutOfCore())

	ref := NewMatStore(m)
	for _, blk := range []struct{ row, n int }{{0, 6}, {0, 1}, {2, 3}, {5, 1}} {
		want := make([]float64, blk.n*4)
		got := make([]float64, blk.n*4)
		require.NoError(t, ref.Slab(want, blk.row, blk.n))
		require.NoError(t, fs.Slab(got, blk.row, blk.n))
		assert.Equal(t, want, got, "rows [%d, %d)", blk.row, blk.row+blk.n)
	}
}

func TestOpenFile_RejectsWrongSize(t *testing.T) {
	m := rampMovie(3, 3)
	path := filepath.Join(t.TempDir(), "movie.dat")
	require.NoError(t, WriteFile(path, m))

	_, err := OpenFile(path, 4, 3)
	assert.Error(t, err)
}
