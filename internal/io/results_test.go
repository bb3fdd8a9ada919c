package io

import (
	"path/filepath"
	"testing"

	"github.com/gonum/matrix/mat64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Eric-H-Chang/calcium-imaging/internal/sparse"
)

func TestSaveLoadResults(t *testing.T) {
	aDense := mat64.NewDense(4, 2, []float64{
		1, 0,
		0.5, 0,
		0, 2,
		0, 0.25,
	})
	res := &Results{
		Cdf:      mat64.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6}),
		C:        mat64.NewDense(2, 3, []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6}),
		A:        sparse.FromDense(aDense),
		Bl:       []float64{0.5, 1.25},
		Accepted: []int{0},
		Rejected: []int{1},
	}

	dir := filepath.Join(t.TempDir(), "results")
	require.NoError(t, SaveResults(dir, res))

	got, err := LoadResults(dir)
	require.NoError(t, err)

	assert.Equal(t, res.Bl, got.Bl)
	assert.Equal(t, res.Accepted, got.Accepted)
	assert.Equal(t, res.Rejected, got.Rejected)

	for _, pair := range []struct{ want, have *mat64.Dense }{
		{res.Cdf, got.Cdf},
		{res.C, got.C},
		{res.A.ToDense(), got.A.ToDense()},
	} {
		wr, wc := pair.want.Dims()
		hr, hc := pair.have.Dims()
		require.Equal(t, wr, hr)
		require.Equal(t, wc, hc)
		for i := 0; i < wr; i++ {
			for j := 0; j < wc; j++ {
				assert.Equal(t, pair.want.At(i, j), pair.have.At(i, j), "entry (%d, %d)", i, j)
			}
		}
	}
}

func TestLoadResults_MissingDir(t *testing.T) {
	_, err := LoadResults(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestCSVRoundTrip(t *testing.T) {
	m := mat64.NewDense(3, 2, []float64{1.5, -2, 0, 3.25, 1e-3, 7})
	path := filepath.Join(t.TempDir(), "m.csv")
	require.NoError(t, WriteCSV(path, m))

	got := mat64.NewDense(3, 2, nil)
	require.NoError(t, ReadCSV(path, got))
	for i := 0; i < 3; i++ {
		for j := 0; j < 2; j++ {
			assert.Equal(t, m.At(i, j), got.At(i, j))
		}
	}
}
