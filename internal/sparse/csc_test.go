package sparse

import (
	"errors"
	"testing"

	"github.com/gonum/matrix/mat64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDense() *mat64.Dense {
	// 5 pixels, 3 components, overlapping footprints.
	return mat64.NewDense(5, 3, []float64{
		1, 0, 0,
		2, 1, 0,
		0, 3, 0,
		0, 2, 4,
		0, 0, 1,
	})
}

func TestNew_Validation(t *testing.T) {
	cases := []struct {
		name    string
		rows    int
		cols    int
		indptr  []int
		indices []int
		data    []float64
		err     error
	}{
		{"IndptrLength", 3, 2, []int{0, 1}, []int{0}, []float64{1}, ErrBadShape},
		{"IndexData", 3, 1, []int{0, 2}, []int{0}, []float64{1, 2}, ErrBadShape},
		{"IndptrBounds", 3, 1, []int{1, 1}, []int{0}, []float64{1}, ErrBadShape},
		{"NonMonotone", 3, 2, []int{0, 2, 1}, []int{0, 1}, []float64{1, 2}, ErrBadShape},
		{"UnsortedRows", 3, 1, []int{0, 2}, []int{2, 0}, []float64{1, 2}, ErrBadShape},
		{"RowRange", 3, 1, []int{0, 1}, []int{5}, []float64{1}, ErrIndexRange},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.rows, tc.cols, tc.indptr, tc.indices, tc.data)
			assert.ErrorIs(t, err, tc.err)
		})
	}
}

func TestFromDense_RoundTrip(t *testing.T) {
	d := testDense()
	a := FromDense(d)

	rows, cols := a.Dims()
	require.Equal(t, 5, rows)
	require.Equal(t, 3, cols)
	assert.Equal(t, 7, a.Nnz())

	back := a.ToDense()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			assert.Equal(t, d.At(i, j), back.At(i, j), "entry (%d, %d)", i, j)
			assert.Equal(t, d.At(i, j), a.At(i, j), "At (%d, %d)", i, j)
		}
	}
}

func TestColNorms(t *testing.T) {
	a := FromDense(testDense())
	norms := a.ColNorms()

	want := []float64{
		2.23606797749979,  // sqrt(1+4)
		3.7416573867739413, // sqrt(1+9+4)
		4.123105625617661,  // sqrt(16+1)
	}
	require.Len(t, norms, 3)
	for j := range want {
		assert.InDelta(t, want[j], norms[j], 1e-12)
	}
}

func TestScaleCols_CopiesAndScales(t *testing.T) {
	a := FromDense(testDense())
	scaled := a.ScaleCols([]float64{2, 0.5, 1})

	assert.Equal(t, 2.0, a.At(1, 0), "receiver must not change")
	assert.Equal(t, 4.0, scaled.At(1, 0))
	assert.Equal(t, 1.5, scaled.At(2, 1))
	assert.Equal(t, 4.0, scaled.At(3, 2))
}

func TestMulTransposeDense(t *testing.T) {
	d := testDense()
	a := FromDense(d)
	b := mat64.NewDense(5, 4, []float64{
		1, 2, 0, 1,
		0, 1, 1, 0,
		2, 0, 1, 3,
		1, 1, 0, 2,
		0, 3, 2, 1,
	})

	got := a.MulTransposeDense(b)

	var want mat64.Dense
	want.Mul(d.T(), b)

	rows, cols := got.Dims()
	require.Equal(t, 3, rows)
	require.Equal(t, 4, cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			assert.InDelta(t, want.At(i, j), got.At(i, j), 1e-12)
		}
	}
}

func TestMulTransposeSlab_MatchesFullProduct(t *testing.T) {
	d := testDense()
	a := FromDense(d)
	b := mat64.NewDense(5, 3, []float64{
		1, 0, 2,
		3, 1, 0,
		0, 2, 2,
		1, 1, 1,
		2, 0, 3,
	})
	full := a.MulTransposeDense(b)

	for _, blockRows := range []int{1, 2, 3, 5} {
		got := mat64.NewDense(3, 3, nil)
		for row := 0; row < 5; row += blockRows {
			n := blockRows
			if row+n > 5 {
				n = 5 - row
			}
			slab := make([]float64, n*3)
			for i := 0; i < n; i++ {
				copy(slab[i*3:(i+1)*3], b.RawRowView(row+i))
			}
			a.MulTransposeSlab(got, slab, row, n, 3)
		}

		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				assert.InDelta(t, full.At(i, j), got.At(i, j), 1e-12, "block %d entry (%d, %d)", blockRows, i, j)
			}
		}
	}
}

func TestGram(t *testing.T) {
	d := testDense()
	a := FromDense(d)

	var want mat64.Dense
	want.Mul(d.T(), d)

	got := a.Gram(false)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			assert.InDelta(t, want.At(i, j), got.At(i, j), 1e-12)
		}
	}

	offDiag := a.Gram(true)
	for i := 0; i < 3; i++ {
		assert.Zero(t, offDiag.At(i, i), "diagonal %d", i)
		for j := 0; j < 3; j++ {
			if i != j {
				assert.InDelta(t, want.At(i, j), offDiag.At(i, j), 1e-12)
			}
		}
	}
}

func TestNew_RejectsBadInput(t *testing.T) {
	_, err := New(-1, 2, []int{0, 0, 0}, nil, nil)
	assert.True(t, errors.Is(err, ErrBadShape))
}
