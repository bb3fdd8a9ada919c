package quality

import (
	"math"
	"testing"

	"github.com/gonum/matrix/mat64"
	"github.com/stretchr/testify/assert"
)

func TestSNR(t *testing.T) {
	// A flat trace carries no signal.
	flat := []float64{2, 2, 2, 2, 2}
	assert.Zero(t, SNR(flat))

	// One clean transient on a noiseless baseline: the difference
	// median stays 0, so the estimated noise is 0 and SNR is +Inf.
	spike := []float64{0, 0, 0, 10, 0, 0, 0}
	assert.True(t, math.IsInf(SNR(spike), 1))

	// Noise without signal scores low.
	noisy := []float64{0.1, -0.1, 0.12, -0.08, 0.1, -0.11, 0.09, -0.1}
	assert.Less(t, SNR(noisy), 3.0)

	// A strong transient over small noise scores high.
	strong := []float64{0.1, -0.1, 0.1, -0.1, 12, 11, 0.1, -0.1, 0.1, -0.1}
	assert.Greater(t, SNR(strong), 10.0)
}

func TestSNR_ShortTraces(t *testing.T) {
	assert.Zero(t, SNR(nil))
	assert.Zero(t, SNR([]float64{1}))
}

func TestEvaluate(t *testing.T) {
	c := mat64.NewDense(3, 10, nil)
	// Component 0: strong transient. Component 1: flat. Component 2:
	// pure noise.
	for i, row := range [][]float64{
		{0.1, -0.1, 0.1, -0.1, 12, 11, 0.1, -0.1, 0.1, -0.1},
		{1, 1, 1, 1, 1, 1, 1, 1, 1, 1},
		{0.3, -0.2, 0.25, -0.3, 0.2, -0.25, 0.3, -0.2, 0.25, -0.3},
	} {
		for t0, v := range row {
			c.Set(i, t0, v)
		}
	}

	accepted, rejected := Evaluate(c, 5)
	assert.Equal(t, []int{0}, accepted)
	assert.Equal(t, []int{1, 2}, rejected)
}

func TestCurate(t *testing.T) {
	accepted := []int{0, 2, 4}
	rejected := []int{1, 3}

	acc, rej := Curate(accepted, rejected, []int{2}, []int{3})
	assert.Equal(t, []int{0, 3, 4}, acc)
	assert.Equal(t, []int{1, 2}, rej)

	// Unknown indices are ignored, and no index appears twice.
	acc, rej = Curate(accepted, rejected, []int{99}, []int{0})
	assert.Equal(t, []int{0, 2, 4}, acc)
	assert.Equal(t, []int{1, 3}, rej)
}

func TestCurate_EmptyLists(t *testing.T) {
	acc, rej := Curate([]int{1}, []int{0}, nil, nil)
	assert.Equal(t, []int{1}, acc)
	assert.Equal(t, []int{0}, rej)
}
