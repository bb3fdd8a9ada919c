package calc

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPipeline_RunsEveryRowOnce(t *testing.T) {
	pl := New(4)
	assert.Equal(t, 4, pl.Workers())

	const n = 100
	counts := make([]int32, n)
	pl.Rows(n, func(i int) {
		atomic.AddInt32(&counts[i], 1)
	})

	for i, c := range counts {
		assert.Equal(t, int32(1), c, "row %d", i)
	}
}

func TestPipeline_DefaultsToCPUs(t *testing.T) {
	pl := New(0)
	assert.Greater(t, pl.Workers(), 0)

	// A pool wider than the job count must still complete.
	ran := make([]int32, 2)
	pl.Rows(2, func(i int) {
		atomic.AddInt32(&ran[i], 1)
	})
	assert.Equal(t, []int32{1, 1}, ran)
}

func TestPipeline_ZeroJobs(t *testing.T) {
	pl := New(2)
	pl.Rows(0, func(int) {
		t.Fatal("no jobs expected")
	})
}
