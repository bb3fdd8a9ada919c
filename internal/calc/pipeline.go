// Package calc provides the shared compute pool and the order-statistic
// primitives used by the trace-normalization pipeline.
package calc

import (
	"runtime"
	"sync"
)

// Pipeline is a caller-owned handle for row-parallel computation. Every
// routine that can parallelize takes a *Pipeline; a nil handle means
// serial execution. The caller creates the handle once, passes it into
// each stage, and owns its degree of parallelism.
type Pipeline struct {
	numWorkers int
}

// New returns a Pipeline running jobs on the given number of workers.
// Non-positive values use one worker per CPU.
func New(numWorkers int) *Pipeline {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &Pipeline{numWorkers: numWorkers}
}

// Workers reports the pool's degree of parallelism.
func (p *Pipeline) Workers() int {
	return p.numWorkers
}

// Rows runs fn for every index in [0, n) across the pool and blocks until
// all jobs complete. fn must be safe to call concurrently for distinct
// indices.
func (p *Pipeline) Rows(n int, fn func(index int)) {
	order := make(chan int, p.numWorkers)
	var wg sync.WaitGroup

	wg.Add(n)

	for i := 0; i < p.numWorkers; i++ {
		go func() {
			for {
				index, ok := <-order
				if ok {
					fn(index)
					wg.Done()
				} else {
					break
				}
			}
		}()
	}

	for i := 0; i < n; i++ {
		order <- i
	}

	wg.Wait()
	close(order)
}
