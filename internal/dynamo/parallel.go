package dynamo

import (
	"runtime"

	"github.com/dgravesa/go-parallel/parallel"
)

// ParallelFor executes fn for every index in [0, n). Below minChunk items per
// worker the loop runs on the calling goroutine.
func ParallelFor(n, minChunk, workers int, fn func(i int)) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if minChunk < 1 {
		minChunk = 1
	}
	if n/minChunk < workers {
		workers = n / minChunk
	}
	if workers <= 1 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}

	parallel.WithNumGoroutines(workers).For(n, func(i, _ int) {
		fn(i)
	})
}
