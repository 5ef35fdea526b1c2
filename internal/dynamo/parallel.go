package dynamo

import (
	"runtime"
	"sync"
)

// Workers resolves a configured worker count; zero or negative means one
// worker per CPU.
func Workers(n int) int {
	if n <= 0 {
		return runtime.NumCPU()
	}
	return n
}

// Partition splits [0, n) into at most workers contiguous chunks of
// near-equal size. Empty input yields no chunks.
func Partition(n, workers int) [][2]int {
	if n <= 0 {
		return nil
	}
	if workers < 1 {
		workers = 1
	}
	if workers > n {
		workers = n
	}

	chunkSize := (n + workers - 1) / workers
	chunks := make([][2]int, 0, workers)
	for start := 0; start < n; start += chunkSize {
		end := start + chunkSize
		if end > n {
			end = n
		}
		chunks = append(chunks, [2]int{start, end})
	}
	return chunks
}

// ParallelFor executes a function in parallel over a range [0, n)
func ParallelFor(n, workers, minChunk int, fn func(start, end int)) {
	if n <= minChunk || workers <= 1 {
		fn(0, n)
		return
	}

	if n/minChunk < workers {
		workers = n / minChunk
	}

	var wg sync.WaitGroup
	for _, c := range Partition(n, workers) {
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(c[0], c[1])
	}

	wg.Wait()
}
