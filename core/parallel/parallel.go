// Package parallel provides the worker helpers used to run independent
// per-fold work concurrently. Fold fits have no ordering requirement between
// them; the only synchronization point is that all folds finish before
// aggregation.
package parallel

import (
	"runtime"
	"sync"
)

// Parallelize divides items across the available CPU cores and executes fn
// for each contiguous range [start, end).
func Parallelize(items int, fn func(start, end int)) {
	if items == 0 {
		return
	}

	numWorkers := runtime.NumCPU()
	if numWorkers > items {
		numWorkers = items
	}

	// Ceiling division so every item lands in exactly one chunk.
	chunkSize := (items + numWorkers - 1) / numWorkers

	var wg sync.WaitGroup

	for i := 0; i < numWorkers; i++ {
		start := i * chunkSize
		end := start + chunkSize
		if end > items {
			end = items
		}

		if start >= end {
			continue
		}

		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}

	wg.Wait()
}

// ParallelizeWithThreshold parallelizes only when items exceeds threshold;
// below it the work runs sequentially to avoid goroutine overhead.
func ParallelizeWithThreshold(items int, threshold int, fn func(start, end int)) {
	if items <= threshold {
		fn(0, items)
		return
	}

	Parallelize(items, fn)
}

// Map runs fn once per index concurrently and returns the error from the
// lowest index that failed, or nil. Every index runs regardless of other
// indices failing; partial results are the caller's to discard.
func Map(items int, fn func(i int) error) error {
	if items == 0 {
		return nil
	}

	errs := make([]error, items)
	Parallelize(items, func(start, end int) {
		for i := start; i < end; i++ {
			errs[i] = fn(i)
		}
	})

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
