// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ktx2

package ktx2

import (
	"runtime"
	"sync"
)

// normalizeWorkers maps values below 1 to one worker per CPU.
func normalizeWorkers(n int) int {
	if n < 1 {
		return runtime.NumCPU()
	}

	return n
}

// forEach runs fn for every index in [0, n) on at most workers goroutines.
// Results are written by fn into index-addressed slots. The error of the
// lowest failing index is returned.
func forEach(n, workers int, fn func(i int) error) error {
	if n == 0 {
		return nil
	}
	workers = min(normalizeWorkers(workers), n)
	if workers == 1 {
		for i := 0; i < n; i++ {
			if err := fn(i); err != nil {
				return err
			}
		}
		return nil
	}

	errs := make([]error, n)
	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			errs[idx] = fn(idx)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}

	return nil
}
