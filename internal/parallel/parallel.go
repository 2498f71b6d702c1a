// Package parallel splits bulk work across goroutines.
package parallel

import (
	"runtime"
	"sync"
)

// Config controls parallel execution behavior.
type Config struct {
	Enabled      bool // Whether parallel execution is enabled.
	NumWorkers   int  // Number of worker goroutines to use.
	MinChunkSize int  // Minimum items per goroutine.
}

// DefaultConfig returns defaults based on CPU count, sized for byte copies.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: 256 << 10,
	}
}

// Sequential returns a Config that never spawns goroutines.
func Sequential() Config {
	return Config{}
}

// Range executes f(start, end) over disjoint chunks covering [0, n).
// Falls back to a single call if parallelism is disabled or n is too small.
func Range(n int, f func(start, end int), cfg Config) {
	if n <= 0 {
		return
	}
	if !cfg.Enabled || cfg.NumWorkers < 2 || n < 2*cfg.MinChunkSize {
		f(0, n)
		return
	}

	var wg sync.WaitGroup
	chunkSize := max((n+cfg.NumWorkers-1)/cfg.NumWorkers, cfg.MinChunkSize)

	for start := 0; start < n; start += chunkSize {
		end := min(start+chunkSize, n)
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			f(s, e)
		}(start, end)
	}
	wg.Wait()
}

// Copy copies src into dst in parallel chunks and returns the number of
// bytes copied, min(len(dst), len(src)).
func Copy(dst, src []byte, cfg Config) int {
	n := min(len(dst), len(src))
	Range(n, func(s, e int) {
		copy(dst[s:e], src[s:e])
	}, cfg)
	return n
}
