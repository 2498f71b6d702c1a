// Package stats tracks buffer allocations for backend memory reports.
package stats

import "sync"

// MemoryStats represents backend memory usage statistics.
type MemoryStats struct {
	// Total bytes allocated since backend creation
	TotalAllocatedBytes uint64 `json:"total_allocated_bytes"`
	// Bytes held by live buffers
	LiveBytes uint64 `json:"live_bytes"`
	// Peak live bytes
	PeakMemoryBytes uint64 `json:"peak_memory_bytes"`
	// Number of currently active buffers
	ActiveBuffers int64 `json:"active_buffers"`
	// Buffers freed since backend creation
	ReleasedBuffers uint64 `json:"released_buffers"`
}

// Tracker records allocations and releases. The zero value is ready to use.
type Tracker struct {
	mu    sync.RWMutex
	stats MemoryStats
}

// Alloc records a buffer allocation of size bytes.
func (t *Tracker) Alloc(size uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stats.TotalAllocatedBytes += size
	t.stats.LiveBytes += size
	t.stats.ActiveBuffers++
	if t.stats.LiveBytes > t.stats.PeakMemoryBytes {
		t.stats.PeakMemoryBytes = t.stats.LiveBytes
	}
}

// Free records the release of a buffer of size bytes.
func (t *Tracker) Free(size uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stats.ActiveBuffers == 0 {
		panic("stats: free without matching alloc")
	}
	t.stats.LiveBytes -= size
	t.stats.ActiveBuffers--
	t.stats.ReleasedBuffers++
}

// Snapshot returns the current statistics.
func (t *Tracker) Snapshot() MemoryStats {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.stats
}
