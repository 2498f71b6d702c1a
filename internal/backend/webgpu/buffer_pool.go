//go:build windows

package webgpu

import (
	"sync"

	"github.com/go-webgpu/webgpu/wgpu"
)

// BufferSize represents different buffer size categories for pooling.
type BufferSize int

const (
	// SmallBuffer for reads < 4KB.
	SmallBuffer BufferSize = iota
	// MediumBuffer for reads 4KB-1MB.
	MediumBuffer
	// LargeBuffer for reads > 1MB.
	LargeBuffer
)

const (
	smallThreshold  = 4 * 1024    // 4KB
	mediumThreshold = 1024 * 1024 // 1MB
	maxPoolSize     = 16          // Max buffers per category
)

type pooledBuffer struct {
	buffer *wgpu.Buffer
	size   uint64
	usage  wgpu.BufferUsage
}

// BufferPool reuses staging buffers across reads.
// Buffers are categorized by size and usage flags.
type BufferPool struct {
	device *wgpu.Device

	pools [3][]*pooledBuffer
	mu    sync.Mutex

	totalAllocated uint64
	totalReleased  uint64
	poolHits       uint64
	poolMisses     uint64
}

// NewBufferPool creates a new buffer pool for the given device.
func NewBufferPool(device *wgpu.Device) *BufferPool {
	return &BufferPool{device: device}
}

// Acquire gets a buffer of exactly size bytes with usage, reusing a pooled
// one when possible.
func (p *BufferPool) Acquire(size uint64, usage wgpu.BufferUsage) *wgpu.Buffer {
	p.mu.Lock()
	defer p.mu.Unlock()

	category := categorize(size)
	pool := p.pools[category]
	for i, pb := range pool {
		if pb.size == size && pb.usage == usage {
			p.pools[category] = append(pool[:i], pool[i+1:]...)
			p.poolHits++
			return pb.buffer
		}
	}

	p.poolMisses++
	p.totalAllocated++
	return p.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: usage,
		Size:  size,
	})
}

// Release returns a buffer to the pool. If the pool is full, the buffer is
// released immediately.
func (p *BufferPool) Release(buffer *wgpu.Buffer, size uint64, usage wgpu.BufferUsage) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.totalReleased++
	category := categorize(size)
	if len(p.pools[category]) >= maxPoolSize {
		buffer.Release()
		return
	}
	p.pools[category] = append(p.pools[category], &pooledBuffer{buffer: buffer, size: size, usage: usage})
}

// Clear releases all pooled buffers.
func (p *BufferPool) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, pool := range p.pools {
		for _, pb := range pool {
			pb.buffer.Release()
		}
		p.pools[i] = nil
	}
}

// Stats returns statistics about buffer pool usage.
func (p *BufferPool) Stats() PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()

	stats := PoolStats{
		Allocated: p.totalAllocated,
		Released:  p.totalReleased,
		Hits:      p.poolHits,
		Misses:    p.poolMisses,
	}
	for _, pool := range p.pools {
		stats.Pooled += len(pool)
	}
	return stats
}

func categorize(size uint64) BufferSize {
	if size < smallThreshold {
		return SmallBuffer
	}
	if size < mediumThreshold {
		return MediumBuffer
	}
	return LargeBuffer
}
