//go:build windows

package webgpu

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/born-ml/router/internal/backend/stats"
	"github.com/go-webgpu/webgpu/wgpu"
)

// Backend keeps tensors in WebGPU storage buffers on the default adapter.
type Backend struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	// Staging buffers for reads
	staging *BufferPool

	// mu serializes queue submissions and buffer maps.
	mu sync.Mutex

	memory stats.Tracker
}

// New creates a new WebGPU backend.
// Returns an error if WebGPU is not available or initialization fails.
func New() (backend *Backend, err error) {
	// Recover from panic if wgpu_native library is not found.
	defer func() {
		if r := recover(); r != nil {
			backend = nil
			err = fmt.Errorf("%w: native library not available: %v", ErrUnavailable, r)
		}
	}()

	instance, err := wgpu.CreateInstance(nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		instance.Release()
		return nil, fmt.Errorf("%w: failed to request adapter: %w", ErrUnavailable, err)
	}

	device, err := adapter.RequestDevice(nil)
	if err != nil {
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("webgpu: failed to request device: %w", err)
	}

	queue := device.GetQueue()
	if queue == nil {
		device.Release()
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("webgpu: failed to get queue")
	}

	return &Backend{
		instance: instance,
		adapter:  adapter,
		device:   device,
		queue:    queue,
		staging:  NewBufferPool(device),
	}, nil
}

// IsAvailable checks if WebGPU is available on this system.
func IsAvailable() (available bool) {
	defer func() {
		if r := recover(); r != nil {
			available = false
		}
	}()

	instance, err := wgpu.CreateInstance(nil)
	if err != nil {
		return false
	}
	defer instance.Release()

	adapter, err := instance.RequestAdapter(nil)
	if err != nil {
		return false
	}
	adapter.Release()

	return true
}

// Release releases all WebGPU resources.
// Must be called when the backend is no longer needed.
func (b *Backend) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.staging != nil {
		b.staging.Clear()
		b.staging = nil
	}
	if b.queue != nil {
		b.queue.Release()
		b.queue = nil
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
}

// Name returns the backend name.
func (b *Backend) Name() string {
	return "webgpu"
}

// Devices returns the usable adapters.
func (b *Backend) Devices() []Device {
	return []Device{{Index: 0}}
}

// MemoryStats returns GPU buffer statistics for tensors owned by this backend.
func (b *Backend) MemoryStats() stats.MemoryStats {
	return b.memory.Snapshot()
}

// PoolStats returns staging buffer pool statistics. A released backend
// reports zero.
func (b *Backend) PoolStats() PoolStats {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.staging == nil {
		return PoolStats{}
	}
	return b.staging.Stats()
}

func (b *Backend) checkDevice(op string, d Device) {
	if d.Index != 0 {
		panic(fmt.Sprintf("webgpu: %s: device %s out of range (1 device)", op, d))
	}
}

// createBuffer uploads data into a new storage buffer.
func (b *Backend) createBuffer(data []byte) (*wgpu.Buffer, uint64) {
	size := bufferSize(len(data))

	b.mu.Lock()
	defer b.mu.Unlock()

	buffer := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage:            wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc | wgpu.BufferUsageCopyDst,
		Size:             size,
		MappedAtCreation: wgpu.True,
	})

	mappedPtr := buffer.GetMappedRange(0, size)
	//nolint:gosec // unsafe.Slice for zero-copy conversion from unsafe.Pointer
	mappedSlice := unsafe.Slice((*byte)(mappedPtr), size)
	copy(mappedSlice, data)
	buffer.Unmap()

	b.memory.Alloc(size)
	return buffer, size
}

func (b *Backend) releaseBuffer(buffer *wgpu.Buffer, size uint64) {
	buffer.Release()
	b.memory.Free(size)
}

// readBuffer copies the first n bytes of a GPU buffer to host memory through
// a pooled staging buffer.
func (b *Backend) readBuffer(src *wgpu.Buffer, size uint64, n int) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	usage := wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst
	staging := b.staging.Acquire(size, usage)
	defer b.staging.Release(staging, size, usage)

	encoder := b.device.CreateCommandEncoder(nil)
	encoder.CopyBufferToBuffer(src, 0, staging, 0, size)
	cmdBuffer := encoder.Finish(nil)
	b.queue.Submit(cmdBuffer)

	if err := staging.MapAsync(b.device, wgpu.MapModeRead, 0, size); err != nil {
		return nil, fmt.Errorf("webgpu: failed to map staging buffer: %w", err)
	}
	defer staging.Unmap()

	mappedPtr := staging.GetMappedRange(0, size)
	//nolint:gosec // unsafe.Slice for zero-copy conversion from unsafe.Pointer
	mappedSlice := unsafe.Slice((*byte)(mappedPtr), size)
	out := make([]byte, n)
	copy(out, mappedSlice[:n])
	return out, nil
}
