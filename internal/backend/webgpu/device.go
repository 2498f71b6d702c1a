// Package webgpu implements the WebGPU backend: tensors live in GPU storage
// buffers and reads go through a mapped staging buffer.
// Uses go-webgpu (github.com/go-webgpu/webgpu) for zero-CGO WebGPU bindings.
package webgpu

import (
	"errors"
	"fmt"

	"github.com/born-ml/router/internal/tensor"
)

// ErrUnavailable is returned by New when no WebGPU adapter can be used.
var ErrUnavailable = errors.New("webgpu backend is not available in this build")

// Device selects a GPU adapter. Only the default adapter (index 0) exists.
type Device struct {
	Index int
}

// ID returns the device identifier.
func (d Device) ID() tensor.DeviceID {
	return tensor.DeviceID{Kind: tensor.WebGPU, Index: d.Index}
}

// String returns "webgpu:<index>".
func (d Device) String() string {
	return d.ID().String()
}

// PoolStats reports how the staging buffers used for reads are reused.
type PoolStats struct {
	Allocated uint64 `json:"allocated"`
	Released  uint64 `json:"released"`
	Hits      uint64 `json:"hits"`
	Misses    uint64 `json:"misses"`
	Pooled    int    `json:"pooled"`
}

// String formats the pool counters for device listings.
func (s PoolStats) String() string {
	return fmt.Sprintf("%d pooled, %d hits, %d misses, %d allocated, %d released",
		s.Pooled, s.Hits, s.Misses, s.Allocated, s.Released)
}

// nativeDType is the dtype a value of dtype is stored as on the GPU.
// WGSL has no 64-bit floats.
func nativeDType(dtype tensor.DataType) tensor.DataType {
	if dtype == tensor.Float64 {
		return tensor.Float32
	}
	return dtype
}

// bufferSize rounds n up to the 4-byte copy alignment. Empty tensors still
// get a minimal buffer.
func bufferSize(n int) uint64 {
	size := uint64(n) //nolint:gosec // G115: sizes are non-negative
	if size == 0 {
		return 4
	}
	return (size + 3) &^ 3
}
