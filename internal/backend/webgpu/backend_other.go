//go:build !windows

package webgpu

import (
	"github.com/born-ml/router/internal/backend/stats"
	"github.com/born-ml/router/internal/bridge"
	"github.com/born-ml/router/internal/tensor"
)

var _ bridge.Backend[*Handle, *Tensor, Device] = (*Backend)(nil)

const unavailable = "webgpu: backend not available in this build"

// Backend is a placeholder on platforms without WebGPU support. New always
// fails, so none of its methods can be reached through a valid value.
type Backend struct{}

// Handle is the opaque handle of a GPU tensor.
type Handle struct{}

// Tensor is the materialized GPU tensor primitive.
type Tensor struct{}

// New reports ErrUnavailable.
func New() (*Backend, error) {
	return nil, ErrUnavailable
}

// IsAvailable reports false.
func IsAvailable() bool {
	return false
}

// Release is a no-op.
func (b *Backend) Release() {}

// Name returns the backend name.
func (b *Backend) Name() string {
	return "webgpu"
}

// Devices returns no devices.
func (b *Backend) Devices() []Device {
	return nil
}

// MemoryStats returns empty statistics.
func (b *Backend) MemoryStats() stats.MemoryStats {
	return stats.MemoryStats{}
}

// PoolStats returns empty statistics.
func (b *Backend) PoolStats() PoolStats {
	return PoolStats{}
}

// FromData reports ErrUnavailable.
func (b *Backend) FromData(tensor.Data, Device) (*Handle, error) {
	return nil, ErrUnavailable
}

// Read reports ErrUnavailable.
func (b *Backend) Read(*Handle) (tensor.Data, error) {
	return tensor.Data{}, ErrUnavailable
}

// ReleaseHandle panics.
func (b *Backend) ReleaseHandle(*Handle) { panic(unavailable) }

// Live reports false.
func (h *Handle) Live() bool { return false }

// DType panics.
func (h *Handle) DType() tensor.DataType { panic(unavailable) }

// Device panics.
func (h *Handle) Device() Device { panic(unavailable) }

// FloatTensor panics.
func (b *Backend) FloatTensor(bridge.TensorHandle[*Handle]) *Tensor { panic(unavailable) }

// FloatToDevice panics.
func (b *Backend) FloatToDevice(*Tensor, Device) *Tensor { panic(unavailable) }

// FloatTensorHandle panics.
func (b *Backend) FloatTensorHandle(*Tensor) *Handle { panic(unavailable) }

// FloatIntoData panics.
func (b *Backend) FloatIntoData(*Tensor) *tensor.Pending { panic(unavailable) }

// FloatFromData panics.
func (b *Backend) FloatFromData(tensor.Data, Device) *Tensor { panic(unavailable) }

// IntTensor panics.
func (b *Backend) IntTensor(bridge.TensorHandle[*Handle]) *Tensor { panic(unavailable) }

// IntToDevice panics.
func (b *Backend) IntToDevice(*Tensor, Device) *Tensor { panic(unavailable) }

// IntTensorHandle panics.
func (b *Backend) IntTensorHandle(*Tensor) *Handle { panic(unavailable) }

// IntIntoData panics.
func (b *Backend) IntIntoData(*Tensor) *tensor.Pending { panic(unavailable) }

// IntFromData panics.
func (b *Backend) IntFromData(tensor.Data, Device) *Tensor { panic(unavailable) }

// BoolTensor panics.
func (b *Backend) BoolTensor(bridge.TensorHandle[*Handle]) *Tensor { panic(unavailable) }

// BoolToDevice panics.
func (b *Backend) BoolToDevice(*Tensor, Device) *Tensor { panic(unavailable) }

// BoolTensorHandle panics.
func (b *Backend) BoolTensorHandle(*Tensor) *Handle { panic(unavailable) }

// BoolIntoData panics.
func (b *Backend) BoolIntoData(*Tensor) *tensor.Pending { panic(unavailable) }

// BoolFromData panics.
func (b *Backend) BoolFromData(tensor.Data, Device) *Tensor { panic(unavailable) }
