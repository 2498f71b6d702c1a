package cpu

import (
	"fmt"
	"sync"

	"github.com/born-ml/router/internal/tensor"
)

// Handle is the opaque handle of a host tensor. It owns its storage until it
// is passed to a backend operation, after which it is spent.
type Handle struct {
	mu  sync.Mutex
	raw *tensor.RawTensor
}

func newHandle(raw *tensor.RawTensor) *Handle {
	return &Handle{raw: raw}
}

// take moves the storage out of the handle.
func (h *Handle) take() *tensor.RawTensor {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.raw == nil {
		panic("cpu: use of released handle")
	}
	raw := h.raw
	h.raw = nil
	return raw
}

func (h *Handle) peek() (*tensor.RawTensor, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.raw, h.raw != nil
}

// Live reports whether the handle still owns storage.
func (h *Handle) Live() bool {
	_, ok := h.peek()
	return ok
}

// DType returns the stored data type. It panics on a spent handle.
func (h *Handle) DType() tensor.DataType {
	raw, ok := h.peek()
	if !ok {
		panic("cpu: use of released handle")
	}
	return raw.DType()
}

// Device returns the device the storage lives on. It panics on a spent handle.
func (h *Handle) Device() Device {
	raw, ok := h.peek()
	if !ok {
		panic("cpu: use of released handle")
	}
	return Device{Index: raw.Device().Index}
}

// Tensor is the materialized host tensor primitive.
type Tensor struct {
	raw   *tensor.RawTensor
	shape tensor.Shape
}

// Shape returns the tensor shape.
func (t *Tensor) Shape() tensor.Shape {
	return t.shape
}

// DType returns the stored data type.
func (t *Tensor) DType() tensor.DataType {
	return t.storage().DType()
}

// Device returns the device the storage lives on.
func (t *Tensor) Device() Device {
	return Device{Index: t.storage().Device().Index}
}

func (t *Tensor) storage() *tensor.RawTensor {
	if t.raw == nil {
		panic("cpu: use of consumed tensor")
	}
	return t.raw
}

func (t *Tensor) take() *tensor.RawTensor {
	raw := t.storage()
	t.raw = nil
	return raw
}

// FromData stores a copy of data on device and returns its handle.
func (b *CPUBackend) FromData(data tensor.Data, device Device) (h *Handle, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	return newHandle(b.alloc("from data", data, device)), nil
}

// FromFloat32s builds a float32 tensor handle from values.
func (b *CPUBackend) FromFloat32s(values []float32, shape tensor.Shape, device Device) (*Handle, error) {
	data, err := tensor.FromFloat32s(values, shape)
	if err != nil {
		return nil, err
	}
	return b.FromData(data, device)
}

// FromFloat64s builds a float64 tensor handle from values.
func (b *CPUBackend) FromFloat64s(values []float64, shape tensor.Shape, device Device) (*Handle, error) {
	data, err := tensor.FromFloat64s(values, shape)
	if err != nil {
		return nil, err
	}
	return b.FromData(data, device)
}

// FromInt32s builds an int32 tensor handle from values.
func (b *CPUBackend) FromInt32s(values []int32, shape tensor.Shape, device Device) (*Handle, error) {
	data, err := tensor.FromInt32s(values, shape)
	if err != nil {
		return nil, err
	}
	return b.FromData(data, device)
}

// FromInt64s builds an int64 tensor handle from values.
func (b *CPUBackend) FromInt64s(values []int64, shape tensor.Shape, device Device) (*Handle, error) {
	data, err := tensor.FromInt64s(values, shape)
	if err != nil {
		return nil, err
	}
	return b.FromData(data, device)
}

// FromBools builds a bool tensor handle from values.
func (b *CPUBackend) FromBools(values []bool, shape tensor.Shape, device Device) (*Handle, error) {
	data, err := tensor.FromBools(values, shape)
	if err != nil {
		return nil, err
	}
	return b.FromData(data, device)
}

// Read copies the contents of h without consuming it.
func (b *CPUBackend) Read(h *Handle) (tensor.Data, error) {
	raw, ok := h.peek()
	if !ok {
		return tensor.Data{}, fmt.Errorf("cpu: read: use of released handle")
	}
	return raw.ToData(), nil
}

// ReleaseHandle frees the storage owned by h.
func (b *CPUBackend) ReleaseHandle(h *Handle) {
	b.free(h.take())
}
