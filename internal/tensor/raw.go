package tensor

import (
	"fmt"
	"sync"
	"sync/atomic"
	"unsafe"
)

// tensorBuffer is a reference-counted byte buffer shared by RawTensor clones.
type tensorBuffer struct {
	data     []byte
	refCount atomic.Int32
	mu       sync.Mutex // For safe deallocation
}

// newTensorBuffer creates a new reference-counted buffer with refCount = 1.
func newTensorBuffer(size int) *tensorBuffer {
	buf := &tensorBuffer{
		data: make([]byte, size),
	}
	buf.refCount.Store(1)
	return buf
}

// addRef increments the reference count (for Clone operations).
func (tb *tensorBuffer) addRef() {
	tb.refCount.Add(1)
}

// release decrements the reference count and deallocates if it reaches 0.
// Releasing a buffer that is already freed panics.
func (tb *tensorBuffer) release() {
	n := tb.refCount.Add(-1)
	switch {
	case n == 0:
		tb.mu.Lock()
		defer tb.mu.Unlock()
		tb.data = nil
	case n < 0:
		panic("tensor: buffer released twice")
	}
}

// isUnique returns true if this buffer has only one reference.
func (tb *tensorBuffer) isUnique() bool {
	return tb.refCount.Load() == 1
}

func (tb *tensorBuffer) isFreed() bool {
	return tb.refCount.Load() <= 0
}

// RawTensor is the host-memory tensor representation used by host-resident
// backends. It uses reference-counted shared buffers.
type RawTensor struct {
	buffer *tensorBuffer // Shared reference-counted buffer
	shape  Shape         // Tensor dimensions
	stride []int         // Memory strides (row-major)
	dtype  DataType      // Runtime type information
	device DeviceID      // Device the storage belongs to
}

// NewRaw creates a new zero-filled RawTensor with the given shape and type.
func NewRaw(shape Shape, dtype DataType, device DeviceID) (*RawTensor, error) {
	if err := validateBytes(shape, dtype); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}

	byteSize := shape.NumElements() * dtype.Size()

	return &RawTensor{
		buffer: newTensorBuffer(byteSize),
		shape:  shape.Clone(),
		stride: shape.ComputeStrides(),
		dtype:  dtype,
		device: device,
	}, nil
}

// NewRawFromData creates a RawTensor holding a copy of data on device.
func NewRawFromData(data Data, device DeviceID) (*RawTensor, error) {
	r, err := NewRaw(data.Shape, data.DType, device)
	if err != nil {
		return nil, err
	}
	if len(data.Bytes) != len(r.buffer.data) {
		r.Release()
		return nil, fmt.Errorf("%w: %s%v needs %d bytes, got %d",
			ErrShapeMismatch, data.DType, data.Shape, len(r.buffer.data), len(data.Bytes))
	}
	copy(r.buffer.data, data.Bytes)
	return r, nil
}

// Shape returns the tensor's shape.
func (r *RawTensor) Shape() Shape {
	return r.shape
}

// Strides returns the tensor's memory strides.
func (r *RawTensor) Strides() []int {
	return r.stride
}

// DType returns the tensor's data type.
func (r *RawTensor) DType() DataType {
	return r.dtype
}

// Device returns the device the storage belongs to.
func (r *RawTensor) Device() DeviceID {
	return r.device
}

// NumElements returns the total number of elements.
func (r *RawTensor) NumElements() int {
	return r.shape.NumElements()
}

// ByteSize returns the total memory size in bytes.
func (r *RawTensor) ByteSize() int {
	return r.NumElements() * r.dtype.Size()
}

// Data returns the raw byte slice.
// WARNING: Direct access to underlying memory. Use with caution.
func (r *RawTensor) Data() []byte {
	r.mustBeLive()
	return r.buffer.data
}

// ToData copies the contents into a new Data value.
func (r *RawTensor) ToData() Data {
	r.mustBeLive()
	bytes := make([]byte, len(r.buffer.data))
	copy(bytes, r.buffer.data)
	return Data{DType: r.dtype, Shape: r.shape.Clone(), Bytes: bytes}
}

// AsFloat32 interprets the data as []float32.
// Panics if the tensor's dtype is not Float32.
func (r *RawTensor) AsFloat32() []float32 {
	r.mustBe(Float32)
	return viewAs[float32](r)
}

// AsFloat64 interprets the data as []float64.
// Panics if the tensor's dtype is not Float64.
func (r *RawTensor) AsFloat64() []float64 {
	r.mustBe(Float64)
	return viewAs[float64](r)
}

// AsInt32 interprets the data as []int32.
// Panics if the tensor's dtype is not Int32.
func (r *RawTensor) AsInt32() []int32 {
	r.mustBe(Int32)
	return viewAs[int32](r)
}

// AsInt64 interprets the data as []int64.
// Panics if the tensor's dtype is not Int64.
func (r *RawTensor) AsInt64() []int64 {
	r.mustBe(Int64)
	return viewAs[int64](r)
}

// AsUint8 interprets the data as []uint8.
// Panics if the tensor's dtype is not Uint8.
func (r *RawTensor) AsUint8() []uint8 {
	r.mustBe(Uint8)
	return r.buffer.data
}

// AsBool interprets the data as []bool.
// Panics if the tensor's dtype is not Bool.
func (r *RawTensor) AsBool() []bool {
	r.mustBe(Bool)
	return viewAs[bool](r)
}

// viewAs returns a zero-copy typed view of the buffer.
func viewAs[T any](r *RawTensor) []T {
	n := r.NumElements()
	if n == 0 {
		return []T{}
	}
	data := r.buffer.data
	//nolint:gosec // unsafe.Slice for zero-copy performance, bounds checked by NumElements()
	return unsafe.Slice((*T)(unsafe.Pointer(&data[0])), n)
}

// Clone creates a shallow copy of the RawTensor (shares buffer with reference counting).
func (r *RawTensor) Clone() *RawTensor {
	r.mustBeLive()
	r.buffer.addRef()
	return &RawTensor{
		buffer: r.buffer,
		shape:  r.shape.Clone(),
		stride: append([]int(nil), r.stride...),
		dtype:  r.dtype,
		device: r.device,
	}
}

// Release decrements the reference count and deallocates if it reaches 0.
// Releasing a tensor whose buffer is already freed panics.
func (r *RawTensor) Release() {
	r.buffer.release()
}

// IsReleased reports whether the underlying buffer has been freed.
func (r *RawTensor) IsReleased() bool {
	return r.buffer.isFreed()
}

// IsUnique returns true if this tensor is the only reference to the buffer.
func (r *RawTensor) IsUnique() bool {
	return r.buffer.isUnique()
}

func (r *RawTensor) mustBe(dtype DataType) {
	if r.dtype != dtype {
		panic(fmt.Sprintf("tensor dtype is %s, not %s", r.dtype, dtype))
	}
	r.mustBeLive()
}

func (r *RawTensor) mustBeLive() {
	if r.buffer.isFreed() {
		panic("tensor: use of released buffer")
	}
}
