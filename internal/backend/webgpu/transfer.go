//go:build windows

package webgpu

import (
	"fmt"
	"sync"

	"github.com/born-ml/router/internal/bridge"
	"github.com/born-ml/router/internal/tensor"
	"github.com/go-webgpu/webgpu/wgpu"
)

var _ bridge.Backend[*Handle, *Tensor, Device] = (*Backend)(nil)

// gpuBuffer is a storage buffer holding one tensor. size is the padded
// buffer size, length the number of meaningful bytes.
type gpuBuffer struct {
	buffer *wgpu.Buffer
	size   uint64
	length int
	dtype  tensor.DataType
	shape  tensor.Shape
}

// Handle is the opaque handle of a GPU tensor. It is spent once passed to a
// backend operation.
type Handle struct {
	mu  sync.Mutex
	buf *gpuBuffer
}

func (h *Handle) take() *gpuBuffer {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.buf == nil {
		panic("webgpu: use of released handle")
	}
	buf := h.buf
	h.buf = nil
	return buf
}

func (h *Handle) peek() (*gpuBuffer, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.buf, h.buf != nil
}

// Live reports whether the handle still owns a buffer.
func (h *Handle) Live() bool {
	_, ok := h.peek()
	return ok
}

// DType returns the stored data type. It panics on a spent handle.
func (h *Handle) DType() tensor.DataType {
	buf, ok := h.peek()
	if !ok {
		panic("webgpu: use of released handle")
	}
	return buf.dtype
}

// Device returns the adapter holding the buffer.
func (h *Handle) Device() Device {
	return Device{}
}

// Tensor is the materialized GPU tensor primitive.
type Tensor struct {
	buf   *gpuBuffer
	shape tensor.Shape
}

// Shape returns the tensor shape.
func (t *Tensor) Shape() tensor.Shape {
	return t.shape
}

func (t *Tensor) take() *gpuBuffer {
	if t.buf == nil {
		panic("webgpu: use of consumed tensor")
	}
	buf := t.buf
	t.buf = nil
	return buf
}

func (b *Backend) upload(op string, data tensor.Data, d Device) *gpuBuffer {
	b.checkDevice(op, d)
	data = data.Convert(nativeDType(data.DType))
	buffer, size := b.createBuffer(data.Bytes)
	return &gpuBuffer{
		buffer: buffer,
		size:   size,
		length: len(data.Bytes),
		dtype:  data.DType,
		shape:  data.Shape.Clone(),
	}
}

// read maps the buffer on a separate goroutine. With consume set the GPU
// buffer is released once copied.
func (b *Backend) read(buf *gpuBuffer, shape tensor.Shape, consume bool) *tensor.Pending {
	p := tensor.NewPending()
	go func() {
		bytes, err := b.readBuffer(buf.buffer, buf.size, buf.length)
		if consume {
			b.releaseBuffer(buf.buffer, buf.size)
		}
		if err != nil {
			p.Complete(tensor.Data{}, err)
			return
		}
		p.Complete(tensor.NewData(buf.dtype, shape, bytes))
	}()
	return p
}

func (b *Backend) materialize(op string, kind tensor.Kind, h bridge.TensorHandle[*Handle]) *Tensor {
	buf := h.Handle.take()
	if buf.dtype.Kind() != kind {
		b.releaseBuffer(buf.buffer, buf.size)
		panic(fmt.Sprintf("webgpu: %s: handle holds %s data, want %s", op, buf.dtype, kind))
	}
	if buf.shape.NumElements() != h.Shape.NumElements() {
		b.releaseBuffer(buf.buffer, buf.size)
		panic(fmt.Sprintf("webgpu: %s: shape %v does not match storage %v", op, h.Shape, buf.shape))
	}
	return &Tensor{buf: buf, shape: h.Shape.Clone()}
}

func (b *Backend) toDevice(t *Tensor, device Device) *Tensor {
	b.checkDevice("to device", device)
	return t
}

func (b *Backend) fromData(kind tensor.Kind, data tensor.Data, device Device) *Tensor {
	data.AssertKind(kind)
	buf := b.upload("from data", data, device)
	return &Tensor{buf: buf, shape: buf.shape}
}

// FromData uploads data and returns its handle. Float64 data is stored as
// float32.
func (b *Backend) FromData(data tensor.Data, device Device) (h *Handle, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	if _, err := tensor.NewData(data.DType, data.Shape, data.Bytes); err != nil {
		return nil, err
	}
	return &Handle{buf: b.upload("from data", data, device)}, nil
}

// Read copies the contents of h to host memory without consuming it.
func (b *Backend) Read(h *Handle) (tensor.Data, error) {
	buf, ok := h.peek()
	if !ok {
		return tensor.Data{}, fmt.Errorf("webgpu: read: use of released handle")
	}
	return tensor.ReadSync(b.read(buf, buf.shape, false))
}

// ReleaseHandle frees the GPU buffer owned by h.
func (b *Backend) ReleaseHandle(h *Handle) {
	buf := h.take()
	b.releaseBuffer(buf.buffer, buf.size)
}

// FloatTensor materializes a float tensor from its handle.
func (b *Backend) FloatTensor(h bridge.TensorHandle[*Handle]) *Tensor {
	return b.materialize("float tensor", tensor.KindFloat, h)
}

// FloatToDevice returns t; there is a single adapter.
func (b *Backend) FloatToDevice(t *Tensor, device Device) *Tensor {
	return b.toDevice(t, device)
}

// FloatTensorHandle returns the handle of a float tensor.
func (b *Backend) FloatTensorHandle(t *Tensor) *Handle {
	return &Handle{buf: t.take()}
}

// FloatIntoData maps the tensor for reading. The data is float32.
func (b *Backend) FloatIntoData(t *Tensor) *tensor.Pending {
	return b.read(t.take(), t.shape, true)
}

// FloatFromData uploads float data, narrowing float64 to float32.
func (b *Backend) FloatFromData(data tensor.Data, device Device) *Tensor {
	return b.fromData(tensor.KindFloat, data, device)
}

// IntTensor materializes an int tensor from its handle.
func (b *Backend) IntTensor(h bridge.TensorHandle[*Handle]) *Tensor {
	return b.materialize("int tensor", tensor.KindInt, h)
}

// IntToDevice returns t; there is a single adapter.
func (b *Backend) IntToDevice(t *Tensor, device Device) *Tensor {
	return b.toDevice(t, device)
}

// IntTensorHandle returns the handle of an int tensor.
func (b *Backend) IntTensorHandle(t *Tensor) *Handle {
	return &Handle{buf: t.take()}
}

// IntIntoData maps the tensor for reading.
func (b *Backend) IntIntoData(t *Tensor) *tensor.Pending {
	return b.read(t.take(), t.shape, true)
}

// IntFromData uploads int data.
func (b *Backend) IntFromData(data tensor.Data, device Device) *Tensor {
	return b.fromData(tensor.KindInt, data, device)
}

// BoolTensor materializes a bool tensor from its handle.
func (b *Backend) BoolTensor(h bridge.TensorHandle[*Handle]) *Tensor {
	return b.materialize("bool tensor", tensor.KindBool, h)
}

// BoolToDevice returns t; there is a single adapter.
func (b *Backend) BoolToDevice(t *Tensor, device Device) *Tensor {
	return b.toDevice(t, device)
}

// BoolTensorHandle returns the handle of a bool tensor.
func (b *Backend) BoolTensorHandle(t *Tensor) *Handle {
	return &Handle{buf: t.take()}
}

// BoolIntoData maps the tensor for reading.
func (b *Backend) BoolIntoData(t *Tensor) *tensor.Pending {
	return b.read(t.take(), t.shape, true)
}

// BoolFromData uploads bool data.
func (b *Backend) BoolFromData(data tensor.Data, device Device) *Tensor {
	return b.fromData(tensor.KindBool, data, device)
}
