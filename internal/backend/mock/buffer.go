package mock

import (
	"fmt"
	"sync"

	"github.com/born-ml/router/internal/tensor"
)

// buffer is device storage. Its contents are written by a queued command;
// ready is closed once they are valid.
type buffer struct {
	dtype  tensor.DataType
	shape  tensor.Shape
	device Device
	bytes  []byte
	ready  chan struct{}
}

// nativeDType is the dtype a value of dtype is stored as.
func nativeDType(dtype tensor.DataType) tensor.DataType {
	if dtype == tensor.Float64 {
		return tensor.Float32
	}
	return dtype
}

// upload allocates a buffer on d and queues the copy of data into it.
func (b *Backend) upload(op string, data tensor.Data, d Device) *buffer {
	b.checkDevice(op, d)
	data = data.Convert(nativeDType(data.DType))
	staged := append([]byte(nil), data.Bytes...)

	buf := b.allocate(data.DType, data.Shape, d)
	b.submit(op, d, func() {
		b.delay()
		copy(buf.bytes, staged)
		close(buf.ready)
	})
	return buf
}

func (b *Backend) allocate(dtype tensor.DataType, shape tensor.Shape, d Device) *buffer {
	size := shape.NumElements() * dtype.Size()
	b.memory.Alloc(uint64(size)) //nolint:gosec // G115: sizes are non-negative
	return &buffer{
		dtype:  dtype,
		shape:  shape.Clone(),
		device: d,
		bytes:  make([]byte, size),
		ready:  make(chan struct{}),
	}
}

// free drops the buffer contents.
func (b *Backend) free(buf *buffer) {
	b.memory.Free(uint64(len(buf.bytes)))
	buf.bytes = nil
}

// copyTo queues a move of src onto d. src is freed once copied.
func (b *Backend) copyTo(op string, src *buffer, d Device) *buffer {
	b.checkDevice(op, d)
	dst := b.allocate(src.dtype, src.shape, d)
	b.submit(op, src.device, func() {
		<-src.ready
		b.delay()
		copy(dst.bytes, src.bytes)
		b.free(src)
		close(dst.ready)
	})
	return dst
}

// read queues a read of buf. With consume set the buffer is freed after the
// copy, before the Pending completes.
func (b *Backend) read(op string, buf *buffer, shape tensor.Shape, consume bool) *tensor.Pending {
	p := tensor.NewPending()
	b.submit(op, buf.device, func() {
		<-buf.ready
		b.delay()
		bytes := make([]byte, len(buf.bytes))
		copy(bytes, buf.bytes)
		if consume {
			b.free(buf)
		}
		p.Complete(tensor.NewData(buf.dtype, shape, bytes))
	})
	return p
}

// Handle is the opaque handle of a device buffer. It is spent once passed
// to a backend operation.
type Handle struct {
	mu  sync.Mutex
	buf *buffer
}

func (h *Handle) take() *buffer {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.buf == nil {
		panic("mock: use of released handle")
	}
	buf := h.buf
	h.buf = nil
	return buf
}

func (h *Handle) peek() (*buffer, bool) {
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
		panic("mock: use of released handle")
	}
	return buf.dtype
}

// Device returns the device holding the buffer. It panics on a spent handle.
func (h *Handle) Device() Device {
	buf, ok := h.peek()
	if !ok {
		panic("mock: use of released handle")
	}
	return buf.device
}

// Tensor is the materialized device tensor primitive.
type Tensor struct {
	buf   *buffer
	shape tensor.Shape
}

// Shape returns the tensor shape.
func (t *Tensor) Shape() tensor.Shape {
	return t.shape
}

// Device returns the device holding the tensor.
func (t *Tensor) Device() Device {
	return t.storage().device
}

// DType returns the stored data type.
func (t *Tensor) DType() tensor.DataType {
	return t.storage().dtype
}

func (t *Tensor) storage() *buffer {
	if t.buf == nil {
		panic("mock: use of consumed tensor")
	}
	return t.buf
}

func (t *Tensor) take() *buffer {
	buf := t.storage()
	t.buf = nil
	return buf
}

// FromData uploads data to device and returns its handle.
// Float64 data is stored as float32.
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

// Read waits for the contents of h without consuming it.
func (b *Backend) Read(h *Handle) (tensor.Data, error) {
	buf, ok := h.peek()
	if !ok {
		return tensor.Data{}, fmt.Errorf("mock: read: use of released handle")
	}
	return tensor.ReadSync(b.read("read", buf, buf.shape, false))
}

// ReleaseHandle queues the release of the buffer owned by h.
func (b *Backend) ReleaseHandle(h *Handle) {
	b.discard("release", h.take())
}

// discard queues the release of buf behind its pending upload or copy.
func (b *Backend) discard(op string, buf *buffer) {
	b.submit(op, buf.device, func() {
		<-buf.ready
		b.free(buf)
	})
}
