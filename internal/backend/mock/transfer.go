package mock

import (
	"fmt"

	"github.com/born-ml/router/internal/bridge"
	"github.com/born-ml/router/internal/tensor"
)

var _ bridge.Backend[*Handle, *Tensor, Device] = (*Backend)(nil)

func (b *Backend) materialize(op string, kind tensor.Kind, h bridge.TensorHandle[*Handle]) *Tensor {
	buf := h.Handle.take()
	if buf.dtype.Kind() != kind {
		b.discard(op, buf)
		panic(fmt.Sprintf("mock: %s: handle holds %s data, want %s", op, buf.dtype, kind))
	}
	if buf.shape.NumElements() != h.Shape.NumElements() {
		b.discard(op, buf)
		panic(fmt.Sprintf("mock: %s: shape %v does not match storage %v", op, h.Shape, buf.shape))
	}
	return &Tensor{buf: buf, shape: h.Shape.Clone()}
}

func (b *Backend) toDevice(t *Tensor, device Device) *Tensor {
	if t.Device() == device {
		return t
	}
	return &Tensor{buf: b.copyTo("to device", t.take(), device), shape: t.shape}
}

func (b *Backend) handle(t *Tensor) *Handle {
	return &Handle{buf: t.take()}
}

func (b *Backend) intoData(t *Tensor) *tensor.Pending {
	return b.read("into data", t.take(), t.shape, true)
}

func (b *Backend) fromData(kind tensor.Kind, data tensor.Data, device Device) *Tensor {
	data.AssertKind(kind)
	buf := b.upload("from data", data, device)
	return &Tensor{buf: buf, shape: buf.shape}
}

// FloatTensor materializes a float tensor from its handle.
func (b *Backend) FloatTensor(h bridge.TensorHandle[*Handle]) *Tensor {
	return b.materialize("float tensor", tensor.KindFloat, h)
}

// FloatToDevice queues a copy of a float tensor onto device.
func (b *Backend) FloatToDevice(t *Tensor, device Device) *Tensor {
	return b.toDevice(t, device)
}

// FloatTensorHandle returns the handle of a float tensor.
func (b *Backend) FloatTensorHandle(t *Tensor) *Handle {
	return b.handle(t)
}

// FloatIntoData queues a read of a float tensor. The data is float32.
func (b *Backend) FloatIntoData(t *Tensor) *tensor.Pending {
	return b.intoData(t)
}

// FloatFromData uploads float data, narrowing float64 to float32.
func (b *Backend) FloatFromData(data tensor.Data, device Device) *Tensor {
	return b.fromData(tensor.KindFloat, data, device)
}

// IntTensor materializes an int tensor from its handle.
func (b *Backend) IntTensor(h bridge.TensorHandle[*Handle]) *Tensor {
	return b.materialize("int tensor", tensor.KindInt, h)
}

// IntToDevice queues a copy of an int tensor onto device.
func (b *Backend) IntToDevice(t *Tensor, device Device) *Tensor {
	return b.toDevice(t, device)
}

// IntTensorHandle returns the handle of an int tensor.
func (b *Backend) IntTensorHandle(t *Tensor) *Handle {
	return b.handle(t)
}

// IntIntoData queues a read of an int tensor.
func (b *Backend) IntIntoData(t *Tensor) *tensor.Pending {
	return b.intoData(t)
}

// IntFromData uploads int data.
func (b *Backend) IntFromData(data tensor.Data, device Device) *Tensor {
	return b.fromData(tensor.KindInt, data, device)
}

// BoolTensor materializes a bool tensor from its handle.
func (b *Backend) BoolTensor(h bridge.TensorHandle[*Handle]) *Tensor {
	return b.materialize("bool tensor", tensor.KindBool, h)
}

// BoolToDevice queues a copy of a bool tensor onto device.
func (b *Backend) BoolToDevice(t *Tensor, device Device) *Tensor {
	return b.toDevice(t, device)
}

// BoolTensorHandle returns the handle of a bool tensor.
func (b *Backend) BoolTensorHandle(t *Tensor) *Handle {
	return b.handle(t)
}

// BoolIntoData queues a read of a bool tensor.
func (b *Backend) BoolIntoData(t *Tensor) *tensor.Pending {
	return b.intoData(t)
}

// BoolFromData uploads bool data.
func (b *Backend) BoolFromData(data tensor.Data, device Device) *Tensor {
	return b.fromData(tensor.KindBool, data, device)
}
