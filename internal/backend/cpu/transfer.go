package cpu

import (
	"fmt"

	"github.com/born-ml/router/internal/bridge"
	"github.com/born-ml/router/internal/tensor"
)

var _ bridge.Backend[*Handle, *Tensor, Device] = (*CPUBackend)(nil)

// materialize takes the storage out of a handle and checks it holds a tensor
// of the expected kind and shape.
func (b *CPUBackend) materialize(op string, kind tensor.Kind, h bridge.TensorHandle[*Handle]) *Tensor {
	raw := h.Handle.take()
	if raw.DType().Kind() != kind {
		b.free(raw)
		panic(fmt.Sprintf("cpu: %s: handle holds %s data, want %s", op, raw.DType(), kind))
	}
	if raw.NumElements() != h.Shape.NumElements() {
		b.free(raw)
		panic(fmt.Sprintf("cpu: %s: shape %v does not match storage %v", op, h.Shape, raw.Shape()))
	}
	return &Tensor{raw: raw, shape: h.Shape.Clone()}
}

// toDevice copies t onto device and releases the source. Moving to the
// current device returns t unchanged.
func (b *CPUBackend) toDevice(t *Tensor, device Device) *Tensor {
	if t.Device() == device {
		return t
	}
	src := t.take()
	raw := b.clone("to device", src, device)
	b.free(src)
	return &Tensor{raw: raw, shape: t.shape}
}

func (b *CPUBackend) handle(t *Tensor) *Handle {
	return newHandle(t.take())
}

// intoData captures the contents and releases the source storage.
func (b *CPUBackend) intoData(t *Tensor) *tensor.Pending {
	src := t.take()
	data := src.ToData()
	data.Shape = t.shape.Clone()
	b.free(src)
	return tensor.Ready(data)
}

func (b *CPUBackend) fromData(kind tensor.Kind, data tensor.Data, device Device) *Tensor {
	data.AssertKind(kind)
	return &Tensor{raw: b.alloc("from data", data, device), shape: data.Shape.Clone()}
}

// FloatTensor materializes a float tensor from its handle.
func (b *CPUBackend) FloatTensor(h bridge.TensorHandle[*Handle]) *Tensor {
	return b.materialize("float tensor", tensor.KindFloat, h)
}

// FloatToDevice moves a float tensor to another host device.
func (b *CPUBackend) FloatToDevice(t *Tensor, device Device) *Tensor {
	return b.toDevice(t, device)
}

// FloatTensorHandle returns the handle of a float tensor.
func (b *CPUBackend) FloatTensorHandle(t *Tensor) *Handle {
	return b.handle(t)
}

// FloatIntoData reads a float tensor. The result is always complete.
func (b *CPUBackend) FloatIntoData(t *Tensor) *tensor.Pending {
	return b.intoData(t)
}

// FloatFromData stores float data on device, keeping its width.
func (b *CPUBackend) FloatFromData(data tensor.Data, device Device) *Tensor {
	return b.fromData(tensor.KindFloat, data, device)
}

// IntTensor materializes an int tensor from its handle.
func (b *CPUBackend) IntTensor(h bridge.TensorHandle[*Handle]) *Tensor {
	return b.materialize("int tensor", tensor.KindInt, h)
}

// IntToDevice moves an int tensor to another host device.
func (b *CPUBackend) IntToDevice(t *Tensor, device Device) *Tensor {
	return b.toDevice(t, device)
}

// IntTensorHandle returns the handle of an int tensor.
func (b *CPUBackend) IntTensorHandle(t *Tensor) *Handle {
	return b.handle(t)
}

// IntIntoData reads an int tensor.
func (b *CPUBackend) IntIntoData(t *Tensor) *tensor.Pending {
	return b.intoData(t)
}

// IntFromData stores int data on device.
func (b *CPUBackend) IntFromData(data tensor.Data, device Device) *Tensor {
	return b.fromData(tensor.KindInt, data, device)
}

// BoolTensor materializes a bool tensor from its handle.
func (b *CPUBackend) BoolTensor(h bridge.TensorHandle[*Handle]) *Tensor {
	return b.materialize("bool tensor", tensor.KindBool, h)
}

// BoolToDevice moves a bool tensor to another host device.
func (b *CPUBackend) BoolToDevice(t *Tensor, device Device) *Tensor {
	return b.toDevice(t, device)
}

// BoolTensorHandle returns the handle of a bool tensor.
func (b *CPUBackend) BoolTensorHandle(t *Tensor) *Handle {
	return b.handle(t)
}

// BoolIntoData reads a bool tensor.
func (b *CPUBackend) BoolIntoData(t *Tensor) *tensor.Pending {
	return b.intoData(t)
}

// BoolFromData stores bool data on device.
func (b *CPUBackend) BoolFromData(data tensor.Data, device Device) *Tensor {
	return b.fromData(tensor.KindBool, data, device)
}
