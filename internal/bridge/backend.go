// Package bridge moves tensors between the two backends of a multi-backend
// router, crossing the backend boundary through canonical tensor data when
// the target device belongs to the other backend.
package bridge

import "github.com/born-ml/router/internal/tensor"

// TensorHandle pairs an opaque backend handle with the shape of the tensor it
// refers to.
type TensorHandle[H any] struct {
	Handle H
	Shape  tensor.Shape
}

// Backend is the capability set the bridge needs from a backend.
//
// Type parameters:
//   - H: opaque handle type owned by the backend runtime
//   - P: materialized tensor primitive
//   - D: device descriptor
//
// Every method consumes its primitive argument: after the call the caller
// must only use the returned value. IntoData releases the source storage
// once its contents have been captured. ToDevice to the device the tensor
// already lives on returns the same storage.
type Backend[H, P, D any] interface {
	// Name returns the backend name (e.g. "cpu", "webgpu").
	Name() string

	// Float tensors.
	FloatTensor(h TensorHandle[H]) P            // Materialize from handle and shape.
	FloatToDevice(t P, device D) P              // Same-backend device move.
	FloatTensorHandle(t P) H                    // Extract the opaque handle.
	FloatIntoData(t P) *tensor.Pending          // Read contents, possibly asynchronously.
	FloatFromData(data tensor.Data, device D) P // Reconstruct on device.

	// Int tensors.
	IntTensor(h TensorHandle[H]) P
	IntToDevice(t P, device D) P
	IntTensorHandle(t P) H
	IntIntoData(t P) *tensor.Pending
	IntFromData(data tensor.Data, device D) P

	// Bool tensors.
	BoolTensor(h TensorHandle[H]) P
	BoolToDevice(t P, device D) P
	BoolTensorHandle(t P) H
	BoolIntoData(t P) *tensor.Pending
	BoolFromData(data tensor.Data, device D) P
}

// kindOps is the per-kind slice of a Backend. The bridge builds one per call
// so the three kinds share a single dispatch without ever mixing.
type kindOps[H, P, D any] struct {
	tensor   func(TensorHandle[H]) P
	toDevice func(P, D) P
	handle   func(P) H
	intoData func(P) *tensor.Pending
	fromData func(tensor.Data, D) P
}

func floatOps[H, P, D any](b Backend[H, P, D]) kindOps[H, P, D] {
	return kindOps[H, P, D]{
		tensor:   b.FloatTensor,
		toDevice: b.FloatToDevice,
		handle:   b.FloatTensorHandle,
		intoData: b.FloatIntoData,
		fromData: b.FloatFromData,
	}
}

func intOps[H, P, D any](b Backend[H, P, D]) kindOps[H, P, D] {
	return kindOps[H, P, D]{
		tensor:   b.IntTensor,
		toDevice: b.IntToDevice,
		handle:   b.IntTensorHandle,
		intoData: b.IntIntoData,
		fromData: b.IntFromData,
	}
}

func boolOps[H, P, D any](b Backend[H, P, D]) kindOps[H, P, D] {
	return kindOps[H, P, D]{
		tensor:   b.BoolTensor,
		toDevice: b.BoolToDevice,
		handle:   b.BoolTensorHandle,
		intoData: b.BoolIntoData,
		fromData: b.BoolFromData,
	}
}
