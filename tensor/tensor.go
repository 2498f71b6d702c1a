// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import "github.com/born-ml/router/internal/tensor"

// Shape represents tensor dimensions. A scalar has an empty shape.
type Shape = tensor.Shape

// DataType represents runtime element type information.
type DataType = tensor.DataType

// Supported data types.
const (
	Float32 = tensor.Float32
	Float64 = tensor.Float64
	Int32   = tensor.Int32
	Int64   = tensor.Int64
	Uint8   = tensor.Uint8
	Bool    = tensor.Bool
)

// Kind is the tensor family a data type belongs to.
type Kind = tensor.Kind

// Tensor kinds.
const (
	KindFloat = tensor.KindFloat
	KindInt   = tensor.KindInt
	KindBool  = tensor.KindBool
)

// DeviceKind is the class of compute device.
type DeviceKind = tensor.DeviceKind

// Device kinds.
const (
	CPU    = tensor.CPU
	CUDA   = tensor.CUDA
	Vulkan = tensor.Vulkan
	Metal  = tensor.Metal
	WebGPU = tensor.WebGPU
	Mock   = tensor.Mock
)

// DeviceID identifies one device.
type DeviceID = tensor.DeviceID

// RawTensor is reference-counted host tensor storage.
//
// Example:
//
//	raw, _ := tensor.NewRaw(tensor.Shape{2, 3}, tensor.Float32, tensor.DeviceID{Kind: tensor.CPU})
//	values := raw.AsFloat32() // zero-copy view
//	raw.Release()
type RawTensor = tensor.RawTensor

// ParseKind parses "float", "int" or "bool".
func ParseKind(s string) (Kind, bool) {
	return tensor.ParseKind(s)
}

// ParseShape parses a comma separated list of extents ("2,3"). The empty
// string is the scalar shape.
func ParseShape(s string) (Shape, error) {
	return tensor.ParseShape(s)
}

// ParseDeviceID parses "kind:index", e.g. "cpu:0" or "webgpu".
func ParseDeviceID(s string) (DeviceID, error) {
	return tensor.ParseDeviceID(s)
}

// NewRaw creates a zero-filled RawTensor.
func NewRaw(shape Shape, dtype DataType, device DeviceID) (*RawTensor, error) {
	return tensor.NewRaw(shape, dtype, device)
}

// NewRawFromData creates a RawTensor holding a copy of data.
func NewRawFromData(data Data, device DeviceID) (*RawTensor, error) {
	return tensor.NewRawFromData(data, device)
}
