// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import "github.com/born-ml/router/internal/tensor"

// Data is the canonical transfer form of a tensor: dtype, shape and a flat
// little-endian row-major byte buffer.
type Data = tensor.Data

// Pending is the eventual result of a backend read.
type Pending = tensor.Pending

// Errors.
var (
	// ErrShapeMismatch is returned when a byte buffer does not match its shape.
	ErrShapeMismatch = tensor.ErrShapeMismatch
	// ErrShapeOverflow is returned when a shape's element or byte count does
	// not fit in an int.
	ErrShapeOverflow = tensor.ErrShapeOverflow
	// ErrBlockingUnsupported is returned by ReadSync on platforms that cannot
	// wait for an unfinished read.
	ErrBlockingUnsupported = tensor.ErrBlockingUnsupported
)

// NewData checks that bytes match shape and dtype.
func NewData(dtype DataType, shape Shape, bytes []byte) (Data, error) {
	return tensor.NewData(dtype, shape, bytes)
}

// FromFloat32s encodes float32 values.
func FromFloat32s(values []float32, shape Shape) (Data, error) {
	return tensor.FromFloat32s(values, shape)
}

// FromFloat64s encodes float64 values.
func FromFloat64s(values []float64, shape Shape) (Data, error) {
	return tensor.FromFloat64s(values, shape)
}

// FromInt32s encodes int32 values.
func FromInt32s(values []int32, shape Shape) (Data, error) {
	return tensor.FromInt32s(values, shape)
}

// FromInt64s encodes int64 values.
func FromInt64s(values []int64, shape Shape) (Data, error) {
	return tensor.FromInt64s(values, shape)
}

// FromBools encodes bool values.
func FromBools(values []bool, shape Shape) (Data, error) {
	return tensor.FromBools(values, shape)
}

// NewPending creates an incomplete Pending. Complete it exactly once.
func NewPending() *Pending {
	return tensor.NewPending()
}

// Ready returns a completed Pending holding data.
func Ready(data Data) *Pending {
	return tensor.Ready(data)
}

// Failed returns a completed Pending holding err.
func Failed(err error) *Pending {
	return tensor.Failed(err)
}

// ReadSync waits for p and returns its result. See the package
// documentation for platforms that cannot block.
func ReadSync(p *Pending) (Data, error) {
	return tensor.ReadSync(p)
}

// CanBlock reports whether ReadSync may block on this platform.
func CanBlock() bool {
	return tensor.CanBlock()
}
