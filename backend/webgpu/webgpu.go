// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package webgpu provides the WebGPU backend.
//
// Tensors live in GPU storage buffers. Reads copy into a staging buffer and
// map it on a separate goroutine, so IntoData returns before the data is
// available. Floats are stored as float32.
//
// The backend is built on Windows. Elsewhere New returns ErrUnavailable.
//
// Example:
//
//	gpu, err := webgpu.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer gpu.Release()
package webgpu

import (
	"github.com/born-ml/router/bridge"
	internalwebgpu "github.com/born-ml/router/internal/backend/webgpu"
)

// Backend represents the WebGPU backend implementation.
type Backend = internalwebgpu.Backend

// Handle is the opaque handle of a GPU tensor.
type Handle = internalwebgpu.Handle

// Tensor is the materialized GPU tensor.
type Tensor = internalwebgpu.Tensor

// Device selects a GPU adapter.
type Device = internalwebgpu.Device

// ErrUnavailable is returned by New when WebGPU cannot be used.
var ErrUnavailable = internalwebgpu.ErrUnavailable

// Compile-time check that Backend can be bridged.
var _ bridge.Backend[*Handle, *Tensor, Device] = (*Backend)(nil)

// New creates a new WebGPU backend. Call Release when done.
func New() (*Backend, error) {
	return internalwebgpu.New()
}

// IsAvailable checks if WebGPU is available on the current system.
func IsAvailable() bool {
	return internalwebgpu.IsAvailable()
}
