// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package mock provides an in-process accelerator backend.
//
// Each simulated device runs its own command queue, so reads complete
// asynchronously like on a GPU. Floats are stored as float32. Use it in
// tests, or as the second backend on machines without a GPU.
//
// Example:
//
//	accel := mock.New(mock.WithDevices(2), mock.WithLatency(time.Millisecond))
//	defer accel.Release()
package mock

import (
	"time"

	"github.com/born-ml/router/bridge"
	internalmock "github.com/born-ml/router/internal/backend/mock"
)

// Backend is the simulated accelerator.
type Backend = internalmock.Backend

// Handle is the opaque handle of a device buffer.
type Handle = internalmock.Handle

// Tensor is the materialized device tensor.
type Tensor = internalmock.Tensor

// Device selects a simulated device.
type Device = internalmock.Device

// Option configures the backend.
type Option = internalmock.Option

// Compile-time check that Backend can be bridged.
var _ bridge.Backend[*Handle, *Tensor, Device] = (*Backend)(nil)

// New creates a mock accelerator. Call Release when done.
func New(opts ...Option) *Backend {
	return internalmock.New(opts...)
}

// WithDevices sets the number of simulated devices.
func WithDevices(n int) Option {
	return internalmock.WithDevices(n)
}

// WithLatency delays every queued command by d.
func WithLatency(d time.Duration) Option {
	return internalmock.WithLatency(d)
}
