// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package cpu

import (
	"github.com/born-ml/router/bridge"
	internalcpu "github.com/born-ml/router/internal/backend/cpu"
)

// Backend represents the CPU backend implementation.
type Backend = internalcpu.CPUBackend

// Handle is the opaque handle of a host tensor.
type Handle = internalcpu.Handle

// Tensor is the materialized host tensor.
type Tensor = internalcpu.Tensor

// Device selects a logical host device.
type Device = internalcpu.Device

// Option configures the backend.
type Option = internalcpu.Option

// Features describes host SIMD capabilities.
type Features = internalcpu.Features

// Compile-time check that Backend can be bridged.
var _ bridge.Backend[*Handle, *Tensor, Device] = (*Backend)(nil)

// New creates a new CPU backend.
func New(opts ...Option) *Backend {
	return internalcpu.New(opts...)
}

// WithDevices sets the number of logical host devices.
func WithDevices(n int) Option {
	return internalcpu.WithDevices(n)
}

// HostFeatures detects the SIMD capabilities of the running host.
func HostFeatures() Features {
	return internalcpu.HostFeatures()
}
