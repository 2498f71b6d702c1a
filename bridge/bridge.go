// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package bridge moves tensors between the two backends of a multi-backend
// router.
//
// A ByteBridge holds two backends. Handles and devices are tagged with the
// backend that owns them (Backend1 or Backend2). Moving a tensor to a device
// of its own backend uses that backend's device move; moving it to the other
// backend reads it into canonical tensor data, waits for the read, and
// rebuilds it on the target device.
//
// Example:
//
//	import (
//	    "github.com/born-ml/router/backend/cpu"
//	    "github.com/born-ml/router/backend/mock"
//	    "github.com/born-ml/router/bridge"
//	    "github.com/born-ml/router/tensor"
//	)
//
//	func main() {
//	    host := cpu.New()
//	    accel := mock.New()
//	    defer accel.Release()
//
//	    b := bridge.New[*cpu.Handle, *cpu.Tensor, cpu.Device,
//	        *mock.Handle, *mock.Tensor, mock.Device](host, accel)
//	    h, _ := host.FromFloat32s([]float32{1, 2, 3, 4}, tensor.Shape{4}, cpu.Device{})
//	    moved := b.ChangeBackendFloat(b.Handle1(h), tensor.Shape{4}, b.Device2(mock.Device{Index: 1}))
//	}
//
// Handles are moved into every call: the handle passed in must not be used
// again. A cross-backend call on a platform that cannot block for the read
// (js/wasm, wasip1) panics.
package bridge

import (
	"log/slog"

	"github.com/born-ml/router/internal/bridge"
	"github.com/born-ml/router/internal/logger"
)

// Backend is the capability set a backend exposes to the bridge, for each
// of the float, int and bool kinds.
type Backend[H, P, D any] = bridge.Backend[H, P, D]

// TensorHandle pairs a backend handle with its shape.
type TensorHandle[H any] = bridge.TensorHandle[H]

// ByteBridge transfers tensors between two backends.
type ByteBridge[H1, P1, D1, H2, P2, D2 any] = bridge.ByteBridge[H1, P1, D1, H2, P2, D2]

// Handle2 is a handle owned by one of two backends.
type Handle2[H1, H2 any] = bridge.Handle2[H1, H2]

// Device2 is a device of one of two backends.
type Device2[D1, D2 any] = bridge.Device2[D1, D2]

// Tag identifies one of the two backends.
type Tag = bridge.Tag

// Backend tags.
const (
	Backend1 = bridge.Backend1
	Backend2 = bridge.Backend2
)

// Route describes how a tensor reaches its target.
type Route = bridge.Route

// Routes.
const (
	SameBackend  = bridge.SameBackend
	CrossBackend = bridge.CrossBackend
)

// Option configures a ByteBridge.
type Option = bridge.Option

// WithLogger sets the logger used for per-call debug records. Records are
// emitted at slog.LevelDebug.
func WithLogger(l *slog.Logger) Option {
	return bridge.WithLogger(logger.New(l.Handler()))
}

// New creates a bridge between b1 and b2.
func New[H1, P1, D1, H2, P2, D2 any](
	b1 Backend[H1, P1, D1], b2 Backend[H2, P2, D2], opts ...Option,
) *ByteBridge[H1, P1, D1, H2, P2, D2] {
	return bridge.NewByteBridge(b1, b2, opts...)
}

// MatchHandle calls on1 or on2 depending on which backend owns h.
func MatchHandle[H1, H2, R any](h Handle2[H1, H2], on1 func(H1) R, on2 func(H2) R) R {
	return bridge.MatchHandle(h, on1, on2)
}

// MatchDevice calls on1 or on2 depending on which backend d belongs to.
func MatchDevice[D1, D2, R any](d Device2[D1, D2], on1 func(D1) R, on2 func(D2) R) R {
	return bridge.MatchDevice(d, on1, on2)
}
