package bridge

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/born-ml/router/internal/logger"
	"github.com/born-ml/router/internal/tensor"
)

// blockingUnsupportedMsg is the panic message of a cross-backend transfer on
// a platform where the synchronous drain cannot wait for the source read.
const blockingUnsupportedMsg = "failed to read tensor data synchronously: " +
	"this can happen on platforms that don't support blocking reads, like WASM"

// Route describes how a tensor reaches its target device.
type Route int

// Transfer routes.
const (
	// SameBackend moves the tensor with the owning backend's own device move.
	SameBackend Route = iota
	// CrossBackend drains the tensor into canonical data and rebuilds it in
	// the other backend.
	CrossBackend
)

// String returns the route name.
func (r Route) String() string {
	if r == SameBackend {
		return "same-backend"
	}
	return "cross-backend"
}

// ByteBridge transfers tensors between two backends through canonical tensor
// data. It holds no mutable state: concurrent calls on different handles are
// independent.
//
// Example:
//
//	b := bridge.NewByteBridge[*cpu.Handle, *cpu.Tensor, cpu.Device,
//	    *mock.Handle, *mock.Tensor, mock.Device](cpu.New(), accel)
//	h := b.Handle1(cpu.MustFromFloat32s(host, []float32{1, 2, 3, 4}, tensor.Shape{4}))
//	moved := b.ChangeBackendFloat(h, tensor.Shape{4}, b.Device2(mock.Device{Index: 1}))
type ByteBridge[H1, P1, D1, H2, P2, D2 any] struct {
	b1  Backend[H1, P1, D1]
	b2  Backend[H2, P2, D2]
	log logger.Logger
}

// Option configures a ByteBridge.
type Option func(*options)

type options struct {
	log logger.Logger
}

// WithLogger sets the logger used for per-call debug records.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		o.log = l
	}
}

// NewByteBridge creates a bridge between b1 (tagged Backend1) and b2
// (tagged Backend2).
func NewByteBridge[H1, P1, D1, H2, P2, D2 any](
	b1 Backend[H1, P1, D1],
	b2 Backend[H2, P2, D2],
	opts ...Option,
) *ByteBridge[H1, P1, D1, H2, P2, D2] {
	o := options{log: logger.Discard()}
	for _, opt := range opts {
		opt(&o)
	}
	return &ByteBridge[H1, P1, D1, H2, P2, D2]{b1: b1, b2: b2, log: o.log}
}

// Name returns "bridge<backend1, backend2>".
func (b *ByteBridge[H1, P1, D1, H2, P2, D2]) Name() string {
	return fmt.Sprintf("bridge<%s, %s>", b.b1.Name(), b.b2.Name())
}

// Backend1 returns the first backend.
func (b *ByteBridge[H1, P1, D1, H2, P2, D2]) Backend1() Backend[H1, P1, D1] {
	return b.b1
}

// Backend2 returns the second backend.
func (b *ByteBridge[H1, P1, D1, H2, P2, D2]) Backend2() Backend[H2, P2, D2] {
	return b.b2
}

// Handle1 tags a handle owned by the first backend.
func (b *ByteBridge[H1, P1, D1, H2, P2, D2]) Handle1(h H1) Handle2[H1, H2] {
	return NewHandle1[H1, H2](h)
}

// Handle2 tags a handle owned by the second backend.
func (b *ByteBridge[H1, P1, D1, H2, P2, D2]) Handle2(h H2) Handle2[H1, H2] {
	return NewHandle2[H1](h)
}

// Device1 tags a device of the first backend.
func (b *ByteBridge[H1, P1, D1, H2, P2, D2]) Device1(d D1) Device2[D1, D2] {
	return NewDevice1[D1, D2](d)
}

// Device2 tags a device of the second backend.
func (b *ByteBridge[H1, P1, D1, H2, P2, D2]) Device2(d D2) Device2[D1, D2] {
	return NewDevice2[D1](d)
}

// Route reports whether moving h to target stays inside one backend.
// It does not consume h.
func (b *ByteBridge[H1, P1, D1, H2, P2, D2]) Route(h Handle2[H1, H2], target Device2[D1, D2]) Route {
	if h.Tag() == target.Tag() {
		return SameBackend
	}
	return CrossBackend
}

// ChangeBackendFloat moves a float tensor to target, crossing backends if
// needed. The handle is consumed; the result is tagged with target's backend
// and has the given shape.
func (b *ByteBridge[H1, P1, D1, H2, P2, D2]) ChangeBackendFloat(
	h Handle2[H1, H2], shape tensor.Shape, target Device2[D1, D2],
) Handle2[H1, H2] {
	b.trace(tensor.KindFloat, h, shape, target)
	return changeBackend(floatOps(b.b1), floatOps(b.b2), h, shape, target)
}

// ChangeBackendInt moves an int tensor to target, crossing backends if
// needed. The handle is consumed.
func (b *ByteBridge[H1, P1, D1, H2, P2, D2]) ChangeBackendInt(
	h Handle2[H1, H2], shape tensor.Shape, target Device2[D1, D2],
) Handle2[H1, H2] {
	b.trace(tensor.KindInt, h, shape, target)
	return changeBackend(intOps(b.b1), intOps(b.b2), h, shape, target)
}

// ChangeBackendBool moves a bool tensor to target, crossing backends if
// needed. The handle is consumed.
func (b *ByteBridge[H1, P1, D1, H2, P2, D2]) ChangeBackendBool(
	h Handle2[H1, H2], shape tensor.Shape, target Device2[D1, D2],
) Handle2[H1, H2] {
	b.trace(tensor.KindBool, h, shape, target)
	return changeBackend(boolOps(b.b1), boolOps(b.b2), h, shape, target)
}

// ChangeBackend selects the entry point for kind. It performs no dtype
// coercion: the handle must hold a tensor of that kind.
func (b *ByteBridge[H1, P1, D1, H2, P2, D2]) ChangeBackend(
	kind tensor.Kind, h Handle2[H1, H2], shape tensor.Shape, target Device2[D1, D2],
) Handle2[H1, H2] {
	switch kind {
	case tensor.KindFloat:
		return b.ChangeBackendFloat(h, shape, target)
	case tensor.KindInt:
		return b.ChangeBackendInt(h, shape, target)
	case tensor.KindBool:
		return b.ChangeBackendBool(h, shape, target)
	default:
		panic(fmt.Sprintf("bridge: unknown tensor kind %d", kind))
	}
}

func (b *ByteBridge[H1, P1, D1, H2, P2, D2]) trace(
	kind tensor.Kind, h Handle2[H1, H2], shape tensor.Shape, target Device2[D1, D2],
) {
	if !b.log.Enabled(slog.LevelDebug) {
		return
	}
	b.log.Debug("change backend",
		"kind", kind.String(),
		"route", b.Route(h, target).String(),
		"from", h.Tag().String(),
		"to", target.String(),
		"shape", shape.String(),
	)
}

// changeBackend is the 2x2 dispatch shared by the three kinds. Each arm is
// spelled out: two same-backend moves and two cross-backend transfers.
func changeBackend[H1, P1, D1, H2, P2, D2 any](
	ops1 kindOps[H1, P1, D1],
	ops2 kindOps[H2, P2, D2],
	h Handle2[H1, H2],
	shape tensor.Shape,
	target Device2[D1, D2],
) Handle2[H1, H2] {
	return MatchHandle(h,
		func(handle H1) Handle2[H1, H2] {
			return MatchDevice(target,
				func(device D1) Handle2[H1, H2] {
					// Same backend
					t := ops1.tensor(TensorHandle[H1]{Handle: handle, Shape: shape})
					t = ops1.toDevice(t, device)
					return NewHandle1[H1, H2](ops1.handle(t))
				},
				func(device D2) Handle2[H1, H2] {
					t := ops1.tensor(TensorHandle[H1]{Handle: handle, Shape: shape})
					data := drain(ops1.intoData(t))
					moved := ops2.fromData(data, device)
					return NewHandle2[H1](ops2.handle(moved))
				},
			)
		},
		func(handle H2) Handle2[H1, H2] {
			return MatchDevice(target,
				func(device D1) Handle2[H1, H2] {
					t := ops2.tensor(TensorHandle[H2]{Handle: handle, Shape: shape})
					data := drain(ops2.intoData(t))
					moved := ops1.fromData(data, device)
					return NewHandle1[H1, H2](ops1.handle(moved))
				},
				func(device D2) Handle2[H1, H2] {
					// Same backend
					t := ops2.tensor(TensorHandle[H2]{Handle: handle, Shape: shape})
					t = ops2.toDevice(t, device)
					return NewHandle2[H1](ops2.handle(t))
				},
			)
		},
	)
}

// drain waits for a backend read. It never returns an error: a platform that
// cannot block aborts the transfer, and a failed backend read is re-raised
// unchanged.
func drain(p *tensor.Pending) tensor.Data {
	data, err := tensor.ReadSync(p)
	if errors.Is(err, tensor.ErrBlockingUnsupported) {
		panic(blockingUnsupportedMsg)
	}
	if err != nil {
		panic(err)
	}
	return data
}
