// Package cpu implements the host backend: tensors live in reference-counted
// host buffers and reads complete synchronously.
package cpu

import (
	"fmt"

	"github.com/born-ml/router/internal/backend/stats"
	"github.com/born-ml/router/internal/parallel"
	"github.com/born-ml/router/internal/tensor"
)

// DefaultDevices is the number of logical host devices a backend exposes
// unless configured otherwise.
const DefaultDevices = 2

// Device selects one logical host device.
type Device struct {
	Index int
}

// ID returns the device identifier.
func (d Device) ID() tensor.DeviceID {
	return tensor.DeviceID{Kind: tensor.CPU, Index: d.Index}
}

// String returns "cpu:<index>".
func (d Device) String() string {
	return d.ID().String()
}

// CPUBackend is the host backend.
type CPUBackend struct {
	devices int
	copier  parallel.Config
	memory  stats.Tracker
}

// Option configures a CPUBackend.
type Option func(*CPUBackend)

// WithDevices sets the number of logical host devices (minimum 1).
func WithDevices(n int) Option {
	return func(b *CPUBackend) {
		if n < 1 {
			n = 1
		}
		b.devices = n
	}
}

// WithCopyConfig sets how device moves split large copies across goroutines.
func WithCopyConfig(cfg parallel.Config) Option {
	return func(b *CPUBackend) {
		b.copier = cfg
	}
}

// New creates a new CPU backend.
func New(opts ...Option) *CPUBackend {
	b := &CPUBackend{devices: DefaultDevices, copier: parallel.DefaultConfig()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Name returns the backend name.
func (b *CPUBackend) Name() string {
	return "cpu"
}

// Devices returns the logical devices of this backend.
func (b *CPUBackend) Devices() []Device {
	out := make([]Device, b.devices)
	for i := range out {
		out[i] = Device{Index: i}
	}
	return out
}

// MemoryStats returns host buffer statistics for tensors created by this backend.
func (b *CPUBackend) MemoryStats() stats.MemoryStats {
	return b.memory.Snapshot()
}

func (b *CPUBackend) checkDevice(op string, d Device) {
	if d.Index < 0 || d.Index >= b.devices {
		panic(fmt.Sprintf("cpu: %s: device %s out of range (%d devices)", op, d, b.devices))
	}
}

// alloc creates storage for data on d and records it.
func (b *CPUBackend) alloc(op string, data tensor.Data, d Device) *tensor.RawTensor {
	b.checkDevice(op, d)
	raw, err := tensor.NewRawFromData(data, d.ID())
	if err != nil {
		panic(fmt.Sprintf("cpu: %s: %v", op, err))
	}
	b.memory.Alloc(uint64(raw.ByteSize())) //nolint:gosec // G115: sizes are non-negative
	return raw
}

// clone copies src onto d and records the new buffer.
func (b *CPUBackend) clone(op string, src *tensor.RawTensor, d Device) *tensor.RawTensor {
	b.checkDevice(op, d)
	raw, err := tensor.NewRaw(src.Shape(), src.DType(), d.ID())
	if err != nil {
		panic(fmt.Sprintf("cpu: %s: %v", op, err))
	}
	parallel.Copy(raw.Data(), src.Data(), b.copier)
	b.memory.Alloc(uint64(raw.ByteSize())) //nolint:gosec // G115: sizes are non-negative
	return raw
}

// free drops one reference and records the release once the buffer is gone.
func (b *CPUBackend) free(raw *tensor.RawTensor) {
	size := raw.ByteSize()
	raw.Release()
	if raw.IsReleased() {
		b.memory.Free(uint64(size)) //nolint:gosec // G115: sizes are non-negative
	}
}
