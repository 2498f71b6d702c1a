package tensor

import (
	"fmt"
	"strconv"
	"strings"
)

// DeviceKind represents the class of compute device a tensor lives on.
type DeviceKind int

// Supported compute device kinds.
const (
	CPU DeviceKind = iota
	CUDA
	Vulkan
	Metal
	WebGPU
	Mock
)

// String returns a human-readable device kind name.
func (d DeviceKind) String() string {
	switch d {
	case CPU:
		return "cpu"
	case CUDA:
		return "cuda"
	case Vulkan:
		return "vulkan"
	case Metal:
		return "metal"
	case WebGPU:
		return "webgpu"
	case Mock:
		return "mock"
	default:
		return "unknown"
	}
}

// DeviceID identifies one device: its kind and ordinal.
type DeviceID struct {
	Kind  DeviceKind
	Index int
}

// String formats the id as "kind:index" (e.g. "cpu:0", "webgpu:1").
func (id DeviceID) String() string {
	return fmt.Sprintf("%s:%d", id.Kind, id.Index)
}

// ParseDeviceID parses "kind:index". A bare kind means index 0.
func ParseDeviceID(s string) (DeviceID, error) {
	name, idx, hasIndex := strings.Cut(s, ":")
	index := 0
	if hasIndex {
		n, err := strconv.Atoi(idx)
		if err != nil {
			return DeviceID{}, fmt.Errorf("invalid device index in %q: %w", s, err)
		}
		index = n
	}
	if index < 0 {
		return DeviceID{}, fmt.Errorf("invalid device index in %q: must be >= 0", s)
	}

	for k := CPU; k <= Mock; k++ {
		if k.String() == name {
			return DeviceID{Kind: k, Index: index}, nil
		}
	}
	return DeviceID{}, fmt.Errorf("unknown device kind %q", name)
}
