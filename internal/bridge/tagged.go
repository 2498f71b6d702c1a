package bridge

import "fmt"

// Tag identifies which of the two backends owns a handle or a device.
type Tag uint8

// Backend tags. The zero Tag is reserved for the invalid zero value of
// Handle2 and Device2.
const (
	Backend1 Tag = iota + 1
	Backend2
)

// String returns the tag name.
func (t Tag) String() string {
	switch t {
	case Backend1:
		return "backend1"
	case Backend2:
		return "backend2"
	default:
		return "invalid"
	}
}

// Handle2 is a tensor handle owned by exactly one of two backends.
//
// Values are built with NewHandle1 or NewHandle2 only, so the payload always
// matches the tag. A Handle2 is moved into bridge calls: once passed in, the
// caller must not use it again.
type Handle2[H1, H2 any] struct {
	tag Tag
	h1  H1
	h2  H2
}

// NewHandle1 wraps a handle owned by the first backend.
func NewHandle1[H1, H2 any](h H1) Handle2[H1, H2] {
	return Handle2[H1, H2]{tag: Backend1, h1: h}
}

// NewHandle2 wraps a handle owned by the second backend.
func NewHandle2[H1, H2 any](h H2) Handle2[H1, H2] {
	return Handle2[H1, H2]{tag: Backend2, h2: h}
}

// Tag returns the owning backend.
func (h Handle2[H1, H2]) Tag() Tag {
	return h.tag
}

// Handle1 returns the first backend's handle if h is tagged Backend1.
func (h Handle2[H1, H2]) Handle1() (H1, bool) {
	return h.h1, h.tag == Backend1
}

// Handle2 returns the second backend's handle if h is tagged Backend2.
func (h Handle2[H1, H2]) Handle2() (H2, bool) {
	return h.h2, h.tag == Backend2
}

// Device2 is a device descriptor belonging to one of two backends.
type Device2[D1, D2 any] struct {
	tag Tag
	d1  D1
	d2  D2
}

// NewDevice1 wraps a device of the first backend.
func NewDevice1[D1, D2 any](d D1) Device2[D1, D2] {
	return Device2[D1, D2]{tag: Backend1, d1: d}
}

// NewDevice2 wraps a device of the second backend.
func NewDevice2[D1, D2 any](d D2) Device2[D1, D2] {
	return Device2[D1, D2]{tag: Backend2, d2: d}
}

// Tag returns the backend the device belongs to.
func (d Device2[D1, D2]) Tag() Tag {
	return d.tag
}

// Device1 returns the first backend's device if d is tagged Backend1.
func (d Device2[D1, D2]) Device1() (D1, bool) {
	return d.d1, d.tag == Backend1
}

// Device2 returns the second backend's device if d is tagged Backend2.
func (d Device2[D1, D2]) Device2() (D2, bool) {
	return d.d2, d.tag == Backend2
}

// String formats the device as "backendN(<device>)".
func (d Device2[D1, D2]) String() string {
	switch d.tag {
	case Backend1:
		return fmt.Sprintf("%s(%v)", d.tag, d.d1)
	case Backend2:
		return fmt.Sprintf("%s(%v)", d.tag, d.d2)
	default:
		return "invalid"
	}
}

// MatchHandle calls on1 or on2 depending on which backend owns h.
// Both arms are required, so every caller handles both variants.
// Matching the zero Handle2 panics.
func MatchHandle[H1, H2, R any](h Handle2[H1, H2], on1 func(H1) R, on2 func(H2) R) R {
	switch h.tag {
	case Backend1:
		return on1(h.h1)
	case Backend2:
		return on2(h.h2)
	}
	panic("bridge: zero Handle2 (build handles with NewHandle1 or NewHandle2)")
}

// MatchDevice calls on1 or on2 depending on which backend d belongs to.
// Matching the zero Device2 panics.
func MatchDevice[D1, D2, R any](d Device2[D1, D2], on1 func(D1) R, on2 func(D2) R) R {
	switch d.tag {
	case Backend1:
		return on1(d.d1)
	case Backend2:
		return on2(d.d2)
	}
	panic("bridge: zero Device2 (build devices with NewDevice1 or NewDevice2)")
}
