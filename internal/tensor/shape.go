package tensor

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Shape represents the dimensions of a tensor.
// A Shape is never mutated once it is attached to a tensor; holders keep a clone.
type Shape []int

// NumElements returns the total number of elements in the tensor.
func (s Shape) NumElements() int {
	if len(s) == 0 {
		return 1 // Scalar has 1 element
	}
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// ErrShapeOverflow is returned when a shape's element count does not fit in an int.
var ErrShapeOverflow = errors.New("tensor: shape element count overflows")

// Validate checks that every dimension is non-negative and that the element
// count fits in an int. Zero extents are allowed and describe empty tensors.
func (s Shape) Validate() error {
	empty := false
	for i, dim := range s {
		if dim < 0 {
			return fmt.Errorf("invalid dimension at index %d: %d (must be >= 0)", i, dim)
		}
		if dim == 0 {
			empty = true
		}
	}
	if empty {
		return nil
	}
	n := 1
	for _, dim := range s {
		if n > math.MaxInt/dim {
			return fmt.Errorf("%w: %v", ErrShapeOverflow, s)
		}
		n *= dim
	}
	return nil
}

// validateBytes checks that shape is valid and that its byte size in dtype
// fits in an int.
func validateBytes(shape Shape, dtype DataType) error {
	if err := shape.Validate(); err != nil {
		return err
	}
	if shape.NumElements() > math.MaxInt/dtype.Size() {
		return fmt.Errorf("%w: %s%v", ErrShapeOverflow, dtype, shape)
	}
	return nil
}

// Equal checks if two shapes are equal.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	clone := make(Shape, len(s))
	copy(clone, s)
	return clone
}

// ComputeStrides calculates row-major strides for the shape.
// Strides define memory layout: stride[i] = product of all dimensions after i.
func (s Shape) ComputeStrides() []int {
	strides := make([]int, len(s))
	if len(s) == 0 {
		return strides
	}

	strides[len(s)-1] = 1
	for i := len(s) - 2; i >= 0; i-- {
		strides[i] = strides[i+1] * s[i+1]
	}
	return strides
}

// String formats the shape as [d0, d1, ...].
func (s Shape) String() string {
	parts := make([]string, len(s))
	for i, dim := range s {
		parts[i] = strconv.Itoa(dim)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// ParseShape parses a comma-separated list of extents ("2,3").
// An empty string is the scalar shape.
func ParseShape(s string) (Shape, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Shape{}, nil
	}
	fields := strings.Split(s, ",")
	shape := make(Shape, len(fields))
	for i, f := range fields {
		dim, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return nil, fmt.Errorf("invalid dimension %q: %w", f, err)
		}
		shape[i] = dim
	}
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	return shape, nil
}
