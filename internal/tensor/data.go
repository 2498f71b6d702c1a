package tensor

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// ErrShapeMismatch is returned when a byte buffer does not match its shape and dtype.
var ErrShapeMismatch = errors.New("tensor: data length does not match shape")

// Data is the backend-neutral transfer object used to move tensor contents
// across a backend boundary: a dtype tag, a shape and a flat little-endian
// row-major byte buffer.
//
// Data exists only for the duration of a transfer. It has no serialized form.
type Data struct {
	DType DataType
	Shape Shape
	Bytes []byte
}

// NewData creates Data after checking that len(bytes) matches shape and dtype.
// The shape is cloned; the byte slice is taken over by the returned value.
func NewData(dtype DataType, shape Shape, bytes []byte) (Data, error) {
	if err := validateBytes(shape, dtype); err != nil {
		return Data{}, fmt.Errorf("invalid shape: %w", err)
	}
	if want := shape.NumElements() * dtype.Size(); len(bytes) != want {
		return Data{}, fmt.Errorf("%w: %s%v needs %d bytes, got %d", ErrShapeMismatch, dtype, shape, want, len(bytes))
	}
	return Data{DType: dtype, Shape: shape.Clone(), Bytes: bytes}, nil
}

// Kind returns the tensor kind of the data.
func (d Data) Kind() Kind {
	return d.DType.Kind()
}

// NumElements returns the number of elements described by the shape.
func (d Data) NumElements() int {
	return d.Shape.NumElements()
}

// AssertKind panics if the data does not belong to the given kind.
// Backends call it from their FromData entry points.
func (d Data) AssertKind(k Kind) {
	if d.Kind() != k {
		panic(fmt.Sprintf("tensor: expected %s data, got %s", k, d.DType))
	}
}

// FromFloat32s encodes float32 values.
func FromFloat32s(values []float32, shape Shape) (Data, error) {
	buf := make([]byte, len(values)*4)
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return NewData(Float32, shape, buf)
}

// FromFloat64s encodes float64 values.
func FromFloat64s(values []float64, shape Shape) (Data, error) {
	buf := make([]byte, len(values)*8)
	for i, v := range values {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(v))
	}
	return NewData(Float64, shape, buf)
}

// FromInt32s encodes int32 values.
func FromInt32s(values []int32, shape Shape) (Data, error) {
	buf := make([]byte, len(values)*4)
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[i*4:], uint32(v)) //nolint:gosec // G115: bit reinterpretation
	}
	return NewData(Int32, shape, buf)
}

// FromInt64s encodes int64 values.
func FromInt64s(values []int64, shape Shape) (Data, error) {
	buf := make([]byte, len(values)*8)
	for i, v := range values {
		binary.LittleEndian.PutUint64(buf[i*8:], uint64(v)) //nolint:gosec // G115: bit reinterpretation
	}
	return NewData(Int64, shape, buf)
}

// FromBools encodes bool values, one byte each.
func FromBools(values []bool, shape Shape) (Data, error) {
	buf := make([]byte, len(values))
	for i, v := range values {
		if v {
			buf[i] = 1
		}
	}
	return NewData(Bool, shape, buf)
}

// Float32s decodes the buffer as float32 values.
// Panics if the dtype is not Float32.
func (d Data) Float32s() []float32 {
	d.mustBe(Float32)
	out := make([]float32, d.NumElements())
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(d.Bytes[i*4:]))
	}
	return out
}

// Float64s decodes the buffer as float64 values.
// Panics if the dtype is not Float64.
func (d Data) Float64s() []float64 {
	d.mustBe(Float64)
	out := make([]float64, d.NumElements())
	for i := range out {
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(d.Bytes[i*8:]))
	}
	return out
}

// Int32s decodes the buffer as int32 values.
// Panics if the dtype is not Int32.
func (d Data) Int32s() []int32 {
	d.mustBe(Int32)
	out := make([]int32, d.NumElements())
	for i := range out {
		out[i] = int32(binary.LittleEndian.Uint32(d.Bytes[i*4:])) //nolint:gosec // G115: bit reinterpretation
	}
	return out
}

// Int64s decodes the buffer as int64 values.
// Panics if the dtype is not Int64.
func (d Data) Int64s() []int64 {
	d.mustBe(Int64)
	out := make([]int64, d.NumElements())
	for i := range out {
		out[i] = int64(binary.LittleEndian.Uint64(d.Bytes[i*8:])) //nolint:gosec // G115: bit reinterpretation
	}
	return out
}

// Bools decodes the buffer as bool values.
// Panics if the dtype is not Bool.
func (d Data) Bools() []bool {
	d.mustBe(Bool)
	out := make([]bool, d.NumElements())
	for i := range out {
		out[i] = d.Bytes[i] != 0
	}
	return out
}

// Convert returns the data re-encoded as dtype.
// Only width changes inside one kind are allowed (float64 <-> float32,
// int32 <-> int64 <-> uint8); converting to the current dtype returns d itself.
func (d Data) Convert(dtype DataType) Data {
	if d.DType == dtype {
		return d
	}
	if d.Kind() != dtype.Kind() {
		panic(fmt.Sprintf("tensor: cannot convert %s data to %s", d.DType, dtype))
	}

	var out Data
	var err error
	switch d.Kind() {
	case KindFloat:
		out, err = convertFloat(d, dtype)
	case KindInt:
		out, err = convertInt(d, dtype)
	default:
		panic(fmt.Sprintf("tensor: cannot convert %s data to %s", d.DType, dtype))
	}
	if err != nil {
		panic(fmt.Sprintf("tensor: convert: %v", err))
	}
	return out
}

func convertFloat(d Data, dtype DataType) (Data, error) {
	var values []float64
	if d.DType == Float64 {
		values = d.Float64s()
	} else {
		src := d.Float32s()
		values = make([]float64, len(src))
		for i, v := range src {
			values[i] = float64(v)
		}
	}

	if dtype == Float64 {
		return FromFloat64s(values, d.Shape)
	}
	narrow := make([]float32, len(values))
	for i, v := range values {
		narrow[i] = float32(v)
	}
	return FromFloat32s(narrow, d.Shape)
}

func convertInt(d Data, dtype DataType) (Data, error) {
	values := make([]int64, d.NumElements())
	switch d.DType {
	case Int32:
		for i, v := range d.Int32s() {
			values[i] = int64(v)
		}
	case Int64:
		values = d.Int64s()
	case Uint8:
		for i, v := range d.Bytes {
			values[i] = int64(v)
		}
	}

	switch dtype {
	case Int32:
		out := make([]int32, len(values))
		for i, v := range values {
			out[i] = int32(v) //nolint:gosec // G115: narrowing is the caller's request
		}
		return FromInt32s(out, d.Shape)
	case Uint8:
		out := make([]byte, len(values))
		for i, v := range values {
			out[i] = uint8(v) //nolint:gosec // G115: narrowing is the caller's request
		}
		return NewData(Uint8, d.Shape, out)
	default:
		return FromInt64s(values, d.Shape)
	}
}

// Equal reports whether two Data values have the same dtype, shape and bytes.
func (d Data) Equal(other Data) bool {
	if d.DType != other.DType || !d.Shape.Equal(other.Shape) || len(d.Bytes) != len(other.Bytes) {
		return false
	}
	for i := range d.Bytes {
		if d.Bytes[i] != other.Bytes[i] {
			return false
		}
	}
	return true
}

// ApproxEqual compares two Data values of the same kind and shape.
// Float values may differ by tol (and may differ in width); Int and Bool
// values must match exactly.
func (d Data) ApproxEqual(other Data, tol float64) bool {
	if d.Kind() != other.Kind() || !d.Shape.Equal(other.Shape) {
		return false
	}
	if d.Kind() != KindFloat {
		if d.DType != other.DType {
			return d.Convert(Int64).Equal(other.Convert(Int64))
		}
		return d.Equal(other)
	}

	a := d.Convert(Float64).Float64s()
	b := other.Convert(Float64).Float64s()
	for i := range a {
		if math.Abs(a[i]-b[i]) > tol {
			return false
		}
	}
	return true
}

// String returns a short description of the data.
func (d Data) String() string {
	return fmt.Sprintf("Data[%s]%v (%d bytes)", d.DType, d.Shape, len(d.Bytes))
}

func (d Data) mustBe(dtype DataType) {
	if d.DType != dtype {
		panic(fmt.Sprintf("tensor: data dtype is %s, not %s", d.DType, dtype))
	}
}
