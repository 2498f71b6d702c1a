package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/born-ml/router/internal/tensor"
)

// parseDType resolves the element type of a transfer. An empty name picks
// the default dtype of kind.
func parseDType(name string, kind tensor.Kind) (tensor.DataType, error) {
	var dtype tensor.DataType
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "":
		switch kind {
		case tensor.KindFloat:
			return tensor.Float32, nil
		case tensor.KindInt:
			return tensor.Int32, nil
		default:
			return tensor.Bool, nil
		}
	case "float32", "f32":
		dtype = tensor.Float32
	case "float64", "f64":
		dtype = tensor.Float64
	case "int32", "i32":
		dtype = tensor.Int32
	case "int64", "i64":
		dtype = tensor.Int64
	case "uint8", "u8":
		dtype = tensor.Uint8
	case "bool":
		dtype = tensor.Bool
	default:
		return 0, fmt.Errorf("unknown dtype %q", name)
	}
	if dtype.Kind() != kind {
		return 0, fmt.Errorf("dtype %s is not a %s type", dtype, kind)
	}
	return dtype, nil
}

// parseValues encodes a comma separated value list. A nil shape means a
// vector of the given values.
func parseValues(dtype tensor.DataType, list string, shape tensor.Shape) (tensor.Data, error) {
	var fields []string
	if s := strings.TrimSpace(list); s != "" {
		fields = strings.Split(s, ",")
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}
	}
	if shape == nil {
		shape = tensor.Shape{len(fields)}
	}

	switch dtype {
	case tensor.Float32:
		values := make([]float32, len(fields))
		for i, f := range fields {
			v, err := strconv.ParseFloat(f, 32)
			if err != nil {
				return tensor.Data{}, fmt.Errorf("value %d: %w", i, err)
			}
			values[i] = float32(v)
		}
		return tensor.FromFloat32s(values, shape)
	case tensor.Float64:
		values := make([]float64, len(fields))
		for i, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return tensor.Data{}, fmt.Errorf("value %d: %w", i, err)
			}
			values[i] = v
		}
		return tensor.FromFloat64s(values, shape)
	case tensor.Int32:
		values := make([]int32, len(fields))
		for i, f := range fields {
			v, err := strconv.ParseInt(f, 10, 32)
			if err != nil {
				return tensor.Data{}, fmt.Errorf("value %d: %w", i, err)
			}
			values[i] = int32(v)
		}
		return tensor.FromInt32s(values, shape)
	case tensor.Int64:
		values := make([]int64, len(fields))
		for i, f := range fields {
			v, err := strconv.ParseInt(f, 10, 64)
			if err != nil {
				return tensor.Data{}, fmt.Errorf("value %d: %w", i, err)
			}
			values[i] = v
		}
		return tensor.FromInt64s(values, shape)
	case tensor.Uint8:
		values := make([]byte, len(fields))
		for i, f := range fields {
			v, err := strconv.ParseUint(f, 10, 8)
			if err != nil {
				return tensor.Data{}, fmt.Errorf("value %d: %w", i, err)
			}
			values[i] = uint8(v)
		}
		return tensor.NewData(tensor.Uint8, shape, values)
	case tensor.Bool:
		values := make([]bool, len(fields))
		for i, f := range fields {
			v, err := strconv.ParseBool(f)
			if err != nil {
				return tensor.Data{}, fmt.Errorf("value %d: %w", i, err)
			}
			values[i] = v
		}
		return tensor.FromBools(values, shape)
	default:
		return tensor.Data{}, fmt.Errorf("unsupported dtype %s", dtype)
	}
}

// decodeValues returns the elements of d as a typed slice for reports.
func decodeValues(d tensor.Data) any {
	switch d.DType {
	case tensor.Float32:
		return d.Float32s()
	case tensor.Float64:
		return d.Float64s()
	case tensor.Int32:
		return d.Int32s()
	case tensor.Int64:
		return d.Int64s()
	case tensor.Uint8:
		values := make([]int, len(d.Bytes))
		for i, b := range d.Bytes {
			values[i] = int(b)
		}
		return values
	case tensor.Bool:
		return d.Bools()
	default:
		return nil
	}
}
