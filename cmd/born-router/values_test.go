package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/router/internal/tensor"
)

func TestParseDType(t *testing.T) {
	tests := []struct {
		name string
		kind tensor.Kind
		want tensor.DataType
	}{
		{"", tensor.KindFloat, tensor.Float32},
		{"", tensor.KindInt, tensor.Int32},
		{"", tensor.KindBool, tensor.Bool},
		{"float64", tensor.KindFloat, tensor.Float64},
		{"i64", tensor.KindInt, tensor.Int64},
		{"uint8", tensor.KindInt, tensor.Uint8},
	}
	for _, tt := range tests {
		got, err := parseDType(tt.name, tt.kind)
		require.NoError(t, err, tt.name)
		assert.Equal(t, tt.want, got, tt.name)
	}

	_, err := parseDType("float32", tensor.KindInt)
	assert.Error(t, err)
	_, err = parseDType("complex64", tensor.KindFloat)
	assert.Error(t, err)
}

func TestParseValues(t *testing.T) {
	d, err := parseValues(tensor.Float32, "1, 2.5, -3", nil)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{3}, d.Shape)
	assert.Equal(t, []float32{1, 2.5, -3}, d.Float32s())

	d, err = parseValues(tensor.Int64, "1,2,3,4,5,6", tensor.Shape{2, 3})
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{2, 3}, d.Shape)
	assert.Equal(t, []int64{1, 2, 3, 4, 5, 6}, d.Int64s())

	d, err = parseValues(tensor.Bool, "true,0,1,false", nil)
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false, true, false}, d.Bools())

	d, err = parseValues(tensor.Int32, "7", tensor.Shape{})
	require.NoError(t, err)
	assert.Empty(t, d.Shape)
	assert.Equal(t, []int32{7}, d.Int32s())

	d, err = parseValues(tensor.Float64, "", nil)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{0}, d.Shape)
	assert.Empty(t, d.Bytes)
}

func TestParseValuesErrors(t *testing.T) {
	_, err := parseValues(tensor.Int32, "1,x", nil)
	assert.Error(t, err)

	_, err = parseValues(tensor.Uint8, "256", nil)
	assert.Error(t, err)

	_, err = parseValues(tensor.Float32, "1,2,3", tensor.Shape{2, 2})
	assert.ErrorIs(t, err, tensor.ErrShapeMismatch)
}

func TestDecodeValues(t *testing.T) {
	d, err := tensor.NewData(tensor.Uint8, tensor.Shape{2}, []byte{3, 255})
	require.NoError(t, err)
	assert.Equal(t, []int{3, 255}, decodeValues(d))

	d, err = tensor.FromInt32s([]int32{-1}, tensor.Shape{1})
	require.NoError(t, err)
	assert.Equal(t, []int32{-1}, decodeValues(d))
}
