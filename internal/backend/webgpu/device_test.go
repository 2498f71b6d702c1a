package webgpu

import (
	"testing"

	"github.com/born-ml/router/internal/tensor"
	"github.com/stretchr/testify/assert"
)

func TestDevice_String(t *testing.T) {
	assert.Equal(t, "webgpu:0", Device{}.String())
	assert.Equal(t, tensor.DeviceID{Kind: tensor.WebGPU, Index: 1}, Device{Index: 1}.ID())
}

func TestPoolStats_String(t *testing.T) {
	s := PoolStats{Allocated: 2, Released: 5, Hits: 3, Misses: 2, Pooled: 1}
	assert.Equal(t, "1 pooled, 3 hits, 2 misses, 2 allocated, 5 released", s.String())
}

func TestNativeDType(t *testing.T) {
	assert.Equal(t, tensor.Float32, nativeDType(tensor.Float64))
	assert.Equal(t, tensor.Float32, nativeDType(tensor.Float32))
	assert.Equal(t, tensor.Int64, nativeDType(tensor.Int64))
	assert.Equal(t, tensor.Bool, nativeDType(tensor.Bool))
}

func TestBufferSize(t *testing.T) {
	tests := []struct {
		n    int
		want uint64
	}{
		{0, 4},
		{1, 4},
		{4, 4},
		{5, 8},
		{24, 24},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, bufferSize(tt.n), "bufferSize(%d)", tt.n)
	}
}
