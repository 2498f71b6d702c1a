//go:build windows

package webgpu

import (
	"testing"

	"github.com/born-ml/router/internal/bridge"
	"github.com/born-ml/router/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBackend(t *testing.T) *Backend {
	t.Helper()
	if !IsAvailable() {
		t.Skip("WebGPU not available")
	}
	b, err := New()
	require.NoError(t, err)
	t.Cleanup(b.Release)
	return b
}

func TestBackend_FloatRoundTrip(t *testing.T) {
	b := newTestBackend(t)

	data, err := tensor.FromFloat64s([]float64{1, 2.5, -3}, tensor.Shape{3})
	require.NoError(t, err)

	tt := b.FloatFromData(data, Device{})
	p := b.FloatIntoData(tt)
	out, err := tensor.ReadSync(p)
	require.NoError(t, err)
	assert.Equal(t, tensor.Float32, out.DType)
	assert.Equal(t, []float32{1, 2.5, -3}, out.Float32s())
	assert.Equal(t, int64(0), b.MemoryStats().ActiveBuffers)
}

func TestBackend_IntAndBool(t *testing.T) {
	b := newTestBackend(t)

	ints, err := tensor.FromInt64s([]int64{-1, 1 << 40}, tensor.Shape{2})
	require.NoError(t, err)
	h, err := b.FromData(ints, Device{})
	require.NoError(t, err)
	out, err := b.Read(h)
	require.NoError(t, err)
	assert.True(t, ints.Equal(out))
	b.ReleaseHandle(h)

	// 3 bytes, padded to 4 on the GPU.
	bools, err := tensor.FromBools([]bool{true, false, true}, tensor.Shape{3})
	require.NoError(t, err)
	tt := b.BoolTensor(bridge.TensorHandle[*Handle]{
		Handle: b.BoolTensorHandle(b.BoolFromData(bools, Device{})),
		Shape:  tensor.Shape{3},
	})
	out, err = tensor.ReadSync(b.BoolIntoData(tt))
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false, true}, out.Bools())
}

func TestBackend_BufferPoolReuse(t *testing.T) {
	b := newTestBackend(t)

	data, err := tensor.FromInt32s([]int32{1, 2, 3, 4}, tensor.Shape{4})
	require.NoError(t, err)
	h, err := b.FromData(data, Device{})
	require.NoError(t, err)
	defer b.ReleaseHandle(h)

	for range 3 {
		_, err := b.Read(h)
		require.NoError(t, err)
	}
	assert.Equal(t, PoolStats{Allocated: 1, Released: 3, Hits: 2, Misses: 1, Pooled: 1}, b.PoolStats())
}

func TestBackend_RejectedHandleIsFreed(t *testing.T) {
	b := newTestBackend(t)

	data, err := tensor.FromInt32s([]int32{1, 2}, tensor.Shape{2})
	require.NoError(t, err)
	h, err := b.FromData(data, Device{})
	require.NoError(t, err)

	assert.Panics(t, func() {
		b.FloatTensor(bridge.TensorHandle[*Handle]{Handle: h, Shape: tensor.Shape{2}})
	})
	assert.False(t, h.Live())
	assert.Equal(t, int64(0), b.MemoryStats().ActiveBuffers)
}

func TestBackend_PoolStatsAfterRelease(t *testing.T) {
	b := newTestBackend(t)
	b.Release()
	assert.Equal(t, PoolStats{}, b.PoolStats())
}

func TestBackend_SingleDevice(t *testing.T) {
	b := newTestBackend(t)

	data, err := tensor.FromInt32s([]int32{1}, tensor.Shape{1})
	require.NoError(t, err)
	_, err = b.FromData(data, Device{Index: 1})
	assert.Error(t, err)
}
