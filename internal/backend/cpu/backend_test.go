package cpu

import (
	"testing"

	"github.com/born-ml/router/internal/bridge"
	"github.com/born-ml/router/internal/parallel"
	"github.com/born-ml/router/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCPUBackend_New(t *testing.T) {
	b := New()
	assert.Equal(t, "cpu", b.Name())
	assert.Len(t, b.Devices(), DefaultDevices)

	b = New(WithDevices(4))
	assert.Len(t, b.Devices(), 4)
	assert.Equal(t, "cpu:3", b.Devices()[3].String())

	b = New(WithDevices(0))
	assert.Len(t, b.Devices(), 1)
}

func TestCPUBackend_IntoDataIsReady(t *testing.T) {
	b := New()
	h, err := b.FromFloat32s([]float32{1, 2, 3, 4}, tensor.Shape{2, 2}, Device{})
	require.NoError(t, err)

	tt := b.FloatTensor(bridge.TensorHandle[*Handle]{Handle: h, Shape: tensor.Shape{2, 2}})
	p := b.FloatIntoData(tt)
	require.True(t, p.Completed())

	data, err := p.Result()
	require.NoError(t, err)
	assert.Equal(t, tensor.Float32, data.DType)
	assert.Equal(t, tensor.Shape{2, 2}, data.Shape)
	assert.Equal(t, []float32{1, 2, 3, 4}, data.Float32s())

	// The source storage is released by the read.
	assert.Equal(t, int64(0), b.MemoryStats().ActiveBuffers)
}

func TestCPUBackend_ToDevice(t *testing.T) {
	b := New()
	h, err := b.FromInt64s([]int64{7, 8, 9}, tensor.Shape{3}, Device{Index: 0})
	require.NoError(t, err)

	tt := b.IntTensor(bridge.TensorHandle[*Handle]{Handle: h, Shape: tensor.Shape{3}})

	same := b.IntToDevice(tt, Device{Index: 0})
	assert.Same(t, tt, same)

	moved := b.IntToDevice(same, Device{Index: 1})
	assert.Equal(t, Device{Index: 1}, moved.Device())
	assert.Equal(t, int64(1), b.MemoryStats().ActiveBuffers)

	out := b.IntTensorHandle(moved)
	data, err := b.Read(out)
	require.NoError(t, err)
	assert.Equal(t, tensor.Int64, data.DType)
	assert.Equal(t, []int64{7, 8, 9}, data.Int64s())
	assert.Equal(t, Device{Index: 1}, out.Device())

	b.ReleaseHandle(out)
	assert.Equal(t, int64(0), b.MemoryStats().ActiveBuffers)
}

func TestCPUBackend_ToDeviceParallelCopy(t *testing.T) {
	b := New(WithCopyConfig(parallel.Config{Enabled: true, NumWorkers: 4, MinChunkSize: 64}))
	values := make([]float32, 4096)
	for i := range values {
		values[i] = float32(i) / 3
	}
	shape := tensor.Shape{64, 64}
	h, err := b.FromFloat32s(values, shape, Device{Index: 0})
	require.NoError(t, err)

	tt := b.FloatTensor(bridge.TensorHandle[*Handle]{Handle: h, Shape: shape})
	moved := b.FloatToDevice(tt, Device{Index: 1})
	data, err := b.FloatIntoData(moved).Result()
	require.NoError(t, err)
	assert.Equal(t, values, data.Float32s())
	assert.Equal(t, shape, data.Shape)

	stats := b.MemoryStats()
	assert.Equal(t, int64(0), stats.ActiveBuffers)
	assert.Equal(t, uint64(2*4096*4), stats.TotalAllocatedBytes)
}

func TestCPUBackend_FromDataKeepsDType(t *testing.T) {
	b := New()
	tests := []struct {
		name string
		kind tensor.Kind
		data func() (tensor.Data, error)
	}{
		{"float64", tensor.KindFloat, func() (tensor.Data, error) {
			return tensor.FromFloat64s([]float64{0.1, 0.2}, tensor.Shape{2})
		}},
		{"int32", tensor.KindInt, func() (tensor.Data, error) {
			return tensor.FromInt32s([]int32{-1, 1}, tensor.Shape{2})
		}},
		{"bool", tensor.KindBool, func() (tensor.Data, error) {
			return tensor.FromBools([]bool{true, false}, tensor.Shape{2})
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, err := tt.data()
			require.NoError(t, err)

			var h *Handle
			switch tt.kind {
			case tensor.KindFloat:
				h = b.FloatTensorHandle(b.FloatFromData(in, Device{}))
			case tensor.KindInt:
				h = b.IntTensorHandle(b.IntFromData(in, Device{}))
			case tensor.KindBool:
				h = b.BoolTensorHandle(b.BoolFromData(in, Device{}))
			}
			out, err := b.Read(h)
			require.NoError(t, err)
			assert.True(t, in.Equal(out), "got %v want %v", out, in)
			b.ReleaseHandle(h)
		})
	}
}

func TestCPUBackend_Panics(t *testing.T) {
	b := New()

	t.Run("HandleReuse", func(t *testing.T) {
		h, err := b.FromBools([]bool{true}, tensor.Shape{1}, Device{})
		require.NoError(t, err)
		th := bridge.TensorHandle[*Handle]{Handle: h, Shape: tensor.Shape{1}}
		b.BoolTensorHandle(b.BoolTensor(th))
		assert.PanicsWithValue(t, "cpu: use of released handle", func() { b.BoolTensor(th) })
	})

	t.Run("WrongKind", func(t *testing.T) {
		h, err := b.FromInt32s([]int32{1}, tensor.Shape{1}, Device{})
		require.NoError(t, err)
		assert.Panics(t, func() {
			b.FloatTensor(bridge.TensorHandle[*Handle]{Handle: h, Shape: tensor.Shape{1}})
		})
	})

	t.Run("WrongDataKind", func(t *testing.T) {
		data, err := tensor.FromBools([]bool{true}, tensor.Shape{1})
		require.NoError(t, err)
		assert.Panics(t, func() { b.FloatFromData(data, Device{}) })
	})

	t.Run("DeviceOutOfRange", func(t *testing.T) {
		data, err := tensor.FromFloat32s([]float32{1}, tensor.Shape{1})
		require.NoError(t, err)
		assert.Panics(t, func() { b.FloatFromData(data, Device{Index: 9}) })
	})
}

func TestCPUBackend_ReadReleased(t *testing.T) {
	b := New()
	h, err := b.FromFloat64s([]float64{1}, tensor.Shape{}, Device{})
	require.NoError(t, err)
	b.ReleaseHandle(h)

	assert.False(t, h.Live())
	_, err = b.Read(h)
	assert.Error(t, err)
}

func TestCPUBackend_FromDataErrors(t *testing.T) {
	b := New()
	_, err := b.FromFloat32s([]float32{1, 2, 3}, tensor.Shape{2, 2}, Device{})
	assert.ErrorIs(t, err, tensor.ErrShapeMismatch)

	_, err = b.FromFloat32s([]float32{1}, tensor.Shape{1}, Device{Index: 5})
	assert.Error(t, err)
}

func TestHostFeatures(t *testing.T) {
	f := HostFeatures()
	assert.NotEmpty(t, f.Arch)
	assert.Contains(t, f.String(), f.Arch)
}
