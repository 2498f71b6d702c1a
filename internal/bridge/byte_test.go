package bridge_test

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/born-ml/router/internal/backend/cpu"
	"github.com/born-ml/router/internal/backend/mock"
	"github.com/born-ml/router/internal/bridge"
	"github.com/born-ml/router/internal/logger"
	"github.com/born-ml/router/internal/tensor"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

type (
	cpuMockBridge = bridge.ByteBridge[*cpu.Handle, *cpu.Tensor, cpu.Device, *mock.Handle, *mock.Tensor, mock.Device]
	handle        = bridge.Handle2[*cpu.Handle, *mock.Handle]
	device        = bridge.Device2[cpu.Device, mock.Device]
)

type fixture struct {
	b     *cpuMockBridge
	host  *cpu.CPUBackend
	accel *mock.Backend
}

func newFixture(t *testing.T, opts ...bridge.Option) *fixture {
	t.Helper()
	host := cpu.New()
	accel := mock.New(mock.WithLatency(time.Millisecond))
	t.Cleanup(accel.Release)

	b := bridge.NewByteBridge[*cpu.Handle, *cpu.Tensor, cpu.Device, *mock.Handle, *mock.Tensor, mock.Device](
		host, accel, opts...)
	return &fixture{b: b, host: host, accel: accel}
}

// put stores data on the backend selected by tag, device 0.
func (f *fixture) put(t *testing.T, tag bridge.Tag, data tensor.Data) handle {
	t.Helper()
	h, err := f.tryPut(tag, data)
	require.NoError(t, err)
	return h
}

func (f *fixture) tryPut(tag bridge.Tag, data tensor.Data) (handle, error) {
	if tag == bridge.Backend1 {
		h, err := f.host.FromData(data, cpu.Device{})
		return f.b.Handle1(h), err
	}
	h, err := f.accel.FromData(data, mock.Device{})
	return f.b.Handle2(h), err
}

// target returns device 1 of the backend selected by tag.
func (f *fixture) target(tag bridge.Tag) device {
	if tag == bridge.Backend1 {
		return f.b.Device1(cpu.Device{Index: 1})
	}
	return f.b.Device2(mock.Device{Index: 1})
}

func (f *fixture) read(t *testing.T, h handle) tensor.Data {
	t.Helper()
	data, err := f.tryRead(h)
	require.NoError(t, err)
	return data
}

func (f *fixture) tryRead(h handle) (tensor.Data, error) {
	var err error
	data := bridge.MatchHandle(h,
		func(h *cpu.Handle) tensor.Data {
			var d tensor.Data
			d, err = f.host.Read(h)
			return d
		},
		func(h *mock.Handle) tensor.Data {
			var d tensor.Data
			d, err = f.accel.Read(h)
			return d
		},
	)
	return data, err
}

func (f *fixture) live(h handle) bool {
	return bridge.MatchHandle(h, (*cpu.Handle).Live, (*mock.Handle).Live)
}

func (f *fixture) release(h handle) {
	bridge.MatchHandle(h,
		func(h *cpu.Handle) struct{} { f.host.ReleaseHandle(h); return struct{}{} },
		func(h *mock.Handle) struct{} { f.accel.ReleaseHandle(h); return struct{}{} },
	)
}

func (f *fixture) activeBuffers() int64 {
	f.accel.Sync()
	return f.host.MemoryStats().ActiveBuffers + f.accel.MemoryStats().ActiveBuffers
}

func sample(t *testing.T, kind tensor.Kind, shape tensor.Shape) tensor.Data {
	t.Helper()
	n := shape.NumElements()
	var (
		data tensor.Data
		err  error
	)
	switch kind {
	case tensor.KindFloat:
		values := make([]float32, n)
		for i := range values {
			values[i] = float32(i)*1.5 - 2
		}
		data, err = tensor.FromFloat32s(values, shape)
	case tensor.KindInt:
		values := make([]int64, n)
		for i := range values {
			values[i] = int64(i*7) - 3
		}
		data, err = tensor.FromInt64s(values, shape)
	case tensor.KindBool:
		values := make([]bool, n)
		for i := range values {
			values[i] = i%3 == 0
		}
		data, err = tensor.FromBools(values, shape)
	}
	require.NoError(t, err)
	return data
}

var (
	kinds = []tensor.Kind{tensor.KindFloat, tensor.KindInt, tensor.KindBool}
	tags  = []bridge.Tag{bridge.Backend1, bridge.Backend2}
)

func TestByteBridge_AllPaths(t *testing.T) {
	shapes := []tensor.Shape{{2, 3}, {}, {0, 4}, {1, 1, 5}}

	for _, kind := range kinds {
		for _, from := range tags {
			for _, to := range tags {
				for _, shape := range shapes {
					name := fmt.Sprintf("%s/%s->%s/%v", kind, from, to, shape)
					t.Run(name, func(t *testing.T) {
						f := newFixture(t)
						in := sample(t, kind, shape)
						src := f.put(t, from, in)
						dst := f.target(to)

						wantRoute := bridge.CrossBackend
						if from == to {
							wantRoute = bridge.SameBackend
						}
						assert.Equal(t, wantRoute, f.b.Route(src, dst))

						out := f.b.ChangeBackend(kind, src, shape, dst)

						assert.Equal(t, to, out.Tag())
						assert.False(t, f.live(src), "source handle must be spent")

						got := f.read(t, out)
						assert.True(t, got.Shape.Equal(shape), "shape %v, want %v", got.Shape, shape)
						assert.Equal(t, kind, got.Kind())
						assert.True(t, in.Equal(got), "got %v want %v", got, in)

						f.release(out)
						assert.Equal(t, int64(0), f.activeBuffers())
					})
				}
			}
		}
	}
}

func TestByteBridge_ScenarioFloatAcross(t *testing.T) {
	f := newFixture(t)
	in, err := tensor.FromFloat32s([]float32{1, 2, 3, 4}, tensor.Shape{4})
	require.NoError(t, err)

	out := f.b.ChangeBackendFloat(f.put(t, bridge.Backend1, in), tensor.Shape{4}, f.target(bridge.Backend2))
	got := f.read(t, out)
	assert.Equal(t, []float32{1, 2, 3, 4}, got.Float32s())
}

func TestByteBridge_ScenarioBoolRoundTrip(t *testing.T) {
	f := newFixture(t)
	in, err := tensor.FromBools([]bool{true, false}, tensor.Shape{2})
	require.NoError(t, err)

	h := f.put(t, bridge.Backend1, in)
	h = f.b.ChangeBackendBool(h, tensor.Shape{2}, f.target(bridge.Backend2))
	h = f.b.ChangeBackendBool(h, tensor.Shape{2}, f.b.Device1(cpu.Device{}))

	assert.Equal(t, bridge.Backend1, h.Tag())
	assert.Equal(t, []bool{true, false}, f.read(t, h).Bools())
}

func TestByteBridge_ScenarioIntAcross(t *testing.T) {
	f := newFixture(t)
	in, err := tensor.FromInt32s([]int32{5, -3, 0}, tensor.Shape{3})
	require.NoError(t, err)

	out := f.b.ChangeBackendInt(f.put(t, bridge.Backend2, in), tensor.Shape{3}, f.target(bridge.Backend1))

	assert.Equal(t, bridge.Backend1, out.Tag())
	got := f.read(t, out)
	assert.Equal(t, tensor.Shape{3}, got.Shape)
	assert.Equal(t, []int32{5, -3, 0}, got.Int32s())
}

func TestByteBridge_RoundTrip(t *testing.T) {
	shape := tensor.Shape{3, 2}
	for _, kind := range kinds {
		for _, from := range tags {
			t.Run(fmt.Sprintf("%s/%s", kind, from), func(t *testing.T) {
				f := newFixture(t)
				in := sample(t, kind, shape)

				other := bridge.Backend2
				home := f.b.Device1(cpu.Device{})
				if from == bridge.Backend2 {
					other = bridge.Backend1
					home = f.b.Device2(mock.Device{})
				}

				h := f.put(t, from, in)
				h = f.b.ChangeBackend(kind, h, shape, f.target(other))
				h = f.b.ChangeBackend(kind, h, shape, home)

				assert.Equal(t, from, h.Tag())
				assert.True(t, in.Equal(f.read(t, h)))
			})
		}
	}
}

func TestByteBridge_SameDeviceIdempotent(t *testing.T) {
	shape := tensor.Shape{4}
	for _, kind := range kinds {
		t.Run(kind.String(), func(t *testing.T) {
			f := newFixture(t)
			in := sample(t, kind, shape)

			h := f.put(t, bridge.Backend1, in)
			h = f.b.ChangeBackend(kind, h, shape, f.b.Device1(cpu.Device{}))
			assert.True(t, in.Equal(f.read(t, h)))

			h = f.put(t, bridge.Backend2, in)
			h = f.b.ChangeBackend(kind, h, shape, f.b.Device2(mock.Device{}))
			assert.True(t, in.Equal(f.read(t, h)))
		})
	}
}

func TestByteBridge_FloatNarrowing(t *testing.T) {
	f := newFixture(t)
	in, err := tensor.FromFloat64s([]float64{0.1, 1.0 / 3, -7.25}, tensor.Shape{3})
	require.NoError(t, err)

	h := f.put(t, bridge.Backend1, in)
	h = f.b.ChangeBackendFloat(h, tensor.Shape{3}, f.target(bridge.Backend2))
	h = f.b.ChangeBackendFloat(h, tensor.Shape{3}, f.b.Device1(cpu.Device{}))

	got := f.read(t, h)
	assert.Equal(t, tensor.Float32, got.DType)
	assert.True(t, in.ApproxEqual(got, 1e-6))
}

func TestByteBridge_KindIsolation(t *testing.T) {
	f := newFixture(t)
	ints := sample(t, tensor.KindInt, tensor.Shape{3})
	bools := sample(t, tensor.KindBool, tensor.Shape{3})

	hi := f.put(t, bridge.Backend1, ints)
	hb := f.put(t, bridge.Backend1, bools)
	hf := f.put(t, bridge.Backend1, sample(t, tensor.KindFloat, tensor.Shape{3}))

	f.b.ChangeBackendFloat(hf, tensor.Shape{3}, f.target(bridge.Backend2))

	assert.True(t, ints.Equal(f.read(t, hi)))
	assert.True(t, bools.Equal(f.read(t, hb)))
}

func TestByteBridge_WrongKindPanics(t *testing.T) {
	f := newFixture(t)
	h := f.put(t, bridge.Backend1, sample(t, tensor.KindInt, tensor.Shape{2}))
	assert.Panics(t, func() {
		f.b.ChangeBackendFloat(h, tensor.Shape{2}, f.target(bridge.Backend2))
	})
}

func TestByteBridge_HandleReusePanics(t *testing.T) {
	f := newFixture(t)
	h := f.put(t, bridge.Backend2, sample(t, tensor.KindBool, tensor.Shape{2}))
	f.b.ChangeBackendBool(h, tensor.Shape{2}, f.target(bridge.Backend1))

	assert.PanicsWithValue(t, "mock: use of released handle", func() {
		f.b.ChangeBackendBool(h, tensor.Shape{2}, f.target(bridge.Backend1))
	})
}

func TestByteBridge_ZeroHandlePanics(t *testing.T) {
	f := newFixture(t)
	assert.Panics(t, func() {
		f.b.ChangeBackendFloat(handle{}, tensor.Shape{1}, f.target(bridge.Backend1))
	})
	assert.Panics(t, func() {
		f.b.ChangeBackendFloat(f.put(t, bridge.Backend1, sample(t, tensor.KindFloat, tensor.Shape{1})),
			tensor.Shape{1}, device{})
	})
}

func TestByteBridge_Accessors(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, "bridge<cpu, mock>", f.b.Name())
	assert.Same(t, f.host, f.b.Backend1())
	assert.Same(t, f.accel, f.b.Backend2())
}

func TestByteBridge_UnknownKindPanics(t *testing.T) {
	f := newFixture(t)
	h := f.put(t, bridge.Backend1, sample(t, tensor.KindFloat, tensor.Shape{1}))
	assert.Panics(t, func() {
		f.b.ChangeBackend(tensor.Kind(42), h, tensor.Shape{1}, f.target(bridge.Backend2))
	})
}

// Two instances of the same backend type bridged to each other.
func TestByteBridge_SameBackendType(t *testing.T) {
	left, right := cpu.New(), cpu.New(cpu.WithDevices(1))
	b := bridge.NewByteBridge[*cpu.Handle, *cpu.Tensor, cpu.Device, *cpu.Handle, *cpu.Tensor, cpu.Device](left, right)
	assert.Equal(t, "bridge<cpu, cpu>", b.Name())

	in := sample(t, tensor.KindInt, tensor.Shape{2, 2})
	h, err := left.FromData(in, cpu.Device{Index: 1})
	require.NoError(t, err)

	out := b.ChangeBackendInt(b.Handle1(h), tensor.Shape{2, 2}, b.Device2(cpu.Device{}))
	rh, ok := out.Handle2()
	require.True(t, ok)

	got, err := right.Read(rh)
	require.NoError(t, err)
	assert.True(t, in.Equal(got))
	assert.Equal(t, int64(0), left.MemoryStats().ActiveBuffers)
	assert.Equal(t, int64(1), right.MemoryStats().ActiveBuffers)
}

// failingBackend is a cpu backend whose float reads fail.
type failingBackend struct {
	*cpu.CPUBackend
	err error
}

func (b failingBackend) FloatIntoData(t *cpu.Tensor) *tensor.Pending {
	b.CPUBackend.FloatIntoData(t)
	return tensor.Failed(b.err)
}

func TestByteBridge_ReadErrorPanics(t *testing.T) {
	readErr := errors.New("device lost")
	host := failingBackend{CPUBackend: cpu.New(), err: readErr}
	accel := mock.New()
	t.Cleanup(accel.Release)

	b := bridge.NewByteBridge[*cpu.Handle, *cpu.Tensor, cpu.Device, *mock.Handle, *mock.Tensor, mock.Device](host, accel)
	in := sample(t, tensor.KindFloat, tensor.Shape{2})
	h, err := host.FromData(in, cpu.Device{})
	require.NoError(t, err)

	assert.PanicsWithError(t, "device lost", func() {
		b.ChangeBackendFloat(b.Handle1(h), tensor.Shape{2}, b.Device2(mock.Device{}))
	})

	// Same-backend moves never read, so they are unaffected.
	h, err = host.FromData(in, cpu.Device{})
	require.NoError(t, err)
	out := b.ChangeBackendFloat(b.Handle1(h), tensor.Shape{2}, b.Device1(cpu.Device{Index: 1}))
	assert.Equal(t, bridge.Backend1, out.Tag())
}

func TestByteBridge_Concurrent(t *testing.T) {
	f := newFixture(t)
	shape := tensor.Shape{8}

	const calls = 32
	inputs := make([]tensor.Data, calls)
	for i := range inputs {
		inputs[i] = sample(t, kinds[i%len(kinds)], shape)
	}

	var g errgroup.Group
	for i := range calls {
		in := inputs[i]
		from := tags[i%2]
		to := tags[(i/2)%2]
		g.Go(func() error {
			src, err := f.tryPut(from, in)
			if err != nil {
				return err
			}
			out := f.b.ChangeBackend(in.Kind(), src, shape, f.target(to))
			if out.Tag() != to {
				return fmt.Errorf("call %d: tag %s, want %s", i, out.Tag(), to)
			}
			data, err := f.tryRead(out)
			if err != nil {
				return err
			}
			if !in.Equal(data) {
				return fmt.Errorf("call %d: got %v want %v", i, data, in)
			}
			f.release(out)
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.Equal(t, int64(0), f.activeBuffers())
}

func TestByteBridge_DebugLog(t *testing.T) {
	var buf bytes.Buffer
	f := newFixture(t, bridge.WithLogger(logger.JSON(&buf, slog.LevelDebug)))

	h := f.put(t, bridge.Backend1, sample(t, tensor.KindFloat, tensor.Shape{2, 2}))
	f.b.ChangeBackendFloat(h, tensor.Shape{2, 2}, f.target(bridge.Backend2))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "change backend", rec["msg"])
	assert.Equal(t, "float", rec["kind"])
	assert.Equal(t, "cross-backend", rec["route"])
	assert.Equal(t, "backend1", rec["from"])
	assert.Equal(t, "backend2(mock:1)", rec["to"])
	assert.Equal(t, "[2, 2]", rec["shape"])
}

func TestByteBridge_QuietByDefault(t *testing.T) {
	var buf bytes.Buffer
	f := newFixture(t, bridge.WithLogger(logger.JSON(&buf, slog.LevelInfo)))

	h := f.put(t, bridge.Backend1, sample(t, tensor.KindBool, tensor.Shape{1}))
	f.b.ChangeBackendBool(h, tensor.Shape{1}, f.target(bridge.Backend1))
	assert.Empty(t, buf.String())
}
