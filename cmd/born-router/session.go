package main

import (
	"fmt"
	"time"

	"github.com/born-ml/router/internal/backend/cpu"
	"github.com/born-ml/router/internal/backend/mock"
	"github.com/born-ml/router/internal/backend/stats"
	"github.com/born-ml/router/internal/backend/webgpu"
	"github.com/born-ml/router/internal/bridge"
	"github.com/born-ml/router/internal/logger"
	"github.com/born-ml/router/internal/tensor"
)

// acceleratorBackend is what the CLI needs from the backend paired with the
// CPU: the bridge capabilities plus upload, read-back and accounting.
type acceleratorBackend[H, P, D any] interface {
	bridge.Backend[H, P, D]
	Devices() []D
	FromData(data tensor.Data, device D) (H, error)
	Read(h H) (tensor.Data, error)
	ReleaseHandle(h H)
	MemoryStats() stats.MemoryStats
	Release()
}

// router runs transfers over one cpu + accelerator bridge.
type router interface {
	Name() string
	Backends() []backendInfo
	Transfer(req transferRequest) (transferResult, error)
	Close()
}

type transferRequest struct {
	Kind      tensor.Kind
	Data      tensor.Data
	From      tensor.DeviceID
	To        tensor.DeviceID
	RoundTrip bool
}

type hop struct {
	From    string        `json:"from"`
	To      string        `json:"to"`
	Route   string        `json:"route"`
	Elapsed time.Duration `json:"elapsed_ns"`
}

type transferResult struct {
	Hops []hop
	Data tensor.Data
}

type backendInfo struct {
	Name    string            `json:"name"`
	Devices []string          `json:"devices"`
	Details map[string]string `json:"details,omitempty"`
	Memory  stats.MemoryStats `json:"memory"`
}

type session[H2, P2, D2 any] struct {
	host      *cpu.CPUBackend
	accel     acceleratorBackend[H2, P2, D2]
	accelKind tensor.DeviceKind
	device    func(index int) D2
	details   func() map[string]string
	bridge    *bridge.ByteBridge[*cpu.Handle, *cpu.Tensor, cpu.Device, H2, P2, D2]
}

func newSession[H2, P2, D2 any](
	host *cpu.CPUBackend, accel acceleratorBackend[H2, P2, D2],
	kind tensor.DeviceKind, device func(int) D2, log logger.Logger,
) *session[H2, P2, D2] {
	b := bridge.NewByteBridge[*cpu.Handle, *cpu.Tensor, cpu.Device, H2, P2, D2](
		host, accel, bridge.WithLogger(log))
	return &session[H2, P2, D2]{
		host:      host,
		accel:     accel,
		accelKind: kind,
		device:    device,
		bridge:    b,
	}
}

// openRouter pairs the CPU backend with the named accelerator.
func openRouter(name string, log logger.Logger) (router, error) {
	host := cpu.New()
	switch name {
	case "", "mock":
		accel := mock.New(mock.WithDevices(mockDevices), mock.WithLatency(mockLatency))
		s := newSession(host, acceleratorBackend[*mock.Handle, *mock.Tensor, mock.Device](accel),
			tensor.Mock, func(i int) mock.Device { return mock.Device{Index: i} }, log)
		s.details = func() map[string]string {
			return map[string]string{"latency": accel.Latency().String()}
		}
		return s, nil
	case "webgpu":
		accel, err := webgpu.New()
		if err != nil {
			return nil, fmt.Errorf("open webgpu backend: %w", err)
		}
		s := newSession(host, acceleratorBackend[*webgpu.Handle, *webgpu.Tensor, webgpu.Device](accel),
			tensor.WebGPU, func(i int) webgpu.Device { return webgpu.Device{Index: i} }, log)
		s.details = func() map[string]string {
			return map[string]string{"staging": accel.PoolStats().String()}
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown accelerator %q (expected mock or webgpu)", name)
	}
}

func (s *session[H2, P2, D2]) Name() string {
	return s.bridge.Name()
}

func (s *session[H2, P2, D2]) Backends() []backendInfo {
	hostDevices := s.host.Devices()
	host := backendInfo{
		Name:    s.host.Name(),
		Devices: make([]string, len(hostDevices)),
		Details: map[string]string{"features": cpu.HostFeatures().String()},
		Memory:  s.host.MemoryStats(),
	}
	for i, d := range hostDevices {
		host.Devices[i] = d.String()
	}

	accelDevices := s.accel.Devices()
	accel := backendInfo{
		Name:    s.accel.Name(),
		Devices: make([]string, len(accelDevices)),
		Details: s.details(),
		Memory:  s.accel.MemoryStats(),
	}
	for i, d := range accelDevices {
		accel.Devices[i] = fmt.Sprint(d)
	}
	return []backendInfo{host, accel}
}

func (s *session[H2, P2, D2]) Close() {
	s.accel.Release()
}

// resolve maps a device id onto the tagged device of the backend owning it.
func (s *session[H2, P2, D2]) resolve(id tensor.DeviceID) (bridge.Device2[cpu.Device, D2], error) {
	switch id.Kind {
	case tensor.CPU:
		if id.Index < 0 || id.Index >= len(s.host.Devices()) {
			return bridge.Device2[cpu.Device, D2]{}, fmt.Errorf("device %s out of range (%d cpu devices)", id, len(s.host.Devices()))
		}
		return s.bridge.Device1(cpu.Device{Index: id.Index}), nil
	case s.accelKind:
		if id.Index < 0 || id.Index >= len(s.accel.Devices()) {
			return bridge.Device2[cpu.Device, D2]{}, fmt.Errorf("device %s out of range (%d %s devices)", id, len(s.accel.Devices()), s.accelKind)
		}
		return s.bridge.Device2(s.device(id.Index)), nil
	default:
		return bridge.Device2[cpu.Device, D2]{}, fmt.Errorf("device %s is not served by %s", id, s.bridge.Name())
	}
}

func (s *session[H2, P2, D2]) put(data tensor.Data, target bridge.Device2[cpu.Device, D2]) (bridge.Handle2[*cpu.Handle, H2], error) {
	type result struct {
		h   bridge.Handle2[*cpu.Handle, H2]
		err error
	}
	r := bridge.MatchDevice(target,
		func(d cpu.Device) result {
			h, err := s.host.FromData(data, d)
			return result{s.bridge.Handle1(h), err}
		},
		func(d D2) result {
			h, err := s.accel.FromData(data, d)
			return result{s.bridge.Handle2(h), err}
		},
	)
	return r.h, r.err
}

// collect reads h back to the host and releases it.
func (s *session[H2, P2, D2]) collect(h bridge.Handle2[*cpu.Handle, H2]) (tensor.Data, error) {
	var err error
	data := bridge.MatchHandle(h,
		func(h *cpu.Handle) tensor.Data {
			defer s.host.ReleaseHandle(h)
			var d tensor.Data
			d, err = s.host.Read(h)
			return d
		},
		func(h H2) tensor.Data {
			defer s.accel.ReleaseHandle(h)
			var d tensor.Data
			d, err = s.accel.Read(h)
			return d
		},
	)
	return data, err
}

// Transfer uploads req.Data to req.From, moves it to req.To (and back when
// req.RoundTrip is set), and reads the result back.
func (s *session[H2, P2, D2]) Transfer(req transferRequest) (res transferResult, err error) {
	from, err := s.resolve(req.From)
	if err != nil {
		return res, err
	}
	to, err := s.resolve(req.To)
	if err != nil {
		return res, err
	}

	h, err := s.put(req.Data, from)
	if err != nil {
		return res, fmt.Errorf("upload to %s: %w", req.From, err)
	}

	// The bridge reports transfer failures by panicking.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("transfer %s -> %s: %v", req.From, req.To, r)
		}
	}()

	move := func(src, dst tensor.DeviceID, target bridge.Device2[cpu.Device, D2]) {
		route := s.bridge.Route(h, target)
		start := time.Now()
		h = s.bridge.ChangeBackend(req.Kind, h, req.Data.Shape, target)
		res.Hops = append(res.Hops, hop{
			From:    src.String(),
			To:      dst.String(),
			Route:   route.String(),
			Elapsed: time.Since(start),
		})
	}
	move(req.From, req.To, to)
	if req.RoundTrip {
		move(req.To, req.From, from)
	}

	res.Data, err = s.collect(h)
	if err != nil {
		return res, fmt.Errorf("read back: %w", err)
	}
	return res, nil
}
