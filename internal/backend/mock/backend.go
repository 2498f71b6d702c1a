// Package mock implements an in-process accelerator backend for tests and
// GPU-less hosts.
//
// Every device owns a command queue served by its own goroutine. Uploads,
// device moves and reads are queued and run in submission order, so reads
// complete asynchronously just like on a real accelerator. Floats are stored
// as float32.
package mock

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/born-ml/router/internal/backend/stats"
	"github.com/born-ml/router/internal/tensor"
)

// DefaultDevices is the number of simulated devices unless configured otherwise.
const DefaultDevices = 2

// Device selects one simulated accelerator.
type Device struct {
	Index int
}

// ID returns the device identifier.
func (d Device) ID() tensor.DeviceID {
	return tensor.DeviceID{Kind: tensor.Mock, Index: d.Index}
}

// String returns "mock:<index>".
func (d Device) String() string {
	return d.ID().String()
}

// Backend is the simulated accelerator backend.
type Backend struct {
	queues   []*queue
	latency  time.Duration
	memory   stats.Tracker
	released atomic.Bool
}

// Option configures a Backend.
type Option func(*config)

type config struct {
	devices int
	latency time.Duration
}

// WithDevices sets the number of simulated devices (minimum 1).
func WithDevices(n int) Option {
	return func(c *config) {
		if n < 1 {
			n = 1
		}
		c.devices = n
	}
}

// WithLatency adds a fixed delay to every queued upload, move and read.
func WithLatency(d time.Duration) Option {
	return func(c *config) {
		c.latency = d
	}
}

// New creates a mock accelerator and starts one queue per device.
// Call Release to stop the queues.
func New(opts ...Option) *Backend {
	cfg := config{devices: DefaultDevices}
	for _, opt := range opts {
		opt(&cfg)
	}

	b := &Backend{latency: cfg.latency}
	b.queues = make([]*queue, cfg.devices)
	for i := range b.queues {
		b.queues[i] = newQueue()
	}
	return b
}

// Name returns the backend name.
func (b *Backend) Name() string {
	return "mock"
}

// Devices returns the simulated devices.
func (b *Backend) Devices() []Device {
	out := make([]Device, len(b.queues))
	for i := range out {
		out[i] = Device{Index: i}
	}
	return out
}

// Latency returns the configured per-command delay.
func (b *Backend) Latency() time.Duration {
	return b.latency
}

// MemoryStats returns device buffer statistics.
func (b *Backend) MemoryStats() stats.MemoryStats {
	return b.memory.Snapshot()
}

// Sync blocks until every command queued so far has run.
func (b *Backend) Sync() {
	var wg sync.WaitGroup
	for i := range b.queues {
		wg.Add(1)
		b.submit("sync", Device{Index: i}, wg.Done)
	}
	wg.Wait()
}

// Release waits for queued commands to finish and stops the device queues.
// Calling it more than once is a no-op. It must not race with other calls.
func (b *Backend) Release() {
	if !b.released.CompareAndSwap(false, true) {
		return
	}
	for _, q := range b.queues {
		q.stop()
	}
}

// submit queues fn on device d.
func (b *Backend) submit(op string, d Device, fn func()) {
	if b.released.Load() {
		panic(fmt.Sprintf("mock: %s: backend released", op))
	}
	b.checkDevice(op, d)
	b.queues[d.Index].push(fn)
}

func (b *Backend) checkDevice(op string, d Device) {
	if d.Index < 0 || d.Index >= len(b.queues) {
		panic(fmt.Sprintf("mock: %s: device %s out of range (%d devices)", op, d, len(b.queues)))
	}
}

func (b *Backend) delay() {
	if b.latency > 0 {
		time.Sleep(b.latency)
	}
}

// queue runs commands for one device in submission order.
type queue struct {
	cmds chan func()
	wg   sync.WaitGroup
}

func newQueue() *queue {
	q := &queue{cmds: make(chan func(), 64)}
	q.wg.Add(1)
	go q.run()
	return q
}

func (q *queue) run() {
	defer q.wg.Done()
	for cmd := range q.cmds {
		cmd()
	}
}

func (q *queue) push(fn func()) {
	q.cmds <- fn
}

func (q *queue) stop() {
	close(q.cmds)
	q.wg.Wait()
}
