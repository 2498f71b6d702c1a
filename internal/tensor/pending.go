package tensor

import (
	"errors"
	"sync/atomic"
)

// ErrBlockingUnsupported is returned by ReadSync when the pending read has not
// completed and the current platform cannot block waiting for it.
var ErrBlockingUnsupported = errors.New("tensor: blocking reads are not supported on this platform")

// Pending is the eventual result of a backend read.
// Backends whose reads are asynchronous (GPU map, device queues) return an
// incomplete Pending and call Complete from their own goroutine.
type Pending struct {
	done      chan struct{}
	completed atomic.Bool
	data      Data
	err       error
}

// NewPending creates an incomplete Pending.
func NewPending() *Pending {
	return &Pending{done: make(chan struct{})}
}

// Ready returns a Pending that has already completed with data.
func Ready(data Data) *Pending {
	p := NewPending()
	p.Complete(data, nil)
	return p
}

// Failed returns a Pending that has already completed with err.
func Failed(err error) *Pending {
	p := NewPending()
	p.Complete(Data{}, err)
	return p
}

// Complete publishes the read result. It must be called exactly once;
// a second call panics.
func (p *Pending) Complete(data Data, err error) {
	if !p.completed.CompareAndSwap(false, true) {
		panic("tensor: Pending completed twice")
	}
	p.data = data
	p.err = err
	close(p.done)
}

// Done returns a channel closed once the read has completed.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Completed reports whether the read has finished, without blocking.
func (p *Pending) Completed() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// Result returns the read result. It panics if the read has not completed;
// wait on Done or use ReadSync first.
func (p *Pending) Result() (Data, error) {
	if !p.Completed() {
		panic("tensor: Pending result read before completion")
	}
	return p.data, p.err
}
