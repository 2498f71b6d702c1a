//go:build js || wasip1

package tensor

// CanBlock reports whether ReadSync may block the calling goroutine.
// Single-threaded sandboxes cannot wait on work that needs the host event loop.
func CanBlock() bool {
	return false
}

// ReadSync returns the result of an already completed read.
// A read still in flight yields ErrBlockingUnsupported: blocking here would
// stall the only thread that can complete it.
func ReadSync(p *Pending) (Data, error) {
	if !p.Completed() {
		return Data{}, ErrBlockingUnsupported
	}
	return p.Result()
}
