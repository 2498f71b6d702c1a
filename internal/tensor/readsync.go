//go:build !js && !wasip1

package tensor

// CanBlock reports whether ReadSync may block the calling goroutine.
func CanBlock() bool {
	return true
}

// ReadSync blocks until the pending read completes and returns its result.
// Backend read errors are returned unchanged.
//
// This is the single blocking point of a cross-backend transfer. There is no
// timeout and no cancellation: once started, the read runs to completion.
func ReadSync(p *Pending) (Data, error) {
	<-p.Done()
	return p.Result()
}
