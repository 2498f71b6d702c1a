package bridge

import (
	"errors"
	"fmt"
	"testing"

	"github.com/born-ml/router/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDrain(t *testing.T) {
	want, err := tensor.FromInt32s([]int32{1, 2}, tensor.Shape{2})
	require.NoError(t, err)

	t.Run("Ready", func(t *testing.T) {
		assert.True(t, want.Equal(drain(tensor.Ready(want))))
	})

	t.Run("Async", func(t *testing.T) {
		p := tensor.NewPending()
		go p.Complete(want, nil)
		assert.True(t, want.Equal(drain(p)))
	})

	t.Run("BlockingUnsupported", func(t *testing.T) {
		assert.PanicsWithValue(t, blockingUnsupportedMsg, func() {
			drain(tensor.Failed(tensor.ErrBlockingUnsupported))
		})
	})

	t.Run("WrappedBlockingUnsupported", func(t *testing.T) {
		err := fmt.Errorf("map: %w", tensor.ErrBlockingUnsupported)
		assert.PanicsWithValue(t, blockingUnsupportedMsg, func() {
			drain(tensor.Failed(err))
		})
	})

	t.Run("BackendError", func(t *testing.T) {
		readErr := errors.New("device lost")
		assert.PanicsWithError(t, "device lost", func() {
			drain(tensor.Failed(readErr))
		})
	})
}

func TestRoute_String(t *testing.T) {
	assert.Equal(t, "same-backend", SameBackend.String())
	assert.Equal(t, "cross-backend", CrossBackend.String())
}
