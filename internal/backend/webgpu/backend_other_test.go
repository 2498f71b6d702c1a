//go:build !windows

package webgpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_Unavailable(t *testing.T) {
	b, err := New()
	assert.Nil(t, b)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.EqualError(t, err, "webgpu backend is not available in this build")
	assert.False(t, IsAvailable())
	assert.Equal(t, PoolStats{}, (&Backend{}).PoolStats())
}
