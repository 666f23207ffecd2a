package queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackoffDelayGrowsExponentially(t *testing.T) {
	assert.Equal(t, 2*time.Second, BackoffDelay(2, 1))
	assert.Equal(t, 4*time.Second, BackoffDelay(2, 2))
	assert.Equal(t, 8*time.Second, BackoffDelay(2, 3))
	assert.Equal(t, 1024*time.Second, BackoffDelay(2, 10))

	assert.Equal(t, 3*time.Second, BackoffDelay(3, 1))
	assert.Equal(t, 27*time.Second, BackoffDelay(3, 3))
}

func TestBackoffDelayZeroAttempts(t *testing.T) {
	assert.Equal(t, time.Second, BackoffDelay(2, 0))
}

func TestBackoffDelayInvalidBaseFallsBack(t *testing.T) {
	assert.Equal(t, BackoffDelay(DefaultBackoffBase, 3), BackoffDelay(0, 3))
	assert.Equal(t, BackoffDelay(DefaultBackoffBase, 3), BackoffDelay(-5, 3))
}

func TestBackoffDelayCapsExponent(t *testing.T) {
	capped := BackoffDelay(2, maxBackoffExponent)
	assert.Equal(t, capped, BackoffDelay(2, maxBackoffExponent+1))
	assert.Equal(t, capped, BackoffDelay(2, 1000))
	assert.Positive(t, capped)
}

func TestBackoffDelayBaseOne(t *testing.T) {
	// Base 1 means a constant 1s retry delay
	assert.Equal(t, time.Second, BackoffDelay(1, 5))
}
