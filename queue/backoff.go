package queue

import (
	"time"
)

// maxBackoffExponent caps the exponent so the delay cannot overflow a
// time.Duration with any plausible base
const maxBackoffExponent = 30

// BackoffDelay returns the exponential retry delay base^attempts in seconds.
// With the default base of 2, the first retry waits 2s, the second 4s, the
// third 8s, and so on.
func BackoffDelay(base, attempts int) time.Duration {
	if base < 1 {
		base = DefaultBackoffBase
	}
	if attempts > maxBackoffExponent {
		attempts = maxBackoffExponent
	}

	delay := int64(1)
	for i := 0; i < attempts; i++ {
		delay *= int64(base)
	}
	return time.Duration(delay) * time.Second
}
