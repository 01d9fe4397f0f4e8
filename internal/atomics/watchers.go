// Helper functions that deal with atomic variables and their values
package atomics

import (
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Consecutive zero reads required before a value counts as settled
const settledReads int = 3

// Waits until the value reads 0 several times in a row or the timeout passes.
// Reads are spaced by a capped exponential backoff.
func WaitUntilZero(value *atomic.Uint64, timeout time.Duration) (reachedZero bool, lastValue uint64) {
	spacing := backoff.NewExponentialBackOff()
	spacing.InitialInterval = 50 * time.Millisecond
	spacing.MaxInterval = time.Second
	spacing.Multiplier = 2
	spacing.RandomizationFactor = 0
	spacing.MaxElapsedTime = 0
	spacing.Reset()

	deadline := time.Now().Add(timeout)
	zeroStreak := 0
	for {
		lastValue = value.Load()
		if lastValue == 0 {
			zeroStreak++
		} else {
			zeroStreak = 0
		}
		if zeroStreak >= settledReads {
			reachedZero = true
			return
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return
		}
		time.Sleep(min(spacing.NextBackOff(), remaining))
	}
}
