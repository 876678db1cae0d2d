package timeutil

import (
	"math/rand"
	"time"
)

// DurationPtr is a helper function to create a pointer to a time.Duration
func DurationPtr(d time.Duration) *time.Duration {
	return &d
}

// MaxDuration returns the largest duration in the given slice.
// An empty slice yields zero.
func MaxDuration(durations []time.Duration) time.Duration {
	var max time.Duration
	for _, d := range durations {
		if d > max {
			max = d
		}
	}
	return max
}

// LinearBackoffDelay computes the delay before the next retry attempt.
// The delay grows linearly with the attempt index (attempt * baseDelay),
// capped at the configured maximum, plus a seed-controlled jitter.
//
// attempt is 1-based: the delay after the first failed attempt is
// 1 * baseDelay.
func LinearBackoffDelay(
	attempt int,
	jitter time.Duration,
	rng *rand.Rand,
	param BackoffParam,
) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	delay := time.Duration(attempt) * param.baseDelay
	if param.maxDuration > 0 && delay > param.maxDuration {
		delay = param.maxDuration
	}

	if jitter > 0 && rng != nil {
		delay += time.Duration(rng.Int63n(int64(jitter)))
	}

	return delay
}
