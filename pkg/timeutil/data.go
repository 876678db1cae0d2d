package timeutil

import "time"

// Linear backoff parameters
// example:
//
//	baseDelay := 2 * time.Second    // attempt 1 waits 2s, attempt 2 waits 4s...
//	maxDuration := 30 * time.Second // cap to stop linear growth

type BackoffParam struct {
	baseDelay   time.Duration
	maxDuration time.Duration
}

func NewBackoffParam(
	baseDelay time.Duration,
	maxDuration time.Duration,
) BackoffParam {
	return BackoffParam{
		baseDelay:   baseDelay,
		maxDuration: maxDuration,
	}
}

func (b *BackoffParam) BaseDelay() time.Duration {
	return b.baseDelay
}

func (b *BackoffParam) MaxDuration() time.Duration {
	return b.maxDuration
}
