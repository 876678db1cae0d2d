package timeutil_test

import (
	"math/rand"
	"testing"
	"time"

	"github.com/rohmanhakim/tariff-mirror/pkg/timeutil"
	"github.com/stretchr/testify/assert"
)

func TestLinearBackoffDelay_GrowsLinearly(t *testing.T) {
	param := timeutil.NewBackoffParam(2*time.Second, 30*time.Second)

	assert.Equal(t, 2*time.Second, timeutil.LinearBackoffDelay(1, 0, nil, param))
	assert.Equal(t, 4*time.Second, timeutil.LinearBackoffDelay(2, 0, nil, param))
	assert.Equal(t, 6*time.Second, timeutil.LinearBackoffDelay(3, 0, nil, param))
}

func TestLinearBackoffDelay_CappedAtMax(t *testing.T) {
	param := timeutil.NewBackoffParam(10*time.Second, 15*time.Second)

	assert.Equal(t, 10*time.Second, timeutil.LinearBackoffDelay(1, 0, nil, param))
	assert.Equal(t, 15*time.Second, timeutil.LinearBackoffDelay(2, 0, nil, param))
	assert.Equal(t, 15*time.Second, timeutil.LinearBackoffDelay(9, 0, nil, param))
}

func TestLinearBackoffDelay_JitterBoundedAndSeedStable(t *testing.T) {
	param := timeutil.NewBackoffParam(time.Second, 30*time.Second)
	jitter := 500 * time.Millisecond

	first := timeutil.LinearBackoffDelay(1, jitter, rand.New(rand.NewSource(7)), param)
	second := timeutil.LinearBackoffDelay(1, jitter, rand.New(rand.NewSource(7)), param)

	assert.Equal(t, first, second, "same seed must yield the same delay")
	assert.GreaterOrEqual(t, first, time.Second)
	assert.Less(t, first, time.Second+jitter)
}

func TestLinearBackoffDelay_SubOneAttemptClamped(t *testing.T) {
	param := timeutil.NewBackoffParam(3*time.Second, 30*time.Second)

	assert.Equal(t, 3*time.Second, timeutil.LinearBackoffDelay(0, 0, nil, param))
	assert.Equal(t, 3*time.Second, timeutil.LinearBackoffDelay(-5, 0, nil, param))
}

func TestMaxDuration(t *testing.T) {
	assert.Equal(t, time.Duration(0), timeutil.MaxDuration(nil))
	assert.Equal(t, 5*time.Second, timeutil.MaxDuration([]time.Duration{
		time.Second,
		5 * time.Second,
		3 * time.Second,
	}))
}

func TestDurationPtr(t *testing.T) {
	d := timeutil.DurationPtr(time.Minute)
	assert.Equal(t, time.Minute, *d)
}
