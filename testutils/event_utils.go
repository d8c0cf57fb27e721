package testutils

import (
	"strconv"
	"sync"
	"time"
)

// SteppingClock returns start on the first call and advances by step on
// every call after that.
func SteppingClock(start time.Time, step time.Duration) func() time.Time {
	var mu sync.Mutex
	next := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now := next
		next = next.Add(step)
		return now
	}
}

// IsNow reports whether ms, in epoch milliseconds, is within ten seconds of
// the current time.
func IsNow(ms int64) bool {
	diff := time.Since(time.UnixMilli(ms))
	if diff < 0 {
		diff = -diff
	}
	return diff <= 10*time.Second
}

// IsTimestamp reports whether ms looks like an epoch milliseconds value.
func IsTimestamp(ms int64) bool {
	return len(strconv.FormatInt(ms, 10)) == 13
}
