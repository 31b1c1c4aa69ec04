package utils

import "time"

// Clock abstracts "now" so ledger expiry checks, recurrence math, and the
// sweep schedulers can run against a controlled time in tests.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock backed by the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}
