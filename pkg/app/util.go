package app

import "time"

// nextDelay returns the time left until the next multiple of interval, so a
// 15m interval runs at 0, 15, 30 and 45 past the hour.
func nextDelay(now time.Time, interval time.Duration) time.Duration {
	next := now.Truncate(interval).Add(interval)
	return next.Sub(now)
}
