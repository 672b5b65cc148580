package schedule

import "time"

// Remaining returns how long a reservation hold has left at now, never negative.
func Remaining(now, expiry time.Time) time.Duration {
	if d := expiry.Sub(now); d > 0 {
		return d
	}
	return 0
}
