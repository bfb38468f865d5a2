package retry

import "time"

// maxShift keeps base<<attempt from overflowing for any sane base.
const maxShift = 30

// ExponentialBackoff returns base * 2^attempt. Negative attempts count as zero.
func ExponentialBackoff(attempt int, base time.Duration) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt > maxShift {
		attempt = maxShift
	}
	return base * (1 << attempt)
}

// CappedBackoff is ExponentialBackoff limited to limit. A limit of zero or less disables the cap.
func CappedBackoff(attempt int, base, limit time.Duration) time.Duration {
	d := ExponentialBackoff(attempt, base)
	if limit > 0 && d > limit {
		return limit
	}
	return d
}
