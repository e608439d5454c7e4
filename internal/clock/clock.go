// Package clock holds the pure remaining-time math for timed attempts.
// The timer is stateless: everything derives from a stored start timestamp,
// the assessment's duration, and the caller's notion of now.
package clock

import "time"

// Remaining returns the time left in an attempt, floored at zero.
func Remaining(startedAt time.Time, duration time.Duration, now time.Time) time.Duration {
	left := duration - now.Sub(startedAt)
	if left < 0 {
		return 0
	}
	return left
}

// RemainingSeconds returns Remaining truncated to whole seconds.
func RemainingSeconds(startedAt time.Time, duration time.Duration, now time.Time) int64 {
	return int64(Remaining(startedAt, duration, now) / time.Second)
}

// IsExpired reports whether the attempt's time budget has elapsed.
func IsExpired(startedAt time.Time, duration time.Duration, now time.Time) bool {
	return Remaining(startedAt, duration, now) == 0
}

// WarnLevel is the advisory urgency derived from remaining time.
type WarnLevel string

const (
	WarnNone     WarnLevel = "none"
	WarnInfo     WarnLevel = "info"
	WarnWarning  WarnLevel = "warning"
	WarnCritical WarnLevel = "critical"
)

// Warn maps remaining time to an advisory level. Purely informational;
// callers never change state based on it.
func Warn(remaining time.Duration) WarnLevel {
	switch {
	case remaining <= 60*time.Second:
		return WarnCritical
	case remaining <= 300*time.Second:
		return WarnWarning
	case remaining <= 600*time.Second:
		return WarnInfo
	default:
		return WarnNone
	}
}
