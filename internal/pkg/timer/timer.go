// Package timer holds the countdown arithmetic for session time budgets.
// All functions are pure; the wall clock is always passed in.
package timer

import (
	"fmt"
	"time"
)

// Remaining computes the time left on a running countdown anchored at
// startedAt. Never negative.
func Remaining(startedAt, now time.Time, duration time.Duration) time.Duration {
	elapsed := now.Sub(startedAt)
	remaining := duration - elapsed
	if remaining < 0 {
		return 0
	}
	return remaining
}

// RemainingForSnapshot reports the countdown for a possibly-paused session.
// A paused session holds at its snapshot; a running one counts down from the
// anchor.
func RemainingForSnapshot(startedAt, now time.Time, duration time.Duration, paused bool, pausedRemainingMs int64) time.Duration {
	if paused {
		if pausedRemainingMs < 0 {
			return 0
		}
		return time.Duration(pausedRemainingMs) * time.Millisecond
	}
	return Remaining(startedAt, now, duration)
}

// ResumeAnchor rewinds the start timestamp so that a countdown resumed now
// continues from the paused snapshot: startedAt = now - (duration - remaining).
func ResumeAnchor(now time.Time, duration time.Duration, pausedRemainingMs int64) time.Time {
	remaining := time.Duration(pausedRemainingMs) * time.Millisecond
	return now.Add(-(duration - remaining))
}

// IsExpired reports whether a running (not paused) countdown has hit zero.
func IsExpired(startedAt, now time.Time, duration time.Duration, paused bool) bool {
	if paused {
		return false
	}
	return Remaining(startedAt, now, duration) <= 0
}

// FormatMMSS renders a countdown as MM:SS, truncated to whole seconds.
func FormatMMSS(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Seconds())
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
