package tracker

import (
	"time"

	"github.com/ayoisaiah/worklog/internal/timeutil"
)

// runningElapsed is the live time of r, or zero when r does not belong to
// key.
func runningElapsed(key string, r *Running, now time.Time) time.Duration {
	if r == nil || r.Key != key {
		return 0
	}

	d := now.Sub(r.Start)
	if d < 0 {
		return 0
	}

	return d
}

// elapsed computes the adjusted time tracked by e. The result saturates at
// zero and at the largest representable duration.
func elapsed(e *Entry, r *Running, now time.Time) time.Duration {
	positive := timeutil.SumDurations(append(
		[]time.Duration{e.Duration, runningElapsed(e.Key, r, now)},
		e.PositiveAdjustments...,
	))

	negative := timeutil.SumDurations(e.NegativeAdjustments)
	if negative >= positive {
		return 0
	}

	return positive - negative
}

// elapsedSeconds is elapsed truncated to whole seconds for reporting.
func elapsedSeconds(e *Entry, r *Running, now time.Time) time.Duration {
	return timeutil.TruncateSeconds(elapsed(e, r, now))
}
