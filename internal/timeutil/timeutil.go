// Package timeutil provides utility functions and types for working with
// time-related operations.
package timeutil

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var errEmptyDuration = errors.New("duration must not be empty")

var durationTerm = regexp.MustCompile(`(\d+(?:\.\d+)?)([a-zµ]+)`)

// unitWords maps the long unit spellings accepted in addition to Go's own.
var unitWords = map[string]time.Duration{
	"nsec": time.Nanosecond, "usec": time.Microsecond,
	"msec": time.Millisecond, "millis": time.Millisecond,
	"sec": time.Second, "secs": time.Second,
	"second": time.Second, "seconds": time.Second,
	"min": time.Minute, "mins": time.Minute,
	"minute": time.Minute, "minutes": time.Minute,
	"hr": time.Hour, "hrs": time.Hour,
	"hour": time.Hour, "hours": time.Hour,
	"d": 24 * time.Hour, "day": 24 * time.Hour, "days": 24 * time.Hour,
}

// TruncateSeconds drops the sub-second part of d.
func TruncateSeconds(d time.Duration) time.Duration {
	return d.Truncate(time.Second)
}

// FormatDuration renders d in whole seconds (e.g. 1h2m3s).
func FormatDuration(d time.Duration) string {
	return TruncateSeconds(d).String()
}

// ParseDuration parses a duration string. It accepts Go syntax ("1h30m"),
// space separated units ("1h 30m"), long unit names ("1 hour 30 mins") and
// a bare number of minutes ("45").
func ParseDuration(s string) (time.Duration, error) {
	s = strings.Join(strings.Fields(s), "")
	if s == "" {
		return 0, errEmptyDuration
	}

	dur, err := time.ParseDuration(s)
	if err == nil {
		if dur < 0 {
			return 0, fmt.Errorf("negative duration: %s", s)
		}

		return dur, nil
	}

	// Try parsing as minutes in case duration unit is absent
	mins, err := time.ParseDuration(s + "m")
	if err == nil {
		if mins < 0 {
			return 0, fmt.Errorf("negative duration: %s", s)
		}

		return mins, nil
	}

	dur, ok := parseUnitWords(strings.ToLower(s))
	if !ok {
		return 0, fmt.Errorf("invalid duration format: %s", s)
	}

	return dur, nil
}

// parseUnitWords parses terms such as "1hour30min" or "2days".
func parseUnitWords(s string) (time.Duration, bool) {
	var (
		total    time.Duration
		consumed int
	)

	for _, m := range durationTerm.FindAllStringSubmatchIndex(s, -1) {
		if m[0] != consumed {
			return 0, false
		}

		consumed = m[1]

		n, err := strconv.ParseFloat(s[m[2]:m[3]], 64)
		if err != nil {
			return 0, false
		}

		unit, ok := unitWords[s[m[4]:m[5]]]
		if !ok {
			d, err := time.ParseDuration(s[m[0]:m[1]])
			if err != nil {
				return 0, false
			}

			if total > math.MaxInt64-d {
				return 0, false
			}

			total += d

			continue
		}

		f := n * float64(unit)
		if f >= math.MaxInt64 {
			return 0, false
		}

		d := time.Duration(f)
		if total > math.MaxInt64-d {
			return 0, false
		}

		total += d
	}

	return total, consumed == len(s) && consumed > 0
}

// AddSaturating returns a+b clamped to the range of time.Duration.
func AddSaturating(a, b time.Duration) time.Duration {
	switch {
	case b > 0 && a > math.MaxInt64-b:
		return math.MaxInt64
	case b < 0 && a < math.MinInt64-b:
		return math.MinInt64
	}

	return a + b
}

// SumDurations adds up all the given durations, saturating instead of
// wrapping around.
func SumDurations(ds []time.Duration) time.Duration {
	var total time.Duration
	for _, d := range ds {
		total = AddSaturating(total, d)
	}

	return total
}
