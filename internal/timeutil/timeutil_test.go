package timeutil

import (
	"math"
	"testing"
	"time"
)

func TestParseDuration(t *testing.T) {
	table := []struct {
		input string
		want  time.Duration
		err   bool
	}{
		{"1h30m", 90 * time.Minute, false},
		{"1h 30m", 90 * time.Minute, false},
		{" 15s ", 15 * time.Second, false},
		{"45", 45 * time.Minute, false},
		{"1 hour 30 mins", 90 * time.Minute, false},
		{"2days", 48 * time.Hour, false},
		{"1hr 5s", time.Hour + 5*time.Second, false},
		{"1.5 hours", 90 * time.Minute, false},
		{"5 fortnights", 0, true},
		{"", 0, true},
		{"abc", 0, true},
		{"-5m", 0, true},
		{"300000 days", 0, true},
		{"2562047 hours 48 mins", 0, true},
		{"2562047h 48m", 0, true},
		{"99999999999999999999", 0, true},
		{"2562047 hours", 2562047 * time.Hour, false},
	}

	for _, v := range table {
		got, err := ParseDuration(v.input)
		if v.err {
			if err == nil {
				t.Errorf("expected an error for %q, got %v", v.input, got)
			}

			continue
		}

		if err != nil {
			t.Errorf("unexpected error for %q: %v", v.input, err)
			continue
		}

		if got != v.want {
			t.Errorf("Expected: %v, but got: %v", v.want, got)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	got := FormatDuration(time.Hour + 2*time.Minute + 3*time.Second + 999*time.Millisecond)
	if got != "1h2m3s" {
		t.Errorf("Expected: 1h2m3s, but got: %s", got)
	}

	if FormatDuration(400*time.Millisecond) != "0s" {
		t.Errorf("sub-second durations must format as 0s")
	}
}

func TestSumDurations(t *testing.T) {
	got := SumDurations([]time.Duration{time.Second, 2 * time.Second})
	if got != 3*time.Second {
		t.Errorf("Expected: 3s, but got: %v", got)
	}

	if SumDurations(nil) != 0 {
		t.Errorf("empty sum must be zero")
	}

	huge := 2500000 * time.Hour
	if got := SumDurations([]time.Duration{huge, huge}); got != math.MaxInt64 {
		t.Errorf("Expected the sum to saturate, but got: %v", got)
	}
}

func TestAddSaturating(t *testing.T) {
	table := []struct {
		a, b time.Duration
		want time.Duration
	}{
		{time.Second, time.Second, 2 * time.Second},
		{math.MaxInt64, time.Nanosecond, math.MaxInt64},
		{math.MinInt64, -time.Nanosecond, math.MinInt64},
		{math.MaxInt64, math.MinInt64, -time.Nanosecond},
	}

	for _, v := range table {
		if got := AddSaturating(v.a, v.b); got != v.want {
			t.Errorf("AddSaturating(%d, %d): expected %d, but got %d", v.a, v.b, v.want, got)
		}
	}
}
