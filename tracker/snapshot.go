package tracker

import (
	"slices"
	"time"

	"github.com/coder/quartz"
)

// Snapshot is the persisted form of a State. Times are absolute wall-clock
// values with no monotonic reading.
type Snapshot struct {
	Running  *RunningSnapshot
	Trackers []Entry
}

// RunningSnapshot records when the running tracker was started.
type RunningSnapshot struct {
	StartTime time.Time
	Key       string
}

// Snapshot copies the state into its persisted form.
func (s *State) Snapshot() *Snapshot {
	snap := &Snapshot{
		Trackers: make([]Entry, 0, len(s.keys)),
	}

	for _, k := range s.keys {
		e := *s.entries[k]
		e.PositiveAdjustments = slices.Clone(e.PositiveAdjustments)
		e.NegativeAdjustments = slices.Clone(e.NegativeAdjustments)
		snap.Trackers = append(snap.Trackers, e)
	}

	if s.running != nil {
		now := s.clock.Now()
		since := runningElapsed(s.running.Key, s.running, now)

		snap.Running = &RunningSnapshot{
			Key:       s.running.Key,
			StartTime: now.Add(-since).Round(0),
		}
	}

	return snap
}

// FromSnapshot rebuilds a State. The running start time is converted into an
// offset from the clock's current time so elapsed time keeps accruing
// monotonically after a restart.
func FromSnapshot(clock quartz.Clock, snap *Snapshot) (*State, error) {
	s := NewState(clock)

	if snap == nil {
		return s, nil
	}

	for i := range snap.Trackers {
		e := snap.Trackers[i]

		if e.Key == "" {
			return nil, ErrCorruptState.Fmt("tracker without a key")
		}

		if _, ok := s.entries[e.Key]; ok {
			return nil, ErrCorruptState.Fmt("duplicate tracker " + e.Key)
		}

		e.PositiveAdjustments = slices.Clone(e.PositiveAdjustments)
		e.NegativeAdjustments = slices.Clone(e.NegativeAdjustments)

		s.entries[e.Key] = &e
		s.keys = append(s.keys, e.Key)
	}

	if snap.Running != nil {
		if _, ok := s.entries[snap.Running.Key]; !ok {
			return nil, ErrCorruptState.Fmt(
				"running tracker " + snap.Running.Key + " does not exist",
			)
		}

		now := clock.Now()

		since := now.Round(0).Sub(snap.Running.StartTime)
		if since < 0 {
			since = 0
		}

		s.running = &Running{
			Key:   snap.Running.Key,
			Start: now.Add(-since),
		}
	}

	return s, nil
}
