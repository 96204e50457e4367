// Package tracker implements the state engine that accounts working time
// against issue keys. At most one tracker runs at any instant; the others are
// paused with their accumulated durations.
package tracker

import (
	"regexp"
	"slices"
	"strconv"
	"time"

	"github.com/coder/quartz"

	"github.com/ayoisaiah/worklog/internal/timeutil"
)

var keyPattern = regexp.MustCompile(`^\w+-\d+$`)

// Entry is the record kept for a single issue key. Time spent while the entry
// is running is held by the Running marker, not here.
type Entry struct {
	StartTime           time.Time
	Key                 string
	ID                  string
	Description         string
	PositiveAdjustments []time.Duration
	NegativeAdjustments []time.Duration
	Duration            time.Duration
}

// Running marks the tracker that is currently accumulating time.
type Running struct {
	// Start comes from the state's clock and carries a monotonic reading when
	// the clock is real.
	Start time.Time
	Key   string
}

// View is the computed, read-only representation of a tracker.
type View struct {
	StartTime   time.Time
	Key         string
	ID          string
	Description string
	Duration    time.Duration // whole seconds, adjustments applied
	Running     bool
}

// State is an insertion-ordered set of trackers plus the optional running
// marker. It is not safe for concurrent use; see Manager.
type State struct {
	clock   quartz.Clock
	entries map[string]*Entry
	running *Running
	keys    []string
}

// NewState returns an empty state that reads time from clock.
func NewState(clock quartz.Clock) *State {
	return &State{
		clock:   clock,
		entries: make(map[string]*Entry),
	}
}

func (s *State) view(e *Entry, now time.Time) View {
	return View{
		Key:         e.Key,
		ID:          e.ID,
		Description: e.Description,
		Duration:    elapsedSeconds(e, s.running, now),
		Running:     s.running != nil && s.running.Key == e.Key,
		StartTime:   e.StartTime,
	}
}

func (s *State) lookup(key string) (*Entry, error) {
	e, ok := s.entries[key]
	if !ok {
		return nil, ErrNotFound.Fmt(strconv.Quote(key))
	}

	return e, nil
}

// Len returns the number of trackers.
func (s *State) Len() int {
	return len(s.keys)
}

// IsRunning reports whether any tracker is running.
func (s *State) IsRunning() bool {
	return s.running != nil
}

// Create adds a paused tracker with zero duration.
func (s *State) Create(key, id string) (View, error) {
	if !keyPattern.MatchString(key) {
		return View{}, ErrKeyFormat.Fmt(key)
	}

	if _, ok := s.entries[key]; ok {
		return View{}, ErrOccupied.Fmt(key)
	}

	now := s.clock.Now()

	e := &Entry{
		Key:       key,
		ID:        id,
		StartTime: now.Local(),
	}

	s.entries[key] = e
	s.keys = append(s.keys, key)

	return s.view(e, now), nil
}

// Start pauses whatever is running and starts key. Starting the running
// tracker folds its elapsed time and restarts the clock on it.
func (s *State) Start(key string) (View, error) {
	e, err := s.lookup(key)
	if err != nil {
		return View{}, err
	}

	s.Pause()

	now := s.clock.Now()

	s.running = &Running{
		Key:   key,
		Start: now,
	}

	return s.view(e, now), nil
}

// Pause folds the live time of the running tracker into its duration.
func (s *State) Pause() {
	if s.running == nil {
		return
	}

	if e, ok := s.entries[s.running.Key]; ok {
		e.Duration = timeutil.AddSaturating(
			e.Duration,
			runningElapsed(e.Key, s.running, s.clock.Now()),
		)
	}

	s.running = nil
}

// SetDescription replaces the description of key. An empty description
// clears it.
func (s *State) SetDescription(key, description string) (View, error) {
	e, err := s.lookup(key)
	if err != nil {
		return View{}, err
	}

	e.Description = description

	return s.view(e, s.clock.Now()), nil
}

// AdjustPositive records time that was worked but not tracked.
func (s *State) AdjustPositive(key string, d time.Duration) (View, error) {
	e, err := s.lookup(key)
	if err != nil {
		return View{}, err
	}

	if d < 0 {
		return View{}, ErrNegativeAdjustment.Fmt(key, d)
	}

	e.PositiveAdjustments = append(e.PositiveAdjustments, d)

	return s.view(e, s.clock.Now()), nil
}

// AdjustNegative records tracked time that should not count. It can never
// take the total below zero.
func (s *State) AdjustNegative(key string, d time.Duration) (View, error) {
	e, err := s.lookup(key)
	if err != nil {
		return View{}, err
	}

	if d < 0 {
		return View{}, ErrNegativeAdjustment.Fmt(key, d)
	}

	now := s.clock.Now()

	current := elapsed(e, s.running, now)
	if d > current {
		return View{}, ErrDurationAdjustment.Fmt(d, key, current)
	}

	e.NegativeAdjustments = append(e.NegativeAdjustments, d)

	return s.view(e, now), nil
}

// Transfer moves d from one tracker to another. Nothing is recorded unless
// both trackers exist and from has at least d tracked.
func (s *State) Transfer(from, to string, d time.Duration) (fromView, toView View, err error) {
	src, err := s.lookup(from)
	if err != nil {
		return View{}, View{}, err
	}

	dst, err := s.lookup(to)
	if err != nil {
		return View{}, View{}, err
	}

	if _, err = s.AdjustNegative(from, d); err != nil {
		return View{}, View{}, err
	}

	dst.PositiveAdjustments = append(dst.PositiveAdjustments, d)

	now := s.clock.Now()

	return s.view(src, now), s.view(dst, now), nil
}

// Remove deletes key and returns its final record. A running tracker is
// paused first so its live time is part of the returned record.
func (s *State) Remove(key string) (Entry, error) {
	e, err := s.lookup(key)
	if err != nil {
		return Entry{}, err
	}

	if s.running != nil && s.running.Key == key {
		s.Pause()
	}

	delete(s.entries, key)

	s.keys = slices.DeleteFunc(s.keys, func(k string) bool {
		return k == key
	})

	return *e, nil
}

// RemoveAll deletes every tracker in insertion order.
func (s *State) RemoveAll() []Entry {
	s.Pause()

	removed := make([]Entry, 0, len(s.keys))
	for _, k := range s.keys {
		removed = append(removed, *s.entries[k])
	}

	s.keys = nil
	s.entries = make(map[string]*Entry)

	return removed
}

// Current returns the running tracker.
func (s *State) Current() (View, error) {
	if s.running == nil {
		return View{}, ErrNotFound.Fmt("nothing is running")
	}

	e, err := s.lookup(s.running.Key)
	if err != nil {
		return View{}, err
	}

	return s.view(e, s.clock.Now()), nil
}

// Get returns the tracker for key.
func (s *State) Get(key string) (View, error) {
	e, err := s.lookup(key)
	if err != nil {
		return View{}, err
	}

	return s.view(e, s.clock.Now()), nil
}

// List returns every tracker in insertion order.
func (s *State) List() []View {
	now := s.clock.Now()

	views := make([]View, 0, len(s.keys))
	for _, k := range s.keys {
		views = append(views, s.view(s.entries[k], now))
	}

	return views
}

// Sum adds up the reported (whole second) durations of all trackers.
func (s *State) Sum() time.Duration {
	var total time.Duration
	for _, v := range s.List() {
		total += v.Duration
	}

	return total
}
