package tracker

import (
	"errors"
	"io/fs"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/quartz"

	"github.com/ayoisaiah/worklog/internal/metrics"
)

// Backend is the durable store the tracker state is mirrored to.
type Backend interface {
	// Load returns the persisted state. It returns an error wrapping
	// fs.ErrNotExist when nothing has been persisted yet.
	Load() (*Snapshot, error)
	// Save replaces the persisted state with snap.
	Save(snap *Snapshot) error
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock sets the clock used for all elapsed time computations.
func WithClock(clock quartz.Clock) Option {
	return func(m *Manager) {
		m.clock = clock
	}
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(m *Manager) {
		m.log = log
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(rec metrics.Recorder) Option {
	return func(m *Manager) {
		m.metrics = rec
	}
}

// Manager guards a State with a read/write lock and writes the full state
// through to the backend after every mutation.
type Manager struct {
	backend Backend
	clock   quartz.Clock
	log     *slog.Logger
	metrics metrics.Recorder
	state   *State
	mu      sync.RWMutex
}

// New loads the initial state from backend. A backend with nothing persisted
// yields an empty state; any other load failure is returned.
func New(backend Backend, opts ...Option) (*Manager, error) {
	m := &Manager{
		backend: backend,
		clock:   quartz.NewReal(),
		log:     slog.New(slog.DiscardHandler),
		metrics: metrics.NewNop(),
	}

	for _, opt := range opts {
		opt(m)
	}

	snap, err := backend.Load()
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, ErrLoad.Wrap(err)
		}

		m.log.Info("no persisted state found, starting empty")

		m.state = NewState(m.clock)

		return m, nil
	}

	m.state, err = FromSnapshot(m.clock, snap)
	if err != nil {
		return nil, ErrLoad.Wrap(err)
	}

	m.metrics.SetTrackers(m.state.Len(), m.state.IsRunning())

	m.log.Debug("loaded persisted state", slog.Int("trackers", m.state.Len()))

	return m, nil
}

func (m *Manager) read(fn func(s *State)) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	fn(m.state)
}

// write applies fn under the exclusive lock, then flushes under a separate
// shared lock. The state is not flushed when fn fails since a failed
// transition leaves it unchanged.
func (m *Manager) write(fn func(s *State) error) error {
	if err := m.writeWithoutFlush(fn); err != nil {
		return err
	}

	return m.flush()
}

func (m *Manager) writeWithoutFlush(fn func(s *State) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return fn(m.state)
}

func (m *Manager) flush() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	start := m.clock.Now()

	err := m.backend.Save(m.state.Snapshot())

	m.metrics.ObserveFlush(m.clock.Since(start), err)
	m.metrics.SetTrackers(m.state.Len(), m.state.IsRunning())

	if err != nil {
		m.log.Error("failed to flush tracker state", slog.Any("error", err))
		return ErrFlush.Wrap(err)
	}

	return nil
}

// Create adds a paused tracker for key. id is the identifier the key resolved
// to upstream.
func (m *Manager) Create(key, id string) (View, error) {
	var v View

	err := m.write(func(s *State) (err error) {
		v, err = s.Create(key, id)
		return err
	})
	if err != nil {
		return View{}, err
	}

	m.log.Info("tracker created", slog.String("key", key))

	return v, nil
}

// Start starts key, pausing whatever was running.
func (m *Manager) Start(key string) (View, error) {
	var v View

	err := m.write(func(s *State) (err error) {
		v, err = s.Start(key)
		return err
	})
	if err != nil {
		return View{}, err
	}

	m.log.Info("tracker started", slog.String("key", key))

	return v, nil
}

// Pause stops the running tracker, if any.
func (m *Manager) Pause() error {
	return m.write(func(s *State) error {
		s.Pause()
		return nil
	})
}

// SetDescription replaces the description of key.
func (m *Manager) SetDescription(key, description string) (View, error) {
	var v View

	err := m.write(func(s *State) (err error) {
		v, err = s.SetDescription(key, description)
		return err
	})
	if err != nil {
		return View{}, err
	}

	return v, nil
}

// AdjustPositive adds d to the time tracked for key.
func (m *Manager) AdjustPositive(key string, d time.Duration) (View, error) {
	var v View

	err := m.write(func(s *State) (err error) {
		v, err = s.AdjustPositive(key, d)
		return err
	})
	if err != nil {
		return View{}, err
	}

	return v, nil
}

// AdjustNegative subtracts d from the time tracked for key.
func (m *Manager) AdjustNegative(key string, d time.Duration) (View, error) {
	var v View

	err := m.write(func(s *State) (err error) {
		v, err = s.AdjustNegative(key, d)
		return err
	})
	if err != nil {
		return View{}, err
	}

	return v, nil
}

// Transfer moves d from one tracker to another in a single write.
func (m *Manager) Transfer(from, to string, d time.Duration) (fromView, toView View, err error) {
	err = m.write(func(s *State) (err error) {
		fromView, toView, err = s.Transfer(from, to, d)
		return err
	})
	if err != nil {
		return View{}, View{}, err
	}

	return fromView, toView, nil
}

// Remove deletes key and returns its final record.
func (m *Manager) Remove(key string) (Entry, error) {
	var e Entry

	err := m.write(func(s *State) (err error) {
		e, err = s.Remove(key)
		return err
	})
	if err != nil {
		return Entry{}, err
	}

	m.log.Info("tracker removed", slog.String("key", key))

	return e, nil
}

// RemoveAll deletes every tracker and returns their final records.
func (m *Manager) RemoveAll() ([]Entry, error) {
	var removed []Entry

	err := m.write(func(s *State) error {
		removed = s.RemoveAll()
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.log.Info("all trackers removed", slog.Int("count", len(removed)))

	return removed, nil
}

// Current returns the running tracker.
func (m *Manager) Current() (v View, err error) {
	m.read(func(s *State) {
		v, err = s.Current()
	})

	return v, err
}

// Get returns the tracker for key.
func (m *Manager) Get(key string) (v View, err error) {
	m.read(func(s *State) {
		v, err = s.Get(key)
	})

	return v, err
}

// List returns all trackers in creation order.
func (m *Manager) List() (views []View) {
	m.read(func(s *State) {
		views = s.List()
	})

	return views
}

// Sum returns the total reported time across all trackers.
func (m *Manager) Sum() (total time.Duration) {
	m.read(func(s *State) {
		total = s.Sum()
	})

	return total
}

// Reload replaces the whole state with what the backend holds. It does not
// flush, so it can be driven by changes to the backend itself. On failure the
// current state is kept.
func (m *Manager) Reload() error {
	err := m.writeWithoutFlush(func(_ *State) error {
		snap, err := m.backend.Load()
		if err != nil {
			return err
		}

		next, err := FromSnapshot(m.clock, snap)
		if err != nil {
			return err
		}

		m.state = next

		return nil
	})

	m.metrics.ObserveReload(err)

	if err != nil {
		return ErrReload.Wrap(err)
	}

	m.read(func(s *State) {
		m.metrics.SetTrackers(s.Len(), s.IsRunning())
		m.log.Debug("reloaded tracker state", slog.Int("trackers", s.Len()))
	})

	return nil
}
