package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayoisaiah/worklog/internal/testutil"
	"github.com/ayoisaiah/worklog/store"
	"github.com/ayoisaiah/worklog/tracker"
	"github.com/ayoisaiah/worklog/watcher"
)

type fakeWatcher struct {
	events chan *fsnotify.Event
	errs   chan error
	done   chan struct{}
	once   sync.Once
}

func newFakeWatcher() *fakeWatcher {
	return &fakeWatcher{
		events: make(chan *fsnotify.Event),
		errs:   make(chan error),
		done:   make(chan struct{}),
	}
}

func (*fakeWatcher) Add(string) error    { return nil }
func (*fakeWatcher) Remove(string) error { return nil }

func (w *fakeWatcher) Next(ctx context.Context) (*fsnotify.Event, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-w.done:
		return nil, watcher.ErrClosed
	case e := <-w.events:
		return e, nil
	case err := <-w.errs:
		return nil, err
	}
}

func (w *fakeWatcher) Close() error {
	w.once.Do(func() { close(w.done) })
	return nil
}

func (w *fakeWatcher) send(ctx context.Context, t *testing.T) {
	t.Helper()

	select {
	case w.events <- &fsnotify.Event{Name: "state.json", Op: fsnotify.Write}:
	case <-ctx.Done():
		t.Fatal("timed out sending event")
	}
}

func (w *fakeWatcher) fail(ctx context.Context, t *testing.T, err error) {
	t.Helper()

	select {
	case w.errs <- err:
	case <-ctx.Done():
		t.Fatal("timed out sending error")
	}
}

type fakeReloadable struct {
	reloaded chan struct{}
	errs     []error
	mu       sync.Mutex
	calls    int
}

func newFakeReloadable(errs ...error) *fakeReloadable {
	return &fakeReloadable{reloaded: make(chan struct{}, 8), errs: errs}
}

func (f *fakeReloadable) Reload() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	var err error
	if f.calls < len(f.errs) {
		err = f.errs[f.calls]
	}

	f.calls++
	f.reloaded <- struct{}{}

	return err
}

func (f *fakeReloadable) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.calls
}

func (f *fakeReloadable) wait(ctx context.Context, t *testing.T) {
	t.Helper()

	select {
	case <-f.reloaded:
	case <-ctx.Done():
		t.Fatal("timed out waiting for reload")
	}
}

// stalerFunc reports the values of stale in order, then true.
type stalerFunc struct {
	stale []bool
	mu    sync.Mutex
}

func (s *stalerFunc) Stale() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.stale) == 0 {
		return true, nil
	}

	v := s.stale[0]
	s.stale = s.stale[1:]

	return v, nil
}

func startReloader(
	ctx context.Context,
	r *reloader,
) <-chan struct{} {
	done := make(chan struct{})

	go func() {
		defer close(done)
		r.run(ctx)
	}()

	return done
}

func TestReloaderWaitsForWritesToSettle(t *testing.T) {
	ctx := testutil.Context(t, testutil.WaitShort)
	clock := quartz.NewMock(t)

	trap := clock.Trap().NewTimer(reloadTimerTag)
	defer trap.Close()

	w := newFakeWatcher()
	m := newFakeReloadable()

	done := startReloader(ctx, &reloader{
		manager: m,
		watcher: w,
		backend: &stalerFunc{},
		clock:   clock,
		log:     slog.New(slog.DiscardHandler),
		delay:   time.Second,
	})

	w.send(ctx, t)

	trap.MustWait(ctx).MustRelease(ctx)

	clock.Advance(500 * time.Millisecond).MustWait(ctx)
	assert.Zero(t, m.count())

	clock.Advance(500 * time.Millisecond).MustWait(ctx)
	m.wait(ctx, t)

	require.NoError(t, w.Close())
	<-done

	assert.Equal(t, 1, m.count())
}

func TestReloaderSkipsOwnWrites(t *testing.T) {
	ctx := testutil.Context(t, testutil.WaitShort)
	clock := quartz.NewMock(t)

	trap := clock.Trap().NewTimer(reloadTimerTag)
	defer trap.Close()

	w := newFakeWatcher()
	m := newFakeReloadable()

	done := startReloader(ctx, &reloader{
		manager: m,
		watcher: w,
		backend: &stalerFunc{stale: []bool{false}},
		clock:   clock,
		log:     slog.New(slog.DiscardHandler),
		delay:   time.Second,
	})

	for range 2 {
		w.send(ctx, t)
		trap.MustWait(ctx).MustRelease(ctx)
		clock.Advance(time.Second).MustWait(ctx)
	}

	m.wait(ctx, t)

	require.NoError(t, w.Close())
	<-done

	// events are handled in order, so the first one was skipped
	assert.Equal(t, 1, m.count())
}

func TestReloaderKeepsWatchingAfterFailure(t *testing.T) {
	ctx := testutil.Context(t, testutil.WaitShort)

	w := newFakeWatcher()
	m := newFakeReloadable(errors.New("unexpected end of JSON input"))

	done := startReloader(ctx, &reloader{
		manager: m,
		watcher: w,
		clock:   quartz.NewMock(t),
		log:     slog.New(slog.DiscardHandler),
	})

	w.send(ctx, t)
	m.wait(ctx, t)

	w.send(ctx, t)
	m.wait(ctx, t)

	require.NoError(t, w.Close())
	<-done

	assert.Equal(t, 2, m.count())
}

func TestReloaderSurvivesWatcherErrors(t *testing.T) {
	ctx := testutil.Context(t, testutil.WaitShort)

	w := newFakeWatcher()
	m := newFakeReloadable()

	done := startReloader(ctx, &reloader{
		manager: m,
		watcher: w,
		clock:   quartz.NewMock(t),
		log:     slog.New(slog.DiscardHandler),
	})

	w.fail(ctx, t, errors.New("watcher error: inotify read failed"))

	// the loop is still receiving
	w.send(ctx, t)
	m.wait(ctx, t)

	require.NoError(t, w.Close())
	<-done

	assert.Equal(t, 1, m.count())
}

func TestReloaderReloadsAfterOverflow(t *testing.T) {
	ctx := testutil.Context(t, testutil.WaitShort)

	w := newFakeWatcher()
	m := newFakeReloadable()

	done := startReloader(ctx, &reloader{
		manager: m,
		watcher: w,
		clock:   quartz.NewMock(t),
		log:     slog.New(slog.DiscardHandler),
	})

	w.fail(ctx, t, fmt.Errorf("watcher error: %w", fsnotify.ErrEventOverflow))
	m.wait(ctx, t)

	require.NoError(t, w.Close())
	<-done

	assert.Equal(t, 1, m.count())
}

func TestReloaderStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(testutil.Context(t, testutil.WaitShort))

	clock := quartz.NewMock(t)

	trap := clock.Trap().NewTimer(reloadTimerTag)
	defer trap.Close()

	w := newFakeWatcher()
	m := newFakeReloadable()

	done := startReloader(ctx, &reloader{
		manager: m,
		watcher: w,
		clock:   clock,
		log:     slog.New(slog.DiscardHandler),
		delay:   time.Minute,
	})

	w.send(ctx, t)
	trap.MustWait(ctx).MustRelease(ctx)

	// cancelled while waiting for the write to settle
	cancel()
	<-done

	assert.Zero(t, m.count())
}

func TestReloaderPicksUpExternalEdits(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping filesystem watcher test in short mode")
	}

	ctx := testutil.Context(t, testutil.WaitLong)
	path := filepath.Join(t.TempDir(), "state.json")

	backend := store.NewFile(path)

	m, err := tracker.New(backend)
	require.NoError(t, err)

	_, err = m.Create("ABC-1", "10001")
	require.NoError(t, err)

	w, err := watcher.NewFSNotify()
	require.NoError(t, err)
	require.NoError(t, w.Add(path))

	done := startReloader(ctx, &reloader{
		manager: m,
		watcher: w,
		backend: backend,
		clock:   quartz.NewReal(),
		log:     slog.New(slog.DiscardHandler),
		delay:   10 * time.Millisecond,
	})

	// another process replaces the file
	err = store.NewFile(path).Save(&tracker.Snapshot{
		Trackers: []tracker.Entry{
			{Key: "XYZ-9", ID: "99", Duration: time.Minute},
		},
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		_, err := m.Get("XYZ-9")
		return err == nil
	}, testutil.WaitShort, 10*time.Millisecond)

	_, err = m.Get("ABC-1")
	assert.ErrorIs(t, err, tracker.ErrNotFound)

	require.NoError(t, w.Close())
	<-done
}
