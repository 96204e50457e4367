package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/coder/quartz"
	"github.com/fsnotify/fsnotify"

	"github.com/ayoisaiah/worklog/watcher"
)

// reloadTimerTag labels the settle timer so tests can trap it.
const reloadTimerTag = "reload"

// reloadable is the part of the manager the reload loop drives.
type reloadable interface {
	Reload() error
}

// staler is implemented by backends that can tell their own writes apart
// from external ones.
type staler interface {
	Stale() (bool, error)
}

// reloader re-reads the durable state when it changes outside the process.
type reloader struct {
	manager reloadable
	watcher watcher.Watcher
	backend any
	clock   quartz.Clock
	log     *slog.Logger
	delay   time.Duration
}

// run watches until ctx is done or the watcher is closed. Other watcher
// errors are logged and watching carries on.
func (r *reloader) run(ctx context.Context) {
	for {
		event, err := r.watcher.Next(ctx)

		switch {
		case ctx.Err() != nil, errors.Is(err, watcher.ErrClosed):
			return
		case errors.Is(err, fsnotify.ErrEventOverflow):
			// events were dropped, one of them may have been a change
			r.log.Warn("state watcher overflowed", slog.Any("error", err))
		case err != nil:
			r.log.Error("state watcher failed", slog.Any("error", err))
			continue
		default:
			r.log.Debug("state file changed", slog.String("event", event.String()))
		}

		if !r.settle(ctx) {
			return
		}

		r.reload()
	}
}

// settle waits for the configured delay. It reports false when ctx ends
// first.
func (r *reloader) settle(ctx context.Context) bool {
	if r.delay <= 0 {
		return ctx.Err() == nil
	}

	t := r.clock.NewTimer(r.delay, reloadTimerTag)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (r *reloader) reload() {
	if s, ok := r.backend.(staler); ok {
		stale, err := s.Stale()
		if err != nil {
			r.log.Error("failed to check the state file", slog.Any("error", err))
			return
		}

		if !stale {
			r.log.Debug("skipping reload of our own write")
			return
		}
	}

	if err := r.manager.Reload(); err != nil {
		r.log.Error("failed to reload tracker state", slog.Any("error", err))
		return
	}

	r.log.Info("reloaded tracker state after external change")
}
