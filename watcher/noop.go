package watcher

import (
	"context"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// NewNoop returns a Watcher that never reports events. It is used for
// backends that cannot be changed by another process while worklog runs.
func NewNoop() Watcher {
	return &noopWatcher{done: make(chan struct{})}
}

type noopWatcher struct {
	done      chan struct{}
	closeOnce sync.Once
}

func (*noopWatcher) Add(string) error {
	return nil
}

func (*noopWatcher) Remove(string) error {
	return nil
}

// Next blocks until the context is done or the watcher is closed.
func (n *noopWatcher) Next(ctx context.Context) (*fsnotify.Event, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-n.done:
		return nil, ErrClosed
	}
}

func (n *noopWatcher) Close() error {
	n.closeOnce.Do(func() {
		close(n.done)
	})

	return nil
}
