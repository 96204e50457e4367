// Package watcher reports changes to individual files.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// ErrClosed is returned by Next once the watcher has been closed.
var ErrClosed = errors.New("watcher closed")

// Watcher watches a set of files for changes.
type Watcher interface {
	// Add starts watching file.
	Add(file string) error
	// Remove stops watching file.
	Remove(file string) error
	// Next blocks until a watched file changes, the context is done or the
	// watcher is closed.
	Next(ctx context.Context) (*fsnotify.Event, error)
	// Close stops the watcher and releases its resources.
	Close() error
}

// fsnotifyWatcher watches the parent directory of every added file so
// editors and atomic renames that replace the file are still seen.
type fsnotifyWatcher struct {
	*fsnotify.Watcher

	closeNotify  chan struct{}
	watchedFiles map[string]bool
	watchedDirs  map[string]int
	mu           sync.Mutex
	closed       bool
}

// NewFSNotify returns a Watcher backed by fsnotify.
func NewFSNotify() (Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	return &fsnotifyWatcher{
		Watcher:      w,
		closeNotify:  make(chan struct{}),
		watchedFiles: make(map[string]bool),
		watchedDirs:  make(map[string]int),
	}, nil
}

func (f *fsnotifyWatcher) Add(file string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return ErrClosed
	}

	file = filepath.Clean(file)
	if f.watchedFiles[file] {
		return nil
	}

	dir := filepath.Dir(file)
	if f.watchedDirs[dir] == 0 {
		if err := f.Watcher.Add(dir); err != nil {
			return fmt.Errorf("watch directory %s: %w", dir, err)
		}
	}

	f.watchedFiles[file] = true
	f.watchedDirs[dir]++

	return nil
}

func (f *fsnotifyWatcher) Remove(file string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return ErrClosed
	}

	file = filepath.Clean(file)
	if !f.watchedFiles[file] {
		return nil
	}

	dir := filepath.Dir(file)

	delete(f.watchedFiles, file)
	f.watchedDirs[dir]--

	if f.watchedDirs[dir] == 0 {
		delete(f.watchedDirs, dir)

		if err := f.Watcher.Remove(dir); err != nil {
			return fmt.Errorf("unwatch directory %s: %w", dir, err)
		}
	}

	return nil
}

func (f *fsnotifyWatcher) Next(ctx context.Context) (*fsnotify.Event, error) {
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-f.closeNotify:
			return nil, ErrClosed
		case event, ok := <-f.Events:
			if !ok {
				return nil, ErrClosed
			}

			f.mu.Lock()
			watched := f.watchedFiles[filepath.Clean(event.Name)]
			f.mu.Unlock()

			if watched {
				return &event, nil
			}
		case err, ok := <-f.Errors:
			if !ok {
				return nil, ErrClosed
			}

			return nil, fmt.Errorf("watcher error: %w", err)
		}
	}
}

func (f *fsnotifyWatcher) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil
	}

	f.closed = true
	close(f.closeNotify)

	return f.Watcher.Close()
}
