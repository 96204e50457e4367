// Package store persists tracker snapshots to disk
package store

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/natefinch/atomic"
	"github.com/zeebo/xxh3"

	"github.com/ayoisaiah/worklog/internal/osutil"
	"github.com/ayoisaiah/worklog/tracker"
)

// File keeps the snapshot in a single JSON document. Writes replace the file
// atomically so readers never observe a partial document.
type File struct {
	path   string
	mu     sync.Mutex
	digest uint64
	seen   bool
}

// NewFile returns a backend for the JSON document at path. The file does not
// need to exist yet.
func NewFile(path string) *File {
	return &File{path: path}
}

// Path returns the location of the JSON document.
func (f *File) Path() string {
	return f.path
}

func (f *File) remember(data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.digest = xxh3.Hash(data)
	f.seen = true
}

// Load reads and decodes the document. A missing file yields an error
// wrapping fs.ErrNotExist.
func (f *File) Load() (*tracker.Snapshot, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("reading state file: %w", err)
	}

	f.remember(data)

	snap, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.path, err)
	}

	return snap, nil
}

// Save encodes snap and atomically replaces the document.
func (f *File) Save(snap *tracker.Snapshot) error {
	data, err := Encode(snap)
	if err != nil {
		return err
	}

	err = os.MkdirAll(filepath.Dir(f.path), osutil.DirPermission)
	if err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}

	err = atomic.WriteFile(f.path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("writing state file: %w", err)
	}

	f.remember(data)

	return nil
}

// Stale reports whether the document on disk differs from what this backend
// last read or wrote, which means another process has changed it.
func (f *File) Stale() (bool, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return false, fmt.Errorf("reading state file: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	return !f.seen || xxh3.Hash(data) != f.digest, nil
}
