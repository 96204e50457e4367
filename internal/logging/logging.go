// Package logging builds the structured logger shared by every component
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ayoisaiah/worklog/internal/config"
	"github.com/ayoisaiah/worklog/internal/osutil"
)

// New returns a logger that writes to w and, when cfg names a file, to a
// size-rotated log file. The returned function closes the file.
func New(cfg config.LogConfig, w io.Writer) (*slog.Logger, func(), error) {
	var level slog.Level

	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, nil, fmt.Errorf("log level: %w", err)
	}

	closer := func() {}

	if cfg.File != "" {
		err := os.MkdirAll(filepath.Dir(cfg.File), osutil.DirPermission)
		if err != nil {
			return nil, nil, fmt.Errorf("creating log directory: %w", err)
		}

		logWriter := &LumberjackWriteCloseFixer{Writer: &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
		}}

		w = io.MultiWriter(w, logWriter)

		closer = func() {
			_ = logWriter.Close()
		}
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler = slog.NewTextHandler(w, opts)
	if cfg.JSON {
		handler = slog.NewJSONHandler(w, opts)
	}

	return slog.New(handler), closer, nil
}

// LumberjackWriteCloseFixer is a wrapper around an io.WriteCloser that
// prevents writes after Close. lumberjack re-opens the file on Write.
type LumberjackWriteCloseFixer struct {
	Writer io.WriteCloser

	mu     sync.Mutex // Protects following.
	closed bool
}

func (c *LumberjackWriteCloseFixer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true

	return c.Writer.Close()
}

func (c *LumberjackWriteCloseFixer) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return 0, io.ErrClosedPipe
	}

	return c.Writer.Write(p)
}
