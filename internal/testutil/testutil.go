// Package testutil holds helpers shared by package tests
package testutil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"

	"github.com/ayoisaiah/worklog/internal/osutil"
)

// Timeouts for tests that wait on goroutines or the file system.
const (
	WaitShort = 10 * time.Second
	WaitLong  = 25 * time.Second
)

// Context returns a context that is cancelled after dur or when the test
// ends.
func Context(t testing.TB, dur time.Duration) context.Context {
	t.Helper()

	ctx, cancel := context.WithTimeout(t.Context(), dur)
	t.Cleanup(cancel)

	return ctx
}

// GoldenTest is a test case whose output is checked against a file under
// testdata.
type GoldenTest interface {
	Output() ([]byte, string)
}

// CompareGoldenFile verifies that the output of an operation matches
// the expected output. A nil output asserts that no golden file exists.
func CompareGoldenFile(t *testing.T, tc GoldenTest) {
	t.Helper()

	if runtime.GOOS == osutil.Windows {
		// TODO: normalise CRLF line endings in golden files
		t.Skip("skipping golden file test in Windows")
	}

	g := goldie.New(
		t,
		goldie.WithFixtureDir("testdata"),
	)

	output, golden := tc.Output()

	if output != nil {
		g.Assert(t, golden, output)
		return
	}

	f := filepath.Join("testdata", golden+".golden")
	if _, err := os.Stat(f); err == nil || errors.Is(err, os.ErrExist) {
		t.Fatalf("expected no output, but golden file exists: %s", f)
	}
}

// CopyFile copies src to dst, truncating dst if it exists.
func CopyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening source file: %w", err)
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("creating destination file: %w", err)
	}
	defer destFile.Close()

	_, err = io.Copy(destFile, sourceFile)
	if err != nil {
		return fmt.Errorf("copying file: %w", err)
	}

	return nil
}
