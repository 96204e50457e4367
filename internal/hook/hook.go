// Package hook runs the user's post-submit command.
package hook

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/kballard/go-shellquote"
)

// Run executes cmdline, split with shell quoting rules. An empty cmdline is
// a no-op.
func Run(ctx context.Context, cmdline string) error {
	if cmdline == "" {
		return nil
	}

	cmdSlice, err := shellquote.Split(cmdline)
	if err != nil {
		return fmt.Errorf("unable to parse submit.cmd option: %w", err)
	}

	if len(cmdSlice) == 0 {
		return nil
	}

	name := cmdSlice[0]
	args := cmdSlice[1:]

	cmd := exec.CommandContext(ctx, name, args...)

	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("running %s: %w: %s", name, err, out)
	}

	return nil
}
