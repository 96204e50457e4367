package app

import (
	"errors"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/ayoisaiah/worklog/internal/config"
	"github.com/ayoisaiah/worklog/tracker"
)

var errNoKey = errors.New("specify the issue key of the tracker")

// describeAction handles the describe command which replaces the
// description of a tracker. Omitting the description clears it.
func describeAction(ctx *cli.Context) error {
	if ctx.NArg() == 0 {
		return errNoKey
	}

	s, err := openSession(ctx)
	if err != nil {
		return err
	}

	defer s.close()

	return editDescription(
		s.manager,
		ctx.Args().First(),
		strings.Join(ctx.Args().Tail(), " "),
		ctx.Bool("yes"),
		os.Stdin,
	)
}

// editDescription sets the description of key after showing the result and
// asking for confirmation.
func editDescription(
	m *tracker.Manager,
	key, description string,
	skipConfirm bool,
	stdin io.Reader,
) error {
	v, err := m.Get(key)
	if err != nil {
		return err
	}

	v.Description = description

	printTrackersTable(config.Stdout, []tracker.View{v})

	if !skipConfirm {
		confirm(
			config.Stdout,
			stdin,
			"The tracker above will be updated. Press ENTER to proceed",
		)
	}

	_, err = m.SetDescription(key, description)

	return err
}
