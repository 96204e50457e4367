package app

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/ayoisaiah/worklog/internal/config"
	"github.com/ayoisaiah/worklog/tracker"
)

var errNoKeys = errors.New("specify at least one issue key or use --all")

// confirm prints prompt and waits for the user to press ENTER.
func confirm(w io.Writer, r io.Reader, prompt string) {
	fmt.Fprint(w, pterm.Warning.Sprint(prompt))

	reader := bufio.NewReader(r)

	_, _ = reader.ReadString('\n')
}

// deleteAction handles the delete command which removes the named trackers,
// or all of them with --all.
func deleteAction(ctx *cli.Context) error {
	keys := ctx.Args().Slice()

	all := ctx.Bool("all")
	if !all && len(keys) == 0 {
		return errNoKeys
	}

	s, err := openSession(ctx)
	if err != nil {
		return err
	}

	defer s.close()

	return delTrackers(s.manager, keys, all, ctx.Bool("yes"), os.Stdin)
}

// delTrackers deletes the specified trackers. It requests for confirmation
// before proceeding with the operation unless skipConfirm is set.
func delTrackers(
	m *tracker.Manager,
	keys []string,
	all, skipConfirm bool,
	stdin io.Reader,
) error {
	views := m.List()

	if !all {
		views = views[:0]

		for _, key := range keys {
			v, err := m.Get(key)
			if err != nil {
				return err
			}

			views = append(views, v)
		}
	}

	if len(views) == 0 {
		pterm.Info.Println(noTrackersMsg)
		return nil
	}

	printTrackersTable(config.Stdout, views)

	if !skipConfirm {
		confirm(
			config.Stdout,
			stdin,
			"The above trackers will be deleted permanently. Press ENTER to proceed",
		)
	}

	if all {
		_, err := m.RemoveAll()
		return err
	}

	for _, v := range views {
		if _, err := m.Remove(v.Key); err != nil {
			return err
		}
	}

	return nil
}
