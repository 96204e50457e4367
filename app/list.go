package app

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/maruel/natural"
	"github.com/pterm/pterm"

	"github.com/ayoisaiah/worklog/internal/config"
	"github.com/ayoisaiah/worklog/internal/timeutil"
	"github.com/ayoisaiah/worklog/internal/ui"
	"github.com/ayoisaiah/worklog/tracker"
)

const (
	noTrackersMsg = "No trackers found"
)

// Sort orders accepted by --sort.
const (
	sortCreated  = "created"
	sortNatural  = "natural"
	sortDuration = "duration"
)

var errUnknownSort = errors.New("unknown sort order")

// sortViews orders views in place. Views come in creation order, so that
// order needs no work.
func sortViews(views []tracker.View, order string) ([]tracker.View, error) {
	switch order {
	case "", sortCreated:
	case sortNatural:
		slices.SortStableFunc(views, func(a, b tracker.View) int {
			switch {
			case natural.Less(a.Key, b.Key):
				return -1
			case natural.Less(b.Key, a.Key):
				return 1
			}

			return 0
		})
	case sortDuration:
		slices.SortStableFunc(views, func(a, b tracker.View) int {
			return cmp.Compare(b.Duration, a.Duration)
		})
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownSort, order)
	}

	return views, nil
}

// printTrackersTable prints a tracker table to the command-line.
func printTrackersTable(w io.Writer, views []tracker.View) {
	tableBody := make([][]string, len(views))

	for i := range views {
		v := views[i]

		statusText := ui.Yellow("paused")
		if v.Running {
			statusText = ui.Green("running")
		}

		row := []string{
			strconv.Itoa(i + 1),
			v.Key,
			v.ID,
			timeutil.FormatDuration(v.Duration),
			humanize.Time(v.StartTime),
			statusText,
			v.Description,
		}

		tableBody[i] = row
	}

	tableBody = append([][]string{
		{"#", "KEY", "ID", "DURATION", "CREATED", "STATUS", "DESCRIPTION"},
	}, tableBody...)

	ui.PrintTable(tableBody, w)
}

// listTrackers prints out a table of trackers.
func listTrackers(views []tracker.View) error {
	if len(views) == 0 {
		pterm.Info.Println(noTrackersMsg)
		return nil
	}

	printTrackersTable(config.Stdout, views)

	return nil
}
