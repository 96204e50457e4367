// Package app wires the worklog command-line interface
package app

import (
	"github.com/urfave/cli/v2"

	"github.com/ayoisaiah/worklog/internal/config"
)

// Get retrieves the worklog app instance.
func Get() *cli.App {
	worklogApp := &cli.App{
		Name: "worklog",
		Authors: []*cli.Author{
			{
				Name:  "Ayooluwa Isaiah",
				Email: "ayo@freshman.tech",
			},
		},
		Usage: `
		Worklog tracks the time spent on Jira issues. It serves a local HTTP API
		for starting, pausing and adjusting trackers, and submits the tracked
		time to Tempo as worklogs.`,
		UsageText:            "[COMMAND] [OPTIONS]",
		Version:              config.Version,
		EnableBashCompletion: true,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Serve the tracker API (default)",
				Action: serveAction,
			},
			{
				Name:   "status",
				Usage:  "Print the running tracker",
				Action: statusAction,
			},
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "Print a table of all trackers",
				Flags: []cli.Flag{
					jsonFlag,
					sortFlag,
				},
				Action: listAction,
			},
			{
				Name:   "sum",
				Usage:  "Print the total time tracked across all trackers",
				Flags:  []cli.Flag{jsonFlag},
				Action: sumAction,
			},
			{
				Name:      "describe",
				Usage:     "Set the description of a tracker",
				UsageText: "KEY [DESCRIPTION...]",
				Flags:     []cli.Flag{yesFlag},
				Action:    describeAction,
			},
			{
				Name:      "delete",
				Usage:     "Delete one or more trackers",
				UsageText: "[KEY...]",
				Flags: []cli.Flag{
					allFlag,
					yesFlag,
				},
				Action: deleteAction,
			},
			{
				Name:   "edit-config",
				Usage:  "Edit the configuration file",
				Action: editConfigAction,
			},
		},
		Flags: []cli.Flag{
			configFlag,
			stateFileFlag,
			driverFlag,
			addressFlag,
			portFlag,
			logFileFlag,
			verboseFlag,
			noColorFlag,
		},
		Action: serveAction,
		Before: beforeAction,
	}

	return worklogApp
}
