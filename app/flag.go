package app

import (
	"github.com/urfave/cli/v2"

	"github.com/ayoisaiah/worklog/internal/config"
)

var (
	configFlag = &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to the config file",
	}

	stateFileFlag = &cli.StringFlag{
		Name:    "state-file",
		Aliases: []string{"f"},
		Usage:   "Path to the JSON state file",
	}

	driverFlag = &cli.StringFlag{
		Name:  "driver",
		Usage: "Storage driver for the tracker state: " + config.DriverJSON + " or " + config.DriverBolt,
	}

	addressFlag = &cli.StringFlag{
		Name:  "address",
		Usage: "Address the HTTP server binds to (default: 127.0.0.1)",
	}

	portFlag = &cli.IntFlag{
		Name:    "port",
		Aliases: []string{"p"},
		Usage:   "Port the HTTP server listens on (default: 8080)",
	}

	logFileFlag = &cli.StringFlag{
		Name:  "log-file",
		Usage: "Path to the log file",
	}

	verboseFlag = &cli.BoolFlag{
		Name:  "verbose",
		Usage: "Log at debug level",
	}

	noColorFlag = &cli.BoolFlag{
		Name:  "no-color",
		Usage: "Disable coloured output",
	}

	jsonFlag = &cli.BoolFlag{
		Name:  "json",
		Usage: "Print the output as JSON",
	}

	sortFlag = &cli.StringFlag{
		Name:  "sort",
		Usage: "Sort trackers by 'created', 'natural' (issue key) or 'duration'",
		Value: sortCreated,
	}

	allFlag = &cli.BoolFlag{
		Name:    "all",
		Aliases: []string{"a"},
		Usage:   "Apply to every tracker",
	}

	yesFlag = &cli.BoolFlag{
		Name:    "yes",
		Aliases: []string{"y"},
		Usage:   "Skip the confirmation prompt",
	}
)
