package config

import (
	"github.com/urfave/cli/v2"
)

// CLIOptions represents command-line configuration options.
type CLIOptions struct {
	StateFile string
	Driver    string
	LogFile   string
	Address   string
	Port      int
	Verbose   bool
	NoColor   bool
}

// WithCLIConfig returns an Option that applies the flags set on the command
// line. Flags that were not set leave the config untouched.
func WithCLIConfig(ctx *cli.Context) Option {
	return func(c *Config) error {
		opts := CLIOptions{
			StateFile: ctx.String("state-file"),
			Driver:    ctx.String("driver"),
			LogFile:   ctx.String("log-file"),
			Address:   ctx.String("address"),
			Port:      ctx.Int("port"),
			Verbose:   ctx.Bool("verbose"),
			NoColor:   ctx.Bool("no-color"),
		}

		applyCLIOptions(c, opts)

		return nil
	}
}

// applyCLIOptions applies CLI options to the config.
func applyCLIOptions(c *Config, opts CLIOptions) {
	if opts.StateFile != "" {
		c.State.File = opts.StateFile
	}

	if opts.Driver != "" {
		c.State.Driver = opts.Driver
	}

	if opts.LogFile != "" {
		c.Log.File = opts.LogFile
	}

	if opts.Address != "" {
		c.Server.Address = opts.Address
	}

	if opts.Port != 0 {
		c.Server.Port = opts.Port
	}

	if opts.Verbose {
		c.Log.Level = "debug"
	}

	if opts.NoColor {
		c.Display.NoColor = true
	}
}
