package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"runtime"

	"github.com/dustin/go-humanize"
	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/ayoisaiah/worklog/internal/config"
	"github.com/ayoisaiah/worklog/internal/logging"
	"github.com/ayoisaiah/worklog/internal/osutil"
	"github.com/ayoisaiah/worklog/internal/pathutil"
	"github.com/ayoisaiah/worklog/internal/timeutil"
	"github.com/ayoisaiah/worklog/internal/ui"
	"github.com/ayoisaiah/worklog/server"
	"github.com/ayoisaiah/worklog/store"
	"github.com/ayoisaiah/worklog/tracker"
)

const (
	envNoColor        = "NO_COLOR"
	envWorklogNoColor = "WORKLOG_NO_COLOR"
)

var errUnknownDriver = errors.New("unknown storage driver")

// firstNonEmptyString returns its first non-empty argument, or "" if all
// arguments are empty.
func firstNonEmptyString(ss ...string) string {
	for _, s := range ss {
		if s != "" {
			return s
		}
	}

	return ""
}

// loadConfig builds the configuration from the config file, the environment
// and the command-line flags, in increasing order of precedence.
func loadConfig(ctx *cli.Context) (*config.Config, error) {
	paths, err := pathutil.Resolve()
	if err != nil {
		return nil, err
	}

	cfg, err := config.New(
		paths,
		config.WithViperConfig(
			firstNonEmptyString(ctx.String("config"), paths.ConfigFile),
		),
		config.WithCLIConfig(ctx),
	)
	if err != nil {
		return nil, err
	}

	ui.DarkTheme = cfg.Display.DarkTheme

	if cfg.Display.NoColor {
		ui.DisableStyling()
	}

	return cfg, nil
}

// openBackend opens the durable store selected by the config. The returned
// function releases it.
func openBackend(cfg *config.Config) (tracker.Backend, func() error, error) {
	switch cfg.State.Driver {
	case config.DriverJSON:
		return store.NewFile(cfg.State.File), func() error { return nil }, nil
	case config.DriverBolt:
		b, err := store.OpenBolt(cfg.State.DBFile)
		if err != nil {
			return nil, nil, err
		}

		return b, b.Close, nil
	}

	return nil, nil, fmt.Errorf("%w: %q", errUnknownDriver, cfg.State.Driver)
}

// session holds what the one-shot commands need to act on the stored state.
type session struct {
	cfg     *config.Config
	log     *slog.Logger
	manager *tracker.Manager
	close   func()
}

// openSession loads the stored state for a one-shot command. Logs only go
// to the log file so they do not interleave with the command output.
func openSession(ctx *cli.Context) (*session, error) {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return nil, err
	}

	log, closeLog, err := logging.New(cfg.Log, io.Discard)
	if err != nil {
		return nil, err
	}

	backend, closeBackend, err := openBackend(cfg)
	if err != nil {
		closeLog()
		return nil, err
	}

	m, err := tracker.New(
		backend,
		tracker.WithLogger(log.With(slog.String("component", "tracker"))),
	)
	if err != nil {
		_ = closeBackend()

		closeLog()

		return nil, err
	}

	return &session{
		cfg:     cfg,
		log:     log,
		manager: m,
		close: func() {
			if err := closeBackend(); err != nil {
				log.Error("failed to close state store", slog.Any("error", err))
			}

			closeLog()
		},
	}, nil
}

func printJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(b))

	return err
}

// statusAction handles the status command and prints the running tracker.
func statusAction(ctx *cli.Context) error {
	s, err := openSession(ctx)
	if err != nil {
		return err
	}

	defer s.close()

	v, err := s.manager.Current()
	if errors.Is(err, tracker.ErrNotFound) {
		pterm.Info.Println("No tracker is running")
		return nil
	}

	if err != nil {
		return err
	}

	printStatus(config.Stdout, v)

	return nil
}

func printStatus(w io.Writer, v tracker.View) {
	fmt.Fprintf(
		w,
		"%s %s: %s (created %s)\n",
		ui.Green("●"),
		ui.Highlight(v.Key),
		timeutil.FormatDuration(v.Duration),
		humanize.Time(v.StartTime),
	)

	if v.Description != "" {
		fmt.Fprintf(w, "  %s\n", v.Description)
	}
}

// listAction handles the list command and prints a table of all trackers.
func listAction(ctx *cli.Context) error {
	s, err := openSession(ctx)
	if err != nil {
		return err
	}

	defer s.close()

	views, err := sortViews(s.manager.List(), ctx.String("sort"))
	if err != nil {
		return err
	}

	if ctx.Bool("json") {
		resp := make([]server.TrackerResponse, 0, len(views))
		for _, v := range views {
			resp = append(resp, server.NewTrackerResponse(v))
		}

		return printJSON(config.Stdout, resp)
	}

	return listTrackers(views)
}

// sumAction handles the sum command and prints the total tracked time.
func sumAction(ctx *cli.Context) error {
	s, err := openSession(ctx)
	if err != nil {
		return err
	}

	defer s.close()

	total := timeutil.FormatDuration(s.manager.Sum())

	if ctx.Bool("json") {
		return printJSON(config.Stdout, server.SumResponse{Duration: total})
	}

	pterm.Printfln("%s %s", ui.Highlight("Total:"), total)

	return nil
}

// editConfigAction handles the edit-config command which opens the worklog
// config file in the user's default text editor.
func editConfigAction(ctx *cli.Context) error {
	defaultEditor := "nano"

	if runtime.GOOS == osutil.Windows {
		defaultEditor = "C:\\Windows\\system32\\notepad.exe"
	}

	editor := firstNonEmptyString(
		os.Getenv("VISUAL"),
		os.Getenv("EDITOR"),
		defaultEditor,
	)

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	cmd := exec.Command(editor, cfg.ConfigPath)

	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout

	return cmd.Run()
}

func beforeAction(ctx *cli.Context) error {
	// Override the default help template
	cli.AppHelpTemplate = helpText()

	// Override the default version printer
	oldVersionPrinter := cli.VersionPrinter
	cli.VersionPrinter = func(c *cli.Context) {
		oldVersionPrinter(c)
		fmt.Printf(
			"https://github.com/ayoisaiah/worklog/releases/%s\n",
			c.App.Version,
		)
	}

	pterm.Error.MessageStyle = pterm.NewStyle(pterm.FgRed)
	pterm.Error.Prefix = pterm.Prefix{
		Text:  "ERROR",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}

	// Disable colour output if NO_COLOR is set
	if _, exists := os.LookupEnv(envNoColor); exists {
		ui.DisableStyling()
	}

	// Disable colour output if WORKLOG_NO_COLOR is set
	if _, exists := os.LookupEnv(envWorklogNoColor); exists {
		ui.DisableStyling()
	}

	if ctx.Bool("no-color") {
		ui.DisableStyling()
	}

	return nil
}
