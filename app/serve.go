package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/coder/quartz"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/ayoisaiah/worklog/internal/config"
	"github.com/ayoisaiah/worklog/internal/jira"
	"github.com/ayoisaiah/worklog/internal/logging"
	"github.com/ayoisaiah/worklog/internal/metrics"
	"github.com/ayoisaiah/worklog/internal/osutil"
	"github.com/ayoisaiah/worklog/internal/ports"
	"github.com/ayoisaiah/worklog/internal/tempo"
	"github.com/ayoisaiah/worklog/server"
	"github.com/ayoisaiah/worklog/tracker"
	"github.com/ayoisaiah/worklog/watcher"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// newWatcher returns the watcher for the state file. Only the JSON file can
// change behind the server's back; bbolt holds an exclusive lock.
func newWatcher(cfg *config.Config) (watcher.Watcher, error) {
	if cfg.State.Driver != config.DriverJSON || !cfg.State.Watch {
		return watcher.NewNoop(), nil
	}

	// the directory has to exist before it can be watched
	err := os.MkdirAll(filepath.Dir(cfg.State.File), osutil.DirPermission)
	if err != nil {
		return nil, err
	}

	w, err := watcher.NewFSNotify()
	if err != nil {
		return nil, err
	}

	if err := w.Add(cfg.State.File); err != nil {
		_ = w.Close()
		return nil, err
	}

	return w, nil
}

func newIssueLookup(cfg *config.Config, log *slog.Logger) ports.IssueLookup {
	if !cfg.JiraEnabled() {
		log.Warn("jira is not configured, issue keys are used as their ids")
		return jira.Offline{}
	}

	return jira.NewClient(
		cfg.Jira.BaseURL,
		cfg.Jira.Email,
		cfg.Jira.APIToken,
		log.With(slog.String("component", "jira")),
	)
}

// serveAction handles the serve command, which is also the default. It
// serves the tracker API until interrupted.
func serveAction(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	log, closeLog, err := logging.New(cfg.Log, config.Stderr)
	if err != nil {
		return err
	}

	defer closeLog()

	backend, closeBackend, err := openBackend(cfg)
	if err != nil {
		return err
	}

	defer func() {
		if err := closeBackend(); err != nil {
			log.Error("failed to close state store", slog.Any("error", err))
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m, err := tracker.New(
		backend,
		tracker.WithLogger(log.With(slog.String("component", "tracker"))),
		tracker.WithMetrics(metrics.NewPrometheus(reg)),
	)
	if err != nil {
		return err
	}

	opts := []server.Option{
		server.WithLogger(log.With(slog.String("component", "server"))),
		server.WithGatherer(reg),
		server.WithSubmitCmd(cfg.Submit.Cmd),
	}

	if cfg.TempoEnabled() {
		opts = append(opts, server.WithSubmitter(tempo.NewClient(
			cfg.Tempo.BaseURL,
			cfg.Tempo.APIToken,
			cfg.Tempo.AccountID,
			log.With(slog.String("component", "tempo")),
		)))
	} else {
		log.Warn("tempo is not configured, submitting is disabled")
	}

	srv := server.New(m, newIssueLookup(cfg, log), opts...)

	w, err := newWatcher(cfg)
	if err != nil {
		return err
	}

	defer w.Close()

	sigCtx, stop := signal.NotifyContext(ctx.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := &reloader{
		manager: m,
		watcher: w,
		backend: backend,
		clock:   quartz.NewReal(),
		log:     log.With(slog.String("component", "reload")),
		delay:   cfg.State.ReloadDelay,
	}

	reloadDone := make(chan struct{})

	go func() {
		defer close(reloadDone)
		r.run(sigCtx)
	}()

	httpServer := &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)

	go func() {
		serveErr <- httpServer.ListenAndServe()
	}()

	pterm.Info.Printfln("Serving the tracker API on http://%s", cfg.ListenAddr())

	log.Info("server started",
		slog.String("address", cfg.ListenAddr()),
		slog.String("driver", cfg.State.Driver),
	)

	select {
	case err = <-serveErr:
		stop()
	case <-sigCtx.Done():
		shutdownCtx, cancel := context.WithTimeout(
			context.WithoutCancel(sigCtx),
			shutdownTimeout,
		)
		defer cancel()

		err = httpServer.Shutdown(shutdownCtx)
	}

	<-reloadDone

	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	log.Info("server stopped")

	return nil
}
