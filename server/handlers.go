package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ayoisaiah/worklog/internal/hook"
	"github.com/ayoisaiah/worklog/internal/ports"
	"github.com/ayoisaiah/worklog/internal/timeutil"
	"github.com/ayoisaiah/worklog/tracker"
)

func (s *Server) list(w http.ResponseWriter, _ *http.Request) {
	views := s.manager.List()

	resp := make([]TrackerResponse, 0, len(views))
	for _, v := range views {
		resp = append(resp, NewTrackerResponse(v))
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) clear(w http.ResponseWriter, r *http.Request) {
	if _, err := s.manager.RemoveAll(); err != nil {
		s.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r)(s.manager.Get(chi.URLParam(r, "key")))
}

// create resolves the key upstream, then creates and starts a tracker for it.
// Any lookup failure is reported as not found.
func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	issue, err := s.issues.Lookup(r.Context(), key)
	if err != nil {
		s.log.Warn("issue lookup failed",
			slog.String("key", key),
			slog.Any("error", err),
		)

		s.writeError(w, r, fmt.Errorf("%s: %w", key, ports.ErrIssueNotFound))

		return
	}

	if _, err = s.manager.Create(key, issue.ID); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.respond(w, r)(s.manager.Start(key))
}

func (s *Server) start(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r)(s.manager.Start(chi.URLParam(r, "key")))
}

func (s *Server) remove(w http.ResponseWriter, r *http.Request) {
	if _, err := s.manager.Remove(chi.URLParam(r, "key")); err != nil {
		s.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) current(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r)(s.manager.Current())
}

func (s *Server) pause(w http.ResponseWriter, r *http.Request) {
	if err := s.manager.Pause(); err != nil {
		s.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (s *Server) sum(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, SumResponse{
		Duration: timeutil.FormatDuration(s.manager.Sum()),
	})
}

// submit books every tracker upstream and clears them. Nothing is removed
// when the submission fails.
func (s *Server) submit(w http.ResponseWriter, r *http.Request) {
	if s.submitter == nil {
		s.writeError(w, r, errSubmitDisabled)
		return
	}

	if err := s.submitter.Submit(r.Context(), s.manager.List()); err != nil {
		s.writeError(w, r, err)
		return
	}

	removed, err := s.manager.RemoveAll()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.log.Info("worklogs submitted", slog.Int("trackers", len(removed)))

	if s.submitCmd != "" {
		ctx, cancel := context.WithTimeout(
			context.WithoutCancel(r.Context()),
			hookTimeout,
		)
		defer cancel()

		if err := hook.Run(ctx, s.submitCmd); err != nil {
			s.log.Error("post-submit command failed", slog.Any("error", err))
		}
	}

	w.WriteHeader(http.StatusOK)
}

// respond writes v, or err when the operation failed.
func (s *Server) respond(
	w http.ResponseWriter,
	r *http.Request,
) func(v tracker.View, err error) {
	return func(v tracker.View, err error) {
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, NewTrackerResponse(v))
	}
}
