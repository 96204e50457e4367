package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/ayoisaiah/worklog/internal/apperr"
	"github.com/ayoisaiah/worklog/internal/ports"
	"github.com/ayoisaiah/worklog/tracker"
)

var (
	errBadRequest = &apperr.Error{
		Message: "malformed request body: %s",
	}

	errSubmitDisabled = &apperr.Error{
		Message: "submitting worklogs is not configured",
	}
)

// statusOf maps an error to the HTTP status reported to the client.
func statusOf(err error) int {
	switch {
	case errors.Is(err, tracker.ErrKeyFormat),
		errors.Is(err, tracker.ErrDurationAdjustment),
		errors.Is(err, tracker.ErrNegativeAdjustment),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, tracker.ErrOccupied):
		return http.StatusConflict
	case errors.Is(err, tracker.ErrNotFound),
		errors.Is(err, ports.ErrIssueNotFound):
		return http.StatusNotFound
	case errors.Is(err, errSubmitDisabled):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)

	if status == http.StatusInternalServerError {
		s.log.Error("internal server error",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
		)

		writeJSON(w, status, errorResponse{
			Error: http.StatusText(status),
		})

		return
	}

	writeJSON(w, status, errorResponse{Error: err.Error()})
}
