package tracker

import "github.com/ayoisaiah/worklog/internal/apperr"

var (
	ErrKeyFormat = &apperr.Error{
		Message: "key %q does not look like an issue key (e.g. ABC-123)",
	}

	ErrOccupied = &apperr.Error{
		Message: "a tracker for %q already exists",
	}

	ErrNotFound = &apperr.Error{
		Message: "tracker not found: %s",
	}

	ErrDurationAdjustment = &apperr.Error{
		Message: "cannot subtract %s from %q: only %s has been tracked",
	}

	ErrNegativeAdjustment = &apperr.Error{
		Message: "adjustment for %q must not be negative, got %s",
	}
)

var (
	ErrFlush = &apperr.Error{
		Message: "flushing tracker state failed",
	}

	ErrReload = &apperr.Error{
		Message: "reloading tracker state failed",
	}

	ErrLoad = &apperr.Error{
		Message: "loading tracker state failed",
	}

	ErrCorruptState = &apperr.Error{
		Message: "corrupt tracker state: %s",
	}
)
