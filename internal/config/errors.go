package config

import "github.com/ayoisaiah/worklog/internal/apperr"

var (
	errConfigOption = &apperr.Error{
		Message: "config option error",
	}

	errConfigValidation = &apperr.Error{
		Message: "config validation error",
	}

	errReadConfig = &apperr.Error{
		Message: "reading config file failed",
	}

	errWriteConfig = &apperr.Error{
		Message: "writing default config failed",
	}

	errInvalidPort = &apperr.Error{
		Message: "port %d must be between %d and %d",
	}

	errInvalidDriver = &apperr.Error{
		Message: "unknown storage driver %q (must be one of %s)",
	}

	errEmptyPath = &apperr.Error{
		Message: "%s path cannot be empty",
	}

	errNegativeReloadDelay = &apperr.Error{
		Message: "reload delay cannot be negative, got %v",
	}

	errInvalidLogLevel = &apperr.Error{
		Message: "unknown log level %q (must be one of %s)",
	}

	errMissingSetting = &apperr.Error{
		Message: "%s must be set when %s is set",
	}

	errInvalidURL = &apperr.Error{
		Message: "%s must be an absolute http(s) URL, got %q",
	}
)
