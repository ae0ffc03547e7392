package config

import "errors"

// Configuration errors returned by Load and Validate. Callers match them
// with errors.Is.
var (
	// ErrConfigNotFound is returned when an explicitly requested config file does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")

	// ErrNoBaseURL is returned when no site base URL is configured.
	ErrNoBaseURL = errors.New("no base url configured: set base_url or SV_BASE_URL")

	// ErrInvalidBaseURL is returned when the base URL is not an absolute http(s) URL.
	ErrInvalidBaseURL = errors.New("invalid base url: must be an absolute http or https url")

	// ErrInvalidTimeout is returned when the request timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidPageSize is returned when the default page size is outside [10, 50].
	ErrInvalidPageSize = errors.New("invalid default page size: must be between 10 and 50")
)
