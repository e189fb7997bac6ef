package config

import "errors"

// Configuration validation errors returned by Config.Validate.
// Callers match them with errors.Is.
var (
	// ErrNoTarget is returned when no page URL or file is given.
	ErrNoTarget = errors.New("no target specified: provide a page URL or an HTML file")

	// ErrInvalidTimeout is returned when the probe step timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid probe timeout: must be positive")

	// ErrInvalidDebounce is returned when the preview debounce delay is negative.
	ErrInvalidDebounce = errors.New("invalid debounce delay: must be non-negative")

	// ErrInvalidViewport is returned when a viewport dimension is not positive.
	ErrInvalidViewport = errors.New("invalid viewport: width and height must be positive")

	// ErrInvalidPreviewSize is returned when an overlay dimension is not positive.
	ErrInvalidPreviewSize = errors.New("invalid preview size: width and height must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown are given.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")
)
