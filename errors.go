package icat

import "errors"

var (
	// ErrInvalidSizeSpec is returned for a width or height that is not
	// "auto", N, Npx or N%.
	ErrInvalidSizeSpec = errors.New("invalid size spec")
	// ErrMissingDependency is returned when no base64 codec strategy is available.
	ErrMissingDependency = errors.New("missing dependency")
	// ErrSourceUnavailable wraps file, URL and stdin read failures.
	ErrSourceUnavailable = errors.New("source unavailable")
	// ErrNoImageProduced is returned when a run never reached the encoder.
	ErrNoImageProduced = errors.New("no image produced")
)
