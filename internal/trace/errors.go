package trace

import "errors"

var (
	// ErrSourceUnavailable marks a trace that cannot be opened or queried. It is fatal for that trace.
	ErrSourceUnavailable = errors.New("trace source unavailable")
	ErrUnsupportedFormat = errors.New("unsupported trace format")
	ErrMalformedRecord   = errors.New("malformed counter record")
	ErrWriteFailed       = errors.New("failed to write trace")
)
