package compare

import "errors"

var (
	ErrNoTraces      = errors.New("no trace could be processed")
	ErrUnknownMetric = errors.New("unknown comparison metric")
)
