package report

import "errors"

var (
	ErrRenderFailed = errors.New("failed to render report")
	ErrWriteFailed  = errors.New("failed to write report")
)
