package pipeline

import "errors"

var (
	ErrFetchFailed        = errors.New("failed to fetch counter rows")
	ErrExportFailed       = errors.New("failed to export metrics")
	ErrPublishFailed      = errors.New("failed to publish metric records")
	ErrInvalidKafkaConfig = errors.New("invalid Kafka configuration provided")
)
