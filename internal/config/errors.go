package config

import "errors"

var (
	ErrReadingConfigFile    = errors.New("failed to read config file")
	ErrUnmarshallingConfig  = errors.New("failed to unmarshal config")
	ErrConfigFileMissing    = errors.New("config file not found")
	ErrEmptyRailPatterns    = errors.New("signals railPatterns cannot be empty")
	ErrInvalidCompareMetric = errors.New("compare metric must be avg_power or total_power")
	ErrInvalidMatrixOutput  = errors.New("compare matrixOutput must end in .yaml, .yml or .json")
	ErrEmptyKafkaBrokers    = errors.New("kafka brokers list cannot be empty when export is enabled")
	ErrEmptyKafkaTopic      = errors.New("kafka topic cannot be empty when export is enabled")
	ErrBudgetWithoutRail    = errors.New("budget entry must name a rail")
	ErrInvalidLogFormat     = errors.New("log format must be console or json")
)
