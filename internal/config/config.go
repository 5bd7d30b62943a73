package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	defaultReportOutput   = "report/report.html"
	defaultReportSummary  = true
	defaultCompareMetric  = MetricAvgPower
	defaultCompareOutput  = "compare_report.html"
	defaultKafkaTopic     = "powerlens-metrics"
	defaultLogLevel       = "info"
	defaultLogFormat      = "console"
	defaultLogFileEnabled = false
	defaultLogDirectory   = "log"
	defaultLogFilename    = "powerlens.log"
	defaultLogMaxSizeMB   = 100
	defaultLogMaxBackups  = 3
	defaultLogMaxAgeDays  = 7
	defaultLogCompress    = false

	// Environment variable prefix
	envPrefix = "POWERLENS"
)

// Comparison metrics selectable for cross-trace ranking.
const (
	MetricAvgPower   = "avg_power"
	MetricTotalPower = "total_power"
)

var (
	defaultBatteryNames      = []string{"batt.current_ua", "batt.capacity_pct", "batt.charge_uah"}
	defaultRailPatterns      = []string{"power", "rail"}
	defaultFrequencyPatterns = []string{"clock", "freq"}
)

type Config struct {
	Trace   TraceConfig    `mapstructure:"trace"`
	Signals SignalsConfig  `mapstructure:"signals"`
	Report  ReportConfig   `mapstructure:"report"`
	Compare CompareConfig  `mapstructure:"compare"`
	Budgets []BudgetConfig `mapstructure:"budgets"`
	Export  ExportConfig   `mapstructure:"export"`
	Log     LogConfig      `mapstructure:"log"`
}

// TraceConfig identifies the trace a single run reads from.
type TraceConfig struct {
	Source string `mapstructure:"source"`
}

// SignalsConfig selects which counter tracks feed each reducer.
type SignalsConfig struct {
	BatteryNames      []string `mapstructure:"batteryNames"`      // exact, lower-cased
	RailPatterns      []string `mapstructure:"railPatterns"`      // substrings of the lower-cased name
	FrequencyPatterns []string `mapstructure:"frequencyPatterns"` // substrings of the lower-cased name
}

type ReportConfig struct {
	Output  string `mapstructure:"output"`
	Summary bool   `mapstructure:"summary"`
}

type CompareConfig struct {
	Traces       []string `mapstructure:"traces"`
	Metric       string   `mapstructure:"metric"`
	Output       string   `mapstructure:"output"`
	MatrixOutput string   `mapstructure:"matrixOutput"`
}

// BudgetConfig holds optional per-rail limits. A nil limit is not checked.
type BudgetConfig struct {
	Rail          string   `mapstructure:"rail"`
	MaxAvgPowerMW *float64 `mapstructure:"maxAvgPowerMW"`
	MaxEnergyMJ   *float64 `mapstructure:"maxEnergyMJ"`
}

type ExportConfig struct {
	Textfile string      `mapstructure:"textfile"`
	Kafka    KafkaConfig `mapstructure:"kafka"`
}

type KafkaConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type LogConfig struct {
	Level              string `mapstructure:"level"`
	Format             string `mapstructure:"format"`
	FileLoggingEnabled bool   `mapstructure:"fileLoggingEnabled"`
	Directory          string `mapstructure:"directory"`
	Filename           string `mapstructure:"filename"`
	MaxSize            int    `mapstructure:"maxSize"`    // Max size in MB
	MaxBackups         int    `mapstructure:"maxBackups"` // Max backup files
	MaxAge             int    `mapstructure:"maxAge"`     // Max days to retain
	Compress           bool   `mapstructure:"compress"`   // Compress rotated files?
}

// Load initializes viper, reads config, applies defaults, unmarshals, and validates.
// An empty configPath skips the file and uses defaults plus environment overrides.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	configureViper(v, configPath)

	setDefaults(v)

	if configPath != "" {
		if err := readConfigFile(v); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnmarshallingConfig, err)
	}
	normalize(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// configureViper sets up viper instance for file and environment variables.
func configureViper(v *viper.Viper, configPath string) {
	if configPath != "" {
		v.SetConfigFile(configPath)
	}

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
}

// setDefaults applies default configuration values using Viper.
func setDefaults(v *viper.Viper) {
	v.SetDefault("trace.source", "")
	v.SetDefault("signals.batteryNames", defaultBatteryNames)
	v.SetDefault("signals.railPatterns", defaultRailPatterns)
	v.SetDefault("signals.frequencyPatterns", defaultFrequencyPatterns)
	v.SetDefault("report.output", defaultReportOutput)
	v.SetDefault("report.summary", defaultReportSummary)
	v.SetDefault("compare.metric", defaultCompareMetric)
	v.SetDefault("compare.output", defaultCompareOutput)
	v.SetDefault("compare.matrixOutput", "")
	v.SetDefault("export.textfile", "")
	v.SetDefault("export.kafka.enabled", false)
	v.SetDefault("export.kafka.topic", defaultKafkaTopic)
	v.SetDefault("log.level", defaultLogLevel)
	v.SetDefault("log.format", defaultLogFormat)
	v.SetDefault("log.fileLoggingEnabled", defaultLogFileEnabled)
	v.SetDefault("log.directory", defaultLogDirectory)
	v.SetDefault("log.filename", defaultLogFilename)
	v.SetDefault("log.maxSize", defaultLogMaxSizeMB)
	v.SetDefault("log.maxBackups", defaultLogMaxBackups)
	v.SetDefault("log.maxAge", defaultLogMaxAgeDays)
	v.SetDefault("log.compress", defaultLogCompress)
}

// readConfigFile attempts to read the configuration file specified in viper.
func readConfigFile(v *viper.Viper) error {
	err := v.ReadInConfig()
	if err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) || errors.Is(err, fs.ErrNotExist) {
			return ErrConfigFileMissing
		}
		return fmt.Errorf("%w: %w", ErrReadingConfigFile, err)
	}
	return nil
}

// normalize lower-cases signal selectors so matching is done against lower-cased names.
func normalize(cfg *Config) {
	lower := func(in []string) []string {
		out := make([]string, 0, len(in))
		for _, s := range in {
			if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	cfg.Signals.BatteryNames = lower(cfg.Signals.BatteryNames)
	cfg.Signals.RailPatterns = lower(cfg.Signals.RailPatterns)
	cfg.Signals.FrequencyPatterns = lower(cfg.Signals.FrequencyPatterns)
	cfg.Log.Format = strings.ToLower(cfg.Log.Format)
}

// Validate checks a loaded or flag-adjusted configuration.
func Validate(cfg *Config) error {
	if len(cfg.Signals.RailPatterns) == 0 {
		return ErrEmptyRailPatterns
	}
	if cfg.Compare.Metric != MetricAvgPower && cfg.Compare.Metric != MetricTotalPower {
		return fmt.Errorf("%w: %q", ErrInvalidCompareMetric, cfg.Compare.Metric)
	}
	if out := cfg.Compare.MatrixOutput; out != "" {
		switch strings.ToLower(filepath.Ext(out)) {
		case ".yaml", ".yml", ".json":
		default:
			return fmt.Errorf("%w: %q", ErrInvalidMatrixOutput, out)
		}
	}
	if cfg.Export.Kafka.Enabled {
		if len(cfg.Export.Kafka.Brokers) == 0 {
			return ErrEmptyKafkaBrokers
		}
		if cfg.Export.Kafka.Topic == "" {
			return ErrEmptyKafkaTopic
		}
	}
	for i, b := range cfg.Budgets {
		if b.Rail == "" {
			return fmt.Errorf("%w: budgets[%d]", ErrBudgetWithoutRail, i)
		}
	}
	if cfg.Log.Format != "console" && cfg.Log.Format != "json" {
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, cfg.Log.Format)
	}
	return nil
}
