package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "powerlens.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("without a file uses defaults", func(t *testing.T) {
		cfg, err := Load("")

		require.NoError(t, err)
		assert.Equal(t, []string{"batt.current_ua", "batt.capacity_pct", "batt.charge_uah"}, cfg.Signals.BatteryNames)
		assert.Equal(t, []string{"power", "rail"}, cfg.Signals.RailPatterns)
		assert.Equal(t, []string{"clock", "freq"}, cfg.Signals.FrequencyPatterns)
		assert.Equal(t, MetricAvgPower, cfg.Compare.Metric)
		assert.Equal(t, "report/report.html", cfg.Report.Output)
		assert.True(t, cfg.Report.Summary)
		assert.False(t, cfg.Export.Kafka.Enabled)
		assert.Equal(t, "console", cfg.Log.Format)
	})

	t.Run("reads file values and budgets", func(t *testing.T) {
		path := writeConfig(t, `
trace:
  source: "a.db"
signals:
  railPatterns: ["Power", " ODPM "]
compare:
  metric: total_power
budgets:
  - rail: gpu
    maxAvgPowerMW: 600
  - rail: cpu
    maxEnergyMJ: 12.5
`)

		cfg, err := Load(path)

		require.NoError(t, err)
		assert.Equal(t, "a.db", cfg.Trace.Source)
		assert.Equal(t, []string{"power", "odpm"}, cfg.Signals.RailPatterns)
		assert.Equal(t, MetricTotalPower, cfg.Compare.Metric)
		require.Len(t, cfg.Budgets, 2)
		require.NotNil(t, cfg.Budgets[0].MaxAvgPowerMW)
		assert.Equal(t, 600.0, *cfg.Budgets[0].MaxAvgPowerMW)
		assert.Nil(t, cfg.Budgets[0].MaxEnergyMJ)
		require.NotNil(t, cfg.Budgets[1].MaxEnergyMJ)
		assert.Equal(t, 12.5, *cfg.Budgets[1].MaxEnergyMJ)
	})

	t.Run("environment overrides defaults", func(t *testing.T) {
		t.Setenv("POWERLENS_COMPARE_METRIC", "total_power")
		t.Setenv("POWERLENS_TRACE_SOURCE", "env.jsonl")

		cfg, err := Load("")

		require.NoError(t, err)
		assert.Equal(t, MetricTotalPower, cfg.Compare.Metric)
		assert.Equal(t, "env.jsonl", cfg.Trace.Source)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))

		assert.ErrorIs(t, err, ErrConfigFileMissing)
	})

	t.Run("invalid metric", func(t *testing.T) {
		path := writeConfig(t, "compare:\n  metric: peak\n")

		_, err := Load(path)

		assert.ErrorIs(t, err, ErrInvalidCompareMetric)
	})
}

func TestValidate(t *testing.T) {
	base := func(t *testing.T) *Config {
		cfg, err := Load("")
		require.NoError(t, err)
		return cfg
	}

	t.Run("empty rail patterns", func(t *testing.T) {
		cfg := base(t)
		cfg.Signals.RailPatterns = nil
		assert.ErrorIs(t, Validate(cfg), ErrEmptyRailPatterns)
	})

	t.Run("kafka enabled without brokers", func(t *testing.T) {
		cfg := base(t)
		cfg.Export.Kafka.Enabled = true
		assert.ErrorIs(t, Validate(cfg), ErrEmptyKafkaBrokers)
	})

	t.Run("kafka enabled without topic", func(t *testing.T) {
		cfg := base(t)
		cfg.Export.Kafka = KafkaConfig{Enabled: true, Brokers: []string{"localhost:9092"}}
		assert.ErrorIs(t, Validate(cfg), ErrEmptyKafkaTopic)
	})

	t.Run("budget without rail", func(t *testing.T) {
		cfg := base(t)
		cfg.Budgets = []BudgetConfig{{}}
		assert.ErrorIs(t, Validate(cfg), ErrBudgetWithoutRail)
	})

	t.Run("matrix output extension", func(t *testing.T) {
		cfg := base(t)
		cfg.Compare.MatrixOutput = "matrix.csv"
		assert.ErrorIs(t, Validate(cfg), ErrInvalidMatrixOutput)

		cfg.Compare.MatrixOutput = "matrix.YAML"
		assert.NoError(t, Validate(cfg))
	})

	t.Run("log format", func(t *testing.T) {
		cfg := base(t)
		cfg.Log.Format = "xml"
		assert.ErrorIs(t, Validate(cfg), ErrInvalidLogFormat)
	})
}
