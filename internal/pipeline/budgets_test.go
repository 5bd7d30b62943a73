package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/sanspareilsmyn/powerlens/internal/config"
)

func limit(v float64) *float64 {
	return &v
}

func TestBudgetChecker(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	metrics := NewMetrics()
	checker := NewBudgetChecker([]config.BudgetConfig{
		{Rail: "gpu", MaxAvgPowerMW: limit(100)},
		{Rail: "cpu", MaxAvgPowerMW: limit(10), MaxEnergyMJ: limit(1)},
		{Rail: "cpu", MaxEnergyMJ: limit(50)},
		{Rail: "ddr", MaxAvgPowerMW: limit(5)},
	}, metrics, zap.New(core))

	violations := checker.Check("run", []RailMetric{
		{Label: "cpu", AvgPowerMW: 500, TotalEnergyMJ: 60},
		{Label: "gpu", AvgPowerMW: 100, TotalEnergyMJ: 999},
		{Label: "ddr", AvgPowerMW: 5.5},
		{Label: "display", AvgPowerMW: 1e6},
	})

	assert.Equal(t, []Violation{
		{Rail: "cpu", Check: "energy", Actual: 60, Limit: 50},
		{Rail: "ddr", Check: "avg_power", Actual: 5.5, Limit: 5},
	}, violations)
	assert.Equal(t, 2, logs.FilterMessage("Rail budget violation").Len())
}

func TestBudgetCheckerWithoutBudgets(t *testing.T) {
	checker := NewBudgetChecker(nil, nil, zap.NewNop())

	assert.Empty(t, checker.Check("run", []RailMetric{{Label: "cpu", AvgPowerMW: 1}}))
}
