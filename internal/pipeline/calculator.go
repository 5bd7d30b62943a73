package pipeline

import (
	"go.uber.org/zap"

	"github.com/sanspareilsmyn/powerlens/internal/trace"
)

// Calculator turns fetched counter rows into per-signal metrics.
// It holds no state between calls.
type Calculator struct {
	logger *zap.Logger
}

// NewCalculator creates a new Calculator instance.
func NewCalculator(logger *zap.Logger) *Calculator {
	return &Calculator{logger: logger}
}

// Battery groups, normalizes and reduces battery gauge rows.
func (c *Calculator) Battery(rows []trace.Row) []BatteryMetric {
	groups := Group(rows)
	out := make([]BatteryMetric, 0, len(groups))
	for _, g := range groups {
		m := ReduceBattery(Normalize(g))
		c.logger.Debug("Reduced battery signal",
			zap.String("signal", m.Label),
			zap.Int("count", m.Count),
			zap.Float64("weighted_avg", m.WeightedAvgValue),
			zap.Float64("rate_per_s", m.RatePerS),
		)
		out = append(out, m)
	}
	return out
}

// Rails groups, normalizes and reduces rail energy counters. The returned
// slice keeps first-appearance order; the span covers every rail sample.
func (c *Calculator) Rails(rows []trace.Row) (rails []RailMetric, spanS float64) {
	if len(rows) > 0 {
		lo, hi := rows[0].TS, rows[0].TS
		for _, r := range rows[1:] {
			lo, hi = min(lo, r.TS), max(hi, r.TS)
		}
		spanS = nsToSeconds(hi - lo)
	}

	groups := Group(rows)
	rails = make([]RailMetric, 0, len(groups))
	for _, g := range groups {
		m := ReduceRail(Normalize(g))
		c.logger.Debug("Reduced rail signal",
			zap.String("rail", m.Label),
			zap.Int("samples", len(g.Samples)),
			zap.Int("points", len(m.Points)),
			zap.Float64("avg_power_mw", m.AvgPowerMW),
			zap.Float64("energy_mj", m.TotalEnergyMJ),
		)
		rails = append(rails, m)
	}
	return rails, spanS
}

// Frequency groups and reduces clock/frequency rows.
func (c *Calculator) Frequency(rows []trace.Row) []FrequencyMetric {
	groups := Group(rows)
	out := make([]FrequencyMetric, 0, len(groups))
	for _, g := range groups {
		out = append(out, ReduceFrequency(g))
	}
	return out
}

// Calculate reduces all three row sets of one trace.
func (c *Calculator) Calculate(traceLabel string, battery, rails, frequency []trace.Row) *Result {
	railMetrics, span := c.Rails(rails)
	res := &Result{
		Trace:     traceLabel,
		Battery:   c.Battery(battery),
		Rails:     RankRails(railMetrics),
		Frequency: c.Frequency(frequency),
		Totals:    Totals(railMetrics),
		RailSpanS: span,
	}
	c.logger.Info("Trace reduced",
		zap.String("trace", traceLabel),
		zap.Int("battery_signals", len(res.Battery)),
		zap.Int("rails", len(res.Rails)),
		zap.Int("frequency_signals", len(res.Frequency)),
		zap.Float64("total_avg_power_mw", res.Totals.TotalAvgPowerMW),
		zap.Float64("total_energy_mj", res.Totals.TotalEnergyMJ),
	)
	return res
}
