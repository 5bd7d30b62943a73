package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the prometheus view of computed results. Each Metrics owns its
// own registry so several traces can be processed in one process.
type Metrics struct {
	registry *prometheus.Registry

	railAvgPower     *prometheus.GaugeVec
	railEnergy       *prometheus.GaugeVec
	railDuration     *prometheus.GaugeVec
	railPoints       *prometheus.GaugeVec
	batteryAvg       *prometheus.GaugeVec
	batteryRate      *prometheus.GaugeVec
	frequencyAvg     *prometheus.GaugeVec
	totalAvgPower    *prometheus.GaugeVec
	totalEnergy      *prometheus.GaugeVec
	budgetViolations *prometheus.CounterVec
}

// NewMetrics creates the collectors on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		railAvgPower: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "powerlens_rail_avg_power_milliwatts",
				Help: "Average power drawn by a rail over its sampled duration.",
			},
			[]string{"trace", "rail"},
		),
		railEnergy: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "powerlens_rail_energy_millijoules",
				Help: "Energy consumed by a rail, excluding counter resets.",
			},
			[]string{"trace", "rail"},
		),
		railDuration: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "powerlens_rail_duration_seconds",
				Help: "Span between the first and last sample of a rail.",
			},
			[]string{"trace", "rail"},
		),
		railPoints: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "powerlens_rail_power_points",
				Help: "Number of accepted power intervals for a rail.",
			},
			[]string{"trace", "rail"},
		),
		batteryAvg: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "powerlens_battery_weighted_avg",
				Help: "Time-weighted average of a battery gauge.",
			},
			[]string{"trace", "signal", "unit"},
		),
		batteryRate: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "powerlens_battery_rate_per_second",
				Help: "Average rate of change of a battery gauge.",
			},
			[]string{"trace", "signal", "unit"},
		),
		frequencyAvg: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "powerlens_frequency_avg",
				Help: "Plain mean of a clock or frequency counter.",
			},
			[]string{"trace", "signal"},
		),
		totalAvgPower: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "powerlens_rails_total_avg_power_milliwatts",
				Help: "Sum of the average power of all rails in a trace.",
			},
			[]string{"trace"},
		),
		totalEnergy: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "powerlens_rails_total_energy_millijoules",
				Help: "Sum of the energy of all rails in a trace.",
			},
			[]string{"trace"},
		),
		budgetViolations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "powerlens_budget_violations_total",
				Help: "Rail budget violations by check type.",
			},
			[]string{"trace", "rail", "check"},
		),
	}
}

// Observe sets every gauge from a trace result.
func (m *Metrics) Observe(res *Result) {
	for _, r := range res.Rails {
		m.railAvgPower.WithLabelValues(res.Trace, r.Label).Set(r.AvgPowerMW)
		m.railEnergy.WithLabelValues(res.Trace, r.Label).Set(r.TotalEnergyMJ)
		m.railDuration.WithLabelValues(res.Trace, r.Label).Set(r.DurationS)
		m.railPoints.WithLabelValues(res.Trace, r.Label).Set(float64(len(r.Points)))
	}
	for _, b := range res.Battery {
		m.batteryAvg.WithLabelValues(res.Trace, b.Label, b.Unit).Set(b.WeightedAvgValue)
		m.batteryRate.WithLabelValues(res.Trace, b.Label, b.Unit).Set(b.RatePerS)
	}
	for _, f := range res.Frequency {
		m.frequencyAvg.WithLabelValues(res.Trace, f.Label).Set(f.Avg)
	}
	m.totalAvgPower.WithLabelValues(res.Trace).Set(res.Totals.TotalAvgPowerMW)
	m.totalEnergy.WithLabelValues(res.Trace).Set(res.Totals.TotalEnergyMJ)
}

// Gatherer exposes the registry, mainly for tests.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// WriteTextfile writes the registry in the text exposition format, creating the
// parent directory when needed.
func (m *Metrics) WriteTextfile(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("%w: %w", ErrExportFailed, err)
		}
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("%w: %w", ErrExportFailed, err)
	}
	return nil
}
