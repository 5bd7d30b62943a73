package compare

import (
	"fmt"
	"sort"

	"github.com/sanspareilsmyn/powerlens/internal/config"
	"github.com/sanspareilsmyn/powerlens/internal/pipeline"
)

// Cell holds one rail's values in one trace.
type Cell struct {
	AvgPower   float64 `json:"avg_power" yaml:"avg_power"`
	TotalPower float64 `json:"total_power" yaml:"total_power"` // energy in mJ
}

// Value selects the comparison metric from the cell.
func (c Cell) Value(metric string) float64 {
	if metric == config.MetricTotalPower {
		return c.TotalPower
	}
	return c.AvgPower
}

// Matrix re-keys rail metrics by (rail, trace). Rails keep the order in which
// they were first added; an absent cell counts as zero.
type Matrix struct {
	TraceLabels []string
	rails       []string
	cells       map[string]map[string]Cell
}

// NewMatrix creates an empty matrix.
func NewMatrix() *Matrix {
	return &Matrix{cells: make(map[string]map[string]Cell)}
}

// Add merges the rails of one trace. Adding the same trace label twice
// overwrites earlier cells without duplicating the label.
func (m *Matrix) Add(traceLabel string, rails []pipeline.RailMetric) {
	if !m.hasTrace(traceLabel) {
		m.TraceLabels = append(m.TraceLabels, traceLabel)
	}
	for _, r := range rails {
		row, ok := m.cells[r.Label]
		if !ok {
			row = make(map[string]Cell)
			m.cells[r.Label] = row
			m.rails = append(m.rails, r.Label)
		}
		row[traceLabel] = Cell{AvgPower: r.AvgPowerMW, TotalPower: r.TotalEnergyMJ}
	}
}

func (m *Matrix) hasTrace(label string) bool {
	for _, l := range m.TraceLabels {
		if l == label {
			return true
		}
	}
	return false
}

// Rails returns rail labels in insertion order.
func (m *Matrix) Rails() []string {
	out := make([]string, len(m.rails))
	copy(out, m.rails)
	return out
}

// Cell returns the cell for (rail, trace) and whether it is present.
func (m *Matrix) Cell(rail, traceLabel string) (Cell, bool) {
	c, ok := m.cells[rail][traceLabel]
	return c, ok
}

// Values returns the metric for rail across TraceLabels, zero where absent.
func (m *Matrix) Values(rail, metric string) []float64 {
	out := make([]float64, len(m.TraceLabels))
	for i, l := range m.TraceLabels {
		out[i] = m.cells[rail][l].Value(metric)
	}
	return out
}

// RankedRail is a rail with its peak metric value across traces.
type RankedRail struct {
	Rail string
	Peak float64
}

// Rank orders rails by their maximum metric value across traces, highest first.
// Ties keep insertion order.
func (m *Matrix) Rank(metric string) ([]RankedRail, error) {
	if err := checkMetric(metric); err != nil {
		return nil, err
	}
	ranked := make([]RankedRail, len(m.rails))
	for i, rail := range m.rails {
		peak, first := 0.0, true
		for _, c := range m.cells[rail] {
			if v := c.Value(metric); first || v > peak {
				peak, first = v, false
			}
		}
		ranked[i] = RankedRail{Rail: rail, Peak: peak}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Peak > ranked[j].Peak
	})
	return ranked, nil
}

// Totals sums the metric over all rails per trace label. Absent cells add nothing.
func (m *Matrix) Totals(metric string) (map[string]float64, error) {
	if err := checkMetric(metric); err != nil {
		return nil, err
	}
	totals := make(map[string]float64, len(m.TraceLabels))
	for _, l := range m.TraceLabels {
		var values []float64
		for _, rail := range m.rails {
			if c, ok := m.cells[rail][l]; ok {
				values = append(values, c.Value(metric))
			}
		}
		totals[l] = pipeline.ExactSum(values)
	}
	return totals, nil
}

// Export is the serialisable form of the matrix.
type Export struct {
	TraceLabels []string                   `json:"trace_labels" yaml:"trace_labels"`
	Rails       map[string]map[string]Cell `json:"rails" yaml:"rails"`
}

// Export returns a deep copy suitable for encoding.
func (m *Matrix) Export() Export {
	rails := make(map[string]map[string]Cell, len(m.cells))
	for rail, row := range m.cells {
		cp := make(map[string]Cell, len(row))
		for l, c := range row {
			cp[l] = c
		}
		rails[rail] = cp
	}
	labels := make([]string, len(m.TraceLabels))
	copy(labels, m.TraceLabels)
	return Export{TraceLabels: labels, Rails: rails}
}

func checkMetric(metric string) error {
	if metric != config.MetricAvgPower && metric != config.MetricTotalPower {
		return fmt.Errorf("%w: %q", ErrUnknownMetric, metric)
	}
	return nil
}
