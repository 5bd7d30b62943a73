package pipeline

// ReduceBattery computes gauge statistics for a normalized series.
//
// The average is trapezoidal and time-weighted. Intervals whose duration is not
// positive are skipped in both numerator and denominator. When no interval
// survives, the plain arithmetic mean is used instead. The rate of change divides
// by the summed valid intervals, which is not DurationS when intervals were skipped.
func ReduceBattery(s Series) BatteryMetric {
	m := BatteryMetric{Label: s.Label, Unit: s.Unit, Count: len(s.Samples)}
	if m.Count == 0 {
		return m
	}

	samples := s.Samples
	m.DurationS = timeSpan(samples)
	m.FirstValue = samples[0].Value
	m.LastValue = samples[len(samples)-1].Value
	m.MinValue, m.MaxValue = samples[0].Value, samples[0].Value

	var weightedSum, totalDt, sum float64
	for i, cur := range samples {
		sum += cur.Value
		m.MinValue = min(m.MinValue, cur.Value)
		m.MaxValue = max(m.MaxValue, cur.Value)
		if i == 0 {
			continue
		}
		prev := samples[i-1]
		dt := nsToSeconds(cur.TS - prev.TS)
		if dt <= 0 {
			continue
		}
		weightedSum += (prev.Value + cur.Value) / 2 * dt
		totalDt += dt
	}

	m.DeltaValue = m.LastValue - m.FirstValue
	if totalDt > 0 {
		m.WeightedAvgValue = weightedSum / totalDt
		m.RatePerS = m.DeltaValue / totalDt
	} else {
		m.WeightedAvgValue = sum / float64(m.Count)
	}
	return m
}
