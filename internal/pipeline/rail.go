package pipeline

// ReduceRail computes power and energy for a normalized cumulative energy
// counter in micro-joules.
//
// Each adjacent pair with a positive duration and a non-negative energy delta
// contributes its delta to the total and one power point. A decreasing counter
// marks a reset; that interval is dropped entirely.
func ReduceRail(s Series) RailMetric {
	m := RailMetric{Label: s.Label, Unit: s.Unit}
	samples := s.Samples
	if len(samples) == 0 {
		return m
	}

	start := samples[0].TS
	var totalEnergyUJ, powerSum float64
	for i := 1; i < len(samples); i++ {
		prev, cur := samples[i-1], samples[i]
		dt := nsToSeconds(cur.TS - prev.TS)
		if dt <= 0 {
			continue
		}
		de := cur.Value - prev.Value
		if de < 0 {
			continue
		}
		totalEnergyUJ += de
		pMW := de / dt / 1000
		powerSum += pMW
		m.Points = append(m.Points, PowerPoint{TRelS: nsToSeconds(cur.TS - start), PowerMW: pMW})
	}

	m.DurationS = timeSpan(samples)
	switch {
	case m.DurationS > 0:
		m.AvgPowerMW = totalEnergyUJ / m.DurationS / 1000
	case len(m.Points) > 0:
		m.AvgPowerMW = powerSum / float64(len(m.Points))
	}
	m.TotalEnergyMJ = totalEnergyUJ / 1000
	return m
}
