package pipeline

// ReduceFrequency returns the plain mean, max and min of the raw values.
// Sample order does not matter.
func ReduceFrequency(s Series) FrequencyMetric {
	m := FrequencyMetric{Label: s.Label, Unit: s.Unit, Count: len(s.Samples)}
	if m.Count == 0 {
		return m
	}
	m.Min, m.Max = s.Samples[0].Value, s.Samples[0].Value
	var sum float64
	for _, sm := range s.Samples {
		sum += sm.Value
		m.Min = min(m.Min, sm.Value)
		m.Max = max(m.Max, sm.Value)
	}
	m.Avg = sum / float64(m.Count)
	return m
}
