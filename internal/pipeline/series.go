package pipeline

import (
	"sort"

	"github.com/sanspareilsmyn/powerlens/internal/trace"
)

// Group partitions rows by exact signal name. Every row lands in exactly one
// series; an empty name is a valid label. Series are returned in order of first
// appearance and the last unit seen for a name wins.
func Group(rows []trace.Row) []Series {
	index := make(map[string]int)
	var groups []Series
	for _, r := range rows {
		i, ok := index[r.Name]
		if !ok {
			i = len(groups)
			index[r.Name] = i
			groups = append(groups, Series{Label: r.Name})
		}
		groups[i].Unit = r.Unit
		groups[i].Samples = append(groups[i].Samples, Sample{TS: r.TS, Value: r.Value})
	}
	return groups
}

// Normalize returns a copy of s with samples stably sorted by timestamp.
// Reducers assume normalized input and never sort themselves.
func Normalize(s Series) Series {
	samples := make([]Sample, len(s.Samples))
	copy(samples, s.Samples)
	sort.SliceStable(samples, func(i, j int) bool {
		return samples[i].TS < samples[j].TS
	})
	s.Samples = samples
	return s
}

// timeSpan returns (last-first) in seconds for sorted samples, 0 when fewer than two.
func timeSpan(samples []Sample) float64 {
	if len(samples) < 2 {
		return 0
	}
	return nsToSeconds(samples[len(samples)-1].TS - samples[0].TS)
}

func nsToSeconds(ns int64) float64 {
	return float64(ns) / 1e9
}
