package trace

import (
	"strings"

	"github.com/sanspareilsmyn/powerlens/internal/config"
)

// Row is one counter sample as delivered by a trace query.
type Row struct {
	TS    int64   `json:"ts"` // nanoseconds
	Value float64 `json:"value"`
	Name  string  `json:"name"`
	Unit  string  `json:"unit"`
}

// Kind names one of the logical counter queries.
type Kind int

const (
	KindBattery Kind = iota
	KindRail
	KindFrequency
)

func (k Kind) String() string {
	switch k {
	case KindBattery:
		return "battery"
	case KindRail:
		return "rail"
	case KindFrequency:
		return "frequency"
	default:
		return "unknown"
	}
}

// Selector decides which counter tracks belong to each query kind.
// Battery names match exactly; rail and frequency patterns match as substrings.
// All comparisons are made against the lower-cased track name.
type Selector struct {
	BatteryNames      []string
	RailPatterns      []string
	FrequencyPatterns []string
}

// NewSelector builds a Selector from the signals configuration.
func NewSelector(cfg config.SignalsConfig) Selector {
	return Selector{
		BatteryNames:      lowerAll(cfg.BatteryNames),
		RailPatterns:      lowerAll(cfg.RailPatterns),
		FrequencyPatterns: lowerAll(cfg.FrequencyPatterns),
	}
}

// Match reports whether a track name belongs to the given query kind.
// The substring rule for rails is broad and may admit non-power counters.
func (s Selector) Match(kind Kind, name string) bool {
	lname := strings.ToLower(name)
	switch kind {
	case KindBattery:
		for _, n := range s.BatteryNames {
			if lname == n {
				return true
			}
		}
	case KindRail:
		return containsAny(lname, s.RailPatterns)
	case KindFrequency:
		return containsAny(lname, s.FrequencyPatterns)
	}
	return false
}

func containsAny(s string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}
