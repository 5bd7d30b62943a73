package trace

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sanspareilsmyn/powerlens/internal/config"
)

func TestSelectorMatch(t *testing.T) {
	sel := NewSelector(config.SignalsConfig{
		BatteryNames:      []string{"batt.current_ua", "batt.capacity_pct"},
		RailPatterns:      []string{"power", "rail"},
		FrequencyPatterns: []string{"freq", "clock"},
	})

	tests := []struct {
		kind Kind
		name string
		want bool
	}{
		{KindBattery, "batt.current_ua", true},
		{KindBattery, "BATT.Current_UA", true},
		{KindBattery, "batt.current_ua.raw", false},
		{KindRail, "power.rails.cpu.big", true},
		{KindRail, "Guardrail", true},
		{KindRail, "cpu0.freq", false},
		{KindFrequency, "cpu0.freq", true},
		{KindFrequency, "gpu_clock_khz", true},
		{KindFrequency, "batt.current_ua", false},
		{Kind(42), "power", false},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String()+"/"+tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sel.Match(tt.kind, tt.name))
		})
	}
}

func TestSelectorEmptyPatternsMatchNothing(t *testing.T) {
	sel := NewSelector(config.SignalsConfig{})

	assert.False(t, sel.Match(KindBattery, "batt.current_ua"))
	assert.False(t, sel.Match(KindRail, "power.rails.gpu"))
	assert.False(t, sel.Match(KindFrequency, "cpu0.freq"))
}
