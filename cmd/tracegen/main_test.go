package main

import (
	"math/rand"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanspareilsmyn/powerlens/internal/trace"
)

func TestGenerateRows(t *testing.T) {
	rows := generateRows(rand.New(rand.NewSource(7)), 5*time.Second, 250*time.Millisecond, true)

	byName := make(map[string][]trace.Row)
	for _, r := range rows {
		byName[r.Name] = append(byName[r.Name], r)
	}
	for _, rail := range rails {
		require.Contains(t, byName, rail.name)
	}
	for _, name := range []string{"batt.current_ua", "batt.capacity_pct", "batt.charge_uah", "cpu0.freq", "cpu3.freq"} {
		assert.Contains(t, byName, name)
	}

	for _, rail := range rails {
		samples := byName[rail.name]
		sort.Slice(samples, func(i, j int) bool { return samples[i].TS < samples[j].TS })

		drops := 0
		for i := 1; i < len(samples); i++ {
			assert.Greater(t, samples[i].TS, samples[i-1].TS)
			if samples[i].Value < samples[i-1].Value {
				drops++
			}
		}
		assert.Equal(t, 1, drops, "rail %s should reset exactly once", rail.name)
	}
}

func TestGenerateRowsWithoutReset(t *testing.T) {
	rows := generateRows(rand.New(rand.NewSource(3)), 2*time.Second, 100*time.Millisecond, false)

	last := make(map[string]float64)
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].TS < rows[j].TS })
	for _, r := range rows {
		if r.Unit != "uJ" {
			continue
		}
		assert.GreaterOrEqual(t, r.Value, last[r.Name])
		last[r.Name] = r.Value
	}
}
