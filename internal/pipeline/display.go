package pipeline

import (
	"sort"
	"strconv"
)

// Display records carry every number as a fixed-point string. Only this layer rounds.

type BatteryRecord struct {
	Label            string `json:"label"`
	Unit             string `json:"unit"`
	DeltaValue       string `json:"delta_value"`
	RatePerS         string `json:"rate_per_s"`
	WeightedAvgValue string `json:"weighted_avg_value"`
	Count            string `json:"count"`
	FirstValue       string `json:"first_value"`
	LastValue        string `json:"last_value"`
	MinValue         string `json:"min_value"`
	MaxValue         string `json:"max_value"`
}

type RailRecord struct {
	Label        string       `json:"label"`
	Duration     string       `json:"duration"`
	AvgPower     string       `json:"avg_power"`
	TotalPower   string       `json:"total_power"`
	SeriesPoints []PowerPoint `json:"series_points"`
}

type FrequencyRecord struct {
	Label   string `json:"label"`
	AvgFreq string `json:"avg_freq"`
	MaxFreq string `json:"max_freq"`
	MinFreq string `json:"min_freq"`
}

type TotalsRecord struct {
	Duration    string `json:"duration"`
	AvgPower    string `json:"avg_power"`
	TotalEnergy string `json:"total_power"`
}

// Fixed3 renders v with three decimals.
func Fixed3(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

func seconds6(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64) + "s"
}

func (m BatteryMetric) Record() BatteryRecord {
	return BatteryRecord{
		Label:            m.Label,
		Unit:             m.Unit,
		DeltaValue:       Fixed3(m.DeltaValue),
		RatePerS:         Fixed3(m.RatePerS),
		WeightedAvgValue: Fixed3(m.WeightedAvgValue),
		Count:            strconv.Itoa(m.Count),
		FirstValue:       Fixed3(m.FirstValue),
		LastValue:        Fixed3(m.LastValue),
		MinValue:         Fixed3(m.MinValue),
		MaxValue:         Fixed3(m.MaxValue),
	}
}

// Record renders the rail. Points are re-sorted by relative time on a copy.
func (m RailMetric) Record() RailRecord {
	return RailRecord{
		Label:        m.Label,
		Duration:     seconds6(m.DurationS),
		AvgPower:     Fixed3(m.AvgPowerMW),
		TotalPower:   Fixed3(m.TotalEnergyMJ),
		SeriesPoints: SortedPoints(m.Points),
	}
}

func (m FrequencyMetric) Record() FrequencyRecord {
	return FrequencyRecord{
		Label:   m.Label,
		AvgFreq: Fixed3(m.Avg),
		MaxFreq: Fixed3(m.Max),
		MinFreq: Fixed3(m.Min),
	}
}

// Record renders the totals row; a zero global duration is shown as "-".
func (t TotalsRow) Record() TotalsRecord {
	duration := "-"
	if t.GlobalDurationS > 0 {
		duration = seconds6(t.GlobalDurationS)
	}
	return TotalsRecord{
		Duration:    duration,
		AvgPower:    Fixed3(t.TotalAvgPowerMW),
		TotalEnergy: Fixed3(t.TotalEnergyMJ),
	}
}

// SortedPoints returns a copy of points ordered by relative time.
func SortedPoints(points []PowerPoint) []PowerPoint {
	out := make([]PowerPoint, len(points))
	copy(out, points)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TRelS < out[j].TRelS
	})
	return out
}
