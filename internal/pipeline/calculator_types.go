package pipeline

// Sample is one timestamped counter value.
type Sample struct {
	TS    int64 // nanoseconds
	Value float64
}

// Series is the samples of one named signal. After Normalize the samples are
// in ascending timestamp order.
type Series struct {
	Label   string
	Unit    string
	Samples []Sample
}

// BatteryMetric summarises a gauge-like signal.
type BatteryMetric struct {
	Label            string
	Unit             string
	Count            int
	DurationS        float64
	DeltaValue       float64
	RatePerS         float64
	WeightedAvgValue float64
	FirstValue       float64
	LastValue        float64
	MinValue         float64
	MaxValue         float64
}

// PowerPoint is the instantaneous power over one accepted interval, placed at
// the interval end relative to the first sample of the series.
type PowerPoint struct {
	TRelS   float64 `json:"x"`
	PowerMW float64 `json:"y"`
}

// RailMetric summarises a cumulative energy counter.
type RailMetric struct {
	Label         string
	Unit          string
	DurationS     float64
	AvgPowerMW    float64
	TotalEnergyMJ float64
	Points        []PowerPoint
}

// FrequencyMetric summarises raw values of a clock or frequency signal without time weighting.
type FrequencyMetric struct {
	Label string
	Unit  string
	Count int
	Avg   float64
	Max   float64
	Min   float64
}

// TotalsRow combines all rail metrics of one trace.
type TotalsRow struct {
	TotalAvgPowerMW float64
	TotalEnergyMJ   float64
	// GlobalDurationS is the longest per-rail duration, not the span across rails.
	GlobalDurationS float64
}

// Result is everything computed for one trace.
type Result struct {
	Trace     string
	Battery   []BatteryMetric
	Rails     []RailMetric // ranked by average power, descending
	Frequency []FrequencyMetric
	Totals    TotalsRow
	// RailSpanS is the span between the earliest and latest rail sample across all rails.
	RailSpanS  float64
	Violations []Violation
}
