package pipeline

import (
	"sort"

	"github.com/cockroachdb/apd/v3"
)

var sumContext = apd.BaseContext.WithPrecision(34)

// Totals sums average power and energy over all rails and takes the longest
// rail duration as the global duration.
func Totals(rails []RailMetric) TotalsRow {
	powers := make([]float64, len(rails))
	energies := make([]float64, len(rails))
	var row TotalsRow
	for i, r := range rails {
		powers[i] = r.AvgPowerMW
		energies[i] = r.TotalEnergyMJ
		row.GlobalDurationS = max(row.GlobalDurationS, r.DurationS)
	}
	row.TotalAvgPowerMW = ExactSum(powers)
	row.TotalEnergyMJ = ExactSum(energies)
	return row
}

// RankRails returns a copy of rails ordered by average power, highest first.
// Equal values keep their input order.
func RankRails(rails []RailMetric) []RailMetric {
	ranked := make([]RailMetric, len(rails))
	copy(ranked, rails)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].AvgPowerMW > ranked[j].AvgPowerMW
	})
	return ranked
}

// ExactSum adds values in decimal at 34 digits so the result does not depend on
// summation order. Non-finite values are ignored.
func ExactSum(values []float64) float64 {
	var total apd.Decimal
	for _, v := range values {
		var d apd.Decimal
		if _, err := d.SetFloat64(v); err != nil {
			continue
		}
		var next apd.Decimal
		if _, err := sumContext.Add(&next, &total, &d); err != nil {
			continue
		}
		total.Set(&next)
	}
	f, err := total.Float64()
	if err != nil {
		return 0
	}
	return f
}
