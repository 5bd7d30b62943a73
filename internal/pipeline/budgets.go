package pipeline

import (
	"go.uber.org/zap"

	"github.com/sanspareilsmyn/powerlens/internal/config"
)

// Violation is one rail exceeding a configured budget.
type Violation struct {
	Rail   string
	Check  string // "avg_power" or "energy"
	Actual float64
	Limit  float64
}

// BudgetChecker compares rail metrics with per-rail limits.
type BudgetChecker struct {
	budgets map[string]config.BudgetConfig
	metrics *Metrics
	logger  *zap.Logger
}

// NewBudgetChecker creates a new BudgetChecker instance. Later entries for the same rail win.
func NewBudgetChecker(budgets []config.BudgetConfig, metrics *Metrics, logger *zap.Logger) *BudgetChecker {
	budgetMap := make(map[string]config.BudgetConfig, len(budgets))
	for _, b := range budgets {
		budgetMap[b.Rail] = b
	}

	logger.Debug("Budget checker initialized", zap.Int("budget_count", len(budgetMap)))

	return &BudgetChecker{
		budgets: budgetMap,
		metrics: metrics,
		logger:  logger,
	}
}

// Check returns the violations of the given rails, in rail order.
func (b *BudgetChecker) Check(traceLabel string, rails []RailMetric) []Violation {
	var violations []Violation
	for _, r := range rails {
		budget, ok := b.budgets[r.Label]
		if !ok {
			continue
		}
		if v, hit := b.check(traceLabel, r.Label, "avg_power", r.AvgPowerMW, budget.MaxAvgPowerMW); hit {
			violations = append(violations, v)
		}
		if v, hit := b.check(traceLabel, r.Label, "energy", r.TotalEnergyMJ, budget.MaxEnergyMJ); hit {
			violations = append(violations, v)
		}
	}
	return violations
}

func (b *BudgetChecker) check(traceLabel, rail, check string, actual float64, limit *float64) (Violation, bool) {
	if limit == nil || actual <= *limit {
		return Violation{}, false
	}
	b.logger.Sugar().Warnw("Rail budget violation",
		zap.String("trace", traceLabel),
		zap.String("rail", rail),
		zap.String("check", check),
		zap.Float64("actual", actual),
		zap.Float64("limit", *limit),
		zap.String("comparison", ">"),
	)
	if b.metrics != nil {
		b.metrics.budgetViolations.WithLabelValues(traceLabel, rail, check).Inc()
	}
	return Violation{Rail: rail, Check: check, Actual: actual, Limit: *limit}, true
}
