package core

import (
	"time"

	"github.com/shopspring/decimal"
)

type AlertLevel string

const (
	AlertNone     AlertLevel = "none"
	AlertWarning  AlertLevel = "warning"
	AlertCritical AlertLevel = "critical"
)

var (
	WarningThreshold  = decimal.NewFromInt(90)
	CriticalThreshold = decimal.NewFromInt(100)
)

const (
	MinBudgetYear = 2000
	MaxBudgetYear = 2100
)

// BudgetUsage is the spend of one budget period.
type BudgetUsage struct {
	Spent      Money           `json:"spent"`
	Remaining  Money           `json:"remaining"`
	Percentage decimal.Decimal `json:"percentage"`
	Level      AlertLevel      `json:"level"`
}

// ClassifySpend compares spent with the budget amount. Levels use the exact
// ratio; Percentage is rounded to two places.
func ClassifySpend(budget, spent Money) BudgetUsage {
	u := BudgetUsage{
		Spent:     spent,
		Remaining: budget.Sub(spent),
		Level:     AlertNone,
	}
	if !budget.IsPositive() {
		return u
	}
	u.Percentage = spent.Percent(budget)
	switch {
	case spent.ReachesPercent(budget, CriticalThreshold):
		u.Level = AlertCritical
	case spent.ReachesPercent(budget, WarningThreshold):
		u.Level = AlertWarning
	}
	return u
}

// ValidateBudgetPeriod rejects months out of range and periods before now's month.
func ValidateBudgetPeriod(year, month int, now time.Time) error {
	if month < 1 || month > 12 {
		return Invalid("month", "must be between 1 and 12")
	}
	if year < MinBudgetYear || year > MaxBudgetYear {
		return Invalid("year", "must be between 2000 and 2100")
	}
	now = now.UTC()
	if year < now.Year() || (year == now.Year() && month < int(now.Month())) {
		return Invalid("month", "cannot create a budget for a past month")
	}
	return nil
}
